package cli

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"uhe-console/internal/domain"
)

func newBlueprintsCmd(client *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "blueprints",
		Short: "Inspect the blueprint catalog",
	}
	cmd.AddCommand(newBlueprintsListCmd(client))
	return cmd
}

func newBlueprintsListCmd(client *Client) *cobra.Command {
	var (
		source string
		idLike string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List blueprints with their saved table bindings",
		Example: `  uhe blueprints list
  uhe blueprints list --source salesforce
  uhe blueprints list --filter customer --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q := url.Values{}
			if source != "" {
				q.Set("source", source)
			}
			if idLike != "" {
				q.Set("id_like", idLike)
			}

			var resp struct {
				Blueprints []domain.BlueprintDetail `json:"blueprints"`
			}
			if err := client.get(cmd.Context(), "/blueprints", q, &resp); err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, map[string]interface{}{"blueprints": resp.Blueprints})
			}

			rows := make([][]string, 0, len(resp.Blueprints))
			for _, b := range resp.Blueprints {
				binding := ""
				if b.BindingTable != "" {
					binding = fmt.Sprintf("%s.%s.%s", b.BindingDB, b.BindingSchema, b.BindingTable)
				}
				rows = append(rows, []string{
					b.ID, b.Source, binding,
					yesNo(b.MappingComplete), yesNo(b.Deployed),
				})
			}
			printTable(os.Stdout, []string{"id", "source", "binding", "mapped", "deployed"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Filter by blueprint source")
	cmd.Flags().StringVar(&idLike, "filter", "", "Filter by id substring")

	return cmd
}
