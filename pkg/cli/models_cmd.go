package cli

import (
	"os"

	"github.com/spf13/cobra"

	"uhe-console/internal/domain"
)

func newModelsCmd(client *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "models",
		Short: "Inspect the modelling catalog",
	}
	cmd.AddCommand(newModelsListCmd(client))
	return cmd
}

func newModelsListCmd(client *Client) *cobra.Command {
	var (
		modelType    string
		deployedOnly bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List dimension and fact models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp struct {
				Models []domain.CatalogModel `json:"models"`
			}
			if err := client.get(cmd.Context(), "/models", nil, &resp); err != nil {
				return err
			}

			models := resp.Models[:0]
			for _, m := range resp.Models {
				if modelType != "" && m.Type != modelType {
					continue
				}
				if deployedOnly && !m.Deployed {
					continue
				}
				models = append(models, m)
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, map[string]interface{}{"models": models})
			}

			rows := make([][]string, 0, len(models))
			for _, m := range models {
				status := "staged"
				if m.Deployed {
					status = "deployed"
				}
				if m.DeploymentError != "" {
					status = "error"
				}
				rows = append(rows, []string{m.ID, m.Name, m.Type, status, m.ViewName})
			}
			printTable(os.Stdout, []string{"id", "name", "type", "status", "view"}, rows)
			return nil
		},
	}

	cmd.Flags().StringVarP(&modelType, "type", "t", "", "Filter by model type: dimension, fact")
	cmd.Flags().BoolVar(&deployedOnly, "deployed", false, "Only show deployed models")

	return cmd
}
