package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"uhe-console/internal/domain"
)

func newValidateCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the engine database and its schemas",
		Long:  "Checks that the configured Snowflake database exists and that every schema the engine requires is present.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var result domain.DatabaseValidation
			if err := client.post(cmd.Context(), "/database/validate", nil, &result); err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, result)
			}

			if result.Valid {
				_, _ = fmt.Fprintf(os.Stdout, "Database %s is valid (%d schemas present)\n",
					result.DatabaseName, len(result.ExistingSchemas))
				return nil
			}
			if !result.DatabaseExists {
				return fmt.Errorf("database %s does not exist", result.DatabaseName)
			}
			return fmt.Errorf("database %s is missing schemas: %s",
				result.DatabaseName, strings.Join(result.MissingSchemas, ", "))
		},
	}
}
