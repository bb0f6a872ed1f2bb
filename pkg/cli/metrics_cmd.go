package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"uhe-console/internal/domain"
)

func newMetricsCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show the modelling dashboard metrics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var m domain.ModellingMetrics
			if err := client.get(cmd.Context(), "/dashboard/metrics", nil, &m); err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, m)
			}

			printTable(os.Stdout, []string{"metric", "value"}, [][]string{
				{"database", m.Database},
				{"connected sources", fmt.Sprint(m.ConnectedSources)},
				{"storage objects", fmt.Sprint(m.StorageObjects.Total)},
				{"deployed dimensions", fmt.Sprint(m.DeployedModels.Dimensions)},
				{"deployed facts", fmt.Sprint(m.DeployedModels.Facts)},
				{"steward coverage", fmt.Sprintf("%.1f%%", m.Governance.StewardCoveragePercentage)},
			})
			return nil
		},
	}
}
