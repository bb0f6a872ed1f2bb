package cli

import (
	"fmt"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"uhe-console/internal/domain"
)

func newOpenflowCmd(client *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "openflow",
		Short: "Manage Openflow CDC snapshot states",
	}
	cmd.AddCommand(newOpenflowListCmd(client))
	cmd.AddCommand(newOpenflowSnapshotCmd(client))
	cmd.AddCommand(newOpenflowEnableCmd(client, true))
	cmd.AddCommand(newOpenflowEnableCmd(client, false))
	cmd.AddCommand(newOpenflowDeleteCmd(client))
	return cmd
}

func snapshotPath(db, schema, table string) string {
	return fmt.Sprintf("/openflow/snapshot-states/%s/%s/%s",
		url.PathEscape(db), url.PathEscape(schema), url.PathEscape(table))
}

func newOpenflowListCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snapshot states",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp struct {
				SnapshotStates []domain.SnapshotState `json:"snapshot_states"`
			}
			if err := client.get(cmd.Context(), "/openflow/snapshot-states", nil, &resp); err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, map[string]interface{}{"snapshot_states": resp.SnapshotStates})
			}

			rows := make([][]string, 0, len(resp.SnapshotStates))
			for _, s := range resp.SnapshotStates {
				table := fmt.Sprintf("%s.%s.%s", s.DatabaseName, s.SchemaName, s.TableName)
				rows = append(rows, []string{
					table, yesNo(s.Enabled), yesNo(s.SnapshotRequest),
					s.SnapshotStatus, s.LastSnapshotTimestamp,
				})
			}
			printTable(os.Stdout, []string{"table", "enabled", "requested", "status", "last snapshot"}, rows)
			return nil
		},
	}
}

func newOpenflowSnapshotCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "request-snapshot <db> <schema> <table>",
		Short: "Request a fresh snapshot for one table",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := snapshotPath(args[0], args[1], args[2]) + "/request-snapshot"
			if err := client.post(cmd.Context(), path, nil, nil); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, map[string]string{"status": "requested"})
			}
			_, _ = fmt.Fprintf(os.Stdout, "Snapshot requested for %s.%s.%s\n", args[0], args[1], args[2])
			return nil
		},
	}
}

func newOpenflowEnableCmd(client *Client, enable bool) *cobra.Command {
	use, short, verb := "enable", "Enable CDC replication for one table", "enabled"
	if !enable {
		use, short, verb = "disable", "Disable CDC replication for one table", "disabled"
	}
	return &cobra.Command{
		Use:   use + " <db> <schema> <table>",
		Short: short,
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.UpdateSnapshotStateRequest{Enabled: &enable}
			if err := client.doJSON(cmd.Context(), "PUT", snapshotPath(args[0], args[1], args[2]), nil, req, nil); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, map[string]string{"status": verb})
			}
			_, _ = fmt.Fprintf(os.Stdout, "Replication %s for %s.%s.%s\n", verb, args[0], args[1], args[2])
			return nil
		},
	}
}

func newOpenflowDeleteCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <db> <schema> <table>",
		Short: "Delete a snapshot state",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.delete(cmd.Context(), snapshotPath(args[0], args[1], args[2])); err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, map[string]string{"status": "deleted"})
			}
			_, _ = fmt.Fprintf(os.Stdout, "Snapshot state deleted for %s.%s.%s\n", args[0], args[1], args[2])
			return nil
		},
	}
}
