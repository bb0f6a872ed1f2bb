package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"uhe-console/internal/domain"
)

func newDeployCmd(client *Client) *cobra.Command {
	var (
		replaceObjects bool
		runFullRefresh bool
		noFollow       bool
	)

	cmd := &cobra.Command{
		Use:   "deploy <model-id>...",
		Short: "Deploy staged models and follow the deployment stream",
		Long: `Opens a wizard session for the given models, starts a deployment and follows
the event stream until it completes. The models' blueprints must already have
saved table bindings.`,
		Example: `  uhe deploy dim_customer
  uhe deploy dim_customer fct_orders --replace-objects
  uhe deploy fct_orders --full-refresh --no-follow`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDeploy(cmd, client, args, replaceObjects, runFullRefresh, !noFollow)
		},
	}

	cmd.Flags().BoolVar(&replaceObjects, "replace-objects", false, "Drop and recreate existing objects")
	cmd.Flags().BoolVar(&runFullRefresh, "full-refresh", false, "Run a full refresh after deployment")
	cmd.Flags().BoolVar(&noFollow, "no-follow", false, "Start the deployment and exit without streaming")

	return cmd
}

func runDeploy(cmd *cobra.Command, client *Client, modelIDs []string, replaceObjects, runFullRefresh, follow bool) error {
	ctx := cmd.Context()

	var session struct {
		ID string `json:"id"`
	}
	body := map[string]interface{}{"model_ids": modelIDs}
	if err := client.post(ctx, "/wizard/sessions", body, &session); err != nil {
		return fmt.Errorf("open session: %w", err)
	}
	defer func() {
		_ = client.delete(context.Background(), "/wizard/sessions/"+session.ID)
	}()

	deployReq := map[string]bool{
		"replace_objects":  replaceObjects,
		"run_full_refresh": runFullRefresh,
	}
	if err := client.post(ctx, "/wizard/sessions/"+session.ID+"/deploy", deployReq, nil); err != nil {
		return fmt.Errorf("start deployment: %w", err)
	}

	if !follow {
		if getOutputFormat(cmd) == "json" {
			return printJSON(os.Stdout, map[string]string{"status": "started", "session": session.ID})
		}
		_, _ = fmt.Fprintf(os.Stdout, "Deployment started (session %s)\n", session.ID)
		return nil
	}

	outcome, err := followStream(ctx, client, session.ID, getOutputFormat(cmd) == "json")
	if err != nil {
		return err
	}
	if outcome == nil {
		// The run may have finished before we attached to the stream; the
		// progress snapshot still carries the terminal summary.
		var view struct {
			Outcome *domain.CompleteEvent `json:"outcome"`
		}
		if err := client.get(ctx, "/wizard/sessions/"+session.ID+"/deploy/progress", nil, &view); err != nil {
			return err
		}
		outcome = view.Outcome
	}
	if outcome == nil {
		return fmt.Errorf("stream ended without a deployment summary")
	}

	if getOutputFormat(cmd) == "json" {
		return printJSON(os.Stdout, outcome)
	}
	_, _ = fmt.Fprintf(os.Stdout, "\n%s: %d succeeded, %d failed\n",
		outcome.Message, len(outcome.Successful), len(outcome.Failed))
	if len(outcome.Failed) > 0 {
		for _, f := range outcome.Failed {
			_, _ = fmt.Fprintf(os.Stdout, "  FAILED %s %s: %s\n", f.Type, f.ID, f.Error)
		}
		return fmt.Errorf("%d models failed to deploy", len(outcome.Failed))
	}
	return nil
}

// followStream reads the session's SSE relay and prints events until the
// stream closes. It returns the terminal summary when one was seen.
func followStream(ctx context.Context, client *Client, sessionID string, jsonOut bool) (*domain.CompleteEvent, error) {
	resp, err := client.Do(ctx, http.MethodGet, "/wizard/sessions/"+sessionID+"/deploy/stream", nil, nil)
	if err != nil {
		return nil, fmt.Errorf("open stream: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, errorFromResponse(resp)
	}

	var (
		outcome   *domain.CompleteEvent
		eventType string
		data      strings.Builder
	)

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event:"):
			eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		case line == "":
			if eventType != "" {
				done := printEvent(eventType, []byte(data.String()), &outcome, jsonOut)
				if done {
					return outcome, nil
				}
			}
			eventType = ""
			data.Reset()
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return outcome, fmt.Errorf("read stream: %w", err)
	}
	return outcome, nil
}

// printEvent renders one stream event. It reports true once the stream is
// logically finished.
func printEvent(eventType string, data []byte, outcome **domain.CompleteEvent, jsonOut bool) bool {
	if jsonOut {
		_ = printJSON(os.Stdout, map[string]interface{}{
			"event": eventType,
			"data":  json.RawMessage(data),
		})
	}

	switch eventType {
	case "log":
		if !jsonOut {
			var ev domain.LogEvent
			if err := json.Unmarshal(data, &ev); err == nil {
				_, _ = fmt.Fprintf(os.Stdout, "%-7s %s\n", ev.Level, ev.Message)
			}
		}
	case "model_start":
		if !jsonOut {
			var ev domain.ModelStartEvent
			if err := json.Unmarshal(data, &ev); err == nil {
				_, _ = fmt.Fprintf(os.Stdout, "==> deploying %s (%d/%d)\n", ev.ModelID, ev.Index, ev.Total)
			}
		}
	case "model_complete":
		if !jsonOut {
			var ev domain.ModelCompleteEvent
			if err := json.Unmarshal(data, &ev); err == nil {
				if ev.Error != "" {
					_, _ = fmt.Fprintf(os.Stdout, "==> %s %s: %s\n", ev.ModelID, ev.Status, ev.Error)
				} else {
					_, _ = fmt.Fprintf(os.Stdout, "==> %s %s\n", ev.ModelID, ev.Status)
				}
			}
		}
	case "complete":
		var ev domain.CompleteEvent
		if err := json.Unmarshal(data, &ev); err == nil {
			*outcome = &ev
		}
	case "error":
		if !jsonOut {
			var ev domain.DeploymentError
			if err := json.Unmarshal(data, &ev); err == nil {
				_, _ = fmt.Fprintf(os.Stdout, "ERROR   %s [%s/%s]: %s\n", ev.Model, ev.Step, ev.Item, ev.Message)
			}
		}
	case "close":
		return true
	}
	return false
}
