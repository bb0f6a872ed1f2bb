package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"uhe-console/internal/domain"
)

func newGovernanceCmd(client *Client) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "governance",
		Short: "Manage governance contacts and stewardship",
	}

	contacts := &cobra.Command{
		Use:   "contacts",
		Short: "Manage governance contacts",
	}
	contacts.AddCommand(newContactsListCmd(client))
	contacts.AddCommand(newContactsCreateCmd(client))
	cmd.AddCommand(contacts)

	models := &cobra.Command{
		Use:   "models",
		Short: "Inspect and assign model stewardship",
	}
	models.AddCommand(newGovernedModelsListCmd(client))
	models.AddCommand(newModelAssignCmd(client))
	cmd.AddCommand(models)

	return cmd
}

func newContactsListCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List governance contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp struct {
				Contacts []domain.Contact `json:"contacts"`
			}
			if err := client.get(cmd.Context(), "/governance/contacts", nil, &resp); err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, map[string]interface{}{"contacts": resp.Contacts})
			}

			rows := make([][]string, 0, len(resp.Contacts))
			for _, c := range resp.Contacts {
				rows = append(rows, []string{c.Name, c.CommunicationType, c.CommunicationValue})
			}
			printTable(os.Stdout, []string{"name", "method", "value"}, rows)
			return nil
		},
	}
}

func newContactsCreateCmd(client *Client) *cobra.Command {
	var (
		method string
		value  string
	)

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a governance contact",
		Example: `  uhe governance contacts create data-platform --method EMAIL --value platform@example.com
  uhe governance contacts create oncall --method USERS --value alice,bob`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.CreateContactRequest{
				Name:   args[0],
				Method: strings.ToUpper(method),
			}
			// USERS contacts take a list of user names.
			if req.Method == "USERS" {
				req.Value = strings.Split(value, ",")
			} else {
				req.Value = value
			}

			var contact domain.Contact
			if err := client.post(cmd.Context(), "/governance/contacts", req, &contact); err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, contact)
			}
			_, _ = fmt.Fprintf(os.Stdout, "Contact %q created\n", contact.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&method, "method", "EMAIL", "Communication method: URL, EMAIL, USERS")
	cmd.Flags().StringVar(&value, "value", "", "Communication value (comma-separated for USERS)")
	_ = cmd.MarkFlagRequired("value")

	return cmd
}

func newGovernedModelsListCmd(client *Client) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List models with their rolled-up contacts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp struct {
				Models []domain.ModelGovernance `json:"models"`
			}
			if err := client.get(cmd.Context(), "/governance/models", nil, &resp); err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, map[string]interface{}{"models": resp.Models})
			}

			rows := make([][]string, 0, len(resp.Models))
			for _, m := range resp.Models {
				rows = append(rows, []string{
					m.ModelID, m.ModelType, yesNo(m.Deployed),
					m.StewardContact, m.SupportContact,
				})
			}
			printTable(os.Stdout, []string{"model", "type", "deployed", "steward", "support"}, rows)
			return nil
		},
	}
}

func newModelAssignCmd(client *Client) *cobra.Command {
	var (
		modelType string
		steward   string
		support   string
		approver  string
	)

	cmd := &cobra.Command{
		Use:   "assign <model-id>",
		Short: "Assign contacts across a model's component objects",
		Example: `  uhe governance models assign dim_customer --steward data-platform
  uhe governance models assign fct_orders --type fact --support oncall --approver data-governance`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := domain.AssignModelContactsRequest{
				ModelID:   args[0],
				ModelType: modelType,
			}
			if cmd.Flags().Changed("steward") {
				req.Assignments = append(req.Assignments, domain.ContactAssignment{Purpose: "STEWARD", ContactName: steward})
			}
			if cmd.Flags().Changed("support") {
				req.Assignments = append(req.Assignments, domain.ContactAssignment{Purpose: "SUPPORT", ContactName: support})
			}
			if cmd.Flags().Changed("approver") {
				req.Assignments = append(req.Assignments, domain.ContactAssignment{Purpose: "ACCESS_APPROVAL", ContactName: approver})
			}
			if len(req.Assignments) == 0 {
				return fmt.Errorf("nothing to assign: pass --steward, --support or --approver")
			}

			if err := client.post(cmd.Context(), "/governance/models/assign", req, nil); err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, map[string]string{"status": "ok", "model": args[0]})
			}
			_, _ = fmt.Fprintf(os.Stdout, "Contacts assigned to %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&modelType, "type", "dimension", "Model type: dimension, fact")
	cmd.Flags().StringVar(&steward, "steward", "", "Steward contact name (empty clears)")
	cmd.Flags().StringVar(&support, "support", "", "Support contact name (empty clears)")
	cmd.Flags().StringVar(&approver, "approver", "", "Access approver contact name (empty clears)")

	return cmd
}
