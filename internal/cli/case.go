package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/dossier/internal/wire"
)

// CaseCmd returns the case command
func CaseCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "case",
		Short: "Manage investigation cases",
		Long:  `Create and manage cases. A case freezes its report type's required sections at creation.`,
	}

	cmd.AddCommand(caseCreateCmd())
	cmd.AddCommand(caseListCmd())
	cmd.AddCommand(caseShowCmd())
	cmd.AddCommand(caseResetCmd())

	return cmd
}

func caseCreateCmd() *cobra.Command {
	var reportType string
	var owner string

	cmd := &cobra.Command{
		Use:   "create [title]",
		Short: "Create a new case",
		Long: `Create a new case for the given report type.

The report type determines the required sections and their composition
order; both are snapshotted onto the case and never change afterwards.

Examples:
  dossier case create "Claim 44-D surveillance" --type field
  dossier case create "Background: J. Smith" --type background --owner analyst-7`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer wire.DrainSignals()
			return wire.CaseAdapter().Create(context.Background(), args[0], reportType, owner)
		},
	}

	cmd.Flags().StringVarP(&reportType, "type", "t", "full", "Report type (surveillance, background, field, full)")
	cmd.Flags().StringVarP(&owner, "owner", "o", "", "Case owner")

	return cmd
}

func caseListCmd() *cobra.Command {
	var status string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List cases",
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.CaseAdapter().List(context.Background(), status)
		},
	}

	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status (active, halted, archived)")

	return cmd
}

func caseShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [case-id]",
		Short: "Show a case and its sections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := wire.CaseAdapter().Show(context.Background(), args[0])
			return err
		},
	}
}

func caseResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset [case-id]",
		Short: "Reset every section of a case to not_started",
		Long: `Reset a case: every section returns to not_started and approval
records are cleared. The fact ledger and findings are kept for audit.
This is the only way to rework a locked section.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.CaseAdapter().Reset(context.Background(), args[0])
		},
	}
}
