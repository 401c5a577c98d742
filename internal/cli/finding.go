package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/dossier/internal/wire"
)

// FindingCmd returns the finding command
func FindingCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "finding",
		Short: "Inspect and resolve continuity findings",
	}

	cmd.AddCommand(findingListCmd())
	cmd.AddCommand(findingAckCmd())

	return cmd
}

func findingListCmd() *cobra.Command {
	var severity string
	var resolution string

	cmd := &cobra.Command{
		Use:   "list [case-id]",
		Short: "List a case's continuity findings",
		Long: `List the continuity findings detected for a case.

Examples:
  dossier finding list CASE-001
  dossier finding list CASE-001 --severity blocking --resolution open`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.FindingAdapter().List(context.Background(), args[0], severity, resolution)
		},
	}

	cmd.Flags().StringVar(&severity, "severity", "", "Filter by severity (blocking, advisory)")
	cmd.Flags().StringVar(&resolution, "resolution", "", "Filter by resolution (open, acknowledged, resolved)")

	return cmd
}

func findingAckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ack [case-id] [pair-key]",
		Short: "Acknowledge an open finding",
		Long: `Acknowledge an open finding by its pair key. Acknowledged blocking
findings no longer gate approval or assembly, but stay on record.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.FindingAdapter().Acknowledge(context.Background(), args[0], args[1])
		},
	}
}
