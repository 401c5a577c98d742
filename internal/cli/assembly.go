package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/dossier/internal/wire"
)

// AssemblyCmd returns the assembly command
func AssemblyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assembly",
		Short: "Assemble the final report document",
	}

	cmd.AddCommand(assemblyRequestCmd())
	cmd.AddCommand(assemblyAbortCmd())

	return cmd
}

func assemblyRequestCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "request [case-id]",
		Short: "Run the assembly gate and compose the document",
		Long: `Run the assembly gate for a case. The gate passes only when every
required section is approved and no blocking finding is still open.
On success the approved sections lock, the case archives, and the
composed document is written to --output (or stdout).

Repeating the request on an archived case returns the same document
without re-locking or re-signaling.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer wire.DrainSignals()
			return wire.AssemblyAdapter().Request(context.Background(), args[0], output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "File to write the assembled document to")

	return cmd
}

func assemblyAbortCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "abort [case-id]",
		Short: "Refuse the next assembly request for a case",
		Long: `Flag a case so its next assembly request is refused before gate
evaluation. An abort arriving while a request is already evaluating
is rejected.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.AssemblyAdapter().Abort(context.Background(), args[0])
		},
	}
}
