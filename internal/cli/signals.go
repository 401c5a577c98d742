package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/dossier/internal/wire"
)

// SignalsCmd returns the signals command
func SignalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "signals",
		Short: "Inspect the signal delivery audit log",
	}

	cmd.AddCommand(signalsListCmd())

	return cmd
}

func signalsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [case-id]",
		Short: "List every signal delivery attempt for a case, oldest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.SignalAdapter().List(context.Background(), args[0])
		},
	}
}
