package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/dossier/internal/cli"
	"github.com/example/dossier/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "dossier",
		Short:   "Dossier - gateway orchestrator for investigative reports",
		Version: version.String(),
		Long: `Dossier coordinates the assembly of multi-section investigative reports.
It tracks each section through its lifecycle, runs continuity validators
over the case's fact ledger, and gates final assembly until every
required section is approved and no blocking contradiction remains.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.CaseCmd())
	rootCmd.AddCommand(cli.SectionCmd())
	rootCmd.AddCommand(cli.FindingCmd())
	rootCmd.AddCommand(cli.AssemblyCmd())
	rootCmd.AddCommand(cli.SignalsCmd())
	rootCmd.AddCommand(cli.StatusCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
