package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/dossier/internal/core/continuity"
	"github.com/example/dossier/internal/core/section"
	"github.com/example/dossier/internal/ports/primary"
	"github.com/example/dossier/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [case-id]",
		Short: "Show where a case stands on the road to assembly",
		Long: `Display a focused view of a single case: every section's state, the
open findings, and what still blocks assembly.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			c, err := wire.CaseService().GetCase(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get case: %w", err)
			}
			findings, err := wire.FindingService().ListFindings(ctx, args[0], primary.FindingFilters{})
			if err != nil {
				return fmt.Errorf("failed to list findings: %w", err)
			}

			fmt.Printf("%s - %s [%s]\n", c.ID, c.Title, formatCaseStatus(c.Status))
			fmt.Printf("Report type: %s\n", c.ReportType)
			fmt.Println()

			required := make(map[string]bool, len(c.Required))
			for _, id := range c.Required {
				required[id] = true
			}

			fmt.Println("Sections:")
			missing := 0
			for _, s := range c.Sections {
				marker := ""
				if required[string(s.SectionID)] {
					marker = color.New(color.FgHiMagenta).Sprint(" [required]")
					if s.State != section.StateApproved && s.State != section.StateLocked {
						missing++
					}
				}
				fmt.Printf("  %-8s %-28s %s%s\n", s.SectionID, s.Title, formatSectionState(s.State), marker)
			}
			fmt.Println()

			openBlocking := 0
			openAdvisory := 0
			for _, f := range findings {
				if f.Resolution != continuity.ResolutionOpen {
					continue
				}
				if f.Severity == continuity.SeverityBlocking {
					openBlocking++
					fmt.Printf("  %s %s: %s\n", color.New(color.FgRed).Sprint("✗"), f.PairKey, f.Explanation)
				} else {
					openAdvisory++
					fmt.Printf("  %s %s: %s\n", color.New(color.FgYellow).Sprint("⚠"), f.PairKey, f.Explanation)
				}
			}
			if openBlocking+openAdvisory > 0 {
				fmt.Println()
			}

			switch {
			case c.Status == "archived":
				fmt.Println(color.New(color.FgHiGreen).Sprint("✓ Assembled and archived"))
			case missing == 0 && openBlocking == 0:
				fmt.Println(color.New(color.FgHiGreen).Sprint("✓ Ready for assembly"))
				fmt.Printf("  Run: dossier assembly request %s\n", c.ID)
			default:
				fmt.Printf("Assembly blocked: %d required section(s) pending, %d open blocking finding(s)\n",
					missing, openBlocking)
			}

			return nil
		},
	}
}

func formatSectionState(s section.State) string {
	switch s {
	case section.StateNotStarted:
		return color.New(color.FgHiBlack).Sprint("[not_started]")
	case section.StateDrafted:
		return color.New(color.FgHiBlue).Sprint("[drafted]")
	case section.StateNeedsRevision:
		return color.New(color.FgYellow).Sprint("[needs_revision]")
	case section.StateApproved:
		return color.New(color.FgHiGreen).Sprint("[approved]")
	case section.StateLocked:
		return color.New(color.FgHiCyan).Sprint("[locked]")
	default:
		return fmt.Sprintf("[%s]", s)
	}
}

func formatCaseStatus(status string) string {
	switch status {
	case "active":
		return color.New(color.FgHiGreen).Sprint("active")
	case "halted":
		return color.New(color.FgRed).Sprint("halted")
	case "archived":
		return color.New(color.FgHiBlack).Sprint("archived")
	default:
		return status
	}
}
