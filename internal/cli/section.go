package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/dossier/internal/wire"
)

// SectionCmd returns the section command
func SectionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "section",
		Short: "Manage report sections",
		Long:  `Draft, render, approve, and revise the sections of a case.`,
	}

	cmd.AddCommand(sectionDraftCmd())
	cmd.AddCommand(sectionRenderCmd())
	cmd.AddCommand(sectionApproveCmd())
	cmd.AddCommand(sectionReviseCmd())
	cmd.AddCommand(sectionShowCmd())

	return cmd
}

func sectionDraftCmd() *cobra.Command {
	var file string
	var complete bool

	cmd := &cobra.Command{
		Use:   "draft [case-id] [section-id]",
		Short: "Submit section content directly",
		Long: `Submit content for a section without the external renderer.

Content is read from --file, or from stdin when no file is given.

Examples:
  dossier section draft CASE-001 s3 --file surveillance.md
  cat notes.md | dossier section draft CASE-001 s9`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var content []byte
			var err error
			if file != "" {
				content, err = os.ReadFile(file)
			} else {
				content, err = io.ReadAll(os.Stdin)
			}
			if err != nil {
				return fmt.Errorf("failed to read content: %w", err)
			}

			defer wire.DrainSignals()
			return wire.SectionAdapter().Draft(context.Background(), args[0], args[1], string(content), complete)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "File to read section content from")
	cmd.Flags().BoolVar(&complete, "complete", false, "Mark the manifest complete")

	return cmd
}

func sectionRenderCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "render [case-id] [section-id...]",
		Short: "Render sections via the external renderer",
		Long: `Invoke the external renderer for one or more sections in parallel.
Each successful render is submitted as a draft; failed sections keep
their previous state.

Examples:
  dossier section render CASE-001 s1 s2 s3
  dossier section render CASE-001 cp --timeout 30s`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer wire.DrainSignals()
			return wire.SectionAdapter().Render(context.Background(), args[0], args[1:], timeout)
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", 2*time.Minute, "Per-section renderer timeout")

	return cmd
}

func sectionApproveCmd() *cobra.Command {
	var approver string

	cmd := &cobra.Command{
		Use:   "approve [case-id] [section-id]",
		Short: "Approve a drafted section",
		Long: `Approve a drafted section. The continuity validators re-run over the
section's facts first; a blocking finding refuses the approval.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer wire.DrainSignals()
			return wire.SectionAdapter().Approve(context.Background(), args[0], args[1], approver)
		},
	}

	cmd.Flags().StringVarP(&approver, "by", "b", "", "Approver identity")
	cmd.MarkFlagRequired("by")

	return cmd
}

func sectionReviseCmd() *cobra.Command {
	var reason string

	cmd := &cobra.Command{
		Use:   "revise [case-id] [section-id]",
		Short: "Send a section back for revision",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer wire.DrainSignals()
			return wire.SectionAdapter().Revise(context.Background(), args[0], args[1], reason)
		},
	}

	cmd.Flags().StringVarP(&reason, "reason", "r", "", "Why the section needs revision")

	return cmd
}

func sectionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [case-id] [section-id]",
		Short: "Show a section's state and content",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.SectionAdapter().Show(context.Background(), args[0], args[1])
		},
	}
}
