package main

import (
	"fmt"
	"os"

	"github.com/aretw0/draftwizard/internal/cli"
	"github.com/aretw0/draftwizard/internal/presentation/tui"
	"github.com/aretw0/draftwizard/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Inspect and manage persisted drafts",
}

var draftListCmd = &cobra.Command{
	Use:     "ls",
	Aliases: []string{"list"},
	Short:   "List stored drafts",
	Run: func(cmd *cobra.Command, args []string) {
		_, _, wiz := setup(cmd)
		defer wiz.Close()

		if err := cli.ListDrafts(cmd.Context(), os.Stdout, wiz.Controller()); err != nil {
			fmt.Printf("Error listing drafts: %v\n", err)
			os.Exit(1)
		}
	},
}

var draftRemoveCmd = &cobra.Command{
	Use:     "rm [id...]",
	Aliases: []string{"delete"},
	Short:   "Delete one or more drafts",
	Args:    cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		_, _, wiz := setup(cmd)
		defer wiz.Close()

		if err := cli.RemoveDrafts(cmd.Context(), os.Stdout, wiz.Controller(), args); err != nil {
			os.Exit(1)
		}
	},
}

var draftInspectCmd = &cobra.Command{
	Use:   "inspect [id]",
	Short: "Print the stored record of a draft",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		format, _ := cmd.Flags().GetString("output")
		redact, _ := cmd.Flags().GetBool("redact")

		d := loadDraft(cmd, args[0])
		if err := cli.Inspect(os.Stdout, d, format, redact); err != nil {
			fmt.Printf("Error inspecting draft: %v\n", err)
			os.Exit(1)
		}
	},
}

var draftStatusCmd = &cobra.Command{
	Use:   "status [id]",
	Short: "Show which wizard gates are open for a draft",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		d := loadDraft(cmd, args[0])
		cli.Status(os.Stdout, d, termenv.ColorProfile())
	},
}

var draftReviewCmd = &cobra.Command{
	Use:   "review [id]",
	Short: "Render the launch review of a draft",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		d := loadDraft(cmd, args[0])
		if err := cli.Review(os.Stdout, d, tui.ForFile(os.Stdout)); err != nil {
			fmt.Printf("Error rendering review: %v\n", err)
			os.Exit(1)
		}
	},
}

// draftGraphCmd represents the graph command
var draftGraphCmd = &cobra.Command{
	Use:   "graph [id]",
	Short: "Export a wizard as a Mermaid diagram",
	Long: `Outputs a Mermaid diagram (graph LR) of the campaign, profile or onboarding wizard.
With a draft id, closed gates are drawn dashed and the draft's position is highlighted.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		wizard, _ := cmd.Flags().GetString("wizard")

		var d *domain.CampaignDraft
		if len(args) == 1 {
			d = loadDraft(cmd, args[0])
		}
		if err := cli.Graph(os.Stdout, d, wizard); err != nil {
			fmt.Printf("Error generating graph: %v\n", err)
			os.Exit(1)
		}
	},
}

// loadDraft reads a stored draft. Unlike the wizard's own load, a missing or
// unreadable record is reported instead of replaced by a fresh draft.
func loadDraft(cmd *cobra.Command, id string) *domain.CampaignDraft {
	_, _, wiz := setup(cmd)
	defer wiz.Close()

	d, err := wiz.Controller().Get(cmd.Context(), id)
	if err != nil {
		fmt.Printf("Error loading draft '%s': %v\n", id, err)
		os.Exit(1)
	}
	return d
}

func init() {
	rootCmd.AddCommand(draftCmd)
	draftCmd.AddCommand(draftListCmd, draftRemoveCmd, draftInspectCmd, draftStatusCmd, draftReviewCmd, draftGraphCmd)

	draftInspectCmd.Flags().StringP("output", "o", cli.FormatJSON, "Output format: json or yaml")
	draftInspectCmd.Flags().Bool("redact", false, "Mask identifying fields")
	draftGraphCmd.Flags().String("wizard", "campaign", "Wizard to draw: campaign, profile or onboarding")
}
