package cli

import (
	"bytes"
	"context"
	stdjson "encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/draftwizard/internal/presentation/graph"
	"github.com/aretw0/draftwizard/internal/presentation/tui"
	"github.com/aretw0/draftwizard/internal/runtime"
	"github.com/aretw0/draftwizard/pkg/domain"
	"github.com/aretw0/draftwizard/pkg/onboarding"
	"github.com/aretw0/draftwizard/pkg/persistence"
	"github.com/aretw0/draftwizard/pkg/persistence/middleware"
	"github.com/aretw0/draftwizard/pkg/validation"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by Inspect.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// ListDrafts prints the ids of every stored draft.
func ListDrafts(ctx context.Context, w io.Writer, ctrl *persistence.Controller) error {
	ids, err := ctrl.List(ctx)
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Fprintln(w, "No drafts found.")
		return nil
	}
	fmt.Fprintln(w, "Drafts:")
	for _, id := range ids {
		fmt.Fprintln(w, "- "+id)
	}
	return nil
}

// RemoveDrafts deletes each id and reports it. It keeps going after a
// failure and returns all errors joined.
func RemoveDrafts(ctx context.Context, w io.Writer, ctrl *persistence.Controller, ids []string) error {
	var errs []error
	for _, id := range ids {
		if err := ctrl.Delete(ctx, id); err != nil {
			fmt.Fprintf(w, "Error removing '%s': %v\n", id, err)
			errs = append(errs, err)
			continue
		}
		fmt.Fprintf(w, "Removed draft '%s'\n", id)
	}
	return errors.Join(errs...)
}

// Inspect writes the stored record of d in the given format. With redact,
// identifying fields are masked first.
func Inspect(w io.Writer, d *domain.CampaignDraft, format string, redact bool) error {
	data, err := domain.Marshal(d)
	if err != nil {
		return err
	}
	if redact {
		if data, err = middleware.Redact(data, middleware.DefaultPIIPatterns); err != nil {
			return err
		}
	}

	switch format {
	case FormatJSON, "":
		var buf bytes.Buffer
		if err := stdjson.Indent(&buf, data, "", "  "); err != nil {
			return err
		}
		buf.WriteByte('\n')
		_, err = w.Write(buf.Bytes())
		return err
	case FormatYAML:
		// Decoding the JSON into a node keeps the field order of the record.
		var node yaml.Node
		if err := yaml.Unmarshal(data, &node); err != nil {
			return err
		}
		blockStyle(&node)
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(&node); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown format %q (want json or yaml)", format)
}

func blockStyle(n *yaml.Node) {
	n.Style = 0
	for _, c := range n.Content {
		blockStyle(c)
	}
}

// Status prints the gate table of d: one line per campaign step and profile
// page with the fields still missing.
func Status(w io.Writer, d *domain.CampaignDraft, p termenv.Profile) {
	open := p.String("✓").Foreground(p.Color("#22c55e"))
	closed := p.String("✗").Foreground(p.Color("#ef4444"))
	dim := func(s string) termenv.Style { return p.String(s).Foreground(p.Color("#9ca3af")) }

	id := d.ID
	if id == "" {
		id = "(unsaved)"
	}
	saved := "never"
	if !d.LastSaved.IsZero() {
		saved = d.LastSaved.Format("2006-01-02 15:04:05")
	}
	fmt.Fprintf(w, "Draft %s  last saved %s\n", p.String(id).Bold(), saved)

	section := func(f runtime.Flow, valid func(int) bool, missing func(int) []string) {
		cur := *f.Cursor(d)
		fmt.Fprintf(w, "\n%s (%d/%d)\n", p.String(strings.ToUpper(f.Name[:1])+f.Name[1:]).Bold(), cur, f.Steps)
		for n := 1; n <= f.Steps; n++ {
			mark := closed
			if valid(n) {
				mark = open
			}
			pointer := "  "
			if n == cur {
				pointer = "▶ "
			}
			line := fmt.Sprintf("%s%s %d. %-12s", pointer, mark, n, f.Title(n))
			if m := missing(n); len(m) > 0 {
				line += " " + dim("missing: "+strings.Join(m, ", ")).String()
			}
			fmt.Fprintln(w, strings.TrimRight(line, " "))
		}
	}

	section(runtime.ProfileFlow,
		func(n int) bool { return validation.IsProfileSubStepValid(d.Profile, n) },
		func(n int) []string { return validation.MissingProfileFields(d.Profile, n) },
	)
	section(runtime.CampaignFlow,
		func(n int) bool { return validation.IsStepValid(d, n) },
		func(n int) []string { return validation.MissingFields(d, n) },
	)

	tracker := onboarding.NewTracker()
	st := tracker.Sync(d)
	fmt.Fprintf(w, "\nOnboarding %d%% (next: %s)\n", tracker.OverallProgress(), st.CurrentStep)
	for _, s := range st.Steps {
		mark := closed
		if s.Completed {
			mark = open
		}
		fmt.Fprintf(w, "  %s %-9s %3d%%\n", mark, s.ID, s.Progress)
	}
}

// ReviewMarkdown summarizes d as a markdown document, the way the review
// step presents it before launch.
func ReviewMarkdown(d *domain.CampaignDraft) string {
	var sb strings.Builder
	p := d.Profile

	title := p.CompanyName
	if title == "" {
		title = "Untitled draft"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	if d.ID != "" {
		fmt.Fprintf(&sb, "Draft `%s`, step %d of %d.\n\n", d.ID, d.CurrentStep, domain.CampaignSteps)
	}

	sb.WriteString("## Company\n\n")
	bullet(&sb, "Org number", p.OrgNumber)
	industry := p.Industry
	if industry == domain.IndustryOther && p.IndustryOther != "" {
		industry = p.IndustryOther
	}
	bullet(&sb, "Industry", industry)
	bullet(&sb, "Areas", strings.Join(p.TargetingAreas, ", "))
	bullet(&sb, "Website", p.Website)
	bullet(&sb, "Goals", strings.Join(p.Goals, ", "))
	if p.AgeRangeMin > 0 || p.AgeRangeMax > 0 {
		bullet(&sb, "Ages", fmt.Sprintf("%d-%d", p.AgeRangeMin, p.AgeRangeMax))
	}
	bullet(&sb, "Interests", strings.Join(p.Interests, ", "))

	sb.WriteString("\n## Channels\n\n| Channel | Connected | Active |\n|---|---|---|\n")
	for _, name := range []domain.ChannelName{domain.ChannelMeta, domain.ChannelGoogle, domain.ChannelLinkedIn} {
		c := d.Channels.Slot(name)
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", name, yesNo(c.Connected), yesNo(c.ActiveForCampaign))
	}

	sb.WriteString("\n## Ad\n\n")
	if d.Content.Headline != "" {
		fmt.Fprintf(&sb, "**%s**\n\n", d.Content.Headline)
	}
	if d.Content.Description != "" {
		fmt.Fprintf(&sb, "%s\n\n", d.Content.Description)
	}
	bullet(&sb, "Call to action", d.Content.CallToAction)
	if d.Image != nil {
		bullet(&sb, "Image", d.Image.URL)
	}

	sb.WriteString("\n## Budget\n\n")
	if d.Budget.DailyBudget > 0 {
		bullet(&sb, "Daily", fmt.Sprintf("%.0f kr", d.Budget.DailyBudget))
	}
	if d.Budget.StartDate != "" || d.Budget.EndDate != "" {
		bullet(&sb, "Period", d.Budget.StartDate+" to "+d.Budget.EndDate)
	}

	var blocked []string
	for step := 1; step < domain.CampaignSteps; step++ {
		if !validation.IsStepValid(d, step) {
			blocked = append(blocked, fmt.Sprintf("%d. %s", step, runtime.CampaignFlow.Title(step)))
		}
	}
	if len(blocked) > 0 {
		sb.WriteString("\n> Not ready to launch. Incomplete steps: " + strings.Join(blocked, ", ") + "\n")
	}
	return sb.String()
}

// Review renders the review summary of d through render.
func Review(w io.Writer, d *domain.CampaignDraft, render tui.Renderer) error {
	out, err := render(ReviewMarkdown(d))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, out)
	return err
}

// Graph writes the Mermaid diagram of the campaign or profile wizard.
func Graph(w io.Writer, d *domain.CampaignDraft, wizard string) error {
	var f runtime.Flow
	switch wizard {
	case runtime.CampaignFlow.Name, "":
		f = runtime.CampaignFlow
	case runtime.ProfileFlow.Name:
		f = runtime.ProfileFlow
	case runtime.OnboardingFlow.Name:
		f = runtime.OnboardingFlow
	default:
		return fmt.Errorf("unknown wizard %q", wizard)
	}
	_, err := io.WriteString(w, graph.GenerateMermaid(f, d))
	return err
}

func bullet(sb *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(sb, "- **%s:** %s\n", label, value)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
