package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/draftwizard/internal/runtime"
	"github.com/aretw0/draftwizard/pkg/domain"
)

// GenerateMermaid produces a Mermaid flowchart of a wizard flow. Forward
// edges are solid when the gate of their source step is open for d and
// dashed when it is closed. With a draft, steps before the cursor are styled
// visited and the cursor step current.
func GenerateMermaid(f runtime.Flow, d *domain.CampaignDraft) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	for n := 1; n <= f.Steps; n++ {
		opener, closer := "[", "]"
		switch n {
		case 1:
			opener, closer = "((", "))" // entry
		case f.Steps:
			opener, closer = "[[", "]]" // last step
		}
		fmt.Fprintf(&sb, "    %s%s\"%d. %s\"%s\n", nodeID(f, n), opener, n, escape(f.Title(n)), closer)
	}

	for n := 1; n < f.Steps; n++ {
		arrow := "-->"
		if d != nil && !f.Gate(d, n) {
			arrow = "-. \"blocked\" .->"
		}
		fmt.Fprintf(&sb, "    %s %s %s\n", nodeID(f, n), arrow, nodeID(f, n+1))
	}

	if d != nil {
		cur := *f.Cursor(d)
		sb.WriteString("\n    %% Overlay Styles\n")
		// Black text keeps the overlay readable on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		for n := 1; n < cur && n <= f.Steps; n++ {
			fmt.Fprintf(&sb, "    class %s visited;\n", nodeID(f, n))
		}
		if cur >= 1 && cur <= f.Steps {
			fmt.Fprintf(&sb, "    class %s current;\n", nodeID(f, cur))
		}
	}

	return sb.String()
}

func nodeID(f runtime.Flow, n int) string {
	return fmt.Sprintf("%s_%d", sanitizeMermaidID(f.Name), n)
}

func escape(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
