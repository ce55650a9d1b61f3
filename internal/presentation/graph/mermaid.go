package graph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/turing/pkg/domain"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	VisitedStates []string
	CurrentState  string
}

// edge groups every rule between the same pair of states under one arrow.
type edge struct {
	from, to string
	labels   []string
}

// GenerateMermaid produces a Mermaid flowchart of the program's state graph.
// It applies semantic styling:
// - Initial state: ((Circle))
// - Halting states: (((Double circle)))
// - Default: [Rectangle]
// Each arrow is labelled with "read/write,move" for every rule it stands for.
// It also applies overlay styles (Visited/Current) if provided.
func GenerateMermaid(rs *domain.RuleSet, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, state := range rs.States() {
		opener, closer := "[", "]"
		switch {
		case state == domain.InitialState:
			opener, closer = "((", "))"
		case domain.IsHaltState(state):
			opener, closer = "(((", ")))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(state), opener, escapeLabel(state), closer)
	}

	for _, e := range edges(rs) {
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n",
			sanitizeMermaidID(e.from), strings.Join(e.labels, " <br/> "), sanitizeMermaidID(e.to))
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, state := range overlay.VisitedStates {
			safeID := sanitizeMermaidID(state)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.CurrentState != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentState))
		}
	}

	return sb.String()
}

// edges collapses rules into one edge per (from, to) pair, in first-seen order.
func edges(rs *domain.RuleSet) []*edge {
	var out []*edge
	index := make(map[[2]string]*edge)
	rs.Each(func(r domain.Rule) bool {
		k := [2]string{r.CurrentState, r.NewState}
		e, ok := index[k]
		if !ok {
			e = &edge{from: r.CurrentState, to: r.NewState}
			index[k] = e
			out = append(out, e)
		}
		e.labels = append(e.labels, escapeLabel(fmt.Sprintf("%c/%c,%s", r.CurrentSymbol, r.NewSymbol, r.Direction.Token())))
		return true
	})
	for _, e := range out {
		sort.Strings(e.labels)
	}
	return out
}

// sanitizeMermaidID maps a state name to a Mermaid-safe identifier. State names may be
// any non-space text, so characters outside [A-Za-z0-9_] are hex-escaped and a prefix
// keeps IDs from colliding with Mermaid keywords such as "end".
func sanitizeMermaidID(id string) string {
	var b strings.Builder
	b.WriteString("s_")
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '_':
			b.WriteString("__")
		default:
			fmt.Fprintf(&b, "_%x", r)
		}
	}
	return b.String()
}

// escapeLabel replaces characters that would end a quoted Mermaid label.
func escapeLabel(s string) string {
	return strings.ReplaceAll(s, "\"", "#quot;")
}
