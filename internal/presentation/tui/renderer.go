package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// An empty style picks dark or light automatically from the terminal background.
func NewRenderer(style string) (func(string) (string, error), error) {
	opt := glamour.WithAutoStyle()
	if style != "" {
		opt = glamour.WithStandardStyle(style)
	}
	r, err := glamour.NewTermRenderer(opt, glamour.WithWordWrap(100))
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}

// RulesMarkdown renders a program as a markdown document: a summary line and one
// table row per rule.
func RulesMarkdown(title string, rs *domain.RuleSet) string {
	var b strings.Builder
	if title != "" {
		fmt.Fprintf(&b, "# %s\n\n", title)
	}
	fmt.Fprintf(&b, "%d rules, %d states\n\n", rs.Len(), len(rs.States()))
	b.WriteString("| Line | State | Read | Write | Move | Next |\n")
	b.WriteString("|---:|---|---|---|---|---|\n")
	rs.Each(func(r domain.Rule) bool {
		fmt.Fprintf(&b, "| %d | %s | %s | %s | %s | %s |\n",
			r.Line,
			code(r.CurrentState),
			code(string(r.CurrentSymbol)),
			code(string(r.NewSymbol)),
			r.Direction,
			code(r.NewState),
		)
		return true
	})
	return b.String()
}

// RenderRules renders the rule table through glamour.
func RenderRules(style, title string, rs *domain.RuleSet) (string, error) {
	render, err := NewRenderer(style)
	if err != nil {
		return "", err
	}
	return render(RulesMarkdown(title, rs))
}

// code wraps text in an inline code span, escaping table pipes.
func code(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	if strings.Contains(s, "`") {
		return "`` " + s + " ``"
	}
	return "`" + s + "`"
}
