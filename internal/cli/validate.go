package cli

import (
	"fmt"
	"io"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/presentation/graph"
	"github.com/aretw0/turing/internal/presentation/tui"
	"github.com/aretw0/turing/internal/validator"
	"github.com/aretw0/turing/pkg/domain"
)

// Report summarizes a successfully parsed program.
type Report struct {
	Program  string   `json:"program"`
	Rules    int      `json:"rules"`
	States   []string `json:"states"`
	Halting  []string `json:"halting"`
	Wildcard int      `json:"wildcard_rules"`

	Analysis validator.Analysis `json:"analysis"`
}

// Validate parses a program without running it.
func Validate(eng *turing.Engine, arg string) (Report, error) {
	name, text, err := LoadProgram(eng, arg)
	if err != nil {
		return Report{}, err
	}
	rules, err := eng.Compile(text)
	if err != nil {
		return Report{}, err
	}

	report := Report{
		Program:  name,
		Rules:    rules.Len(),
		States:   rules.States(),
		Analysis: validator.Analyze(rules),
	}
	for _, s := range report.States {
		if domain.IsHaltState(s) {
			report.Halting = append(report.Halting, s)
		}
	}
	rules.Each(func(r domain.Rule) bool {
		if r.IsWildcard() {
			report.Wildcard++
		}
		return true
	})
	return report, nil
}

// PrintReport writes a human readable validation report.
func PrintReport(w io.Writer, r Report) {
	fmt.Fprintf(w, "%s: %d rules, %d states (%d wildcard rules)\n", r.Program, r.Rules, len(r.States), r.Wildcard)
	if !r.Analysis.HaltReachable {
		fmt.Fprintln(w, "warning: no halting state is reachable from state "+domain.InitialState)
	}
	for _, s := range r.Analysis.Unreachable {
		fmt.Fprintf(w, "warning: state %q is never entered\n", s)
	}
	for _, s := range r.Analysis.DeadEnds {
		fmt.Fprintf(w, "warning: state %q has no rules; entering it stops the machine with an error\n", s)
	}
	fmt.Fprintln(w, "Program is valid! ✅")
}

// Output formats accepted by InspectFormat.
const (
	FormatTable   = "table"
	FormatMermaid = "mermaid"
)

// Inspect renders the rule table of a program. Style "" picks glamour's automatic style;
// raw returns the markdown source.
func Inspect(eng *turing.Engine, arg, style string, raw bool) (string, error) {
	return InspectFormat(eng, arg, FormatTable, style, raw)
}

// InspectFormat renders a program as a rule table (FormatTable) or as a Mermaid state
// diagram (FormatMermaid). The diagram is always returned as source.
func InspectFormat(eng *turing.Engine, arg, format, style string, raw bool) (string, error) {
	name, text, err := LoadProgram(eng, arg)
	if err != nil {
		return "", err
	}
	rules, err := eng.Compile(text)
	if err != nil {
		return "", err
	}
	switch format {
	case FormatTable, "":
	case FormatMermaid:
		return graph.GenerateMermaid(rules, nil), nil
	default:
		return "", fmt.Errorf("unknown format %q (want %s or %s)", format, FormatTable, FormatMermaid)
	}
	if raw {
		return tui.RulesMarkdown(name, rules), nil
	}
	return tui.RenderRules(style, name, rules)
}
