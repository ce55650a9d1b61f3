package tui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func asciiOutput() *termenv.Output {
	return termenv.NewOutput(&bytes.Buffer{}, termenv.WithProfile(termenv.Ascii))
}

func TestRenderTape(t *testing.T) {
	out := asciiOutput()
	assert.Equal(t, "10[1]1_", RenderTape(out, "1011_", 2))
	assert.Equal(t, "[é]ü", RenderTape(out, "éü", 0))
	assert.Equal(t, "abc", RenderTape(out, "abc", 5))
}

func TestRenderStep(t *testing.T) {
	line := RenderStep(asciiOutput(), 42, "halt", "[1]0")
	assert.Equal(t, "    42  halt          [1]0", line)
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf)
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Len(t, lines, 6)
	assert.NotContains(t, buf.String(), "\x1b[", "plain writers get no escape codes")
}

func TestRulesMarkdown(t *testing.T) {
	rs, err := domain.NewRuleSet(
		domain.Rule{CurrentState: "0", CurrentSymbol: '*', NewSymbol: '|', Direction: domain.Right, NewState: "halt", Line: 3},
	)
	require.NoError(t, err)

	md := RulesMarkdown("demo", rs)
	assert.Contains(t, md, "# demo")
	assert.Contains(t, md, "1 rules, 2 states")
	assert.Contains(t, md, "| 3 | `0` | `*` | `\\|` | right | `halt` |")
}

func TestRenderRules(t *testing.T) {
	rs, err := domain.NewRuleSet(
		domain.Rule{CurrentState: "scan", CurrentSymbol: '1', NewSymbol: '0', Direction: domain.Left, NewState: "halt", Line: 1},
	)
	require.NoError(t, err)

	rendered, err := RenderRules("notty", "", rs)
	require.NoError(t, err)
	assert.Contains(t, rendered, "scan")
	assert.Contains(t, rendered, "left")
}
