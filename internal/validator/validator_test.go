package validator

import (
	"testing"

	"github.com/aretw0/turing/internal/compiler"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, text string) Analysis {
	t.Helper()
	rs, err := compiler.NewParser().Parse(text)
	require.NoError(t, err)
	return Analyze(rs)
}

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name    string
		program string
		want    Analysis
	}{
		{
			name: "clean program",
			program: `
0 1 0 r 0
0 0 1 r 0
0 _ _ l halt-done`,
			want: Analysis{Reachable: []string{"0", "halt-done"}, HaltReachable: true},
		},
		{
			name: "unreachable states",
			program: `
0 * * r halt
orphan 1 1 r other
other * * l halt`,
			want: Analysis{
				Reachable:     []string{"0", "halt"},
				Unreachable:   []string{"orphan", "other"},
				HaltReachable: true,
			},
		},
		{
			name: "dead end and no halt",
			program: `
0 1 1 r 0
0 _ _ l stuck`,
			want: Analysis{Reachable: []string{"0", "stuck"}, DeadEnds: []string{"stuck"}},
		},
		{
			name: "rules after a halting state are unreachable",
			program: `
0 * * s halt
halt * * r 0`,
			want: Analysis{Reachable: []string{"0", "halt"}, HaltReachable: true},
		},
		{
			name:    "empty program",
			program: "; nothing here",
			want:    Analysis{Reachable: []string{"0"}, DeadEnds: []string{"0"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, analyze(t, tt.program))
		})
	}
}

func TestAnalysis_Clean(t *testing.T) {
	assert.True(t, analyze(t, "0 * * r halt").Clean())
	assert.False(t, analyze(t, "0 * * r 0").Clean())
	assert.False(t, Analysis{HaltReachable: true, DeadEnds: []string{"x"}}.Clean())
	assert.True(t, Analyze(mustRules(t)).HaltReachable)
}

func mustRules(t *testing.T) *domain.RuleSet {
	rs, err := domain.NewRuleSet(domain.Rule{CurrentState: "0", CurrentSymbol: '*', NewSymbol: '*', Direction: domain.Still, NewState: "halt-x"})
	require.NoError(t, err)
	return rs
}
