package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/turing/examples/programs"
	"github.com/aretw0/turing/internal/compiler"
	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/tape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustParse(t *testing.T, src string) *domain.RuleSet {
	t.Helper()
	rs, err := compiler.NewParser().Parse(src)
	require.NoError(t, err)
	return rs
}

func bundled(t *testing.T, name string) *domain.RuleSet {
	t.Helper()
	src, ok := programs.Source(name)
	require.True(t, ok, "missing bundled program %s", name)
	return mustParse(t, src)
}

func TestMachine_BinaryAddition(t *testing.T) {
	m := runtime.NewMachine()
	m.Load(bundled(t, "binaryaddition"), "110110_101011")

	require.NoError(t, m.Run(context.Background()))
	assert.True(t, m.Halted())
	assert.Equal(t, "halt", m.State())
	assert.Equal(t, "1100001", m.Window(0, 7))

	tests := []struct {
		input string
		want  string
	}{
		{"110110_101010", "1100000"},
		{"110_010", "1000"},
		{"1_1", "10"},
		{"1_1111", "10000"},
	}
	for _, tt := range tests {
		m.Reset(tt.input)
		require.NoError(t, m.Run(context.Background()), tt.input)
		assert.Equal(t, tt.want, m.Window(0, len(tt.want)), tt.input)
	}
}

func TestMachine_PalindromeDetector(t *testing.T) {
	m := runtime.NewMachine()
	m.Load(bundled(t, "palindrome"), "")

	accepted := []string{"", "1001001", "1", "11", "000", "010", "0110", "01010", "1110111"}
	rejected := []string{"1001011", "01", "10", "001", "100", "0101", "01111", "0001010"}

	for _, input := range accepted {
		m.Reset(input)
		require.NoError(t, m.Run(context.Background()), input)
		assert.Equal(t, "halt-accept", m.State(), input)
		assert.Equal(t, ":)", m.Window(1, 1), "expected success with %q", input)
	}
	for _, input := range rejected {
		m.Reset(input)
		require.NoError(t, m.Run(context.Background()), input)
		assert.Equal(t, "halt-reject", m.State(), input)
		assert.Equal(t, ":(", m.Window(1, 1), "expected failure with %q", input)
	}
}

func TestMachine_EmptyProgram(t *testing.T) {
	m := runtime.NewMachine()
	m.Load(&domain.RuleSet{}, "")

	_, err := m.Step()
	var nmr *domain.NoMatchingRuleError
	require.True(t, errors.As(err, &nmr))
	assert.Equal(t, domain.InitialState, nmr.State)
	assert.Equal(t, tape.Blank, nmr.Symbol)
	assert.ErrorIs(t, err, domain.ErrNoMatchingRule)

	err = m.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoMatchingRule)
	assert.Equal(t, 0, m.Steps())
	assert.False(t, m.Halted())
}

func TestMachine_NoProgramLoaded(t *testing.T) {
	m := runtime.NewMachine()
	_, err := m.Step()
	assert.ErrorIs(t, err, domain.ErrNoMatchingRule)
}

func TestMachine_NoMatchingRuleCarriesSymbol(t *testing.T) {
	m := runtime.NewMachine()
	m.Load(mustParse(t, "0 a b r 1"), "ax")

	_, err := m.Step()
	require.NoError(t, err)

	_, err = m.Step()
	var nmr *domain.NoMatchingRuleError
	require.True(t, errors.As(err, &nmr))
	assert.Equal(t, "1", nmr.State)
	assert.Equal(t, 'x', nmr.Symbol)
	assert.Equal(t, 1, m.Steps())
}

func TestMachine_AlreadyHalted(t *testing.T) {
	m := runtime.NewMachine()
	m.Load(mustParse(t, "0 * * s halt"), "")

	_, err := m.Step()
	require.NoError(t, err)
	assert.True(t, m.Halted())

	_, err = m.Step()
	assert.ErrorIs(t, err, domain.ErrAlreadyHalted)
	assert.Equal(t, 1, m.Steps())

	assert.NoError(t, m.Run(context.Background()), "Run on a halted machine has nothing to do")
}

func TestMachine_SelectNextRule(t *testing.T) {
	// The wildcard rule comes first so precedence cannot come from order.
	rs := mustParse(t, "0 * w r 1\n0 a e r 2\n1 * * s halt")
	m := runtime.NewMachine()

	m.Load(rs, "a")
	rule, ok := m.SelectNextRule()
	require.True(t, ok)
	assert.Equal(t, 'a', rule.CurrentSymbol)
	assert.Equal(t, 2, rule.Line)

	for i := 0; i < 3; i++ {
		again, _ := m.SelectNextRule()
		assert.Equal(t, rule, again, "selection must be deterministic")
	}

	m.Reset("b")
	rule, ok = m.SelectNextRule()
	require.True(t, ok)
	assert.True(t, rule.IsWildcard())

	executed, err := m.Step()
	require.NoError(t, err)
	assert.Equal(t, rule, executed)
	assert.Equal(t, "w", m.Window(1, 0))
}

func TestMachine_WildcardWriteKeepsSymbol(t *testing.T) {
	m := runtime.NewMachine()
	m.Load(mustParse(t, "0 * * r 0\n0 _ _ l halt"), "xyz")
	require.NoError(t, m.Run(context.Background()))
	assert.Equal(t, "xyz", m.Window(2, 1))
	assert.Equal(t, 4, m.Steps())
}

func TestMachine_Hooks(t *testing.T) {
	var states []domain.StateChangedEvent
	var tapes []domain.TapeChangedEvent
	var steps []string
	var m *runtime.Machine
	hooks := domain.MachineHooks{
		OnStateChanged: func(e domain.StateChangedEvent) { states = append(states, e) },
		OnTapeChanged:  func(e domain.TapeChangedEvent) { tapes = append(tapes, e) },
		OnStep: func(e domain.StepEvent) {
			assert.Equal(t, e.Step, m.Steps())
			steps = append(steps, e.Rule.String())
		},
	}

	m = runtime.NewMachine(runtime.WithHooks(hooks))
	m.Load(mustParse(t, "0 a b r 1\n1 c * s 2\n2 c d l halt"), "ac")
	assert.Empty(t, states, "load must not notify")

	require.NoError(t, m.Run(context.Background()))

	assert.Equal(t, []domain.StateChangedEvent{
		{OldState: "0", NewState: "1", Step: 1},
		{OldState: "1", NewState: "2", Step: 2},
		{OldState: "2", NewState: "halt", Step: 3},
	}, states)
	assert.Equal(t, []domain.TapeChangedEvent{
		{OldSymbol: 'c', NewSymbol: 'b', Direction: domain.Right, Step: 1},
		{OldSymbol: 'c', NewSymbol: domain.Wildcard, Direction: domain.Still, Step: 2},
		{OldSymbol: 'b', NewSymbol: 'd', Direction: domain.Left, Step: 3},
	}, tapes)
	assert.Equal(t, []string{"0 a b r 1", "1 c * s 2", "2 c d l halt"}, steps)

	m.Reset("ac")
	assert.Len(t, states, 3, "reset must not notify")
	assert.Len(t, tapes, 3, "reset must not notify")
	assert.Equal(t, 0, m.Steps())
	assert.Equal(t, domain.InitialState, m.State())
}

func TestMachine_ResetTape(t *testing.T) {
	m := runtime.NewMachine()
	m.Load(mustParse(t, "0 * 1 r 0"), "")
	assert.Equal(t, tape.InitialSize, m.Tape().Len())

	m.Reset("0101")
	assert.Equal(t, "0101", m.Tape().String())
	assert.Equal(t, 0, m.Tape().Head())
}

func TestMachine_RunCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stopAt := 25

	var m *runtime.Machine
	hooks := domain.MachineHooks{
		OnTapeChanged: func(e domain.TapeChangedEvent) {
			if e.Step == stopAt {
				cancel()
			}
		},
	}
	m = runtime.NewMachine(runtime.WithHooks(hooks))
	// Never halts: keeps writing 1s to the right.
	m.Load(mustParse(t, "0 * 1 r 0"), "")

	err := m.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, stopAt, m.Steps())
	assert.Equal(t, "0", m.State())
	assert.Equal(t, stopAt, m.Tape().Head())
	assert.Equal(t, "11111", m.Window(5, 0))
}

func TestMachine_StepLimit(t *testing.T) {
	m := runtime.NewMachine(runtime.WithStepLimit(10))
	m.Load(mustParse(t, "0 * * l 0"), "")

	err := m.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrStepLimitExceeded)
	assert.Equal(t, 10, m.Steps())
}

func TestRestore(t *testing.T) {
	rs := bundled(t, "binaryaddition")
	m := runtime.NewMachine()
	m.Load(rs, "110_010")
	for i := 0; i < 7; i++ {
		_, err := m.Step()
		require.NoError(t, err)
	}

	restored, err := runtime.Restore(rs, m.Snapshot())
	require.NoError(t, err)
	assert.Equal(t, m.Snapshot(), restored.Snapshot())

	require.NoError(t, m.Run(context.Background()))
	require.NoError(t, restored.Run(context.Background()))
	assert.Equal(t, "1000", restored.Window(0, 4))
	assert.Equal(t, m.Steps(), restored.Steps())

	_, err = runtime.Restore(rs, domain.Snapshot{Tape: "01", Head: 7})
	assert.Error(t, err)
}
