package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/presentation/tui"
	tea "github.com/charmbracelet/bubbletea"
)

// NewStepper compiles a program and wraps a machine loaded with input in the
// interactive stepper model.
func NewStepper(eng *turing.Engine, arg, input string, left, right int) (tui.Stepper, error) {
	name, text, err := LoadProgram(eng, arg)
	if err != nil {
		return tui.Stepper{}, err
	}
	rules, err := eng.Compile(text)
	if err != nil {
		return tui.Stepper{}, fmt.Errorf("%s: %w", name, err)
	}
	return tui.NewStepper(eng.NewMachine(rules, input), name, input, left, right), nil
}

// Interactive runs the stepper full screen until the user quits or ctx is cancelled.
func Interactive(ctx context.Context, in io.Reader, out io.Writer, s tui.Stepper) error {
	p := tea.NewProgram(s,
		tea.WithContext(ctx),
		tea.WithInput(in),
		tea.WithOutput(out),
		tea.WithAltScreen(),
	)
	final, err := p.Run()
	if err != nil && !isInterrupted(err) && ctx.Err() == nil {
		return fmt.Errorf("interactive session: %w", err)
	}

	if st, ok := final.(tui.Stepper); ok && st.Err() != nil {
		printSystemMessage(out, "Machine stopped: %v", st.Err())
	}
	return nil
}
