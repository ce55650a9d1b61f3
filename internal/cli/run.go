package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/presentation/tui"
	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/muesli/termenv"
)

// RunOptions configures a single program execution.
type RunOptions struct {
	Program     string
	Input       string
	MaxSteps    int
	Trace       bool
	JSON        bool
	WindowLeft  int
	WindowRight int
}

// RunResult is the JSON summary printed by run --json.
type RunResult struct {
	domain.Snapshot
	Window string `json:"window"`
	Error  string `json:"error,omitempty"`
}

// TraceEvent is one NDJSON line printed by run --json --trace.
type TraceEvent struct {
	Step   int    `json:"step"`
	Rule   string `json:"rule"`
	Line   int    `json:"line,omitempty"`
	State  string `json:"state"`
	Window string `json:"window"`
}

// LoadProgram resolves arg to program text: an existing file path is read from disk,
// anything else is looked up by name in the engine's loader.
func LoadProgram(eng *turing.Engine, arg string) (string, string, error) {
	if info, err := os.Stat(arg); err == nil && !info.IsDir() {
		data, err := os.ReadFile(arg)
		if err != nil {
			return "", "", err
		}
		return arg, string(data), nil
	}
	text, err := eng.Loader().GetProgram(arg)
	if err != nil {
		return "", "", err
	}
	return arg, text, nil
}

// RunProgram compiles and runs a program, writing the trace and the outcome to w.
// An interruption is reported and not treated as a failure.
func RunProgram(ctx context.Context, w io.Writer, eng *turing.Engine, opts RunOptions, logger *slog.Logger) (domain.Snapshot, error) {
	name, text, err := LoadProgram(eng, opts.Program)
	if err != nil {
		return domain.Snapshot{}, err
	}
	rules, err := eng.Compile(text)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%s: %w", name, err)
	}

	out := termenv.NewOutput(w)
	left, right := opts.WindowLeft, opts.WindowRight

	hooks := eng.Hooks()
	var m *runtime.Machine
	if opts.Trace {
		hooks = hooks.Merge(domain.MachineHooks{
			OnStep: func(e domain.StepEvent) {
				if opts.JSON {
					writeJSONLine(w, TraceEvent{
						Step:   e.Step,
						Rule:   e.Rule.String(),
						Line:   e.Rule.Line,
						State:  m.State(),
						Window: m.Window(left, right+1),
					})
					return
				}
				fmt.Fprintln(w, tui.RenderStep(out, e.Step, m.State(), tui.RenderTape(out, m.Window(left, right+1), left)))
			},
		})
	}

	m = runtime.NewMachine(
		runtime.WithLogger(logger.With("program", name)),
		runtime.WithStepLimit(opts.MaxSteps),
		runtime.WithHooks(hooks),
	)
	m.Load(rules, opts.Input)

	if opts.Trace && !opts.JSON {
		fmt.Fprintln(w, tui.RenderStep(out, 0, m.State(), tui.RenderTape(out, m.Window(left, right+1), left)))
	}
	runErr := m.Run(ctx)

	snap := m.Snapshot()
	snap.Program = name

	if opts.JSON {
		res := RunResult{Snapshot: snap, Window: m.Window(left, right+1)}
		if runErr != nil {
			res.Error = runErr.Error()
		}
		writeJSONLine(w, res)
	} else {
		switch {
		case runErr == nil:
			printSystemMessage(w, "Halted in state '%s' after %d steps.", snap.State, snap.Steps)
			fmt.Fprintln(w, tui.RenderTape(out, m.Window(left, right+1), left))
		case isInterrupted(runErr):
			printSystemMessage(w, "Interrupted in state '%s' after %d steps.", snap.State, snap.Steps)
			fmt.Fprintln(w, tui.RenderTape(out, m.Window(left, right+1), left))
		}
	}

	if isInterrupted(runErr) {
		return snap, nil
	}
	return snap, runErr
}

func writeJSONLine(w io.Writer, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	fmt.Fprintln(w, string(data))
}

// FormatError renders an error for the terminal. Parse errors keep their position.
func FormatError(err error) string {
	var perr *domain.ParseError
	var nmr *domain.NoMatchingRuleError
	switch {
	case errors.As(err, &perr):
		return "Parse error: " + err.Error()
	case errors.As(err, &nmr):
		return fmt.Sprintf("Machine stopped: no rule for state '%s' and symbol '%c'", nmr.State, nmr.Symbol)
	case errors.Is(err, domain.ErrStepLimitExceeded):
		return "Machine stopped: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}
