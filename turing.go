package turing

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/turing/examples/programs"
	"github.com/aretw0/turing/internal/compiler"
	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/adapters/file"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/ports"
)

// Engine is the high-level entry point of the library.
// It resolves programs through a loader, compiles them and hands out ready-to-run machines.
type Engine struct {
	loader    ports.ProgramLoader
	parser    *compiler.Parser
	hooks     domain.MachineHooks
	stepLimit int
	logger    *slog.Logger
	Name      string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLoader injects a custom ProgramLoader, bypassing the default directory loader.
func WithLoader(l ports.ProgramLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithHooks registers callbacks fired by every machine the Engine opens.
func WithHooks(hooks domain.MachineHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithStepLimit bounds Run on every machine the Engine opens. Zero means unbounded.
func WithStepLimit(limit int) Option {
	return func(e *Engine) {
		e.stepLimit = limit
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// New initializes an Engine.
// Programs are read from programsDir; when it is empty and no loader is injected, the
// bundled example programs are used.
func New(programsDir string, opts ...Option) (*Engine, error) {
	eng := &Engine{parser: compiler.NewParser()}

	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil {
		if programsDir == "" {
			eng.loader = memory.NewLoader(programs.All())
			eng.Name = "examples"
		} else {
			absPath, err := filepath.Abs(programsDir)
			if err != nil {
				return nil, fmt.Errorf("invalid path: %w", err)
			}
			eng.loader = file.NewLoader(absPath)
			eng.Name = filepath.Base(absPath)
		}
	} else if programsDir != "" {
		eng.Name = filepath.Base(programsDir)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("library", eng.Name)
	}

	return eng, nil
}

// Loader returns the program loader in use.
func (e *Engine) Loader() ports.ProgramLoader {
	return e.loader
}

// Hooks returns the callbacks registered with WithHooks.
func (e *Engine) Hooks() domain.MachineHooks {
	return e.hooks
}

// Compile parses program text without loading it anywhere.
func (e *Engine) Compile(text string) (*domain.RuleSet, error) {
	return e.parser.Parse(text)
}

// Programs lists the programs the loader can open.
func (e *Engine) Programs() ([]string, error) {
	return e.loader.ListPrograms()
}

// Open compiles the named program and returns a machine loaded with input.
// The context is accepted for loaders that perform I/O.
func (e *Engine) Open(ctx context.Context, name, input string) (*runtime.Machine, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text, err := e.loader.GetProgram(name)
	if err != nil {
		return nil, err
	}
	rules, err := e.Compile(text)
	if err != nil {
		return nil, fmt.Errorf("program %s: %w", name, err)
	}
	return e.load(rules, input, "program", name), nil
}

// NewMachine returns a machine loaded with an already compiled program.
func (e *Engine) NewMachine(rules *domain.RuleSet, input string) *runtime.Machine {
	return e.load(rules, input)
}

// Execute compiles text, runs it on input until it halts and returns the final snapshot.
// On failure the snapshot reflects the machine as of its last completed step.
func (e *Engine) Execute(ctx context.Context, text, input string) (domain.Snapshot, error) {
	rules, err := e.Compile(text)
	if err != nil {
		return domain.Snapshot{}, err
	}
	m := e.load(rules, input)
	err = m.Run(ctx)
	return m.Snapshot(), err
}

func (e *Engine) load(rules *domain.RuleSet, input string, logAttrs ...any) *runtime.Machine {
	logger := e.logger
	if len(logAttrs) > 0 {
		logger = logger.With(logAttrs...)
	}
	m := runtime.NewMachine(
		runtime.WithHooks(e.hooks),
		runtime.WithLogger(logger),
		runtime.WithStepLimit(e.stepLimit),
	)
	m.Load(rules, input)
	return m
}
