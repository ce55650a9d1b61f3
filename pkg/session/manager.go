package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/turing/internal/compiler"
	"github.com/aretw0/turing/internal/logging"
	"github.com/aretw0/turing/internal/runtime"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/ports"
)

// DefaultLockTTL bounds how long a distributed session lock may be held.
const DefaultLockTTL = 30 * time.Second

// compiledProgram is a loader program together with the source it was parsed from.
type compiledProgram struct {
	source string
	rules  *domain.RuleSet
}

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring operations on one session never overlap.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store  ports.SnapshotStore
	loader ports.ProgramLoader
	parser *compiler.Parser

	mu       sync.Mutex                  // Global lock for locks and programs
	locks    map[string]*lockEntry       // Active per-session locks
	programs map[string]compiledProgram // Loader programs by name

	locker    ports.DistributedLocker
	lockTTL   time.Duration
	hooks     domain.MachineHooks
	stepLimit int
	logger    *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLoader lets sessions be created from named programs.
func WithLoader(loader ports.ProgramLoader) Option {
	return func(m *Manager) {
		m.loader = loader
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithHooks registers callbacks on every machine the Manager steps.
func WithHooks(hooks domain.MachineHooks) Option {
	return func(m *Manager) {
		m.hooks = hooks
	}
}

// WithStepLimit bounds Run when the caller does not pass a limit.
func WithStepLimit(limit int) Option {
	return func(m *Manager) {
		m.stepLimit = limit
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.SnapshotStore, opts ...Option) *Manager {
	m := &Manager{
		store:    store,
		parser:   compiler.NewParser(),
		locks:    make(map[string]*lockEntry),
		programs: make(map[string]compiledProgram),
		lockTTL:  DefaultLockTTL,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateRequest describes a new session. Source takes precedence over Program.
type CreateRequest struct {
	Program string `json:"program,omitempty"`
	Source  string `json:"source,omitempty"`
	Input   string `json:"input,omitempty"`
}

// Create parses the program and stores a freshly loaded machine under sessionID,
// replacing any previous session only once the program parsed successfully.
func (m *Manager) Create(ctx context.Context, sessionID string, req CreateRequest) (domain.Snapshot, error) {
	if sessionID == "" {
		return domain.Snapshot{}, fmt.Errorf("sessionID cannot be empty")
	}

	var (
		source string
		rules  *domain.RuleSet
		err    error
	)
	switch {
	case req.Source != "":
		source = req.Source
		rules, err = m.parser.Parse(source)
	case req.Program != "":
		source, rules, err = m.loadProgram(req.Program)
	default:
		err = fmt.Errorf("either program or source is required")
	}
	if err != nil {
		return domain.Snapshot{}, err
	}

	var snap domain.Snapshot
	err = m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		machine := runtime.NewMachine(m.machineOptions(0)...)
		machine.Load(rules, req.Input)
		snap = m.snapshot(machine, req.Program, source)
		return m.store.Save(ctx, sessionID, snap)
	})
	if err != nil {
		return domain.Snapshot{}, err
	}

	m.logger.Info("session created", "session_id", sessionID, "program", req.Program, "rules", rules.Len())
	return snap, nil
}

// Get returns the current snapshot of a session.
func (m *Manager) Get(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		snap, err = m.store.Load(ctx, sessionID)
		return err
	})
	return snap, err
}

// Step executes a single rule on the session's machine.
// The machine is only persisted when the step succeeds.
func (m *Manager) Step(ctx context.Context, sessionID string) (domain.Rule, domain.Snapshot, error) {
	var rule domain.Rule
	var snap domain.Snapshot
	err := m.withMachine(ctx, sessionID, 0, func(ctx context.Context, machine *runtime.Machine, prev domain.Snapshot) error {
		var err error
		rule, err = machine.Step()
		if err != nil {
			snap = prev
			return err
		}
		snap = m.snapshot(machine, prev.Program, prev.Source)
		return m.store.Save(ctx, sessionID, snap)
	})
	return rule, snap, err
}

// Run steps the session's machine until it halts, fails, hits limit (0 uses the
// manager default) or ctx is canceled. Progress made before a failure is persisted.
func (m *Manager) Run(ctx context.Context, sessionID string, limit int) (domain.Snapshot, error) {
	if limit <= 0 {
		limit = m.stepLimit
	}

	var snap domain.Snapshot
	err := m.withMachine(ctx, sessionID, limit, func(ctx context.Context, machine *runtime.Machine, prev domain.Snapshot) error {
		runErr := machine.Run(ctx)
		snap = m.snapshot(machine, prev.Program, prev.Source)
		if snap.Steps != prev.Steps {
			// Persist even after cancellation: the machine is consistent as of its last step.
			if err := m.store.Save(context.WithoutCancel(ctx), sessionID, snap); err != nil {
				return errors.Join(runErr, err)
			}
		}
		return runErr
	})
	return snap, err
}

// Reset reinitializes the session's machine with a new tape input.
func (m *Manager) Reset(ctx context.Context, sessionID string, input string) (domain.Snapshot, error) {
	var snap domain.Snapshot
	err := m.withMachine(ctx, sessionID, 0, func(ctx context.Context, machine *runtime.Machine, prev domain.Snapshot) error {
		machine.Reset(input)
		snap = m.snapshot(machine, prev.Program, prev.Source)
		return m.store.Save(ctx, sessionID, snap)
	})
	return snap, err
}

// Delete removes the session from the store.
// It returns domain.ErrSessionNotFound when there is nothing to remove.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if _, err := m.store.Load(ctx, sessionID); err != nil {
			return err
		}
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Programs lists the programs available to Create by name.
func (m *Manager) Programs() ([]string, error) {
	if m.loader == nil {
		return []string{}, nil
	}
	return m.loader.ListPrograms()
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// withMachine rehydrates the session's machine under the session lock.
func (m *Manager) withMachine(ctx context.Context, sessionID string, limit int, fn func(context.Context, *runtime.Machine, domain.Snapshot) error) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		prev, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}
		rules, err := m.compile(prev.Program, prev.Source)
		if err != nil {
			return fmt.Errorf("stored program for session %s is invalid: %w", sessionID, err)
		}
		machine, err := runtime.Restore(rules, prev, m.machineOptions(limit)...)
		if err != nil {
			return err
		}
		return fn(ctx, machine, prev)
	})
}

// loadProgram fetches a named program from the loader and parses it.
// Parsed loader programs are cached by name; the set is bounded by the loader's catalog.
func (m *Manager) loadProgram(name string) (string, *domain.RuleSet, error) {
	if m.loader == nil {
		return "", nil, fmt.Errorf("%w: no program loader configured", domain.ErrProgramNotFound)
	}
	source, err := m.loader.GetProgram(name)
	if err != nil {
		return "", nil, err
	}
	rules, err := m.compile(name, source)
	if err != nil {
		return "", nil, err
	}

	m.mu.Lock()
	m.programs[name] = compiledProgram{source: source, rules: rules}
	m.mu.Unlock()
	return source, rules, nil
}

// compile returns the cached rules of the named loader program when its source still
// matches, and parses source otherwise. Inline sources are never cached.
func (m *Manager) compile(name, source string) (*domain.RuleSet, error) {
	if name != "" {
		m.mu.Lock()
		cached, ok := m.programs[name]
		m.mu.Unlock()
		if ok && cached.source == source {
			return cached.rules, nil
		}
	}
	return m.parser.Parse(source)
}

func (m *Manager) machineOptions(limit int) []runtime.Option {
	return []runtime.Option{
		runtime.WithHooks(m.hooks),
		runtime.WithLogger(m.logger),
		runtime.WithStepLimit(limit),
	}
}

func (m *Manager) snapshot(machine *runtime.Machine, program, source string) domain.Snapshot {
	snap := machine.Snapshot()
	snap.Program = program
	snap.Source = source
	return snap
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}
