package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/turing/examples/programs"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/aretw0/turing/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s SlowStore) Load(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Load(ctx, sessionID)
}

func newManager(opts ...session.Option) *session.Manager {
	opts = append([]session.Option{session.WithLoader(memory.NewLoader(programs.All()))}, opts...)
	return session.NewManager(memory.NewStore(), opts...)
}

func TestManager_CreateAndRun(t *testing.T) {
	mgr := newManager()
	ctx := context.Background()

	snap, err := mgr.Create(ctx, "add", session.CreateRequest{Program: "binaryaddition", Input: "110110_101011"})
	require.NoError(t, err)
	assert.Equal(t, domain.InitialState, snap.State)
	assert.Equal(t, "110110_101011", snap.Tape)
	assert.Equal(t, "binaryaddition", snap.Program)
	assert.NotEmpty(t, snap.Source)

	snap, err = mgr.Run(ctx, "add", 0)
	require.NoError(t, err)
	assert.True(t, snap.Halted)
	assert.Equal(t, "halt", snap.State)

	stored, err := mgr.Get(ctx, "add")
	require.NoError(t, err)
	assert.Equal(t, snap, stored)
	assert.Equal(t, "1100001", stored.Tape[stored.Head:stored.Head+7])
}

func TestManager_StepPersists(t *testing.T) {
	mgr := newManager()
	ctx := context.Background()

	_, err := mgr.Create(ctx, "s", session.CreateRequest{Source: "0 a b r 1\n1 _ c s halt", Input: "a"})
	require.NoError(t, err)

	rule, snap, err := mgr.Step(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 1, rule.Line)
	assert.Equal(t, 1, snap.Steps)
	assert.Equal(t, "1", snap.State)

	_, snap, err = mgr.Step(ctx, "s")
	require.NoError(t, err)
	assert.True(t, snap.Halted)

	_, snap, err = mgr.Step(ctx, "s")
	assert.ErrorIs(t, err, domain.ErrAlreadyHalted)
	assert.Equal(t, 2, snap.Steps)
}

func TestManager_ParseErrorKeepsExistingSession(t *testing.T) {
	mgr := newManager()
	ctx := context.Background()

	before, err := mgr.Create(ctx, "s", session.CreateRequest{Program: "palindrome", Input: "11"})
	require.NoError(t, err)

	_, err = mgr.Create(ctx, "s", session.CreateRequest{Source: "0 a b r 1\n0 a c l 1"})
	var perr *domain.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)

	after, err := mgr.Get(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestManager_RunPersistsProgressOnFailure(t *testing.T) {
	mgr := newManager()
	ctx := context.Background()

	_, err := mgr.Create(ctx, "s", session.CreateRequest{Source: "0 1 1 r 0", Input: "111x"})
	require.NoError(t, err)

	snap, err := mgr.Run(ctx, "s", 0)
	var nmr *domain.NoMatchingRuleError
	require.True(t, errors.As(err, &nmr))
	assert.Equal(t, 'x', nmr.Symbol)
	assert.Equal(t, 3, snap.Steps)

	stored, err := mgr.Get(ctx, "s")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.Steps)
}

func TestManager_RunStepLimit(t *testing.T) {
	mgr := newManager(session.WithStepLimit(50))
	ctx := context.Background()

	_, err := mgr.Create(ctx, "loop", session.CreateRequest{Source: "0 * * r 0"})
	require.NoError(t, err)

	snap, err := mgr.Run(ctx, "loop", 0)
	assert.ErrorIs(t, err, domain.ErrStepLimitExceeded)
	assert.Equal(t, 50, snap.Steps)

	snap, err = mgr.Run(ctx, "loop", 10)
	assert.ErrorIs(t, err, domain.ErrStepLimitExceeded)
	assert.Equal(t, 60, snap.Steps)
}

func TestManager_Reset(t *testing.T) {
	mgr := newManager()
	ctx := context.Background()

	_, err := mgr.Create(ctx, "p", session.CreateRequest{Program: "palindrome", Input: "01"})
	require.NoError(t, err)
	_, err = mgr.Run(ctx, "p", 0)
	require.NoError(t, err)

	snap, err := mgr.Reset(ctx, "p", "0110")
	require.NoError(t, err)
	assert.Equal(t, domain.InitialState, snap.State)
	assert.Equal(t, 0, snap.Steps)
	assert.Equal(t, "0110", snap.Tape)

	snap, err = mgr.Run(ctx, "p", 0)
	require.NoError(t, err)
	assert.Equal(t, "halt-accept", snap.State)
}

func TestManager_Errors(t *testing.T) {
	mgr := newManager()
	ctx := context.Background()

	_, err := mgr.Get(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, _, err = mgr.Step(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = mgr.Create(ctx, "x", session.CreateRequest{Program: "nope"})
	assert.ErrorIs(t, err, domain.ErrProgramNotFound)

	_, err = mgr.Create(ctx, "x", session.CreateRequest{})
	assert.Error(t, err)

	_, err = mgr.Create(ctx, "", session.CreateRequest{Source: "0 * * s halt"})
	assert.Error(t, err)
}

func TestManager_Hooks(t *testing.T) {
	var steps int
	mgr := newManager(session.WithHooks(domain.MachineHooks{
		OnStateChanged: func(domain.StateChangedEvent) { steps++ },
	}))
	ctx := context.Background()

	_, err := mgr.Create(ctx, "h", session.CreateRequest{Program: "palindrome", Input: "0"})
	require.NoError(t, err)
	assert.Equal(t, 0, steps)

	snap, err := mgr.Run(ctx, "h", 0)
	require.NoError(t, err)
	assert.Equal(t, snap.Steps, steps)
}

func TestManager_ConcurrentStepsAreSerialized(t *testing.T) {
	mgr := session.NewManager(SlowStore{memory.NewStore()})
	ctx := context.Background()
	id := "race-test"

	_, err := mgr.Create(ctx, id, session.CreateRequest{Source: "0 * 1 r 0"})
	require.NoError(t, err)

	const workers = 20
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := mgr.Step(ctx, id)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	snap, err := mgr.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, workers, snap.Steps, "lost updates indicate unserialized access")
	assert.Equal(t, workers, snap.Head)
}

func TestManager_Programs(t *testing.T) {
	names, err := newManager().Programs()
	require.NoError(t, err)
	assert.Equal(t, programs.Names(), names)

	names, err = session.NewManager(memory.NewStore()).Programs()
	require.NoError(t, err)
	assert.Empty(t, names)
}
