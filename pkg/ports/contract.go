package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/turing/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSnapshotStoreContract runs a suite of tests to verify that a SnapshotStore
// implementation adheres to the defined interface contract.
func RunSnapshotStoreContract(t *testing.T, store SnapshotStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		snap := domain.Snapshot{
			Program: "binaryaddition",
			Source:  "0 * * s halt\n",
			State:   "3x",
			Tape:    "__110_10x",
			Head:    4,
			Steps:   17,
		}

		require.NoError(t, store.Save(ctx, sessionID, snap), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, snap, loaded)
	})

	t.Run("Save overwrites", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.Snapshot{State: "halt", Tape: "1", Halted: true}))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "halt", loaded.State)
		assert.True(t, loaded.Halted)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.Snapshot{State: domain.InitialState, Tape: "_"}))

		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.Snapshot{State: domain.InitialState, Tape: "_"})
		_ = store.Save(ctx, id2, domain.Snapshot{State: domain.InitialState, Tape: "_"})

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunProgramLoaderContract verifies that a ProgramLoader serves exactly the given programs.
func RunProgramLoaderContract(t *testing.T, loader ProgramLoader, programs map[string]string) {
	t.Run("GetProgram", func(t *testing.T) {
		for name, want := range programs {
			got, err := loader.GetProgram(name)
			require.NoError(t, err, "program %s", name)
			assert.Equal(t, want, got)
		}
	})

	t.Run("GetProgram Not Found", func(t *testing.T) {
		_, err := loader.GetProgram("non-existent-program")
		assert.ErrorIs(t, err, domain.ErrProgramNotFound)
	})

	t.Run("ListPrograms", func(t *testing.T) {
		names, err := loader.ListPrograms()
		require.NoError(t, err)
		assert.Len(t, names, len(programs))
		assert.IsIncreasing(t, names)
		for name := range programs {
			assert.Contains(t, names, name)
		}
	})
}
