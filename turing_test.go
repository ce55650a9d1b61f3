package turing_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/pkg/adapters/memory"
	"github.com/aretw0/turing/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_BundledPrograms(t *testing.T) {
	eng, err := turing.New("")
	require.NoError(t, err)
	assert.Equal(t, "examples", eng.Name)

	names, err := eng.Programs()
	require.NoError(t, err)
	assert.Equal(t, []string{"binaryaddition", "palindrome"}, names)

	m, err := eng.Open(context.Background(), "palindrome", "10101")
	require.NoError(t, err)
	require.NoError(t, m.Run(context.Background()))
	assert.Equal(t, "halt-accept", m.State())
}

func TestNew_Directory(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "flip.tm"), []byte("0 0 1 r 0\n0 1 0 r 0\n0 _ _ l halt\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.tm"), []byte("0 0 1 r 0\n0 0 1 x 0\n"), 0o644))

	eng, err := turing.New(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Base(dir), eng.Name)

	m, err := eng.Open(context.Background(), "flip", "0110")
	require.NoError(t, err)
	require.NoError(t, m.Run(context.Background()))
	assert.Equal(t, "1001", m.Window(3, 1))

	_, err = eng.Open(context.Background(), "broken", "")
	var perr *domain.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, 2, perr.Line)
	assert.Equal(t, domain.MsgInvalidDir, perr.Message)

	_, err = eng.Open(context.Background(), "missing", "")
	assert.ErrorIs(t, err, domain.ErrProgramNotFound)
}

func TestEngine_Execute(t *testing.T) {
	var states []string
	eng, err := turing.New("",
		turing.WithLoader(memory.NewLoader(nil)),
		turing.WithHooks(domain.MachineHooks{
			OnStateChanged: func(e domain.StateChangedEvent) { states = append(states, e.NewState) },
		}),
	)
	require.NoError(t, err)

	snap, err := eng.Execute(context.Background(), "0 a b r 1\n1 * * s halt", "a")
	require.NoError(t, err)
	assert.True(t, snap.Halted)
	assert.Equal(t, 2, snap.Steps)
	assert.Equal(t, []string{"1", "halt"}, states)

	_, err = eng.Execute(context.Background(), "0 a", "")
	var perr *domain.ParseError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, domain.MsgNotEnoughFields, perr.Message)
}

func TestEngine_StepLimit(t *testing.T) {
	eng, err := turing.New("", turing.WithStepLimit(100))
	require.NoError(t, err)

	snap, err := eng.Execute(context.Background(), "0 * * r 0", "")
	assert.ErrorIs(t, err, domain.ErrStepLimitExceeded)
	assert.Equal(t, 100, snap.Steps)
}

func TestEngine_OpenCanceled(t *testing.T) {
	eng, err := turing.New("")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = eng.Open(ctx, "palindrome", "")
	assert.ErrorIs(t, err, context.Canceled)
}
