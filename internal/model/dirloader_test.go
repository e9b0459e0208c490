package model

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/voyago-ai/voyago/internal/errors"
)

// modelDir creates a directory with the required model files.
func modelDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range requiredModelFiles {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
	}
	return dir
}

func TestDirLoaderMissingDirectory(t *testing.T) {
	l := &DirLoader{}

	_, err := l.Load(context.Background(), filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeModelNotFound))
}

func TestDirLoaderRejectsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.bin")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0644))

	l := &DirLoader{}
	_, err := l.Load(context.Background(), path)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeModelNotFound))
}

func TestDirLoaderMissingRequiredFile(t *testing.T) {
	dir := modelDir(t)
	require.NoError(t, os.Remove(filepath.Join(dir, "tokenizer.model")))

	l := &DirLoader{}
	_, err := l.Load(context.Background(), dir)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeModelNotFound))
	assert.Contains(t, err.Error(), "tokenizer.model")
}

func TestDirLoaderNoRuntime(t *testing.T) {
	l := &DirLoader{}

	_, err := l.Load(context.Background(), modelDir(t))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeModelInitFailed))
}

func TestDirLoaderOpensValidatedDirectory(t *testing.T) {
	dir := modelDir(t)
	engine := &fakeEngine{response: "ok"}

	var opened string
	l := &DirLoader{
		Open: func(ctx context.Context, d string) (Engine, error) {
			opened = d
			return engine, nil
		},
	}

	got, err := l.Load(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, dir, opened)
	assert.Equal(t, Engine(engine), got)
}

func TestDirLoaderWrapsRuntimeError(t *testing.T) {
	runtimeErr := errors.New("weights corrupt")
	l := &DirLoader{
		Open: func(ctx context.Context, d string) (Engine, error) {
			return nil, runtimeErr
		},
	}

	_, err := l.Load(context.Background(), modelDir(t))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeModelInitFailed))
	assert.ErrorIs(t, err, runtimeErr)
}
