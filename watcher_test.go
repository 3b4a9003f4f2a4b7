package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestContentWatcherReloads(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "content.yaml")
	require.NoError(t, os.WriteFile(path, []byte("words: [one]\npairs: [{left: a, right: b}]\n"), 0o644))

	first, err := LoadContentFile(path)
	require.NoError(t, err)
	src := NewContentSource(first)

	cw, err := NewContentWatcher(path, src, zap.NewNop())
	require.NoError(t, err)
	cw.debounce = 10 * time.Millisecond
	reloads := make(chan error, 8)
	cw.reloaded = func(err error) { reloads <- err }

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- cw.Run(ctx) }()
	defer func() {
		cancel()
		require.NoError(t, <-done)
	}()

	// Unrelated files in the same directory are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o644))

	require.NoError(t, os.WriteFile(path, []byte("words: [two]\npairs: [{left: c, right: d}]\n"), 0o644))
	select {
	case err := <-reloads:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("content was not reloaded")
	}
	assert.Equal(t, []string{"TWO"}, src.Get().Words)

	// An invalid document keeps the previous content.
	require.NoError(t, os.WriteFile(path, []byte("words: []\n"), 0o644))
	select {
	case err := <-reloads:
		require.ErrorIs(t, err, ErrInvalidContent)
	case <-time.After(2 * time.Second):
		t.Fatal("invalid content was not reported")
	}
	assert.Equal(t, []string{"TWO"}, src.Get().Words)
}

func TestNewContentWatcherMissingDir(t *testing.T) {
	_, err := NewContentWatcher(filepath.Join(t.TempDir(), "missing", "content.yaml"), NewContentSource(DefaultContent()), zap.NewNop())
	assert.Error(t, err)
}
