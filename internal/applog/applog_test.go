package applog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileWritesUnderLogDir(t *testing.T) {
	dir := t.TempDir()
	logger, err := NewFile("INFO", dir, 10)
	require.NoError(t, err)

	logger.Info().Msg("hello")

	matches, err := filepath.Glob(filepath.Join(dir, "podrelay-*.log"))
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestNewFilePrunesOldestBeyondMaxCount(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 3; i++ {
		name := filepath.Join(dir, "podrelay-2020010"+string(rune('1'+i))+"-000000.log")
		require.NoError(t, os.WriteFile(name, []byte("old"), 0o644))
		time.Sleep(time.Millisecond)
	}

	_, err := NewFile("INFO", dir, 2)
	require.NoError(t, err)

	matches, err := filepath.Glob(filepath.Join(dir, "podrelay-*.log"))
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestFromContextReturnsAttachedLogger(t *testing.T) {
	logger := New("INFO", false)
	ctx := WithContext(t.Context(), logger)
	got := FromContext(ctx)
	assert.NotNil(t, got)
}
