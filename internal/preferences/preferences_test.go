package preferences

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestOpen_MissingFileDefaultsToLight(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs", "preferences.yaml")

	s, err := Open(path, newTestLogger())
	require.NoError(t, err)
	assert.False(t, s.DarkMode())

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "opening must not create the file")
}

func TestSetDarkMode_PersistsYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "preferences.yaml")

	s, err := Open(path, newTestLogger())
	require.NoError(t, err)
	require.NoError(t, s.SetDarkMode(true))
	assert.True(t, s.DarkMode())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "dark_mode: true\n", string(data))

	reopened, err := Open(path, newTestLogger())
	require.NoError(t, err)
	assert.True(t, reopened.DarkMode())
}

func TestToggleDarkMode(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "preferences.yaml"), newTestLogger())
	require.NoError(t, err)

	on, err := s.ToggleDarkMode()
	require.NoError(t, err)
	assert.True(t, on)

	on, err = s.ToggleDarkMode()
	require.NoError(t, err)
	assert.False(t, on)
	assert.False(t, s.DarkMode())
}

func TestOpen_ReadsExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dark_mode: true\nunknown_key: 3\n"), 0o644))

	s, err := Open(path, newTestLogger())
	require.NoError(t, err)
	assert.True(t, s.DarkMode())
}

func TestOpen_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.yaml")
	require.NoError(t, os.WriteFile(path, []byte("dark_mode: [unterminated"), 0o644))

	_, err := Open(path, newTestLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse preferences")
}

func TestSetDarkMode_WriteFailureKeepsValue(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))

	// The parent "directory" is a regular file, so the write cannot succeed.
	s, err := Open(filepath.Join(blocker, "preferences.yaml"), newTestLogger())
	require.NoError(t, err)

	require.Error(t, s.SetDarkMode(true))
	assert.False(t, s.DarkMode())
}

func TestWatch(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "preferences.yaml"), newTestLogger())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	updates := s.Watch(ctx)
	assert.False(t, recv(t, updates))

	require.NoError(t, s.SetDarkMode(true))
	assert.True(t, recv(t, updates))

	_, err = s.ToggleDarkMode()
	require.NoError(t, err)
	assert.False(t, recv(t, updates))

	cancel()
	for range updates {
	}
}

func recv(t *testing.T, ch <-chan bool) bool {
	t.Helper()
	select {
	case v, ok := <-ch:
		require.True(t, ok, "channel closed")
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for value")
		return false
	}
}
