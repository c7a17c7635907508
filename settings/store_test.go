package settings

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_LoadCreatesDirectoryAndDefaultFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", DirName)
	store := NewStore(dir)

	s := store.Load()
	assert.Equal(t, Defaults(), s)
	assert.True(t, store.CanPersist())
	assert.False(t, store.Changed())
	assert.True(t, store.Loaded())
	assert.NoError(t, store.LoadError())

	data, err := os.ReadFile(filepath.Join(dir, FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), `<setting name="resolution" value="800x600"/>`)
	assert.Equal(t, filepath.Join(dir, FileName), store.Path())
}

func TestStore_SettersMarkChanged(t *testing.T) {
	store := NewStore(t.TempDir())
	store.Load()

	store.SetFullscreen(true)
	assert.True(t, store.Changed())
	assert.True(t, store.Fullscreen())

	assert.True(t, store.Save())
	assert.False(t, store.Changed())

	require.NoError(t, store.SetKey(Forward, 'i'))
	assert.True(t, store.Changed())
}

func TestStore_InvalidSetterLeavesClean(t *testing.T) {
	store := NewStore(t.TempDir())
	store.Load()

	assert.ErrorIs(t, store.SetKey(Forward, '?'), ErrUnknownKey)
	assert.ErrorIs(t, store.SetAntialiasing(3), ErrInvalidValue)
	assert.ErrorIs(t, store.SetResolution(Resolution{}), ErrInvalidValue)
	assert.ErrorIs(t, store.SetDriver(Driver(42)), ErrInvalidValue)
	assert.ErrorIs(t, store.SetDriver(Driver(-1)), ErrInvalidValue)
	assert.False(t, store.Changed())
	assert.Equal(t, DriverOpenGL, store.Driver())
}

func TestStore_SaveThenLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	store.Load()

	store.SetFullscreen(true)
	store.SetVSync(false)
	require.NoError(t, store.SetAntialiasing(8))
	require.NoError(t, store.SetResolution(Resolution{Width: 1280, Height: 800}))
	require.NoError(t, store.SetDriver(DriverSoftware))
	require.NoError(t, store.SetKey(Forward, '^'))
	require.NoError(t, store.SetKey(Backward, ','))
	require.NoError(t, store.SetKey(StrafeLeft, '<'))
	require.NoError(t, store.SetKey(StrafeRight, '>'))
	want := store.Current()

	require.True(t, store.Save())

	fresh := NewStore(dir)
	got := fresh.Load()
	assert.Equal(t, want, got)
	assert.False(t, fresh.Changed())
}

func TestStore_BrokenFileFallsBackWithoutPersisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	broken := []byte(`<mdcvis><controls><key name="forward" value="%"/></controls></mdcvis>`)
	require.NoError(t, os.WriteFile(path, broken, 0o644))

	store := NewStore(dir)
	s := store.Load()
	assert.Equal(t, Defaults(), s)
	assert.False(t, store.CanPersist())
	assert.ErrorIs(t, store.LoadError(), ErrUnknownKey)

	store.SetVSync(false)
	assert.False(t, store.Save())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, broken, data)
}

func TestStore_UnwritableDirectoryFallsBack(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced")
	}
	parent := t.TempDir()
	require.NoError(t, os.Chmod(parent, 0o500))
	t.Cleanup(func() { os.Chmod(parent, 0o755) })

	store := NewStore(filepath.Join(parent, DirName))
	s := store.Load()
	assert.Equal(t, Defaults(), s)
	assert.False(t, store.CanPersist())
	assert.ErrorIs(t, store.LoadError(), ErrConfigIO)
}

func TestStore_ApplyValidates(t *testing.T) {
	store := NewStore(t.TempDir())
	store.Load()

	next := store.Current()
	next.Antialiasing = 7
	assert.ErrorIs(t, store.Apply(next), ErrInvalidValue)
	assert.False(t, store.Changed())

	next.Antialiasing = 2
	require.NoError(t, store.Apply(next))
	assert.True(t, store.Changed())
	assert.Equal(t, uint8(2), store.Antialiasing())

	// the store keeps its own copy of the key map
	next.Keys[Forward] = KeyUp
	assert.NotEqual(t, KeyUp, store.Key(Forward))
}

func TestStore_CurrentIsACopy(t *testing.T) {
	store := NewStore(t.TempDir())
	store.Load()

	c := store.Current()
	c.Keys[Forward] = KeyDown
	assert.NotEqual(t, KeyDown, store.Key(Forward))
	assert.Len(t, store.KeyMap(), 4)
}
