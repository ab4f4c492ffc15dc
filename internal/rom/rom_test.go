package rom

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/retroenv/retrogolib/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tuboc/chip8vm/emulator"
)

func writeROM(t *testing.T, dir string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, "test.ch8")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeROM(t, dir, []byte{0x00, 0xE0, 0x12, 0x00})

	data, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0xE0, 0x12, 0x00}, data)

	path = writeROM(t, dir, make([]byte, emulator.MaxProgramSize))
	data, err = Load(path)
	require.NoError(t, err)
	assert.Len(t, data, emulator.MaxProgramSize)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.ch8"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeROM(t, dir, nil))
	assert.ErrorIs(t, err, ErrEmpty)

	_, err = Load(writeROM(t, dir, make([]byte, emulator.MaxProgramSize+1)))
	assert.ErrorIs(t, err, emulator.ErrProgramTooLarge)
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := writeROM(t, dir, []byte{0x12, 0x00})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	reload, err := Watch(ctx, path, log.NewTestLogger(t))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte{0x60, 0x01, 0x12, 0x02}, 0o644))

	select {
	case data := <-reload:
		assert.Equal(t, []byte{0x60, 0x01, 0x12, 0x02}, data)
	case <-ctx.Done():
		t.Fatal("no reload received")
	}

	cancel()
	for range reload {
	}
}

func TestWatchMissingDirectory(t *testing.T) {
	_, err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope", "x.ch8"), log.NewTestLogger(t))
	assert.Error(t, err)
}
