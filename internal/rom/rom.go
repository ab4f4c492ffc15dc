// Package rom loads program images from disk, picks them with a file
// dialog and watches them for changes.
package rom

import (
	"errors"
	"fmt"
	"os"

	"github.com/sqweek/dialog"
	"github.com/tuboc/chip8vm/emulator"
)

// ErrEmpty is returned for a ROM file without any content.
var ErrEmpty = errors.New("empty ROM file")

// Load reads the program image at path and checks that it fits into the
// program area.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading ROM: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmpty, path)
	}
	if len(data) > emulator.MaxProgramSize {
		return nil, fmt.Errorf("%w: %s has %d bytes, limit %d",
			emulator.ErrProgramTooLarge, path, len(data), emulator.MaxProgramSize)
	}
	return data, nil
}

// Pick asks the user for a ROM file with the native file dialog.
func Pick() (string, error) {
	path, err := dialog.File().
		Filter("CHIP-8 ROM", "ch8", "c8").
		Title("Load CHIP-8 program").
		Load()
	if err != nil {
		if errors.Is(err, dialog.ErrCancelled) {
			return "", fmt.Errorf("no ROM selected: %w", err)
		}
		return "", fmt.Errorf("ROM dialog: %w", err)
	}
	return path, nil
}
