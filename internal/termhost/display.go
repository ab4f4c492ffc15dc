package termhost

import (
	"sync"

	"github.com/tuboc/chip8vm/emulator"
)

// display copies the framebuffer on Render so the UI goroutine never reads
// pixels the interpreter is writing.
type display struct {
	*emulator.Framebuffer

	mu     sync.Mutex
	pixels [emulator.DisplayWidth * emulator.DisplayHeight]bool
}

func newDisplay() *display {
	return &display{Framebuffer: emulator.NewFramebuffer()}
}

func (d *display) Render() {
	d.mu.Lock()
	for y := 0; y < emulator.DisplayHeight; y++ {
		for x := 0; x < emulator.DisplayWidth; x++ {
			d.pixels[y*emulator.DisplayWidth+x] = d.Framebuffer.Pixel(x, y)
		}
	}
	d.mu.Unlock()
}

func (d *display) shown() [emulator.DisplayWidth * emulator.DisplayHeight]bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pixels
}
