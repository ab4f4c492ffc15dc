package emulator

import "strings"

const (
	DisplayWidth  = 64
	DisplayHeight = 32
)

// Display is the monochrome screen the interpreter draws to. Coordinates
// passed in are always within DisplayWidth x DisplayHeight.
type Display interface {
	Pixel(x, y int) bool
	Toggle(x, y int)
	Clear()
	// Render presents the current pixels. It is called by Run after a
	// cycle that changed the screen.
	Render()
}

// Framebuffer is an in-memory Display. Render does nothing; hosts embed it
// and provide their own.
type Framebuffer struct {
	pixels [DisplayWidth * DisplayHeight]bool
}

func NewFramebuffer() *Framebuffer {
	return &Framebuffer{}
}

func (f *Framebuffer) Pixel(x, y int) bool {
	return f.pixels[y*DisplayWidth+x]
}

func (f *Framebuffer) Toggle(x, y int) {
	f.pixels[y*DisplayWidth+x] = !f.pixels[y*DisplayWidth+x]
}

func (f *Framebuffer) Clear() {
	f.pixels = [DisplayWidth * DisplayHeight]bool{}
}

func (f *Framebuffer) Render() {}

// Lit returns the number of pixels that are on.
func (f *Framebuffer) Lit() int {
	n := 0
	for _, p := range f.pixels {
		if p {
			n++
		}
	}
	return n
}

// String draws the framebuffer as rows of '#' and '.'.
func (f *Framebuffer) String() string {
	var b strings.Builder
	b.Grow((DisplayWidth + 1) * DisplayHeight)
	for y := 0; y < DisplayHeight; y++ {
		for x := 0; x < DisplayWidth; x++ {
			if f.Pixel(x, y) {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
