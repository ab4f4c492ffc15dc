// Package ebitenhost runs the interpreter in an ebiten window.
package ebitenhost

import (
	"context"
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/retroenv/retrogolib/log"
	"github.com/tuboc/chip8vm/emulator"
	"github.com/tuboc/chip8vm/internal/options"
)

// unthrottledCycles is run per frame when no clock rate is set.
const unthrottledCycles = 1000

var keyMap = map[ebiten.Key]uint8{
	ebiten.Key4: 0x1,
	ebiten.Key5: 0x2,
	ebiten.Key6: 0x3,
	ebiten.Key7: 0xc,
	ebiten.KeyR: 0x4,
	ebiten.KeyT: 0x5,
	ebiten.KeyY: 0x6,
	ebiten.KeyU: 0xd,
	ebiten.KeyF: 0x7,
	ebiten.KeyG: 0x8,
	ebiten.KeyH: 0x9,
	ebiten.KeyJ: 0xe,
	ebiten.KeyV: 0xa,
	ebiten.KeyB: 0x0,
	ebiten.KeyN: 0xb,
	ebiten.KeyM: 0xf,
}

type Host struct {
	fb     *emulator.Framebuffer
	pad    *emulator.Pad
	logger *log.Logger
	opts   options.Program
}

func New(opts options.Program, logger *log.Logger) (*Host, error) {
	return &Host{
		fb:     emulator.NewFramebuffer(),
		pad:    emulator.NewPad(),
		logger: logger,
		opts:   opts,
	}, nil
}

func (h *Host) Display() emulator.Display { return h.fb }
func (h *Host) Keypad() emulator.Keypad   { return h.pad }
func (h *Host) Close() error              { return nil }

// Run opens the window and blocks until it is closed. It has to be called
// from the main goroutine.
func (h *Host) Run(ctx context.Context, vm *emulator.Interpreter, reload <-chan []byte) error {
	scale := h.opts.Scale
	ebiten.SetWindowSize(emulator.DisplayWidth*scale, emulator.DisplayHeight*scale)
	ebiten.SetWindowTitle("Chip-8 Emulator")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	g := newGame(ctx, h, vm, reload)
	err := ebiten.RunGame(g)
	vm.Halt()
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}

// Game implements ebiten.Game for one interpreter. Update runs at the
// ebiten tick rate of 60 per second.
type Game struct {
	ctx    context.Context
	host   *Host
	vm     *emulator.Interpreter
	reload <-chan []byte

	perFrame  int
	stepMode  bool
	showDebug bool

	screen *ebiten.Image
	pixels []byte
}

func newGame(ctx context.Context, h *Host, vm *emulator.Interpreter, reload <-chan []byte) *Game {
	perFrame := h.opts.Clock / ebiten.TPS()
	if h.opts.Clock == 0 {
		perFrame = unthrottledCycles
	}
	if perFrame < 1 {
		perFrame = 1
	}
	return &Game{
		ctx:       ctx,
		host:      h,
		vm:        vm,
		reload:    reload,
		perFrame:  perFrame,
		stepMode:  h.opts.StepMode,
		showDebug: h.opts.Debug,
		pixels:    make([]byte, emulator.DisplayWidth*emulator.DisplayHeight*4),
	}
}

func (g *Game) Update() error {
	select {
	case <-g.ctx.Done():
		return ebiten.Termination
	case program, ok := <-g.reload:
		if !ok {
			g.reload = nil
			break
		}
		if err := g.vm.Load(program); err != nil {
			return err
		}
		g.host.logger.Info("program reloaded")
	default:
	}

	for key, k := range keyMap {
		if inpututil.IsKeyJustPressed(key) {
			g.vm.PressKey(k)
		}
		if inpututil.IsKeyJustReleased(key) {
			g.vm.ReleaseKey(k)
		}
	}

	steps := 0
	if !g.stepMode {
		steps = g.perFrame
	}
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyEscape):
		return ebiten.Termination
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		g.showDebug = !g.showDebug
	case inpututil.IsKeyJustPressed(ebiten.KeyZ):
		g.vm.Reset()
	case inpututil.IsKeyJustPressed(ebiten.KeyEnter):
		g.stepMode = false
	case inpututil.IsKeyJustPressed(ebiten.KeySpace):
		// the first press only enters step mode
		steps = 0
		if g.stepMode {
			steps = 1
		}
		g.stepMode = true
	}

	for i := 0; i < steps; i++ {
		// a key-wait is completed by PressKey on a later frame
		if g.vm.Status() != emulator.Running {
			break
		}
		if _, err := g.vm.Step(g.ctx); err != nil {
			return err
		}
	}
	if g.vm.TimerPolicy() == emulator.TimersFixedRate {
		g.vm.TickTimers()
	}
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	if g.screen == nil {
		g.screen = ebiten.NewImage(emulator.DisplayWidth, emulator.DisplayHeight)
	}

	fb := g.host.fb
	for y := 0; y < emulator.DisplayHeight; y++ {
		for x := 0; x < emulator.DisplayWidth; x++ {
			i := (y*emulator.DisplayWidth + x) * 4
			var c byte
			if fb.Pixel(x, y) {
				c = 0xff
			}
			g.pixels[i] = 0
			g.pixels[i+1] = c
			g.pixels[i+2] = 0
			g.pixels[i+3] = 0xff
		}
	}
	g.screen.WritePixels(g.pixels)

	op := &ebiten.DrawImageOptions{}
	scale := float64(g.host.opts.Scale)
	op.GeoM.Scale(scale, scale)
	screen.DrawImage(g.screen, op)

	if g.showDebug {
		ebitenutil.DebugPrintAt(screen, g.vm.DumpState().String(), 4, 4)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return emulator.DisplayWidth * g.host.opts.Scale, emulator.DisplayHeight * g.host.opts.Scale
}
