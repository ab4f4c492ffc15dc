// Package sdlhost runs the interpreter in an SDL window with a debug panel
// below the display.
package sdlhost

import (
	"context"
	"fmt"
	"time"

	"github.com/retroenv/retrogolib/log"
	"github.com/tuboc/chip8vm/emulator"
	"github.com/tuboc/chip8vm/internal/options"
	"github.com/veandco/go-sdl2/img"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	VBlankFrequency = emulator.TimerFrequency
	InformationH    = 256
	MinWindowW      = 640
	FontSize        = 16
	FontPerW        = 32
	FontPath        = "image/font.png"

	// unthrottledClock is used when no clock rate is set; the window is
	// still paced by its vblank.
	unthrottledClock = 60 * 64
)

type Host struct {
	fb     *emulator.Framebuffer
	pad    *emulator.Pad
	logger *log.Logger

	window   *sdl.Window
	renderer *sdl.Renderer
	font     *sdl.Texture

	scale    int32
	clock    int
	running  bool
	focus    bool
	stepMode bool
}

var scanCode2Key = map[int]uint8{
	sdl.SCANCODE_4: 0x1,
	sdl.SCANCODE_5: 0x2,
	sdl.SCANCODE_6: 0x3,
	sdl.SCANCODE_7: 0xc,
	sdl.SCANCODE_R: 0x4,
	sdl.SCANCODE_T: 0x5,
	sdl.SCANCODE_Y: 0x6,
	sdl.SCANCODE_U: 0xd,
	sdl.SCANCODE_F: 0x7,
	sdl.SCANCODE_G: 0x8,
	sdl.SCANCODE_H: 0x9,
	sdl.SCANCODE_J: 0xe,
	sdl.SCANCODE_V: 0xa,
	sdl.SCANCODE_B: 0x0,
	sdl.SCANCODE_N: 0xb,
	sdl.SCANCODE_M: 0xf,
}

// New opens the window. The debug panel is left empty if the font image
// cannot be loaded.
func New(opts options.Program, logger *log.Logger) (*Host, error) {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return nil, fmt.Errorf("initializing SDL: %w", err)
	}

	h := &Host{
		fb:       emulator.NewFramebuffer(),
		pad:      emulator.NewPad(),
		logger:   logger,
		scale:    int32(opts.Scale),
		clock:    opts.Clock,
		running:  true,
		focus:    true,
		stepMode: opts.StepMode,
	}
	if h.clock == 0 {
		h.clock = unthrottledClock
	}

	if err := h.initRenderer(); err != nil {
		sdl.Quit()
		return nil, err
	}
	font, err := initFont(h.renderer)
	if err != nil {
		logger.Error("Debug panel disabled", log.String("font", FontPath), log.Err(err))
	}
	h.font = font
	return h, nil
}

func (h *Host) emulatorW() int32 { return emulator.DisplayWidth * h.scale }
func (h *Host) emulatorH() int32 { return emulator.DisplayHeight * h.scale }

func (h *Host) windowW() int32 {
	if w := h.emulatorW(); w > MinWindowW {
		return w
	}
	return MinWindowW
}

func (h *Host) initRenderer() error {
	window, err := sdl.CreateWindow("Chip-8 Emulator", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		h.windowW(), h.emulatorH()+InformationH, sdl.WINDOW_SHOWN)
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		_ = window.Destroy()
		return fmt.Errorf("creating renderer: %w", err)
	}

	h.window = window
	h.renderer = renderer
	return nil
}

func initFont(r *sdl.Renderer) (*sdl.Texture, error) {
	surface, err := img.Load(FontPath)
	if err != nil {
		return nil, err
	}
	defer surface.Free()

	texture, err := r.CreateTextureFromSurface(surface)
	if err != nil {
		return nil, err
	}
	if err := texture.SetBlendMode(sdl.BLENDMODE_ADD); err != nil {
		_ = texture.Destroy()
		return nil, err
	}
	return texture, nil
}

func (h *Host) Display() emulator.Display { return h.fb }
func (h *Host) Keypad() emulator.Keypad   { return h.pad }

func (h *Host) Close() error {
	if h.font != nil {
		_ = h.font.Destroy()
	}
	_ = h.renderer.Destroy()
	err := h.window.Destroy()
	sdl.Quit()
	return err
}

// Run executes clock/60 cycles per vblank while the window has focus and
// step mode is off. A pending key-wait is completed from the event loop, so
// Step never blocks here.
func (h *Host) Run(ctx context.Context, vm *emulator.Interpreter, reload <-chan []byte) error {
	perVblankCycle := h.clock / VBlankFrequency
	if perVblankCycle < 1 {
		perVblankCycle = 1
	}
	vblank := time.NewTicker(time.Second / VBlankFrequency)
	defer vblank.Stop()

	for h.running {
		select {
		case <-ctx.Done():
			vm.Halt()
			return nil
		case program, ok := <-reload:
			if !ok {
				reload = nil
				continue
			}
			if err := vm.Load(program); err != nil {
				return err
			}
			h.logger.Info("program reloaded")
			continue
		case <-vblank.C:
		}

		if h.focus && !h.stepMode {
			if err := h.runCycles(ctx, vm, perVblankCycle); err != nil {
				return err
			}
		}
		if h.focus && vm.TimerPolicy() == emulator.TimersFixedRate {
			vm.TickTimers()
		}

		h.draw(vm)
		if err := h.pollEvents(ctx, vm); err != nil {
			return err
		}
	}
	vm.Halt()
	return nil
}

func (h *Host) runCycles(ctx context.Context, vm *emulator.Interpreter, n int) error {
	for i := 0; i < n && vm.Status() == emulator.Running; i++ {
		if _, err := vm.Step(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (h *Host) draw(vm *emulator.Interpreter) {
	_ = h.renderer.SetDrawColor(0, 0, 0, 255)
	_ = h.renderer.Clear()

	// chip8 display
	_ = h.renderer.SetDrawColor(0, 255, 0, 255)
	for y := int32(0); y < emulator.DisplayHeight; y++ {
		for x := int32(0); x < emulator.DisplayWidth; x++ {
			if h.fb.Pixel(int(x), int(y)) {
				_ = h.renderer.FillRect(&sdl.Rect{X: x * h.scale, Y: y * h.scale, W: h.scale, H: h.scale})
			}
		}
	}

	if h.font != nil {
		h.drawDebugInfo(vm)
	}

	h.renderer.Present()
}

func (h *Host) pollEvents(ctx context.Context, vm *emulator.Interpreter) error {
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		switch ev := event.(type) {
		case *sdl.QuitEvent:
			h.running = false
		case *sdl.KeyboardEvent:
			switch ev.Type {
			case sdl.KEYDOWN:
				if i, ok := scanCode2Key[int(ev.Keysym.Scancode)]; ok {
					if ev.Repeat == 0 {
						vm.PressKey(i)
					}
					continue
				}
				if err := h.control(ctx, vm, ev.Keysym.Scancode); err != nil {
					return err
				}
			case sdl.KEYUP:
				if i, ok := scanCode2Key[int(ev.Keysym.Scancode)]; ok {
					vm.ReleaseKey(i)
				}
			}
		case *sdl.WindowEvent:
			switch ev.Event {
			case sdl.WINDOWEVENT_FOCUS_LOST:
				h.focus = false
			case sdl.WINDOWEVENT_FOCUS_GAINED:
				h.focus = true
			}
		}
	}
	return nil
}

// control handles the keys outside the keypad: space steps (entering step
// mode first), enter leaves step mode, Z resets and escape quits.
func (h *Host) control(ctx context.Context, vm *emulator.Interpreter, code sdl.Scancode) error {
	switch code {
	case sdl.SCANCODE_SPACE:
		if !h.stepMode {
			h.stepMode = true
			return nil
		}
		if vm.Status() == emulator.Running {
			if _, err := vm.Step(ctx); err != nil {
				return err
			}
		}
	case sdl.SCANCODE_RETURN:
		h.stepMode = false
	case sdl.SCANCODE_Z:
		vm.Reset()
		h.logger.Info("program reset")
	case sdl.SCANCODE_ESCAPE:
		h.running = false
	}
	return nil
}
