// Package termhost runs the interpreter in a terminal, drawing the display
// with half block characters next to register and history panes.
package termhost

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/retroenv/retrogolib/log"
	"github.com/rivo/tview"
	"github.com/tuboc/chip8vm/emulator"
	"github.com/tuboc/chip8vm/internal/options"
)

// Terminals report key presses only, so a key counts as held for
// releaseAfter after its last press.
const releaseAfter = 150 * time.Millisecond

const frameInterval = time.Second / 60

var runeToKey = map[rune]uint8{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xc,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xd,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xe,
	'z': 0xa, 'x': 0x0, 'c': 0xb, 'v': 0xf,
}

type Host struct {
	display *display
	pad     *emulator.Pad
	logger  *log.Logger

	app     *tview.Application
	screen  *tview.Box
	state   *tview.TextView
	history *tview.TextView

	mu          sync.Mutex
	releases    [emulator.KeyCount]*time.Timer
	stateText   string
	historyText string
}

func New(opts options.Program, logger *log.Logger) (*Host, error) {
	h := &Host{
		display: newDisplay(),
		pad:     emulator.NewPad(),
		logger:  logger,
		app:     tview.NewApplication(),
		screen:  tview.NewBox(),
		state: tview.NewTextView().
			SetWrap(false),
		history: tview.NewTextView().
			SetWrap(false),
	}

	h.screen.SetBorder(true).SetTitle(" CHIP-8 ")
	h.screen.SetDrawFunc(h.drawScreen)
	h.state.SetBorder(true).SetTitle(" registers ")
	h.state.SetBackgroundColor(tcell.ColorDarkBlue)
	h.history.SetBorder(true).SetTitle(" history ")

	panes := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(h.state, 9, 0, false).
		AddItem(h.history, 0, 1, false)
	cols := tview.NewFlex().
		AddItem(h.screen, emulator.DisplayWidth+2, 0, true).
		AddItem(panes, 0, 1, false)
	h.app.SetRoot(cols, true)
	h.app.SetInputCapture(h.handleKey)
	return h, nil
}

func (h *Host) Display() emulator.Display { return h.display }
func (h *Host) Keypad() emulator.Keypad   { return h.pad }

func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, t := range h.releases {
		if t != nil {
			t.Stop()
		}
	}
	return nil
}

// Run shows the terminal UI and runs vm on its own goroutine until ctx is
// done, the user quits with escape or a fatal error occurs.
func (h *Host) Run(ctx context.Context, vm *emulator.Interpreter, reload <-chan []byte) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	h.observe(vm)
	h.capture(vm)
	h.update()

	var started atomic.Bool
	errc := make(chan error, 1)
	// Stop is a no-op before the first draw, so the interpreter is
	// started from there.
	h.app.SetAfterDrawFunc(func(tcell.Screen) {
		if started.CompareAndSwap(false, true) {
			go func() {
				err := vm.Run(ctx, reload)
				h.app.Stop()
				errc <- err
			}()
			go h.redraw(ctx)
		}
	})

	runErr := h.app.Run()
	cancel()
	if started.Load() {
		if err := <-errc; err != nil {
			return err
		}
	}
	return runErr
}

// observe refreshes the captured state once per frame, so the panes follow
// programs that wait for a key or never draw.
func (h *Host) observe(vm *emulator.Interpreter) {
	vm.OnFrame(func() { h.capture(vm) })
}

// capture is called on the interpreter goroutine.
func (h *Host) capture(vm *emulator.Interpreter) {
	state := vm.DumpState().String()
	history := strings.Join(vm.History(), "\n")

	h.mu.Lock()
	h.stateText = state
	h.historyText = history
	h.mu.Unlock()
}

// update copies the captured state into the panes.
func (h *Host) update() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.state.SetText(h.stateText)
	h.history.SetText(h.historyText)
}

func (h *Host) redraw(ctx context.Context) {
	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			h.app.QueueUpdateDraw(h.update)
		}
	}
}

func (h *Host) handleKey(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		h.app.Stop()
		return nil
	case tcell.KeyRune:
		if k, ok := runeToKey[toLower(event.Rune())]; ok {
			h.press(k)
			return nil
		}
	}
	return event
}

func toLower(r rune) rune {
	if r >= 'A' && r <= 'Z' {
		return r + 'a' - 'A'
	}
	return r
}

// press holds key until no further press arrives for releaseAfter. Key
// repeat of the terminal keeps it held.
func (h *Host) press(key uint8) {
	h.pad.Press(key)

	h.mu.Lock()
	defer h.mu.Unlock()
	if t := h.releases[key]; t != nil {
		t.Reset(releaseAfter)
		return
	}
	h.releases[key] = time.AfterFunc(releaseAfter, func() {
		h.pad.Release(key)
	})
}

// drawScreen draws two display rows per terminal row inside the border.
func (h *Host) drawScreen(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
	x, y, width, height = x+1, y+1, width-2, height-2
	pixels := h.display.shown()
	style := tcell.StyleDefault.Foreground(tcell.ColorGreen).Background(tcell.ColorBlack)

	for row := 0; row < emulator.DisplayHeight/2 && row < height; row++ {
		for col := 0; col < emulator.DisplayWidth && col < width; col++ {
			top := pixels[2*row*emulator.DisplayWidth+col]
			bottom := pixels[(2*row+1)*emulator.DisplayWidth+col]
			ch := ' '
			switch {
			case top && bottom:
				ch = '█'
			case top:
				ch = '▀'
			case bottom:
				ch = '▄'
			}
			screen.SetContent(x+col, y+row, ch, nil, style)
		}
	}
	return x, y, width, height
}
