package emulator

import (
	"context"
	"errors"
	"time"

	"github.com/retroenv/retrogolib/log"
)

// Run executes cycles until ctx is done or a fatal error occurs, rendering
// the display after every cycle that changed it. Programs received on
// reload replace the running one. Cancellation halts the interpreter and
// is not reported as an error.
//
// A pending key-wait does not block the loop. Timers and reload are still
// serviced until the key arrives.
func (in *Interpreter) Run(ctx context.Context, reload <-chan []byte) error {
	var clock, frames <-chan time.Time
	if in.clockHz > 0 {
		t := time.NewTicker(time.Second / time.Duration(in.clockHz))
		defer t.Stop()
		clock = t.C
	}
	if in.timers == TimersFixedRate || in.onFrame != nil {
		t := time.NewTicker(time.Second / TimerFrequency)
		defer t.Stop()
		frames = t.C
	}
	if clock == nil {
		clock = alwaysReady
	}

	var keys <-chan uint8
	stopWait := func() {}
	defer func() { stopWait() }()

	for {
		ready := clock
		if in.status == WaitingForKey {
			ready = nil
			if keys == nil {
				keys, stopWait = in.awaitKey(ctx)
			}
		}

		select {
		case <-ctx.Done():
			in.Halt()
			return nil
		case program, ok := <-reload:
			if !ok {
				reload = nil
				continue
			}
			stopWait()
			keys = nil
			if err := in.Load(program); err != nil {
				return err
			}
			in.logger.Info("program reloaded")
			continue
		case <-frames:
			if in.timers == TimersFixedRate {
				in.TickTimers()
			}
			if in.onFrame != nil {
				in.onFrame()
			}
			continue
		case key := <-keys:
			stopWait()
			keys = nil
			in.resume(key)
			in.endCycle()
			continue
		case <-ready:
		}

		res, err := in.Step(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				in.Halt()
				return nil
			}
			return err
		}
		if res.Redraw {
			in.display.Render()
		}
	}
}

// awaitKey waits for the keypad on its own goroutine. The returned stop
// function abandons the wait.
func (in *Interpreter) awaitKey(ctx context.Context) (<-chan uint8, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	keys := make(chan uint8, 1)
	go func() {
		if key, err := in.keypad.WaitForKey(ctx); err == nil {
			keys <- key
		}
	}()
	return keys, cancel
}

var alwaysReady = func() <-chan time.Time {
	ch := make(chan time.Time)
	close(ch)
	return ch
}()

// RunCycles executes at most n cycles, stopping early on error or when ctx
// is done.
func (in *Interpreter) RunCycles(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		res, err := in.Step(ctx)
		if err != nil {
			return err
		}
		if res.Redraw {
			in.display.Render()
		}
	}
	in.logger.Debug("cycles done", log.Hex("pc", in.reg.PC))
	return nil
}
