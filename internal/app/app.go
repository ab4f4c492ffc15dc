// Package app wires the options, the ROM, the interpreter and a front end
// together.
package app

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/retroenv/retrogolib/log"
	"github.com/tuboc/chip8vm/emulator"
	"github.com/tuboc/chip8vm/internal/options"
	"github.com/tuboc/chip8vm/internal/rom"
)

// Host is a front end presenting the display and feeding the keypad.
type Host interface {
	Display() emulator.Display
	Keypad() emulator.Keypad
	// Run drives vm until ctx is done, the user quits or a fatal error
	// occurs. Programs received on reload replace the running one.
	Run(ctx context.Context, vm *emulator.Interpreter, reload <-chan []byte) error
	Close() error
}

// HostFactory creates the front end for the given options.
type HostFactory func(opts options.Program, logger *log.Logger) (Host, error)

// App runs a single program in a front end.
type App struct {
	logger *log.Logger
	opts   options.Program
	hosts  map[string]HostFactory

	// pick is called to select a ROM when none was given.
	pick func() (string, error)
}

func New(logger *log.Logger, opts options.Program, hosts map[string]HostFactory) *App {
	return &App{
		logger: logger,
		opts:   opts,
		hosts:  hosts,
		pick:   rom.Pick,
	}
}

// Run loads the ROM and runs it until ctx is done or the host exits.
func (a *App) Run(ctx context.Context) error {
	newHost, ok := a.hosts[a.opts.Host]
	if !ok {
		return fmt.Errorf("host %q is not available", a.opts.Host)
	}

	path := a.opts.ROM
	if path == "" {
		var err error
		if path, err = a.pick(); err != nil {
			return err
		}
	}
	program, err := rom.Load(path)
	if err != nil {
		return err
	}

	quirks, err := emulator.ParseQuirks(a.opts.Quirks)
	if err != nil {
		return err
	}
	timers, err := emulator.ParseTimerPolicy(a.opts.Timers)
	if err != nil {
		return err
	}

	host, err := newHost(a.opts, a.logger)
	if err != nil {
		return fmt.Errorf("creating %s host: %w", a.opts.Host, err)
	}
	defer func() {
		if err := host.Close(); err != nil {
			a.logger.Error("Closing host failed", log.Err(err))
		}
	}()

	vm, err := emulator.New(host.Display(), host.Keypad(), quirks, program,
		emulator.WithLogger(a.logger),
		emulator.WithTimerPolicy(timers),
		emulator.WithClock(a.opts.Clock),
		emulator.WithTrace(a.opts.Trace))
	if err != nil {
		return err
	}

	var reload <-chan []byte
	if a.opts.Watch {
		if reload, err = rom.Watch(ctx, path, a.logger); err != nil {
			return err
		}
	}

	a.logger.Info("Running program",
		log.String("file", filepath.Base(path)),
		log.String("host", a.opts.Host),
		log.String("quirks", quirks.String()))

	if err := host.Run(ctx, vm, reload); err != nil {
		a.logger.Error("Program stopped", log.Err(err))
		fmt.Println(vm.DumpState())
		return err
	}
	return nil
}
