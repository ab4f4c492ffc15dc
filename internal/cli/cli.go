// Package cli handles command line interface logic
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tuboc/chip8vm/emulator"
	"github.com/tuboc/chip8vm/internal/options"
)

const (
	defaultClock = 600
	defaultScale = 10
)

// ParseFlags parses the command line flags and returns the program options.
// The ROM can be given with -f or as the only positional argument.
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	var opts options.Program
	readOptionFlags(flags, &opts)

	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, &UsageError{flags: flags}
		}
		return opts, &UsageError{flags: flags, msg: err.Error()}
	}

	args := flags.Args()
	switch {
	case len(args) > 1:
		return opts, &UsageError{flags: flags, msg: "only one ROM file can be given"}
	case len(args) == 1 && opts.ROM != "":
		return opts, &UsageError{flags: flags, msg: "ROM file given both with -f and as argument"}
	case len(args) == 1:
		opts.ROM = args[0]
	}

	if err := normalizeOptions(&opts); err != nil {
		var usageErr *UsageError
		if errors.As(err, &usageErr) {
			usageErr.flags = flags
		}
		return opts, err
	}
	return opts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: chip8vm [options] [ROM file]\n\n")
	e.flags.SetOutput(os.Stdout)
	e.flags.PrintDefaults()
	fmt.Println()
}

// normalizeOptions normalizes and validates option values
func normalizeOptions(opts *options.Program) error {
	opts.Host = strings.ToLower(opts.Host)
	valid := false
	for _, host := range options.Hosts {
		if opts.Host == host {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unsupported host: %s. Valid options: %s",
			opts.Host, strings.Join(options.Hosts, ", "))
	}

	if _, err := emulator.ParseQuirks(opts.Quirks); err != nil {
		return err
	}
	if _, err := emulator.ParseTimerPolicy(opts.Timers); err != nil {
		return err
	}

	if opts.Clock < 0 {
		return fmt.Errorf("invalid clock rate %d", opts.Clock)
	}
	if opts.Scale < 1 {
		return fmt.Errorf("invalid scale %d", opts.Scale)
	}
	if opts.Watch && opts.ROM == "" {
		return &UsageError{msg: "-watch needs a ROM file"}
	}
	return nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.ROM, "f", "", "chip8 image file path, a file dialog is shown if none is given")
	flags.BoolVar(&opts.StepMode, "s", false, "start with stepMode")
	flags.StringVar(&opts.Host, "host", options.HostSDL, "front end to run in (sdl/ebiten/term)")
	flags.StringVar(&opts.Quirks, "quirks", "vip", "instruction quirks: vip, schip or a list of shift,jump,memory,wrap")
	flags.StringVar(&opts.Timers, "timers", "instruction", "timer policy: instruction (tick per cycle) or 60hz")
	flags.IntVar(&opts.Clock, "clock", defaultClock, "instructions per second, 0 for unthrottled")
	flags.IntVar(&opts.Scale, "scale", defaultScale, "window pixels per display pixel")
	flags.BoolVar(&opts.Watch, "watch", false, "reload the ROM when the file changes")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
