// Package main implements a CHIP-8 interpreter with SDL, ebiten and terminal
// front ends.
package main

import (
	"errors"
	"os"
	"runtime"

	retroapp "github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
	"github.com/tuboc/chip8vm/internal/app"
	"github.com/tuboc/chip8vm/internal/cli"
	"github.com/tuboc/chip8vm/internal/config"
	"github.com/tuboc/chip8vm/internal/ebitenhost"
	"github.com/tuboc/chip8vm/internal/options"
	"github.com/tuboc/chip8vm/internal/sdlhost"
	"github.com/tuboc/chip8vm/internal/termhost"
)

// SDL and ebiten need the window on the main thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	ctx := retroapp.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			if msg := usageErr.Error(); msg != "" {
				_, _ = os.Stderr.WriteString(msg + "\n\n")
			}
			usageErr.ShowUsage()
			os.Exit(2)
		}
		config.CreateLogger(opts).Fatal(err.Error())
	}

	logger := config.CreateLogger(opts)
	hosts := map[string]app.HostFactory{
		options.HostSDL:    hostFactory(sdlhost.New),
		options.HostEbiten: hostFactory(ebitenhost.New),
		options.HostTerm:   hostFactory(termhost.New),
	}

	if err := app.New(logger, opts, hosts).Run(ctx); err != nil {
		logger.Error("Emulation failed", log.Err(err))
		os.Exit(1)
	}
}

func hostFactory[H app.Host](newHost func(options.Program, *log.Logger) (H, error)) app.HostFactory {
	return func(opts options.Program, logger *log.Logger) (app.Host, error) {
		h, err := newHost(opts, logger)
		if err != nil {
			return nil, err
		}
		return h, nil
	}
}
