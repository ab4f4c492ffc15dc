// Package options contains the program options.
package options

// Front ends selectable with -host.
const (
	HostSDL    = "sdl"
	HostEbiten = "ebiten"
	HostTerm   = "term"
)

// Hosts lists the valid -host values.
var Hosts = []string{HostSDL, HostEbiten, HostTerm}

// Program contains the program options.
type Program struct {
	ROM      string // path of the program image, picked from a dialog if empty
	StepMode bool   // start paused, stepping one instruction per key press

	Host   string
	Quirks string // comma separated quirk names, see emulator.ParseQuirks
	Timers string // timer policy name, see emulator.ParseTimerPolicy
	Clock  int    // instructions per second, 0 runs unthrottled where the host allows it
	Scale  int    // window pixels per display pixel

	Watch bool // reload the ROM whenever the file changes
	Debug bool
	Trace bool
	Quiet bool
}
