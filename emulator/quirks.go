package emulator

import (
	"fmt"
	"strings"
)

// Quirks selects between the instruction semantics historical interpreters
// disagreed on. The zero value is the original COSMAC VIP behaviour.
type Quirks struct {
	// ShiftUsesVX makes 8XY6/8XYE shift VX in place instead of shifting VY
	// into VX.
	ShiftUsesVX bool

	// JumpUsesVX makes BNNN add VX (X taken from the opcode) instead of V0.
	JumpUsesVX bool

	// MemoryLeavesIndex keeps I unchanged after FX55/FX65 instead of
	// advancing it past the last register transferred.
	MemoryLeavesIndex bool

	// SubtractWraps makes 8XY5/8XY7 wrap modulo 256 instead of saturating
	// at zero.
	SubtractWraps bool
}

var (
	QuirksCOSMAC    = Quirks{}
	QuirksSuperChip = Quirks{
		ShiftUsesVX:       true,
		JumpUsesVX:        true,
		MemoryLeavesIndex: true,
		SubtractWraps:     true,
	}
)

// ParseQuirks builds a Quirks value from a comma separated list of preset
// names (vip, schip) and individual quirks (shift, jump, memory, wrap).
// Later entries add to earlier ones.
func ParseQuirks(s string) (Quirks, error) {
	var q Quirks
	for _, name := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "", "vip", "cosmac":
		case "schip", "superchip":
			q = QuirksSuperChip
		case "shift":
			q.ShiftUsesVX = true
		case "jump":
			q.JumpUsesVX = true
		case "memory":
			q.MemoryLeavesIndex = true
		case "wrap":
			q.SubtractWraps = true
		default:
			return Quirks{}, fmt.Errorf("unknown quirk %q", name)
		}
	}
	return q, nil
}

func (q Quirks) String() string {
	var names []string
	if q.ShiftUsesVX {
		names = append(names, "shift")
	}
	if q.JumpUsesVX {
		names = append(names, "jump")
	}
	if q.MemoryLeavesIndex {
		names = append(names, "memory")
	}
	if q.SubtractWraps {
		names = append(names, "wrap")
	}
	if len(names) == 0 {
		return "vip"
	}
	return strings.Join(names, ",")
}

// TimerPolicy decides what drives the delay and sound timers.
type TimerPolicy uint8

const (
	// TimersPerInstruction decrements both timers once per executed cycle.
	TimersPerInstruction TimerPolicy = iota
	// TimersFixedRate leaves the timers to TickTimers, called at
	// TimerFrequency by Run or by the host.
	TimersFixedRate
)

func ParseTimerPolicy(s string) (TimerPolicy, error) {
	switch strings.ToLower(s) {
	case "", "instruction", "cycle":
		return TimersPerInstruction, nil
	case "60hz", "fixed":
		return TimersFixedRate, nil
	}
	return 0, fmt.Errorf("unknown timer policy %q", s)
}
