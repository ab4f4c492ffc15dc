package emulator

import (
	"fmt"
	"strings"
)

// Snapshot is a read-only copy of the interpreter state.
type Snapshot struct {
	Registers
	Stack   []uint16
	Status  Status
	WaitReg uint8 // target register while Status is WaitingForKey
	Cycles  uint64
}

func (in *Interpreter) DumpState() Snapshot {
	return Snapshot{
		Registers: in.reg,
		Stack:     in.stack.Frames(),
		Status:    in.status,
		WaitReg:   in.waitReg,
		Cycles:    in.cycles,
	}
}

// Peek returns the byte at addr.
func (in *Interpreter) Peek(addr uint16) uint8 {
	return in.mem.Read(addr)
}

func (s Snapshot) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "PC = %03X  I = %04X  DT = %02X  ST = %02X  %s\n", s.PC, s.I, s.DT, s.ST, s.Status)
	for i, v := range s.V {
		fmt.Fprintf(&b, "V%X = %02X", i, v)
		if i%4 == 3 {
			b.WriteByte('\n')
		} else {
			b.WriteString("  ")
		}
	}
	b.WriteString("stack:")
	for _, addr := range s.Stack {
		fmt.Fprintf(&b, " %03X", addr)
	}
	b.WriteByte('\n')
	return b.String()
}
