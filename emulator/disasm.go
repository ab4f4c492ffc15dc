package emulator

import (
	"fmt"
	"strings"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

const unknownMnemonic = "??"

// mnemonic returns the upper case name the chip8 opcode table gives op.
func mnemonic(op Opcode) string {
	for _, o := range chip8.Opcodes[int(op.Family())] {
		if o.Instruction != nil && uint16(op)&o.Info.Mask == o.Info.Value {
			return strings.ToUpper(o.Instruction.Name)
		}
	}
	return unknownMnemonic
}

// Disassemble returns the assembly form of op with the default quirks.
func Disassemble(op Opcode) string {
	return QuirksCOSMAC.Disassemble(op)
}

// Disassemble returns the assembly form of op as q executes it.
func (q Quirks) Disassemble(op Opcode) string {
	in := Decode(op)
	if in.Kind == KindUnknown {
		return fmt.Sprintf("%-4s #%04X", unknownMnemonic, uint16(op))
	}

	name := mnemonic(op)
	x, y := in.X, in.Y
	switch in.Kind {
	case KindClear, KindReturn:
		return name
	case KindJump, KindCall:
		return fmt.Sprintf("%-4s %03X", name, in.NNN)
	case KindSkipEqImm, KindSkipNeImm, KindLoadImm, KindAddImm, KindRandom:
		return fmt.Sprintf("%-4s V%X,#%02X", name, x, in.NN)
	case KindSkipEqReg, KindSkipNeReg, KindLoadReg, KindOr, KindAnd, KindXor,
		KindAddReg, KindSub, KindSubN, KindShiftRight, KindShiftLeft:
		return fmt.Sprintf("%-4s V%X,V%X", name, x, y)
	case KindLoadIndex:
		return fmt.Sprintf("%-4s I,#%03X", name, in.NNN)
	case KindJumpOffset:
		if q.JumpUsesVX {
			return fmt.Sprintf("%-4s V%X,#%03X", name, x, in.NNN)
		}
		return fmt.Sprintf("%-4s V0,#%03X", name, in.NNN)
	case KindDraw:
		return fmt.Sprintf("%-4s V%X,V%X,%d", name, x, y, in.N)
	case KindSkipPressed, KindSkipNotPressed:
		return fmt.Sprintf("%-4s V%X", name, x)
	case KindLoadDelay:
		return fmt.Sprintf("%-4s V%X,DT", name, x)
	case KindWaitKey:
		return fmt.Sprintf("%-4s V%X,K", name, x)
	case KindSetDelay:
		return fmt.Sprintf("%-4s DT,V%X", name, x)
	case KindSetSound:
		return fmt.Sprintf("%-4s ST,V%X", name, x)
	case KindAddIndex:
		return fmt.Sprintf("%-4s I,V%X", name, x)
	case KindLoadGlyph:
		return fmt.Sprintf("%-4s F,V%X", name, x)
	case KindStoreBCD:
		return fmt.Sprintf("%-4s B,V%X", name, x)
	case KindStoreRegs:
		return fmt.Sprintf("%-4s [I],V%X", name, x)
	case KindLoadRegs:
		return fmt.Sprintf("%-4s V%X,[I]", name, x)
	}
	return fmt.Sprintf("%-4s #%04X", name, uint16(op))
}
