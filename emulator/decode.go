package emulator

// Opcode is a raw 16-bit instruction word.
type Opcode uint16

func (op Opcode) Family() uint8 { return uint8(op >> 12) }
func (op Opcode) X() uint8      { return uint8(op>>8) & 0xf }
func (op Opcode) Y() uint8      { return uint8(op>>4) & 0xf }
func (op Opcode) N() uint8      { return uint8(op) & 0xf }
func (op Opcode) NN() uint8     { return uint8(op) }
func (op Opcode) NNN() uint16   { return uint16(op) & 0x0fff }

// Kind identifies one row of the instruction set.
type Kind uint8

const (
	KindUnknown      Kind = iota
	KindClear             // 00E0
	KindReturn            // 00EE
	KindJump              // 1NNN
	KindCall              // 2NNN
	KindSkipEqImm         // 3XNN
	KindSkipNeImm         // 4XNN
	KindSkipEqReg         // 5XY0
	KindLoadImm           // 6XNN
	KindAddImm            // 7XNN
	KindLoadReg           // 8XY0
	KindOr                // 8XY1
	KindAnd               // 8XY2
	KindXor               // 8XY3
	KindAddReg            // 8XY4
	KindSub               // 8XY5
	KindShiftRight        // 8XY6
	KindSubN              // 8XY7
	KindShiftLeft         // 8XYE
	KindSkipNeReg         // 9XY0
	KindLoadIndex         // ANNN
	KindJumpOffset        // BNNN
	KindRandom            // CXNN
	KindDraw              // DXYN
	KindSkipPressed       // EX9E
	KindSkipNotPressed    // EXA1
	KindLoadDelay         // FX07
	KindWaitKey           // FX0A
	KindSetDelay          // FX15
	KindSetSound          // FX18
	KindAddIndex          // FX1E
	KindLoadGlyph         // FX29
	KindStoreBCD          // FX33
	KindStoreRegs         // FX55
	KindLoadRegs          // FX65
)

// kindOpcodes holds one opcode of every kind. Kind names are looked up
// from these in the chip8 opcode table.
var kindOpcodes = [...]Opcode{
	KindClear:          0x00E0,
	KindReturn:         0x00EE,
	KindJump:           0x1000,
	KindCall:           0x2000,
	KindSkipEqImm:      0x3000,
	KindSkipNeImm:      0x4000,
	KindSkipEqReg:      0x5000,
	KindLoadImm:        0x6000,
	KindAddImm:         0x7000,
	KindLoadReg:        0x8000,
	KindOr:             0x8001,
	KindAnd:            0x8002,
	KindXor:            0x8003,
	KindAddReg:         0x8004,
	KindSub:            0x8005,
	KindShiftRight:     0x8006,
	KindSubN:           0x8007,
	KindShiftLeft:      0x800E,
	KindSkipNeReg:      0x9000,
	KindLoadIndex:      0xA000,
	KindJumpOffset:     0xB000,
	KindRandom:         0xC000,
	KindDraw:           0xD000,
	KindSkipPressed:    0xE09E,
	KindSkipNotPressed: 0xE0A1,
	KindLoadDelay:      0xF007,
	KindWaitKey:        0xF00A,
	KindSetDelay:       0xF015,
	KindSetSound:       0xF018,
	KindAddIndex:       0xF01E,
	KindLoadGlyph:      0xF029,
	KindStoreBCD:       0xF033,
	KindStoreRegs:      0xF055,
	KindLoadRegs:       0xF065,
}

func (k Kind) String() string {
	if k == KindUnknown || int(k) >= len(kindOpcodes) {
		return unknownMnemonic
	}
	return mnemonic(kindOpcodes[k])
}

// Instruction is a decoded opcode. Which operand fields are meaningful
// depends on Kind.
type Instruction struct {
	Kind   Kind
	Opcode Opcode
	X, Y   uint8
	N      uint8
	NN     uint8
	NNN    uint16
}

// Decode maps an opcode to its instruction. Every opcode decodes; opcodes
// that match no row of the instruction set get KindUnknown.
func Decode(op Opcode) Instruction {
	return Instruction{
		Kind:   kindOf(op),
		Opcode: op,
		X:      op.X(),
		Y:      op.Y(),
		N:      op.N(),
		NN:     op.NN(),
		NNN:    op.NNN(),
	}
}

func kindOf(op Opcode) Kind {
	switch op.Family() {
	case 0x0:
		switch op {
		case 0x00E0:
			return KindClear
		case 0x00EE:
			return KindReturn
		}
	case 0x1:
		return KindJump
	case 0x2:
		return KindCall
	case 0x3:
		return KindSkipEqImm
	case 0x4:
		return KindSkipNeImm
	case 0x5:
		if op.N() == 0 {
			return KindSkipEqReg
		}
	case 0x6:
		return KindLoadImm
	case 0x7:
		return KindAddImm
	case 0x8:
		switch op.N() {
		case 0x0:
			return KindLoadReg
		case 0x1:
			return KindOr
		case 0x2:
			return KindAnd
		case 0x3:
			return KindXor
		case 0x4:
			return KindAddReg
		case 0x5:
			return KindSub
		case 0x6:
			return KindShiftRight
		case 0x7:
			return KindSubN
		case 0xE:
			return KindShiftLeft
		}
	case 0x9:
		if op.N() == 0 {
			return KindSkipNeReg
		}
	case 0xA:
		return KindLoadIndex
	case 0xB:
		return KindJumpOffset
	case 0xC:
		return KindRandom
	case 0xD:
		return KindDraw
	case 0xE:
		switch op.NN() {
		case 0x9E:
			return KindSkipPressed
		case 0xA1:
			return KindSkipNotPressed
		}
	case 0xF:
		switch op.NN() {
		case 0x07:
			return KindLoadDelay
		case 0x0A:
			return KindWaitKey
		case 0x15:
			return KindSetDelay
		case 0x18:
			return KindSetSound
		case 0x1E:
			return KindAddIndex
		case 0x29:
			return KindLoadGlyph
		case 0x33:
			return KindStoreBCD
		case 0x55:
			return KindStoreRegs
		case 0x65:
			return KindLoadRegs
		}
	}
	return KindUnknown
}
