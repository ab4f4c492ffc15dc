package emulator

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func framebuffer(in *Interpreter) *Framebuffer {
	return in.display.(*Framebuffer)
}

// program starts at 0x200, the opcode under test is the first instruction
var opcodeTestTable = []struct {
	opcode uint16
	quirks Quirks
	before func(in *Interpreter)
	assert func(t *testing.T, in *Interpreter, res StepResult)
}{
	// clear display
	{
		opcode: 0x00E0,
		before: func(in *Interpreter) {
			in.display.Toggle(0, 0)
			in.display.Toggle(63, 31)
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, 0, framebuffer(in).Lit())
			assert.True(t, res.Redraw)
		},
	},
	// ret
	{
		opcode: 0x00EE,
		before: func(in *Interpreter) {
			_ = in.stack.Push(0x300)
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, 0, in.stack.Depth())
			assert.Equal(t, uint16(0x300), in.reg.PC)
			assert.False(t, res.Redraw)
		},
	},
	// goto 0x0NNN
	{
		opcode: 0x1234,
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint16(0x234), in.reg.PC)
		},
	},
	// call 0x0NNN
	{
		opcode: 0x2208,
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint16(0x208), in.reg.PC)
			assert.Equal(t, []uint16{0x202}, in.stack.Frames())
		},
	},
	// 3XNN if(Vx==NN) [true]
	{
		opcode: 0x3012,
		before: func(in *Interpreter) { in.reg.V[0] = 0x12 },
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint16(0x204), in.reg.PC)
		},
	},
	// 3XNN if(Vx==NN) [false]
	{
		opcode: 0x3012,
		before: func(in *Interpreter) { in.reg.V[0] = 0x1 },
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint16(0x202), in.reg.PC)
		},
	},
	// 4XNN if(Vx!=NN) [true]
	{
		opcode: 0x4012,
		before: func(in *Interpreter) { in.reg.V[0] = 0x1 },
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint16(0x204), in.reg.PC)
		},
	},
	// 4XNN if(Vx!=NN) [false]
	{
		opcode: 0x4012,
		before: func(in *Interpreter) { in.reg.V[0] = 0x12 },
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint16(0x202), in.reg.PC)
		},
	},
	// 5XY0 if(Vx==Vy) [true]
	{
		opcode: 0x5120,
		before: func(in *Interpreter) {
			in.reg.V[1] = 0x1
			in.reg.V[2] = 0x1
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint16(0x204), in.reg.PC)
		},
	},
	// 5XY0 if(Vx==Vy) [false]
	{
		opcode: 0x5120,
		before: func(in *Interpreter) {
			in.reg.V[1] = 0x1
			in.reg.V[2] = 0x2
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint16(0x202), in.reg.PC)
		},
	},
	// 6XNN Vx = NN
	{
		opcode: 0x6355,
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint8(0x55), in.reg.V[3])
		},
	},
	// 7XNN Vx += NN
	{
		opcode: 0x78f0,
		before: func(in *Interpreter) { in.reg.V[8] = 0xf },
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint8(0xff), in.reg.V[8])
			assert.Equal(t, uint8(0), in.reg.V[0xf])
		},
	},
	// 7XNN wraps and leaves VF alone
	{
		opcode: 0x78ff,
		before: func(in *Interpreter) {
			in.reg.V[8] = 0x2
			in.reg.V[0xf] = 0x5
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint8(0x1), in.reg.V[8])
			assert.Equal(t, uint8(0x5), in.reg.V[0xf])
		},
	},
	// 8XY0 Vx=Vy
	{
		opcode: 0x8450,
		before: func(in *Interpreter) { in.reg.V[5] = 0x33 },
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint8(0x33), in.reg.V[4])
		},
	},
	// 8XY1 Vx=Vx|Vy
	{
		opcode: 0x8451,
		before: func(in *Interpreter) {
			in.reg.V[4] = 0x0c
			in.reg.V[5] = 0x0a
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint8(0x0e), in.reg.V[4])
		},
	},
	// 8XY2 Vx=Vx&Vy
	{
		opcode: 0x8452,
		before: func(in *Interpreter) {
			in.reg.V[4] = 0x0c
			in.reg.V[5] = 0x0a
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint8(0x08), in.reg.V[4])
		},
	},
	// 8XY3 Vx=Vx^Vy
	{
		opcode: 0x8453,
		before: func(in *Interpreter) {
			in.reg.V[4] = 0x0c
			in.reg.V[5] = 0x0a
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint8(0x06), in.reg.V[4])
		},
	},
	// 8XY4 Vx += Vy [carry]
	{
		opcode: 0x8454,
		before: func(in *Interpreter) {
			in.reg.V[4] = 0xf0
			in.reg.V[5] = 0x20
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint8(0x10), in.reg.V[4])
			assert.Equal(t, uint8(1), in.reg.V[0xf])
		},
	},
	// 8XY4 Vx += Vy [no carry]
	{
		opcode: 0x8454,
		before: func(in *Interpreter) {
			in.reg.V[4] = 0x10
			in.reg.V[5] = 0x20
			in.reg.V[0xf] = 1
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint8(0x30), in.reg.V[4])
			assert.Equal(t, uint8(0), in.reg.V[0xf])
		},
	},
	// 8XY5 Vx -= Vy [no borrow]
	{
		opcode: 0x8455,
		before: func(in *Interpreter) {
			in.reg.V[4] = 5
			in.reg.V[5] = 3
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint8(2), in.reg.V[4])
			assert.Equal(t, uint8(1), in.reg.V[0xf])
		},
	},
	// 8XY5 Vx -= Vy [borrow saturates]
	{
		opcode: 0x8455,
		before: func(in *Interpreter) {
			in.reg.V[4] = 3
			in.reg.V[5] = 5
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint8(0), in.reg.V[4])
			assert.Equal(t, uint8(0), in.reg.V[0xf])
		},
	},
	// 8XY5 Vx -= Vy [borrow wraps]
	{
		opcode: 0x8455,
		quirks: Quirks{SubtractWraps: true},
		before: func(in *Interpreter) {
			in.reg.V[4] = 3
			in.reg.V[5] = 5
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint8(0xfe), in.reg.V[4])
			assert.Equal(t, uint8(0), in.reg.V[0xf])
		},
	},
	// 8XY5 Vx -= Vy [equal]
	{
		opcode: 0x8455,
		before: func(in *Interpreter) {
			in.reg.V[4] = 7
			in.reg.V[5] = 7
			in.reg.V[0xf] = 1
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint8(0), in.reg.V[4])
			assert.Equal(t, uint8(0), in.reg.V[0xf])
		},
	},
	// 8XY6 Vx = Vy>>1
	{
		opcode: 0x8456,
		before: func(in *Interpreter) {
			in.reg.V[4] = 0xff
			in.reg.V[5] = 0x03
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint8(0x01), in.reg.V[4])
			assert.Equal(t, uint8(1), in.reg.V[0xf])
			assert.Equal(t, uint8(0x03), in.reg.V[5])
		},
	},
	// 8XY6 Vx>>=1
	{
		opcode: 0x8456,
		quirks: Quirks{ShiftUsesVX: true},
		before: func(in *Interpreter) {
			in.reg.V[4] = 0x03
			in.reg.V[5] = 0x80
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint8(0x01), in.reg.V[4])
			assert.Equal(t, uint8(1), in.reg.V[0xf])
		},
	},
	// 8XY7 Vx=Vy-Vx [no borrow]
	{
		opcode: 0x8457,
		before: func(in *Interpreter) {
			in.reg.V[4] = 3
			in.reg.V[5] = 5
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint8(2), in.reg.V[4])
			assert.Equal(t, uint8(1), in.reg.V[0xf])
		},
	},
	// 8XY7 Vx=Vy-Vx [borrow]
	{
		opcode: 0x8457,
		before: func(in *Interpreter) {
			in.reg.V[4] = 5
			in.reg.V[5] = 3
			in.reg.V[0xf] = 1
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint8(0), in.reg.V[4])
			assert.Equal(t, uint8(0), in.reg.V[0xf])
		},
	},
	// 8XYE Vx = Vy<<1
	{
		opcode: 0x845E,
		before: func(in *Interpreter) {
			in.reg.V[4] = 0x00
			in.reg.V[5] = 0x81
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint8(0x02), in.reg.V[4])
			assert.Equal(t, uint8(1), in.reg.V[0xf])
		},
	},
	// 8XYE Vx<<=1
	{
		opcode: 0x845E,
		quirks: Quirks{ShiftUsesVX: true},
		before: func(in *Interpreter) {
			in.reg.V[4] = 0x41
			in.reg.V[5] = 0xff
			in.reg.V[0xf] = 1
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint8(0x82), in.reg.V[4])
			assert.Equal(t, uint8(0), in.reg.V[0xf])
		},
	},
	// 9XY0 if(Vx!=Vy)
	{
		opcode: 0x9450,
		before: func(in *Interpreter) {
			in.reg.V[4] = 1
			in.reg.V[5] = 2
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint16(0x204), in.reg.PC)
		},
	},
	// ANNN I = NNN
	{
		opcode: 0xA123,
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint16(0x123), in.reg.I)
		},
	},
	// BNNN PC=V0+NNN
	{
		opcode: 0xB300,
		before: func(in *Interpreter) {
			in.reg.V[0] = 4
			in.reg.V[3] = 8
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint16(0x304), in.reg.PC)
		},
	},
	// BXNN PC=Vx+XNN
	{
		opcode: 0xB300,
		quirks: Quirks{JumpUsesVX: true},
		before: func(in *Interpreter) {
			in.reg.V[0] = 4
			in.reg.V[3] = 8
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint16(0x308), in.reg.PC)
		},
	},
	// CXNN Vx=rand()&NN
	{
		opcode: 0xC30F,
		before: func(in *Interpreter) { in.reg.V[3] = 0xf0 },
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint8(0), in.reg.V[3]&0xf0)
		},
	},
	// DXYN draw(Vx,Vy,N) with the "0" glyph
	{
		opcode: 0xD015,
		before: func(in *Interpreter) {
			in.reg.I = FontBase
			in.reg.V[0xf] = 1
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.True(t, res.Redraw)
			assert.Equal(t, 14, framebuffer(in).Lit())
			assert.True(t, in.display.Pixel(0, 0))
			assert.False(t, in.display.Pixel(1, 1))
			assert.Equal(t, uint8(0), in.reg.V[0xf])
		},
	},
	// DXYN wraps at the right and bottom edges
	{
		opcode: 0xD011,
		before: func(in *Interpreter) {
			in.reg.V[0] = 62
			in.reg.V[1] = 31
			in.reg.I = 0x300
			in.mem.Write(0x300, 0xf0)
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.True(t, in.display.Pixel(62, 31))
			assert.True(t, in.display.Pixel(63, 31))
			assert.True(t, in.display.Pixel(0, 31))
			assert.True(t, in.display.Pixel(1, 31))
			assert.Equal(t, 4, framebuffer(in).Lit())
		},
	},
	// EX9E if(key()==Vx)
	{
		opcode: 0xE29E,
		before: func(in *Interpreter) {
			in.reg.V[2] = 0xa
			in.keypad.Press(0xa)
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint16(0x204), in.reg.PC)
		},
	},
	// EXA1 if(key()!=Vx)
	{
		opcode: 0xE2A1,
		before: func(in *Interpreter) {
			in.reg.V[2] = 0xa
			in.keypad.Press(0xb)
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint16(0x204), in.reg.PC)
		},
	},
	// FX07 Vx = get_delay()
	{
		opcode: 0xF107,
		before: func(in *Interpreter) { in.reg.DT = 10 },
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint8(10), in.reg.V[1])
		},
	},
	// FX0A Vx = get_key()
	{
		opcode: 0xF30A,
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, WaitingForKey, in.Status())
			assert.Equal(t, uint8(3), in.waitReg)
			assert.Equal(t, uint16(0x202), in.reg.PC)
		},
	},
	// FX15 delay_timer(Vx)
	{
		opcode: 0xF215,
		before: func(in *Interpreter) { in.reg.V[2] = 10 },
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint8(10), in.reg.DT)
		},
	},
	// FX18 sound_timer(Vx)
	{
		opcode: 0xF318,
		before: func(in *Interpreter) { in.reg.V[3] = 10 },
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint8(10), in.reg.ST)
			assert.True(t, in.SoundActive())
		},
	},
	// FX1E I +=Vx
	{
		opcode: 0xF41E,
		before: func(in *Interpreter) {
			in.reg.V[4] = 10
			in.reg.I = 0x100
			in.reg.V[0xf] = 1
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint16(0x100+10), in.reg.I)
			assert.Equal(t, uint8(0), in.reg.V[0xf])
		},
	},
	// FX1E I +=Vx [past end of memory]
	{
		opcode: 0xF41E,
		before: func(in *Interpreter) {
			in.reg.V[4] = 2
			in.reg.I = 0xfff
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint16(0x1001), in.reg.I)
			assert.Equal(t, uint8(1), in.reg.V[0xf])
		},
	},
	// FX29 I=sprite_addr[Vx]
	{
		opcode: 0xF529,
		before: func(in *Interpreter) { in.reg.V[5] = 5 },
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, uint16(FontBase+5*GlyphSize), in.reg.I)
		},
	},
	// FX33 set_BCD(Vx); Vx = 234
	{
		opcode: 0xF633,
		before: func(in *Interpreter) {
			in.reg.V[6] = 234
			in.reg.I = 0x300
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, []uint8{2, 3, 4}, in.mem[0x300:0x303])
			assert.Equal(t, uint16(0x300), in.reg.I)
		},
	},
	// FX33 set_BCD(Vx); Vx = 45
	{
		opcode: 0xF633,
		before: func(in *Interpreter) {
			in.reg.V[6] = 45
			in.reg.I = 0x300
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, []uint8{0, 4, 5}, in.mem[0x300:0x303])
		},
	},
	// FX33 set_BCD(Vx); Vx = 7
	{
		opcode: 0xF633,
		before: func(in *Interpreter) {
			in.reg.V[6] = 7
			in.reg.I = 0x300
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, []uint8{0, 0, 7}, in.mem[0x300:0x303])
		},
	},
	// FX55 reg_dump(Vx,&I)
	{
		opcode: 0xF455,
		before: func(in *Interpreter) {
			for i := range in.reg.V {
				in.reg.V[i] = uint8(i + 1)
			}
			in.reg.I = 0x300
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, []uint8{1, 2, 3, 4, 5, 0}, in.mem[0x300:0x306])
			assert.Equal(t, uint16(0x305), in.reg.I)
		},
	},
	// FX55 reg_dump(Vx,I)
	{
		opcode: 0xF455,
		quirks: Quirks{MemoryLeavesIndex: true},
		before: func(in *Interpreter) {
			for i := range in.reg.V {
				in.reg.V[i] = uint8(i + 1)
			}
			in.reg.I = 0x300
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, []uint8{1, 2, 3, 4, 5, 0}, in.mem[0x300:0x306])
			assert.Equal(t, uint16(0x300), in.reg.I)
		},
	},
	// FX65 reg_load(Vx,&I)
	{
		opcode: 0xF565,
		before: func(in *Interpreter) {
			for i := 0; i < 16; i++ {
				in.mem[0x300+i] = uint8(0x10 + i)
			}
			in.reg.I = 0x300
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, []uint8{0x10, 0x11, 0x12, 0x13, 0x14, 0x15, 0}, in.reg.V[:7])
			assert.Equal(t, uint16(0x306), in.reg.I)
		},
	},
	// FX65 reg_load(Vx,I)
	{
		opcode: 0xF565,
		quirks: Quirks{MemoryLeavesIndex: true},
		before: func(in *Interpreter) {
			for i := 0; i < 16; i++ {
				in.mem[0x300+i] = uint8(0x10 + i)
			}
			in.reg.I = 0x300
		},
		assert: func(t *testing.T, in *Interpreter, res StepResult) {
			assert.Equal(t, []uint8{0x10, 0x11, 0x12, 0x13, 0x14, 0x15}, in.reg.V[:6])
			assert.Equal(t, uint16(0x300), in.reg.I)
		},
	},
}

func TestExecOpcodes(t *testing.T) {
	for _, test := range opcodeTestTable {
		test := test
		t.Run(fmt.Sprintf("opcode[%04X]/%s", test.opcode, test.quirks), func(t *testing.T) {
			b := make([]byte, 0x100)
			binary.BigEndian.PutUint16(b, test.opcode)
			in := newTestInterpreter(t, test.quirks, b, WithTimerPolicy(TimersFixedRate))

			if test.before != nil {
				test.before(in)
			}

			res, err := in.Step(context.Background())
			require.NoError(t, err)

			test.assert(t, in, res)
		})
	}
}

func TestUnknownOpcodes(t *testing.T) {
	for _, op := range []uint16{0x0000, 0x0123, 0x00E1, 0x5121, 0x8008, 0x800F, 0x9001, 0xE09F, 0xF0FF, 0xF066} {
		t.Run(fmt.Sprintf("opcode[%04X]", op), func(t *testing.T) {
			b := make([]byte, 2)
			binary.BigEndian.PutUint16(b, op)
			in := newTestInterpreter(t, Quirks{}, b)
			in.reg.V[3] = 0x42

			_, err := in.Step(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrUnknownOpcode))

			var opErr *OpcodeError
			require.True(t, errors.As(err, &opErr))
			assert.Equal(t, Opcode(op), opErr.Opcode)
			assert.Equal(t, uint16(ProgramStart), opErr.PC)

			state := in.DumpState()
			assert.Equal(t, uint16(ProgramStart), state.PC)
			assert.Equal(t, uint8(0x42), state.V[3])
			assert.Equal(t, uint64(0), state.Cycles)
		})
	}
}
