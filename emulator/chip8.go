package emulator

const (
	MemorySize     = 4096
	FontBase       = 0x050
	GlyphSize      = 5
	ProgramStart   = 0x200
	MaxProgramSize = MemorySize - ProgramStart
	StackDepth     = 16
	KeyCount       = 16
	HistorySize    = 16
	TimerFrequency = 60
)

// Memory is the flat address space of the machine. Addresses wrap at
// MemorySize so no access can leave the image.
type Memory [MemorySize]uint8

func (m *Memory) Read(addr uint16) uint8 {
	return m[addr&(MemorySize-1)]
}

func (m *Memory) Write(addr uint16, v uint8) {
	m[addr&(MemorySize-1)] = v
}

// Word returns the big-endian 16-bit value at addr.
func (m *Memory) Word(addr uint16) uint16 {
	return uint16(m.Read(addr))<<8 | uint16(m.Read(addr+1))
}

// Registers is the register file. V[0xF] doubles as the carry, borrow and
// collision flag.
type Registers struct {
	V  [16]uint8 // general purpose registers
	I  uint16    // index register
	PC uint16    // program counter
	DT uint8     // delay timer
	ST uint8     // sound timer
}

func (r *Registers) setFlag(b bool) {
	if b {
		r.V[0xf] = 1
	} else {
		r.V[0xf] = 0
	}
}

// tickTimers decrements both timers toward zero.
func (r *Registers) tickTimers() {
	if r.DT > 0 {
		r.DT--
	}
	if r.ST > 0 {
		r.ST--
	}
}

// Stack holds return addresses for nested calls.
type Stack struct {
	frames [StackDepth]uint16
	sp     int
}

func (s *Stack) Push(addr uint16) error {
	if s.sp == StackDepth {
		return ErrStackOverflow
	}
	s.frames[s.sp] = addr
	s.sp++
	return nil
}

func (s *Stack) Pop() (uint16, error) {
	if s.sp == 0 {
		return 0, ErrStackUnderflow
	}
	s.sp--
	return s.frames[s.sp], nil
}

func (s *Stack) Depth() int {
	return s.sp
}

// Frames returns a copy of the stack, bottom first.
func (s *Stack) Frames() []uint16 {
	out := make([]uint16, s.sp)
	copy(out, s.frames[:s.sp])
	return out
}

var characterSprites = []uint8{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}
