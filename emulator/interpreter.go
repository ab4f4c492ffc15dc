// Package emulator implements a CHIP-8 interpreter: memory, registers,
// call stack and timers driven one instruction at a time, drawing to a
// Display and reading a Keypad supplied by the host.
package emulator

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/retroenv/retrogolib/log"
)

// Status is the execution state of an Interpreter.
type Status uint8

const (
	Running Status = iota
	// WaitingForKey means an FX0A instruction is pending; no further
	// instruction is fetched until a key is pressed.
	WaitingForKey
	Halted
)

func (s Status) String() string {
	switch s {
	case Running:
		return "running"
	case WaitingForKey:
		return "waiting for key"
	case Halted:
		return "halted"
	}
	return fmt.Sprintf("status(%d)", uint8(s))
}

// StepResult reports the outcome of one cycle.
type StepResult struct {
	// Redraw is set when the cycle cleared the screen or drew a sprite.
	Redraw bool
}

type Option func(*Interpreter)

func WithLogger(logger *log.Logger) Option {
	return func(in *Interpreter) { in.logger = logger }
}

// WithRand sets the source for CXNN.
func WithRand(r *rand.Rand) Option {
	return func(in *Interpreter) { in.rnd = r }
}

func WithTimerPolicy(p TimerPolicy) Option {
	return func(in *Interpreter) { in.timers = p }
}

// WithClock limits Run to hz instructions per second. Zero runs unthrottled.
func WithClock(hz int) Option {
	return func(in *Interpreter) { in.clockHz = hz }
}

// WithTrace logs every executed instruction at debug level.
func WithTrace(trace bool) Option {
	return func(in *Interpreter) { in.trace = trace }
}

// Interpreter owns the machine state and executes programs on it.
type Interpreter struct {
	reg   Registers
	mem   Memory
	stack Stack

	quirks  Quirks
	timers  TimerPolicy
	clockHz int
	trace   bool

	display Display
	keypad  Keypad
	rnd     *rand.Rand
	logger  *log.Logger
	onFrame func()

	status  Status
	waitReg uint8
	cycles  uint64

	history      [HistorySize]string
	historyIndex int

	program []byte // last loaded image, for Reset
}

// New creates an interpreter with program loaded and ready to run.
func New(display Display, keypad Keypad, quirks Quirks, program []byte, opts ...Option) (*Interpreter, error) {
	in := &Interpreter{
		quirks:  quirks,
		display: display,
		keypad:  keypad,
	}
	for _, opt := range opts {
		opt(in)
	}
	if in.rnd == nil {
		in.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if in.logger == nil {
		cfg := log.DefaultConfig()
		cfg.Level = log.ErrorLevel
		in.logger = log.NewWithConfig(cfg)
	}

	if err := in.Load(program); err != nil {
		return nil, err
	}
	return in, nil
}

// Load resets the machine and places program at ProgramStart.
func (in *Interpreter) Load(program []byte) error {
	if len(program) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, limit %d", ErrProgramTooLarge, len(program), MaxProgramSize)
	}

	in.program = append(in.program[:0:0], program...)
	in.mem = Memory{}
	copy(in.mem[FontBase:], characterSprites)
	copy(in.mem[ProgramStart:], program)

	in.reg = Registers{PC: ProgramStart}
	in.stack = Stack{}
	in.status = Running
	in.waitReg = 0
	in.cycles = 0
	in.history = [HistorySize]string{}
	in.historyIndex = 0
	in.display.Clear()

	in.logger.Debug("program loaded",
		log.Int("size", len(program)),
		log.String("quirks", in.quirks.String()))
	return nil
}

// Reset restarts the loaded program from a cleared machine.
func (in *Interpreter) Reset() {
	_ = in.Load(in.program)
}

// Step runs one cycle. While waiting for a key it blocks on the keypad
// instead; receiving the key completes that cycle.
func (in *Interpreter) Step(ctx context.Context) (StepResult, error) {
	switch in.status {
	case Halted:
		return StepResult{}, ErrHalted
	case WaitingForKey:
		key, err := in.keypad.WaitForKey(ctx)
		if err != nil {
			return StepResult{}, err
		}
		in.resume(key)
		in.endCycle()
		return StepResult{}, nil
	}

	pc := in.reg.PC
	op := in.fetchOpcode()
	res, err := in.execOpcode(Decode(op), pc)
	if err != nil {
		// nothing else was touched; rewind so the faulting
		// instruction is what DumpState shows
		in.reg.PC = pc
		in.logger.Error("execution stopped",
			log.Hex("pc", pc),
			log.Hex("opcode", uint16(op)),
			log.Err(err))
		return StepResult{}, err
	}

	if in.trace {
		in.logger.Debug("exec",
			log.Hex("pc", pc),
			log.Hex("opcode", uint16(op)),
			log.String("instruction", in.quirks.Disassemble(op)))
	}
	in.record(pc, op)
	in.endCycle()
	return res, nil
}

func (in *Interpreter) endCycle() {
	in.cycles++
	if in.timers == TimersPerInstruction {
		in.reg.tickTimers()
	}
}

func (in *Interpreter) fetchOpcode() Opcode {
	op := Opcode(in.mem.Word(in.reg.PC))
	in.reg.PC += 2
	return op
}

func (in *Interpreter) record(pc uint16, op Opcode) {
	in.history[in.historyIndex] = fmt.Sprintf("%03X-%04X %s", pc, uint16(op), in.quirks.Disassemble(op))
	in.historyIndex = (in.historyIndex + 1) % HistorySize
}

// History returns the most recently executed instructions, oldest first.
func (in *Interpreter) History() []string {
	out := make([]string, 0, HistorySize)
	for i := 0; i < HistorySize; i++ {
		if s := in.history[(in.historyIndex+i)%HistorySize]; s != "" {
			out = append(out, s)
		}
	}
	return out
}

// PressKey marks key as pressed. A pending key-wait is completed without
// blocking, so a host polling its own event loop never needs Step to wait.
func (in *Interpreter) PressKey(key uint8) {
	in.keypad.Press(key)
	if in.status == WaitingForKey && key < KeyCount {
		in.resume(key)
		in.endCycle()
	}
}

func (in *Interpreter) ReleaseKey(key uint8) {
	in.keypad.Release(key)
}

func (in *Interpreter) resume(key uint8) {
	in.reg.V[in.waitReg] = key
	in.status = Running
	in.logger.Debug("key received", log.Uint8("key", key), log.Uint8("register", in.waitReg))
}

// OnFrame registers fn to be called by Run TimerFrequency times per second
// on the goroutine running the interpreter, whether or not the program
// draws. It must be set before Run is called.
func (in *Interpreter) OnFrame(fn func()) {
	in.onFrame = fn
}

// TickTimers decrements the delay and sound timers. Hosts using
// TimersFixedRate call it TimerFrequency times per second.
func (in *Interpreter) TickTimers() {
	in.reg.tickTimers()
}

func (in *Interpreter) Status() Status {
	return in.status
}

// Halt stops execution; further Steps return ErrHalted until Load.
func (in *Interpreter) Halt() {
	in.status = Halted
}

func (in *Interpreter) TimerPolicy() TimerPolicy {
	return in.timers
}

// SoundActive reports whether the sound timer is running.
func (in *Interpreter) SoundActive() bool {
	return in.reg.ST > 0
}
