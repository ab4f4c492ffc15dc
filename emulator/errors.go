package emulator

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownOpcode   = errors.New("unrecognized opcode")
	ErrStackOverflow   = errors.New("call stack overflow")
	ErrStackUnderflow  = errors.New("return with empty call stack")
	ErrProgramTooLarge = errors.New("program too large to fit in memory")
	ErrHalted          = errors.New("interpreter halted")
)

// OpcodeError is returned by Step when no instruction matches the fetched
// opcode. PC is the address the opcode was fetched from.
type OpcodeError struct {
	PC     uint16
	Opcode Opcode
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("%v %04X at %03X", ErrUnknownOpcode, uint16(e.Opcode), e.PC)
}

func (e *OpcodeError) Unwrap() error { return ErrUnknownOpcode }

// StackError is returned by Step when a call or return cannot be honoured.
type StackError struct {
	PC  uint16
	Err error
}

func (e *StackError) Error() string {
	return fmt.Sprintf("%v at %03X", e.Err, e.PC)
}

func (e *StackError) Unwrap() error { return e.Err }
