package vm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies execution failures. Every failure aborts the current
// run immediately; there are no partial results and no retries.
type ErrorKind int

const (
	// KindAllocation: the arena or the system allocator could not satisfy
	// an allocation. Fatal to the run, not retried.
	KindAllocation ErrorKind = iota

	// KindInvalidOpcode: an unrecognized byte in the instruction stream.
	// Indicates a code-generation bug, never expected from well-formed input.
	KindInvalidOpcode

	// KindStackUnderflow: an opcode needed more operands than the stack held,
	// or the stack was empty at Halt.
	KindStackUnderflow

	// KindStackLeftover: more than one value remained on the stack at Halt.
	KindStackLeftover

	// KindType: operand kind mismatch, e.g. an array where a scalar was
	// expected.
	KindType

	// KindDomain: mathematically undefined input, e.g. a negative factorial
	// or an empty-array reduction. A user input problem, not an engine bug.
	KindDomain
)

func (k ErrorKind) String() string {
	switch k {
	case KindAllocation:
		return "allocation failure"
	case KindInvalidOpcode:
		return "invalid opcode"
	case KindStackUnderflow:
		return "stack underflow"
	case KindStackLeftover:
		return "stack leftover"
	case KindType:
		return "type error"
	case KindDomain:
		return "domain error"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is a typed execution failure with the instruction offset and source
// line it occurred at.
type Error struct {
	Kind    ErrorKind
	Offset  int // Instruction offset, -1 when not attributable
	Line    int // Source line from the chunk's line table, 0 when unknown
	Message string
}

func (e *Error) Error() string {
	if e.Offset >= 0 {
		return fmt.Sprintf("%s at offset 0x%04X: %s", e.Kind, e.Offset, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// KindOf extracts the ErrorKind from err. Reports false if err is not a
// VM execution error.
func KindOf(err error) (ErrorKind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
