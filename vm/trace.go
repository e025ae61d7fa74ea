package vm

import (
	"fmt"
	"strings"

	"github.com/bytecalc/bytecalc/pkg/bytecode"
)

// Step records one executed opcode: its offset, the opcode, the inline
// operand if any, and full stack snapshots before and after dispatch.
// Steps are append-only during a run; afterwards the recorded sequence
// supports read-only indexed replay without re-execution.
//
// Snapshots copy the stack values, not the heap. An array value in a
// snapshot is a shallow handle, so two steps referencing the same array
// alias the same block.
type Step struct {
	Offset     int
	Op         bytecode.Opcode
	Operand    float64 // Push constant or array count
	HasOperand bool
	Before     []Value
	After      []Value
}

// Text renders the step's instruction like the disassembler would.
func (s Step) Text() string {
	if s.HasOperand {
		return fmt.Sprintf("%s %v", s.Op, s.Operand)
	}
	return s.Op.String()
}

// formatStack renders a stack snapshot bottom-first.
func formatStack(stack []Value) string {
	if len(stack) == 0 {
		return "[]"
	}
	parts := make([]string, len(stack))
	for i, v := range stack {
		parts[i] = v.String()
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// FormatTrace renders a recorded trace as an aligned listing, one line per
// executed opcode.
func FormatTrace(steps []Step) string {
	var sb strings.Builder
	for i, s := range steps {
		fmt.Fprintf(&sb, "%4d  0x%04X  %-16s %s -> %s\n",
			i, s.Offset, s.Text(), formatStack(s.Before), formatStack(s.After))
	}
	return sb.String()
}
