package bytecode

import (
	"fmt"
	"strings"
)

// Instruction is one decoded instruction, produced by the disassembler.
type Instruction struct {
	Offset     int     // Byte offset in the chunk
	Op         Opcode  // Decoded opcode
	Operand    float64 // Push constant (valid when HasOperand)
	HasOperand bool
	ArrayCount uint64 // Element count (valid when HasCount)
	HasCount   bool
	Line       int // Source line from the chunk's line table
}

// Text returns the instruction rendered as "NAME", "NAME value" or
// "NAME count=n".
func (in Instruction) Text() string {
	switch {
	case in.HasOperand:
		return fmt.Sprintf("%s %v", in.Op, in.Operand)
	case in.HasCount:
		return fmt.Sprintf("%s count=%d", in.Op, in.ArrayCount)
	default:
		return in.Op.String()
	}
}

// Disassemble decodes the whole chunk into instruction records.
// Decoding stops at the first unrecognized or truncated instruction.
func (c *Chunk) Disassemble() []Instruction {
	var instructions []Instruction
	offset := 0
	for offset < c.Len() {
		in, next, ok := c.DisassembleAt(offset)
		if !ok {
			break
		}
		instructions = append(instructions, in)
		offset = next
	}
	return instructions
}

// DisassembleAt decodes a single instruction at the given offset.
// Returns the instruction, the offset of the next instruction, and whether
// decoding succeeded.
func (c *Chunk) DisassembleAt(offset int) (Instruction, int, bool) {
	if offset < 0 || offset >= c.Len() {
		return Instruction{}, offset, false
	}

	op, ok := FromByte(c.code[offset])
	if !ok {
		return Instruction{}, offset, false
	}

	in := Instruction{Offset: offset, Op: op, Line: c.Line(offset)}

	switch op {
	case OpPush:
		value, ok := c.ReadFloat64(offset + 1)
		if !ok {
			return Instruction{}, offset, false
		}
		in.Operand = value
		in.HasOperand = true
	case OpPushArray:
		count, ok := c.ReadUint64(offset + 1)
		if !ok {
			return Instruction{}, offset, false
		}
		in.ArrayCount = count
		in.HasCount = true
	}

	return in, offset + op.InstructionLen(), true
}

// Format returns a human-readable bytecode listing for the chunk.
func (c *Chunk) Format() string {
	var sb strings.Builder

	sb.WriteString("=== Bytecode Disassembly ===\n")
	fmt.Fprintf(&sb, "Size: %d bytes\n\n", c.Len())

	for _, in := range c.Disassemble() {
		fmt.Fprintf(&sb, "  0x%04X: %s\n", in.Offset, in.Text())
	}

	return sb.String()
}

// FormatWithHex returns a bytecode listing with a hex dump column.
func (c *Chunk) FormatWithHex() string {
	var sb strings.Builder

	sb.WriteString("=== Bytecode Disassembly ===\n")
	fmt.Fprintf(&sb, "Size: %d bytes\n\n", c.Len())
	sb.WriteString("Offset  Hex                       Instruction\n")
	sb.WriteString("------  ------------------------  -----------\n")

	for _, in := range c.Disassemble() {
		fmt.Fprintf(&sb, "0x%04X  %-24s  %s\n",
			in.Offset, c.hexBytes(in.Offset, in.Op.InstructionLen()), in.Text())
	}

	return sb.String()
}

// hexBytes renders up to 8 instruction bytes starting at offset.
func (c *Chunk) hexBytes(offset, size int) string {
	var sb strings.Builder
	show := size
	if show > 8 {
		show = 8
	}
	for i := 0; i < show && offset+i < c.Len(); i++ {
		fmt.Fprintf(&sb, "%02X ", c.code[offset+i])
	}
	if size > 8 {
		sb.WriteString("...")
	}
	return strings.TrimRight(sb.String(), " ")
}
