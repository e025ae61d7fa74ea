package bytecode

import (
	"encoding/binary"
	"math"
)

// Chunk represents a compiled instruction stream together with its debug
// line table. It is the unit of execution handed to the virtual machine.
//
// Encoding:
//   - 1-byte opcode tags
//   - OpPush: opcode + 8 bytes little-endian IEEE-754 double
//   - OpPushArray: opcode + 8 bytes little-endian element count
//     (the elements themselves are pushed by preceding instructions)
//   - all other opcodes: single byte
//   - a well-formed chunk ends with exactly one OpHalt
//
// A chunk is immutable once handed to the VM; the VM never mutates it and
// it may be reused for sequential runs.
type Chunk struct {
	code []byte
	// Source line per code byte, parallel to code. Used for diagnostics.
	lines []int
}

// NewChunk creates a new empty chunk.
func NewChunk() *Chunk {
	return &Chunk{
		code:  make([]byte, 0, 64),
		lines: make([]int, 0, 64),
	}
}

// WriteByte appends a single raw byte attributed to a source line.
func (c *Chunk) WriteByte(b byte, line int) {
	c.code = append(c.code, b)
	c.lines = append(c.lines, line)
}

// WriteOp appends an opcode byte.
func (c *Chunk) WriteOp(op Opcode, line int) {
	c.WriteByte(byte(op), line)
}

// WritePush appends an OpPush instruction with its f64 constant.
func (c *Chunk) WritePush(value float64, line int) {
	c.WriteOp(OpPush, line)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], math.Float64bits(value))
	for _, b := range buf {
		c.WriteByte(b, line)
	}
}

// WritePushArray appends an OpPushArray instruction with its element count.
func (c *Chunk) WritePushArray(count uint64, line int) {
	c.WriteOp(OpPushArray, line)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], count)
	for _, b := range buf {
		c.WriteByte(b, line)
	}
}

// Code returns the raw instruction bytes.
func (c *Chunk) Code() []byte {
	return c.code
}

// Len returns the length of the instruction stream in bytes.
func (c *Chunk) Len() int {
	return len(c.code)
}

// IsEmpty returns true if the chunk contains no instructions.
func (c *Chunk) IsEmpty() bool {
	return len(c.code) == 0
}

// Line returns the source line recorded for a byte offset, or 0 if the
// offset is out of range.
func (c *Chunk) Line(offset int) int {
	if offset < 0 || offset >= len(c.lines) {
		return 0
	}
	return c.lines[offset]
}

// ReadFloat64 decodes the little-endian f64 operand at offset.
// Returns false if fewer than 8 bytes remain.
func (c *Chunk) ReadFloat64(offset int) (float64, bool) {
	if offset < 0 || offset+8 > len(c.code) {
		return 0, false
	}
	bits := binary.LittleEndian.Uint64(c.code[offset : offset+8])
	return math.Float64frombits(bits), true
}

// ReadUint64 decodes the little-endian u64 operand at offset.
// Returns false if fewer than 8 bytes remain.
func (c *Chunk) ReadUint64(offset int) (uint64, bool) {
	if offset < 0 || offset+8 > len(c.code) {
		return 0, false
	}
	return binary.LittleEndian.Uint64(c.code[offset : offset+8]), true
}
