package bytecode

import (
	"strings"
	"testing"
)

func testProgram() *Chunk {
	c := NewChunk()
	c.WritePush(2, 1)
	c.WritePush(3, 1)
	c.WriteOp(OpAdd, 1)
	c.WritePushArray(1, 2)
	c.WriteOp(OpSum, 2)
	c.WriteOp(OpHalt, 2)
	return c
}

func TestDisassembleOffsets(t *testing.T) {
	instructions := testProgram().Disassemble()
	if len(instructions) != 6 {
		t.Fatalf("decoded %d instructions, want 6", len(instructions))
	}

	wantOffsets := []int{0, 9, 18, 19, 28, 29}
	wantOps := []Opcode{OpPush, OpPush, OpAdd, OpPushArray, OpSum, OpHalt}
	for i, in := range instructions {
		if in.Offset != wantOffsets[i] {
			t.Errorf("instruction %d offset = %d, want %d", i, in.Offset, wantOffsets[i])
		}
		if in.Op != wantOps[i] {
			t.Errorf("instruction %d op = %s, want %s", i, in.Op, wantOps[i])
		}
	}
}

func TestDisassembleOperands(t *testing.T) {
	instructions := testProgram().Disassemble()

	if !instructions[0].HasOperand || instructions[0].Operand != 2 {
		t.Errorf("instruction 0 = %+v, want PUSH 2", instructions[0])
	}
	if !instructions[3].HasCount || instructions[3].ArrayCount != 1 {
		t.Errorf("instruction 3 = %+v, want PUSH_ARR count=1", instructions[3])
	}
	if instructions[2].HasOperand || instructions[2].HasCount {
		t.Errorf("ADD carries an operand: %+v", instructions[2])
	}
}

func TestDisassembleLines(t *testing.T) {
	instructions := testProgram().Disassemble()
	wantLines := []int{1, 1, 1, 2, 2, 2}
	for i, in := range instructions {
		if in.Line != wantLines[i] {
			t.Errorf("instruction %d line = %d, want %d", i, in.Line, wantLines[i])
		}
	}
}

func TestDisassembleStopsAtBadByte(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OpAdd, 1)
	c.WriteByte(0x99, 1)
	c.WriteOp(OpHalt, 1)

	instructions := c.Disassemble()
	if len(instructions) != 1 {
		t.Errorf("decoded %d instructions past a bad byte, want 1", len(instructions))
	}
}

func TestDisassembleTruncatedOperand(t *testing.T) {
	c := NewChunk()
	c.WriteByte(byte(OpPush), 1)
	c.WriteByte(0x00, 1) // only one of eight operand bytes

	if _, _, ok := c.DisassembleAt(0); ok {
		t.Error("DisassembleAt decoded a truncated PUSH")
	}
}

func TestInstructionText(t *testing.T) {
	cases := []struct {
		in   Instruction
		want string
	}{
		{Instruction{Op: OpPush, Operand: 2.5, HasOperand: true}, "PUSH 2.5"},
		{Instruction{Op: OpPushArray, ArrayCount: 4, HasCount: true}, "PUSH_ARR count=4"},
		{Instruction{Op: OpHalt}, "HALT"},
	}
	for _, tc := range cases {
		if got := tc.in.Text(); got != tc.want {
			t.Errorf("Text() = %q, want %q", got, tc.want)
		}
	}
}

func TestFormatListing(t *testing.T) {
	out := testProgram().Format()

	if !strings.Contains(out, "0x0000: PUSH 2") {
		t.Errorf("listing missing first instruction:\n%s", out)
	}
	if !strings.Contains(out, "0x001D: HALT") {
		t.Errorf("listing missing HALT at 0x001D:\n%s", out)
	}
}

func TestFormatWithHexColumns(t *testing.T) {
	c := NewChunk()
	c.WriteOp(OpAdd, 1)
	c.WriteOp(OpHalt, 1)
	out := c.FormatWithHex()

	if !strings.Contains(out, "10") || !strings.Contains(out, "FF") {
		t.Errorf("hex listing missing raw bytes:\n%s", out)
	}
	if !strings.Contains(out, "ADD") || !strings.Contains(out, "HALT") {
		t.Errorf("hex listing missing mnemonics:\n%s", out)
	}
}
