package bytecode

import "testing"

func TestEveryOpcodeHasMetadata(t *testing.T) {
	for _, op := range AllOpcodes() {
		info := GetOpcodeInfo(op)
		if info.Name == "" {
			t.Errorf("opcode 0x%02X has no name", byte(op))
		}
	}
	if OpcodeCount() != len(AllOpcodes()) {
		t.Errorf("OpcodeCount = %d, AllOpcodes yields %d", OpcodeCount(), len(AllOpcodes()))
	}
}

func TestFromByteRoundTrip(t *testing.T) {
	for _, op := range AllOpcodes() {
		got, ok := FromByte(byte(op))
		if !ok {
			t.Errorf("FromByte(0x%02X) not recognized", byte(op))
		}
		if got != op {
			t.Errorf("FromByte(0x%02X) = %s, want %s", byte(op), got, op)
		}
	}
}

func TestFromByteRejectsUnknown(t *testing.T) {
	for _, b := range []byte{0x00, 0x05, 0x18, 0x3D, 0x60, 0xFE} {
		if op, ok := FromByte(b); ok {
			t.Errorf("FromByte(0x%02X) accepted as %s", b, op)
		}
	}
}

func TestOperandWidths(t *testing.T) {
	if OpPush.OperandLen() != 8 {
		t.Errorf("PUSH operand width = %d, want 8", OpPush.OperandLen())
	}
	if OpPushArray.OperandLen() != 8 {
		t.Errorf("PUSH_ARR operand width = %d, want 8", OpPushArray.OperandLen())
	}
	if OpAdd.OperandLen() != 0 {
		t.Errorf("ADD operand width = %d, want 0", OpAdd.OperandLen())
	}
	if OpPush.InstructionLen() != 9 {
		t.Errorf("PUSH instruction length = %d, want 9", OpPush.InstructionLen())
	}
	if OpHalt.InstructionLen() != 1 {
		t.Errorf("HALT instruction length = %d, want 1", OpHalt.InstructionLen())
	}
}

func TestOpcodeFamilies(t *testing.T) {
	// Dispatch relies on the families partitioning the math opcodes: no
	// opcode may belong to two of them.
	for _, op := range AllOpcodes() {
		n := 0
		if op.IsUnary() {
			n++
		}
		if op.IsBinary() {
			n++
		}
		if op.IsReduction() {
			n++
		}
		if n > 1 {
			t.Errorf("opcode %s belongs to %d families", op, n)
		}
	}

	if !OpNeg.IsUnary() || !OpFactorial.IsUnary() || !OpSin.IsUnary() {
		t.Error("NEG, FACT and SIN must be unary")
	}
	if !OpAdd.IsBinary() || !OpGcd.IsBinary() {
		t.Error("ADD and GCD must be binary")
	}
	if !OpSum.IsReduction() || !OpLen.IsReduction() {
		t.Error("SUM and LEN must be reductions")
	}
	if OpPush.IsUnary() || OpHalt.IsBinary() || OpDup.IsReduction() {
		t.Error("stack opcodes must not join a math family")
	}
}

func TestOpcodeStackEffects(t *testing.T) {
	cases := []struct {
		op        Opcode
		pop, push int
	}{
		{OpPush, 0, 1},
		{OpPop, 1, 0},
		{OpDup, 1, 2},
		{OpAdd, 2, 1},
		{OpNeg, 1, 1},
		{OpSum, 1, 1},
		{OpHalt, 0, 0},
	}
	for _, tc := range cases {
		info := GetOpcodeInfo(tc.op)
		if info.StackPop != tc.pop || info.StackPush != tc.push {
			t.Errorf("%s stack effect = %d/%d, want %d/%d",
				tc.op, info.StackPop, info.StackPush, tc.pop, tc.push)
		}
	}

	// PUSH_ARR pops a chunk-encoded element count; -1 flags the variable
	// arity.
	if GetOpcodeInfo(OpPushArray).StackPop != -1 {
		t.Errorf("PUSH_ARR StackPop = %d, want -1", GetOpcodeInfo(OpPushArray).StackPop)
	}
}
