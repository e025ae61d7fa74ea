package bytecode

import "fmt"

// Opcode represents a bytecode instruction.
// Opcodes are organized into ranges by category for easy identification.
type Opcode byte

const (
	// ========================================================================
	// Stack operations (0x01-0x0F)
	// ========================================================================

	OpPush      Opcode = 0x01 // Push constant: OpPush <value:f64le>
	OpPop       Opcode = 0x02 // Pop top of stack
	OpDup       Opcode = 0x03 // Duplicate top of stack
	OpPushArray Opcode = 0x04 // Collect elements into array: OpPushArray <count:u64le>

	// ========================================================================
	// Arithmetic (0x10-0x1F)
	// ========================================================================

	OpAdd       Opcode = 0x10 // Pop two, push sum
	OpSub       Opcode = 0x11 // Pop two, push difference (a - b where b is TOS)
	OpMul       Opcode = 0x12 // Pop two, push product
	OpDiv       Opcode = 0x13 // Pop two, push quotient (IEEE-754, never fails)
	OpPow       Opcode = 0x14 // Pop two, push a raised to b
	OpNeg       Opcode = 0x15 // Negate top of stack
	OpMod       Opcode = 0x16 // Pop two, push truncating remainder
	OpFactorial Opcode = 0x17 // Pop one, push factorial

	// ========================================================================
	// Trigonometric functions, radians (0x20-0x2F)
	// ========================================================================

	OpSin  Opcode = 0x20
	OpCos  Opcode = 0x21
	OpTan  Opcode = 0x22
	OpAsin Opcode = 0x23
	OpAcos Opcode = 0x24
	OpAtan Opcode = 0x25
	OpSinh Opcode = 0x26
	OpCosh Opcode = 0x27
	OpTanh Opcode = 0x28

	// ========================================================================
	// Mathematical functions (0x30-0x3F)
	// ========================================================================

	OpSqrt  Opcode = 0x30
	OpLog   Opcode = 0x31 // log base 10
	OpLn    Opcode = 0x32 // natural log
	OpAbs   Opcode = 0x33
	OpFloor Opcode = 0x34
	OpCeil  Opcode = 0x35
	OpCbrt  Opcode = 0x36
	OpLog2  Opcode = 0x37
	OpExp   Opcode = 0x38 // e raised to x
	OpRound Opcode = 0x39
	OpSign  Opcode = 0x3A // -1, 0 or 1
	OpToRad Opcode = 0x3B // degrees to radians
	OpToDeg Opcode = 0x3C // radians to degrees

	// ========================================================================
	// Array reductions (0x40-0x4F)
	// ========================================================================

	OpSum Opcode = 0x40
	OpAvg Opcode = 0x41
	OpMin Opcode = 0x42
	OpMax Opcode = 0x43
	OpLen Opcode = 0x44

	// ========================================================================
	// Combinatorial functions (0x50-0x5F)
	// ========================================================================

	OpGcd Opcode = 0x50 // Greatest common divisor
	OpLcm Opcode = 0x51 // Least common multiple
	OpNpr Opcode = 0x52 // Permutations nPr
	OpNcr Opcode = 0x53 // Combinations nCr

	// ========================================================================
	// Control (0xF0-0xFF)
	// ========================================================================

	OpHalt Opcode = 0xFF // Terminate execution
)

// OpcodeInfo provides metadata about each opcode for disassembly and validation.
type OpcodeInfo struct {
	Name       string // Human-readable name
	StackPop   int    // How many values popped from stack (-1 = variable)
	StackPush  int    // How many values pushed to stack
	OperandLen int    // Number of operand bytes following the opcode
}

// opcodeInfoTable maps opcodes to their metadata.
var opcodeInfoTable = map[Opcode]OpcodeInfo{
	// Stack operations
	OpPush:      {"PUSH", 0, 1, 8},
	OpPop:       {"POP", 1, 0, 0},
	OpDup:       {"DUP", 1, 2, 0},
	OpPushArray: {"PUSH_ARR", -1, 1, 8}, // Pops <count> scalars

	// Arithmetic
	OpAdd:       {"ADD", 2, 1, 0},
	OpSub:       {"SUB", 2, 1, 0},
	OpMul:       {"MUL", 2, 1, 0},
	OpDiv:       {"DIV", 2, 1, 0},
	OpPow:       {"POW", 2, 1, 0},
	OpNeg:       {"NEG", 1, 1, 0},
	OpMod:       {"MOD", 2, 1, 0},
	OpFactorial: {"FACT", 1, 1, 0},

	// Trigonometric
	OpSin:  {"SIN", 1, 1, 0},
	OpCos:  {"COS", 1, 1, 0},
	OpTan:  {"TAN", 1, 1, 0},
	OpAsin: {"ASIN", 1, 1, 0},
	OpAcos: {"ACOS", 1, 1, 0},
	OpAtan: {"ATAN", 1, 1, 0},
	OpSinh: {"SINH", 1, 1, 0},
	OpCosh: {"COSH", 1, 1, 0},
	OpTanh: {"TANH", 1, 1, 0},

	// Mathematical
	OpSqrt:  {"SQRT", 1, 1, 0},
	OpLog:   {"LOG", 1, 1, 0},
	OpLn:    {"LN", 1, 1, 0},
	OpAbs:   {"ABS", 1, 1, 0},
	OpFloor: {"FLOOR", 1, 1, 0},
	OpCeil:  {"CEIL", 1, 1, 0},
	OpCbrt:  {"CBRT", 1, 1, 0},
	OpLog2:  {"LOG2", 1, 1, 0},
	OpExp:   {"EXP", 1, 1, 0},
	OpRound: {"ROUND", 1, 1, 0},
	OpSign:  {"SIGN", 1, 1, 0},
	OpToRad: {"TORAD", 1, 1, 0},
	OpToDeg: {"TODEG", 1, 1, 0},

	// Array reductions
	OpSum: {"SUM", 1, 1, 0},
	OpAvg: {"AVG", 1, 1, 0},
	OpMin: {"MIN", 1, 1, 0},
	OpMax: {"MAX", 1, 1, 0},
	OpLen: {"LEN", 1, 1, 0},

	// Combinatorial
	OpGcd: {"GCD", 2, 1, 0},
	OpLcm: {"LCM", 2, 1, 0},
	OpNpr: {"NPR", 2, 1, 0},
	OpNcr: {"NCR", 2, 1, 0},

	// Control
	OpHalt: {"HALT", 0, 0, 0},
}

// FromByte converts a raw byte to an Opcode.
// Returns false if the byte is not a recognized opcode.
func FromByte(b byte) (Opcode, bool) {
	op := Opcode(b)
	_, ok := opcodeInfoTable[op]
	return op, ok
}

// GetOpcodeInfo returns metadata for an opcode.
// Returns a zero OpcodeInfo with name "UNKNOWN" if the opcode is not recognized.
func GetOpcodeInfo(op Opcode) OpcodeInfo {
	if info, ok := opcodeInfoTable[op]; ok {
		return info
	}
	return OpcodeInfo{Name: fmt.Sprintf("UNKNOWN(0x%02X)", byte(op))}
}

// String returns the human-readable name of an opcode.
func (op Opcode) String() string {
	return GetOpcodeInfo(op).Name
}

// OperandLen returns the number of operand bytes for this opcode.
func (op Opcode) OperandLen() int {
	return GetOpcodeInfo(op).OperandLen
}

// InstructionLen returns the total encoded length of an instruction
// (1 opcode byte + operand bytes).
func (op Opcode) InstructionLen() int {
	return 1 + op.OperandLen()
}

// HasOperand returns true if this opcode is followed by an inline operand.
func (op Opcode) HasOperand() bool {
	return op == OpPush || op == OpPushArray
}

// IsUnary returns true if this opcode pops one scalar and pushes one scalar.
func (op Opcode) IsUnary() bool {
	return (op >= OpSin && op <= OpTanh) || (op >= OpSqrt && op <= OpToDeg) ||
		op == OpNeg || op == OpFactorial
}

// IsBinary returns true if this opcode pops two scalars and pushes one.
func (op Opcode) IsBinary() bool {
	return (op >= OpAdd && op <= OpMod && op != OpNeg) || (op >= OpGcd && op <= OpNcr)
}

// IsReduction returns true if this opcode pops one array and pushes one scalar.
func (op Opcode) IsReduction() bool {
	return op >= OpSum && op <= OpLen
}

// AllOpcodes returns a slice of all defined opcodes.
// Useful for testing that all opcodes have metadata.
func AllOpcodes() []Opcode {
	opcodes := make([]Opcode, 0, len(opcodeInfoTable))
	for op := range opcodeInfoTable {
		opcodes = append(opcodes, op)
	}
	return opcodes
}

// OpcodeCount returns the number of defined opcodes.
func OpcodeCount() int {
	return len(opcodeInfoTable)
}
