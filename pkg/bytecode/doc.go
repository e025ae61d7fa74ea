// Package bytecode defines the instruction set and compiled-chunk format
// executed by the bytecalc virtual machine.
//
// A chunk is a flat byte stream: 1-byte opcode tags, with OpPush carrying an
// inline 8-byte little-endian IEEE-754 double and OpPushArray carrying an
// 8-byte little-endian element count. A parallel line table maps every code
// byte back to its source line for diagnostics.
//
// Example encoding for "sin(90) + 2^3":
//
//	0x0000: PUSH 90     (9 bytes: opcode + f64)
//	0x0009: SIN         (1 byte)
//	0x000A: PUSH 2      (9 bytes)
//	0x0013: PUSH 3      (9 bytes)
//	0x001C: POW         (1 byte)
//	0x001D: ADD         (1 byte)
//	0x001E: HALT        (1 byte)
//
// The package also provides a disassembler for human-readable listings and a
// CBOR wire format so compiled chunks can be written to disk and executed
// later.
package bytecode
