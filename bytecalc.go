// Package bytecalc evaluates calculator expressions through a full
// compilation pipeline:
//
//	input -> lexer -> parser -> codegen -> bytecode -> virtual machine
//
// Example:
//
//	result, err := bytecalc.Evaluate("sin(90) + 2^3")
//
// The subpackages expose each stage: compiler lexes, parses and compiles
// expressions, pkg/bytecode holds the instruction encoding and
// disassembler, and vm executes chunks on a garbage-collected stack
// machine.
package bytecalc

import (
	"github.com/bytecalc/bytecalc/compiler"
	"github.com/bytecalc/bytecalc/pkg/bytecode"
	"github.com/bytecalc/bytecalc/vm"
)

// Evaluate compiles and runs an expression, returning its numeric result.
// Each call uses a fresh machine; use vm.Machine directly to reuse one or
// to inspect traces and statistics.
func Evaluate(input string) (float64, error) {
	chunk, err := compiler.Compile(input)
	if err != nil {
		return 0, err
	}
	m := vm.NewMachine()
	defer m.Close()
	return m.Run(chunk)
}

// Compile compiles an expression to an executable bytecode chunk.
func Compile(input string) (*bytecode.Chunk, error) {
	return compiler.Compile(input)
}

// Disassemble compiles an expression and returns its bytecode listing
// with a hex dump column.
func Disassemble(input string) (string, error) {
	chunk, err := compiler.Compile(input)
	if err != nil {
		return "", err
	}
	return chunk.FormatWithHex(), nil
}
