package vm

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"github.com/bytecalc/bytecalc/pkg/bytecode"
)

// State is the machine's run state.
type State int

const (
	StateReady   State = iota // No run started yet
	StateRunning              // Executing a chunk
	StateHalted               // Last run produced a result
	StateFailed               // Last run aborted with an error
)

func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Machine executes bytecode chunks on a value stack, allocating array
// values through its own garbage collector. Each Run creates the stack and
// trace fresh and discards them at completion; only the statistics
// snapshots survive the call.
//
// A Machine assumes exclusive, non-concurrent access; it holds its
// Collector by exclusive ownership rather than through shared state so
// independent machines can run side by side at the process level.
type Machine struct {
	gc      *Collector
	chunk   *bytecode.Chunk
	ip      int
	stack   []Value
	state   State
	tracing bool
	trace   []Step

	// Statistics snapshots as of the moment the last run ended.
	memStats MemoryStats
	gcStats  GcStats

	rootBuf []Handle // scratch for root-set recomputation
}

// NewMachine creates a machine with a fresh collector using default
// thresholds.
func NewMachine() *Machine {
	return NewMachineWithCollector(NewCollector())
}

// NewMachineWithCollector creates a machine that takes ownership of the
// given collector for the duration of its lifetime.
func NewMachineWithCollector(gc *Collector) *Machine {
	return &Machine{
		gc:    gc,
		stack: make([]Value, 0, 64),
		state: StateReady,
	}
}

// SetTracing enables or disables per-instruction trace recording for
// subsequent runs. Tracing is a pure observer: it never changes the result
// or the sequence of executed opcodes.
func (m *Machine) SetTracing(on bool) {
	m.tracing = on
}

// Run executes one chunk to completion and returns its numeric result.
// The first failing opcode aborts the run immediately; the trace
// accumulated up to that point remains available via Trace.
func (m *Machine) Run(chunk *bytecode.Chunk) (float64, error) {
	m.chunk = chunk
	m.ip = 0
	m.stack = m.stack[:0]
	m.trace = nil
	m.state = StateRunning
	m.gc.ClearRoots()

	result, err := m.run()

	m.memStats = m.gc.MemoryStats()
	m.gcStats = m.gc.Stats()

	if err != nil {
		m.state = StateFailed
		return 0, err
	}
	m.state = StateHalted
	return result, nil
}

// run is the main decode-dispatch loop.
func (m *Machine) run() (float64, error) {
	code := m.chunk.Code()

	for {
		if m.ip >= len(code) {
			return 0, m.errorf(KindInvalidOpcode, m.ip, "execution ran past end of chunk without HALT")
		}

		offset := m.ip
		op, ok := bytecode.FromByte(code[offset])
		if !ok {
			return 0, m.errorf(KindInvalidOpcode, offset, "unrecognized opcode 0x%02X", code[offset])
		}

		var before []Value
		if m.tracing {
			before = m.snapshot()
		}

		var operand float64
		hasOperand := false

		switch op {
		case bytecode.OpPush:
			value, ok := m.chunk.ReadFloat64(offset + 1)
			if !ok {
				return 0, m.errorf(KindInvalidOpcode, offset, "truncated PUSH operand")
			}
			operand, hasOperand = value, true
			m.push(Scalar(value))

		case bytecode.OpPop:
			if _, err := m.pop(offset); err != nil {
				return 0, err
			}

		case bytecode.OpDup:
			if len(m.stack) == 0 {
				return 0, m.errorf(KindStackUnderflow, offset, "DUP on empty stack")
			}
			// A duplicated array value aliases the same block; lifetime is
			// governed solely by reachability, never per-copy.
			m.push(m.stack[len(m.stack)-1])

		case bytecode.OpPushArray:
			count, ok := m.chunk.ReadUint64(offset + 1)
			if !ok {
				return 0, m.errorf(KindInvalidOpcode, offset, "truncated PUSH_ARR operand")
			}
			operand, hasOperand = float64(count), true
			if err := m.pushArray(offset, count); err != nil {
				return 0, err
			}

		case bytecode.OpHalt:
			result, err := m.finish(offset)
			if err != nil {
				return 0, err
			}
			if m.tracing {
				m.appendStep(offset, op, operand, hasOperand, before)
			}
			return result, nil

		default:
			var err error
			switch {
			case op.IsBinary():
				err = m.binaryOp(op, offset)
			case op.IsReduction():
				err = m.reduceOp(op, offset)
			case op.IsUnary():
				err = m.unaryOp(op, offset)
			default:
				err = m.errorf(KindInvalidOpcode, offset, "opcode %s has no dispatch rule", op)
			}
			if err != nil {
				return 0, err
			}
		}

		if m.tracing {
			m.appendStep(offset, op, operand, hasOperand, before)
		}
		m.ip = offset + op.InstructionLen()
	}
}

// finish applies the completion rule at HALT: exactly one scalar must
// remain, which becomes the result.
func (m *Machine) finish(offset int) (float64, error) {
	switch {
	case len(m.stack) == 0:
		return 0, m.errorf(KindStackUnderflow, offset, "empty stack at HALT")
	case len(m.stack) > 1:
		return 0, m.errorf(KindStackLeftover, offset, "%d values left on stack at HALT", len(m.stack))
	}
	v := m.stack[0]
	if !v.IsScalar() {
		return 0, m.errorf(KindType, offset, "result is an array, expected a scalar")
	}
	m.stack = m.stack[:0]
	return v.Float(), nil
}

// ---------------------------------------------------------------------------
// Opcode families
// ---------------------------------------------------------------------------

func (m *Machine) unaryOp(op bytecode.Opcode, offset int) error {
	x, err := m.popScalar(offset)
	if err != nil {
		return err
	}

	var r float64
	switch op {
	case bytecode.OpNeg:
		r = -x
	case bytecode.OpFactorial:
		r, err = m.factorial(x, offset)
	case bytecode.OpSin:
		r = math.Sin(x)
	case bytecode.OpCos:
		r = math.Cos(x)
	case bytecode.OpTan:
		r = math.Tan(x)
	case bytecode.OpAsin:
		r = math.Asin(x)
	case bytecode.OpAcos:
		r = math.Acos(x)
	case bytecode.OpAtan:
		r = math.Atan(x)
	case bytecode.OpSinh:
		r = math.Sinh(x)
	case bytecode.OpCosh:
		r = math.Cosh(x)
	case bytecode.OpTanh:
		r = math.Tanh(x)
	case bytecode.OpSqrt:
		r = math.Sqrt(x)
	case bytecode.OpCbrt:
		r = math.Cbrt(x)
	case bytecode.OpLog:
		r = math.Log10(x)
	case bytecode.OpLog2:
		r = math.Log2(x)
	case bytecode.OpLn:
		r = math.Log(x)
	case bytecode.OpExp:
		r = math.Exp(x)
	case bytecode.OpAbs:
		r = math.Abs(x)
	case bytecode.OpFloor:
		r = math.Floor(x)
	case bytecode.OpCeil:
		r = math.Ceil(x)
	case bytecode.OpRound:
		r = math.Round(x)
	case bytecode.OpSign:
		switch {
		case math.IsNaN(x):
			r = x
		case x > 0:
			r = 1
		case x < 0:
			r = -1
		default:
			r = 0
		}
	case bytecode.OpToRad:
		r = x * math.Pi / 180
	case bytecode.OpToDeg:
		r = x * 180 / math.Pi
	default:
		return m.errorf(KindInvalidOpcode, offset, "opcode %s is not a unary operation", op)
	}
	if err != nil {
		return err
	}

	m.push(Scalar(r))
	return nil
}

func (m *Machine) binaryOp(op bytecode.Opcode, offset int) error {
	b, err := m.popScalar(offset)
	if err != nil {
		return err
	}
	a, err := m.popScalar(offset)
	if err != nil {
		return err
	}

	var r float64
	switch op {
	case bytecode.OpAdd:
		r = a + b
	case bytecode.OpSub:
		r = a - b
	case bytecode.OpMul:
		r = a * b
	case bytecode.OpDiv:
		// IEEE-754: zero divisors produce infinities or NaN, never an error.
		r = a / b
	case bytecode.OpPow:
		r = math.Pow(a, b)
	case bytecode.OpMod:
		// Truncating remainder; sign follows the dividend.
		r = math.Mod(a, b)
	case bytecode.OpGcd, bytecode.OpLcm, bytecode.OpNpr, bytecode.OpNcr:
		r, err = m.combinatorial(op, a, b, offset)
		if err != nil {
			return err
		}
	default:
		return m.errorf(KindInvalidOpcode, offset, "opcode %s is not a binary operation", op)
	}

	m.push(Scalar(r))
	return nil
}

func (m *Machine) reduceOp(op bytecode.Opcode, offset int) error {
	v, err := m.pop(offset)
	if err != nil {
		return err
	}
	if !v.IsArray() {
		return m.errorf(KindType, offset, "%s expects an array operand", op)
	}
	elems, err := m.arrayElems(v, offset)
	if err != nil {
		return err
	}

	if len(elems) == 0 && op != bytecode.OpLen {
		return m.errorf(KindDomain, offset, "%s of an empty array is undefined", op)
	}

	var r float64
	switch op {
	case bytecode.OpSum:
		for _, e := range elems {
			r += e
		}
	case bytecode.OpAvg:
		for _, e := range elems {
			r += e
		}
		r /= float64(len(elems))
	case bytecode.OpMin:
		r = elems[0]
		for _, e := range elems[1:] {
			r = math.Min(r, e)
		}
	case bytecode.OpMax:
		r = elems[0]
		for _, e := range elems[1:] {
			r = math.Max(r, e)
		}
	case bytecode.OpLen:
		r = float64(len(elems))
	default:
		return m.errorf(KindInvalidOpcode, offset, "opcode %s is not a reduction", op)
	}

	m.push(Scalar(r))
	return nil
}

// pushArray pops the count most recently pushed scalars (order preserved)
// and constructs an array value from them. This is the only GC entry point
// in the machine: the root set is recomputed from the operand stack
// immediately before the allocation so a triggered collection sees exactly
// the reachable arrays.
func (m *Machine) pushArray(offset int, count uint64) error {
	if count > uint64(len(m.stack)) {
		return m.errorf(KindStackUnderflow, offset,
			"PUSH_ARR needs %d elements, stack holds %d", count, len(m.stack))
	}
	n := int(count)
	base := len(m.stack) - n

	elems := make([]float64, n)
	for i := 0; i < n; i++ {
		v := m.stack[base+i]
		if !v.IsScalar() {
			return m.errorf(KindType, offset, "array element %d is not a scalar", i)
		}
		elems[i] = v.Float()
	}
	m.stack = m.stack[:base]

	m.syncRoots()
	h, err := m.gc.Allocate(8 * n)
	if err != nil {
		return m.errorf(KindAllocation, offset, "array of %d elements: %v", n, err)
	}

	buf, ok := m.gc.Memory().Bytes(h)
	if !ok {
		return m.errorf(KindAllocation, offset, "freshly allocated block is not addressable")
	}
	for i, e := range elems {
		binary.LittleEndian.PutUint64(buf[8*i:], math.Float64bits(e))
	}

	m.push(Array(h))
	return nil
}

// syncRoots replaces the collector's root set with the array handles
// currently reachable from the operand stack.
func (m *Machine) syncRoots() {
	m.rootBuf = m.rootBuf[:0]
	for _, v := range m.stack {
		if v.IsArray() {
			m.rootBuf = append(m.rootBuf, v.Handle())
		}
	}
	m.gc.SetRoots(m.rootBuf)
}

// arrayElems reads an array value's elements from the heap.
func (m *Machine) arrayElems(v Value, offset int) ([]float64, error) {
	buf, ok := m.gc.Memory().Bytes(v.Handle())
	if !ok {
		return nil, m.errorf(KindAllocation, offset, "stale array handle %s", v.Handle())
	}
	elems := make([]float64, len(buf)/8)
	for i := range elems {
		elems[i] = math.Float64frombits(binary.LittleEndian.Uint64(buf[8*i:]))
	}
	return elems, nil
}

// ---------------------------------------------------------------------------
// Math helpers
// ---------------------------------------------------------------------------

// factorialSaturation is the largest n with a representable n! as a double;
// anything above saturates to +Inf rather than erroring.
const factorialSaturation = 170

func (m *Machine) factorial(x float64, offset int) (float64, error) {
	if x != math.Trunc(x) || math.IsNaN(x) {
		return 0, m.errorf(KindDomain, offset, "factorial of non-integer %v", x)
	}
	if x < 0 {
		return 0, m.errorf(KindDomain, offset, "factorial of negative number %v", x)
	}
	if x > factorialSaturation {
		return math.Inf(1), nil
	}
	r := 1.0
	for i := 2.0; i <= x; i++ {
		r *= i
	}
	return r, nil
}

func (m *Machine) combinatorial(op bytecode.Opcode, a, b float64, offset int) (float64, error) {
	if a < 0 || b < 0 || a != math.Trunc(a) || b != math.Trunc(b) ||
		math.IsNaN(a) || math.IsNaN(b) || math.IsInf(a, 0) || math.IsInf(b, 0) {
		return 0, m.errorf(KindDomain, offset, "%s requires non-negative integers, got %v and %v", op, a, b)
	}

	switch op {
	case bytecode.OpGcd:
		return gcd(a, b), nil
	case bytecode.OpLcm:
		if a == 0 || b == 0 {
			return 0, nil
		}
		return a / gcd(a, b) * b, nil
	case bytecode.OpNpr:
		if a < b {
			return 0, m.errorf(KindDomain, offset, "nPr(%v, %v) requires n >= r", a, b)
		}
		r := 1.0
		for i := 0.0; i < b; i++ {
			r *= a - i
		}
		return r, nil
	case bytecode.OpNcr:
		if a < b {
			return 0, m.errorf(KindDomain, offset, "nCr(%v, %v) requires n >= r", a, b)
		}
		r := 1.0
		for i := 1.0; i <= b; i++ {
			r = r * (a - b + i) / i
		}
		return math.Round(r), nil
	}
	return 0, m.errorf(KindInvalidOpcode, offset, "opcode %s is not combinatorial", op)
}

func gcd(a, b float64) float64 {
	for b != 0 {
		a, b = b, math.Mod(a, b)
	}
	return a
}

// ---------------------------------------------------------------------------
// Stack helpers
// ---------------------------------------------------------------------------

func (m *Machine) push(v Value) {
	m.stack = append(m.stack, v)
}

func (m *Machine) pop(offset int) (Value, error) {
	if len(m.stack) == 0 {
		return 0, m.errorf(KindStackUnderflow, offset, "pop on empty stack")
	}
	v := m.stack[len(m.stack)-1]
	m.stack = m.stack[:len(m.stack)-1]
	return v, nil
}

func (m *Machine) popScalar(offset int) (float64, error) {
	v, err := m.pop(offset)
	if err != nil {
		return 0, err
	}
	if !v.IsScalar() {
		return 0, m.errorf(KindType, offset, "expected a scalar, found an array")
	}
	return v.Float(), nil
}

func (m *Machine) snapshot() []Value {
	out := make([]Value, len(m.stack))
	copy(out, m.stack)
	return out
}

func (m *Machine) appendStep(offset int, op bytecode.Opcode, operand float64, hasOperand bool, before []Value) {
	m.trace = append(m.trace, Step{
		Offset:     offset,
		Op:         op,
		Operand:    operand,
		HasOperand: hasOperand,
		Before:     before,
		After:      m.snapshot(),
	})
}

func (m *Machine) errorf(kind ErrorKind, offset int, format string, args ...interface{}) error {
	line := 0
	if m.chunk != nil {
		line = m.chunk.Line(offset)
	}
	return &Error{
		Kind:    kind,
		Offset:  offset,
		Line:    line,
		Message: fmt.Sprintf(format, args...),
	}
}

// ---------------------------------------------------------------------------
// Post-run introspection
// ---------------------------------------------------------------------------

// State returns the machine's run state.
func (m *Machine) State() State {
	return m.state
}

// Trace returns the steps recorded during the last run. The returned slice
// is owned by the machine until the next Run; callers must treat it as
// read-only.
func (m *Machine) Trace() []Step {
	return m.trace
}

// MemoryStats returns the manager's statistics as of the moment the last
// run ended.
func (m *Machine) MemoryStats() MemoryStats {
	return m.memStats
}

// GCStats returns the collector's statistics as of the moment the last run
// ended.
func (m *Machine) GCStats() GcStats {
	return m.gcStats
}

// Collector returns the machine's collector.
func (m *Machine) Collector() *Collector {
	return m.gc
}

// FormatValue renders a value, resolving array contents through the heap.
func (m *Machine) FormatValue(v Value) string {
	if !v.IsArray() {
		return v.String()
	}
	elems, err := m.arrayElems(v, -1)
	if err != nil {
		return v.String()
	}
	parts := make([]string, len(elems))
	for i, e := range elems {
		parts[i] = Scalar(e).String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Close releases the machine's heap.
func (m *Machine) Close() {
	m.gc.Close()
}
