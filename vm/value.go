package vm

import (
	"math"
	"strconv"
)

// Value represents a bytecalc value using NaN-boxing.
//
// All values are 64-bit words. Scalars are native IEEE 754 doubles; array
// references are encoded in the quiet-NaN space with a tag and the block
// handle in the 48-bit payload.
//
// Encoding scheme:
//   - Scalar: native IEEE 754 double (any non-tagged bit pattern,
//     including infinities and the canonical NaN)
//   - Array: quiet NaN prefix + tagArray + handle payload
//     (slot index in the low 32 bits, generation in the next 16)
type Value uint64

const (
	// Quiet NaN prefix: exponent all 1s, quiet bit set, sign bit 0.
	nanBits uint64 = 0x7FF8000000000000

	// Tag bits within the NaN mantissa space.
	tagMask  uint64 = 0x0007000000000000
	tagArray uint64 = 0x0001000000000000

	// 48-bit payload: handle index and generation.
	payloadMask uint64 = 0x0000FFFFFFFFFFFF
)

// Scalar boxes a float64 as a Value. Real NaN inputs are canonicalized so
// they can never collide with a tagged array reference.
func Scalar(f float64) Value {
	if math.IsNaN(f) {
		return Value(nanBits)
	}
	return Value(math.Float64bits(f))
}

// Array boxes a block handle as a Value.
func Array(h Handle) Value {
	payload := uint64(h.index) | uint64(h.gen)<<32
	return Value(nanBits | tagArray | payload)
}

// IsScalar returns true if v holds a double (including Inf and NaN).
func (v Value) IsScalar() bool {
	bits := uint64(v)
	if bits&0x7FF0000000000000 != 0x7FF0000000000000 {
		// Exponent not all 1s: a regular float.
		return true
	}
	if bits&0x000FFFFFFFFFFFFF == 0 {
		// Infinity.
		return true
	}
	// NaN space: scalar only if untagged (the canonical NaN).
	return bits&tagMask == 0
}

// IsArray returns true if v holds an array reference.
func (v Value) IsArray() bool {
	return !v.IsScalar() && uint64(v)&tagMask == tagArray
}

// Float unboxes a scalar. Meaningless for array values; check IsScalar first.
func (v Value) Float() float64 {
	return math.Float64frombits(uint64(v))
}

// Handle unboxes an array reference. Meaningless for scalars; check IsArray
// first.
func (v Value) Handle() Handle {
	payload := uint64(v) & payloadMask
	return Handle{
		index: uint32(payload),
		gen:   uint16(payload >> 32),
	}
}

// String renders the value for traces and diagnostics. Array contents live
// on the heap; rendering them needs the Manager, see Machine.FormatValue.
func (v Value) String() string {
	if v.IsArray() {
		return v.Handle().String()
	}
	return strconv.FormatFloat(v.Float(), 'g', -1, 64)
}
