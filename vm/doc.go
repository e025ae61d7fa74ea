// Package vm implements the calculator's execution engine: a stack machine
// operating on NaN-boxed values, backed by an arena memory manager and a
// mark-and-sweep garbage collector for array storage.
//
// The machine owns its collector, the collector owns its manager; arrays
// live on the managed heap and are referenced by generation-checked
// handles, so a freed or recycled block can never be confused with a live
// one. Scalars never touch the heap.
package vm
