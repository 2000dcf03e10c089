// Package duration provides the timing value model attached to delay
// instructions.
//
// A Value is one of three sealed variants:
//   - Literal: a non-negative magnitude tagged with a Unit
//   - Symbol: a named placeholder carrying a Unit, resolved later by Bind
//   - Expression: a sum or scalar multiple of other values
//
// Key design constraints:
//   - Validation happens at construction and again at Bind; no other
//     package checks magnitudes (a dt magnitude is always an integer)
//   - Values are immutable; Bind returns a new value
//   - Equality is unit-literal: 1000ms != 1s, and dt never equals an
//     absolute unit
//   - Symbol identity is its (name, unit) pair, so duplicating a value
//     keeps every occurrence of a symbol bound to the same name
//
// This package imports nothing internal.
package duration
