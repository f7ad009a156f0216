// Package ir provides the plain value types produced by record projection.
//
// A snapshot is an IRObject: a tree of IRNull, IRString, IRInt, IRFloat,
// IRBool, IRArray and IRObject values with no behavior attached. The package also
// holds the compiled schema declarations (ModelSpec) and the canonical JSON
// encoding used to content-address snapshots.
//
// ir imports nothing internal. Every other internal package may import it.
//
// Key design constraints:
//   - Integers are int64; floats are finite float64 (no NaN or infinities)
//   - Values are trees: no shared sub-values between two snapshots
//   - All JSON tags use snake_case
package ir
