package harness

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/recsnap/internal/ir"
)

// Assertion kinds, used to categorize failures.
const (
	AssertExpect      = "expect"
	AssertExact       = "exact"
	AssertAbsent      = "absent"
	AssertExpectError = "expect_error"
	AssertProjection  = "projection"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string      // Assertion kind for categorization
	Path     string      // Snapshot path the assertion looked at
	Expected string      // Human-readable expected outcome
	Actual   string      // Human-readable actual outcome
	Snapshot ir.IRObject // Full snapshot for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s", e.Type)
	if e.Path != "" {
		fmt.Fprintf(&buf, " at %s", e.Path)
	}
	buf.WriteString("\n")

	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if e.Snapshot != nil {
		if data, err := ir.MarshalCanonical(e.Snapshot); err == nil {
			fmt.Fprintf(&buf, "\nSnapshot:\n  %s\n", data)
		}
	}

	return buf.String()
}

// EvaluateAssertions checks a result against the scenario's expectations and
// returns one message per failed assertion.
func EvaluateAssertions(result *Result, scenario *Scenario) []string {
	var errs []string
	add := func(err error) {
		if err != nil {
			errs = append(errs, err.Error())
		}
	}

	if scenario.ExpectError != "" {
		add(assertProjectionError(result, scenario.ExpectError))
		return errs
	}

	if result.ProjectionError != "" {
		add(&AssertionError{
			Type:     AssertProjection,
			Expected: "projection to succeed",
			Actual:   result.ProjectionError,
		})
		return errs
	}

	if scenario.Expect != nil {
		if scenario.Exact {
			add(assertExact(result.Snapshot, scenario.Expect))
		} else {
			add(assertExpect(result.Snapshot, scenario.Expect))
		}
	}

	for _, key := range scenario.Absent {
		add(assertAbsent(result.Snapshot, key))
	}

	return errs
}

func assertProjectionError(result *Result, want string) error {
	if result.ProjectionError == "" {
		return &AssertionError{
			Type:     AssertExpectError,
			Expected: fmt.Sprintf("projection error containing %q", want),
			Actual:   "projection succeeded",
			Snapshot: result.Snapshot,
		}
	}
	if !strings.Contains(result.ProjectionError, want) {
		return &AssertionError{
			Type:     AssertExpectError,
			Expected: fmt.Sprintf("projection error containing %q", want),
			Actual:   result.ProjectionError,
		}
	}
	return nil
}

// assertExpect checks every expected key with subset semantics.
// Keys are visited in sorted order so failures are reported deterministically.
func assertExpect(snap ir.IRObject, expect map[string]any) error {
	want, err := ir.FromAny(map[string]any(expect))
	if err != nil {
		return &AssertionError{
			Type:     AssertExpect,
			Expected: "a valid expectation",
			Actual:   err.Error(),
		}
	}

	if path, ok := matchSubset(want, snap, ""); !ok {
		return &AssertionError{
			Type:     AssertExpect,
			Path:     path,
			Expected: describe(lookupPath(want, path)),
			Actual:   describe(lookupPath(snap, path)),
			Snapshot: snap,
		}
	}
	return nil
}

func assertExact(snap ir.IRObject, expect map[string]any) error {
	want, err := ir.FromAny(map[string]any(expect))
	if err != nil {
		return &AssertionError{
			Type:     AssertExact,
			Expected: "a valid expectation",
			Actual:   err.Error(),
		}
	}
	if !ir.Equal(want, snap) {
		return &AssertionError{
			Type:     AssertExact,
			Expected: describe(want),
			Actual:   describe(snap),
		}
	}
	return nil
}

func assertAbsent(snap ir.IRObject, key string) error {
	if v, ok := snap[key]; ok {
		return &AssertionError{
			Type:     AssertAbsent,
			Path:     key,
			Expected: "key to be absent",
			Actual:   describe(v),
			Snapshot: snap,
		}
	}
	return nil
}

// matchSubset reports whether actual contains want. Objects match when every
// key of want matches; arrays must have the same length and match
// element-wise; scalars must be equal. On mismatch the dotted path of the
// first difference is returned.
func matchSubset(want, actual ir.IRValue, path string) (string, bool) {
	switch w := want.(type) {
	case ir.IRObject:
		a, ok := actual.(ir.IRObject)
		if !ok {
			return path, false
		}
		keys := make([]string, 0, len(w))
		for k := range w {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			child := joinPath(path, k)
			av, ok := a[k]
			if !ok {
				return child, false
			}
			if p, ok := matchSubset(w[k], av, child); !ok {
				return p, false
			}
		}
		return "", true
	case ir.IRArray:
		a, ok := actual.(ir.IRArray)
		if !ok || len(a) != len(w) {
			return path, false
		}
		for i := range w {
			if p, ok := matchSubset(w[i], a[i], fmt.Sprintf("%s[%d]", path, i)); !ok {
				return p, false
			}
		}
		return "", true
	default:
		if !ir.Equal(want, actual) {
			return path, false
		}
		return "", true
	}
}

func joinPath(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

// lookupPath resolves a path produced by matchSubset. Missing segments yield nil.
func lookupPath(v ir.IRValue, path string) ir.IRValue {
	if path == "" {
		return v
	}
	for _, seg := range splitPath(path) {
		switch cur := v.(type) {
		case ir.IRObject:
			v = cur[seg.key]
			if seg.index >= 0 {
				arr, ok := v.(ir.IRArray)
				if !ok || seg.index >= len(arr) {
					return nil
				}
				v = arr[seg.index]
			}
		case ir.IRArray:
			if seg.index < 0 || seg.index >= len(cur) {
				return nil
			}
			v = cur[seg.index]
		default:
			return nil
		}
		if v == nil {
			return nil
		}
	}
	return v
}

type pathSegment struct {
	key   string
	index int
}

func splitPath(path string) []pathSegment {
	var segs []pathSegment
	for _, part := range strings.Split(path, ".") {
		seg := pathSegment{key: part, index: -1}
		if open := strings.IndexByte(part, '['); open >= 0 {
			seg.key = part[:open]
			fmt.Sscanf(part[open:], "[%d]", &seg.index)
		}
		segs = append(segs, seg)
	}
	return segs
}

func describe(v ir.IRValue) string {
	if v == nil {
		return "<missing>"
	}
	data, err := ir.MarshalCanonical(v)
	if err != nil {
		return fmt.Sprintf("%#v", v)
	}
	return string(data)
}
