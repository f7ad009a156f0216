package harness

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recsnap/internal/ir"
)

func sampleSnapshot() ir.IRObject {
	return ir.Obj(
		ir.O("id", ir.IRInt(1)),
		ir.O("name", ir.IRString("ada")),
		ir.O("posts", ir.Arr(
			ir.Obj(ir.O("id", ir.IRInt(101)), ir.O("title", ir.IRString("first"))),
		)),
		ir.O("profile", ir.Obj(ir.O("bio", ir.IRString("hi")))),
	)
}

func TestAssertExpect_Subset(t *testing.T) {
	err := assertExpect(sampleSnapshot(), map[string]any{
		"id":      1,
		"posts":   []any{map[string]any{"id": 101}},
		"profile": map[string]any{},
	})
	assert.NoError(t, err)
}

func TestAssertExpect_Mismatch(t *testing.T) {
	err := assertExpect(sampleSnapshot(), map[string]any{
		"posts": []any{map[string]any{"id": 999}},
	})
	require.Error(t, err)

	var assertErr *AssertionError
	require.True(t, errors.As(err, &assertErr))
	assert.Equal(t, AssertExpect, assertErr.Type)
	assert.Equal(t, "posts[0].id", assertErr.Path)
	assert.Equal(t, "999", assertErr.Expected)
	assert.Equal(t, "101", assertErr.Actual)
}

func TestAssertExpect_MissingKey(t *testing.T) {
	err := assertExpect(sampleSnapshot(), map[string]any{"email": "a@b"})
	require.Error(t, err)

	var assertErr *AssertionError
	require.True(t, errors.As(err, &assertErr))
	assert.Equal(t, "email", assertErr.Path)
	assert.Equal(t, "<missing>", assertErr.Actual)
}

func TestAssertExpect_ArrayLength(t *testing.T) {
	err := assertExpect(sampleSnapshot(), map[string]any{"posts": []any{}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at posts")
}

func TestAssertExpect_Floats(t *testing.T) {
	snap := ir.Obj(ir.O("price", ir.IRFloat(9.99)), ir.O("count", ir.IRFloat(2)))

	assert.NoError(t, assertExpect(snap, map[string]any{"price": 9.99, "count": 2}))

	err := assertExpect(snap, map[string]any{"price": 9.98})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at price")
	assert.Contains(t, err.Error(), "9.99")
}

func TestAssertExact(t *testing.T) {
	assert.NoError(t, assertExact(ir.Obj(ir.O("id", ir.IRInt(1))), map[string]any{"id": 1}))

	err := assertExact(sampleSnapshot(), map[string]any{"id": 1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Assertion failed: exact")
}

func TestAssertAbsent(t *testing.T) {
	assert.NoError(t, assertAbsent(sampleSnapshot(), "email"))

	err := assertAbsent(sampleSnapshot(), "profile")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `{"bio":"hi"}`)
}

func TestEvaluateAssertions_ProjectionFailure(t *testing.T) {
	result := &Result{ProjectionError: "project User.profile (normalize): boom"}

	errs := EvaluateAssertions(result, &Scenario{Expect: map[string]any{"id": 1}})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "projection to succeed")

	assert.Empty(t, EvaluateAssertions(result, &Scenario{ExpectError: "boom"}))

	errs = EvaluateAssertions(result, &Scenario{ExpectError: "other"})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], `containing "other"`)
}

func TestEvaluateAssertions_ExpectedErrorButSucceeded(t *testing.T) {
	errs := EvaluateAssertions(&Result{Snapshot: sampleSnapshot()}, &Scenario{ExpectError: "boom"})
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "projection succeeded")
}

func TestEvaluateAssertions_CollectsAll(t *testing.T) {
	errs := EvaluateAssertions(&Result{Snapshot: sampleSnapshot()}, &Scenario{
		Expect: map[string]any{"id": 2},
		Absent: []string{"name", "posts"},
	})
	assert.Len(t, errs, 3)
}

func TestLookupPath(t *testing.T) {
	snap := sampleSnapshot()
	assert.Equal(t, ir.IRString("first"), lookupPath(snap, "posts[0].title"))
	assert.Equal(t, ir.IRString("hi"), lookupPath(snap, "profile.bio"))
	assert.Nil(t, lookupPath(snap, "posts[3].title"))
	assert.Nil(t, lookupPath(snap, "missing.key"))
}
