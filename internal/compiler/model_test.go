package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recsnap/internal/ir"
)

func compileModel(t *testing.T, src, path string) (*ir.ModelSpec, error) {
	t.Helper()
	ctx := cuecontext.New()
	v := ctx.CompileString(src)
	require.NoError(t, v.Err())
	return CompileModel(v.LookupPath(cue.ParsePath(path)))
}

func TestCompileModelBasic(t *testing.T) {
	spec, err := compileModel(t, `
		model: User: {
			attributes: {
				id:      int
				name:    string
				active:  bool
				tags:    [...string]
				meta:    {}
				posts:   collection: "Post"
				profile: model: "Profile"
			}
		}
	`, "model.User")
	require.NoError(t, err)

	assert.Equal(t, "User", spec.Name)
	assert.Equal(t, []ir.AttributeSpec{
		{Name: "id", Type: "int"},
		{Name: "name", Type: "string"},
		{Name: "active", Type: "bool"},
		{Name: "tags", Type: "array"},
		{Name: "meta", Type: "object"},
		{Name: "posts", Collection: "Post"},
		{Name: "profile", Model: "Profile"},
	}, spec.Attributes)
}

func TestCompileModelWithoutAttributes(t *testing.T) {
	spec, err := compileModel(t, `model: Empty: {}`, "model.Empty")
	require.NoError(t, err)
	assert.Equal(t, "Empty", spec.Name)
	assert.Empty(t, spec.Attributes)
}

func TestCompileModelFloatKinds(t *testing.T) {
	spec, err := compileModel(t, `model: Item: attributes: {
		price:  float
		weight: number
	}`, "model.Item")
	require.NoError(t, err)
	assert.Equal(t, []ir.AttributeSpec{
		{Name: "price", Type: "float"},
		{Name: "weight", Type: "float"},
	}, spec.Attributes)
	assert.Empty(t, Validate(*spec))
}

func TestCompileModelRejectsBytes(t *testing.T) {
	_, err := compileModel(t, `model: Bad: attributes: blob: bytes`, "model.Bad")
	require.Error(t, err)

	var compileErr *CompileError
	require.ErrorAs(t, err, &compileErr)
	assert.Equal(t, "type", compileErr.Field)
	assert.Contains(t, compileErr.Message, "unsupported type kind")
}

func TestCompileModelRejectsAmbiguousRelation(t *testing.T) {
	_, err := compileModel(t, `
		model: Bad: attributes: owner: {
			model:      "User"
			collection: "User"
		}
	`, "model.Bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "both model and collection")
}

func TestCompileModelRejectsNonStringTarget(t *testing.T) {
	_, err := compileModel(t, `model: Bad: attributes: owner: model: 3`, "model.Bad")
	require.Error(t, err)
}

func TestCompileModelMissingValue(t *testing.T) {
	ctx := cuecontext.New()
	v := ctx.CompileString(`model: User: {}`)
	_, err := CompileModel(v.LookupPath(cue.ParsePath("model.Ghost")))
	require.Error(t, err)
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{Field: "attributes.x", Message: "bad"}
	assert.Equal(t, "attributes.x: bad", err.Error())
}
