package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/recsnap/internal/ir"
)

func codes(errs []ValidationError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.Code
	}
	return out
}

func TestValidateValidModel(t *testing.T) {
	errs := Validate(ir.ModelSpec{
		Name: "User",
		Attributes: []ir.AttributeSpec{
			{Name: "id", Type: "int"},
			{Name: "posts", Collection: "Post"},
		},
	})
	assert.Empty(t, errs)
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name string
		spec ir.ModelSpec
		want []string
	}{
		{"empty name", ir.ModelSpec{}, []string{ErrModelNameEmpty}},
		{"bad name", ir.ModelSpec{Name: "not a name"}, []string{ErrInvalidModelName}},
		{
			"duplicate attribute",
			ir.ModelSpec{Name: "U", Attributes: []ir.AttributeSpec{{Name: "a", Type: "int"}, {Name: "a", Type: "int"}}},
			[]string{ErrDuplicateAttribute},
		},
		{
			"invalid type",
			ir.ModelSpec{Name: "U", Attributes: []ir.AttributeSpec{{Name: "a", Type: "date"}}},
			[]string{ErrInvalidFieldType},
		},
		{
			"typed relation",
			ir.ModelSpec{Name: "U", Attributes: []ir.AttributeSpec{{Name: "a", Model: "X", Type: "int"}}},
			[]string{ErrRelationTyped},
		},
		{
			"ambiguous relation",
			ir.ModelSpec{Name: "U", Attributes: []ir.AttributeSpec{{Name: "a", Model: "X", Collection: "Y"}}},
			[]string{ErrAmbiguousRelation},
		},
		{
			"bad target",
			ir.ModelSpec{Name: "U", Attributes: []ir.AttributeSpec{{Name: "a", Model: "x y"}}},
			[]string{ErrInvalidRelationName},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, codes(Validate(tt.spec)))
		})
	}
}

func TestValidateAll(t *testing.T) {
	errs := ValidateAll([]ir.ModelSpec{
		{Name: "User", Attributes: []ir.AttributeSpec{{Name: "posts", Collection: "Post"}}},
		{Name: "User"},
	})
	require.Len(t, errs, 2)
	assert.ElementsMatch(t, []string{ErrDuplicateModel, ErrUnknownTarget}, codes(errs))
}

func TestValidationErrorFormat(t *testing.T) {
	e := ValidationError{Field: "User.name", Message: "bad", Code: "E101"}
	assert.Equal(t, "[E101] User.name: bad", e.Error())
}
