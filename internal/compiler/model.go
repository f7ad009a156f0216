package compiler

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/recsnap/internal/ir"
)

// CompileModel parses a CUE value into a ModelSpec.
// Uses the CUE SDK's Go API directly.
//
// The value is the model struct itself:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`model: User: attributes: { id: int, posts: collection: "Post" }`)
//	spec, err := CompileModel(v.LookupPath(cue.ParsePath("model.User")))
//
// An attribute is either a CUE type (string, int, bool, list, struct) or a
// struct carrying exactly one of model or collection.
func CompileModel(v cue.Value) (*ir.ModelSpec, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	spec := &ir.ModelSpec{}

	labels := v.Path().Selectors()
	if len(labels) > 0 {
		spec.Name = labels[len(labels)-1].String()
	}

	attrsVal := v.LookupPath(cue.ParsePath("attributes"))
	if !attrsVal.Exists() {
		return spec, nil // a model without attributes is valid
	}

	iter, err := attrsVal.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	for iter.Next() {
		attr, err := parseAttribute(iter.Label(), iter.Value())
		if err != nil {
			return nil, err
		}
		spec.Attributes = append(spec.Attributes, attr)
	}

	return spec, nil
}

// parseAttribute reads one attribute declaration.
func parseAttribute(name string, v cue.Value) (ir.AttributeSpec, error) {
	attr := ir.AttributeSpec{Name: name}

	if v.IncompleteKind() == cue.StructKind {
		target, isModel, err := relationTarget(v, "model")
		if err != nil {
			return attr, err
		}
		collection, isCollection, err := relationTarget(v, "collection")
		if err != nil {
			return attr, err
		}

		switch {
		case isModel && isCollection:
			return attr, &CompileError{
				Field:   fmt.Sprintf("attributes.%s", name),
				Message: "attribute declares both model and collection",
				Pos:     v.Pos(),
			}
		case isModel:
			attr.Model = target
			return attr, nil
		case isCollection:
			attr.Collection = collection
			return attr, nil
		}
	}

	typ, err := extractTypeName(v)
	if err != nil {
		return attr, err
	}
	attr.Type = typ
	return attr, nil
}

// relationTarget reads a model/collection target name if present.
func relationTarget(v cue.Value, key string) (string, bool, error) {
	tv := v.LookupPath(cue.ParsePath(key))
	if !tv.Exists() {
		return "", false, nil
	}
	s, err := tv.String()
	if err != nil {
		return "", false, formatCUEError(err)
	}
	return s, true, nil
}

// extractTypeName converts a CUE type to an attribute type string.
// CUE's number (int | float) maps to float.
func extractTypeName(v cue.Value) (string, error) {
	switch v.IncompleteKind() {
	case cue.StringKind:
		return "string", nil
	case cue.IntKind:
		return "int", nil
	case cue.BoolKind:
		return "bool", nil
	case cue.ListKind:
		return "array", nil
	case cue.StructKind:
		return "object", nil
	case cue.FloatKind, cue.NumberKind:
		return "float", nil
	default:
		return "", &CompileError{
			Field:   "type",
			Message: fmt.Sprintf("unsupported type kind: %v", v.IncompleteKind()),
			Pos:     v.Pos(),
		}
	}
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	first := errs[0]
	positions := errors.Positions(first)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
