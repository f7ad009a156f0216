package compiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/roach88/recsnap/internal/ir"
)

// Validation error codes (E100-E199)
const (
	ErrModelNameEmpty      = "E101" // model name is required
	ErrInvalidModelName    = "E102" // model name is not an identifier
	ErrDuplicateAttribute  = "E103" // attribute declared twice
	ErrInvalidFieldType    = "E104" // invalid type string
	ErrAmbiguousRelation   = "E105" // both model and collection
	ErrRelationTyped       = "E106" // relation also declares a plain type
	ErrUnknownTarget       = "E107" // relation targets an undeclared model
	ErrDuplicateModel      = "E108" // model declared twice
	ErrInvalidRelationName = "E109" // relation target is not an identifier
)

// ValidationError represents a schema validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Validate checks one model declaration. Returns all errors found.
func Validate(spec ir.ModelSpec) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(spec.Name) == "" {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: "model name is required",
			Code:    ErrModelNameEmpty,
		})
	} else if !identPattern.MatchString(spec.Name) {
		errs = append(errs, ValidationError{
			Field:   "name",
			Message: fmt.Sprintf("invalid model name %q", spec.Name),
			Code:    ErrInvalidModelName,
		})
	}

	seen := make(map[string]bool)
	for i, attr := range spec.Attributes {
		path := fmt.Sprintf("%s.attributes[%d]", spec.Name, i)

		if seen[attr.Name] {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("duplicate attribute %q", attr.Name),
				Code:    ErrDuplicateAttribute,
			})
		}
		seen[attr.Name] = true

		if attr.Model != "" && attr.Collection != "" {
			errs = append(errs, ValidationError{
				Field:   path,
				Message: fmt.Sprintf("attribute %q declares both model and collection", attr.Name),
				Code:    ErrAmbiguousRelation,
			})
			continue
		}

		if attr.IsRelation() {
			target := attr.Model + attr.Collection
			if !identPattern.MatchString(target) {
				errs = append(errs, ValidationError{
					Field:   path,
					Message: fmt.Sprintf("invalid relation target %q", target),
					Code:    ErrInvalidRelationName,
				})
			}
			if attr.Type != "" {
				errs = append(errs, ValidationError{
					Field:   path,
					Message: fmt.Sprintf("relation %q cannot also declare type %q", attr.Name, attr.Type),
					Code:    ErrRelationTyped,
				})
			}
			continue
		}

		errs = append(errs, validateFieldType(attr.Type, path+".type", attr.Name)...)
	}

	return errs
}

// ValidateAll checks every model plus cross-model references: duplicate
// model names and relations targeting undeclared models.
func ValidateAll(specs []ir.ModelSpec) []ValidationError {
	var errs []ValidationError

	declared := make(map[string]bool, len(specs))
	for _, spec := range specs {
		if declared[spec.Name] {
			errs = append(errs, ValidationError{
				Field:   spec.Name,
				Message: fmt.Sprintf("duplicate model %q", spec.Name),
				Code:    ErrDuplicateModel,
			})
		}
		declared[spec.Name] = true
		errs = append(errs, Validate(spec)...)
	}

	for _, spec := range specs {
		for i, attr := range spec.Attributes {
			if !attr.IsRelation() || (attr.Model != "" && attr.Collection != "") {
				continue
			}
			target := attr.Model + attr.Collection
			if !declared[target] {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("%s.attributes[%d]", spec.Name, i),
					Message: fmt.Sprintf("attribute %q targets undeclared model %q", attr.Name, target),
					Code:    ErrUnknownTarget,
				})
			}
		}
	}

	return errs
}

// validateFieldType validates a type string.
func validateFieldType(fieldType, fieldPath, fieldName string) []ValidationError {
	if !ir.ValidTypes[fieldType] {
		return []ValidationError{{
			Field:   fieldPath,
			Message: fmt.Sprintf("invalid type %q for field %q", fieldType, fieldName),
			Code:    ErrInvalidFieldType,
		}}
	}
	return nil
}
