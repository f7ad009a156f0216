package record

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/recsnap/internal/ir"
)

// ErrUnknownModel is returned when a registry has no schema for a model name.
var ErrUnknownModel = errors.New("unknown model")

// Attribute is a registry descriptor for one model attribute.
type Attribute struct {
	Name       string
	Type       string
	Model      string // to-one target
	Collection string // to-many target
}

// IsRelation reports whether the attribute declares an association.
func (a Attribute) IsRelation() bool {
	return a.Model != "" || a.Collection != ""
}

// IsToMany reports whether the attribute is a collection association.
func (a Attribute) IsToMany() bool {
	return a.Collection != ""
}

// JoinName is the identifier matched against a display allow-list:
// the lowercased target model, else the attribute name.
func (a Attribute) JoinName() string {
	switch {
	case a.Model != "":
		return strings.ToLower(a.Model)
	case a.Collection != "":
		return strings.ToLower(a.Collection)
	default:
		return a.Name
	}
}

// Schema is the attribute registry of one model.
type Schema struct {
	name  string
	attrs []Attribute
	index map[string]int
}

// NewSchema builds a Schema from a compiled model declaration.
// Attribute declaration order is preserved.
func NewSchema(spec ir.ModelSpec) (*Schema, error) {
	s := &Schema{
		name:  spec.Name,
		attrs: make([]Attribute, 0, len(spec.Attributes)),
		index: make(map[string]int, len(spec.Attributes)),
	}
	for _, a := range spec.Attributes {
		if _, dup := s.index[a.Name]; dup {
			return nil, fmt.Errorf("model %s: duplicate attribute %q", spec.Name, a.Name)
		}
		if a.Model != "" && a.Collection != "" {
			return nil, fmt.Errorf("model %s: attribute %q declares both model and collection", spec.Name, a.Name)
		}
		s.index[a.Name] = len(s.attrs)
		s.attrs = append(s.attrs, Attribute{
			Name:       a.Name,
			Type:       a.Type,
			Model:      a.Model,
			Collection: a.Collection,
		})
	}
	return s, nil
}

// MustSchema is like NewSchema but panics on error.
// Use only in tests or for static declarations.
func MustSchema(spec ir.ModelSpec) *Schema {
	s, err := NewSchema(spec)
	if err != nil {
		panic(err)
	}
	return s
}

// Name returns the model name.
func (s *Schema) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

// Attributes returns the attributes in declaration order.
func (s *Schema) Attributes() []Attribute {
	if s == nil {
		return nil
	}
	out := make([]Attribute, len(s.attrs))
	copy(out, s.attrs)
	return out
}

// Attribute looks up an attribute by name.
func (s *Schema) Attribute(name string) (Attribute, bool) {
	if s == nil {
		return Attribute{}, false
	}
	i, ok := s.index[name]
	if !ok {
		return Attribute{}, false
	}
	return s.attrs[i], true
}

// Registry holds schemas by model name.
type Registry struct {
	schemas map[string]*Schema
}

// NewRegistry builds a registry from compiled model declarations.
func NewRegistry(specs []ir.ModelSpec) (*Registry, error) {
	r := &Registry{schemas: make(map[string]*Schema, len(specs))}
	for _, spec := range specs {
		if _, dup := r.schemas[spec.Name]; dup {
			return nil, fmt.Errorf("duplicate model %q", spec.Name)
		}
		s, err := NewSchema(spec)
		if err != nil {
			return nil, err
		}
		r.schemas[spec.Name] = s
	}
	return r, nil
}

// Lookup returns the schema for a model name.
func (r *Registry) Lookup(model string) (*Schema, error) {
	s, ok := r.schemas[model]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, model)
	}
	return s, nil
}

// Names returns the registered model names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.schemas))
	for n := range r.schemas {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
