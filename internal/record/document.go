package record

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/recsnap/internal/ir"
)

// Document is the serialized description of an instance. YAML and JSON are
// both accepted since every JSON document is valid YAML.
//
//	model: User
//	data: {id: 1, name: ada}
//	display: {showJoins: true, joins: [post]}
//	associations:
//	  posts: [{data: {id: 101}}]   # to-many
//	  profile: {data: {id: 7}}     # to-one
type Document struct {
	Model        string             `yaml:"model"`
	Data         Fields             `yaml:"data"`
	Display      *Display           `yaml:"display,omitempty"`
	Associations map[string]Related `yaml:"associations,omitempty"`
}

// Fields is an ordered mapping of field names to decoded values.
type Fields struct {
	Keys   []string
	Values map[string]any
}

// UnmarshalYAML keeps the document's key order.
func (f *Fields) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: data must be a mapping", node.Line)
	}
	f.Keys = make([]string, 0, len(node.Content)/2)
	f.Values = make(map[string]any, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		var v any
		if err := node.Content[i+1].Decode(&v); err != nil {
			return fmt.Errorf("data.%s: %w", key, err)
		}
		if _, dup := f.Values[key]; !dup {
			f.Keys = append(f.Keys, key)
		}
		f.Values[key] = v
	}
	return nil
}

// Related is the association entry of a Document: one document for a
// to-one association, a list for a to-many one.
type Related struct {
	One  *Document
	Many []Document
	list bool
}

// IsList reports whether the entry was written as a sequence.
func (r Related) IsList() bool {
	return r.list
}

// UnmarshalYAML decides the shape from the node kind.
func (r *Related) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		r.list = true
		r.Many = make([]Document, 0, len(node.Content))
		return node.Decode(&r.Many)
	case yaml.MappingNode:
		r.One = &Document{}
		return node.Decode(r.One)
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return nil
		}
	}
	return fmt.Errorf("line %d: association must be a mapping, a sequence or null", node.Line)
}

// DecodeDocument parses a YAML or JSON document.
func DecodeDocument(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return &doc, nil
}

// LoadDocument reads and parses a document file.
func LoadDocument(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return DecodeDocument(data)
}

// Build turns a document into a live instance. Nested documents without a
// model name take the target model of the association attribute.
func (r *Registry) Build(doc *Document) (*Instance, error) {
	return r.build(doc, "")
}

func (r *Registry) build(doc *Document, inferred string) (*Instance, error) {
	model := doc.Model
	if model == "" {
		model = inferred
	}
	schema, err := r.Lookup(model)
	if err != nil {
		return nil, err
	}

	inst := New(schema)
	for _, key := range doc.Data.Keys {
		v, err := ir.FromAny(doc.Data.Values[key])
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", model, key, err)
		}
		inst.Set(key, v)
	}
	inst.SetDisplay(doc.Display.Clone())

	names := make([]string, 0, len(doc.Associations))
	for n := range doc.Associations {
		names = append(names, n)
	}
	sort.Strings(names)

	for _, name := range names {
		rel := doc.Associations[name]
		attr, declared := schema.Attribute(name)
		target := attr.Model
		if attr.IsToMany() {
			target = attr.Collection
		}

		many := rel.IsList()
		if declared && attr.IsRelation() && attr.IsToMany() != many {
			return nil, fmt.Errorf("%s.%s: association shape does not match declaration", model, name)
		}

		if many {
			related := make([]Record, 0, len(rel.Many))
			for i := range rel.Many {
				child, err := r.build(&rel.Many[i], target)
				if err != nil {
					return nil, fmt.Errorf("%s.%s[%d]: %w", model, name, i, err)
				}
				related = append(related, child)
			}
			inst.SetMany(name, related...)
			continue
		}

		if rel.One == nil {
			inst.SetOne(name, nil)
			continue
		}
		child, err := r.build(rel.One, target)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", model, name, err)
		}
		inst.SetOne(name, child)
	}

	return inst, nil
}
