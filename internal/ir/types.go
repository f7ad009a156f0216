package ir

// ModelSpec represents a compiled model declaration: the attribute registry
// of one record type.
type ModelSpec struct {
	Name       string          `json:"name"`
	Attributes []AttributeSpec `json:"attributes"` // declaration order
}

// AttributeSpec describes one attribute of a model.
// At most one of Model and Collection is set; neither marks plain data.
type AttributeSpec struct {
	Name       string `json:"name"`
	Type       string `json:"type,omitempty"`       // "string", "int", "float", "bool", "array", "object"
	Model      string `json:"model,omitempty"`      // to-one target model name
	Collection string `json:"collection,omitempty"` // to-many target model name
}

// IsRelation reports whether the attribute declares an association.
func (a AttributeSpec) IsRelation() bool {
	return a.Model != "" || a.Collection != ""
}

// ValidTypes defines allowed plain attribute types.
var ValidTypes = map[string]bool{
	"string": true,
	"int":    true,
	"float":  true,
	"bool":   true,
	"array":  true,
	"object": true,
}
