package record

import (
	"log/slog"
	"slices"
	"sort"

	"github.com/roach88/recsnap/internal/ir"
)

// Instance is a live record: ordered data fields plus schema, display and
// association state. An Instance is not safe for concurrent mutation; a
// finished Instance may be projected concurrently.
type Instance struct {
	schema       *Schema
	keys         []string
	fields       map[string]any
	associations map[string]*Association
	display      *Display
}

var _ Record = (*Instance)(nil)
var _ Source = (*Instance)(nil)

// New creates an empty instance of the given schema.
func New(schema *Schema) *Instance {
	return &Instance{
		schema:       schema,
		fields:       make(map[string]any),
		associations: make(map[string]*Association),
	}
}

// Schema returns the instance's schema back-reference.
func (i *Instance) Schema() *Schema {
	return i.schema
}

// Set stores a field. New keys are appended to the key order.
// Values may be plain data, ir values, Records, or functions.
func (i *Instance) Set(key string, value any) *Instance {
	if _, ok := i.fields[key]; !ok {
		i.keys = append(i.keys, key)
	}
	i.fields[key] = value
	return i
}

// Get returns a field value.
func (i *Instance) Get(key string) (any, bool) {
	v, ok := i.fields[key]
	return v, ok
}

// Delete removes a field.
func (i *Instance) Delete(key string) {
	if _, ok := i.fields[key]; !ok {
		return
	}
	delete(i.fields, key)
	i.keys = slices.DeleteFunc(i.keys, func(k string) bool { return k == key })
}

// Keys returns own data keys in insertion order.
func (i *Instance) Keys() []string {
	return slices.Clone(i.keys)
}

// SetDisplay attaches display configuration. Nil detaches it.
func (i *Instance) SetDisplay(d *Display) *Instance {
	i.display = d
	return i
}

// Display returns the attached configuration, or nil.
func (i *Instance) Display() *Display {
	return i.display
}

// SetMany records a to-many association. The slice is copied; records are not.
func (i *Instance) SetMany(name string, related ...Record) *Instance {
	value := make([]Record, len(related))
	copy(value, related)
	i.associations[name] = &Association{Value: value}
	return i
}

// SetOne records a to-one association whose related record is stored as the
// field of the same name.
func (i *Instance) SetOne(name string, related Record) *Instance {
	i.associations[name] = &Association{}
	return i.Set(name, related)
}

// AssociationNames returns every association name, sorted.
func (i *Instance) AssociationNames() []string {
	names := make([]string, 0, len(i.associations))
	for n := range i.associations {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Association returns the state for name, or nil if none is known.
func (i *Instance) Association(name string) *Association {
	return i.associations[name]
}

// Clone returns a structural copy: same schema, every field deep-cloned,
// to-many related records cloned, display copied. A field that cannot be
// deep-copied is shared with the original and logged.
func (i *Instance) Clone() Record {
	if i == nil {
		return i
	}
	cp := &Instance{
		schema:       i.schema,
		keys:         slices.Clone(i.keys),
		fields:       make(map[string]any, len(i.fields)),
		associations: make(map[string]*Association, len(i.associations)),
		display:      i.display.Clone(),
	}
	for k, v := range i.fields {
		fv, err := cloneValue(v)
		if err != nil {
			slog.Warn("field shared with clone", "model", i.schema.Name(), "field", k, "error", err)
			fv = v
		}
		cp.fields[k] = fv
	}
	for name, a := range i.associations {
		if !a.IsMany() {
			cp.associations[name] = &Association{}
			continue
		}
		value := make([]Record, len(a.Value))
		for j, r := range a.Value {
			value[j] = cloneRecord(r)
		}
		cp.associations[name] = &Association{Value: value}
	}
	return cp
}

// Snapshot projects the instance against its own schema.
func (i *Instance) Snapshot() (ir.IRObject, error) {
	if i == nil {
		return nil, ErrNoSnapshot
	}
	return Project(i.schema, i)
}

func cloneRecord(r Record) Record {
	if r == nil {
		return nil
	}
	return r.Clone()
}
