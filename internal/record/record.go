package record

import "github.com/roach88/recsnap/internal/ir"

// Record is the capability set every related record exposes.
//
// Clone returns a structural copy with the same capabilities whose data
// shares nothing with the receiver. Snapshot produces the record's own
// plain projection and must be safe to call concurrently on distinct
// records.
type Record interface {
	Clone() Record
	Snapshot() (ir.IRObject, error)
}

// Association is the state of one association on an instance.
//
// A to-many association carries its related records in Value (never nil,
// possibly empty). A to-one association has a nil Value: its related record
// lives on the instance under the association name.
type Association struct {
	Value []Record
}

// IsMany reports whether the state has the to-many shape.
func (a *Association) IsMany() bool {
	return a != nil && a.Value != nil
}

// Source is what Project reads from. *Instance implements it.
type Source interface {
	// Keys returns own data keys in insertion order.
	Keys() []string
	Get(key string) (any, bool)
	// AssociationNames returns every association name known on the source.
	AssociationNames() []string
	Association(name string) *Association
	// Display returns nil when no configuration is attached.
	Display() *Display
}
