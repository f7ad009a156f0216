package record

import "slices"

// Display is the per-instance display configuration.
// A nil *Display means no configuration was attached.
type Display struct {
	// ShowJoins enables association materialization. When false every
	// relation attribute is removed from the snapshot.
	ShowJoins bool `yaml:"showJoins" json:"showJoins"`

	// Joins is an allow-list of join names. Nil means no allow-list;
	// an empty non-nil slice allows nothing.
	Joins []string `yaml:"joins" json:"joins"`
}

// joinsShown reports whether the association phases run.
func (d *Display) joinsShown() bool {
	return d != nil && d.ShowJoins
}

// allows reports whether the allow-list admits name. Without an
// allow-list every name is admitted.
func (d *Display) allows(name string) bool {
	if d.Joins == nil {
		return true
	}
	return slices.Contains(d.Joins, name)
}

// Clone returns an independent copy.
func (d *Display) Clone() *Display {
	if d == nil {
		return nil
	}
	cp := &Display{ShowJoins: d.ShowJoins}
	if d.Joins != nil {
		cp.Joins = slices.Clone(d.Joins)
		if cp.Joins == nil {
			cp.Joins = []string{}
		}
	}
	return cp
}
