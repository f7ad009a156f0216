package record

import (
	"encoding"
	"encoding/base64"
	"fmt"
	"log/slog"
	"reflect"
	"strings"

	"github.com/roach88/recsnap/internal/ir"
)

// projection is the working state threaded through the pipeline phases.
// It never escapes Project; only the finalized ir.IRObject does.
type projection struct {
	schema  *Schema
	src     Source
	display *Display
	keys    []string // output key order
	out     map[string]any
}

func (p *projection) has(key string) bool {
	_, ok := p.out[key]
	return ok
}

func (p *projection) put(key string, v any) {
	if !p.has(key) {
		p.keys = append(p.keys, key)
	}
	p.out[key] = v
}

func (p *projection) remove(key string) {
	delete(p.out, key)
}

func (p *projection) fail(phase, field string, err error) error {
	return &ProjectionError{Model: p.schema.Name(), Phase: phase, Field: field, Err: err}
}

type phase struct {
	name string
	run  func(*projection) error
}

// pipeline order is load-bearing: each phase reads what the previous left.
var pipeline = []phase{
	{"materialize", materializeAssociations},
	{"copy", copyProperties},
	{"normalize", normalizeAssociations},
	{"filter", filterFields},
}

// Project produces the plain snapshot of src against schema.
//
// The result shares no mutable state with src. A nil schema is treated as an
// empty attribute registry. Nested records are projected through their own
// Snapshot, so recursion depth follows the association graph; cyclic graphs
// are not detected and must be cut by the caller.
func Project(schema *Schema, src Source) (ir.IRObject, error) {
	p := &projection{
		schema:  schema,
		src:     src,
		display: src.Display(),
		out:     make(map[string]any),
	}

	for _, ph := range pipeline {
		if err := ph.run(p); err != nil {
			return nil, err
		}
		slog.Debug("projection phase complete",
			"model", schema.Name(),
			"phase", ph.name,
			"keys", len(p.out),
		)
	}

	return p.finalize()
}

// materializeAssociations clones related records into the output under their
// association names. Runs only when joins are shown.
func materializeAssociations(p *projection) error {
	if !p.display.joinsShown() {
		return nil
	}

	for _, name := range p.src.AssociationNames() {
		state := p.src.Association(name)
		if state.IsMany() {
			cloned := make([]Record, len(state.Value))
			for i, r := range state.Value {
				cloned[i] = cloneRecord(r)
			}
			p.put(name, cloned)
			continue
		}

		// To-one: the related record lives on the source under the same name.
		v, _ := p.src.Get(name)
		cp, err := cloneValue(v)
		if err != nil {
			return p.fail("materialize", name, err)
		}
		p.put(name, cp)
	}
	return nil
}

// copyProperties deep-clones every own field not already in the output.
func copyProperties(p *projection) error {
	for _, key := range p.src.Keys() {
		if p.has(key) {
			continue
		}
		v, ok := p.src.Get(key)
		if !ok {
			continue
		}
		cp, err := cloneValue(v)
		if err != nil {
			return p.fail("copy", key, err)
		}
		p.put(key, cp)
	}
	return nil
}

// normalizeAssociations replaces materialized related records with their own
// snapshots. A value without the Record capability is fatal.
func normalizeAssociations(p *projection) error {
	if !p.display.joinsShown() {
		return nil
	}

	for _, name := range p.src.AssociationNames() {
		switch v := p.out[name].(type) {
		case []Record:
			arr := make(ir.IRArray, len(v))
			for i, r := range v {
				snap, err := snapshotOf(r)
				if err != nil {
					return p.fail("normalize", fmt.Sprintf("%s[%d]", name, i), err)
				}
				arr[i] = snap
			}
			p.out[name] = arr
		case []any:
			arr := make(ir.IRArray, len(v))
			for i, elem := range v {
				snap, err := snapshotOf(elem)
				if err != nil {
					return p.fail("normalize", fmt.Sprintf("%s[%d]", name, i), err)
				}
				arr[i] = snap
			}
			p.out[name] = arr
		default:
			snap, err := snapshotOf(v)
			if err != nil {
				return p.fail("normalize", name, err)
			}
			p.out[name] = snap
		}
	}
	return nil
}

// snapshotOf copies the nested snapshot so a Record returning cached state
// never shares it with the output.
func snapshotOf(v any) (ir.IRObject, error) {
	r, ok := v.(Record)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNoSnapshot, v)
	}
	snap, err := r.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Clone(), nil
}

// filterFields removes relation attributes the display does not ask for, then
// every callable member. The three relation rules are evaluated
// independently; a later rule may find the key already gone.
func filterFields(p *projection) error {
	d := p.display

	for _, attr := range p.schema.Attributes() {
		if !attr.IsRelation() {
			continue
		}

		if d == nil && attr.IsToMany() {
			p.remove(attr.Name)
			continue
		}

		if d != nil && !d.ShowJoins {
			p.remove(attr.Name)
		}

		if d != nil && !d.allows(attr.JoinName()) {
			p.remove(attr.Name)
		}
	}

	for key, v := range p.out {
		if isFunc(v) {
			p.remove(key)
		}
	}
	return nil
}

// finalize converts the working map into plain data.
func (p *projection) finalize() (ir.IRObject, error) {
	snap := make(ir.IRObject, len(p.out))
	for _, key := range p.keys {
		v, ok := p.out[key]
		if !ok {
			continue
		}
		plain, keep, err := toPlain(v)
		if err != nil {
			return nil, p.fail("finalize", key, err)
		}
		if keep {
			snap[key] = plain
		}
	}
	return snap, nil
}

// toPlain converts a working value into an ir.IRValue. keep is false for
// callables, which have no plain form: they are dropped from objects and
// become null inside arrays. Byte slices become base64 strings and structs
// become objects keyed by their json names, as encoding/json renders them.
func toPlain(v any) (plain ir.IRValue, keep bool, err error) {
	switch val := v.(type) {
	case nil:
		return ir.IRNull{}, true, nil
	case Record:
		snap, err := snapshotOf(val)
		if err != nil {
			return nil, false, err
		}
		return snap, true, nil
	case ir.IRValue:
		return val, true, nil
	case []byte:
		if val == nil {
			return ir.IRNull{}, true, nil
		}
		return ir.IRString(base64.StdEncoding.EncodeToString(val)), true, nil
	case encoding.TextMarshaler:
		text, err := val.MarshalText()
		if err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
		}
		return ir.IRString(text), true, nil
	}

	if isFunc(v) {
		return nil, false, nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			return ir.IRNull{}, true, nil
		}
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			return ir.IRString(base64.StdEncoding.EncodeToString(rv.Bytes())), true, nil
		}
		arr := make(ir.IRArray, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			elem, keep, err := toPlain(rv.Index(i).Interface())
			if err != nil {
				return nil, false, fmt.Errorf("[%d]: %w", i, err)
			}
			if !keep {
				elem = ir.IRNull{}
			}
			arr[i] = elem
		}
		return arr, true, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false, fmt.Errorf("%w: map key type %s", ErrUnsupportedValue, rv.Type().Key())
		}
		if rv.IsNil() {
			return ir.IRNull{}, true, nil
		}
		obj := make(ir.IRObject, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key().String()
			elem, keep, err := toPlain(iter.Value().Interface())
			if err != nil {
				return nil, false, fmt.Errorf("[%q]: %w", k, err)
			}
			if keep {
				obj[k] = elem
			}
		}
		return obj, true, nil
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return ir.IRNull{}, true, nil
		}
		return toPlain(rv.Elem().Interface())
	case reflect.Struct:
		obj := make(ir.IRObject)
		if err := flattenStruct(rv, obj); err != nil {
			return nil, false, err
		}
		return obj, true, nil
	}

	scalar, err := ir.FromAny(scalarOf(rv))
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrUnsupportedValue, err)
	}
	return scalar, true, nil
}

// flattenStruct writes the exported fields of rv into obj. Field names follow
// json tags: "-" skips a field, omitempty skips zero values, and untagged
// embedded structs are inlined.
func flattenStruct(rv reflect.Value, obj ir.IRObject) error {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		fv := rv.Field(i)

		name, opts, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" && opts == "" {
			continue
		}

		if f.Anonymous && name == "" {
			ft := f.Type
			if ft.Kind() == reflect.Pointer {
				ft = ft.Elem()
			}
			if ft.Kind() == reflect.Struct {
				if fv.Kind() == reflect.Pointer {
					if fv.IsNil() {
						continue
					}
					fv = fv.Elem()
				}
				if err := flattenStruct(fv, obj); err != nil {
					return err
				}
				continue
			}
		}
		if !f.IsExported() || !fv.CanInterface() {
			continue
		}

		if name == "" {
			name = f.Name
		}
		if strings.Contains(opts, "omitempty") && fv.IsZero() {
			continue
		}

		elem, keep, err := toPlain(fv.Interface())
		if err != nil {
			return fmt.Errorf(".%s: %w", name, err)
		}
		if keep {
			obj[name] = elem
		}
	}
	return nil
}

// scalarOf unwraps named scalar types (type Status string) to their
// underlying kind so ir.FromAny can classify them.
func scalarOf(rv reflect.Value) any {
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint()
	case reflect.Float32, reflect.Float64:
		return rv.Float()
	default:
		return rv.Interface()
	}
}
