package record

import (
	"encoding"
	"fmt"
	"maps"
	"reflect"

	"github.com/mitchellh/copystructure"

	"github.com/roach88/recsnap/internal/ir"
)

// copyConfig extends copystructure's registered copiers so an Instance
// reached through a typed container is copied through its own Clone.
var copyConfig copystructure.Config

func init() {
	copiers := make(map[reflect.Type]copystructure.CopierFunc, len(copystructure.Copiers)+1)
	maps.Copy(copiers, copystructure.Copiers)
	copiers[reflect.TypeOf(Instance{})] = func(v any) (any, error) {
		inst := v.(Instance)
		return *inst.Clone().(*Instance), nil
	}
	copyConfig = copystructure.Config{Copiers: copiers}
}

// cloneValue deep-copies a field value so the copy shares no mutable state
// with the original. Records are copied through their own Clone. Functions,
// immutable scalars and text-marshaling values are returned as is.
func cloneValue(v any) (any, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case Record:
		return cloneRecord(val), nil
	case ir.IRValue:
		return ir.Clone(val), nil
	case []Record:
		if val == nil {
			return val, nil
		}
		out := make([]Record, len(val))
		for i, r := range val {
			out[i] = cloneRecord(r)
		}
		return out, nil
	case []any:
		if val == nil {
			return val, nil
		}
		out := make([]any, len(val))
		for i, elem := range val {
			cp, err := cloneValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = cp
		}
		return out, nil
	case map[string]any:
		if val == nil {
			return val, nil
		}
		out := make(map[string]any, len(val))
		for k, elem := range val {
			cp, err := cloneValue(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			out[k] = cp
		}
		return out, nil
	case bool, string, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, float32, float64:
		return val, nil
	}

	if isFunc(v) || isTextValue(v) {
		return v, nil
	}

	cp, err := copyConfig.Copy(v)
	if err != nil {
		return nil, fmt.Errorf("deep copy %T: %w", v, err)
	}
	return cp, nil
}

// isTextValue reports whether v is a non-pointer value with a text form
// (time.Time, netip.Addr, uuid.UUID). Such values are treated as immutable;
// their state is usually unexported and would not survive a field-wise copy.
func isTextValue(v any) bool {
	if _, ok := v.(encoding.TextMarshaler); !ok {
		return false
	}
	return reflect.TypeOf(v).Kind() != reflect.Pointer
}

// isFunc reports whether v is a callable member.
func isFunc(v any) bool {
	return v != nil && reflect.TypeOf(v).Kind() == reflect.Func
}
