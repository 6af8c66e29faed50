package loader

import (
	"fmt"
	"reflect"
)

const maxNormalizeDepth = 32

// normalize rewrites decoded trees so encoding/json can marshal them:
// YAML maps with non-string keys become map[string]any and typed
// containers become map[string]any or []any.
func normalize(node any) any {
	return normalizeDepth(node, 0)
}

func normalizeDepth(node any, depth int) any {
	if depth > maxNormalizeDepth {
		return node
	}

	switch v := node.(type) {
	case nil, string, bool, int, int64, uint64, float64:
		return v
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = normalizeDepth(val, depth+1)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, val := range v {
			out[i] = normalizeDepth(val, depth+1)
		}
		return out
	}

	rv := reflect.ValueOf(node)
	//exhaustive:ignore // only containers need rewriting
	switch rv.Kind() {
	case reflect.Map:
		out := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			k := iter.Key()
			var key string
			if k.Kind() == reflect.String {
				key = k.String()
			} else {
				key = fmt.Sprintf("%v", k.Interface())
			}
			out[key] = normalizeDepth(iter.Value().Interface(), depth+1)
		}
		return out
	case reflect.Slice, reflect.Array:
		out := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			out[i] = normalizeDepth(rv.Index(i).Interface(), depth+1)
		}
		return out
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return normalizeDepth(rv.Elem().Interface(), depth+1)
	default:
		return node
	}
}
