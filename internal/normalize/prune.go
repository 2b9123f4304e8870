// Package normalize strips empty optional fields from flattened node maps so
// the serialized document stays minimal.
package normalize

// Prune removes keys whose value is nil, the empty string, an empty slice or
// an empty map. It works depth-first: a nested map that becomes empty after
// pruning is removed from its parent. Non-empty scalars are never touched,
// including zero numbers and false booleans.
//
// Prune(Prune(m)) == Prune(m).
func Prune(m map[string]any) map[string]any {
	for k, v := range m {
		switch val := v.(type) {
		case nil:
			delete(m, k)
		case string:
			if val == "" {
				delete(m, k)
			}
		case map[string]any:
			Prune(val)
			if len(val) == 0 {
				delete(m, k)
			}
		case []any:
			pruned := pruneSlice(val)
			if len(pruned) == 0 {
				delete(m, k)
			} else {
				m[k] = pruned
			}
		}
	}
	return m
}

func pruneSlice(in []any) []any {
	out := in[:0]
	for _, v := range in {
		switch val := v.(type) {
		case nil:
			continue
		case string:
			if val == "" {
				continue
			}
		case map[string]any:
			Prune(val)
			if len(val) == 0 {
				continue
			}
		case []any:
			val = pruneSlice(val)
			if len(val) == 0 {
				continue
			}
			v = val
		}
		out = append(out, v)
	}
	return out
}
