package view

// deepMerge recursively merges src into dst: map values are merged
// key-wise, any other value (including slices and scalars) overwrites.
// This is the only non-trivial semantic on the view body and is
// implemented directly on the standard library's map[string]any — no
// third-party library models a JSON-shaped recursive merge, so this
// small helper is the justified standard-library exception (see
// DESIGN.md).
func deepMerge(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(src))
	}
	for k, v := range src {
		if srcMap, ok := asMap(v); ok {
			if dstMap, ok := asMap(dst[k]); ok {
				dst[k] = deepMerge(dstMap, srcMap)
				continue
			}
			dst[k] = deepMerge(make(map[string]any), srcMap)
			continue
		}
		dst[k] = v
	}
	return dst
}

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}
