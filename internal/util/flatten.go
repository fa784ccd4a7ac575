package util

// FlattenList recursively flattens nested slices into a single ordered
// slice, preserving left-to-right order. Scalar leaves (anything that is
// not itself a []any) are preserved as-is. An empty or nil input returns an
// empty slice.
func FlattenList(hierarchical []any) []any {
	if len(hierarchical) == 0 {
		return hierarchical
	}
	flat := make([]any, 0, len(hierarchical))
	for _, el := range hierarchical {
		if nested, ok := el.([]any); ok {
			flat = append(flat, FlattenList(nested)...)
		} else {
			flat = append(flat, el)
		}
	}
	return flat
}

// DictProduct computes the Cartesian product of a set of named option
// lists, yielding one map per combination. Keys are taken in map iteration
// order, so the order of the combinations is not defined. If any key has no
// values, the product is empty and nil is returned. Not used by the
// hard-core job driver itself.
func DictProduct(options map[string][]any) []map[string]any {
	keys := make([]string, 0, len(options))
	for k := range options {
		keys = append(keys, k)
	}
	if len(keys) == 0 {
		return nil
	}
	total := 1
	for _, k := range keys {
		total *= len(options[k])
	}
	if total == 0 {
		return nil
	}
	result := make([]map[string]any, 0, total)
	indices := make([]int, len(keys))
	for {
		combo := make(map[string]any, len(keys))
		for i, k := range keys {
			combo[k] = options[k][indices[i]]
		}
		result = append(result, combo)

		pos := len(keys) - 1
		for pos >= 0 {
			indices[pos]++
			if indices[pos] < len(options[keys[pos]]) {
				break
			}
			indices[pos] = 0
			pos--
		}
		if pos < 0 {
			break
		}
	}
	return result
}
