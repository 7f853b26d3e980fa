package state

// CloneMap deep-copies nested maps and slices so that a per-run copy of a
// parameter set can be mutated without affecting the original. Scalar values
// are shared.
func CloneMap(source map[string]interface{}) map[string]interface{} {
	if source == nil {
		return map[string]interface{}{}
	}
	result := make(map[string]interface{}, len(source))
	for k, v := range source {
		result[k] = cloneValue(v)
	}
	return result
}

// MergeMaps returns the union of base and override; override keys win on
// conflict. Neither input is modified.
func MergeMaps(base, override map[string]interface{}) map[string]interface{} {
	result := CloneMap(base)
	for k, v := range override {
		result[k] = cloneValue(v)
	}
	return result
}

func cloneValue(value interface{}) interface{} {
	switch actual := value.(type) {
	case map[string]interface{}:
		return CloneMap(actual)
	case []interface{}:
		result := make([]interface{}, len(actual))
		for i, item := range actual {
			result[i] = cloneValue(item)
		}
		return result
	}
	return value
}
