package maputil

// MergeStrings returns a new map holding base overlaid with overrides.
// Either argument may be nil; the inputs are never mutated.
func MergeStrings(base, overrides map[string]string) map[string]string {
	if base == nil && overrides == nil {
		return nil
	}
	merged := make(map[string]string, len(base)+len(overrides))
	for key, value := range base {
		merged[key] = value
	}
	for key, value := range overrides {
		merged[key] = value
	}
	return merged
}

// CloneStrings returns a shallow copy of values, or nil for a nil input.
func CloneStrings(values map[string]string) map[string]string {
	if values == nil {
		return nil
	}
	cloned := make(map[string]string, len(values))
	for key, value := range values {
		cloned[key] = value
	}
	return cloned
}
