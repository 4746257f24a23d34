package attributes

// Set maps every vocabulary key to a value in [MinValue, MaxValue].
// Build one with NewSet so that every key is present.
type Set map[string]float64

// NewSet builds a complete Set. Missing keys default to DefaultValue, unknown
// keys are dropped and values are clamped.
func NewSet(values map[string]float64) Set {
	s := make(Set, len(vocabulary))
	for _, a := range vocabulary {
		s[a.Key] = DefaultValue
	}
	for k, v := range values {
		if Known(k) {
			s[k] = clampValue(v)
		}
	}
	return s
}

// Uniform builds a Set with every ability at v.
func Uniform(v float64) Set {
	s := make(Set, len(vocabulary))
	v = clampValue(v)
	for _, a := range vocabulary {
		s[a.Key] = v
	}
	return s
}

// Value returns the value for key, or DefaultValue when absent.
func (s Set) Value(key string) float64 {
	if v, ok := s[key]; ok {
		return v
	}
	return DefaultValue
}

// Grow adds delta to key and clamps the result. Unknown keys are ignored and
// report false.
func (s Set) Grow(key string, delta float64) bool {
	if !Known(key) || s == nil {
		return false
	}
	s[key] = clampValue(s.Value(key) + delta)
	return true
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	c := make(Set, len(s))
	for k, v := range s {
		c[k] = v
	}
	return c
}

// Average returns the mean of the given keys (defaults apply to missing keys).
func (s Set) Average(keys ...string) float64 {
	if len(keys) == 0 {
		return DefaultValue
	}
	total := 0.0
	for _, k := range keys {
		total += s.Value(k)
	}
	return total / float64(len(keys))
}

func clampValue(v float64) float64 {
	if v != v { // NaN
		return DefaultValue
	}
	if v < MinValue {
		return MinValue
	}
	if v > MaxValue {
		return MaxValue
	}
	return v
}
