// Competence model: weighted ability average scaled onto the CA range.
package attributes

import "math"

// CA bounds implied by the ability bounds.
const (
	MinCA = MinValue * 10
	MaxCA = MaxValue * 10
)

// Model computes CA from a Set using a fixed weight table. A Model is
// immutable after construction and safe to share.
type Model struct {
	weights map[string]float64
	keys    []string
	total   float64
}

// Standard is the process-wide model built from the standard weight table.
var Standard = NewModel(DefaultWeights())

// NewModel copies the given weights. Non-positive weights and keys outside
// the vocabulary are ignored.
func NewModel(weights map[string]float64) *Model {
	m := &Model{weights: make(map[string]float64, len(weights))}
	for _, a := range vocabulary {
		w, ok := weights[a.Key]
		if !ok || w <= 0 {
			continue
		}
		m.weights[a.Key] = w
		m.keys = append(m.keys, a.Key)
		m.total += w
	}
	return m
}

// Weight returns the weight of key (0 when unweighted).
func (m *Model) Weight(key string) float64 {
	return m.weights[key]
}

// TheoreticalMax is Σ weight × MaxValue.
func (m *Model) TheoreticalMax() float64 {
	return m.total * MaxValue
}

// CA returns (Σ value·weight) / TheoreticalMax × 200.
func (m *Model) CA(s Set) float64 {
	if m.total == 0 {
		return MinCA
	}
	sum := 0.0
	for _, k := range m.keys {
		sum += s.Value(k) * m.weights[k]
	}
	return sum / m.TheoreticalMax() * MaxCA
}

// ShiftToCA moves every weighted ability by the same amount until the Set's
// CA equals target (clamped to [MinCA, MaxCA]). Abilities pinned at a bound
// drop out of later passes. It returns the CA actually reached.
func (m *Model) ShiftToCA(s Set, target float64) float64 {
	target = math.Max(MinCA, math.Min(MaxCA, target))
	for pass := 0; pass < 12; pass++ {
		need := target - m.CA(s)
		if math.Abs(need) < 1e-9 {
			break
		}
		free := 0.0
		for _, k := range m.keys {
			if movable(s.Value(k), need) {
				free += m.weights[k]
			}
		}
		if free == 0 {
			break
		}
		// CA = 10·Σ(v·w)/Σw, so shifting the free keys by d moves CA by 10·d·free/Σw.
		shift := need * m.total / (10 * free)
		for _, k := range m.keys {
			if v := s.Value(k); movable(v, need) {
				s[k] = clampValue(v + shift)
			}
		}
	}
	return m.CA(s)
}

func movable(v, need float64) bool {
	if need > 0 {
		return v < MaxValue
	}
	return v > MinValue
}
