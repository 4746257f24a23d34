// Package form produces a smooth day-to-day condition curve for each roster
// member. Form is presentational: it never feeds back into CA or ranking.
package form

import (
	"hash/fnv"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Curve samples layered simplex noise along the career calendar. Each
// member gets an independent track keyed by name.
type Curve struct {
	noise opensimplex.Noise
}

// New creates a curve for a career seed.
func New(seed int64) *Curve {
	return &Curve{noise: opensimplex.NewNormalized(seed + 400)}
}

// Level returns the member's form on day, in [0,1].
func (c *Curve) Level(name string, day int) float64 {
	track := float64(trackOf(name) % 10000)
	v := octaveNoise(c.noise, float64(day), track*7.3, 3, 0.08, 0.5)
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Label buckets a form level for display.
func Label(level float64) string {
	switch {
	case level >= 0.8:
		return "Excellent"
	case level >= 0.6:
		return "Good"
	case level >= 0.4:
		return "Average"
	case level >= 0.2:
		return "Poor"
	}
	return "Terrible"
}

func trackOf(name string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(name))
	return h.Sum32()
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
