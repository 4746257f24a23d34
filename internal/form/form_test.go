package form

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevelIsBoundedAndDeterministic(t *testing.T) {
	a, b := New(42), New(42)
	for day := 0; day < 60; day++ {
		v := a.Level("Ren Kiyota", day)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
		assert.Equal(t, v, b.Level("Ren Kiyota", day))
	}
}

func TestLevelIsSmooth(t *testing.T) {
	c := New(7)
	prev := c.Level("Aoi Manabe", 0)
	for day := 1; day < 100; day++ {
		v := c.Level("Aoi Manabe", day)
		assert.Less(t, math.Abs(v-prev), 0.35, "day %d", day)
		prev = v
	}
}

func TestTracksDiffer(t *testing.T) {
	c := New(1)
	same := 0
	for day := 0; day < 30; day++ {
		if c.Level("A", day) == c.Level("B", day) {
			same++
		}
	}
	assert.Less(t, same, 30)
}

func TestLabel(t *testing.T) {
	assert.Equal(t, "Excellent", Label(0.9))
	assert.Equal(t, "Good", Label(0.6))
	assert.Equal(t, "Average", Label(0.5))
	assert.Equal(t, "Poor", Label(0.2))
	assert.Equal(t, "Terrible", Label(0.05))
}
