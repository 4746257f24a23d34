package valuation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := map[string]PosType{
		"RSB":  DEF,
		"OMF":  MID,
		"CF":   FW,
		"GK":   GK,
		"LWB":  DEF,
		"CCB":  DEF,
		"LDMF": MID,
		"RWG":  FW,
		"st":   FW,
		"":     MID,
		"???":  MID,
	}
	for code, want := range cases {
		assert.Equal(t, want, Classify(code), "code %q", code)
	}
}

func TestEstimateFromValue(t *testing.T) {
	ca, pa := EstimateFromValue(100_000_000, 25, FW)
	wantCA := 8.6*math.Log(1e8) + 0.7*25 - 3 - 22
	assert.InDelta(t, wantCA, ca, 1e-9)
	// premium ≈ 1.22 → 2.5 per year for 4 years
	assert.InDelta(t, wantCA+10, pa, 1e-9)
}

func TestEstimateFromValueAppliesFloor(t *testing.T) {
	caZero, paZero := EstimateFromValue(0, 18, MID)
	caFloor, paFloor := EstimateFromValue(ValueFloor, 18, MID)
	assert.Equal(t, caFloor, caZero)
	assert.Equal(t, paFloor, paZero)
	// premium ≈ 1.28 → 3.5 per year for 11 years
	assert.InDelta(t, caZero+38.5, paZero, 1e-9)
}

func TestEstimateFromValueVeteranGetsFlatHeadroom(t *testing.T) {
	ca, pa := EstimateFromValue(5_000_000, 31, DEF)
	assert.InDelta(t, ca+4, pa, 1e-9)
}

func TestEstimateFromValueClamps(t *testing.T) {
	ca, pa := EstimateFromValue(1_000_000_000_000, 34, GK)
	assert.Equal(t, 195.0, ca)
	assert.GreaterOrEqual(t, pa, ca)
	assert.LessOrEqual(t, pa, 200.0)
}

func TestEstimateValueClamps(t *testing.T) {
	assert.Equal(t, int64(MaxValue), EstimateValue(200, 15, GK))
	assert.Equal(t, int64(1), EstimateValue(1, 35, MID))
	assert.Equal(t, int64(PriceFloor), MarketValue(1, 35, MID))
}

func TestRoundTrip(t *testing.T) {
	v := EstimateValue(127, 24, MID)
	assert.Greater(t, v, int64(ValueFloor))
	assert.Less(t, v, int64(MaxValue))

	ca, _ := EstimateFromValue(v, 24, MID)
	assert.InDelta(t, 127, ca, 2)

	for _, pos := range []PosType{GK, DEF, MID, FW} {
		for _, target := range []float64{110, 130, 150} {
			ca, _ := EstimateFromValue(EstimateValue(target, 26, pos), 26, pos)
			assert.InDelta(t, target, ca, 0.01, "pos %s ca %v", pos, target)
		}
	}
}

func TestRankFor(t *testing.T) {
	r, ok := RankFor(155)
	assert.True(t, ok)
	assert.Equal(t, "S", r.Code)

	r, ok = RankFor(100)
	assert.True(t, ok)
	assert.Equal(t, "B", r.Code)

	_, ok = RankFor(49.9)
	assert.False(t, ok)
}
