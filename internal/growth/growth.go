// Package growth sizes daily CA gains, rescales content-proposed ability
// deltas to that size, and runs weekly passive growth for the squad.
package growth

import (
	"math"

	"github.com/hayaneofficial/soccer-career-sim/internal/attributes"
	"github.com/hayaneofficial/soccer-career-sim/internal/roster"
)

var ageBrackets = []struct {
	min, max int
	factor   float64
}{
	{15, 17, 1.15},
	{18, 20, 1.10},
	{21, 23, 1.00},
	{24, 27, 0.90},
	{28, 31, 0.80},
	{32, math.MaxInt32, 0.70},
}

var mentalKeys = []string{"Determination", "WorkRate", "Teamwork", "Decisions", "Composure"}

const (
	envSpread      = 40.0
	envWeight      = 0.4
	riskWeight     = 0.30
	overshootTries = 3
)

// AgeFactor returns the age multiplier; ages below every bracket get 1.
func AgeFactor(age int) float64 {
	for _, b := range ageBrackets {
		if age >= b.min && age <= b.max {
			return b.factor
		}
	}
	return 1.0
}

// GapFactor rewards headroom below PA: 0.5 + (pa-ca)/pa, capped at 1.5.
func GapFactor(ca, pa float64) float64 {
	if pa <= 0 {
		return 0
	}
	gap := (pa - ca) / pa
	if gap <= 0 {
		return 0
	}
	return clamp(0.5+gap, 0, 1.5)
}

// DailyCA is the expected CA gain from one day of activity for p training
// alongside team.
func DailyCA(baseIntensity, performance float64, p *roster.Player, team roster.Roster) float64 {
	hp := clamp(float64(p.HP), 0, roster.MaxHP)
	hpFactor := 0.10 + 0.90*(hp/roster.MaxHP)
	riskFactor := 1.0 - riskWeight*(clamp(p.InjuryRisk, 0, 100)/100)

	envFactor := 1.0
	if avg, ok := team.AverageCA(); ok {
		envFactor = 1.0 + envWeight*(clamp(avg-p.CA, -envSpread, envSpread)/(2*envSpread))
	}

	mentalFactor := 0.9 + (p.Attributes.Average(mentalKeys...)-10)*0.04

	return baseIntensity *
		AgeFactor(p.Age) *
		hpFactor *
		riskFactor *
		envFactor *
		GapFactor(p.CA, p.PA) *
		mentalFactor *
		performance
}

// Result describes one ApplyProposed call.
type Result struct {
	Target  float64            `json:"target"`
	RawGain float64            `json:"raw_gain"`
	Scale   float64            `json:"scale"`
	Gained  float64            `json:"gained"`
	Applied map[string]float64 `json:"applied,omitempty"`
	Skipped bool               `json:"skipped,omitempty"`
}

// ApplyProposed applies content-proposed ability deltas to p, rescaled so
// the CA gain matches DailyCA. Proposals are skipped when the target is not
// positive and applied unscaled when they would not raise CA. The gain is
// capped so CA never passes PA.
func ApplyProposed(p *roster.Player, proposed map[string]float64, baseIntensity, performance float64, team roster.Roster, m *attributes.Model) Result {
	before := m.CA(p.Attributes)
	res := Result{Target: DailyCA(baseIntensity, performance, p, team), Scale: 1}
	if res.Target <= 0 {
		res.Skipped = true
		return res
	}

	scratch := applied(p.Attributes, proposed, 1)
	res.RawGain = m.CA(scratch) - before

	next := scratch
	if res.RawGain > 0 {
		goal := math.Min(res.Target, p.PA-before)
		res.Scale = goal / res.RawGain
		next = applied(p.Attributes, proposed, res.Scale)
		for i := 0; i < overshootTries; i++ {
			gain := m.CA(next) - before
			if before+gain <= p.PA || gain <= 0 {
				break
			}
			res.Scale *= (p.PA - before) / gain
			next = applied(p.Attributes, proposed, res.Scale)
		}
	}

	res.Applied = make(map[string]float64, len(proposed))
	for k := range proposed {
		if d := next.Value(k) - p.Attributes.Value(k); d != 0 && attributes.Known(k) {
			res.Applied[k] = d
		}
	}
	p.Attributes = next
	p.Refresh(m)
	res.Gained = p.CA - before
	return res
}

func applied(s attributes.Set, proposed map[string]float64, scale float64) attributes.Set {
	out := s.Clone()
	for k, d := range proposed {
		if math.IsNaN(d) || math.IsInf(d, 0) {
			continue
		}
		out.Grow(k, d*scale)
	}
	return out
}

// PassiveRate returns the weekly fraction of the PA gap closed at age.
func PassiveRate(age int) float64 {
	switch {
	case age <= 23:
		return 0.05
	case age <= 27:
		return 0.03
	case age <= 30:
		return 0.02
	}
	return 0.01
}

// minPassiveDelta is the smallest weekly step for anyone below PA.
const minPassiveDelta = 0.01

// WeeklyPassive moves every uncontrolled member with headroom toward PA by
// max(0.01, (pa-ca)·rate), never past PA, and re-prices them. Abilities
// shift uniformly so CA stays derived from them. It returns how many
// members grew.
func WeeklyPassive(members []roster.Person, m *attributes.Model) int {
	grown := 0
	for i := range members {
		p := &members[i]
		if p.Controlled || p.PA <= p.CA {
			continue
		}
		if p.Attributes == nil {
			p.Attributes = attributes.Uniform(p.CA / 10)
		}
		delta := math.Max(minPassiveDelta, (p.PA-p.CA)*PassiveRate(p.Age))
		target := math.Min(p.PA, p.CA+delta)
		m.ShiftToCA(p.Attributes, target)
		p.Refresh(m)
		grown++
	}
	return grown
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
