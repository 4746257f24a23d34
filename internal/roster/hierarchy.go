// Hierarchy engine: ranks a roster by CA with form-driven jitter and assigns
// tier labels and shirt numbers.
package roster

import (
	"math"
	"sort"

	"github.com/hayaneofficial/soccer-career-sim/internal/entropy"
)

// Tier label sets.
var (
	UniversityTiers = []string{"ASta", "ASub", "BSta", "BSub", "CSta", "CSub", "DSta", "DSub", "E"}
	HighSchoolTiers = []string{"ASta", "ASub", "BSta", "BSub", "CSta", "CSub", "D"}
)

// Pro/youth tier labels.
const (
	TierStar        = "Star"
	TierKey         = "Key Player"
	TierStarter     = "Starter"
	TierCompeting   = "Competing for Starter"
	TierRotation    = "Rotation"
	TierPromising   = "Promising Youngster"
	TierBench       = "Bench"
	TierFringe      = "Fringe Squad"
	TierSurplus     = "Surplus"
	UnassignedShirt = 99
)

// Jitter tuning.
const (
	jitterGap     = 5.0
	forcedSwapGap = 1.0
	jitterScale   = 0.5
	youngAge      = 23
)

// proThresholds maps inclusive upper ranks to tiers.
var proThresholds = []struct {
	maxRank int
	tier    string
}{
	{2, TierStar},
	{5, TierKey},
	{9, TierStarter},
	{14, TierCompeting},
	{20, TierRotation},
}

// TierLabels returns the ordered tier labels for c.
func TierLabels(c Category) []string {
	switch c {
	case University:
		return append([]string(nil), UniversityTiers...)
	case HighSchool:
		return append([]string(nil), HighSchoolTiers...)
	}
	return []string{TierStar, TierKey, TierStarter, TierCompeting, TierRotation, TierPromising, TierBench, TierFringe, TierSurplus}
}

// RecomputeHierarchy returns a new roster ordered by rank with tiers and
// shirt numbers assigned. condition is the controlled player's form in
// [0,1]; it scales how often closely matched neighbours trade places. src
// is drawn from on every call so the order of near-equals fluctuates.
func RecomputeHierarchy(r Roster, condition float64, src entropy.Source) Roster {
	out := r.Clone()
	sort.SliceStable(out.Members, func(i, j int) bool {
		return out.Members[i].CA > out.Members[j].CA
	})
	jitter(out.Members, condition, src)

	if out.Category.School() {
		assignSchool(&out)
	} else {
		assignPro(out.Members)
	}
	return out
}

// jitter swaps adjacent near-equals. A swapped pair is stepped over so no
// member moves more than one place per recompute.
func jitter(ms []Person, condition float64, src entropy.Source) {
	p := jitterScale * math.Max(0, math.Min(1, condition))
	for i := 0; i+1 < len(ms); i++ {
		gap := math.Abs(ms[i].CA - ms[i+1].CA)
		if gap > jitterGap {
			continue
		}
		if gap <= forcedSwapGap || src.Float64() < p {
			ms[i], ms[i+1] = ms[i+1], ms[i]
			i++
		}
	}
}

func assignSchool(r *Roster) {
	tiers := TierLabels(r.Category)
	ms := r.Members
	assigned := make([]bool, len(ms))
	ranked := make([]Person, 0, len(ms))

	fit := make([]string, len(ms))
	for i := range ms {
		fit[i] = r.Formation.SlotFor(ms[i].Position)
	}
	pick := func(slot string, loose bool) int {
		for i := range ms {
			if assigned[i] {
				continue
			}
			if (!loose && matchExact(slot, fit[i])) || (loose && matchLoose(slot, ms[i].Position)) {
				return i
			}
		}
		return -1
	}

	for ti, tier := range tiers {
		for si, slot := range r.Formation.Slots {
			idx := pick(slot, false)
			if idx < 0 {
				idx = pick(slot, true)
			}
			if idx < 0 {
				continue
			}
			assigned[idx] = true
			m := ms[idx]
			m.Tier = tier
			m.ShirtNumber = ti*SlotCount + si + 1
			ranked = append(ranked, m)
		}
	}

	lowest := tiers[len(tiers)-1]
	for i, m := range ms {
		if assigned[i] {
			continue
		}
		m.Tier = lowest
		m.ShirtNumber = UnassignedShirt
		ranked = append(ranked, m)
	}

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	r.Members = ranked
}

func assignPro(ms []Person) {
	caAt := func(rank int) float64 {
		if len(ms) == 0 {
			return 0
		}
		if rank > len(ms) {
			rank = len(ms)
		}
		return ms[rank-1].CA
	}
	promisingBar, benchBar := caAt(9), caAt(14)

	for i := range ms {
		rank := i + 1
		ms[i].Rank = rank
		ms[i].Tier = proTier(rank, ms[i], promisingBar, benchBar)
	}
	assignProNumbers(ms)
}

func proTier(rank int, m Person, promisingBar, benchBar float64) string {
	for _, t := range proThresholds {
		if rank <= t.maxRank {
			return t.tier
		}
	}
	if m.Age <= youngAge {
		switch {
		case m.PA >= promisingBar:
			return TierPromising
		case m.PA <= benchBar:
			return TierBench
		}
		return TierFringe
	}
	if rank > 25 {
		return TierSurplus
	}
	return TierFringe
}

// assignProNumbers keeps existing shirt numbers and hands the lowest free
// number to anyone without one, in rank order.
func assignProNumbers(ms []Person) {
	taken := make(map[int]bool, len(ms))
	for i := range ms {
		n := ms[i].ShirtNumber
		if n < 1 || n > 99 || taken[n] {
			ms[i].ShirtNumber = 0
			continue
		}
		taken[n] = true
	}
	next := 1
	for i := range ms {
		if ms[i].ShirtNumber != 0 {
			continue
		}
		for next <= 99 && taken[next] {
			next++
		}
		if next > 99 {
			ms[i].ShirtNumber = UnassignedShirt
			continue
		}
		ms[i].ShirtNumber = next
		taken[next] = true
	}
}
