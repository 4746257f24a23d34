// Positional aptitude and the PAP training-point budget that unlocks it.
package attributes

import "math"

// Positions is the catalog of position codes a player can hold aptitude in.
var Positions = []string{
	"CF", "OMF", "RWG", "LWG", "CMF", "DMF", "RMF", "LMF",
	"RWB", "LWB", "RSB", "LSB", "CB", "GK",
}

// papKeys feed the PAP ceiling.
var papKeys = []string{
	"Decisions", "Anticipation", "Composure", "WorkRate",
	"Teamwork", "Positioning", "OffTheBall", "Vision", "Versatility",
}

const (
	papRawMin    = 9.0
	papRawMax    = 180.0
	papMin       = 20.0
	papMax       = 260.0
	aptitudeRate = 0.1
)

// ComputePAP maps the summed mental abilities from [9,180] onto [20,260].
func ComputePAP(s Set) float64 {
	raw := 0.0
	for _, k := range papKeys {
		raw += s.Value(k)
	}
	ratio := (raw - papRawMin) / (papRawMax - papRawMin)
	ratio = math.Max(0, math.Min(1, ratio))
	return papMin + (papMax-papMin)*ratio
}

// Aptitude tracks position aptitude and the one-time PAP budget spent on it.
type Aptitude struct {
	Levels       map[string]float64 `json:"levels"`
	PAPMax       float64            `json:"pap_max"`
	PAPRemaining float64            `json:"pap_remaining"`
	Allocated    bool               `json:"allocated"`
}

// NewAptitude gives the native position full aptitude and allocates the
// budget from the current abilities.
func NewAptitude(native string, s Set) Aptitude {
	a := Aptitude{Levels: make(map[string]float64, len(Positions))}
	for _, p := range Positions {
		a.Levels[p] = 0
	}
	if _, ok := a.Levels[native]; ok {
		a.Levels[native] = MaxValue
	}
	a.Refresh(s)
	return a
}

// Refresh recomputes the PAP ceiling. The spendable budget is allocated once
// and never replenished.
func (a *Aptitude) Refresh(s Set) {
	a.PAPMax = ComputePAP(s)
	if !a.Allocated {
		a.PAPRemaining = a.PAPMax
		a.Allocated = true
	}
}

// Spend converts up to points of the remaining budget into aptitude for pos
// (0.1 per point, capped at MaxValue). It returns the points consumed.
func (a *Aptitude) Spend(pos string, points float64) float64 {
	if points <= 0 || a.PAPRemaining <= 0 {
		return 0
	}
	cur, ok := a.Levels[pos]
	if !ok {
		return 0
	}
	need := (MaxValue - cur) / aptitudeRate
	used := math.Min(points, math.Min(a.PAPRemaining, need))
	if used <= 0 {
		return 0
	}
	a.Levels[pos] = math.Min(MaxValue, cur+used*aptitudeRate)
	a.PAPRemaining -= used
	return used
}
