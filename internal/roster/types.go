// Package roster provides the squad data model, category-specific roster
// generation, and the hierarchy engine that ranks members by CA.
package roster

import (
	"math"
	"strings"

	"github.com/hayaneofficial/soccer-career-sim/internal/attributes"
	"github.com/hayaneofficial/soccer-career-sim/internal/valuation"
)

// Category selects generation distributions and the hierarchy variant.
type Category string

const (
	HighSchool   Category = "HighSchool"
	University   Category = "University"
	Youth        Category = "Youth"
	Professional Category = "Professional"
)

// Categories lists every category in display order.
var Categories = []Category{HighSchool, University, Youth, Professional}

// ParseCategory matches s case-insensitively against the known categories.
func ParseCategory(s string) (Category, bool) {
	for _, c := range Categories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, true
		}
	}
	return "", false
}

// School reports whether c uses the tier/slot hierarchy.
func (c Category) School() bool {
	return c == HighSchool || c == University
}

// Origin records where a member came from.
type Origin string

const (
	OriginGenerated Origin = "generated"
	OriginSeed      Origin = "seed"
	OriginEdited    Origin = "edited"
	OriginPad       Origin = "pad"
	OriginPlayer    Origin = "player"
)

// Person is a roster member. CA is always derived from Attributes; PA is a
// ceiling that growth never crosses.
type Person struct {
	Name        string         `json:"name"`
	Position    string         `json:"position"`
	Age         int            `json:"age"`
	Attributes  attributes.Set `json:"attributes"`
	CA          float64        `json:"ca"`
	PA          float64        `json:"pa"`
	MarketValue int64          `json:"market_value"`
	Tier        string         `json:"tier,omitempty"`
	Rank        int            `json:"rank,omitempty"`
	ShirtNumber int            `json:"shirt_number"`
	Foot        string         `json:"foot"`
	Height      int            `json:"height"`
	Origin      Origin         `json:"origin,omitempty"`
	Controlled  bool           `json:"controlled,omitempty"`
}

// PosType classifies the member's position code.
func (p *Person) PosType() valuation.PosType {
	return valuation.Classify(p.Position)
}

// Refresh recomputes CA from the attributes and re-prices the member.
// PA is raised to CA if it ever falls below it.
func (p *Person) Refresh(m *attributes.Model) {
	p.CA = m.CA(p.Attributes)
	p.PA = math.Max(p.PA, p.CA)
	p.MarketValue = valuation.MarketValue(p.CA, p.Age, p.PosType())
}

// clone deep-copies the attribute map.
func (p Person) clone() Person {
	p.Attributes = p.Attributes.Clone()
	return p
}

// Condition bounds for the controlled player.
const (
	MaxHP       = 100
	MaxMP       = 100
	DefaultPA   = 150.0
	MaxRelation = 100.0
)

// Player is the controlled athlete: a Person plus condition, position
// aptitude, and relations with teammates.
type Player struct {
	Person
	HP         int                 `json:"hp"`
	MP         int                 `json:"mp"`
	InjuryRisk float64             `json:"injury_risk"`
	Aptitude   attributes.Aptitude `json:"aptitude"`
	Relations  map[string]float64  `json:"relations,omitempty"`
}

// NewPlayer builds a fresh player at full condition. Missing abilities
// default to 10 and PA starts at DefaultPA, never below the starting CA.
func NewPlayer(name, position string, age int, attrs map[string]float64, m *attributes.Model) *Player {
	set := attributes.NewSet(attrs)
	p := &Player{
		Person: Person{
			Name:       name,
			Position:   strings.ToUpper(strings.TrimSpace(position)),
			Age:        age,
			Attributes: set,
			PA:         DefaultPA,
			Foot:       DefaultFoot,
			Height:     DefaultHeight,
			Origin:     OriginPlayer,
			Controlled: true,
		},
		HP:       MaxHP,
		MP:       MaxMP,
		Aptitude: attributes.NewAptitude(strings.ToUpper(strings.TrimSpace(position)), set),
	}
	p.Refresh(m)
	return p
}

// Refresh recomputes CA, market value, and the PAP ceiling.
func (p *Player) Refresh(m *attributes.Model) {
	p.Person.Refresh(m)
	p.Aptitude.Refresh(p.Attributes)
}

// Condition is (HP+MP)/200, the form signal the hierarchy jitter uses.
func (p *Player) Condition() float64 {
	return float64(p.HP+p.MP) / float64(MaxHP+MaxMP)
}

// Spend subtracts HP and MP costs, clamping both to [0,100]. Negative costs
// recover.
func (p *Player) Spend(hpCost, mpCost int) {
	p.HP = clampInt(p.HP-hpCost, 0, MaxHP)
	p.MP = clampInt(p.MP-mpCost, 0, MaxMP)
}

// AdjustRelation adds delta to the relation with name, clamped to ±100.
func (p *Player) AdjustRelation(name string, delta float64) {
	if name == "" || math.IsNaN(delta) {
		return
	}
	if p.Relations == nil {
		p.Relations = make(map[string]float64)
	}
	v := p.Relations[name] + delta
	p.Relations[name] = math.Max(-MaxRelation, math.Min(MaxRelation, v))
}

// Roster is the squad around the player. Members never includes the
// controlled player except in the ranking view built by WithPlayer.
type Roster struct {
	Category  Category  `json:"category"`
	Formation Formation `json:"formation"`
	Members   []Person  `json:"members"`
}

// Clone deep-copies the roster.
func (r Roster) Clone() Roster {
	out := r
	out.Members = make([]Person, len(r.Members))
	for i, m := range r.Members {
		out.Members[i] = m.clone()
	}
	return out
}

// WithPlayer returns a copy of r with p appended as the controlled member.
func (r Roster) WithPlayer(p Person) Roster {
	out := r.Clone()
	p = p.clone()
	p.Controlled = true
	out.Members = append(out.Members, p)
	return out
}

// Split separates the controlled member from the rest.
func (r Roster) Split() (Roster, Person, bool) {
	out := r
	out.Members = make([]Person, 0, len(r.Members))
	var player Person
	found := false
	for _, m := range r.Members {
		if m.Controlled && !found {
			player, found = m, true
			continue
		}
		out.Members = append(out.Members, m)
	}
	return out, player, found
}

// AverageCA is the mean CA of the uncontrolled members.
func (r Roster) AverageCA() (float64, bool) {
	total, n := 0.0, 0
	for _, m := range r.Members {
		if m.Controlled {
			continue
		}
		total += m.CA
		n++
	}
	if n == 0 {
		return 0, false
	}
	return total / float64(n), true
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
