// Roster spawning: category-specific sampling of a full squad, with every
// member's abilities shaped so that CA matches the sampled target.
package roster

import (
	"math"
	"strings"

	"github.com/hayaneofficial/soccer-career-sim/internal/attributes"
	"github.com/hayaneofficial/soccer-career-sim/internal/entropy"
	"github.com/hayaneofficial/soccer-career-sim/internal/valuation"
)

// Generation defaults.
const (
	TargetSize     = 26
	DefaultFoot    = "Right"
	DefaultHeight  = 175
	DefaultSeedAge = 25
	DefaultName    = "Unknown"
	DefaultPos     = "MF"

	youthCAFactor = 0.85
	youthPAFactor = 0.95
	padAge        = 20
	padPAGap      = 10.0
)

// Seed is a real-roster or user-edited player record. Zero fields are
// filled with defaults; CA and PA are optional.
type Seed struct {
	Name     string  `json:"name"`
	Position string  `json:"position"`
	Value    int64   `json:"value"`
	Age      int     `json:"age"`
	Foot     string  `json:"foot"`
	Height   int     `json:"height"`
	Number   int     `json:"number"`
	CA       float64 `json:"ca,omitempty"`
	PA       float64 `json:"pa,omitempty"`
}

func (s Seed) withDefaults(age int) Seed {
	s.Name = strings.TrimSpace(s.Name)
	if s.Name == "" {
		s.Name = DefaultName
	}
	s.Position = strings.ToUpper(strings.TrimSpace(s.Position))
	if s.Position == "" {
		s.Position = DefaultPos
	}
	if s.Age <= 0 {
		s.Age = age
	}
	if strings.TrimSpace(s.Foot) == "" {
		s.Foot = DefaultFoot
	}
	if s.Value < 0 {
		s.Value = 0
	}
	if s.Number < 0 || s.Number > 99 {
		s.Number = 0
	}
	return s
}

// emphasis lists the abilities each position type leans on.
var emphasis = map[valuation.PosType][]string{
	valuation.GK:  {"Positioning", "Concentration", "Composure", "Agility", "JumpingReach", "Decisions"},
	valuation.DEF: {"Tackling", "Marking", "Heading", "Strength", "Positioning", "JumpingReach", "Bravery"},
	valuation.MID: {"Passing", "Vision", "FirstTouch", "Technique", "Decisions", "Stamina", "Teamwork"},
	valuation.FW:  {"Finishing", "OffTheBall", "Pace", "Acceleration", "Dribbling", "Composure", "Flair"},
}

// Generator samples rosters from an injected random source.
type Generator struct {
	src   entropy.Source
	model *attributes.Model
	used  map[string]bool
}

// NewGenerator creates a generator. A nil model means attributes.Standard.
func NewGenerator(src entropy.Source, model *attributes.Model) *Generator {
	if model == nil {
		model = attributes.Standard
	}
	return &Generator{src: src, model: model, used: make(map[string]bool)}
}

// Generate builds a squad for category around the named formation. Seeds
// are used by the Professional and Youth categories only.
func (g *Generator) Generate(category Category, formation string, seeds []Seed) Roster {
	f := ResolveFormation(formation, g.src)
	r := Roster{Category: category, Formation: f}
	if category.School() {
		r.Members = g.schoolSquad(category, f)
	} else {
		r.Members = g.proSquad(category, f, seeds)
	}
	return r
}

func schoolGrades(c Category) (grades, baseAge int) {
	if c == University {
		return 4, 18
	}
	return 3, 15
}

func (g *Generator) schoolSquad(c Category, f Formation) []Person {
	grades, baseAge := schoolGrades(c)
	members := make([]Person, 0, grades*len(f.Slots)*2+len(f.Slots)-1)

	for grade := 1; grade <= grades; grade++ {
		for _, pos := range f.Slots {
			for i := 0; i < 2; i++ {
				ca := g.sampleCA(c, grade)
				members = append(members, g.member(g.randomName(), pos, baseAge+grade, ca, g.samplePA(), OriginGenerated))
			}
		}
	}

	// One extra candidate per outfield slot.
	for i, pos := range f.Slots {
		if i == 0 {
			continue
		}
		grade := entropy.IntRange(g.src, 1, grades)
		ca := g.sampleCA(c, grade)
		members = append(members, g.member(g.randomName(), pos, baseAge+grade, ca, g.samplePA(), OriginGenerated))
	}
	return members
}

func (g *Generator) proSquad(c Category, f Formation, seeds []Seed) []Person {
	members := make([]Person, 0, TargetSize)

	for _, s := range seeds {
		if len(members) >= TargetSize {
			break
		}
		s = s.withDefaults(DefaultSeedAge)
		ca, pa := valuation.EstimateFromValue(s.Value, s.Age, valuation.Classify(s.Position))
		if c == Youth {
			ca *= youthCAFactor
			pa = math.Min(attributes.MaxCA, pa*youthPAFactor)
		}
		p := g.member(s.Name, s.Position, s.Age, ca, pa, OriginSeed)
		p.Foot = s.Foot
		p.ShirtNumber = s.Number
		if s.Height > 0 {
			p.Height = s.Height
		}
		members = append(members, p)
	}

	base := 40.0
	if c == Professional {
		base = 90
	}
	for len(members) < TargetSize {
		pos := f.Slots[g.src.Intn(len(f.Slots))]
		ca := base + entropy.Uniform(g.src, -20, 20)
		members = append(members, g.member(g.randomName(), pos, padAge, ca, ca+padPAGap, OriginPad))
	}
	return members
}

// member builds a Person whose abilities are shaped to reach ca.
func (g *Generator) member(name, pos string, age int, ca, pa float64, origin Origin) Person {
	pos = strings.ToUpper(strings.TrimSpace(pos))
	p := Person{
		Name:     name,
		Position: pos,
		Age:      age,
		PA:       pa,
		Foot:     DefaultFoot,
		Height:   g.sampleHeight(pos),
		Origin:   origin,
	}
	p.Attributes = g.profile(p.PosType())
	g.model.ShiftToCA(p.Attributes, ca)
	p.Refresh(g.model)
	return p
}

// profile returns a noisy ability set tilted toward the position type.
func (g *Generator) profile(pt valuation.PosType) attributes.Set {
	set := attributes.Uniform(attributes.DefaultValue)
	for _, k := range attributes.Keys() {
		set.Grow(k, entropy.Gauss(g.src, 0, 1.5))
	}
	for _, k := range emphasis[pt] {
		set.Grow(k, 2.5)
	}
	return set
}

func (g *Generator) sampleCA(c Category, grade int) float64 {
	gr := float64(grade)
	switch c {
	case HighSchool:
		if g.src.Float64() < 0.005 {
			return entropy.Uniform(g.src, 80, 90)
		}
		return clamp(entropy.Gauss(g.src, 34+gr*3, 8), 20, 90)
	case University:
		if g.src.Float64() < 0.005 {
			return entropy.Uniform(g.src, 90, 110)
		}
		return clamp(entropy.Gauss(g.src, 42+gr*3, 7), 30, 110)
	default:
		return clamp(entropy.Gauss(g.src, 90, 15), 30, 160)
	}
}

func (g *Generator) samplePA() float64 {
	roll := g.src.Float64()
	switch {
	case roll < 0.001:
		return entropy.Uniform(g.src, 150, 200)
	case roll < 0.006:
		return entropy.Uniform(g.src, 120, 160)
	case roll < 0.026:
		return entropy.Uniform(g.src, 100, 140)
	}
	return clamp(entropy.Gauss(g.src, 55, 12), 40, 160)
}

// sampleHeight draws from position-group tiers: keepers tallest, then
// centre-backs and centre-forwards.
func (g *Generator) sampleHeight(pos string) int {
	pos = strings.ToUpper(pos)
	roll := g.src.Float64()
	switch {
	case strings.Contains(pos, "GK"):
		switch {
		case roll < 0.2:
			return entropy.IntRange(g.src, 190, 200)
		case roll < 0.9:
			return entropy.IntRange(g.src, 180, 189)
		}
		return entropy.IntRange(g.src, 170, 179)
	case strings.Contains(pos, "CB") || strings.Contains(pos, "CF"):
		switch {
		case roll < 0.05:
			return entropy.IntRange(g.src, 190, 198)
		case roll < 0.65:
			return entropy.IntRange(g.src, 180, 189)
		}
		return entropy.IntRange(g.src, 170, 179)
	}
	switch {
	case roll < 0.15:
		return entropy.IntRange(g.src, 180, 190)
	case roll < 0.35:
		return entropy.IntRange(g.src, 170, 179)
	}
	return entropy.IntRange(g.src, 171, 185)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
