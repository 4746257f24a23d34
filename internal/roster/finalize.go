package roster

import (
	"math"

	"github.com/hayaneofficial/soccer-career-sim/internal/attributes"
	"github.com/hayaneofficial/soccer-career-sim/internal/entropy"
	"github.com/hayaneofficial/soccer-career-sim/internal/valuation"
)

// DefaultEditedAge applies to edited records that omit an age.
const DefaultEditedAge = 20

// gapBand is a PA-CA gap range selected by an upper CA bound.
type gapBand struct {
	maxCA    float64
	min, max float64
}

var (
	schoolGapBands = []gapBand{{37, 15, 35}, {50, 10, 30}, {70, 5, 25}, {math.Inf(1), 0, 20}}
	proGapBands    = []gapBand{{90, 10, 30}, {130, 5, 25}, {math.Inf(1), 0, 15}}
)

const (
	schoolPACap = 150.0
	proPACap    = attributes.MaxCA
)

func (g *Generator) gap(bands []gapBand, ca float64) float64 {
	for _, b := range bands {
		if ca <= b.maxCA {
			return entropy.Uniform(g.src, b.min, b.max)
		}
	}
	return 0
}

// Finalize turns user-edited member records into a roster. Edited CA is
// respected; missing CA or PA is estimated per category and missing market
// values are priced from the member's own CA.
func (g *Generator) Finalize(category Category, formation string, records []Seed) Roster {
	f := ResolveFormation(formation, g.src)
	r := Roster{Category: category, Formation: f, Members: make([]Person, 0, len(records))}

	for _, rec := range records {
		rec = rec.withDefaults(DefaultEditedAge)
		pt := valuation.Classify(rec.Position)
		ca, pa := rec.CA, rec.PA

		switch {
		case ca <= 0 && category.School():
			base := 25.0
			if category == University {
				base = 35
			}
			ca = base + entropy.Uniform(g.src, -10, 30)
			pa = math.Min(schoolPACap, ca+entropy.Uniform(g.src, 10, 35))
		case ca <= 0:
			var est float64
			ca, est = valuation.EstimateFromValue(rec.Value, rec.Age, pt)
			if category == Youth {
				ca *= youthCAFactor
			}
			pa = est
		case pa <= 0 && category.School():
			pa = math.Min(schoolPACap, ca+g.gap(schoolGapBands, ca))
		case pa <= 0 && rec.Value > 0:
			_, est := valuation.EstimateFromValue(rec.Value, rec.Age, pt)
			pa = math.Max(ca, est)
		case pa <= 0:
			pa = math.Min(proPACap, ca+g.gap(proGapBands, ca))
		}

		p := g.member(rec.Name, rec.Position, rec.Age, ca, pa, OriginEdited)
		p.Foot = rec.Foot
		p.ShirtNumber = rec.Number
		if rec.Height > 0 {
			p.Height = rec.Height
		}
		if rec.Value > 0 {
			p.MarketValue = rec.Value
		}
		r.Members = append(r.Members, p)
	}
	return r
}
