// Package attributes provides the ability vocabulary, the weight table, and
// the derived competence score (CA) used by every person in a career.
package attributes

// Ability value bounds. Every value in a Set stays inside [MinValue, MaxValue].
const (
	MinValue     = 1.0
	MaxValue     = 20.0
	DefaultValue = 10.0
)

// Group is the display grouping of an ability.
type Group uint8

const (
	GroupMental Group = iota
	GroupPhysical
	GroupTechnical
	GroupHidden
)

// GroupName returns a human-readable group label.
func GroupName(g Group) string {
	switch g {
	case GroupMental:
		return "Mental"
	case GroupPhysical:
		return "Physical"
	case GroupTechnical:
		return "Technical"
	case GroupHidden:
		return "Hidden"
	default:
		return "Unknown"
	}
}

// ability is one entry in the fixed vocabulary.
type ability struct {
	Key    string
	Weight float64
	Group  Group
}

// vocabulary is ordered for stable iteration and display. Version 2 added
// the hidden traits.
var vocabulary = []ability{
	{"Decisions", 4.0, GroupMental},
	{"Anticipation", 3.5, GroupMental},
	{"Composure", 3.5, GroupMental},
	{"Concentration", 3.0, GroupMental},
	{"WorkRate", 3.0, GroupMental},
	{"Teamwork", 2.5, GroupMental},
	{"Positioning", 2.5, GroupMental},
	{"OffTheBall", 2.5, GroupMental},
	{"Vision", 2.5, GroupMental},
	{"Determination", 2.0, GroupMental},
	{"Aggression", 1.5, GroupMental},
	{"Bravery", 1.5, GroupMental},
	{"Flair", 1.0, GroupMental},
	{"Leadership", 1.0, GroupMental},

	{"Acceleration", 5.0, GroupPhysical},
	{"Pace", 5.0, GroupPhysical},
	{"Stamina", 4.0, GroupPhysical},
	{"NaturalFitness", 3.5, GroupPhysical},
	{"Agility", 3.5, GroupPhysical},
	{"Strength", 3.0, GroupPhysical},
	{"Balance", 2.5, GroupPhysical},
	{"JumpingReach", 2.5, GroupPhysical},

	{"Passing", 4.0, GroupTechnical},
	{"FirstTouch", 4.0, GroupTechnical},
	{"Technique", 3.5, GroupTechnical},
	{"Dribbling", 2.5, GroupTechnical},
	{"Tackling", 2.5, GroupTechnical},
	{"Marking", 2.5, GroupTechnical},
	{"Finishing", 2.5, GroupTechnical},
	{"Heading", 2.0, GroupTechnical},
	{"Crossing", 2.0, GroupTechnical},
	{"LongShots", 1.5, GroupTechnical},
	{"PenaltyTaking", 1.0, GroupTechnical},
	{"FreeKickTaking", 1.0, GroupTechnical},
	{"Corners", 1.0, GroupTechnical},
	{"LongThrows", 0.5, GroupTechnical},
	{"WeakFoot", 9.0, GroupTechnical},

	{"Adaptability", 1.0, GroupHidden},
	{"Ambition", 1.0, GroupHidden},
	{"Controversy", 0.5, GroupHidden},
	{"Loyalty", 0.5, GroupHidden},
	{"Pressure", 1.5, GroupHidden},
	{"Professionalism", 1.5, GroupHidden},
	{"Sportsmanship", 0.5, GroupHidden},
	{"Temperament", 0.5, GroupHidden},
	{"InjuryProneness", 1.5, GroupHidden},
	{"Versatility", 1.5, GroupHidden},
	{"Dirtiness", 0.5, GroupHidden},
	{"ImportantMatches", 1.0, GroupHidden},
}

var vocabIndex = func() map[string]int {
	idx := make(map[string]int, len(vocabulary))
	for i, a := range vocabulary {
		idx[a.Key] = i
	}
	return idx
}()

// Keys returns the vocabulary in display order.
func Keys() []string {
	keys := make([]string, len(vocabulary))
	for i, a := range vocabulary {
		keys[i] = a.Key
	}
	return keys
}

// Known reports whether key belongs to the vocabulary.
func Known(key string) bool {
	_, ok := vocabIndex[key]
	return ok
}

// GroupOf returns the group of a known key.
func GroupOf(key string) (Group, bool) {
	i, ok := vocabIndex[key]
	if !ok {
		return 0, false
	}
	return vocabulary[i].Group, true
}

// DefaultWeights returns a copy of the standard weight table.
func DefaultWeights() map[string]float64 {
	w := make(map[string]float64, len(vocabulary))
	for _, a := range vocabulary {
		w[a.Key] = a.Weight
	}
	return w
}
