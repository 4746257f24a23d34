package roster

import (
	"strings"

	"github.com/hayaneofficial/soccer-career-sim/internal/entropy"
	"github.com/hayaneofficial/soccer-career-sim/internal/valuation"
)

// SlotCount is the number of positions in every formation.
const SlotCount = 11

// Formation is a named 11-slot tactical template.
type Formation struct {
	Name  string   `json:"name"`
	Slots []string `json:"slots"`
}

var formations = []Formation{
	{"4-3-3", []string{"GK", "LSB", "LCB", "RCB", "RSB", "DMF", "LCM", "RCM", "LWG", "RWG", "CF"}},
	{"4-2-3-1", []string{"GK", "LSB", "LCB", "RCB", "RSB", "LDMF", "RDMF", "LMF", "OMF", "RMF", "CF"}},
	{"4-4-2", []string{"GK", "LSB", "LCB", "RCB", "RSB", "LMF", "LCM", "RCM", "RMF", "CF", "CF"}},
	{"3-5-2", []string{"GK", "LCB", "CCB", "RCB", "LWB", "LCM", "DMF", "RCM", "RWB", "CF", "CF"}},
	{"3-4-2-1", []string{"GK", "LCB", "CCB", "RCB", "LWB", "LCM", "RCM", "RWB", "LOMF", "ROMF", "CF"}},
	{"3-4-3", []string{"GK", "LCB", "CCB", "RCB", "LWB", "LCM", "RCM", "RWB", "LWG", "RWG", "CF"}},
}

// FormationNames lists the catalog in order.
func FormationNames() []string {
	names := make([]string, len(formations))
	for i, f := range formations {
		names[i] = f.Name
	}
	return names
}

// LookupFormation returns a copy of the named formation.
func LookupFormation(name string) (Formation, bool) {
	name = strings.TrimSpace(name)
	for _, f := range formations {
		if f.Name == name {
			return f.copy(), true
		}
	}
	return Formation{}, false
}

// ResolveFormation returns the named formation, or a catalog entry picked by
// src when the name is unknown.
func ResolveFormation(name string, src entropy.Source) Formation {
	if f, ok := LookupFormation(name); ok {
		return f
	}
	return formations[src.Intn(len(formations))].copy()
}

func (f Formation) copy() Formation {
	f.Slots = append([]string(nil), f.Slots...)
	return f
}

// matchExact reports whether a member's position fills slot exactly.
func matchExact(slot, pos string) bool {
	return strings.EqualFold(slot, pos)
}

// matchLoose accepts either code containing the other, so "CB" fills "LCB".
func matchLoose(slot, pos string) bool {
	slot, pos = strings.ToUpper(slot), strings.ToUpper(pos)
	if slot == "" || pos == "" {
		return false
	}
	return strings.Contains(slot, pos) || strings.Contains(pos, slot)
}

// SlotFor returns the slot code a member playing pos lines up in: an exact
// slot, else a slot containing (or contained in) pos, else one sharing its
// stem, else the first slot of the same position type. It returns pos
// unchanged when nothing fits.
func (f Formation) SlotFor(pos string) string {
	for _, match := range []func(slot, pos string) bool{matchExact, matchLoose, matchStem, matchType} {
		for _, slot := range f.Slots {
			if match(slot, pos) {
				return slot
			}
		}
	}
	return pos
}

// matchStem compares codes with the side prefix and trailing F removed, so
// "CMF" fills "LCM" and "DMF" fills "LDMF".
func matchStem(slot, pos string) bool {
	a, b := positionStem(slot), positionStem(pos)
	return a != "" && a == b
}

// matchType falls back to the coarse position type.
func matchType(slot, pos string) bool {
	if strings.TrimSpace(slot) == "" || strings.TrimSpace(pos) == "" {
		return false
	}
	return valuation.Classify(slot) == valuation.Classify(pos)
}

func positionStem(code string) string {
	s := strings.ToUpper(strings.TrimSpace(code))
	if len(s) > 2 {
		s = strings.TrimSuffix(s, "F")
	}
	if len(s) > 2 && strings.IndexByte("LRC", s[0]) >= 0 {
		s = s[1:]
	}
	return s
}
