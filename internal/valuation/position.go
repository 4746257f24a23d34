// Package valuation links market value, age, position type, CA and PA with a
// log-linear model, and prices every roster member.
package valuation

import "strings"

// PosType is the coarse position classification used by the model.
type PosType uint8

const (
	GK PosType = iota
	DEF
	MID
	FW
)

// String returns the short label.
func (p PosType) String() string {
	switch p {
	case GK:
		return "GK"
	case DEF:
		return "DEF"
	case FW:
		return "FW"
	default:
		return "MID"
	}
}

// classifyRules are checked in order; the first rule with a matching tag wins.
var classifyRules = []struct {
	pos  PosType
	tags []string
}{
	{GK, []string{"GK"}},
	{DEF, []string{"CB", "SB", "WB", "DF", "LB", "RB"}},
	{MID, []string{"MF", "DM", "CM", "OM", "LM", "RM"}},
	{FW, []string{"FW", "ST", "WG", "CF", "RW", "LW"}},
}

// Classify maps a raw position code onto a PosType. Codes matching nothing
// fall back to MID.
func Classify(code string) PosType {
	upper := strings.ToUpper(strings.TrimSpace(code))
	for _, rule := range classifyRules {
		for _, tag := range rule.tags {
			if strings.Contains(upper, tag) {
				return rule.pos
			}
		}
	}
	return MID
}
