package intake

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hayaneofficial/soccer-career-sim/internal/roster"
)

// DecodeSeeds reads player records: either a bare JSON array or an object
// holding one under "players", "members" or "roster". Prose around the JSON
// is ignored. Fields are parsed tolerantly; defaults are applied later by
// the roster generator.
func DecodeSeeds(data []byte) ([]roster.Seed, error) {
	items, err := extractList(data)
	if err != nil {
		return nil, fmt.Errorf("decode seeds: %w", err)
	}

	seeds := make([]roster.Seed, 0, len(items))
	for _, it := range items {
		obj, ok := it.(map[string]any)
		if !ok {
			continue
		}
		seeds = append(seeds, roster.Seed{
			Name:     stringField(obj, "", "name"),
			Position: stringField(obj, "", "position", "pos"),
			Value:    ParseInt64(field(obj, "value", "market_value", "marketValue"), 0),
			Age:      ParseInt(field(obj, "age"), 0),
			Foot:     normalizeFoot(stringField(obj, "", "foot")),
			Height:   ParseInt(field(obj, "height"), 0),
			Number:   ParseInt(field(obj, "number", "shirt_number", "shirtNumber"), 0),
			CA:       ParseNumber(field(obj, "ca"), 0),
			PA:       ParseNumber(field(obj, "pa"), 0),
		})
	}
	return seeds, nil
}

func extractList(data []byte) ([]any, error) {
	s := string(data)
	arr := strings.Index(s, "[")
	obj := strings.Index(s, "{")

	if arr != -1 && (obj == -1 || arr < obj) {
		end := strings.LastIndex(s, "]")
		if end <= arr {
			return nil, fmt.Errorf("unterminated array")
		}
		dec := json.NewDecoder(strings.NewReader(s[arr : end+1]))
		dec.UseNumber()
		var items []any
		if err := dec.Decode(&items); err != nil {
			return nil, fmt.Errorf("parse array: %w", err)
		}
		return items, nil
	}

	o, err := extractObject(data)
	if err != nil {
		return nil, err
	}
	if items, ok := field(o, "players", "members", "roster").([]any); ok {
		return items, nil
	}
	// A single record.
	return []any{o}, nil
}

// normalizeFoot maps common spellings onto Right, Left and Both.
func normalizeFoot(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return ""
	case "r", "right", "右":
		return "Right"
	case "l", "left", "左":
		return "Left"
	case "both", "either", "両", "両足":
		return "Both"
	}
	return strings.TrimSpace(s)
}
