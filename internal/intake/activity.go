package intake

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// Activity bounds and defaults.
const (
	MinBaseIntensity     = 0.01
	MaxBaseIntensity     = 0.5
	DefaultBaseIntensity = 0.1
	MinPerformance       = 0.6
	MaxPerformance       = 1.5
	DefaultPerformance   = 1.0
)

// Activity is one day's proposal from a content generator. The story is
// carried for display only.
type Activity struct {
	Story          string             `json:"story"`
	GrowStats      map[string]float64 `json:"grow_stats"`
	HPCost         int                `json:"hp_cost"`
	MPCost         int                `json:"mp_cost"`
	RelationChange map[string]float64 `json:"relation_change,omitempty"`
	BaseIntensity  float64            `json:"base_intensity"`
	Performance    float64            `json:"performance"`
}

// Normalize clamps every numeric field. A zero intensity or performance is
// taken at face value and clamped to the minimum; decoders fill in the
// defaults for fields that are absent.
func (a Activity) Normalize() Activity {
	if math.IsNaN(a.BaseIntensity) {
		a.BaseIntensity = DefaultBaseIntensity
	}
	a.BaseIntensity = math.Max(MinBaseIntensity, math.Min(MaxBaseIntensity, a.BaseIntensity))

	if math.IsNaN(a.Performance) {
		a.Performance = DefaultPerformance
	}
	a.Performance = math.Max(MinPerformance, math.Min(MaxPerformance, a.Performance))

	if a.GrowStats == nil {
		a.GrowStats = map[string]float64{}
	}
	for k, v := range a.GrowStats {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			delete(a.GrowStats, k)
		}
	}
	return a
}

// DecodeActivity extracts the first JSON object in data (generators often
// wrap it in prose or code fences) and reads it field by field.
func DecodeActivity(data []byte) (Activity, error) {
	obj, err := extractObject(data)
	if err != nil {
		return Activity{}, fmt.Errorf("decode activity: %w", err)
	}

	a := Activity{
		Story:          stringField(obj, "", "story", "narrative"),
		GrowStats:      numberMap(field(obj, "grow_stats", "growStats")),
		HPCost:         ParseInt(field(obj, "hp_cost", "hpCost"), 0),
		MPCost:         ParseInt(field(obj, "mp_cost", "mpCost"), 0),
		RelationChange: relationMap(field(obj, "relation_change", "relationChange")),
		BaseIntensity:  ParseNumber(field(obj, "base_intensity", "baseIntensity"), DefaultBaseIntensity),
		Performance:    ParseNumber(field(obj, "performance"), DefaultPerformance),
	}
	return a.Normalize(), nil
}

// DecodeAttributes reads an ability proposal, either wrapped in an
// "attributes" object or flat. Values go through ParseNumber; the comment,
// when present, is returned alongside.
func DecodeAttributes(data []byte) (map[string]float64, string, error) {
	obj, err := extractObject(data)
	if err != nil {
		return nil, "", fmt.Errorf("decode attributes: %w", err)
	}
	comment := stringField(obj, "", "comment")
	if inner, ok := field(obj, "attributes").(map[string]any); ok {
		return numberMap(inner), comment, nil
	}
	delete(obj, "comment")
	return numberMap(obj), comment, nil
}

func extractObject(data []byte) (map[string]any, error) {
	s := string(data)
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object found")
	}
	dec := json.NewDecoder(strings.NewReader(s[start : end+1]))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("parse object: %w", err)
	}
	return obj, nil
}

func field(obj map[string]any, names ...string) any {
	for _, n := range names {
		if v, ok := obj[n]; ok {
			return v
		}
	}
	return nil
}

func stringField(obj map[string]any, def string, names ...string) string {
	switch v := field(obj, names...).(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	default:
		return def
	}
}

func numberMap(raw any) map[string]float64 {
	out := map[string]float64{}
	m, ok := raw.(map[string]any)
	if !ok {
		return out
	}
	for k, v := range m {
		f := ParseNumber(v, math.NaN())
		if !math.IsNaN(f) {
			out[k] = f
		}
	}
	return out
}

// relationMap accepts {"name": delta}, a bare number (applied to the whole
// team), or nothing.
func relationMap(raw any) map[string]float64 {
	switch v := raw.(type) {
	case nil:
		return nil
	case map[string]any:
		m := numberMap(v)
		if len(m) == 0 {
			return nil
		}
		return m
	default:
		f := ParseNumber(v, math.NaN())
		if math.IsNaN(f) {
			return nil
		}
		return map[string]float64{TeamRelation: f}
	}
}

// TeamRelation keys a relation change aimed at the whole squad.
const TeamRelation = "*team"
