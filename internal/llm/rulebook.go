package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/hayaneofficial/soccer-career-sim/internal/attributes"
	"github.com/hayaneofficial/soccer-career-sim/internal/intake"
	"github.com/hayaneofficial/soccer-career-sim/internal/valuation"
)

// RuleBook is an offline Author driven by keyword tables. It never fails.
type RuleBook struct{}

type activityRule struct {
	keywords  []string
	label     string
	grow      map[string]float64
	hp, mp    int
	intensity float64
	team      float64 // relation change with the whole squad
}

// First matching rule wins; order from specific to general.
var activityRules = []activityRule{
	{
		keywords:  []string{"rest", "sleep", "off day", "休養", "休み", "睡眠"},
		label:     "Rest day",
		grow:      map[string]float64{"NaturalFitness": 0.05},
		hp:        -25,
		mp:        -15,
		intensity: 0.02,
	},
	{
		keywords:  []string{"run", "sprint", "interval", "走り込み", "ダッシュ", "ラン"},
		label:     "Running session",
		grow:      map[string]float64{"Stamina": 0.4, "Pace": 0.2, "Acceleration": 0.2},
		hp:        20,
		mp:        5,
		intensity: 0.15,
	},
	{
		keywords:  []string{"gym", "weights", "strength", "筋トレ", "ウエイト"},
		label:     "Gym work",
		grow:      map[string]float64{"Strength": 0.4, "Balance": 0.2, "JumpingReach": 0.1},
		hp:        15,
		mp:        5,
		intensity: 0.12,
	},
	{
		keywords:  []string{"shoot", "finishing", "シュート", "決定力"},
		label:     "Finishing drills",
		grow:      map[string]float64{"Finishing": 0.4, "Composure": 0.2, "LongShots": 0.1},
		hp:        10,
		mp:        5,
		intensity: 0.12,
	},
	{
		keywords:  []string{"pass", "rondo", "パス", "ロンド"},
		label:     "Passing drills",
		grow:      map[string]float64{"Passing": 0.4, "Vision": 0.2, "FirstTouch": 0.2},
		hp:        10,
		mp:        5,
		intensity: 0.12,
	},
	{
		keywords:  []string{"dribble", "ドリブル", "テクニック"},
		label:     "Ball work",
		grow:      map[string]float64{"Dribbling": 0.4, "Technique": 0.2, "Agility": 0.1},
		hp:        10,
		mp:        5,
		intensity: 0.12,
	},
	{
		keywords:  []string{"defend", "tackle", "守備", "タックル"},
		label:     "Defensive shape",
		grow:      map[string]float64{"Tackling": 0.3, "Marking": 0.3, "Positioning": 0.2},
		hp:        12,
		mp:        5,
		intensity: 0.12,
	},
	{
		keywords:  []string{"video", "study", "analysis", "分析", "勉強", "ビデオ"},
		label:     "Video analysis",
		grow:      map[string]float64{"Decisions": 0.3, "Anticipation": 0.3, "Positioning": 0.1},
		hp:        0,
		mp:        15,
		intensity: 0.08,
	},
	{
		keywords:  []string{"team", "dinner", "talk", "チーム", "食事", "話"},
		label:     "Time with the squad",
		grow:      map[string]float64{"Teamwork": 0.2, "Leadership": 0.1},
		hp:        0,
		mp:        -5,
		intensity: 0.05,
		team:      3,
	},
}

var defaultActivity = activityRule{
	label:     "General training",
	grow:      map[string]float64{"Technique": 0.15, "Stamina": 0.15, "Decisions": 0.1},
	hp:        10,
	mp:        5,
	intensity: 0.1,
}

var matchActivity = activityRule{
	label:     "Match day",
	grow:      map[string]float64{"Composure": 0.3, "Decisions": 0.3, "ImportantMatches": 0.1},
	hp:        10,
	mp:        10,
	intensity: 0.2,
}

// ProposeActivity implements Author.
func (RuleBook) ProposeActivity(_ context.Context, req ActivityRequest) (intake.Activity, error) {
	rule := matchRule(req)
	grow := make(map[string]float64, len(rule.grow))
	for k, v := range rule.grow {
		grow[k] = v
	}

	var relations map[string]float64
	if rule.team != 0 {
		relations = map[string]float64{intake.TeamRelation: rule.team}
	}

	a := intake.Activity{
		Story:          storyFor(rule, req),
		GrowStats:      grow,
		HPCost:         rule.hp,
		MPCost:         rule.mp,
		RelationChange: relations,
		BaseIntensity:  rule.intensity,
		Performance:    performanceFor(req),
	}
	return a.Normalize(), nil
}

func matchRule(req ActivityRequest) activityRule {
	if req.Match {
		return matchActivity
	}
	action := strings.ToLower(req.Action)
	for _, r := range activityRules {
		for _, k := range r.keywords {
			if strings.Contains(action, k) {
				return r
			}
		}
	}
	return defaultActivity
}

// performanceFor slumps a tired player.
func performanceFor(req ActivityRequest) float64 {
	switch {
	case req.HP < 30 || req.MP < 30:
		return 0.7
	case req.HP < 60:
		return 0.9
	}
	return 1.0
}

func storyFor(rule activityRule, req ActivityRequest) string {
	plan := strings.TrimSpace(req.Action)
	if plan == "" || req.Match {
		return fmt.Sprintf("%s for %s.", rule.label, req.Name)
	}
	return fmt.Sprintf("%s for %s: %s.", rule.label, req.Name, strings.TrimRight(plan, ".。"))
}

// Per position type, the abilities a new player starts above average in.
var positionStrengths = map[valuation.PosType][]string{
	valuation.GK:  {"Positioning", "Concentration", "Agility", "JumpingReach"},
	valuation.DEF: {"Tackling", "Marking", "Heading", "Strength"},
	valuation.MID: {"Passing", "Vision", "FirstTouch", "Stamina"},
	valuation.FW:  {"Finishing", "OffTheBall", "Pace", "Dribbling"},
}

var backgroundTraits = []struct {
	keywords []string
	keys     []string
}{
	{[]string{"fast", "speed", "pace", "快足", "スピード"}, []string{"Pace", "Acceleration"}},
	{[]string{"tall", "aerial", "長身", "空中戦"}, []string{"Heading", "JumpingReach"}},
	{[]string{"technical", "skill", "テクニック", "技巧"}, []string{"Technique", "Dribbling", "FirstTouch"}},
	{[]string{"captain", "leader", "キャプテン", "主将"}, []string{"Leadership", "Teamwork"}},
	{[]string{"hard work", "tireless", "努力", "ハードワーク"}, []string{"WorkRate", "Determination", "Stamina"}},
	{[]string{"strong", "physical", "フィジカル"}, []string{"Strength", "Balance"}},
}

// ProposeAttributes implements Author. Every ability starts at the default;
// the position type and background keywords raise a few.
func (RuleBook) ProposeAttributes(_ context.Context, p Profile) (map[string]float64, string, error) {
	set := attributes.Uniform(attributes.DefaultValue)
	for _, k := range positionStrengths[valuation.Classify(p.Position)] {
		set.Grow(k, 2)
	}

	bg := strings.ToLower(p.Background)
	var matched []string
	for _, t := range backgroundTraits {
		for _, kw := range t.keywords {
			if strings.Contains(bg, kw) {
				for _, k := range t.keys {
					set.Grow(k, 3)
				}
				matched = append(matched, t.keys[0])
				break
			}
		}
	}

	comment := fmt.Sprintf("A %s profile built from the position alone.", valuation.Classify(p.Position))
	if len(matched) > 0 {
		comment = fmt.Sprintf("A %s profile with standout %s.", valuation.Classify(p.Position), strings.Join(matched, ", "))
	}
	return map[string]float64(set), comment, nil
}
