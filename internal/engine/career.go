// Career ties the player, the roster, and the calendar together and applies
// one user action per call.
package engine

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hayaneofficial/soccer-career-sim/internal/attributes"
	"github.com/hayaneofficial/soccer-career-sim/internal/entropy"
	"github.com/hayaneofficial/soccer-career-sim/internal/form"
	"github.com/hayaneofficial/soccer-career-sim/internal/growth"
	"github.com/hayaneofficial/soccer-career-sim/internal/intake"
	"github.com/hayaneofficial/soccer-career-sim/internal/roster"
	"github.com/hayaneofficial/soccer-career-sim/internal/valuation"
)

// Match rules.
const (
	MatchMinHP     = 60
	MatchFatigueHP = 30
)

// maxEvents bounds the in-memory event log; the store keeps the full history.
const maxEvents = 200

var (
	// ErrMatchUnavailable is returned by PlayMatch when HP is too low.
	ErrMatchUnavailable = errors.New("match unavailable: HP must be above 60")
	// ErrUnknownPosition is returned by SpendPAP for codes outside the catalog.
	ErrUnknownPosition = errors.New("unknown position")
)

// Event is a notable occurrence in a career.
type Event struct {
	Seq         int64  `json:"seq"`
	Day         int    `json:"day"`
	Date        string `json:"date"`
	Description string `json:"description"`
	Category    string `json:"category"` // "career", "activity", "match", "growth", "aptitude", "note"
}

// Options configures a new career.
type Options struct {
	Name       string
	Position   string
	Age        int
	Attributes map[string]float64

	Category  roster.Category
	Formation string
	Seeds     []roster.Seed // real-roster records for Professional/Youth
	Edited    []roster.Seed // a user-edited roster; replaces generation when set

	Seed   int64
	Start  time.Time
	Source entropy.Source    // defaults to a source seeded with Seed
	Model  *attributes.Model // defaults to attributes.Standard
}

// Career is one player's session. It is not safe for concurrent use; the
// caller serializes actions.
type Career struct {
	ID       string
	Seed     int64
	Player   *roster.Player
	Roster   roster.Roster // teammates, in rank order after each recompute
	Calendar *Calendar
	Events   []Event

	nextSeq int64
	model   *attributes.Model
	src     entropy.Source
	form    *form.Curve
	weekly  int // members grown by the most recent weekly pass
}

// Outcome summarizes one action for presentation.
type Outcome struct {
	Day          int           `json:"day"`
	Date         string        `json:"date"`
	Story        string        `json:"story,omitempty"`
	Growth       growth.Result `json:"growth"`
	CA           float64       `json:"ca"`
	PA           float64       `json:"pa"`
	MarketValue  int64         `json:"market_value"`
	HP           int           `json:"hp"`
	MP           int           `json:"mp"`
	Tier         string        `json:"tier"`
	ShirtNumber  int           `json:"shirt_number"`
	WeeklyGrowth int           `json:"weekly_growth,omitempty"`
}

// NewCareer generates a roster and a fresh player and ranks them.
func NewCareer(opts Options) (*Career, error) {
	name := strings.TrimSpace(opts.Name)
	if name == "" {
		return nil, fmt.Errorf("new career: player name is required")
	}
	if _, ok := roster.ParseCategory(string(opts.Category)); !ok {
		return nil, fmt.Errorf("new career: unknown category %q", opts.Category)
	}
	if opts.Age <= 0 {
		opts.Age = defaultAge(opts.Category)
	}
	if strings.TrimSpace(opts.Position) == "" {
		opts.Position = roster.DefaultPos
	}
	if opts.Start.IsZero() {
		opts.Start = time.Now()
	}

	c := newCareer(uuid.NewString(), opts.Seed, opts.Source, opts.Model)
	c.Calendar = NewCalendar(opts.Start)
	c.wire()

	gen := roster.NewGenerator(c.src, c.model)
	if len(opts.Edited) > 0 {
		c.Roster = gen.Finalize(opts.Category, opts.Formation, opts.Edited)
	} else {
		c.Roster = gen.Generate(opts.Category, opts.Formation, opts.Seeds)
	}
	c.Player = roster.NewPlayer(name, opts.Position, opts.Age, opts.Attributes, c.model)
	c.recomputeHierarchy()

	c.record("career", fmt.Sprintf("%s joins a %s squad (%s) as %s, CA %.1f",
		c.Player.Name, c.Roster.Category, c.Roster.Formation.Name, c.Player.Tier, c.Player.CA))
	slog.Info("career created",
		"id", c.ID,
		"player", c.Player.Name,
		"category", c.Roster.Category,
		"formation", c.Roster.Formation.Name,
		"members", len(c.Roster.Members),
	)
	return c, nil
}

func newCareer(id string, seed int64, src entropy.Source, model *attributes.Model) *Career {
	if model == nil {
		model = attributes.Standard
	}
	if src == nil {
		src = entropy.NewSeeded(seed)
	}
	return &Career{
		ID:    id,
		Seed:  seed,
		model: model,
		src:   src,
		form:  form.New(seed),
	}
}

func defaultAge(c roster.Category) int {
	switch c {
	case roster.HighSchool:
		return 16
	case roster.University:
		return 19
	case roster.Youth:
		return 17
	}
	return 22
}

func (c *Career) wire() {
	c.Calendar.OnDay = func(int) { c.recomputeHierarchy() }
	c.Calendar.OnWeek = c.weeklyGrowth
}

// Act applies one day of activity: growth sized by the engine, condition
// costs, relation changes, then the calendar advances.
func (c *Career) Act(a intake.Activity) Outcome {
	return c.apply(a, "activity")
}

// PlayMatch plays a match day. It needs HP above MatchMinHP and costs a
// further MatchFatigueHP on top of the activity's own costs.
func (c *Career) PlayMatch(a intake.Activity) (Outcome, error) {
	if c.Player.HP <= MatchMinHP {
		return Outcome{}, ErrMatchUnavailable
	}
	a.HPCost += MatchFatigueHP
	return c.apply(a, "match"), nil
}

// MatchAvailable reports whether PlayMatch would be accepted.
func (c *Career) MatchAvailable() bool {
	return c.Player.HP > MatchMinHP
}

func (c *Career) apply(a intake.Activity, category string) Outcome {
	a = a.Normalize()
	c.weekly = 0

	res := growth.ApplyProposed(c.Player, a.GrowStats, a.BaseIntensity, a.Performance, c.Roster, c.model)
	slog.Debug("growth applied",
		"career", c.ID,
		"target", res.Target,
		"raw_gain", res.RawGain,
		"scale", res.Scale,
		"skipped", res.Skipped,
	)

	c.Player.Spend(a.HPCost, a.MPCost)
	c.applyRelations(a.RelationChange)

	desc := strings.TrimSpace(a.Story)
	if desc == "" {
		desc = category
	}
	c.record(category, fmt.Sprintf("%s (CA %+.3f, HP %d, MP %d)", truncate(desc, 160), res.Gained, c.Player.HP, c.Player.MP))

	c.Calendar.Advance()

	return Outcome{
		Day:          c.Calendar.Day,
		Date:         c.Calendar.DateString(),
		Story:        a.Story,
		Growth:       res,
		CA:           c.Player.CA,
		PA:           c.Player.PA,
		MarketValue:  c.Player.MarketValue,
		HP:           c.Player.HP,
		MP:           c.Player.MP,
		Tier:         c.Player.Tier,
		ShirtNumber:  c.Player.ShirtNumber,
		WeeklyGrowth: c.weekly,
	}
}

// applyRelations applies named deltas; the team key spreads to everyone.
func (c *Career) applyRelations(changes map[string]float64) {
	for name, d := range changes {
		if name != intake.TeamRelation {
			c.Player.AdjustRelation(name, d)
			continue
		}
		for _, m := range c.Roster.Members {
			c.Player.AdjustRelation(m.Name, d)
		}
	}
}

// SpendPAP converts PAP budget into aptitude for pos and returns the points
// used. The calendar does not advance.
func (c *Career) SpendPAP(pos string, points float64) (float64, error) {
	pos = strings.ToUpper(strings.TrimSpace(pos))
	if _, ok := c.Player.Aptitude.Levels[pos]; !ok {
		return 0, fmt.Errorf("spend PAP on %q: %w", pos, ErrUnknownPosition)
	}
	if math.IsNaN(points) || points <= 0 {
		return 0, nil
	}
	used := c.Player.Aptitude.Spend(pos, points)
	if used > 0 {
		c.record("aptitude", fmt.Sprintf("%.0f PAP spent on %s (aptitude %.1f, %.0f left)",
			used, pos, c.Player.Aptitude.Levels[pos], c.Player.Aptitude.PAPRemaining))
	}
	return used, nil
}

// Note records a free-text event, such as a scouting comment.
func (c *Career) Note(desc string) {
	desc = strings.TrimSpace(desc)
	if desc == "" {
		return
	}
	c.record("note", truncate(desc, 300))
}

// Form returns a member's presentational form level in [0,1] for today.
func (c *Career) Form(name string) float64 {
	return c.form.Level(name, c.Calendar.Day)
}

// TeamRank returns the highest league ladder rung the player's CA reaches.
func (c *Career) TeamRank() (valuation.TeamRank, bool) {
	return valuation.RankFor(c.Player.CA)
}

func (c *Career) recomputeHierarchy() {
	view := c.Roster.WithPlayer(c.Player.Person)
	ranked := roster.RecomputeHierarchy(view, c.Player.Condition(), c.src)
	rest, me, ok := ranked.Split()
	if !ok {
		return
	}
	c.Roster = rest
	c.Player.Tier = me.Tier
	c.Player.Rank = me.Rank
	c.Player.ShirtNumber = me.ShirtNumber
	slog.Debug("hierarchy recomputed", "career", c.ID, "tier", me.Tier, "rank", me.Rank, "number", me.ShirtNumber)
}

func (c *Career) weeklyGrowth(day int) {
	c.weekly = growth.WeeklyPassive(c.Roster.Members, c.model)
	// Squad CA moved; rank again.
	c.recomputeHierarchy()
	c.record("growth", fmt.Sprintf("week %d: %d teammates improved", day/DaysPerWeek, c.weekly))
	slog.Info("weekly growth", "career", c.ID, "day", day, "grown", c.weekly)
}

func (c *Career) record(category, desc string) {
	c.nextSeq++
	c.Events = append(c.Events, Event{
		Seq:         c.nextSeq,
		Day:         c.Calendar.Day,
		Date:        c.Calendar.DateString(),
		Description: desc,
		Category:    category,
	})
	if len(c.Events) > maxEvents {
		c.Events = append([]Event(nil), c.Events[len(c.Events)-maxEvents:]...)
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
