package session

import (
	"maps"
	"sort"

	"github.com/dustin/go-humanize"

	"github.com/hayaneofficial/soccer-career-sim/internal/attributes"
	"github.com/hayaneofficial/soccer-career-sim/internal/engine"
	"github.com/hayaneofficial/soccer-career-sim/internal/form"
	"github.com/hayaneofficial/soccer-career-sim/internal/roster"
)

// Money formats a yen amount with thousands separators.
func Money(v int64) string {
	return "¥" + humanize.Comma(v)
}

// AbilityRow is one line of the per-ability table.
type AbilityRow struct {
	Key   string  `json:"key"`
	Group string  `json:"group"`
	Value float64 `json:"value"`
}

// PlayerView is the read-only presentation of the controlled player.
type PlayerView struct {
	Name            string             `json:"name"`
	Position        string             `json:"position"`
	Age             int                `json:"age"`
	CA              float64            `json:"ca"`
	PA              float64            `json:"pa"`
	MarketValue     int64              `json:"market_value"`
	MarketValueText string             `json:"market_value_text"`
	Tier            string             `json:"tier"`
	Rank            int                `json:"rank"`
	ShirtNumber     int                `json:"shirt_number"`
	HP              int                `json:"hp"`
	MP              int                `json:"mp"`
	PAPRemaining    float64            `json:"pap_remaining"`
	Aptitude        map[string]float64 `json:"aptitude"`
	Abilities       []AbilityRow       `json:"abilities"`
	Relations       map[string]float64 `json:"relations,omitempty"`
}

// RankView is the league rung the player's CA reaches.
type RankView struct {
	Code          string `json:"code"`
	League        string `json:"league"`
	RequireCA     int    `json:"require_ca"`
	AvgSalaryText string `json:"avg_salary_text"`
}

// View is the read-only presentation of a career.
type View struct {
	ID             string     `json:"id"`
	Day            int        `json:"day"`
	Date           string     `json:"date"`
	Week           int        `json:"week"`
	Category       string     `json:"category"`
	Formation      string     `json:"formation"`
	Squad          int        `json:"squad_size"`
	MatchAvailable bool       `json:"match_available"`
	TeamRank       *RankView  `json:"team_rank,omitempty"`
	Player         PlayerView `json:"player"`
}

// NewView builds the presentation of c.
func NewView(c *engine.Career) View {
	p := c.Player
	v := View{
		ID:             c.ID,
		Day:            c.Calendar.Day,
		Date:           c.Calendar.DateString(),
		Week:           c.Calendar.Week(),
		Category:       string(c.Roster.Category),
		Formation:      c.Roster.Formation.Name,
		Squad:          len(c.Roster.Members) + 1,
		MatchAvailable: c.MatchAvailable(),
		Player: PlayerView{
			Name:            p.Name,
			Position:        p.Position,
			Age:             p.Age,
			CA:              p.CA,
			PA:              p.PA,
			MarketValue:     p.MarketValue,
			MarketValueText: Money(p.MarketValue),
			Tier:            p.Tier,
			Rank:            p.Rank,
			ShirtNumber:     p.ShirtNumber,
			HP:              p.HP,
			MP:              p.MP,
			PAPRemaining:    p.Aptitude.PAPRemaining,
			Aptitude:        maps.Clone(p.Aptitude.Levels),
			Abilities:       abilityTable(p.Attributes),
			Relations:       maps.Clone(p.Relations),
		},
	}
	if r, ok := c.TeamRank(); ok {
		v.TeamRank = &RankView{
			Code:          r.Code,
			League:        r.League,
			RequireCA:     r.RequireCA,
			AvgSalaryText: Money(r.AvgSalary),
		}
	}
	return v
}

func abilityTable(s attributes.Set) []AbilityRow {
	keys := attributes.Keys()
	rows := make([]AbilityRow, 0, len(keys))
	for _, k := range keys {
		g, _ := attributes.GroupOf(k)
		rows = append(rows, AbilityRow{Key: k, Group: attributes.GroupName(g), Value: s.Value(k)})
	}
	return rows
}

// MemberView is one squad line.
type MemberView struct {
	Rank       int     `json:"rank"`
	Tier       string  `json:"tier"`
	Number     int     `json:"number"`
	Name       string  `json:"name"`
	Position   string  `json:"position"`
	Age        int     `json:"age"`
	CA         float64 `json:"ca"`
	PA         float64 `json:"pa"`
	ValueText  string  `json:"value_text"`
	Form       string  `json:"form"`
	Height     int     `json:"height"`
	Foot       string  `json:"foot"`
	Controlled bool    `json:"controlled,omitempty"`
}

// RosterView is the ranked squad, player included.
type RosterView struct {
	Category  string       `json:"category"`
	Formation string       `json:"formation"`
	Slots     []string     `json:"slots"`
	Tiers     []string     `json:"tiers"`
	Members   []MemberView `json:"members"`
}

// NewRosterView lists the squad in rank order with the player in place.
func NewRosterView(c *engine.Career) RosterView {
	view := c.Roster.WithPlayer(c.Player.Person)
	members := make([]MemberView, 0, len(view.Members))
	for _, m := range view.Members {
		members = append(members, MemberView{
			Rank:       m.Rank,
			Tier:       m.Tier,
			Number:     m.ShirtNumber,
			Name:       m.Name,
			Position:   m.Position,
			Age:        m.Age,
			CA:         m.CA,
			PA:         m.PA,
			ValueText:  Money(m.MarketValue),
			Form:       form.Label(c.Form(m.Name)),
			Height:     m.Height,
			Foot:       m.Foot,
			Controlled: m.Controlled,
		})
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].Rank < members[j].Rank })
	return RosterView{
		Category:  string(c.Roster.Category),
		Formation: c.Roster.Formation.Name,
		Slots:     c.Roster.Formation.Slots,
		Tiers:     roster.TierLabels(c.Roster.Category),
		Members:   members,
	}
}
