package engine

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayaneofficial/soccer-career-sim/internal/attributes"
	"github.com/hayaneofficial/soccer-career-sim/internal/intake"
	"github.com/hayaneofficial/soccer-career-sim/internal/roster"
)

var start = time.Date(2026, 4, 1, 9, 30, 0, 0, time.UTC)

func newTestCareer(t *testing.T, cat roster.Category) *Career {
	t.Helper()
	c, err := NewCareer(Options{
		Name:      "Kaito Manabe",
		Position:  "OMF",
		Age:       19,
		Category:  cat,
		Formation: "4-2-3-1",
		Seed:      42,
		Start:     start,
	})
	require.NoError(t, err)
	return c
}

func training(hp int) intake.Activity {
	return intake.Activity{
		Story:         "Passing drills after class.",
		GrowStats:     map[string]float64{"Passing": 0.5, "Vision": 0.3},
		HPCost:        hp,
		BaseIntensity: 0.12,
		Performance:   1.0,
	}
}

func TestCalendarCallbacks(t *testing.T) {
	cal := NewCalendar(start)
	var days, weeks []int
	cal.OnDay = func(d int) { days = append(days, d) }
	cal.OnWeek = func(d int) { weeks = append(weeks, d) }

	for i := 0; i < 15; i++ {
		cal.Advance()
	}
	assert.Len(t, days, 15)
	assert.Equal(t, []int{7, 14}, weeks)
	assert.Equal(t, "2026-04-16 (Thu)", cal.DateString())
	assert.Equal(t, 3, cal.Week())
}

func TestNewCareerUniversity(t *testing.T) {
	c := newTestCareer(t, roster.University)

	assert.NotEmpty(t, c.ID)
	assert.Len(t, c.Roster.Members, 4*11*2+10)
	assert.Contains(t, roster.UniversityTiers, c.Player.Tier)
	assert.NotZero(t, c.Player.ShirtNumber)
	assert.InDelta(t, 100, c.Player.CA, 1e-9)
	assert.Equal(t, roster.MaxHP, c.Player.HP)
	require.Len(t, c.Events, 1)
	assert.Equal(t, "career", c.Events[0].Category)
	assert.Equal(t, "2026-04-01 (Wed)", c.Events[0].Date)

	for _, m := range c.Roster.Members {
		assert.False(t, m.Controlled)
		assert.NotEmpty(t, m.Tier)
	}
}

func TestNewCareerValidation(t *testing.T) {
	_, err := NewCareer(Options{Category: roster.Professional})
	assert.Error(t, err)
	_, err = NewCareer(Options{Name: "X", Category: "Amateur"})
	assert.Error(t, err)
}

func TestNewCareerFromEditedRoster(t *testing.T) {
	c, err := NewCareer(Options{
		Name:     "Me",
		Category: roster.Professional,
		Edited: []roster.Seed{
			{Name: "Captain", Position: "CB", CA: 140, PA: 150, Number: 4},
			{Name: "Keeper", Position: "GK", CA: 120, Number: 1},
		},
		Seed:  3,
		Start: start,
	})
	require.NoError(t, err)
	require.Len(t, c.Roster.Members, 2)
	assert.Equal(t, "Captain", c.Roster.Members[0].Name)
	assert.Equal(t, 4, c.Roster.Members[0].ShirtNumber)
	assert.Equal(t, 22, c.Player.Age)
	assert.Equal(t, 2, c.Player.ShirtNumber)
}

func TestSameSeedSameRoster(t *testing.T) {
	a := newTestCareer(t, roster.HighSchool)
	b := newTestCareer(t, roster.HighSchool)
	assert.NotEqual(t, a.ID, b.ID)
	require.Equal(t, len(a.Roster.Members), len(b.Roster.Members))
	for i := range a.Roster.Members {
		assert.Equal(t, a.Roster.Members[i].Name, b.Roster.Members[i].Name)
		assert.Equal(t, a.Roster.Members[i].CA, b.Roster.Members[i].CA)
	}
}

func TestActAdvancesAndGrows(t *testing.T) {
	c := newTestCareer(t, roster.Professional)
	before := c.Player.CA
	passing := c.Player.Attributes["Passing"]

	out := c.Act(training(10))
	assert.Equal(t, 1, out.Day)
	assert.Equal(t, "2026-04-02 (Thu)", out.Date)
	assert.Equal(t, 90, out.HP)
	assert.Greater(t, out.CA, before)
	assert.Greater(t, c.Player.Attributes["Passing"], passing)
	assert.InDelta(t, out.Growth.Target, out.CA-before, 1e-9)
	assert.InDelta(t, attributes.Standard.CA(c.Player.Attributes), c.Player.CA, 1e-12)
	assert.Equal(t, "activity", c.Events[len(c.Events)-1].Category)
}

func TestWeeklyGrowthOnSeventhDay(t *testing.T) {
	c := newTestCareer(t, roster.University)
	before := c.Roster.Clone()
	var last Outcome
	for i := 0; i < DaysPerWeek; i++ {
		last = c.Act(intake.Activity{HPCost: -10})
		if i < DaysPerWeek-1 {
			assert.Zero(t, last.WeeklyGrowth)
		}
	}
	assert.Equal(t, 7, last.Day)
	assert.Greater(t, last.WeeklyGrowth, 0)

	sum := func(r roster.Roster) float64 {
		total := 0.0
		for _, m := range r.Members {
			total += m.CA
		}
		return total
	}
	assert.Greater(t, sum(c.Roster), sum(before))
	for _, m := range c.Roster.Members {
		assert.LessOrEqual(t, m.CA, m.PA+1e-9)
	}
	assert.Equal(t, "growth", c.Events[len(c.Events)-1].Category)
}

func TestMatchNeedsHP(t *testing.T) {
	c := newTestCareer(t, roster.Professional)
	require.True(t, c.MatchAvailable())

	out, err := c.PlayMatch(training(10))
	require.NoError(t, err)
	assert.Equal(t, 60, out.HP)
	assert.Equal(t, "match", c.Events[len(c.Events)-1].Category)

	_, err = c.PlayMatch(training(0))
	assert.True(t, errors.Is(err, ErrMatchUnavailable))
	assert.False(t, c.MatchAvailable())
	assert.Equal(t, 1, c.Calendar.Day)

	rest := intake.Activity{Story: "Rest day.", HPCost: -25, MPCost: -10}
	c.Act(rest)
	assert.Equal(t, 85, c.Player.HP)
	assert.Equal(t, roster.MaxMP, c.Player.MP)
	assert.True(t, c.MatchAvailable())
}

func TestRelations(t *testing.T) {
	c := newTestCareer(t, roster.Youth)
	teammate := c.Roster.Members[0].Name
	c.Act(intake.Activity{RelationChange: map[string]float64{intake.TeamRelation: 5, teammate: 200}})

	assert.Equal(t, roster.MaxRelation, c.Player.Relations[teammate])
	assert.Equal(t, 5.0, c.Player.Relations[c.Roster.Members[len(c.Roster.Members)-1].Name])
}

func TestSpendPAP(t *testing.T) {
	c := newTestCareer(t, roster.University)
	budget := c.Player.Aptitude.PAPRemaining

	_, err := c.SpendPAP("SW", 10)
	assert.ErrorIs(t, err, ErrUnknownPosition)

	used, err := c.SpendPAP("cb", 30)
	require.NoError(t, err)
	assert.Equal(t, 30.0, used)
	assert.InDelta(t, 3.0, c.Player.Aptitude.Levels["CB"], 1e-9)
	assert.InDelta(t, budget-30, c.Player.Aptitude.PAPRemaining, 1e-9)
	assert.Equal(t, 0, c.Calendar.Day)

	used, err = c.SpendPAP("OMF", 30)
	require.NoError(t, err)
	assert.Zero(t, used)
}

func TestSnapshotRoundTrip(t *testing.T) {
	c := newTestCareer(t, roster.HighSchool)
	for i := 0; i < 3; i++ {
		c.Act(training(5))
	}
	_, err := c.SpendPAP("CF", 12)
	require.NoError(t, err)

	data, err := json.Marshal(c.Snapshot())
	require.NoError(t, err)
	var snap Snapshot
	require.NoError(t, json.Unmarshal(data, &snap))

	r, err := Restore(snap, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, c.ID, r.ID)
	assert.Equal(t, 3, r.Calendar.Day)
	assert.Equal(t, c.Calendar.DateString(), r.Calendar.DateString())
	assert.InDelta(t, c.Player.CA, r.Player.CA, 1e-9)
	assert.Equal(t, c.Player.HP, r.Player.HP)
	assert.Equal(t, c.Player.Aptitude.PAPRemaining, r.Player.Aptitude.PAPRemaining)
	assert.True(t, r.Player.Aptitude.Allocated)
	assert.Len(t, r.Roster.Members, len(c.Roster.Members))
	assert.Equal(t, c.Events, r.Events)

	out := r.Act(training(5))
	assert.Equal(t, 4, out.Day)
	assert.Equal(t, c.nextSeq+1, r.Events[len(r.Events)-1].Seq)
}

func TestSnapshotIsolated(t *testing.T) {
	c := newTestCareer(t, roster.Professional)
	snap := c.Snapshot()
	snap.Player.Attributes["Pace"] = 1
	snap.Roster.Members[0].Attributes["Pace"] = 1
	assert.NotEqual(t, 1.0, c.Player.Attributes["Pace"])
	assert.NotEqual(t, 1.0, c.Roster.Members[0].Attributes["Pace"])
}

func TestRestoreRejectsBadSnapshots(t *testing.T) {
	c := newTestCareer(t, roster.Professional)
	snap := c.Snapshot()

	bad := snap
	bad.Version = 99
	_, err := Restore(bad, nil, nil)
	assert.Error(t, err)

	bad = snap
	bad.Roster.Category = "Sunday League"
	_, err = Restore(bad, nil, nil)
	assert.Error(t, err)
}

func TestRestoreRanksAgain(t *testing.T) {
	c := newTestCareer(t, roster.University)
	snap := c.Snapshot()
	snap.Player.Tier = "Captain"
	snap.Player.Rank = 999
	snap.Player.ShirtNumber = 0
	for i := range snap.Roster.Members {
		snap.Roster.Members[i].Tier = "Captain"
	}

	r, err := Restore(snap, nil, nil)
	require.NoError(t, err)
	assert.Contains(t, roster.UniversityTiers, r.Player.Tier)
	assert.GreaterOrEqual(t, r.Player.Rank, 1)
	assert.LessOrEqual(t, r.Player.Rank, len(r.Roster.Members)+1)
	assert.NotZero(t, r.Player.ShirtNumber)
	for _, m := range r.Roster.Members {
		assert.Contains(t, roster.UniversityTiers, m.Tier, m.Name)
	}
}

func TestSchoolPlayerLinesUpInFormation(t *testing.T) {
	for _, pos := range []string{"CMF", "DMF", "OMF", "RWB", "LWG"} {
		c, err := NewCareer(Options{
			Name:       "Kaito Manabe",
			Position:   pos,
			Age:        20,
			Attributes: attributes.Uniform(19),
			Category:   roster.University,
			Formation:  "4-4-2",
			Seed:       42,
			Start:      start,
		})
		require.NoError(t, err)
		assert.InDelta(t, 190, c.Player.CA, 1e-9)
		assert.Equal(t, "ASta", c.Player.Tier, pos)
		assert.LessOrEqual(t, c.Player.ShirtNumber, roster.SlotCount, pos)
		assert.LessOrEqual(t, c.Player.Rank, roster.SlotCount, pos)
	}
}

func TestTeamRank(t *testing.T) {
	c := newTestCareer(t, roster.Professional)
	c.Player.Attributes = attributes.Uniform(9.5)
	c.Player.Refresh(attributes.Standard)
	rank, ok := c.TeamRank()
	require.True(t, ok)
	assert.Equal(t, "C", rank.Code)
}
