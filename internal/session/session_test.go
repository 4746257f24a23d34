package session

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hayaneofficial/soccer-career-sim/internal/engine"
	"github.com/hayaneofficial/soccer-career-sim/internal/persistence"
)

var ctx = context.Background()

func newManager(t *testing.T) *Manager {
	t.Helper()
	db, err := persistence.Open(filepath.Join(t.TempDir(), "careers.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return &Manager{DB: db, Seed: 11}
}

func create(t *testing.T, m *Manager) View {
	t.Helper()
	v, err := m.Create(ctx, CreateRequest{
		Name:       "Haruto Kiyota",
		Position:   "CF",
		Age:        17,
		Category:   "HighSchool",
		Formation:  "4-3-3",
		Background: "A fast striker from Chiba",
		Start:      time.Date(2026, 4, 6, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return v
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "¥12,345,678", Money(12_345_678))
	assert.Equal(t, "¥10,000", Money(10_000))
}

func TestCreateUsesAuthorAttributes(t *testing.T) {
	m := newManager(t)
	v := create(t, m)

	assert.NotEmpty(t, v.ID)
	assert.Equal(t, "2026-04-06 (Mon)", v.Date)
	assert.Equal(t, "HighSchool", v.Category)
	assert.Equal(t, "4-3-3", v.Formation)
	assert.Equal(t, 17, v.Player.Age)
	assert.Greater(t, v.Player.CA, 100.0)
	assert.NotEmpty(t, v.Player.MarketValueText)

	var pace float64
	for _, row := range v.Player.Abilities {
		if row.Key == "Pace" {
			pace = row.Value
		}
	}
	assert.Equal(t, 15.0, pace)

	events, err := m.Events(v.ID, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "note", events[0].Category)
	assert.Equal(t, "career", events[1].Category)
}

func TestCreateRejectsUnknownCategory(t *testing.T) {
	m := newManager(t)
	_, err := m.Create(ctx, CreateRequest{Name: "X", Category: "Sunday"})
	assert.Error(t, err)
}

func TestActWithRawAndProposedActivity(t *testing.T) {
	m := newManager(t)
	v := create(t, m)

	out, err := m.Act(ctx, v.ID, "", []byte(`{"story":"Extra finishing.","grow_stats":{"Finishing":0.4},"hp_cost":15}`), false)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Day)
	assert.Equal(t, 85, out.HP)
	assert.Greater(t, out.Growth.Gained, 0.0)

	out, err = m.Act(ctx, v.ID, "rest day at home", nil, false)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Day)
	assert.Equal(t, 100, out.HP)

	_, err = m.Act(ctx, v.ID, "", []byte("not json"), false)
	assert.True(t, errors.Is(err, ErrBadActivity))
}

func TestMatchGate(t *testing.T) {
	m := newManager(t)
	v := create(t, m)

	out, err := m.Act(ctx, v.ID, "", nil, true)
	require.NoError(t, err)
	assert.Equal(t, 60, out.HP)

	_, err = m.Act(ctx, v.ID, "", nil, true)
	assert.ErrorIs(t, err, engine.ErrMatchUnavailable)

	view, err := m.View(v.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Day)
	assert.False(t, view.MatchAvailable)
}

func TestRestoreFromStore(t *testing.T) {
	m := newManager(t)
	v := create(t, m)
	_, err := m.Act(ctx, v.ID, "passing drills", nil, false)
	require.NoError(t, err)
	used, err := m.SpendPAP(v.ID, "LWG", 10)
	require.NoError(t, err)
	assert.Equal(t, 10.0, used)

	fresh := &Manager{DB: m.DB}
	assert.Zero(t, fresh.Active())
	view, err := fresh.View(v.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, fresh.Active())
	assert.Equal(t, 1, view.Day)
	assert.InDelta(t, 1.0, view.Player.Aptitude["LWG"], 1e-9)

	before, err := m.View(v.ID)
	require.NoError(t, err)
	assert.InDelta(t, before.Player.CA, view.Player.CA, 1e-9)
}

func TestRosterView(t *testing.T) {
	m := newManager(t)
	v := create(t, m)

	r, err := m.Roster(v.ID)
	require.NoError(t, err)
	assert.Equal(t, v.Squad, len(r.Members))
	assert.Len(t, r.Slots, 11)

	controlled := 0
	for i, mv := range r.Members {
		if i > 0 {
			assert.LessOrEqual(t, r.Members[i-1].Rank, mv.Rank)
		}
		assert.Contains(t, r.Tiers, mv.Tier)
		assert.Contains(t, []string{"Excellent", "Good", "Average", "Poor", "Terrible"}, mv.Form)
		if mv.Controlled {
			controlled++
			assert.Equal(t, "Haruto Kiyota", mv.Name)
		}
	}
	assert.Equal(t, 1, controlled)
}

func TestListAndDelete(t *testing.T) {
	m := newManager(t)
	v := create(t, m)

	list, err := m.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, v.ID, list[0].ID)

	require.NoError(t, m.Delete(v.ID))
	_, err = m.View(v.ID)
	assert.ErrorIs(t, err, persistence.ErrNotFound)
}

func TestInMemoryManager(t *testing.T) {
	m := &Manager{Seed: 5}
	v := create(t, m)

	list, err := m.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Haruto Kiyota", list[0].Player)

	_, err = m.Act(ctx, v.ID, "gym", nil, false)
	require.NoError(t, err)
	events, err := m.Events(v.ID, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "activity", events[0].Category)

	_, err = m.View("missing")
	assert.ErrorIs(t, err, persistence.ErrNotFound)
	require.NoError(t, m.Delete(v.ID))
	assert.ErrorIs(t, m.Delete(v.ID), persistence.ErrNotFound)
}
