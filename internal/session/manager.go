// Package session owns live careers for the CLI and the HTTP API: it loads
// them from the store on demand, serializes actions per career, asks the
// author for content, and saves after every state transition.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/hayaneofficial/soccer-career-sim/internal/attributes"
	"github.com/hayaneofficial/soccer-career-sim/internal/engine"
	"github.com/hayaneofficial/soccer-career-sim/internal/entropy"
	"github.com/hayaneofficial/soccer-career-sim/internal/intake"
	"github.com/hayaneofficial/soccer-career-sim/internal/llm"
	"github.com/hayaneofficial/soccer-career-sim/internal/persistence"
	"github.com/hayaneofficial/soccer-career-sim/internal/roster"
)

// ErrBadActivity wraps an activity record that could not be decoded.
var ErrBadActivity = errors.New("bad activity")

// Manager holds live careers. A nil DB keeps careers in memory only.
type Manager struct {
	DB      *persistence.DB
	Author  llm.Author
	Entropy *entropy.Client // true randomness for unseeded careers
	Seed    int64           // default seed for new careers; 0 means fresh
	Model   *attributes.Model

	mu   sync.Mutex
	live map[string]*entry
}

type entry struct {
	mu     sync.Mutex
	career *engine.Career
}

// CreateRequest describes a new career.
type CreateRequest struct {
	Name       string             `json:"name"`
	Position   string             `json:"position"`
	Age        int                `json:"age"`
	Category   string             `json:"category"`
	Formation  string             `json:"formation"`
	Background string             `json:"background,omitempty"`
	Attributes map[string]float64 `json:"attributes,omitempty"`
	Seeds      []roster.Seed      `json:"seeds,omitempty"`
	Edited     []roster.Seed      `json:"edited,omitempty"`
	Seed       int64              `json:"seed,omitempty"`
	Start      time.Time          `json:"start,omitempty"`
}

func (m *Manager) author() llm.Author {
	if m.Author == nil {
		return llm.RuleBook{}
	}
	return m.Author
}

// Create starts a career. Without explicit attributes the author proposes
// them from the background.
func (m *Manager) Create(ctx context.Context, req CreateRequest) (View, error) {
	category, ok := roster.ParseCategory(req.Category)
	if !ok {
		return View{}, fmt.Errorf("create career: unknown category %q", req.Category)
	}

	attrs := req.Attributes
	var comment string
	if len(attrs) == 0 {
		var err error
		attrs, comment, err = m.author().ProposeAttributes(ctx, llm.Profile{
			Name:       req.Name,
			Age:        req.Age,
			Position:   req.Position,
			Background: req.Background,
		})
		if err != nil {
			slog.Warn("attribute proposal failed, using defaults", "error", err)
			attrs = nil
		}
	}

	seed := req.Seed
	if seed == 0 {
		seed = m.Seed
	}
	var src entropy.Source
	if seed == 0 {
		seed = time.Now().UnixNano()
		src = entropy.FromClient(m.Entropy)
	}

	c, err := engine.NewCareer(engine.Options{
		Name:       req.Name,
		Position:   req.Position,
		Age:        req.Age,
		Attributes: attrs,
		Category:   category,
		Formation:  req.Formation,
		Seeds:      req.Seeds,
		Edited:     req.Edited,
		Seed:       seed,
		Start:      req.Start,
		Source:     src,
		Model:      m.Model,
	})
	if err != nil {
		return View{}, err
	}
	c.Note(comment)

	m.save(c)
	m.mu.Lock()
	if m.live == nil {
		m.live = make(map[string]*entry)
	}
	m.live[c.ID] = &entry{career: c}
	m.mu.Unlock()
	return NewView(c), nil
}

// lookup returns the live entry for id, restoring it from the store on a miss.
func (m *Manager) lookup(id string) (*entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.live[id]; ok {
		return e, nil
	}
	if m.DB == nil {
		return nil, fmt.Errorf("career %s: %w", id, persistence.ErrNotFound)
	}
	snap, err := m.DB.LoadCareer(id)
	if err != nil {
		return nil, err
	}
	c, err := engine.Restore(snap, nil, m.Model)
	if err != nil {
		return nil, err
	}
	if m.live == nil {
		m.live = make(map[string]*entry)
	}
	e := &entry{career: c}
	m.live[id] = e
	slog.Info("career restored", "id", id, "day", c.Calendar.Day)
	return e, nil
}

// With runs fn against the career under its lock. The career is saved
// afterwards when save is set and fn succeeded.
func (m *Manager) With(id string, save bool, fn func(c *engine.Career) error) error {
	e, err := m.lookup(id)
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := fn(e.career); err != nil {
		return err
	}
	if save {
		m.save(e.career)
	}
	return nil
}

// View returns the presentation view of a career.
func (m *Manager) View(id string) (View, error) {
	var v View
	err := m.With(id, false, func(c *engine.Career) error {
		v = NewView(c)
		return nil
	})
	return v, err
}

// Roster returns the squad view of a career, player included.
func (m *Manager) Roster(id string) (RosterView, error) {
	var v RosterView
	err := m.With(id, false, func(c *engine.Career) error {
		v = NewRosterView(c)
		return nil
	})
	return v, err
}

// Act plays one day. raw, when non-empty, is an activity record written by
// the caller; otherwise the author proposes one from action.
func (m *Manager) Act(ctx context.Context, id, action string, raw []byte, match bool) (engine.Outcome, error) {
	var out engine.Outcome
	err := m.With(id, true, func(c *engine.Career) error {
		if match && !c.MatchAvailable() {
			return engine.ErrMatchUnavailable
		}

		var a intake.Activity
		var err error
		if len(raw) > 0 {
			a, err = intake.DecodeActivity(raw)
			if err != nil {
				return fmt.Errorf("%w: %v", ErrBadActivity, err)
			}
		} else {
			a, err = m.author().ProposeActivity(ctx, llm.ActivityRequest{
				Date:     c.Calendar.DateString(),
				Name:     c.Player.Name,
				Position: c.Player.Position,
				Category: string(c.Roster.Category),
				Tier:     c.Player.Tier,
				CA:       c.Player.CA,
				HP:       c.Player.HP,
				MP:       c.Player.MP,
				Action:   action,
				Match:    match,
			})
			if err != nil {
				return fmt.Errorf("propose activity: %w", err)
			}
		}

		if match {
			out, err = c.PlayMatch(a)
			return err
		}
		out = c.Act(a)
		return nil
	})
	return out, err
}

// SpendPAP spends aptitude points for the player.
func (m *Manager) SpendPAP(id, pos string, points float64) (float64, error) {
	var used float64
	err := m.With(id, true, func(c *engine.Career) error {
		var err error
		used, err = c.SpendPAP(pos, points)
		return err
	})
	return used, err
}

// List returns stored careers, or live ones when there is no store.
func (m *Manager) List() ([]persistence.CareerSummary, error) {
	if m.DB != nil {
		return m.DB.ListCareers()
	}
	m.mu.Lock()
	entries := make([]*entry, 0, len(m.live))
	for _, e := range m.live {
		entries = append(entries, e)
	}
	m.mu.Unlock()

	out := make([]persistence.CareerSummary, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		c := e.career
		out = append(out, persistence.CareerSummary{
			ID:        c.ID,
			Player:    c.Player.Name,
			Category:  string(c.Roster.Category),
			Formation: c.Roster.Formation.Name,
			Day:       c.Calendar.Day,
			CA:        c.Player.CA,
			Tier:      c.Player.Tier,
		})
		e.mu.Unlock()
	}
	return out, nil
}

// Delete drops a career from memory and from the store.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	_, live := m.live[id]
	delete(m.live, id)
	m.mu.Unlock()

	if m.DB != nil {
		return m.DB.DeleteCareer(id)
	}
	if !live {
		return fmt.Errorf("career %s: %w", id, persistence.ErrNotFound)
	}
	return nil
}

// Events returns up to limit recent events, newest first.
func (m *Manager) Events(id string, limit int) ([]engine.Event, error) {
	if m.DB != nil {
		if _, err := m.lookup(id); err != nil {
			return nil, err
		}
		return m.DB.RecentEvents(id, limit)
	}
	var out []engine.Event
	err := m.With(id, false, func(c *engine.Career) error {
		for i := len(c.Events) - 1; i >= 0 && len(out) < limit; i-- {
			out = append(out, c.Events[i])
		}
		return nil
	})
	return out, err
}

// Active returns the number of careers held in memory.
func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.live)
}

func (m *Manager) save(c *engine.Career) {
	if m.DB == nil {
		return
	}
	if err := m.DB.SaveCareer(c.Snapshot()); err != nil {
		slog.Error("auto-save failed", "id", c.ID, "error", err)
	}
}
