package engine

import (
	"fmt"
	"time"

	"github.com/hayaneofficial/soccer-career-sim/internal/attributes"
	"github.com/hayaneofficial/soccer-career-sim/internal/entropy"
	"github.com/hayaneofficial/soccer-career-sim/internal/roster"
)

// SnapshotVersion is bumped whenever the snapshot layout changes.
const SnapshotVersion = 1

// Snapshot is the serializable state of a career.
type Snapshot struct {
	Version int           `json:"version"`
	ID      string        `json:"id"`
	Seed    int64         `json:"seed"`
	Start   time.Time     `json:"start"`
	Day     int           `json:"day"`
	NextSeq int64         `json:"next_seq"`
	Player  roster.Player `json:"player"`
	Roster  roster.Roster `json:"roster"`
	Events  []Event       `json:"events,omitempty"`
}

// Snapshot exports a deep copy of the career state.
func (c *Career) Snapshot() Snapshot {
	p := *c.Player
	p.Attributes = c.Player.Attributes.Clone()
	p.Aptitude.Levels = copyMap(c.Player.Aptitude.Levels)
	p.Relations = copyMap(c.Player.Relations)

	return Snapshot{
		Version: SnapshotVersion,
		ID:      c.ID,
		Seed:    c.Seed,
		Start:   c.Calendar.Start,
		Day:     c.Calendar.Day,
		NextSeq: c.nextSeq,
		Player:  p,
		Roster:  c.Roster.Clone(),
		Events:  append([]Event(nil), c.Events...),
	}
}

// Restore rebuilds a career from a snapshot. Attribute sets are completed
// and CA is recomputed from them, then the hierarchy is ranked again, so a
// hand-edited snapshot cannot carry a stale CA or tier. A nil src resumes with a source derived from the seed and day.
func Restore(s Snapshot, src entropy.Source, model *attributes.Model) (*Career, error) {
	if s.Version != SnapshotVersion {
		return nil, fmt.Errorf("restore career %s: unsupported snapshot version %d", s.ID, s.Version)
	}
	if s.ID == "" {
		return nil, fmt.Errorf("restore career: missing id")
	}
	if _, ok := roster.ParseCategory(string(s.Roster.Category)); !ok {
		return nil, fmt.Errorf("restore career %s: unknown category %q", s.ID, s.Roster.Category)
	}
	if src == nil {
		src = entropy.NewSeeded(s.Seed + int64(s.Day)*7919)
	}

	c := newCareer(s.ID, s.Seed, src, model)
	c.Calendar = NewCalendar(s.Start)
	c.Calendar.Day = s.Day
	c.wire()
	c.nextSeq = s.NextSeq
	c.Events = append([]Event(nil), s.Events...)

	p := s.Player
	p.Attributes = attributes.NewSet(p.Attributes)
	p.Controlled = true
	if p.Aptitude.Levels == nil {
		p.Aptitude = attributes.NewAptitude(p.Position, p.Attributes)
	}
	p.Refresh(c.model)
	c.Player = &p

	c.Roster = s.Roster.Clone()
	for i := range c.Roster.Members {
		m := &c.Roster.Members[i]
		m.Attributes = attributes.NewSet(m.Attributes)
		m.Controlled = false
		m.Refresh(c.model)
	}
	// Tier, rank and shirt number are derived; never trust the stored ones.
	c.recomputeHierarchy()
	return c, nil
}

func copyMap(m map[string]float64) map[string]float64 {
	if m == nil {
		return nil
	}
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
