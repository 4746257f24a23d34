// Package persistence provides SQLite-based career storage: one snapshot row
// per career plus an append-only event log.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/hayaneofficial/soccer-career-sim/internal/engine"
)

// ErrNotFound is returned when a career id has no stored snapshot.
var ErrNotFound = errors.New("career not found")

// DB wraps a SQLite connection for career persistence.
type DB struct {
	conn *sqlx.DB
}

// CareerSummary is one row of the career listing.
type CareerSummary struct {
	ID        string    `db:"id" json:"id"`
	Player    string    `db:"player_name" json:"player"`
	Category  string    `db:"category" json:"category"`
	Formation string    `db:"formation" json:"formation"`
	Day       int       `db:"day" json:"day"`
	CA        float64   `db:"ca" json:"ca"`
	Tier      string    `db:"tier" json:"tier"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// SQLite allows one writer at a time.
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS careers (
		id TEXT PRIMARY KEY,
		player_name TEXT NOT NULL,
		category TEXT NOT NULL,
		formation TEXT NOT NULL,
		day INTEGER NOT NULL,
		ca REAL NOT NULL,
		tier TEXT NOT NULL,
		snapshot_json TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		career_id TEXT NOT NULL,
		seq INTEGER NOT NULL,
		day INTEGER NOT NULL,
		date TEXT NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL,
		PRIMARY KEY (career_id, seq)
	);

	CREATE INDEX IF NOT EXISTS idx_careers_updated ON careers(updated_at);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveCareer upserts the snapshot and appends any events not yet stored.
// Events are keyed by sequence number, so saving the same snapshot twice
// does not duplicate the log.
func (db *DB) SaveCareer(s engine.Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode career %s: %w", s.ID, err)
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.Exec(`INSERT INTO careers
		(id, player_name, category, formation, day, ca, tier, snapshot_json, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			player_name = excluded.player_name,
			category = excluded.category,
			formation = excluded.formation,
			day = excluded.day,
			ca = excluded.ca,
			tier = excluded.tier,
			snapshot_json = excluded.snapshot_json,
			updated_at = excluded.updated_at`,
		s.ID, s.Player.Name, string(s.Roster.Category), s.Roster.Formation.Name,
		s.Day, s.Player.CA, s.Player.Tier, string(data), now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert career %s: %w", s.ID, err)
	}

	if len(s.Events) > 0 {
		stmt, err := tx.Preparex(`INSERT OR IGNORE INTO events
			(career_id, seq, day, date, description, category)
			VALUES (?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, e := range s.Events {
			if _, err := stmt.Exec(s.ID, e.Seq, e.Day, e.Date, e.Description, e.Category); err != nil {
				return fmt.Errorf("insert event %d: %w", e.Seq, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit career %s: %w", s.ID, err)
	}
	slog.Debug("career saved", "id", s.ID, "day", s.Day, "events", len(s.Events))
	return nil
}

// LoadCareer returns the stored snapshot for id.
func (db *DB) LoadCareer(id string) (engine.Snapshot, error) {
	var data string
	err := db.conn.Get(&data, "SELECT snapshot_json FROM careers WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.Snapshot{}, fmt.Errorf("load career %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return engine.Snapshot{}, fmt.Errorf("load career %s: %w", id, err)
	}

	var s engine.Snapshot
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return engine.Snapshot{}, fmt.Errorf("decode career %s: %w", id, err)
	}
	return s, nil
}

// ListCareers returns all careers, most recently played first.
func (db *DB) ListCareers() ([]CareerSummary, error) {
	var out []CareerSummary
	err := db.conn.Select(&out, `SELECT id, player_name, category, formation, day, ca, tier, updated_at
		FROM careers ORDER BY updated_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list careers: %w", err)
	}
	return out, nil
}

// DeleteCareer removes a career and its event log.
func (db *DB) DeleteCareer(id string) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec("DELETE FROM careers WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete career %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete career %s: %w", id, ErrNotFound)
	}
	if _, err := tx.Exec("DELETE FROM events WHERE career_id = ?", id); err != nil {
		return fmt.Errorf("delete events %s: %w", id, err)
	}
	return tx.Commit()
}

// RecentEvents returns the most recent limit events of a career, newest first.
func (db *DB) RecentEvents(id string, limit int) ([]engine.Event, error) {
	var events []engine.Event
	err := db.conn.Select(&events,
		"SELECT seq, day, date, description, category FROM events WHERE career_id = ? ORDER BY seq DESC LIMIT ?",
		id, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent events %s: %w", id, err)
	}
	return events, nil
}
