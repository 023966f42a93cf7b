// Package storage provides SQLite-based persistence for finished matches.
// Uses the pure-Go modernc.org/sqlite driver to avoid CGO dependencies.
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/vovakirdan/via/internal/multiplayer"
)

// Store manages the SQLite database connection for match history.
type Store struct {
	db *sql.DB
}

// MatchRecord is one finished match.
type MatchRecord struct {
	ID        int64     `json:"-"`
	MatchID   string    `json:"match_id"`
	Mode      string    `json:"mode"` // "turns" or "realtime"
	Player1   string    `json:"player1"`
	Player2   string    `json:"player2"`
	Winner    string    `json:"winner,omitempty"` // Empty if nobody won
	EndReason string    `json:"end_reason"`       // "completed", "disconnect", "left", ...
	Bars      []int     `json:"bars,omitempty"`   // final bar values, red..purple
	Duration  int       `json:"duration_secs"`    // Duration in seconds
	CreatedAt time.Time `json:"created_at"`
}

// PlayerRecord aggregates one player's matches.
type PlayerRecord struct {
	Name   string
	Played int
	Wins   int
	Losses int
}

// Open creates or opens a SQLite database at the given path.
// It creates the parent directories if needed and runs migrations.
func Open(dbPath string) (*Store, error) {
	// Expand ~ to home directory
	if dbPath != "" && dbPath[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("storage: cannot expand home directory: %w", err)
		}
		dbPath = filepath.Join(home, dbPath[1:])
	}

	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("storage: cannot create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: cannot connect to database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: migration failed: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			match_id TEXT NOT NULL UNIQUE,
			mode TEXT NOT NULL,
			player1 TEXT NOT NULL,
			player2 TEXT NOT NULL,
			winner TEXT,
			end_reason TEXT NOT NULL,
			bars TEXT NOT NULL DEFAULT '',
			duration_secs INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_matches_player1 ON matches(player1);
		CREATE INDEX IF NOT EXISTS idx_matches_player2 ON matches(player2);
		CREATE INDEX IF NOT EXISTS idx_matches_created ON matches(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// SaveMatch records a finished match.
// Returns the ID of the inserted record.
func (s *Store) SaveMatch(m MatchRecord) (int64, error) {
	var winner sql.NullString
	if m.Winner != "" {
		winner = sql.NullString{String: m.Winner, Valid: true}
	}

	res, err := s.db.Exec(
		`INSERT INTO matches
		 (match_id, mode, player1, player2, winner, end_reason, bars, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		m.MatchID, m.Mode, m.Player1, m.Player2, winner, m.EndReason,
		encodeBars(m.Bars), m.Duration,
	)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot save match: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get inserted ID: %w", err)
	}
	return id, nil
}

const matchColumns = `id, match_id, mode, player1, player2, winner, end_reason, bars, duration_secs, created_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanMatch(row scanner) (MatchRecord, error) {
	var m MatchRecord
	var winner sql.NullString
	var bars string
	var createdAt any

	if err := row.Scan(&m.ID, &m.MatchID, &m.Mode, &m.Player1, &m.Player2,
		&winner, &m.EndReason, &bars, &m.Duration, &createdAt); err != nil {
		return m, err
	}
	m.Winner = winner.String
	m.Bars = decodeBars(bars)
	m.CreatedAt = parseTime(createdAt)
	return m, nil
}

// MatchByID retrieves a match by its match ID. Returns nil if not found.
func (s *Store) MatchByID(matchID string) (*MatchRecord, error) {
	row := s.db.QueryRow(`SELECT `+matchColumns+` FROM matches WHERE match_id = ?`, matchID)
	m, err := scanMatch(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query match: %w", err)
	}
	return &m, nil
}

// RecentMatches retrieves the most recent matches.
func (s *Store) RecentMatches(limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryMatches(
		`SELECT `+matchColumns+` FROM matches ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
}

// PlayerMatches retrieves the match history of one player.
func (s *Store) PlayerMatches(name string, limit int) ([]MatchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.queryMatches(
		`SELECT `+matchColumns+` FROM matches
		 WHERE player1 = ? OR player2 = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT ?`,
		name, name, limit,
	)
}

func (s *Store) queryMatches(query string, args ...any) ([]MatchRecord, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query matches: %w", err)
	}
	defer rows.Close()

	var results []MatchRecord
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return results, nil
}

// PlayerRecord counts one player's matches, wins and losses. A match with
// no winner counts as played only.
func (s *Store) PlayerRecord(name string) (PlayerRecord, error) {
	rec := PlayerRecord{Name: name}
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN winner = ? THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN winner IS NOT NULL AND winner <> ? THEN 1 ELSE 0 END), 0)
		 FROM matches
		 WHERE player1 = ? OR player2 = ?`,
		name, name, name, name,
	).Scan(&rec.Played, &rec.Wins, &rec.Losses)
	if err != nil {
		return rec, fmt.Errorf("storage: cannot get player record: %w", err)
	}
	return rec, nil
}

// Leaderboard returns the players with the most wins.
func (s *Store) Leaderboard(limit int) ([]PlayerRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.Query(
		`SELECT name,
		        COUNT(*),
		        SUM(CASE WHEN winner = name THEN 1 ELSE 0 END),
		        SUM(CASE WHEN winner IS NOT NULL AND winner <> name THEN 1 ELSE 0 END)
		 FROM (
		     SELECT player1 AS name, winner FROM matches
		     UNION ALL
		     SELECT player2 AS name, winner FROM matches
		 )
		 GROUP BY name
		 ORDER BY 3 DESC, 2 DESC, name
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get leaderboard: %w", err)
	}
	defer rows.Close()

	var out []PlayerRecord
	for rows.Next() {
		var r PlayerRecord
		if err := rows.Scan(&r.Name, &r.Played, &r.Wins, &r.Losses); err != nil {
			return nil, fmt.Errorf("storage: cannot scan leaderboard row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return out, nil
}

// SaveMatchResult implements multiplayer.MatchResultSaver.
func (s *Store) SaveMatchResult(data multiplayer.MatchResultData) error {
	_, err := s.SaveMatch(MatchRecord{
		MatchID:   data.MatchID,
		Mode:      data.Mode,
		Player1:   data.Player1,
		Player2:   data.Player2,
		Winner:    data.Winner,
		EndReason: data.EndReason,
		Bars:      data.Bars,
		Duration:  data.DurationSecs,
	})
	return err
}

// Ensure Store implements MatchResultSaver
var _ multiplayer.MatchResultSaver = (*Store)(nil)

// parseTime handles both time.Time and the string form SQLite may return.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		if parsed, err := time.Parse("2006-01-02 15:04:05", t); err == nil {
			return parsed
		}
	}
	return time.Time{}
}

func encodeBars(bars []int) string {
	parts := make([]string, len(bars))
	for i, v := range bars {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ",")
}

func decodeBars(s string) []int {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil
		}
		out = append(out, v)
	}
	return out
}
