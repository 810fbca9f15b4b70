// Package scores keeps the results of finished standard games in sqlite.
package scores

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

type Entry struct {
	ID     int64     `json:"-"`
	Player string    `json:"player"`
	Score  uint64    `json:"score"`
	Lines  int       `json:"lines"`
	Level  int       `json:"level"`
	Tiles  int       `json:"tiles"`
	At     time.Time `json:"at"`
}

type Store struct {
	ctx context.Context
	db  *sql.DB
}

func Open(ctx context.Context, filename string) (*Store, error) {
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s?_fk=1", filename))
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer and every ssh session saves through here
	db.SetMaxOpenConns(1)

	_, err = db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS scores (
			id INTEGER PRIMARY KEY,
			ts DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			tiles INTEGER NOT NULL,
			score INTEGER NOT NULL,
			entry JSON NOT NULL CHECK (json_valid(entry))
		);
		CREATE INDEX IF NOT EXISTS scores_by_tiles ON scores(tiles, score DESC);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("error initializing sqlite table: %w", err)
	}

	return &Store{
		ctx: ctx,
		db:  db,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Save records e and returns it with its ID and At filled in.
func (s *Store) Save(e Entry) (Entry, error) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	e.At = e.At.UTC()

	b, err := json.Marshal(e)
	if err != nil {
		return e, fmt.Errorf("error marshaling entry: %w", err)
	}

	res, err := s.db.ExecContext(s.ctx,
		`INSERT INTO scores(ts, tiles, score, entry) VALUES (?, ?, ?, ?)`,
		e.At, e.Tiles, int64(e.Score), string(b))
	if err != nil {
		return e, fmt.Errorf("error saving entry: %w", err)
	}
	e.ID, err = res.LastInsertId()
	if err != nil {
		return e, fmt.Errorf("error reading last insert id: %w", err)
	}
	return e, nil
}

// Rank is the 1-based position of score among the saved entries for the same
// tile count. Ties share the better rank.
func (s *Store) Rank(tiles int, score uint64) (int, error) {
	var above int
	err := s.db.QueryRowContext(s.ctx,
		`SELECT COUNT(*) FROM scores WHERE tiles = ? AND score > ?`,
		tiles, int64(score)).Scan(&above)
	if err != nil {
		return 0, fmt.Errorf("rank query error: %w", err)
	}
	return above + 1, nil
}

// Top returns the n best entries for a tile count, best first. Earlier entries
// win ties.
func (s *Store) Top(tiles, n int) ([]Entry, error) {
	rows, err := s.db.QueryContext(s.ctx, `
SELECT id, entry
FROM scores
WHERE tiles = ?
ORDER BY score DESC, id ASC
LIMIT ?
`, tiles, n)
	if err != nil {
		return nil, fmt.Errorf("scores query error: %w", err)
	}

	entries := make([]Entry, 0, n)
	for rows.Next() {
		var (
			id  int64
			raw string
			e   Entry
		)
		err = rows.Scan(&id, &raw)
		if err != nil {
			break
		}
		err = json.Unmarshal([]byte(raw), &e)
		if err != nil {
			err = fmt.Errorf("json decoding error: %w", err)
			break
		}
		e.ID = id
		entries = append(entries, e)
	}
	if closeErr := rows.Close(); closeErr != nil {
		return nil, fmt.Errorf("rows close error: %w", closeErr)
	}
	if err != nil {
		return nil, fmt.Errorf("rows scan error: %w", err)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("rows unexpected error: %w", rows.Err())
	}
	return entries, nil
}
