package main

import (
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite score database
type DB struct {
	conn *sql.DB
}

// ScoreRow is a nickname's lifetime tally
type ScoreRow struct {
	Nickname  string    `json:"nickname"`
	Kills     int       `json:"kills"`
	Deaths    int       `json:"deaths"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Tally is a pending kill/death delta for one nickname
type Tally struct {
	Kills  int
	Deaths int
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// modernc's driver serializes writers; one connection avoids SQLITE_BUSY
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
	CREATE TABLE IF NOT EXISTS scores (
		nickname TEXT PRIMARY KEY,
		kills INTEGER NOT NULL DEFAULT 0,
		deaths INTEGER NOT NULL DEFAULT 0,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_scores_kills ON scores(kills DESC);
	`)
	return err
}

// ApplyTallies adds a batch of deltas in one transaction
func (db *DB) ApplyTallies(tallies map[string]Tally) error {
	if len(tallies) == 0 {
		return nil
	}
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO scores (nickname, kills, deaths, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(nickname) DO UPDATE SET
			kills = kills + excluded.kills,
			deaths = deaths + excluded.deaths,
			updated_at = excluded.updated_at`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := time.Now().UTC().Format(time.RFC3339)
	for nick, t := range tallies {
		if _, err := stmt.Exec(nick, t.Kills, t.Deaths, now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetScore returns a nickname's tally; a nickname never seen has zero
func (db *DB) GetScore(nickname string) (ScoreRow, error) {
	row := ScoreRow{Nickname: nickname}
	var updated sql.NullString
	err := db.conn.QueryRow("SELECT kills, deaths, updated_at FROM scores WHERE nickname = ?", nickname).
		Scan(&row.Kills, &row.Deaths, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return row, nil
	}
	if err != nil {
		return row, err
	}
	row.UpdatedAt = parseTimestamp(updated.String)
	return row, nil
}

// TopScores returns the leaderboard ordered by kills, then fewest deaths
func (db *DB) TopScores(limit int) ([]ScoreRow, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := db.conn.Query(`SELECT nickname, kills, deaths, updated_at FROM scores
		ORDER BY kills DESC, deaths ASC, nickname ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []ScoreRow
	for rows.Next() {
		var r ScoreRow
		var updated sql.NullString
		if err := rows.Scan(&r.Nickname, &r.Kills, &r.Deaths, &updated); err != nil {
			return nil, err
		}
		r.UpdatedAt = parseTimestamp(updated.String)
		result = append(result, r)
	}
	return result, rows.Err()
}

func parseTimestamp(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
