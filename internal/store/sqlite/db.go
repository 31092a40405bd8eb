package sqlite

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// now is the timestamp expression used on insert; millisecond resolution
// keeps ordering stable for messages sent within the same second.
const now = `strftime('%Y-%m-%d %H:%M:%f', 'now')`

// Open opens a SQLite database with the given DSN.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// SQLite allows a single writer; serialising through one connection
	// avoids SQLITE_BUSY under concurrent requests.
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return db, nil
}

// Migrate runs idempotent DDL for the users, matches and messages tables.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			display_name VARCHAR(100) NOT NULL,
			email VARCHAR(255) UNIQUE,
			avatar_url TEXT DEFAULT NULL,
			created_at DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now'))
		);`,
		// One row per ordered (liker, liked) pair.
		`CREATE TABLE IF NOT EXISTS matches (
			id INTEGER PRIMARY KEY,
			liker_id TEXT NOT NULL,
			liked_id TEXT NOT NULL,
			is_mutual BOOLEAN NOT NULL DEFAULT 0,
			created_at DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now')),
			UNIQUE (liker_id, liked_id),
			FOREIGN KEY (liker_id) REFERENCES users(id),
			FOREIGN KEY (liked_id) REFERENCES users(id)
		);`,
		// seed_key is only set on the seed message of a pair; the UNIQUE
		// constraint makes the seed insert idempotent under races.
		`CREATE TABLE IF NOT EXISTS messages (
			id INTEGER PRIMARY KEY,
			sender_id TEXT NOT NULL,
			receiver_id TEXT NOT NULL,
			pair_key TEXT NOT NULL,
			content TEXT NOT NULL DEFAULT '',
			image_url TEXT DEFAULT NULL,
			audio_url TEXT DEFAULT NULL,
			is_read BOOLEAN NOT NULL DEFAULT 0,
			source TEXT DEFAULT NULL CHECK (source IS NULL OR source IN ('MATCH', 'ACTIVITY_CARD', 'ACTIVITY_TRIP')),
			seed_key TEXT UNIQUE DEFAULT NULL,
			created_at DATETIME NOT NULL DEFAULT (strftime('%Y-%m-%d %H:%M:%f', 'now')),
			FOREIGN KEY (sender_id) REFERENCES users(id),
			FOREIGN KEY (receiver_id) REFERENCES users(id)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC);`,
		`CREATE INDEX IF NOT EXISTS idx_matches_liked ON matches(liked_id);`,
		`CREATE INDEX IF NOT EXISTS idx_matches_mutual ON matches(is_mutual);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_pair_created ON messages(pair_key, created_at, id);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender_id);`,
		`CREATE INDEX IF NOT EXISTS idx_messages_unread ON messages(receiver_id, sender_id, is_read);`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}

	return nil
}
