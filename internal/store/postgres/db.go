package postgres

import (
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open opens a PostgreSQL database using the pgx stdlib driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// Migrate runs idempotent DDL migrations for the users, matches and messages
// tables on PostgreSQL.
func Migrate(db *sql.DB) error {
	stmts := []string{
		// Users
		`CREATE TABLE IF NOT EXISTS users (
			id            TEXT         PRIMARY KEY,
			display_name  VARCHAR(100) NOT NULL,
			email         VARCHAR(255) UNIQUE,
			avatar_url    TEXT,
			created_at    TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,

		// Directed like edges
		`CREATE TABLE IF NOT EXISTS matches (
			id          BIGSERIAL    PRIMARY KEY,
			liker_id    TEXT         NOT NULL REFERENCES users(id),
			liked_id    TEXT         NOT NULL REFERENCES users(id),
			is_mutual   BOOLEAN      NOT NULL DEFAULT FALSE,
			created_at  TIMESTAMPTZ  NOT NULL DEFAULT NOW(),
			UNIQUE (liker_id, liked_id)
		)`,

		// Messages
		`CREATE TABLE IF NOT EXISTS messages (
			id           BIGSERIAL    PRIMARY KEY,
			sender_id    TEXT         NOT NULL REFERENCES users(id),
			receiver_id  TEXT         NOT NULL REFERENCES users(id),
			pair_key     TEXT         NOT NULL,
			content      TEXT         NOT NULL DEFAULT '',
			image_url    TEXT,
			audio_url    TEXT,
			is_read      BOOLEAN      NOT NULL DEFAULT FALSE,
			source       TEXT CHECK (source IS NULL OR source IN ('MATCH', 'ACTIVITY_CARD', 'ACTIVITY_TRIP')),
			seed_key     TEXT UNIQUE,
			created_at   TIMESTAMPTZ  NOT NULL DEFAULT NOW()
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_users_created_at ON users(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_liked ON matches(liked_id)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_mutual ON matches(is_mutual)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_pair_created ON messages(pair_key, created_at, id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_sender ON messages(sender_id)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_unread ON messages(receiver_id, sender_id, is_read)`,

		// Add new columns to existing tables if they were created by an older schema
		`ALTER TABLE messages ADD COLUMN IF NOT EXISTS audio_url TEXT`,
		`ALTER TABLE messages ADD COLUMN IF NOT EXISTS seed_key  TEXT UNIQUE`,
	}

	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migrate: %w\nSQL: %s", err, stmt)
		}
	}
	return nil
}
