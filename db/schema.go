// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
// The same statements run on PostgreSQL and SQLite.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

const schema = `
-- Vote ledger: one row per identity per UTC day, append-only
CREATE TABLE IF NOT EXISTS emotion_vote (
    id TEXT PRIMARY KEY,
    identity_hash TEXT NOT NULL,
    day TEXT NOT NULL,
    hour INTEGER NOT NULL CHECK (hour >= 0 AND hour <= 23),
    emotion TEXT NOT NULL CHECK (emotion IN ('happy', 'content', 'neutral', 'stressed', 'sad', 'angry')),
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    UNIQUE (identity_hash, day)
);

CREATE INDEX IF NOT EXISTS idx_emotion_vote_day ON emotion_vote(day);

-- Hourly aggregates, real and synthetic
CREATE TABLE IF NOT EXISTS emotion_aggregate (
    day TEXT NOT NULL,
    hour INTEGER NOT NULL CHECK (hour >= 0 AND hour <= 23),
    emotion TEXT NOT NULL CHECK (emotion IN ('happy', 'content', 'neutral', 'stressed', 'sad', 'angry')),
    count INTEGER NOT NULL DEFAULT 0 CHECK (count >= 0),
    PRIMARY KEY (day, hour, emotion)
);
`
