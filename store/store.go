// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/trev-sykes/feels-aggregate/db"
	"github.com/trev-sykes/feels-aggregate/models"
)

// ErrDuplicateVote is returned when (identity, day) already has a vote.
var ErrDuplicateVote = errors.New("vote already recorded for this identity and day")

// Execer is satisfied by *sql.DB, *sql.Tx and *sql.Conn.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Store reads and writes the vote ledger and the aggregate table.
type Store struct {
	db *sql.DB
}

func New(conn *sql.DB) *Store {
	return &Store{db: conn}
}

// DB exposes the handle for callers that need a transaction.
func (s *Store) DB() *sql.DB {
	return s.db
}

// InsertVote appends a ledger row. A second vote for the same identity and day
// fails with ErrDuplicateVote.
func (s *Store) InsertVote(ctx context.Context, ex Execer, v models.VoteRecord) error {
	_, err := ex.ExecContext(ctx, `
		INSERT INTO emotion_vote (id, identity_hash, day, hour, emotion)
		VALUES ($1, $2, $3, $4, $5)
	`, v.ID, v.IdentityHash, v.Day, v.Hour, string(v.Emotion))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", ErrDuplicateVote, err)
		}
		return fmt.Errorf("insert vote: %w", err)
	}
	return nil
}

// Increment adds delta to the (day, hour, emotion) cell, creating it if needed.
// Concurrent increments to the same cell are additive.
func (s *Store) Increment(ctx context.Context, ex Execer, day string, hour int, emotion models.Emotion, delta int) error {
	if delta <= 0 {
		return fmt.Errorf("increment must be positive, got %d", delta)
	}
	_, err := ex.ExecContext(ctx, `
		INSERT INTO emotion_aggregate (day, hour, emotion, count)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (day, hour, emotion)
		DO UPDATE SET count = emotion_aggregate.count + excluded.count
	`, day, hour, string(emotion), delta)
	if err != nil {
		return fmt.Errorf("increment aggregate %s/%d/%s: %w", day, hour, emotion, err)
	}
	return nil
}

// HourHasData reports whether any aggregate cell exists for (day, hour).
func (s *Store) HourHasData(ctx context.Context, day string, hour int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM emotion_aggregate
			WHERE day = $1 AND hour = $2
		)
	`, day, hour).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check hour %s/%d: %w", day, hour, err)
	}
	return exists, nil
}

// DayCells returns every stored cell for the day. Empty cells are not stored.
func (s *Store) DayCells(ctx context.Context, day string) ([]models.AggregateCell, error) {
	return s.queryCells(ctx, `
		SELECT day, hour, emotion, count FROM emotion_aggregate
		WHERE day = $1
		ORDER BY hour, emotion
	`, day)
}

// HourCells returns the stored cells for a single hour.
func (s *Store) HourCells(ctx context.Context, day string, hour int) ([]models.AggregateCell, error) {
	return s.queryCells(ctx, `
		SELECT day, hour, emotion, count FROM emotion_aggregate
		WHERE day = $1 AND hour = $2
		ORDER BY emotion
	`, day, hour)
}

func (s *Store) queryCells(ctx context.Context, query string, args ...any) ([]models.AggregateCell, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query aggregates: %w", err)
	}
	defer rows.Close()

	var cells []models.AggregateCell
	for rows.Next() {
		var c models.AggregateCell
		var emotion string
		if err := rows.Scan(&c.Day, &c.Hour, &emotion, &c.Count); err != nil {
			return nil, fmt.Errorf("scan aggregate: %w", err)
		}
		c.Emotion = models.Emotion(emotion)
		cells = append(cells, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate aggregates: %w", err)
	}
	return cells, nil
}

// VoteFor returns the emotion recorded for identity on day, or nil if none.
func (s *Store) VoteFor(ctx context.Context, identityHash, day string) (*models.Emotion, error) {
	var emotion string
	err := s.db.QueryRowContext(ctx, `
		SELECT emotion FROM emotion_vote
		WHERE identity_hash = $1 AND day = $2
	`, identityHash, day).Scan(&emotion)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query vote: %w", err)
	}

	e := models.Emotion(emotion)
	return &e, nil
}

// CountVotes returns the number of ledger rows for (day, hour, emotion).
func (s *Store) CountVotes(ctx context.Context, day string, hour int, emotion models.Emotion) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM emotion_vote
		WHERE day = $1 AND hour = $2 AND emotion = $3
	`, day, hour, string(emotion)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count votes: %w", err)
	}
	return n, nil
}
