// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

var ErrLockUnavailable = errors.New("lock unavailable")

// Locker is a named mutual-exclusion lock. Lock blocks until the lock is held
// or ctx ends; the returned unlock must be called exactly once.
type Locker interface {
	Lock(ctx context.Context) (func(), error)
}

var (
	_ Locker = (*AdvisoryLocker)(nil)
	_ Locker = (*MutexLocker)(nil)
)

// NewLocker picks the lock implementation for the database type
func NewLocker(dbType string, conn *sql.DB, id int64) Locker {
	if dbType == DriverPostgres {
		return &AdvisoryLocker{db: conn, id: id}
	}
	return NewMutexLocker()
}

// AdvisoryLocker holds a PostgreSQL session-level advisory lock. The lock is
// bound to one pooled connection, which stays checked out until unlock.
type AdvisoryLocker struct {
	db *sql.DB
	id int64
}

func (l *AdvisoryLocker) Lock(ctx context.Context) (func(), error) {
	conn, err := l.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: acquire connection: %v", ErrLockUnavailable, err)
	}

	if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, l.id); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: pg_advisory_lock(%d): %v", ErrLockUnavailable, l.id, err)
	}

	return func() {
		// Unlock even if the request context is already gone
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := conn.ExecContext(ctx, `SELECT pg_advisory_unlock($1)`, l.id); err != nil {
			slog.Error("failed to release advisory lock", "lock_id", l.id, "error", err)
		}
		conn.Close()
	}, nil
}

// MutexLocker is a process-local lock for SQLite, where a single process owns
// the database file.
type MutexLocker struct {
	sem chan struct{}
}

func NewMutexLocker() *MutexLocker {
	return &MutexLocker{sem: make(chan struct{}, 1)}
}

func (l *MutexLocker) Lock(ctx context.Context) (func(), error) {
	select {
	case l.sem <- struct{}{}:
		return func() { <-l.sem }, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", ErrLockUnavailable, ctx.Err())
	}
}
