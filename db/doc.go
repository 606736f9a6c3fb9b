// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles connections, schema creation, transactions, and locks.

# Connections

Open supports PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite):

	conn, err := db.Open("postgres", "postgres://...")
	conn, err := db.Open("sqlite", "file:feels.db")

File-backed SQLite connections get foreign_keys, WAL, busy_timeout and
synchronous=NORMAL on every pooled connection, and take write locks at BEGIN.
":memory:" databases are limited to one connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - emotion_vote: the vote ledger, UNIQUE (identity_hash, day)
  - emotion_aggregate: running counts, PRIMARY KEY (day, hour, emotion)

The uniqueness constraint on emotion_vote is what enforces one vote per
identity per day; the primary key on emotion_aggregate is the conflict
target for increment-or-create.

# Transactions

	err := db.RunTx(ctx, conn, func(tx *sql.Tx) error { ... })

Any error from fn rolls everything back. IsUniqueViolation recognises
duplicate-key errors from both drivers.

# Locks

NewLocker returns a pg_advisory_lock based Locker on PostgreSQL and an
in-process one on SQLite:

	unlock, err := locker.Lock(ctx)
	if err != nil { ... }
	defer unlock()
*/
package db
