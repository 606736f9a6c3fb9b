// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store is the data access layer for the vote ledger and the hourly
aggregate table.

Writes take an Execer so they can run inside a transaction:

	err := db.RunTx(ctx, s.DB(), func(tx *sql.Tx) error {
		if err := s.InsertVote(ctx, tx, vote); err != nil {
			return err
		}
		return s.Increment(ctx, tx, day, hour, emotion, 1)
	})

Increment is a single INSERT ... ON CONFLICT DO UPDATE statement, so two
writers hitting the same cell both land.
*/
package store
