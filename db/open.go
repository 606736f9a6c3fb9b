// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Driver names registered by the imported drivers
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// sqlitePragmas are applied to every pooled connection through the DSN.
var sqlitePragmas = []string{
	"_pragma=foreign_keys(1)",
	"_pragma=journal_mode(WAL)",
	"_pragma=busy_timeout(10000)",
	"_pragma=synchronous(NORMAL)",
	"_txlock=immediate",
}

// Open connects to the database and verifies the connection.
// dbType is "sqlite" or "postgres".
func Open(dbType, url string) (*sql.DB, error) {
	var (
		conn *sql.DB
		err  error
	)

	switch dbType {
	case DriverPostgres:
		conn, err = sql.Open(DriverPostgres, url)
	case DriverSQLite:
		if isMemory(url) {
			conn, err = sql.Open(DriverSQLite, url)
			if err == nil {
				// Every connection to :memory: is a separate database
				conn.SetMaxOpenConns(1)
			}
		} else {
			conn, err = sql.Open(DriverSQLite, sqliteDSN(url))
		}
	default:
		return nil, fmt.Errorf("unsupported database type %q", dbType)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbType, err)
	}

	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", dbType, err)
	}

	return conn, nil
}

func isMemory(url string) bool {
	return url == ":memory:" || strings.Contains(url, "mode=memory")
}

func sqliteDSN(url string) string {
	sep := "?"
	if strings.Contains(url, "?") {
		sep = "&"
	}
	return url + sep + strings.Join(sqlitePragmas, "&")
}
