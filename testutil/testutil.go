// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/trev-sykes/feels-aggregate/cliparse"
	"github.com/trev-sykes/feels-aggregate/db"
	"github.com/trev-sykes/feels-aggregate/models"
)

// TestDBURL is an in-memory SQLite database; each SetupTestDB call gets a fresh one
const TestDBURL = ":memory:"

// Fixed instant used by most tests: 2024-01-01 14:30 UTC
var TestNow = time.Date(2024, 1, 1, 14, 30, 0, 0, time.UTC)

// SetupTestDB creates a fresh test database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.DriverSQLite, TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	cfg := cliparse.Defaults()
	cfg.DatabaseURL = TestDBURL
	cfg.IdentitySecret = "test-identity-secret"
	cfg.AdminKey = "test-admin-key"
	return cfg
}

// SeedCell writes an aggregate cell directly, bypassing the services
func SeedCell(t *testing.T, conn *sql.DB, day string, hour int, emotion models.Emotion, count int) {
	t.Helper()

	_, err := conn.Exec(`
		INSERT INTO emotion_aggregate (day, hour, emotion, count)
		VALUES ($1, $2, $3, $4)
	`, day, hour, string(emotion), count)
	if err != nil {
		t.Fatalf("Failed to seed aggregate cell: %v", err)
	}
}

// CellCount reads one aggregate cell, returning 0 when it does not exist
func CellCount(t *testing.T, conn *sql.DB, day string, hour int, emotion models.Emotion) int {
	t.Helper()

	var count int
	err := conn.QueryRow(`
		SELECT count FROM emotion_aggregate
		WHERE day = $1 AND hour = $2 AND emotion = $3
	`, day, hour, string(emotion)).Scan(&count)
	if err == sql.ErrNoRows {
		return 0
	}
	if err != nil {
		t.Fatalf("Failed to read aggregate cell: %v", err)
	}
	return count
}

// HourTotal sums all aggregate cells for one hour
func HourTotal(t *testing.T, conn *sql.DB, day string, hour int) int {
	t.Helper()

	var total int
	err := conn.QueryRow(`
		SELECT COALESCE(SUM(count), 0) FROM emotion_aggregate
		WHERE day = $1 AND hour = $2
	`, day, hour).Scan(&total)
	if err != nil {
		t.Fatalf("Failed to sum aggregate cells: %v", err)
	}
	return total
}

// VoteRows counts ledger rows for a day
func VoteRows(t *testing.T, conn *sql.DB, day string) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM emotion_vote WHERE day = $1`, day).Scan(&n); err != nil {
		t.Fatalf("Failed to count votes: %v", err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
