// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielhkuo/pollvote/auth"
	"github.com/danielhkuo/pollvote/cliparse"
	"github.com/danielhkuo/pollvote/db"
)

// TestSecret signs every token issued in tests
const TestSecret = "test-auth-secret"

// SetupTestDB creates a fresh sqlite database with the full schema. The
// file lives in the test's temp dir and is closed on cleanup.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "pollvote.db")
	conn, err := db.Open(cliparse.DatabaseSQLite, path)
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
	return cliparse.Config{
		Port:          3318,
		DatabaseURL:   "pollvote-test.db",
		DatabaseType:  cliparse.DatabaseSQLite,
		AuthSecret:    TestSecret,
		LogLevel:      "error",
		AllowedOrigin: "http://localhost:5173",
	}
}

// TestVerifier returns a verifier for tokens from Token
func TestVerifier(t *testing.T) *auth.Verifier {
	t.Helper()

	v, err := auth.NewVerifier(TestSecret)
	if err != nil {
		t.Fatalf("Failed to create verifier: %v", err)
	}
	return v
}

// Token issues a bearer token for p
func Token(t *testing.T, p auth.Principal) string {
	t.Helper()

	iss, err := auth.NewIssuer(TestSecret, time.Hour)
	if err != nil {
		t.Fatalf("Failed to create issuer: %v", err)
	}
	tok, err := iss.Issue(p)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return tok
}

// AuthHeader returns request headers carrying p's bearer token
func AuthHeader(t *testing.T, p auth.Principal) map[string]string {
	t.Helper()
	return map[string]string{"Authorization": "Bearer " + Token(t, p)}
}

// PollFixture describes a poll for CreateTestPoll. Zero values give an
// active, named poll with options "Yes" and "No".
type PollFixture struct {
	Question  string
	CreatedBy string
	Category  string
	Anonymous bool
	Closed    bool
	Options   []string
	CreatedAt time.Time
}

// CreateTestPoll inserts a poll and its options and returns their IDs
func CreateTestPoll(t *testing.T, conn *sql.DB, f PollFixture) (pollID string, optionIDs []string) {
	t.Helper()

	if f.Question == "" {
		f.Question = "Test poll question?"
	}
	if f.CreatedBy == "" {
		f.CreatedBy = "creator"
	}
	if f.Category == "" {
		f.Category = "general"
	}
	if len(f.Options) == 0 {
		f.Options = []string{"Yes", "No"}
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}

	pollID = auth.NewID()
	_, err := conn.Exec(`
		INSERT INTO poll (id, question, category, is_custom_category, created_by, is_active, is_anonymous, total_votes, created_at)
		VALUES ($1, $2, $3, FALSE, $4, $5, $6, 0, $7)
	`, pollID, f.Question, f.Category, f.CreatedBy, !f.Closed, f.Anonymous, f.CreatedAt)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	for i, text := range f.Options {
		optionID := auth.NewID()
		_, err := conn.Exec(`
			INSERT INTO poll_option (id, poll_id, position, text, vote_count)
			VALUES ($1, $2, $3, $4, 0)
		`, optionID, pollID, i, text)
		if err != nil {
			t.Fatalf("Failed to create test option: %v", err)
		}
		optionIDs = append(optionIDs, optionID)
	}

	return pollID, optionIDs
}

// AddTestVote records a vote directly, keeping both counters in step
// with the ledger. It ignores the poll's active flag.
func AddTestVote(t *testing.T, conn *sql.DB, pollID, optionID, userID, displayName string) {
	t.Helper()

	tx, err := conn.Begin()
	if err != nil {
		t.Fatalf("Failed to begin vote transaction: %v", err)
	}
	defer tx.Rollback()

	var seq int
	err = tx.QueryRow(`UPDATE poll SET total_votes = total_votes + 1 WHERE id = $1 RETURNING total_votes`, pollID).Scan(&seq)
	if err != nil {
		t.Fatalf("Failed to bump poll tally: %v", err)
	}
	if _, err := tx.Exec(`UPDATE poll_option SET vote_count = vote_count + 1 WHERE id = $1`, optionID); err != nil {
		t.Fatalf("Failed to bump option count: %v", err)
	}
	_, err = tx.Exec(`
		INSERT INTO vote (id, poll_id, user_id, option_id, user_display_name, seq, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, auth.NewID(), pollID, userID, optionID, displayName, seq, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to insert test vote: %v", err)
	}

	if err := tx.Commit(); err != nil {
		t.Fatalf("Failed to commit test vote: %v", err)
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
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
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
