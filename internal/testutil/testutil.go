package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"harf_sayi/internal/domain/model"
	"harf_sayi/internal/platform/config"
	"harf_sayi/internal/platform/database"

	"github.com/jmoiron/sqlx"
)

// SetupTestDB opens a private in-memory sqlite database with the full schema.
// It is closed automatically when the test ends.
func SetupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	db, err := database.Open(context.Background(), &config.Config{
		DBDriver:    config.DriverSQLite,
		DatabaseURL: ":memory:?_foreign_keys=on",
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// GetTestConfig returns a configuration suitable for router tests.
func GetTestConfig() *config.Config {
	return &config.Config{
		APIPort:            "4000",
		BasePath:           "/api",
		DBDriver:           config.DriverSQLite,
		JWTSecret:          "test-secret",
		JWTExp:             time.Hour,
		AdminUsername:      "admin",
		AdminPassword:      "admin123",
		DemoUsername:       "demo_ogrenci",
		DemoPassword:       "123456",
		CORSAllowedOrigins: []string{"*"},
	}
}

// CreateTestUser inserts a user row directly and returns it.
func CreateTestUser(t *testing.T, db *sqlx.DB, username, password, role string) *model.User {
	t.Helper()

	var id int64
	err := db.Get(&id, `INSERT INTO users (username, password, role) VALUES (?, ?, ?) RETURNING id`, username, password, role)
	if err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return &model.User{ID: id, Username: username, Password: password, Role: role}
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, db *sqlx.DB, table string) int {
	t.Helper()

	var n int
	if err := db.Get(&n, "SELECT COUNT(*) FROM "+table); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		var raw []byte
		switch b := body.(type) {
		case string:
			raw = []byte(b)
		case []byte:
			raw = b
		default:
			raw, _ = json.Marshal(body)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(raw))
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
