package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"harf_sayi/internal/api"
	"harf_sayi/internal/app/service"
	"harf_sayi/internal/common/security"
	"harf_sayi/internal/domain/model"
	"harf_sayi/internal/domain/repository"
	"harf_sayi/internal/testutil"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()
	db := testutil.SetupTestDB(t)
	cfg := testutil.GetTestConfig()

	tokens := security.NewTokenIssuer([]byte(cfg.JWTSecret), cfg.JWTExp)
	authService := service.NewAuthService(repository.NewUserRepository(db), tokens,
		service.Account{Username: cfg.AdminUsername, Password: cfg.AdminPassword, Role: model.RoleAdmin},
		service.Account{Username: cfg.DemoUsername, Password: cfg.DemoPassword, Role: model.RoleUser},
	)
	boot, err := authService.EnsureDefaultUsers(context.Background())
	if err != nil {
		t.Fatalf("EnsureDefaultUsers failed: %v", err)
	}
	resultService := service.NewResultService(repository.NewTestResultRepository(db), nil, boot.Users[1].ID)

	srv := httptest.NewServer(api.NewRouter(cfg, authService, resultService, tokens))
	t.Cleanup(srv.Close)

	session := NewSessionStore(filepath.Join(t.TempDir(), "harf", "current_user.json"))
	return New(srv.URL+"/api/", session)
}

func TestResolveBaseURL(t *testing.T) {
	t.Setenv(BaseURLEnv, "")
	if got := ResolveBaseURL(""); got != DefaultBaseURL {
		t.Errorf("default = %q", got)
	}

	t.Setenv(BaseURLEnv, "http://sscsl.example:4000/api/")
	if got := ResolveBaseURL(""); got != "http://sscsl.example:4000/api" {
		t.Errorf("env = %q", got)
	}
	if got := ResolveBaseURL("http://other/api"); got != "http://other/api" {
		t.Errorf("explicit = %q", got)
	}
}

func TestSessionStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "current_user.json")
	s := NewSessionStore(path)

	if s.Load() != nil {
		t.Fatal("empty store should load nil")
	}
	if err := s.Clear(); err != nil {
		t.Errorf("Clear on empty store: %v", err)
	}

	if err := s.Save(&CurrentUser{ID: 2, Username: "demo_ogrenci", Role: "user"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	u := s.Load()
	if u == nil || u.ID != 2 || u.Username != "demo_ogrenci" {
		t.Errorf("Load = %+v", u)
	}

	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	if s.Load() != nil {
		t.Error("corrupt file should load nil")
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Error("session file should be removed")
	}
}

func TestLoginSaveAndFetch(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	user, err := c.Login(ctx, "demo_ogrenci", "123456")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if cur := c.CurrentUser(); cur == nil || cur.ID != user.ID || cur.Token == "" {
		t.Fatalf("session = %+v", cur)
	}

	saved, err := c.SaveTestResult(ctx, "digit-span", map[string]interface{}{
		"score": "7",
		"hits":  5,
		"level": 3,
	})
	if err != nil {
		t.Fatalf("SaveTestResult failed: %v", err)
	}
	if !saved.OK || saved.Result.UserID != user.ID || saved.Result.Score != 7 {
		t.Errorf("saved = %+v", saved)
	}

	results, err := c.MyResults(ctx)
	if err != nil {
		t.Fatalf("MyResults failed: %v", err)
	}
	if len(results) != 1 || results[0].TestName != "digit-span" {
		t.Errorf("results = %+v", results)
	}
	fields, err := results[0].Extra.Fields()
	if err != nil || string(fields["level"]) != "3" {
		t.Errorf("extra = %s (%v)", results[0].Extra, err)
	}
}

func TestSaveUnparseableScoreIsRejected(t *testing.T) {
	c := newTestClient(t)

	_, err := c.SaveTestResult(context.Background(), "t", map[string]interface{}{"score": "high"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("error = %v, want 400 APIError", err)
	}
	if apiErr.Body == "" {
		t.Error("error body should carry the server message")
	}
}

func TestLoginFailureKeepsSessionEmpty(t *testing.T) {
	c := newTestClient(t)

	_, err := c.Login(context.Background(), "admin", "wrong")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("error = %v, want 401", err)
	}
	if c.CurrentUser() != nil {
		t.Error("failed login must not store a session")
	}
}

func TestAdminCalls(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	if _, err := c.Register(ctx, "zeynep", "pw"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := c.SaveTestResult(ctx, "t", map[string]interface{}{"score": 1}); err != nil {
		t.Fatalf("SaveTestResult failed: %v", err)
	}

	users, err := c.Users(ctx)
	if err != nil {
		t.Fatalf("Users failed: %v", err)
	}
	if len(users) != 3 || users[0].Username != "zeynep" {
		t.Errorf("users = %+v", users)
	}

	results, err := c.AdminResults(ctx)
	if err != nil {
		t.Fatalf("AdminResults failed: %v", err)
	}
	if len(results) != 1 || results[0].Username != "demo_ogrenci" {
		t.Errorf("results = %+v", results)
	}

	if err := c.Logout(); err != nil {
		t.Errorf("Logout failed: %v", err)
	}
}

func TestCoerceNumber(t *testing.T) {
	tests := []struct {
		in   interface{}
		want interface{}
	}{
		{"7", 7.0},
		{" 2.5 ", 2.5},
		{"", 0},
		{"high", nil},
		{true, 1},
		{3, 3},
		{[]int{1}, nil},
	}
	for _, tt := range tests {
		if got := coerceNumber(tt.in); got != tt.want {
			t.Errorf("coerceNumber(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
