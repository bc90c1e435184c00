// Package client talks to the harf-sayi HTTP API and remembers the logged-in
// user between invocations.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"harf_sayi/internal/domain/model"
)

const (
	DefaultBaseURL = "http://localhost:4000/api"
	BaseURLEnv     = "HARF_API_URL"
)

// ResolveBaseURL picks explicit, then $HARF_API_URL, then DefaultBaseURL.
func ResolveBaseURL(explicit string) string {
	base := explicit
	if base == "" {
		base = os.Getenv(BaseURLEnv)
	}
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/")
}

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("api error: status %d", e.StatusCode)
	}
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Body)
}

type Client struct {
	baseURL string
	http    *http.Client
	session *SessionStore
}

func New(baseURL string, session *SessionStore) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		session: session,
	}
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type SaveResponse struct {
	OK     bool             `json:"ok"`
	Result model.TestResult `json:"result"`
}

func (c *Client) Register(ctx context.Context, username, password string) (*CurrentUser, error) {
	var u CurrentUser
	if err := c.do(ctx, http.MethodPost, "/auth/register", credentials{username, password}, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login authenticates and stores the returned user as the current session.
func (c *Client) Login(ctx context.Context, username, password string) (*CurrentUser, error) {
	var u CurrentUser
	if err := c.do(ctx, http.MethodPost, "/auth/login", credentials{username, password}, &u); err != nil {
		return nil, err
	}
	if err := c.session.Save(&u); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return &u, nil
}

func (c *Client) Logout() error {
	return c.session.Clear()
}

func (c *Client) CurrentUser() *CurrentUser {
	return c.session.Load()
}

// SaveTestResult posts payload under testName for the current user. A string
// score is converted to a number; one that does not parse is sent as null.
func (c *Client) SaveTestResult(ctx context.Context, testName string, payload map[string]interface{}) (*SaveResponse, error) {
	body := make(map[string]interface{}, len(payload)+2)
	body["userId"] = nil
	if u := c.session.Load(); u != nil {
		body["userId"] = u.ID
	}
	body["testName"] = testName
	for k, v := range payload {
		body[k] = v
	}
	if score, ok := body["score"]; ok && score != nil {
		body["score"] = coerceNumber(score)
	}

	var resp SaveResponse
	if err := c.do(ctx, http.MethodPost, "/test/save", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func coerceNumber(v interface{}) interface{} {
	switch n := v.(type) {
	case float64, float32, int, int64, int32, json.Number:
		return n
	case bool:
		if n {
			return 1
		}
		return 0
	case string:
		s := strings.TrimSpace(n)
		if s == "" {
			return 0
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		return f
	default:
		return nil
	}
}

// MyResults lists the current user's results, or the server's fallback
// user's results when nobody is logged in.
func (c *Client) MyResults(ctx context.Context) ([]model.TestResult, error) {
	path := "/test/my-results"
	if u := c.session.Load(); u != nil && u.ID != 0 {
		path += "?userId=" + strconv.FormatInt(u.ID, 10)
	}
	var resp struct {
		Results []model.TestResult `json:"results"`
	}
	if err := c.do(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *Client) AdminResults(ctx context.Context) ([]model.TestResultWithUsername, error) {
	var resp struct {
		Results []model.TestResultWithUsername `json:"results"`
	}
	if err := c.do(ctx, http.MethodGet, "/admin/all-results", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *Client) Users(ctx context.Context) ([]model.User, error) {
	var resp struct {
		Users []model.User `json:"users"`
	}
	if err := c.do(ctx, http.MethodGet, "/admin/users", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Users, nil
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if u := c.session.Load(); u != nil && u.Token != "" {
		req.Header.Set("Authorization", "Bearer "+u.Token)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
		return &APIError{StatusCode: res.StatusCode, Body: strings.TrimSpace(string(text))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
