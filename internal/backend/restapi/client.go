// Package restapi implements the service.Service interface against the to-do REST API.
package restapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"

	"todo/internal/config"
	"todo/internal/logging"
	"todo/internal/service"
)

const (
	// APITimeout is the default timeout for API calls.
	APITimeout = 5 * time.Second

	// maxBodySize caps how much of a response body is read.
	maxBodySize = 4 << 20

	requestIDHeader = "X-Request-ID"
)

// Client implements service.Service over HTTP.
type Client struct {
	base    *url.URL
	anon    *http.Client // signup, verify-email, login
	authed  *http.Client // attaches the bearer token
	timeout time.Duration
}

var _ service.Service = (*Client)(nil)

// New creates a client for the API configured in cfg.
// The persisted credentials in cfg supply the bearer token for each request.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	c, err := NewWithHTTPClient(cfg.Settings.APIURL, &http.Client{}, cfg)
	if err != nil {
		return nil, err
	}
	c.timeout = cfg.Settings.Timeout
	return c, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client and token source (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client, ts oauth2.TokenSource) (*Client, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api url: %s", baseURL)
	}

	authed := *httpClient
	authed.Transport = &oauth2.Transport{Source: ts, Base: httpClient.Transport}

	return &Client{
		base:    base,
		anon:    httpClient,
		authed:  &authed,
		timeout: APITimeout,
	}, nil
}

// Signup registers an account.
func (c *Client) Signup(ctx context.Context, req service.SignupRequest) (service.SignupResult, error) {
	var out service.SignupResult
	if err := c.do(ctx, c.anon, http.MethodPost, "auth/signup", req, &out); err != nil {
		return service.SignupResult{}, err
	}
	return out, nil
}

// VerifyEmail confirms an account.
func (c *Client) VerifyEmail(ctx context.Context, token string) error {
	body := struct {
		Token string `json:"token"`
	}{token}
	return c.do(ctx, c.anon, http.MethodPost, "auth/verify-email", body, nil)
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (service.LoginResult, error) {
	body := struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}{email, password}

	var out service.LoginResult
	if err := c.do(ctx, c.anon, http.MethodPost, "auth/login", body, &out); err != nil {
		return service.LoginResult{}, err
	}
	if out.Token == "" {
		return service.LoginResult{}, &service.APIError{Status: http.StatusOK}
	}
	return out, nil
}

// Me returns the token owner's profile.
func (c *Client) Me(ctx context.Context) (service.User, error) {
	var out service.User
	if err := c.do(ctx, c.authed, http.MethodGet, "auth/me", nil, &out); err != nil {
		return service.User{}, err
	}
	if out.ID == "" && out.Email == "" {
		return service.User{}, &service.APIError{Status: http.StatusOK}
	}
	return out, nil
}

// ListTodos returns all tasks.
func (c *Client) ListTodos(ctx context.Context) ([]service.Todo, error) {
	var out []service.Todo
	if err := c.do(ctx, c.authed, http.MethodGet, "todos", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTodo returns a single task.
func (c *Client) GetTodo(ctx context.Context, id string) (service.Todo, error) {
	var out service.Todo
	if err := c.do(ctx, c.authed, http.MethodGet, todoPath(id), nil, &out); err != nil {
		return service.Todo{}, err
	}
	return out, nil
}

// CreateTodo creates a task.
func (c *Client) CreateTodo(ctx context.Context, in service.TodoInput) (service.Todo, error) {
	var out service.Todo
	if err := c.do(ctx, c.authed, http.MethodPost, "todos", in, &out); err != nil {
		return service.Todo{}, err
	}
	return out, nil
}

// UpdateTodo applies a partial update.
func (c *Client) UpdateTodo(ctx context.Context, id string, patch service.TodoPatch) (service.Todo, error) {
	var out service.Todo
	if err := c.do(ctx, c.authed, http.MethodPatch, todoPath(id), patch, &out); err != nil {
		return service.Todo{}, err
	}
	return out, nil
}

// DeleteTodo deletes a task.
func (c *Client) DeleteTodo(ctx context.Context, id string) error {
	return c.do(ctx, c.authed, http.MethodDelete, todoPath(id), nil, nil)
}

// ToggleTodo flips a task's completion.
func (c *Client) ToggleTodo(ctx context.Context, id string) (service.Todo, error) {
	var out service.Todo
	if err := c.do(ctx, c.authed, http.MethodPatch, todoPath(id)+"/toggle", nil, &out); err != nil {
		return service.Todo{}, err
	}
	return out, nil
}

// ListCategories returns the category reference data.
func (c *Client) ListCategories(ctx context.Context) ([]service.Category, error) {
	var out []service.Category
	if err := c.do(ctx, c.authed, http.MethodGet, "categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPriorities returns the priority reference data.
func (c *Client) ListPriorities(ctx context.Context) ([]service.Priority, error) {
	var out []service.Priority
	if err := c.do(ctx, c.authed, http.MethodGet, "priorities", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func todoPath(id string) string {
	return "todos/" + url.PathEscape(id)
}

// do sends one request and decodes the envelope's data into out (when non-nil).
func (c *Client) do(ctx context.Context, hc *http.Client, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	requestID := uuid.NewString()
	req.Header.Set(requestIDHeader, requestID)

	log := logging.From(ctx, "restapi")
	start := time.Now()

	resp, err := hc.Do(req)
	if err != nil {
		log.Debug().Str("request_id", requestID).Str("method", method).Str("path", path).Err(err).Msg("api request failed")
		return wrapError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return wrapError(err)
	}

	log.Debug().
		Str("request_id", requestID).
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("api request")

	return decode(resp.StatusCode, raw, out)
}

// decode unwraps the envelope. Anything other than success=true becomes an *service.APIError.
func decode(status int, raw []byte, out any) error {
	var env envelope[json.RawMessage]
	if err := json.Unmarshal(raw, &env); err != nil {
		return &service.APIError{Status: status}
	}
	if !env.Success {
		return &service.APIError{
			Status: status,
			Code:   string(env.ResponseCode),
			Desc:   env.ResponseDesc,
		}
	}
	if out == nil || len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &service.APIError{Status: status, Code: string(env.ResponseCode)}
	}
	return nil
}

// wrapError classifies transport failures.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	// No token on disk: oauth2.Transport refuses before dialing
	if errors.Is(err, config.ErrNoToken) {
		return fmt.Errorf("%w: not logged in (run: todo login)", service.ErrUnauthorized)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: request timed out", service.ErrNetwork)
	}

	return fmt.Errorf("%w: %w", service.ErrNetwork, err)
}
