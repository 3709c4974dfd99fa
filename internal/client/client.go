// Package client is a Go client for the login API. It persists the session
// token locally and attaches it to outgoing requests.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AlexVocao/login/internal/model"
)

// MinPasswordLength mirrors the server-side rule so obviously short
// passwords are rejected before a round trip.
const MinPasswordLength = 6

var (
	ErrPasswordsDoNotMatch = errors.New("passwords do not match")
	ErrPasswordTooShort    = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string `json:"message"`
	Code       string `json:"code"`
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// SignupRequest carries registration fields.
type SignupRequest struct {
	Username string  `json:"username"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Address  *string `json:"address,omitempty"`
	Gender   *string `json:"gender,omitempty"`
}

type signupResponse struct {
	Message string           `json:"message"`
	User    model.SignupUser `json:"user"`
}

type loginResponse struct {
	Message string          `json:"message"`
	Token   string          `json:"token"`
	User    model.LoginUser `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type profileResponse struct {
	User model.Profile `json:"user"`
}

// Client talks to the login API.
type Client struct {
	baseURL string
	http    *http.Client
	session SessionStore
}

// New creates a client for baseURL (for example "http://localhost:8080").
func New(baseURL string, session SessionStore) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http: &http.Client{
			Timeout:   15 * time.Second,
			Transport: &BearerTransport{Base: http.DefaultTransport, Session: session},
		},
		session: session,
	}
}

// Signup registers a new account.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*model.SignupUser, string, error) {
	var res signupResponse
	if err := c.post(ctx, "/api/auth/signup", req, &res); err != nil {
		return nil, "", err
	}
	return &res.User, res.Message, nil
}

// Login authenticates and stores the issued token.
func (c *Client) Login(ctx context.Context, usernameOrEmail, password string) (*model.LoginUser, error) {
	var res loginResponse
	body := map[string]string{"usernameOrEmail": usernameOrEmail, "password": password}
	if err := c.post(ctx, "/api/auth/login", body, &res); err != nil {
		return nil, err
	}
	if err := c.session.Save(ctx, res.Token); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return &res.User, nil
}

// Logout discards the stored token. Tokens are stateless so the server is
// not contacted.
func (c *Client) Logout(ctx context.Context) error {
	return c.session.Clear(ctx)
}

// LoggedIn reports whether a token is stored.
func (c *Client) LoggedIn(ctx context.Context) bool {
	_, ok := c.session.Get(ctx)
	return ok
}

// ForgotPassword asks the server to mail a reset link.
func (c *Client) ForgotPassword(ctx context.Context, email string) (string, error) {
	var res messageResponse
	if err := c.post(ctx, "/api/auth/forgot-password", map[string]string{"email": email}, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

// ResetPassword sets a new password using a mailed token. confirm must equal
// newPassword; this is checked locally only.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword, confirm string) (string, error) {
	if newPassword != confirm {
		return "", ErrPasswordsDoNotMatch
	}
	if utf8.RuneCountInString(newPassword) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	var res messageResponse
	body := map[string]string{"token": token, "newPassword": newPassword}
	if err := c.post(ctx, "/api/auth/reset-password", body, &res); err != nil {
		return "", err
	}
	return res.Message, nil
}

// Profile fetches the caller's profile.
func (c *Client) Profile(ctx context.Context) (*model.Profile, error) {
	var res profileResponse
	if err := c.do(ctx, http.MethodGet, "/api/profile/me", nil, &res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

func (c *Client) post(ctx context.Context, path string, body, out interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var payload *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(b)
	}

	var req *http.Request
	var err error
	if payload != nil {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	}
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		_ = json.NewDecoder(resp.Body).Decode(apiErr)
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
