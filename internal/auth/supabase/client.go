package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ekip-platform/ekip-api/internal/auth/domain"
)

// Client is a minimal Supabase Auth (GoTrue) client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *Client) Configured() bool {
	return c != nil && c.baseURL != "" && c.apiKey != ""
}

// GetUser resolves an access token to its user. Any non-2xx answer from
// Supabase is reported as domain.ErrInvalidToken.
func (c *Client) GetUser(ctx context.Context, token string) (*domain.AuthUser, error) {
	if !c.Configured() {
		return nil, domain.ErrNotConfigured
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call supabase auth: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden ||
		resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusBadRequest {
		return nil, domain.ErrInvalidToken
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("supabase auth returned status %d: %s", resp.StatusCode, string(body))
	}

	var user domain.AuthUser
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	if user.ID == "" {
		return nil, domain.ErrInvalidToken
	}
	return &user, nil
}

type passwordGrant struct {
	Email              string `json:"email"`
	Password           string `json:"password"`
	GoTrueMetaSecurity *struct {
		CaptchaToken string `json:"captcha_token"`
	} `json:"gotrue_meta_security,omitempty"`
}

// SignInWithPassword exchanges credentials for a session.
func (c *Client) SignInWithPassword(ctx context.Context, email, password, captchaToken string) (*domain.Session, error) {
	if !c.Configured() {
		return nil, domain.ErrNotConfigured
	}

	body := passwordGrant{Email: email, Password: password}
	if captchaToken != "" {
		body.GoTrueMetaSecurity = &struct {
			CaptchaToken string `json:"captcha_token"`
		}{CaptchaToken: captchaToken}
	}
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal credentials: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/v1/token?grant_type=password", bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call supabase auth: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return nil, domain.ErrInvalidCredentials
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("supabase auth returned status %d", resp.StatusCode)
	}

	var session domain.Session
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if session.AccessToken == "" || session.User == nil {
		return nil, fmt.Errorf("supabase auth returned an empty session")
	}
	return &session, nil
}
