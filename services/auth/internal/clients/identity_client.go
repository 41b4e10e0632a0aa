package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/teammachinist/tiendaqr/internal/logger"
)

var (
	ErrIdentityUnauthorized = errors.New("identity service rejected the token")
	ErrIdentityUpstream     = errors.New("identity service unavailable")
)

// IdentityUser is the subset of the identity service's user object we read.
type IdentityUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// IdentityClientInterface talks to the external passwordless identity
// service (GoTrue-compatible API).
type IdentityClientInterface interface {
	SendMagicLink(ctx context.Context, email, redirectTo string) error
	GetUser(ctx context.Context, accessToken string) (*IdentityUser, error)
	SignOut(ctx context.Context, accessToken string) error
}

type IdentityClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewIdentityClient(baseURL, apiKey string) *IdentityClient {
	return &IdentityClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *IdentityClient) newRequest(ctx context.Context, method, path string, body any, accessToken string) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, r)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", c.APIKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+accessToken)
	}
	if id, ok := logger.RequestID(ctx); ok {
		req.Header.Set("X-Request-ID", id)
	}
	return req, nil
}

func (c *IdentityClient) do(req *http.Request, out any) error {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIdentityUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", ErrIdentityUpstream, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ErrIdentityUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("%w: status %d: %s", ErrIdentityUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to decode response: %v", ErrIdentityUpstream, err)
	}
	return nil
}

// SendMagicLink asks the identity service to email a sign-in link that
// lands on redirectTo.
func (c *IdentityClient) SendMagicLink(ctx context.Context, email, redirectTo string) error {
	path := "/otp"
	if redirectTo != "" {
		path += "?" + url.Values{"redirect_to": {redirectTo}}.Encode()
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, map[string]any{
		"email":       email,
		"create_user": true,
	}, "")
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func (c *IdentityClient) GetUser(ctx context.Context, accessToken string) (*IdentityUser, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/user", nil, accessToken)
	if err != nil {
		return nil, err
	}

	var user IdentityUser
	if err := c.do(req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *IdentityClient) SignOut(ctx context.Context, accessToken string) error {
	req, err := c.newRequest(ctx, http.MethodPost, "/logout", nil, accessToken)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}
