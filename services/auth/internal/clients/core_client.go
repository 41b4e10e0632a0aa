package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/teammachinist/tiendaqr/internal"
	"github.com/teammachinist/tiendaqr/internal/logger"
)

type CoreClientInterface interface {
	// EnsureProfile creates the merchant profile if it does not exist yet.
	EnsureProfile(ctx context.Context, userID, email string) (bool, error)
}

type CoreClient struct {
	BaseURL      string
	ServiceToken string
	HTTPClient   *http.Client
}

func NewCoreClient(baseURL, serviceToken string) *CoreClient {
	return &CoreClient{
		BaseURL:      baseURL,
		ServiceToken: serviceToken,
		HTTPClient:   &http.Client{Timeout: 5 * time.Second},
	}
}

type createProfileRequest struct {
	UserID string `json:"user_id"`
	Email  string `json:"email,omitempty"`
}

type createProfileResponse struct {
	ID      string `json:"id"`
	Created bool   `json:"created"`
}

func (c *CoreClient) EnsureProfile(ctx context.Context, userID, email string) (bool, error) {
	body, err := json.Marshal(createProfileRequest{UserID: userID, Email: email})
	if err != nil {
		return false, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/internal/profiles", bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(internal.ServiceTokenHeader, c.ServiceToken)
	if id, ok := logger.RequestID(ctx); ok {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to call core service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return false, fmt.Errorf("core service returned status %d", resp.StatusCode)
	}

	var out createProfileResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}
	return out.Created, nil
}
