package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/teammachinist/tiendaqr/internal"
	"github.com/teammachinist/tiendaqr/internal/logger"
)

var (
	ErrFileNotFound = errors.New("file not found")
	// ErrUpstream wraps every failure of the files service itself.
	ErrUpstream = errors.New("file service error")
)

type FileMetadataResponse struct {
	ID               uuid.UUID `json:"id"`
	Bucket           string    `json:"bucket"`
	Path             string    `json:"path"`
	FileURI          string    `json:"file_uri"`
	FileThumbnailURI string    `json:"file_thumbnail_uri"`
	ContentType      string    `json:"content_type"`
	Size             int64     `json:"size"`
	CreatedAt        time.Time `json:"created_at"`
}

type SignedURLResponse struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

type FileClientInterface interface {
	// Upload stores body under bucket/name. Public buckets return a FileURI;
	// the private bucket returns only the Path.
	Upload(ctx context.Context, bucket, name, contentType string, body io.Reader) (*FileMetadataResponse, error)
	Remove(ctx context.Context, bucket, name string) error
	SignedURL(ctx context.Context, bucket, name string, ttl time.Duration) (*SignedURLResponse, error)
}

type FileClient struct {
	BaseURL      string
	ServiceToken string
	HTTPClient   *http.Client
}

func NewFileClient(baseURL, serviceToken string) *FileClient {
	return &FileClient{
		BaseURL:      baseURL,
		ServiceToken: serviceToken,
		HTTPClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (fc *FileClient) do(req *http.Request, out any) error {
	req.Header.Set(internal.ServiceTokenHeader, fc.ServiceToken)
	if id, ok := logger.RequestID(req.Context()); ok {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := fc.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: request failed: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: failed to read response body: %v", ErrUpstream, err)
	}

	if resp.StatusCode == http.StatusNotFound {
		return ErrFileNotFound
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &e) == nil && e.Error != "" {
			return fmt.Errorf("%w: %s", ErrUpstream, e.Error)
		}
		return fmt.Errorf("%w: unexpected status code: %d, body: %s", ErrUpstream, resp.StatusCode, string(body))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: failed to unmarshal response: %v", ErrUpstream, err)
	}
	return nil
}

func (fc *FileClient) Upload(ctx context.Context, bucket, name, contentType string, body io.Reader) (*FileMetadataResponse, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	if err := w.WriteField("name", name); err != nil {
		return nil, fmt.Errorf("failed to write form: %w", err)
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, name))
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, body); err != nil {
		return nil, fmt.Errorf("failed to copy file: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close form: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1/file/%s", fc.BaseURL, url.PathEscape(bucket))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	var out FileMetadataResponse
	if err := fc.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (fc *FileClient) Remove(ctx context.Context, bucket, name string) error {
	endpoint := fmt.Sprintf("%s/v1/file/%s/%s", fc.BaseURL, url.PathEscape(bucket), url.PathEscape(name))
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return fc.do(req, nil)
}

func (fc *FileClient) SignedURL(ctx context.Context, bucket, name string, ttl time.Duration) (*SignedURLResponse, error) {
	q := url.Values{}
	q.Set("ttl", ttl.String())
	endpoint := fmt.Sprintf("%s/v1/file/%s/%s/signed?%s", fc.BaseURL, url.PathEscape(bucket), url.PathEscape(name), q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	var out SignedURLResponse
	if err := fc.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
