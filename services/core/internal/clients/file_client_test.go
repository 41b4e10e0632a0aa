package clients

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teammachinist/tiendaqr/internal"
)

func TestUploadSendsMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/file/comprobantes", r.URL.Path)
		assert.Equal(t, "svc-token", r.Header.Get(internal.ServiceTokenHeader))

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "m1-1700000000000.png", r.FormValue("name"))

		f, hdr, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		assert.Equal(t, "image/png", hdr.Header.Get("Content-Type"))
		b, _ := io.ReadAll(f)
		assert.Equal(t, "png-bytes", string(b))

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(FileMetadataResponse{
			ID: uuid.New(), Bucket: "comprobantes", Path: "m1-1700000000000.png",
		})
	}))
	defer srv.Close()

	fc := NewFileClient(srv.URL, "svc-token")
	got, err := fc.Upload(context.Background(), "comprobantes", "m1-1700000000000.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "m1-1700000000000.png", got.Path)
	assert.Empty(t, got.FileURI)
}

func TestRemoveNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "svc-token", r.Header.Get(internal.ServiceTokenHeader))
		assert.Equal(t, "/v1/file/productos/missing.jpg", r.URL.Path)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	err := NewFileClient(srv.URL, "svc-token").Remove(context.Background(), "productos", "missing.jpg")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestSignedURL(t *testing.T) {
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/file/comprobantes/p.png/signed", r.URL.Path)
		assert.Equal(t, "svc-token", r.Header.Get(internal.ServiceTokenHeader))
		assert.Equal(t, "1h0m0s", r.URL.Query().Get("ttl"))
		_ = json.NewEncoder(w).Encode(SignedURLResponse{URL: "http://minio/p.png?sig=1", ExpiresAt: expires})
	}))
	defer srv.Close()

	got, err := NewFileClient(srv.URL, "svc-token").SignedURL(context.Background(), "comprobantes", "p.png", time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "http://minio/p.png?sig=1", got.URL)
	assert.True(t, expires.Equal(got.ExpiresAt))
}

func TestUpstreamErrorCarriesMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"bucket unavailable"}`))
	}))
	defer srv.Close()

	_, err := NewFileClient(srv.URL, "svc-token").Upload(context.Background(), "avatars", "a.png", "image/png", strings.NewReader("x"))
	require.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "bucket unavailable")
}

func TestUnreachableServer(t *testing.T) {
	fc := NewFileClient("http://127.0.0.1:1", "svc-token")
	fc.HTTPClient.Timeout = time.Second
	_, err := fc.SignedURL(context.Background(), "comprobantes", "p.png", time.Hour)
	assert.ErrorIs(t, err, ErrUpstream)
}
