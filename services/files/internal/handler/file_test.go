package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teammachinist/tiendaqr/internal"
	"github.com/teammachinist/tiendaqr/services/files/internal/model"
	"github.com/teammachinist/tiendaqr/services/files/internal/repository"
	"github.com/teammachinist/tiendaqr/services/files/internal/service"
	"github.com/teammachinist/tiendaqr/services/files/internal/storage"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	objects := storage.NewMemoryStorage("http://files.local")
	svc := service.NewFileService(repository.NewMemoryFileRepository(), objects, service.DefaultBuckets, 1<<20)
	return NewRouter(NewFileHandler(svc, 1<<20), NewHealthHandler(nil, CheckerFunc(objects.Ping)), testServiceToken)
}

const testServiceToken = "files-test-token"

func uploadRequest(t *testing.T, bucket, name, contentType string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if name != "" {
		require.NoError(t, w.WriteField("name", name))
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="upload.bin"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, _ = part.Write(data)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/file/"+bucket, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func smallPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf.Bytes()
}

// serve calls the router as core does, with the service token.
func serve(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	req.Header.Set(internal.ServiceTokenHeader, testServiceToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestFileLifecycle(t *testing.T) {
	router := newTestRouter(t)

	rec := serve(router, uploadRequest(t, "comprobantes", "m-1700000000000.png", "image/png", smallPNG(t)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var f model.File
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &f))
	assert.Equal(t, "comprobantes", f.Bucket)
	assert.Equal(t, "m-1700000000000.png", f.Path)
	assert.Empty(t, f.FileURI)

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/v1/file/"+f.ID.String(), nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/v1/file/comprobantes/m-1700000000000.png/signed?ttl=1h", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var signed model.SignedURL
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signed))
	assert.Contains(t, signed.URL, "expires=3600")

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/v1/file/comprobantes/m-1700000000000.png/signed?ttl=soon", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(router, httptest.NewRequest(http.MethodDelete, "/v1/file/comprobantes/m-1700000000000.png", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = serve(router, httptest.NewRequest(http.MethodDelete, "/v1/file/comprobantes/m-1700000000000.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/v1/file/"+f.ID.String(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUploadPublicReturnsURL(t *testing.T) {
	router := newTestRouter(t)

	rec := serve(router, uploadRequest(t, "avatars", "", "image/png", smallPNG(t)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var f model.File
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &f))
	assert.Equal(t, "upload.bin", f.Path)
	assert.Equal(t, "http://files.local/avatars/upload.bin", f.FileURI)
}

func TestUploadErrors(t *testing.T) {
	router := newTestRouter(t)

	rec := serve(router, uploadRequest(t, "avatars", "doc.pdf", "application/pdf", []byte("%PDF")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "file must be an image")

	rec = serve(router, uploadRequest(t, "secret", "a.png", "image/png", smallPNG(t)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid bucket")

	rec = serve(router, httptest.NewRequest(http.MethodGet, "/v1/file/not-a-uuid", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRequestIDIsEchoed(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rec := serve(router, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestReadiness(t *testing.T) {
	router := newTestRouter(t)
	rec := serve(router, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	down := NewHealthHandler(CheckerFunc(func(context.Context) error { return errors.New("down") }), nil)
	rec = httptest.NewRecorder()
	down.ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestFileRoutesRequireServiceToken(t *testing.T) {
	router := newTestRouter(t)

	requests := []*http.Request{
		uploadRequest(t, "comprobantes", "m-1.png", "image/png", smallPNG(t)),
		httptest.NewRequest(http.MethodGet, "/v1/file/comprobantes/m-1.png/signed?ttl=168h", nil),
		httptest.NewRequest(http.MethodDelete, "/v1/file/comprobantes/m-1.png", nil),
	}
	for _, req := range requests {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, req.Method+" "+req.URL.Path)
	}

	req := uploadRequest(t, "comprobantes", "m-1.png", "image/png", smallPNG(t))
	req.Header.Set(internal.ServiceTokenHeader, "wrong")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// health stays open for the orchestrator
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPrivateUploadIsWriteOnce(t *testing.T) {
	router := newTestRouter(t)

	rec := serve(router, uploadRequest(t, "comprobantes", "m-1.png", "image/png", smallPNG(t)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = serve(router, uploadRequest(t, "comprobantes", "m-1.png", "image/png", smallPNG(t)))
	assert.Equal(t, http.StatusConflict, rec.Code)

	// public images may be replaced
	rec = serve(router, uploadRequest(t, "avatars", "logo.png", "image/png", smallPNG(t)))
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = serve(router, uploadRequest(t, "avatars", "logo.png", "image/png", smallPNG(t)))
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestUploadAcceptsUppercaseMediaType(t *testing.T) {
	router := newTestRouter(t)

	rec := serve(router, uploadRequest(t, "productos", "1-taza.png", "IMAGE/PNG", smallPNG(t)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var f model.File
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &f))
	assert.Equal(t, "image/png", f.ContentType)
}
