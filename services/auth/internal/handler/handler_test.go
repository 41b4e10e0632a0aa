package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teammachinist/tiendaqr/internal"
	"github.com/teammachinist/tiendaqr/services/auth/internal/clients"
	"github.com/teammachinist/tiendaqr/services/auth/internal/model"
	"github.com/teammachinist/tiendaqr/services/auth/internal/service"
)

type stubSessions struct {
	linkEmail string
	linkErr   error
	sessions  map[string]*model.SessionResponse
	revoked   map[string]bool
	loggedOut []string
}

func (s *stubSessions) SendLoginLink(_ context.Context, email string) error {
	s.linkEmail = email
	return s.linkErr
}

func (s *stubSessions) CurrentSession(_ context.Context, token string) (*model.SessionResponse, error) {
	if s.revoked[token] {
		return nil, service.ErrRevoked
	}
	if r, ok := s.sessions[token]; ok {
		return r, nil
	}
	return nil, service.ErrUnauthenticated
}

func (s *stubSessions) Logout(_ context.Context, token string) error {
	if _, ok := s.sessions[token]; !ok {
		return service.ErrUnauthenticated
	}
	s.loggedOut = append(s.loggedOut, token)
	return nil
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func newTestRouter(sessions *stubSessions, cache Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	jwtService := internal.NewJWTService(&internal.JWTConfig{Key: "test-secret", Duration: time.Hour})
	return NewRouter(NewSessionHandler(sessions, jwtService), NewHealthHandler(cache))
}

func do(t *testing.T, router http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(&stubSessions{}, stubPinger{err: errors.New("redis down")})

	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/healthz", "", "").Code)
	// cache is optional for readiness
	assert.Equal(t, http.StatusOK, do(t, router, http.MethodGet, "/readyz", "", "").Code)
}

func TestRequestIDEchoed(t *testing.T) {
	router := newTestRouter(&stubSessions{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}

func TestLoginWithEmail(t *testing.T) {
	sessions := &stubSessions{}
	router := newTestRouter(sessions, nil)

	rec := do(t, router, http.MethodPost, "/v1/login/email", `{"email":"m@example.com"}`, "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	var resp model.MagicLinkResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "m@example.com", resp.Email)
	assert.Equal(t, "m@example.com", sessions.linkEmail)

	rec = do(t, router, http.MethodPost, "/v1/login/email", `{"email":"not-an-email"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, router, http.MethodPost, "/v1/login/email", `{}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	sessions.linkErr = clients.ErrIdentityUpstream
	rec = do(t, router, http.MethodPost, "/v1/login/email", `{"email":"m@example.com"}`, "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestGetSession(t *testing.T) {
	sessions := &stubSessions{
		sessions: map[string]*model.SessionResponse{
			"good": {Authenticated: true, User: &model.SessionUser{ID: "u-1", Email: "m@example.com"}, RedirectTo: model.RedirectDashboard},
		},
		revoked: map[string]bool{"old": true},
	}
	router := newTestRouter(sessions, nil)

	decode := func(rec *httptest.ResponseRecorder) model.SessionResponse {
		var r model.SessionResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &r))
		return r
	}

	rec := do(t, router, http.MethodGet, "/v1/session", "", "good")
	require.Equal(t, http.StatusOK, rec.Code)
	s := decode(rec)
	assert.True(t, s.Authenticated)
	assert.Equal(t, "/dashboard", s.RedirectTo)
	assert.Equal(t, "u-1", s.User.ID)

	for _, token := range []string{"", "old", "unknown"} {
		rec = do(t, router, http.MethodGet, "/v1/session", "", token)
		require.Equal(t, http.StatusOK, rec.Code, token)
		s = decode(rec)
		assert.False(t, s.Authenticated, token)
		assert.Equal(t, "/", s.RedirectTo, token)
	}
}

func TestLogout(t *testing.T) {
	sessions := &stubSessions{
		sessions: map[string]*model.SessionResponse{"good": {Authenticated: true}},
	}
	router := newTestRouter(sessions, nil)

	rec := do(t, router, http.MethodPost, "/v1/logout", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, router, http.MethodPost, "/v1/logout", "", "garbage")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, router, http.MethodPost, "/v1/logout", "", "good")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"good"}, sessions.loggedOut)

	var s model.SessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	assert.False(t, s.Authenticated)
	assert.Equal(t, "/", s.RedirectTo)
}
