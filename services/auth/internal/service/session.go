package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teammachinist/tiendaqr/internal"
	"github.com/teammachinist/tiendaqr/internal/logger"
	"github.com/teammachinist/tiendaqr/services/auth/internal/clients"
	"github.com/teammachinist/tiendaqr/services/auth/internal/model"
)

var (
	ErrUnauthenticated = errors.New("not signed in")
	ErrRevoked         = errors.New("session has been signed out")
)

// Cache is the redis-backed store for sessions and revocations.
type Cache interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Get(ctx context.Context, key string, dest interface{}) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}

type SessionServiceInterface interface {
	SendLoginLink(ctx context.Context, email string) error
	CurrentSession(ctx context.Context, accessToken string) (*model.SessionResponse, error)
	Logout(ctx context.Context, accessToken string) error
}

type SessionOptions struct {
	SiteURL  string
	CacheTTL time.Duration
}

type SessionService struct {
	jwt      *internal.JWTService
	identity clients.IdentityClientInterface
	core     clients.CoreClientInterface
	cache    Cache
	siteURL  string
	cacheTTL time.Duration
	now      func() time.Time
}

// NewSessionService builds the session gateway. cache may be nil, which
// disables session caching and local revocation.
func NewSessionService(
	jwtService *internal.JWTService,
	identity clients.IdentityClientInterface,
	core clients.CoreClientInterface,
	cache Cache,
	opts SessionOptions,
) SessionServiceInterface {
	return &SessionService{
		jwt:      jwtService,
		identity: identity,
		core:     core,
		cache:    cache,
		siteURL:  strings.TrimRight(opts.SiteURL, "/"),
		cacheTTL: opts.CacheTTL,
		now:      time.Now,
	}
}

func sessionKey(userID string) string { return "auth:session:" + userID }

func revokedKey(token string) string { return internal.RevokedTokenKey(token) }

// SignedOut is the session answer for anonymous callers.
func SignedOut() *model.SessionResponse {
	return &model.SessionResponse{RedirectTo: model.RedirectLanding}
}

func (s *SessionService) CallbackURL() string {
	return s.siteURL + "/auth/callback"
}

func (s *SessionService) SendLoginLink(ctx context.Context, email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := s.identity.SendMagicLink(ctx, email, s.CallbackURL()); err != nil {
		return fmt.Errorf("failed to send login link: %w", err)
	}
	logger.InfoCtx(ctx, "Login link sent")
	return nil
}

func (s *SessionService) CurrentSession(ctx context.Context, accessToken string) (*model.SessionResponse, error) {
	claims, err := s.jwt.ValidateToken(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	if s.cache != nil {
		revoked, err := s.cache.Exists(ctx, revokedKey(accessToken))
		if err != nil {
			logger.WarnCtx(ctx, "Revocation check failed", "error", err.Error())
		} else if revoked {
			return nil, ErrRevoked
		}

		var cached model.SessionUser
		if err := s.cache.Get(ctx, sessionKey(claims.UserID()), &cached); err == nil && cached.ID == claims.UserID() {
			return authenticated(cached), nil
		}
	}

	user, err := s.identity.GetUser(ctx, accessToken)
	if err != nil {
		if errors.Is(err, clients.ErrIdentityUnauthorized) {
			return nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
		}
		return nil, err
	}
	if user.ID != claims.UserID() {
		return nil, fmt.Errorf("%w: token subject does not match account", ErrUnauthenticated)
	}

	// first sighting of this account in the cache window
	created, err := s.core.EnsureProfile(ctx, user.ID, user.Email)
	if err != nil {
		logger.ErrorCtx(ctx, "Failed to ensure merchant profile", "user_id", user.ID, "error", err.Error())
	} else if created {
		logger.InfoCtx(ctx, "Merchant profile created", "user_id", user.ID)
	}

	sessionUser := model.SessionUser{ID: user.ID, Email: user.Email}
	if s.cache != nil {
		if err := s.cache.Set(ctx, sessionKey(user.ID), sessionUser, s.ttlFor(claims)); err != nil {
			logger.WarnCtx(ctx, "Failed to cache session", "error", err.Error())
		}
	}

	return authenticated(sessionUser), nil
}

func authenticated(u model.SessionUser) *model.SessionResponse {
	return &model.SessionResponse{Authenticated: true, User: &u, RedirectTo: model.RedirectDashboard}
}

// ttlFor caps the cache TTL at the token's remaining lifetime.
func (s *SessionService) ttlFor(claims *internal.Claims) time.Duration {
	ttl := s.cacheTTL
	if claims.ExpiresAt != nil {
		if left := claims.ExpiresAt.Sub(s.now()); left < ttl {
			ttl = left
		}
	}
	if ttl <= 0 {
		ttl = time.Second
	}
	return ttl
}

func (s *SessionService) Logout(ctx context.Context, accessToken string) error {
	claims, err := s.jwt.ValidateToken(accessToken)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	if err := s.identity.SignOut(ctx, accessToken); err != nil && !errors.Is(err, clients.ErrIdentityUnauthorized) {
		logger.WarnCtx(ctx, "Identity sign-out failed, revoking locally", "error", err.Error())
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, revokedKey(accessToken), true, s.remaining(claims)); err != nil {
			return fmt.Errorf("failed to revoke session: %w", err)
		}
		if err := s.cache.Delete(ctx, sessionKey(claims.UserID())); err != nil {
			logger.WarnCtx(ctx, "Failed to drop cached session", "error", err.Error())
		}
	}

	logger.InfoCtx(ctx, "Signed out", "user_id", claims.UserID())
	return nil
}

// remaining is how long a revocation must outlive the token.
func (s *SessionService) remaining(claims *internal.Claims) time.Duration {
	if claims.ExpiresAt == nil {
		return 24 * time.Hour
	}
	left := claims.ExpiresAt.Sub(s.now())
	if left <= 0 {
		return time.Second
	}
	return left
}
