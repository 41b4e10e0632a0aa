package internal

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/teammachinist/tiendaqr/internal/logger"
)

// Errors
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrMissingToken = errors.New("authorization token required")
	ErrRevokedToken = errors.New("token has been revoked")
)

// Claims issued by the identity service. The subject is the account id,
// which is also the merchant id and the profile id.
type Claims struct {
	Email string `json:"email,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

func (c *Claims) UserID() string {
	return c.Subject
}

type JWTConfig struct {
	Key      string
	Duration time.Duration
	Issuer   string
	Audience string
}

// RevocationStore is the key lookup behind sign-out revocation;
// CacheService satisfies it.
type RevocationStore interface {
	Exists(ctx context.Context, key string) (bool, error)
}

type JWTService struct {
	config      *JWTConfig
	revocations RevocationStore
}

func NewJWTService(config *JWTConfig) *JWTService {
	return &JWTService{config: config}
}

// WithRevocations makes FiberMiddleware reject signed-out tokens.
func (j *JWTService) WithRevocations(store RevocationStore) *JWTService {
	j.revocations = store
	return j
}

// RevokedTokenKey is the cache key marking token as signed out.
func RevokedTokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "auth:revoked:" + hex.EncodeToString(sum[:])
}

// IsRevoked reports whether token was signed out. Without a store nothing is revoked.
func (j *JWTService) IsRevoked(ctx context.Context, token string) (bool, error) {
	if j.revocations == nil {
		return false, nil
	}
	return j.revocations.Exists(ctx, RevokedTokenKey(token))
}

// GenerateToken signs a token the same way the identity service does.
// Used by tests and local tooling; production tokens come from the identity service.
func (j *JWTService) GenerateToken(userID, email string) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(j.config.Duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    j.config.Issuer,
		},
	}
	if j.config.Audience != "" {
		claims.Audience = jwt.ClaimStrings{j.config.Audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(j.config.Key))
}

func (j *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if j.config.Audience != "" {
		opts = append(opts, jwt.WithAudience(j.config.Audience))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(j.config.Key), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (j *JWTService) ExtractTokenFromHeader(authHeader string) (string, error) {
	if authHeader == "" {
		return "", ErrMissingToken
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return "", ErrInvalidToken
	}

	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return "", ErrMissingToken
	}

	return token, nil
}

// Context helpers
type contextKey string

const UserIDKey contextKey = "user_id"

func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, UserIDKey, userID)
}

func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(UserIDKey).(string)
	return userID, ok
}

// Fiber Middleware
func (j *JWTService) FiberMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, err := j.ExtractTokenFromHeader(c.Get("Authorization"))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		claims, err := j.ValidateToken(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		revoked, err := j.IsRevoked(c.UserContext(), token)
		if err != nil {
			logger.WarnCtx(c.UserContext(), "Revocation check failed", "error", err.Error())
		} else if revoked {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": ErrRevokedToken.Error(),
			})
		}

		c.Locals(string(UserIDKey), claims.UserID())
		c.SetUserContext(WithUserID(c.UserContext(), claims.UserID()))
		return c.Next()
	}
}

func GetUserIDFromFiber(c *fiber.Ctx) (string, bool) {
	userID, ok := c.Locals(string(UserIDKey)).(string)
	if !ok || userID == "" {
		return "", false
	}
	return userID, true
}
