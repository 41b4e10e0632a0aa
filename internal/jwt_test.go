package internal

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestJWT(d time.Duration) *JWTService {
	return NewJWTService(&JWTConfig{Key: "secret", Duration: d, Issuer: "identity", Audience: "authenticated"})
}

func TestValidateToken(t *testing.T) {
	svc := newTestJWT(time.Hour)

	token, err := svc.GenerateToken("0190f3c2-0000-7000-8000-000000000001", "shop@example.com")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "0190f3c2-0000-7000-8000-000000000001", claims.UserID())
	assert.Equal(t, "shop@example.com", claims.Email)
}

func TestValidateTokenRejects(t *testing.T) {
	t.Run("expired", func(t *testing.T) {
		svc := newTestJWT(-time.Minute)
		token, err := svc.GenerateToken("u1", "")
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})

	t.Run("wrong key", func(t *testing.T) {
		other := NewJWTService(&JWTConfig{Key: "other", Duration: time.Hour, Audience: "authenticated"})
		token, err := other.GenerateToken("u1", "")
		require.NoError(t, err)

		_, err = newTestJWT(time.Hour).ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong audience", func(t *testing.T) {
		other := NewJWTService(&JWTConfig{Key: "secret", Duration: time.Hour, Audience: "anon"})
		token, err := other.GenerateToken("u1", "")
		require.NoError(t, err)

		_, err = newTestJWT(time.Hour).ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := newTestJWT(time.Hour).ValidateToken("not-a-token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestExtractTokenFromHeader(t *testing.T) {
	svc := newTestJWT(time.Hour)

	_, err := svc.ExtractTokenFromHeader("")
	assert.ErrorIs(t, err, ErrMissingToken)

	_, err = svc.ExtractTokenFromHeader("Basic abc")
	assert.ErrorIs(t, err, ErrInvalidToken)

	token, err := svc.ExtractTokenFromHeader("Bearer abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", token)
}

func TestFiberMiddleware(t *testing.T) {
	svc := newTestJWT(time.Hour)

	app := fiber.New()
	app.Get("/me", svc.FiberMiddleware(), func(c *fiber.Ctx) error {
		id, ok := GetUserIDFromFiber(c)
		if !ok {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		fromCtx, _ := GetUserID(c.UserContext())
		return c.SendString(id + "|" + fromCtx)
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	token, err := svc.GenerateToken("merchant-1", "")
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "merchant-1|merchant-1", string(body))
}

type keySet map[string]bool

func (k keySet) Exists(_ context.Context, key string) (bool, error) {
	if k["fail"] {
		return false, errors.New("redis down")
	}
	return k[key], nil
}

func TestFiberMiddlewareRejectsRevokedToken(t *testing.T) {
	revoked := keySet{}
	svc := newTestJWT(time.Hour).WithRevocations(revoked)

	app := fiber.New()
	app.Get("/me", svc.FiberMiddleware(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	token, err := svc.GenerateToken("merchant-1", "")
	require.NoError(t, err)
	call := func() int {
		req := httptest.NewRequest("GET", "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, fiber.StatusOK, call())

	revoked[RevokedTokenKey(token)] = true
	assert.Equal(t, fiber.StatusUnauthorized, call())

	// an unreachable store does not lock everyone out
	revoked["fail"] = true
	assert.Equal(t, fiber.StatusOK, call())
}

func TestRevokedTokenKey(t *testing.T) {
	assert.Equal(t, RevokedTokenKey("a"), RevokedTokenKey("a"))
	assert.NotEqual(t, RevokedTokenKey("a"), RevokedTokenKey("b"))
	assert.Contains(t, RevokedTokenKey("a"), "auth:revoked:")
	assert.NotContains(t, RevokedTokenKey("secret-token"), "secret-token")
}

func TestValidServiceToken(t *testing.T) {
	assert.True(t, ValidServiceToken("s3cret", "s3cret"))
	assert.False(t, ValidServiceToken("s3cret", "s3cre"))
	assert.False(t, ValidServiceToken("s3cret", ""))
	assert.False(t, ValidServiceToken("", ""))
}
