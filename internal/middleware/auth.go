// Package middleware provides authentication, logging and tracing middleware for the application.
package middleware

import (
	"log/slog"
	"strings"

	"inkwell/internal/auth"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

// Locals keys set by the authenticator.
const (
	LocalUserID   = "userID"
	LocalTokenJTI = "jti"
	LocalTokenExp = "tokenExp"
)

// Authenticator validates bearer access tokens against the token manager and the
// revocation list.
type Authenticator struct {
	Tokens  *auth.TokenManager
	Revoker *auth.Revoker
}

// NewAuthenticator creates an Authenticator. revoker may be nil.
func NewAuthenticator(tokens *auth.TokenManager, revoker *auth.Revoker) *Authenticator {
	return &Authenticator{Tokens: tokens, Revoker: revoker}
}

// Required rejects requests without a valid access token.
func (a *Authenticator) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw, err := bearerToken(c)
		if err != nil {
			return models.RespondWithError(c, err)
		}
		if err := a.authenticate(c, raw); err != nil {
			return models.RespondWithError(c, err)
		}
		return c.Next()
	}
}

// Optional authenticates when a token is present and lets anonymous requests
// through. A present but invalid token is still rejected.
func (a *Authenticator) Optional() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return c.Next()
		}
		raw, err := bearerToken(c)
		if err != nil {
			return models.RespondWithError(c, err)
		}
		if err := a.authenticate(c, raw); err != nil {
			return models.RespondWithError(c, err)
		}
		return c.Next()
	}
}

// WebSocket reads the token from the "token" query parameter, falling back to the
// Authorization header, since browsers cannot set headers on upgrade requests.
func (a *Authenticator) WebSocket() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Query("token")
		if raw == "" {
			var err error
			if raw, err = bearerToken(c); err != nil {
				return models.RespondWithError(c, err)
			}
		}
		if err := a.authenticate(c, raw); err != nil {
			return models.RespondWithError(c, err)
		}
		return c.Next()
	}
}

func (a *Authenticator) authenticate(c *fiber.Ctx, raw string) error {
	claims, err := a.Tokens.Parse(raw, auth.AccessToken)
	if err != nil {
		return models.NewUnauthorizedError("Invalid or expired token")
	}

	revoked, err := a.Revoker.IsRevoked(c.UserContext(), claims.JTI)
	if err != nil {
		// Fail open: a Redis outage must not lock every user out.
		Logger.WarnContext(c.UserContext(), "token revocation check failed", slog.String("error", err.Error()))
	}
	if revoked {
		return models.NewUnauthorizedError("Token has been revoked")
	}

	c.Locals(LocalUserID, claims.UserID)
	c.Locals(LocalTokenJTI, claims.JTI)
	c.Locals(LocalTokenExp, claims.ExpiresAt)
	c.SetUserContext(WithUserID(c.UserContext(), claims.UserID))
	return nil
}

func bearerToken(c *fiber.Ctx) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", models.NewUnauthorizedError("Authorization header required")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || scheme != "Bearer" || token == "" {
		return "", models.NewUnauthorizedError("Invalid authorization header format")
	}
	return token, nil
}

// UserID returns the authenticated user's id, or 0 for anonymous requests.
func UserID(c *fiber.Ctx) uint {
	id, _ := c.Locals(LocalUserID).(uint)
	return id
}
