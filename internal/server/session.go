package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	sessionCookie   = "session"
	sessionIssuer   = "inkwell"
	sessionAudience = "inkwell-web"
	sessionTTL      = 14 * 24 * time.Hour

	loginURL = "/auth/login/"
)

var errSessionRevoked = errors.New("session revoked")

type sessionClaims struct {
	jwt.RegisteredClaims
}

// issueSession signs a session token for user and sets it as an HTTP-only cookie.
func (s *Server) issueSession(c *fiber.Ctx, user *models.User) error {
	if s.config.JWTSecret == "" {
		return fmt.Errorf("JWT secret not configured")
	}

	now := time.Now()
	claims := sessionClaims{jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(user.ID), 10),
		Issuer:    sessionIssuer,
		Audience:  jwt.ClaimStrings{sessionAudience},
		ExpiresAt: jwt.NewNumericDate(now.Add(sessionTTL)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
	if err != nil {
		return err
	}

	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    signed,
		Path:     "/",
		Expires:  now.Add(sessionTTL),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

// parseSession validates a session token and returns its claims. Revoked
// tokens are rejected when Redis is available.
func (s *Server) parseSession(ctx context.Context, raw string) (*sessionClaims, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithIssuer(sessionIssuer),
		jwt.WithAudience(sessionAudience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}

	if claims.ID != "" && s.redis != nil {
		revoked, err := s.redis.Exists(ctx, cache.BlacklistKey(claims.ID)).Result()
		if err == nil && revoked > 0 {
			return nil, errSessionRevoked
		}
	}
	return claims, nil
}

// revokeSession blacklists the token's jti until it would have expired anyway.
func (s *Server) revokeSession(ctx context.Context, claims *sessionClaims) {
	if s.redis == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return
	}
	if err := s.redis.Set(ctx, cache.BlacklistKey(claims.ID), 1, ttl).Err(); err != nil {
		middleware.Logger.WarnContext(ctx, "Failed to revoke session", slog.String("error", err.Error()))
	}
}

func (s *Server) clearSession(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   s.config.IsProduction(),
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// OptionalAuth resolves the session cookie into the current user. Requests
// without a valid session continue as guests.
func (s *Server) OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.Cookies(sessionCookie)
		if raw == "" {
			return c.Next()
		}

		claims, err := s.parseSession(c.UserContext(), raw)
		if err != nil {
			s.clearSession(c)
			return c.Next()
		}
		userID, err := strconv.ParseUint(claims.Subject, 10, 32)
		if err != nil {
			s.clearSession(c)
			return c.Next()
		}

		user, err := s.userService.GetByID(c.UserContext(), uint(userID))
		if err != nil {
			if !models.IsCode(err, models.CodeNotFound) {
				return err
			}
			s.clearSession(c)
			return c.Next()
		}

		c.Locals("userID", user.ID)
		c.Locals("user", user)
		c.Locals("session", claims)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, user.ID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// LoginRequired redirects guests to the login page, remembering where they were going.
func (s *Server) LoginRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if currentUser(c) == nil {
			return c.Redirect(loginURL+"?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusFound)
		}
		return c.Next()
	}
}

func currentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals("user").(*models.User)
	return user
}

func currentUserID(c *fiber.Ctx) uint {
	if user := currentUser(c); user != nil {
		return user.ID
	}
	return 0
}

// safeNext returns next when it is a local path, "/" otherwise.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}
