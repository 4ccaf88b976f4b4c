package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/gofiber/fiber/v3"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hidenkeys/frontdesk/config"
)

// TokenKey is the fiber local holding the verified *jwt.Token.
const TokenKey = "user"

// Keys resolves verification keys: a JWKS endpoint when jwksURL is set,
// otherwise the shared HS256 secret. stop releases the JWKS refresher.
func Keys(secret, jwksURL string) (keyFunc jwt.Keyfunc, stop func(), err error) {
	if jwksURL != "" {
		jwks, err := keyfunc.Get(jwksURL, keyfunc.Options{
			RefreshInterval:   time.Hour,
			RefreshUnknownKID: true,
			RefreshErrorHandler: func(err error) {
				config.GetLogger().WithField("module", "middleware").Warn("jwks refresh failed: " + err.Error())
			},
		})
		if err != nil {
			return nil, nil, fmt.Errorf("jwks %s: %w", jwksURL, err)
		}
		return jwks.Keyfunc, jwks.EndBackground, nil
	}
	if secret == "" {
		return nil, nil, fmt.Errorf("JWT_SECRET or JWKS_URL is required")
	}
	return HMACKey([]byte(secret)), func() {}, nil
}

func HMACKey(secret []byte) jwt.Keyfunc {
	return func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	}
}

// RequireAuth accepts requests carrying a valid bearer token.
func RequireAuth(keyFunc jwt.Keyfunc) fiber.Handler {
	return func(c fiber.Ctx) error {
		raw, ok := strings.CutPrefix(c.Get(fiber.HeaderAuthorization), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			return c.Status(http.StatusUnauthorized).SendString("missing or malformed JWT")
		}
		token, err := jwt.Parse(strings.TrimSpace(raw), keyFunc, jwt.WithExpirationRequired())
		if err != nil || !token.Valid {
			return c.Status(http.StatusUnauthorized).SendString("invalid or expired JWT")
		}
		c.Locals(TokenKey, token)
		return c.Next()
	}
}

func AdminOnly(c fiber.Ctx) error {
	token, ok := c.Locals(TokenKey).(*jwt.Token)
	if !ok {
		return c.Status(http.StatusUnauthorized).SendString("missing or malformed JWT")
	}
	claims, _ := token.Claims.(jwt.MapClaims)
	if isAdmin, _ := claims["is_admin"].(bool); !isAdmin {
		return c.Status(http.StatusForbidden).SendString("only admins are permitted")
	}
	return c.Next()
}

// Actor names the staff member behind a request for activity logs.
func Actor(c fiber.Ctx) string {
	token, ok := c.Locals(TokenKey).(*jwt.Token)
	if !ok {
		return ""
	}
	sub, _ := token.Claims.GetSubject()
	return sub
}
