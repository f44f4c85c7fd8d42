package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/umai/recipe-api/internal/core/domain"
	"github.com/umai/recipe-api/internal/core/ports"
	"github.com/umai/recipe-api/internal/pkg/metrics"
)

// IdentityKey is the echo context key holding the authenticated domain.Identity.
const IdentityKey = "identity"

const bearerScheme = "Bearer"

// UserFinder loads the account a token refers to.
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*domain.User, error)
}

// Authenticate verifies the bearer token, loads the user it names and
// attaches their identity to the request. It fails closed: a request only
// reaches next once the user has been loaded.
func Authenticate(tokens ports.TokenService, users UserFinder) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return reject("missing_header", domain.ErrAuthenticationInvalid)
			}

			scheme, raw, ok := strings.Cut(authHeader, " ")
			if !ok || scheme != bearerScheme || raw == "" || strings.Contains(raw, " ") {
				return reject("bad_scheme", domain.ErrAuthenticationInvalid)
			}

			claims, err := tokens.Verify(raw)
			if err != nil {
				return reject("token_invalid", domain.ErrTokenInvalid)
			}
			if claims.UserID == "" {
				return reject("no_user_id", domain.ErrAuthenticationInvalid)
			}

			user, err := users.FindByID(c.Request().Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, domain.ErrUserNotFound) {
					return reject("user_not_found", domain.ErrAuthenticationInvalid)
				}
				metrics.AuthRejectionsTotal.WithLabelValues("lookup_failed").Inc()
				return fmt.Errorf("authenticate: %w", err)
			}

			c.Set(IdentityKey, user.Identity())
			return next(c)
		}
	}
}

func reject(reason string, err error) error {
	metrics.AuthRejectionsTotal.WithLabelValues(reason).Inc()
	return err
}

// IdentityFrom returns the identity attached by Authenticate.
func IdentityFrom(c echo.Context) (domain.Identity, bool) {
	id, ok := c.Get(IdentityKey).(domain.Identity)
	if !ok || id.ID == "" {
		return domain.Identity{}, false
	}
	return id, true
}
