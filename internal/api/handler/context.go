package handler

import (
	"github.com/labstack/echo/v4"

	"github.com/umai/recipe-api/internal/api/middleware"
	"github.com/umai/recipe-api/internal/core/domain"
)

// ctxIdentity returns the identity injected by the Authenticate middleware.
// Its absence means the route was registered without the gate; treat the
// request as unauthenticated rather than trusting it.
func ctxIdentity(c echo.Context) (domain.Identity, error) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		return domain.Identity{}, domain.ErrAuthenticationInvalid
	}
	return id, nil
}
