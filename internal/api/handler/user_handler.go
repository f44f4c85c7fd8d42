package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/umai/recipe-api/internal/core/ports"
)

type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Self handles GET /self.
//
// @Summary      Current user, balance included
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.User
// @Failure      401  {object}  messageResponse
// @Router       /self [get]
func (h *UserHandler) Self(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	user, err := h.service.Self(c.Request().Context(), id.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

// Profile handles GET /user/:id.
//
// @Summary      Public profile of a user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User id"
// @Success      200  {object}  domain.PublicUser
// @Failure      401  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /user/{id} [get]
func (h *UserHandler) Profile(c echo.Context) error {
	profile, err := h.service.Profile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, profile)
}

// FinishRecipe handles POST /finished-recipe.
//
// @Summary      Count a finished recipe for the current user
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  messageResponse
// @Router       /finished-recipe [post]
func (h *UserHandler) FinishRecipe(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}
	if err := h.service.FinishRecipe(c.Request().Context(), id.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: "Successfully Increase Finished Recipe"})
}

// Ranking handles GET /ranking.
//
// @Summary      Users ranked by finished recipes
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.PublicUser
// @Failure      401  {object}  messageResponse
// @Router       /ranking [get]
func (h *UserHandler) Ranking(c echo.Context) error {
	users, err := h.service.Ranking(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}
