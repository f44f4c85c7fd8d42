package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/umai/recipe-api/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new user account.
//
// Accepts either a JSON body or a multipart form carrying an optional
// profileImg file.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json,mpfd
// @Produce      json
// @Param        body        body      registerRequest  true   "User registration details"
// @Param        profileImg  formData  file             false  "Profile image"
// @Success      201         {object}  registerResponse
// @Failure      400         {object}  messageResponse
// @Failure      409         {object}  messageResponse
// @Failure      500         {object}  messageResponse
// @Router       /register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	in := ports.RegisterInput{
		Fullname: req.Fullname,
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
	if isMultipart(c) {
		img, err := formImage(c, "profileImg")
		if err != nil {
			return err
		}
		in.ProfileImage = img
	}

	user, err := h.authService.Register(c.Request().Context(), in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{
		Message: "user created successfully",
		User:    user.Public(),
	})
}

// Login authenticates a user and returns a JWT token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  messageResponse
// @Failure      401   {object}  messageResponse
// @Failure      404   {object}  messageResponse
// @Router       /login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	res, err := h.authService.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{AccessToken: res.AccessToken, ID: res.User.ID})
}
