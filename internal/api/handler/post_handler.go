package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/umai/recipe-api/internal/core/ports"
)

type PostHandler struct {
	service ports.PostService
}

func NewPostHandler(service ports.PostService) *PostHandler {
	return &PostHandler{service: service}
}

// Create handles POST /post.
//
// @Summary      Share a photo of a cooked recipe
// @Tags         posts
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        RecipeId  formData  string  true  "Recipe id"
// @Param        postImg   formData  file    true  "Photo"
// @Success      201       {object}  createdResponse
// @Failure      400       {object}  messageResponse
// @Failure      401       {object}  messageResponse
// @Failure      404       {object}  messageResponse
// @Router       /post [post]
func (h *PostHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	image, err := formImage(c, "postImg")
	if err != nil {
		return err
	}

	post, err := h.service.Create(c.Request().Context(), id.ID, ports.CreatePostInput{
		RecipeID: c.FormValue("RecipeId"),
		Image:    image,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createdResponse{Message: "Successfully created a post", ID: post.ID})
}

// List handles GET /posts.
//
// @Summary      List posts with their recipe and author
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.PostDetail
// @Failure      401  {object}  messageResponse
// @Router       /posts [get]
func (h *PostHandler) List(c echo.Context) error {
	posts, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}
