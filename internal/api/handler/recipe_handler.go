package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/umai/recipe-api/internal/core/ports"
)

type RecipeHandler struct {
	service ports.RecipeService
}

func NewRecipeHandler(service ports.RecipeService) *RecipeHandler {
	return &RecipeHandler{service: service}
}

// Create handles POST /recipe.
//
// The i-th file in instruction_images belongs to the i-th instruction.
//
// @Summary      Create a recipe
// @Tags         recipes
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Param        name                formData  string  true   "Recipe name"
// @Param        ingredients         formData  string  true   "JSON array of ingredients"
// @Param        instructions        formData  string  true   "JSON array of {description}"
// @Param        image               formData  file    true   "Main image"
// @Param        instruction_images  formData  file    false  "Step images, in instruction order"
// @Success      201                 {object}  createdResponse
// @Failure      400                 {object}  messageResponse
// @Failure      401                 {object}  messageResponse
// @Failure      500                 {object}  messageResponse
// @Router       /recipe [post]
func (h *RecipeHandler) Create(c echo.Context) error {
	id, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createRecipeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ingredients, err := parseList(req.Ingredients)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "ingredients is invalid")
	}
	steps, err := parseInstructions(req.Instructions)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "instructions is invalid")
	}

	image, err := formImage(c, "image")
	if err != nil {
		return err
	}
	stepImages, err := formImages(c, "instruction_images")
	if err != nil {
		return err
	}
	if len(stepImages) > len(steps) {
		return echo.NewHTTPError(http.StatusBadRequest, "more instruction images than instructions")
	}

	in := ports.CreateRecipeInput{
		Name:         req.Name,
		Ingredients:  ingredients,
		Instructions: make([]ports.InstructionInput, len(steps)),
		Image:        image,
	}
	for i, step := range steps {
		in.Instructions[i].Description = step.Description
		if i < len(stepImages) {
			in.Instructions[i].Image = stepImages[i]
		}
	}

	recipe, err := h.service.Create(c.Request().Context(), id.ID, in)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, createdResponse{Message: "Successfully created a recipe", ID: recipe.ID})
}

// List handles GET /recipes.
//
// @Summary      List recipes
// @Tags         recipes
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.Recipe
// @Failure      401  {object}  messageResponse
// @Router       /recipes [get]
func (h *RecipeHandler) List(c echo.Context) error {
	recipes, err := h.service.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, recipes)
}

// Get handles GET /recipe/:id.
//
// @Summary      Get a recipe with its author
// @Tags         recipes
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Recipe id"
// @Success      200  {object}  domain.RecipeDetail
// @Failure      401  {object}  messageResponse
// @Failure      404  {object}  messageResponse
// @Router       /recipe/{id} [get]
func (h *RecipeHandler) Get(c echo.Context) error {
	recipe, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, recipe)
}

// parseList accepts a JSON array or a comma separated list.
func parseList(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if strings.HasPrefix(raw, "[") {
		var out []string
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	return strings.Split(raw, ","), nil
}

func parseInstructions(raw string) ([]instructionRequest, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	var out []instructionRequest
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}
