package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/umai/recipe-api/internal/core/domain"
	"github.com/umai/recipe-api/internal/core/ports"
	"github.com/umai/recipe-api/internal/pkg/metrics"
)

// maxParallelUploads bounds concurrent uploads for a single recipe.
const maxParallelUploads = 4

type RecipeService struct {
	recipes ports.RecipeRepository
	images  ports.ImageStore
	log     zerolog.Logger
}

func NewRecipeService(recipes ports.RecipeRepository, images ports.ImageStore, log zerolog.Logger) *RecipeService {
	return &RecipeService{recipes: recipes, images: images, log: log}
}

// Create inserts the recipe, uploads its images and attaches their URLs.
// If an upload fails the recipe stays in ImageStateCreated and the error is
// returned.
func (s *RecipeService) Create(ctx context.Context, ownerID string, in ports.CreateRecipeInput) (*domain.Recipe, error) {
	name := strings.TrimSpace(in.Name)
	ingredients := nonEmpty(in.Ingredients)

	switch {
	case name == "":
		return nil, domain.ErrRecipeNameRequired
	case len(ingredients) == 0:
		return nil, domain.ErrRecipeIngredientsRequired
	case len(in.Instructions) == 0:
		return nil, domain.ErrRecipeInstructionsRequired
	case in.Image == nil:
		return nil, domain.ErrRecipeImageRequired
	}

	instructions := make([]domain.Instruction, len(in.Instructions))
	for i, step := range in.Instructions {
		desc := strings.TrimSpace(step.Description)
		if desc == "" {
			return nil, domain.ErrRecipeInstructionsRequired
		}
		instructions[i] = domain.Instruction{Description: desc}
	}

	now := time.Now().UTC()
	recipe, err := s.recipes.Create(ctx, &domain.Recipe{
		UserID:       ownerID,
		Name:         name,
		Ingredients:  ingredients,
		Instructions: instructions,
		ImageState:   domain.ImageStateCreated,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	images, err := s.uploadImages(ctx, recipe.ID, in)
	if err != nil {
		s.log.Warn().Err(err).Str("recipe_id", recipe.ID).Msg("recipe image upload failed, image left pending")
		return nil, fmt.Errorf("create recipe: %w", err)
	}

	if err := s.recipes.AttachImages(ctx, recipe.ID, images); err != nil {
		return nil, fmt.Errorf("create recipe: attach images: %w", err)
	}

	recipe.ImgURL = images.ImgURL
	for i, url := range images.Instructions {
		recipe.Instructions[i].ImgURL = url
	}
	recipe.ImageState = domain.ImageStateAttached

	metrics.ContentCreatedTotal.WithLabelValues("recipe").Inc()
	s.log.Info().Str("recipe_id", recipe.ID).Str("user_id", ownerID).Msg("recipe created")
	return recipe, nil
}

func (s *RecipeService) uploadImages(ctx context.Context, recipeID string, in ports.CreateRecipeInput) (ports.RecipeImages, error) {
	images := ports.RecipeImages{Instructions: make([]string, len(in.Instructions))}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelUploads)

	g.Go(func() error {
		url, err := s.images.Upload(gctx, domain.FolderRecipeImages, recipeID, in.Image)
		if err != nil {
			return fmt.Errorf("upload recipe image: %w", err)
		}
		images.ImgURL = url
		return nil
	})

	for i, step := range in.Instructions {
		if step.Image == nil {
			continue
		}
		i, step := i, step
		g.Go(func() error {
			name := fmt.Sprintf("%s-step-%d", recipeID, i+1)
			url, err := s.images.Upload(gctx, domain.FolderInstructionImages, name, step.Image)
			if err != nil {
				return fmt.Errorf("upload instruction %d image: %w", i+1, err)
			}
			images.Instructions[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return ports.RecipeImages{}, err
	}
	return images, nil
}

func (s *RecipeService) List(ctx context.Context) ([]*domain.Recipe, error) {
	recipes, err := s.recipes.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

func (s *RecipeService) Get(ctx context.Context, id string) (*domain.RecipeDetail, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrRecipeNotFound
	}
	return s.recipes.FindDetail(ctx, id)
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
