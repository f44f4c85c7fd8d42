package ports

import (
	"context"

	"github.com/umai/recipe-api/internal/core/domain"
)

// RecipeImages are the URLs attached to a recipe after upload. Instructions
// is indexed like the recipe's instruction list; empty entries mean no image.
type RecipeImages struct {
	ImgURL       string
	Instructions []string
}

type RecipeRepository interface {
	Create(ctx context.Context, r *domain.Recipe) (*domain.Recipe, error)
	FindAll(ctx context.Context) ([]*domain.Recipe, error)
	FindByID(ctx context.Context, id string) (*domain.Recipe, error)
	// FindDetail returns the recipe with its owner's public profile.
	FindDetail(ctx context.Context, id string) (*domain.RecipeDetail, error)
	AttachImages(ctx context.Context, id string, images RecipeImages) error
}

type PostRepository interface {
	Create(ctx context.Context, p *domain.Post) (*domain.Post, error)
	AttachImage(ctx context.Context, id, url string) error
	FindAll(ctx context.Context) ([]*domain.PostDetail, error)
}
