package ports

import (
	"context"

	"github.com/umai/recipe-api/internal/core/domain"
)

// InstructionInput is one step of a new recipe.
type InstructionInput struct {
	Description string
	Image       *domain.Image // optional
}

// CreateRecipeInput carries all data needed to create a recipe.
type CreateRecipeInput struct {
	Name         string
	Ingredients  []string
	Instructions []InstructionInput
	Image        *domain.Image
}

type RecipeService interface {
	Create(ctx context.Context, ownerID string, in CreateRecipeInput) (*domain.Recipe, error)
	List(ctx context.Context) ([]*domain.Recipe, error)
	Get(ctx context.Context, id string) (*domain.RecipeDetail, error)
}

// CreatePostInput carries the recipe being shared and the photo.
type CreatePostInput struct {
	RecipeID string
	Image    *domain.Image
}

type PostService interface {
	Create(ctx context.Context, userID string, in CreatePostInput) (*domain.Post, error)
	List(ctx context.Context) ([]*domain.PostDetail, error)
}

type UserService interface {
	Self(ctx context.Context, id string) (*domain.User, error)
	Profile(ctx context.Context, id string) (*domain.PublicUser, error)
	FinishRecipe(ctx context.Context, id string) error
	Ranking(ctx context.Context) ([]domain.PublicUser, error)
}

// RankingCache stores the computed ranking for a short time.
type RankingCache interface {
	Get(ctx context.Context) ([]domain.PublicUser, bool, error)
	Set(ctx context.Context, users []domain.PublicUser) error
	Invalidate(ctx context.Context) error
}
