package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/umai/recipe-api/internal/core/domain"
	"github.com/umai/recipe-api/internal/core/ports"
	"github.com/umai/recipe-api/internal/pkg/metrics"
)

type PostService struct {
	posts   ports.PostRepository
	recipes ports.RecipeRepository
	images  ports.ImageStore
	log     zerolog.Logger
}

func NewPostService(posts ports.PostRepository, recipes ports.RecipeRepository, images ports.ImageStore, log zerolog.Logger) *PostService {
	return &PostService{posts: posts, recipes: recipes, images: images, log: log}
}

// Create shares a photo of a recipe. The post is inserted before its image is
// uploaded; an upload failure leaves it in ImageStateCreated.
func (s *PostService) Create(ctx context.Context, userID string, in ports.CreatePostInput) (*domain.Post, error) {
	if in.Image == nil {
		return nil, domain.ErrPostImageRequired
	}
	recipeID := strings.TrimSpace(in.RecipeID)
	if recipeID == "" {
		return nil, domain.ErrRecipeNotFound
	}

	if _, err := s.recipes.FindByID(ctx, recipeID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	post, err := s.posts.Create(ctx, &domain.Post{
		RecipeID:   recipeID,
		UserID:     userID,
		ImageState: domain.ImageStateCreated,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	url, err := s.images.Upload(ctx, domain.FolderPostImages, post.ID, in.Image)
	if err != nil {
		s.log.Warn().Err(err).Str("post_id", post.ID).Msg("post image upload failed, image left pending")
		return nil, fmt.Errorf("create post: upload image: %w", err)
	}
	if err := s.posts.AttachImage(ctx, post.ID, url); err != nil {
		return nil, fmt.Errorf("create post: attach image: %w", err)
	}
	post.ImgURL = url
	post.ImageState = domain.ImageStateAttached

	metrics.ContentCreatedTotal.WithLabelValues("post").Inc()
	s.log.Info().Str("post_id", post.ID).Str("recipe_id", recipeID).Str("user_id", userID).Msg("post created")
	return post, nil
}

func (s *PostService) List(ctx context.Context) ([]*domain.PostDetail, error) {
	posts, err := s.posts.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}
