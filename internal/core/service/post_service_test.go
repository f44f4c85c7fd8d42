package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/umai/recipe-api/internal/core/domain"
	"github.com/umai/recipe-api/internal/core/ports"
)

func seedRecipe(t *testing.T, recipes *memRecipes) *domain.Recipe {
	t.Helper()
	r, err := recipes.Create(context.Background(), &domain.Recipe{UserID: "user-1", Name: "Soto", ImageState: domain.ImageStateAttached})
	if err != nil {
		t.Fatalf("seed recipe: %v", err)
	}
	return r
}

func TestPostService_Create_Success(t *testing.T) {
	posts, recipes, images := newMemPosts(), newMemRecipes(), newStubImages()
	recipe := seedRecipe(t, recipes)
	svc := NewPostService(posts, recipes, images, zerolog.Nop())

	post, err := svc.Create(context.Background(), "user-2", ports.CreatePostInput{RecipeID: recipe.ID, Image: testImage()})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if post.RecipeID != recipe.ID || post.UserID != "user-2" {
		t.Fatalf("unexpected post %+v", post)
	}
	want := "https://cdn.example.com/" + domain.FolderPostImages + "/" + post.ID
	if post.ImgURL != want || post.ImageState != domain.ImageStateAttached {
		t.Fatalf("unexpected image %q %q", post.ImgURL, post.ImageState)
	}
	if stored := posts.get(post.ID); stored.ImgURL != want {
		t.Fatalf("expected url persisted, got %q", stored.ImgURL)
	}
}

func TestPostService_Create_Rejections(t *testing.T) {
	cases := []struct {
		name string
		in   ports.CreatePostInput
		want error
	}{
		{"image checked first", ports.CreatePostInput{}, domain.ErrPostImageRequired},
		{"missing recipe", ports.CreatePostInput{Image: testImage()}, domain.ErrRecipeNotFound},
		{"unknown recipe", ports.CreatePostInput{RecipeID: "recipe-404", Image: testImage()}, domain.ErrRecipeNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			posts, recipes := newMemPosts(), newMemRecipes()
			seedRecipe(t, recipes)
			svc := NewPostService(posts, recipes, newStubImages(), zerolog.Nop())

			if _, err := svc.Create(context.Background(), "user-2", tc.in); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if len(posts.byID) != 0 {
				t.Fatalf("expected nothing stored")
			}
		})
	}
}

func TestPostService_Create_UploadFailureLeavesPending(t *testing.T) {
	posts, recipes, images := newMemPosts(), newMemRecipes(), newStubImages()
	recipe := seedRecipe(t, recipes)
	images.failFor[domain.FolderPostImages+"/post-1"] = errUpload
	svc := NewPostService(posts, recipes, images, zerolog.Nop())

	if _, err := svc.Create(context.Background(), "user-2", ports.CreatePostInput{RecipeID: recipe.ID, Image: testImage()}); !errors.Is(err, errUpload) {
		t.Fatalf("expected upload error, got %v", err)
	}
	if stored := posts.get("post-1"); stored.ImageState != domain.ImageStateCreated {
		t.Fatalf("expected pending state, got %q", stored.ImageState)
	}
}

func TestPostService_List(t *testing.T) {
	posts, recipes := newMemPosts(), newMemRecipes()
	recipe := seedRecipe(t, recipes)
	svc := NewPostService(posts, recipes, newStubImages(), zerolog.Nop())

	if _, err := svc.Create(context.Background(), "user-2", ports.CreatePostInput{RecipeID: recipe.ID, Image: testImage()}); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	all, err := svc.List(context.Background())
	if err != nil || len(all) != 1 {
		t.Fatalf("expected 1 post, got %d %v", len(all), err)
	}
}
