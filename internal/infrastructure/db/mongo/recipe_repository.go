package mongo

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/umai/recipe-api/internal/core/domain"
	"github.com/umai/recipe-api/internal/core/ports"
)

const collectionRecipes = "recipes"

type RecipeRepository struct {
	col *mongo.Collection
}

func NewRecipeRepository(db *mongo.Database) *RecipeRepository {
	return &RecipeRepository{col: db.Collection(collectionRecipes)}
}

type recipeDoc struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty"`
	UserID       primitive.ObjectID   `bson:"userId"`
	Name         string               `bson:"name"`
	Ingredients  []string             `bson:"ingredients"`
	Instructions []domain.Instruction `bson:"instructions"`
	ImgURL       string               `bson:"imgUrl,omitempty"`
	ImageState   string               `bson:"imageState,omitempty"`
	CreatedAt    time.Time            `bson:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt"`
}

func (d *recipeDoc) toDomain() *domain.Recipe {
	return &domain.Recipe{
		ID:           hexID(d.ID),
		UserID:       hexID(d.UserID),
		Name:         d.Name,
		Ingredients:  d.Ingredients,
		Instructions: d.Instructions,
		ImgURL:       d.ImgURL,
		ImageState:   domain.ImageState(d.ImageState),
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

// recipeDetailDoc is a recipe joined with its owner by $lookup.
type recipeDetailDoc struct {
	Recipe recipeDoc `bson:",inline"`
	User   []userDoc `bson:"user"`
}

func (r *RecipeRepository) Create(ctx context.Context, recipe *domain.Recipe) (*domain.Recipe, error) {
	owner, ok := objectID(recipe.UserID)
	if !ok {
		return nil, fmt.Errorf("insert recipe: invalid owner id %q", recipe.UserID)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := recipeDoc{
		UserID:       owner,
		Name:         recipe.Name,
		Ingredients:  recipe.Ingredients,
		Instructions: recipe.Instructions,
		ImageState:   string(recipe.ImageState),
		CreatedAt:    recipe.CreatedAt,
		UpdatedAt:    recipe.UpdatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert recipe: %w", err)
	}

	doc.ID, _ = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

func (r *RecipeRepository) FindAll(ctx context.Context) ([]*domain.Recipe, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find recipes: %w", err)
	}
	var docs []recipeDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("find recipes: decode: %w", err)
	}

	out := make([]*domain.Recipe, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toDomain())
	}
	return out, nil
}

func (r *RecipeRepository) FindByID(ctx context.Context, id string) (*domain.Recipe, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrRecipeNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc recipeDoc
	if err := r.col.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRecipeNotFound
		}
		return nil, fmt.Errorf("find recipe: %w", err)
	}
	return doc.toDomain(), nil
}

// FindDetail returns the recipe with its owner's public profile. A recipe
// whose owner no longer exists is returned without one.
func (r *RecipeRepository) FindDetail(ctx context.Context, id string) (*domain.RecipeDetail, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, domain.ErrRecipeNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, recipeDetailPipeline(oid))
	if err != nil {
		return nil, fmt.Errorf("find recipe detail: %w", err)
	}
	var docs []recipeDetailDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("find recipe detail: decode: %w", err)
	}
	if len(docs) == 0 {
		return nil, domain.ErrRecipeNotFound
	}

	doc := docs[0]
	detail := &domain.RecipeDetail{Recipe: *doc.Recipe.toDomain()}
	if len(doc.User) > 0 {
		pub := doc.User[0].toDomain().Public()
		detail.User = &pub
	}
	return detail, nil
}

func recipeDetailPipeline(oid primitive.ObjectID) mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": oid}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionUsers,
			"localField":   "userId",
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$project", Value: bson.M{
			"user.password": 0,
			"user.balance":  0,
		}}},
	}
}

// AttachImages completes two-phase creation. It only applies while the
// recipe is still in the created state.
func (r *RecipeRepository) AttachImages(ctx context.Context, id string, images ports.RecipeImages) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrRecipeNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "imageState": domain.ImageStateCreated},
		bson.M{"$set": attachImagesSet(images, time.Now().UTC())},
	)
	if err != nil {
		return fmt.Errorf("attach recipe images: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("count recipes: %w", err)
	}
	if n == 0 {
		return domain.ErrRecipeNotFound
	}
	return domain.ErrImageAlreadyAttached
}

func attachImagesSet(images ports.RecipeImages, now time.Time) bson.M {
	set := bson.M{
		"imgUrl":     images.ImgURL,
		"imageState": domain.ImageStateAttached,
		"updatedAt":  now,
	}
	for i, url := range images.Instructions {
		if url == "" {
			continue
		}
		set["instructions."+strconv.Itoa(i)+".imgUrl"] = url
	}
	return set
}

// EnsureIndexes creates necessary indexes on the recipes collection.
func (r *RecipeRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
