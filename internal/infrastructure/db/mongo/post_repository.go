package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/umai/recipe-api/internal/core/domain"
)

const collectionPosts = "posts"

var errPostNotFound = errors.New("post not found")

type PostRepository struct {
	col *mongo.Collection
}

func NewPostRepository(db *mongo.Database) *PostRepository {
	return &PostRepository{col: db.Collection(collectionPosts)}
}

type postDoc struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	RecipeID   primitive.ObjectID `bson:"RecipeId"`
	UserID     primitive.ObjectID `bson:"UserId"`
	ImgURL     string             `bson:"imgUrl,omitempty"`
	ImageState string             `bson:"imageState,omitempty"`
	CreatedAt  time.Time          `bson:"createdAt"`
	UpdatedAt  time.Time          `bson:"updatedAt"`
}

func (d *postDoc) toDomain() *domain.Post {
	return &domain.Post{
		ID:         hexID(d.ID),
		RecipeID:   hexID(d.RecipeID),
		UserID:     hexID(d.UserID),
		ImgURL:     d.ImgURL,
		ImageState: domain.ImageState(d.ImageState),
		CreatedAt:  d.CreatedAt,
		UpdatedAt:  d.UpdatedAt,
	}
}

type postDetailDoc struct {
	Post   postDoc   `bson:",inline"`
	Recipe recipeDoc `bson:"recipe"`
	User   userDoc   `bson:"user"`
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) (*domain.Post, error) {
	recipeID, ok := objectID(post.RecipeID)
	if !ok {
		return nil, domain.ErrRecipeNotFound
	}
	userID, ok := objectID(post.UserID)
	if !ok {
		return nil, fmt.Errorf("insert post: invalid user id %q", post.UserID)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := postDoc{
		RecipeID:   recipeID,
		UserID:     userID,
		ImageState: string(post.ImageState),
		CreatedAt:  post.CreatedAt,
		UpdatedAt:  post.UpdatedAt,
	}
	res, err := r.col.InsertOne(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}

	doc.ID, _ = res.InsertedID.(primitive.ObjectID)
	return doc.toDomain(), nil
}

// AttachImage completes two-phase creation. It only applies while the post is
// still in the created state.
func (r *PostRepository) AttachImage(ctx context.Context, id, url string) error {
	oid, ok := objectID(id)
	if !ok {
		return errPostNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": oid, "imageState": domain.ImageStateCreated},
		bson.M{"$set": bson.M{
			"imgUrl":     url,
			"imageState": domain.ImageStateAttached,
			"updatedAt":  time.Now().UTC(),
		}},
	)
	if err != nil {
		return fmt.Errorf("attach post image: %w", err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.col.CountDocuments(ctx, bson.M{"_id": oid})
	if err != nil {
		return fmt.Errorf("count posts: %w", err)
	}
	if n == 0 {
		return errPostNotFound
	}
	return domain.ErrImageAlreadyAttached
}

// FindAll returns every post joined with its recipe and author, newest first.
// Posts whose recipe or author is missing are skipped.
func (r *PostRepository) FindAll(ctx context.Context) ([]*domain.PostDetail, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Aggregate(ctx, postFeedPipeline())
	if err != nil {
		return nil, fmt.Errorf("find posts: %w", err)
	}
	var docs []postDetailDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("find posts: decode: %w", err)
	}

	out := make([]*domain.PostDetail, 0, len(docs))
	for i := range docs {
		d := &docs[i]
		out = append(out, &domain.PostDetail{
			Post:   *d.Post.toDomain(),
			Recipe: *d.Recipe.toDomain(),
			User:   d.User.toDomain().Public(),
		})
	}
	return out, nil
}

func postFeedPipeline() mongo.Pipeline {
	return mongo.Pipeline{
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionRecipes,
			"localField":   "RecipeId",
			"foreignField": "_id",
			"as":           "recipe",
		}}},
		{{Key: "$unwind", Value: "$recipe"}},
		{{Key: "$lookup", Value: bson.M{
			"from":         collectionUsers,
			"localField":   "UserId",
			"foreignField": "_id",
			"as":           "user",
		}}},
		{{Key: "$unwind", Value: "$user"}},
		{{Key: "$project", Value: bson.M{
			"user.password": 0,
			"user.balance":  0,
		}}},
	}
}

// EnsureIndexes creates necessary indexes on the posts collection.
func (r *PostRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "RecipeId", Value: 1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	}

	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
