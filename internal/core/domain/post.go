package domain

import "time"

// Post is a user sharing a photo of a recipe they cooked.
type Post struct {
	ID         string     `json:"_id"`
	RecipeID   string     `json:"RecipeId"`
	UserID     string     `json:"UserId"`
	ImgURL     string     `json:"imgUrl"`
	ImageState ImageState `json:"imageState"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// PostDetail is a post joined with its recipe and author.
type PostDetail struct {
	Post
	Recipe Recipe     `json:"recipe"`
	User   PublicUser `json:"user"`
}
