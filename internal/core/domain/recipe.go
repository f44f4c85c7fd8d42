package domain

import "time"

// Instruction is a single ordered step of a recipe.
type Instruction struct {
	Description string `json:"description" bson:"description"`
	ImgURL      string `json:"imgUrl,omitempty" bson:"imgUrl,omitempty"`
}

// Recipe is user-owned content. It is immutable once its images are attached.
type Recipe struct {
	ID           string        `json:"_id"`
	UserID       string        `json:"userId"`
	Name         string        `json:"name"`
	Ingredients  []string      `json:"ingredients"`
	Instructions []Instruction `json:"instructions"`
	ImgURL       string        `json:"imgUrl"`
	ImageState   ImageState    `json:"imageState"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// RecipeDetail is a recipe with its owner's public profile embedded.
type RecipeDetail struct {
	Recipe
	User *PublicUser `json:"user,omitempty"`
}
