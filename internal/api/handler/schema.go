package handler

import "github.com/umai/recipe-api/internal/core/domain"

// messageResponse is the envelope for writes that return no resource.
type messageResponse struct {
	Message string `json:"message"`
}

// registerRequest and loginRequest carry no validate tags. Field checks run in
// the auth service in a fixed order.
type registerRequest struct {
	Fullname string `json:"fullname" form:"fullname"`
	Username string `json:"username" form:"username"`
	Email    string `json:"email"    form:"email"`
	Password string `json:"password" form:"password"`
}

type registerResponse struct {
	Message string            `json:"message"`
	User    domain.PublicUser `json:"user"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
	ID          string `json:"id"`
}

// createRecipeRequest is the text part of the multipart recipe form.
// Ingredients and Instructions are JSON-encoded arrays.
type createRecipeRequest struct {
	Name         string `form:"name"         validate:"max=200"`
	Ingredients  string `form:"ingredients"`
	Instructions string `form:"instructions"`
}

type instructionRequest struct {
	Description string `json:"description"`
}

type createdResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

type topUpRequest struct {
	Amount *int64 `json:"amount"`
}

type donateRequest struct {
	TargetUserID string `json:"targetUserId"`
	Amount       *int64 `json:"amount"`
}

type paymentIntentRequest struct {
	Amount *int64 `json:"amount"`
}

type paymentIntentResponse struct {
	ClientSecret string `json:"clientSecret"`
}
