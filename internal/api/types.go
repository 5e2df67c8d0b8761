package api

import (
	"github.com/shopspring/decimal"
)

// CreateUserRequest is the body of POST /user/create.
type CreateUserRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=5,max=72"`
	Name     string `json:"name" binding:"required,max=255"`
}

// TokenRequest is the body of POST /user/token.
type TokenRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UpdateUserRequest is the body of PUT and PATCH /user/me.
type UpdateUserRequest struct {
	Email    *string `json:"email" binding:"omitempty,email,max=255"`
	Password *string `json:"password" binding:"omitempty,min=5,max=72"`
	Name     *string `json:"name" binding:"omitempty,max=255"`
}

// UserResponse never carries the password.
type UserResponse struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

type TokenResponse struct {
	Token string `json:"token"`
}

// AttributeRequest creates a tag or an ingredient.
type AttributeRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// AttributeResponse renders a tag or an ingredient.
type AttributeResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// RecipeRequest is the body of recipe writes. Absent fields stay nil.
type RecipeRequest struct {
	Title       *string          `json:"title"`
	TimeMinutes *int             `json:"time_minutes"`
	Price       *decimal.Decimal `json:"price"`
	Link        *string          `json:"link"`
	Tags        []uint           `json:"tags"`
	Ingredients []uint           `json:"ingredients"`
}

// RecipeSummary is the recipe shape for list and write operations.
type RecipeSummary struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Ingredients []uint `json:"ingredients"`
	Tags        []uint `json:"tags"`
	TimeMinutes int    `json:"time_minutes"`
	Price       string `json:"price"`
	Link        string `json:"link"`
}

// RecipeDetail is returned when a single recipe is retrieved.
type RecipeDetail struct {
	ID          uint                `json:"id"`
	Title       string              `json:"title"`
	Ingredients []AttributeResponse `json:"ingredients"`
	Tags        []AttributeResponse `json:"tags"`
	TimeMinutes int                 `json:"time_minutes"`
	Price       string              `json:"price"`
	Link        string              `json:"link"`
	Image       string              `json:"image"`
}

// RecipeImage is returned by the image upload.
type RecipeImage struct {
	ID    uint   `json:"id"`
	Image string `json:"image"`
}
