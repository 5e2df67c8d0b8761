package service_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recipe-app/backend/internal/auth"
	"github.com/pageza/recipe-app/backend/internal/models"
	"github.com/pageza/recipe-app/backend/internal/service"
	"github.com/pageza/recipe-app/backend/internal/testdb"
)

func newUserService(t *testing.T) (*service.UserService, *gorm.DB) {
	t.Helper()
	db := testdb.NewSQLite(t)
	return service.NewUserService(db, bcrypt.MinCost), db
}

func createPrincipal(t *testing.T, users *service.UserService, email string) auth.Principal {
	t.Helper()
	u, err := users.CreateUser(context.Background(), email, "testpass123", service.UserFields{Name: "Test"})
	require.NoError(t, err)
	return auth.FromUser(u)
}

func createTag(t *testing.T, db *gorm.DB, p auth.Principal, name string) models.Tag {
	t.Helper()
	tag := models.Tag{Name: name, UserID: p.UserID}
	require.NoError(t, db.Create(&tag).Error)
	return tag
}

func createIngredient(t *testing.T, db *gorm.DB, p auth.Principal, name string) models.Ingredient {
	t.Helper()
	ing := models.Ingredient{Name: name, UserID: p.UserID}
	require.NoError(t, db.Create(&ing).Error)
	return ing
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func pricePtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func sampleRecipe(title string) service.RecipeInput {
	return service.RecipeInput{
		Title:       strPtr(title),
		TimeMinutes: intPtr(10),
		Price:       pricePtr("5.00"),
	}
}
