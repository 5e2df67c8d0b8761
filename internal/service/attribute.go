package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/pageza/recipe-app/backend/internal/apperr"
	"github.com/pageza/recipe-app/backend/internal/auth"
	"github.com/pageza/recipe-app/backend/internal/models"
)

// Attribute is a user-owned record recipes can be linked to.
type Attribute interface {
	models.Tag | models.Ingredient
}

// AttributeService lists and creates tags or ingredients.
type AttributeService[T Attribute] struct {
	db    *gorm.DB
	assoc association
	build func(name string, userID uint) T
}

type (
	TagService        = AttributeService[models.Tag]
	IngredientService = AttributeService[models.Ingredient]
)

func NewTagService(db *gorm.DB) *TagService {
	return &TagService{
		db:    db,
		assoc: tagAssociation,
		build: func(name string, userID uint) models.Tag {
			return models.Tag{Name: name, UserID: userID}
		},
	}
}

func NewIngredientService(db *gorm.DB) *IngredientService {
	return &IngredientService{
		db:    db,
		assoc: ingredientAssociation,
		build: func(name string, userID uint) models.Ingredient {
			return models.Ingredient{Name: name, UserID: userID}
		},
	}
}

// List returns the principal's records ordered by name descending. With
// assignedOnly set, only records used by one of the principal's recipes are
// returned.
func (s *AttributeService[T]) List(ctx context.Context, p auth.Principal, assignedOnly bool) ([]T, error) {
	q := s.db.WithContext(ctx).Model(new(T))
	if assignedOnly {
		q = q.Scopes(s.assoc.AssignedTo(p))
	}

	items := []T{}
	err := q.Scopes(OwnedBy(s.assoc.table, p)).
		Order(s.assoc.table + ".name DESC").
		Order(s.assoc.table + ".id DESC").
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.assoc.table, err)
	}
	return items, nil
}

// Create stores a record owned by the principal.
func (s *AttributeService[T]) Create(ctx context.Context, p auth.Principal, name string) (*T, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.FieldError("name", "may not be blank")
	}
	if len(name) > 255 {
		return nil, apperr.FieldError("name", "ensure this field has no more than 255 characters")
	}

	item := s.build(name, p.UserID)
	if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
		return nil, fmt.Errorf("create %s: %w", s.assoc.table, err)
	}
	return &item, nil
}
