package service

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/pageza/recipe-app/backend/internal/auth"
)

// Scope is a reusable query fragment, applied with db.Scopes.
type Scope = func(*gorm.DB) *gorm.DB

// OwnedBy restricts table to rows owned by the principal. Services apply it
// last, after every request-driven filter, so no parameter can widen it.
func OwnedBy(table string, p auth.Principal) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(fmt.Sprintf("%s.user_id = ?", table), p.UserID)
	}
}

// association describes one many-to-many link between recipes and a
// recipe attribute (tags or ingredients).
type association struct {
	table      string // attribute table, e.g. "tags"
	joinTable  string // e.g. "recipe_tags"
	joinColumn string // attribute column in joinTable, e.g. "tag_id"
}

var (
	tagAssociation = association{
		table:      "tags",
		joinTable:  "recipe_tags",
		joinColumn: "tag_id",
	}
	ingredientAssociation = association{
		table:      "ingredients",
		joinTable:  "recipe_ingredients",
		joinColumn: "ingredient_id",
	}
)

// WithAnyOf keeps recipes linked to at least one of ids. It is an EXISTS
// semi-join, so a recipe matching several ids is still returned once.
// An empty ids slice leaves the query unchanged.
func (a association) WithAnyOf(ids []uint) Scope {
	return func(db *gorm.DB) *gorm.DB {
		if len(ids) == 0 {
			return db
		}
		return db.Where(fmt.Sprintf(
			"EXISTS (SELECT 1 FROM %[1]s WHERE %[1]s.recipe_id = recipes.id AND %[1]s.%[2]s IN ?)",
			a.joinTable, a.joinColumn,
		), ids)
	}
}

// AssignedTo keeps attributes referenced by at least one recipe owned by p.
// Recipes of other users never make an attribute visible.
func (a association) AssignedTo(p auth.Principal) Scope {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(fmt.Sprintf(
			"EXISTS (SELECT 1 FROM %[1]s JOIN recipes ON recipes.id = %[1]s.recipe_id"+
				" WHERE %[1]s.%[2]s = %[3]s.id AND recipes.user_id = ?)",
			a.joinTable, a.joinColumn, a.table,
		), p.UserID)
	}
}
