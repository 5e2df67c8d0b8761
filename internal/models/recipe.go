package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tag labels recipes. Names are not unique, not even per user.
type Tag struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	Name   string `gorm:"size:255;not null" json:"name"`
	UserID uint   `gorm:"not null;index" json:"-"`
	User   *User  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (t Tag) String() string { return t.Name }

// Ingredient is a user-owned ingredient that recipes can reference.
type Ingredient struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	Name   string `gorm:"size:255;not null" json:"name"`
	UserID uint   `gorm:"not null;index" json:"-"`
	User   *User  `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

func (i Ingredient) String() string { return i.Name }

// Recipe belongs to one user. Tags and Ingredients are not mapped by gorm;
// the recipe service loads them from the join tables.
type Recipe struct {
	ID          uint            `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	Title       string          `gorm:"size:255;not null" json:"title"`
	TimeMinutes int             `gorm:"not null" json:"time_minutes"`
	Price       decimal.Decimal `gorm:"type:numeric(5,2);not null" json:"price"`
	Link        string          `gorm:"size:255;not null;default:''" json:"link"`
	Image       string          `gorm:"size:512;not null;default:''" json:"image"`
	UserID      uint            `gorm:"not null;index" json:"-"`
	User        *User           `gorm:"constraint:OnDelete:CASCADE" json:"-"`

	Tags        []Tag        `gorm:"-" json:"-"`
	Ingredients []Ingredient `gorm:"-" json:"-"`
}

// RecipeTag is one row of the recipe/tag join table.
type RecipeTag struct {
	RecipeID uint    `gorm:"primaryKey;autoIncrement:false"`
	TagID    uint    `gorm:"primaryKey;autoIncrement:false;index"`
	Recipe   *Recipe `gorm:"constraint:OnDelete:CASCADE"`
	Tag      *Tag    `gorm:"constraint:OnDelete:CASCADE"`
}

// RecipeIngredient is one row of the recipe/ingredient join table.
type RecipeIngredient struct {
	RecipeID     uint        `gorm:"primaryKey;autoIncrement:false"`
	IngredientID uint        `gorm:"primaryKey;autoIncrement:false;index"`
	Recipe       *Recipe     `gorm:"constraint:OnDelete:CASCADE"`
	Ingredient   *Ingredient `gorm:"constraint:OnDelete:CASCADE"`
}

// All lists every model in dependency order, for auto-migration.
func All() []any {
	return []any{
		&User{},
		&Tag{},
		&Ingredient{},
		&Recipe{},
		&RecipeTag{},
		&RecipeIngredient{},
	}
}
