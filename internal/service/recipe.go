package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/pageza/recipe-app/backend/internal/apperr"
	"github.com/pageza/recipe-app/backend/internal/auth"
	"github.com/pageza/recipe-app/backend/internal/models"
)

var maxPrice = decimal.NewFromInt(1000)

// RecipeFilter narrows a recipe listing. Within one list ids are OR-ed; the
// two lists are AND-ed.
type RecipeFilter struct {
	TagIDs        []uint
	IngredientIDs []uint
}

// RecipeInput carries recipe fields from a write request. Nil pointers and
// nil slices are fields the client did not send.
type RecipeInput struct {
	Title         *string
	TimeMinutes   *int
	Price         *decimal.Decimal
	Link          *string
	TagIDs        []uint
	IngredientIDs []uint
}

// RecipeService handles recipe operations
type RecipeService struct {
	db      *gorm.DB
	storage ImageStorage
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, storage ImageStorage) *RecipeService {
	return &RecipeService{db: db, storage: storage}
}

// List returns the principal's recipes, newest id first, with tags and
// ingredients loaded.
func (s *RecipeService) List(ctx context.Context, p auth.Principal, f RecipeFilter) ([]models.Recipe, error) {
	recipes := []models.Recipe{}
	err := s.db.WithContext(ctx).
		Scopes(
			tagAssociation.WithAnyOf(f.TagIDs),
			ingredientAssociation.WithAnyOf(f.IngredientIDs),
			OwnedBy("recipes", p),
		).
		Order("recipes.id DESC").
		Find(&recipes).Error
	if err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	if err := loadAssociations(s.db.WithContext(ctx), recipes); err != nil {
		return nil, err
	}
	return recipes, nil
}

// Get returns one of the principal's recipes. Recipes of other users are
// reported as not found.
func (s *RecipeService) Get(ctx context.Context, p auth.Principal, id uint) (*models.Recipe, error) {
	recipe, err := findOwned(s.db.WithContext(ctx), p, id)
	if err != nil {
		return nil, err
	}
	recipes := []models.Recipe{*recipe}
	if err := loadAssociations(s.db.WithContext(ctx), recipes); err != nil {
		return nil, err
	}
	return &recipes[0], nil
}

// Create stores a recipe owned by the principal together with its links.
func (s *RecipeService) Create(ctx context.Context, p auth.Principal, in RecipeInput) (*models.Recipe, error) {
	if err := validateRecipe(in, false); err != nil {
		return nil, err
	}

	recipe := models.Recipe{
		Title:       strings.TrimSpace(*in.Title),
		TimeMinutes: *in.TimeMinutes,
		Price:       *in.Price,
		UserID:      p.UserID,
	}
	if in.Link != nil {
		recipe.Link = strings.TrimSpace(*in.Link)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkOwnedIDs(tx, p, in); err != nil {
			return err
		}
		if err := tx.Create(&recipe).Error; err != nil {
			return fmt.Errorf("create recipe: %w", err)
		}
		return replaceLinks(tx, recipe.ID, in.TagIDs, in.IngredientIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, p, recipe.ID)
}

// Update replaces every writable field. Omitted link, tags and ingredients
// are reset to empty.
func (s *RecipeService) Update(ctx context.Context, p auth.Principal, id uint, in RecipeInput) (*models.Recipe, error) {
	if err := validateRecipe(in, false); err != nil {
		return nil, err
	}
	if in.Link == nil {
		in.Link = new(string)
	}
	if in.TagIDs == nil {
		in.TagIDs = []uint{}
	}
	if in.IngredientIDs == nil {
		in.IngredientIDs = []uint{}
	}
	return s.update(ctx, p, id, in)
}

// PartialUpdate changes only the supplied fields.
func (s *RecipeService) PartialUpdate(ctx context.Context, p auth.Principal, id uint, in RecipeInput) (*models.Recipe, error) {
	if err := validateRecipe(in, true); err != nil {
		return nil, err
	}
	return s.update(ctx, p, id, in)
}

func (s *RecipeService) update(ctx context.Context, p auth.Principal, id uint, in RecipeInput) (*models.Recipe, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := findOwned(tx, p, id)
		if err != nil {
			return err
		}
		if err := checkOwnedIDs(tx, p, in); err != nil {
			return err
		}

		changes := map[string]any{}
		if in.Title != nil {
			changes["title"] = strings.TrimSpace(*in.Title)
		}
		if in.TimeMinutes != nil {
			changes["time_minutes"] = *in.TimeMinutes
		}
		if in.Price != nil {
			changes["price"] = *in.Price
		}
		if in.Link != nil {
			changes["link"] = strings.TrimSpace(*in.Link)
		}
		if len(changes) > 0 {
			if err := tx.Model(recipe).Updates(changes).Error; err != nil {
				return fmt.Errorf("update recipe: %w", err)
			}
		}
		return replaceLinks(tx, recipe.ID, in.TagIDs, in.IngredientIDs)
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, p, id)
}

// UploadImage validates and stores an image for one of the principal's
// recipes. A payload that does not decode leaves the current image in place.
func (s *RecipeService) UploadImage(ctx context.Context, p auth.Principal, id uint, filename string, data []byte) (*models.Recipe, error) {
	recipe, err := findOwned(s.db.WithContext(ctx), p, id)
	if err != nil {
		return nil, err
	}

	img, err := DecodeImage(data)
	if errors.Is(err, ErrImageTooLarge) {
		return nil, apperr.FieldError("image", fmt.Sprintf(
			"ensure the image is at most %dx%d pixels and %d pixels in total",
			MaxImageDimension, MaxImageDimension, MaxImagePixels))
	}
	if err != nil {
		return nil, apperr.FieldError("image",
			"upload a valid image. The file you uploaded was either not an image or a corrupted image")
	}

	key := RecipeImageKey(filename, img.Format)
	ref, err := s.storage.Save(ctx, key, data, img.ContentType)
	if err != nil {
		return nil, apperr.Internal(err, "failed to store image")
	}

	if err := s.db.WithContext(ctx).Model(recipe).Update("image", ref).Error; err != nil {
		// The stored object is unreferenced now.
		if delErr := s.storage.Delete(ctx, key); delErr != nil {
			err = errors.Join(err, delErr)
		}
		return nil, fmt.Errorf("save image reference: %w", err)
	}
	recipe.Image = ref
	return recipe, nil
}

// ParseIDs parses a comma-separated list of ids from query parameter param.
// An empty string yields no ids.
func ParseIDs(param, raw string) ([]uint, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]uint, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 0)
		if err != nil || id == 0 {
			return nil, apperr.FieldError(param, fmt.Sprintf("invalid id %q", part))
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

func findOwned(db *gorm.DB, p auth.Principal, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := db.Scopes(OwnedBy("recipes", p)).Where("recipes.id = ?", id).First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("recipe not found")
	}
	if err != nil {
		return nil, fmt.Errorf("get recipe: %w", err)
	}
	return &recipe, nil
}

func validateRecipe(in RecipeInput, partial bool) error {
	fields := apperr.Fields{}

	if in.Title == nil {
		if !partial {
			fields["title"] = "this field is required"
		}
	} else if t := strings.TrimSpace(*in.Title); t == "" {
		fields["title"] = "may not be blank"
	} else if len(t) > 255 {
		fields["title"] = "ensure this field has no more than 255 characters"
	}

	if in.TimeMinutes == nil && !partial {
		fields["time_minutes"] = "this field is required"
	}

	if in.Price == nil {
		if !partial {
			fields["price"] = "this field is required"
		}
	} else if !in.Price.Equal(in.Price.Round(2)) {
		fields["price"] = "ensure that there are no more than 2 decimal places"
	} else if in.Price.Abs().GreaterThanOrEqual(maxPrice) {
		fields["price"] = "ensure that there are no more than 5 digits in total"
	}

	if in.Link != nil && len(strings.TrimSpace(*in.Link)) > 255 {
		fields["link"] = "ensure this field has no more than 255 characters"
	}

	if len(fields) > 0 {
		return apperr.Validation("validation failed", fields)
	}
	return nil
}

// checkOwnedIDs fails on the first tag or ingredient id that does not name a
// record owned by the principal.
func checkOwnedIDs(tx *gorm.DB, p auth.Principal, in RecipeInput) error {
	if err := checkOwned(tx, p, tagAssociation, "tags", in.TagIDs); err != nil {
		return err
	}
	return checkOwned(tx, p, ingredientAssociation, "ingredients", in.IngredientIDs)
}

func checkOwned(tx *gorm.DB, p auth.Principal, a association, field string, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	var found []uint
	err := tx.Table(a.table).
		Where(a.table+".id IN ?", ids).
		Scopes(OwnedBy(a.table, p)).
		Pluck(a.table+".id", &found).Error
	if err != nil {
		return fmt.Errorf("check %s: %w", field, err)
	}

	owned := make(map[uint]bool, len(found))
	for _, id := range found {
		owned[id] = true
	}
	for _, id := range ids {
		if !owned[id] {
			return apperr.FieldError(field, fmt.Sprintf("invalid pk \"%d\" - object does not exist", id))
		}
	}
	return nil
}

// replaceLinks rewrites the recipe's join rows. A nil slice leaves that
// association untouched.
func replaceLinks(tx *gorm.DB, recipeID uint, tagIDs, ingredientIDs []uint) error {
	if tagIDs != nil {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeTag{}).Error; err != nil {
			return fmt.Errorf("clear recipe tags: %w", err)
		}
		rows := make([]models.RecipeTag, 0, len(tagIDs))
		for _, id := range unique(tagIDs) {
			rows = append(rows, models.RecipeTag{RecipeID: recipeID, TagID: id})
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("link recipe tags: %w", err)
			}
		}
	}
	if ingredientIDs != nil {
		if err := tx.Where("recipe_id = ?", recipeID).Delete(&models.RecipeIngredient{}).Error; err != nil {
			return fmt.Errorf("clear recipe ingredients: %w", err)
		}
		rows := make([]models.RecipeIngredient, 0, len(ingredientIDs))
		for _, id := range unique(ingredientIDs) {
			rows = append(rows, models.RecipeIngredient{RecipeID: recipeID, IngredientID: id})
		}
		if len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return fmt.Errorf("link recipe ingredients: %w", err)
			}
		}
	}
	return nil
}

type linkedRow struct {
	RecipeID uint
	ID       uint
	Name     string
}

// loadAssociations fills Tags and Ingredients of every recipe with two
// queries, ordered by id.
func loadAssociations(db *gorm.DB, recipes []models.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}
	ids := make([]uint, len(recipes))
	index := make(map[uint]*models.Recipe, len(recipes))
	for i := range recipes {
		ids[i] = recipes[i].ID
		recipes[i].Tags = []models.Tag{}
		recipes[i].Ingredients = []models.Ingredient{}
		index[recipes[i].ID] = &recipes[i]
	}

	tags, err := linked(db, tagAssociation, ids)
	if err != nil {
		return err
	}
	for _, row := range tags {
		r := index[row.RecipeID]
		r.Tags = append(r.Tags, models.Tag{ID: row.ID, Name: row.Name, UserID: r.UserID})
	}

	ingredients, err := linked(db, ingredientAssociation, ids)
	if err != nil {
		return err
	}
	for _, row := range ingredients {
		r := index[row.RecipeID]
		r.Ingredients = append(r.Ingredients, models.Ingredient{ID: row.ID, Name: row.Name, UserID: r.UserID})
	}
	return nil
}

func linked(db *gorm.DB, a association, recipeIDs []uint) ([]linkedRow, error) {
	var rows []linkedRow
	err := db.Table(a.joinTable).
		Select(fmt.Sprintf("%[1]s.recipe_id AS recipe_id, %[2]s.id AS id, %[2]s.name AS name", a.joinTable, a.table)).
		Joins(fmt.Sprintf("JOIN %[2]s ON %[2]s.id = %[1]s.%[3]s", a.joinTable, a.table, a.joinColumn)).
		Where(a.joinTable+".recipe_id IN ?", recipeIDs).
		Order(a.table + ".id").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", a.table, err)
	}
	return rows, nil
}

func unique(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
