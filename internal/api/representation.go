package api

import (
	"github.com/pageza/recipe-app/backend/internal/models"
)

// Operation names the action a response is produced for.
type Operation string

const (
	OpList          Operation = "list"
	OpCreate        Operation = "create"
	OpRetrieve      Operation = "retrieve"
	OpUpdate        Operation = "update"
	OpPartialUpdate Operation = "partial_update"
	OpUploadImage   Operation = "upload_image"
)

// Operations lists every operation kind.
var Operations = []Operation{OpList, OpCreate, OpRetrieve, OpUpdate, OpPartialUpdate, OpUploadImage}

type recipeBuilder func(*models.Recipe) any

var recipeRepresentations = map[Operation]recipeBuilder{
	OpList:          recipeSummary,
	OpCreate:        recipeSummary,
	OpUpdate:        recipeSummary,
	OpPartialUpdate: recipeSummary,
	OpRetrieve:      recipeDetail,
	OpUploadImage:   recipeImage,
}

// RenderRecipe builds the representation of r for op.
func RenderRecipe(op Operation, r *models.Recipe) any {
	build, ok := recipeRepresentations[op]
	if !ok {
		build = recipeSummary
	}
	return build(r)
}

// RenderRecipes renders a list with the same builder for every element.
func RenderRecipes(op Operation, recipes []models.Recipe) []any {
	out := make([]any, len(recipes))
	for i := range recipes {
		out[i] = RenderRecipe(op, &recipes[i])
	}
	return out
}

func recipeSummary(r *models.Recipe) any {
	s := RecipeSummary{
		ID:          r.ID,
		Title:       r.Title,
		Ingredients: make([]uint, 0, len(r.Ingredients)),
		Tags:        make([]uint, 0, len(r.Tags)),
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.StringFixed(2),
		Link:        r.Link,
	}
	for _, i := range r.Ingredients {
		s.Ingredients = append(s.Ingredients, i.ID)
	}
	for _, t := range r.Tags {
		s.Tags = append(s.Tags, t.ID)
	}
	return s
}

func recipeDetail(r *models.Recipe) any {
	d := RecipeDetail{
		ID:          r.ID,
		Title:       r.Title,
		Ingredients: make([]AttributeResponse, 0, len(r.Ingredients)),
		Tags:        make([]AttributeResponse, 0, len(r.Tags)),
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price.StringFixed(2),
		Link:        r.Link,
		Image:       r.Image,
	}
	for _, i := range r.Ingredients {
		d.Ingredients = append(d.Ingredients, ingredientView(i))
	}
	for _, t := range r.Tags {
		d.Tags = append(d.Tags, tagView(t))
	}
	return d
}

func recipeImage(r *models.Recipe) any {
	return RecipeImage{ID: r.ID, Image: r.Image}
}

func tagView(t models.Tag) AttributeResponse {
	return AttributeResponse{ID: t.ID, Name: t.Name}
}

func ingredientView(i models.Ingredient) AttributeResponse {
	return AttributeResponse{ID: i.ID, Name: i.Name}
}
