package api

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-app/backend/internal/apperr"
	"github.com/pageza/recipe-app/backend/internal/auth"
	"github.com/pageza/recipe-app/backend/internal/models"
	"github.com/pageza/recipe-app/backend/internal/service"
)

// MaxImageBytes bounds the size of an uploaded recipe image.
const MaxImageBytes = 10 << 20

type RecipeHandler struct {
	recipes *service.RecipeService
}

func NewRecipeHandler(recipes *service.RecipeService) *RecipeHandler {
	return &RecipeHandler{recipes: recipes}
}

// RegisterRoutes mounts the recipe endpoints. uploadLimit runs before the
// image upload only.
func (h *RecipeHandler) RegisterRoutes(group *gin.RouterGroup, uploadLimit gin.HandlerFunc) {
	group.GET("", h.List)
	group.POST("", h.Create)
	group.GET("/:id", h.Retrieve)
	group.PUT("/:id", h.Update)
	group.PATCH("/:id", h.PartialUpdate)
	group.POST("/:id/upload-image", uploadLimit, h.UploadImage)
}

// List supports ?tags=1,2 and ?ingredients=3.
func (h *RecipeHandler) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	tagIDs, err := queryIDs(c, "tags")
	if err != nil {
		_ = c.Error(err)
		return
	}
	ingredientIDs, err := queryIDs(c, "ingredients")
	if err != nil {
		_ = c.Error(err)
		return
	}

	recipes, err := h.recipes.List(c.Request.Context(), p, service.RecipeFilter{
		TagIDs:        tagIDs,
		IngredientIDs: ingredientIDs,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, RenderRecipes(OpList, recipes))
}

func (h *RecipeHandler) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req RecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := h.recipes.Create(c.Request.Context(), p, req.input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, RenderRecipe(OpCreate, recipe))
}

func (h *RecipeHandler) Retrieve(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, err := pathID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	recipe, err := h.recipes.Get(c.Request.Context(), p, id)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, RenderRecipe(OpRetrieve, recipe))
}

func (h *RecipeHandler) Update(c *gin.Context) {
	h.write(c, OpUpdate, h.recipes.Update)
}

func (h *RecipeHandler) PartialUpdate(c *gin.Context) {
	h.write(c, OpPartialUpdate, h.recipes.PartialUpdate)
}

type recipeWriter func(ctx context.Context, p auth.Principal, id uint, in service.RecipeInput) (*models.Recipe, error)

func (h *RecipeHandler) write(c *gin.Context, op Operation, apply recipeWriter) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, err := pathID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}
	var req RecipeRequest
	if !bindJSON(c, &req) {
		return
	}

	recipe, err := apply(c.Request.Context(), p, id, req.input())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, RenderRecipe(op, recipe))
}

// UploadImage expects a multipart form with the file in field "image".
func (h *RecipeHandler) UploadImage(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id, err := pathID(c)
	if err != nil {
		_ = c.Error(err)
		return
	}

	header, err := c.FormFile("image")
	if err != nil {
		_ = c.Error(apperr.FieldError("image", "no file was submitted"))
		return
	}
	if header.Size > MaxImageBytes {
		_ = c.Error(apperr.FieldError("image", "file is too large"))
		return
	}
	file, err := header.Open()
	if err != nil {
		_ = c.Error(apperr.Internal(err, "failed to read upload"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxImageBytes+1))
	if err != nil {
		_ = c.Error(apperr.Internal(err, "failed to read upload"))
		return
	}

	recipe, err := h.recipes.UploadImage(c.Request.Context(), p, id, header.Filename, data)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, RenderRecipe(OpUploadImage, recipe))
}

func (r RecipeRequest) input() service.RecipeInput {
	return service.RecipeInput{
		Title:         r.Title,
		TimeMinutes:   r.TimeMinutes,
		Price:         r.Price,
		Link:          r.Link,
		TagIDs:        r.Tags,
		IngredientIDs: r.Ingredients,
	}
}
