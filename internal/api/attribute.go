package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-app/backend/internal/models"
	"github.com/pageza/recipe-app/backend/internal/service"
)

// AttributeHandler serves the list and create endpoints of tags or
// ingredients.
type AttributeHandler[T service.Attribute] struct {
	svc  *service.AttributeService[T]
	view func(T) AttributeResponse
}

type (
	TagHandler        = AttributeHandler[models.Tag]
	IngredientHandler = AttributeHandler[models.Ingredient]
)

func NewTagHandler(svc *service.TagService) *TagHandler {
	return &TagHandler{svc: svc, view: tagView}
}

func NewIngredientHandler(svc *service.IngredientService) *IngredientHandler {
	return &IngredientHandler{svc: svc, view: ingredientView}
}

func (h *AttributeHandler[T]) RegisterRoutes(group *gin.RouterGroup) {
	group.GET("", h.List)
	group.POST("", h.Create)
}

// List supports ?assigned_only=1.
func (h *AttributeHandler[T]) List(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	assignedOnly, err := queryBool(c, "assigned_only")
	if err != nil {
		_ = c.Error(err)
		return
	}

	items, err := h.svc.List(c.Request.Context(), p, assignedOnly)
	if err != nil {
		_ = c.Error(err)
		return
	}
	out := make([]AttributeResponse, len(items))
	for i, item := range items {
		out[i] = h.view(item)
	}
	c.JSON(http.StatusOK, out)
}

func (h *AttributeHandler[T]) Create(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req AttributeRequest
	if !bindJSON(c, &req) {
		return
	}

	item, err := h.svc.Create(c.Request.Context(), p, req.Name)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, h.view(*item))
}
