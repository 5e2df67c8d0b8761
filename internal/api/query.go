package api

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-app/backend/internal/apperr"
	"github.com/pageza/recipe-app/backend/internal/auth"
	"github.com/pageza/recipe-app/backend/internal/middleware"
	"github.com/pageza/recipe-app/backend/internal/service"
	"github.com/pageza/recipe-app/backend/internal/validation"
)

// queryBool parses an optional boolean query flag; absent means false.
func queryBool(c *gin.Context, name string) (bool, error) {
	raw := c.Query(name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperr.FieldError(name, "must be one of 1, 0, true, false")
	}
	return v, nil
}

// queryIDs parses an optional comma-separated id list.
func queryIDs(c *gin.Context, name string) ([]uint, error) {
	return service.ParseIDs(name, c.Query(name))
}

// pathID reads the :id parameter. Ids that are not positive integers match
// no record.
func pathID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		return 0, apperr.NotFound("not found")
	}
	return uint(id), nil
}

// principal returns the authenticated principal or records a 401.
func principal(c *gin.Context) (auth.Principal, bool) {
	p, ok := middleware.CurrentPrincipal(c)
	if !ok {
		_ = c.Error(apperr.ErrUnauthorized)
	}
	return p, ok
}

// bindJSON binds the body into obj, recording a validation error on failure.
func bindJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(validation.FromBindError(err))
		return false
	}
	return true
}
