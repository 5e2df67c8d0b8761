package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-app/backend/internal/apperr"
	"github.com/pageza/recipe-app/backend/internal/auth"
)

const principalKey = "principal"

// PrincipalResolver turns a bearer token into the principal it identifies.
type PrincipalResolver interface {
	ResolvePrincipal(ctx context.Context, token string) (auth.Principal, error)
}

// AuthMiddleware requires a valid token and stores the resolved principal on
// the context. Requests without one are aborted with 401 before any handler
// runs.
func AuthMiddleware(resolver PrincipalResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			_ = c.Error(apperr.Unauthorized("authentication credentials were not provided"))
			c.Abort()
			return
		}

		token, ok := BearerToken(authHeader)
		if !ok {
			_ = c.Error(apperr.Unauthorized("invalid authorization header format"))
			c.Abort()
			return
		}

		principal, err := resolver.ResolvePrincipal(c.Request.Context(), token)
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(principalKey, principal)
		c.Next()
	}
}

// BearerToken extracts the token from an Authorization header of the form
// "Bearer <token>" or "Token <token>".
func BearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" || strings.Contains(token, " ") {
		return "", false
	}
	switch strings.ToLower(scheme) {
	case "bearer", "token":
		return token, true
	}
	return "", false
}

// CurrentPrincipal returns the principal set by AuthMiddleware.
func CurrentPrincipal(c *gin.Context) (auth.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return auth.Principal{}, false
	}
	p, ok := v.(auth.Principal)
	return p, ok && p.Valid()
}
