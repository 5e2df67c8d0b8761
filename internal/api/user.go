package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipe-app/backend/internal/apperr"
	"github.com/pageza/recipe-app/backend/internal/models"
	"github.com/pageza/recipe-app/backend/internal/service"
)

// UserHandler serves registration, token and profile endpoints.
type UserHandler struct {
	users *service.UserService
	auth  *service.AuthService
}

func NewUserHandler(users *service.UserService, auth *service.AuthService) *UserHandler {
	return &UserHandler{users: users, auth: auth}
}

// Create registers a new account.
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.users.CreateUser(c.Request.Context(), req.Email, req.Password, service.UserFields{Name: req.Name})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, userView(user))
}

// Token exchanges email and password for an access token.
func (h *UserHandler) Token(c *gin.Context) {
	var req TokenRequest
	if !bindJSON(c, &req) {
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, TokenResponse{Token: token})
}

// Me returns the authenticated user.
func (h *UserHandler) Me(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	user, err := h.users.GetUser(c.Request.Context(), p.UserID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, userView(user))
}

// UpdateMe handles PUT, which needs every field, and PATCH.
func (h *UserHandler) UpdateMe(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}

	if c.Request.Method == http.MethodPut {
		missing := apperr.Fields{}
		if req.Email == nil {
			missing["email"] = "is required"
		}
		if req.Password == nil {
			missing["password"] = "is required"
		}
		if req.Name == nil {
			missing["name"] = "is required"
		}
		if len(missing) > 0 {
			_ = c.Error(apperr.Validation("validation failed", missing))
			return
		}
	}

	user, err := h.users.UpdateUser(c.Request.Context(), p, service.UserUpdate{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, userView(user))
}

func userView(u *models.User) UserResponse {
	return UserResponse{Email: u.Email, Name: u.Name}
}
