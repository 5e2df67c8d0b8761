package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/recipe-app/backend/internal/api"
	"github.com/pageza/recipe-app/backend/internal/auth"
	"github.com/pageza/recipe-app/backend/internal/logger"
	"github.com/pageza/recipe-app/backend/internal/middleware"
	"github.com/pageza/recipe-app/backend/internal/models"
	"github.com/pageza/recipe-app/backend/internal/service"
	"github.com/pageza/recipe-app/backend/internal/testdb"
	"github.com/pageza/recipe-app/backend/internal/validation"
)

// testAPI is a fully wired router over an in-memory database.
type testAPI struct {
	t         *testing.T
	router    *gin.Engine
	db        *gorm.DB
	svc       api.Services
	mediaRoot string
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Setup()

	db := testdb.NewSQLite(t)
	mediaRoot := t.TempDir()
	users := service.NewUserService(db, bcrypt.MinCost)
	svc := api.Services{
		Users:       users,
		Auth:        service.NewAuthService(users, "test-secret", time.Hour),
		Tags:        service.NewTagService(db),
		Ingredients: service.NewIngredientService(db),
		Recipes:     service.NewRecipeService(db, service.NewLocalStorage(mediaRoot, "/media")),
	}

	router := gin.New()
	router.Use(middleware.ErrorHandler(logger.Discard()))
	api.RegisterRoutes(router, svc, nil)

	return &testAPI{t: t, router: router, db: db, svc: svc, mediaRoot: mediaRoot}
}

// client issues requests, authenticated when token is set.
type client struct {
	api   *testAPI
	token string
	user  *models.User
}

func (a *testAPI) anonymous() *client {
	return &client{api: a}
}

func (a *testAPI) login(email string) *client {
	a.t.Helper()
	u, err := a.svc.Users.CreateUser(context.Background(), email, "testpass123", service.UserFields{Name: "Test Name"})
	require.NoError(a.t, err)
	token, err := a.svc.Auth.GenerateToken(u)
	require.NoError(a.t, err)
	return &client{api: a, token: token, user: u}
}

func (c *client) do(req *http.Request) *httptest.ResponseRecorder {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	rr := httptest.NewRecorder()
	c.api.router.ServeHTTP(rr, req)
	return rr
}

func (c *client) get(path string) *httptest.ResponseRecorder {
	return c.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (c *client) send(method, path string, body any) *httptest.ResponseRecorder {
	c.api.t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(c.api.t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out), rr.Body.String())
	return out
}

func errorFields(t *testing.T, rr *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	return decode[middleware.ErrorResponse](t, rr).Fields
}

func (c *client) principal() auth.Principal {
	return auth.FromUser(c.user)
}

func mustPrice(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
