package api_test

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-app/backend/internal/api"
	"github.com/pageza/recipe-app/backend/internal/models"
)

const recipesURL = "/api/v1/recipe/recipes"

func detailURL(id uint) string { return fmt.Sprintf("%s/%d", recipesURL, id) }

func imageUploadURL(id uint) string { return fmt.Sprintf("%s/%d/upload-image", recipesURL, id) }

func (c *client) recipe(title string, mutate ...func(*recipePayload)) models.Recipe {
	c.api.t.Helper()
	in := sampleInput(title)
	p := recipePayload{}
	for _, m := range mutate {
		m(&p)
	}
	in.TagIDs, in.IngredientIDs = p.tags, p.ingredients
	if p.link != "" {
		in.Link = &p.link
	}
	r, err := c.api.svc.Recipes.Create(context.Background(), c.principal(), in)
	require.NoError(c.api.t, err)
	return *r
}

type recipePayload struct {
	tags        []uint
	ingredients []uint
	link        string
}

func withTags(ids ...uint) func(*recipePayload) {
	return func(p *recipePayload) { p.tags = ids }
}

func withIngredients(ids ...uint) func(*recipePayload) {
	return func(p *recipePayload) { p.ingredients = ids }
}

func withLink(link string) func(*recipePayload) {
	return func(p *recipePayload) { p.link = link }
}

func (c *client) upload(id uint, filename string, data []byte) *httptest.ResponseRecorder {
	c.api.t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", filename)
	require.NoError(c.api.t, err)
	_, err = part.Write(data)
	require.NoError(c.api.t, err)
	require.NoError(c.api.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, imageUploadURL(id), &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.do(req)
}

func jpegBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	img.Set(5, 5, color.RGBA{G: 255, A: 255})
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, nil))
	return buf.Bytes()
}

func TestRecipesRequireAuth(t *testing.T) {
	a := newTestAPI(t)
	assert.Equal(t, http.StatusUnauthorized, a.anonymous().get(recipesURL).Code)
	assert.Equal(t, http.StatusUnauthorized, a.anonymous().get(detailURL(1)).Code)
}

func TestRetrieveRecipes(t *testing.T) {
	a := newTestAPI(t)
	c := a.login("user@example.com")
	first := c.recipe("First")
	second := c.recipe("Second")

	rr := c.get(recipesURL)

	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[[]api.RecipeSummary](t, rr)
	require.Len(t, got, 2)
	assert.Equal(t, second.ID, got[0].ID)
	assert.Equal(t, first.ID, got[1].ID)
	assert.Equal(t, "5.25", got[0].Price)
	assert.Equal(t, []uint{}, got[0].Tags)
}

func TestRecipeListLimitedToUser(t *testing.T) {
	a := newTestAPI(t)
	other := a.login("other@example.com")
	other.recipe("Not yours")
	c := a.login("user@example.com")
	mine := c.recipe("Mine")

	rr := c.get(recipesURL)

	require.Equal(t, http.StatusOK, rr.Code)
	got := decode[[]api.RecipeSummary](t, rr)
	require.Len(t, got, 1)
	assert.Equal(t, mine.ID, got[0].ID)
}

func TestGetRecipeDetail(t *testing.T) {
	a := newTestAPI(t)
	c := a.login("user@example.com")
	tag := c.tag("Dinner")
	ing := c.ingredient("Salt")
	r := c.recipe("Soup", withTags(tag.ID), withIngredients(ing.ID), withLink("https://example.com/soup"))

	rr := c.get(detailURL(r.ID))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, fmt.Sprintf(`{
		"id": %d, "title": "Soup", "time_minutes": 22, "price": "5.25",
		"link": "https://example.com/soup", "image": "",
		"tags": [{"id": %d, "name": "Dinner"}],
		"ingredients": [{"id": %d, "name": "Salt"}]
	}`, r.ID, tag.ID, ing.ID), rr.Body.String())
}

func TestGetRecipeNotFound(t *testing.T) {
	a := newTestAPI(t)
	other := a.login("other@example.com")
	theirs := other.recipe("Theirs")
	c := a.login("user@example.com")

	assert.Equal(t, http.StatusNotFound, c.get(detailURL(theirs.ID)).Code)
	assert.Equal(t, http.StatusNotFound, c.get(detailURL(9999)).Code)
	assert.Equal(t, http.StatusNotFound, c.get(recipesURL+"/abc").Code)
}

func TestCreateBasicRecipe(t *testing.T) {
	a := newTestAPI(t)
	c := a.login("user@example.com")

	rr := c.send(http.MethodPost, recipesURL, map[string]any{
		"title": "Chocolate cheesecake", "time_minutes": 30, "price": "5.00",
	})

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	got := decode[api.RecipeSummary](t, rr)
	assert.Equal(t, "Chocolate cheesecake", got.Title)
	assert.Equal(t, 30, got.TimeMinutes)
	assert.Equal(t, "5.00", got.Price)

	var stored models.Recipe
	require.NoError(t, a.db.First(&stored, got.ID).Error)
	assert.Equal(t, c.user.ID, stored.UserID)
	assert.True(t, stored.Price.Equal(mustPrice("5")))
}

func TestCreateRecipeNumericPrice(t *testing.T) {
	a := newTestAPI(t)
	c := a.login("user@example.com")

	rr := c.send(http.MethodPost, recipesURL, map[string]any{
		"title": "Toast", "time_minutes": 2, "price": 1.5,
	})

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "1.50", decode[api.RecipeSummary](t, rr).Price)
}

func TestCreateRecipeWithTagsAndIngredients(t *testing.T) {
	a := newTestAPI(t)
	c := a.login("user@example.com")
	vegan := c.tag("Vegan")
	dessert := c.tag("Dessert")
	prawns := c.ingredient("Prawns")
	ginger := c.ingredient("Ginger")

	rr := c.send(http.MethodPost, recipesURL, map[string]any{
		"title": "Thai prawn curry", "time_minutes": 20, "price": "7.00",
		"tags":        []uint{vegan.ID, dessert.ID},
		"ingredients": []uint{prawns.ID, ginger.ID},
	})

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	got := decode[api.RecipeSummary](t, rr)
	assert.ElementsMatch(t, []uint{vegan.ID, dessert.ID}, got.Tags)
	assert.ElementsMatch(t, []uint{prawns.ID, ginger.ID}, got.Ingredients)
}

func TestCreateRecipeInvalid(t *testing.T) {
	a := newTestAPI(t)
	c := a.login("user@example.com")
	foreign := a.login("other@example.com").tag("Theirs")

	tests := []struct {
		name  string
		body  map[string]any
		field string
	}{
		{"missing title", map[string]any{"time_minutes": 5, "price": "1.00"}, "title"},
		{"missing price", map[string]any{"title": "x", "time_minutes": 5}, "price"},
		{"price precision", map[string]any{"title": "x", "time_minutes": 5, "price": "1.234"}, "price"},
		{"price too large", map[string]any{"title": "x", "time_minutes": 5, "price": "1000"}, "price"},
		{"foreign tag", map[string]any{"title": "x", "time_minutes": 5, "price": "1", "tags": []uint{foreign.ID}}, "tags"},
		{"unknown ingredient", map[string]any{"title": "x", "time_minutes": 5, "price": "1", "ingredients": []uint{4242}}, "ingredients"},
		{"malformed tag id", map[string]any{"title": "x", "time_minutes": 5, "price": "1", "tags": []string{"abc"}}, "tags"},
		{"wrong type", map[string]any{"title": "x", "time_minutes": "soon", "price": "1"}, "time_minutes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := c.send(http.MethodPost, recipesURL, tt.body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, rr.Body.String())
			assert.Contains(t, errorFields(t, rr), tt.field)
		})
	}

	rr := c.send(http.MethodPost, recipesURL, map[string]any{
		"title": "x", "time_minutes": 5, "price": "1", "tags": []uint{foreign.ID},
	})
	assert.Equal(t, fmt.Sprintf("invalid pk \"%d\" - object does not exist", foreign.ID), errorFields(t, rr)["tags"])

	var count int64
	require.NoError(t, a.db.Model(&models.Recipe{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestPartialUpdateRecipe(t *testing.T) {
	a := newTestAPI(t)
	c := a.login("user@example.com")
	curry := c.tag("Curry")
	r := c.recipe("Chicken tikka", withTags(c.tag("Indian").ID), withLink("https://example.com"))

	rr := c.send(http.MethodPatch, detailURL(r.ID), map[string]any{"title": "Chicken tikka masala", "tags": []uint{curry.ID}})

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decode[api.RecipeSummary](t, rr)
	assert.Equal(t, "Chicken tikka masala", got.Title)
	assert.Equal(t, []uint{curry.ID}, got.Tags)
	assert.Equal(t, "https://example.com", got.Link)
	assert.Equal(t, 22, got.TimeMinutes)
}

func TestFullUpdateRecipe(t *testing.T) {
	a := newTestAPI(t)
	c := a.login("user@example.com")
	r := c.recipe("Spaghetti carbonara", withTags(c.tag("Pasta").ID), withLink("https://example.com"))

	rr := c.send(http.MethodPut, detailURL(r.ID), map[string]any{
		"title": "Spaghetti", "time_minutes": 25, "price": "5.00",
	})

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decode[api.RecipeSummary](t, rr)
	assert.Equal(t, "Spaghetti", got.Title)
	assert.Equal(t, 25, got.TimeMinutes)
	assert.Equal(t, "5.00", got.Price)
	assert.Empty(t, got.Link)
	assert.Empty(t, got.Tags)
}

func TestUpdateOtherUsersRecipe(t *testing.T) {
	a := newTestAPI(t)
	other := a.login("other@example.com")
	theirs := other.recipe("Theirs")
	c := a.login("user@example.com")

	rr := c.send(http.MethodPatch, detailURL(theirs.ID), map[string]any{"title": "Stolen"})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	var stored models.Recipe
	require.NoError(t, a.db.First(&stored, theirs.ID).Error)
	assert.Equal(t, "Theirs", stored.Title)
}

func TestFilterRecipes(t *testing.T) {
	a := newTestAPI(t)
	c := a.login("user@example.com")
	vegan := c.tag("Vegan")
	vegetarian := c.tag("Vegetarian")
	feta := c.ingredient("Feta cheese")
	chicken := c.ingredient("Chicken")

	r1 := c.recipe("Thai vegetable curry", withTags(vegan.ID))
	r2 := c.recipe("Aubergine with tahini", withTags(vegetarian.ID))
	r3 := c.recipe("Fish and chips")
	r4 := c.recipe("Posh beans on toast", withIngredients(feta.ID))
	r5 := c.recipe("Chicken cacciatore", withIngredients(chicken.ID), withTags(vegan.ID))

	ids := func(rr *httptest.ResponseRecorder) []uint {
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		out := []uint{}
		for _, r := range decode[[]api.RecipeSummary](t, rr) {
			out = append(out, r.ID)
		}
		return out
	}

	byTags := ids(c.get(fmt.Sprintf("%s?tags=%d,%d", recipesURL, vegan.ID, vegetarian.ID)))
	assert.Equal(t, []uint{r5.ID, r2.ID, r1.ID}, byTags)
	assert.NotContains(t, byTags, r3.ID)

	byIngredients := ids(c.get(fmt.Sprintf("%s?ingredients=%d,%d", recipesURL, feta.ID, chicken.ID)))
	assert.Equal(t, []uint{r5.ID, r4.ID}, byIngredients)

	both := ids(c.get(fmt.Sprintf("%s?tags=%d&ingredients=%d", recipesURL, vegan.ID, chicken.ID)))
	assert.Equal(t, []uint{r5.ID}, both)

	rr := c.get(recipesURL + "?tags=1,abc")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, errorFields(t, rr), "tags")
}

func TestUploadImage(t *testing.T) {
	a := newTestAPI(t)
	c := a.login("user@example.com")
	r := c.recipe("Photogenic")

	rr := c.upload(r.ID, "photo.jpg", jpegBytes(t))

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	got := decode[api.RecipeImage](t, rr)
	assert.Equal(t, r.ID, got.ID)
	require.True(t, strings.HasPrefix(got.Image, "/media/uploads/recipe/"), got.Image)
	assert.True(t, strings.HasSuffix(got.Image, ".jpg"))

	stored := filepath.Join(a.mediaRoot, filepath.FromSlash(strings.TrimPrefix(got.Image, "/media/")))
	_, err := os.Stat(stored)
	require.NoError(t, err)

	detail := decode[api.RecipeDetail](t, c.get(detailURL(r.ID)))
	assert.Equal(t, got.Image, detail.Image)
}

func TestUploadImageBadRequest(t *testing.T) {
	a := newTestAPI(t)
	c := a.login("user@example.com")
	r := c.recipe("Photogenic")

	rr := c.upload(r.ID, "notimage.jpg", []byte("notimage"))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, errorFields(t, rr), "image")

	req := httptest.NewRequest(http.MethodPost, imageUploadURL(r.ID), strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=x")
	rr = c.do(req)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	var stored models.Recipe
	require.NoError(t, a.db.First(&stored, r.ID).Error)
	assert.Empty(t, stored.Image)
}

func TestUploadImageOtherUser(t *testing.T) {
	a := newTestAPI(t)
	theirs := a.login("other@example.com").recipe("Theirs")
	c := a.login("user@example.com")

	rr := c.upload(theirs.ID, "photo.jpg", jpegBytes(t))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}
