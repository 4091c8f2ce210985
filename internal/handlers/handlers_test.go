package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/recipedb/internal/config"
	"github.com/localnerve/recipedb/internal/handlers"
	"github.com/localnerve/recipedb/internal/middleware"
	"github.com/localnerve/recipedb/internal/models"
	"github.com/localnerve/recipedb/internal/services"
	"github.com/localnerve/recipedb/internal/storage"
	"github.com/localnerve/recipedb/tests/helpers"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testApp struct {
	app *fiber.App
	db  *gorm.DB
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db := helpers.NewTestDB(t)

	cfg := &config.Config{
		DBType:        "sqlite",
		DBAppDatabase: "test.db",
		AuthProvider:  "local",
		SessionSecret: helpers.TestSessionSecret,
		SessionTTL:    time.Hour,
		StorageDriver: "local",
		MaxUploadMB:   1,
	}

	app := fiber.New(fiber.Config{ErrorHandler: handlers.ErrorHandler})
	handlers.SetupRoutes(app, handlers.Dependencies{
		Config:   cfg,
		DB:       db,
		Store:    storage.NewLocalStoreFs(afero.NewMemMapFs(), "/storage"),
		Identity: &middleware.LocalSessions{DB: db, Secret: []byte(helpers.TestSessionSecret)},
		Resets:   &services.PasswordResetService{DB: db, Mailer: services.LogMailer{}},
	})
	app.Use(handlers.NotFound)

	return &testApp{app: app, db: db}
}

// do sends a JSON request, optionally as the given user
func (a *testApp) do(t *testing.T, method, path string, user *models.User, body interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			reader = strings.NewReader(b)
		default:
			data, err := json.Marshal(b)
			require.NoError(t, err)
			reader = bytes.NewReader(data)
		}
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set("Cookie", helpers.SessionCookie(t, user))
	}

	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func recipeBody(cuisineID, ingredientID uint64) map[string]interface{} {
	return map[string]interface{}{
		"title":      "Pancakes",
		"cuisine_id": cuisineID,
		"prep_time":  5,
		"cook_time":  10,
		"steps": []map[string]interface{}{
			{
				"step_number": 1,
				"description": "Whisk everything",
				"ingredients": []map[string]interface{}{
					{"ingredient_id": ingredientID, "amount": 500, "unit": "g"},
				},
			},
		},
	}
}

func TestRoutesRequireAuthentication(t *testing.T) {
	a := newTestApp(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodGet, "/api/recipes"},
		{http.MethodPost, "/api/recipes"},
		{http.MethodGet, "/api/recipes/1"},
		{http.MethodGet, "/api/cuisines"},
		{http.MethodDelete, "/api/ingredients/1"},
		{http.MethodPost, "/api/attachments"},
		{http.MethodGet, "/api/user"},
	} {
		t.Run(route.method+" "+route.path, func(t *testing.T) {
			resp := a.do(t, route.method, route.path, nil, nil)
			helpers.AssertStatus(t, resp, http.StatusUnauthorized)

			body := helpers.ParseError(t, resp)
			assert.Equal(t, "Authentication required", body.Message)
			assert.Equal(t, "auth.required", body.Type)
			assert.False(t, body.Ok)
		})
	}
}

func TestInvalidSessionIsAGuest(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/recipes", nil)
	req.Header.Set("Cookie", services.SessionCookieName+"=garbage")
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	helpers.AssertStatus(t, resp, http.StatusUnauthorized)
}

func TestBearerToken(t *testing.T) {
	a := newTestApp(t)
	user := helpers.CreateUser(t, a.db, "bearer", false)

	token, _, err := services.IssueSession([]byte(helpers.TestSessionSecret), user, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	helpers.AssertStatus(t, resp, http.StatusOK)

	var me services.UserResult
	helpers.ParseJSON(t, resp, &me)
	assert.Equal(t, user.Email, me.Email)
}

func TestCreateAndShowRecipe(t *testing.T) {
	a := newTestApp(t)
	user := helpers.CreateUser(t, a.db, "cook", false)
	cuisine := helpers.CreateCuisine(t, a.db, "American", nil)
	flour := helpers.CreateIngredient(t, a.db, "Flour", nil)

	resp := a.do(t, http.MethodPost, "/api/recipes", user, recipeBody(cuisine.ID, flour.ID))
	helpers.AssertStatus(t, resp, http.StatusCreated)

	var created struct {
		Message string `json:"message"`
		Recipe  struct {
			ID        uint64 `json:"id"`
			TotalTime int    `json:"total_time"`
			Steps     []struct {
				Ingredients []struct {
					Name  string `json:"name"`
					Pivot struct {
						Amount json.Number `json:"amount"`
						Unit   string      `json:"unit"`
					} `json:"pivot"`
				} `json:"ingredients"`
			} `json:"steps"`
		} `json:"recipe"`
	}
	helpers.ParseJSON(t, resp, &created)
	assert.Equal(t, "Recipe created successfully", created.Message)
	assert.Equal(t, 15, created.Recipe.TotalTime)
	require.Len(t, created.Recipe.Steps, 1)
	require.Len(t, created.Recipe.Steps[0].Ingredients, 1)
	assert.Equal(t, "Flour", created.Recipe.Steps[0].Ingredients[0].Name)
	assert.Equal(t, json.Number("500"), created.Recipe.Steps[0].Ingredients[0].Pivot.Amount)
	assert.Equal(t, "g", created.Recipe.Steps[0].Ingredients[0].Pivot.Unit)

	resp = a.do(t, http.MethodGet, fmt.Sprintf("/api/recipes/%d", created.Recipe.ID), user, nil)
	helpers.AssertStatus(t, resp, http.StatusOK)

	resp = a.do(t, http.MethodGet, "/api/recipes?title=pan&per_page=5", user, nil)
	helpers.AssertStatus(t, resp, http.StatusOK)
	var page services.RecipePage
	helpers.ParseJSON(t, resp, &page)
	assert.EqualValues(t, 1, page.Total)
	assert.Equal(t, 5, page.PerPage)
}

func TestCreateRecipeValidationEnvelope(t *testing.T) {
	a := newTestApp(t)
	user := helpers.CreateUser(t, a.db, "cook", false)

	resp := a.do(t, http.MethodPost, "/api/recipes", user, map[string]interface{}{"title": ""})
	helpers.AssertStatus(t, resp, http.StatusUnprocessableEntity)

	body := helpers.ParseError(t, resp)
	assert.Equal(t, "validation", body.Type)
	assert.Contains(t, body.Errors, "title")
	assert.Contains(t, body.Errors, "cuisine_id")
	assert.Contains(t, body.Errors, "steps")
	assert.Contains(t, body.Message, "more errors")
}

func TestMalformedJSON(t *testing.T) {
	a := newTestApp(t)
	user := helpers.CreateUser(t, a.db, "cook", false)

	resp := a.do(t, http.MethodPost, "/api/recipes", user, `{"title":`)
	helpers.AssertStatus(t, resp, http.StatusBadRequest)
	body := helpers.ParseError(t, resp)
	assert.Equal(t, "Invalid input", body.Message)
	assert.Equal(t, "validation.input", body.Type)
}

func TestWrongFieldTypesAreValidationErrors(t *testing.T) {
	a := newTestApp(t)
	user := helpers.CreateUser(t, a.db, "cook", false)
	cuisine := helpers.CreateCuisine(t, a.db, "French", nil)
	flour := helpers.CreateIngredient(t, a.db, "Flour", nil)

	body := recipeBody(cuisine.ID, flour.ID)
	body["title"] = 42
	body["prep_time"] = "soon"
	step := body["steps"].([]map[string]interface{})[0]
	step["step_number"] = "abc"
	step["ingredients"].([]map[string]interface{})[0]["amount"] = "lots"

	resp := a.do(t, http.MethodPost, "/api/recipes", user, body)
	helpers.AssertStatus(t, resp, http.StatusUnprocessableEntity)

	errBody := helpers.ParseError(t, resp)
	assert.Equal(t, "validation", errBody.Type)
	assert.Equal(t, map[string][]string{
		"title":                        {"The title field must be a string."},
		"prep_time":                    {"The prep time field must be an integer."},
		"steps.0.step_number":          {"The step number field must be an integer."},
		"steps.0.ingredients.0.amount": {"The amount field must be a number."},
	}, errBody.Errors)

	var recipes int64
	require.NoError(t, a.db.Model(&models.Recipe{}).Count(&recipes).Error)
	assert.Zero(t, recipes)

	resp = a.do(t, http.MethodPost, "/api/recipes", user, map[string]interface{}{
		"title":      "Soup",
		"cuisine_id": "not-an-id",
		"steps":      "first boil",
	})
	helpers.AssertStatus(t, resp, http.StatusUnprocessableEntity)
	errBody = helpers.ParseError(t, resp)
	assert.Equal(t, []string{"The cuisine id field must be an integer."}, errBody.Errors["cuisine_id"])
	assert.Equal(t, []string{"The steps field must be an array."}, errBody.Errors["steps"])

	resp = a.do(t, http.MethodPost, "/api/cuisines", user, map[string]interface{}{"name": 7})
	helpers.AssertStatus(t, resp, http.StatusUnprocessableEntity)
	errBody = helpers.ParseError(t, resp)
	assert.Equal(t, []string{"The name field must be a string."}, errBody.Errors["name"])
}

func TestRecipeOwnershipOverHTTP(t *testing.T) {
	a := newTestApp(t)
	owner := helpers.CreateUser(t, a.db, "owner", false)
	intruder := helpers.CreateUser(t, a.db, "intruder", false)
	cuisine := helpers.CreateCuisine(t, a.db, "American", nil)
	flour := helpers.CreateIngredient(t, a.db, "Flour", nil)

	resp := a.do(t, http.MethodPost, "/api/recipes", owner, recipeBody(cuisine.ID, flour.ID))
	helpers.AssertStatus(t, resp, http.StatusCreated)
	var created struct {
		Recipe services.RecipeResult `json:"recipe"`
	}
	helpers.ParseJSON(t, resp, &created)
	path := fmt.Sprintf("/api/recipes/%d", created.Recipe.ID)

	resp = a.do(t, http.MethodPut, path, intruder, map[string]interface{}{"title": "Mine now"})
	helpers.AssertStatus(t, resp, http.StatusForbidden)
	assert.Equal(t, "This action is unauthorized.", helpers.ParseError(t, resp).Message)

	var title string
	require.NoError(t, a.db.Model(&models.Recipe{}).Where("id = ?", created.Recipe.ID).Pluck("title", &title).Error)
	assert.Equal(t, "Pancakes", title)

	resp = a.do(t, http.MethodGet, path, intruder, nil)
	helpers.AssertStatus(t, resp, http.StatusForbidden)

	resp = a.do(t, http.MethodDelete, path, intruder, nil)
	helpers.AssertStatus(t, resp, http.StatusForbidden)

	resp = a.do(t, http.MethodPut, path, owner, map[string]interface{}{"title": "Fluffy Pancakes"})
	helpers.AssertStatus(t, resp, http.StatusOK)
	var updated struct {
		Message string               `json:"message"`
		Recipe  services.RecipeResult `json:"recipe"`
	}
	helpers.ParseJSON(t, resp, &updated)
	assert.Equal(t, "Recipe updated successfully", updated.Message)
	assert.Equal(t, "Fluffy Pancakes", updated.Recipe.Title)

	resp = a.do(t, http.MethodDelete, path, owner, nil)
	helpers.AssertStatus(t, resp, http.StatusOK)
	var deleted map[string]string
	helpers.ParseJSON(t, resp, &deleted)
	assert.Equal(t, "Recipe deleted successfully", deleted["message"])

	resp = a.do(t, http.MethodGet, path, owner, nil)
	helpers.AssertStatus(t, resp, http.StatusNotFound)
	assert.Equal(t, "Recipe not found", helpers.ParseError(t, resp).Message)

	resp = a.do(t, http.MethodGet, "/api/recipes/abc", owner, nil)
	helpers.AssertStatus(t, resp, http.StatusNotFound)
}

func TestCatalogRoutes(t *testing.T) {
	a := newTestApp(t)
	user := helpers.CreateUser(t, a.db, "cook", false)
	flour := helpers.CreateIngredient(t, a.db, "Flour", nil)
	cuisine := helpers.CreateCuisine(t, a.db, "American", nil)

	resp := a.do(t, http.MethodPost, "/api/cuisines", user, map[string]string{"name": "Nordic"})
	helpers.AssertStatus(t, resp, http.StatusCreated)
	var created struct {
		Message string         `json:"message"`
		Cuisine models.Cuisine `json:"cuisine"`
	}
	helpers.ParseJSON(t, resp, &created)
	assert.Equal(t, "Cuisine created successfully", created.Message)
	assert.Equal(t, "Nordic", created.Cuisine.Name)

	resp = a.do(t, http.MethodGet, "/api/cuisines", user, nil)
	helpers.AssertStatus(t, resp, http.StatusOK)
	var list []models.Cuisine
	helpers.ParseJSON(t, resp, &list)
	assert.Len(t, list, 2)

	resp = a.do(t, http.MethodPut, fmt.Sprintf("/api/cuisines/%d", created.Cuisine.ID), user, map[string]string{"name": "New Nordic"})
	helpers.AssertStatus(t, resp, http.StatusOK)

	resp = a.do(t, http.MethodPut, fmt.Sprintf("/api/cuisines/%d", cuisine.ID), user, map[string]string{"name": "Mine"})
	helpers.AssertStatus(t, resp, http.StatusForbidden)

	resp = a.do(t, http.MethodPost, "/api/recipes", user, recipeBody(cuisine.ID, flour.ID))
	helpers.AssertStatus(t, resp, http.StatusCreated)

	admin := helpers.CreateUser(t, a.db, "admin", true)
	resp = a.do(t, http.MethodDelete, fmt.Sprintf("/api/ingredients/%d", flour.ID), admin, nil)
	helpers.AssertStatus(t, resp, http.StatusUnprocessableEntity)
	body := helpers.ParseError(t, resp)
	assert.Equal(t, "Cannot delete ingredient as it is used in recipes", body.Message)
	assert.Equal(t, "conflict.in_use", body.Type)

	resp = a.do(t, http.MethodDelete, fmt.Sprintf("/api/cuisines/%d", created.Cuisine.ID), user, nil)
	helpers.AssertStatus(t, resp, http.StatusOK)
	var deleted map[string]string
	helpers.ParseJSON(t, resp, &deleted)
	assert.Equal(t, "Cuisine deleted successfully", deleted["message"])
}

func TestRegisterLoginLogout(t *testing.T) {
	a := newTestApp(t)

	resp := a.do(t, http.MethodPost, "/api/register", nil, map[string]string{
		"name":                  "Linus",
		"email":                 "linus@example.com",
		"password":              "penguins-rule",
		"password_confirmation": "penguins-rule",
	})
	helpers.AssertStatus(t, resp, http.StatusCreated)

	var cookie *http.Cookie
	for _, c := range resp.Cookies() {
		if c.Name == services.SessionCookieName {
			cookie = c
		}
	}
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/user", nil)
	req.AddCookie(cookie)
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	helpers.AssertStatus(t, resp, http.StatusOK)

	resp = a.do(t, http.MethodPost, "/api/login", nil, map[string]string{"email": "linus@example.com", "password": "wrong"})
	helpers.AssertStatus(t, resp, http.StatusUnprocessableEntity)

	resp = a.do(t, http.MethodPost, "/api/login", nil, map[string]string{"email": "linus@example.com", "password": "penguins-rule"})
	helpers.AssertStatus(t, resp, http.StatusOK)
	var login struct {
		Message string               `json:"message"`
		User    services.UserResult `json:"user"`
		Token   string               `json:"token"`
	}
	helpers.ParseJSON(t, resp, &login)
	assert.Equal(t, "Login successful", login.Message)
	assert.NotEmpty(t, login.Token)

	resp = a.do(t, http.MethodPost, "/api/logout", nil, nil)
	helpers.AssertStatus(t, resp, http.StatusOK)
}

func TestForgotPasswordUnknownUser(t *testing.T) {
	a := newTestApp(t)

	resp := a.do(t, http.MethodPost, "/api/password/email", nil, map[string]string{"email": "ghost@example.com"})
	helpers.AssertStatus(t, resp, http.StatusOK)
	var result services.ForgotPasswordResult
	helpers.ParseJSON(t, resp, &result)
	assert.False(t, result.UserFound)
}

func TestUploadAttachment(t *testing.T) {
	a := newTestApp(t)
	user := helpers.CreateUser(t, a.db, "uploader", false)

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "cake.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("not really a png"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/attachments", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Cookie", helpers.SessionCookie(t, user))
	resp, err := a.app.Test(req, -1)
	require.NoError(t, err)
	helpers.AssertStatus(t, resp, http.StatusCreated)

	var result services.AttachmentResult
	helpers.ParseJSON(t, resp, &result)
	assert.Equal(t, "cake.png", result.OriginalName)
	assert.True(t, strings.HasPrefix(result.URL, "/storage/"))

	resp = a.do(t, http.MethodGet, fmt.Sprintf("/api/attachments/%d", result.ID), user, nil)
	helpers.AssertStatus(t, resp, http.StatusOK)

	// a request without the file part
	resp = a.do(t, http.MethodPost, "/api/attachments", user, nil)
	helpers.AssertStatus(t, resp, http.StatusUnprocessableEntity)
	assert.Equal(t, "The file field is required.", helpers.ParseError(t, resp).Message)
}

func TestHealthAndUnknownRoutes(t *testing.T) {
	a := newTestApp(t)

	resp := a.do(t, http.MethodGet, "/api/health", nil, nil)
	helpers.AssertStatus(t, resp, http.StatusOK)
	var health services.HealthCheckResult
	helpers.ParseJSON(t, resp, &health)
	assert.Equal(t, "healthy", health.Status)

	resp = a.do(t, http.MethodGet, "/nowhere", nil, nil)
	helpers.AssertStatus(t, resp, http.StatusNotFound)
	assert.Equal(t, "[404] Resource Not Found", helpers.ParseError(t, resp).Message)
}
