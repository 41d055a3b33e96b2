package userController_test

import (
	"bytes"
	"encoding/json"
	"learnify/config"
	"learnify/database"
	"learnify/middleware"
	"learnify/models"
	userRoutes "learnify/routers/userRoutes"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	config.AppConfig = &config.Config{JWTKey: "test-secret", SaltRound: 4}

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	database.Database = database.DbInstance{Db: db}

	app := fiber.New()
	userRoutes.SetupUserRoutes(app)
	return app
}

func seedUser(t *testing.T, email string, role models.Role) models.User {
	t.Helper()
	user := models.User{Email: email, FullName: email, Role: role, Password: "x", IsActive: true}
	require.NoError(t, database.Database.Db.Create(&user).Error)
	return user
}

func tokenFor(t *testing.T, user models.User) string {
	t.Helper()
	token, err := middleware.GenerateJWT(user.ID, user.FullName, user.Role, user.Email)
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, app *fiber.App, method, target, token string, body interface{}) (*http.Response, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	return resp, env
}

func TestUserLookupMissesReturnErrors(t *testing.T) {
	app := setupApp(t)
	admin := seedUser(t, "admin@example.com", models.RoleAdmin)
	token := tokenFor(t, admin)

	// Unknown ids must come back as clean 404s, on every method that
	// resolves the :id param.
	resp, env := doRequest(t, app, http.MethodGet, "/user/9999", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found!", env.Message)

	resp, _ = doRequest(t, app, http.MethodPut, "/user/9999", token, fiber.Map{"full_name": "x"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodDelete, "/user/9999", token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Non-numeric ids are rejected up front
	resp, env = doRequest(t, app, http.MethodGet, "/user/abc", token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid user ID!", env.Message)
}

func TestUserGetUpdateDelete(t *testing.T) {
	app := setupApp(t)
	admin := seedUser(t, "admin@example.com", models.RoleAdmin)
	student := seedUser(t, "student@example.com", models.RoleStudent)
	token := tokenFor(t, admin)

	target := "/user/" + strconv.FormatUint(uint64(student.ID), 10)

	resp, env := doRequest(t, app, http.MethodGet, target, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var fetched models.User
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Equal(t, student.Email, fetched.Email)
	assert.Empty(t, fetched.Password)

	resp, env = doRequest(t, app, http.MethodPut, target, token, fiber.Map{
		"full_name": "Renamed Student",
		"is_active": false,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal(env.Data, &fetched))
	assert.Equal(t, "Renamed Student", fetched.FullName)
	assert.False(t, fetched.IsActive)

	resp, _ = doRequest(t, app, http.MethodDelete, target, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodGet, target, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestUserRoutesRequireAdmin(t *testing.T) {
	app := setupApp(t)
	student := seedUser(t, "student@example.com", models.RoleStudent)

	resp, _ := doRequest(t, app, http.MethodGet, "/user/1", tokenFor(t, student), nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
