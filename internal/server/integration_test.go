package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testJWTSecret = "integration-test-secret"

// setupIntegrationApp wires real repositories over an in-memory sqlite
// database and registers the full route table.
func setupIntegrationApp(t *testing.T) (*fiber.App, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	s := &Server{
		config:      &config.Config{JWTSecret: testJWTSecret},
		db:          db,
		userRepo:    repository.NewUserRepository(db),
		postRepo:    repository.NewPostRepository(db),
		tagRepo:     repository.NewTagRepository(db),
		commentRepo: repository.NewCommentRepository(db),
	}

	app := fiber.New()
	s.SetupRoutes(app)
	return app, db
}

func tokenFor(t *testing.T, userID uint) string {
	claims := jwt.MapClaims{
		"sub": fmt.Sprintf("%d", userID),
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

func doJSON(t *testing.T, app *fiber.App, method, target, token string, body any) (*http.Response, []byte) {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	return resp, raw
}

// Deleting a post removes its comments but leaves its tags in place.
func TestIntegration_DeletePostCascade(t *testing.T) {
	app, db := setupIntegrationApp(t)

	user := models.User{Username: "alice", Email: "alice@example.com"}
	require.NoError(t, db.Create(&user).Error)
	tag := models.Tag{Name: "golang"}
	require.NoError(t, db.Create(&tag).Error)
	post := models.Post{Title: "Doomed", Content: "...", Status: models.StatusPublished, UserID: user.ID, Tags: []models.Tag{tag}}
	require.NoError(t, db.Create(&post).Error)
	comment := models.Comment{Text: "So long", PostID: post.ID, UserID: user.ID}
	require.NoError(t, db.Create(&comment).Error)

	resp, _ := doJSON(t, app, http.MethodDelete, fmt.Sprintf("/api/posts/%d", post.ID), tokenFor(t, user.ID), nil)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/comments/%d", comment.ID), "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, raw := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/tags/%d", tag.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var gotTag map[string]any
	require.NoError(t, json.Unmarshal(raw, &gotTag))
	assert.Equal(t, "golang", gotTag["name"])
}

// Tag names are unique regardless of case, end to end.
func TestIntegration_TagNameUniqueness(t *testing.T) {
	app, db := setupIntegrationApp(t)

	user := models.User{Username: "bob", Email: "bob@example.com"}
	require.NoError(t, db.Create(&user).Error)
	token := tokenFor(t, user.ID)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/tags", token, map[string]string{"name": "Design"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, raw := doJSON(t, app, http.MethodPost, "/api/tags", token, map[string]string{"name": "design"})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var got map[string][]string
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, []string{"A tag with this name already exists."}, got["name"])

	var count int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

// The include parameter shapes post renderings over HTTP; absent means all
// optional relations are expanded.
func TestIntegration_IncludeShaping(t *testing.T) {
	app, db := setupIntegrationApp(t)

	user := models.User{Username: "carol", Email: "carol@example.com"}
	require.NoError(t, db.Create(&user).Error)
	post := models.Post{Title: "Shaped", Content: "...", Status: models.StatusDraft, UserID: user.ID,
		Tags: []models.Tag{{Name: "api"}}}
	require.NoError(t, db.Create(&post).Error)
	require.NoError(t, db.Create(&models.Comment{Text: "First", PostID: post.ID, UserID: user.ID}).Error)

	resp, raw := doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/posts/%d", post.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var full map[string]any
	require.NoError(t, json.Unmarshal(raw, &full))
	assert.Contains(t, full, "user")
	assert.Contains(t, full, "tags")
	assert.Contains(t, full, "comments")

	resp, raw = doJSON(t, app, http.MethodGet, fmt.Sprintf("/api/posts/%d?include=tags", post.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var shaped map[string]any
	require.NoError(t, json.Unmarshal(raw, &shaped))
	assert.NotContains(t, shaped, "user")
	assert.Contains(t, shaped, "tags")
	assert.NotContains(t, shaped, "comments")
	assert.Contains(t, shaped, "title")
}

// The status filter matches exactly; an unknown value yields an empty list.
func TestIntegration_StatusFilter(t *testing.T) {
	app, db := setupIntegrationApp(t)

	user := models.User{Username: "dave", Email: "dave@example.com"}
	require.NoError(t, db.Create(&user).Error)
	require.NoError(t, db.Create(&models.Post{Title: "Live", Content: "...", Status: models.StatusPublished, UserID: user.ID}).Error)
	require.NoError(t, db.Create(&models.Post{Title: "WIP", Content: "...", Status: models.StatusDraft, UserID: user.ID}).Error)

	resp, raw := doJSON(t, app, http.MethodGet, "/api/posts?status=published", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var published []map[string]any
	require.NoError(t, json.Unmarshal(raw, &published))
	require.Len(t, published, 1)
	assert.Equal(t, "Live", published[0]["title"])

	resp, raw = doJSON(t, app, http.MethodGet, "/api/posts?status=archived", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var none []map[string]any
	require.NoError(t, json.Unmarshal(raw, &none))
	assert.Empty(t, none)

	resp, raw = doJSON(t, app, http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var all []map[string]any
	require.NoError(t, json.Unmarshal(raw, &all))
	assert.Len(t, all, 2)
}

// Writes require authentication; the caller becomes the owner.
func TestIntegration_OwnershipOnCreate(t *testing.T) {
	app, db := setupIntegrationApp(t)

	owner := models.User{Username: "erin", Email: "erin@example.com"}
	require.NoError(t, db.Create(&owner).Error)
	other := models.User{Username: "frank", Email: "frank@example.com"}
	require.NoError(t, db.Create(&other).Error)

	resp, _ := doJSON(t, app, http.MethodPost, "/api/posts", "", map[string]any{"title": "x", "content": "y"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	body := map[string]any{"title": "Claimed", "content": "Mine", "user_id": other.ID}
	resp, raw := doJSON(t, app, http.MethodPost, "/api/posts", tokenFor(t, owner.ID), body)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	author, ok := got["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(owner.ID), author["id"])
}
