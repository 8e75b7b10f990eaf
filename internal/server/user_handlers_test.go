package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]*models.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.User), args.Error(1)
}

func TestGetUser(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockUserRepository)
	s := &Server{userRepo: mockRepo}

	app.Get("/users/:id", s.GetUser)

	mockRepo.On("GetByID", mock.Anything, uint(1)).Return(&models.User{
		ID:       1,
		Username: "alice",
		Email:    "alice@example.com",
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/users/1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "alice", got["username"])
}

// Every write verb on the user collection answers 405; reads keep working.
func TestUserWritesNotAllowed(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockUserRepository)
	s := &Server{userRepo: mockRepo}

	api := app.Group("/api")
	users := api.Group("/users")
	users.Get("/", s.GetUsers)
	users.Get("/:id", s.GetUser)
	for _, method := range []string{fiber.MethodPost, fiber.MethodPut, fiber.MethodPatch, fiber.MethodDelete} {
		users.Add(method, "/", s.UserWriteNotAllowed)
		users.Add(method, "/:id", s.UserWriteNotAllowed)
	}

	mockRepo.On("GetByID", mock.Anything, uint(1)).Return(&models.User{ID: 1, Username: "alice"}, nil)

	for _, method := range []string{http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete} {
		for _, target := range []string{"/api/users", "/api/users/1"} {
			req := httptest.NewRequest(method, target, nil)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, "%s %s", method, target)
			assert.Equal(t, "GET, HEAD", resp.Header.Get(fiber.HeaderAllow))
			_ = resp.Body.Close()
		}
	}

	// The read path is unaffected
	req := httptest.NewRequest(http.MethodGet, "/api/users/1", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "alice", got["username"])
}

func TestGetUser_IncludePosts(t *testing.T) {
	app := fiber.New()
	mockRepo := new(MockUserRepository)
	s := &Server{userRepo: mockRepo}

	app.Get("/users/:id", s.GetUser)

	mockRepo.On("GetByID", mock.Anything, uint(1)).Return(&models.User{
		ID:       1,
		Username: "alice",
		Posts:    []models.Post{{ID: 3, Title: "Hers", UserID: 1}},
		Comments: []models.Comment{{ID: 4, Text: "Hi", PostID: 3, UserID: 1}},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/users/1?include=posts", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Contains(t, got, "posts")
	assert.NotContains(t, got, "comments")
}
