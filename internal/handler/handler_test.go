package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"proconnect/backend/internal/cache"
	"proconnect/backend/internal/connections"
	"proconnect/backend/internal/directory"
	"proconnect/backend/internal/models"
)

// testAuth injects a fixed viewer id, standing in for the JWT middleware.
func testAuth(userID uint) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("userID", userID)
		c.Next()
	}
}

func newTestServer(t *testing.T, viewer uint) (*gin.Engine, *directory.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := directory.NewMemory()
	c := cache.New()
	h := New(dir, connections.NewManager(dir, c), c)

	r := gin.New()
	users := r.Group("/api/v1/users")
	users.Use(testAuth(viewer))
	{
		users.GET("", h.SearchUsers)
		users.GET("/me", h.GetMe)
		users.GET("/me/requests", h.GetPendingRequests)
		users.GET("/me/connections", h.GetConnections)
		users.GET("/:id", h.GetUser)
		users.GET("/:id/mutual", h.GetMutualConnections)
		users.POST("/:id/request", h.SendRequest)
		users.POST("/:id/accept", h.AcceptRequest)
		users.POST("/:id/decline", h.DeclineRequest)
		users.POST("/:id/remove", h.RemoveConnection)
	}
	return r, dir
}

func addUser(t *testing.T, dir *directory.Memory, id uint, username string, allowConnections bool) {
	t.Helper()
	err := dir.CreateProfile(context.Background(), &models.Profile{
		Model:            gorm.Model{ID: id},
		Username:         username,
		Email:            username + "@example.com",
		Name:             username,
		Title:            "Engineer",
		AllowConnections: allowConnections,
		AllowSearch:      true,
	})
	require.NoError(t, err)
}

func do(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestSendRequestEndpoint(t *testing.T) {
	r, dir := newTestServer(t, 1)
	addUser(t, dir, 1, "ann", true)
	addUser(t, dir, 2, "ben", true)
	addUser(t, dir, 3, "cara", false)

	assert.Equal(t, http.StatusCreated, do(r, http.MethodPost, "/api/v1/users/2/request").Code)
	assert.Equal(t, http.StatusConflict, do(r, http.MethodPost, "/api/v1/users/2/request").Code)
	assert.Equal(t, http.StatusForbidden, do(r, http.MethodPost, "/api/v1/users/3/request").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/api/v1/users/99/request").Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/api/v1/users/1/request").Code)
}

func TestAcceptDeclineEndpoints(t *testing.T) {
	// Viewer is user 2, the receiver.
	r, dir := newTestServer(t, 2)
	addUser(t, dir, 1, "ann", true)
	addUser(t, dir, 2, "ben", true)

	manager := connections.NewManager(dir, cache.New())
	_, err := manager.CreateRequest(context.Background(), 1, 2)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, do(r, http.MethodPost, "/api/v1/users/1/accept").Code)
	// Second accept: no matching pending record.
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/api/v1/users/1/accept").Code)
	assert.Equal(t, http.StatusNotFound, do(r, http.MethodPost, "/api/v1/users/1/decline").Code)
}

func TestConnectionListEndpoints(t *testing.T) {
	r, dir := newTestServer(t, 1)
	addUser(t, dir, 1, "ann", true)
	addUser(t, dir, 2, "ben", true)

	manager := connections.NewManager(dir, cache.New())
	ctx := context.Background()
	_, err := manager.CreateRequest(ctx, 2, 1)
	require.NoError(t, err)

	w := do(r, http.MethodGet, "/api/v1/users/me/requests")
	require.Equal(t, http.StatusOK, w.Code)
	var pending []connections.PendingRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, "ben", pending[0].Requester.Username)

	_, err = manager.Accept(ctx, 2, 1)
	require.NoError(t, err)

	w = do(r, http.MethodGet, "/api/v1/users/me/connections")
	require.Equal(t, http.StatusOK, w.Code)
	var views []connections.ConnectionView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "ben", views[0].Partner.Username)
}

func TestGetUserEndpoint(t *testing.T) {
	r, dir := newTestServer(t, 1)
	addUser(t, dir, 1, "ann", true)
	addUser(t, dir, 2, "ben", true)

	w := do(r, http.MethodGet, "/api/v1/users/2")
	require.Equal(t, http.StatusOK, w.Code)
	var byID PublicProfileResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &byID))
	assert.Equal(t, "ben", byID.Username)

	w = do(r, http.MethodGet, "/api/v1/users/ben")
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusNotFound, do(r, http.MethodGet, "/api/v1/users/ghost").Code)
}

func TestSearchExcludesViewer(t *testing.T) {
	r, dir := newTestServer(t, 1)
	addUser(t, dir, 1, "ann", true)
	addUser(t, dir, 2, "ben", true)

	w := do(r, http.MethodGet, "/api/v1/users?q=n")
	require.Equal(t, http.StatusOK, w.Code)

	var resp PaginatedResponse[PublicProfileResponse]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	for _, p := range resp.Data {
		assert.NotEqual(t, uint(1), p.ID, "viewer is filtered from search results")
	}
}
