package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"proconnect/backend/internal/models"
)

// PublicProfileResponse defines the structure for a user's public profile.
type PublicProfileResponse struct {
	ID               uint   `json:"id" example:"1"`
	Username         string `json:"username" example:"annchovey"`
	Name             string `json:"name" example:"Ann Chovey"`
	Title            string `json:"title" example:"Engineer"`
	Description      string `json:"description,omitempty"`
	Github           string `json:"github,omitempty"`
	Linkedin         string `json:"linkedin,omitempty"`
	Website          string `json:"website,omitempty"`
	ConnectionsCount int64  `json:"connections_count"`
}

// PrivateProfileResponse defines the structure for the authenticated user's own profile.
type PrivateProfileResponse struct {
	PublicProfileResponse
	Email            string `json:"email" example:"ann@example.com"`
	WorldID          string `json:"world_id,omitempty"`
	AllowConnections bool   `json:"allow_connections"`
	AllowSearch      bool   `json:"allow_search"`
	PendingCount     int64  `json:"pending_count"`
}

// GetMe godoc
// @Summary      Get current user's profile
// @Description  Retrieves the private profile for the currently authenticated user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  PrivateProfileResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	ctx := c.Request.Context()
	profile, err := h.dir.GetProfile(ctx, viewerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	connCount, err := h.manager.ConnectionsCount(ctx, profile.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count connections"})
		return
	}
	pendingCount, err := h.manager.PendingCount(ctx, profile.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count requests"})
		return
	}

	c.JSON(http.StatusOK, PrivateProfileResponse{
		PublicProfileResponse: publicProfile(profile, connCount),
		Email:                 profile.Email,
		WorldID:               profile.WorldID,
		AllowConnections:      profile.AllowConnections,
		AllowSearch:           profile.AllowSearch,
		PendingCount:          pendingCount,
	})
}

// GetUser godoc
// @Summary      Get user by ID or username
// @Description  Retrieves the public profile for a specific user. The path parameter is a numeric user ID or a username.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "User ID or username"
// @Success      200  {object}  PublicProfileResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	ctx := c.Request.Context()
	param := c.Param("id")

	cacheKey := fmt.Sprintf("public-profile:%s", param)
	if v, ok := h.cache.Get(cacheKey); ok {
		c.JSON(http.StatusOK, v)
		return
	}

	var profile *models.Profile
	var err error
	if id, perr := strconv.ParseUint(param, 10, 32); perr == nil {
		profile, err = h.dir.GetProfile(ctx, uint(id))
	} else {
		profile, err = h.dir.GetByUsername(ctx, param)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load profile"})
		return
	}
	if profile == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	connCount, err := h.manager.ConnectionsCount(ctx, profile.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count connections"})
		return
	}

	response := publicProfile(profile, connCount)
	h.cache.Set(cacheKey, response, 0)
	c.JSON(http.StatusOK, response)
}

// SearchUsers godoc
// @Summary      Search for users
// @Description  Searches profiles by username, name or title with pagination. Users with search disabled are excluded.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        q     query     string  false  "Search query"
// @Param        page  query     int     false  "Page number" default(1)
// @Param        limit query     int     false  "Items per page" default(10)
// @Success      200   {object}  PaginatedResponse[PublicProfileResponse]
// @Failure      401   {object}  ErrorResponse
// @Router       /users [get]
func (h *Handler) SearchUsers(c *gin.Context) {
	ctx := c.Request.Context()
	page, limit, offset := pageParams(c)

	profiles, total, err := h.dir.SearchProfiles(ctx, c.Query("q"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search users"})
		return
	}

	viewer := viewerID(c)
	responses := make([]PublicProfileResponse, 0, len(profiles))
	for i := range profiles {
		// Don't show the viewer in the search results
		if profiles[i].ID == viewer {
			continue
		}
		responses = append(responses, publicProfile(&profiles[i], 0))
	}

	c.JSON(http.StatusOK, NewPaginatedResponse(responses, total, page, limit))
}

func publicProfile(profile *models.Profile, connCount int64) PublicProfileResponse {
	return PublicProfileResponse{
		ID:               profile.ID,
		Username:         profile.Username,
		Name:             profile.Name,
		Title:            profile.Title,
		Description:      profile.Description,
		Github:           profile.Github,
		Linkedin:         profile.Linkedin,
		Website:          profile.Website,
		ConnectionsCount: connCount,
	}
}
