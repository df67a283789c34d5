package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"proconnect/backend/internal/cache"
	"proconnect/backend/internal/connections"
	"proconnect/backend/internal/directory"
)

// Handler bundles the dependencies of the HTTP surface.
type Handler struct {
	dir     directory.Directory
	manager *connections.Manager
	cache   *cache.Cache
}

// New creates a Handler.
func New(dir directory.Directory, manager *connections.Manager, c *cache.Cache) *Handler {
	return &Handler{dir: dir, manager: manager, cache: c}
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// PaginationMeta defines the structure for pagination metadata.
type PaginationMeta struct {
	TotalItems  int64 `json:"total_items"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	PageSize    int   `json:"page_size"`
}

// PaginatedResponse defines the structure for a paginated list of any type.
type PaginatedResponse[T any] struct {
	Data []T            `json:"data"`
	Meta PaginationMeta `json:"meta"`
}

// NewPaginatedResponse creates a new PaginatedResponse.
func NewPaginatedResponse[T any](data []T, totalItems int64, page, limit int) PaginatedResponse[T] {
	if limit <= 0 {
		limit = 1
	}
	return PaginatedResponse[T]{
		Data: data,
		Meta: PaginationMeta{
			TotalItems:  totalItems,
			TotalPages:  (int(totalItems) + limit - 1) / limit,
			CurrentPage: page,
			PageSize:    limit,
		},
	}
}

// viewerID returns the authenticated user's id set by the auth middleware.
func viewerID(c *gin.Context) uint {
	id, _ := c.Get("userID")
	return id.(uint)
}

// pageParams parses page/limit query parameters.
func pageParams(c *gin.Context) (page, limit, offset int) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > 100 {
		limit = 100 // Max limit
	}
	return page, limit, (page - 1) * limit
}
