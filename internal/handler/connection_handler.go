package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"proconnect/backend/internal/connections"
)

// targetID parses the :id path parameter.
func targetID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid target user ID"})
		return 0, false
	}
	return uint(id), true
}

// SendRequest godoc
// @Summary      Send connection request
// @Description  Sends a connection request to another user.
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      201  {object}  map[string]string "{"message": "Request sent successfully"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse "Receiver does not accept requests"
// @Failure      404  {object}  ErrorResponse "Target user not found"
// @Failure      409  {object}  ErrorResponse "Connection already exists"
// @Failure      429  {object}  ErrorResponse "Too many pending requests"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/request [post]
func (h *Handler) SendRequest(c *gin.Context) {
	receiverID, ok := targetID(c)
	if !ok {
		return
	}

	_, err := h.manager.CreateRequest(c.Request.Context(), viewerID(c), receiverID)
	switch {
	case errors.Is(err, connections.ErrSelfRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot send request to yourself"})
	case errors.Is(err, connections.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Target user not found"})
	case errors.Is(err, connections.ErrPrivacyDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "User does not accept connection requests"})
	case errors.Is(err, connections.ErrAlreadyExists):
		c.JSON(http.StatusConflict, gin.H{"error": "Connection already exists"})
	case errors.Is(err, connections.ErrQuotaExceeded):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many pending requests"})
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create request"})
	default:
		c.JSON(http.StatusCreated, gin.H{"message": "Request sent successfully"})
	}
}

// AcceptRequest godoc
// @Summary      Accept connection request
// @Description  Accepts a pending connection request from another user.
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Requesting User ID"
// @Success      200  {object}  map[string]string "{"message": "Request accepted"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Request not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/accept [post]
func (h *Handler) AcceptRequest(c *gin.Context) {
	requesterID, ok := targetID(c)
	if !ok {
		return
	}

	conn, err := h.manager.Accept(c.Request.Context(), requesterID, viewerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to accept request"})
		return
	}
	if conn == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pending request not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Request accepted"})
}

// DeclineRequest godoc
// @Summary      Decline connection request
// @Description  Declines a pending connection request from another user.
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Requesting User ID"
// @Success      200  {object}  map[string]string "{"message": "Request declined"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Request not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/decline [post]
func (h *Handler) DeclineRequest(c *gin.Context) {
	requesterID, ok := targetID(c)
	if !ok {
		return
	}

	conn, err := h.manager.Decline(c.Request.Context(), requesterID, viewerID(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to decline request"})
		return
	}
	if conn == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Pending request not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Request declined"})
}

// RemoveConnection godoc
// @Summary      Remove connection
// @Description  Cancels a sent request or removes an existing connection, regardless of status.
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      200  {object}  map[string]string "{"message": "Connection removed"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Connection not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/remove [post]
func (h *Handler) RemoveConnection(c *gin.Context) {
	otherID, ok := targetID(c)
	if !ok {
		return
	}

	removed, err := h.manager.Remove(c.Request.Context(), viewerID(c), otherID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove connection"})
		return
	}
	if !removed {
		c.JSON(http.StatusNotFound, gin.H{"error": "Connection not found to remove"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Connection removed"})
}

// GetPendingRequests godoc
// @Summary      List pending requests
// @Description  Lists connection requests awaiting the viewer's answer, newest first.
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int  false  "Page number" default(1)
// @Param        limit query     int  false  "Items per page" default(10)
// @Success      200  {array}   connections.PendingRequest
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/me/requests [get]
func (h *Handler) GetPendingRequests(c *gin.Context) {
	_, limit, offset := pageParams(c)

	requests, err := h.manager.PendingRequests(c.Request.Context(), viewerID(c), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch requests"})
		return
	}
	c.JSON(http.StatusOK, requests)
}

// GetConnections godoc
// @Summary      List connections
// @Description  Lists the viewer's accepted connections, most recently updated first, normalized to the other party.
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int  false  "Page number" default(1)
// @Param        limit query     int  false  "Items per page" default(10)
// @Success      200  {array}   connections.ConnectionView
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/me/connections [get]
func (h *Handler) GetConnections(c *gin.Context) {
	_, limit, offset := pageParams(c)

	views, err := h.manager.Connections(c.Request.Context(), viewerID(c), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch connections"})
		return
	}
	c.JSON(http.StatusOK, views)
}

// GetMutualConnections godoc
// @Summary      List mutual connections
// @Description  Lists users connected to both the viewer and the target user.
// @Tags         connections
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      200  {array}   models.Summary
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/mutual [get]
func (h *Handler) GetMutualConnections(c *gin.Context) {
	otherID, ok := targetID(c)
	if !ok {
		return
	}

	mutual, err := h.manager.MutualConnections(c.Request.Context(), viewerID(c), otherID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch mutual connections"})
		return
	}
	c.JSON(http.StatusOK, mutual)
}
