package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/locallore/server/internal/models"
	"github.com/locallore/server/internal/services"
)

// RecordInteraction handles POST /events/:id/interact. Views are
// accepted from anonymous sessions; every other type needs a signed-in
// user.
func RecordInteraction(is *services.InteractionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseIDParam(c)
		if !ok {
			return
		}

		var req struct {
			Type string `json:"type" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		interactionType, err := models.ParseInteractionType(req.Type)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		userID := currentUserID(c)
		if userID == uuid.Nil && interactionType != models.InteractionView {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("authentication required"))
			return
		}
		if userID == uuid.Nil {
			// Anonymous view: bump the counter without an interaction row.
			if err := is.RecordAnonymousView(c.Request.Context(), eventID); err != nil {
				c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
				return
			}
			c.JSON(http.StatusOK, models.SuccessResponse(nil, "view recorded"))
			return
		}

		accessToken, _ := c.Cookie("access_token")
		if err := is.Record(c.Request.Context(), userID, eventID, req.Type, accessToken); err != nil {
			writeInteractionError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "interaction recorded"))
	}
}

// RemoveInteraction handles DELETE /events/:id/interact for bookmark
// and attend toggles.
func RemoveInteraction(is *services.InteractionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseIDParam(c)
		if !ok {
			return
		}

		interactionType := c.Query("type")
		if interactionType == "" {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("type query parameter is required"))
			return
		}

		userID := currentUserID(c)
		if userID == uuid.Nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("authentication required"))
			return
		}

		accessToken, _ := c.Cookie("access_token")
		if err := is.Remove(c.Request.Context(), userID, eventID, interactionType, accessToken); err != nil {
			writeInteractionError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "interaction removed"))
	}
}

// ListBookmarks handles GET /users/me/bookmarks.
func ListBookmarks(is *services.InteractionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)
		if userID == uuid.Nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("authentication required"))
			return
		}

		events, err := is.ListBookmarkedEvents(c.Request.Context(), userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"events": events}, ""))
	}
}

// ListActivity handles GET /users/me/activity from the Mongo read
// model.
func ListActivity(as *services.ActivityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)
		if userID == uuid.Nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("authentication required"))
			return
		}

		limit := 50
		if raw := c.Query("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid limit parameter"))
				return
			}
			limit = parsed
		}

		entries, err := as.ListRecent(c.Request.Context(), userID, limit)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"activity": entries}, ""))
	}
}

func writeInteractionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidInteractionType):
		c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
	case errors.Is(err, models.ErrAuthenticationRequired):
		c.JSON(http.StatusUnauthorized, models.ErrorResponse(err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
	}
}
