package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/locallore/server/internal/cache"
	"github.com/locallore/server/internal/models"
	"github.com/locallore/server/internal/services"
)

func CreateEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		userId, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
			return
		}

		var event models.Event
		if err := c.ShouldBindJSON(&event); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		accessToken, _ := c.Cookie("access_token")
		created, err := es.CreateEvent(c.Request.Context(), &event, userId, accessToken)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusCreated, models.SuccessResponse(created, "Event created successfully"))
	}
}

func GetEventByID(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseIDParam(c)
		if !ok {
			return
		}

		event, err := es.GetEvent(c.Request.Context(), eventID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				c.JSON(http.StatusNotFound, models.ErrorResponse("event not found"))
				return
			}
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(event, ""))
	}
}

func UpdateEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		eventID, ok := parseIDParam(c)
		if !ok {
			return
		}

		// Verify ownership before touching the row
		existing, err := es.GetEvent(c.Request.Context(), eventID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				c.JSON(http.StatusNotFound, models.ErrorResponse("event not found"))
				return
			}
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		if existing.UserID.String() != claims.UserID && !claims.IsAdmin() {
			c.JSON(http.StatusForbidden, models.ErrorResponse("forbidden: you can only edit your own events"))
			return
		}

		var patch map[string]interface{}
		if err := c.ShouldBindJSON(&patch); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		accessToken, _ := c.Cookie("access_token")
		updated, err := es.UpdateEvent(c.Request.Context(), patch, eventID, accessToken)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(updated, "Event updated successfully"))
	}
}

func DeleteEvent(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := currentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("unauthorized"))
			return
		}

		userId, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid user ID in token"))
			return
		}

		eventID, ok := parseIDParam(c)
		if !ok {
			return
		}

		existing, err := es.GetEvent(c.Request.Context(), eventID)
		if err != nil {
			if errors.Is(err, models.ErrNotFound) {
				c.JSON(http.StatusNotFound, models.ErrorResponse("event not found"))
				return
			}
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		if existing.UserID != userId && !claims.IsAdmin() {
			c.JSON(http.StatusForbidden, models.ErrorResponse("forbidden: you can only delete your own events"))
			return
		}

		accessToken, _ := c.Cookie("access_token")
		if err := es.DeleteEvent(c.Request.Context(), existing.UserID, eventID, accessToken); err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(nil, "event deleted successfully"))
	}
}

// ListMapEvents serves the map view. Optional sw_lng/sw_lat/ne_lng/
// ne_lat query params scope to a viewport; absence means the default
// view. A session cookie stretches cache tolerance for a browsing
// user.
func ListMapEvents(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		bounds, ok := parseBounds(c)
		if !ok {
			return
		}

		_, sessionErr := c.Cookie("access_token")
		session := sessionErr == nil

		events, err := es.ListForMap(c.Request.Context(), bounds, session)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"events": events}, ""))
	}
}

// SuggestEventTags returns tag suggestions for a draft event.
func SuggestEventTags(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Title       string `json:"title" binding:"required"`
			Description string `json:"description"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse(err.Error()))
			return
		}

		suggestion := es.SuggestTags(c.Request.Context(), req.Title, req.Description)
		c.JSON(http.StatusOK, models.SuccessResponse(suggestion, ""))
	}
}

// ListTags returns the curated predefined tags.
func ListTags(es *services.EventService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tags, err := es.ListPredefinedTags(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}
		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{"tags": tags}, ""))
	}
}

func ListAttendees(is *services.InteractionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, ok := parseIDParam(c)
		if !ok {
			return
		}

		attendees, err := is.ListAttendees(c.Request.Context(), eventID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.SuccessResponse(gin.H{
			"attendees": attendees,
			"count":     len(attendees),
		}, ""))
	}
}

func parseIDParam(c *gin.Context) (uuid.UUID, bool) {
	raw := strings.TrimSpace(c.Param("id"))
	raw = strings.Trim(raw, "\"'")
	if raw == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("event ID is required"))
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid event ID format"))
		return uuid.Nil, false
	}
	return id, true
}

func parseBounds(c *gin.Context) (cache.Bounds, bool) {
	raw := map[string]string{
		"sw_lng": c.Query("sw_lng"),
		"sw_lat": c.Query("sw_lat"),
		"ne_lng": c.Query("ne_lng"),
		"ne_lat": c.Query("ne_lat"),
	}

	provided := 0
	parsed := map[string]float64{}
	for name, value := range raw {
		if value == "" {
			continue
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid "+name+" parameter"))
			return cache.Bounds{}, false
		}
		parsed[name] = f
		provided++
	}

	if provided == 0 {
		return cache.Bounds{}, true
	}
	if provided != len(raw) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("viewport requires sw_lng, sw_lat, ne_lng, ne_lat"))
		return cache.Bounds{}, false
	}

	return cache.Bounds{
		SouthWestLng: parsed["sw_lng"],
		SouthWestLat: parsed["sw_lat"],
		NorthEastLng: parsed["ne_lng"],
		NorthEastLat: parsed["ne_lat"],
	}, true
}
