package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/locallore/server/internal/models"
	"github.com/locallore/server/internal/recommend"
	"github.com/locallore/server/internal/services"
)

// ForYouFeed handles GET /discovery/for-you, the personalized page.
func ForYouFeed(ds *services.DiscoveryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := currentUserID(c)
		if userID == uuid.Nil {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse("authentication required"))
			return
		}

		page, ok := parsePage(c)
		if !ok {
			return
		}

		events, err := ds.ForYou(c.Request.Context(), userID, page)
		if err != nil {
			if errors.Is(err, models.ErrAuthenticationRequired) {
				c.JSON(http.StatusUnauthorized, models.ErrorResponse(err.Error()))
				return
			}
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.PageResponse(gin.H{"events": events}, page, recommend.PageSize))
	}
}

// PopularFeed handles GET /discovery/popular, ordered by view count.
func PopularFeed(ds *services.DiscoveryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, ok := parsePage(c)
		if !ok {
			return
		}

		events, err := ds.Popular(c.Request.Context(), page)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.PageResponse(gin.H{"events": events}, page, recommend.PageSize))
	}
}

// LatestFeed handles GET /discovery/latest, newest first.
func LatestFeed(ds *services.DiscoveryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, ok := parsePage(c)
		if !ok {
			return
		}

		events, err := ds.Latest(c.Request.Context(), page)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse(err.Error()))
			return
		}

		c.JSON(http.StatusOK, models.PageResponse(gin.H{"events": events}, page, recommend.PageSize))
	}
}

func parsePage(c *gin.Context) (int, bool) {
	raw := c.DefaultQuery("page", "1")
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse("invalid page parameter"))
		return 0, false
	}
	return page, true
}
