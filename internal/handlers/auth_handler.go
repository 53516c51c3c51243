package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/locallore/server/internal/services"
	"github.com/supabase-community/gotrue-go/types"
)

// RefreshSession rotates the session cookies from the refresh token.
func RefreshSession(u *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		refreshToken, err := c.Cookie("refresh_token")
		if err != nil || refreshToken == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token not found"})
			return
		}

		response, err := u.RefreshToken(refreshToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		isProduction := os.Getenv("GIN_MODE") == "production"
		tokenRes, ok := response.(*types.TokenResponse)
		if !ok || tokenRes.AccessToken == "" {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid token response"})
			return
		}

		c.SetCookie("access_token", tokenRes.AccessToken, tokenRes.ExpiresIn, "/", "", isProduction, true)
		c.SetCookie("refresh_token", tokenRes.RefreshToken, 3600*24*30, "/", "", isProduction, true)

		c.JSON(http.StatusOK, gin.H{"user": tokenRes.User})
	}
}

// Logout handler
func Logout() gin.HandlerFunc {
	return func(c *gin.Context) {
		isProduction := os.Getenv("GIN_MODE") == "production"

		// Clear all auth cookies
		c.SetCookie("access_token", "", -1, "/", "", isProduction, true)
		c.SetCookie("refresh_token", "", -1, "/", "", isProduction, true)
		c.SetCookie("session_id", "", -1, "/", "", false, true)

		c.JSON(http.StatusOK, gin.H{
			"message": "Logged out successfully",
		})
	}
}
