package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/locallore/server/internal/container"
	"github.com/locallore/server/internal/handlers"
	"github.com/locallore/server/internal/helpers"
	"github.com/locallore/server/internal/middleware"
)

// SetupRoutes configures all routes with the dependency container
func SetupRoutes(container *container.Container) *gin.Engine {
	// Set Gin mode for production
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	// Add middleware
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(container.Logger))
	r.Use(middleware.ErrorHandler(container.Logger))
	r.Use(gin.Recovery())

	// API version 1
	v1 := r.Group("/api/v1")
	{
		// Health check, including the ML sidecar's reachability
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"status":     "OK",
				"service":    "locallore-api",
				"ml_service": container.Gateway.Health(c.Request.Context()),
			})
		})

		// public routes
		v1.POST("/signup", handlers.CreateUser(container.UserService))
		v1.POST("/login", handlers.AuthenticateUser(container.UserService))
		v1.POST("/refresh", handlers.RefreshSession(container.UserService))
		v1.POST("/logout", handlers.Logout())
	}

	// Public browse surface: anonymous allowed, identity resolved when
	// a session cookie is present (views, session-scoped map cache).
	public := v1.Group("/")
	public.Use(middleware.OptionalAuth(container.UserService, container.Logger))
	{
		public.GET("/events", handlers.ListMapEvents(container.EventService))
		public.GET("/events/:id", handlers.GetEventByID(container.EventService))
		public.GET("/tags", handlers.ListTags(container.EventService))
		public.GET("/events/:id/attendees", handlers.ListAttendees(container.InteractionService))
		public.POST("/events/:id/interact", handlers.RecordInteraction(container.InteractionService))

		public.GET("/discovery/popular", handlers.PopularFeed(container.DiscoveryService))
		public.GET("/discovery/latest", handlers.LatestFeed(container.DiscoveryService))
	}

	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware(container.UserService, container.Logger))

	{
		protected.GET("/profile", func(c *gin.Context) {
			user, exist := c.Get("user")
			if !exist {
				c.JSON(401, gin.H{"error": "Unauthorized"})
				return
			}

			// Cast to EnhancedClaims to access role and other profile data
			enhancedClaims, ok := user.(*helpers.EnhancedClaims)
			if !ok {
				c.JSON(500, gin.H{"error": "Invalid user claims format"})
				return
			}

			c.JSON(200, gin.H{
				"status":          "OK",
				"user_id":         enhancedClaims.UserID,
				"email":           enhancedClaims.Email,
				"role":            enhancedClaims.Role,
				"display_name":    enhancedClaims.DisplayName,
				"graduation_year": enhancedClaims.GraduationYear,
				"preferences":     enhancedClaims.Preferences,
				"is_admin":        enhancedClaims.IsAdmin(),
			})
		})

		protected.GET("/discovery/for-you", handlers.ForYouFeed(container.DiscoveryService))
	}

	userRoutes := protected.Group("/users")
	{
		userRoutes.GET("/:id", handlers.GetUser(container.UserService))
		userRoutes.PUT("/me/preferences", handlers.UpdatePreferences(container.UserService))
		userRoutes.GET("/me/bookmarks", handlers.ListBookmarks(container.InteractionService))
		userRoutes.GET("/me/activity", handlers.ListActivity(container.ActivityService))
	}

	eventRoutes := protected.Group("/events")
	{
		eventRoutes.POST("/", handlers.CreateEvent(container.EventService))
		eventRoutes.PATCH("/:id", handlers.UpdateEvent(container.EventService))
		eventRoutes.DELETE("/:id", handlers.DeleteEvent(container.EventService))
		eventRoutes.DELETE("/:id/interact", handlers.RemoveInteraction(container.InteractionService))
		eventRoutes.POST("/tag-suggest", handlers.SuggestEventTags(container.EventService))
	}

	return r
}
