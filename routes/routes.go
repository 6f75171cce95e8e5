package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"devconnect/config"
	"devconnect/handlers"
	"devconnect/middleware"
	"devconnect/validation"
)

// SetupRouter wires the full REST surface onto a Gin engine.
func SetupRouter(h *handlers.Handler, cfg *config.Config) *gin.Engine {
	validation.Init()

	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "x-auth-token"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "API running", "service": "healthy"})
	})
	router.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Registration and login take the brunt of abuse; budget them per IP.
	authLimiter := middleware.NewIPRateLimiter(30, time.Minute)

	// Public routes
	router.POST("/api/users", middleware.RateLimit(authLimiter), h.Register)
	router.POST("/api/auth", middleware.RateLimit(authLimiter), h.Login)
	router.GET("/api/profiles", h.ListProfiles)
	router.GET("/api/profiles/:user_id", h.GetProfileByUserID)
	router.GET("/api/profiles/github/:username", h.GithubRepos)

	// Protected routes
	protected := router.Group("/api")
	protected.Use(middleware.TokenAuth(cfg.JWTSecret))

	protected.GET("/auth", h.GetCurrentUser)

	protected.GET("/profiles/me", h.GetMyProfile)
	protected.POST("/profiles", h.UpsertProfile)
	protected.DELETE("/profiles", h.DeleteAccount)
	protected.PUT("/profiles/experience", h.AddExperience)
	protected.DELETE("/profiles/experience/:exp_id", h.DeleteExperience)
	protected.PUT("/profiles/education", h.AddEducation)
	protected.DELETE("/profiles/education/:edu_id", h.DeleteEducation)

	protected.POST("/posts", h.CreatePost)
	protected.GET("/posts", h.ListPosts)
	protected.GET("/posts/:post_id", h.GetPost)
	protected.DELETE("/posts/:post_id", h.DeletePost)
	protected.PUT("/posts/like/:post_id", h.LikePost)
	protected.PUT("/posts/unlike/:post_id", h.UnlikePost)
	protected.POST("/posts/comment/:post_id", h.AddComment)
	protected.DELETE("/posts/comment/:post_id/:comment_id", h.DeleteComment)

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(404, gin.H{"error": "Endpoint not found", "path": c.Request.URL.Path})
			return
		}
		c.Next()
	})

	return router
}
