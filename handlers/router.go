package handlers

import (
	"net/http"

	"knowledge-base-api/auth"
	"knowledge-base-api/middleware"
	"knowledge-base-api/models"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handlers struct {
	Articles   *ArticleHandler
	Feedback   *FeedbackHandler
	Auth       *AuthHandler
	Users      *UserHandler
	Tags       *TagHandler
	Categories *CategoryHandler
}

type RouterOptions struct {
	JWTManager  *auth.JWTManager
	CORSOrigins []string
	// AuthLimiter throttles register, login and sync. Nil disables it.
	AuthLimiter *middleware.RateLimiter
}

func NewRouter(h Handlers, opts RouterOptions) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(middleware.CORS(opts.CORSOrigins))

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	router.GET("/", index)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.AuthMiddleware(opts.JWTManager)
	throttle := func(c *gin.Context) { c.Next() }
	if opts.AuthLimiter != nil {
		throttle = opts.AuthLimiter.Middleware()
	}

	articles := router.Group("/articles")
	{
		articles.GET("", h.Articles.GetArticles)
		articles.POST("", h.Articles.CreateArticle)
		articles.GET("/tag/:name", h.Articles.GetArticlesByTag)
		articles.GET("/:id", h.Articles.GetArticle)
		articles.PUT("/:id", h.Articles.UpdateArticle)
		articles.DELETE("/:id", h.Articles.DeleteArticle)

		articles.GET("/:id/feedback", h.Feedback.GetArticleFeedback)
		articles.POST("/:id/feedback", h.Feedback.SubmitFeedback)
		articles.GET("/:id/feedback/summary", h.Feedback.GetFeedbackSummary)
	}

	router.DELETE("/feedback/:id", requireAuth, middleware.RequireRole(models.RoleAdmin, models.RoleEditor), h.Feedback.DeleteFeedback)

	categories := router.Group("/categories")
	{
		categories.GET("", h.Categories.GetCategories)
		categories.POST("", requireAuth, middleware.RequireRole(models.RoleAdmin), h.Categories.CreateCategory)
		categories.DELETE("/:id", requireAuth, middleware.RequireRole(models.RoleAdmin), h.Categories.DeleteCategory)
	}

	tags := router.Group("/tags")
	{
		tags.GET("", h.Tags.GetTags)
		tags.POST("", requireAuth, middleware.RequireRole(models.RoleAdmin, models.RoleEditor), h.Tags.CreateTag)
	}

	router.POST("/register", throttle, h.Auth.Register)
	router.POST("/login", throttle, h.Auth.Login)
	router.GET("/profile", requireAuth, h.Auth.GetProfile)

	users := router.Group("/users")
	{
		users.GET("", h.Users.GetUsers)
		users.POST("/sync", throttle, h.Auth.Sync)
		users.GET("/:id", h.Users.GetUser)
		users.PUT("/:id", requireAuth, h.Users.UpdateUser)
		users.DELETE("/:id", requireAuth, middleware.RequireRole(models.RoleAdmin), h.Users.DeleteUser)
		users.GET("/:id/feedback", h.Feedback.GetUserFeedback)
	}

	return router
}

func index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Knowledge Base API is running!",
		"endpoints": gin.H{
			"articles": gin.H{
				"GET_all":     "/articles",
				"GET_single":  "/articles/1",
				"POST_create": "/articles (POST)",
				"PUT_update":  "/articles/1 (PUT)",
				"DELETE":      "/articles/1 (DELETE)",
				"by_tag":      "/articles/tag/python",
			},
			"categories": "/categories",
			"tags":       "/tags",
			"users": gin.H{
				"GET_all":    "/users",
				"GET_single": "/users/1",
				"register":   "/register (POST)",
				"login":      "/login (POST)",
				"sync":       "/users/sync (POST)",
				"profile":    "/profile",
			},
			"feedback": gin.H{
				"GET_article_feedback": "/articles/1/feedback",
				"POST_feedback":        "/articles/1/feedback (POST)",
				"GET_summary":          "/articles/1/feedback/summary",
				"GET_user_feedback":    "/users/1/feedback",
			},
		},
		"version": "1.0",
	})
}
