package http

import (
	"html/template"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookclub/internal/auth"
)

// NewRouter creates and configures the HTTP router with all endpoints.
// Uses RouterConfig to receive all dependencies, improving testability.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Apply security headers to all responses
	router.Use(auth.SecurityHeadersMiddleware())

	// CSRF runs before session loading: the CSRF middleware replaces the
	// request, which would drop the session context if loaded earlier.
	if len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.SessionLoadSave())
	}

	// Guard: everything except the public paths requires a session
	if cfg.AuthMiddleware != nil {
		router.Use(cfg.AuthMiddleware.Handler())
	}

	// Load HTML templates
	tmpl := template.Must(template.New("").ParseGlob(cfg.TemplatesPath + "/*.html"))
	router.SetHTMLTemplate(tmpl)

	// Serve static files
	router.Static("/static", cfg.StaticPath)

	// Auth routes (login, register, logout)
	if cfg.AuthService != nil {
		authController := auth.NewAuthController(cfg.AuthService, cfg.SessionManager, cfg.TemplatesPath)
		authController.RegisterRoutes(router)
	}

	// Create controllers with appropriate interfaces
	health := NewHealthController(cfg.Database, cfg.Version)
	searchController := NewSearchController(cfg.Books)
	booksController := NewBooksController(cfg.Books, cfg.Reviews, cfg.RatingsClient)
	apiController := NewAPIController(cfg.Books, cfg.Reviews)

	// Health endpoints
	router.GET("/health", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Search page (auth required)
	router.GET("/", searchController.SearchPage)
	router.POST("/", searchController.Search)
	router.GET("/search", searchController.SearchPage)
	router.POST("/search", searchController.Search)

	// Book detail + review submission (auth required)
	router.GET("/book/:id", booksController.BookPage)
	router.POST("/book/:id", booksController.SubmitReview)

	// Public JSON book API
	router.GET("/api/:isbn", apiController.BookInfo)

	return router
}
