package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/wstorey/web615-lab9/internal/auth"
	"github.com/wstorey/web615-lab9/internal/storage"
)

type Server struct {
	router *gin.Engine
	port   int
	server *http.Server
}

func NewServer(port int, store storage.Store, authService *auth.Service) *Server {
	router := gin.Default()

	// Setup CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Create handler
	handler := NewHandler(store, authService)

	// Setup routes
	api := router.Group("/api")
	api.Use(handler.CurrentUser())
	{
		// Health check
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		// Registration and sessions
		api.POST("/users", handler.Register)
		api.POST("/sessions", handler.Login)
		api.DELETE("/sessions", handler.Logout)
		api.GET("/users/me", RequireUser(), handler.Me)

		// Articles routes
		articles := api.Group("/articles")
		{
			articles.GET("", handler.ListArticles)
			articles.GET("/:ref", handler.GetArticle)
			articles.GET("/:ref/comments", handler.ListArticleComments)
			articles.POST("", RequireUser(), handler.CreateArticle)
			articles.PUT("/:ref", RequireUser(), handler.UpdateArticle)
			articles.DELETE("/:ref", RequireUser(), handler.DeleteArticle)
		}

		// Comments routes
		comments := api.Group("/comments")
		{
			comments.GET("", handler.ListComments)
			comments.GET("/:ref", handler.GetComment)
			comments.POST("", RequireUser(), handler.CreateComment)
			comments.PUT("/:ref", RequireUser(), handler.UpdateComment)
			comments.DELETE("/:ref", RequireUser(), handler.DeleteComment)
		}
	}

	return &Server{
		router: router,
		port:   port,
	}
}

// Router exposes the gin engine for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
