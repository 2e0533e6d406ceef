package server

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/enamahmedshahaz/peoples-forum-server/internal/auth"
	"github.com/enamahmedshahaz/peoples-forum-server/internal/database"
	"github.com/enamahmedshahaz/peoples-forum-server/internal/handlers"
	"github.com/enamahmedshahaz/peoples-forum-server/internal/middleware"
	"github.com/enamahmedshahaz/peoples-forum-server/internal/store"
)

type Server struct {
	store   store.Store
	auth    *auth.Manager
	handler *handlers.Handler
}

// NewServer creates and configures a new server
func NewServer() *http.Server {
	// Initialize database
	db, err := database.NewDatabase()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	manager := auth.NewManagerFromEnv()

	// Create unified handler
	handler := handlers.NewHandler(db, manager)

	// Create server instance
	newServer := &Server{
		store:   db,
		auth:    manager,
		handler: handler,
	}

	// Configure Gin router
	router := newServer.RegisterRoutes()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000" // local dev fallback
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         "0.0.0.0:" + port,
		Handler:      router,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Printf("🚀 Server starting on port %s\n", port)
	fmt.Println("📝 Press Ctrl+C to stop the server")

	return server
}

// NewServerWith wires a server around an existing store and token manager.
// Used by the tests.
func NewServerWith(s store.Store, manager *auth.Manager) *Server {
	return &Server{
		store:   s,
		auth:    manager,
		handler: handlers.NewHandler(s, manager),
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * 3600,
	}))

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API routes
	api := r.Group("/api")
	{
		// Credential issuance and first-sign-in registration (public)
		api.POST("/jwt", s.handler.Auth.IssueToken)
		api.POST("/users", s.handler.User.CreateUser)

		// Post routes (public reads)
		api.GET("/posts", s.handler.Post.GetPosts)
		api.GET("/posts/latest", s.handler.Post.GetLatestPosts)
		api.GET("/posts/count", s.handler.Post.CountPosts)
		api.GET("/posts/:id", s.handler.Post.GetPost)
		api.GET("/posts/:id/comments", s.handler.Comment.GetComments)
		api.GET("/tags", s.handler.Post.GetTags)

		// Announcement routes (public reads)
		api.GET("/announcements", s.handler.Announcement.GetAnnouncements)
		api.GET("/announcements/count", s.handler.Announcement.CountAnnouncements)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.RequireAuth(s.auth))
		{
			protected.GET("/users/admin/:email", s.handler.User.CheckAdmin)

			protected.POST("/posts", s.handler.Post.CreatePost)
			protected.DELETE("/posts/:id", s.handler.Post.DeletePost)
			protected.PATCH("/posts/:id/vote/:direction", s.handler.Post.VotePost)

			protected.POST("/posts/:id/comments", s.handler.Comment.CreateComment)

			protected.POST("/reports", s.handler.Report.CreateReport)
		}

		// Admin routes (authentication + admin role required)
		admin := api.Group("")
		admin.Use(middleware.RequireAuth(s.auth), middleware.RequireAdmin(s.store))
		{
			admin.GET("/users", s.handler.User.GetUsers)
			admin.PATCH("/users/admin/:id", s.handler.User.MakeAdmin)

			admin.GET("/reports", s.handler.Report.GetReports)
			admin.DELETE("/reports/:id", s.handler.Report.DeleteReport)

			admin.POST("/announcements", s.handler.Announcement.CreateAnnouncement)
		}
	}

	return r
}
