package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nkaewam/soundcloudy/config"
	"github.com/nkaewam/soundcloudy/internal/scdl"
)

// Downloader resolves and fetches a SoundCloud URL
type Downloader interface {
	Download(ctx context.Context, args scdl.Args) scdl.Result
}

// Server handles HTTP requests for the SoundCloud download facade
type Server struct {
	cfg        *config.Config
	router     *gin.Engine
	downloader Downloader
}

// New creates a new HTTP server instance around a shared downloader
func New(cfg *config.Config, downloader Downloader) *Server {
	switch cfg.Server.Mode {
	case gin.DebugMode, gin.ReleaseMode, gin.TestMode:
		gin.SetMode(cfg.Server.Mode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	server := &Server{
		cfg:        cfg,
		router:     router,
		downloader: downloader,
	}

	server.setupRoutes(router)
	return server
}

// setupRoutes configures the HTTP routes
func (s *Server) setupRoutes(router *gin.Engine) {
	router.Use(requestID(), requestLogger(), cors())

	router.GET("/healthcheck", s.healthCheck)

	// The URL is passed as the rest of the path, slashes included
	router.GET("/download/*url", s.download)
}

// Handler exposes the router, mainly for tests and custom listeners
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(port string) error {
	return s.router.Run(":" + port)
}
