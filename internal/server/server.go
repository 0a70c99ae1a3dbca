package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/spacesedan/redditpersona/internal/clients"
	"github.com/spacesedan/redditpersona/internal/models"
	"github.com/spacesedan/redditpersona/internal/processing"
)

// Service is what the handlers need from the analysis pipeline.
type Service interface {
	Analyze(ctx context.Context, req processing.AnalyzeRequest) (*processing.AnalyzeResponse, error)
	UserProfile(ctx context.Context, username string, limit int) (*processing.UserProfileResult, error)
	Listing(ctx context.Context, username, kind string, opts clients.ListingOptions) (*processing.ListingResult, error)
	SimulatePost(ctx context.Context, username string) (string, error)
	Demo() *models.AnalysisResult
	CacheEnabled() bool
	EventsEnabled() bool
}

// HealthInfo is reported by /api/health. It never holds secrets.
type HealthInfo struct {
	RedditConfigured bool
	LLMConfigured    bool
	LLMProvider      string
}

type Options struct {
	AllowedOrigins []string
	Production     bool
	Health         HealthInfo
}

type Server struct {
	router *gin.Engine
	svc    Service
	health HealthInfo
}

func New(svc Service, opts Options) *Server {
	if opts.Production {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger())

	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
	}
	if len(opts.AllowedOrigins) > 0 {
		allowed := opts.AllowedOrigins
		corsConfig.AllowOriginFunc = func(origin string) bool {
			for _, o := range allowed {
				if o == "*" || strings.EqualFold(o, origin) {
					return true
				}
			}
			return false
		}
	} else {
		corsConfig.AllowOriginFunc = func(origin string) bool { return true }
	}
	router.Use(cors.New(corsConfig))

	s := &Server{router: router, svc: svc, health: opts.Health}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	api := s.router.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/analyze", s.handleAnalyze)
	api.POST("/simulate-post", s.handleSimulatePost)
	api.GET("/user/:username", s.handleUserProfile)
	api.GET("/user/:username/posts", s.handleListing(processing.ListingPosts))
	api.GET("/user/:username/comments", s.handleListing(processing.ListingComments))
	api.GET("/user/:username/overview", s.handleListing(processing.ListingOverview))
}

// Router returns the HTTP handler.
func (s *Server) Router() http.Handler { return s.router }
