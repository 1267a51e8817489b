// Package server assembles the gin router for the API binary.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stagedoor/backend/internal/cache"
	"github.com/stagedoor/backend/internal/config"
	"github.com/stagedoor/backend/internal/handlers"
	"github.com/stagedoor/backend/internal/middleware"
	"github.com/stagedoor/backend/internal/services"
)

// Services is everything the routes call into.
type Services struct {
	Bands      *services.BandService
	BandStatus *services.BandStatusService
	DJ         *services.DJService
	Auth       *services.AuthService
}

type Server struct {
	cfg      *config.Config
	svc      Services
	cache    cache.Store
	gatherer prometheus.Gatherer
	router   *gin.Engine
}

func New(cfg *config.Config, svc Services, store cache.Store, gatherer prometheus.Gatherer) *Server {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:      cfg,
		svc:      svc,
		cache:    store,
		gatherer: gatherer,
		router:   gin.New(),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Logger())
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.Metrics())
	s.router.Use(middleware.CORS(s.cfg))
}

func (s *Server) setupRoutes() {
	bandHandler := handlers.NewBandHandler(s.svc.Bands, s.svc.BandStatus)
	djHandler := handlers.NewDJHandler(s.svc.DJ)
	financeHandler := handlers.NewFinanceHandler(s.cfg.Currency)
	authHandler := handlers.NewAuthHandler(s.svc.Auth)

	health := func(c *gin.Context) {
		status := "healthy"
		if err := s.cache.Ping(c.Request.Context()); err != nil {
			status = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{"status": status})
	}

	// Health check and metrics outside the API group
	s.router.GET("/health", health)
	if s.gatherer != nil {
		s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	api := s.router.Group("/api/v1")
	api.Use(middleware.RateLimiter(s.cache, s.cfg))
	{
		api.GET("/health", health)

		bands := api.Group("/bands")
		{
			bands.GET("", bandHandler.ListBands)
			bands.GET("/profiles", bandHandler.GetProfiles)
			bands.GET("/recommendations", bandHandler.GetRecommendations)
			bands.POST("/refresh", bandHandler.RefreshBands)
			bands.GET("/:id/status", bandHandler.GetStatusHistory)
			bands.POST("/:id/status", bandHandler.UpdateStatus)
		}

		dj := api.Group("/dj")
		{
			dj.GET("/requests", djHandler.GetRequests)
			dj.POST("/requests", djHandler.PostRequest)
			dj.POST("/play-song", djHandler.PlaySong)
			dj.POST("/blacklist", djHandler.AddToBlacklist)
			dj.DELETE("/blacklist", djHandler.RemoveFromBlacklist)
		}

		api.POST("/finance/break-even", financeHandler.BreakEven)

		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.GET("/session", authHandler.Session)
		}
	}
}
