package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"luckyten/config"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Server wraps the gin engine and the underlying http.Server
type Server struct {
	engine *gin.Engine
	http   *http.Server
}

// NewServer creates the HTTP server with all routes registered
func NewServer(cfg *config.Config, handler *Handler) *Server {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger())

	v1 := engine.Group("/api/v1")
	{
		v1.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		v1.POST("/users", handler.Register)
		v1.GET("/users", handler.GetProfile)

		v1.POST("/deposits", handler.Deposit)
		v1.GET("/deposits", handler.GetTransactions)

		v1.POST("/games", handler.Play)
		v1.GET("/games", handler.GetGames)

		v1.GET("/referrals", handler.GetReferrals)
		v1.POST("/referrals/claim", handler.Claim)

		v1.GET("/payouts", handler.GetPayouts)

		admin := v1.Group("/payouts")
		admin.Use(adminKeyMiddleware(cfg.AdminAPIKey))
		{
			admin.POST("/process", handler.ProcessSettlement)
			admin.GET("/status", handler.SettlementStatus)
		}
	}

	return &Server{
		engine: engine,
		http: &http.Server{
			Addr:              cfg.HTTPAddr,
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Start runs the server until it fails or is shut down
func (s *Server) Start() error {
	log.WithField("addr", s.http.Addr).Info("HTTP server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

// requestLogger emits one structured line per request
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log.WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"duration": time.Since(start).String(),
		}).Info("Request handled")
	}
}

// adminKeyMiddleware guards the settlement endpoints. The key is accepted
// from the X-Admin-Key header or the adminKey query parameter.
func adminKeyMiddleware(adminKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminKey == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin endpoint disabled"})
			return
		}

		key := c.GetHeader("X-Admin-Key")
		if key == "" {
			key = c.Query("adminKey")
		}
		if key != adminKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
			return
		}

		c.Next()
	}
}
