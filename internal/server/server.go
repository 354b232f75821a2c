package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"scamshield/internal/handler"
)

type Server struct {
	router *gin.Engine
	logger *zap.Logger
}

func NewServer(detection handler.DetectionHandler, admin handler.AdminHandler, logger *zap.Logger) *Server {
	router := gin.Default()

	s := &Server{
		router: router,
		logger: logger,
	}

	s.setupRoutes(detection, admin)

	return s
}

func (s *Server) setupRoutes(detection handler.DetectionHandler, admin handler.AdminHandler) {
	// Ping route for liveness probes
	s.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := s.router.Group("/api/v1")
	{
		api.POST("/detect", detection.Detect)
		api.GET("/detect/:request_id", detection.GetDetection)
		api.POST("/detect/:request_id/feedback", detection.SubmitFeedback)

		api.GET("/health", admin.HealthCheck)

		adminGroup := api.Group("/admin")
		adminGroup.POST("/promote", admin.TriggerPromotion)
		adminGroup.POST("/lists/reload", admin.ReloadLists)
		adminGroup.GET("/training/stats", admin.GetTrainingStats)
	}
}

func (s *Server) Run(addr string) {
	s.logger.Info("Server starting", zap.String("addr", addr))
	if err := s.router.Run(addr); err != nil {
		s.logger.Fatal("Server failed to start", zap.Error(err))
	}
}
