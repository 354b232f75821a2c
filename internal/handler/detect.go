package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"scamshield/internal/engine"
	"scamshield/internal/models"
	"scamshield/internal/repository"
)

type DetectionHandler interface {
	Detect(c *gin.Context)
	GetDetection(c *gin.Context)
	SubmitFeedback(c *gin.Context)
}

type detectionHandler struct {
	engine     *engine.Engine
	feedback   *engine.FeedbackProcessor
	detections repository.DetectionRepository
	logger     *zap.Logger
}

func NewDetectionHandler(eng *engine.Engine, feedback *engine.FeedbackProcessor, detections repository.DetectionRepository, logger *zap.Logger) DetectionHandler {
	return &detectionHandler{
		engine:     eng,
		feedback:   feedback,
		detections: detections,
		logger:     logger,
	}
}

type detectRequest struct {
	Text      string  `json:"text" binding:"required"`
	Channel   string  `json:"channel"`
	Source    string  `json:"source"`
	PartnerID *string `json:"partner_id"`
}

type feedbackRequest struct {
	Type    string `json:"type" binding:"required"`
	Comment string `json:"comment"`
}

// Detect handles POST /api/v1/detect
func (h *detectionHandler) Detect(c *gin.Context) {
	var req detectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text is required"})
		return
	}

	verdict, err := h.engine.Submit(c.Request.Context(), engine.Submission{
		Text:      req.Text,
		Channel:   req.Channel,
		Source:    req.Source,
		PartnerID: req.PartnerID,
	})
	if err != nil {
		if errors.Is(err, models.ErrInvalidInput) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Detection failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "detection failed"})
		return
	}

	c.JSON(http.StatusOK, verdict)
}

// GetDetection handles GET /api/v1/detect/:request_id
func (h *detectionHandler) GetDetection(c *gin.Context) {
	requestID := c.Param("request_id")

	rec, err := h.detections.GetByRequestID(requestID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "detection record not found"})
			return
		}
		h.logger.Error("Failed to load detection record",
			zap.String("request_id", requestID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load detection record"})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// SubmitFeedback handles POST /api/v1/detect/:request_id/feedback
func (h *detectionHandler) SubmitFeedback(c *gin.Context) {
	requestID := c.Param("request_id")

	var req feedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "type is required"})
		return
	}

	if err := h.feedback.Apply(requestID, req.Type, req.Comment); err != nil {
		switch {
		case errors.Is(err, models.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, models.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "detection record not found"})
		default:
			h.logger.Error("Failed to apply feedback",
				zap.String("request_id", requestID),
				zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to apply feedback"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "accepted"})
}
