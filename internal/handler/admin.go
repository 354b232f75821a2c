package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"scamshield/internal/cache"
	"scamshield/internal/entitylist"
	"scamshield/internal/mlclient"
	"scamshield/internal/promoter"
	"scamshield/internal/repository"
)

type AdminHandler interface {
	TriggerPromotion(c *gin.Context)
	ReloadLists(c *gin.Context)
	GetTrainingStats(c *gin.Context)
	HealthCheck(c *gin.Context)
}

type adminHandler struct {
	promoter *promoter.Promoter
	lists    *entitylist.Store
	training repository.TrainingRepository
	db       *sqlx.DB
	cache    *cache.VerdictCache
	mlClient *mlclient.Client
	logger   *zap.Logger
}

func NewAdminHandler(
	p *promoter.Promoter,
	lists *entitylist.Store,
	training repository.TrainingRepository,
	db *sqlx.DB,
	verdictCache *cache.VerdictCache,
	mlClient *mlclient.Client,
	logger *zap.Logger,
) AdminHandler {
	return &adminHandler{
		promoter: p,
		lists:    lists,
		training: training,
		db:       db,
		cache:    verdictCache,
		mlClient: mlClient,
		logger:   logger,
	}
}

// TriggerPromotion handles POST /api/v1/admin/promote
func (h *adminHandler) TriggerPromotion(c *gin.Context) {
	promoted, err := h.promoter.PromoteThreats()
	if err != nil {
		h.logger.Error("Manual promotion run failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "promotion run failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"promoted": len(promoted),
		"entities": promoted,
	})
}

// ReloadLists handles POST /api/v1/admin/lists/reload
func (h *adminHandler) ReloadLists(c *gin.Context) {
	if err := h.lists.Reload(); err != nil {
		h.logger.Error("Entity list reload failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reload failed"})
		return
	}

	snap := h.lists.Snapshot()
	c.JSON(http.StatusOK, gin.H{
		"version":   snap.Version,
		"whitelist": len(snap.Whitelist()),
		"blacklist": len(snap.Blacklist()),
	})
}

// GetTrainingStats handles GET /api/v1/admin/training/stats
func (h *adminHandler) GetTrainingStats(c *gin.Context) {
	stats, err := h.training.GetStats()
	if err != nil {
		h.logger.Error("Failed to collect training stats", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to collect stats"})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// HealthCheck handles GET /api/v1/health. Database health gates the
// response status; cache and classifier are reported but non-fatal because
// the pipeline degrades without them.
func (h *adminHandler) HealthCheck(c *gin.Context) {
	ctx := c.Request.Context()

	status := http.StatusOK
	components := gin.H{}

	if err := h.db.Ping(); err != nil {
		components["database"] = "down"
		status = http.StatusServiceUnavailable
	} else {
		components["database"] = "up"
	}

	if err := h.cache.Ping(ctx); err != nil {
		components["cache"] = "down"
	} else {
		components["cache"] = "up"
	}

	if h.mlClient != nil {
		if _, err := h.mlClient.HealthCheck(ctx); err != nil {
			components["classifier"] = "down"
		} else {
			components["classifier"] = "up"
		}
	} else {
		components["classifier"] = "disabled"
	}

	c.JSON(status, gin.H{
		"status":     statusWord(status),
		"components": components,
		"time":       time.Now().UTC().Format(time.RFC3339),
	})
}

func statusWord(status int) string {
	if status == http.StatusOK {
		return "ok"
	}
	return "degraded"
}
