package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/altklausuren/internal/app/models/dto"
	"github.com/yigit/altklausuren/internal/pkg/logger"
)

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController answers liveness and readiness probes
type HealthController struct {
	db Pinger
}

// NewHealthController creates a new HealthController
func NewHealthController(db Pinger) *HealthController {
	return &HealthController{db: db}
}

// Ping is a liveness probe
// @Summary Liveness probe
// @Tags health
// @Produce json
// @Success 200 {object} dto.MessageResponse
// @Router /ping [get]
func (c *HealthController) Ping(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.MessageResponse{Message: "pong"})
}

// Health reports store reachability
// @Summary Readiness probe
// @Tags health
// @Produce json
// @Success 200 {object} dto.HealthResponse
// @Failure 503 {object} dto.HealthResponse
// @Router /api/health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	if c.db == nil {
		ctx.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "degraded"})
		return
	}
	if err := c.db.Ping(ctx.Request.Context()); err != nil {
		logger.Warn().Err(err).Msg("Health check: database unreachable")
		ctx.JSON(http.StatusServiceUnavailable, dto.HealthResponse{Status: "degraded"})
		return
	}
	ctx.JSON(http.StatusOK, dto.HealthResponse{Status: "ok", Database: true})
}
