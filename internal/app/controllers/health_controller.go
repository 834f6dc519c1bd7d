package controllers

import (
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/coursecatalog/internal/app/models/dto"
	"github.com/yigit/coursecatalog/internal/pkg/snapshot"
)

// HealthController reports liveness and snapshot ages
type HealthController struct {
	cache *snapshot.Cache
}

// NewHealthController creates a new health controller
func NewHealthController(cache *snapshot.Cache) *HealthController {
	return &HealthController{cache: cache}
}

// Health reports when each cached listing was last computed
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.HealthResponse} "Service healthy"
// @Router /health [get]
func (c *HealthController) Health(ctx *gin.Context) {
	keys := c.cache.Keys()
	sort.Strings(keys)

	snapshots := make(map[string]time.Time, len(keys))
	for _, key := range keys {
		if _, computedAt, ok := snapshot.Peek[any](c.cache, key); ok {
			snapshots[key] = computedAt
		}
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.HealthResponse{
		Status:    "ok",
		Snapshots: snapshots,
	}, "Service healthy"))
}
