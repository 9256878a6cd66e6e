package handler

import (
	"context"
	"net/http"
	"time"

	"animeschedule/internal/microservices/http-api/dto"
	"animeschedule/internal/microservices/http-api/middleware"
	"animeschedule/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

const defaultSyncTimeout = 15 * time.Minute

type AdminHandler struct {
	svc         service.CatalogService
	syncTimeout time.Duration
}

func NewAdminHandler(svc service.CatalogService) *AdminHandler {
	return &AdminHandler{svc: svc, syncTimeout: defaultSyncTimeout}
}

func (h *AdminHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/catalog/sync", middleware.RequireAdmin(), h.TriggerSync)
}

// TriggerSync runs a catalog synchronization in the request. A client that
// hangs up does not abort the run; only the timeout does.
func (h *AdminHandler) TriggerSync(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(c.Request.Context()), h.syncTimeout)
	defer cancel()

	result, err := h.svc.TriggerSync(ctx)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := dto.SyncResponse{
		Inserted:    result.Inserted,
		Updated:     result.Updated,
		Deleted:     result.Deleted,
		Unchanged:   result.Unchanged,
		Skipped:     result.Skipped,
		Regressions: result.Regressions,
	}
	if next := h.svc.NextSync(); !next.IsZero() {
		resp.NextRun = &next
	}
	c.JSON(http.StatusOK, resp)
}
