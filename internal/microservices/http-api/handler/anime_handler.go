package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"animeschedule/internal/microservices/http-api/dto"
	"animeschedule/internal/microservices/http-api/service"
	"animeschedule/internal/shared"

	"github.com/gin-gonic/gin"
)

type AnimeHandler struct {
	svc service.CatalogService
}

func NewAnimeHandler(svc service.CatalogService) *AnimeHandler {
	return &AnimeHandler{svc: svc}
}

func (h *AnimeHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.List)
	rg.GET("/:anime_id", h.Get)
}

// List GET /anime?status=Currently%20Airing
func (h *AnimeHandler) List(c *gin.Context) {
	var status *shared.AiringStatus
	if raw := c.Query("status"); raw != "" {
		parsed, err := shared.ParseAiringStatus(raw)
		if err != nil {
			badRequest(c, err.Error())
			return
		}
		status = &parsed
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	anime, err := h.svc.ListAnime(ctx, status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromAnimeModels(anime))
}

func (h *AnimeHandler) Get(c *gin.Context) {
	id, ok := animeIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	anime, err := h.svc.GetAnime(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromAnimeModel(*anime))
}

func animeIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("anime_id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid anime_id")
		return 0, false
	}
	return id, true
}
