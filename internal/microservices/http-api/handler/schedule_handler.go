package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"animeschedule/internal/microservices/http-api/dto"
	"animeschedule/internal/microservices/http-api/middleware"
	"animeschedule/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

type ScheduleHandler struct {
	svc service.ScheduleService
}

func NewScheduleHandler(svc service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

func (h *ScheduleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Weekly)
	rg.POST("/entries", h.Add)
	rg.PUT("/entries/:anime_id", h.Update)
	rg.DELETE("/entries/:anime_id", h.Remove)
}

// Weekly GET /schedule
func (h *ScheduleHandler) Weekly(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	week, err := h.svc.GetScheduleByUser(ctx, userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, week)
}

// Add POST /schedule/entries
func (h *ScheduleHandler) Add(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.AddScheduleEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	entry, err := h.svc.AddScheduleEntry(ctx, userID, req.MalID, service.SlotFromOptional(req.Weekday, req.Time))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.FromScheduleEntryModel(*entry))
}

// Update PUT /schedule/entries/:anime_id; an empty body re-derives the slot
func (h *ScheduleHandler) Update(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	animeID, ok := animeIDParam(c)
	if !ok {
		return
	}

	var req dto.UpdateScheduleEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	entry, err := h.svc.UpdateScheduleEntry(ctx, userID, animeID, service.SlotFromOptional(req.Weekday, req.Time))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromScheduleEntryModel(*entry))
}

// Remove DELETE /schedule/entries/:anime_id
func (h *ScheduleHandler) Remove(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}
	animeID, ok := animeIDParam(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.svc.DeleteScheduleEntry(ctx, userID, animeID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
