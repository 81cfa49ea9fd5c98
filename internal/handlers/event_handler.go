package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/helpers"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/services"
)

type CreateEventRequest struct {
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description" binding:"required"`
	Date        time.Time `json:"date" binding:"required"`
	Type        string    `json:"type" binding:"omitempty,oneof=physical virtual"`
	Price       float64   `json:"price" binding:"min=0"`
	Venue       string    `json:"venue"`
	Media       []string  `json:"media"`
}

type UpdateEventRequest struct {
	Title       *string    `json:"title" binding:"omitempty,min=1"`
	Description *string    `json:"description" binding:"omitempty,min=1"`
	Date        *time.Time `json:"date"`
	Type        *string    `json:"type" binding:"omitempty,oneof=physical virtual"`
	Price       *float64   `json:"price" binding:"omitempty,min=0"`
	Venue       *string    `json:"venue"`
	Media       *[]string  `json:"media"`
}

func (h *Handler) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	event, err := h.Events.Create(c.Request.Context(), userID, services.EventInput{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Type:        req.Type,
		Price:       req.Price,
		Venue:       req.Venue,
		Media:       req.Media,
	})
	if err != nil {
		helpers.RespondWithServiceError(c, err, "Failed to create event.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Event created successfully.",
		"event":   event,
	})
}

func (h *Handler) GetEvent(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}

	event, err := h.Events.Get(c.Request.Context(), eventID)
	if err != nil {
		helpers.RespondWithServiceError(c, err, "Error retrieving event.")
		return
	}

	c.JSON(http.StatusOK, event)
}

func (h *Handler) ListEvents(c *gin.Context) {
	page, limit := helpers.ParsePagination(c)

	query := services.ListQuery{
		Page:     page,
		Limit:    limit,
		Type:     c.Query("type"),
		Upcoming: c.Query("upcoming") == "true",
	}

	result, err := h.Events.List(c.Request.Context(), query)
	if err != nil {
		helpers.RespondWithServiceError(c, err, "Error retrieving events.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"events":      result.Events,
		"total":       result.Total,
		"page":        result.Page,
		"limit":       result.Limit,
		"total_pages": (result.Total + int64(result.Limit) - 1) / int64(result.Limit),
	})
}

func (h *Handler) UpdateEvent(c *gin.Context) {
	event, ok := currentEvent(c)
	if !ok {
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	updated, err := h.Events.Update(c.Request.Context(), event, services.EventPatch{
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Type:        req.Type,
		Price:       req.Price,
		Venue:       req.Venue,
		Media:       req.Media,
	})
	if err != nil {
		helpers.RespondWithServiceError(c, err, "Failed to update event.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event updated successfully.",
		"event":   updated,
	})
}

func (h *Handler) DeleteEvent(c *gin.Context) {
	event, ok := currentEvent(c)
	if !ok {
		return
	}

	if err := h.Events.Delete(c.Request.Context(), event.ID); err != nil {
		helpers.RespondWithServiceError(c, err, "Failed to delete event.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Event deleted successfully.",
	})
}
