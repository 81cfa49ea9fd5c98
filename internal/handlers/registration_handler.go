package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/helpers"
)

type CheckInRequest struct {
	QRData string `json:"qr_data" binding:"required"`
}

func (h *Handler) RegisterForEvent(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	reg, err := h.Registrar.RegisterAttendee(c.Request.Context(), eventID, userID)
	if err != nil {
		helpers.RespondWithServiceError(c, err, "Failed to register for event.")
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registered successfully.",
		"event":   reg.Event,
		"ticket":  reg.Ticket,
	})
}

func (h *Handler) CheckIn(c *gin.Context) {
	event, ok := currentEvent(c)
	if !ok {
		return
	}

	var req CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "QR data is required.")
		return
	}

	user, err := h.Registrar.CheckIn(c.Request.Context(), event, req.QRData)
	if err != nil {
		helpers.RespondWithServiceError(c, err, "Failed to verify ticket.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":   true,
		"message": "Ticket is valid.",
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
		},
	})
}

func (h *Handler) ExportAttendees(c *gin.Context) {
	event, ok := currentEvent(c)
	if !ok {
		return
	}

	export, err := h.Exporter.ExportAttendees(c.Request.Context(), event)
	if err != nil {
		helpers.RespondWithServiceError(c, err, "Failed to export attendees.")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+export.Filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", export.Data)
}
