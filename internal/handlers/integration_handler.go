package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/helpers"
)

func (h *Handler) CreateCheckoutSession(c *gin.Context) {
	eventID, ok := eventIDParam(c)
	if !ok {
		return
	}
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	session, err := h.Checkout.CreateCheckoutSession(c.Request.Context(), eventID, userID)
	if err != nil {
		helpers.RespondWithServiceError(c, err, "Failed to create payment session.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"url": session.URL,
	})
}

func (h *Handler) CreateZoomMeeting(c *gin.Context) {
	event, ok := currentEvent(c)
	if !ok {
		return
	}

	updated, err := h.Meetings.CreateZoomMeeting(c.Request.Context(), event.ID)
	if err != nil {
		helpers.RespondWithServiceError(c, err, "Failed to create Zoom meeting.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Zoom meeting created successfully.",
		"zoom_link": updated.ZoomLink,
		"event":     updated,
	})
}
