package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/helpers"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/middleware"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/models"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/services"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler carries the services the HTTP API is built on.
type Handler struct {
	Accounts  *services.Accounts
	Events    *services.Events
	Registrar *services.Registrar
	Exporter  *services.Exporter
	Checkout  *services.Checkout
	Meetings  *services.Meetings
	Uploads   helpers.UploadConfig
	Health    Pinger
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.CurrentUserID(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return uuid.Nil, false
	}
	return userID, true
}

func currentEvent(c *gin.Context) (*models.Event, bool) {
	event, ok := middleware.CurrentEvent(c)
	if !ok {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Event not loaded.")
		return nil, false
	}
	return event, true
}

func eventIDParam(c *gin.Context) (uuid.UUID, bool) {
	eventID, err := helpers.ParseUUIDParam(c, "id")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return uuid.Nil, false
	}
	return eventID, true
}
