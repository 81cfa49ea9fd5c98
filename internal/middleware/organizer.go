package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/helpers"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/logging"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/models"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/store"
)

type EventLoader interface {
	GetEvent(ctx context.Context, id uuid.UUID) (*models.Event, error)
}

// RequireEventOrganizer loads the :id event and lets the request through
// only for its organizer. The loaded event is available via CurrentEvent.
func RequireEventOrganizer(events EventLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		eventID, err := helpers.ParseUUIDParam(c, "id")
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
			c.Abort()
			return
		}

		userID, ok := CurrentUserID(c)
		if !ok {
			helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
			c.Abort()
			return
		}

		event, err := events.GetEvent(c.Request.Context(), eventID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
			} else {
				logging.Error().Err(err).Str("event_id", eventID.String()).Msg("Failed to load event for organizer check")
				helpers.RespondWithError(c, http.StatusInternalServerError, "Error verifying event ownership.")
			}
			c.Abort()
			return
		}

		if event.OrganizerID != userID {
			helpers.RespondWithError(c, http.StatusForbidden, "Only the event organizer can perform this action.")
			c.Abort()
			return
		}

		c.Set(eventKey, event)
		c.Next()
	}
}

func CurrentEvent(c *gin.Context) (*models.Event, bool) {
	v, exists := c.Get(eventKey)
	if !exists {
		return nil, false
	}
	event, ok := v.(*models.Event)
	return event, ok
}
