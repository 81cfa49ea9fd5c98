package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/helpers"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/logging"
)

// UploadPrefix is the URL path the upload directory is served under.
const UploadPrefix = "/uploads"

func (h *Handler) UploadEventMedia(c *gin.Context) {
	event, ok := currentEvent(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "No file uploaded.")
		return
	}

	relative, err := helpers.UploadFile(c, fileHeader, helpers.EventMediaDir, h.Uploads)
	if err != nil {
		if errors.Is(err, helpers.ErrFileTooLarge) || errors.Is(err, helpers.ErrInvalidFileType) {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		logging.Error().Err(err).Str("event_id", event.ID.String()).Msg("Failed to store upload")
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to upload file.")
		return
	}

	updated, err := h.Events.AddMedia(c.Request.Context(), event.ID, UploadPrefix+"/"+relative)
	if err != nil {
		if rmErr := helpers.DeleteFile(h.Uploads.UploadBasePath, relative); rmErr != nil {
			logging.Warn().Err(rmErr).Str("file", relative).Msg("Failed to remove orphaned upload")
		}
		helpers.RespondWithServiceError(c, err, "Failed to attach media.")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Media uploaded successfully.",
		"event":   updated,
	})
}
