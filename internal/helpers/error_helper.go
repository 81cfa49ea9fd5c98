package helpers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/logging"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/services"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func HTTPStatusText(code int) string {
	return http.StatusText(code)
}

func RespondWithError(c *gin.Context, statusCode int, customMessage string) {
	c.JSON(statusCode, ErrorResponse{
		Error:   HTTPStatusText(statusCode),
		Message: customMessage,
	})
}

// StatusFor maps a service error kind to its HTTP status.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrConflict),
		errors.Is(err, services.ErrNotApplicable),
		errors.Is(err, services.ErrInvalid):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// RespondWithServiceError writes err using the service message when it has
// one. Unclassified errors are logged under fallback and answered with the
// underlying error text.
func RespondWithServiceError(c *gin.Context, err error, fallback string) {
	status := StatusFor(err)
	message := services.MessageOf(err)
	if message == "" {
		message = err.Error()
	}
	if status == http.StatusInternalServerError {
		logging.Error().Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg(fallback)
	}
	RespondWithError(c, status, message)
}
