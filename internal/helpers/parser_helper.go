package helpers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxPageLimit = 100

func StringToInt(s string) (int, error) {
	return strconv.Atoi(s)
}

// ParsePagination reads page and limit query parameters, falling back to
// page 1 and 10 items for missing or malformed values.
func ParsePagination(c *gin.Context) (page, limit int) {
	page, err := StringToInt(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		page = 1
	}
	limit, err = StringToInt(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 {
		limit = 10
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	return page, limit
}

func ParseUUIDParam(c *gin.Context, name string) (uuid.UUID, error) {
	return uuid.Parse(c.Param(name))
}
