package httputil

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/medmarket/phiguard/internal/errors"
)

// Page bounds for list endpoints.
const (
	DefaultLimit = 50
	MaxLimit     = 100
)

// ParsePagination reads the offset and limit query parameters. Invalid values
// return an ErrInvalidInput error instead of being clamped.
func ParsePagination(c *gin.Context) (offset, limit int, err error) {
	offset, err = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		return 0, 0, apperrors.Wrap(apperrors.ErrInvalidInput, "offset must be a non-negative integer")
	}

	limit, err = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(DefaultLimit)))
	if err != nil || limit < 1 || limit > MaxLimit {
		return 0, 0, apperrors.Wrapf(apperrors.ErrInvalidInput, "limit must be between 1 and %d", MaxLimit)
	}

	return offset, limit, nil
}

// ParseTimeRange reads optional RFC3339 from/to query parameters as UTC.
// Both bounds are inclusive and from may not be after to.
func ParseTimeRange(c *gin.Context) (from, to *time.Time, err error) {
	if from, err = parseTimeQuery(c, "from"); err != nil {
		return nil, nil, err
	}
	if to, err = parseTimeQuery(c, "to"); err != nil {
		return nil, nil, err
	}
	if from != nil && to != nil && from.After(*to) {
		return nil, nil, apperrors.Wrap(apperrors.ErrInvalidInput, "from must be before or equal to to")
	}
	return from, to, nil
}

func parseTimeQuery(c *gin.Context, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, apperrors.Wrapf(apperrors.ErrInvalidInput, "invalid %s: must be RFC3339", key)
	}
	utc := parsed.UTC()
	return &utc, nil
}
