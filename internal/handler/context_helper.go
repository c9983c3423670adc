package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-api/internal/attendance"
	"github.com/noah-isme/attendance-api/internal/middleware"
	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
	"github.com/noah-isme/attendance-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

// ownerID returns the id all data is scoped to, writing a 401 when absent.
func ownerID(c *gin.Context) (string, bool) {
	owner := claimsFromContext(c).Owner()
	if owner == "" {
		response.Error(c, appErrors.ErrUnauthorized)
		return "", false
	}
	return owner, true
}

// parseDate converts a YYYY-MM-DD parameter, falling back when it is empty.
func parseDate(field, raw string, fallback time.Time) (time.Time, error) {
	if raw == "" {
		return fallback, nil
	}
	parsed, err := attendance.ParseDate(field, raw)
	if err != nil {
		return time.Time{}, validationError(err)
	}
	return parsed, nil
}

func validationError(err error) error {
	var fieldErr *attendance.FieldError
	if errors.As(err, &fieldErr) {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fieldErr.Error())
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid request")
}

func pickQuery(c *gin.Context, preferred string, fallback string) string {
	if value := c.Query(preferred); value != "" {
		return value
	}
	return c.Query(fallback)
}
