package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-api/internal/dto"
	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
	"github.com/noah-isme/attendance-api/pkg/response"
)

type calendarService interface {
	ListHolidays(ctx context.Context, userID string) ([]models.Holiday, error)
	CreateHoliday(ctx context.Context, userID string, req dto.CreateHolidayRequest) (*models.Holiday, error)
	DeleteHoliday(ctx context.Context, userID, id string) error
	GetSemester(ctx context.Context, userID string) (*models.SemesterConfig, error)
	SaveSemester(ctx context.Context, userID string, req dto.SemesterRequest) (*models.SemesterConfig, error)
}

// CalendarHandler serves holidays and semester configuration.
type CalendarHandler struct {
	service calendarService
}

// NewCalendarHandler constructs the handler.
func NewCalendarHandler(service calendarService) *CalendarHandler {
	return &CalendarHandler{service: service}
}

// ListHolidays godoc
// @Summary List holidays
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /holidays [get]
func (h *CalendarHandler) ListHolidays(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	holidays, err := h.service.ListHolidays(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, holidays)
}

// CreateHoliday godoc
// @Summary Add a holiday
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body dto.CreateHolidayRequest true "Holiday"
// @Success 201 {object} response.Envelope
// @Router /holidays [post]
func (h *CalendarHandler) CreateHoliday(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	var req dto.CreateHolidayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	holiday, err := h.service.CreateHoliday(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, holiday)
}

// DeleteHoliday godoc
// @Summary Remove a holiday
// @Tags Calendar
// @Param id path string true "Holiday ID"
// @Success 204
// @Router /holidays/{id} [delete]
func (h *CalendarHandler) DeleteHoliday(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteHoliday(c.Request.Context(), userID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// GetSemester godoc
// @Summary Semester configuration
// @Tags Calendar
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /semester [get]
func (h *CalendarHandler) GetSemester(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	semester, err := h.service.GetSemester(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, semester)
}

// SaveSemester godoc
// @Summary Configure semester dates and exam periods
// @Tags Calendar
// @Accept json
// @Produce json
// @Param payload body dto.SemesterRequest true "Semester"
// @Success 200 {object} response.Envelope
// @Router /semester [put]
func (h *CalendarHandler) SaveSemester(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	var req dto.SemesterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	semester, err := h.service.SaveSemester(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, semester)
}
