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

type attendanceService interface {
	List(ctx context.Context, userID string, req dto.AttendanceListRequest) ([]models.AttendanceLog, error)
	Upsert(ctx context.Context, userID string, req dto.UpsertAttendanceRequest) (*models.AttendanceLog, error)
	Delete(ctx context.Context, userID string, req dto.DeleteAttendanceRequest) error
}

// AttendanceHandler manages the attendance ledger.
type AttendanceHandler struct {
	service attendanceService
}

// NewAttendanceHandler constructs the handler.
func NewAttendanceHandler(service attendanceService) *AttendanceHandler {
	return &AttendanceHandler{service: service}
}

// List godoc
// @Summary List attendance logs
// @Tags Attendance
// @Produce json
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param subjectId query string false "Subject filter"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	var req dto.AttendanceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	logs, err := h.service.List(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, logs)
}

// Upsert godoc
// @Summary Record attendance for a session
// @Description Creates or replaces the log for (date, period, subject).
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body dto.UpsertAttendanceRequest true "Attendance payload"
// @Success 200 {object} response.Envelope
// @Router /attendance [put]
func (h *AttendanceHandler) Upsert(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	var req dto.UpsertAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	log, err := h.service.Upsert(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, log)
}

// Delete godoc
// @Summary Remove an attendance log
// @Tags Attendance
// @Param date query string true "Date (YYYY-MM-DD)"
// @Param period query int true "Period"
// @Param subjectId query string true "Subject"
// @Success 204
// @Router /attendance [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	var req dto.DeleteAttendanceRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query"))
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
