package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-api/internal/attendance"
	"github.com/noah-isme/attendance-api/internal/dto"
	"github.com/noah-isme/attendance-api/internal/middleware"
	"github.com/noah-isme/attendance-api/internal/models"
	"github.com/noah-isme/attendance-api/internal/service"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
	"github.com/noah-isme/attendance-api/pkg/response"
)

type statsService interface {
	Stats(ctx context.Context, userID string, asOf time.Time) (*service.StatsResult, error)
	SafeMargins(ctx context.Context, userID string, asOf time.Time) ([]attendance.SafeMargin, error)
	SafeMargin(ctx context.Context, userID string, subjectID models.SubjectID, asOf time.Time) (*attendance.SafeMargin, error)
	ODHours(ctx context.Context, userID string) (*attendance.ODUsage, error)
	Sessions(ctx context.Context, userID string, start, end time.Time, subjectID models.SubjectID) ([]attendance.SessionStatus, error)
	SimulateLeave(ctx context.Context, userID string, req attendance.LeaveRequest, asOf time.Time) (*attendance.Simulation, error)
	Today() time.Time
}

// StatsHandler exposes read-only attendance calculations.
type StatsHandler struct {
	service statsService
}

// NewStatsHandler constructs the handler.
func NewStatsHandler(service statsService) *StatsHandler {
	return &StatsHandler{service: service}
}

func (h *StatsHandler) asOf(c *gin.Context) (time.Time, error) {
	return parseDate("asOf", pickQuery(c, "asOf", "as_of"), h.service.Today())
}

// Stats godoc
// @Summary Attendance statistics
// @Description Per-subject and overall attendance from the semester start through asOf.
// @Tags Stats
// @Produce json
// @Param asOf query string false "Evaluation date (YYYY-MM-DD), defaults to today"
// @Success 200 {object} response.Envelope
// @Failure 422 {object} response.Envelope
// @Router /stats [get]
func (h *StatsHandler) Stats(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	asOf, err := h.asOf(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	result, err := h.service.Stats(c.Request.Context(), userID, asOf)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, result.Cached)
	middleware.SetMeta(c, middleware.MetaAsOf, attendance.FormatDate(asOf))
	response.OK(c, result, middleware.ExtractMeta(c))
}

// Margins godoc
// @Summary Safe-skip margins for every subject
// @Tags Stats
// @Produce json
// @Param asOf query string false "Evaluation date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /stats/margins [get]
func (h *StatsHandler) Margins(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	asOf, err := h.asOf(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	margins, err := h.service.SafeMargins(c.Request.Context(), userID, asOf)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetMeta(c, middleware.MetaAsOf, attendance.FormatDate(asOf))
	response.OK(c, margins, middleware.ExtractMeta(c))
}

// SubjectMargin godoc
// @Summary Safe-skip margin for one subject
// @Tags Stats
// @Produce json
// @Param subjectId path string true "Subject code or name"
// @Param asOf query string false "Evaluation date (YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /stats/subjects/{subjectId}/margin [get]
func (h *StatsHandler) SubjectMargin(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	asOf, err := h.asOf(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	margin, err := h.service.SafeMargin(c.Request.Context(), userID, models.SubjectID(c.Param("subjectId")), asOf)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, margin)
}

// ODHours godoc
// @Summary On-duty hours used against the semester cap
// @Tags Stats
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats/od-hours [get]
func (h *StatsHandler) ODHours(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	usage, err := h.service.ODHours(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, usage, map[string]interface{}{"exceeded": usage.Exceeded()})
}

// Sessions godoc
// @Summary Sessions in a date range with their effective status
// @Tags Stats
// @Produce json
// @Param start query string true "Start date (YYYY-MM-DD)"
// @Param end query string true "End date (YYYY-MM-DD)"
// @Param subjectId query string false "Restrict to one subject"
// @Success 200 {object} response.Envelope
// @Router /sessions [get]
func (h *StatsHandler) Sessions(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	var req dto.SessionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid query"))
		return
	}
	if req.Start == "" || req.End == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "start and end are required"))
		return
	}
	start, err := parseDate("start", req.Start, time.Time{})
	if err != nil {
		response.Error(c, err)
		return
	}
	end, err := parseDate("end", req.End, time.Time{})
	if err != nil {
		response.Error(c, err)
		return
	}
	sessions, err := h.service.Sessions(c.Request.Context(), userID, start, end, models.SubjectID(req.SubjectID))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sessions)
}

// SimulateLeave godoc
// @Summary Preview the effect of taking leave
// @Description Marks every unlogged session in the range as leave and recomputes stats without saving anything.
// @Tags Stats
// @Accept json
// @Produce json
// @Param payload body dto.LeaveSimulationRequest true "Leave range"
// @Success 200 {object} response.Envelope
// @Router /simulations/leave [post]
func (h *StatsHandler) SimulateLeave(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	var req dto.LeaveSimulationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	if req.Start == "" || req.End == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "start and end are required"))
		return
	}
	start, err := parseDate("start", req.Start, time.Time{})
	if err != nil {
		response.Error(c, err)
		return
	}
	end, err := parseDate("end", req.End, time.Time{})
	if err != nil {
		response.Error(c, err)
		return
	}
	asOf, err := parseDate("as_of", req.AsOf, h.service.Today())
	if err != nil {
		response.Error(c, err)
		return
	}
	leave := attendance.LeaveRequest{Start: start, End: end}
	for _, id := range req.SubjectIDs {
		leave.SubjectIDs = append(leave.SubjectIDs, models.SubjectID(id))
	}
	sim, err := h.service.SimulateLeave(c.Request.Context(), userID, leave, asOf)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, sim)
}
