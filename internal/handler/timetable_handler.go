package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/attendance-api/internal/dto"
	"github.com/noah-isme/attendance-api/internal/models"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
	"github.com/noah-isme/attendance-api/pkg/response"
)

type timetableService interface {
	List(ctx context.Context, userID string) ([]models.TimetableSlot, error)
	Place(ctx context.Context, userID string, req dto.PlaceSubjectRequest) ([]models.TimetableSlot, error)
	Delete(ctx context.Context, userID, id string) error
}

// TimetableHandler manages the weekly grid.
type TimetableHandler struct {
	service timetableService
}

// NewTimetableHandler constructs the handler.
func NewTimetableHandler(service timetableService) *TimetableHandler {
	return &TimetableHandler{service: service}
}

// List godoc
// @Summary List timetable slots
// @Tags Timetable
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /timetable [get]
func (h *TimetableHandler) List(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	slots, err := h.service.List(c.Request.Context(), userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, slots)
}

// Place godoc
// @Summary Place a subject on the timetable
// @Description Lab slots span three consecutive periods and VAC slots two.
// @Tags Timetable
// @Accept json
// @Produce json
// @Param payload body dto.PlaceSubjectRequest true "Placement"
// @Success 201 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /timetable [post]
func (h *TimetableHandler) Place(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	var req dto.PlaceSubjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	slots, err := h.service.Place(c.Request.Context(), userID, req)
	if err != nil {
		var conflictErr *models.SlotConflictError
		if errors.As(err, &conflictErr) {
			response.ErrorWithMeta(c, err, map[string]interface{}{"conflicts": conflictErr.Conflicts})
			return
		}
		response.Error(c, err)
		return
	}
	response.Created(c, slots)
}

// Delete godoc
// @Summary Remove a timetable slot
// @Tags Timetable
// @Param id path string true "Slot ID"
// @Success 204
// @Router /timetable/{id} [delete]
func (h *TimetableHandler) Delete(c *gin.Context) {
	userID, ok := ownerID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), userID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
