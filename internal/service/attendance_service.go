package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/attendance"
	"github.com/noah-isme/attendance-api/internal/dto"
	"github.com/noah-isme/attendance-api/internal/models"
	"github.com/noah-isme/attendance-api/internal/repository"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

type attendanceLogRepository interface {
	List(ctx context.Context, filter models.AttendanceLogFilter) ([]models.AttendanceLog, error)
	Upsert(ctx context.Context, log *models.AttendanceLog) error
	Delete(ctx context.Context, userID string, date time.Time, period int, subjectID models.SubjectID) error
}

type subjectKeyChecker interface {
	ExistsByKey(ctx context.Context, userID string, key models.SubjectID) (bool, error)
}

type statsInvalidation interface {
	Invalidate(ctx context.Context, userID string)
}

// AttendanceService records explicit attendance overrides. Sessions without
// a log are treated as present by the calculation engine.
type AttendanceService struct {
	repo      attendanceLogRepository
	subjects  subjectKeyChecker
	stats     statsInvalidation
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs the attendance service.
func NewAttendanceService(repo attendanceLogRepository, subjects subjectKeyChecker, stats statsInvalidation, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if stats == nil {
		stats = noopInvalidation{}
	}
	svc := &AttendanceService{repo: repo, subjects: subjects, stats: stats, validator: validate, logger: logger}
	svc.validator.RegisterValidation("attendance_status", func(fl validator.FieldLevel) bool {
		status := models.AttendanceStatus(strings.ToLower(fl.Field().String()))
		return status.Valid()
	})
	return svc
}

// List returns the user's logs, optionally bounded by date and subject.
func (s *AttendanceService) List(ctx context.Context, userID string, req dto.AttendanceListRequest) ([]models.AttendanceLog, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance filter")
	}
	filter := models.AttendanceLogFilter{UserID: userID, SubjectID: models.SubjectID(req.SubjectID)}
	if req.From != "" {
		from, _ := attendance.ParseDate("from", req.From)
		filter.DateFrom = &from
	}
	if req.To != "" {
		to, _ := attendance.ParseDate("to", req.To)
		filter.DateTo = &to
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "to must not be before from")
	}
	logs, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
	}
	return logs, nil
}

// Upsert stores the log for one session, replacing any previous status.
func (s *AttendanceService) Upsert(ctx context.Context, userID string, req dto.UpsertAttendanceRequest) (*models.AttendanceLog, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	date, err := attendance.ParseDate("date", req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	subjectID := models.SubjectID(req.SubjectID)
	exists, err := s.subjects.ExistsByKey(ctx, userID, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	}

	log := &models.AttendanceLog{
		UserID:    userID,
		Date:      date,
		Period:    req.Period,
		SubjectID: subjectID,
		Status:    models.AttendanceStatus(strings.ToLower(req.Status)),
	}
	if req.Note != nil && strings.TrimSpace(*req.Note) != "" {
		note := strings.TrimSpace(*req.Note)
		log.Note = &note
	}
	if err := s.repo.Upsert(ctx, log); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save attendance")
	}
	s.stats.Invalidate(ctx, userID)
	return log, nil
}

// Delete removes a log so the session counts as present again.
func (s *AttendanceService) Delete(ctx context.Context, userID string, req dto.DeleteAttendanceRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance key")
	}
	date, err := attendance.ParseDate("date", req.Date)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if err := s.repo.Delete(ctx, userID, date, req.Period, models.SubjectID(req.SubjectID)); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "attendance log not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attendance")
	}
	s.stats.Invalidate(ctx, userID)
	return nil
}
