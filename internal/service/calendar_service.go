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

type holidayRepository interface {
	ListHolidays(ctx context.Context, userID string) ([]models.Holiday, error)
	UpsertHoliday(ctx context.Context, holiday *models.Holiday) error
	DeleteHoliday(ctx context.Context, userID, id string) error
}

type semesterRepository interface {
	Get(ctx context.Context, userID string) (*models.SemesterConfig, error)
	Save(ctx context.Context, cfg *models.SemesterConfig) error
}

// CalendarService manages holidays and the semester configuration.
type CalendarService struct {
	holidays  holidayRepository
	semesters semesterRepository
	stats     statsInvalidation
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCalendarService constructs the service.
func NewCalendarService(holidays holidayRepository, semesters semesterRepository, stats statsInvalidation, validate *validator.Validate, logger *zap.Logger) *CalendarService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if stats == nil {
		stats = noopInvalidation{}
	}
	return &CalendarService{holidays: holidays, semesters: semesters, stats: stats, validator: validate, logger: logger}
}

// ListHolidays returns the user's holidays ordered by date.
func (s *CalendarService) ListHolidays(ctx context.Context, userID string) ([]models.Holiday, error) {
	holidays, err := s.holidays.ListHolidays(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list holidays")
	}
	return holidays, nil
}

// CreateHoliday marks a date as non-instructional. Adding the same date twice
// updates its description.
func (s *CalendarService) CreateHoliday(ctx context.Context, userID string, req dto.CreateHolidayRequest) (*models.Holiday, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid holiday payload")
	}
	date, err := attendance.ParseDate("date", req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	holiday := &models.Holiday{UserID: userID, Date: date, Description: strings.TrimSpace(req.Description)}
	if err := s.holidays.UpsertHoliday(ctx, holiday); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save holiday")
	}
	s.stats.Invalidate(ctx, userID)
	return holiday, nil
}

// DeleteHoliday removes a holiday.
func (s *CalendarService) DeleteHoliday(ctx context.Context, userID, id string) error {
	if err := s.holidays.DeleteHoliday(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "holiday not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete holiday")
	}
	s.stats.Invalidate(ctx, userID)
	return nil
}

// GetSemester returns the semester configuration.
func (s *CalendarService) GetSemester(ctx context.Context, userID string) (*models.SemesterConfig, error) {
	cfg, err := s.semesters.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, appErrors.ErrSemesterNotConfigured
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load semester")
	}
	return cfg, nil
}

// SaveSemester replaces the semester dates and exam windows.
func (s *CalendarService) SaveSemester(ctx context.Context, userID string, req dto.SemesterRequest) (*models.SemesterConfig, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid semester payload")
	}
	cfg := &models.SemesterConfig{UserID: userID}
	var err error
	if cfg.StartDate, err = attendance.ParseDate("start_date", req.StartDate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if cfg.EndDate, err = attendance.ParseDate("end_date", req.EndDate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if cfg.LastInstructionDate, err = attendance.ParseDate("last_instruction_date", req.LastInstructionDate); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	if !ordered(cfg.StartDate, cfg.LastInstructionDate, cfg.EndDate) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "expected start_date <= last_instruction_date <= end_date")
	}

	cfg.ExamPeriods = make([]models.ExamPeriod, 0, len(req.ExamPeriods))
	for _, p := range req.ExamPeriods {
		start, err := attendance.ParseDate("exam_periods.start_date", p.StartDate)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		end, err := attendance.ParseDate("exam_periods.end_date", p.EndDate)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
		}
		if end.Before(start) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "exam period "+p.Name+" ends before it starts")
		}
		cfg.ExamPeriods = append(cfg.ExamPeriods, models.ExamPeriod{Name: strings.TrimSpace(p.Name), StartDate: start, EndDate: end})
	}

	if err := s.semesters.Save(ctx, cfg); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save semester")
	}
	s.stats.Invalidate(ctx, userID)
	return cfg, nil
}

func ordered(dates ...time.Time) bool {
	for i := 1; i < len(dates); i++ {
		if dates[i].Before(dates[i-1]) {
			return false
		}
	}
	return true
}
