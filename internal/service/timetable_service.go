package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/attendance"
	"github.com/noah-isme/attendance-api/internal/dto"
	"github.com/noah-isme/attendance-api/internal/models"
	"github.com/noah-isme/attendance-api/internal/repository"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

type timetableRepository interface {
	List(ctx context.Context, userID string) ([]models.TimetableSlot, error)
	CreateMany(ctx context.Context, slots []models.TimetableSlot) error
	Delete(ctx context.Context, userID, id string) error
}

// TimetableService edits the weekly grid.
type TimetableService struct {
	repo      timetableRepository
	subjects  subjectKeyChecker
	stats     statsInvalidation
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService constructs the service.
func NewTimetableService(repo timetableRepository, subjects subjectKeyChecker, stats statsInvalidation, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if stats == nil {
		stats = noopInvalidation{}
	}
	svc := &TimetableService{repo: repo, subjects: subjects, stats: stats, validator: validate, logger: logger}
	svc.validator.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		_, err := attendance.ParseWeekday(fl.Field().String())
		return err == nil
	})
	return svc
}

// List returns every slot of the user.
func (s *TimetableService) List(ctx context.Context, userID string) ([]models.TimetableSlot, error) {
	slots, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable")
	}
	return slots, nil
}

// Place puts a subject on the grid starting at the requested period. The
// placement fails as a whole when it runs past the last period or touches an
// occupied slot.
func (s *TimetableService) Place(ctx context.Context, userID string, req dto.PlaceSubjectRequest) ([]models.TimetableSlot, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid timetable payload")
	}
	weekday, _ := attendance.ParseWeekday(req.DayOfWeek)
	if weekday == time.Sunday {
		return nil, appErrors.Clone(appErrors.ErrValidation, "sunday has no instruction")
	}
	day := weekday.String()
	kind := models.SlotKind(strings.ToLower(req.Kind))
	if kind == "" {
		kind = models.SlotKindTheory
	}
	span := kind.Span()
	last := req.StartPeriod + span - 1
	if last > models.LastPeriod {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s placement needs periods %d-%d but the day ends at period %d", kind, req.StartPeriod, last, models.LastPeriod))
	}

	subjectID := models.SubjectID(req.SubjectID)
	exists, err := s.subjects.ExistsByKey(ctx, userID, subjectID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
	}

	existing, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list timetable")
	}
	if conflicts := findConflicts(existing, day, req.StartPeriod, last); len(conflicts) > 0 {
		conflictErr := &models.SlotConflictError{Message: "timetable slot already occupied", Conflicts: conflicts}
		return nil, appErrors.Wrap(conflictErr, appErrors.ErrConflict.Code, appErrors.ErrConflict.Status, conflictErr.Message)
	}

	hours := splitHours(req.DurationHours, span)
	slots := make([]models.TimetableSlot, 0, span)
	for i, period := 0, req.StartPeriod; period <= last; i, period = i+1, period+1 {
		grid := models.PeriodGrid[period-1]
		slots = append(slots, models.TimetableSlot{
			UserID:        userID,
			DayOfWeek:     day,
			Period:        period,
			SubjectID:     subjectID,
			StartTime:     grid.Start,
			EndTime:       grid.End,
			DurationHours: hours[i],
		})
	}
	if err := s.repo.CreateMany(ctx, slots); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save timetable")
	}
	s.stats.Invalidate(ctx, userID)
	return slots, nil
}

// Delete removes one slot.
func (s *TimetableService) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "timetable slot not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete timetable slot")
	}
	s.stats.Invalidate(ctx, userID)
	return nil
}

// splitHours spreads a placement's duration over its periods in hundredths of
// an hour. The last period takes the rounding remainder so the parts sum to
// the requested total.
func splitHours(total *float64, span int) []*float64 {
	out := make([]*float64, span)
	if total == nil {
		return out
	}
	whole := decimal.NewFromFloat(*total)
	part := whole.DivRound(decimal.NewFromInt(int64(span)), 2)
	for i := range out {
		v := part
		if i == span-1 {
			v = whole.Sub(part.Mul(decimal.NewFromInt(int64(span - 1))))
		}
		f := v.InexactFloat64()
		out[i] = &f
	}
	return out
}

func findConflicts(existing []models.TimetableSlot, day string, first, last int) []models.SlotConflict {
	var conflicts []models.SlotConflict
	for _, slot := range existing {
		wd, err := attendance.ParseWeekday(slot.DayOfWeek)
		if err != nil || wd.String() != day {
			continue
		}
		if slot.Period >= first && slot.Period <= last {
			conflicts = append(conflicts, models.SlotConflict{
				SlotID:    slot.ID,
				DayOfWeek: slot.DayOfWeek,
				Period:    slot.Period,
				SubjectID: slot.SubjectID,
			})
		}
	}
	return conflicts
}
