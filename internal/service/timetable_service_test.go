package service

import (
	"context"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/dto"
	"github.com/noah-isme/attendance-api/internal/models"
	"github.com/noah-isme/attendance-api/internal/repository"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

type timetableRepoStub struct {
	slots []models.TimetableSlot
}

func (r *timetableRepoStub) List(ctx context.Context, userID string) ([]models.TimetableSlot, error) {
	return r.slots, nil
}

func (r *timetableRepoStub) CreateMany(ctx context.Context, slots []models.TimetableSlot) error {
	r.slots = append(r.slots, slots...)
	return nil
}

func (r *timetableRepoStub) Delete(ctx context.Context, userID, id string) error {
	for i, s := range r.slots {
		if s.ID == id {
			r.slots = append(r.slots[:i], r.slots[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func newTimetableFixture(existing ...models.TimetableSlot) (*TimetableService, *timetableRepoStub, *invalidationRecorder) {
	repo := &timetableRepoStub{slots: existing}
	inv := &invalidationRecorder{}
	svc := NewTimetableService(repo, subjectKeysStub{"MA101": true, "PH101": true}, inv, validator.New(), zap.NewNop())
	return svc, repo, inv
}

func TestTimetableServicePlaceLabSpansThreePeriods(t *testing.T) {
	svc, repo, inv := newTimetableFixture()

	slots, err := svc.Place(context.Background(), "u1", dto.PlaceSubjectRequest{DayOfWeek: "tue", StartPeriod: 2, SubjectID: "PH101", Kind: "lab"})
	require.NoError(t, err)
	require.Len(t, slots, 3)
	for i, slot := range slots {
		assert.Equal(t, "Tuesday", slot.DayOfWeek)
		assert.Equal(t, 2+i, slot.Period)
		assert.Equal(t, models.SubjectID("PH101"), slot.SubjectID)
	}
	assert.Equal(t, "08:50", slots[0].StartTime)
	assert.Equal(t, "11:30", slots[2].EndTime)
	assert.Len(t, repo.slots, 3)
	assert.Len(t, inv.users, 1)
}

func TestTimetableServicePlaceDefaultsToTheory(t *testing.T) {
	svc, _, _ := newTimetableFixture()

	slots, err := svc.Place(context.Background(), "u1", dto.PlaceSubjectRequest{DayOfWeek: "Saturday", StartPeriod: 7, SubjectID: "MA101"})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "14:20", slots[0].StartTime)
}

func TestTimetableServicePlaceRejectsOverflow(t *testing.T) {
	svc, repo, _ := newTimetableFixture()

	_, err := svc.Place(context.Background(), "u1", dto.PlaceSubjectRequest{DayOfWeek: "Monday", StartPeriod: 6, SubjectID: "PH101", Kind: "lab"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Place(context.Background(), "u1", dto.PlaceSubjectRequest{DayOfWeek: "Monday", StartPeriod: 7, SubjectID: "PH101", Kind: "vac"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Empty(t, repo.slots)
}

func TestTimetableServicePlaceRejectsOverlap(t *testing.T) {
	svc, repo, _ := newTimetableFixture(models.TimetableSlot{ID: "t1", DayOfWeek: "Wednesday", Period: 3, SubjectID: "MA101"})

	_, err := svc.Place(context.Background(), "u1", dto.PlaceSubjectRequest{DayOfWeek: "Wed", StartPeriod: 2, SubjectID: "PH101", Kind: "vac"})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrConflict)

	var conflictErr *models.SlotConflictError
	require.True(t, errors.As(err, &conflictErr))
	require.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, "t1", conflictErr.Conflicts[0].SlotID)
	assert.Len(t, repo.slots, 1)
}

func TestTimetableServicePlaceRejectsInvalidInput(t *testing.T) {
	svc, _, _ := newTimetableFixture()
	ctx := context.Background()

	_, err := svc.Place(ctx, "u1", dto.PlaceSubjectRequest{DayOfWeek: "Funday", StartPeriod: 1, SubjectID: "MA101"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Place(ctx, "u1", dto.PlaceSubjectRequest{DayOfWeek: "Sunday", StartPeriod: 1, SubjectID: "MA101"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = svc.Place(ctx, "u1", dto.PlaceSubjectRequest{DayOfWeek: "Monday", StartPeriod: 1, SubjectID: "CH101"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestTimetableServiceDelete(t *testing.T) {
	svc, repo, inv := newTimetableFixture(models.TimetableSlot{ID: "t1", DayOfWeek: "Monday", Period: 1, SubjectID: "MA101"})

	require.NoError(t, svc.Delete(context.Background(), "u1", "t1"))
	assert.Empty(t, repo.slots)
	assert.Len(t, inv.users, 1)
	assert.ErrorIs(t, svc.Delete(context.Background(), "u1", "t1"), appErrors.ErrNotFound)
}

func TestTimetableServicePlaceSplitsDurationAcrossSpan(t *testing.T) {
	svc, _, _ := newTimetableFixture()
	ctx := context.Background()

	three := 3.0
	slots, err := svc.Place(ctx, "u1", dto.PlaceSubjectRequest{DayOfWeek: "Monday", StartPeriod: 1, SubjectID: "PH101", Kind: "lab", DurationHours: &three})
	require.NoError(t, err)
	require.Len(t, slots, 3)
	for _, slot := range slots {
		require.NotNil(t, slot.DurationHours)
		assert.Equal(t, 1.0, *slot.DurationHours)
	}

	two := 2.0
	slots, err = svc.Place(ctx, "u1", dto.PlaceSubjectRequest{DayOfWeek: "Tuesday", StartPeriod: 1, SubjectID: "MA101", Kind: "lab", DurationHours: &two})
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, 0.67, *slots[0].DurationHours)
	assert.Equal(t, 0.67, *slots[1].DurationHours)
	assert.Equal(t, 0.66, *slots[2].DurationHours)

	slots, err = svc.Place(ctx, "u1", dto.PlaceSubjectRequest{DayOfWeek: "Wednesday", StartPeriod: 1, SubjectID: "MA101", Kind: "vac"})
	require.NoError(t, err)
	for _, slot := range slots {
		assert.Nil(t, slot.DurationHours)
	}
}
