package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/attendance-api/internal/dto"
	"github.com/noah-isme/attendance-api/internal/models"
	"github.com/noah-isme/attendance-api/internal/repository"
	appErrors "github.com/noah-isme/attendance-api/pkg/errors"
)

type attendanceRepoStub struct {
	logs    map[string]models.AttendanceLog
	filter  models.AttendanceLogFilter
	deleted int
}

func newAttendanceRepoStub() *attendanceRepoStub {
	return &attendanceRepoStub{logs: map[string]models.AttendanceLog{}}
}

func logKey(date time.Time, period int, subject models.SubjectID) string {
	return date.Format("2006-01-02") + "|" + strconv.Itoa(period) + "|" + string(subject)
}

func (r *attendanceRepoStub) List(ctx context.Context, filter models.AttendanceLogFilter) ([]models.AttendanceLog, error) {
	r.filter = filter
	out := make([]models.AttendanceLog, 0, len(r.logs))
	for _, l := range r.logs {
		out = append(out, l)
	}
	return out, nil
}

func (r *attendanceRepoStub) Upsert(ctx context.Context, log *models.AttendanceLog) error {
	r.logs[logKey(log.Date, log.Period, log.SubjectID)] = *log
	return nil
}

func (r *attendanceRepoStub) Delete(ctx context.Context, userID string, date time.Time, period int, subjectID models.SubjectID) error {
	key := logKey(date, period, subjectID)
	if _, ok := r.logs[key]; !ok {
		return repository.ErrNotFound
	}
	delete(r.logs, key)
	r.deleted++
	return nil
}

type subjectKeysStub map[models.SubjectID]bool

func (s subjectKeysStub) ExistsByKey(ctx context.Context, userID string, key models.SubjectID) (bool, error) {
	return s[key], nil
}

func newAttendanceFixture() (*AttendanceService, *attendanceRepoStub, *invalidationRecorder) {
	repo := newAttendanceRepoStub()
	inv := &invalidationRecorder{}
	svc := NewAttendanceService(repo, subjectKeysStub{"MA101": true}, inv, validator.New(), zap.NewNop())
	return svc, repo, inv
}

func TestAttendanceServiceUpsert(t *testing.T) {
	svc, repo, inv := newAttendanceFixture()

	log, err := svc.Upsert(context.Background(), "u1", dto.UpsertAttendanceRequest{
		Date: "2024-01-08", Period: 1, SubjectID: "MA101", Status: "OD", Note: strPtr("  symposium  "),
	})
	require.NoError(t, err)
	assert.Equal(t, models.AttendanceStatusOnDuty, log.Status)
	assert.Equal(t, day(2024, 1, 8), log.Date)
	require.NotNil(t, log.Note)
	assert.Equal(t, "symposium", *log.Note)
	assert.Len(t, repo.logs, 1)
	assert.Equal(t, []string{"u1"}, inv.users)

	_, err = svc.Upsert(context.Background(), "u1", dto.UpsertAttendanceRequest{
		Date: "2024-01-08", Period: 1, SubjectID: "MA101", Status: "leave",
	})
	require.NoError(t, err)
	assert.Len(t, repo.logs, 1)
	for _, l := range repo.logs {
		assert.Equal(t, models.AttendanceStatusLeave, l.Status)
	}
}

func TestAttendanceServiceUpsertValidation(t *testing.T) {
	svc, repo, inv := newAttendanceFixture()
	ctx := context.Background()

	cases := []dto.UpsertAttendanceRequest{
		{Date: "2024-01-08", Period: 1, SubjectID: "MA101", Status: "absent"},
		{Date: "08/01/2024", Period: 1, SubjectID: "MA101", Status: "leave"},
		{Date: "2024-01-08", Period: 8, SubjectID: "MA101", Status: "leave"},
		{Date: "2024-01-08", Period: 1, SubjectID: "", Status: "leave"},
	}
	for _, req := range cases {
		_, err := svc.Upsert(ctx, "u1", req)
		assert.ErrorIs(t, err, appErrors.ErrValidation, "%+v", req)
	}

	_, err := svc.Upsert(ctx, "u1", dto.UpsertAttendanceRequest{Date: "2024-01-08", Period: 1, SubjectID: "CH101", Status: "leave"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	assert.Empty(t, repo.logs)
	assert.Empty(t, inv.users)
}

func TestAttendanceServiceDelete(t *testing.T) {
	svc, repo, inv := newAttendanceFixture()
	ctx := context.Background()
	_, err := svc.Upsert(ctx, "u1", dto.UpsertAttendanceRequest{Date: "2024-01-08", Period: 1, SubjectID: "MA101", Status: "leave"})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, "u1", dto.DeleteAttendanceRequest{Date: "2024-01-08", Period: 1, SubjectID: "MA101"}))
	assert.Empty(t, repo.logs)
	assert.Len(t, inv.users, 2)

	err = svc.Delete(ctx, "u1", dto.DeleteAttendanceRequest{Date: "2024-01-08", Period: 1, SubjectID: "MA101"})
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestAttendanceServiceListFilters(t *testing.T) {
	svc, repo, _ := newAttendanceFixture()
	ctx := context.Background()

	_, err := svc.List(ctx, "u1", dto.AttendanceListRequest{From: "2024-01-01", To: "2024-01-31", SubjectID: "MA101"})
	require.NoError(t, err)
	require.NotNil(t, repo.filter.DateFrom)
	require.NotNil(t, repo.filter.DateTo)
	assert.Equal(t, day(2024, 1, 31), *repo.filter.DateTo)
	assert.Equal(t, models.SubjectID("MA101"), repo.filter.SubjectID)

	_, err = svc.List(ctx, "u1", dto.AttendanceListRequest{From: "2024-02-01", To: "2024-01-31"})
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}
