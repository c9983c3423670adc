package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-api/internal/models"
)

func TestSemesterRepositorySaveReplacesExamPeriods(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSemesterRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("(?s)INSERT INTO semester_configs .* ON CONFLICT \\(user_id\\) DO UPDATE").
		WithArgs("u1", day(2024, 1, 1), day(2024, 3, 31), day(2024, 3, 15), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM exam_periods WHERE user_id = ?")).
		WithArgs("u1").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("INSERT INTO exam_periods").
		WithArgs(sqlmock.AnyArg(), "u1", "CAT 1", day(2024, 2, 12), day(2024, 2, 17)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	cfg := &models.SemesterConfig{
		UserID:              "u1",
		StartDate:           day(2024, 1, 1),
		EndDate:             day(2024, 3, 31),
		LastInstructionDate: day(2024, 3, 15),
		ExamPeriods:         []models.ExamPeriod{{Name: "CAT 1", StartDate: day(2024, 2, 12), EndDate: day(2024, 2, 17)}},
	}
	require.NoError(t, repo.Save(context.Background(), cfg))
	assert.NotEmpty(t, cfg.ExamPeriods[0].ID)
	assert.Equal(t, "u1", cfg.ExamPeriods[0].UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSemesterRepositoryGetMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSemesterRepository(db)

	mock.ExpectQuery("FROM semester_configs").WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "start_date", "end_date", "last_instruction_date", "updated_at"}))

	_, err := repo.Get(context.Background(), "u1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
