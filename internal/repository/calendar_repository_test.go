package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/attendance-api/internal/models"
)

func TestCalendarRepositoryUpsertHoliday(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCalendarRepository(db)
	created := time.Now().UTC()

	mock.ExpectQuery("(?s)INSERT INTO holidays .* ON CONFLICT \\(user_id, date\\) DO UPDATE SET description = excluded.description").
		WithArgs(sqlmock.AnyArg(), "u1", day(2024, 1, 10), "Founders day", sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("h-existing", created))

	holiday := &models.Holiday{UserID: "u1", Date: day(2024, 1, 10), Description: "Founders day"}
	require.NoError(t, repo.UpsertHoliday(context.Background(), holiday))
	assert.Equal(t, "h-existing", holiday.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarRepositoryDeleteHoliday(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewCalendarRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM holidays WHERE user_id = ? AND id = ?")).
		WithArgs("u1", "h1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.DeleteHoliday(context.Background(), "u1", "h1"), ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
