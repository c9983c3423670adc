package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-api/internal/models"
)

// CalendarRepository persists holidays and exam blackout windows.
type CalendarRepository struct {
	db *sqlx.DB
}

// NewCalendarRepository constructs the repository.
func NewCalendarRepository(db *sqlx.DB) *CalendarRepository {
	return &CalendarRepository{db: db}
}

// ListHolidays returns the user's holidays by date.
func (r *CalendarRepository) ListHolidays(ctx context.Context, userID string) ([]models.Holiday, error) {
	return listHolidays(ctx, r.db, userID)
}

func listHolidays(ctx context.Context, q sqlx.ExtContext, userID string) ([]models.Holiday, error) {
	const query = `SELECT id, user_id, date, description, created_at FROM holidays WHERE user_id = ? ORDER BY date`
	holidays := make([]models.Holiday, 0)
	if err := selectContext(ctx, q, &holidays, query, userID); err != nil {
		return nil, fmt.Errorf("list holidays: %w", err)
	}
	return holidays, nil
}

// UpsertHoliday stores a holiday; a second holiday on the same date replaces the description.
func (r *CalendarRepository) UpsertHoliday(ctx context.Context, holiday *models.Holiday) error {
	if holiday.ID == "" {
		holiday.ID = uuid.NewString()
	}
	if holiday.CreatedAt.IsZero() {
		holiday.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO holidays (id, user_id, date, description, created_at) VALUES (?, ?, ?, ?, ?)
ON CONFLICT (user_id, date) DO UPDATE SET description = excluded.description
RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, r.db.Rebind(query), holiday.ID, holiday.UserID, holiday.Date, holiday.Description, holiday.CreatedAt)
	if err := row.Scan(&holiday.ID, &holiday.CreatedAt); err != nil {
		return fmt.Errorf("upsert holiday: %w", err)
	}
	return nil
}

// DeleteHoliday removes a holiday by id.
func (r *CalendarRepository) DeleteHoliday(ctx context.Context, userID, id string) error {
	affected, err := execContext(ctx, r.db, `DELETE FROM holidays WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete holiday: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func listExamPeriods(ctx context.Context, q sqlx.ExtContext, userID string) ([]models.ExamPeriod, error) {
	const query = `SELECT id, user_id, name, start_date, end_date FROM exam_periods WHERE user_id = ? ORDER BY start_date`
	periods := make([]models.ExamPeriod, 0)
	if err := selectContext(ctx, q, &periods, query, userID); err != nil {
		return nil, fmt.Errorf("list exam periods: %w", err)
	}
	return periods, nil
}
