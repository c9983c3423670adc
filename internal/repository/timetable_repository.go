package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-api/internal/models"
)

const slotColumns = `id, user_id, day_of_week, period, subject_id, start_time, end_time, duration_hours, created_at`

// TimetableRepository persists weekly timetable slots.
type TimetableRepository struct {
	db *sqlx.DB
}

// NewTimetableRepository constructs the repository.
func NewTimetableRepository(db *sqlx.DB) *TimetableRepository {
	return &TimetableRepository{db: db}
}

// List returns the user's slots ordered by insertion so overlap resolution stays stable.
func (r *TimetableRepository) List(ctx context.Context, userID string) ([]models.TimetableSlot, error) {
	return listSlots(ctx, r.db, userID)
}

func listSlots(ctx context.Context, q sqlx.ExtContext, userID string) ([]models.TimetableSlot, error) {
	query := `SELECT ` + slotColumns + ` FROM timetable_slots WHERE user_id = ? ORDER BY created_at, id`
	slots := make([]models.TimetableSlot, 0)
	if err := selectContext(ctx, q, &slots, query, userID); err != nil {
		return nil, fmt.Errorf("list timetable slots: %w", err)
	}
	return slots, nil
}

// CreateMany inserts the slots of one placement atomically.
func (r *TimetableRepository) CreateMany(ctx context.Context, slots []models.TimetableSlot) error {
	now := time.Now().UTC()
	return withTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		const query = `INSERT INTO timetable_slots (id, user_id, day_of_week, period, subject_id, start_time, end_time, duration_hours, created_at) VALUES (:id, :user_id, :day_of_week, :period, :subject_id, :start_time, :end_time, :duration_hours, :created_at)`
		for i := range slots {
			if slots[i].ID == "" {
				slots[i].ID = uuid.NewString()
			}
			if slots[i].CreatedAt.IsZero() {
				slots[i].CreatedAt = now
			}
			if _, err := sqlx.NamedExecContext(ctx, tx, query, slots[i]); err != nil {
				return fmt.Errorf("create timetable slot: %w", err)
			}
		}
		return nil
	})
}

// Delete removes one slot.
func (r *TimetableRepository) Delete(ctx context.Context, userID, id string) error {
	affected, err := execContext(ctx, r.db, `DELETE FROM timetable_slots WHERE user_id = ? AND id = ?`, userID, id)
	if err != nil {
		return fmt.Errorf("delete timetable slot: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
