package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-api/internal/models"
)

const logColumns = `id, user_id, date, period, subject_id, status, note, created_at, updated_at`

// AttendanceLogRepository persists explicit attendance overrides.
type AttendanceLogRepository struct {
	db *sqlx.DB
}

// NewAttendanceLogRepository constructs the repository.
func NewAttendanceLogRepository(db *sqlx.DB) *AttendanceLogRepository {
	return &AttendanceLogRepository{db: db}
}

// List returns logs matching filter ordered by date and period.
func (r *AttendanceLogRepository) List(ctx context.Context, filter models.AttendanceLogFilter) ([]models.AttendanceLog, error) {
	return listLogs(ctx, r.db, filter)
}

func listLogs(ctx context.Context, q sqlx.ExtContext, filter models.AttendanceLogFilter) ([]models.AttendanceLog, error) {
	conditions := []string{"user_id = ?"}
	args := []interface{}{filter.UserID}
	if filter.DateFrom != nil {
		conditions = append(conditions, "date >= ?")
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, "date <= ?")
		args = append(args, *filter.DateTo)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, "subject_id = ?")
		args = append(args, string(filter.SubjectID))
	}

	query := fmt.Sprintf("SELECT %s FROM attendance_logs WHERE %s ORDER BY date, period, subject_id", logColumns, strings.Join(conditions, " AND "))
	logs := make([]models.AttendanceLog, 0)
	if err := selectContext(ctx, q, &logs, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance logs: %w", err)
	}
	return logs, nil
}

// Upsert writes log, replacing any existing log with the same date, period and subject.
func (r *AttendanceLogRepository) Upsert(ctx context.Context, log *models.AttendanceLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	log.CreatedAt = now
	log.UpdatedAt = now

	const query = `INSERT INTO attendance_logs (id, user_id, date, period, subject_id, status, note, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (user_id, date, period, subject_id) DO UPDATE SET status = excluded.status, note = excluded.note, updated_at = excluded.updated_at
RETURNING id, created_at`
	row := r.db.QueryRowxContext(ctx, r.db.Rebind(query),
		log.ID, log.UserID, log.Date, log.Period, string(log.SubjectID), string(log.Status), log.Note, log.CreatedAt, log.UpdatedAt)
	if err := row.Scan(&log.ID, &log.CreatedAt); err != nil {
		return fmt.Errorf("upsert attendance log: %w", err)
	}
	return nil
}

// Delete removes the log for one session so it reverts to present.
func (r *AttendanceLogRepository) Delete(ctx context.Context, userID string, date time.Time, period int, subjectID models.SubjectID) error {
	affected, err := execContext(ctx, r.db, `DELETE FROM attendance_logs WHERE user_id = ? AND date = ? AND period = ? AND subject_id = ?`, userID, date, period, string(subjectID))
	if err != nil {
		return fmt.Errorf("delete attendance log: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
