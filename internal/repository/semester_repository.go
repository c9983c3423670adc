package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-api/internal/models"
)

// SemesterRepository persists the semester configuration and its exam windows.
type SemesterRepository struct {
	db *sqlx.DB
}

// NewSemesterRepository constructs the repository.
func NewSemesterRepository(db *sqlx.DB) *SemesterRepository {
	return &SemesterRepository{db: db}
}

// Get returns the user's configuration, or ErrNotFound.
func (r *SemesterRepository) Get(ctx context.Context, userID string) (*models.SemesterConfig, error) {
	return getSemester(ctx, r.db, userID)
}

func getSemester(ctx context.Context, q sqlx.ExtContext, userID string) (*models.SemesterConfig, error) {
	const query = `SELECT user_id, start_date, end_date, last_instruction_date, updated_at FROM semester_configs WHERE user_id = ?`
	var cfg models.SemesterConfig
	if err := getContext(ctx, q, &cfg, query, userID); err != nil {
		if isNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get semester config: %w", err)
	}
	periods, err := listExamPeriods(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	cfg.ExamPeriods = periods
	return &cfg, nil
}

// Save replaces the configuration and its exam windows.
func (r *SemesterRepository) Save(ctx context.Context, cfg *models.SemesterConfig) error {
	cfg.UpdatedAt = time.Now().UTC()
	return withTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		const upsert = `INSERT INTO semester_configs (user_id, start_date, end_date, last_instruction_date, updated_at) VALUES (?, ?, ?, ?, ?)
ON CONFLICT (user_id) DO UPDATE SET start_date = excluded.start_date, end_date = excluded.end_date, last_instruction_date = excluded.last_instruction_date, updated_at = excluded.updated_at`
		if _, err := execContext(ctx, tx, upsert, cfg.UserID, cfg.StartDate, cfg.EndDate, cfg.LastInstructionDate, cfg.UpdatedAt); err != nil {
			return fmt.Errorf("upsert semester config: %w", err)
		}
		if _, err := execContext(ctx, tx, `DELETE FROM exam_periods WHERE user_id = ?`, cfg.UserID); err != nil {
			return fmt.Errorf("clear exam periods: %w", err)
		}
		const insert = `INSERT INTO exam_periods (id, user_id, name, start_date, end_date) VALUES (?, ?, ?, ?, ?)`
		for i := range cfg.ExamPeriods {
			p := &cfg.ExamPeriods[i]
			if p.ID == "" {
				p.ID = uuid.NewString()
			}
			p.UserID = cfg.UserID
			if _, err := execContext(ctx, tx, insert, p.ID, p.UserID, p.Name, p.StartDate, p.EndDate); err != nil {
				return fmt.Errorf("insert exam period: %w", err)
			}
		}
		return nil
	})
}
