package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-api/internal/models"
)

const subjectColumns = `id, user_id, code, name, credits, zero_credit_type, created_at, updated_at`

// SubjectRepository handles persistence for subjects.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository creates a new repository instance.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns the user's subjects in creation order.
func (r *SubjectRepository) List(ctx context.Context, userID string) ([]models.Subject, error) {
	return listSubjects(ctx, r.db, userID)
}

func listSubjects(ctx context.Context, q sqlx.ExtContext, userID string) ([]models.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE user_id = ? ORDER BY created_at, name`
	subjects := make([]models.Subject, 0)
	if err := selectContext(ctx, q, &subjects, query, userID); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return subjects, nil
}

// FindByID returns a subject by id.
func (r *SubjectRepository) FindByID(ctx context.Context, userID, id string) (*models.Subject, error) {
	query := `SELECT ` + subjectColumns + ` FROM subjects WHERE user_id = ? AND id = ?`
	var subject models.Subject
	if err := getContext(ctx, r.db, &subject, query, userID, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// ExistsByKey reports whether a subject already uses key as its code-or-name identity.
func (r *SubjectRepository) ExistsByKey(ctx context.Context, userID string, key models.SubjectID) (bool, error) {
	const query = `SELECT COUNT(*) FROM subjects WHERE user_id = ? AND COALESCE(NULLIF(code, ''), name) = ?`
	var count int
	if err := getContext(ctx, r.db, &count, query, userID, string(key)); err != nil {
		return false, fmt.Errorf("check subject key: %w", err)
	}
	return count > 0, nil
}

// Create persists a new subject.
func (r *SubjectRepository) Create(ctx context.Context, subject *models.Subject) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = now
	}
	subject.UpdatedAt = now

	const query = `INSERT INTO subjects (id, user_id, code, name, credits, zero_credit_type, created_at, updated_at) VALUES (:id, :user_id, :code, :name, :credits, :zero_credit_type, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}
	return nil
}

// Delete removes a subject together with the slots and logs keyed by it.
func (r *SubjectRepository) Delete(ctx context.Context, userID string, subject *models.Subject) error {
	return withTx(ctx, r.db, nil, func(tx *sqlx.Tx) error {
		key := string(subject.Key())
		if _, err := execContext(ctx, tx, `DELETE FROM timetable_slots WHERE user_id = ? AND subject_id = ?`, userID, key); err != nil {
			return fmt.Errorf("delete subject slots: %w", err)
		}
		if _, err := execContext(ctx, tx, `DELETE FROM attendance_logs WHERE user_id = ? AND subject_id = ?`, userID, key); err != nil {
			return fmt.Errorf("delete subject logs: %w", err)
		}
		affected, err := execContext(ctx, tx, `DELETE FROM subjects WHERE user_id = ? AND id = ?`, userID, subject.ID)
		if err != nil {
			return fmt.Errorf("delete subject: %w", err)
		}
		if affected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
