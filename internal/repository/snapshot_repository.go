package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/attendance-api/internal/models"
)

// SnapshotRepository reads every calculation input in one consistent transaction.
type SnapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository constructs the repository.
func NewSnapshotRepository(db *sqlx.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// Load returns the user's snapshot. A missing semester configuration leaves
// Semester zero-valued.
func (r *SnapshotRepository) Load(ctx context.Context, userID string) (*models.Snapshot, error) {
	snapshot := &models.Snapshot{}
	err := withTx(ctx, r.db, r.txOptions(), func(tx *sqlx.Tx) error {
		var err error
		if snapshot.Subjects, err = listSubjects(ctx, tx, userID); err != nil {
			return err
		}
		if snapshot.Timetable, err = listSlots(ctx, tx, userID); err != nil {
			return err
		}
		if snapshot.Attendance, err = listLogs(ctx, tx, models.AttendanceLogFilter{UserID: userID}); err != nil {
			return err
		}
		if snapshot.Holidays, err = listHolidays(ctx, tx, userID); err != nil {
			return err
		}
		semester, err := getSemester(ctx, tx, userID)
		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return err
		default:
			snapshot.Semester = *semester
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (r *SnapshotRepository) txOptions() *sql.TxOptions {
	if r.db.DriverName() == "postgres" {
		return &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return &sql.TxOptions{ReadOnly: true}
}
