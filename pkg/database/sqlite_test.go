package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteMigrateIsIdempotent(t *testing.T) {
	db, err := NewSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))

	var tables []string
	require.NoError(t, db.Select(&tables, `SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name`))
	assert.Equal(t, []string{"attendance_logs", "exam_periods", "holidays", "semester_configs", "subjects", "timetable_slots"}, tables)
}

func TestSQLiteEnforcesLogKey(t *testing.T) {
	db, err := NewSQLite(":memory:")
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, Migrate(db))

	insert := `INSERT INTO attendance_logs (id, user_id, date, period, subject_id, status) VALUES (?, 'u1', '2024-01-08', 1, 'MA101', 'leave')`
	_, err = db.Exec(insert, "a")
	require.NoError(t, err)
	_, err = db.Exec(insert, "b")
	assert.Error(t, err)
}
