package dto

// UpsertAttendanceRequest records or replaces the log for one session.
type UpsertAttendanceRequest struct {
	Date      string  `json:"date" validate:"required,datetime=2006-01-02"`
	Period    int     `json:"period" validate:"min=1,max=7"`
	SubjectID string  `json:"subject_id" validate:"required,max=120"`
	Status    string  `json:"status" validate:"required,attendance_status"`
	Note      *string `json:"note,omitempty" validate:"omitempty,max=500"`
}

// DeleteAttendanceRequest identifies the log to drop. The session reverts to present.
type DeleteAttendanceRequest struct {
	Date      string `form:"date" validate:"required,datetime=2006-01-02"`
	Period    int    `form:"period" validate:"min=1,max=7"`
	SubjectID string `form:"subjectId" validate:"required"`
}

// AttendanceListRequest captures GET /attendance filters.
type AttendanceListRequest struct {
	From      string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To        string `form:"to" validate:"omitempty,datetime=2006-01-02"`
	SubjectID string `form:"subjectId"`
}
