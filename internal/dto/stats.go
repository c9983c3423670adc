package dto

// LeaveSimulationRequest captures POST /simulations/leave.
type LeaveSimulationRequest struct {
	Start      string   `json:"start" validate:"required,datetime=2006-01-02"`
	End        string   `json:"end" validate:"required,datetime=2006-01-02"`
	SubjectIDs []string `json:"subject_ids,omitempty"`
	AsOf       string   `json:"as_of,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// SessionsRequest captures GET /sessions.
type SessionsRequest struct {
	Start     string `form:"start" validate:"required,datetime=2006-01-02"`
	End       string `form:"end" validate:"required,datetime=2006-01-02"`
	SubjectID string `form:"subjectId"`
}
