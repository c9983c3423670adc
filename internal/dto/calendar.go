package dto

// CreateHolidayRequest adds a non-instructional date.
type CreateHolidayRequest struct {
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Description string `json:"description" validate:"max=200"`
}

// ExamPeriodRequest is one blackout window, inclusive on both ends.
type ExamPeriodRequest struct {
	Name      string `json:"name" validate:"required,max=120"`
	StartDate string `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date" validate:"required,datetime=2006-01-02"`
}

// SemesterRequest replaces the semester configuration.
type SemesterRequest struct {
	StartDate           string              `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate             string              `json:"end_date" validate:"required,datetime=2006-01-02"`
	LastInstructionDate string              `json:"last_instruction_date" validate:"required,datetime=2006-01-02"`
	ExamPeriods         []ExamPeriodRequest `json:"exam_periods" validate:"dive"`
}
