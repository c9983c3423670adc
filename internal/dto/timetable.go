package dto

// PlaceSubjectRequest puts a subject on the weekly grid. Lab placements span
// three consecutive periods and VAC placements two. DurationHours is the
// length of the whole placement and is split across its periods.
type PlaceSubjectRequest struct {
	DayOfWeek     string   `json:"day_of_week" validate:"required,weekday"`
	StartPeriod   int      `json:"start_period" validate:"min=1,max=7"`
	SubjectID     string   `json:"subject_id" validate:"required"`
	Kind          string   `json:"kind,omitempty" validate:"omitempty,oneof=theory lab vac"`
	DurationHours *float64 `json:"duration_hours,omitempty" validate:"omitempty,gt=0,lte=8"`
}
