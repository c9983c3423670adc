package dto

// CreateSubjectRequest registers a subject. Code, when present, becomes the
// identifier used by timetable slots and logs.
type CreateSubjectRequest struct {
	Code           *string `json:"code,omitempty" validate:"omitempty,max=32"`
	Name           string  `json:"name" validate:"required,max=120"`
	Credits        float64 `json:"credits" validate:"credits"`
	ZeroCreditType *string `json:"zero_credit_type,omitempty" validate:"omitempty,zero_credit_type"`
}
