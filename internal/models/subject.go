package models

import "time"

// SubjectID identifies a subject across timetable slots and attendance logs.
// It is the subject code when present, otherwise the subject name.
type SubjectID string

// ZeroCreditType marks credit-free activities.
type ZeroCreditType string

const (
	ZeroCreditLibrary ZeroCreditType = "library"
	ZeroCreditSeminar ZeroCreditType = "seminar"
	ZeroCreditVAC     ZeroCreditType = "vac"
)

// Valid returns true when the type is a supported value.
func (t ZeroCreditType) Valid() bool {
	switch t {
	case ZeroCreditLibrary, ZeroCreditSeminar, ZeroCreditVAC:
		return true
	default:
		return false
	}
}

// Informational reports whether subjects of this type are kept out of headline stats.
func (t ZeroCreditType) Informational() bool {
	return t == ZeroCreditLibrary || t == ZeroCreditSeminar
}

// AllowedCredits lists the credit weights a subject may carry.
var AllowedCredits = []float64{0, 1.5, 2, 3, 4}

// Subject represents a course tracked by a student.
type Subject struct {
	ID             string          `db:"id" json:"id" yaml:"-"`
	UserID         string          `db:"user_id" json:"-" yaml:"-"`
	Code           *string         `db:"code" json:"code,omitempty" yaml:"code,omitempty"`
	Name           string          `db:"name" json:"name" yaml:"name"`
	Credits        float64         `db:"credits" json:"credits" yaml:"credits"`
	ZeroCreditType *ZeroCreditType `db:"zero_credit_type" json:"zero_credit_type,omitempty" yaml:"zero_credit_type,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at" yaml:"-"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at" yaml:"-"`
}

// Key returns the identifier used by timetable slots and logs.
func (s Subject) Key() SubjectID {
	if s.Code != nil && *s.Code != "" {
		return SubjectID(*s.Code)
	}
	return SubjectID(s.Name)
}

// Informational reports whether the subject must be excluded from overall stats.
func (s Subject) Informational() bool {
	return s.ZeroCreditType != nil && s.ZeroCreditType.Informational()
}
