package dto

import "time"

// ReportRequest captures POST /reports/attendance.
type ReportRequest struct {
	Format string `json:"format" validate:"required,oneof=csv pdf"`
	AsOf   string `json:"as_of,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// ReportResponse points at a rendered report.
type ReportResponse struct {
	Format    string    `json:"format"`
	Filename  string    `json:"filename"`
	Token     string    `json:"token"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}
