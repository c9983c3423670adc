package attendance

// RiskStatus is the three-tier attendance classification.
type RiskStatus string

const (
	StatusSafe    RiskStatus = "safe"
	StatusWarning RiskStatus = "warning"
	StatusDanger  RiskStatus = "danger"
)

// MinimumPercent is the attendance every subject must reach by the last
// instruction date.
const MinimumPercent = 75

// Thresholds are the lower bounds of the safe and warning tiers.
type Thresholds struct {
	Safe    int `json:"safe"`
	Warning int `json:"warning"`
}

// The canonical tables used by every surface.
var (
	SubjectThresholds = Thresholds{Safe: 77, Warning: 75}
	OverallThresholds = Thresholds{Safe: 82, Warning: 80}
)

// Classify maps a rounded percentage to a tier.
func (t Thresholds) Classify(percentage int) RiskStatus {
	switch {
	case percentage >= t.Safe:
		return StatusSafe
	case percentage >= t.Warning:
		return StatusWarning
	default:
		return StatusDanger
	}
}

// Percentage returns round(100*attended/total), rounding halves up, and 0
// when total is 0.
func Percentage(attended, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*attended + total) / (2 * total)
}
