package attendance

import (
	"github.com/shopspring/decimal"

	"github.com/noah-isme/attendance-api/internal/models"
)

// ODHourCap is the advisory semester-wide on-duty allowance in hours.
const ODHourCap = 72

// ODUsage reports on-duty hours consumed against the cap. Remaining goes
// negative once the cap is exceeded; nothing is blocked.
type ODUsage struct {
	Used      decimal.Decimal `json:"used"`
	Remaining decimal.Decimal `json:"remaining"`
	Cap       decimal.Decimal `json:"cap"`
	Sessions  int             `json:"sessions"`
}

// Exceeded reports whether usage is past the cap.
func (u ODUsage) Exceeded() bool {
	return u.Remaining.IsNegative()
}

// ODHours sums the slot duration of every log marked on-duty. A log whose
// weekday and period match no slot counts one hour. The engine passes only
// logs that match an instructional session.
func ODHours(logs []models.AttendanceLog, tt *Timetable) ODUsage {
	limit := decimal.NewFromInt(ODHourCap)
	used := decimal.Zero
	sessions := 0
	for _, log := range logs {
		if log.Status != models.AttendanceStatusOnDuty {
			continue
		}
		hours := 1.0
		if slot, ok := tt.Slot(Day(log.Date).Weekday(), log.Period); ok {
			hours = slot.Hours()
		}
		used = used.Add(decimal.NewFromFloat(hours))
		sessions++
	}
	return ODUsage{
		Used:      used,
		Remaining: limit.Sub(used),
		Cap:       limit,
		Sessions:  sessions,
	}
}
