// handlers/attendance_stats.go
package handlers

import (
	"math"
	"time"

	"crmhub/models"
)

// Today statuses reported by the personal attendance view
const (
	statusNotCheckedIn = "Not Checked In"
	statusWorking      = "Working"
	statusPresent      = "Present"
)

const dateLayout = "2006-01-02"

// computeDurationMinutes returns the rounded minute count between check-in
// and check-out, clamped to zero for inverted corrections.
func computeDurationMinutes(checkIn, checkOut time.Time) int {
	minutes := checkOut.Sub(checkIn).Minutes()
	if minutes < 0 {
		return 0
	}
	return int(math.Round(minutes))
}

// todayStatus classifies the given day's record.
func todayStatus(rec *models.Attendance) string {
	switch {
	case rec == nil || rec.CheckIn == nil:
		return statusNotCheckedIn
	case rec.CheckOut == nil:
		return statusWorking
	default:
		return statusPresent
	}
}

// monthlyStats counts completed days in now's month and derives the
// attendance rate. The denominator is calendar days in the month, not
// elapsed or working days; that matches the product's reporting even
// though it understates the rate early in the month.
func monthlyStats(records []models.Attendance, now time.Time) (presentThisMonth int, attendanceRate float64) {
	monthPrefix := now.Format("2006-01")
	for _, rec := range records {
		if rec.CheckIn == nil || rec.CheckOut == nil {
			continue
		}
		if len(rec.Date) >= len(monthPrefix) && rec.Date[:len(monthPrefix)] == monthPrefix {
			presentThisMonth++
		}
	}

	daysInMonth := time.Date(now.Year(), now.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	rate := float64(presentThisMonth) / float64(daysInMonth) * 100
	attendanceRate = math.Round(rate*10) / 10
	return presentThisMonth, attendanceRate
}
