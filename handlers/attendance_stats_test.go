package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"crmhub/models"
)

func ts(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}
	return t
}

func TestComputeDurationMinutes(t *testing.T) {
	in := ts("2026-03-02T09:00:00Z")
	out := ts("2026-03-02T17:30:00Z")
	assert.Equal(t, 510, computeDurationMinutes(in, out))

	// Sub-minute remainders round to the nearest minute
	assert.Equal(t, 31, computeDurationMinutes(in, in.Add(30*time.Minute+40*time.Second)))
	assert.Equal(t, 30, computeDurationMinutes(in, in.Add(30*time.Minute+20*time.Second)))

	// Corrections that invert the stamps clamp to zero
	assert.Equal(t, 0, computeDurationMinutes(out, in))
	assert.Equal(t, 0, computeDurationMinutes(in, in))
}

func TestTodayStatus(t *testing.T) {
	in := ts("2026-03-02T09:00:00Z")
	out := ts("2026-03-02T17:30:00Z")

	assert.Equal(t, "Not Checked In", todayStatus(nil))
	assert.Equal(t, "Not Checked In", todayStatus(&models.Attendance{}))
	assert.Equal(t, "Working", todayStatus(&models.Attendance{CheckIn: &in}))
	assert.Equal(t, "Present", todayStatus(&models.Attendance{CheckIn: &in, CheckOut: &out}))
}

func TestMonthlyStats(t *testing.T) {
	in := ts("2026-03-02T09:00:00Z")
	out := ts("2026-03-02T17:30:00Z")
	now := ts("2026-03-15T12:00:00Z")

	records := []models.Attendance{
		{Date: "2026-03-02", CheckIn: &in, CheckOut: &out},
		{Date: "2026-03-03", CheckIn: &in, CheckOut: &out},
		// Open record is not counted, prior-month record is out of range.
		{Date: "2026-03-04", CheckIn: &in},
		{Date: "2026-02-27", CheckIn: &in, CheckOut: &out},
	}

	present, rate := monthlyStats(records, now)
	assert.Equal(t, 2, present)
	// 2 of 31 calendar days, rounded to one decimal
	assert.InDelta(t, 6.5, rate, 0.001)
}

func TestMonthlyStatsEmpty(t *testing.T) {
	present, rate := monthlyStats(nil, ts("2026-02-10T08:00:00Z"))
	assert.Equal(t, 0, present)
	assert.Equal(t, 0.0, rate)
}

func TestMonthlyStatsFebruaryDenominator(t *testing.T) {
	in := ts("2026-02-02T09:00:00Z")
	out := ts("2026-02-02T17:00:00Z")
	now := ts("2026-02-10T08:00:00Z")

	records := []models.Attendance{
		{Date: "2026-02-02", CheckIn: &in, CheckOut: &out},
	}

	present, rate := monthlyStats(records, now)
	assert.Equal(t, 1, present)
	// 1 of 28 days in February 2026
	assert.InDelta(t, 3.6, rate, 0.001)
}
