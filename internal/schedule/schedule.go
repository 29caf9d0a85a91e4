// Package schedule validates treatment scheduling input and derives
// display status from a treatment's stored state. Window checks are an
// input-boundary pass, applied before the entity invariants; they are not
// storage rules.
package schedule

import (
	"fmt"
	"time"

	"github.com/avivros/maagan/internal/domain"
	"github.com/avivros/maagan/internal/model"
)

// Treatment sessions run Sunday through Thursday, 08:00 to 20:00.
const (
	OpenMinute  = 8 * 60
	CloseMinute = 20 * 60
)

// ParseClock parses an HH:MM string into minutes since midnight.
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("parse clock %q: %w", s, err)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("parse clock %q: out of range", s)
	}
	return h*60 + m, nil
}

// CheckWindow validates a proposed session slot. Violations are reported
// per field; an end time at or before the start time is rejected, never
// silently corrected.
func CheckWindow(date time.Time, startTime, endTime string) error {
	var v domain.Validation

	switch date.Weekday() {
	case time.Friday, time.Saturday:
		v.Fail("scheduled_date", "sessions run Sunday through Thursday")
	}

	start, err := ParseClock(startTime)
	if err != nil {
		v.Fail("start_time", "must be HH:MM")
	} else if start < OpenMinute {
		v.Fail("start_time", "sessions start at 08:00 or later")
	}

	end, err2 := ParseClock(endTime)
	if err2 != nil {
		v.Fail("end_time", "must be HH:MM")
	} else if end > CloseMinute {
		v.Fail("end_time", "sessions end by 20:00")
	}

	if err == nil && err2 == nil && end <= start {
		v.Fail("end_time", "must be after start time")
	}

	return v.Err()
}

// PastDue reports whether a treatment's scheduled date has passed while it
// is still marked scheduled.
func PastDue(t *model.Treatment, today time.Time) bool {
	return t.Status == model.StatusScheduled && startOfDay(t.ScheduledDate).Before(startOfDay(today))
}

// NeedsSummary reports whether a past-due treatment still lacks a summary.
func NeedsSummary(t *model.Treatment, today time.Time) bool {
	return startOfDay(t.ScheduledDate).Before(startOfDay(today)) && t.Summary == ""
}

// DisplayStatus maps a treatment's stored status to its display status:
// a past-due scheduled treatment with no summary shows as pending_summary.
// The stored status is never changed by this derivation.
func DisplayStatus(t *model.Treatment, today time.Time) model.TreatmentStatus {
	if PastDue(t, today) && t.Summary == "" {
		return model.StatusPendingSummary
	}
	return t.Status
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
