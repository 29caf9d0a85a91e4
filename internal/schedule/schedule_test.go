package schedule

import (
	"testing"
	"time"

	"github.com/avivros/maagan/internal/domain"
	"github.com/avivros/maagan/internal/model"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"08:00", 480, false},
		{"20:00", 1200, false},
		{"00:00", 0, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"10:60", 0, true},
		{"ten", 0, true},
		{"", 0, true},
	}
	for _, tc := range cases {
		got, err := ParseClock(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("ParseClock(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestCheckWindow(t *testing.T) {
	sunday := time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)
	friday := time.Date(2026, 9, 11, 0, 0, 0, 0, time.UTC)

	if err := CheckWindow(sunday, "08:00", "20:00"); err != nil {
		t.Errorf("full working window should pass: %v", err)
	}
	if err := CheckWindow(friday, "10:00", "11:00"); err == nil {
		t.Error("friday should be rejected")
	}
	if err := CheckWindow(sunday, "07:59", "09:00"); err == nil {
		t.Error("start before 08:00 should be rejected")
	}
	if err := CheckWindow(sunday, "19:00", "20:01"); err == nil {
		t.Error("end after 20:00 should be rejected")
	}

	err := CheckWindow(sunday, "11:00", "10:00")
	ve, ok := domain.AsValidation(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	found := false
	for _, fe := range ve.Fields() {
		if fe.Field == "end_time" {
			found = true
		}
	}
	if !found {
		t.Error("inverted times should fail on end_time")
	}
}

func TestDisplayStatus(t *testing.T) {
	today := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)

	past := &model.Treatment{
		Status:        model.StatusScheduled,
		ScheduledDate: today.AddDate(0, 0, -2),
	}
	if got := DisplayStatus(past, today); got != model.StatusPendingSummary {
		t.Errorf("past scheduled without summary = %q, want pending_summary", got)
	}

	past.Summary = "done"
	if got := DisplayStatus(past, today); got != model.StatusScheduled {
		t.Errorf("past scheduled with summary = %q, want scheduled", got)
	}

	future := &model.Treatment{
		Status:        model.StatusScheduled,
		ScheduledDate: today.AddDate(0, 0, 2),
	}
	if got := DisplayStatus(future, today); got != model.StatusScheduled {
		t.Errorf("future scheduled = %q, want scheduled", got)
	}

	completed := &model.Treatment{
		Status:        model.StatusCompleted,
		ScheduledDate: today.AddDate(0, 0, -2),
	}
	if got := DisplayStatus(completed, today); got != model.StatusCompleted {
		t.Errorf("completed = %q, want completed", got)
	}

	// Same day is not past due.
	sameDay := &model.Treatment{
		Status:        model.StatusScheduled,
		ScheduledDate: time.Date(2026, 9, 10, 9, 0, 0, 0, time.UTC),
	}
	if got := DisplayStatus(sameDay, today); got != model.StatusScheduled {
		t.Errorf("same-day scheduled = %q, want scheduled", got)
	}
}
