package store

import (
	"testing"
	"time"

	"github.com/avivros/maagan/internal/model"
)

func createTestTreatment(t *testing.T, s *TreatmentStore, familyID, childID, therapistID *int64, date time.Time) *model.Treatment {
	t.Helper()
	tr, err := s.Create(&model.Treatment{
		FamilyID:      familyID,
		ChildID:       childID,
		TherapistID:   therapistID,
		Type:          model.TreatmentIndividual,
		Status:        model.StatusScheduled,
		ScheduledDate: date,
		StartTime:     "10:00",
		EndTime:       "11:00",
	})
	if err != nil {
		t.Fatalf("create treatment: %v", err)
	}
	return tr
}

func TestTreatmentCreateRequiresClient(t *testing.T) {
	db := openTestDB(t)
	s := NewTreatmentStore(db)

	_, err := s.Create(&model.Treatment{
		Type:          model.TreatmentIndividual,
		Status:        model.StatusScheduled,
		ScheduledDate: time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC),
		StartTime:     "10:00",
		EndTime:       "11:00",
	})
	if err == nil {
		t.Fatal("expected CHECK constraint failure with no family and no child")
	}
}

func TestTreatmentVisibility(t *testing.T) {
	db := openTestDB(t)
	s := NewTreatmentStore(db)

	tp := createTestTherapist(t, db, "t1@example.com")
	other := createTestTherapist(t, db, "t2@example.com")
	date := time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)

	// Directly assigned to the therapist.
	f1 := createTestFamily(t, db, "Direct", nil)
	direct := createTestTreatment(t, s, &f1.ID, nil, &tp.ID, date)

	// Through the child's therapist.
	f2 := createTestFamily(t, db, "ChildScoped", nil)
	c2 := createTestChild(t, db, f2.ID, "Noa", &tp.ID)
	viaChild := createTestTreatment(t, s, nil, &c2.ID, nil, date)

	// Through the family's therapist, with only a child on the treatment.
	f3 := createTestFamily(t, db, "FamilyScoped", &tp.ID)
	c3 := createTestChild(t, db, f3.ID, "Yoav", nil)
	viaFamily := createTestTreatment(t, s, nil, &c3.ID, nil, date)

	// Out of scope entirely.
	f4 := createTestFamily(t, db, "Foreign", &other.ID)
	foreign := createTestTreatment(t, s, &f4.ID, nil, &other.ID, date)

	got, err := s.ListForTherapist(tp.ID)
	if err != nil {
		t.Fatalf("list for therapist: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d treatments, want 3", len(got))
	}

	for _, id := range []int64{direct.ID, viaChild.ID, viaFamily.ID} {
		visible, err := s.VisibleToTherapist(id, tp.ID)
		if err != nil {
			t.Fatalf("visible: %v", err)
		}
		if !visible {
			t.Errorf("treatment %d should be visible", id)
		}
	}
	visible, err := s.VisibleToTherapist(foreign.ID, tp.ID)
	if err != nil {
		t.Fatalf("visible: %v", err)
	}
	if visible {
		t.Error("foreign treatment should not be visible")
	}
}

func TestTreatmentListByDateRange(t *testing.T) {
	db := openTestDB(t)
	s := NewTreatmentStore(db)

	f := createTestFamily(t, db, "Cohen", nil)
	inRange := createTestTreatment(t, s, &f.ID, nil, nil, time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC))
	createTestTreatment(t, s, &f.ID, nil, nil, time.Date(2026, 9, 14, 0, 0, 0, 0, time.UTC))

	start := time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 5)
	got, err := s.ListByDateRange(start, end, nil)
	if err != nil {
		t.Fatalf("list by date range: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d treatments, want 1", len(got))
	}
	if got[0].ID != inRange.ID {
		t.Errorf("got treatment %d, want %d", got[0].ID, inRange.ID)
	}
}

func TestTreatmentCountUpcoming(t *testing.T) {
	db := openTestDB(t)
	s := NewTreatmentStore(db)

	f := createTestFamily(t, db, "Cohen", nil)
	createTestTreatment(t, s, &f.ID, nil, nil, time.Date(2026, 9, 7, 0, 0, 0, 0, time.UTC))
	past := createTestTreatment(t, s, &f.ID, nil, nil, time.Date(2026, 8, 3, 0, 0, 0, 0, time.UTC))

	// A completed future treatment is not upcoming.
	past.Status = model.StatusCompleted
	past.Summary = "done"
	if _, err := s.Update(past); err != nil {
		t.Fatalf("update: %v", err)
	}

	after := time.Date(2026, 8, 31, 0, 0, 0, 0, time.UTC)
	n, err := s.Count(nil, &after)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("upcoming = %d, want 1", n)
	}
}
