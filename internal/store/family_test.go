package store

import (
	"testing"
	"time"

	"github.com/avivros/maagan/internal/model"
)

func TestFamilyCreateAndGet(t *testing.T) {
	db := openTestDB(t)
	s := NewFamilyStore(db)

	f := createTestFamily(t, db, "Cohen", nil)
	if f.ID == 0 {
		t.Fatal("expected non-zero id")
	}
	if f.FamilyStatus != model.FamilyMarried {
		t.Errorf("status = %q, want married", f.FamilyStatus)
	}
	if f.TherapistID != nil {
		t.Errorf("therapist_id should be nil, got %v", *f.TherapistID)
	}

	got, err := s.GetByID(f.ID)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got.Name != "Cohen" {
		t.Errorf("name = %q, want Cohen", got.Name)
	}
}

func TestFamilyGetByIDNotFound(t *testing.T) {
	db := openTestDB(t)
	s := NewFamilyStore(db)

	got, err := s.GetByID(999)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent family")
	}
}

func TestFamilyListForTherapist(t *testing.T) {
	db := openTestDB(t)
	s := NewFamilyStore(db)

	tp := createTestTherapist(t, db, "t1@example.com")
	other := createTestTherapist(t, db, "t2@example.com")

	assigned := createTestFamily(t, db, "Assigned", &tp.ID)
	createTestFamily(t, db, "Other", &other.ID)
	viaChild := createTestFamily(t, db, "ViaChild", nil)
	createTestChild(t, db, viaChild.ID, "Noa", &tp.ID)
	createTestFamily(t, db, "Unassigned", nil)

	families, err := s.ListForTherapist(tp.ID)
	if err != nil {
		t.Fatalf("list for therapist: %v", err)
	}
	if len(families) != 2 {
		t.Fatalf("got %d families, want 2", len(families))
	}
	names := map[string]bool{}
	for _, f := range families {
		names[f.Name] = true
	}
	if !names["Assigned"] || !names["ViaChild"] {
		t.Errorf("wrong families visible: %v", names)
	}

	visible, err := s.VisibleToTherapist(assigned.ID, tp.ID)
	if err != nil {
		t.Fatalf("visible: %v", err)
	}
	if !visible {
		t.Error("assigned family should be visible")
	}
	visible, err = s.VisibleToTherapist(assigned.ID, other.ID)
	if err != nil {
		t.Fatalf("visible: %v", err)
	}
	if visible {
		t.Error("family should not be visible to other therapist")
	}
}

func TestFamilySetConsentFormAndWaiver(t *testing.T) {
	db := openTestDB(t)
	s := NewFamilyStore(db)

	f := createTestFamily(t, db, "Cohen", nil)
	when := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)

	if err := s.SetConsentForm(f.ID, "consent_forms/abc/form.pdf", when); err != nil {
		t.Fatalf("set consent form: %v", err)
	}
	if err := s.SetWaiver(f.ID, "confidentiality_waivers/def/waiver.pdf", when); err != nil {
		t.Fatalf("set waiver: %v", err)
	}

	got, err := s.GetByID(f.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ConsentFormKey != "consent_forms/abc/form.pdf" {
		t.Errorf("consent key = %q", got.ConsentFormKey)
	}
	if got.ConsentFormDate == nil || !got.ConsentFormDate.Equal(when) {
		t.Errorf("consent date = %v, want %v", got.ConsentFormDate, when)
	}
	if got.WaiverKey != "confidentiality_waivers/def/waiver.pdf" {
		t.Errorf("waiver key = %q", got.WaiverKey)
	}
}

func TestFamilyDeleteCascades(t *testing.T) {
	db := openTestDB(t)
	families := NewFamilyStore(db)
	children := NewChildStore(db)
	treatments := NewTreatmentStore(db)
	documents := NewDocumentStore(db)

	f := createTestFamily(t, db, "Cohen", nil)
	c := createTestChild(t, db, f.ID, "Noa", nil)

	tr, err := treatments.Create(&model.Treatment{
		ChildID:       &c.ID,
		Type:          model.TreatmentIndividual,
		Status:        model.StatusScheduled,
		ScheduledDate: time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC),
		StartTime:     "10:00",
		EndTime:       "11:00",
	})
	if err != nil {
		t.Fatalf("create treatment: %v", err)
	}
	doc, err := documents.Create(&model.Document{
		FamilyID: &f.ID,
		Name:     "intake.pdf",
		Type:     model.DocOther,
		FileKey:  "documents/x/intake.pdf",
	})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}

	if err := families.Delete(f.ID); err != nil {
		t.Fatalf("delete family: %v", err)
	}

	if got, _ := children.GetByID(c.ID); got != nil {
		t.Error("child should be gone after family delete")
	}
	if got, _ := treatments.GetByID(tr.ID); got != nil {
		t.Error("treatment should be gone after family delete")
	}
	if got, _ := documents.GetByID(doc.ID); got != nil {
		t.Error("document should be gone after family delete")
	}
}

func TestFamilyCountAndRecent(t *testing.T) {
	db := openTestDB(t)
	s := NewFamilyStore(db)

	tp := createTestTherapist(t, db, "t1@example.com")
	createTestFamily(t, db, "Mine", &tp.ID)
	createTestFamily(t, db, "NotMine", nil)

	all, err := s.Count(nil)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if all != 2 {
		t.Errorf("count = %d, want 2", all)
	}
	mine, err := s.Count(&tp.ID)
	if err != nil {
		t.Fatalf("count scoped: %v", err)
	}
	if mine != 1 {
		t.Errorf("scoped count = %d, want 1", mine)
	}

	recent, err := s.ListRecent(5, nil)
	if err != nil {
		t.Fatalf("list recent: %v", err)
	}
	if len(recent) != 2 {
		t.Errorf("recent = %d, want 2", len(recent))
	}

	since, err := s.CountCreatedSince(time.Now().Add(-time.Hour), &tp.ID)
	if err != nil {
		t.Fatalf("count created since: %v", err)
	}
	if since != 1 {
		t.Errorf("created since = %d, want 1", since)
	}
}
