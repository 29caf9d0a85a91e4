package service

import (
	"errors"
	"testing"
	"time"

	"github.com/avivros/maagan/internal/domain"
	"github.com/avivros/maagan/internal/model"
)

func TestChildInheritsFamilyTherapist(t *testing.T) {
	e := newTestEnv(t)
	tp := e.therapistPrincipal(t, "t@example.com")

	f := validFamily("Cohen")
	f.TherapistID = tp.TherapistID
	family := e.mustCreateFamily(t, f)

	c := e.mustCreateChild(t, &model.Child{FamilyID: family.ID, Name: "Noa"})
	if c.TherapistID == nil || *c.TherapistID != *tp.TherapistID {
		t.Errorf("child therapist = %v, want inherited %d", c.TherapistID, *tp.TherapistID)
	}
}

func TestChildTherapistMismatchRejected(t *testing.T) {
	e := newTestEnv(t)
	tp := e.therapistPrincipal(t, "t1@example.com")
	other := e.therapistPrincipal(t, "t2@example.com")

	f := validFamily("Cohen")
	f.TherapistID = tp.TherapistID
	family := e.mustCreateFamily(t, f)

	_, err := e.children.Create(admin, &model.Child{
		FamilyID:    family.ID,
		Name:        "Noa",
		TherapistID: other.TherapistID,
	})
	fields := fieldNames(t, err)
	if !fields["therapist_id"] {
		t.Errorf("expected therapist_id failure, got %v", fields)
	}
}

func TestChildCreatedByTherapistInUnassignedFamily(t *testing.T) {
	e := newTestEnv(t)
	tp := e.therapistPrincipal(t, "t@example.com")
	family := e.mustCreateFamily(t, validFamily("Unassigned"))

	// An unassigned family is open; the creating therapist takes the child.
	c, err := e.children.Create(tp, &model.Child{
		FamilyID:  family.ID,
		Name:      "Noa",
		BirthDate: time.Date(2019, 1, 10, 0, 0, 0, 0, time.UTC),
		Gender:    model.GenderFemale,
	})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	if c.TherapistID == nil || *c.TherapistID != *tp.TherapistID {
		t.Errorf("child therapist = %v, want creator %d", c.TherapistID, *tp.TherapistID)
	}
}

func TestChildCreatedInAnotherTherapistsFamilyFails(t *testing.T) {
	e := newTestEnv(t)
	tp := e.therapistPrincipal(t, "t1@example.com")
	other := e.therapistPrincipal(t, "t2@example.com")

	f := validFamily("Taken")
	f.TherapistID = other.TherapistID
	family := e.mustCreateFamily(t, f)

	_, err := e.children.Create(tp, &model.Child{FamilyID: family.ID, Name: "Noa"})
	if !errors.Is(err, domain.ErrPermission) {
		t.Errorf("err = %v, want permission denied", err)
	}
}

func TestChildCreatedByTherapistInOwnFamily(t *testing.T) {
	e := newTestEnv(t)
	tp := e.therapistPrincipal(t, "t@example.com")

	f := validFamily("Mine")
	f.TherapistID = tp.TherapistID
	family := e.mustCreateFamily(t, f)

	c, err := e.children.Create(tp, &model.Child{
		FamilyID:  family.ID,
		Name:      "Noa",
		BirthDate: time.Date(2019, 1, 10, 0, 0, 0, 0, time.UTC),
		Gender:    model.GenderFemale,
	})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	if c.TherapistID == nil || *c.TherapistID != *tp.TherapistID {
		t.Errorf("child therapist = %v, want %d", c.TherapistID, *tp.TherapistID)
	}
}

func TestChildValidation(t *testing.T) {
	e := newTestEnv(t)
	family := e.mustCreateFamily(t, validFamily("Cohen"))

	_, err := e.children.Create(admin, &model.Child{FamilyID: family.ID})
	fields := fieldNames(t, err)
	for _, want := range []string{"name", "birth_date", "gender"} {
		if !fields[want] {
			t.Errorf("expected %s failure, got %v", want, fields)
		}
	}

	_, err = e.children.Create(admin, &model.Child{FamilyID: 999, Name: "Ghost"})
	fields = fieldNames(t, err)
	if !fields["family_id"] {
		t.Errorf("expected family_id failure, got %v", fields)
	}
}

func TestChildDeleteAdminOnly(t *testing.T) {
	e := newTestEnv(t)
	tp := e.therapistPrincipal(t, "t@example.com")

	f := validFamily("Mine")
	f.TherapistID = tp.TherapistID
	family := e.mustCreateFamily(t, f)
	c := e.mustCreateChild(t, &model.Child{FamilyID: family.ID, Name: "Noa"})

	if err := e.children.Delete(tp, c.ID); !errors.Is(err, domain.ErrPermission) {
		t.Errorf("therapist delete: err = %v, want permission denied", err)
	}
	if err := e.children.Delete(admin, c.ID); err != nil {
		t.Errorf("admin delete: %v", err)
	}
}
