package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/avivros/maagan/internal/domain"
	"github.com/avivros/maagan/internal/model"
)

func TestFamilyCreateAdminOnly(t *testing.T) {
	e := newTestEnv(t)
	tp := e.therapistPrincipal(t, "t@example.com")

	if _, err := e.families.Create(tp, validFamily("Cohen")); !errors.Is(err, domain.ErrPermission) {
		t.Errorf("therapist create: err = %v, want permission denied", err)
	}
	if _, err := e.families.Create(admin, validFamily("Cohen")); err != nil {
		t.Errorf("admin create: %v", err)
	}
}

func TestFamilyDivorcedRequiresBothParents(t *testing.T) {
	e := newTestEnv(t)

	f := &model.Family{
		Name:         "Levi",
		FamilyStatus: model.FamilyDivorced,
		MotherName:   "Dana",
		MotherPhone:  "0502222222",
	}
	_, err := e.families.Create(admin, f)
	fields := fieldNames(t, err)
	if !fields["father_name"] {
		t.Errorf("expected father_name among failed fields, got %v", fields)
	}
	if !fields["father_phone"] {
		t.Errorf("expected father_phone among failed fields, got %v", fields)
	}

	f.FatherName = "Avi"
	f.FatherPhone = "0501111111"
	if _, err := e.families.Create(admin, f); err != nil {
		t.Errorf("complete divorced family should pass: %v", err)
	}
}

func TestFamilySingleParentRequiresOneParent(t *testing.T) {
	e := newTestEnv(t)

	f := &model.Family{Name: "Levi", FamilyStatus: model.FamilySingleParent}
	_, err := e.families.Create(admin, f)
	if _, ok := domain.AsValidation(err); !ok {
		t.Fatalf("expected validation error, got %v", err)
	}

	f.MotherName = "Dana"
	f.MotherPhone = "0502222222"
	if _, err := e.families.Create(admin, f); err != nil {
		t.Errorf("one parent should satisfy single_parent: %v", err)
	}
}

func TestFamilyOtherStatusNeedsNoParents(t *testing.T) {
	e := newTestEnv(t)

	f := &model.Family{Name: "Group Home", FamilyStatus: model.FamilyOther}
	if _, err := e.families.Create(admin, f); err != nil {
		t.Errorf("status other should not require parents: %v", err)
	}
}

func TestFamilyInvalidIDNumbers(t *testing.T) {
	e := newTestEnv(t)

	f := validFamily("Cohen")
	f.FatherID = "12345"
	f.MotherPhone = "123"
	_, err := e.families.Create(admin, f)
	fields := fieldNames(t, err)
	if !fields["father_id"] {
		t.Errorf("expected father_id failure, got %v", fields)
	}
	if !fields["mother_phone"] {
		t.Errorf("expected mother_phone failure, got %v", fields)
	}
}

func TestFamilyListScoping(t *testing.T) {
	e := newTestEnv(t)
	tp := e.therapistPrincipal(t, "t1@example.com")
	other := e.therapistPrincipal(t, "t2@example.com")

	mine := validFamily("Mine")
	mine.TherapistID = tp.TherapistID
	e.mustCreateFamily(t, mine)

	theirs := validFamily("Theirs")
	theirs.TherapistID = other.TherapistID
	e.mustCreateFamily(t, theirs)

	all, err := e.families.List(admin)
	if err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("admin sees %d families, want 2", len(all))
	}

	scoped, err := e.families.List(tp)
	if err != nil {
		t.Fatalf("therapist list: %v", err)
	}
	if len(scoped) != 1 || scoped[0].Name != "Mine" {
		t.Errorf("therapist list = %v, want only Mine", scoped)
	}

	// No profile at all: empty list, no error.
	none, err := e.families.List(domain.Principal{UserID: 99})
	if err != nil {
		t.Fatalf("unscoped list: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("principal without profile sees %d families, want 0", len(none))
	}
}

func TestFamilyGetOutOfScope(t *testing.T) {
	e := newTestEnv(t)
	tp := e.therapistPrincipal(t, "t1@example.com")
	f := e.mustCreateFamily(t, validFamily("Foreign"))

	if _, err := e.families.Get(tp, f.ID); !errors.Is(err, domain.ErrPermission) {
		t.Errorf("out-of-scope get: err = %v, want permission denied", err)
	}
	if _, err := e.families.Get(admin, 999); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("missing family: err = %v, want not found", err)
	}
}

func TestFamilyAttachConsentForm(t *testing.T) {
	e := newTestEnv(t)
	f := e.mustCreateFamily(t, validFamily("Cohen"))

	updated, err := e.families.AttachConsentForm(context.Background(), admin, f.ID,
		"consent.pdf", strings.NewReader("pdf bytes"), "application/pdf")
	if err != nil {
		t.Fatalf("attach consent form: %v", err)
	}
	if updated.ConsentFormKey == "" {
		t.Error("consent form key should be recorded")
	}
	if updated.ConsentFormDate == nil {
		t.Error("consent form date should be recorded")
	}
	if e.blobs.Len() != 1 {
		t.Errorf("blob store has %d objects, want 1", e.blobs.Len())
	}

	tp := e.therapistPrincipal(t, "t@example.com")
	_, err = e.families.AttachWaiver(context.Background(), tp, f.ID,
		"waiver.pdf", strings.NewReader("pdf bytes"), "application/pdf")
	if !errors.Is(err, domain.ErrPermission) {
		t.Errorf("therapist waiver upload: err = %v, want permission denied", err)
	}
}

func TestFamilyDeleteRemovesCaseload(t *testing.T) {
	e := newTestEnv(t)
	f := e.mustCreateFamily(t, validFamily("Cohen"))
	c := e.mustCreateChild(t, &model.Child{FamilyID: f.ID, Name: "Noa"})

	if _, err := e.treatments.Create(admin, validTreatment(nil, &c.ID)); err != nil {
		t.Fatalf("create treatment: %v", err)
	}

	tp := e.therapistPrincipal(t, "t@example.com")
	if err := e.families.Delete(tp, f.ID); !errors.Is(err, domain.ErrPermission) {
		t.Errorf("therapist delete: err = %v, want permission denied", err)
	}

	if err := e.families.Delete(admin, f.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if _, err := e.children.Get(admin, c.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("child after cascade: err = %v, want not found", err)
	}
}
