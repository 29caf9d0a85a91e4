package service

import (
	"database/sql"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/avivros/maagan/internal/blob"
	"github.com/avivros/maagan/internal/database"
	"github.com/avivros/maagan/internal/domain"
	"github.com/avivros/maagan/internal/model"
	"github.com/avivros/maagan/internal/store"
)

type testEnv struct {
	db         *sql.DB
	blobs      *blob.Memory
	families   *FamilyService
	children   *ChildService
	treatments *TreatmentService
	documents  *DocumentService
	therapists *TherapistService
	dashboard  *DashboardService

	familyStore    *store.FamilyStore
	childStore     *store.ChildStore
	treatmentStore *store.TreatmentStore
	userStore      *store.UserStore
	therapistStore *store.TherapistStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	blobs := blob.NewMemory()

	familyStore := store.NewFamilyStore(db)
	childStore := store.NewChildStore(db)
	treatmentStore := store.NewTreatmentStore(db)
	documentStore := store.NewDocumentStore(db)
	userStore := store.NewUserStore(db)
	therapistStore := store.NewTherapistStore(db)

	treatments := NewTreatmentService(treatmentStore, familyStore, childStore, logger)

	return &testEnv{
		db:             db,
		blobs:          blobs,
		families:       NewFamilyService(familyStore, blobs, logger),
		children:       NewChildService(childStore, familyStore, logger),
		treatments:     treatments,
		documents:      NewDocumentService(documentStore, familyStore, childStore, blobs, logger),
		therapists:     NewTherapistService(therapistStore, userStore, logger),
		dashboard:      NewDashboardService(familyStore, childStore, treatments),
		familyStore:    familyStore,
		childStore:     childStore,
		treatmentStore: treatmentStore,
		userStore:      userStore,
		therapistStore: therapistStore,
	}
}

var admin = domain.Principal{UserID: 1, Admin: true}

func (e *testEnv) therapistPrincipal(t *testing.T, email string) domain.Principal {
	t.Helper()
	u, err := e.userStore.Create(email, "Therapist", "hash", false)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	p, err := e.therapistStore.Create(u.ID, "", "", true, "")
	if err != nil {
		t.Fatalf("create profile: %v", err)
	}
	return domain.Principal{UserID: u.ID, TherapistID: &p.ID}
}

func validFamily(name string) *model.Family {
	return &model.Family{
		Name:         name,
		FamilyStatus: model.FamilyMarried,
		FatherName:   "Avi",
		FatherPhone:  "0501111111",
		MotherName:   "Dana",
		MotherPhone:  "0502222222",
	}
}

func (e *testEnv) mustCreateFamily(t *testing.T, f *model.Family) *model.Family {
	t.Helper()
	created, err := e.families.Create(admin, f)
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	return created
}

func (e *testEnv) mustCreateChild(t *testing.T, c *model.Child) *model.Child {
	t.Helper()
	if c.BirthDate.IsZero() {
		c.BirthDate = time.Date(2017, 5, 2, 0, 0, 0, 0, time.UTC)
	}
	if c.Gender == "" {
		c.Gender = model.GenderMale
	}
	created, err := e.children.Create(admin, c)
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	return created
}

// sunday returns a date on a Sunday, inside the working week.
func sunday() time.Time {
	return time.Date(2026, 9, 6, 0, 0, 0, 0, time.UTC)
}

func validTreatment(familyID *int64, childID *int64) *model.Treatment {
	return &model.Treatment{
		FamilyID:      familyID,
		ChildID:       childID,
		Type:          model.TreatmentIndividual,
		ScheduledDate: sunday(),
		StartTime:     "10:00",
		EndTime:       "11:00",
	}
}

func fieldNames(t *testing.T, err error) map[string]bool {
	t.Helper()
	ve, ok := domain.AsValidation(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	names := map[string]bool{}
	for _, fe := range ve.Fields() {
		names[fe.Field] = true
	}
	return names
}
