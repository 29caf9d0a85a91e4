package store

import (
	"database/sql"
	"testing"
	"time"

	"github.com/avivros/maagan/internal/database"
	"github.com/avivros/maagan/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	// Ensure foreign keys are enforced (modernc/sqlite may not honor DSN param for :memory:)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestUser(t *testing.T, db *sql.DB, email string) *model.User {
	t.Helper()
	u, err := NewUserStore(db).Create(email, "Test User", "hash", false)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func createTestTherapist(t *testing.T, db *sql.DB, email string) *model.TherapistProfile {
	t.Helper()
	u := createTestUser(t, db, email)
	p, err := NewTherapistStore(db).Create(u.ID, "0501234567", "CBT", true, "")
	if err != nil {
		t.Fatalf("create therapist: %v", err)
	}
	return p
}

func createTestFamily(t *testing.T, db *sql.DB, name string, therapistID *int64) *model.Family {
	t.Helper()
	f, err := NewFamilyStore(db).Create(&model.Family{
		Name:         name,
		FamilyStatus: model.FamilyMarried,
		FatherName:   "Avi",
		FatherPhone:  "0501111111",
		MotherName:   "Dana",
		MotherPhone:  "0502222222",
		TherapistID:  therapistID,
	})
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	return f
}

func createTestChild(t *testing.T, db *sql.DB, familyID int64, name string, therapistID *int64) *model.Child {
	t.Helper()
	c, err := NewChildStore(db).Create(&model.Child{
		FamilyID:    familyID,
		Name:        name,
		BirthDate:   time.Date(2018, 3, 14, 0, 0, 0, 0, time.UTC),
		Gender:      model.GenderFemale,
		TherapistID: therapistID,
	})
	if err != nil {
		t.Fatalf("create child: %v", err)
	}
	return c
}
