package model

import "time"

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

type Child struct {
	ID        int64     `json:"id"`
	FamilyID  int64     `json:"family_id"`
	Name      string    `json:"name"`
	BirthDate time.Time `json:"birth_date"`
	Gender    Gender    `json:"gender"`

	School         string `json:"school"`
	Grade          string `json:"grade"`
	TeacherName    string `json:"teacher_name"`
	TeacherPhone   string `json:"teacher_phone"`
	CounselorName  string `json:"school_counselor_name"`
	CounselorPhone string `json:"school_counselor_phone"`

	Allergies    string `json:"allergies"`
	Medications  string `json:"medications"`
	SpecialNeeds string `json:"special_needs"`
	MedicalInfo  string `json:"medical_info"`
	Notes        string `json:"notes"`

	TherapistID *int64 `json:"therapist_id"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
