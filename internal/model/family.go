package model

import "time"

// FamilyStatus is the family-structure variant. It decides which parent
// contact fields must be filled in before a family can be persisted.
type FamilyStatus string

const (
	FamilyMarried      FamilyStatus = "married"
	FamilyDivorced     FamilyStatus = "divorced"
	FamilySingleParent FamilyStatus = "single_parent"
	FamilyWidowed      FamilyStatus = "widowed"
	FamilyOther        FamilyStatus = "other"
)

func (s FamilyStatus) Valid() bool {
	switch s {
	case FamilyMarried, FamilyDivorced, FamilySingleParent, FamilyWidowed, FamilyOther:
		return true
	}
	return false
}

// RequiresBothParents reports whether both parents' contact details are
// mandatory for this family structure.
func (s FamilyStatus) RequiresBothParents() bool {
	return s == FamilyMarried || s == FamilyDivorced
}

type Family struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name"`
	Address      string       `json:"address"`
	Phone        string       `json:"phone"`
	Email        string       `json:"email"`
	FamilyStatus FamilyStatus `json:"family_status"`

	FatherName  string `json:"father_name"`
	FatherPhone string `json:"father_phone"`
	FatherEmail string `json:"father_email"`
	FatherID    string `json:"father_id"`

	MotherName  string `json:"mother_name"`
	MotherPhone string `json:"mother_phone"`
	MotherEmail string `json:"mother_email"`
	MotherID    string `json:"mother_id"`

	TherapistID *int64 `json:"therapist_id"`

	ConsentFormKey  string     `json:"consent_form_key,omitempty"`
	ConsentFormDate *time.Time `json:"consent_form_date,omitempty"`
	WaiverKey       string     `json:"confidentiality_waiver_key,omitempty"`
	WaiverDate      *time.Time `json:"confidentiality_waiver_date,omitempty"`

	SocialWorkerName  string `json:"social_worker_name"`
	SocialWorkerPhone string `json:"social_worker_phone"`
	SocialWorkerEmail string `json:"social_worker_email"`

	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
