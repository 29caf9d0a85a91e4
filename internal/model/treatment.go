package model

import "time"

type TreatmentType string

const (
	TreatmentIndividual   TreatmentType = "individual"
	TreatmentGroup        TreatmentType = "group"
	TreatmentFamily       TreatmentType = "family"
	TreatmentConsultation TreatmentType = "consultation"
)

func (t TreatmentType) Valid() bool {
	switch t {
	case TreatmentIndividual, TreatmentGroup, TreatmentFamily, TreatmentConsultation:
		return true
	}
	return false
}

type TreatmentStatus string

const (
	StatusScheduled TreatmentStatus = "scheduled"
	StatusCompleted TreatmentStatus = "completed"
	StatusMissed    TreatmentStatus = "missed"
	// StatusPendingSummary is a derived display status, never stored. It is
	// listed here so input validation can reject attempts to store it.
	StatusPendingSummary TreatmentStatus = "pending_summary"
)

func (s TreatmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusMissed:
		return true
	}
	return false
}

// Treatment is a scheduled or completed session. At least one of FamilyID
// and ChildID must be set.
type Treatment struct {
	ID          int64           `json:"id"`
	FamilyID    *int64          `json:"family_id"`
	ChildID     *int64          `json:"child_id"`
	TherapistID *int64          `json:"therapist_id"`
	Type        TreatmentType   `json:"type"`
	Status      TreatmentStatus `json:"status"`

	ScheduledDate time.Time `json:"scheduled_date"`
	StartTime     string    `json:"start_time"` // HH:MM
	EndTime       string    `json:"end_time"`   // HH:MM

	Summary   string `json:"summary"`
	NextSteps string `json:"next_steps"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
