package model

import "time"

// TherapistProfile extends a user account with the therapist's clinical
// details. One profile per user.
type TherapistProfile struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	Phone          string    `json:"phone"`
	Specialization string    `json:"specialization"`
	Active         bool      `json:"active"`
	Notes          string    `json:"notes"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Display fields joined from the user account on reads.
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}
