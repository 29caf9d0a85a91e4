package domain

// Principal is the authenticated actor performing an operation. It is
// resolved once per request by the auth middleware and threaded explicitly
// through every service call.
type Principal struct {
	UserID int64
	Admin  bool
	// TherapistID is the principal's therapist profile id. Nil means the
	// principal has no profile yet and therefore zero visibility.
	TherapistID *int64
}

// Therapist reports whether the principal acts as a non-admin therapist
// with a provisioned profile.
func (p Principal) Therapist() bool {
	return !p.Admin && p.TherapistID != nil
}
