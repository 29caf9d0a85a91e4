// Package service implements the case-management core: record invariants
// enforced at the moment of persistence, and access scoping that decides
// which records a principal may see or mutate. Every operation takes the
// requesting principal explicitly; nothing reads ambient request state.
package service

import "github.com/avivros/maagan/internal/domain"

// listScope returns the therapist filter for list-style queries: nil for
// administrators (unscoped), the profile id for therapists, and ok=false
// for principals with no profile, who see nothing.
func listScope(p domain.Principal) (therapistID *int64, ok bool) {
	if p.Admin {
		return nil, true
	}
	if p.TherapistID != nil {
		return p.TherapistID, true
	}
	return nil, false
}
