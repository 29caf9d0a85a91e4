package service

import (
	"log/slog"

	"github.com/avivros/maagan/internal/domain"
	"github.com/avivros/maagan/internal/model"
	"github.com/avivros/maagan/internal/store"
)

type ChildService struct {
	children *store.ChildStore
	families *store.FamilyStore
	logger   *slog.Logger
}

func NewChildService(children *store.ChildStore, families *store.FamilyStore, logger *slog.Logger) *ChildService {
	return &ChildService{children: children, families: families, logger: logger}
}

func (s *ChildService) List(p domain.Principal) ([]model.Child, error) {
	scope, ok := listScope(p)
	if !ok {
		return []model.Child{}, nil
	}
	if scope == nil {
		return s.children.List()
	}
	return s.children.ListForTherapist(*scope)
}

// ListByFamily returns a family's children, subject to the principal being
// able to see the family itself.
func (s *ChildService) ListByFamily(p domain.Principal, familyID int64) ([]model.Child, error) {
	if err := s.requireFamilyAccess(p, familyID); err != nil {
		return nil, err
	}
	return s.children.ListByFamily(familyID)
}

func (s *ChildService) Get(p domain.Principal, id int64) (*model.Child, error) {
	c, err := s.children.GetByID(id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.requireChildAccess(p, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Create adds a child to a family. Admins may add to any family; a
// therapist only when the family is assigned to them or unassigned. A
// child with no therapist inherits the family's; a child whose therapist
// differs from the family's assigned therapist is rejected.
func (s *ChildService) Create(p domain.Principal, c *model.Child) (*model.Child, error) {
	f, err := s.families.GetByID(c.FamilyID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		var v domain.Validation
		v.Fail("family_id", "family does not exist")
		return nil, v.Err()
	}
	if !p.Admin {
		if p.TherapistID == nil {
			return nil, domain.ErrPermission
		}
		if f.TherapistID != nil && *f.TherapistID != *p.TherapistID {
			return nil, domain.ErrPermission
		}
	}
	if err := s.resolveTherapist(p, c, f); err != nil {
		return nil, err
	}
	if err := validateChild(c); err != nil {
		return nil, err
	}
	created, err := s.children.Create(c)
	if err != nil {
		return nil, err
	}
	s.logger.Info("child created", "child_id", created.ID, "family_id", created.FamilyID, "user_id", p.UserID)
	return created, nil
}

func (s *ChildService) Update(p domain.Principal, id int64, c *model.Child) (*model.Child, error) {
	existing, err := s.children.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.requireChildAccess(p, existing); err != nil {
		return nil, err
	}
	if c.FamilyID == 0 {
		c.FamilyID = existing.FamilyID
	}
	f, err := s.families.GetByID(c.FamilyID)
	if err != nil {
		return nil, err
	}
	if f == nil {
		var v domain.Validation
		v.Fail("family_id", "family does not exist")
		return nil, v.Err()
	}
	c.ID = id
	if err := s.resolveTherapist(p, c, f); err != nil {
		return nil, err
	}
	if err := validateChild(c); err != nil {
		return nil, err
	}
	return s.children.Update(c)
}

// Delete removes a child. Administrator-only, like family deletion.
func (s *ChildService) Delete(p domain.Principal, id int64) error {
	if !p.Admin {
		return domain.ErrPermission
	}
	existing, err := s.children.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}
	if err := s.children.Delete(id); err != nil {
		return err
	}
	s.logger.Info("child deleted", "child_id", id, "user_id", p.UserID)
	return nil
}

// resolveTherapist settles the child's therapist assignment against the
// family's. Unset inherits the family's therapist; when both the child and
// the family name a therapist they must agree. A therapist creating a
// child in an unassigned family becomes its therapist.
func (s *ChildService) resolveTherapist(p domain.Principal, c *model.Child, f *model.Family) error {
	if c.TherapistID == nil {
		switch {
		case f.TherapistID != nil:
			c.TherapistID = f.TherapistID
		case p.Therapist():
			c.TherapistID = p.TherapistID
		}
		return nil
	}
	if f.TherapistID != nil && *c.TherapistID != *f.TherapistID {
		var v domain.Validation
		v.Fail("therapist_id", "child's therapist must match the family's assigned therapist")
		return v.Err()
	}
	return nil
}

func (s *ChildService) requireFamilyAccess(p domain.Principal, familyID int64) error {
	if p.Admin {
		return nil
	}
	if p.TherapistID == nil {
		return domain.ErrPermission
	}
	visible, err := s.families.VisibleToTherapist(familyID, *p.TherapistID)
	if err != nil {
		return err
	}
	if !visible {
		return domain.ErrPermission
	}
	return nil
}

func (s *ChildService) requireChildAccess(p domain.Principal, c *model.Child) error {
	if p.Admin {
		return nil
	}
	if p.TherapistID == nil {
		return domain.ErrPermission
	}
	visible, err := s.children.VisibleToTherapist(c.ID, *p.TherapistID)
	if err != nil {
		return err
	}
	if !visible {
		return domain.ErrPermission
	}
	return nil
}

func validateChild(c *model.Child) error {
	var v domain.Validation
	v.Require("name", c.Name)
	if c.BirthDate.IsZero() {
		v.Fail("birth_date", "this field is required")
	}
	if !c.Gender.Valid() {
		v.Failf("gender", "unknown gender %q", c.Gender)
	}
	v.RequirePhone("teacher_phone", c.TeacherPhone)
	v.RequirePhone("school_counselor_phone", c.CounselorPhone)
	return v.Err()
}
