package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/avivros/maagan/internal/blob"
	"github.com/avivros/maagan/internal/domain"
	"github.com/avivros/maagan/internal/model"
	"github.com/avivros/maagan/internal/store"
)

type FamilyService struct {
	families *store.FamilyStore
	blobs    blob.Store
	logger   *slog.Logger
}

func NewFamilyService(families *store.FamilyStore, blobs blob.Store, logger *slog.Logger) *FamilyService {
	return &FamilyService{families: families, blobs: blobs, logger: logger}
}

// List returns the families the principal may see. Principals outside any
// scope get an empty result, never an error.
func (s *FamilyService) List(p domain.Principal) ([]model.Family, error) {
	scope, ok := listScope(p)
	if !ok {
		return []model.Family{}, nil
	}
	if scope == nil {
		return s.families.List()
	}
	return s.families.ListForTherapist(*scope)
}

func (s *FamilyService) Get(p domain.Principal, id int64) (*model.Family, error) {
	f, err := s.families.GetByID(id)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, domain.ErrNotFound
	}
	if p.Admin {
		return f, nil
	}
	if p.TherapistID == nil {
		return nil, domain.ErrPermission
	}
	visible, err := s.families.VisibleToTherapist(id, *p.TherapistID)
	if err != nil {
		return nil, err
	}
	if !visible {
		return nil, domain.ErrPermission
	}
	return f, nil
}

// Create persists a new family. Administrator-only.
func (s *FamilyService) Create(p domain.Principal, f *model.Family) (*model.Family, error) {
	if !p.Admin {
		return nil, domain.ErrPermission
	}
	if err := validateFamily(f); err != nil {
		return nil, err
	}
	created, err := s.families.Create(f)
	if err != nil {
		return nil, err
	}
	s.logger.Info("family created", "family_id", created.ID, "user_id", p.UserID)
	return created, nil
}

// Update replaces a family's fields. Administrator-only.
func (s *FamilyService) Update(p domain.Principal, id int64, f *model.Family) (*model.Family, error) {
	if !p.Admin {
		return nil, domain.ErrPermission
	}
	existing, err := s.families.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}
	f.ID = id
	if err := validateFamily(f); err != nil {
		return nil, err
	}
	return s.families.Update(f)
}

// Delete removes a family and, through the schema's cascade, its children
// and every treatment and document referencing them. Administrator-only.
func (s *FamilyService) Delete(p domain.Principal, id int64) error {
	if !p.Admin {
		return domain.ErrPermission
	}
	existing, err := s.families.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}
	if err := s.families.Delete(id); err != nil {
		return err
	}
	s.logger.Info("family deleted", "family_id", id, "user_id", p.UserID)
	return nil
}

// AttachFunc is the shape shared by the family form uploads.
type AttachFunc func(ctx context.Context, p domain.Principal, id int64, filename string, r io.Reader, contentType string) (*model.Family, error)

// AttachConsentForm stores the uploaded consent form blob and records its
// key and upload date on the family. Administrator-only, like every other
// family mutation. The blob is written first; if recording the metadata
// fails the orphaned blob is left behind as cleanup debt.
func (s *FamilyService) AttachConsentForm(ctx context.Context, p domain.Principal, id int64, filename string, r io.Reader, contentType string) (*model.Family, error) {
	return s.attachForm(ctx, p, id, "consent_forms", filename, r, contentType, s.families.SetConsentForm)
}

// AttachWaiver stores the confidentiality waiver blob on the family.
func (s *FamilyService) AttachWaiver(ctx context.Context, p domain.Principal, id int64, filename string, r io.Reader, contentType string) (*model.Family, error) {
	return s.attachForm(ctx, p, id, "confidentiality_waivers", filename, r, contentType, s.families.SetWaiver)
}

func (s *FamilyService) attachForm(ctx context.Context, p domain.Principal, id int64, prefix, filename string, r io.Reader, contentType string, record func(int64, string, time.Time) error) (*model.Family, error) {
	if !p.Admin {
		return nil, domain.ErrPermission
	}
	existing, err := s.families.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}

	key := fmt.Sprintf("%s/%s/%s", prefix, uuid.NewString(), path.Base(filename))
	if _, err := s.blobs.Put(ctx, key, r, contentType); err != nil {
		return nil, fmt.Errorf("store form: %w", err)
	}
	if err := record(id, key, time.Now()); err != nil {
		s.logger.Error("form uploaded but not recorded", "family_id", id, "key", key, "error", err)
		return nil, err
	}
	return s.families.GetByID(id)
}

// validateFamily enforces the family-structure rules: variants with both
// parents require both parents' name and phone; single-parent variants
// require at least one parent's details. National IDs must be 9 digits and
// phones 9-10 digits when given.
func validateFamily(f *model.Family) error {
	var v domain.Validation

	v.Require("name", f.Name)
	if f.FamilyStatus == "" {
		f.FamilyStatus = model.FamilyMarried
	}
	if !f.FamilyStatus.Valid() {
		v.Failf("family_status", "unknown status %q", f.FamilyStatus)
	}

	switch {
	case f.FamilyStatus.RequiresBothParents():
		v.Require("father_name", f.FatherName)
		v.Require("father_phone", f.FatherPhone)
		v.Require("mother_name", f.MotherName)
		v.Require("mother_phone", f.MotherPhone)
	case f.FamilyStatus == model.FamilySingleParent || f.FamilyStatus == model.FamilyWidowed:
		if f.FatherName == "" && f.MotherName == "" {
			v.Fail("father_name", "one parent's details are required")
			v.Fail("mother_name", "one parent's details are required")
		}
		if f.FatherName != "" {
			v.Require("father_phone", f.FatherPhone)
		}
		if f.MotherName != "" {
			v.Require("mother_phone", f.MotherPhone)
		}
	}

	v.RequirePhone("phone", f.Phone)
	v.RequirePhone("father_phone", f.FatherPhone)
	v.RequirePhone("mother_phone", f.MotherPhone)
	v.RequirePhone("social_worker_phone", f.SocialWorkerPhone)
	v.RequireNationalID("father_id", f.FatherID)
	v.RequireNationalID("mother_id", f.MotherID)

	return v.Err()
}
