package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"

	"github.com/google/uuid"

	"github.com/avivros/maagan/internal/blob"
	"github.com/avivros/maagan/internal/domain"
	"github.com/avivros/maagan/internal/model"
	"github.com/avivros/maagan/internal/store"
)

type DocumentService struct {
	documents *store.DocumentStore
	families  *store.FamilyStore
	children  *store.ChildStore
	blobs     blob.Store
	logger    *slog.Logger
}

func NewDocumentService(documents *store.DocumentStore, families *store.FamilyStore, children *store.ChildStore, blobs blob.Store, logger *slog.Logger) *DocumentService {
	return &DocumentService{documents: documents, families: families, children: children, blobs: blobs, logger: logger}
}

func (s *DocumentService) List(p domain.Principal) ([]model.Document, error) {
	scope, ok := listScope(p)
	if !ok {
		return []model.Document{}, nil
	}
	if scope == nil {
		return s.documents.List()
	}
	return s.documents.ListForTherapist(*scope)
}

func (s *DocumentService) ListByFamily(p domain.Principal, familyID int64) ([]model.Document, error) {
	if err := s.requireFamilyScope(p, familyID); err != nil {
		return nil, err
	}
	return s.documents.ListByFamily(familyID)
}

func (s *DocumentService) Get(p domain.Principal, id int64) (*model.Document, error) {
	d, err := s.documents.GetByID(id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.requireAccess(p, id); err != nil {
		return nil, err
	}
	return d, nil
}

// Create stores the uploaded file and records the document metadata. When
// the document names a child, its family is derived from the child; a
// family that contradicts the child's is rejected. The blob is written
// first, so a failed metadata insert can orphan a blob.
func (s *DocumentService) Create(ctx context.Context, p domain.Principal, d *model.Document, filename string, r io.Reader, contentType string) (*model.Document, error) {
	if !p.Admin && !p.Therapist() {
		return nil, domain.ErrPermission
	}
	if err := s.resolveOwner(p, d); err != nil {
		return nil, err
	}
	if err := validateDocument(d); err != nil {
		return nil, err
	}

	key := fmt.Sprintf("documents/%s/%s", uuid.NewString(), path.Base(filename))
	if _, err := s.blobs.Put(ctx, key, r, contentType); err != nil {
		return nil, fmt.Errorf("store document: %w", err)
	}
	d.FileKey = key

	created, err := s.documents.Create(d)
	if err != nil {
		s.logger.Error("document uploaded but not recorded", "key", key, "error", err)
		return nil, err
	}
	s.logger.Info("document created", "document_id", created.ID, "user_id", p.UserID)
	return created, nil
}

// Update edits document metadata. The stored file is untouched.
func (s *DocumentService) Update(p domain.Principal, id int64, d *model.Document) (*model.Document, error) {
	existing, err := s.documents.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.requireAccess(p, id); err != nil {
		return nil, err
	}
	d.ID = id
	d.FileKey = existing.FileKey
	if err := s.resolveOwner(p, d); err != nil {
		return nil, err
	}
	if err := validateDocument(d); err != nil {
		return nil, err
	}
	return s.documents.Update(d)
}

// Delete removes the metadata row and then the stored blob. A blob delete
// failure is logged, not surfaced: the record is already gone.
func (s *DocumentService) Delete(ctx context.Context, p domain.Principal, id int64) error {
	existing, err := s.documents.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}
	if err := s.requireAccess(p, id); err != nil {
		return err
	}
	if err := s.documents.Delete(id); err != nil {
		return err
	}
	if err := s.blobs.Delete(ctx, existing.FileKey); err != nil {
		s.logger.Warn("document blob not deleted", "key", existing.FileKey, "error", err)
	}
	s.logger.Info("document deleted", "document_id", id, "user_id", p.UserID)
	return nil
}

// Open returns the stored file for download.
func (s *DocumentService) Open(ctx context.Context, p domain.Principal, id int64) (*model.Document, blob.Info, io.ReadCloser, error) {
	d, err := s.Get(p, id)
	if err != nil {
		return nil, blob.Info{}, nil, err
	}
	info, rc, err := s.blobs.Get(ctx, d.FileKey)
	if err != nil {
		return nil, blob.Info{}, nil, fmt.Errorf("open document: %w", err)
	}
	return d, info, rc, nil
}

// resolveOwner checks the owning family or child exists and is in scope,
// and derives the family from the child when a child is named.
func (s *DocumentService) resolveOwner(p domain.Principal, d *model.Document) error {
	var v domain.Validation

	if d.FamilyID == nil && d.ChildID == nil {
		v.Fail("client", "a family or a child is required")
		return v.Err()
	}

	if d.ChildID != nil {
		c, err := s.children.GetByID(*d.ChildID)
		if err != nil {
			return err
		}
		if c == nil {
			v.Fail("child_id", "child does not exist")
			return v.Err()
		}
		if err := s.requireChildScope(p, c.ID); err != nil {
			return err
		}
		if d.FamilyID != nil && *d.FamilyID != c.FamilyID {
			v.Fail("family_id", "family does not match the child's family")
			return v.Err()
		}
		d.FamilyID = &c.FamilyID
		return nil
	}

	f, err := s.families.GetByID(*d.FamilyID)
	if err != nil {
		return err
	}
	if f == nil {
		v.Fail("family_id", "family does not exist")
		return v.Err()
	}
	return s.requireFamilyScope(p, f.ID)
}

func (s *DocumentService) requireAccess(p domain.Principal, documentID int64) error {
	if p.Admin {
		return nil
	}
	if p.TherapistID == nil {
		return domain.ErrPermission
	}
	visible, err := s.documents.VisibleToTherapist(documentID, *p.TherapistID)
	if err != nil {
		return err
	}
	if !visible {
		return domain.ErrPermission
	}
	return nil
}

func (s *DocumentService) requireFamilyScope(p domain.Principal, familyID int64) error {
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

func (s *DocumentService) requireChildScope(p domain.Principal, childID int64) error {
	if p.Admin {
		return nil
	}
	if p.TherapistID == nil {
		return domain.ErrPermission
	}
	visible, err := s.children.VisibleToTherapist(childID, *p.TherapistID)
	if err != nil {
		return err
	}
	if !visible {
		return domain.ErrPermission
	}
	return nil
}

func validateDocument(d *model.Document) error {
	var v domain.Validation
	v.Require("name", d.Name)
	if !d.Type.Valid() {
		v.Failf("document_type", "unknown type %q", d.Type)
	}
	return v.Err()
}
