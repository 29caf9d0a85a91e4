package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/avivros/maagan/internal/domain"
	"github.com/avivros/maagan/internal/model"
	"github.com/avivros/maagan/internal/store"
)

type TherapistService struct {
	therapists *store.TherapistStore
	users      *store.UserStore
	logger     *slog.Logger
}

func NewTherapistService(therapists *store.TherapistStore, users *store.UserStore, logger *slog.Logger) *TherapistService {
	return &TherapistService{therapists: therapists, users: users, logger: logger}
}

// List returns all therapist profiles. Any authenticated principal may
// read the roster; only administrators may change it.
func (s *TherapistService) List(p domain.Principal) ([]model.TherapistProfile, error) {
	return s.therapists.List()
}

func (s *TherapistService) Get(p domain.Principal, id int64) (*model.TherapistProfile, error) {
	t, err := s.therapists.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

// CreateInput carries the fields for creating a therapist together with
// their login account.
type CreateTherapistInput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Phone          string `json:"phone"`
	Specialization string `json:"specialization"`
	Notes          string `json:"notes"`
}

// Create adds a therapist: a user account plus its profile, active by
// default. When no password is supplied a random one is generated; the
// account then needs a reset before first login. Administrator-only.
func (s *TherapistService) Create(p domain.Principal, in CreateTherapistInput) (*model.TherapistProfile, error) {
	if !p.Admin {
		return nil, domain.ErrPermission
	}

	var v domain.Validation
	v.Require("name", in.Name)
	v.Require("email", in.Email)
	if in.Password == "" {
		pw, err := randomPassword()
		if err != nil {
			return nil, err
		}
		in.Password = pw
	} else if len(in.Password) < 8 {
		v.Fail("password", "must be at least 8 characters")
	}
	v.RequirePhone("phone", in.Phone)
	if err := v.Err(); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(in.Email))
	exists, err := s.users.EmailExists(email, 0)
	if err != nil {
		return nil, err
	}
	if exists {
		var v domain.Validation
		v.Fail("email", "already in use")
		return nil, v.Err()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user, err := s.users.Create(email, in.Name, string(hash), false)
	if err != nil {
		return nil, err
	}

	profile, err := s.therapists.Create(user.ID, in.Phone, in.Specialization, true, in.Notes)
	if err != nil {
		return nil, err
	}
	s.logger.Info("therapist created", "therapist_id", profile.ID, "user_id", user.ID, "by", p.UserID)
	return profile, nil
}

// UpdateTherapistInput carries the editable profile fields.
type UpdateTherapistInput struct {
	Phone          string `json:"phone"`
	Specialization string `json:"specialization"`
	Active         bool   `json:"active"`
	Notes          string `json:"notes"`
}

// Update edits a therapist profile. Administrator-only.
func (s *TherapistService) Update(p domain.Principal, id int64, in UpdateTherapistInput) (*model.TherapistProfile, error) {
	if !p.Admin {
		return nil, domain.ErrPermission
	}
	existing, err := s.therapists.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}
	var v domain.Validation
	v.RequirePhone("phone", in.Phone)
	if err := v.Err(); err != nil {
		return nil, err
	}
	return s.therapists.Update(id, in.Phone, in.Specialization, in.Active, in.Notes)
}

// Delete removes a therapist profile. Families and children assigned to it
// fall back to unassigned through the schema's SET NULL. Administrator-only.
func (s *TherapistService) Delete(p domain.Principal, id int64) error {
	if !p.Admin {
		return domain.ErrPermission
	}
	existing, err := s.therapists.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}
	if err := s.therapists.Delete(id); err != nil {
		return err
	}
	s.logger.Info("therapist deleted", "therapist_id", id, "by", p.UserID)
	return nil
}

func randomPassword() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate password: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

// Provision returns the therapist profile for a non-admin user, creating a
// bare active profile on first use. Administrators never get a profile.
func (s *TherapistService) Provision(user *model.User) (*model.TherapistProfile, error) {
	if user.IsAdmin {
		return nil, nil
	}
	profile, err := s.therapists.GetByUserID(user.ID)
	if err != nil {
		return nil, err
	}
	if profile != nil {
		return profile, nil
	}
	profile, err = s.therapists.Create(user.ID, "", "", true, "")
	if err != nil {
		return nil, err
	}
	s.logger.Info("therapist profile provisioned", "therapist_id", profile.ID, "user_id", user.ID)
	return profile, nil
}
