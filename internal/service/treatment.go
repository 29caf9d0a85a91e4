package service

import (
	"log/slog"
	"time"

	"github.com/avivros/maagan/internal/domain"
	"github.com/avivros/maagan/internal/model"
	"github.com/avivros/maagan/internal/schedule"
	"github.com/avivros/maagan/internal/store"
)

type TreatmentService struct {
	treatments *store.TreatmentStore
	families   *store.FamilyStore
	children   *store.ChildStore
	logger     *slog.Logger

	now func() time.Time
}

func NewTreatmentService(treatments *store.TreatmentStore, families *store.FamilyStore, children *store.ChildStore, logger *slog.Logger) *TreatmentService {
	return &TreatmentService{
		treatments: treatments,
		families:   families,
		children:   children,
		logger:     logger,
		now:        time.Now,
	}
}

// TreatmentView pairs a treatment with its derived display status, which
// shows pending_summary for past-due sessions still awaiting a summary.
type TreatmentView struct {
	model.Treatment
	DisplayStatus model.TreatmentStatus `json:"display_status"`
}

func (s *TreatmentService) view(t model.Treatment) TreatmentView {
	return TreatmentView{Treatment: t, DisplayStatus: schedule.DisplayStatus(&t, s.now())}
}

func (s *TreatmentService) views(ts []model.Treatment) []TreatmentView {
	views := make([]TreatmentView, 0, len(ts))
	for _, t := range ts {
		views = append(views, s.view(t))
	}
	return views
}

func (s *TreatmentService) List(p domain.Principal) ([]TreatmentView, error) {
	scope, ok := listScope(p)
	if !ok {
		return []TreatmentView{}, nil
	}
	var (
		ts  []model.Treatment
		err error
	)
	if scope == nil {
		ts, err = s.treatments.List()
	} else {
		ts, err = s.treatments.ListForTherapist(*scope)
	}
	if err != nil {
		return nil, err
	}
	return s.views(ts), nil
}

func (s *TreatmentService) Get(p domain.Principal, id int64) (*TreatmentView, error) {
	t, err := s.treatments.GetByID(id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.requireAccess(p, t.ID); err != nil {
		return nil, err
	}
	v := s.view(*t)
	return &v, nil
}

// Create schedules a treatment. The session must name a family or a child,
// fall on a working day inside working hours, and may not carry the
// derived pending_summary status. A therapist creating an unassigned
// session becomes its therapist.
func (s *TreatmentService) Create(p domain.Principal, t *model.Treatment) (*TreatmentView, error) {
	if !p.Admin && !p.Therapist() {
		return nil, domain.ErrPermission
	}
	if t.Status == "" {
		t.Status = model.StatusScheduled
	}
	if t.TherapistID == nil && p.Therapist() {
		t.TherapistID = p.TherapistID
	}
	if err := s.validateTreatment(p, t); err != nil {
		return nil, err
	}
	if t.Status == model.StatusScheduled && t.Summary != "" {
		t.Status = model.StatusCompleted
	}
	created, err := s.treatments.Create(t)
	if err != nil {
		return nil, err
	}
	s.logger.Info("treatment created", "treatment_id", created.ID, "status", created.Status, "user_id", p.UserID)
	v := s.view(*created)
	return &v, nil
}

// Update modifies a treatment. Completion is one-way: once a treatment has
// left the scheduled status, the stored status is kept regardless of the
// submitted one. A scheduled treatment gaining a non-empty summary moves
// to completed.
func (s *TreatmentService) Update(p domain.Principal, id int64, t *model.Treatment) (*TreatmentView, error) {
	existing, err := s.treatments.GetByID(id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}
	if err := s.requireAccess(p, id); err != nil {
		return nil, err
	}

	t.ID = id
	if t.Status == "" {
		t.Status = existing.Status
	}
	if err := s.validateTreatment(p, t); err != nil {
		return nil, err
	}

	if existing.Status != model.StatusScheduled {
		t.Status = existing.Status
	} else if t.Status == model.StatusScheduled && t.Summary != "" {
		t.Status = model.StatusCompleted
	}

	updated, err := s.treatments.Update(t)
	if err != nil {
		return nil, err
	}
	if updated.Status != existing.Status {
		s.logger.Info("treatment status changed", "treatment_id", id,
			"from", existing.Status, "to", updated.Status, "user_id", p.UserID)
	}
	v := s.view(*updated)
	return &v, nil
}

func (s *TreatmentService) Delete(p domain.Principal, id int64) error {
	existing, err := s.treatments.GetByID(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return domain.ErrNotFound
	}
	if err := s.requireAccess(p, id); err != nil {
		return err
	}
	if err := s.treatments.Delete(id); err != nil {
		return err
	}
	s.logger.Info("treatment deleted", "treatment_id", id, "user_id", p.UserID)
	return nil
}

// ListWeek returns the treatments of the working week containing day,
// Sunday through Thursday, within the principal's scope.
func (s *TreatmentService) ListWeek(p domain.Principal, day time.Time) ([]TreatmentView, error) {
	scope, ok := listScope(p)
	if !ok {
		return []TreatmentView{}, nil
	}
	start := weekStart(day)
	end := start.AddDate(0, 0, 5)
	ts, err := s.treatments.ListByDateRange(start, end, scope)
	if err != nil {
		return nil, err
	}
	return s.views(ts), nil
}

// weekStart returns midnight on the Sunday of day's week.
func weekStart(day time.Time) time.Time {
	d := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return d.AddDate(0, 0, -int(d.Weekday()))
}

func (s *TreatmentService) validateTreatment(p domain.Principal, t *model.Treatment) error {
	var v domain.Validation

	if t.FamilyID == nil && t.ChildID == nil {
		v.Fail("client", "a family or a child is required")
	}
	if t.FamilyID != nil {
		f, err := s.families.GetByID(*t.FamilyID)
		if err != nil {
			return err
		}
		if f == nil {
			v.Fail("family_id", "family does not exist")
		} else if err := s.requireFamilyScope(p, *t.FamilyID); err != nil {
			return err
		}
	}
	if t.ChildID != nil {
		c, err := s.children.GetByID(*t.ChildID)
		if err != nil {
			return err
		}
		if c == nil {
			v.Fail("child_id", "child does not exist")
		} else {
			if err := s.requireChildScope(p, *t.ChildID); err != nil {
				return err
			}
			if t.FamilyID != nil && c.FamilyID != *t.FamilyID {
				v.Fail("child_id", "child does not belong to the given family")
			}
		}
	}

	if !t.Type.Valid() {
		v.Failf("type", "unknown type %q", t.Type)
	}
	if !t.Status.Valid() {
		v.Failf("status", "unknown status %q", t.Status)
	}
	if t.ScheduledDate.IsZero() {
		v.Fail("scheduled_date", "required")
	}
	v.Merge(schedule.CheckWindow(t.ScheduledDate, t.StartTime, t.EndTime))

	return v.Err()
}

func (s *TreatmentService) requireAccess(p domain.Principal, treatmentID int64) error {
	if p.Admin {
		return nil
	}
	if p.TherapistID == nil {
		return domain.ErrPermission
	}
	visible, err := s.treatments.VisibleToTherapist(treatmentID, *p.TherapistID)
	if err != nil {
		return err
	}
	if !visible {
		return domain.ErrPermission
	}
	return nil
}

func (s *TreatmentService) requireFamilyScope(p domain.Principal, familyID int64) error {
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

func (s *TreatmentService) requireChildScope(p domain.Principal, childID int64) error {
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
