package service

import (
	"time"

	"github.com/avivros/maagan/internal/domain"
	"github.com/avivros/maagan/internal/model"
	"github.com/avivros/maagan/internal/store"
)

// Dashboard summarizes the caseload within the principal's scope.
type Dashboard struct {
	Families           int `json:"families"`
	Children           int `json:"children"`
	UpcomingTreatments int `json:"upcoming_treatments"`
	NewFamilies30Days  int `json:"new_families_30_days"`

	RecentFamilies   []model.Family  `json:"recent_families"`
	RecentTreatments []TreatmentView `json:"recent_treatments"`
}

type DashboardService struct {
	families   *store.FamilyStore
	children   *store.ChildStore
	treatments *TreatmentService

	now func() time.Time
}

func NewDashboardService(families *store.FamilyStore, children *store.ChildStore, treatments *TreatmentService) *DashboardService {
	return &DashboardService{families: families, children: children, treatments: treatments, now: time.Now}
}

const recentLimit = 5

// Summary builds the dashboard for the principal. Out-of-scope principals
// get an all-zero dashboard, matching the empty-list behavior elsewhere.
func (s *DashboardService) Summary(p domain.Principal) (*Dashboard, error) {
	scope, ok := listScope(p)
	if !ok {
		return &Dashboard{
			RecentFamilies:   []model.Family{},
			RecentTreatments: []TreatmentView{},
		}, nil
	}

	d := &Dashboard{}
	var err error

	if d.Families, err = s.families.Count(scope); err != nil {
		return nil, err
	}
	if d.Children, err = s.children.Count(scope); err != nil {
		return nil, err
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if d.UpcomingTreatments, err = s.treatments.treatments.Count(scope, &today); err != nil {
		return nil, err
	}
	if d.NewFamilies30Days, err = s.families.CountCreatedSince(now.AddDate(0, 0, -30), scope); err != nil {
		return nil, err
	}

	if d.RecentFamilies, err = s.families.ListRecent(recentLimit, scope); err != nil {
		return nil, err
	}
	recent, err := s.treatments.treatments.ListRecent(recentLimit, scope)
	if err != nil {
		return nil, err
	}
	d.RecentTreatments = s.treatments.views(recent)

	if d.RecentFamilies == nil {
		d.RecentFamilies = []model.Family{}
	}
	return d, nil
}
