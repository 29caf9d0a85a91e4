package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/avivros/maagan/internal/model"
)

type TreatmentStore struct {
	db *sql.DB
}

func NewTreatmentStore(db *sql.DB) *TreatmentStore {
	return &TreatmentStore{db: db}
}

const treatmentCols = `id, family_id, child_id, therapist_id, type, status,
	scheduled_date, start_time, end_time, summary, next_steps, created_at, updated_at`

// Visibility for a therapist is the OR of three associations: the
// treatment's own therapist, the child's therapist, and the family's
// therapist (directly or through the child's family).
const treatmentVisible = `(t.therapist_id = ?
	OR EXISTS (SELECT 1 FROM children c WHERE c.id = t.child_id AND c.therapist_id = ?)
	OR EXISTS (SELECT 1 FROM families f WHERE f.therapist_id = ?
	           AND (f.id = t.family_id OR f.id = (SELECT family_id FROM children WHERE id = t.child_id))))`

func scanTreatment(scanner interface{ Scan(...any) error }) (*model.Treatment, error) {
	var t model.Treatment
	var familyID, childID, therapistID sql.NullInt64
	err := scanner.Scan(
		&t.ID, &familyID, &childID, &therapistID, &t.Type, &t.Status,
		&t.ScheduledDate, &t.StartTime, &t.EndTime, &t.Summary, &t.NextSteps,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if familyID.Valid {
		t.FamilyID = &familyID.Int64
	}
	if childID.Valid {
		t.ChildID = &childID.Int64
	}
	if therapistID.Valid {
		t.TherapistID = &therapistID.Int64
	}
	return &t, nil
}

func (s *TreatmentStore) Create(t *model.Treatment) (*model.Treatment, error) {
	result, err := s.db.Exec(
		`INSERT INTO treatments (family_id, child_id, therapist_id, type, status,
			scheduled_date, start_time, end_time, summary, next_steps)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		nullID(t.FamilyID), nullID(t.ChildID), nullID(t.TherapistID), t.Type, t.Status,
		t.ScheduledDate.UTC(), t.StartTime, t.EndTime, t.Summary, t.NextSteps,
	)
	if err != nil {
		return nil, fmt.Errorf("insert treatment: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TreatmentStore) GetByID(id int64) (*model.Treatment, error) {
	row := s.db.QueryRow(`SELECT `+treatmentCols+` FROM treatments WHERE id = ?`, id)
	t, err := scanTreatment(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get treatment: %w", err)
	}
	return t, nil
}

func (s *TreatmentStore) List() ([]model.Treatment, error) {
	rows, err := s.db.Query(
		`SELECT ` + treatmentCols + ` FROM treatments ORDER BY scheduled_date DESC, start_time`)
	if err != nil {
		return nil, fmt.Errorf("query treatments: %w", err)
	}
	return collectTreatments(rows)
}

func (s *TreatmentStore) ListForTherapist(therapistID int64) ([]model.Treatment, error) {
	rows, err := s.db.Query(
		`SELECT `+qualify(treatmentCols, "t")+` FROM treatments t
		 WHERE `+treatmentVisible+`
		 ORDER BY t.scheduled_date DESC, t.start_time`,
		therapistID, therapistID, therapistID,
	)
	if err != nil {
		return nil, fmt.Errorf("query treatments for therapist: %w", err)
	}
	return collectTreatments(rows)
}

func (s *TreatmentStore) VisibleToTherapist(treatmentID, therapistID int64) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM treatments t WHERE t.id = ? AND `+treatmentVisible,
		treatmentID, therapistID, therapistID, therapistID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check treatment visibility: %w", err)
	}
	return count > 0, nil
}

// ListByDateRange returns treatments scheduled in [start, end), optionally
// restricted to a therapist's visibility scope.
func (s *TreatmentStore) ListByDateRange(start, end time.Time, therapistID *int64) ([]model.Treatment, error) {
	query := `SELECT ` + qualify(treatmentCols, "t") + ` FROM treatments t
		 WHERE t.scheduled_date >= ? AND t.scheduled_date < ?`
	args := []any{start.UTC(), end.UTC()}
	if therapistID != nil {
		query += ` AND ` + treatmentVisible
		args = append(args, *therapistID, *therapistID, *therapistID)
	}
	query += ` ORDER BY t.scheduled_date, t.start_time`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query treatments by date range: %w", err)
	}
	return collectTreatments(rows)
}

func collectTreatments(rows *sql.Rows) ([]model.Treatment, error) {
	defer rows.Close()
	var treatments []model.Treatment
	for rows.Next() {
		t, err := scanTreatment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan treatment: %w", err)
		}
		treatments = append(treatments, *t)
	}
	return treatments, rows.Err()
}

func (s *TreatmentStore) Update(t *model.Treatment) (*model.Treatment, error) {
	_, err := s.db.Exec(
		`UPDATE treatments SET family_id = ?, child_id = ?, therapist_id = ?, type = ?, status = ?,
			scheduled_date = ?, start_time = ?, end_time = ?, summary = ?, next_steps = ?
		 WHERE id = ?`,
		nullID(t.FamilyID), nullID(t.ChildID), nullID(t.TherapistID), t.Type, t.Status,
		t.ScheduledDate.UTC(), t.StartTime, t.EndTime, t.Summary, t.NextSteps, t.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update treatment: %w", err)
	}
	return s.GetByID(t.ID)
}

func (s *TreatmentStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM treatments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete treatment: %w", err)
	}
	return nil
}

// Count counts treatments, optionally scoped to a therapist. When upcomingAfter
// is non-nil only scheduled treatments at or after it are counted.
func (s *TreatmentStore) Count(therapistID *int64, upcomingAfter *time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM treatments t WHERE 1=1`
	var args []any
	if upcomingAfter != nil {
		query += ` AND t.status = ? AND t.scheduled_date >= ?`
		args = append(args, model.StatusScheduled, upcomingAfter.UTC())
	}
	if therapistID != nil {
		query += ` AND ` + treatmentVisible
		args = append(args, *therapistID, *therapistID, *therapistID)
	}

	var count int
	if err := s.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count treatments: %w", err)
	}
	return count, nil
}

// ListRecent returns the most recently scheduled treatments, optionally
// scoped to a therapist.
func (s *TreatmentStore) ListRecent(limit int, therapistID *int64) ([]model.Treatment, error) {
	query := `SELECT ` + qualify(treatmentCols, "t") + ` FROM treatments t`
	var args []any
	if therapistID != nil {
		query += ` WHERE ` + treatmentVisible
		args = append(args, *therapistID, *therapistID, *therapistID)
	}
	query += ` ORDER BY t.scheduled_date DESC, t.start_time LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent treatments: %w", err)
	}
	return collectTreatments(rows)
}
