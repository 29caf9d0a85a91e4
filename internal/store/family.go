package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/avivros/maagan/internal/model"
)

type FamilyStore struct {
	db *sql.DB
}

func NewFamilyStore(db *sql.DB) *FamilyStore {
	return &FamilyStore{db: db}
}

const familyCols = `id, name, address, phone, email, family_status,
	father_name, father_phone, father_email, father_id,
	mother_name, mother_phone, mother_email, mother_id,
	therapist_id, consent_form_key, consent_form_date, waiver_key, waiver_date,
	social_worker_name, social_worker_phone, social_worker_email,
	notes, created_at, updated_at`

func scanFamily(scanner interface{ Scan(...any) error }) (*model.Family, error) {
	var f model.Family
	var therapistID sql.NullInt64
	var consentDate, waiverDate sql.NullTime
	err := scanner.Scan(
		&f.ID, &f.Name, &f.Address, &f.Phone, &f.Email, &f.FamilyStatus,
		&f.FatherName, &f.FatherPhone, &f.FatherEmail, &f.FatherID,
		&f.MotherName, &f.MotherPhone, &f.MotherEmail, &f.MotherID,
		&therapistID, &f.ConsentFormKey, &consentDate, &f.WaiverKey, &waiverDate,
		&f.SocialWorkerName, &f.SocialWorkerPhone, &f.SocialWorkerEmail,
		&f.Notes, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if therapistID.Valid {
		f.TherapistID = &therapistID.Int64
	}
	if consentDate.Valid {
		f.ConsentFormDate = &consentDate.Time
	}
	if waiverDate.Valid {
		f.WaiverDate = &waiverDate.Time
	}
	return &f, nil
}

func nullID(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func (s *FamilyStore) Create(f *model.Family) (*model.Family, error) {
	result, err := s.db.Exec(
		`INSERT INTO families (name, address, phone, email, family_status,
			father_name, father_phone, father_email, father_id,
			mother_name, mother_phone, mother_email, mother_id,
			therapist_id, social_worker_name, social_worker_phone, social_worker_email, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.Name, f.Address, f.Phone, f.Email, f.FamilyStatus,
		f.FatherName, f.FatherPhone, f.FatherEmail, f.FatherID,
		f.MotherName, f.MotherPhone, f.MotherEmail, f.MotherID,
		nullID(f.TherapistID), f.SocialWorkerName, f.SocialWorkerPhone, f.SocialWorkerEmail, f.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert family: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *FamilyStore) GetByID(id int64) (*model.Family, error) {
	row := s.db.QueryRow(`SELECT `+familyCols+` FROM families WHERE id = ?`, id)
	f, err := scanFamily(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get family: %w", err)
	}
	return f, nil
}

func (s *FamilyStore) List() ([]model.Family, error) {
	rows, err := s.db.Query(`SELECT ` + familyCols + ` FROM families ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query families: %w", err)
	}
	return collectFamilies(rows)
}

// ListForTherapist returns families visible to a therapist profile: those
// assigned to it directly, plus those with at least one child assigned to it.
func (s *FamilyStore) ListForTherapist(therapistID int64) ([]model.Family, error) {
	rows, err := s.db.Query(
		`SELECT `+familyCols+` FROM families f
		 WHERE f.therapist_id = ?
		    OR EXISTS (SELECT 1 FROM children c WHERE c.family_id = f.id AND c.therapist_id = ?)
		 ORDER BY f.name`,
		therapistID, therapistID,
	)
	if err != nil {
		return nil, fmt.Errorf("query families for therapist: %w", err)
	}
	return collectFamilies(rows)
}

// VisibleToTherapist reports whether a single family is within a
// therapist's visibility scope.
func (s *FamilyStore) VisibleToTherapist(familyID, therapistID int64) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM families f
		 WHERE f.id = ?
		   AND (f.therapist_id = ?
		        OR EXISTS (SELECT 1 FROM children c WHERE c.family_id = f.id AND c.therapist_id = ?))`,
		familyID, therapistID, therapistID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check family visibility: %w", err)
	}
	return count > 0, nil
}

func collectFamilies(rows *sql.Rows) ([]model.Family, error) {
	defer rows.Close()
	var families []model.Family
	for rows.Next() {
		f, err := scanFamily(rows)
		if err != nil {
			return nil, fmt.Errorf("scan family: %w", err)
		}
		families = append(families, *f)
	}
	return families, rows.Err()
}

func (s *FamilyStore) Update(f *model.Family) (*model.Family, error) {
	_, err := s.db.Exec(
		`UPDATE families SET name = ?, address = ?, phone = ?, email = ?, family_status = ?,
			father_name = ?, father_phone = ?, father_email = ?, father_id = ?,
			mother_name = ?, mother_phone = ?, mother_email = ?, mother_id = ?,
			therapist_id = ?, social_worker_name = ?, social_worker_phone = ?, social_worker_email = ?, notes = ?
		 WHERE id = ?`,
		f.Name, f.Address, f.Phone, f.Email, f.FamilyStatus,
		f.FatherName, f.FatherPhone, f.FatherEmail, f.FatherID,
		f.MotherName, f.MotherPhone, f.MotherEmail, f.MotherID,
		nullID(f.TherapistID), f.SocialWorkerName, f.SocialWorkerPhone, f.SocialWorkerEmail, f.Notes,
		f.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update family: %w", err)
	}
	return s.GetByID(f.ID)
}

// SetConsentForm records the stored blob key and upload date for the
// family's consent form.
func (s *FamilyStore) SetConsentForm(id int64, key string, date time.Time) error {
	_, err := s.db.Exec(
		`UPDATE families SET consent_form_key = ?, consent_form_date = ? WHERE id = ?`,
		key, date.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set consent form: %w", err)
	}
	return nil
}

// SetWaiver records the stored blob key and upload date for the family's
// confidentiality waiver.
func (s *FamilyStore) SetWaiver(id int64, key string, date time.Time) error {
	_, err := s.db.Exec(
		`UPDATE families SET waiver_key = ?, waiver_date = ? WHERE id = ?`,
		key, date.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set waiver: %w", err)
	}
	return nil
}

func (s *FamilyStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM families WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete family: %w", err)
	}
	return nil
}

// Count counts families, optionally restricted to a therapist's scope.
func (s *FamilyStore) Count(therapistID *int64) (int, error) {
	var count int
	var err error
	if therapistID == nil {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM families`).Scan(&count)
	} else {
		err = s.db.QueryRow(
			`SELECT COUNT(*) FROM families f
			 WHERE f.therapist_id = ?
			    OR EXISTS (SELECT 1 FROM children c WHERE c.family_id = f.id AND c.therapist_id = ?)`,
			*therapistID, *therapistID,
		).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count families: %w", err)
	}
	return count, nil
}

// ListRecent returns the most recently created families, optionally
// restricted to a therapist's scope.
func (s *FamilyStore) ListRecent(limit int, therapistID *int64) ([]model.Family, error) {
	var rows *sql.Rows
	var err error
	if therapistID == nil {
		rows, err = s.db.Query(
			`SELECT `+familyCols+` FROM families ORDER BY created_at DESC LIMIT ?`, limit)
	} else {
		rows, err = s.db.Query(
			`SELECT `+familyCols+` FROM families f
			 WHERE f.therapist_id = ?
			    OR EXISTS (SELECT 1 FROM children c WHERE c.family_id = f.id AND c.therapist_id = ?)
			 ORDER BY f.created_at DESC LIMIT ?`,
			*therapistID, *therapistID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("query recent families: %w", err)
	}
	return collectFamilies(rows)
}

// CountCreatedSince counts families created at or after the cutoff,
// optionally restricted to a therapist's visibility scope.
func (s *FamilyStore) CountCreatedSince(cutoff time.Time, therapistID *int64) (int, error) {
	var count int
	var err error
	if therapistID == nil {
		err = s.db.QueryRow(
			`SELECT COUNT(*) FROM families WHERE created_at >= ?`, cutoff.UTC(),
		).Scan(&count)
	} else {
		err = s.db.QueryRow(
			`SELECT COUNT(*) FROM families f
			 WHERE f.created_at >= ?
			   AND (f.therapist_id = ?
			        OR EXISTS (SELECT 1 FROM children c WHERE c.family_id = f.id AND c.therapist_id = ?))`,
			cutoff.UTC(), *therapistID, *therapistID,
		).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count families: %w", err)
	}
	return count, nil
}
