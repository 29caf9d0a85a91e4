package store

import (
	"database/sql"
	"fmt"

	"github.com/avivros/maagan/internal/model"
)

type TherapistStore struct {
	db *sql.DB
}

func NewTherapistStore(db *sql.DB) *TherapistStore {
	return &TherapistStore{db: db}
}

const therapistCols = `t.id, t.user_id, t.phone, t.specialization, t.active, t.notes, t.created_at, t.updated_at, u.name, u.email`

func scanTherapist(scanner interface{ Scan(...any) error }) (*model.TherapistProfile, error) {
	var p model.TherapistProfile
	err := scanner.Scan(&p.ID, &p.UserID, &p.Phone, &p.Specialization, &p.Active, &p.Notes,
		&p.CreatedAt, &p.UpdatedAt, &p.Name, &p.Email)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *TherapistStore) Create(userID int64, phone, specialization string, active bool, notes string) (*model.TherapistProfile, error) {
	result, err := s.db.Exec(
		`INSERT INTO therapist_profiles (user_id, phone, specialization, active, notes) VALUES (?, ?, ?, ?, ?)`,
		userID, phone, specialization, active, notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert therapist profile: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TherapistStore) GetByID(id int64) (*model.TherapistProfile, error) {
	row := s.db.QueryRow(
		`SELECT `+therapistCols+` FROM therapist_profiles t JOIN users u ON u.id = t.user_id WHERE t.id = ?`, id)
	p, err := scanTherapist(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get therapist profile: %w", err)
	}
	return p, nil
}

func (s *TherapistStore) GetByUserID(userID int64) (*model.TherapistProfile, error) {
	row := s.db.QueryRow(
		`SELECT `+therapistCols+` FROM therapist_profiles t JOIN users u ON u.id = t.user_id WHERE t.user_id = ?`, userID)
	p, err := scanTherapist(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get therapist profile by user: %w", err)
	}
	return p, nil
}

func (s *TherapistStore) List() ([]model.TherapistProfile, error) {
	rows, err := s.db.Query(
		`SELECT ` + therapistCols + ` FROM therapist_profiles t JOIN users u ON u.id = t.user_id ORDER BY u.name`)
	if err != nil {
		return nil, fmt.Errorf("query therapist profiles: %w", err)
	}
	defer rows.Close()

	var profiles []model.TherapistProfile
	for rows.Next() {
		p, err := scanTherapist(rows)
		if err != nil {
			return nil, fmt.Errorf("scan therapist profile: %w", err)
		}
		profiles = append(profiles, *p)
	}
	return profiles, rows.Err()
}

func (s *TherapistStore) Update(id int64, phone, specialization string, active bool, notes string) (*model.TherapistProfile, error) {
	_, err := s.db.Exec(
		`UPDATE therapist_profiles SET phone = ?, specialization = ?, active = ?, notes = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		phone, specialization, active, notes, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update therapist profile: %w", err)
	}
	return s.GetByID(id)
}

func (s *TherapistStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM therapist_profiles WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete therapist profile: %w", err)
	}
	return nil
}
