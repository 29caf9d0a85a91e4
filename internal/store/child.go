package store

import (
	"database/sql"
	"fmt"

	"github.com/avivros/maagan/internal/model"
)

type ChildStore struct {
	db *sql.DB
}

func NewChildStore(db *sql.DB) *ChildStore {
	return &ChildStore{db: db}
}

const childCols = `id, family_id, name, birth_date, gender, school, grade,
	teacher_name, teacher_phone, counselor_name, counselor_phone,
	allergies, medications, special_needs, medical_info, notes,
	therapist_id, created_at, updated_at`

func scanChild(scanner interface{ Scan(...any) error }) (*model.Child, error) {
	var c model.Child
	var therapistID sql.NullInt64
	err := scanner.Scan(
		&c.ID, &c.FamilyID, &c.Name, &c.BirthDate, &c.Gender, &c.School, &c.Grade,
		&c.TeacherName, &c.TeacherPhone, &c.CounselorName, &c.CounselorPhone,
		&c.Allergies, &c.Medications, &c.SpecialNeeds, &c.MedicalInfo, &c.Notes,
		&therapistID, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if therapistID.Valid {
		c.TherapistID = &therapistID.Int64
	}
	return &c, nil
}

func (s *ChildStore) Create(c *model.Child) (*model.Child, error) {
	result, err := s.db.Exec(
		`INSERT INTO children (family_id, name, birth_date, gender, school, grade,
			teacher_name, teacher_phone, counselor_name, counselor_phone,
			allergies, medications, special_needs, medical_info, notes, therapist_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.FamilyID, c.Name, c.BirthDate.UTC(), c.Gender, c.School, c.Grade,
		c.TeacherName, c.TeacherPhone, c.CounselorName, c.CounselorPhone,
		c.Allergies, c.Medications, c.SpecialNeeds, c.MedicalInfo, c.Notes,
		nullID(c.TherapistID),
	)
	if err != nil {
		return nil, fmt.Errorf("insert child: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *ChildStore) GetByID(id int64) (*model.Child, error) {
	row := s.db.QueryRow(`SELECT `+childCols+` FROM children WHERE id = ?`, id)
	c, err := scanChild(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get child: %w", err)
	}
	return c, nil
}

func (s *ChildStore) List() ([]model.Child, error) {
	rows, err := s.db.Query(`SELECT ` + childCols + ` FROM children ORDER BY family_id, name`)
	if err != nil {
		return nil, fmt.Errorf("query children: %w", err)
	}
	return collectChildren(rows)
}

func (s *ChildStore) ListByFamily(familyID int64) ([]model.Child, error) {
	rows, err := s.db.Query(`SELECT `+childCols+` FROM children WHERE family_id = ? ORDER BY name`, familyID)
	if err != nil {
		return nil, fmt.Errorf("query children by family: %w", err)
	}
	return collectChildren(rows)
}

// ListForTherapist returns children visible to a therapist profile: those
// assigned directly, plus those whose family is assigned to it.
func (s *ChildStore) ListForTherapist(therapistID int64) ([]model.Child, error) {
	rows, err := s.db.Query(
		`SELECT `+qualify(childCols, "c")+` FROM children c
		 JOIN families f ON f.id = c.family_id
		 WHERE c.therapist_id = ? OR f.therapist_id = ?
		 ORDER BY c.family_id, c.name`,
		therapistID, therapistID,
	)
	if err != nil {
		return nil, fmt.Errorf("query children for therapist: %w", err)
	}
	return collectChildren(rows)
}

// VisibleToTherapist reports whether a single child is within a therapist's
// visibility scope.
func (s *ChildStore) VisibleToTherapist(childID, therapistID int64) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM children c
		 JOIN families f ON f.id = c.family_id
		 WHERE c.id = ? AND (c.therapist_id = ? OR f.therapist_id = ?)`,
		childID, therapistID, therapistID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check child visibility: %w", err)
	}
	return count > 0, nil
}

func collectChildren(rows *sql.Rows) ([]model.Child, error) {
	defer rows.Close()
	var children []model.Child
	for rows.Next() {
		c, err := scanChild(rows)
		if err != nil {
			return nil, fmt.Errorf("scan child: %w", err)
		}
		children = append(children, *c)
	}
	return children, rows.Err()
}

func (s *ChildStore) Update(c *model.Child) (*model.Child, error) {
	_, err := s.db.Exec(
		`UPDATE children SET family_id = ?, name = ?, birth_date = ?, gender = ?, school = ?, grade = ?,
			teacher_name = ?, teacher_phone = ?, counselor_name = ?, counselor_phone = ?,
			allergies = ?, medications = ?, special_needs = ?, medical_info = ?, notes = ?, therapist_id = ?
		 WHERE id = ?`,
		c.FamilyID, c.Name, c.BirthDate.UTC(), c.Gender, c.School, c.Grade,
		c.TeacherName, c.TeacherPhone, c.CounselorName, c.CounselorPhone,
		c.Allergies, c.Medications, c.SpecialNeeds, c.MedicalInfo, c.Notes,
		nullID(c.TherapistID), c.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update child: %w", err)
	}
	return s.GetByID(c.ID)
}

func (s *ChildStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM children WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete child: %w", err)
	}
	return nil
}

// Count counts children, optionally restricted to a therapist's scope.
func (s *ChildStore) Count(therapistID *int64) (int, error) {
	var count int
	var err error
	if therapistID == nil {
		err = s.db.QueryRow(`SELECT COUNT(*) FROM children`).Scan(&count)
	} else {
		err = s.db.QueryRow(
			`SELECT COUNT(*) FROM children c
			 JOIN families f ON f.id = c.family_id
			 WHERE c.therapist_id = ? OR f.therapist_id = ?`,
			*therapistID, *therapistID,
		).Scan(&count)
	}
	if err != nil {
		return 0, fmt.Errorf("count children: %w", err)
	}
	return count, nil
}
