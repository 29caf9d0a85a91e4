package store

import (
	"database/sql"
	"fmt"

	"github.com/avivros/maagan/internal/model"
)

type DocumentStore struct {
	db *sql.DB
}

func NewDocumentStore(db *sql.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

const documentCols = `id, family_id, child_id, name, document_type, file_key, notes, created_at, updated_at`

// Documents carry no therapist column; visibility is transitive through
// the owning family or child.
const documentVisible = `(EXISTS (SELECT 1 FROM families f WHERE f.id = d.family_id
	AND (f.therapist_id = ?
	     OR EXISTS (SELECT 1 FROM children c WHERE c.family_id = f.id AND c.therapist_id = ?)))
	OR EXISTS (SELECT 1 FROM children c JOIN families f ON f.id = c.family_id
	           WHERE c.id = d.child_id AND (c.therapist_id = ? OR f.therapist_id = ?)))`

func scanDocument(scanner interface{ Scan(...any) error }) (*model.Document, error) {
	var d model.Document
	var familyID, childID sql.NullInt64
	err := scanner.Scan(&d.ID, &familyID, &childID, &d.Name, &d.Type, &d.FileKey,
		&d.Notes, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if familyID.Valid {
		d.FamilyID = &familyID.Int64
	}
	if childID.Valid {
		d.ChildID = &childID.Int64
	}
	return &d, nil
}

func (s *DocumentStore) Create(d *model.Document) (*model.Document, error) {
	result, err := s.db.Exec(
		`INSERT INTO documents (family_id, child_id, name, document_type, file_key, notes)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		nullID(d.FamilyID), nullID(d.ChildID), d.Name, d.Type, d.FileKey, d.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert document: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *DocumentStore) GetByID(id int64) (*model.Document, error) {
	row := s.db.QueryRow(`SELECT `+documentCols+` FROM documents WHERE id = ?`, id)
	d, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return d, nil
}

func (s *DocumentStore) List() ([]model.Document, error) {
	rows, err := s.db.Query(`SELECT ` + documentCols + ` FROM documents ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query documents: %w", err)
	}
	return collectDocuments(rows)
}

func (s *DocumentStore) ListByFamily(familyID int64) ([]model.Document, error) {
	rows, err := s.db.Query(
		`SELECT `+documentCols+` FROM documents WHERE family_id = ? ORDER BY created_at DESC`, familyID)
	if err != nil {
		return nil, fmt.Errorf("query documents by family: %w", err)
	}
	return collectDocuments(rows)
}

func (s *DocumentStore) ListForTherapist(therapistID int64) ([]model.Document, error) {
	rows, err := s.db.Query(
		`SELECT `+qualify(documentCols, "d")+` FROM documents d
		 WHERE `+documentVisible+`
		 ORDER BY d.created_at DESC`,
		therapistID, therapistID, therapistID, therapistID,
	)
	if err != nil {
		return nil, fmt.Errorf("query documents for therapist: %w", err)
	}
	return collectDocuments(rows)
}

func (s *DocumentStore) VisibleToTherapist(documentID, therapistID int64) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM documents d WHERE d.id = ? AND `+documentVisible,
		documentID, therapistID, therapistID, therapistID, therapistID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("check document visibility: %w", err)
	}
	return count > 0, nil
}

func collectDocuments(rows *sql.Rows) ([]model.Document, error) {
	defer rows.Close()
	var documents []model.Document
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		documents = append(documents, *d)
	}
	return documents, rows.Err()
}

func (s *DocumentStore) Update(d *model.Document) (*model.Document, error) {
	_, err := s.db.Exec(
		`UPDATE documents SET family_id = ?, child_id = ?, name = ?, document_type = ?, file_key = ?, notes = ?
		 WHERE id = ?`,
		nullID(d.FamilyID), nullID(d.ChildID), d.Name, d.Type, d.FileKey, d.Notes, d.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update document: %w", err)
	}
	return s.GetByID(d.ID)
}

func (s *DocumentStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM documents WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return nil
}
