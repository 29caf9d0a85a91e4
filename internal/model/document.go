package model

import "time"

type DocumentType string

const (
	DocMedical       DocumentType = "medical"
	DocEducational   DocumentType = "educational"
	DocPsychological DocumentType = "psychological"
	DocFinancial     DocumentType = "financial"
	DocOther         DocumentType = "other"
)

func (t DocumentType) Valid() bool {
	switch t {
	case DocMedical, DocEducational, DocPsychological, DocFinancial, DocOther:
		return true
	}
	return false
}

// Document is file metadata attached to a family or a child. When ChildID
// is set, FamilyID is derived from the child and kept consistent.
type Document struct {
	ID       int64        `json:"id"`
	FamilyID *int64       `json:"family_id"`
	ChildID  *int64       `json:"child_id"`
	Name     string       `json:"name"`
	Type     DocumentType `json:"document_type"`
	FileKey  string       `json:"file_key"`
	Notes    string       `json:"notes"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
