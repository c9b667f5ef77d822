package model

import "time"

// Document file kinds.
const (
	FileTypePhoto = "photo"
	FileTypePDF   = "pdf"
)

// Document is an uploaded photo or PDF. It may be attached to a material,
// a daily log, both, or neither.
type Document struct {
	ID         uint64    `json:"id"`          // documents.id
	FilePath   string    `json:"file_path"`   // documents.file_path
	FileType   string    `json:"file_type"`   // documents.file_type
	Notes      *string   `json:"notes"`       // documents.notes (nullable)
	MaterialID *uint64   `json:"material_id"` // documents.material_id (nullable)
	LogID      *uint64   `json:"log_id"`      // documents.log_id (nullable)
	CreatedAt  time.Time `json:"created_at"`  // documents.created_at
}
