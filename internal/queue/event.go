// Package queue defines site event payloads exchanged over the message
// broker, plus the publisher and the log-writing consumer.
package queue

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types.
const (
	TypeMaterialCreated       = "material.created"
	TypeMaterialNonConformity = "material.nonconformity"
	TypeDocumentUploaded      = "document.uploaded"
	TypeDocumentDeleted       = "document.deleted"
	TypeOverdueDigest         = "progress.overdue_digest"
)

// Event is the envelope put on the queue. Data holds one of the payload
// structs below, selected by Type.
type Event struct {
	Type       string          `json:"type"`
	OccurredAt string          `json:"occurred_at"`
	Actor      string          `json:"actor,omitempty"`
	Data       json.RawMessage `json:"data"`
}

// MaterialEvent is carried by material.created and material.nonconformity.
type MaterialEvent struct {
	MaterialID    uint64 `json:"material_id"`
	DDTNumber     string `json:"ddt_number"`
	BatchNumber   string `json:"batch_number"`
	Source        string `json:"source,omitempty"` // manual | ocr
	NonConformity bool   `json:"non_conformity"`
	Notes         string `json:"notes,omitempty"`
}

// DocumentEvent is carried by document.uploaded and document.deleted.
type DocumentEvent struct {
	DocumentID uint64  `json:"document_id"`
	FilePath   string  `json:"file_path"`
	FileType   string  `json:"file_type"`
	MaterialID *uint64 `json:"material_id,omitempty"`
	LogID      *uint64 `json:"log_id,omitempty"`
}

// DigestEvent summarises schedule health; emitted by the daily job.
type DigestEvent struct {
	OverallProgressPercent float64  `json:"overall_progress_percent"`
	OverdueMilestones      int      `json:"overdue_milestones"`
	Overdue                []string `json:"overdue,omitempty"`
}

// NewEvent wraps data in an envelope stamped with at (UTC, RFC 3339).
func NewEvent(typ, actor string, at time.Time, data any) (Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return Event{
		Type:       typ,
		OccurredAt: at.UTC().Format(time.RFC3339),
		Actor:      actor,
		Data:       raw,
	}, nil
}
