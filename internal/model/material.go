package model

import "time"

// Material is a delivered shipment identified by its transport document
// (DDT) number, which is unique across the project. Only NonConformity and
// Notes may change after creation.
type Material struct {
	ID            uint64    `json:"id"`             // materials.id
	DDTNumber     string    `json:"ddt_number"`     // materials.ddt_number (unique)
	PackingList   *string   `json:"packing_list"`   // materials.packing_list (nullable)
	ContainerID   *string   `json:"container_id"`   // materials.container_id (nullable)
	BatchNumber   string    `json:"batch_number"`   // materials.batch_number
	NonConformity bool      `json:"non_conformity"` // materials.non_conformity
	Notes         *string   `json:"notes"`          // materials.notes (nullable)
	CreatedAt     time.Time `json:"created_at"`     // materials.created_at
}
