package producer

import (
	"time"

	"github.com/google/uuid"

	"github.com/apper-canvas/employee-registry-backend/internal/dto"
)

type Kind string

const (
	KindCreated Kind = "employee.created"
	KindUpdated Kind = "employee.updated"
	KindDeleted Kind = "employee.deleted"
)

// Envelope is a lifecycle event about one employee record.
type Envelope struct {
	Kind       Kind               `json:"kind"        example:"employee.created"`                     // Event type
	MessageID  uuid.UUID          `json:"message_id"  example:"c7e06db5-4b71-4c54-9334-3f9a6e6c5d0e"` // Event identifier (UUID v4)
	RecordID   string             `json:"record_id"   example:"6b6f9c38-3e2a-4b3d-9a9a-9f1c0f8b2a10"` // Store identifier of the record
	EmployeeID string             `json:"employee_id" example:"EMP001"`                               // Business identifier
	Payload    dto.EmployeeRecord `json:"payload"`                                                    // Record state after the change (before, for deletes)
	Timestamp  time.Time          `json:"timestamp"   example:"2026-10-19T12:34:56Z"`                 // When the event was produced
	Source     string             `json:"source"      example:"employee-registry"`                    // Producing service
}
