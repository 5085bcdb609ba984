package consumer

import (
	"time"

	"github.com/google/uuid"

	"github.com/apper-canvas/employee-registry-backend/internal/dto"
)

type Envelope[T any] struct {
	Kind       string    `json:"kind"` // onboarding
	MessageID  uuid.UUID `json:"message_id"`
	EmployeeID string    `json:"employee_id"`
	Payload    T         `json:"payload"`
	Timestamp  time.Time `json:"timestamp"`
	Source     string    `json:"source"` // source service
}

// OnboardingPayload is a filled-in form sent by an upstream system. Store-owned
// fields (id, submittedAt, updatedAt) are ignored.
type OnboardingPayload = dto.EmployeeRecord
