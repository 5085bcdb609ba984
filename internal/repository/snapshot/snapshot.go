// Package snapshot provides durable homes for the full employee collection.
//
// Every backend stores one opaque payload under one name and overwrites it on
// each save; the last snapshot wins.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/apper-canvas/employee-registry-backend/internal/dto"
)

const SchemaVersion = 1

var (
	ErrNoSnapshot         = errors.New("snapshot not found")
	ErrUnsupportedVersion = errors.New("unsupported snapshot schema version")
)

type Snapshotter interface {
	// Load returns ErrNoSnapshot when nothing has been saved yet.
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, payload []byte) error
}

type document struct {
	SchemaVersion int                  `json:"schemaVersion"`
	SavedAt       time.Time            `json:"savedAt"`
	Employees     []dto.EmployeeRecord `json:"employees"`
}

func Encode(records []dto.EmployeeRecord, savedAt time.Time) ([]byte, error) {
	if records == nil {
		records = []dto.EmployeeRecord{}
	}

	b, err := json.Marshal(document{
		SchemaVersion: SchemaVersion,
		SavedAt:       savedAt.UTC(),
		Employees:     records,
	})
	if err != nil {
		return nil, fmt.Errorf("json.Marshal: %w", err)
	}

	return b, nil
}

// Decode accepts the versioned document and the bare array written before
// versioning existed.
func Decode(payload []byte) ([]dto.EmployeeRecord, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 {
		return nil, ErrNoSnapshot
	}

	if trimmed[0] == '[' {
		var out []dto.EmployeeRecord
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, fmt.Errorf("json.Unmarshal legacy snapshot: %w", err)
		}
		return out, nil
	}

	var doc document
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}
	if doc.SchemaVersion < 1 || doc.SchemaVersion > SchemaVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, doc.SchemaVersion)
	}

	return doc.Employees, nil
}
