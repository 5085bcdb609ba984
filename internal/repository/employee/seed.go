package employee

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/apper-canvas/employee-registry-backend/internal/dto"
)

//go:embed seed/employees.json
var seedJSON []byte

// Seed returns the bundled starter records.
func Seed() ([]dto.EmployeeRecord, error) {
	var out []dto.EmployeeRecord
	if err := json.Unmarshal(seedJSON, &out); err != nil {
		return nil, fmt.Errorf("json.Unmarshal: %w", err)
	}
	return out, nil
}
