package validation

import (
	"fmt"

	"github.com/apper-canvas/employee-registry-backend/internal/dto"
)

// Field identifies one input of the onboarding form. Paths are derived from
// the table below, so a misspelt path cannot create an orphaned error entry.
type Field uint8

const (
	FieldFullName Field = iota + 1
	FieldEmployeeID
	FieldEmail
	FieldPhone
	FieldDepartment
	FieldDesignation
	FieldDateOfJoining
	FieldEmergencyName
	FieldEmergencyRelationship
	FieldEmergencyPhone
	FieldEmergencyEmail
	FieldNotes
	FieldResume
)

var fieldPaths = map[Field]string{
	FieldFullName:              "fullName",
	FieldEmployeeID:            "employeeId",
	FieldEmail:                 "email",
	FieldPhone:                 "phone",
	FieldDepartment:            "department",
	FieldDesignation:           "designation",
	FieldDateOfJoining:         "dateOfJoining",
	FieldEmergencyName:         "emergencyContact.name",
	FieldEmergencyRelationship: "emergencyContact.relationship",
	FieldEmergencyPhone:        "emergencyContact.phone",
	FieldEmergencyEmail:        "emergencyContact.email",
	FieldNotes:                 "notes",
	FieldResume:                "resumeFile",
}

// RequiredFields is the fixed, ordered list the completion percentage counts.
var RequiredFields = []Field{
	FieldFullName,
	FieldEmployeeID,
	FieldEmail,
	FieldPhone,
	FieldDepartment,
	FieldDesignation,
	FieldDateOfJoining,
	FieldEmergencyName,
	FieldEmergencyRelationship,
	FieldEmergencyPhone,
}

// AllFields lists every validated field, required ones first.
var AllFields = append(append([]Field{}, RequiredFields...),
	FieldEmergencyEmail,
	FieldNotes,
	FieldResume,
)

func (f Field) Path() string {
	if p, ok := fieldPaths[f]; ok {
		return p
	}
	return fmt.Sprintf("field(%d)", uint8(f))
}

func (f Field) String() string { return f.Path() }

func (f Field) MarshalText() ([]byte, error) {
	if _, ok := fieldPaths[f]; !ok {
		return nil, fmt.Errorf("unknown field %d", uint8(f))
	}
	return []byte(f.Path()), nil
}

func (f *Field) UnmarshalText(b []byte) error {
	parsed, ok := ParseField(string(b))
	if !ok {
		return fmt.Errorf("unknown field %q", string(b))
	}
	*f = parsed
	return nil
}

// ParseField maps a dotted path such as "emergencyContact.phone" to its Field.
func ParseField(path string) (Field, bool) {
	for f, p := range fieldPaths {
		if p == path {
			return f, true
		}
	}
	return 0, false
}

// Value reads the raw text of a field from rec. The resume has no text form
// and reads as its file name.
func Value(f Field, rec dto.EmployeeRecord) string {
	switch f {
	case FieldFullName:
		return rec.FullName
	case FieldEmployeeID:
		return rec.EmployeeID
	case FieldEmail:
		return rec.Email
	case FieldPhone:
		return rec.Phone
	case FieldDepartment:
		return rec.Department
	case FieldDesignation:
		return rec.Designation
	case FieldDateOfJoining:
		return rec.DateOfJoining
	case FieldEmergencyName:
		return rec.EmergencyContact.Name
	case FieldEmergencyRelationship:
		return rec.EmergencyContact.Relationship
	case FieldEmergencyPhone:
		return rec.EmergencyContact.Phone
	case FieldEmergencyEmail:
		return rec.EmergencyContact.Email
	case FieldNotes:
		return rec.Notes
	case FieldResume:
		if rec.Resume != nil {
			return rec.Resume.FileName
		}
	}
	return ""
}

// Set writes a text field into rec. The resume is not a text field.
func Set(f Field, rec *dto.EmployeeRecord, value string) error {
	switch f {
	case FieldFullName:
		rec.FullName = value
	case FieldEmployeeID:
		rec.EmployeeID = value
	case FieldEmail:
		rec.Email = value
	case FieldPhone:
		rec.Phone = value
	case FieldDepartment:
		rec.Department = value
	case FieldDesignation:
		rec.Designation = value
	case FieldDateOfJoining:
		rec.DateOfJoining = value
	case FieldEmergencyName:
		rec.EmergencyContact.Name = value
	case FieldEmergencyRelationship:
		rec.EmergencyContact.Relationship = value
	case FieldEmergencyPhone:
		rec.EmergencyContact.Phone = value
	case FieldEmergencyEmail:
		rec.EmergencyContact.Email = value
	case FieldNotes:
		rec.Notes = value
	default:
		return fmt.Errorf("field %s is not a text field", f)
	}
	return nil
}
