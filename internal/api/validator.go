package api

import (
	"strings"

	"github.com/apper-canvas/employee-registry-backend/internal/dto"
	"github.com/apper-canvas/employee-registry-backend/internal/validation"
)

// patchedFields lists the fields a patch touches. The emergency contact is
// replaced as a whole, so all of its fields count as touched.
func patchedFields(p dto.EmployeePatch) []validation.Field {
	var out []validation.Field

	add := func(set bool, fields ...validation.Field) {
		if set {
			out = append(out, fields...)
		}
	}

	add(p.FullName != nil, validation.FieldFullName)
	add(p.EmployeeID != nil, validation.FieldEmployeeID)
	add(p.Email != nil, validation.FieldEmail)
	add(p.Phone != nil, validation.FieldPhone)
	add(p.Department != nil, validation.FieldDepartment)
	add(p.Designation != nil, validation.FieldDesignation)
	add(p.DateOfJoining != nil, validation.FieldDateOfJoining)
	add(p.EmergencyContact != nil,
		validation.FieldEmergencyName,
		validation.FieldEmergencyRelationship,
		validation.FieldEmergencyPhone,
		validation.FieldEmergencyEmail,
	)
	add(p.Resume != nil, validation.FieldResume)
	add(p.Notes != nil, validation.FieldNotes)

	return out
}

func trimPtr(p *string) {
	if p != nil {
		*p = strings.TrimSpace(*p)
	}
}

func trimPatch(p *dto.EmployeePatch) {
	trimPtr(p.FullName)
	trimPtr(p.EmployeeID)
	trimPtr(p.Email)
	trimPtr(p.Phone)
	trimPtr(p.Department)
	trimPtr(p.Designation)
	trimPtr(p.DateOfJoining)
	trimPtr(p.Notes)
	if c := p.EmergencyContact; c != nil {
		c.Name = strings.TrimSpace(c.Name)
		c.Relationship = strings.TrimSpace(c.Relationship)
		c.Phone = strings.TrimSpace(c.Phone)
		c.Email = strings.TrimSpace(c.Email)
	}
}

// validatePatch runs the field rules for every touched field against the
// record as it would look after the patch.
func validatePatch(v *validation.Validator, current dto.EmployeeRecord, p dto.EmployeePatch) map[validation.Field]string {
	candidate := current.Clone()
	p.Apply(&candidate)

	out := make(map[validation.Field]string)
	for _, f := range patchedFields(p) {
		if fe := v.Check(f, validation.Value(f, candidate), candidate); fe != nil {
			out[f] = fe.Message
		}
	}
	return out
}
