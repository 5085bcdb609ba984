package dto

import (
	"time"
)

// EmployeeRecord is a persisted new-employee record.
type EmployeeRecord struct {
	ID               string           `json:"id" example:"6b6f9c38-3e2a-4b3d-9a9a-9f1c0f8b2a10"`   // System-generated identifier, immutable
	FullName         string           `json:"fullName" example:"Anna Ivanova"`                     // Full name
	EmployeeID       string           `json:"employeeId" example:"EMP001"`                         // Business identifier, unique
	Email            string           `json:"email" example:"anna.ivanova@company.com"`            // Work email, unique
	Phone            string           `json:"phone" example:"+1 (555) 123-4567"`                   // Phone
	Department       string           `json:"department" example:"Engineering"`                    // One of Departments
	Designation      string           `json:"designation" example:"Developer"`                     // One of Designations
	DateOfJoining    string           `json:"dateOfJoining" example:"2026-03-01"`                  // YYYY-MM-DD
	EmergencyContact EmergencyContact `json:"emergencyContact"`                                    // Emergency contact
	Resume           *ResumeMetadata  `json:"resumeFile,omitempty"`                                // Uploaded document metadata
	Notes            string           `json:"notes,omitempty" example:"Prefers remote onboarding"` // Free-form notes, up to 500 characters
	SubmittedAt      time.Time        `json:"submittedAt"`                                         // Set by the store on create
	UpdatedAt        *time.Time       `json:"updatedAt,omitempty"`                                 // Set by the store on update
}

// EmergencyContact is who to call for an employee.
type EmergencyContact struct {
	Name         string `json:"name" example:"Pavel Ivanov"`              // Contact name
	Relationship string `json:"relationship" example:"Spouse"`            // One of Relationships
	Phone        string `json:"phone" example:"+1 555 987 6543"`          // Contact phone
	Email        string `json:"email,omitempty" example:"pavel@mail.com"` // Optional contact email
}

// Clone returns a deep copy, so callers never share pointers with the store.
func (e EmployeeRecord) Clone() EmployeeRecord {
	out := e
	if e.Resume != nil {
		r := *e.Resume
		out.Resume = &r
	}
	if e.UpdatedAt != nil {
		t := *e.UpdatedAt
		out.UpdatedAt = &t
	}
	return out
}

// EmployeePatch is a partial update; nil fields are left untouched.
// ID, SubmittedAt and UpdatedAt are owned by the store and cannot be patched.
type EmployeePatch struct {
	FullName         *string           `json:"fullName,omitempty"`
	EmployeeID       *string           `json:"employeeId,omitempty"`
	Email            *string           `json:"email,omitempty"`
	Phone            *string           `json:"phone,omitempty"`
	Department       *string           `json:"department,omitempty"`
	Designation      *string           `json:"designation,omitempty"`
	DateOfJoining    *string           `json:"dateOfJoining,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergencyContact,omitempty"`
	Resume           *ResumeMetadata   `json:"resumeFile,omitempty"`
	Notes            *string           `json:"notes,omitempty"`
}

// Apply copies every non-nil patch field onto rec.
func (p EmployeePatch) Apply(rec *EmployeeRecord) {
	if p.FullName != nil {
		rec.FullName = *p.FullName
	}
	if p.EmployeeID != nil {
		rec.EmployeeID = *p.EmployeeID
	}
	if p.Email != nil {
		rec.Email = *p.Email
	}
	if p.Phone != nil {
		rec.Phone = *p.Phone
	}
	if p.Department != nil {
		rec.Department = *p.Department
	}
	if p.Designation != nil {
		rec.Designation = *p.Designation
	}
	if p.DateOfJoining != nil {
		rec.DateOfJoining = *p.DateOfJoining
	}
	if p.EmergencyContact != nil {
		rec.EmergencyContact = *p.EmergencyContact
	}
	if p.Resume != nil {
		r := *p.Resume
		rec.Resume = &r
	}
	if p.Notes != nil {
		rec.Notes = *p.Notes
	}
}
