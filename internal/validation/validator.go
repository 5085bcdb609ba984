// Package validation holds the per-field rules of the onboarding form.
//
// Every rule is pure: given a field, its raw value and the rest of the form it
// returns nil or a *FieldError. The same rules run on each keystroke and again
// in aggregate at submit time.
package validation

import (
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/apper-canvas/employee-registry-backend/internal/dto"
)

const (
	DateLayout    = "2006-01-02"
	MaxNotesChars = 500
)

var (
	regexEmployeeID = regexp.MustCompile(`^[A-Z0-9]{3,10}$`)
	regexEmail      = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	regexPhone      = regexp.MustCompile(`^[0-9\s+\-()]{10,15}$`)
)

// FieldError is a single rejected field.
type FieldError struct {
	Field   Field  `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return e.Field.Path() + ": " + e.Message
}

type Validator struct {
	now func() time.Time
	loc *time.Location
}

type Option func(*Validator)

// WithClock fixes "today" for the date-of-joining window.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) { v.now = now }
}

// WithLocation sets the calendar the joining date is interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(v *Validator) { v.loc = loc }
}

func New(opts ...Option) *Validator {
	v := &Validator{now: time.Now, loc: time.Local}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Check validates one field. snapshot is the rest of the form; it supplies
// the resume metadata, which has no raw text value.
func (v *Validator) Check(f Field, raw string, snapshot dto.EmployeeRecord) *FieldError {
	value := strings.TrimSpace(raw)

	switch f {
	case FieldFullName:
		if value == "" {
			return fail(f, "Full name is required")
		}
		if utf8.RuneCountInString(value) < 2 {
			return fail(f, "Full name must be at least 2 characters")
		}

	case FieldEmployeeID:
		if value == "" {
			return fail(f, "Employee ID is required")
		}
		if !regexEmployeeID.MatchString(value) {
			return fail(f, "Employee ID must be 3-10 characters (uppercase letters and numbers)")
		}

	case FieldEmail:
		if value == "" {
			return fail(f, "Email is required")
		}
		if !regexEmail.MatchString(value) {
			return fail(f, "Please enter a valid email address")
		}

	case FieldEmergencyEmail:
		if value != "" && !regexEmail.MatchString(value) {
			return fail(f, "Please enter a valid email address")
		}

	case FieldPhone:
		if value == "" {
			return fail(f, "Phone number is required")
		}
		if !regexPhone.MatchString(value) {
			return fail(f, "Please enter a valid phone number")
		}

	case FieldEmergencyPhone:
		if value == "" {
			return fail(f, "Emergency contact phone is required")
		}
		if !regexPhone.MatchString(value) {
			return fail(f, "Please enter a valid phone number")
		}

	case FieldDepartment:
		if value == "" {
			return fail(f, "Department is required")
		}
		if !slices.Contains(dto.Departments, value) {
			return fail(f, "Please select a valid department")
		}

	case FieldDesignation:
		if value == "" {
			return fail(f, "Designation is required")
		}
		if !slices.Contains(dto.Designations, value) {
			return fail(f, "Please select a valid designation")
		}

	case FieldEmergencyRelationship:
		if value == "" {
			return fail(f, "Relationship is required")
		}
		if !slices.Contains(dto.Relationships, value) {
			return fail(f, "Please select a valid relationship")
		}

	case FieldEmergencyName:
		if value == "" {
			return fail(f, "Emergency contact name is required")
		}

	case FieldDateOfJoining:
		return v.checkDateOfJoining(value)

	case FieldNotes:
		// notes are not trimmed for the length limit
		if utf8.RuneCountInString(raw) > MaxNotesChars {
			return fail(f, "Notes must be 500 characters or fewer")
		}

	case FieldResume:
		return CheckResume(snapshot.Resume)

	default:
		return fail(f, "Unknown field")
	}

	return nil
}

func (v *Validator) checkDateOfJoining(value string) *FieldError {
	if value == "" {
		return fail(FieldDateOfJoining, "Date of joining is required")
	}

	date, err := time.ParseInLocation(DateLayout, value, v.loc)
	if err != nil {
		return fail(FieldDateOfJoining, "Please enter a valid date")
	}

	today := v.Today()
	if date.After(today) {
		return fail(FieldDateOfJoining, "Date of joining cannot be in the future")
	}
	if date.Before(today.AddDate(-1, 0, 0)) {
		return fail(FieldDateOfJoining, "Date of joining cannot be more than 1 year ago")
	}

	return nil
}

// Today is the current calendar date at midnight in the validator's location.
func (v *Validator) Today() time.Time {
	now := v.now().In(v.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, v.loc)
}

// CheckResume validates attached resume metadata. A nil resume is valid.
func CheckResume(meta *dto.ResumeMetadata) *FieldError {
	if meta == nil {
		return nil
	}

	ext := strings.ToLower(filepath.Ext(meta.FileName))
	if !slices.Contains(dto.ResumeExtensions, ext) {
		return fail(FieldResume, "Invalid file type. Accepted formats: "+strings.Join(dto.ResumeExtensions, ", "))
	}
	if meta.FileSize <= 0 {
		return fail(FieldResume, "File is empty")
	}
	if meta.FileSize > dto.MaxResumeSize {
		return fail(FieldResume, "File size must be less than 5MB")
	}

	return nil
}

// Record runs every rule against rec and returns the failures keyed by field.
// An empty map means the record is acceptable.
func (v *Validator) Record(rec dto.EmployeeRecord) map[Field]string {
	out := make(map[Field]string)
	for _, f := range AllFields {
		if fe := v.Check(f, Value(f, rec), rec); fe != nil {
			out[f] = fe.Message
		}
	}
	return out
}

// Filled reports whether a required field counts towards completion.
func Filled(f Field, rec dto.EmployeeRecord) bool {
	if f == FieldResume {
		return rec.Resume != nil
	}
	return strings.TrimSpace(Value(f, rec)) != ""
}

func fail(f Field, msg string) *FieldError {
	return &FieldError{Field: f, Message: msg}
}
