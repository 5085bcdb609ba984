// Package form holds an in-progress onboarding record, its per-field errors,
// and the submit protocol that guards against double submission.
package form

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/apper-canvas/employee-registry-backend/internal/dto"
	"github.com/apper-canvas/employee-registry-backend/internal/validation"
)

var (
	ErrSubmitInFlight = errors.New("submission already in progress")
	ErrIncomplete     = errors.New("form is incomplete")
)

// ValidationFailedError carries the full error map of a failed ValidateAll.
// When Incomplete is set some required field is still empty, and the error
// also matches ErrIncomplete.
type ValidationFailedError struct {
	Errors     map[validation.Field]string
	Incomplete bool
}

func (e *ValidationFailedError) Error() string {
	paths := make([]string, 0, len(e.Errors))
	for _, f := range validation.AllFields {
		if _, ok := e.Errors[f]; ok {
			paths = append(paths, f.Path())
		}
	}
	if e.Incomplete {
		return fmt.Sprintf("%s: %s", ErrIncomplete, strings.Join(paths, ", "))
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(paths, ", "))
}

func (e *ValidationFailedError) Is(target error) bool {
	return e.Incomplete && target == ErrIncomplete
}

// State is a read-only projection of a form for presentation.
type State struct {
	Fields     dto.EmployeeRecord          `json:"fields"`
	Errors     map[validation.Field]string `json:"errors"`
	Completion int                         `json:"completion"`
	Submitting bool                        `json:"submitting"`
	CanSubmit  bool                        `json:"canSubmit"`
}

type Form struct {
	mu         sync.Mutex
	v          *validation.Validator
	fields     dto.EmployeeRecord
	errors     map[validation.Field]string
	submitting bool
}

func New(v *validation.Validator) *Form {
	return &Form{
		v:      v,
		errors: make(map[validation.Field]string),
	}
}

// SetField stores value and re-validates that field only.
func (f *Form) SetField(field validation.Field, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := validation.Set(field, &f.fields, value); err != nil {
		return err
	}
	f.recheck(field)

	return nil
}

// SetResume attaches resume metadata. The file body never reaches the form.
func (f *Form) SetResume(meta dto.ResumeMetadata) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fields.Resume = &meta
	f.recheck(validation.FieldResume)
}

func (f *Form) ClearResume() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.fields.Resume = nil
	delete(f.errors, validation.FieldResume)
}

// Load replaces all values with rec and clears errors; nothing is validated
// until the caller asks.
func (f *Form) Load(rec dto.EmployeeRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()

	rec = rec.Clone()
	rec.ID = ""
	rec.SubmittedAt = time.Time{}
	rec.UpdatedAt = nil

	f.fields = rec
	f.errors = make(map[validation.Field]string)
}

func (f *Form) recheck(field validation.Field) {
	if fe := f.v.Check(field, validation.Value(field, f.fields), f.fields); fe != nil {
		f.errors[field] = fe.Message
		return
	}
	delete(f.errors, field)
}

// Completion is round(100 * filled / required) over the fixed required list.
func (f *Form) Completion() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.completion()
}

func (f *Form) completion() int {
	filled := 0
	for _, field := range validation.RequiredFields {
		if validation.Filled(field, f.fields) {
			filled++
		}
	}
	return int(math.Round(100 * float64(filled) / float64(len(validation.RequiredFields))))
}

// ValidateAll rebuilds the error map from scratch and reports whether it is empty.
func (f *Form) ValidateAll() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.validateAll()
}

func (f *Form) validateAll() bool {
	f.errors = f.v.Record(f.fields)
	return len(f.errors) == 0
}

// BeginSubmit enters the submitting state and returns the candidate record.
// Only one submission may be in flight; an incomplete or invalid form never
// enters it. Either way the error map is rebuilt and returned, so every
// empty required field gets its message.
func (f *Form) BeginSubmit() (dto.EmployeeRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.submitting {
		return dto.EmployeeRecord{}, ErrSubmitInFlight
	}

	valid := f.validateAll()
	if f.completion() < 100 {
		return dto.EmployeeRecord{}, &ValidationFailedError{Errors: copyErrors(f.errors), Incomplete: true}
	}
	if !valid {
		return dto.EmployeeRecord{}, &ValidationFailedError{Errors: copyErrors(f.errors)}
	}

	f.submitting = true

	return normalize(f.fields), nil
}

// EndSubmit leaves the submitting state. On success the form resets to empty
// defaults; on failure the values stay so the user can retry.
func (f *Form) EndSubmit(success bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.submitting = false
	if success {
		f.fields = dto.EmployeeRecord{}
		f.errors = make(map[validation.Field]string)
	}
}

// SetError records an error that did not come from a field rule, such as a
// duplicate key reported by the store.
func (f *Form) SetError(field validation.Field, message string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.errors[field] = message
}

func (f *Form) Errors() map[validation.Field]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	return copyErrors(f.errors)
}

func (f *Form) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.submitting
}

func (f *Form) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	completion := f.completion()

	return State{
		Fields:     f.fields.Clone(),
		Errors:     copyErrors(f.errors),
		Completion: completion,
		Submitting: f.submitting,
		CanSubmit:  completion == 100 && !f.submitting,
	}
}

func copyErrors(in map[validation.Field]string) map[validation.Field]string {
	out := make(map[validation.Field]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// normalize trims every text value the way the rules saw it.
func normalize(rec dto.EmployeeRecord) dto.EmployeeRecord {
	out := rec.Clone()
	for _, field := range validation.AllFields {
		if field == validation.FieldResume || field == validation.FieldNotes {
			continue
		}
		_ = validation.Set(field, &out, strings.TrimSpace(validation.Value(field, out)))
	}
	return out
}
