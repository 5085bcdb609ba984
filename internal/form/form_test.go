package form

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/apper-canvas/employee-registry-backend/internal/dto"
	"github.com/apper-canvas/employee-registry-backend/internal/validation"
)

var fixedNow = time.Date(2026, time.October, 19, 9, 0, 0, 0, time.UTC)

var completeValues = map[validation.Field]string{
	validation.FieldFullName:              "Anna Ivanova",
	validation.FieldEmployeeID:            "EMP001",
	validation.FieldEmail:                 "anna@company.com",
	validation.FieldPhone:                 "+1 555 123 4567",
	validation.FieldDepartment:            "Engineering",
	validation.FieldDesignation:           "Developer",
	validation.FieldDateOfJoining:         "2026-10-01",
	validation.FieldEmergencyName:         "Pavel Ivanov",
	validation.FieldEmergencyRelationship: "Spouse",
	validation.FieldEmergencyPhone:        "(555) 987-6543",
}

type FormSuite struct {
	suite.Suite
	form *Form
}

func TestFormSuite(t *testing.T) {
	suite.Run(t, new(FormSuite))
}

func (s *FormSuite) SetupTest() {
	v := validation.New(
		validation.WithClock(func() time.Time { return fixedNow }),
		validation.WithLocation(time.UTC),
	)
	s.form = New(v)
}

func (s *FormSuite) fill(fields ...validation.Field) {
	for _, f := range fields {
		s.Require().NoError(s.form.SetField(f, completeValues[f]))
	}
}

func (s *FormSuite) TestCompletion() {
	s.Equal(0, s.form.Completion())

	s.fill(validation.RequiredFields[:7]...)
	s.Equal(70, s.form.Completion())

	// whitespace does not count as filled
	s.Require().NoError(s.form.SetField(validation.FieldEmergencyName, "   "))
	s.Equal(70, s.form.Completion())

	s.fill(validation.RequiredFields[7:]...)
	s.Equal(100, s.form.Completion())

	// optional fields never move the needle
	s.Require().NoError(s.form.SetField(validation.FieldNotes, "hello"))
	s.Equal(100, s.form.Completion())
}

func (s *FormSuite) TestSetFieldValidatesOnlyThatField() {
	s.Require().NoError(s.form.SetField(validation.FieldEmployeeID, "em1"))
	s.Require().NoError(s.form.SetField(validation.FieldEmail, "nope"))

	errs := s.form.Errors()
	s.Len(errs, 2)
	s.Contains(errs, validation.FieldEmployeeID)
	s.Contains(errs, validation.FieldEmail)

	// fixing one field removes only its entry, untouched fields stay unreported
	s.Require().NoError(s.form.SetField(validation.FieldEmployeeID, "EMP001"))
	errs = s.form.Errors()
	s.Len(errs, 1)
	s.NotContains(errs, validation.FieldFullName)
}

func (s *FormSuite) TestSetFieldRejectsResumeAsText() {
	s.Error(s.form.SetField(validation.FieldResume, "cv.pdf"))
}

func (s *FormSuite) TestValidateAllRebuildsErrors() {
	s.form.SetError(validation.FieldEmail, "Email address already exists")
	s.False(s.form.ValidateAll())

	errs := s.form.Errors()
	s.Len(errs, len(validation.RequiredFields))
	s.Equal("Email is required", errs[validation.FieldEmail])

	s.fill(validation.RequiredFields...)
	s.True(s.form.ValidateAll())
	s.Empty(s.form.Errors())
}

func (s *FormSuite) TestBeginSubmitBlockedWhenIncomplete() {
	s.fill(validation.RequiredFields[:9]...)

	_, err := s.form.BeginSubmit()
	s.ErrorIs(err, ErrIncomplete)
	s.False(s.form.Submitting())
	s.False(s.form.State().CanSubmit)

	missing := validation.RequiredFields[9]
	var vf *ValidationFailedError
	s.Require().True(errors.As(err, &vf))
	s.True(vf.Incomplete)
	s.Equal(map[validation.Field]string{missing: "Emergency contact phone is required"}, vf.Errors)
	s.Equal(vf.Errors, s.form.Errors())
}

func (s *FormSuite) TestBeginSubmitIncompleteFlagsEveryEmptyField() {
	_, err := s.form.BeginSubmit()
	s.Require().ErrorIs(err, ErrIncomplete)

	errs := s.form.Errors()
	s.Len(errs, len(validation.RequiredFields))
	for _, f := range validation.RequiredFields {
		s.Contains(errs, f, f.Path())
	}

	// a whitespace-only value is empty, not merely invalid
	s.fill(validation.RequiredFields...)
	s.Require().NoError(s.form.SetField(validation.FieldFullName, "   "))

	_, err = s.form.BeginSubmit()
	s.Require().ErrorIs(err, ErrIncomplete)
	s.Equal("Full name is required", s.form.Errors()[validation.FieldFullName])
}

func (s *FormSuite) TestInvalidCompleteFormIsNotIncomplete() {
	s.fill(validation.RequiredFields...)
	s.Require().NoError(s.form.SetField(validation.FieldEmail, "nope"))

	_, err := s.form.BeginSubmit()
	s.Require().Error(err)
	s.NotErrorIs(err, ErrIncomplete)
}

func (s *FormSuite) TestBeginSubmitBlockedWhenInvalid() {
	s.fill(validation.RequiredFields...)
	s.Require().NoError(s.form.SetField(validation.FieldDateOfJoining, "2026-10-20"))
	s.Equal(100, s.form.Completion())

	_, err := s.form.BeginSubmit()
	var vf *ValidationFailedError
	s.Require().True(errors.As(err, &vf))
	s.Equal("Date of joining cannot be in the future", vf.Errors[validation.FieldDateOfJoining])
	s.False(s.form.Submitting())
}

func (s *FormSuite) TestSubmitGuardAndReset() {
	s.fill(validation.RequiredFields...)
	s.Require().NoError(s.form.SetField(validation.FieldFullName, "  Anna Ivanova  "))

	candidate, err := s.form.BeginSubmit()
	s.Require().NoError(err)
	s.Equal("Anna Ivanova", candidate.FullName)
	s.True(s.form.Submitting())

	_, err = s.form.BeginSubmit()
	s.ErrorIs(err, ErrSubmitInFlight)

	s.form.EndSubmit(false)
	s.False(s.form.Submitting())
	s.Equal("EMP001", s.form.State().Fields.EmployeeID)

	_, err = s.form.BeginSubmit()
	s.Require().NoError(err)
	s.form.EndSubmit(true)

	state := s.form.State()
	s.Equal(dto.EmployeeRecord{}, state.Fields)
	s.Empty(state.Errors)
	s.Equal(0, state.Completion)
}

func (s *FormSuite) TestResume() {
	s.form.SetResume(dto.ResumeMetadata{FileName: "cv.txt", FileSize: 10})
	s.Contains(s.form.Errors(), validation.FieldResume)

	s.form.SetResume(dto.ResumeMetadata{FileName: "cv.pdf", FileSize: 10})
	s.NotContains(s.form.Errors(), validation.FieldResume)
	s.Require().NotNil(s.form.State().Fields.Resume)

	s.form.ClearResume()
	s.Nil(s.form.State().Fields.Resume)
}

func TestLoadStripsStoreOwnedFields(t *testing.T) {
	f := New(validation.New())
	now := time.Now()
	f.Load(dto.EmployeeRecord{ID: "abc", FullName: "X Y", SubmittedAt: now, UpdatedAt: &now})

	state := f.State()
	assert.Empty(t, state.Fields.ID)
	assert.True(t, state.Fields.SubmittedAt.IsZero())
	assert.Nil(t, state.Fields.UpdatedAt)
	assert.Equal(t, "X Y", state.Fields.FullName)
}

func TestValidationFailedErrorMessage(t *testing.T) {
	err := &ValidationFailedError{Errors: map[validation.Field]string{
		validation.FieldEmergencyPhone: "x",
		validation.FieldFullName:       "y",
	}}
	require.EqualError(t, err, "validation failed: fullName, emergencyContact.phone")
}
