// Package submission turns a completed form into a stored employee record.
//
// It is the only place where store errors become form errors: a duplicate key
// is pinned to the offending field, anything else is a persistence failure.
package submission

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/apper-canvas/employee-registry-backend/internal/dto"
	"github.com/apper-canvas/employee-registry-backend/internal/form"
	"github.com/apper-canvas/employee-registry-backend/internal/metrics"
	"github.com/apper-canvas/employee-registry-backend/internal/validation"
)

var ErrPersistenceFailed = errors.New("failed to persist employee record")

// duplicateMessages is the fixed mapping from a colliding key to the message
// shown on its field.
var duplicateMessages = map[dto.UniqueKey]struct {
	field   validation.Field
	message string
}{
	dto.KeyEmployeeID: {validation.FieldEmployeeID, "Employee ID already exists"},
	dto.KeyEmail:      {validation.FieldEmail, "Email address already exists"},
}

type Outcome string

const (
	OutcomeCreated           Outcome = "created"
	OutcomeValidationFailed  Outcome = "validation_failed"
	OutcomeIncomplete        Outcome = "incomplete"
	OutcomeInFlight          Outcome = "in_flight"
	OutcomeDuplicateKey      Outcome = "duplicate_key"
	OutcomePersistenceFailed Outcome = "persistence_failed"
)

type Store interface {
	Create(ctx context.Context, candidate dto.EmployeeRecord) (dto.EmployeeRecord, error)
}

type Coordinator struct {
	store  Store
	tracer trace.Tracer
	log    zerolog.Logger
}

func NewCoordinator(store Store, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		store:  store,
		tracer: otel.Tracer("github.com/apper-canvas/employee-registry-backend/internal/submission"),
		log:    log.With().Str("component", "SubmissionCoordinator").Logger(),
	}
}

// Submit validates f, creates the record and resets f on success. On any
// failure f keeps its values and leaves the submitting state.
func (c *Coordinator) Submit(ctx context.Context, f *form.Form) (dto.EmployeeRecord, error) {
	ctx, span := c.tracer.Start(ctx, "submission.Submit")
	defer span.End()

	rec, err := c.submit(ctx, f)

	outcome := Classify(err)
	metrics.Submissions.WithLabelValues(string(outcome)).Inc()
	span.SetAttributes(attribute.String("submission.outcome", string(outcome)))
	if err != nil && outcome == OutcomePersistenceFailed {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}

	return rec, err
}

func (c *Coordinator) submit(ctx context.Context, f *form.Form) (dto.EmployeeRecord, error) {
	candidate, err := f.BeginSubmit()
	if err != nil {
		c.log.Debug().Err(err).Msg("submission rejected before store")
		return dto.EmployeeRecord{}, err
	}

	rec, err := c.store.Create(ctx, candidate)
	if err != nil {
		var dup *dto.DuplicateKeyError
		if errors.As(err, &dup) {
			if m, ok := duplicateMessages[dup.Key]; ok {
				f.SetError(m.field, m.message)
			}
			f.EndSubmit(false)

			c.log.Info().
				Str("key", string(dup.Key)).
				Str("employee_id", candidate.EmployeeID).
				Msg("submission rejected: duplicate key")

			return dto.EmployeeRecord{}, err
		}

		f.EndSubmit(false)
		c.log.Error().Err(err).Str("employee_id", candidate.EmployeeID).Msg("submission failed")

		return dto.EmployeeRecord{}, fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}

	f.EndSubmit(true)
	c.log.Info().Str("record_id", rec.ID).Str("employee_id", rec.EmployeeID).Msg("employee submitted")

	return rec, nil
}

// Classify maps a Submit error to its outcome.
func Classify(err error) Outcome {
	var vf *form.ValidationFailedError
	var dup *dto.DuplicateKeyError

	switch {
	case err == nil:
		return OutcomeCreated
	case errors.Is(err, form.ErrIncomplete):
		return OutcomeIncomplete
	case errors.As(err, &vf):
		return OutcomeValidationFailed
	case errors.Is(err, form.ErrSubmitInFlight):
		return OutcomeInFlight
	case errors.As(err, &dup):
		return OutcomeDuplicateKey
	default:
		return OutcomePersistenceFailed
	}
}
