package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/apper-canvas/employee-registry-backend/internal/dto"
	"github.com/apper-canvas/employee-registry-backend/internal/form"
	"github.com/apper-canvas/employee-registry-backend/internal/submission"
)

type EventsRepository interface {
	ExistsMessage(ctx context.Context, messageID uuid.UUID) (bool, error)
	InsertEvent(ctx context.Context, ev dto.KafkaEvent) error
	InsertDLQ(ctx context.Context, dlq dto.KafkaDLQ) error
}

type Submitter interface {
	Submit(ctx context.Context, f *form.Form) (dto.EmployeeRecord, error)
}

type Publisher interface {
	PublishCreated(ctx context.Context, rec dto.EmployeeRecord) error
}

// NewOnboardingRunner consumes onboarding requests. Each message fills a fresh
// form that goes through the same submission path as the HTTP API; anything
// the coordinator rejects ends up in the DLQ and is committed, since
// redelivery would be rejected the same way.
func NewOnboardingRunner(
	bootstrap string,
	topic string,
	groupID string,
	events EventsRepository,
	submitter Submitter,
	newForm func() *form.Form,
	publisher Publisher,
	log zerolog.Logger,
) *Runner {
	return newRunner(bootstrap, groupID, topic, newOnboardingHandler(events, submitter, newForm, publisher, log), log)
}

func newOnboardingHandler(
	events EventsRepository,
	submitter Submitter,
	newForm func() *form.Form,
	publisher Publisher,
	log zerolog.Logger,
) *handler {
	return &handler{
		kind:        kindOnboarding,
		events:      events,
		submitter:   submitter,
		newForm:     newForm,
		publisher:   publisher,
		log:         log.With().Str("consumer", "onboarding").Logger(),
		commitOnDLQ: true,
	}
}

func (h *handler) processOnboarding(ctx context.Context, msg *sarama.ConsumerMessage, env Envelope[OnboardingPayload]) bool {
	if env.MessageID == uuid.Nil {
		h.toDLQ(ctx, msg, "missing required field message_id")
		return h.commitOnDLQ
	}

	exists, err := h.events.ExistsMessage(ctx, env.MessageID)
	if err != nil {
		h.toDLQ(ctx, msg, fmt.Sprintf("events.ExistsMessage: %v", err))
		return h.commitOnDLQ
	}

	if exists {
		h.log.Info().
			Str("message_id", env.MessageID.String()).
			Str("employee_id", env.Payload.EmployeeID).
			Msg("duplicate message, skip (idempotency)")
		return true
	}

	if err := h.events.InsertEvent(ctx, dto.KafkaEvent{
		MessageID: env.MessageID,
		Topic:     msg.Topic,
		Key:       string(msg.Key),
		Partition: int(msg.Partition),
		Offset:    msg.Offset,
		Payload:   append([]byte(nil), msg.Value...),
	}); err != nil {
		if errors.Is(err, dto.ErrAlreadyExists) {
			h.log.Info().Str("message_id", env.MessageID.String()).Msg("message claimed concurrently, skip")
			return true
		}

		h.toDLQ(ctx, msg, fmt.Sprintf("events.InsertEvent: %v", err))
		return h.commitOnDLQ
	}

	f := h.newForm()
	f.Load(env.Payload)

	rec, err := h.submitter.Submit(ctx, f)
	if err != nil {
		h.toDLQ(ctx, msg, rejectionReason(err))
		return h.commitOnDLQ
	}

	if h.publisher != nil {
		if err := h.publisher.PublishCreated(ctx, rec); err != nil {
			h.log.Warn().Err(err).Str("record_id", rec.ID).Msg("lifecycle event not published")
		}
	}

	return true
}

// rejectionReason renders a submission error for the DLQ, including the
// per-field messages when validation failed.
func rejectionReason(err error) string {
	outcome := submission.Classify(err)

	var vf *form.ValidationFailedError
	if errors.As(err, &vf) {
		fields, _ := json.Marshal(vf.Errors)
		return fmt.Sprintf("%s: %s", outcome, fields)
	}

	return fmt.Sprintf("%s: %v", outcome, err)
}
