package consumer

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/apper-canvas/employee-registry-backend/internal/dto"
	"github.com/apper-canvas/employee-registry-backend/internal/form"
)

type kind string

const (
	kindOnboarding kind = "onboarding"
)

type handler struct {
	kind        kind
	events      EventsRepository
	submitter   Submitter
	newForm     func() *form.Form
	publisher   Publisher
	log         zerolog.Logger
	commitOnDLQ bool
}

func (h *handler) Setup(_ sarama.ConsumerGroupSession) error   { return nil }
func (h *handler) Cleanup(_ sarama.ConsumerGroupSession) error { return nil }

func (h *handler) ConsumeClaim(sess sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for msg := range claim.Messages() {
		switch h.kind {
		case kindOnboarding:
			var env Envelope[OnboardingPayload]
			if err := json.Unmarshal(msg.Value, &env); err != nil {
				h.toDLQ(sess.Context(), msg, fmt.Sprintf("invalid_json: %v", err))
				if h.commitOnDLQ {
					sess.MarkMessage(msg, "")
				}
				continue
			}
			if ok := h.processOnboarding(sess.Context(), msg, env); ok {
				sess.MarkMessage(msg, "")
			}
		default:
			h.log.Error().Str("kind", string(h.kind)).Msg("unknown consumer kind")
			sess.MarkMessage(msg, "")
		}
	}
	return nil
}

func (h *handler) toDLQ(ctx context.Context, msg *sarama.ConsumerMessage, reason string) {
	if err := h.events.InsertDLQ(ctx, dto.KafkaDLQ{
		Topic:   msg.Topic,
		Key:     string(msg.Key),
		Payload: string(msg.Value),
		Error:   reason,
	}); err != nil {
		h.log.Error().Err(err).Str("topic", msg.Topic).Int64("offset", msg.Offset).Msg("events.InsertDLQ failed")
	}

	h.log.Warn().
		Str("topic", msg.Topic).
		Int32("partition", msg.Partition).
		Int64("offset", msg.Offset).
		Str("reason", reason).
		Msg("message sent to DLQ")
}
