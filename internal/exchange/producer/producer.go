package producer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/apper-canvas/employee-registry-backend/internal/dto"
)

// EmployeeProducer publishes record lifecycle events keyed by record id, so
// every event about one record lands on the same partition in order.
type EmployeeProducer struct {
	sp     sarama.SyncProducer
	topic  string
	source string
	now    func() time.Time
	log    zerolog.Logger
}

type Config struct {
	TopicLifecycle string
	Source         string
}

func NewEmployeeProducer(sp sarama.SyncProducer, cfg Config, log zerolog.Logger) *EmployeeProducer {
	return &EmployeeProducer{
		sp:     sp,
		topic:  cfg.TopicLifecycle,
		source: cfg.Source,
		now:    time.Now,
		log:    log.With().Str("component", "EmployeeProducer").Logger(),
	}
}

func (p *EmployeeProducer) Close() error {
	if p == nil || p.sp == nil {
		return nil
	}
	return p.sp.Close()
}

func (p *EmployeeProducer) PublishCreated(ctx context.Context, rec dto.EmployeeRecord) error {
	return p.publish(ctx, KindCreated, rec)
}

func (p *EmployeeProducer) PublishUpdated(ctx context.Context, rec dto.EmployeeRecord) error {
	return p.publish(ctx, KindUpdated, rec)
}

func (p *EmployeeProducer) PublishDeleted(ctx context.Context, rec dto.EmployeeRecord) error {
	return p.publish(ctx, KindDeleted, rec)
}

func (p *EmployeeProducer) publish(ctx context.Context, kind Kind, rec dto.EmployeeRecord) error {
	env := Envelope{
		Kind:       kind,
		MessageID:  uuid.New(),
		RecordID:   rec.ID,
		EmployeeID: rec.EmployeeID,
		Payload:    rec,
		Timestamp:  p.now().UTC(),
		Source:     p.source,
	}

	body, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("json.Marshal: %w", err)
	}

	return p.send(ctx, rec.ID, body, map[string]string{
		"event-kind":   string(kind),
		"message-id":   env.MessageID.String(),
		"source":       p.source,
		"content-type": "application/json",
	})
}

func (p *EmployeeProducer) send(_ context.Context, key string, value []byte, headers map[string]string) error {
	if p == nil || p.sp == nil {
		return errors.New("sync producer is not initialized")
	}

	var hs []sarama.RecordHeader
	for k, v := range headers {
		hs = append(hs, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}

	msg := &sarama.ProducerMessage{
		Topic:   p.topic,
		Key:     sarama.StringEncoder(key),
		Value:   sarama.ByteEncoder(value),
		Headers: hs,
	}

	part, off, err := p.sp.SendMessage(msg)
	if err != nil {
		p.log.Error().
			Err(err).
			Str("topic", p.topic).
			Str("key", key).
			Int("bytes", len(value)).
			Msg("failed to send kafka message")
		return fmt.Errorf("send kafka message: %w", err)
	}

	p.log.Info().
		Str("topic", p.topic).
		Str("key", key).
		Str("kind", headers["event-kind"]).
		Int32("partition", part).
		Int64("offset", off).
		Msg("kafka message sent")
	return nil
}
