package consumer

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"
)

const (
	minRetryBackoff = 500 * time.Millisecond
	maxRetryBackoff = 30 * time.Second
)

// Runner drives one consumer group over one topic until its context ends.
// A failed Consume is retried with a doubling backoff, reset after a clean
// session.
type Runner struct {
	brokers   []string
	groupID   string
	topic     string
	handler   sarama.ConsumerGroupHandler
	log       zerolog.Logger
	createCfg func() *sarama.Config

	minBackoff time.Duration
	maxBackoff time.Duration

	// newGroup is swapped in tests.
	newGroup func(brokers []string, groupID string, cfg *sarama.Config) (sarama.ConsumerGroup, error)
}

func newRunner(bootstrap, groupID, topic string, h sarama.ConsumerGroupHandler, log zerolog.Logger) *Runner {
	return &Runner{
		brokers:   splitBrokers(bootstrap),
		groupID:   groupID,
		topic:     topic,
		handler:   h,
		log:       log.With().Str("topic", topic).Str("group", groupID).Logger(),
		createCfg: consumerConfig,

		minBackoff: minRetryBackoff,
		maxBackoff: maxRetryBackoff,
		newGroup:   sarama.NewConsumerGroup,
	}
}

func consumerConfig() *sarama.Config {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_3_2_0
	cfg.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRange()}
	cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	cfg.Consumer.Return.Errors = true
	// offsets are committed through session.MarkMessage
	return cfg
}

// splitBrokers accepts "host1:9092,host2:9092".
func splitBrokers(bootstrap string) []string {
	var out []string
	for _, b := range strings.Split(bootstrap, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func (r *Runner) Start(ctx context.Context) error {
	consumerGroup, err := r.newGroup(r.brokers, r.groupID, r.createCfg())
	if err != nil {
		return err
	}
	defer func() { _ = consumerGroup.Close() }()

	go func() {
		for err := range consumerGroup.Errors() {
			if err == nil || errors.Is(err, context.Canceled) {
				continue
			}

			r.log.Error().Err(err).Msg("consumer group error")
		}
	}()

	r.log.Info().Strs("brokers", r.brokers).Msg("consumer started")
	defer r.log.Info().Msg("consumer stopped")

	backoff := r.minBackoff
	for {
		if ctx.Err() != nil {
			return nil
		}

		err := consumerGroup.Consume(ctx, []string{r.topic}, r.handler)
		if ctx.Err() != nil || errors.Is(err, sarama.ErrClosedConsumerGroup) {
			return nil
		}

		if err == nil {
			// rebalance; rejoin right away
			backoff = r.minBackoff
			continue
		}

		r.log.Error().Err(err).Dur("retry_in", backoff).Msg("consume error")
		if !sleepCtx(ctx, backoff) {
			return nil
		}
		backoff = min(backoff*2, r.maxBackoff)
	}
}

// sleepCtx waits for d and reports false if ctx ended first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
