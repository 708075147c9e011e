package audit

import (
	"context"
	"fmt"

	"roombook/config"
	"roombook/infras/kafka"
	"roombook/infras/otel"
	"roombook/internal/domains/audit/service"
	"roombook/internal/domains/booking/event"
	"roombook/shared/constant"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
)

// Consumer feeds booking lifecycle events from Kafka into the audit trail.
type Consumer struct {
	client   kafka.Client
	recorder service.Recorder
	cfg      *config.Config
	otel     otel.Otel
}

func New(client kafka.Client, recorder service.Recorder, cfg *config.Config, otel otel.Otel) *Consumer {
	return &Consumer{
		client:   client,
		recorder: recorder,
		cfg:      cfg,
		otel:     otel,
	}
}

// Run blocks until ctx is done, then closes the client.
func (c *Consumer) Run(ctx context.Context) error {
	topic := c.cfg.Kafka.Topic.BookingEvents

	log.Info().Str("topic", topic).Str("group", c.cfg.Kafka.ConsumerGroup).Msg("audit consumer started")

	err := c.client.Consume(ctx, c.cfg.Kafka.ConsumerGroup, topic, c.Handle)

	if closeErr := c.client.Close(); closeErr != nil {
		log.Error().Err(closeErr).Msg("failed to close kafka client")
	}

	if err != nil {
		return fmt.Errorf("consume %s: %w", topic, err)
	}

	log.Info().Msg("audit consumer stopped")

	return nil
}

// Handle records one message. A message that cannot be decoded is reported and never retried.
func (c *Consumer) Handle(ctx context.Context, msg kafkaGo.Message) (err error) {
	ctx, scope := c.otel.NewScope(ctx, constant.OtelWorkerScopeName, constant.OtelWorkerScopeName+".audit.Handle")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	scope.SetAttributes(map[string]any{
		"kafka.topic":     msg.Topic,
		"kafka.partition": msg.Partition,
		"kafka.offset":    msg.Offset,
		"kafka.key":       string(msg.Key),
	})

	evt, err := kafka.Decode[event.Event](msg)
	if err != nil {
		return err
	}

	if err = c.recorder.Record(ctx, evt); err != nil {
		return fmt.Errorf("audit booking event %s: %w", evt.ID, err)
	}

	return nil
}
