package kafka

//go:generate go run go.uber.org/mock/mockgen -source=./kafka.go -destination=./mocks/kafka_mock.go -package=mocks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"roombook/config"

	"github.com/rs/zerolog/log"
	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/segmentio/kafka-go/sasl/plain"
)

const (
	writeTimeout = 10 * time.Second
	fetchBackoff = time.Second
)

// Message is an outgoing record. Value is encoded as JSON.
type Message struct {
	Key   string
	Value any
}

func (m Message) encode(topic string) (kafkaGo.Message, error) {
	value, err := json.Marshal(m.Value)
	if err != nil {
		return kafkaGo.Message{}, fmt.Errorf("encode kafka message %q: %w", m.Key, err)
	}

	return kafkaGo.Message{Topic: topic, Key: []byte(m.Key), Value: value}, nil
}

// Decode unmarshals the JSON value of a consumed record.
func Decode[T any](msg kafkaGo.Message) (T, error) {
	var value T

	if err := json.Unmarshal(msg.Value, &value); err != nil {
		return value, fmt.Errorf("decode kafka message at offset %d: %w", msg.Offset, err)
	}

	return value, nil
}

// Handler processes one record. The record offset is committed once the handler returns,
// whether or not it failed.
type Handler func(ctx context.Context, msg kafkaGo.Message) error

type Client interface {
	SendMessages(ctx context.Context, topic string, messages ...Message) error
	Consume(ctx context.Context, consumerGroup, topic string, handler Handler) error
	Close() error
}

type client struct {
	cfg    *config.Config
	dialer *kafkaGo.Dialer
	writer *kafkaGo.Writer
}

func New(cfg *config.Config) Client {
	dialer := &kafkaGo.Dialer{DualStack: true, Timeout: writeTimeout}
	transport := &kafkaGo.Transport{}

	if cfg.Kafka.SASL.Username != "" {
		mechanism := plain.Mechanism{
			Username: cfg.Kafka.SASL.Username,
			Password: cfg.Kafka.SASL.Password,
		}
		dialer.SASLMechanism = mechanism
		transport.SASL = mechanism
	}

	log.Info().Strs("brokers", cfg.Kafka.Brokers).Msg("Kafka client initialized")

	return &client{
		cfg:    cfg,
		dialer: dialer,
		writer: &kafkaGo.Writer{
			Addr:                   kafkaGo.TCP(cfg.Kafka.Brokers...),
			Balancer:               &kafkaGo.Hash{},
			Transport:              transport,
			WriteTimeout:           writeTimeout,
			RequiredAcks:           kafkaGo.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

// SendMessages writes all messages to topic in one batch. Messages sharing a key land on the same partition.
func (c *client) SendMessages(ctx context.Context, topic string, messages ...Message) error {
	if len(messages) == 0 {
		return nil
	}

	records := make([]kafkaGo.Message, 0, len(messages))

	for _, message := range messages {
		record, err := message.encode(topic)
		if err != nil {
			return err
		}

		records = append(records, record)
	}

	if err := c.writer.WriteMessages(ctx, records...); err != nil {
		return fmt.Errorf("write %d messages to %s: %w", len(records), topic, err)
	}

	log.Debug().Str("topic", topic).Int("count", len(records)).Msg("Sent Kafka messages")

	return nil
}

// Consume fetches records from topic until ctx is done. An empty consumerGroup falls back to the configured one.
func (c *client) Consume(ctx context.Context, consumerGroup, topic string, handler Handler) error {
	if topic == "" {
		return errors.New("kafka topic is required")
	}

	groupID := consumerGroup
	if groupID == "" {
		groupID = c.cfg.Kafka.ConsumerGroup
	}

	reader := kafkaGo.NewReader(kafkaGo.ReaderConfig{
		Brokers:     c.cfg.Kafka.Brokers,
		Topic:       topic,
		GroupID:     groupID,
		Dialer:      c.dialer,
		StartOffset: kafkaGo.FirstOffset,
	})

	defer func() {
		if err := reader.Close(); err != nil {
			log.Error().Err(err).Str("topic", topic).Msg("Failed to close Kafka reader")
		}
	}()

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}

			log.Warn().Err(err).Str("topic", topic).Msg("Failed to fetch Kafka message")

			select {
			case <-ctx.Done():
				return nil
			case <-time.After(fetchBackoff):
			}

			continue
		}

		if err := handler(ctx, msg); err != nil {
			log.Error().Err(err).
				Str("topic", topic).
				Int("partition", msg.Partition).
				Int64("offset", msg.Offset).
				Msg("Kafka handler failed")
		}

		if err := reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			log.Error().Err(err).Str("topic", topic).Int64("offset", msg.Offset).Msg("Failed to commit Kafka offset")
		}
	}
}

func (c *client) Close() error {
	if err := c.writer.Close(); err != nil {
		return fmt.Errorf("close kafka writer: %w", err)
	}

	return nil
}
