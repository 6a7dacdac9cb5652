// Package kafka contains Kafka repository implementations
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/IBM/sarama"
	"github.com/rs/zerolog"

	"github.com/jsfrau/telegram-stickers-bot/config"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/deps"
	"github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/dto"
	stickererrors "github.com/jsfrau/telegram-stickers-bot/internal/domain/sticker/errors"
	"github.com/jsfrau/telegram-stickers-bot/internal/infrastructure/metrics"
)

// Producer implements deps.PackEventProducer
type Producer struct {
	producer sarama.SyncProducer
	topic    string
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewProducer creates a pack event producer. Without brokers events are dropped.
func NewProducer(cfg *config.KafkaConfig, m *metrics.Metrics, logger zerolog.Logger) (deps.PackEventProducer, error) {
	logger = logger.With().Str("component", "pack-event-producer").Logger()

	if !cfg.Enabled() {
		logger.Info().Msg("Kafka brokers not configured, pack events disabled")
		return noopProducer{}, nil
	}

	saramaConfig := sarama.NewConfig()
	saramaConfig.Producer.RequiredAcks = sarama.WaitForAll
	saramaConfig.Producer.Retry.Max = 3
	saramaConfig.Producer.Return.Successes = true
	saramaConfig.Producer.Compression = sarama.CompressionSnappy

	producer, err := sarama.NewSyncProducer(cfg.Brokers, saramaConfig)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", stickererrors.ErrKafkaProducer, err)
	}

	logger.Info().Strs("brokers", cfg.Brokers).Str("topic", cfg.TopicPackEvents).Msg("Kafka producer initialized successfully")

	return newProducer(producer, cfg.TopicPackEvents, m, logger), nil
}

func newProducer(producer sarama.SyncProducer, topic string, m *metrics.Metrics, logger zerolog.Logger) *Producer {
	return &Producer{
		producer: producer,
		topic:    topic,
		metrics:  m,
		logger:   logger,
	}
}

// PublishPackEvent sends a pack event keyed by owner so one user's events stay ordered
func (p *Producer) PublishPackEvent(ctx context.Context, event *dto.PackEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	jsonData, err := json.Marshal(event)
	if err != nil {
		p.metrics.RecordKafkaProduce("marshal")
		return fmt.Errorf("failed to marshal event to JSON: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(strconv.FormatInt(event.UserID, 10)),
		Value: sarama.ByteEncoder(jsonData),
		Headers: []sarama.RecordHeader{
			{Key: []byte("event_type"), Value: []byte(event.Type)},
		},
	}

	partition, offset, err := p.producer.SendMessage(message)
	if err != nil {
		p.metrics.RecordKafkaProduce("send")
		p.logger.Error().Err(err).Str("topic", p.topic).Str("type", event.Type).Msg("Failed to send Kafka message")
		return fmt.Errorf("%w: %v", stickererrors.ErrKafkaProducer, err)
	}

	p.metrics.RecordKafkaProduce("")
	p.logger.Info().
		Str("topic", p.topic).
		Str("type", event.Type).
		Uint("pack_id", event.PackID).
		Int32("partition", partition).
		Int64("offset", offset).
		Msg("Kafka message sent successfully")

	return nil
}

// Close closes the Kafka producer
func (p *Producer) Close() error {
	if p.producer == nil {
		return nil
	}
	if err := p.producer.Close(); err != nil {
		p.logger.Error().Err(err).Msg("Failed to close Kafka producer")
		return err
	}
	p.logger.Info().Msg("Kafka producer closed successfully")
	return nil
}

type noopProducer struct{}

func (noopProducer) PublishPackEvent(context.Context, *dto.PackEvent) error { return nil }

func (noopProducer) Close() error { return nil }
