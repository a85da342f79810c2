package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/quantick/barpipe/internal/domain/market"
	marketv1 "github.com/quantick/barpipe/internal/domain/market/v1"
	"github.com/quantick/barpipe/pkg/config"
	"github.com/quantick/barpipe/pkg/logger"
)

// kafkaWriter is the subset of kafka.Writer the publisher uses, extracted for
// testing.
type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher fans finalized bars out to a Kafka topic. Messages are keyed
// by symbol so one symbol's bars stay ordered within a partition.
type KafkaPublisher struct {
	writer kafkaWriter
	logger logger.Interface
}

var _ market.BarPublisher = (*KafkaPublisher)(nil)

// NewKafkaPublisher creates a publisher against the configured brokers.
func NewKafkaPublisher(cfg config.BarKafkaConfig, logger logger.Interface) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:     kafka.TCP(cfg.Brokers...),
		Topic:    cfg.Topic,
		Balancer: &kafka.Hash{},
	}
	return &KafkaPublisher{
		writer: writer,
		logger: logger,
	}
}

// Publish sends one finalized bar.
func (p *KafkaPublisher) Publish(ctx context.Context, bar *marketv1.Bar) error {
	payload, err := json.Marshal(bar)
	if err != nil {
		return fmt.Errorf("failed to marshal bar: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(bar.Symbol),
		Value: payload,
		Time:  bar.BucketStart,
	})
	if err != nil {
		return fmt.Errorf("failed to publish bar: %w", err)
	}

	p.logger.Debug("published bar",
		logger.NewField("symbol", bar.Symbol),
		logger.NewField("bucket_start", bar.BucketStart),
	)
	return nil
}

// Close flushes and closes the underlying writer.
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
