package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	marketv1 "github.com/quantick/barpipe/internal/domain/market/v1"
	"github.com/quantick/barpipe/pkg/logger"
)

type fakeWriter struct {
	messages []kafka.Message
	writeErr error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.writeErr != nil {
		return w.writeErr
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func newTestLogger(t *testing.T) logger.Interface {
	t.Helper()
	log, err := logger.NewLogger(logger.WithLoggingLevel(logger.ErrorLevel))
	require.NoError(t, err)
	return log
}

func TestKafkaPublisher_Publish(t *testing.T) {
	writer := &fakeWriter{}
	pub := &KafkaPublisher{writer: writer, logger: newTestLogger(t)}

	bar := &marketv1.Bar{
		Symbol:      "RELIANCE",
		BucketStart: time.Date(2024, 6, 3, 10, 0, 0, 0, time.UTC),
		Open:        2950,
		High:        2955,
		Low:         2948,
		Close:       2952,
		Volume:      4300,
		TradeCount:  120,
		VWAP:        2951.4,
	}

	require.NoError(t, pub.Publish(context.Background(), bar))
	require.Len(t, writer.messages, 1)

	msg := writer.messages[0]
	assert.Equal(t, []byte("RELIANCE"), msg.Key)
	assert.Equal(t, bar.BucketStart, msg.Time)

	var decoded marketv1.Bar
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, bar.Close, decoded.Close)
	assert.Equal(t, bar.VWAP, decoded.VWAP)
}

func TestKafkaPublisher_PublishError(t *testing.T) {
	writer := &fakeWriter{writeErr: errors.New("broker unreachable")}
	pub := &KafkaPublisher{writer: writer, logger: newTestLogger(t)}

	err := pub.Publish(context.Background(), &marketv1.Bar{Symbol: "RELIANCE"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to publish bar")
}

func TestKafkaPublisher_Close(t *testing.T) {
	writer := &fakeWriter{}
	pub := &KafkaPublisher{writer: writer, logger: newTestLogger(t)}

	require.NoError(t, pub.Close())
	assert.True(t, writer.closed)
}
