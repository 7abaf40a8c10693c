package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"

	"citysense/internal/metrics"
)

// Stream names, one per event type. Consumers subscribe by name.
const (
	StreamAirQualityReading = "airquality.reading"
	StreamAirQualityAlert   = "airquality.alert"
	StreamEnergyReading     = "energy.reading"
	StreamEnergyAlert       = "energy.alert"
	StreamWaterReading      = "water.reading"
	StreamWaterLeakAlert    = "water.leak.alert"
	StreamTransportTelem    = "transport.telemetry"
	StreamTransportAlert    = "transport.alert"
	StreamPrediction        = "ml.prediction"
	StreamPredictionAlert   = "ml.prediction.alert"
)

// defaultMaxLen caps each stream so unconsumed events don't grow unbounded.
const defaultMaxLen = 10000

// Publisher writes domain events to Redis streams.
type Publisher struct {
	client *redis.Client
	maxLen int64
}

// NewPublisher creates a Publisher on top of an existing Redis client.
func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{
		client: client,
		maxLen: defaultMaxLen,
	}
}

// Publish serializes payload into an event envelope and appends it to stream.
func (p *Publisher) Publish(ctx context.Context, stream string, payload map[string]interface{}) error {
	envelope := map[string]interface{}{
		"event_id":  uuid.NewString(),
		"stream":    stream,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"payload":   payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		metrics.RecordEventPublished(stream, err)
		return fmt.Errorf("failed to marshal event for stream %s: %w", stream, err)
	}

	err = p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{"data": string(data)},
	}).Err()
	metrics.RecordEventPublished(stream, err)
	if err != nil {
		return fmt.Errorf("failed to publish to stream %s: %w", stream, err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (p *Publisher) Close() error {
	return p.client.Close()
}
