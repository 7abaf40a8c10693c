package bus

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestEnvelopeSerialization(t *testing.T) {
	payload := map[string]interface{}{
		"station_id": "station-1",
		"aqi":        88,
		"status":     "moderate",
	}

	envelope := map[string]interface{}{
		"event_id":  uuid.NewString(),
		"stream":    StreamAirQualityReading,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"payload":   payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		t.Fatalf("Failed to serialize envelope: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Failed to deserialize envelope: %v", err)
	}

	if decoded["stream"] != "airquality.reading" {
		t.Errorf("Expected stream 'airquality.reading', got '%v'", decoded["stream"])
	}

	if _, err := uuid.Parse(decoded["event_id"].(string)); err != nil {
		t.Errorf("Expected event_id to be a valid UUID: %v", err)
	}

	decodedPayload := decoded["payload"].(map[string]interface{})
	if decodedPayload["status"] != "moderate" {
		t.Errorf("Expected status 'moderate', got '%v'", decodedPayload["status"])
	}
}

func TestStreamNames(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   string
	}{
		{"air quality reading", StreamAirQualityReading, "airquality.reading"},
		{"air quality alert", StreamAirQualityAlert, "airquality.alert"},
		{"energy reading", StreamEnergyReading, "energy.reading"},
		{"energy alert", StreamEnergyAlert, "energy.alert"},
		{"water reading", StreamWaterReading, "water.reading"},
		{"water leak alert", StreamWaterLeakAlert, "water.leak.alert"},
		{"transport telemetry", StreamTransportTelem, "transport.telemetry"},
		{"transport alert", StreamTransportAlert, "transport.alert"},
		{"prediction", StreamPrediction, "ml.prediction"},
		{"prediction alert", StreamPredictionAlert, "ml.prediction.alert"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.stream != tt.want {
				t.Errorf("Expected stream name '%s', got '%s'", tt.want, tt.stream)
			}
		})
	}
}

func TestDefaultMaxLen(t *testing.T) {
	p := NewPublisher(nil)
	if p.maxLen != 10000 {
		t.Errorf("Expected default max length 10000, got %d", p.maxLen)
	}
}
