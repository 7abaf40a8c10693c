package analytics

import (
	"math"
	"testing"
)

func TestCalculateZScore(t *testing.T) {
	tests := []struct {
		name   string
		value  float64
		mean   float64
		stdDev float64
		want   float64
	}{
		{"value above mean", 100.0, 50.0, 25.0, 2.0},
		{"value below mean", 25.0, 50.0, 25.0, -1.0},
		{"value equals mean", 50.0, 50.0, 25.0, 0.0},
		{"zero standard deviation", 50.0, 50.0, 0.0, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateZScore(tt.value, tt.mean, tt.stdDev)
			if got != tt.want {
				t.Errorf("CalculateZScore() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDetect_FlagsOutlier(t *testing.T) {
	detector := NewAnomalyDetector()

	// Flat series with one spike
	samples := []Sample{
		{Hours: 0, Value: 10},
		{Hours: 1, Value: 11},
		{Hours: 2, Value: 9},
		{Hours: 3, Value: 10},
		{Hours: 4, Value: 11},
		{Hours: 5, Value: 9},
		{Hours: 6, Value: 10},
		{Hours: 7, Value: 100},
	}

	anomalies := detector.Detect(samples)
	if len(anomalies) != 1 {
		t.Fatalf("Detect() found %d anomalies, want 1", len(anomalies))
	}

	if anomalies[0].Value != 100 {
		t.Errorf("Anomaly value = %v, want 100", anomalies[0].Value)
	}
	if anomalies[0].Hours != 7 {
		t.Errorf("Anomaly hours = %v, want 7", anomalies[0].Hours)
	}
	if anomalies[0].ZScore <= 2.0 {
		t.Errorf("Anomaly z-score = %v, want > 2", anomalies[0].ZScore)
	}
	if anomalies[0].Severity == "" {
		t.Error("Anomaly severity should not be empty")
	}
}

func TestDetect_NoVariation(t *testing.T) {
	detector := NewAnomalyDetector()

	samples := []Sample{
		{Hours: 0, Value: 5},
		{Hours: 1, Value: 5},
		{Hours: 2, Value: 5},
		{Hours: 3, Value: 5},
	}

	if anomalies := detector.Detect(samples); anomalies != nil {
		t.Errorf("Detect() on constant series = %v, want nil", anomalies)
	}
}

func TestDetect_TooFewSamples(t *testing.T) {
	detector := NewAnomalyDetector()

	samples := []Sample{
		{Hours: 0, Value: 1},
		{Hours: 1, Value: 100},
	}

	if anomalies := detector.Detect(samples); anomalies != nil {
		t.Errorf("Detect() on 2 samples = %v, want nil", anomalies)
	}
}

func TestDetect_NormalSeriesClean(t *testing.T) {
	detector := NewAnomalyDetector()

	var samples []Sample
	for i := 0; i < 20; i++ {
		samples = append(samples, Sample{Hours: float64(i), Value: 50 + math.Sin(float64(i))})
	}

	if anomalies := detector.Detect(samples); len(anomalies) != 0 {
		t.Errorf("Detect() on smooth series found %d anomalies, want 0", len(anomalies))
	}
}

func TestSeverityFromZScore(t *testing.T) {
	tests := []struct {
		name   string
		zScore float64
		want   string
	}{
		{"extreme outlier", 3.5, "high"},
		{"extreme negative outlier", -3.5, "high"},
		{"strong outlier", 2.7, "medium"},
		{"mild outlier", 2.2, "low"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := severityFromZScore(tt.zScore); got != tt.want {
				t.Errorf("severityFromZScore(%v) = %v, want %v", tt.zScore, got, tt.want)
			}
		})
	}
}
