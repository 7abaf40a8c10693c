package analytics

import "math"

// Anomaly is one sample flagged as a statistical outlier within a series.
type Anomaly struct {
	Hours    float64 `json:"hours"`
	Value    float64 `json:"value"`
	ZScore   float64 `json:"z_score"`
	Severity string  `json:"severity"`
}

// AnomalyDetector flags samples whose z-score against the series mean exceeds
// a threshold.
type AnomalyDetector struct {
	zScoreThreshold float64
}

// NewAnomalyDetector creates a detector flagging values more than 2 standard
// deviations from the mean.
func NewAnomalyDetector() *AnomalyDetector {
	return &AnomalyDetector{zScoreThreshold: 2.0}
}

// Detect scans samples for outliers. Fewer than 3 samples or a series with no
// variation yields no anomalies.
func (d *AnomalyDetector) Detect(samples []Sample) []Anomaly {
	if len(samples) < 3 {
		return nil
	}

	values := make([]float64, len(samples))
	for i, s := range samples {
		values[i] = s.Value
	}

	mean := calculateMean(values)
	stdDev := calculateStdDev(values, mean)
	if stdDev == 0 {
		return nil
	}

	var anomalies []Anomaly
	for _, s := range samples {
		zScore := CalculateZScore(s.Value, mean, stdDev)
		if math.Abs(zScore) > d.zScoreThreshold {
			anomalies = append(anomalies, Anomaly{
				Hours:    s.Hours,
				Value:    s.Value,
				ZScore:   zScore,
				Severity: severityFromZScore(zScore),
			})
		}
	}
	return anomalies
}

// CalculateZScore calculates the Z-score for a value given mean and standard deviation
func CalculateZScore(value, mean, stdDev float64) float64 {
	if stdDev == 0 {
		return 0
	}
	return (value - mean) / stdDev
}

func severityFromZScore(zScore float64) string {
	absZScore := math.Abs(zScore)
	if absZScore > 3.0 {
		return "high"
	} else if absZScore > 2.5 {
		return "medium"
	}
	return "low"
}

func calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func calculateStdDev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sumSquares := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquares += diff * diff
	}
	return math.Sqrt(sumSquares / float64(len(values)))
}
