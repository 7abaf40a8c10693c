package analytics

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInput marks malformed or degenerate numeric input. It is never
// retried internally; retrying a pure computation with the same input would
// produce the same failure.
var ErrInvalidInput = errors.New("invalid input")

// Sample is one point of a time series: hours elapsed since the series
// start, and the observed value.
type Sample struct {
	Hours float64
	Value float64
}

// Forecast is a point prediction with its in-sample confidence. The
// confidence is R² against the training samples, so it can be negative for
// a poor fit and tends to overstate out-of-sample accuracy.
type Forecast struct {
	PredictedValue  float64 `json:"predicted_value"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// Regressor is the pluggable regression strategy behind forecasting. The
// default is single-feature least squares; heavier models (e.g. the
// two-feature leak-risk regressor) satisfy the same shape so call sites
// stay unchanged.
type Regressor interface {
	Fit(features [][]float64, labels []float64) error
	Predict(features []float64) (float64, error)
	Score(features [][]float64, labels []float64) (float64, error)
}

// LinearRegression is an ordinary least squares fit of one feature.
type LinearRegression struct {
	Slope     float64
	Intercept float64
	fitted    bool
}

// NewLinearRegression creates an unfitted single-feature OLS model.
func NewLinearRegression() *LinearRegression {
	return &LinearRegression{}
}

// Fit computes slope and intercept minimizing squared residuals. Each
// feature row must hold exactly one value; at least two rows with distinct
// x values are required.
func (m *LinearRegression) Fit(features [][]float64, labels []float64) error {
	if len(features) != len(labels) {
		return fmt.Errorf("%w: %d feature rows for %d labels", ErrInvalidInput, len(features), len(labels))
	}
	if len(features) < 2 {
		return fmt.Errorf("%w: need at least 2 samples, got %d", ErrInvalidInput, len(features))
	}

	xs := make([]float64, len(features))
	for i, row := range features {
		if len(row) != 1 {
			return fmt.Errorf("%w: expected 1 feature per row, got %d", ErrInvalidInput, len(row))
		}
		xs[i] = row[0]
	}

	n := float64(len(xs))
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += labels[i]
	}
	meanX := sumX / n
	meanY := sumY / n

	var sxx, sxy float64
	for i := range xs {
		dx := xs[i] - meanX
		sxx += dx * dx
		sxy += dx * (labels[i] - meanY)
	}

	if sxx == 0 {
		return fmt.Errorf("%w: all x values identical, slope undefined", ErrInvalidInput)
	}

	m.Slope = sxy / sxx
	m.Intercept = meanY - m.Slope*meanX
	m.fitted = true
	return nil
}

// Predict evaluates the fitted line at one feature value.
func (m *LinearRegression) Predict(features []float64) (float64, error) {
	if !m.fitted {
		return 0, fmt.Errorf("%w: model not fitted", ErrInvalidInput)
	}
	if len(features) != 1 {
		return 0, fmt.Errorf("%w: expected 1 feature, got %d", ErrInvalidInput, len(features))
	}
	return m.Intercept + m.Slope*features[0], nil
}

// Score returns the coefficient of determination R² against the given
// samples. A series with zero variance scores 1.0 when the residuals are
// also zero; zero variance with nonzero residuals has no defined R².
func (m *LinearRegression) Score(features [][]float64, labels []float64) (float64, error) {
	if !m.fitted {
		return 0, fmt.Errorf("%w: model not fitted", ErrInvalidInput)
	}
	if len(features) != len(labels) || len(labels) == 0 {
		return 0, fmt.Errorf("%w: %d feature rows for %d labels", ErrInvalidInput, len(features), len(labels))
	}

	var sumY float64
	for _, y := range labels {
		sumY += y
	}
	meanY := sumY / float64(len(labels))

	var ssRes, ssTot float64
	for i, row := range features {
		predicted, err := m.Predict(row)
		if err != nil {
			return 0, err
		}
		residual := labels[i] - predicted
		ssRes += residual * residual
		dy := labels[i] - meanY
		ssTot += dy * dy
	}

	if ssTot == 0 {
		if ssRes == 0 {
			return 1.0, nil
		}
		return 0, fmt.Errorf("%w: zero variance in labels with nonzero residuals", ErrInvalidInput)
	}

	return 1 - ssRes/ssTot, nil
}

// TrendForecaster fits a regression model over a time series and
// extrapolates it to a future point. A fresh model is built per call, so a
// single forecaster is safe to share across requests.
type TrendForecaster struct {
	newModel func() Regressor
}

// NewTrendForecaster creates a forecaster using the given model factory,
// or single-feature least squares when the factory is nil.
func NewTrendForecaster(newModel func() Regressor) *TrendForecaster {
	if newModel == nil {
		newModel = func() Regressor { return NewLinearRegression() }
	}
	return &TrendForecaster{newModel: newModel}
}

// Forecast fits the series and predicts the value at atHours elapsed hours.
// At least 2 samples with distinct x values are required; callers needing
// stricter minimums (10 or 20 samples) enforce those before calling.
func (f *TrendForecaster) Forecast(samples []Sample, atHours float64) (Forecast, error) {
	if len(samples) < 2 {
		return Forecast{}, fmt.Errorf("%w: need at least 2 samples, got %d", ErrInvalidInput, len(samples))
	}

	features := make([][]float64, len(samples))
	labels := make([]float64, len(samples))
	for i, s := range samples {
		features[i] = []float64{s.Hours}
		labels[i] = s.Value
	}

	model := f.newModel()
	if err := model.Fit(features, labels); err != nil {
		return Forecast{}, err
	}

	predicted, err := model.Predict([]float64{atHours})
	if err != nil {
		return Forecast{}, err
	}

	confidence, err := model.Score(features, labels)
	if err != nil {
		return Forecast{}, err
	}

	return Forecast{PredictedValue: predicted, ConfidenceScore: confidence}, nil
}

// SamplesFromSeries converts timestamped values into elapsed-hour samples
// relative to the earliest timestamp. Lengths must match; the input does not
// need to be sorted.
func SamplesFromSeries(times []time.Time, values []float64) ([]Sample, error) {
	if len(times) != len(values) {
		return nil, fmt.Errorf("%w: %d timestamps for %d values", ErrInvalidInput, len(times), len(values))
	}
	if len(times) == 0 {
		return nil, nil
	}

	start := times[0]
	for _, ts := range times[1:] {
		if ts.Before(start) {
			start = ts
		}
	}
	samples := make([]Sample, len(times))
	for i := range times {
		samples[i] = Sample{
			Hours: times[i].Sub(start).Hours(),
			Value: values[i],
		}
	}
	return samples, nil
}
