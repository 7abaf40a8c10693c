package server

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"citysense/internal/analytics"
	"citysense/internal/bus"
	"citysense/internal/config"
	"citysense/internal/metrics"
	"citysense/internal/models"
)

// leakRiskAlertThreshold is the predicted probability that raises an alert.
const leakRiskAlertThreshold = 0.7

// forecastSeries fits the trend forecaster over a time series and projects it
// one horizon past now. Returns the sample count alongside the forecast.
func (s *Server) forecastSeries(times []time.Time, values []float64) (analytics.Forecast, int, error) {
	samples, err := analytics.SamplesFromSeries(times, values)
	if err != nil {
		return analytics.Forecast{}, 0, err
	}

	target := time.Since(times[0]).Hours() + config.Get().Forecast.HorizonHours
	forecast, err := s.forecaster.Forecast(samples, target)
	if err != nil {
		return analytics.Forecast{}, len(samples), err
	}
	return forecast, len(samples), nil
}

// storePrediction persists a forecast and publishes it on the bus.
func (s *Server) storePrediction(r *http.Request, serviceType, entityID, predictionType string, forecast analytics.Forecast) {
	prediction := &models.Prediction{
		ServiceType:     serviceType,
		EntityID:        entityID,
		PredictionType:  predictionType,
		PredictedValue:  forecast.PredictedValue,
		ConfidenceScore: forecast.ConfidenceScore,
		Timestamp:       time.Now(),
	}
	if err := s.db.InsertPrediction(prediction); err != nil {
		log.Printf("Failed to store %s prediction for %s: %v", predictionType, entityID, err)
	}
	s.publish(r.Context(), bus.StreamPrediction, map[string]interface{}{
		"service_type":     serviceType,
		"entity_id":        entityID,
		"prediction_type":  predictionType,
		"predicted_value":  forecast.PredictedValue,
		"confidence_score": forecast.ConfidenceScore,
	})
}

func (s *Server) handlePredictEnergy(w http.ResponseWriter, r *http.Request) {
	meterID := mux.Vars(r)["meter_id"]
	cfg := config.Get()

	times, values, err := s.db.GetConsumptionSeries(meterID, historicalCutoff())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(values) < cfg.Forecast.MinSamples {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("insufficient data: need at least %d samples, have %d", cfg.Forecast.MinSamples, len(values)))
		return
	}

	forecast, sampleCount, err := s.forecastSeries(times, values)
	metrics.RecordPrediction("energy", err)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.storePrediction(r, "energy", meterID, "consumption_forecast", forecast)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"meter_id":         meterID,
		"prediction_type":  "consumption_forecast",
		"predicted_value":  forecast.PredictedValue,
		"confidence_score": forecast.ConfidenceScore,
		"horizon_hours":    cfg.Forecast.HorizonHours,
		"sample_count":     sampleCount,
	})
}

func (s *Server) handlePredictAirQuality(w http.ResponseWriter, r *http.Request) {
	stationID := mux.Vars(r)["station_id"]
	cfg := config.Get()

	times, values, err := s.db.GetAQISeries(stationID, historicalCutoff())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(values) < cfg.Forecast.MinSamples {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("insufficient data: need at least %d samples, have %d", cfg.Forecast.MinSamples, len(values)))
		return
	}

	forecast, sampleCount, err := s.forecastSeries(times, values)
	metrics.RecordPrediction("airquality", err)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	predictedAQI := int(forecast.PredictedValue)
	if predictedAQI < 0 {
		predictedAQI = 0
	}
	status := analytics.ForecastStatus(predictedAQI)

	s.storePrediction(r, "airquality", stationID, "aqi_forecast", forecast)

	if predictedAQI > 150 {
		severity := "warning"
		if predictedAQI > 200 {
			severity = "critical"
		}
		s.raiseAlert(r.Context(), &models.Alert{
			ServiceType: "airquality",
			EntityID:    stationID,
			AlertType:   "predicted_high_aqi",
			Severity:    severity,
			Message:     fmt.Sprintf("Predicted AQI %d (%s) at station %s", predictedAQI, status, stationID),
			Timestamp:   time.Now(),
		}, bus.StreamPredictionAlert)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"station_id":       stationID,
		"prediction_type":  "aqi_forecast",
		"predicted_value":  predictedAQI,
		"status":           status,
		"confidence_score": forecast.ConfidenceScore,
		"horizon_hours":    cfg.Forecast.HorizonHours,
		"sample_count":     sampleCount,
	})
}

func (s *Server) handlePredictTransport(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["vehicle_id"]
	cfg := config.Get()

	times, values, err := s.db.GetPassengerSeries(vehicleID, historicalCutoff())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(values) < cfg.Forecast.MinSamples {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("insufficient data: need at least %d samples, have %d", cfg.Forecast.MinSamples, len(values)))
		return
	}

	forecast, sampleCount, err := s.forecastSeries(times, values)
	metrics.RecordPrediction("transport", err)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	s.storePrediction(r, "transport", vehicleID, "passenger_demand_forecast", forecast)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"vehicle_id":       vehicleID,
		"prediction_type":  "passenger_demand_forecast",
		"predicted_value":  forecast.PredictedValue,
		"confidence_score": forecast.ConfidenceScore,
		"horizon_hours":    cfg.Forecast.HorizonHours,
		"sample_count":     sampleCount,
	})
}

func (s *Server) handlePredictWaterLeak(w http.ResponseWriter, r *http.Request) {
	sensorID := mux.Vars(r)["sensor_id"]

	if s.leakModel == nil {
		writeError(w, http.StatusServiceUnavailable, "leak risk model not configured")
		return
	}
	cfg := config.Get()

	features, labels, err := s.db.GetLeakTrainingData(sensorID, historicalCutoff())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(labels) < cfg.Forecast.MinLeakSamples {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("insufficient data: need at least %d samples, have %d", cfg.Forecast.MinLeakSamples, len(labels)))
		return
	}

	latest, err := s.db.GetWaterReadings(sensorID, 1)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if len(latest) == 0 || latest[0].FlowRate == nil || latest[0].Pressure == nil {
		writeError(w, http.StatusBadRequest, "no recent reading with flow_rate and pressure")
		return
	}

	model := s.leakModel()
	if err := model.Fit(features, labels); err != nil {
		metrics.RecordPrediction("water", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	probability, err := model.Predict([]float64{*latest[0].FlowRate, *latest[0].Pressure})
	metrics.RecordPrediction("water", err)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if probability < 0 {
		probability = 0
	}
	if probability > 1 {
		probability = 1
	}

	confidence, err := model.Score(features, labels)
	if err != nil {
		confidence = 0
	}

	riskLevel := "low"
	switch {
	case probability > 0.7:
		riskLevel = "high"
	case probability > 0.3:
		riskLevel = "medium"
	}

	s.storePrediction(r, "water", sensorID, "leak_risk", analytics.Forecast{
		PredictedValue:  probability,
		ConfidenceScore: confidence,
	})

	if probability > leakRiskAlertThreshold {
		s.raiseAlert(r.Context(), &models.Alert{
			ServiceType: "water",
			EntityID:    sensorID,
			AlertType:   "high_leak_risk",
			Severity:    "critical",
			Message:     fmt.Sprintf("Predicted leak probability %.2f for sensor %s", probability, sensorID),
			Timestamp:   time.Now(),
		}, bus.StreamPredictionAlert)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sensor_id":        sensorID,
		"prediction_type":  "leak_risk",
		"leak_probability": probability,
		"risk_level":       riskLevel,
		"confidence_score": confidence,
		"sample_count":     len(labels),
	})
}

func (s *Server) handleGetPredictions(w http.ResponseWriter, r *http.Request) {
	serviceType := mux.Vars(r)["service_type"]
	limit := queryLimit(r, 100)

	switch serviceType {
	case "energy", "airquality", "transport", "water":
	default:
		writeError(w, http.StatusBadRequest, "unknown service type: "+serviceType)
		return
	}

	predictions, err := s.db.GetPredictions(serviceType, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service_type": serviceType,
		"count":        len(predictions),
		"predictions":  predictions,
	})
}

func (s *Server) handleModelAccuracy(w http.ResponseWriter, r *http.Request) {
	accuracy, err := s.db.GetModelAccuracy()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(accuracy),
		"accuracy": accuracy,
	})
}

// handleDetectAnomalies runs z-score outlier detection over an entity's
// recent series.
func (s *Server) handleDetectAnomalies(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	serviceType := vars["service_type"]
	entityID := vars["entity_id"]

	var times []time.Time
	var values []float64
	var err error

	switch serviceType {
	case "airquality":
		times, values, err = s.db.GetAQISeries(entityID, historicalCutoff())
	case "energy":
		times, values, err = s.db.GetConsumptionSeries(entityID, historicalCutoff())
	case "transport":
		times, values, err = s.db.GetPassengerSeries(entityID, historicalCutoff())
	default:
		writeError(w, http.StatusBadRequest, "unknown service type: "+serviceType)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	var anomalies []analytics.Anomaly
	if len(values) > 0 {
		samples, err := analytics.SamplesFromSeries(times, values)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		anomalies = analytics.NewAnomalyDetector().Detect(samples)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service_type": serviceType,
		"entity_id":    entityID,
		"sample_count": len(values),
		"count":        len(anomalies),
		"anomalies":    anomalies,
	})
}

func (s *Server) handleGetAlerts(w http.ResponseWriter, r *http.Request) {
	serviceType := r.URL.Query().Get("service_type")
	limit := queryLimit(r, 100)

	alerts, err := s.db.GetAlerts(serviceType, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(alerts),
		"alerts": alerts,
	})
}
