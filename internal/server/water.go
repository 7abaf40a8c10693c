package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"citysense/internal/bus"
	"citysense/internal/models"
)

// CreateSensorRequest registers a water sensor.
type CreateSensorRequest struct {
	SensorID   string `json:"sensor_id"`
	Location   string `json:"location"`
	SensorType string `json:"sensor_type"`
}

// CreateWaterReadingRequest submits one sensor measurement.
type CreateWaterReadingRequest struct {
	SensorID     string   `json:"sensor_id"`
	FlowRate     *float64 `json:"flow_rate"`
	Pressure     *float64 `json:"pressure"`
	Temperature  *float64 `json:"temperature"`
	LeakDetected bool     `json:"leak_detected"`
}

func (s *Server) handleCreateSensor(w http.ResponseWriter, r *http.Request) {
	var req CreateSensorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.SensorID == "" {
		writeError(w, http.StatusBadRequest, "sensor_id is required")
		return
	}
	if req.SensorType == "" {
		req.SensorType = "flow"
	}

	sensor := &models.WaterSensor{
		SensorID:   req.SensorID,
		Location:   req.Location,
		SensorType: req.SensorType,
		Status:     "active",
		CreatedAt:  time.Now(),
	}

	if err := s.db.CreateWaterSensor(sensor); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, sensor)
}

func (s *Server) handleListSensors(w http.ResponseWriter, r *http.Request) {
	sensors, err := s.db.GetWaterSensors()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(sensors),
		"sensors": sensors,
	})
}

func (s *Server) handleGetSensor(w http.ResponseWriter, r *http.Request) {
	sensorID := mux.Vars(r)["sensor_id"]
	sensor, err := s.db.GetWaterSensor(sensorID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sensor)
}

func (s *Server) handleCreateWaterReading(w http.ResponseWriter, r *http.Request) {
	var req CreateWaterReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.SensorID == "" {
		writeError(w, http.StatusBadRequest, "sensor_id is required")
		return
	}
	if req.FlowRate != nil && *req.FlowRate < 0 {
		writeError(w, http.StatusBadRequest, "flow_rate cannot be negative")
		return
	}

	reading := &models.WaterReading{
		SensorID:     req.SensorID,
		Timestamp:    time.Now(),
		FlowRate:     req.FlowRate,
		Pressure:     req.Pressure,
		Temperature:  req.Temperature,
		LeakDetected: req.LeakDetected,
	}

	if err := s.db.InsertWaterReading(reading); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.publish(r.Context(), bus.StreamWaterReading, map[string]interface{}{
		"sensor_id":     reading.SensorID,
		"leak_detected": reading.LeakDetected,
	})

	if reading.LeakDetected {
		s.raiseAlert(r.Context(), &models.Alert{
			ServiceType: "water",
			EntityID:    reading.SensorID,
			AlertType:   "leak_detected",
			Severity:    "critical",
			Message:     fmt.Sprintf("Leak detected by sensor %s", reading.SensorID),
			Timestamp:   time.Now(),
		}, bus.StreamWaterLeakAlert)
	}

	writeJSON(w, http.StatusCreated, reading)
}

func (s *Server) handleGetWaterReadings(w http.ResponseWriter, r *http.Request) {
	sensorID := mux.Vars(r)["sensor_id"]
	limit := queryLimit(r, 100)

	readings, err := s.db.GetWaterReadings(sensorID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sensor_id": sensorID,
		"count":     len(readings),
		"readings":  readings,
	})
}

func (s *Server) handleGetLeaks(w http.ResponseWriter, r *http.Request) {
	days := queryDays(r, 7)

	leaks, err := s.db.GetLeakEvents(days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"period_days": days,
		"total_leaks": len(leaks),
		"leaks":       leaks,
	})
}

func (s *Server) handleWaterStats(w http.ResponseWriter, r *http.Request) {
	sensorID := mux.Vars(r)["sensor_id"]
	days := queryDays(r, 7)

	stats, err := s.db.GetWaterDailyStats(sensorID, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"sensor_id": sensorID,
		"days":      days,
		"stats":     stats,
	})
}
