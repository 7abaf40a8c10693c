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

// powerAlertThreshold is the consumption level (watts) that raises an alert.
const powerAlertThreshold = 10000.0

// CreateMeterRequest registers a smart meter.
type CreateMeterRequest struct {
	MeterID   string `json:"meter_id"`
	Location  string `json:"location"`
	MeterType string `json:"meter_type"`
}

// CreateEnergyReadingRequest submits one meter measurement.
type CreateEnergyReadingRequest struct {
	MeterID          string   `json:"meter_id"`
	Voltage          *float64 `json:"voltage"`
	Current          *float64 `json:"current"`
	PowerConsumption float64  `json:"power_consumption"`
	EnergyTotal      *float64 `json:"energy_total"`
	PowerFactor      *float64 `json:"power_factor"`
}

func (s *Server) handleCreateMeter(w http.ResponseWriter, r *http.Request) {
	var req CreateMeterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.MeterID == "" {
		writeError(w, http.StatusBadRequest, "meter_id is required")
		return
	}
	if req.MeterType == "" {
		req.MeterType = "residential"
	}

	meter := &models.SmartMeter{
		MeterID:   req.MeterID,
		Location:  req.Location,
		MeterType: req.MeterType,
		Status:    "active",
		CreatedAt: time.Now(),
	}

	if err := s.db.CreateSmartMeter(meter); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, meter)
}

func (s *Server) handleListMeters(w http.ResponseWriter, r *http.Request) {
	meters, err := s.db.GetSmartMeters()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":  len(meters),
		"meters": meters,
	})
}

func (s *Server) handleGetMeter(w http.ResponseWriter, r *http.Request) {
	meterID := mux.Vars(r)["meter_id"]
	meter, err := s.db.GetSmartMeter(meterID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, meter)
}

func (s *Server) handleCreateEnergyReading(w http.ResponseWriter, r *http.Request) {
	var req CreateEnergyReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.MeterID == "" {
		writeError(w, http.StatusBadRequest, "meter_id is required")
		return
	}
	if req.PowerConsumption < 0 {
		writeError(w, http.StatusBadRequest, "power_consumption cannot be negative")
		return
	}

	reading := &models.EnergyReading{
		MeterID:          req.MeterID,
		Timestamp:        time.Now(),
		Voltage:          req.Voltage,
		Current:          req.Current,
		PowerConsumption: req.PowerConsumption,
		EnergyTotal:      req.EnergyTotal,
		PowerFactor:      req.PowerFactor,
	}

	if err := s.db.InsertEnergyReading(reading); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.publish(r.Context(), bus.StreamEnergyReading, map[string]interface{}{
		"meter_id":          reading.MeterID,
		"power_consumption": reading.PowerConsumption,
	})

	if reading.PowerConsumption > powerAlertThreshold {
		s.raiseAlert(r.Context(), &models.Alert{
			ServiceType: "energy",
			EntityID:    reading.MeterID,
			AlertType:   "high_consumption",
			Severity:    "warning",
			Message:     fmt.Sprintf("Power consumption %.1fW exceeds %.0fW on meter %s", reading.PowerConsumption, powerAlertThreshold, reading.MeterID),
			Timestamp:   time.Now(),
		}, bus.StreamEnergyAlert)
	}

	writeJSON(w, http.StatusCreated, reading)
}

func (s *Server) handleGetEnergyReadings(w http.ResponseWriter, r *http.Request) {
	meterID := mux.Vars(r)["meter_id"]
	limit := queryLimit(r, 100)

	readings, err := s.db.GetEnergyReadings(meterID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"meter_id": meterID,
		"count":    len(readings),
		"readings": readings,
	})
}

func (s *Server) handleEnergyStats(w http.ResponseWriter, r *http.Request) {
	meterID := mux.Vars(r)["meter_id"]
	days := queryDays(r, 7)

	stats, err := s.db.GetEnergyDailyStats(meterID, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"meter_id": meterID,
		"days":     days,
		"stats":    stats,
	})
}
