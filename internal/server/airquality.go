package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"citysense/internal/analytics"
	"citysense/internal/bus"
	"citysense/internal/models"
)

// CreateStationRequest registers a monitoring station.
type CreateStationRequest struct {
	StationID string  `json:"station_id"`
	Location  string  `json:"location"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// CreateAirQualityReadingRequest submits one station measurement.
type CreateAirQualityReadingRequest struct {
	StationID   string   `json:"station_id"`
	PM25        *float64 `json:"pm25"`
	PM10        *float64 `json:"pm10"`
	CO2         *float64 `json:"co2"`
	CO          *float64 `json:"co"`
	NO2         *float64 `json:"no2"`
	O3          *float64 `json:"o3"`
	Temperature *float64 `json:"temperature"`
	Humidity    *float64 `json:"humidity"`
}

func (s *Server) handleCreateStation(w http.ResponseWriter, r *http.Request) {
	var req CreateStationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.StationID == "" {
		writeError(w, http.StatusBadRequest, "station_id is required")
		return
	}
	if req.Latitude < -90 || req.Latitude > 90 {
		writeError(w, http.StatusBadRequest, "Latitude must be between -90 and 90")
		return
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		writeError(w, http.StatusBadRequest, "Longitude must be between -180 and 180")
		return
	}

	station := &models.AirQualityStation{
		StationID: req.StationID,
		Location:  req.Location,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Status:    "active",
		CreatedAt: time.Now(),
	}

	if err := s.db.CreateAirQualityStation(station); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, station)
}

func (s *Server) handleListStations(w http.ResponseWriter, r *http.Request) {
	stations, err := s.db.GetAirQualityStations()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(stations),
		"stations": stations,
	})
}

func (s *Server) handleGetStation(w http.ResponseWriter, r *http.Request) {
	stationID := mux.Vars(r)["station_id"]
	station, err := s.db.GetAirQualityStation(stationID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, station)
}

func (s *Server) handleCreateAirQualityReading(w http.ResponseWriter, r *http.Request) {
	var req CreateAirQualityReadingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.StationID == "" {
		writeError(w, http.StatusBadRequest, "station_id is required")
		return
	}

	aqi := analytics.ComputeAQI(analytics.PollutantReading{
		PM25: req.PM25,
		PM10: req.PM10,
		CO:   req.CO,
		NO2:  req.NO2,
		O3:   req.O3,
	})

	reading := &models.AirQualityReading{
		StationID:   req.StationID,
		Timestamp:   time.Now(),
		PM25:        req.PM25,
		PM10:        req.PM10,
		CO2:         req.CO2,
		CO:          req.CO,
		NO2:         req.NO2,
		O3:          req.O3,
		Temperature: req.Temperature,
		Humidity:    req.Humidity,
		AQI:         aqi,
	}

	if err := s.db.InsertAirQualityReading(reading); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.publish(r.Context(), bus.StreamAirQualityReading, map[string]interface{}{
		"station_id": reading.StationID,
		"aqi":        aqi,
		"status":     analytics.Status(aqi),
	})

	if aqi > 150 {
		severity := "warning"
		if aqi > 200 {
			severity = "critical"
		}
		s.raiseAlert(r.Context(), &models.Alert{
			ServiceType: "airquality",
			EntityID:    reading.StationID,
			AlertType:   "high_aqi",
			Severity:    severity,
			Message:     fmt.Sprintf("AQI %d (%s) at station %s", aqi, analytics.Status(aqi), reading.StationID),
			Timestamp:   time.Now(),
		}, bus.StreamAirQualityAlert)
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"reading": reading,
		"aqi":     aqi,
		"status":  analytics.Status(aqi),
	})
}

func (s *Server) handleGetAirQualityReadings(w http.ResponseWriter, r *http.Request) {
	stationID := mux.Vars(r)["station_id"]
	limit := queryLimit(r, 100)

	readings, err := s.db.GetAirQualityReadings(stationID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"station_id": stationID,
		"count":      len(readings),
		"readings":   readings,
	})
}

func (s *Server) handleLatestAirQuality(w http.ResponseWriter, r *http.Request) {
	readings, err := s.db.GetLatestAirQualityReadings()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(readings),
		"readings": readings,
	})
}

func (s *Server) handleAirQualityTrends(w http.ResponseWriter, r *http.Request) {
	stationID := mux.Vars(r)["station_id"]
	days := queryDays(r, 7)

	trends, err := s.db.GetAirQualityTrends(stationID, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	for i := range trends {
		trends[i].Status = analytics.Status(trends[i].AvgAQI)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"station_id": stationID,
		"days":       days,
		"trends":     trends,
	})
}

// publish sends an event, logging instead of failing the request on error.
func (s *Server) publish(ctx context.Context, stream string, payload map[string]interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, stream, payload); err != nil {
		log.Printf("Failed to publish to %s: %v", stream, err)
	}
}

// raiseAlert stores an alert and publishes it to the given stream.
func (s *Server) raiseAlert(ctx context.Context, alert *models.Alert, stream string) {
	if err := s.db.InsertAlert(alert); err != nil {
		log.Printf("Failed to store %s alert for %s: %v", alert.AlertType, alert.EntityID, err)
	}
	s.publish(ctx, stream, map[string]interface{}{
		"service_type": alert.ServiceType,
		"entity_id":    alert.EntityID,
		"alert_type":   alert.AlertType,
		"severity":     alert.Severity,
		"message":      alert.Message,
	})
}
