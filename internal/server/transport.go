package server

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"citysense/internal/analytics"
	"citysense/internal/bus"
	"citysense/internal/models"
)

// fuelAlertThreshold is the fuel level (percent) below which an alert fires.
const fuelAlertThreshold = 20.0

// CreateVehicleRequest registers a transport vehicle.
type CreateVehicleRequest struct {
	VehicleID   string  `json:"vehicle_id"`
	VehicleType string  `json:"vehicle_type"`
	RouteID     *string `json:"route_id"`
	Capacity    *int    `json:"capacity"`
}

// CreateTelemetryRequest submits one vehicle position report.
type CreateTelemetryRequest struct {
	VehicleID  string   `json:"vehicle_id"`
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Speed      *float64 `json:"speed"`
	FuelLevel  *float64 `json:"fuel_level"`
	Passengers *int     `json:"passengers"`
}

func (s *Server) handleCreateVehicle(w http.ResponseWriter, r *http.Request) {
	var req CreateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.VehicleID == "" {
		writeError(w, http.StatusBadRequest, "vehicle_id is required")
		return
	}
	if req.VehicleType == "" {
		req.VehicleType = "bus"
	}

	vehicle := &models.Vehicle{
		VehicleID:   req.VehicleID,
		VehicleType: req.VehicleType,
		RouteID:     req.RouteID,
		Capacity:    req.Capacity,
		Status:      "active",
		CreatedAt:   time.Now(),
	}

	if err := s.db.CreateVehicle(vehicle); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, vehicle)
}

func (s *Server) handleListVehicles(w http.ResponseWriter, r *http.Request) {
	vehicles, err := s.db.GetVehicles()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(vehicles),
		"vehicles": vehicles,
	})
}

func (s *Server) handleGetVehicle(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["vehicle_id"]
	vehicle, err := s.db.GetVehicle(vehicleID)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, vehicle)
}

func (s *Server) handleCreateTelemetry(w http.ResponseWriter, r *http.Request) {
	var req CreateTelemetryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	if req.VehicleID == "" {
		writeError(w, http.StatusBadRequest, "vehicle_id is required")
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

	telemetry := &models.TransportTelemetry{
		VehicleID:  req.VehicleID,
		Timestamp:  time.Now(),
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		Speed:      req.Speed,
		FuelLevel:  req.FuelLevel,
		Passengers: req.Passengers,
	}

	if err := s.db.InsertTelemetry(telemetry); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.publish(r.Context(), bus.StreamTransportTelem, map[string]interface{}{
		"vehicle_id": telemetry.VehicleID,
		"latitude":   telemetry.Latitude,
		"longitude":  telemetry.Longitude,
	})

	if telemetry.FuelLevel != nil && *telemetry.FuelLevel < fuelAlertThreshold {
		s.raiseAlert(r.Context(), &models.Alert{
			ServiceType: "transport",
			EntityID:    telemetry.VehicleID,
			AlertType:   "low_fuel",
			Severity:    "warning",
			Message:     fmt.Sprintf("Fuel level %.1f%% below %.0f%% on vehicle %s", *telemetry.FuelLevel, fuelAlertThreshold, telemetry.VehicleID),
			Timestamp:   time.Now(),
		}, bus.StreamTransportAlert)
	}

	writeJSON(w, http.StatusCreated, telemetry)
}

func (s *Server) handleGetTelemetry(w http.ResponseWriter, r *http.Request) {
	vehicleID := mux.Vars(r)["vehicle_id"]
	limit := queryLimit(r, 100)

	telemetry, err := s.db.GetTelemetry(vehicleID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"vehicle_id": vehicleID,
		"count":      len(telemetry),
		"telemetry":  telemetry,
	})
}

func (s *Server) handleLatestTelemetry(w http.ResponseWriter, r *http.Request) {
	telemetry, err := s.db.GetLatestTelemetry()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":     len(telemetry),
		"telemetry": telemetry,
	})
}

func (s *Server) handleRouteStats(w http.ResponseWriter, r *http.Request) {
	routeID := mux.Vars(r)["route_id"]
	days := queryDays(r, 7)

	stats, err := s.db.GetRouteDailyStats(routeID, days)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"route_id": routeID,
		"days":     days,
		"stats":    stats,
	})
}

// handleOptimizeRoute reorders waypoints into a greedy nearest-neighbor tour.
// The body is a JSON array of objects with latitude/longitude; any other keys
// ride along unchanged.
func (s *Server) handleOptimizeRoute(w http.ResponseWriter, r *http.Request) {
	var raw []map[string]interface{}
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	waypoints := make([]analytics.Waypoint, 0, len(raw))
	for i, item := range raw {
		lat, latOK := numberField(item, "latitude")
		lon, lonOK := numberField(item, "longitude")
		if !latOK || !lonOK {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("waypoint %d missing latitude or longitude", i))
			return
		}
		if lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("waypoint %d has out-of-range coordinates", i))
			return
		}

		meta := make(map[string]interface{})
		for k, v := range item {
			if k != "latitude" && k != "longitude" {
				meta[k] = v
			}
		}
		waypoints = append(waypoints, analytics.Waypoint{
			Latitude:  lat,
			Longitude: lon,
			Meta:      meta,
		})
	}

	optimized, totalKm := analytics.OptimizeRoute(waypoints)

	route := make([]map[string]interface{}, 0, len(optimized))
	for _, wp := range optimized {
		entry := map[string]interface{}{
			"latitude":  wp.Latitude,
			"longitude": wp.Longitude,
		}
		for k, v := range wp.Meta {
			entry[k] = v
		}
		route = append(route, entry)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"optimized_route":   route,
		"total_distance_km": math.Round(totalKm*100) / 100,
		"waypoint_count":    len(route),
	})
}

func numberField(item map[string]interface{}, key string) (float64, bool) {
	v, ok := item[key]
	if !ok {
		return 0, false
	}
	f, ok := v.(float64)
	return f, ok
}
