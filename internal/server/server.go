package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"citysense/internal/analytics"
	"citysense/internal/config"
	"citysense/internal/database"
	"citysense/internal/metrics"
)

// EventPublisher publishes domain events to the event bus.
type EventPublisher interface {
	Publish(ctx context.Context, stream string, payload map[string]interface{}) error
}

// Server represents the HTTP server
type Server struct {
	db         *database.DB
	events     EventPublisher
	forecaster *analytics.TrendForecaster
	leakModel  func() analytics.Regressor
	router     *mux.Router
}

// NewServer creates a new HTTP server. leakModel supplies a fresh model for
// each water leak risk request; nil disables the endpoint.
func NewServer(db *database.DB, events EventPublisher, leakModel func() analytics.Regressor) *Server {
	s := &Server{
		db:         db,
		events:     events,
		forecaster: analytics.NewTrendForecaster(nil),
		leakModel:  leakModel,
		router:     mux.NewRouter(),
	}

	s.router.Use(s.metricsMiddleware)

	s.router.HandleFunc("/", s.handleRoot).Methods("GET")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler())

	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Air quality
	api.HandleFunc("/airquality/stations", s.handleCreateStation).Methods("POST")
	api.HandleFunc("/airquality/stations", s.handleListStations).Methods("GET")
	api.HandleFunc("/airquality/stations/{station_id}", s.handleGetStation).Methods("GET")
	api.HandleFunc("/airquality/readings", s.handleCreateAirQualityReading).Methods("POST")
	api.HandleFunc("/airquality/readings/{station_id}", s.handleGetAirQualityReadings).Methods("GET")
	api.HandleFunc("/airquality/latest", s.handleLatestAirQuality).Methods("GET")
	api.HandleFunc("/airquality/trends/{station_id}", s.handleAirQualityTrends).Methods("GET")

	// Energy
	api.HandleFunc("/energy/meters", s.handleCreateMeter).Methods("POST")
	api.HandleFunc("/energy/meters", s.handleListMeters).Methods("GET")
	api.HandleFunc("/energy/meters/{meter_id}", s.handleGetMeter).Methods("GET")
	api.HandleFunc("/energy/readings", s.handleCreateEnergyReading).Methods("POST")
	api.HandleFunc("/energy/readings/{meter_id}", s.handleGetEnergyReadings).Methods("GET")
	api.HandleFunc("/energy/stats/{meter_id}", s.handleEnergyStats).Methods("GET")

	// Water
	api.HandleFunc("/water/sensors", s.handleCreateSensor).Methods("POST")
	api.HandleFunc("/water/sensors", s.handleListSensors).Methods("GET")
	api.HandleFunc("/water/sensors/{sensor_id}", s.handleGetSensor).Methods("GET")
	api.HandleFunc("/water/readings", s.handleCreateWaterReading).Methods("POST")
	api.HandleFunc("/water/readings/{sensor_id}", s.handleGetWaterReadings).Methods("GET")
	api.HandleFunc("/water/stats/{sensor_id}", s.handleWaterStats).Methods("GET")
	api.HandleFunc("/leaks", s.handleGetLeaks).Methods("GET")

	// Transport
	api.HandleFunc("/transport/vehicles", s.handleCreateVehicle).Methods("POST")
	api.HandleFunc("/transport/vehicles", s.handleListVehicles).Methods("GET")
	api.HandleFunc("/transport/vehicles/{vehicle_id}", s.handleGetVehicle).Methods("GET")
	api.HandleFunc("/transport/telemetry", s.handleCreateTelemetry).Methods("POST")
	api.HandleFunc("/transport/telemetry/{vehicle_id}", s.handleGetTelemetry).Methods("GET")
	api.HandleFunc("/transport/latest", s.handleLatestTelemetry).Methods("GET")
	api.HandleFunc("/transport/stats/{route_id}", s.handleRouteStats).Methods("GET")
	api.HandleFunc("/transport/optimize", s.handleOptimizeRoute).Methods("POST")

	// Predictions
	api.HandleFunc("/predict/energy/{meter_id}", s.handlePredictEnergy).Methods("POST")
	api.HandleFunc("/predict/airquality/{station_id}", s.handlePredictAirQuality).Methods("POST")
	api.HandleFunc("/predict/transport/{vehicle_id}", s.handlePredictTransport).Methods("POST")
	api.HandleFunc("/predict/water/{sensor_id}", s.handlePredictWaterLeak).Methods("POST")
	api.HandleFunc("/predictions/{service_type}", s.handleGetPredictions).Methods("GET")
	api.HandleFunc("/analytics/accuracy", s.handleModelAccuracy).Methods("GET")
	api.HandleFunc("/analytics/anomalies/{service_type}/{entity_id}", s.handleDetectAnomalies).Methods("GET")
	api.HandleFunc("/alerts", s.handleGetAlerts).Methods("GET")

	return s
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	return http.ListenAndServe(addr, s.router)
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "citysense",
		"version": "1.0",
	})
}

// handleHealth returns the server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().String(),
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// metricsMiddleware records request counts and latency per route template.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		handler := r.URL.Path
		if route := mux.CurrentRoute(r); route != nil {
			if tmpl, err := route.GetPathTemplate(); err == nil {
				handler = tmpl
			}
		}
		metrics.RecordHTTPRequest(handler, r.Method, rec.status, time.Since(start))
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func queryLimit(r *http.Request, fallback int) int {
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func queryDays(r *http.Request, fallback int) int {
	if v := r.URL.Query().Get("days"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

// historicalCutoff is how far back series accessors look for forecasting.
func historicalCutoff() time.Time {
	return time.Now().AddDate(0, 0, -config.Get().Forecast.HistoricalDays)
}
