package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewServer(t *testing.T) {
	s := NewServer(nil, nil, nil)

	if s.router == nil {
		t.Error("NewServer() router should not be nil")
	}
	if s.forecaster == nil {
		t.Error("NewServer() forecaster should not be nil")
	}
}

func TestHandleRoot(t *testing.T) {
	s := &Server{}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()

	s.handleRoot(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("handleRoot() status = %v, want %v", resp.StatusCode, http.StatusOK)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response["service"] != "citysense" {
		t.Errorf("handleRoot() service = %v, want citysense", response["service"])
	}
}

func TestHandleHealth(t *testing.T) {
	s := &Server{}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	s.handleHealth(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("handleHealth() status = %v, want %v", resp.StatusCode, http.StatusOK)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("handleHealth() content-type = %v, want application/json", contentType)
	}

	var response map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response["status"] != "healthy" {
		t.Errorf("handleHealth() status in body = %v, want healthy", response["status"])
	}

	if response["time"] == "" {
		t.Error("handleHealth() time should not be empty")
	}
}

func TestHandleCreateStation_InvalidJSON(t *testing.T) {
	s := &Server{}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/airquality/stations", bytes.NewBufferString("invalid json"))
	w := httptest.NewRecorder()

	s.handleCreateStation(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("handleCreateStation() status = %v, want %v", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestHandleCreateStation_MissingStationID(t *testing.T) {
	s := &Server{}

	reqBody := CreateStationRequest{
		Location: "Downtown",
		Latitude: 40.0,
	}
	bodyBytes, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/airquality/stations", bytes.NewBuffer(bodyBytes))
	w := httptest.NewRecorder()

	s.handleCreateStation(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("handleCreateStation() status = %v, want %v", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestHandleCreateStation_InvalidCoordinates(t *testing.T) {
	s := &Server{}

	tests := []struct {
		name      string
		latitude  float64
		longitude float64
	}{
		{"latitude too high", 91.0, 0.0},
		{"latitude too low", -91.0, 0.0},
		{"longitude too high", 0.0, 181.0},
		{"longitude too low", 0.0, -181.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reqBody := CreateStationRequest{
				StationID: "station-1",
				Latitude:  tt.latitude,
				Longitude: tt.longitude,
			}
			bodyBytes, _ := json.Marshal(reqBody)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/airquality/stations", bytes.NewBuffer(bodyBytes))
			w := httptest.NewRecorder()

			s.handleCreateStation(w, req)

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("handleCreateStation() status = %v, want %v", resp.StatusCode, http.StatusBadRequest)
			}
		})
	}
}

func TestHandleCreateAirQualityReading_MissingStationID(t *testing.T) {
	s := &Server{}

	pm25 := 30.0
	reqBody := CreateAirQualityReadingRequest{PM25: &pm25}
	bodyBytes, _ := json.Marshal(reqBody)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/airquality/readings", bytes.NewBuffer(bodyBytes))
	w := httptest.NewRecorder()

	s.handleCreateAirQualityReading(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("handleCreateAirQualityReading() status = %v, want %v", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestHandleCreateEnergyReading_Validation(t *testing.T) {
	s := &Server{}

	tests := []struct {
		name string
		body CreateEnergyReadingRequest
	}{
		{"missing meter_id", CreateEnergyReadingRequest{PowerConsumption: 500}},
		{"negative power", CreateEnergyReadingRequest{MeterID: "meter-1", PowerConsumption: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bodyBytes, _ := json.Marshal(tt.body)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/energy/readings", bytes.NewBuffer(bodyBytes))
			w := httptest.NewRecorder()

			s.handleCreateEnergyReading(w, req)

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("handleCreateEnergyReading() status = %v, want %v", resp.StatusCode, http.StatusBadRequest)
			}
		})
	}
}

func TestHandleCreateWaterReading_Validation(t *testing.T) {
	s := &Server{}

	negativeFlow := -5.0
	tests := []struct {
		name string
		body CreateWaterReadingRequest
	}{
		{"missing sensor_id", CreateWaterReadingRequest{}},
		{"negative flow rate", CreateWaterReadingRequest{SensorID: "sensor-1", FlowRate: &negativeFlow}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bodyBytes, _ := json.Marshal(tt.body)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/water/readings", bytes.NewBuffer(bodyBytes))
			w := httptest.NewRecorder()

			s.handleCreateWaterReading(w, req)

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("handleCreateWaterReading() status = %v, want %v", resp.StatusCode, http.StatusBadRequest)
			}
		})
	}
}

func TestHandleCreateTelemetry_InvalidCoordinates(t *testing.T) {
	s := &Server{}

	tests := []struct {
		name      string
		latitude  float64
		longitude float64
	}{
		{"latitude too high", 90.5, 0.0},
		{"longitude too low", 0.0, -180.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reqBody := CreateTelemetryRequest{
				VehicleID: "bus-1",
				Latitude:  tt.latitude,
				Longitude: tt.longitude,
			}
			bodyBytes, _ := json.Marshal(reqBody)

			req := httptest.NewRequest(http.MethodPost, "/api/v1/transport/telemetry", bytes.NewBuffer(bodyBytes))
			w := httptest.NewRecorder()

			s.handleCreateTelemetry(w, req)

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("handleCreateTelemetry() status = %v, want %v", resp.StatusCode, http.StatusBadRequest)
			}
		})
	}
}

func TestHandleOptimizeRoute(t *testing.T) {
	s := &Server{}

	body := `[
		{"latitude": 0, "longitude": 0, "name": "depot"},
		{"latitude": 0, "longitude": 10, "name": "far"},
		{"latitude": 0, "longitude": 1, "name": "near"},
		{"latitude": 0, "longitude": 3, "name": "mid"}
	]`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transport/optimize", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	s.handleOptimizeRoute(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("handleOptimizeRoute() status = %v, want %v", resp.StatusCode, http.StatusOK)
	}

	var response struct {
		OptimizedRoute  []map[string]interface{} `json:"optimized_route"`
		TotalDistanceKm float64                  `json:"total_distance_km"`
		WaypointCount   int                      `json:"waypoint_count"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.WaypointCount != 4 {
		t.Errorf("waypoint_count = %d, want 4", response.WaypointCount)
	}

	// Greedy nearest-neighbor from the depot visits near, mid, far in order
	wantNames := []string{"depot", "near", "mid", "far"}
	for i, wp := range response.OptimizedRoute {
		if wp["name"] != wantNames[i] {
			t.Errorf("optimized_route[%d] name = %v, want %v", i, wp["name"], wantNames[i])
		}
	}

	if response.TotalDistanceKm <= 0 {
		t.Errorf("total_distance_km = %v, want > 0", response.TotalDistanceKm)
	}
}

func TestHandleOptimizeRoute_SingleWaypoint(t *testing.T) {
	s := &Server{}

	body := `[{"latitude": 40.0, "longitude": -74.0}]`

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transport/optimize", bytes.NewBufferString(body))
	w := httptest.NewRecorder()

	s.handleOptimizeRoute(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("handleOptimizeRoute() status = %v, want %v", resp.StatusCode, http.StatusOK)
	}

	var response map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response["total_distance_km"] != 0.0 {
		t.Errorf("total_distance_km = %v, want 0", response["total_distance_km"])
	}
	if response["waypoint_count"] != 1.0 {
		t.Errorf("waypoint_count = %v, want 1", response["waypoint_count"])
	}
}

func TestHandleOptimizeRoute_InvalidInput(t *testing.T) {
	s := &Server{}

	tests := []struct {
		name string
		body string
	}{
		{"invalid json", "not json"},
		{"missing longitude", `[{"latitude": 1.0}, {"latitude": 2.0, "longitude": 3.0}]`},
		{"non-numeric latitude", `[{"latitude": "abc", "longitude": 3.0}]`},
		{"out of range latitude", `[{"latitude": 95.0, "longitude": 3.0}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/transport/optimize", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			s.handleOptimizeRoute(w, req)

			resp := w.Result()
			defer resp.Body.Close()

			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("handleOptimizeRoute() status = %v, want %v", resp.StatusCode, http.StatusBadRequest)
			}
		})
	}
}

func TestHandlePredictWaterLeak_NotConfigured(t *testing.T) {
	s := &Server{}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict/water/sensor-1", nil)
	w := httptest.NewRecorder()

	s.handlePredictWaterLeak(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("handlePredictWaterLeak() status = %v, want %v", resp.StatusCode, http.StatusServiceUnavailable)
	}
}

func TestHandleGetPredictions_UnknownServiceType(t *testing.T) {
	s := NewServer(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/predictions/bogus", nil)
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("GET /api/v1/predictions/bogus status = %v, want %v", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestHandleDetectAnomalies_UnknownServiceType(t *testing.T) {
	s := NewServer(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/analytics/anomalies/bogus/entity-1", nil)
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("GET anomalies for bogus service status = %v, want %v", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestRouting_LeaksRegistered(t *testing.T) {
	s := NewServer(nil, nil, nil)

	// POST on a GET-only route: mux answers 405 when the path is registered
	// and 404 when it is not.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/leaks", nil)
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST /api/v1/leaks status = %v, want %v", resp.StatusCode, http.StatusMethodNotAllowed)
	}
}

func TestRouting_UnknownRoute(t *testing.T) {
	s := NewServer(nil, nil, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/nope", nil)
	w := httptest.NewRecorder()

	s.Handler().ServeHTTP(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("GET /api/v1/nope status = %v, want %v", resp.StatusCode, http.StatusNotFound)
	}
}
