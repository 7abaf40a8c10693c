package models

import "time"

// AirQualityStation is a registered monitoring station.
type AirQualityStation struct {
	ID        int64     `json:"id" db:"id"`
	StationID string    `json:"station_id" db:"station_id"`
	Location  string    `json:"location" db:"location"`
	Latitude  float64   `json:"latitude" db:"latitude"`
	Longitude float64   `json:"longitude" db:"longitude"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// AirQualityReading is one measurement from a station. Pollutant fields are
// nil when the station did not report them; AQI is derived at ingest time.
type AirQualityReading struct {
	ID          int64     `json:"id" db:"id"`
	StationID   string    `json:"station_id" db:"station_id"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
	PM25        *float64  `json:"pm25" db:"pm25"`
	PM10        *float64  `json:"pm10" db:"pm10"`
	CO2         *float64  `json:"co2" db:"co2"`
	CO          *float64  `json:"co" db:"co"`
	NO2         *float64  `json:"no2" db:"no2"`
	O3          *float64  `json:"o3" db:"o3"`
	Temperature *float64  `json:"temperature" db:"temperature"`
	Humidity    *float64  `json:"humidity" db:"humidity"`
	AQI         int       `json:"aqi" db:"aqi"`
}

// AirQualityTrend is a per-day aggregate of a station's readings.
type AirQualityTrend struct {
	Date    string  `json:"date" db:"date"`
	AvgPM25 float64 `json:"avg_pm25" db:"avg_pm25"`
	AvgPM10 float64 `json:"avg_pm10" db:"avg_pm10"`
	AvgCO2  float64 `json:"avg_co2" db:"avg_co2"`
	AvgAQI  int     `json:"avg_aqi" db:"avg_aqi"`
	MaxAQI  int     `json:"max_aqi" db:"max_aqi"`
	Status  string  `json:"status" db:"-"`
}

// SmartMeter is a registered energy meter.
type SmartMeter struct {
	ID        int64     `json:"id" db:"id"`
	MeterID   string    `json:"meter_id" db:"meter_id"`
	Location  string    `json:"location" db:"location"`
	MeterType string    `json:"meter_type" db:"meter_type"`
	Status    string    `json:"status" db:"status"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// EnergyReading is one measurement from a smart meter.
type EnergyReading struct {
	ID               int64     `json:"id" db:"id"`
	MeterID          string    `json:"meter_id" db:"meter_id"`
	Timestamp        time.Time `json:"timestamp" db:"timestamp"`
	Voltage          *float64  `json:"voltage" db:"voltage"`
	Current          *float64  `json:"current" db:"current_amps"`
	PowerConsumption float64   `json:"power_consumption" db:"power_consumption"`
	EnergyTotal      *float64  `json:"energy_total" db:"energy_total"`
	PowerFactor      *float64  `json:"power_factor" db:"power_factor"`
}

// EnergyDailyStat is a per-day consumption aggregate.
type EnergyDailyStat struct {
	Date             string  `json:"date" db:"date"`
	TotalConsumption float64 `json:"total_consumption" db:"total_consumption"`
	AvgConsumption   float64 `json:"avg_consumption" db:"avg_consumption"`
	PeakConsumption  float64 `json:"peak_consumption" db:"peak_consumption"`
}

// WaterSensor is a registered water flow sensor.
type WaterSensor struct {
	ID         int64     `json:"id" db:"id"`
	SensorID   string    `json:"sensor_id" db:"sensor_id"`
	Location   string    `json:"location" db:"location"`
	SensorType string    `json:"sensor_type" db:"sensor_type"`
	Status     string    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// WaterReading is one measurement from a water sensor.
type WaterReading struct {
	ID           int64     `json:"id" db:"id"`
	SensorID     string    `json:"sensor_id" db:"sensor_id"`
	Timestamp    time.Time `json:"timestamp" db:"timestamp"`
	FlowRate     *float64  `json:"flow_rate" db:"flow_rate"`
	Pressure     *float64  `json:"pressure" db:"pressure"`
	Temperature  *float64  `json:"temperature" db:"temperature"`
	LeakDetected bool      `json:"leak_detected" db:"leak_detected"`
}

// WaterDailyStat is a per-day flow aggregate.
type WaterDailyStat struct {
	Date        string  `json:"date" db:"date"`
	AvgFlowRate float64 `json:"avg_flow_rate" db:"avg_flow_rate"`
	MaxFlowRate float64 `json:"max_flow_rate" db:"max_flow_rate"`
	AvgPressure float64 `json:"avg_pressure" db:"avg_pressure"`
	LeakCount   int     `json:"leak_count" db:"leak_count"`
}

// Vehicle is a registered transport vehicle.
type Vehicle struct {
	ID          int64     `json:"id" db:"id"`
	VehicleID   string    `json:"vehicle_id" db:"vehicle_id"`
	VehicleType string    `json:"vehicle_type" db:"vehicle_type"`
	RouteID     *string   `json:"route_id" db:"route_id"`
	Capacity    *int      `json:"capacity" db:"capacity"`
	Status      string    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// TransportTelemetry is one position/status report from a vehicle.
type TransportTelemetry struct {
	ID         int64     `json:"id" db:"id"`
	VehicleID  string    `json:"vehicle_id" db:"vehicle_id"`
	Timestamp  time.Time `json:"timestamp" db:"timestamp"`
	Latitude   float64   `json:"latitude" db:"latitude"`
	Longitude  float64   `json:"longitude" db:"longitude"`
	Speed      *float64  `json:"speed" db:"speed"`
	FuelLevel  *float64  `json:"fuel_level" db:"fuel_level"`
	Passengers *int      `json:"passengers" db:"passengers"`
}

// RouteDailyStat is a per-day aggregate over all vehicles on a route.
type RouteDailyStat struct {
	Date          string  `json:"date" db:"date"`
	AvgSpeed      float64 `json:"avg_speed" db:"avg_speed"`
	AvgPassengers float64 `json:"avg_passengers" db:"avg_passengers"`
	TripCount     int     `json:"trip_count" db:"trip_count"`
}

// Prediction is a stored forecast produced by the analytics layer.
type Prediction struct {
	ID              int64     `json:"id" db:"id"`
	ServiceType     string    `json:"service_type" db:"service_type"`
	EntityID        string    `json:"entity_id" db:"entity_id"`
	PredictionType  string    `json:"prediction_type" db:"prediction_type"`
	PredictedValue  float64   `json:"predicted_value" db:"predicted_value"`
	ConfidenceScore float64   `json:"confidence_score" db:"confidence_score"`
	Timestamp       time.Time `json:"timestamp" db:"timestamp"`
}

// ModelAccuracy summarizes stored predictions per prediction type.
type ModelAccuracy struct {
	PredictionType  string  `json:"prediction_type" db:"prediction_type"`
	AvgConfidence   float64 `json:"avg_confidence" db:"avg_confidence"`
	PredictionCount int     `json:"prediction_count" db:"prediction_count"`
}

// Alert is a stored alert raised on a threshold breach.
type Alert struct {
	ID          int64     `json:"id" db:"id"`
	ServiceType string    `json:"service_type" db:"service_type"`
	EntityID    string    `json:"entity_id" db:"entity_id"`
	AlertType   string    `json:"alert_type" db:"alert_type"`
	Severity    string    `json:"severity" db:"severity"` // "warning", "critical"
	Message     string    `json:"message" db:"message"`
	Timestamp   time.Time `json:"timestamp" db:"timestamp"`
}
