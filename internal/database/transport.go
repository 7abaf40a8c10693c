package database

import (
	"database/sql"
	"fmt"
	"time"

	"citysense/internal/models"
)

// CreateVehicle registers a new transport vehicle.
func (db *DB) CreateVehicle(vehicle *models.Vehicle) error {
	query := `INSERT INTO transport_vehicles (vehicle_id, vehicle_type, route_id, capacity, status, created_at)
	          VALUES (:vehicle_id, :vehicle_type, :route_id, :capacity, :status, :created_at)`
	start := time.Now()
	result, err := db.conn.NamedExec(query, vehicle)
	db.recordQuery("INSERT", "transport_vehicles", start, err)
	if err != nil {
		return fmt.Errorf("failed to insert vehicle %s: %w", vehicle.VehicleID, err)
	}
	if id, err := result.LastInsertId(); err == nil {
		vehicle.ID = id
	}
	return nil
}

// GetVehicles returns all registered vehicles.
func (db *DB) GetVehicles() ([]models.Vehicle, error) {
	query := `SELECT id, vehicle_id, vehicle_type, route_id, capacity, status, created_at
	          FROM transport_vehicles ORDER BY vehicle_id`
	start := time.Now()
	var vehicles []models.Vehicle
	err := db.conn.Select(&vehicles, query)
	db.recordQuery("SELECT", "transport_vehicles", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query vehicles: %w", err)
	}
	return vehicles, nil
}

// GetVehicle returns one vehicle by its external ID.
func (db *DB) GetVehicle(vehicleID string) (*models.Vehicle, error) {
	query := `SELECT id, vehicle_id, vehicle_type, route_id, capacity, status, created_at
	          FROM transport_vehicles WHERE vehicle_id = ? LIMIT 1`
	start := time.Now()
	var vehicle models.Vehicle
	err := db.conn.Get(&vehicle, query, vehicleID)
	db.recordQuery("SELECT", "transport_vehicles", start, err)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("vehicle not found: %s", vehicleID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query vehicle %s: %w", vehicleID, err)
	}
	return &vehicle, nil
}

// InsertTelemetry stores one vehicle position report.
func (db *DB) InsertTelemetry(telemetry *models.TransportTelemetry) error {
	query := `INSERT INTO transport_telemetry (vehicle_id, timestamp, latitude, longitude, speed, fuel_level, passengers)
	          VALUES (:vehicle_id, :timestamp, :latitude, :longitude, :speed, :fuel_level, :passengers)`
	start := time.Now()
	result, err := db.conn.NamedExec(query, telemetry)
	db.recordQuery("INSERT", "transport_telemetry", start, err)
	if err != nil {
		return fmt.Errorf("failed to insert telemetry for vehicle %s: %w", telemetry.VehicleID, err)
	}
	if id, err := result.LastInsertId(); err == nil {
		telemetry.ID = id
	}
	return nil
}

// GetTelemetry returns the most recent telemetry for a vehicle.
func (db *DB) GetTelemetry(vehicleID string, limit int) ([]models.TransportTelemetry, error) {
	query := `SELECT id, vehicle_id, timestamp, latitude, longitude, speed, fuel_level, passengers
	          FROM transport_telemetry WHERE vehicle_id = ? ORDER BY timestamp DESC LIMIT ?`
	start := time.Now()
	var telemetry []models.TransportTelemetry
	err := db.conn.Select(&telemetry, query, vehicleID, limit)
	db.recordQuery("SELECT", "transport_telemetry", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query telemetry for vehicle %s: %w", vehicleID, err)
	}
	return telemetry, nil
}

// GetLatestTelemetry returns the most recent report per vehicle.
func (db *DB) GetLatestTelemetry() ([]models.TransportTelemetry, error) {
	query := `SELECT t.id, t.vehicle_id, t.timestamp, t.latitude, t.longitude, t.speed, t.fuel_level, t.passengers
	          FROM transport_telemetry t
	          INNER JOIN (
	              SELECT vehicle_id, MAX(timestamp) AS max_ts
	              FROM transport_telemetry GROUP BY vehicle_id
	          ) latest ON t.vehicle_id = latest.vehicle_id AND t.timestamp = latest.max_ts
	          ORDER BY t.vehicle_id`
	start := time.Now()
	var telemetry []models.TransportTelemetry
	err := db.conn.Select(&telemetry, query)
	db.recordQuery("SELECT", "transport_telemetry", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest telemetry: %w", err)
	}
	return telemetry, nil
}

// GetRouteDailyStats returns per-day aggregates over all vehicles on a route.
func (db *DB) GetRouteDailyStats(routeID string, days int) ([]models.RouteDailyStat, error) {
	query := `SELECT DATE_FORMAT(t.timestamp, '%Y-%m-%d') AS date,
	                 COALESCE(AVG(t.speed), 0) AS avg_speed,
	                 COALESCE(AVG(t.passengers), 0) AS avg_passengers,
	                 COUNT(*) AS trip_count
	          FROM transport_telemetry t
	          INNER JOIN transport_vehicles v ON t.vehicle_id = v.vehicle_id
	          WHERE v.route_id = ? AND t.timestamp >= ?
	          GROUP BY DATE(t.timestamp)
	          ORDER BY date`
	since := time.Now().AddDate(0, 0, -days)
	start := time.Now()
	var stats []models.RouteDailyStat
	err := db.conn.Select(&stats, query, routeID, since)
	db.recordQuery("SELECT", "transport_telemetry", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats for route %s: %w", routeID, err)
	}
	return stats, nil
}

// GetPassengerSeries returns the passenger count time series for a vehicle
// since a cutoff, in chronological order, for the trend forecaster. Reports
// without a passenger count are skipped.
func (db *DB) GetPassengerSeries(vehicleID string, since time.Time) ([]time.Time, []float64, error) {
	query := `SELECT timestamp, passengers FROM transport_telemetry
	          WHERE vehicle_id = ? AND timestamp >= ? AND passengers IS NOT NULL
	          ORDER BY timestamp ASC`
	start := time.Now()
	rows, err := db.conn.Query(query, vehicleID, since)
	db.recordQuery("SELECT", "transport_telemetry", start, err)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query passenger series for vehicle %s: %w", vehicleID, err)
	}
	defer rows.Close()

	var times []time.Time
	var values []float64
	for rows.Next() {
		var ts time.Time
		var passengers float64
		if err := rows.Scan(&ts, &passengers); err != nil {
			return nil, nil, fmt.Errorf("failed to scan passenger series row: %w", err)
		}
		times = append(times, ts)
		values = append(values, passengers)
	}
	return times, values, rows.Err()
}

// GetVehicleIDs returns the external IDs of all vehicles.
func (db *DB) GetVehicleIDs() ([]string, error) {
	query := `SELECT vehicle_id FROM transport_vehicles ORDER BY vehicle_id`
	start := time.Now()
	var ids []string
	err := db.conn.Select(&ids, query)
	db.recordQuery("SELECT", "transport_vehicles", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query vehicle ids: %w", err)
	}
	return ids, nil
}
