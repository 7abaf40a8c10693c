package database

import (
	"database/sql"
	"fmt"
	"time"

	"citysense/internal/models"
)

// CreateWaterSensor registers a new water sensor.
func (db *DB) CreateWaterSensor(sensor *models.WaterSensor) error {
	query := `INSERT INTO water_sensors (sensor_id, location, sensor_type, status, created_at)
	          VALUES (:sensor_id, :location, :sensor_type, :status, :created_at)`
	start := time.Now()
	result, err := db.conn.NamedExec(query, sensor)
	db.recordQuery("INSERT", "water_sensors", start, err)
	if err != nil {
		return fmt.Errorf("failed to insert sensor %s: %w", sensor.SensorID, err)
	}
	if id, err := result.LastInsertId(); err == nil {
		sensor.ID = id
	}
	return nil
}

// GetWaterSensors returns all registered sensors.
func (db *DB) GetWaterSensors() ([]models.WaterSensor, error) {
	query := `SELECT id, sensor_id, location, sensor_type, status, created_at
	          FROM water_sensors ORDER BY sensor_id`
	start := time.Now()
	var sensors []models.WaterSensor
	err := db.conn.Select(&sensors, query)
	db.recordQuery("SELECT", "water_sensors", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query sensors: %w", err)
	}
	return sensors, nil
}

// GetWaterSensor returns one sensor by its external ID.
func (db *DB) GetWaterSensor(sensorID string) (*models.WaterSensor, error) {
	query := `SELECT id, sensor_id, location, sensor_type, status, created_at
	          FROM water_sensors WHERE sensor_id = ? LIMIT 1`
	start := time.Now()
	var sensor models.WaterSensor
	err := db.conn.Get(&sensor, query, sensorID)
	db.recordQuery("SELECT", "water_sensors", start, err)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("sensor not found: %s", sensorID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query sensor %s: %w", sensorID, err)
	}
	return &sensor, nil
}

// InsertWaterReading stores one sensor reading.
func (db *DB) InsertWaterReading(reading *models.WaterReading) error {
	query := `INSERT INTO water_readings (sensor_id, timestamp, flow_rate, pressure, temperature, leak_detected)
	          VALUES (:sensor_id, :timestamp, :flow_rate, :pressure, :temperature, :leak_detected)`
	start := time.Now()
	result, err := db.conn.NamedExec(query, reading)
	db.recordQuery("INSERT", "water_readings", start, err)
	if err != nil {
		return fmt.Errorf("failed to insert reading for sensor %s: %w", reading.SensorID, err)
	}
	if id, err := result.LastInsertId(); err == nil {
		reading.ID = id
	}
	return nil
}

// GetWaterReadings returns the most recent readings for a sensor.
func (db *DB) GetWaterReadings(sensorID string, limit int) ([]models.WaterReading, error) {
	query := `SELECT id, sensor_id, timestamp, flow_rate, pressure, temperature, leak_detected
	          FROM water_readings WHERE sensor_id = ? ORDER BY timestamp DESC LIMIT ?`
	start := time.Now()
	var readings []models.WaterReading
	err := db.conn.Select(&readings, query, sensorID, limit)
	db.recordQuery("SELECT", "water_readings", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings for sensor %s: %w", sensorID, err)
	}
	return readings, nil
}

// GetWaterDailyStats returns per-day flow aggregates for a sensor.
func (db *DB) GetWaterDailyStats(sensorID string, days int) ([]models.WaterDailyStat, error) {
	query := `SELECT DATE_FORMAT(timestamp, '%Y-%m-%d') AS date,
	                 COALESCE(AVG(flow_rate), 0) AS avg_flow_rate,
	                 COALESCE(MAX(flow_rate), 0) AS max_flow_rate,
	                 COALESCE(AVG(pressure), 0) AS avg_pressure,
	                 CAST(COALESCE(SUM(leak_detected), 0) AS SIGNED) AS leak_count
	          FROM water_readings
	          WHERE sensor_id = ? AND timestamp >= ?
	          GROUP BY DATE(timestamp)
	          ORDER BY date`
	since := time.Now().AddDate(0, 0, -days)
	start := time.Now()
	var stats []models.WaterDailyStat
	err := db.conn.Select(&stats, query, sensorID, since)
	db.recordQuery("SELECT", "water_readings", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats for sensor %s: %w", sensorID, err)
	}
	return stats, nil
}

// GetLeakEvents returns readings flagged as leaks within the last N days,
// newest first.
func (db *DB) GetLeakEvents(days int) ([]models.WaterReading, error) {
	query := `SELECT id, sensor_id, timestamp, flow_rate, pressure, temperature, leak_detected
	          FROM water_readings
	          WHERE leak_detected = 1 AND timestamp >= ?
	          ORDER BY timestamp DESC`
	since := time.Now().AddDate(0, 0, -days)
	start := time.Now()
	var readings []models.WaterReading
	err := db.conn.Select(&readings, query, since)
	db.recordQuery("SELECT", "water_readings", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query leak events: %w", err)
	}
	return readings, nil
}

// GetLeakTrainingData returns (flow_rate, pressure) feature rows with the
// recorded leak flag as label, for fitting the leak risk model. Rows missing
// either measurement are skipped.
func (db *DB) GetLeakTrainingData(sensorID string, since time.Time) ([][]float64, []float64, error) {
	query := `SELECT flow_rate, pressure, leak_detected FROM water_readings
	          WHERE sensor_id = ? AND timestamp >= ?
	          AND flow_rate IS NOT NULL AND pressure IS NOT NULL
	          ORDER BY timestamp ASC`
	start := time.Now()
	rows, err := db.conn.Query(query, sensorID, since)
	db.recordQuery("SELECT", "water_readings", start, err)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query leak training data for sensor %s: %w", sensorID, err)
	}
	defer rows.Close()

	var features [][]float64
	var labels []float64
	for rows.Next() {
		var flowRate, pressure float64
		var leak bool
		if err := rows.Scan(&flowRate, &pressure, &leak); err != nil {
			return nil, nil, fmt.Errorf("failed to scan leak training row: %w", err)
		}
		label := 0.0
		if leak {
			label = 1.0
		}
		features = append(features, []float64{flowRate, pressure})
		labels = append(labels, label)
	}
	return features, labels, rows.Err()
}

// GetWaterSensorIDs returns the external IDs of all sensors.
func (db *DB) GetWaterSensorIDs() ([]string, error) {
	query := `SELECT sensor_id FROM water_sensors ORDER BY sensor_id`
	start := time.Now()
	var ids []string
	err := db.conn.Select(&ids, query)
	db.recordQuery("SELECT", "water_sensors", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query sensor ids: %w", err)
	}
	return ids, nil
}
