package database

import (
	"database/sql"
	"fmt"
	"time"

	"citysense/internal/models"
)

// CreateSmartMeter registers a new energy meter.
func (db *DB) CreateSmartMeter(meter *models.SmartMeter) error {
	query := `INSERT INTO smart_meters (meter_id, location, meter_type, status, created_at)
	          VALUES (:meter_id, :location, :meter_type, :status, :created_at)`
	start := time.Now()
	result, err := db.conn.NamedExec(query, meter)
	db.recordQuery("INSERT", "smart_meters", start, err)
	if err != nil {
		return fmt.Errorf("failed to insert meter %s: %w", meter.MeterID, err)
	}
	if id, err := result.LastInsertId(); err == nil {
		meter.ID = id
	}
	return nil
}

// GetSmartMeters returns all registered meters.
func (db *DB) GetSmartMeters() ([]models.SmartMeter, error) {
	query := `SELECT id, meter_id, location, meter_type, status, created_at
	          FROM smart_meters ORDER BY meter_id`
	start := time.Now()
	var meters []models.SmartMeter
	err := db.conn.Select(&meters, query)
	db.recordQuery("SELECT", "smart_meters", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query meters: %w", err)
	}
	return meters, nil
}

// GetSmartMeter returns one meter by its external ID.
func (db *DB) GetSmartMeter(meterID string) (*models.SmartMeter, error) {
	query := `SELECT id, meter_id, location, meter_type, status, created_at
	          FROM smart_meters WHERE meter_id = ? LIMIT 1`
	start := time.Now()
	var meter models.SmartMeter
	err := db.conn.Get(&meter, query, meterID)
	db.recordQuery("SELECT", "smart_meters", start, err)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("meter not found: %s", meterID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query meter %s: %w", meterID, err)
	}
	return &meter, nil
}

// InsertEnergyReading stores one meter reading.
func (db *DB) InsertEnergyReading(reading *models.EnergyReading) error {
	query := `INSERT INTO energy_readings (meter_id, timestamp, voltage, current_amps, power_consumption, energy_total, power_factor)
	          VALUES (:meter_id, :timestamp, :voltage, :current_amps, :power_consumption, :energy_total, :power_factor)`
	start := time.Now()
	result, err := db.conn.NamedExec(query, reading)
	db.recordQuery("INSERT", "energy_readings", start, err)
	if err != nil {
		return fmt.Errorf("failed to insert reading for meter %s: %w", reading.MeterID, err)
	}
	if id, err := result.LastInsertId(); err == nil {
		reading.ID = id
	}
	return nil
}

// GetEnergyReadings returns the most recent readings for a meter.
func (db *DB) GetEnergyReadings(meterID string, limit int) ([]models.EnergyReading, error) {
	query := `SELECT id, meter_id, timestamp, voltage, current_amps, power_consumption, energy_total, power_factor
	          FROM energy_readings WHERE meter_id = ? ORDER BY timestamp DESC LIMIT ?`
	start := time.Now()
	var readings []models.EnergyReading
	err := db.conn.Select(&readings, query, meterID, limit)
	db.recordQuery("SELECT", "energy_readings", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings for meter %s: %w", meterID, err)
	}
	return readings, nil
}

// GetEnergyDailyStats returns per-day consumption aggregates for a meter.
func (db *DB) GetEnergyDailyStats(meterID string, days int) ([]models.EnergyDailyStat, error) {
	query := `SELECT DATE_FORMAT(timestamp, '%Y-%m-%d') AS date,
	                 COALESCE(SUM(power_consumption), 0) AS total_consumption,
	                 COALESCE(AVG(power_consumption), 0) AS avg_consumption,
	                 COALESCE(MAX(power_consumption), 0) AS peak_consumption
	          FROM energy_readings
	          WHERE meter_id = ? AND timestamp >= ?
	          GROUP BY DATE(timestamp)
	          ORDER BY date`
	since := time.Now().AddDate(0, 0, -days)
	start := time.Now()
	var stats []models.EnergyDailyStat
	err := db.conn.Select(&stats, query, meterID, since)
	db.recordQuery("SELECT", "energy_readings", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily stats for meter %s: %w", meterID, err)
	}
	return stats, nil
}

// GetConsumptionSeries returns the power consumption time series for a meter
// since a cutoff, in chronological order, for the trend forecaster.
func (db *DB) GetConsumptionSeries(meterID string, since time.Time) ([]time.Time, []float64, error) {
	query := `SELECT timestamp, power_consumption FROM energy_readings
	          WHERE meter_id = ? AND timestamp >= ? ORDER BY timestamp ASC`
	start := time.Now()
	rows, err := db.conn.Query(query, meterID, since)
	db.recordQuery("SELECT", "energy_readings", start, err)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query consumption series for meter %s: %w", meterID, err)
	}
	defer rows.Close()

	var times []time.Time
	var values []float64
	for rows.Next() {
		var ts time.Time
		var value float64
		if err := rows.Scan(&ts, &value); err != nil {
			return nil, nil, fmt.Errorf("failed to scan consumption series row: %w", err)
		}
		times = append(times, ts)
		values = append(values, value)
	}
	return times, values, rows.Err()
}

// GetSmartMeterIDs returns the external IDs of all meters.
func (db *DB) GetSmartMeterIDs() ([]string, error) {
	query := `SELECT meter_id FROM smart_meters ORDER BY meter_id`
	start := time.Now()
	var ids []string
	err := db.conn.Select(&ids, query)
	db.recordQuery("SELECT", "smart_meters", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query meter ids: %w", err)
	}
	return ids, nil
}
