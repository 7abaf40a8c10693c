package database

import (
	"database/sql"
	"fmt"
	"time"

	"citysense/internal/models"
)

// CreateAirQualityStation registers a new monitoring station.
func (db *DB) CreateAirQualityStation(station *models.AirQualityStation) error {
	query := `INSERT INTO air_quality_stations (station_id, location, latitude, longitude, status, created_at)
	          VALUES (:station_id, :location, :latitude, :longitude, :status, :created_at)`
	start := time.Now()
	result, err := db.conn.NamedExec(query, station)
	db.recordQuery("INSERT", "air_quality_stations", start, err)
	if err != nil {
		return fmt.Errorf("failed to insert station %s: %w", station.StationID, err)
	}
	if id, err := result.LastInsertId(); err == nil {
		station.ID = id
	}
	return nil
}

// GetAirQualityStations returns all registered stations.
func (db *DB) GetAirQualityStations() ([]models.AirQualityStation, error) {
	query := `SELECT id, station_id, location, latitude, longitude, status, created_at
	          FROM air_quality_stations ORDER BY station_id`
	start := time.Now()
	var stations []models.AirQualityStation
	err := db.conn.Select(&stations, query)
	db.recordQuery("SELECT", "air_quality_stations", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query stations: %w", err)
	}
	return stations, nil
}

// GetAirQualityStation returns one station by its external ID.
func (db *DB) GetAirQualityStation(stationID string) (*models.AirQualityStation, error) {
	query := `SELECT id, station_id, location, latitude, longitude, status, created_at
	          FROM air_quality_stations WHERE station_id = ? LIMIT 1`
	start := time.Now()
	var station models.AirQualityStation
	err := db.conn.Get(&station, query, stationID)
	db.recordQuery("SELECT", "air_quality_stations", start, err)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("station not found: %s", stationID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query station %s: %w", stationID, err)
	}
	return &station, nil
}

// InsertAirQualityReading stores one reading. The AQI column is expected to
// be filled in by the caller before insert.
func (db *DB) InsertAirQualityReading(reading *models.AirQualityReading) error {
	query := `INSERT INTO air_quality_readings (station_id, timestamp, pm25, pm10, co2, co, no2, o3, temperature, humidity, aqi)
	          VALUES (:station_id, :timestamp, :pm25, :pm10, :co2, :co, :no2, :o3, :temperature, :humidity, :aqi)`
	start := time.Now()
	result, err := db.conn.NamedExec(query, reading)
	db.recordQuery("INSERT", "air_quality_readings", start, err)
	if err != nil {
		return fmt.Errorf("failed to insert reading for station %s: %w", reading.StationID, err)
	}
	if id, err := result.LastInsertId(); err == nil {
		reading.ID = id
	}
	return nil
}

// GetAirQualityReadings returns the most recent readings for a station.
func (db *DB) GetAirQualityReadings(stationID string, limit int) ([]models.AirQualityReading, error) {
	query := `SELECT id, station_id, timestamp, pm25, pm10, co2, co, no2, o3, temperature, humidity, aqi
	          FROM air_quality_readings WHERE station_id = ? ORDER BY timestamp DESC LIMIT ?`
	start := time.Now()
	var readings []models.AirQualityReading
	err := db.conn.Select(&readings, query, stationID, limit)
	db.recordQuery("SELECT", "air_quality_readings", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query readings for station %s: %w", stationID, err)
	}
	return readings, nil
}

// GetLatestAirQualityReadings returns the most recent reading per station.
func (db *DB) GetLatestAirQualityReadings() ([]models.AirQualityReading, error) {
	// MySQL has no DISTINCT ON; join each station against its max timestamp
	query := `SELECT r.id, r.station_id, r.timestamp, r.pm25, r.pm10, r.co2, r.co, r.no2, r.o3, r.temperature, r.humidity, r.aqi
	          FROM air_quality_readings r
	          INNER JOIN (
	              SELECT station_id, MAX(timestamp) AS max_ts
	              FROM air_quality_readings GROUP BY station_id
	          ) latest ON r.station_id = latest.station_id AND r.timestamp = latest.max_ts
	          ORDER BY r.station_id`
	start := time.Now()
	var readings []models.AirQualityReading
	err := db.conn.Select(&readings, query)
	db.recordQuery("SELECT", "air_quality_readings", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest readings: %w", err)
	}
	return readings, nil
}

// GetAirQualityTrends returns per-day aggregates for a station over the last
// N days. The Status field is left for the caller to derive from AvgAQI.
func (db *DB) GetAirQualityTrends(stationID string, days int) ([]models.AirQualityTrend, error) {
	// DATE_FORMAT keeps the date a string; parseTime=true would otherwise
	// turn a bare DATE() into time.Time
	query := `SELECT DATE_FORMAT(timestamp, '%Y-%m-%d') AS date,
	                 COALESCE(AVG(pm25), 0) AS avg_pm25,
	                 COALESCE(AVG(pm10), 0) AS avg_pm10,
	                 COALESCE(AVG(co2), 0) AS avg_co2,
	                 CAST(COALESCE(AVG(aqi), 0) AS SIGNED) AS avg_aqi,
	                 CAST(COALESCE(MAX(aqi), 0) AS SIGNED) AS max_aqi
	          FROM air_quality_readings
	          WHERE station_id = ? AND timestamp >= ?
	          GROUP BY DATE(timestamp)
	          ORDER BY date`
	since := time.Now().AddDate(0, 0, -days)
	start := time.Now()
	var trends []models.AirQualityTrend
	err := db.conn.Select(&trends, query, stationID, since)
	db.recordQuery("SELECT", "air_quality_readings", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query trends for station %s: %w", stationID, err)
	}
	return trends, nil
}

// GetAQISeries returns the AQI time series for a station since a cutoff, in
// chronological order, for the trend forecaster.
func (db *DB) GetAQISeries(stationID string, since time.Time) ([]time.Time, []float64, error) {
	query := `SELECT timestamp, aqi FROM air_quality_readings
	          WHERE station_id = ? AND timestamp >= ? ORDER BY timestamp ASC`
	start := time.Now()
	rows, err := db.conn.Query(query, stationID, since)
	db.recordQuery("SELECT", "air_quality_readings", start, err)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query AQI series for station %s: %w", stationID, err)
	}
	defer rows.Close()

	var times []time.Time
	var values []float64
	for rows.Next() {
		var ts time.Time
		var aqi float64
		if err := rows.Scan(&ts, &aqi); err != nil {
			return nil, nil, fmt.Errorf("failed to scan AQI series row: %w", err)
		}
		times = append(times, ts)
		values = append(values, aqi)
	}
	return times, values, rows.Err()
}

// GetAirQualityStationIDs returns the external IDs of all stations.
func (db *DB) GetAirQualityStationIDs() ([]string, error) {
	query := `SELECT station_id FROM air_quality_stations ORDER BY station_id`
	start := time.Now()
	var ids []string
	err := db.conn.Select(&ids, query)
	db.recordQuery("SELECT", "air_quality_stations", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query station ids: %w", err)
	}
	return ids, nil
}
