package database

import (
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"

	"citysense/internal/metrics"
)

// DB represents the database connection
type DB struct {
	conn *sqlx.DB
}

// NewDB creates a new database connection and initializes the schema
// dsn format: "username:password@tcp(host:port)/dbname?parseTime=true"
// example: "user:pass@tcp(localhost:3306)/citysense?parseTime=true"
func NewDB(dsn string) (*DB, error) {
	conn, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	db := &DB{conn: conn}

	// Initialize schema
	if err := db.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	// MySQL doesn't support multiple statements in one Exec, so we need to split them
	statements := []string{
		`CREATE TABLE IF NOT EXISTS air_quality_stations (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			station_id VARCHAR(100) NOT NULL UNIQUE,
			location VARCHAR(255) NOT NULL DEFAULT '',
			latitude DOUBLE NOT NULL,
			longitude DOUBLE NOT NULL,
			status VARCHAR(50) NOT NULL DEFAULT 'active',
			created_at DATETIME(6) NOT NULL,
			INDEX idx_aq_stations_location (location)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS air_quality_readings (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			station_id VARCHAR(100) NOT NULL,
			timestamp DATETIME(6) NOT NULL,
			pm25 DOUBLE NULL,
			pm10 DOUBLE NULL,
			co2 DOUBLE NULL,
			co DOUBLE NULL,
			no2 DOUBLE NULL,
			o3 DOUBLE NULL,
			temperature DOUBLE NULL,
			humidity DOUBLE NULL,
			aqi INT NOT NULL DEFAULT 0,
			INDEX idx_aq_readings_station (station_id),
			INDEX idx_aq_readings_timestamp (timestamp)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS smart_meters (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			meter_id VARCHAR(100) NOT NULL UNIQUE,
			location VARCHAR(255) NOT NULL DEFAULT '',
			meter_type VARCHAR(50) NOT NULL DEFAULT 'residential',
			status VARCHAR(50) NOT NULL DEFAULT 'active',
			created_at DATETIME(6) NOT NULL,
			INDEX idx_meters_location (location)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS energy_readings (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			meter_id VARCHAR(100) NOT NULL,
			timestamp DATETIME(6) NOT NULL,
			voltage DOUBLE NULL,
			current_amps DOUBLE NULL,
			power_consumption DOUBLE NOT NULL DEFAULT 0,
			energy_total DOUBLE NULL,
			power_factor DOUBLE NULL,
			INDEX idx_energy_readings_meter (meter_id),
			INDEX idx_energy_readings_timestamp (timestamp)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS water_sensors (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			sensor_id VARCHAR(100) NOT NULL UNIQUE,
			location VARCHAR(255) NOT NULL DEFAULT '',
			sensor_type VARCHAR(50) NOT NULL DEFAULT 'flow',
			status VARCHAR(50) NOT NULL DEFAULT 'active',
			created_at DATETIME(6) NOT NULL,
			INDEX idx_water_sensors_location (location)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS water_readings (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			sensor_id VARCHAR(100) NOT NULL,
			timestamp DATETIME(6) NOT NULL,
			flow_rate DOUBLE NULL,
			pressure DOUBLE NULL,
			temperature DOUBLE NULL,
			leak_detected TINYINT(1) NOT NULL DEFAULT 0,
			INDEX idx_water_readings_sensor (sensor_id),
			INDEX idx_water_readings_timestamp (timestamp)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS transport_vehicles (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			vehicle_id VARCHAR(100) NOT NULL UNIQUE,
			vehicle_type VARCHAR(50) NOT NULL DEFAULT 'bus',
			route_id VARCHAR(100) NULL,
			capacity INT NULL,
			status VARCHAR(50) NOT NULL DEFAULT 'active',
			created_at DATETIME(6) NOT NULL,
			INDEX idx_vehicles_route (route_id)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS transport_telemetry (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			vehicle_id VARCHAR(100) NOT NULL,
			timestamp DATETIME(6) NOT NULL,
			latitude DOUBLE NOT NULL,
			longitude DOUBLE NOT NULL,
			speed DOUBLE NULL,
			fuel_level DOUBLE NULL,
			passengers INT NULL,
			INDEX idx_telemetry_vehicle (vehicle_id),
			INDEX idx_telemetry_timestamp (timestamp)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS predictions (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			service_type VARCHAR(50) NOT NULL,
			entity_id VARCHAR(100) NOT NULL,
			prediction_type VARCHAR(100) NOT NULL,
			predicted_value DOUBLE NOT NULL,
			confidence_score DOUBLE NOT NULL,
			timestamp DATETIME(6) NOT NULL,
			INDEX idx_predictions_service (service_type),
			INDEX idx_predictions_timestamp (timestamp)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS alerts (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			service_type VARCHAR(50) NOT NULL,
			entity_id VARCHAR(100) NOT NULL,
			alert_type VARCHAR(100) NOT NULL,
			severity VARCHAR(50) NOT NULL,
			message TEXT NOT NULL,
			timestamp DATETIME(6) NOT NULL,
			INDEX idx_alerts_service (service_type),
			INDEX idx_alerts_timestamp (timestamp)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

// recordQuery reports query metrics and refreshes pool statistics.
func (db *DB) recordQuery(queryType, table string, start time.Time, err error) {
	metrics.RecordDBQuery(queryType, table, time.Since(start), err)
	stats := db.conn.Stats()
	metrics.UpdateDBConnectionStats(stats.OpenConnections, stats.InUse, stats.Idle)
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
