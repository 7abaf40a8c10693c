package database

import (
	"fmt"
	"time"

	"citysense/internal/models"
)

// InsertPrediction stores a computed forecast.
func (db *DB) InsertPrediction(prediction *models.Prediction) error {
	query := `INSERT INTO predictions (service_type, entity_id, prediction_type, predicted_value, confidence_score, timestamp)
	          VALUES (:service_type, :entity_id, :prediction_type, :predicted_value, :confidence_score, :timestamp)`
	start := time.Now()
	result, err := db.conn.NamedExec(query, prediction)
	db.recordQuery("INSERT", "predictions", start, err)
	if err != nil {
		return fmt.Errorf("failed to insert prediction for %s/%s: %w", prediction.ServiceType, prediction.EntityID, err)
	}
	if id, err := result.LastInsertId(); err == nil {
		prediction.ID = id
	}
	return nil
}

// GetPredictions returns the most recent predictions for a service type.
func (db *DB) GetPredictions(serviceType string, limit int) ([]models.Prediction, error) {
	query := `SELECT id, service_type, entity_id, prediction_type, predicted_value, confidence_score, timestamp
	          FROM predictions WHERE service_type = ? ORDER BY timestamp DESC LIMIT ?`
	start := time.Now()
	var predictions []models.Prediction
	err := db.conn.Select(&predictions, query, serviceType, limit)
	db.recordQuery("SELECT", "predictions", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query predictions for %s: %w", serviceType, err)
	}
	return predictions, nil
}

// GetModelAccuracy summarizes stored predictions per prediction type.
func (db *DB) GetModelAccuracy() ([]models.ModelAccuracy, error) {
	query := `SELECT prediction_type,
	                 COALESCE(AVG(confidence_score), 0) AS avg_confidence,
	                 COUNT(*) AS prediction_count
	          FROM predictions
	          GROUP BY prediction_type
	          ORDER BY prediction_type`
	start := time.Now()
	var accuracy []models.ModelAccuracy
	err := db.conn.Select(&accuracy, query)
	db.recordQuery("SELECT", "predictions", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query model accuracy: %w", err)
	}
	return accuracy, nil
}

// InsertAlert stores a raised alert.
func (db *DB) InsertAlert(alert *models.Alert) error {
	query := `INSERT INTO alerts (service_type, entity_id, alert_type, severity, message, timestamp)
	          VALUES (:service_type, :entity_id, :alert_type, :severity, :message, :timestamp)`
	start := time.Now()
	result, err := db.conn.NamedExec(query, alert)
	db.recordQuery("INSERT", "alerts", start, err)
	if err != nil {
		return fmt.Errorf("failed to insert alert for %s/%s: %w", alert.ServiceType, alert.EntityID, err)
	}
	if id, err := result.LastInsertId(); err == nil {
		alert.ID = id
	}
	return nil
}

// GetAlerts returns recent alerts, optionally filtered by service type.
// An empty serviceType returns alerts across all services.
func (db *DB) GetAlerts(serviceType string, limit int) ([]models.Alert, error) {
	var query string
	var args []interface{}
	if serviceType == "" {
		query = `SELECT id, service_type, entity_id, alert_type, severity, message, timestamp
		         FROM alerts ORDER BY timestamp DESC LIMIT ?`
		args = []interface{}{limit}
	} else {
		query = `SELECT id, service_type, entity_id, alert_type, severity, message, timestamp
		         FROM alerts WHERE service_type = ? ORDER BY timestamp DESC LIMIT ?`
		args = []interface{}{serviceType, limit}
	}
	start := time.Now()
	var alerts []models.Alert
	err := db.conn.Select(&alerts, query, args...)
	db.recordQuery("SELECT", "alerts", start, err)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	return alerts, nil
}
