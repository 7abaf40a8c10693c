package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"citysense/internal/analytics"
	"citysense/internal/bus"
	"citysense/internal/config"
	"citysense/internal/database"
	"citysense/internal/metrics"
	"citysense/internal/models"
)

// predictionJob identifies one entity to forecast.
type predictionJob struct {
	ServiceType string
	EntityID    string
}

// predictionResult holds the outcome for a single entity.
type predictionResult struct {
	Job            predictionJob
	Prediction     *models.Prediction
	Error          error
	ProcessingTime time.Duration
}

func main() {
	if _, err := config.Load("./config.yaml"); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := config.Get()

	db, err := database.NewDB(config.GetDatabaseDSN())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	redisCfg := config.GetRedisConfig()
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	defer redisClient.Close()

	publisher := bus.NewPublisher(redisClient)

	jobList, err := collectJobs(db)
	if err != nil {
		log.Fatalf("Failed to collect entities: %v", err)
	}
	if len(jobList) == 0 {
		log.Fatalf("No entities found in database. Please run the seed script first.")
	}

	log.Printf("Running batch predictions for %d entities...", len(jobList))
	runPredictions(db, publisher, cfg, jobList)
}

// collectJobs lists every registered entity that has a trend forecast.
func collectJobs(db *database.DB) ([]predictionJob, error) {
	var jobList []predictionJob

	stationIDs, err := db.GetAirQualityStationIDs()
	if err != nil {
		return nil, err
	}
	for _, id := range stationIDs {
		jobList = append(jobList, predictionJob{ServiceType: "airquality", EntityID: id})
	}

	meterIDs, err := db.GetSmartMeterIDs()
	if err != nil {
		return nil, err
	}
	for _, id := range meterIDs {
		jobList = append(jobList, predictionJob{ServiceType: "energy", EntityID: id})
	}

	vehicleIDs, err := db.GetVehicleIDs()
	if err != nil {
		return nil, err
	}
	for _, id := range vehicleIDs {
		jobList = append(jobList, predictionJob{ServiceType: "transport", EntityID: id})
	}

	return jobList, nil
}

func runPredictions(db *database.DB, publisher *bus.Publisher, cfg *config.Config, jobList []predictionJob) {
	startTime := time.Now()

	// Use 10 workers or fewer if less entities
	numWorkers := 10
	if len(jobList) < numWorkers {
		numWorkers = len(jobList)
	}

	jobs := make(chan predictionJob, len(jobList))
	results := make(chan predictionResult, len(jobList))

	var wg sync.WaitGroup
	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go worker(db, cfg, jobs, results, &wg)
	}

	for _, job := range jobList {
		jobs <- job
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	stored := 0
	skipped := 0
	failed := 0
	processed := 0

	for result := range results {
		processed++

		if result.Error != nil {
			log.Printf("[%d/%d] %s/%s: %v (%.1fs)",
				processed, len(jobList), result.Job.ServiceType, result.Job.EntityID,
				result.Error, result.ProcessingTime.Seconds())
			failed++
			continue
		}

		if result.Prediction == nil {
			skipped++
			continue
		}

		if err := db.InsertPrediction(result.Prediction); err != nil {
			log.Printf("[%d/%d] Failed to store prediction for %s/%s: %v",
				processed, len(jobList), result.Job.ServiceType, result.Job.EntityID, err)
			failed++
			continue
		}

		if err := publisher.Publish(context.Background(), bus.StreamPrediction, map[string]interface{}{
			"service_type":     result.Prediction.ServiceType,
			"entity_id":        result.Prediction.EntityID,
			"prediction_type":  result.Prediction.PredictionType,
			"predicted_value":  result.Prediction.PredictedValue,
			"confidence_score": result.Prediction.ConfidenceScore,
		}); err != nil {
			log.Printf("Failed to publish prediction for %s/%s: %v",
				result.Prediction.ServiceType, result.Prediction.EntityID, err)
		}

		stored++
		log.Printf("[%d/%d] %s/%s: predicted %.2f (confidence %.2f, %.1fs)",
			processed, len(jobList), result.Job.ServiceType, result.Job.EntityID,
			result.Prediction.PredictedValue, result.Prediction.ConfidenceScore,
			result.ProcessingTime.Seconds())
	}

	totalDuration := time.Since(startTime)
	log.Printf("Batch prediction complete in %.1f seconds", totalDuration.Seconds())
	log.Printf("  Entities: %d processed, %d stored, %d skipped, %d failed", processed, stored, skipped, failed)
	log.Printf("  Workers: %d", numWorkers)
}

// worker forecasts entities from the jobs channel
func worker(db *database.DB, cfg *config.Config, jobs <-chan predictionJob, results chan<- predictionResult, wg *sync.WaitGroup) {
	defer wg.Done()

	forecaster := analytics.NewTrendForecaster(nil)
	cutoff := time.Now().AddDate(0, 0, -cfg.Forecast.HistoricalDays)

	for job := range jobs {
		startTime := time.Now()

		prediction, err := forecastEntity(db, forecaster, cfg, job, cutoff)
		metrics.RecordPrediction(job.ServiceType, err)

		results <- predictionResult{
			Job:            job,
			Prediction:     prediction,
			Error:          err,
			ProcessingTime: time.Since(startTime),
		}
	}
}

// forecastEntity computes one trend forecast. A nil prediction with nil error
// means the entity had too few samples and was skipped.
func forecastEntity(db *database.DB, forecaster *analytics.TrendForecaster, cfg *config.Config, job predictionJob, cutoff time.Time) (*models.Prediction, error) {
	var times []time.Time
	var values []float64
	var err error
	var predictionType string

	switch job.ServiceType {
	case "airquality":
		times, values, err = db.GetAQISeries(job.EntityID, cutoff)
		predictionType = "aqi_forecast"
	case "energy":
		times, values, err = db.GetConsumptionSeries(job.EntityID, cutoff)
		predictionType = "consumption_forecast"
	case "transport":
		times, values, err = db.GetPassengerSeries(job.EntityID, cutoff)
		predictionType = "passenger_demand_forecast"
	default:
		return nil, fmt.Errorf("unknown service type: %s", job.ServiceType)
	}
	if err != nil {
		return nil, err
	}

	if len(values) < cfg.Forecast.MinSamples {
		return nil, nil
	}

	samples, err := analytics.SamplesFromSeries(times, values)
	if err != nil {
		return nil, err
	}

	target := time.Since(times[0]).Hours() + cfg.Forecast.HorizonHours
	forecast, err := forecaster.Forecast(samples, target)
	if err != nil {
		return nil, err
	}

	return &models.Prediction{
		ServiceType:     job.ServiceType,
		EntityID:        job.EntityID,
		PredictionType:  predictionType,
		PredictedValue:  forecast.PredictedValue,
		ConfidenceScore: forecast.ConfidenceScore,
		Timestamp:       time.Now(),
	}, nil
}
