package main

import (
	"context"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"

	"citysense/internal/analytics"
	"citysense/internal/bus"
	"citysense/internal/config"
	"citysense/internal/database"
	"citysense/internal/models"
)

// Generates one batch of synthetic readings for every registered entity,
// stores them, and publishes the matching events. Scheduling is left to cron.
func main() {
	if _, err := config.Load("./config.yaml"); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

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
	// rand.Rand is not safe for concurrent use; each goroutine gets its own.
	seed := time.Now().UnixNano()

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		simulateAirQuality(db, publisher, rand.New(rand.NewSource(seed)))
	}()
	go func() {
		defer wg.Done()
		simulateEnergy(db, publisher, rand.New(rand.NewSource(seed+1)))
	}()
	go func() {
		defer wg.Done()
		simulateWater(db, publisher, rand.New(rand.NewSource(seed+2)))
	}()
	go func() {
		defer wg.Done()
		simulateTransport(db, publisher, rand.New(rand.NewSource(seed+3)))
	}()
	wg.Wait()

	log.Printf("Simulation batch completed. Exiting")
}

func simulateAirQuality(db *database.DB, publisher *bus.Publisher, rng *rand.Rand) {
	stations, err := db.GetAirQualityStations()
	if err != nil {
		log.Printf("Failed to list stations: %v", err)
		return
	}

	for _, station := range stations {
		reading := syntheticAirQualityReading(station.StationID, rng)
		if err := db.InsertAirQualityReading(reading); err != nil {
			log.Printf("Failed to store reading for station %s: %v", station.StationID, err)
			continue
		}

		if err := publisher.Publish(context.Background(), bus.StreamAirQualityReading, map[string]interface{}{
			"station_id": station.StationID,
			"aqi":        reading.AQI,
			"status":     analytics.Status(reading.AQI),
		}); err != nil {
			log.Printf("Failed to publish reading for station %s: %v", station.StationID, err)
		}
	}
	log.Printf("Simulated readings for %d stations", len(stations))
}

func syntheticAirQualityReading(stationID string, rng *rand.Rand) *models.AirQualityReading {
	pm25 := 5 + rng.Float64()*60
	pm10 := 10 + rng.Float64()*100
	co2 := 380 + rng.Float64()*120
	temperature := 10 + rng.Float64()*25
	humidity := 30 + rng.Float64()*60

	return &models.AirQualityReading{
		StationID:   stationID,
		Timestamp:   time.Now(),
		PM25:        &pm25,
		PM10:        &pm10,
		CO2:         &co2,
		Temperature: &temperature,
		Humidity:    &humidity,
		AQI:         analytics.ComputeAQI(analytics.PollutantReading{PM25: &pm25, PM10: &pm10}),
	}
}

func simulateEnergy(db *database.DB, publisher *bus.Publisher, rng *rand.Rand) {
	meters, err := db.GetSmartMeters()
	if err != nil {
		log.Printf("Failed to list meters: %v", err)
		return
	}

	for _, meter := range meters {
		reading := syntheticEnergyReading(meter.MeterID, rng)
		if err := db.InsertEnergyReading(reading); err != nil {
			log.Printf("Failed to store reading for meter %s: %v", meter.MeterID, err)
			continue
		}

		if err := publisher.Publish(context.Background(), bus.StreamEnergyReading, map[string]interface{}{
			"meter_id":          meter.MeterID,
			"power_consumption": reading.PowerConsumption,
		}); err != nil {
			log.Printf("Failed to publish reading for meter %s: %v", meter.MeterID, err)
		}
	}
	log.Printf("Simulated readings for %d meters", len(meters))
}

func syntheticEnergyReading(meterID string, rng *rand.Rand) *models.EnergyReading {
	voltage := 220 + rng.Float64()*20
	current := 1 + rng.Float64()*40
	powerFactor := 0.85 + rng.Float64()*0.14

	return &models.EnergyReading{
		MeterID:          meterID,
		Timestamp:        time.Now(),
		Voltage:          &voltage,
		Current:          &current,
		PowerConsumption: voltage * current,
		PowerFactor:      &powerFactor,
	}
}

func simulateWater(db *database.DB, publisher *bus.Publisher, rng *rand.Rand) {
	sensors, err := db.GetWaterSensors()
	if err != nil {
		log.Printf("Failed to list sensors: %v", err)
		return
	}

	for _, sensor := range sensors {
		reading := syntheticWaterReading(sensor.SensorID, rng)
		if err := db.InsertWaterReading(reading); err != nil {
			log.Printf("Failed to store reading for sensor %s: %v", sensor.SensorID, err)
			continue
		}

		if err := publisher.Publish(context.Background(), bus.StreamWaterReading, map[string]interface{}{
			"sensor_id":     sensor.SensorID,
			"leak_detected": reading.LeakDetected,
		}); err != nil {
			log.Printf("Failed to publish reading for sensor %s: %v", sensor.SensorID, err)
		}
	}
	log.Printf("Simulated readings for %d sensors", len(sensors))
}

func syntheticWaterReading(sensorID string, rng *rand.Rand) *models.WaterReading {
	flowRate := 5 + rng.Float64()*45
	pressure := 2 + rng.Float64()*6
	temperature := 8 + rng.Float64()*12

	return &models.WaterReading{
		SensorID:    sensorID,
		Timestamp:   time.Now(),
		FlowRate:    &flowRate,
		Pressure:    &pressure,
		Temperature: &temperature,
		// Rare leak events so the training data has both classes
		LeakDetected: rng.Float64() < 0.05,
	}
}

func simulateTransport(db *database.DB, publisher *bus.Publisher, rng *rand.Rand) {
	vehicles, err := db.GetVehicles()
	if err != nil {
		log.Printf("Failed to list vehicles: %v", err)
		return
	}

	for _, vehicle := range vehicles {
		telemetry := syntheticTelemetry(vehicle.VehicleID, rng)
		if err := db.InsertTelemetry(telemetry); err != nil {
			log.Printf("Failed to store telemetry for vehicle %s: %v", vehicle.VehicleID, err)
			continue
		}

		if err := publisher.Publish(context.Background(), bus.StreamTransportTelem, map[string]interface{}{
			"vehicle_id": vehicle.VehicleID,
			"latitude":   telemetry.Latitude,
			"longitude":  telemetry.Longitude,
		}); err != nil {
			log.Printf("Failed to publish telemetry for vehicle %s: %v", vehicle.VehicleID, err)
		}
	}
	log.Printf("Simulated telemetry for %d vehicles", len(vehicles))
}

func syntheticTelemetry(vehicleID string, rng *rand.Rand) *models.TransportTelemetry {
	speed := rng.Float64() * 80
	fuelLevel := rng.Float64() * 100
	passengers := rng.Intn(60)

	return &models.TransportTelemetry{
		VehicleID:  vehicleID,
		Timestamp:  time.Now(),
		Latitude:   40.0 + rng.Float64()*0.2,
		Longitude:  -74.0 + rng.Float64()*0.2,
		Speed:      &speed,
		FuelLevel:  &fuelLevel,
		Passengers: &passengers,
	}
}
