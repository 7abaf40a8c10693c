package main

import (
	"encoding/csv"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"

	"citysense/internal/config"
	"citysense/internal/database"
	"citysense/internal/models"
)

// Seeds the entity registry from entities_seed.csv. Columns:
// type,id,location,latitude,longitude,extra
//   station: latitude/longitude required
//   meter:   extra = meter_type
//   sensor:  extra = sensor_type
//   vehicle: location column holds the route id, extra = vehicle_type
// An empty id gets a generated UUID.
func main() {
	if _, err := config.Load("./config.yaml"); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewDB(config.GetDatabaseDSN())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	csvPath := "entities_seed.csv"
	file, err := os.Open(csvPath)
	if err != nil {
		log.Fatalf("Failed to open CSV file: %v", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)

	header, err := reader.Read()
	if err != nil {
		log.Fatalf("Failed to read CSV header: %v", err)
	}
	log.Printf("CSV Header: %v\n", header)

	count := 0
	skipped := 0

	for {
		record, err := reader.Read()
		if err != nil {
			if err == io.EOF {
				break
			}
			log.Fatalf("Failed to read CSV record: %v", err)
		}

		if len(record) < 6 {
			log.Printf("Skipping invalid record: %v", record)
			skipped++
			continue
		}

		entityType := record[0]
		entityID := record[1]
		location := record[2]
		extra := record[5]

		if entityID == "" {
			entityID = uuid.NewString()
		}

		switch entityType {
		case "station":
			latitude, latErr := strconv.ParseFloat(record[3], 64)
			longitude, lonErr := strconv.ParseFloat(record[4], 64)
			if latErr != nil || lonErr != nil {
				log.Printf("Skipping station with invalid coordinates: %v", record)
				skipped++
				continue
			}
			err = db.CreateAirQualityStation(&models.AirQualityStation{
				StationID: entityID,
				Location:  location,
				Latitude:  latitude,
				Longitude: longitude,
				Status:    "active",
				CreatedAt: time.Now(),
			})
		case "meter":
			if extra == "" {
				extra = "residential"
			}
			err = db.CreateSmartMeter(&models.SmartMeter{
				MeterID:   entityID,
				Location:  location,
				MeterType: extra,
				Status:    "active",
				CreatedAt: time.Now(),
			})
		case "sensor":
			if extra == "" {
				extra = "flow"
			}
			err = db.CreateWaterSensor(&models.WaterSensor{
				SensorID:   entityID,
				Location:   location,
				SensorType: extra,
				Status:     "active",
				CreatedAt:  time.Now(),
			})
		case "vehicle":
			if extra == "" {
				extra = "bus"
			}
			var routeID *string
			if location != "" {
				routeID = &location
			}
			err = db.CreateVehicle(&models.Vehicle{
				VehicleID:   entityID,
				VehicleType: extra,
				RouteID:     routeID,
				Status:      "active",
				CreatedAt:   time.Now(),
			})
		default:
			log.Printf("Skipping record with unknown entity type: %v", record)
			skipped++
			continue
		}

		if err != nil {
			log.Printf("Failed to insert %s %s: %v", entityType, entityID, err)
			skipped++
			continue
		}
		count++
	}

	log.Printf("Seeding complete: %d entities inserted, %d skipped", count, skipped)
}
