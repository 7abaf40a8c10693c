package main

import (
	"fmt"
	"log"

	"github.com/go-redis/redis/v8"

	"citysense/internal/analytics"
	"citysense/internal/bus"
	"citysense/internal/config"
	"citysense/internal/database"
	"citysense/internal/server"
)

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

	leakModel := func() analytics.Regressor {
		return &flowTrendModel{}
	}

	srv := server.NewServer(db, publisher, leakModel)

	log.Printf("Starting server on %s", cfg.Server.Addr)
	if err := srv.Start(cfg.Server.Addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// flowTrendModel adapts the single-feature OLS to the two-column leak rows by
// regressing the leak flag on flow rate alone. Stand-in until a proper
// classifier is trained offline.
type flowTrendModel struct {
	analytics.LinearRegression
}

func (m *flowTrendModel) Fit(features [][]float64, labels []float64) error {
	flow, err := flowColumn(features)
	if err != nil {
		return err
	}
	return m.LinearRegression.Fit(flow, labels)
}

func (m *flowTrendModel) Predict(features []float64) (float64, error) {
	if len(features) == 0 {
		return 0, fmt.Errorf("empty feature vector")
	}
	return m.LinearRegression.Predict(features[:1])
}

func (m *flowTrendModel) Score(features [][]float64, labels []float64) (float64, error) {
	flow, err := flowColumn(features)
	if err != nil {
		return 0, err
	}
	return m.LinearRegression.Score(flow, labels)
}

func flowColumn(features [][]float64) ([][]float64, error) {
	flow := make([][]float64, len(features))
	for i, row := range features {
		if len(row) == 0 {
			return nil, fmt.Errorf("empty feature row %d", i)
		}
		flow[i] = row[:1]
	}
	return flow, nil
}
