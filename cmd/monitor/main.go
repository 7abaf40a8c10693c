package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"

	"citysense/internal/bus"
	"citysense/internal/config"
)

// Tails the alert streams through a consumer group and logs every alert.
// Acts as the operations console until a real notification channel exists.
func main() {
	if _, err := config.Load("./config.yaml"); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	redisCfg := config.GetRedisConfig()
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	defer redisClient.Close()

	consumerGroup := "alert_monitors"
	consumerName := "monitor-1"
	streams := []string{
		bus.StreamAirQualityAlert,
		bus.StreamEnergyAlert,
		bus.StreamWaterLeakAlert,
		bus.StreamTransportAlert,
		bus.StreamPredictionAlert,
	}

	// Create consumer groups if they don't exist
	for _, stream := range streams {
		err := redisClient.XGroupCreateMkStream(context.Background(), stream, consumerGroup, "0").Err()
		if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
			log.Fatalf("Failed to create consumer group on %s: %v", stream, err)
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		<-quit
		log.Println("Shutting down alert monitor...")
		cancel()
	}()

	// XReadGroup wants stream names followed by one ">" per stream
	readStreams := make([]string, 0, len(streams)*2)
	readStreams = append(readStreams, streams...)
	for range streams {
		readStreams = append(readStreams, ">")
	}

	log.Println("Alert monitor started, reading from Redis streams. Press Ctrl+C to stop...")

	for {
		msgs, err := redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    consumerGroup,
			Consumer: consumerName,
			Streams:  readStreams,
			Count:    10,
			Block:    time.Second * 5,
		}).Result()

		if ctx.Err() != nil {
			break
		}

		if err != nil && err != redis.Nil {
			log.Printf("Error reading from Redis: %v", err)
			continue
		}

		for _, msg := range msgs {
			for _, m := range msg.Messages {
				if ctx.Err() != nil {
					log.Println("Alert monitor stopped")
					return
				}

				dataStr, ok := m.Values["data"].(string)
				if !ok {
					log.Printf("Message %s on %s has no data field", m.ID, msg.Stream)
					redisClient.XAck(context.Background(), msg.Stream, consumerGroup, m.ID)
					continue
				}

				var envelope struct {
					EventID   string                 `json:"event_id"`
					Timestamp string                 `json:"timestamp"`
					Payload   map[string]interface{} `json:"payload"`
				}
				if err := json.Unmarshal([]byte(dataStr), &envelope); err != nil {
					log.Printf("Failed to unmarshal message %s on %s: %v", m.ID, msg.Stream, err)
					continue
				}

				log.Printf("[%s] %s %s/%s: %v",
					msg.Stream,
					envelope.Payload["severity"],
					envelope.Payload["service_type"],
					envelope.Payload["entity_id"],
					envelope.Payload["message"])

				redisClient.XAck(context.Background(), msg.Stream, consumerGroup, m.ID)
			}
		}
	}

	log.Println("Alert monitor stopped")
}
