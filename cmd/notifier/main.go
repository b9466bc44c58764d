package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"parkease/internal/notifier"
	"parkease/pkg/config"
	"parkease/pkg/kafka"
	kafka_config "parkease/pkg/kafka/config"
	kafkamiddleware "parkease/pkg/kafka/middleware"
)

const (
	ServiceName       = "notifier"
	bookingEventTopic = "booking-events"
	bookingEventDLQ   = "booking-events-dlq"
	consumerGroupID   = "parkease-notifier"
)

func main() {
	cfg := config.Load(ServiceName)

	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	handler := notifier.NewHandler(notifier.NewLogDispatcher(cfg.Log), cfg.Log)

	consumer, err := kafka.NewConsumer(kafkaCfg, cfg.Log, bookingEventTopic, consumerGroupID, bookingEventDLQ, handler.Handle)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafkamiddleware.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(kafkamiddleware.MetricsConsumerMiddleware())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg.Log.Info("Starting Notifier service", "topic", bookingEventTopic, "group_id", consumerGroupID)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}

	cfg.Log.Info("Shutting down notifier")
	if err := consumer.Close(); err != nil {
		cfg.Log.Error("Failed to close consumer", "error", err)
	}

	stats := kafkamiddleware.GetMetrics().Snapshot()
	cfg.Log.Info("Delivery summary",
		"consumed", stats.Consumed,
		"failed", stats.ConsumeFailed,
		"avg_duration", stats.AvgConsumeDuration,
	)
}
