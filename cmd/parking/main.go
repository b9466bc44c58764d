package main

import (
	announcementhandler "parkease/internal/announcements/handler"
	announcementrepository "parkease/internal/announcements/repository"
	announcementservice "parkease/internal/announcements/service"
	announcementvalidator "parkease/internal/announcements/validator"
	bookinghandler "parkease/internal/bookings/handler"
	bookingrepository "parkease/internal/bookings/repository"
	bookingservice "parkease/internal/bookings/service"
	bookingvalidator "parkease/internal/bookings/validator"
	slothandler "parkease/internal/slots/handler"
	slotrepository "parkease/internal/slots/repository"
	slotservice "parkease/internal/slots/service"
	slotvalidator "parkease/internal/slots/validator"
	"parkease/pkg/app"
	"parkease/pkg/config"
	"parkease/pkg/contracts"
	"parkease/pkg/kafka"
	kafka_config "parkease/pkg/kafka/config"
	kafkamiddleware "parkease/pkg/kafka/middleware"
)

const (
	ServiceName       = "parking"
	bookingEventTopic = "booking-events"
	bookingEventDLQ   = "booking-events-dlq"
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Parking service")
	handlers := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handlers...)
	serverApp.Run()
}

func initServices(cfg *config.Config) []contracts.Handler {
	var publisher bookingservice.EventPublisher
	if cfg.KafkaEnabled {
		producer, err := kafka.NewProducer(kafka_config.Load(), cfg.Log, bookingEventTopic, bookingEventDLQ)
		if err != nil {
			cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
		}
		producer.Use(kafkamiddleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafkamiddleware.MetricsProducerMiddleware())
		publisher = producer
		cfg.Log.Info("Booking event publishing enabled", "topic", bookingEventTopic)
	} else {
		cfg.Log.Info("Kafka disabled, booking events will not be published")
	}

	slotRepo := slotrepository.NewMongoSlotRepository(cfg)
	bookingRepo := bookingrepository.NewMongoBookingRepository(cfg)

	reservationService := bookingservice.NewReservationService(
		bookingRepo,
		slotRepo,
		bookingvalidator.NewBookingValidator(cfg.Log, cfg.MaxBookingDurationMin),
		publisher,
		cfg,
	)

	slotService := slotservice.NewSlotService(
		slotRepo,
		reservationService,
		slotvalidator.NewSlotValidator(cfg.Log),
		cfg,
	)

	announcementService := announcementservice.NewAnnouncementService(
		announcementrepository.NewMongoAnnouncementRepository(cfg),
		announcementvalidator.NewAnnouncementValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Parking services initialized", "database", cfg.MongoDatabaseName)
	return []contracts.Handler{
		slothandler.NewSlotHandler(slotService, cfg.Log),
		bookinghandler.NewBookingHandler(reservationService, cfg.Log),
		announcementhandler.NewAnnouncementHandler(announcementService, cfg.Log),
	}
}
