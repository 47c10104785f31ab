package main

import (
	"busly/internal/bookings/attach"
	"busly/internal/bookings/handler"
	"busly/internal/bookings/repository"
	"busly/internal/bookings/service"
	"busly/internal/bookings/session"
	"busly/internal/bookings/validator"
	"busly/pkg/app"
	"busly/pkg/config"
	"busly/pkg/events"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)
	cfg.Log.Info("Starting bookings service")

	store, lockRepo := initStores(cfg)
	bookingService, publisher := initService(cfg, store, lockRepo)

	sessions := session.NewManager(cfg.Buses[0], cfg.SessionTTL)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		handler.NewBookingHandler(bookingService, sessions, cfg.Log),
		handler.NewHealthHandler(store, cfg.Log),
	)
	serverApp.OnShutdown(sessions.Stop)
	if publisher != nil {
		serverApp.OnShutdown(func() {
			if err := publisher.Close(); err != nil {
				cfg.Log.Warn("Failed to close event publisher", "error", err)
			}
		})
	}

	serverApp.Run()
}

func initStores(cfg *config.Config) (repository.RecordStore, repository.BusLockRepository) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		cfg.SetMongo()

		store, err := repository.NewMongoRecordStore(cfg)
		if err != nil {
			cfg.Log.Fatal("Failed to initialize mongo record store", "error", err)
		}
		lockRepo, err := repository.NewMongoBusLockRepository(cfg)
		if err != nil {
			cfg.Log.Fatal("Failed to initialize mongo bus lock repository", "error", err)
		}
		cfg.Log.Info("Record store initialized", "backend", config.BackendMongo, "database", cfg.MongoDatabaseName)
		return store, lockRepo

	default:
		store, err := repository.NewCSVRecordStore(cfg.RecordFilePath())
		if err != nil {
			cfg.Log.Fatal("Failed to initialize csv record store", "error", err)
		}
		cfg.Log.Info("Record store initialized", "backend", config.BackendCSV, "path", cfg.RecordFilePath())
		return store, repository.NewMemoryBusLockRepository()
	}
}

func initService(cfg *config.Config, store repository.RecordStore, lockRepo repository.BusLockRepository) (service.BookingService, events.Publisher) {
	attachments, err := attach.NewStore(cfg.UploadDir())
	if err != nil {
		cfg.Log.Fatal("Failed to initialize attachment store", "error", err)
	}

	var publisher events.Publisher
	if cfg.EventsEnabled {
		publisher, err = events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, ServiceName)
		if err != nil {
			cfg.Log.Fatal("Failed to initialize event publisher", "error", err)
		}
		cfg.Log.Info("Event publisher initialized", "topic", cfg.KafkaTopic)
	}

	riderValidator := validator.NewRiderValidator(cfg.BoardingPoints, cfg.Log)
	bookingService := service.NewBookingService(store, lockRepo, attachments, riderValidator, publisher, cfg)

	cfg.Log.Info("Booking service initialized", "buses", cfg.Buses)
	return bookingService, publisher
}
