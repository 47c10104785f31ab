package config

import "time"

const (
	BackendCSV   = "csv"
	BackendMongo = "mongo"
)

const (
	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultDataDir      = "/var/lib/busly"
	DefaultStoreBackend = BackendCSV

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "busly"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultSessionTTL = 30 * time.Minute

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 5 * 1024 * 1024 // 5MB, payment screenshots included

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultKafkaBrokers = "localhost:9092"
	DefaultKafkaTopic   = "busly.bookings"
)

const (
	RecordFileName = "bus_booking_records.csv"
	UploadDirName  = "payment_screenshots"
)

var (
	DefaultBuses          = []string{"Bus 1", "Bus 2", "Bus 3", "Bus 4"}
	DefaultBoardingPoints = []string{"Tampines", "Punggol"}
)
