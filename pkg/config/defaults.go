package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "hyrra"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort = "8080"

	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Advisory lock lifetime. Long enough to cover the transactional
	// conflict check + insert, short enough that a crashed holder does not
	// freeze the property for long.
	DefaultPropertyLockTTL = 10 * time.Second

	// Guest links open one day before the stay and close one day after.
	DefaultGuestLinkSlack = 24 * time.Hour

	DefaultBookingEventsTopic    = "booking-events"
	DefaultBookingEventsDLQTopic = ""

	DefaultPaginationLimit = 100
)
