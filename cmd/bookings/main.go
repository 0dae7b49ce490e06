package main

import (
	"os"

	"hyrra/internal/bookings/events"
	bookingshandler "hyrra/internal/bookings/handler"
	bookingsrepo "hyrra/internal/bookings/repository"
	bookingssvc "hyrra/internal/bookings/service"
	bookingsvalidator "hyrra/internal/bookings/validator"
	guesthandler "hyrra/internal/guestaccess/handler"
	guestrepo "hyrra/internal/guestaccess/repository"
	guestsvc "hyrra/internal/guestaccess/service"
	"hyrra/internal/holiday"
	holidayhandler "hyrra/internal/holiday/handler"
	propertieshandler "hyrra/internal/properties/handler"
	propertiesrepo "hyrra/internal/properties/repository"
	propertiessvc "hyrra/internal/properties/service"
	propertiesvalidator "hyrra/internal/properties/validator"
	"hyrra/pkg/app"
	"hyrra/pkg/config"
	"hyrra/pkg/kafka"
	kafka_config "hyrra/pkg/kafka/config"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting Bookings service")
	cfg.SetMongo()

	publisher := initPublisher(cfg)
	bookingService, propertyService, guestService, calendar := initServices(cfg, publisher)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		bookingshandler.NewHealthHandler(cfg.Client.Mongo, cfg.Log),
		bookingshandler.NewBookingHandler(bookingService, cfg.Log),
		propertieshandler.NewPropertyHandler(propertyService, cfg.Log),
		guesthandler.NewGuestTokenHandler(guestService, cfg.Log),
		holidayhandler.NewHolidayHandler(calendar, cfg.Log),
	)
	serverApp.Run()

	if err := publisher.Close(); err != nil {
		cfg.Log.Error("Failed to close event publisher", "error", err)
	}
}

func initPublisher(cfg *config.Config) events.Publisher {
	// No brokers configured means the notification pipeline is off; the
	// scheduling core runs standalone.
	if os.Getenv(kafka_config.EnvKafkaBrokers) == "" {
		cfg.Log.Info("Kafka brokers not configured, booking events disabled")
		return events.NewNoopPublisher()
	}

	producer, err := kafka.NewProducer(kafka_config.Load(), cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	cfg.Log.Info("Booking event publisher initialized", "topic", cfg.BookingEventsTopic)
	return events.NewKafkaPublisher(producer, cfg.Log)
}

func initServices(cfg *config.Config, publisher events.Publisher) (bookingssvc.BookingService, propertiessvc.PropertyService, guestsvc.GuestTokenService, *holiday.Calendar) {
	calendar := holiday.NewCalendar()

	propertyValidator := propertiesvalidator.NewPropertyValidator(cfg.Log)
	propertyRepo := propertiesrepo.NewMongoPropertyRepository(cfg)
	propertyService := propertiessvc.NewPropertyService(propertyRepo, propertyValidator, cfg)

	guestRepo := guestrepo.NewMongoGuestTokenRepository(cfg)

	bookingValidator := bookingsvalidator.NewBookingValidator(cfg.Log)
	bookingRepo := bookingsrepo.NewMongoBookingRepository(cfg)
	lockRepo := bookingsrepo.NewPropertyLockRepository(cfg)
	fairness := bookingssvc.NewFairnessEvaluator(calendar, bookingRepo, cfg.Log)
	bookingService := bookingssvc.NewBookingService(
		bookingRepo,
		lockRepo,
		propertyService,
		fairness,
		bookingValidator,
		publisher,
		guestRepo,
		cfg,
	)

	guestService := guestsvc.NewGuestTokenService(guestRepo, bookingService, cfg)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)
	return bookingService, propertyService, guestService, calendar
}
