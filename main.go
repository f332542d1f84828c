package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"

	"ms-hotel/internal/access"
	"ms-hotel/internal/auth"
	"ms-hotel/internal/billing"
	billing_api "ms-hotel/internal/billing/api"
	billing_db "ms-hotel/internal/billing/db"
	"ms-hotel/internal/booking"
	booking_api "ms-hotel/internal/booking/api"
	booking_db "ms-hotel/internal/booking/db"
	"ms-hotel/internal/booking/qr"
	rediswrap "ms-hotel/internal/booking/redis"
	"ms-hotel/internal/config"
	"ms-hotel/internal/database/migrations"
	"ms-hotel/internal/inventory"
	inventory_api "ms-hotel/internal/inventory/api"
	inventory_db "ms-hotel/internal/inventory/db"
	"ms-hotel/internal/kafka"
	"ms-hotel/internal/logger"
	"ms-hotel/internal/models"
	"ms-hotel/internal/services"
	services_api "ms-hotel/internal/services/api"
	services_db "ms-hotel/internal/services/db"
)

// A nil *kafka.Producer stored in an interface is not a nil interface,
// so the producer is only handed to services when Kafka is enabled.
func bookingPublisher(p *kafka.Producer) booking.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}

func billingPublisher(p *kafka.Producer) billing.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}

func verifyConnections(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*bun.DB, *redis.Client) {
	var sqldb *sql.DB
	var err error
	maxRetries := 5

	for i := 0; i < maxRetries; i++ {
		logger.Info("DATABASE", fmt.Sprintf("Attempting to connect to PostgreSQL (attempt %d/%d)", i+1, maxRetries))
		sqldb, err = sql.Open("postgres", cfg.Database.DSN())
		if err == nil {
			err = sqldb.Ping()
			if err == nil {
				break
			}
		}

		logger.Error("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL: %v", err))
		if sqldb != nil {
			sqldb.Close()
		}
		if i < maxRetries-1 {
			time.Sleep(2 * time.Second)
		}
	}

	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to connect to PostgreSQL after %d attempts: %v", maxRetries, err))
	}

	sqldb.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqldb.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqldb.SetConnMaxLifetime(cfg.Database.MaxLifetime)

	logger.Info("DATABASE", "✅ PostgreSQL connection successful")
	bunDB := bun.NewDB(sqldb, pgdialect.New())

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.Redis.Addr,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Redis connection error: %v", err))
	}
	logger.Info("DATABASE", fmt.Sprintf("✅ Redis connection successful to %s", cfg.Redis.Addr))

	return bunDB, redisClient
}

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting Hotel Core initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	} else {
		logger.Info("CONFIG", "Loaded environment variables from .env file")
	}

	cfg := config.Load()
	ctx := context.Background()

	logger.Info("APP", "Verifying database connections")
	bunDB, redisClient := verifyConnections(ctx, cfg, logger)
	defer bunDB.Close()
	defer redisClient.Close()

	migrationRunner := migrations.NewRunner(bunDB, migrations.DefaultOptions())
	if err := migrationRunner.RunMigrations(); err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Migrations failed: %v", err))
	}
	logger.Info("DATABASE", "Schema migrations applied")

	var kafkaProducer *kafka.Producer
	if cfg.Kafka.Enabled {
		kafkaProducer = kafka.NewProducer(cfg.Kafka.Brokers)
		logger.Info("KAFKA", "Kafka producer initialized successfully")

		if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, kafka.AllTopics()); err != nil {
			logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
		} else {
			logger.Info("KAFKA", "Required topics ensured successfully")
		}
	} else {
		logger.Warn("KAFKA", "Kafka disabled, events will not be streamed")
	}

	policy, err := access.NewPolicy(access.DefaultGrants())
	if err != nil {
		logger.Fatal("SECURITY", fmt.Sprintf("Invalid access policy: %v", err))
	}

	bookingService := booking.NewBookingService(
		&booking_db.DB{Bun: bunDB},
		rediswrap.NewRedis(redisClient),
		bookingPublisher(kafkaProducer),
		logger,
	)
	ledger := inventory.NewLedger(&inventory_db.DB{Bun: bunDB}, logger)
	processor := services.NewProcessor(&services_db.DB{Bun: bunDB}, logger)
	billingService := billing.NewBillingService(&billing_db.DB{Bun: bunDB}, billingPublisher(kafkaProducer), logger)

	passes := qr.NewPassGenerator(cfg.Auth.PassSecret)

	bookingHandler := &booking_api.Handler{
		BookingService: bookingService,
		Policy:         policy,
		Passes:         passes,
		Logger:         logger,
	}
	servicesHandler := &services_api.Handler{
		Processor: processor,
		Policy:    policy,
		Logger:    logger,
	}
	inventoryHandler := &inventory_api.Handler{
		Ledger: ledger,
		Policy: policy,
		Logger: logger,
	}
	billingHandler := &billing_api.Handler{
		BillingService: billingService,
		Policy:         policy,
		Logger:         logger,
	}

	// Card charges settled by the payment gateway arrive over Kafka and
	// are recorded against the invoice here.
	if cfg.Kafka.Enabled {
		consumer := kafka.NewCardPaymentConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID)
		defer consumer.Close()
		go consumer.Start(func(event models.CardPaymentEvent) {
			logger.LogKafka("CONSUME", kafka.TopicCardPayments, fmt.Sprintf("attempt %s for invoice %d", event.AttemptID, event.InvoiceID))
			if _, err := billingService.Pay(event.InvoiceID, event.Amount); err != nil {
				logger.Error("BILLING", fmt.Sprintf("Failed to record card payment for invoice %d: %v", event.InvoiceID, err))
			}
		})
		logger.Info("KAFKA", "Card payment consumer started")
	}

	logger.Info("HTTP", "Setting up router and middleware")
	r := chi.NewRouter()

	// --- Public Routes ---
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// --- Protected Routes ---
	r.Group(func(r chi.Router) {
		sessionCache := auth.NewRedisSessionCache(redisClient)
		r.Use(auth.Middleware(cfg.Auth.OIDCIssuer, sessionCache))
		logger.Info("AUTH", "OIDC middleware applied to protected API routes")

		r.Route("/api", func(r chi.Router) {
			r.Route("/rooms", func(r chi.Router) {
				r.Post("/", bookingHandler.CreateRoom)
				r.Get("/", bookingHandler.ListRooms)
				r.Get("/{roomId}/availability", bookingHandler.RoomAvailability)
				r.Get("/{roomId}/price", bookingHandler.PreviewPrice)
				r.Post("/{roomId}/maintenance", bookingHandler.ReportMaintenance)
			})

			r.Route("/maintenance", func(r chi.Router) {
				r.Get("/", bookingHandler.OpenMaintenance)
				r.Post("/{issueId}/resolve", bookingHandler.ResolveMaintenance)
			})

			r.Route("/customers", func(r chi.Router) {
				r.Post("/", bookingHandler.CreateCustomer)
				r.Get("/", bookingHandler.ListCustomers)
			})

			r.Route("/bookings", func(r chi.Router) {
				r.Post("/", bookingHandler.CreateBooking)
				r.Get("/", bookingHandler.ListBookings)
				r.Get("/{bookingId}", bookingHandler.GetBooking)
				r.Post("/{bookingId}/checkin", bookingHandler.CheckIn)
				r.Post("/{bookingId}/checkout", bookingHandler.CheckOut)
				r.Post("/{bookingId}/cancel", bookingHandler.Cancel)
				r.Get("/{bookingId}/pass", bookingHandler.CheckInPass)
				r.Post("/pass/verify", bookingHandler.VerifyPass)
				r.Post("/{bookingId}/services", servicesHandler.AttachToBooking)
				r.Get("/{bookingId}/services", servicesHandler.OrdersForBooking)
			})

			r.Route("/services", func(r chi.Router) {
				r.Post("/", servicesHandler.CreateService)
				r.Get("/", servicesHandler.ListServices)
				r.Put("/{serviceId}/recipe", servicesHandler.SetRecipe)
			})

			r.Route("/inventory", func(r chi.Router) {
				r.Post("/", inventoryHandler.AddStock)
				r.Get("/", inventoryHandler.ListItems)
				r.Post("/{itemId}/consume", inventoryHandler.ConsumeStock)
			})

			r.Route("/invoices", func(r chi.Router) {
				r.Post("/", billingHandler.CreateInvoice)
				r.Get("/", billingHandler.ListInvoices)
				r.Get("/{invoiceId}", billingHandler.GetInvoice)
				r.Post("/{invoiceId}/tax", billingHandler.ApplyTax)
				r.Post("/{invoiceId}/pay", billingHandler.Pay)
				r.Get("/{invoiceId}/payments", billingHandler.Payments)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Get("/occupancy", bookingHandler.OccupancyReport)
				r.Get("/revenue/bookings", bookingHandler.RevenueReport)
				r.Get("/revenue/services", servicesHandler.RevenueReport)
				r.Get("/inventory/low-stock", inventoryHandler.LowStockReport)
				r.Get("/inventory/usage", inventoryHandler.UsageReport)
			})
		})
		logger.Info("ROUTER", "API routes registered under /api")
	})

	server := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 Hotel Core running on %s", cfg.Server.Port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	logger.Info("APP", "Service started successfully, waiting for shutdown signal")
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if kafkaProducer != nil {
		if err := kafkaProducer.Close(); err != nil {
			logger.Error("KAFKA", fmt.Sprintf("Producer close failed: %v", err))
		}
	}

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "✅ Hotel Core shutdown complete")
	}
}
