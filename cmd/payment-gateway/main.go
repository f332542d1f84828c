package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"ms-hotel/internal/config"
	"ms-hotel/internal/kafka"
	"ms-hotel/internal/logger"
	handlers "ms-hotel/internal/payment/handler"
	"ms-hotel/internal/payment/services"
	"ms-hotel/internal/payment/storage"
)

func main() {
	logger := logger.NewLogger()
	defer logger.Close()

	logger.Info("APP", "Starting Payment Gateway initialization")

	if err := godotenv.Load(); err != nil {
		logger.Warn("CONFIG", ".env file not found, using environment variables")
	}

	cfg := config.Load()

	store, err := storage.NewPostgreSQLStore(cfg.Database, logger)
	if err != nil {
		logger.Fatal("DATABASE", fmt.Sprintf("Failed to initialize payment store: %v", err))
	}
	defer store.Close()

	stripeService, err := services.NewStripeService(cfg.Stripe.SecretKey, logger)
	if err != nil {
		logger.Fatal("STRIPE", fmt.Sprintf("Failed to initialize Stripe: %v", err))
	}

	kafkaProducer := kafka.NewProducer(cfg.Kafka.Brokers)
	defer kafkaProducer.Close()
	if err := kafka.EnsureTopicsExist(cfg.Kafka.Brokers, []string{kafka.TopicCardPayments}); err != nil {
		logger.Warn("KAFKA", fmt.Sprintf("Topic creation might have failed: %v", err))
	}

	stripeHandler := handlers.NewStripeHandler(stripeService, store, kafkaProducer, cfg.Stripe.WebhookSecret, logger)

	router := gin.Default()

	router.GET("/healthz", func(c *gin.Context) {
		if err := store.HealthCheck(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/payments")
	{
		api.POST("/validate-card", stripeHandler.ValidateCard)
		api.POST("/charge", stripeHandler.ChargeCard)
		api.POST("/webhook", stripeHandler.HandleWebhook)
		api.GET("/attempts/:attemptId", stripeHandler.GetAttempt)
		api.GET("/invoices/:invoiceId/attempts", stripeHandler.ListAttempts)
	}

	port := os.Getenv("PAYMENT_GATEWAY_PORT")
	if port == "" {
		port = ":8085"
	}

	server := &http.Server{
		Addr:    port,
		Handler: router,
	}

	go func() {
		logger.Info("HTTP", fmt.Sprintf("🚀 Payment Gateway running on %s", port))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP", fmt.Sprintf("HTTP server error: %v", err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("APP", "Shutdown signal received, initiating graceful shutdown")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctxShutdown); err != nil {
		logger.Error("HTTP", fmt.Sprintf("Server Shutdown Failed: %v", err))
	} else {
		logger.Info("HTTP", "✅ Payment Gateway shutdown complete")
	}
}
