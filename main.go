package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"havenstay/config"
	"havenstay/cron"
	"havenstay/database"
	bookingRepoPkg "havenstay/database/repository/booking"
	paymentRepoPkg "havenstay/database/repository/payment"
	propertyRepoPkg "havenstay/database/repository/property"
	"havenstay/handlers"
	"havenstay/middleware"
	"havenstay/routes"
	"havenstay/services/booking"
	"havenstay/services/notification"
	"havenstay/services/payment"
	"havenstay/services/payment/mpesa"
	"havenstay/services/tasks"
	"havenstay/utils"

	"github.com/gin-gonic/gin"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())
	stripe.Key = config.AppConfig.StripeKey

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	propertyRepo := propertyRepoPkg.NewMongoPropertyRepo()
	paymentRepo := paymentRepoPkg.NewMongoPaymentRepo()

	// services.
	notifier := notification.NewWebhookSender(config.AppConfig.NotificationURL)
	hub := booking.NewWatchHub()
	scheduler := tasks.NewScheduler()
	defer scheduler.Close()

	bookingService := &booking.DefaultBookingService{
		Repo:         bookingRepo,
		PropertyRepo: propertyRepo,
		Notifier:     notifier,
		Scheduler:    scheduler,
		Hub:          hub,
	}

	mpesaClient := mpesa.NewClientFromConfig(utils.GetCacheClient())
	paymentRouter := &payment.Router{
		Card:         payment.NewCardAdapter(logger),
		Wallet:       payment.NewWalletAdapter(logger),
		Mpesa:        payment.NewMpesaAdapter(mpesaClient, logger),
		Bookings:     bookingRepo,
		Payments:     paymentRepo,
		Notifier:     notifier,
		Hub:          hub,
		Logger:       logger,
		PollInterval: config.MpesaPollIntervalDuration(),
		PollTimeout:  config.MpesaPollTimeoutDuration(),
	}

	handlers.BookingService = bookingService
	handlers.PaymentRouter = paymentRouter

	// Background workers.
	cron.InitDepositWorker(bookingRepo, hub)
	utils.StartHealthMonitor(utils.GetCacheClient(), database.MongoClient)

	// Register routes.
	routes.RegisterRoutes(router)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
