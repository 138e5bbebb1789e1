package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fikerless/config"
	"fikerless/database"
	availabilityRepo "fikerless/database/repository/availability"
	sessionRepo "fikerless/database/repository/session"
	requestRepo "fikerless/database/repository/sessionrequest"
	userRepoPkg "fikerless/database/repository/user"
	"fikerless/handlers"
	"fikerless/middleware"
	"fikerless/routes"
	"fikerless/services/booking"
	"fikerless/services/notification"
	"fikerless/services/reminder"
	"fikerless/services/storage"
	"fikerless/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitAuthCache()
	utils.FirebaseInit()

	cld, err := utils.Cloudinary()
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize cloudinary storage service: %v", err)
	}
	storageService := storage.NewStorageService(cld, config.AppConfig.CloudinaryCloudName)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// Repositories. Constructors create the unique indexes the booking
	// invariants depend on.
	availRepo := availabilityRepo.NewMongoAvailabilityRepo()
	reqRepo := requestRepo.NewMongoSessionRequestRepo()
	sessRepo := sessionRepo.NewMongoSessionRepo()
	userRepo := userRepoPkg.NewMongoUserRepo()

	// Services.
	clock := utils.NewRealClock()
	bookingService := &booking.DefaultBookingService{
		Availability:  availRepo,
		Requests:      reqRepo,
		Sessions:      sessRepo,
		Storage:       storageService,
		Clock:         clock,
		PaymentWindow: time.Duration(config.AppConfig.PaymentWindowMinutes) * time.Minute,
	}

	fcmSink, err := notification.NewFCMSink(userRepo)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize notification sink: %v", err)
	}

	scheduler := reminder.NewScheduler(sessRepo, reqRepo, fcmSink, clock)
	scheduler.Start()

	// Handlers and routes.
	handlerBundle := &routes.HandlerBundle{
		Booking: handlers.NewBookingHandler(bookingService, logger),
		Session: handlers.NewSessionHandler(bookingService, logger),
	}
	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor(
		[]*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient()},
		database.MongoClient,
	)

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

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	scheduler.Stop(ctx)
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
