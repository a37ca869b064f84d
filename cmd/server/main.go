package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/mkheight/hostel-backend/internal/config"
	"github.com/mkheight/hostel-backend/internal/database"
	"github.com/mkheight/hostel-backend/internal/handlers"
	"github.com/mkheight/hostel-backend/internal/middleware"
	"github.com/mkheight/hostel-backend/internal/models"
	"github.com/mkheight/hostel-backend/internal/services"
	"github.com/mkheight/hostel-backend/pkg/jwt"
	"github.com/mkheight/hostel-backend/pkg/sms"
	"github.com/mkheight/hostel-backend/pkg/validator"
	"github.com/sirupsen/logrus"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting MK Heights hostel backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	if err := validator.RegisterBindings(); err != nil {
		logger.Fatalf("Failed to register validators: %v", err)
	}

	// Initialize database connection
	logger.WithField("driver", cfg.Database.Driver).Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	loc := cfg.Hostel.Location()

	// Repositories
	accountRepo := database.NewAccountRepository(db)
	occupantRepo := database.NewOccupantRepository(db)
	paymentRepo := database.NewPaymentRepository(db)
	inquiryRepo := database.NewInquiryRepository(db)
	staffRepo := database.NewStaffRepository(db)
	settingsRepo := database.NewSettingsRepository(db)
	activityRepo := database.NewActivityRepository(db)

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	rateLimitService := services.NewRateLimitService(db, services.RateLimitConfig{
		MaxFailures: cfg.Security.LoginRateLimitMax,
		Window:      cfg.Security.LoginRateLimitWindow,
		MaxIPFails:  cfg.Security.LoginRateLimitMax * 3,
	})
	activityService := services.NewActivityService(activityRepo, accountRepo, logger, cfg.Security.EnableActivityLog, loc)
	authService := services.NewAuthService(
		accountRepo,
		rateLimitService,
		services.NewGoogleIDTokenVerifier(cfg.Google.ClientID),
		jwtService,
		activityService,
		cfg.Security.BcryptCost,
		logger,
	)
	imageService := services.NewImageService(cfg.Uploads.Dir, cfg.Uploads.URLPrefix)
	layout := services.NewBuildingLayout(cfg.Hostel.TotalFloors)

	userService := services.NewUserService(accountRepo, authService, activityService)
	occupancyService := services.NewOccupancyService(layout, occupantRepo, cfg.Hostel.RoomsPerCategory)
	rentService := services.NewRentService(occupantRepo, paymentRepo, loc)
	occupantService := services.NewOccupantService(occupantRepo, authService, imageService, activityService, logger)
	inquiryService := services.NewInquiryService(inquiryRepo, newSMSGateway(cfg.SMS, logger), cfg.SMS.AlertPhones, logger)
	staffService := services.NewStaffService(staffRepo, imageService, logger)
	settingsService := services.NewSettingsService(settingsRepo, imageService, activityService, logger)
	logger.Info("Services initialized")

	cronService := services.NewCronService(rateLimitService, logger)
	if err := cronService.Start(); err != nil {
		logger.Fatalf("Failed to start cron service: %v", err)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, logger)
	roomHandler := handlers.NewRoomHandler(occupancyService, logger)
	rentHandler := handlers.NewRentHandler(rentService, activityService, logger)
	studentHandler := handlers.NewStudentHandler(occupantService, logger)
	queryHandler := handlers.NewQueryHandler(inquiryService, logger)
	userHandler := handlers.NewUserHandler(userService, logger)
	staffHandler := handlers.NewStaffHandler(staffService, logger)
	settingsHandler := handlers.NewSettingsHandler(settingsService, logger)
	activityHandler := handlers.NewActivityHandler(activityService, loc, logger)
	healthHandler := handlers.NewHealthHandler(db, logger)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "Retry-After"},
		AllowCredentials: !containsWildcard(cfg.CORS.AllowedOrigins),
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", healthHandler.Health)
	router.Static(cfg.Uploads.URLPrefix, cfg.Uploads.Dir)

	authRequired := middleware.AuthMiddleware(authService, logger)
	noViewerWrites := middleware.BlockViewerWrites()
	staff := middleware.RequireStaff()
	adminOnly := middleware.RequireAdmin()
	adminOrManager := middleware.RequireAdminOrManager()
	recorder := middleware.RequireRecorder()

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/google", authHandler.GoogleLogin)
			auth.POST("/refresh", authHandler.Refresh)
			auth.GET("/me", authRequired, authHandler.Me)
			auth.POST("/change-password", authRequired, noViewerWrites, authHandler.ChangePassword)
			// Logout only records activity, so read-only accounts may call it
			auth.POST("/logout", authRequired, authHandler.Logout)
		}

		rooms := api.Group("/rooms")
		{
			rooms.GET("/availability", roomHandler.Availability)
			rooms.GET("/config", authRequired, staff, roomHandler.Config)
			rooms.GET("/occupancy", authRequired, staff, roomHandler.Occupancy)
			rooms.GET("/floor/:floor", authRequired, staff, roomHandler.Floor)
		}

		rent := api.Group("/rent", authRequired, staff)
		{
			rent.GET("/status", rentHandler.Status)
			rent.GET("/export", rentHandler.Export)
			rent.GET("/history/:occupantId", rentHandler.History)
			rent.GET("/stats", rentHandler.Stats)
			rent.POST("/payment", noViewerWrites, recorder, rentHandler.RecordPayment)
		}

		students := api.Group("/students", authRequired, staff)
		{
			students.GET("", studentHandler.List)
			students.GET("/stats/summary", studentHandler.Stats)
			students.GET("/:id", studentHandler.Get)
			students.POST("", noViewerWrites, recorder, studentHandler.Create)
			students.PUT("/:id", noViewerWrites, recorder, studentHandler.Update)
			students.POST("/:id/photo", noViewerWrites, recorder, studentHandler.UploadPhoto)
			students.DELETE("/:id", noViewerWrites, adminOrManager, studentHandler.Checkout)
		}

		queries := api.Group("/queries")
		{
			queries.POST("", queryHandler.Submit)
			queries.GET("", authRequired, staff, queryHandler.List)
			queries.GET("/:id", authRequired, staff, queryHandler.Get)
			queries.PATCH("/:id", authRequired, noViewerWrites, staff, queryHandler.Update)
			queries.DELETE("/:id", authRequired, noViewerWrites, adminOnly, queryHandler.Delete)
		}

		users := api.Group("/users", authRequired, noViewerWrites)
		{
			users.GET("", adminOrManager, userHandler.List)
			users.POST("", adminOrManager, userHandler.Create)
			users.PUT("/:id", adminOnly, userHandler.Update)
			users.DELETE("/:id", adminOnly, userHandler.Deactivate)
			users.POST("/:id/reset-password", adminOnly, userHandler.ResetPassword)
		}

		staffRoutes := api.Group("/staff")
		{
			staffRoutes.GET("", staffHandler.ListActive)
			staffRoutes.GET("/all", authRequired, adminOrManager, staffHandler.ListAll)
			staffRoutes.POST("", authRequired, noViewerWrites, adminOrManager, staffHandler.Create)
			staffRoutes.PUT("/:id", authRequired, noViewerWrites, adminOrManager, staffHandler.Update)
			staffRoutes.DELETE("/:id", authRequired, noViewerWrites, adminOrManager, staffHandler.Delete)
		}

		settings := api.Group("/settings")
		{
			settings.GET("", settingsHandler.Get)

			edit := settings.Group("", authRequired, noViewerWrites, adminOrManager)
			edit.PUT("", settingsHandler.Update)
			edit.POST("/room-image/:category", settingsHandler.AddRoomImage)
			edit.DELETE("/room-image/:category", settingsHandler.RemoveRoomImage)
			edit.POST("/about-image", settingsHandler.ReplaceAboutImage)
			for _, gallery := range []models.ImageGallery{models.GalleryCarousel, models.GalleryAmenities, models.GalleryCampus} {
				edit.POST("/"+string(gallery), settingsHandler.AddGalleryImage(gallery))
				edit.DELETE("/"+string(gallery), settingsHandler.RemoveGalleryImage(gallery))
			}
		}

		activity := api.Group("/activity", authRequired)
		{
			// Page views and session events are recorded for every signed-in role
			activity.POST("", activityHandler.Record)
			activity.GET("", adminOnly, activityHandler.List)
			activity.GET("/stats", adminOnly, activityHandler.Stats)
			activity.GET("/user/:id", adminOnly, activityHandler.UserActivity)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	cronService.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited")
}

// newSMSGateway picks the alert gateway for the configured mode
func newSMSGateway(cfg config.SMSConfig, logger *logrus.Logger) sms.Gateway {
	if cfg.Mode == "http" {
		logger.WithField("api_url", cfg.APIURL).Info("Using HTTP SMS gateway for query alerts")
		return sms.NewHTTPGateway(sms.HTTPConfig{
			APIURL:   cfg.APIURL,
			Username: cfg.Username,
			Password: cfg.Password,
			Sender:   cfg.Sender,
		}, logger)
	}
	logger.Info("SMS gateway in log mode (alerts are written to the log only)")
	return sms.NewLogGateway(logger)
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
