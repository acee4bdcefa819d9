package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medicare-backend/config"
	deliveryHttp "medicare-backend/internal/delivery/http"
	"medicare-backend/internal/delivery/http/handler"
	"medicare-backend/internal/delivery/http/middleware"
	"medicare-backend/internal/delivery/ws"
	"medicare-backend/internal/infrastructure/cache"
	"medicare-backend/internal/infrastructure/database"
	"medicare-backend/internal/infrastructure/lock"
	"medicare-backend/internal/repository"
	"medicare-backend/internal/service"
	"medicare-backend/internal/usecase"
	"medicare-backend/pkg/jwt"
	"medicare-backend/pkg/validator"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const lockTTL = 5 * time.Second

// App holds all dependencies for the application
type App struct {
	Config          *config.Config
	DB              *gorm.DB
	RedisClient     *redis.Client
	Server          *http.Server
	ReminderService *service.ReminderService
}

// New creates a new App instance with all dependencies initialized
func New() (*App, error) {
	app := &App{}

	// Setup logger
	setupLogger()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg
	logrus.Info("Configuration loaded successfully")

	// Initialize database
	db, err := database.NewPostgresConnection(cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	app.DB = db
	logrus.Info("Database connected successfully")

	// Initialize Redis
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	app.RedisClient = redisClient
	logrus.Info("Redis connected successfully")

	// Initialize all layers
	server, reminderService := initializeServer(cfg, db, redisClient)
	app.Server = server
	app.ReminderService = reminderService

	return app, nil
}

// setupLogger configures the logrus logger
func setupLogger() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetOutput(os.Stdout)
	logrus.SetLevel(logrus.InfoLevel)
}

// initializeServer creates and configures the HTTP server and background
// services
func initializeServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*http.Server, *service.ReminderService) {
	// Initialize JWT service
	jwtService := jwt.NewJWTService(cfg.JWT)

	// Initialize validator
	customValidator := validator.NewValidator()

	// Initialize logger
	log := logrus.StandardLogger()

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	conversationRepo := repository.NewConversationRepository(db)
	hospitalRepo := repository.NewHospitalRepository(db)
	auditLogRepo := repository.NewAuditLogRepository(db)
	settingRepo := repository.NewSystemSettingRepository(db)

	// Initialize distributed locker
	locker := lock.NewRedisLocker(redisClient, lockTTL)

	// Initialize the socket hub; it fans usecase events out to rooms
	hub := ws.NewHub(log)

	// Initialize services
	auditService := service.NewAuditService(log, auditLogRepo)
	reminderService := service.NewReminderService(log, appointmentRepo)

	// Initialize usecases
	authUsecase := usecase.NewAuthUsecase(log, userRepo, jwtService, redisClient)
	appointmentUsecase := usecase.NewAppointmentUsecase(log, userRepo, appointmentRepo, locker, hub)
	chatUsecase := usecase.NewChatUsecase(log, userRepo, conversationRepo, appointmentRepo, locker, hub)
	adminUsecase := usecase.NewAdminUsecase(log, userRepo, appointmentRepo, hospitalRepo, auditLogRepo, settingRepo, auditService, hub)

	// Initialize the WebSocket gateway
	gateway := ws.NewGateway(log, hub, jwtService, authUsecase, chatUsecase, userRepo, conversationRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authUsecase, customValidator, jwtService)
	appointmentHandler := handler.NewAppointmentHandler(appointmentUsecase, customValidator)
	chatHandler := handler.NewChatHandler(chatUsecase, customValidator)
	adminHandler := handler.NewAdminHandler(adminUsecase, customValidator)
	hospitalHandler := handler.NewHospitalHandler(adminUsecase, customValidator)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService, redisClient)
	corsMiddleware := middleware.NewCORSMiddleware(cfg.CORS)

	// Initialize router
	router := deliveryHttp.NewRouter(authHandler, appointmentHandler, chatHandler, adminHandler, hospitalHandler, gateway, authMiddleware, corsMiddleware)
	httpRouter := router.Setup()

	// Create server
	serverAddr := fmt.Sprintf(":%s", cfg.App.Port)
	server := &http.Server{
		Addr:    serverAddr,
		Handler: httpRouter,
	}

	return server, reminderService
}

// Run starts the HTTP server plus the reminder sweep and handles graceful
// shutdown
func (app *App) Run() {
	if err := app.ReminderService.Start(app.Config.Reminder.Schedule); err != nil {
		logrus.Fatalf("Failed to start reminder service: %v", err)
	}

	// Start server in goroutine
	go func() {
		logrus.Infof("Server starting on port %s", app.Config.App.Port)
		logrus.Infof("Environment: %s", app.Config.App.Env)
		if err := app.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal
	app.waitForShutdown()
}

// waitForShutdown blocks until an interrupt signal is received
func (app *App) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")

	app.ReminderService.Stop()

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := app.Server.Shutdown(ctx); err != nil {
		logrus.Errorf("Server forced to shutdown: %v", err)
	}

	// Close connections
	app.Close()

	logrus.Info("Server shutdown complete")
}

// Close releases the database and Redis connections
func (app *App) Close() {
	if app.DB != nil {
		if sqlDB, err := app.DB.DB(); err == nil {
			sqlDB.Close()
		}
	}

	if app.RedisClient != nil {
		app.RedisClient.Close()
	}
}
