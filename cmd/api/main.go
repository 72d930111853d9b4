package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/totalfootcare/checkin-kiosk/cmd/mainconfig"
	"github.com/totalfootcare/checkin-kiosk/internal/api/router"
	"github.com/totalfootcare/checkin-kiosk/internal/capture"
	"github.com/totalfootcare/checkin-kiosk/internal/checkin"
	appconfig "github.com/totalfootcare/checkin-kiosk/internal/config"
	"github.com/totalfootcare/checkin-kiosk/internal/formstate"
	"github.com/totalfootcare/checkin-kiosk/internal/http/handlers"
	"github.com/totalfootcare/checkin-kiosk/internal/observability/metrics"
	"github.com/totalfootcare/checkin-kiosk/internal/patients"
	"github.com/totalfootcare/checkin-kiosk/internal/session"
	"github.com/totalfootcare/checkin-kiosk/internal/verification"
	"github.com/totalfootcare/checkin-kiosk/internal/wizard"
	"github.com/totalfootcare/checkin-kiosk/pkg/logging"
)

func main() {
	// .env is optional; real deployments configure through the environment.
	_ = godotenv.Load()
	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting check-in kiosk API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	awsCfg, err := mainconfig.LoadAWSConfig(context.Background(), cfg)
	if err != nil {
		logger.Error("failed to load AWS config", "error", err)
		os.Exit(1)
	}
	dynamoClient := dynamodb.NewFromConfig(awsCfg)

	redisOpts := &redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	}
	if cfg.RedisTLS {
		redisOpts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	redisClient := redis.NewClient(redisOpts)

	patientRepo := patients.NewDynamoRepository(dynamoClient, cfg.PatientsTable, logger)
	persister := formstate.NewRedisPersister(redisClient, cfg.SessionTTL, logger)
	sessionStore := session.NewRedisStore(redisClient, cfg.SessionTTL)
	sessions := session.NewManager(sessionStore, persister, cfg.TicketCleanupDelay, logger)

	gate := verification.NewGate(patientRepo, logger)
	navigator := wizard.NewNavigator(wizard.MustMachine(wizard.DefaultSteps()), sessions, logger)

	var adapter capture.Adapter
	if cfg.CaptureMode == "s3" && cfg.DocumentsBucket != "" {
		adapter = capture.NewS3Adapter(s3.NewFromConfig(awsCfg), cfg.DocumentsBucket, cfg.DocumentsPublicBaseURL, logger)
	} else {
		logger.Info("document storage not configured, embedding images inline")
		adapter = capture.NewDataURLAdapter()
	}

	var backend checkin.Backend
	if cfg.BackendMode == "rest" && cfg.BackendBaseURL != "" {
		backend = checkin.NewRESTBackend(cfg.BackendBaseURL, logger)
	} else {
		backend = checkin.NewDynamoBackend(dynamoClient, cfg.CheckinsTable, patientRepo, logger)
	}
	checkinService := checkin.NewService(sessions, backend, cfg.ClinicLocation, logger)

	kioskMetrics := metrics.NewKioskMetrics(nil)

	kioskHandler := handlers.NewKioskHandler(handlers.KioskConfig{
		Sessions:       sessions,
		Gate:           gate,
		Navigator:      navigator,
		Adapter:        adapter,
		Checkin:        checkinService,
		Metrics:        kioskMetrics,
		Logger:         logger,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	adminHandler := handlers.NewAdminAppointmentsHandler(handlers.AdminAppointmentsConfig{
		Patients: patientRepo,
		Logger:   logger,
	})

	r := router.New(&router.Config{
		Logger:              logger,
		Kiosk:               kioskHandler,
		AdminAppointments:   adminHandler,
		AdminAuthSecret:     cfg.AdminJWTSecret,
		MetricsHandler:      promhttp.Handler(),
		CORSAllowedOrigins:  cfg.CORSAllowedOrigins,
		VerifyRatePerSecond: cfg.VerifyRatePerSecond,
		VerifyRateBurst:     cfg.VerifyRateBurst,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
