package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/presensia/attendance-backend-go/internal/config"
	appHTTP "github.com/presensia/attendance-backend-go/internal/handler/http"
	"github.com/presensia/attendance-backend-go/internal/pkg/cron"
	"github.com/presensia/attendance-backend-go/internal/pkg/database"
	"github.com/presensia/attendance-backend-go/internal/pkg/jwt"
	"github.com/presensia/attendance-backend-go/internal/pkg/sse"
	"github.com/presensia/attendance-backend-go/internal/repository/postgresql"
	attendanceService "github.com/presensia/attendance-backend-go/internal/service/attendance"
	deviceService "github.com/presensia/attendance-backend-go/internal/service/device"
	"github.com/presensia/attendance-backend-go/internal/service/geofence"
	notificationService "github.com/presensia/attendance-backend-go/internal/service/notification"
	offPremisesService "github.com/presensia/attendance-backend-go/internal/service/offpremises"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := database.NewPostgreSQLDB(cfg.DatabaseURL())
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Repositories
	attendanceRepo := postgresql.NewAttendanceRepository(db)
	profileRepo := postgresql.NewProfileRepository(db)
	locationRepo := postgresql.NewLocationRepository(db)
	deviceRadiusRepo := postgresql.NewDeviceRadiusRepository(db)
	deviceRepo := postgresql.NewDeviceRepository(db)
	offPremisesRepo := postgresql.NewOffPremisesRepository(db)
	leaveRepo := postgresql.NewLeaveRepository(db)
	notificationRepo := postgresql.NewNotificationRepository(db)
	auditRepo := postgresql.NewAuditRepository(db)

	// Infrastructure
	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	hub := sse.NewHub()
	notifier := notificationService.NewNotificationService(notificationRepo, hub, notificationService.Config{}, logger)
	defer notifier.Stop()

	// Services
	geoValidator := geofence.NewValidator(deviceRadiusRepo, cfg.Geofence.DefaultRadiusMeters, logger)
	deviceGuard := deviceService.NewDeviceService(deviceRepo, profileRepo, auditRepo, notifier, logger)
	attendanceSvc := attendanceService.NewAttendanceService(
		attendanceRepo,
		profileRepo,
		locationRepo,
		leaveRepo,
		auditRepo,
		geoValidator,
		deviceGuard,
		notifier,
	)
	offPremisesSvc := offPremisesService.NewOffPremisesService(
		db,
		offPremisesRepo,
		profileRepo,
		attendanceSvc,
		auditRepo,
		notifier,
		logger,
	)

	// Handlers
	attendanceHandler := appHTTP.NewAttendanceHandler(attendanceSvc)
	offPremisesHandler := appHTTP.NewOffPremisesHandler(offPremisesSvc)
	deviceHandler := appHTTP.NewDeviceHandler(deviceGuard)
	notificationHandler := appHTTP.NewNotificationHandler(notifier, hub)

	router := appHTTP.NewRouter(jwtService, attendanceHandler, offPremisesHandler, deviceHandler, notificationHandler)

	// Scheduled maintenance
	scheduler := cron.NewScheduler()
	jobs := cron.NewAttendanceJobs(attendanceSvc)
	scheduler.AddJob("missed-checkout-sweep", time.Hour, jobs.SweepMissedCheckouts)
	scheduler.Start()
	defer scheduler.Stop()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "port", cfg.App.Port, "env", cfg.App.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}
