package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/campuslabs/equiptrack-backend/api/routes"
	"github.com/campuslabs/equiptrack-backend/internal/audit"
	"github.com/campuslabs/equiptrack-backend/internal/auth"
	"github.com/campuslabs/equiptrack-backend/internal/equipment"
	"github.com/campuslabs/equiptrack-backend/internal/maintenance"
	"github.com/campuslabs/equiptrack-backend/internal/reservations"
	"github.com/campuslabs/equiptrack-backend/internal/statistics"
	"github.com/campuslabs/equiptrack-backend/internal/usage"
	"github.com/campuslabs/equiptrack-backend/internal/users"
	"github.com/campuslabs/equiptrack-backend/pkg/auth/session"
	"github.com/campuslabs/equiptrack-backend/pkg/config"
	pkgdb "github.com/campuslabs/equiptrack-backend/pkg/db"
	"github.com/campuslabs/equiptrack-backend/pkg/logger"
	"github.com/campuslabs/equiptrack-backend/pkg/metrics"
	"github.com/campuslabs/equiptrack-backend/pkg/migrate"
	pkgredis "github.com/campuslabs/equiptrack-backend/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 15 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "equiptrack-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "fatal", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := pkgdb.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer dbClient.Close()

	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	redisClient, err := pkgredis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer redisClient.Close()

	sessions, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return fmt.Errorf("session manager: %w", err)
	}

	db := dbClient.DB()
	userRepo := users.NewRepository(db)
	equipmentRepo := equipment.NewRepository(db)
	usageRepo := usage.NewRepository(db)
	reservationRepo := reservations.NewRepository(db)
	maintenanceRepo := maintenance.NewRepository(db)
	statsRepo := statistics.NewRepository(db)
	auditRepo := audit.NewRepository(db)

	auditSvc, err := audit.NewService(auditRepo, logg)
	if err != nil {
		return fmt.Errorf("audit service: %w", err)
	}

	authSvc, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessions,
		Recorder:       auditSvc,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return fmt.Errorf("auth service: %w", err)
	}

	userSvc, err := users.NewService(userRepo, auditSvc, cfg.Password)
	if err != nil {
		return fmt.Errorf("user service: %w", err)
	}

	equipmentSvc, err := equipment.NewService(equipmentRepo, usageRepo, auditSvc)
	if err != nil {
		return fmt.Errorf("equipment service: %w", err)
	}

	usageSvc, err := usage.NewService(usageRepo, equipmentRepo, auditSvc)
	if err != nil {
		return fmt.Errorf("usage service: %w", err)
	}

	reservationSvc, err := reservations.NewService(reservationRepo, equipmentRepo, dbClient, auditSvc)
	if err != nil {
		return fmt.Errorf("reservation service: %w", err)
	}

	maintenanceSvc, err := maintenance.NewService(maintenanceRepo, equipmentRepo, userRepo, auditSvc)
	if err != nil {
		return fmt.Errorf("maintenance service: %w", err)
	}

	statsSvc, err := statistics.NewService(statsRepo, cfg.Statistics)
	if err != nil {
		return fmt.Errorf("statistics service: %w", err)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	handler := routes.New(routes.Params{
		Config:      cfg,
		Logger:      logg,
		DB:          dbClient,
		Redis:       redisClient,
		Sessions:    sessions,
		Metrics:     httpMetrics,
		Auth:        authSvc,
		Users:       userSvc,
		Equipment:   equipmentSvc,
		Usage:       usageSvc,
		Reservation: reservationSvc,
		Maintenance: maintenanceSvc,
		Statistics:  statsSvc,
		Audit:       auditSvc,
	})

	server := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logg.Info(logg.WithField(ctx, "addr", server.Addr), "server.listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	logg.Info(ctx, "server.shutting_down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	logg.Info(ctx, "server.stopped")
	return nil
}
