package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/vontade-empenho/ponto-backend/internal/config"
	appHTTP "github.com/vontade-empenho/ponto-backend/internal/handler/http"
	"github.com/vontade-empenho/ponto-backend/internal/pkg/cron"
	"github.com/vontade-empenho/ponto-backend/internal/pkg/crosschex"
	"github.com/vontade-empenho/ponto-backend/internal/pkg/database"
	"github.com/vontade-empenho/ponto-backend/internal/pkg/jwt"
	"github.com/vontade-empenho/ponto-backend/internal/pkg/sse"
	"github.com/vontade-empenho/ponto-backend/internal/repository/postgresql"
	attendanceService "github.com/vontade-empenho/ponto-backend/internal/service/attendance"
	serviceAuth "github.com/vontade-empenho/ponto-backend/internal/service/auth"
	scheduleService "github.com/vontade-empenho/ponto-backend/internal/service/schedule"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	if err := run(); err != nil {
		slog.Error("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	tokenStore, closeStore, err := newTokenStore(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer closeStore()

	userRepo := postgresql.NewUserRepository(db)
	scheduleRepo := postgresql.NewScheduleRepository(db)
	assignmentRepo := postgresql.NewAssignmentRepository(db)

	client := crosschex.NewClient(cfg.CrossChex)
	tokens := crosschex.NewTokenProvider(client, tokenStore, cfg.CrossChex.TokenSkew)
	source := crosschex.NewSource(client, tokens)

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	scheduleSvc := scheduleService.NewScheduleService(postgresql.NewTransactor(db), scheduleRepo, assignmentRepo)
	authSvc := serviceAuth.NewAuthService(userRepo, JWTService)
	attendanceSvc := attendanceService.NewAttendanceService(userRepo, scheduleSvc, source)

	hub := sse.NewHub()
	router := appHTTP.NewRouter(cfg.App, JWTService, appHTTP.Handlers{
		Auth:       appHTTP.NewAuthHandler(authSvc),
		Attendance: appHTTP.NewAttendanceHandler(attendanceSvc),
		Schedule:   appHTTP.NewScheduleHandler(scheduleSvc),
		Stream:     appHTTP.NewStreamHandler(JWTService, authSvc, attendanceSvc, hub),
	})

	scheduler := cron.NewScheduler()
	cron.NewDashboardJobs(attendanceSvc, hub).RegisterJobs(scheduler, cfg.Cron.DashboardInterval, cfg.Cron.DashboardTimeout)
	scheduler.Start()
	defer scheduler.Stop()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.App.ReadTimeout,
		WriteTimeout: cfg.App.WriteTimeout,
		IdleTimeout:  cfg.App.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("Server listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}

// newTokenStore shares provider tokens through Redis when it is configured.
func newTokenStore(ctx context.Context, cfg config.RedisConfig) (crosschex.TokenStore, func(), error) {
	if cfg.Addr == "" {
		slog.Info("REDIS_ADDR not set, keeping provider tokens in memory")
		return crosschex.NewMemoryStore(), func() {}, nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return crosschex.NewRedisStore(rdb, cfg.KeyPrefix), func() { _ = rdb.Close() }, nil
}
