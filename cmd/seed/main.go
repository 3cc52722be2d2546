package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/vontade-empenho/ponto-backend/internal/config"
	"github.com/vontade-empenho/ponto-backend/internal/domain/schedule"
	"github.com/vontade-empenho/ponto-backend/internal/domain/user"
	"github.com/vontade-empenho/ponto-backend/internal/pkg/database"
	"github.com/vontade-empenho/ponto-backend/internal/repository/postgresql"
	serviceAuth "github.com/vontade-empenho/ponto-backend/internal/service/auth"
)

func main() {
	var schemaOnly, skipSchedules bool
	flag.BoolVar(&schemaOnly, "schema-only", false, "apply the schema and exit")
	flag.BoolVar(&skipSchedules, "skip-schedules", false, "do not seed the built-in schedules")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	if err := run(schemaOnly, skipSchedules); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(schemaOnly, skipSchedules bool) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolOptions{MaxConns: 2})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := postgresql.EnsureSchema(ctx, db); err != nil {
		return err
	}
	slog.Info("schema applied")
	if schemaOnly {
		return nil
	}

	req := user.CreateUserRequest{
		Email:     cfg.Seed.Email,
		Name:      cfg.Seed.Name,
		Password:  cfg.Seed.Password,
		APIKey:    cfg.Seed.APIKey,
		APISecret: cfg.Seed.APISecret,
	}
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid SEED_ settings: %w", err)
	}

	hash, err := serviceAuth.HashPassword(req.Password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	userRepo := postgresql.NewUserRepository(db)
	scheduleRepo := postgresql.NewScheduleRepository(db)
	assignmentRepo := postgresql.NewAssignmentRepository(db)

	return postgresql.WithTransaction(ctx, db, func(ctx context.Context) error {
		tenant, err := userRepo.Upsert(ctx, user.User{
			Email:        req.Email,
			Name:         req.Name,
			PasswordHash: hash,
			APIKey:       req.APIKey,
			APISecret:    req.APISecret,
		})
		if err != nil {
			return err
		}
		slog.Info("tenant seeded", "user_id", tenant.ID, "email", tenant.Email, "has_credentials", tenant.HasCredentials())

		if skipSchedules {
			return nil
		}

		registry := schedule.DefaultRegistry()
		for _, s := range registry.Schedules() {
			if err := scheduleRepo.Upsert(ctx, tenant.ID, s, s.ID == registry.DefaultID()); err != nil {
				return fmt.Errorf("failed to seed schedule %s: %w", s.ID, err)
			}
		}
		for _, a := range registry.Assignments() {
			if err := assignmentRepo.Assign(ctx, tenant.ID, a); err != nil {
				return fmt.Errorf("failed to seed assignment %s: %w", a.EmployeeID, err)
			}
		}
		slog.Info("schedules seeded",
			"schedules", len(registry.Schedules()),
			"assignments", len(registry.Assignments()),
			"default", registry.DefaultID(),
		)
		return nil
	})
}
