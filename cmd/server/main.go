package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"anoa.com/elearning/internal/bootstrap"
	"anoa.com/elearning/internal/config"
	"anoa.com/elearning/internal/server"
	"anoa.com/elearning/pkg/cache"
	"anoa.com/elearning/pkg/database"
	"anoa.com/elearning/pkg/logger"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLog, err := logger.New(cfg.LogMode)
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer appLog.Sync()
	zap.ReplaceGlobals(appLog.SugaredLogger.Desugar())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Connect(database.Options{
		URL:      cfg.DatabaseURL,
		Host:     cfg.DBHost,
		User:     cfg.DBUser,
		Password: cfg.DBPass,
		Name:     cfg.DBName,
		Port:     cfg.DBPort,
		Debug:    cfg.AppEnv == "development",
	})
	if err != nil {
		appLog.Fatal("database connection failed", "error", err)
	}

	if err := bootstrap.Migrate(db); err != nil {
		appLog.Fatal("migration failed", "error", err)
	}

	if cfg.AdminPassword != "" {
		if err := bootstrap.SeedAdminUser(db, bootstrap.AdminSeed{
			Email:    cfg.AdminEmail,
			Password: cfg.AdminPassword,
		}, appLog); err != nil {
			appLog.Fatal("failed to seed admin user", "error", err)
		}
	}
	if cfg.AppEnv == "development" {
		if err := bootstrap.SeedCategories(db, []string{"Programming", "Design", "Business", "Languages"}, appLog); err != nil {
			appLog.Fatal("failed to seed categories", "error", err)
		}
	}

	redisClient, err := cache.Connect(ctx, cfg.RedisURL)
	if err != nil {
		appLog.Warn("redis unavailable, views are written directly to the database", "error", err)
		redisClient = nil
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	srv := server.NewServer(cfg, db, redisClient, appLog)
	if err := srv.Run(ctx, ":"+cfg.Port); err != nil {
		appLog.Fatal("server exited with error", "error", err)
	}
}
