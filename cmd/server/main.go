package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"github.com/saransh1220/libraria/internal/gateway"
	"github.com/saransh1220/libraria/internal/shared/infrastructure/config"
	"github.com/saransh1220/libraria/internal/shared/infrastructure/database"
	"github.com/saransh1220/libraria/internal/shared/logger"
	"github.com/saransh1220/libraria/pkg/migration"
)

func main() {
	cfg := config.Load()

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer zapLogger.Sync()

	if err := run(cfg, zapLogger); err != nil {
		zapLogger.Fatal("server exited", zap.Error(err))
	}
}

func run(cfg config.Config, logger *zap.Logger) error {
	logger.Info("connecting to postgres", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))
	db, err := database.NewPostgresDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.Migrations.AutoRun {
		if err := migration.AutoMigrate(cfg.Database.URL(), cfg.Migrations.Path, logger); err != nil {
			return err
		}
	}

	logger.Info("connecting to redis", zap.String("addr", cfg.Redis.Addr()))
	rdb, err := database.NewRedis(cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	app, err := newApp(context.Background(), cfg, db, rdb, nil, logger)
	if err != nil {
		return err
	}

	server := gateway.NewServer(cfg.Server.Port, app.handler, logger)
	server.OnShutdown(app.shutdown)
	return server.Start()
}
