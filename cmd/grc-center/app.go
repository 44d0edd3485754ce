package main

import (
	"context"
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"grc-center/internal/analytics"
	"grc-center/internal/config"
	"grc-center/internal/database"
	"grc-center/internal/services"
	"grc-center/internal/transfer"
)

// app holds what every command needs: configuration and an open database.
type app struct {
	cfg *config.Config
	db  *gorm.DB
	log *slog.Logger
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := slog.Default()
	db, err := database.Open(ctx, database.Options{
		DSN:             cfg.DBDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		Logger:          log,
	})
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, db: db, log: log}, nil
}

func (a *app) Close() {
	if err := database.Close(a.db); err != nil {
		a.log.Warn("close database", "err", err)
	}
}

func (a *app) service(ctx context.Context) (*services.Service, error) {
	storage, err := evidenceStorage(ctx, a.cfg)
	if err != nil {
		return nil, err
	}
	impact := analytics.DefaultImpactConstants()
	impact.BaselineDays = a.cfg.AuditPrepBaselineDays
	impact.CurrentDays = a.cfg.AuditPrepCurrentDays

	return services.New(database.NewStore(a.db), services.Options{
		Logger:   a.log,
		Evidence: storage,
		Impact:   impact,
	}), nil
}

func evidenceStorage(ctx context.Context, cfg *config.Config) (transfer.Storage, error) {
	switch cfg.Evidence.Storage {
	case config.StorageS3:
		s, err := transfer.NewS3Storage(ctx, transfer.S3Config{
			Bucket:          cfg.Evidence.S3Bucket,
			Prefix:          cfg.Evidence.S3Prefix,
			Region:          cfg.AWS.Region,
			Endpoint:        cfg.Evidence.S3Endpoint,
			AccessKeyID:     cfg.AWS.AccessKeyID,
			SecretAccessKey: cfg.AWS.SecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("evidence storage: %w", err)
		}
		return s, nil
	default:
		s, err := transfer.NewLocalStorage(cfg.Evidence.Dir)
		if err != nil {
			return nil, fmt.Errorf("evidence storage: %w", err)
		}
		return s, nil
	}
}
