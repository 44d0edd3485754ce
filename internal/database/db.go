package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"grc-center/internal/models"
)

const (
	maxAttempts  = 10
	retryBackoff = 2 * time.Second

	// sqlitePrefix selects the embedded driver, e.g. "sqlite:grc.db" or "sqlite::memory:".
	sqlitePrefix = "sqlite:"
)

type Options struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Logger          *slog.Logger
	// Quiet silences gorm's own statement logging.
	Quiet bool
}

// Open connects to the database, retrying while it comes up.
func Open(ctx context.Context, opts Options) (*gorm.DB, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	dialector, embedded := dialectorFor(opts.DSN)
	cfg := &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)}
	if opts.Quiet {
		cfg.Logger = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	var (
		db  *gorm.DB
		err error
	)
	for i := 1; i <= maxAttempts; i++ {
		logger.Info("connecting to database", "attempt", i, "max_attempts", maxAttempts)

		db, err = gorm.Open(dialector, cfg)
		if err == nil {
			break
		}
		logger.Warn("database connection failed", "attempt", i, "error", err)

		if i == maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(retryBackoff):
		}
	}
	if err != nil {
		return nil, fmt.Errorf("connect to database after %d attempts: %w", maxAttempts, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	if embedded {
		// an in-memory sqlite database lives only as long as its single connection
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		if opts.MaxOpenConns > 0 {
			sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
		}
		if opts.MaxIdleConns > 0 {
			sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
		}
		if opts.ConnMaxLifetime > 0 {
			sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
		}
	}

	logger.Info("connected to database", "driver", dialector.Name())
	return db, nil
}

func dialectorFor(dsn string) (gorm.Dialector, bool) {
	if strings.HasPrefix(dsn, sqlitePrefix) {
		return sqlite.Open(strings.TrimPrefix(dsn, sqlitePrefix)), true
	}
	return postgres.Open(dsn), false
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Sequence{},
		&models.Risk{},
		&models.Control{},
		&models.ControlFramework{},
		&models.ControlMapping{},
		&models.ComplianceFramework{},
		&models.ComplianceRequirement{},
		&models.Vendor{},
		&models.VendorAssessment{},
		&models.Evidence{},
		&models.EvidenceCollection{},
		&models.AuditLog{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
