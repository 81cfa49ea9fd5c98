package config

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/cbitosc/HTF25-Team-416-sub000/internal/logging"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/store"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/store/gormstore"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/store/memstore"
	"github.com/cbitosc/HTF25-Team-416-sub000/internal/store/mongostore"
)

const connectTimeout = 10 * time.Second

// OpenStore connects the backend selected by database.driver.
func OpenStore(ctx context.Context, cfg *DatabaseConfig) (store.Store, error) {
	switch cfg.Driver {
	case "postgres":
		db, err := InitDatabase(cfg)
		if err != nil {
			return nil, err
		}
		s := gormstore.New(db)
		if err := s.Migrate(); err != nil {
			return nil, fmt.Errorf("migrating database: %w", err)
		}
		return s, nil
	case "mongo":
		ctx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()
		s, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		logging.Info().Str("database", cfg.MongoDB).Msg("Connected to MongoDB")
		return s, nil
	case "memory":
		logging.Warn().Msg("Using in-memory store, data is lost on restart")
		return memstore.New(), nil
	}
	return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
}

func InitDatabase(cfg *DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode,
	)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}

	if err := enableUUIDExtension(db); err != nil {
		return nil, err
	}
	logging.Info().Str("host", cfg.Host).Str("database", cfg.Name).Msg("Connected to PostgreSQL")
	return db, nil
}

func enableUUIDExtension(db *gorm.DB) error {
	return db.Exec("CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"").Error
}
