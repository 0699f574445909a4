package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/sirupsen/logrus"

	"socialhub/internal/config"
	"socialhub/internal/database/migrations"
)

// Connect opens the PostgreSQL pool and, when DB_AUTO_MIGRATE is set, applies
// the embedded schema migrations.
func Connect(cfg *config.Config) (*sqlx.DB, error) {
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)

	db, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.DBAutoMigrate {
		if err := migrations.MigrateUp(db.DB); err != nil {
			db.Close()
			return nil, err
		}
		logrus.Info("Database migrations applied")
	} else if err := migrations.CheckStatus(db.DB); err != nil {
		logrus.WithError(err).Warn("Database schema is not at the expected version")
	}

	logrus.WithFields(logrus.Fields{"host": cfg.DBHost, "db": cfg.DBName}).Info("Connected to database")
	return db, nil
}
