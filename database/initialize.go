package database

import (
	"strings"

	"todo-service/config"

	"github.com/jmoiron/sqlx"
	"github.com/umakantv/go-utils/db"
	"github.com/umakantv/go-utils/db/migrations"
	"github.com/umakantv/go-utils/logger"
	"go.uber.org/zap"
)

const memoryDSN = ":memory:"

// InitializeDatabase opens the connection and applies pending migrations
func InitializeDatabase(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := cfg.Path
	if !strings.Contains(dsn, "?") {
		dsn += "?_foreign_keys=on"
	}
	dbConn := db.GetDBConnection(db.DatabaseConfig{
		DRIVER: cfg.Driver,
		DB:     dsn,
	})

	// Every SQLite connection to :memory: is a separate database, so pin the pool to one
	// connection that never expires.
	if strings.HasPrefix(cfg.Path, memoryDSN) {
		dbConn.SetMaxOpenConns(1)
		dbConn.SetConnMaxLifetime(0)
	}

	if err := migrations.Migrate(dbConn, cfg.MigrationsDir); err != nil {
		logger.Error("Error while running migration", zap.Error(err))
		dbConn.Close()
		return nil, err
	}

	logger.Info("Database initialized successfully", zap.String("path", cfg.Path))
	return dbConn, nil
}

// NewInMemory returns a migrated in-memory database, used by tests across packages
func NewInMemory(migrationsDir string) (*sqlx.DB, error) {
	return InitializeDatabase(config.DatabaseConfig{
		Driver:        "sqlite3",
		Path:          memoryDSN,
		MigrationsDir: migrationsDir,
	})
}
