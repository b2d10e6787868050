package db

import (
	"context"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/monocle-dev/fleetwatch/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// Open returns a gorm handle for the given driver name ("postgres", "mysql" or "sqlite").
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch driver {
	case "postgres", "postgresql":
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	case "sqlite", "sqlite3":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", driver)
	}

	conn, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})

	if err != nil {
		return nil, err
	}

	if driver == "sqlite" || driver == "sqlite3" {
		sqlDB, err := conn.DB()
		if err != nil {
			return nil, err
		}
		// sqlite allows a single writer.
		sqlDB.SetMaxOpenConns(1)
	}

	return conn, nil
}

func ConnectDatabase(driver, dsn string) error {
	var err error

	DB, err = Open(driver, dsn)

	if err != nil {
		return err
	}

	return nil
}

// Migrate creates or updates the latest_status, history and kv_entries tables.
// Existing tables gain any columns and indexes added to the models.
func Migrate(conn *gorm.DB) error {
	models := []interface{}{
		&models.LatestStatus{},
		&models.HistoryRecord{},
		&models.KVEntry{},
	}

	for _, model := range models {
		if err := conn.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate %T: %w", model, err)
		}
	}

	return nil
}

func MigrateDatabase() error {
	return Migrate(DB)
}

// Ping checks that the database answers within the context deadline.
func Ping(ctx context.Context, conn *gorm.DB) error {
	sqlDB, err := conn.DB()

	if err != nil {
		return fmt.Errorf("failed to get database handle: %v", err)
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %v", err)
	}

	return nil
}
