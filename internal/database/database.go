package database

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/alexispinzongalindo/islapos/internal/config"
	"github.com/alexispinzongalindo/islapos/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect opens the process-wide connection pool. The returned handle is
// injected into every service; nothing reaches for a package global.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	slog.Info("database connected")
	return db, nil
}

// AllModels lists every table the service owns, in dependency order.
func AllModels() []interface{} {
	return []interface{}{
		&models.Restaurant{},
		&models.AppConfig{},
		&models.StaffMember{},
		&models.FloorArea{},
		&models.FloorTable{},
		&models.FloorObject{},
		&models.Order{},
		&models.OrderItem{},
		&models.TimeClockEntry{},
		&models.KDSToken{},
		&models.DeliveryIntegration{},
		&models.EdgeGateway{},
		&models.EdgePairingCode{},
		&models.EdgeEvent{},
		&models.SystemLog{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(AllModels()...)
}

func Ping(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}
