package config

import (
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mocklyai/mockly/internal/models"
)

func OpenPostgres(uri string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(uri), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// Connection pooling settings
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}

// Migrate keeps the schema in step with the GORM models. The models are the
// single source of truth for the schema; there is no separate migration dir.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Agent{},
		&models.Session{},
		&models.Resume{},
		&models.WebhookDelivery{},
	)
}
