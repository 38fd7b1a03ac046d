package database

import (
	"fmt"
	"sync"
	"time"

	"github.com/optihealth/platform/pkg/common/config"
	"github.com/optihealth/platform/pkg/common/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	db     *gorm.DB
	dbErr  error
	dbOnce sync.Once
)

func PostgresDSN(cfg *config.Config) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.PostgresHost,
		cfg.PostgresUser,
		cfg.PostgresPassword,
		cfg.PostgresDB,
		cfg.PostgresPort,
		cfg.PostgresSSLMode,
	)
}

func GetPostgres() (*gorm.DB, error) {
	dbOnce.Do(func() {
		cfg := config.Load()
		db, dbErr = gorm.Open(postgres.Open(PostgresDSN(cfg)), &gorm.Config{TranslateError: true})
		if dbErr != nil {
			logger.Log.WithError(dbErr).Error("Failed to connect to PostgreSQL")
			return
		}

		sqlDB, err := db.DB()
		if err != nil {
			dbErr = err
			return
		}
		if cfg.PostgresMaxConns > 0 {
			sqlDB.SetMaxOpenConns(cfg.PostgresMaxConns)
			sqlDB.SetMaxIdleConns(cfg.PostgresMaxConns / 2)
		}
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)

		logger.Log.WithFields(map[string]interface{}{
			"host":      cfg.PostgresHost,
			"db":        cfg.PostgresDB,
			"max_conns": cfg.PostgresMaxConns,
		}).Info("Connected to PostgreSQL")
	})

	return db, dbErr
}

func ClosePostgres() error {
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
