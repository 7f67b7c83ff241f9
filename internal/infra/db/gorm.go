package db

import (
	"fmt"
	"log/slog"
	"time"

	"topupstore/internal/config"
	"topupstore/internal/domain/model"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const applicationName = "topupstore"

// Connect はDBに接続して *gorm.DB を返す。
// 接続は pgx の database/sql ドライバで作り、gorm に渡す。
func Connect(cfg config.Config) (*gorm.DB, error) {
	pgCfg, err := pgx.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pgCfg.RuntimeParams["application_name"] = applicationName

	gcfg := &gorm.Config{
		// 一意制約違反などを gorm.ErrDuplicatedKey に揃える
		TranslateError: true,
		Logger:         logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	}

	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: stdlib.OpenDB(*pgCfg)}), gcfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	return gormDB, nil
}

// テーブル作成
func Migrate(gormDB *gorm.DB) error {
	return gormDB.AutoMigrate(model.All()...)
}

func gormLogLevel(l slog.Level) logger.LogLevel {
	switch {
	case l <= slog.LevelDebug:
		return logger.Info
	case l <= slog.LevelWarn:
		return logger.Warn
	default:
		return logger.Error
	}
}
