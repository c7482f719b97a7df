package db

import (
	"context"
	"fmt"
	"time"

	"wastenot/internal/config"
	"wastenot/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Connect はDBに接続して *gorm.DB を返す。
// 接続プールはプロセスで1つ。DB_POOL_MIN/DB_POOL_MAX で上下を決める。
func Connect(ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	gormDB, err := gorm.Open(postgres.Open(cfg.PostgresDSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(cfg.DBPoolMax)
	sqlDB.SetMaxIdleConns(cfg.DBPoolMin)
	sqlDB.SetConnMaxLifetime(cfg.DBConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	return gormDB, nil
}

// Migrate はテーブルを作る（制約・インデックスはモデルのタグ）
func Migrate(gormDB *gorm.DB) error {
	return gormDB.AutoMigrate(
		&model.Branch{},
		&model.Product{},
		&model.Listing{},
		&model.LineItem{},
		&model.Claim{},
		&model.ClaimItem{},
		&model.Pickup{},
		&model.InventoryAdjustment{},
		&model.AuditLog{},
	)
}

// Close はプールを閉じる
func Close(gormDB *gorm.DB) error {
	sqlDB, err := gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
