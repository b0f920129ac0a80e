package database

import (
	"fmt"

	"github.com/yoj3289/WeNectProject/internal/config"
	"github.com/yoj3289/WeNectProject/internal/model"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// Init 连接数据库, 不做迁移
func Init(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), GormConfig(cfg.LogLevel))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// GormConfig 各驱动共用的 gorm 配置
func GormConfig(logLevel string) *gorm.Config {
	return &gorm.Config{
		Logger: gormLogger.Default.LogMode(parseGormLogLevel(logLevel)),
		NamingStrategy: &schema.NamingStrategy{
			SingularTable: true, // 禁用复数表名
		},
		// 唯一键冲突转换为 gorm.ErrDuplicatedKey
		TranslateError: true,
	}
}

// Migrate 自动迁移所有表
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.ProjectModel{},
		&model.DonationModel{},
		&model.GatewayEventModel{},
		&model.NotificationModel{},
		&model.ProjectMediaModel{},
		&model.DonationOptionModel{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func parseGormLogLevel(level string) gormLogger.LogLevel {
	switch level {
	case "silent":
		return gormLogger.Silent
	case "error":
		return gormLogger.Error
	case "info":
		return gormLogger.Info
	default:
		return gormLogger.Warn
	}
}
