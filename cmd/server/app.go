package main

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/yoj3289/WeNectProject/internal/config"
	"github.com/yoj3289/WeNectProject/internal/database"
	"github.com/yoj3289/WeNectProject/internal/logger"
	"github.com/yoj3289/WeNectProject/internal/logic"
	"github.com/yoj3289/WeNectProject/internal/model"
	"github.com/yoj3289/WeNectProject/internal/notify"
	"github.com/yoj3289/WeNectProject/internal/payment"
	"github.com/yoj3289/WeNectProject/internal/repository"
	"github.com/yoj3289/WeNectProject/internal/storage"
	"gorm.io/gorm"
)

// app 进程内共享的组件
type app struct {
	cfg           *config.Config
	db            *gorm.DB
	emitter       *notify.PoolEmitter
	alerter       notify.Alerter
	aggregate     *logic.AggregateLogic
	projects      *logic.ProjectLogic
	donations     *logic.DonationLogic
	notifications *logic.NotificationLogic
	options       *logic.DonationOptionLogic
}

// loadConfig 加载配置并初始化日志
func loadConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := logger.Setup(cfg.Log); err != nil {
		return nil, fmt.Errorf("failed to setup logger: %w", err)
	}
	return cfg, nil
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Init(cfg.Database)
	if err != nil {
		return nil, err
	}
	logger.Info("Database connected: %s:%d/%s", cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)
	return db, nil
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}

	ids, err := snowflake.NewNode(cfg.ID.Node)
	if err != nil {
		return nil, fmt.Errorf("failed to create id node: %w", err)
	}

	files, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return nil, err
	}

	emitter, err := notify.NewPoolEmitter(cfg.Notify.PoolSize, notify.NewDBSink(repository.NewNotificationRepository(db)))
	if err != nil {
		return nil, err
	}

	var alerter notify.Alerter = notify.LogAlerter{}
	if cfg.Notify.TelegramToken != "" {
		telegram, err := notify.NewTelegramAlerter(cfg.Notify.TelegramToken, cfg.Notify.TelegramChatID)
		if err != nil {
			logger.Warn("Telegram alerter disabled: %v", err)
		} else {
			alerter = telegram
		}
	}

	gateways := payment.NewRegistry()
	gateways.Register(model.PaymentMethodKakaoPay, payment.NewKakaoPayGateway(cfg.KakaoPay, cfg.Payment.Timeout))

	aggregate := logic.NewAggregateLogic(db)
	return &app{
		cfg:           cfg,
		db:            db,
		emitter:       emitter,
		alerter:       alerter,
		aggregate:     aggregate,
		projects:      logic.NewProjectLogic(db, files),
		donations:     logic.NewDonationLogic(db, gateways, aggregate, emitter, ids),
		notifications: logic.NewNotificationLogic(db),
		options:       logic.NewDonationOptionLogic(db),
	}, nil
}

// close 等待未完成的通知写入后关闭连接
func (a *app) close() {
	if err := a.emitter.Close(5 * time.Second); err != nil {
		logger.Warn("Notification pool did not drain: %v", err)
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
