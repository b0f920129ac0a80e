package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/yoj3289/WeNectProject/internal/database"
	"github.com/yoj3289/WeNectProject/internal/logger"
	"github.com/yoj3289/WeNectProject/internal/router"
	"github.com/yoj3289/WeNectProject/internal/task"
)

var serveMigrate bool

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and background jobs",
		RunE:  runServe,
	}
	cmd.Flags().BoolVar(&serveMigrate, "migrate", true, "run database migrations before serving")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	if serveMigrate {
		if err := database.Migrate(a.db); err != nil {
			return err
		}
	}

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(cfg, router.Deps{
		Projects:      a.projects,
		Donations:     a.donations,
		Notifications: a.notifications,
		Options:       a.options,
	})

	// 启动定时任务
	manager, err := task.NewManager(
		task.NewProjectStatusJob(a.projects, seconds(cfg.Task.Interval)),
		task.NewPendingExpiryJob(a.donations, cfg.Payment.PendingTTL, cfg.Task.ExpiryBatchSize, seconds(cfg.Task.ExpiryInterval)),
		task.NewAggregateReconcileJob(a.aggregate, a.alerter, seconds(cfg.Task.ReconcileInterval)),
	)
	if err != nil {
		return err
	}
	manager.Start()
	defer manager.Stop()

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed: %v", err)
		return err
	}
	return nil
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}
