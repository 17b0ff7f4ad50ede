package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github-projects-api/internal/adapter/httpapi"
	"github-projects-api/internal/app"
	"github-projects-api/internal/common"
	"github-projects-api/internal/config"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// 设置信号处理，优雅关闭
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:          "projects-api",
		Short:        "Serve enriched GitHub projects over HTTP",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML 配置文件路径 (可选)")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	root.AddCommand(serve)
	// 不带子命令时默认启动服务
	root.RunE = serve.RunE
	return root
}

// runServe 启动服务，阻塞到 ctx 被取消
func runServe(ctx context.Context, cfg *config.Config) error {
	logger := common.NewLogger(cfg.Log.Level, os.Stderr)

	catalog, err := app.NewCatalog(cfg, logger)
	if err != nil {
		return err
	}

	var scheduler *app.Scheduler
	if cfg.Pipeline.RefreshCron != "" {
		scheduler, err = app.NewScheduler(cfg.Pipeline.RefreshCron, catalog, logger)
		if err != nil {
			return err
		}
		scheduler.Start()
	}

	// 后台预热缓存，第一个请求不用等完整的增强流程
	go func() {
		projects := catalog.GetAll(ctx)
		logger.Info("🔥 缓存预热完成", "projects", len(projects))
	}()

	server := httpapi.NewServer(cfg, catalog, logger)
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("👋 收到停止信号，正在退出...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	if err := server.Stop(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
