package app

import (
	"context"
	"time"

	"github-projects-api/internal/common"
	"github-projects-api/internal/port"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"
)

// Scheduler 按 cron 表达式在后台刷新目录
// 刷新期间读请求继续拿到旧快照
type Scheduler struct {
	cron    *cron.Cron
	catalog port.ProjectCatalog
	logger  *log.Logger
}

// NewScheduler expr 为标准 5 段 cron 表达式
func NewScheduler(expr string, catalog port.ProjectCatalog, logger *log.Logger) (*Scheduler, error) {
	s := &Scheduler{
		// 上一次刷新没结束时跳过本次
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		catalog: catalog,
		logger:  logger.WithPrefix("cron"),
	}
	if _, err := s.cron.AddFunc(expr, s.runOnce); err != nil {
		return nil, common.WrapError(common.ErrCodeConfig, "refresh_cron 表达式非法", err)
	}
	return s, nil
}

// Start 在后台启动
func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		s.logger.Info("⏰ 定时刷新已启动", "next", e.Next.Format(time.RFC3339))
	}
}

// Stop 停止调度并等待正在执行的刷新结束，或 ctx 到期
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.logger.Warn("⚠️ 等待定时刷新结束超时")
	}
}

func (s *Scheduler) runOnce() {
	projects := s.catalog.Refresh(context.Background())
	s.logger.Info("🔄 定时刷新完成", "projects", len(projects))
}
