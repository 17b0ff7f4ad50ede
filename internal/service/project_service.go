package service

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github-projects-api/internal/common"
	"github-projects-api/internal/domain"
	"github-projects-api/internal/port"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
)

const refreshKey = "projects"

var _ port.ProjectCatalog = (*ProjectService)(nil)

const (
	StateEmpty     = "empty"
	StatePopulated = "populated"
)

// ProjectService 缓存增强后的项目集合，实现了 port.ProjectCatalog 接口
// 进程内只应该有一个实例，由 main 创建并注入到 HTTP 层
type ProjectService struct {
	enricher port.Enricher
	engine   port.SimilarityEngine
	logger   *log.Logger

	// nil 或空切片都视为 Empty；快照写入后不再修改
	snapshot  atomic.Pointer[[]domain.Project]
	group     singleflight.Group
	refreshes atomic.Int64
}

// NewProjectService 创建项目服务
func NewProjectService(enricher port.Enricher, engine port.SimilarityEngine, logger *log.Logger) *ProjectService {
	return &ProjectService{
		enricher: enricher,
		engine:   engine,
		logger:   logger.WithPrefix("catalog"),
	}
}

// GetAll 有缓存时直接返回同一份快照，否则同步计算
// 空结果不会被缓存，下一次调用会重新拉取
func (s *ProjectService) GetAll(ctx context.Context) []domain.Project {
	if projects, ok := s.cached(); ok {
		return projects
	}
	return s.refresh(ctx, false)
}

// Refresh 强制重新计算；结果为空时保留旧快照
func (s *ProjectService) Refresh(ctx context.Context) []domain.Project {
	return s.refresh(ctx, true)
}

// Invalidate 清空缓存，下一次 GetAll 会重新计算
func (s *ProjectService) Invalidate() {
	s.snapshot.Store(nil)
	s.logger.Info("🗑️ 缓存已清空")
}

// GetByName 名称大小写不敏感的精确匹配
func (s *ProjectService) GetByName(ctx context.Context, name string) (*domain.Project, error) {
	if name == "" {
		return nil, common.NotFound("project", name)
	}
	for _, p := range s.GetAll(ctx) {
		if strings.EqualFold(p.Name, name) {
			found := p
			return &found, nil
		}
	}
	return nil, common.NotFound("project", name)
}

// GetByURL URL 等于或包含 fragment 的第一个项目
func (s *ProjectService) GetByURL(ctx context.Context, fragment string) (*domain.Project, error) {
	if fragment == "" {
		return nil, common.NotFound("project url", fragment)
	}
	for _, p := range s.GetAll(ctx) {
		if p.URL == fragment || strings.Contains(p.URL, fragment) {
			found := p
			return &found, nil
		}
	}
	return nil, common.NotFound("project url", fragment)
}

// Stats 返回缓存状态
func (s *ProjectService) Stats() port.CatalogStats {
	stats := port.CatalogStats{State: StateEmpty, Refreshes: s.refreshes.Load()}
	if projects, ok := s.cached(); ok {
		stats.State = StatePopulated
		stats.Projects = len(projects)
	}
	return stats
}

func (s *ProjectService) cached() ([]domain.Project, bool) {
	snap := s.snapshot.Load()
	if snap == nil || len(*snap) == 0 {
		return nil, false
	}
	return *snap, true
}

// refresh 同一时间只有一次计算在进行，并发调用者共享结果
func (s *ProjectService) refresh(ctx context.Context, force bool) []domain.Project {
	// 计算由所有等待者共享，不能因为第一个请求断开就中止
	shared := context.WithoutCancel(ctx)

	v, _, _ := s.group.Do(refreshKey, func() (interface{}, error) {
		if !force {
			if projects, ok := s.cached(); ok {
				return projects, nil
			}
		}

		refreshID := uuid.NewString()
		logger := s.logger.With("refresh", refreshID)
		logger.Info("🚀 开始刷新项目集合", "force", force)
		start := time.Now()

		projects := s.engine.Annotate(s.enricher.Run(shared))
		s.refreshes.Add(1)

		if len(projects) == 0 {
			if prior, ok := s.cached(); ok {
				logger.Warn("⚠️ 刷新结果为空，继续使用旧数据", "projects", len(prior))
				return prior, nil
			}
			logger.Warn("⚠️ 刷新结果为空，下次请求会重试")
			return []domain.Project{}, nil
		}

		s.snapshot.Store(&projects)
		logger.Info("🎉 刷新完成", "projects", len(projects), "elapsed", time.Since(start).Round(time.Millisecond))
		return projects, nil
	})

	return v.([]domain.Project)
}
