package port

import (
	"context"

	"github-projects-api/internal/domain"
)

// RepositorySource (数据源): 拉取固定账号的仓库列表
// 失败时返回空列表而不是错误，fork 仓库已被过滤
type RepositorySource interface {
	FetchAll(ctx context.Context) []domain.RawRepository
}

// MetadataScraper (爬虫): 从仓库网页上抓取 API 拿不到的信息
// 两个方法互相独立，都不会返回错误
type MetadataScraper interface {
	// FetchTags 抓取 topic 标签，失败时返回空切片
	FetchTags(ctx context.Context, repoURL string) []string

	// FetchReadme 抓取 README 原文，失败时返回 domain.ReadmeUnavailable
	FetchReadme(ctx context.Context, repoURL string) string
}

// Enricher (加工): 拉取、排序并增强所有仓库
type Enricher interface {
	Run(ctx context.Context) []domain.Project
}

// SimilarityEngine (关联分析): 计算项目之间的相似关系
type SimilarityEngine interface {
	Annotate(projects []domain.Project) []domain.Project
}

// ProjectCatalog (目录): 对外提供缓存后的项目集合
// 这里对应 HTTP 层的查询需求
type ProjectCatalog interface {
	GetAll(ctx context.Context) []domain.Project

	// GetByName 名称大小写不敏感的精确匹配，找不到返回 common.ErrNotFound
	GetByName(ctx context.Context, name string) (*domain.Project, error)

	// GetByURL URL 等于或包含 fragment 即匹配
	GetByURL(ctx context.Context, fragment string) (*domain.Project, error)

	// Refresh 强制重新计算
	Refresh(ctx context.Context) []domain.Project

	Invalidate()

	Stats() CatalogStats
}

// CatalogStats 缓存状态，用于健康检查
type CatalogStats struct {
	State     string `json:"state"`
	Projects  int    `json:"projects"`
	Refreshes int64  `json:"refreshes"`
}
