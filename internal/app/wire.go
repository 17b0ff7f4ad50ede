package app

import (
	"net/http"

	"github-projects-api/internal/adapter/analyzer"
	"github-projects-api/internal/adapter/github"
	"github-projects-api/internal/config"
	"github-projects-api/internal/service"

	"github.com/charmbracelet/log"
)

// NewPipeline 按配置组装 数据源 -> 爬虫 -> 增强流程
func NewPipeline(cfg *config.Config, logger *log.Logger) (*service.EnrichmentPipeline, error) {
	fetcher := github.NewFetcher(cfg.GitHub.Token, cfg.GitHub.Account, cfg.HTTPTimeout(), logger)
	if cfg.GitHub.APIBaseURL != "" {
		if err := fetcher.SetBaseURL(cfg.GitHub.APIBaseURL); err != nil {
			return nil, err
		}
	}
	fetcher.SetPerPage(cfg.GitHub.PerPage)
	fetcher.SetRetries(cfg.GitHub.Retries)

	scraper, err := github.NewScraper(&http.Client{Timeout: cfg.HTTPTimeout()}, cfg.GitHub.WebBaseURL, logger)
	if err != nil {
		return nil, err
	}

	pipeline := service.NewEnrichmentPipeline(fetcher, scraper, logger)
	pipeline.SetMaxGoroutines(cfg.Pipeline.Concurrency)
	return pipeline, nil
}

// NewCatalog 组装带缓存的项目目录
func NewCatalog(cfg *config.Config, logger *log.Logger) (*service.ProjectService, error) {
	pipeline, err := NewPipeline(cfg, logger)
	if err != nil {
		return nil, err
	}
	return service.NewProjectService(pipeline, analyzer.NewSimilarityAnalyzer(), logger), nil
}
