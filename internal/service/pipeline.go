package service

import (
	"context"
	"sync"
	"time"

	"github-projects-api/internal/adapter/filter"
	"github-projects-api/internal/domain"
	"github-projects-api/internal/port"

	"github.com/charmbracelet/log"
)

var _ port.Enricher = (*EnrichmentPipeline)(nil)

// EnrichmentPipeline 实现了 port.Enricher 接口
// 拉取仓库 -> 按更新时间排序 -> 抓标签并归一化 -> 抓 README
type EnrichmentPipeline struct {
	source        port.RepositorySource
	scraper       port.MetadataScraper
	maxGoroutines int // 每个阶段的最大并发数
	logger        *log.Logger
}

// NewEnrichmentPipeline 创建增强流程
func NewEnrichmentPipeline(source port.RepositorySource, scraper port.MetadataScraper, logger *log.Logger) *EnrichmentPipeline {
	return &EnrichmentPipeline{
		source:        source,
		scraper:       scraper,
		maxGoroutines: 8,
		logger:        logger.WithPrefix("pipeline"),
	}
}

// SetMaxGoroutines 设置最大并发数
func (p *EnrichmentPipeline) SetMaxGoroutines(max int) {
	if max > 0 {
		p.maxGoroutines = max
	}
}

// Run 执行一次完整的增强流程，输出顺序就是按更新时间倒序的顺序
// 单个仓库抓取失败只会让它的标签为空、README 为 "none"，不会丢掉这个仓库
func (p *EnrichmentPipeline) Run(ctx context.Context) []domain.Project {
	start := time.Now()

	raws := p.source.FetchAll(ctx)
	if len(raws) == 0 {
		p.logger.Warn("📭 没有获取到任何仓库")
		return []domain.Project{}
	}

	ordered := filter.OrderByLastUpdate(raws)

	// NewProject 负责语言和日期的归一化，标签和 README 先填占位值
	projects := make([]domain.Project, len(ordered))
	for i, raw := range ordered {
		projects[i] = domain.NewProject(raw)
	}

	p.forEach(ctx, "tags", len(projects), func(ctx context.Context, i int) {
		projects[i].Tags = domain.DedupTags(p.scraper.FetchTags(ctx, projects[i].URL))
	})

	p.forEach(ctx, "readme", len(projects), func(ctx context.Context, i int) {
		projects[i].Readme = p.scraper.FetchReadme(ctx, projects[i].URL)
	})

	p.logger.Infof("✅ 已增强 %d 个项目 (%s)", len(projects), time.Since(start).Round(time.Millisecond))
	return projects
}

// forEach 用固定数量的 worker 处理 [0, n)，每个任务只写自己下标的数据
func (p *EnrichmentPipeline) forEach(ctx context.Context, stage string, n int, fn func(ctx context.Context, i int)) {
	jobs := make(chan int, n)
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for w := 0; w < min(p.maxGoroutines, n); w++ {
		wg.Add(1)
		go p.stageWorker(ctx, stage, jobs, &wg, fn)
	}
	wg.Wait()
}

// stageWorker 工作协程；ctx 取消后剩余任务直接跳过，保留占位值
func (p *EnrichmentPipeline) stageWorker(
	ctx context.Context,
	stage string,
	jobs <-chan int,
	wg *sync.WaitGroup,
	fn func(ctx context.Context, i int),
) {
	defer wg.Done()

	for i := range jobs {
		if ctx.Err() != nil {
			continue
		}
		p.runJob(ctx, stage, i, fn)
	}
}

func (p *EnrichmentPipeline) runJob(ctx context.Context, stage string, i int, fn func(ctx context.Context, i int)) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("❌ 增强任务 panic，保留占位值", "stage", stage, "index", i, "panic", r)
		}
	}()
	fn(ctx, i)
}
