package github

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github-projects-api/internal/adapter/filter"
	"github-projects-api/internal/common"
	"github-projects-api/internal/domain"

	"github.com/charmbracelet/log"
	"github.com/google/go-github/v53/github"
	"golang.org/x/oauth2"
)

// Fetcher 实现了 port.RepositorySource 接口
type Fetcher struct {
	client  *github.Client
	account string
	perPage int
	retries int
	logger  *log.Logger
}

// NewFetcher 初始化 GitHub 客户端
// token 为空时匿名访问，限制 60 次/小时
func NewFetcher(token, account string, timeout time.Duration, logger *log.Logger) *Fetcher {
	var httpClient *http.Client

	if token == "" {
		httpClient = &http.Client{Timeout: timeout}
	} else {
		ctx := context.Background()
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		httpClient = oauth2.NewClient(ctx, ts)
		httpClient.Timeout = timeout
	}

	return &Fetcher{
		client:  github.NewClient(httpClient),
		account: account,
		perPage: 100,
		logger:  logger.WithPrefix("github"),
	}
}

// SetBaseURL 指向 GitHub Enterprise 或测试服务器
func (f *Fetcher) SetBaseURL(raw string) error {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return common.WrapError(common.ErrCodeInvalidInput, "非法的 GitHub API 地址", err)
	}
	f.client.BaseURL = u
	return nil
}

// SetPerPage 单页数量，只请求一页
func (f *Fetcher) SetPerPage(n int) {
	if n > 0 {
		f.perPage = n
	}
}

// SetRetries 列表请求的重试次数，默认 0
func (f *Fetcher) SetRetries(n int) {
	if n >= 0 {
		f.retries = n
	}
}

// FetchAll 拉取账号下的全部原创仓库
// 任何错误都只记录日志并返回空列表，调用方把空列表当作"暂时不可用"
func (f *Fetcher) FetchAll(ctx context.Context) []domain.RawRepository {
	opts := &github.RepositoryListOptions{
		ListOptions: github.ListOptions{PerPage: f.perPage},
	}

	var items []*github.Repository
	err := common.Do(ctx, func() error {
		var apiErr error
		items, _, apiErr = f.client.Repositories.List(ctx, f.account, opts)
		if isClientError(apiErr) {
			return common.Permanent(apiErr)
		}
		return apiErr
	},
		common.WithMaxRetries(f.retries),
		common.WithInitialDelay(time.Second),
	)
	if err != nil {
		f.logger.Warn("⚠️ 获取仓库列表失败，返回空列表",
			"account", f.account,
			"err", common.WrapError(common.ErrCodeGitHubAPI, "list repositories", err))
		return []domain.RawRepository{}
	}

	repos := make([]domain.RawRepository, 0, len(items))
	for _, item := range items {
		repos = append(repos, toRawRepository(item))
	}

	filtered := filter.RemoveForks(repos)
	f.logger.Debugf("📥 获取到 %d 个仓库，过滤 fork 后剩余 %d 个", len(repos), len(filtered))
	return filtered
}

// isClientError 4xx 错误 (403 限流除外) 重试也不会成功
func isClientError(err error) bool {
	var ge *github.ErrorResponse
	if !errors.As(err, &ge) || ge.Response == nil {
		return false
	}
	code := ge.Response.StatusCode
	return code >= 400 && code < 500 && code != http.StatusForbidden && code != http.StatusTooManyRequests
}

// toRawRepository 把 GitHub 的数据结构转换为 Domain 实体
func toRawRepository(item *github.Repository) domain.RawRepository {
	return domain.RawRepository{
		Owner:       item.GetOwner().GetLogin(),
		Name:        item.GetName(),
		FullName:    item.GetFullName(),
		URL:         item.GetHTMLURL(),
		Description: item.GetDescription(),
		Language:    item.GetLanguage(),
		Homepage:    item.GetHomepage(),
		Fork:        item.GetFork(),
		CreatedAt:   item.GetCreatedAt().Time,
		UpdatedAt:   item.GetUpdatedAt().Time,
	}
}
