package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github-projects-api/internal/common"
	"github-projects-api/internal/domain"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
)

const (
	// topic 标签在不同版本的 GitHub 页面上有两种写法
	tagSelector = `a[data-octo-click='topic_click'], a.topic-tag`

	// README 页面上的 "Raw" 按钮
	rawLinkSelector = `a#raw-url`

	readmePath = "/blob/main/README.md"

	maxReadmeBytes = 2 << 20
)

// Scraper 实现了 port.MetadataScraper 接口
// 解析的是渲染后的 HTML，页面结构变了就只能拿到空结果
type Scraper struct {
	client  *http.Client
	webBase *url.URL
	logger  *log.Logger
}

// NewScraper 创建爬虫，webBaseURL 用来把 README 的相对链接补全为绝对地址
func NewScraper(client *http.Client, webBaseURL string, logger *log.Logger) (*Scraper, error) {
	base, err := url.Parse(webBaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, common.NewError(common.ErrCodeInvalidInput, fmt.Sprintf("非法的 GitHub 网页地址: %q", webBaseURL))
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Scraper{
		client:  client,
		webBase: base,
		logger:  logger.WithPrefix("scraper"),
	}, nil
}

// FetchTags 抓取仓库页面上的 topic 标签，去重并保留首次出现顺序
func (s *Scraper) FetchTags(ctx context.Context, repoURL string) (tags []string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("⚠️ 解析标签时 panic", "url", repoURL, "panic", r)
			tags = []string{}
		}
	}()

	doc, err := s.getDocument(ctx, repoURL)
	if err != nil {
		s.logger.Warn("⚠️ 抓取标签失败", "url", repoURL, "err", err)
		return []string{}
	}

	var found []string
	doc.Find(tagSelector).Each(func(_ int, sel *goquery.Selection) {
		tag := strings.TrimSpace(strings.ReplaceAll(sel.Text(), "\n", ""))
		found = append(found, tag)
	})
	return domain.DedupTags(found)
}

// FetchReadme 抓取 README 原文，任何一步失败都返回 domain.ReadmeUnavailable
func (s *Scraper) FetchReadme(ctx context.Context, repoURL string) (readme string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Warn("⚠️ 解析 README 时 panic", "url", repoURL, "panic", r)
			readme = domain.ReadmeUnavailable
		}
	}()

	text, err := s.fetchReadme(ctx, repoURL)
	if err != nil {
		s.logger.Debug("README 不可用", "url", repoURL, "err", err)
		return domain.ReadmeUnavailable
	}
	return text
}

func (s *Scraper) fetchReadme(ctx context.Context, repoURL string) (string, error) {
	doc, err := s.getDocument(ctx, strings.TrimRight(repoURL, "/")+readmePath)
	if err != nil {
		return "", err
	}

	link := doc.Find(rawLinkSelector).First()
	if link.Length() == 0 {
		return "", common.NewError(common.ErrCodeScrape, "页面上没有 raw 链接")
	}

	href, ok := link.Attr("data-permalink-href")
	if !ok || href == "" {
		href, ok = link.Attr("href")
	}
	if !ok || href == "" {
		return "", common.NewError(common.ErrCodeScrape, "raw 链接没有地址")
	}

	rawURL, err := s.webBase.Parse(href)
	if err != nil {
		return "", common.WrapError(common.ErrCodeScrape, "无法解析 raw 链接", err)
	}

	body, err := s.get(ctx, rawURL.String())
	if err != nil {
		return "", err
	}
	defer body.Close()

	data, err := io.ReadAll(io.LimitReader(body, maxReadmeBytes))
	if err != nil {
		return "", common.WrapError(common.ErrCodeScrape, "读取 README 失败", err)
	}
	return string(data), nil
}

func (s *Scraper) getDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, err := s.get(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeScrape, "解析 HTML 失败", err)
	}
	return doc, nil
}

// get 只接受 2xx 响应，调用方负责关闭 body
func (s *Scraper) get(ctx context.Context, target string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeScrape, "构造请求失败", err)
	}
	req.Header.Set("Accept", "text/html,text/plain;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, common.WrapError(common.ErrCodeScrape, "请求失败", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		resp.Body.Close()
		return nil, common.NewError(common.ErrCodeScrape, fmt.Sprintf("GET %s 返回状态码 %d", target, resp.StatusCode))
	}
	return resp.Body, nil
}
