package domain

import (
	"strings"
	"time"
)

// OriginGitHub 目前唯一的数据来源
const OriginGitHub = "github"

// ReadmeUnavailable README 抓取失败时的占位值
const ReadmeUnavailable = "none"

// DateLayout 对外展示的日期格式 (dd/mm/yyyy)，不随 locale 变化
const DateLayout = "02/01/2006"

// legacyLanguage 需要改写的旧语言标签
const (
	legacyLanguage  = "css"
	currentLanguage = "css3"
)

// RawRepository 代表 GitHub API 返回的原始仓库记录
type RawRepository struct {
	Owner       string
	Name        string
	FullName    string // 例如 "euaaron/portfolio"
	URL         string // html_url
	Description string
	Language    string
	Homepage    string
	Fork        bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SimilarityEdge 指向另一个项目的相似关系，Reason 是共享的标签或语言
type SimilarityEdge struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
	URL    string `json:"url"`
}

// Project 是经过增强 (标签、README、归一化字段) 的项目
type Project struct {
	Origin      string           `json:"origin"`
	Owner       string           `json:"owner"`
	Name        string           `json:"name"`
	FullName    string           `json:"fullName"`
	Description string           `json:"description"`
	URL         string           `json:"url"`
	Homepage    string           `json:"homepage,omitempty"`
	Language    string           `json:"language"`
	CreatedAt   string           `json:"createdAt"`
	UpdatedAt   string           `json:"updatedAt"`
	Readme      string           `json:"readme"`
	Tags        []string         `json:"tags"`
	SimilarTo   []SimilarityEdge `json:"similarTo"`
}

// NewProject 把原始仓库转换成项目，标签和 README 由调用方后续填充
func NewProject(raw RawRepository) Project {
	return Project{
		Origin:      OriginGitHub,
		Owner:       raw.Owner,
		Name:        raw.Name,
		FullName:    raw.FullName,
		Description: raw.Description,
		URL:         raw.URL,
		Homepage:    raw.Homepage,
		Language:    NormalizeLanguage(raw.Language),
		CreatedAt:   FormatDate(raw.CreatedAt),
		UpdatedAt:   FormatDate(raw.UpdatedAt),
		Readme:      ReadmeUnavailable,
		Tags:        []string{},
		SimilarTo:   []SimilarityEdge{},
	}
}

// NormalizeLanguage 把旧的 "css" 标签改写成 "css3"，其余原样返回
func NormalizeLanguage(lang string) string {
	if strings.EqualFold(lang, legacyLanguage) {
		return currentLanguage
	}
	return lang
}

// FormatDate 把时间戳转成统一的展示格式，零值返回空串
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(DateLayout)
}

// DedupTags 去重并保留首次出现的顺序，空白标签会被丢弃
func DedupTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// HasTag 判断项目是否带有指定标签
func (p *Project) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
