package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github-projects-api/internal/common"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
)

// Config 服务运行所需的全部配置
type Config struct {
	GitHub   GitHubConfig   `toml:"github"`
	Server   ServerConfig   `toml:"server"`
	Pipeline PipelineConfig `toml:"pipeline"`
	Log      LogConfig      `toml:"log"`
}

// GitHubConfig 数据源相关配置
type GitHubConfig struct {
	Account    string `toml:"account"`
	Token      string `toml:"token"`
	APIBaseURL string `toml:"api_base_url"` // 为空时使用 go-github 默认地址
	WebBaseURL string `toml:"web_base_url"`
	PerPage    int    `toml:"per_page"`
	Retries    int    `toml:"retries"`
}

// ServerConfig HTTP 服务配置
type ServerConfig struct {
	Host           string   `toml:"host"`
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// PipelineConfig 增强流程配置
type PipelineConfig struct {
	Concurrency        int    `toml:"concurrency"`
	HTTPTimeoutSeconds int    `toml:"http_timeout_seconds"`
	RefreshCron        string `toml:"refresh_cron"` // 为空表示不定时刷新
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `toml:"level"`
}

// Default 默认配置
func Default() *Config {
	return &Config{
		GitHub: GitHubConfig{
			Account:    "euaaron",
			WebBaseURL: "https://github.com",
			PerPage:    100,
			Retries:    0,
		},
		Server: ServerConfig{
			Host: "http://localhost",
			Port: 3000,
			AllowedOrigins: []string{
				"http://localhost:3000",
				"http://localhost:3001",
				"https://aaroncarneiro.com",
				"https://*.aaroncarneiro.com",
			},
		},
		Pipeline: PipelineConfig{
			Concurrency:        8,
			HTTPTimeoutSeconds: 20,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load 按 默认值 -> TOML 文件 -> 环境变量 的顺序加载配置
// path 为空时跳过 TOML 文件；.env 文件不存在不算错误
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, common.WrapError(common.ErrCodeConfig, "读取 .env 失败", err)
	}

	cfg := Default()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, common.WrapError(common.ErrCodeConfig, fmt.Sprintf("解析配置文件 %s 失败", path), err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv 用环境变量覆盖配置，lookup 便于测试注入
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return common.WrapError(common.ErrCodeConfig, fmt.Sprintf("%s 不是整数", key), err)
		}
		*dst = n
		return nil
	}

	str("GITHUB_ACCOUNT", &c.GitHub.Account)
	str("GITHUB_TOKEN", &c.GitHub.Token)
	str("GITHUB_API_URL", &c.GitHub.APIBaseURL)
	str("GITHUB_WEB_URL", &c.GitHub.WebBaseURL)
	str("API_HOST", &c.Server.Host)
	str("REFRESH_CRON", &c.Pipeline.RefreshCron)
	str("LOG_LEVEL", &c.Log.Level)

	if v, ok := lookup("ALLOWED_ORIGINS"); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.AllowedOrigins = origins
	}

	// PORT 优先于 API_PORT，和部署平台的约定一致
	for _, key := range []string{"API_PORT", "PORT"} {
		if err := num(key, &c.Server.Port); err != nil {
			return err
		}
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"GITHUB_PER_PAGE", &c.GitHub.PerPage},
		{"GITHUB_RETRIES", &c.GitHub.Retries},
		{"ENRICH_CONCURRENCY", &c.Pipeline.Concurrency},
		{"HTTP_TIMEOUT_SECONDS", &c.Pipeline.HTTPTimeoutSeconds},
	}
	for _, it := range ints {
		if err := num(it.key, it.dst); err != nil {
			return err
		}
	}
	return nil
}

// Validate 检查配置是否合法
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.GitHub.Account) == "":
		return common.NewError(common.ErrCodeConfig, "github account 不能为空")
	case c.GitHub.PerPage <= 0 || c.GitHub.PerPage > 100:
		return common.NewError(common.ErrCodeConfig, "github per_page 必须在 1-100 之间")
	case c.GitHub.Retries < 0:
		return common.NewError(common.ErrCodeConfig, "github retries 不能为负数")
	case c.Server.Port <= 0 || c.Server.Port > 65535:
		return common.NewError(common.ErrCodeConfig, fmt.Sprintf("非法端口: %d", c.Server.Port))
	case c.Pipeline.Concurrency <= 0:
		return common.NewError(common.ErrCodeConfig, "pipeline concurrency 必须大于 0")
	case c.Pipeline.HTTPTimeoutSeconds < 0:
		return common.NewError(common.ErrCodeConfig, "http timeout 不能为负数")
	}

	if c.Pipeline.RefreshCron != "" {
		if _, err := cron.ParseStandard(c.Pipeline.RefreshCron); err != nil {
			return common.WrapError(common.ErrCodeConfig, "refresh_cron 表达式非法", err)
		}
	}
	return nil
}

// HTTPTimeout 出站请求超时，0 表示不限制
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.Pipeline.HTTPTimeoutSeconds) * time.Second
}

// Addr 监听地址
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}
