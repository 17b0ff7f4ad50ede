package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github-projects-api/internal/adapter/analyzer"
	"github-projects-api/internal/app"
	"github-projects-api/internal/common"
	"github-projects-api/internal/config"
	"github-projects-api/internal/domain"

	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newDebugCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func newDebugCmd() *cobra.Command {
	var (
		configPath string
		asJSON     bool
	)

	cmd := &cobra.Command{
		Use:          "debug",
		Short:        "Run the enrichment pipeline once and print the result",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger := common.NewLogger(cfg.Log.Level, cmd.ErrOrStderr())

			pipeline, err := app.NewPipeline(cfg, logger)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "🔍 调试模式：抓取并增强 %s 的仓库\n", cfg.GitHub.Account)
			start := time.Now()
			projects := analyzer.NewSimilarityAnalyzer().Annotate(pipeline.Run(cmd.Context()))
			fmt.Fprintf(cmd.ErrOrStderr(), "✅ 完成，共 %d 个项目，用时 %s\n", len(projects), time.Since(start).Round(time.Millisecond))

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), projects)
			}
			writeSummary(cmd.OutOrStdout(), projects)
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "TOML 配置文件路径 (可选)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "输出完整 JSON")
	return cmd
}

func writeJSON(w io.Writer, projects []domain.Project) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(projects)
}

func writeSummary(w io.Writer, projects []domain.Project) {
	if len(projects) == 0 {
		fmt.Fprintln(w, "📭 没有获取到任何项目")
		return
	}

	for i, p := range projects {
		fmt.Fprintf(w, "#%d %s [%s] 更新于 %s\n", i+1, p.Name, p.Language, p.UpdatedAt)
		if len(p.Tags) > 0 {
			fmt.Fprintf(w, "    标签: %s\n", strings.Join(p.Tags, ", "))
		}
		readme := "有"
		if p.Readme == domain.ReadmeUnavailable {
			readme = "无"
		}
		fmt.Fprintf(w, "    README: %s\n", readme)
		for _, e := range p.SimilarTo {
			fmt.Fprintf(w, "    相似: %s (%s)\n", e.Name, e.Reason)
		}
	}
}
