package common

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// NewLogger 创建带时间戳的日志器，level 无法解析时退回 info
func NewLogger(level string, w io.Writer) *log.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05",
		Level:           lvl,
	})
}

// DiscardLogger 测试用，丢弃所有输出
func DiscardLogger() *log.Logger {
	return log.New(io.Discard)
}
