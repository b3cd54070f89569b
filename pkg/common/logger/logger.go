package logger

import (
	"strings"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	hertzzap "github.com/hertz-contrib/logger/zap"
	"go.uber.org/zap"
	"gopkg.in/natefinch/lumberjack.v2"

	"admin-gateway/pkg/common/config"
)

// Init 替换 hlog 默认实现为 zap，配置了文件时按大小滚动
func Init(cfg config.LogConfig) {
	l := hertzzap.NewLogger(hertzzap.WithZapOptions(zap.AddCaller()))

	if cfg.File != "" {
		l.SetOutput(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAgeDays,
			Compress:   true,
		})
	}

	hlog.SetLogger(l)
	hlog.SetLevel(ParseLevel(cfg.Level))
}

func ParseLevel(level string) hlog.Level {
	switch strings.ToLower(level) {
	case "trace":
		return hlog.LevelTrace
	case "debug":
		return hlog.LevelDebug
	case "notice":
		return hlog.LevelNotice
	case "warn", "warning":
		return hlog.LevelWarn
	case "error":
		return hlog.LevelError
	case "fatal":
		return hlog.LevelFatal
	default:
		return hlog.LevelInfo
	}
}
