// Package command 提供 filter 与 copy 子命令共用的 flag、配置加载和日志初始化。
package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-filtering/internal/config"
)

// AppName 应用名称，同时决定默认配置文件名 (.filtering.yaml)。
const AppName = "filtering"

// Version 构建时通过 -ldflags "-X" 注入。
var Version = "dev"

// Defaults 为默认配置的单一来源。
var Defaults = config.DefaultConfig()

// GlobalFlags 配置与日志 flag，每个子命令各自携带，便于单独构建。
func GlobalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    config.ConfigFlag,
			Aliases: []string{"c"},
			Usage:   "配置文件路径 (默认搜索 ." + AppName + ".yaml)",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Value: Defaults.Log.Level,
			Usage: "日志级别 (debug/info/warn/error)",
		},
	}
}

// FilterFlags 过滤相关 flag，名称与配置 key 一一对应 (filter.multi-line → --filter-multi-line)。
func FilterFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:    "filter-delimiters",
			Aliases: []string{"d"},
			Usage:   "分隔符规格，begin*end 或单个 token，按顺序匹配 (默认 " + strings.Join(Defaults.Filter.Delimiters, " ") + ")",
		},
		&cli.StringFlag{
			Name:  "filter-escape",
			Value: Defaults.Filter.Escape,
			Usage: "转义字符串，空字符串关闭转义",
		},
		&cli.BoolFlag{
			Name:  "filter-preserve-escape",
			Usage: "转义 token 输出时保留转义字符串",
		},
		&cli.BoolFlag{
			Name:    "filter-multi-line",
			Aliases: []string{"m"},
			Usage:   "允许表达式跨行",
		},
		&cli.StringSliceFlag{
			Name:    "filter-files",
			Aliases: []string{"f"},
			Usage:   "过滤属性文件 (properties/yaml/toml/json)，后者覆盖前者",
		},
		&cli.StringMapFlag{
			Name:    "filter-properties",
			Aliases: []string{"D"},
			Usage:   "额外属性 key=value，优先级最高",
		},
		&cli.BoolFlag{
			Name:  "filter-env",
			Value: Defaults.Filter.Env,
			Usage: "以 env.NAME 暴露环境变量",
		},
		&cli.StringSliceFlag{
			Name:  "filter-prefixes",
			Usage: "可省略的表达式前缀 (默认 " + strings.Join(Defaults.Filter.Prefixes, " ") + ")",
		},
		&cli.BoolFlag{
			Name:  "filter-escape-windows-paths",
			Usage: "转义形如 C:\\dir 的值中的反斜杠",
		},
		&cli.BoolFlag{
			Name:  "filter-no-prefix-pattern",
			Usage: "不使用前缀约定调用插值服务",
		},
	}
}

// EncodingFlag 文件字符集 flag，filter 与 copy 共用。
func EncodingFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "copy-encoding",
		Aliases: []string{"e"},
		Value:   Defaults.Copy.Encoding,
		Usage:   "文件字符集 (IANA 名称，如 ISO-8859-1)，默认 UTF-8",
	}
}

// CopyFlags 复制相关 flag。
func CopyFlags() []cli.Flag {
	return []cli.Flag{
		EncodingFlag(),
		&cli.BoolFlag{
			Name:  "copy-overwrite",
			Usage: "总是覆盖目标文件，否则跳过不旧于源文件的目标",
		},
		&cli.IntFlag{
			Name:    "copy-workers",
			Aliases: []string{"j"},
			Value:   Defaults.Copy.Workers,
			Usage:   "并发复制数，0 表示不限制",
		},
		&cli.StringSliceFlag{
			Name:  "copy-non-filtered",
			Usage: "原样复制的扩展名 (默认 " + strings.Join(Defaults.Copy.NonFiltered, " ") + ")",
		},
	}
}

// Setup 加载配置并初始化全局日志。
func Setup(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load(cmd, AppName)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(NewLogger(os.Stderr, cfg.Log.Level))
	slog.Debug("Config loaded", "delimiters", cfg.Filter.Delimiters, "multiLine", cfg.Filter.MultiLine)

	return cfg, nil
}

// NewLogger 创建文本格式 logger。
func NewLogger(w io.Writer, level string) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
}

// ParseLevel 解析日志级别，未知值按 info 处理。
func ParseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "err":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// ExitOnError 打印错误并以非零状态退出，供 main 使用。
func ExitOnError(ctx context.Context, cmd *cli.Command, args []string) {
	if err := cmd.Run(ctx, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
