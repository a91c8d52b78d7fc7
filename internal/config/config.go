// Package config 提供应用配置管理。
//
// 配置加载优先级 (从低到高)：
//  1. 默认值 - DefaultConfig() 函数中定义
//  2. 配置文件 - --config 指定或按 DefaultPaths 搜索，内容先经 ${VAR} 展开
//  3. 环境变量 - FILTERING_ 前缀
//  4. CLI flags - 仅用户显式指定的 flag
package config

import (
	"github.com/lwmacct/251207-go-pkg-filtering/pkg/filtering"
)

// Config 应用配置。
type Config struct {
	Log    LogConfig    `json:"log" desc:"日志配置"`
	Filter FilterConfig `json:"filter" desc:"过滤配置"`
	Copy   CopyConfig   `json:"copy" desc:"复制配置"`
}

// LogConfig 日志配置。
type LogConfig struct {
	Level string `json:"level" desc:"日志级别 (debug/info/warn/error)"`
}

// FilterConfig 过滤配置。
type FilterConfig struct {
	Delimiters         []string          `json:"delimiters" desc:"分隔符规格，begin*end 或单个 token"`
	Escape             string            `json:"escape" desc:"转义字符串"`
	PreserveEscape     bool              `json:"preserve-escape" desc:"输出时保留转义字符串"`
	MultiLine          bool              `json:"multi-line" desc:"允许表达式跨行"`
	Files              []string          `json:"files" desc:"过滤属性文件 (properties/yaml/toml/json)"`
	Properties         map[string]string `json:"properties" desc:"额外属性，优先级最高"`
	Env                bool              `json:"env" desc:"以 env. 前缀暴露环境变量"`
	Prefixes           []string          `json:"prefixes" desc:"可省略的表达式前缀"`
	EscapeWindowsPaths bool              `json:"escape-windows-paths" desc:"转义 Windows 路径中的反斜杠"`
	NoPrefixPattern    bool              `json:"no-prefix-pattern" desc:"关闭前缀约定"`
}

// CopyConfig 复制配置。
type CopyConfig struct {
	Encoding    string   `json:"encoding" desc:"文件字符集 (IANA 名称)"`
	Overwrite   bool     `json:"overwrite" desc:"总是覆盖目标文件"`
	Workers     int      `json:"workers" desc:"并发复制数，0 表示不限制"`
	NonFiltered []string `json:"non-filtered" desc:"不过滤的扩展名"`
}

// DefaultConfig 返回默认配置。
// 注意：internal/command/command.go 中的 Defaults 变量引用此函数以实现单一配置来源。
func DefaultConfig() Config {
	return Config{
		Log: LogConfig{
			Level: "info",
		},
		Filter: FilterConfig{
			Delimiters: append([]string(nil), filtering.DefaultDelimiters...),
			Escape:     `\`,
			Env:        true,
			Prefixes:   append([]string(nil), filtering.DefaultPrefixes...),
		},
		Copy: CopyConfig{
			Workers:     4,
			NonFiltered: append([]string(nil), filtering.DefaultNonFilteredExtensions...),
		},
	}
}

// WrapperRequest 将过滤配置转换为 [filtering.WrapperRequest]。
func (c FilterConfig) WrapperRequest() filtering.WrapperRequest {
	return filtering.WrapperRequest{
		Properties:         c.Properties,
		Filters:            c.Files,
		Env:                c.Env,
		Prefixes:           c.Prefixes,
		EscapeWindowsPaths: c.EscapeWindowsPaths,
		Delimiters:         c.Delimiters,
		Escape:             c.Escape,
		PreserveEscape:     c.PreserveEscape,
		MultiLine:          c.MultiLine,
		NoPrefixPattern:    c.NoPrefixPattern,
	}
}
