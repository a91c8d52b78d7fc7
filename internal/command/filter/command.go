// Package filter 提供 filter 子命令：过滤文件或标准输入并写到标准输出。
package filter

import (
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-filtering/internal/command"
)

// Command filter 命令
var Command = New()

// New 创建 filter 命令。
func New() *cli.Command {
	return &cli.Command{
		Name:      "filter",
		Usage:     "展开文件或标准输入中的 ${name} 表达式并写到标准输出",
		ArgsUsage: "[FILE...]",
		Description: `未给出 FILE 或 FILE 为 "-" 时读取标准输入。
属性查找顺序：--filter-properties → --filter-files (后者覆盖前者) → env.NAME 环境变量。`,
		Flags: slices.Concat(
			command.GlobalFlags(),
			command.FilterFlags(),
			[]cli.Flag{command.EncodingFlag()},
		),
		Action: action,
	}
}
