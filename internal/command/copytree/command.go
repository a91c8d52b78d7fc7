// Package copytree 提供 copy 子命令：复制文件或目录树，并对文本文件做过滤。
package copytree

import (
	"slices"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-filtering/internal/command"
)

// Command copy 命令
var Command = New()

// New 创建 copy 命令。
func New() *cli.Command {
	return &cli.Command{
		Name:      "copy",
		Usage:     "复制文件或目录树，复制时展开 ${name} 表达式",
		ArgsUsage: "SRC DST",
		Flags: slices.Concat(
			command.GlobalFlags(),
			command.FilterFlags(),
			command.CopyFlags(),
		),
		Action: action,
	}
}
