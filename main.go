package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-filtering/internal/command"
	"github.com/lwmacct/251207-go-pkg-filtering/internal/command/copytree"
	"github.com/lwmacct/251207-go-pkg-filtering/internal/command/filter"
)

func main() {
	app := &cli.Command{
		Name:    command.AppName,
		Usage:   "带 ${name} 表达式展开的文本过滤与文件复制工具",
		Version: command.Version,
		Commands: []*cli.Command{
			filter.Command,
			copytree.Command,
		},
	}

	command.ExitOnError(context.Background(), app, os.Args)
}
