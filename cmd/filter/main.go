package main

import (
	"context"
	"os"

	"github.com/lwmacct/251207-go-pkg-filtering/internal/command"
	app "github.com/lwmacct/251207-go-pkg-filtering/internal/command/filter"
)

// 单独构建的 filter 命令，等价于 filtering filter。
func main() {
	command.ExitOnError(context.Background(), app.Command, os.Args)
}
