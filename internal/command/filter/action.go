package filter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-filtering/internal/command"
	"github.com/lwmacct/251207-go-pkg-filtering/pkg/filtering"
)

func action(ctx context.Context, cmd *cli.Command) error {
	// 加载配置：默认值 → 配置文件 → 环境变量 → CLI flags
	cfg, err := command.Setup(cmd)
	if err != nil {
		return err
	}

	wrappers, err := filtering.DefaultWrappers(cfg.Filter.WrapperRequest())
	if err != nil {
		return err
	}

	out := cmd.Root().Writer
	inputs := cmd.Args().Slice()
	if len(inputs) == 0 {
		inputs = []string{"-"}
	}

	for _, name := range inputs {
		if err := filterOne(ctx, out, cmd.Root().Reader, name, cfg.Copy.Encoding, wrappers); err != nil {
			return err
		}
	}

	return nil
}

func filterOne(ctx context.Context, out io.Writer, stdin io.Reader, name, encoding string, wrappers []filtering.Wrapper) error {
	if name == "-" {
		slog.Debug("Filtering stdin")
		if err := filtering.Stream(ctx, out, stdin, encoding, wrappers...); err != nil {
			return fmt.Errorf("filter stdin: %w", err)
		}

		return nil
	}

	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer func() { _ = f.Close() }()

	slog.Debug("Filtering file", "path", name)
	if err := filtering.Stream(ctx, out, f, encoding, wrappers...); err != nil {
		return fmt.Errorf("filter %s: %w", name, err)
	}

	return nil
}
