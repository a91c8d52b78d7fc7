package copytree

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/lwmacct/251207-go-pkg-filtering/internal/command"
	"github.com/lwmacct/251207-go-pkg-filtering/pkg/errdefs"
	"github.com/lwmacct/251207-go-pkg-filtering/pkg/filtering"
)

func action(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 2 {
		return fmt.Errorf("%w: copy requires SRC and DST, got %d args", errdefs.ErrInvalidArgument, cmd.NArg())
	}
	src, dst := cmd.Args().Get(0), cmd.Args().Get(1)

	cfg, err := command.Setup(cmd)
	if err != nil {
		return err
	}

	wrappers, err := filtering.DefaultWrappers(cfg.Filter.WrapperRequest())
	if err != nil {
		return err
	}

	reqs, err := filtering.PlanTree(src, dst, filtering.Request{
		Filtering: true,
		Wrappers:  wrappers,
		Encoding:  cfg.Copy.Encoding,
		Overwrite: cfg.Copy.Overwrite,
	}, cfg.Copy.NonFiltered)
	if err != nil {
		return err
	}

	// 中断信号取消尚未完成的复制
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("Copying files", "from", src, "to", dst, "count", len(reqs), "workers", cfg.Copy.Workers)
	if err := filtering.CopyAll(ctx, reqs, cfg.Copy.Workers); err != nil {
		return fmt.Errorf("copy %s: %w", src, err)
	}
	slog.Info("Copy finished", "count", len(reqs))

	return nil
}
