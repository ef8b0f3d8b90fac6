// Package main 提供媒体创建事件 Runner 的独立进程入口。
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bionicotaku/wedding-media-service/internal/infrastructure/configloader"
	ingesttask "github.com/bionicotaku/wedding-media-service/internal/tasks/ingest"

	"github.com/go-kratos/kratos/v2/log"

	_ "go.uber.org/automaxprocs"
)

var (
	// Name is the name of the compiled software.
	Name string
	// Version is the version of the compiled software.
	Version string
)

type ingestTaskApp struct {
	Runner *ingesttask.Runner
	Logger log.Logger
}

func newIngestTaskApp(logger log.Logger, runner *ingesttask.Runner) (*ingestTaskApp, error) {
	if runner == nil {
		return &ingestTaskApp{Logger: logger}, nil
	}
	if logger == nil {
		return nil, fmt.Errorf("logger not initialized")
	}
	return &ingestTaskApp{
		Runner: runner,
		Logger: logger,
	}, nil
}

func main() {
	ctx := context.Background()

	confFlag := flag.String("conf", "", "config path or directory, eg: -conf configs/config.yaml")
	flag.Parse()

	if Name == "" {
		Name = "wedding-media-ingest"
	}
	if Version == "" {
		Version = "dev"
	}

	app, cleanup, err := wireIngestTask(ctx, configloader.Params{
		ConfPath: *confFlag,
		Name:     Name,
		Version:  Version,
	})
	if err != nil {
		panic(err)
	}
	defer cleanup()

	logger := app.Logger
	if logger == nil {
		logger = log.NewStdLogger(os.Stdout)
	}
	helper := log.NewHelper(logger)

	if app.Runner == nil {
		helper.Warn("ingest runner disabled (missing messaging configuration)")
		return
	}

	helper.Info("starting media created ingest runner")

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := app.Runner.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		helper.Errorf("ingest runner stopped unexpectedly: %v", err)
		os.Exit(1)
	}

	helper.Info("ingest runner stopped")
}
