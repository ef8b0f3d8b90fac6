// Package main 提供每日重试任务的独立进程入口，支持 -once 立即执行一轮。
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
	sweepertask "github.com/bionicotaku/wedding-media-service/internal/tasks/sweeper"

	"github.com/go-kratos/kratos/v2/log"

	_ "go.uber.org/automaxprocs"
)

var (
	// Name is the name of the compiled software.
	Name string
	// Version is the version of the compiled software.
	Version string
)

type sweeperTaskApp struct {
	Task   *sweepertask.Task
	Logger log.Logger
}

func newSweeperTaskApp(logger log.Logger, task *sweepertask.Task) (*sweeperTaskApp, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger not initialized")
	}
	return &sweeperTaskApp{
		Task:   task,
		Logger: logger,
	}, nil
}

func main() {
	ctx := context.Background()

	confFlag := flag.String("conf", "", "config path or directory, eg: -conf configs/config.yaml")
	onceFlag := flag.Bool("once", false, "run a single sweep immediately and exit")
	flag.Parse()

	if Name == "" {
		Name = "wedding-media-sweeper"
	}
	if Version == "" {
		Version = "dev"
	}

	app, cleanup, err := wireSweeperTask(ctx, configloader.Params{
		ConfPath: *confFlag,
		Name:     Name,
		Version:  Version,
	})
	if err != nil {
		panic(err)
	}
	defer cleanup()

	helper := log.NewHelper(app.Logger)

	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if *onceFlag {
		summary, err := app.Task.RunOnce(runCtx)
		if err != nil {
			helper.Errorf("sweep failed: %v", err)
			os.Exit(1)
		}
		helper.Infof("sweep done processed=%d successful=%d failed=%d",
			summary.Processed, summary.Successful, summary.Failed)
		return
	}

	helper.Info("starting daily retry sweeper")

	if err := app.Task.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		helper.Errorf("sweeper stopped unexpectedly: %v", err)
		os.Exit(1)
	}

	helper.Info("sweeper stopped")
}
