//go:build wireinject
// +build wireinject

// Package main 为 sweeper 任务 CLI 提供 Wire 依赖注入定义。
package main

import (
	"context"

	"github.com/bionicotaku/wedding-media-service/internal/infrastructure/configloader"
	"github.com/bionicotaku/wedding-media-service/internal/infrastructure/database"
	"github.com/bionicotaku/wedding-media-service/internal/infrastructure/logger"
	"github.com/bionicotaku/wedding-media-service/internal/infrastructure/youtube"
	"github.com/bionicotaku/wedding-media-service/internal/repositories"
	"github.com/bionicotaku/wedding-media-service/internal/services"
	sweepertask "github.com/bionicotaku/wedding-media-service/internal/tasks/sweeper"

	"github.com/google/wire"
)

//go:generate go run github.com/google/wire/cmd/wire

func wireSweeperTask(context.Context, configloader.Params) (*sweeperTaskApp, func(), error) {
	panic(wire.Build(
		configloader.ProviderSet,
		logger.ProviderSet,
		database.ProviderSet,
		youtube.ProviderSet,
		repositories.ProviderSet,
		services.NewUploaderService,
		services.NewSweeperService,
		wire.Bind(new(services.VideoHost), new(*youtube.Client)),
		wire.Bind(new(services.MediaStore), new(*repositories.MediaRepository)),
		wire.Bind(new(services.MediaUploader), new(*services.UploaderService)),
		sweepertask.ProviderSet,
		newSweeperTaskApp,
	))
}
