//go:build wireinject
// +build wireinject

// Package main 为 ingest 任务 CLI 提供 Wire 依赖注入定义。
package main

import (
	"context"

	"github.com/bionicotaku/wedding-media-service/internal/infrastructure/configloader"
	"github.com/bionicotaku/wedding-media-service/internal/infrastructure/database"
	"github.com/bionicotaku/wedding-media-service/internal/infrastructure/logger"
	"github.com/bionicotaku/wedding-media-service/internal/infrastructure/pubsub"
	"github.com/bionicotaku/wedding-media-service/internal/infrastructure/youtube"
	"github.com/bionicotaku/wedding-media-service/internal/repositories"
	"github.com/bionicotaku/wedding-media-service/internal/services"
	ingesttask "github.com/bionicotaku/wedding-media-service/internal/tasks/ingest"

	"github.com/google/wire"
)

//go:generate go run github.com/google/wire/cmd/wire

func wireIngestTask(context.Context, configloader.Params) (*ingestTaskApp, func(), error) {
	panic(wire.Build(
		configloader.ProviderSet,
		logger.ProviderSet,
		database.ProviderSet,
		pubsub.ProviderSet,
		youtube.ProviderSet,
		repositories.ProviderSet,
		services.NewUploaderService,
		services.NewIngestService,
		wire.Bind(new(services.VideoHost), new(*youtube.Client)),
		wire.Bind(new(services.MediaStore), new(*repositories.MediaRepository)),
		wire.Bind(new(services.MediaUploader), new(*services.UploaderService)),
		ingesttask.ProviderSet,
		newIngestTaskApp,
	))
}
