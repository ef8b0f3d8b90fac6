//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package main

import (
	"context"

	"github.com/bionicotaku/wedding-media-service/internal/controllers"
	"github.com/bionicotaku/wedding-media-service/internal/infrastructure/configloader"
	"github.com/bionicotaku/wedding-media-service/internal/infrastructure/database"
	"github.com/bionicotaku/wedding-media-service/internal/infrastructure/logger"
	"github.com/bionicotaku/wedding-media-service/internal/repositories"
	"github.com/bionicotaku/wedding-media-service/internal/server"
	"github.com/bionicotaku/wedding-media-service/internal/services"

	"github.com/go-kratos/kratos/v2"
	"github.com/google/wire"
)

//go:generate go run github.com/google/wire/cmd/wire

// wireApp init kratos application.
func wireApp(context.Context, configloader.Params) (*kratos.App, func(), error) {
	panic(wire.Build(
		configloader.ProviderSet,
		logger.ProviderSet,
		database.ProviderSet,
		repositories.ProviderSet,
		services.NewSummaryService,
		wire.Bind(new(services.MediaStore), new(*repositories.MediaRepository)),
		controllers.ProviderSet,
		server.ProviderSet,
		newApp,
	))
}
