// Package main boots the admin HTTP entrypoint for the wedding media service.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/bionicotaku/wedding-media-service/internal/infrastructure/configloader"

	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport/http"

	_ "go.uber.org/automaxprocs"
)

// go build -ldflags "-X main.Version=x.y.z"
var (
	// Name is the name of the compiled software.
	Name string
	// Version is the version of the compiled software.
	Version string

	id, _ = os.Hostname()
)

func newApp(logger log.Logger, hs *http.Server) *kratos.App {
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(
			hs,
		),
	)
}

func main() {
	confFlag := flag.String("conf", "", "config path or directory, eg: -conf configs/config.yaml")
	flag.Parse()

	if Name == "" {
		Name = "wedding-media-service"
	}
	if Version == "" {
		Version = "dev"
	}

	app, cleanup, err := wireApp(context.Background(), configloader.Params{
		ConfPath: *confFlag,
		Name:     Name,
		Version:  Version,
	})
	if err != nil {
		panic(err)
	}
	defer cleanup()

	// start and wait for stop signal
	if err := app.Run(); err != nil {
		panic(err)
	}
}
