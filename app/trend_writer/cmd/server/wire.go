//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final binary.

package main

import (
	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/google/wire"

	"github.com/iWorld-y/trend_writer/app/trend_writer/internal/conf"
	"github.com/iWorld-y/trend_writer/app/trend_writer/internal/server"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/config"
)

// initApp init kratos application.
func initApp(*conf.Bootstrap, *config.Config, log.Logger) (*kratos.App, func(), error) {
	panic(wire.Build(
		server.ProviderSet,
		newApp,
	))
}
