package main

import (
	"github.com/go-kratos/kratos/v2"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/go-kratos/kratos/v2/transport"
	"github.com/go-kratos/kratos/v2/transport/http"

	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/resolver"
)

func newApp(logger log.Logger, hs *http.Server, w *resolver.Warmer) *kratos.App {
	servers := []transport.Server{hs}
	if w != nil {
		servers = append(servers, w)
	}
	return kratos.New(
		kratos.ID(id),
		kratos.Name(Name),
		kratos.Version(Version),
		kratos.Metadata(map[string]string{}),
		kratos.Logger(logger),
		kratos.Server(servers...),
	)
}
