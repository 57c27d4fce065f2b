package server

import (
	"github.com/google/wire"

	"github.com/iWorld-y/trend_writer/app/trend_writer/internal/service"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/engine"
	"github.com/iWorld-y/trend_writer/app/trend_writer/pkg/resolver"
)

// ProviderSet 是写作服务的依赖注入 Provider 集合
var ProviderSet = wire.NewSet(
	// Server providers
	NewHTTPServer,
	NewWarmer,

	// Core providers
	NewMetrics,
	NewResolver,
	NewKnowledge,
	NewEngine,

	// Service providers
	service.NewWriterService,
	wire.Bind(new(service.TrendSource), new(*resolver.Resolver)),
	wire.Bind(new(service.Generator), new(*engine.Engine)),
)
