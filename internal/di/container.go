// Package di wires the service components with a samber/do container.
package di

import (
	"github.com/samber/do/v2"

	"github.com/fairyhunter13/price-stock-merger/internal/config"
	"github.com/fairyhunter13/price-stock-merger/internal/di/providers"
	"github.com/fairyhunter13/price-stock-merger/internal/export"
)

// NewContainer creates the container with every provider registered.
// Providers are lazy: nothing is built until it is invoked.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)

	// Pipeline
	do.Provide(injector, providers.ProvideFetchClient)
	do.Provide(injector, providers.ProvidePipeline)
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideExportService)

	// Server
	do.Provide(injector, providers.ProvideApp)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// BootstrapExport builds what a one-shot export needs.
func BootstrapExport(injector do.Injector) (*config.Config, *export.Service, error) {
	cfg, err := do.Invoke[*config.Config](injector)
	if err != nil {
		return nil, nil, err
	}
	if _, err := do.Invoke[*providers.LoggerHandle](injector); err != nil {
		return nil, nil, err
	}
	svc, err := do.Invoke[*export.Service](injector)
	if err != nil {
		return nil, nil, err
	}
	return cfg, svc, nil
}

// BootstrapServer builds every service and starts the HTTP server.
func BootstrapServer(injector do.Injector) (*providers.HTTPServerHandle, error) {
	if _, _, err := BootstrapExport(injector); err != nil {
		return nil, err
	}
	return do.Invoke[*providers.HTTPServerHandle](injector)
}
