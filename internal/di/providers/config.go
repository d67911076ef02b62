// Package providers contains dependency injection providers.
package providers

import (
	"log/slog"

	"github.com/samber/do/v2"

	"github.com/fairyhunter13/price-stock-merger/internal/config"
	"github.com/fairyhunter13/price-stock-merger/internal/obs"
)

// ProvideConfig provides the application configuration.
func ProvideConfig(i do.Injector) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoggerHandle marks the global logger as initialised.
type LoggerHandle struct {
	*slog.Logger
}

// ProvideLogger initialises the global logger from the configuration.
func ProvideLogger(i do.Injector) (*LoggerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	obs.InitLogger(cfg.LogLevel, cfg.LogFormat)
	obs.Logger.Info("service_starting",
		"log_level", cfg.LogLevel,
		"regions", cfg.RegionCodes(),
		"trim_identifiers", cfg.TrimIdentifiers,
		"include_description", cfg.IncludeDescription,
	)
	return &LoggerHandle{Logger: obs.Logger}, nil
}
