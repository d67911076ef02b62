package providers

import (
	"github.com/samber/do/v2"

	"github.com/fairyhunter13/price-stock-merger/internal/config"
	"github.com/fairyhunter13/price-stock-merger/internal/export"
	"github.com/fairyhunter13/price-stock-merger/internal/fetch"
	"github.com/fairyhunter13/price-stock-merger/internal/model"
	"github.com/fairyhunter13/price-stock-merger/internal/pipeline"
	"github.com/fairyhunter13/price-stock-merger/internal/store"
)

// ProvideFetchClient provides the rate-limited report downloader.
func ProvideFetchClient(i do.Injector) (*fetch.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	return fetch.New(cfg.FetchTimeout, cfg.FetchRPS, cfg.FetchBurst), nil
}

// ProvidePipeline provides the merge pipeline for the configured variant.
func ProvidePipeline(i do.Injector) (*pipeline.Pipeline, error) {
	cfg := do.MustInvoke[*config.Config](i)
	client := do.MustInvoke[*fetch.Client](i)
	opts := model.Options{
		TrimIdentifiers:    cfg.TrimIdentifiers,
		IncludeDescription: cfg.IncludeDescription,
	}
	return pipeline.New(client, opts), nil
}

// ProvideStore provides the in-memory artifact store.
func ProvideStore(i do.Injector) (*store.Store, error) {
	return store.New(), nil
}

// ProvideExportService provides the export service.
func ProvideExportService(i do.Injector) (*export.Service, error) {
	cfg := do.MustInvoke[*config.Config](i)
	p := do.MustInvoke[*pipeline.Pipeline](i)
	st := do.MustInvoke[*store.Store](i)
	return export.New(*cfg, p, st), nil
}
