// Package pipeline turns a price-change export and a stock report into the
// merged CSV: fetch, normalize, deduplicate, filter, join, serialize.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fairyhunter13/price-stock-merger/internal/fetch"
	"github.com/fairyhunter13/price-stock-merger/internal/model"
	"github.com/fairyhunter13/price-stock-merger/internal/obs"
)

// Fetcher downloads a URL's body.
type Fetcher interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// Pipeline runs the merge for one set of options.
type Pipeline struct {
	fetcher Fetcher
	opts    model.Options
}

// Result is the outcome of a successful run.
type Result struct {
	Region model.Region
	Rows   []model.JoinedRow
	CSV    []byte
}

// New creates a Pipeline.
func New(f Fetcher, opts model.Options) *Pipeline {
	return &Pipeline{fetcher: f, opts: opts}
}

// Options returns the variant this pipeline runs.
func (p *Pipeline) Options() model.Options { return p.opts }

// Run fetches both reports one after the other, joins and serializes them.
// Any loader error stops the run before the join and no output is produced.
func (p *Pipeline) Run(ctx context.Context, region model.Region) (*Result, error) {
	start := time.Now()

	prices, err := p.LoadPriceChanges(ctx, region.PriceChangeURL)
	if err != nil {
		return nil, fmt.Errorf("load price changes: %w", err)
	}
	stock, err := p.LoadStockReport(ctx, region.StockReportURL)
	if err != nil {
		return nil, fmt.Errorf("load stock report: %w", err)
	}
	if n := stock.Duplicates(); n > 0 {
		obs.Logger.Warn("stock_report_duplicate_skus", "region", region.Code, "shadowed_rows", n)
	}

	rows, err := Join(prices, stock)
	if err != nil {
		return nil, err
	}
	out, err := MarshalCSV(rows, p.opts)
	if err != nil {
		return nil, fmt.Errorf("serialize: %w", err)
	}

	matched := 0
	for _, r := range rows {
		if r.Stock != nil {
			matched++
		}
	}
	obs.Logger.Info("pipeline_run_complete",
		"region", region.Code,
		"rows", len(rows),
		"matched", matched,
		"stock_rows", len(stock.Rows),
		"latency_ms", float64(time.Since(start).Microseconds())/1000.0,
	)
	return &Result{Region: region, Rows: rows, CSV: out}, nil
}

func (p *Pipeline) fetch(ctx context.Context, src Source, url string) ([]byte, error) {
	data, err := p.fetcher.Get(ctx, url)
	if err == nil {
		return data, nil
	}
	re := &RetrievalError{Source: src, URL: url, Err: err}
	var se *fetch.StatusError
	if errors.As(err, &se) {
		re.StatusCode = se.StatusCode
	}
	return nil, re
}
