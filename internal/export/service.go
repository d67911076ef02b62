// Package export runs the merge pipeline for a region and keeps its output.
package export

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"

	"github.com/fairyhunter13/price-stock-merger/internal/config"
	"github.com/fairyhunter13/price-stock-merger/internal/model"
	"github.com/fairyhunter13/price-stock-merger/internal/obs"
	"github.com/fairyhunter13/price-stock-merger/internal/pipeline"
	"github.com/fairyhunter13/price-stock-merger/internal/store"
)

// ErrUnknownRegion is returned for a region code that is not configured.
var ErrUnknownRegion = errors.New("unknown region")

// artifactIDPrefix prefixes every artifact ID.
const artifactIDPrefix = "art"

var vars = expvar.NewMap("price_stock_merger")

// Runner runs the pipeline for one region.
type Runner interface {
	Run(ctx context.Context, region model.Region) (*pipeline.Result, error)
}

// Stats is a snapshot of the service counters.
type Stats struct {
	Runs              int64   `json:"runs"`
	RunsSucceeded     int64   `json:"runs_succeeded"`
	RetrievalFailures int64   `json:"retrieval_failures"`
	ParseFailures     int64   `json:"parse_failures"`
	OtherFailures     int64   `json:"other_failures"`
	RowsWritten       int64   `json:"rows_written"`
	Artifacts         int     `json:"artifacts"`
	UptimeSec         float64 `json:"uptime_sec"`
}

// Service turns pipeline runs into stored artifacts.
type Service struct {
	cfg     config.Config
	runner  Runner
	store   *store.Store
	seq     store.Sequencer
	started time.Time

	runs, succeeded, retrievalFailures, parseFailures, otherFailures, rows atomic.Int64
}

// New creates a Service.
func New(cfg config.Config, r Runner, st *store.Store) *Service {
	return &Service{cfg: cfg, runner: r, store: st, started: time.Now()}
}

// Regions returns the configured regions in display order.
func (s *Service) Regions() []model.Region {
	codes := s.cfg.RegionCodes()
	out := make([]model.Region, 0, len(codes))
	for _, c := range codes {
		out = append(out, s.cfg.Regions[c])
	}
	return out
}

// Region resolves a region code.
func (s *Service) Region(code string) (model.Region, error) {
	r, ok := s.cfg.Region(code)
	if !ok {
		return model.Region{}, fmt.Errorf("%w: %q", ErrUnknownRegion, code)
	}
	return r, nil
}

// Process runs the pipeline for the region and stores the result as its latest artifact.
// Nothing is stored when the run fails.
func (s *Service) Process(ctx context.Context, code string) (model.Artifact, error) {
	region, err := s.Region(code)
	if err != nil {
		return model.Artifact{}, err
	}
	seq := s.seq.Next()
	s.runs.Add(1)
	vars.Add("runs", 1)

	res, err := s.runner.Run(ctx, region)
	if err != nil {
		s.countFailure(err)
		obs.Logger.Warn("export_failed", "region", region.Code, "sequence", seq, "error", err)
		return model.Artifact{}, err
	}

	id, err := gonanoid.New()
	if err != nil {
		s.countFailure(err)
		return model.Artifact{}, fmt.Errorf("generate artifact id: %w", err)
	}
	a := model.Artifact{
		ID:          artifactIDPrefix + "-" + id,
		Region:      region.Code,
		FileName:    region.OutputName,
		CSV:         res.CSV,
		Rows:        len(res.Rows),
		Sequence:    seq,
		GeneratedAt: time.Now().UTC(),
	}
	if !s.store.Put(a) {
		obs.Logger.Info("export_superseded", "region", region.Code, "sequence", seq)
	}
	s.succeeded.Add(1)
	s.rows.Add(int64(a.Rows))
	vars.Add("runs_succeeded", 1)
	vars.Add("rows_written", int64(a.Rows))
	obs.Logger.Info("export_complete",
		"region", a.Region,
		"artifact_id", a.ID,
		"sequence", a.Sequence,
		"rows", a.Rows,
		"bytes", len(a.CSV),
	)
	return a, nil
}

// Latest returns the most recent stored artifact for the region.
func (s *Service) Latest(code string) (model.Artifact, bool) {
	region, err := s.Region(code)
	if err != nil {
		return model.Artifact{}, false
	}
	return s.store.Get(region.Code)
}

// WriteFile processes the region and writes its artifact into dir under the
// region's output name, returning the file path.
func (s *Service) WriteFile(ctx context.Context, code, dir string) (string, error) {
	a, err := s.Process(ctx, code)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(dir, a.FileName)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, a.CSV, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("rename %s: %w", tmp, err)
	}
	obs.Logger.Info("export_written", "region", a.Region, "path", path, "rows", a.Rows)
	return path, nil
}

// Stats returns the current counters.
func (s *Service) Stats() Stats {
	return Stats{
		Runs:              s.runs.Load(),
		RunsSucceeded:     s.succeeded.Load(),
		RetrievalFailures: s.retrievalFailures.Load(),
		ParseFailures:     s.parseFailures.Load(),
		OtherFailures:     s.otherFailures.Load(),
		RowsWritten:       s.rows.Load(),
		Artifacts:         len(s.store.Regions()),
		UptimeSec:         time.Since(s.started).Seconds(),
	}
}

func (s *Service) countFailure(err error) {
	switch {
	case errors.Is(err, pipeline.ErrRetrieval):
		s.retrievalFailures.Add(1)
		vars.Add("retrieval_failures", 1)
	case errors.Is(err, pipeline.ErrParse):
		s.parseFailures.Add(1)
		vars.Add("parse_failures", 1)
	default:
		s.otherFailures.Add(1)
		vars.Add("other_failures", 1)
	}
}
