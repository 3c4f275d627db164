package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/riskledger/riskledger/internal/aggregate"
	"github.com/riskledger/riskledger/internal/anomaly"
	"github.com/riskledger/riskledger/internal/config"
	"github.com/riskledger/riskledger/internal/ingest"
	"github.com/riskledger/riskledger/internal/model"
	"github.com/riskledger/riskledger/internal/report"
	"github.com/riskledger/riskledger/internal/risk"
)

// EmptyInputError is returned when no row survives cleaning.
type EmptyInputError struct {
	Rejected int64
}

func (e *EmptyInputError) Error() string {
	return fmt.Sprintf("no valid rows in input (%d rejected)", e.Rejected)
}

// Request describes one ingestion. Zero values fall back to the engine's
// configuration.
type Request struct {
	Path      string // validated local file
	Source    string // display name; defaults to the base of Path
	Profile   string
	TwoSided  *bool
	BatchSize int
	Workers   int
}

// Engine runs ingestion requests. Engines hold no per-request state and can
// serve concurrent requests.
type Engine struct {
	cfg      *config.Config
	profiles *ingest.Registry
	logger   *zap.Logger
}

// NewEngine creates an Engine using the built-in schema profiles.
func NewEngine(cfg *config.Config, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{cfg: cfg, profiles: ingest.DefaultRegistry(), logger: logger}
}

// Profiles returns the schema profiles the engine accepts.
func (e *Engine) Profiles() *ingest.Registry { return e.profiles }

// run holds everything scoped to a single request.
type run struct {
	req      Request
	norm     *ingest.Normalizer
	composer *risk.Composer
	scorer   *anomaly.Scorer
	alerts   config.AlertsConfig
	logger   *zap.Logger
}

// partial is the result of processing one batch.
type partial struct {
	agg      *aggregate.Aggregates
	alerts   *risk.Selector
	rejected []ingest.ParseError
	degraded bool
}

// Run ingests req.Path and returns the finished report. On any fatal error,
// including cancellation, no report is returned.
func (e *Engine) Run(ctx context.Context, req Request) (*report.Report, error) {
	req = e.withDefaults(req)

	profile := e.profiles.Get(req.Profile)
	if profile == nil {
		return nil, fmt.Errorf("unknown schema profile %q", req.Profile)
	}
	opts := profile.Options(req.TwoSided)

	f, err := os.Open(req.Path)
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}
	defer f.Close()

	hash := sha256.New()
	src := io.TeeReader(f, hash)

	reader, err := ingest.NewReader(src, req.BatchSize)
	if err != nil {
		return nil, err
	}
	cols, err := ingest.Resolve(reader.Header(), opts)
	if err != nil {
		return nil, err
	}

	r := &run{
		req:      req,
		norm:     ingest.NewNormalizer(cols),
		composer: risk.NewComposer(e.cfg.Scoring),
		alerts:   e.cfg.Alerts,
		logger:   e.logger.With(zap.String("source", req.Source)),
	}
	if e.cfg.Anomaly.Enabled {
		r.scorer = anomaly.NewScorer(anomaly.Config{
			Trees:      e.cfg.Anomaly.Trees,
			SampleSize: e.cfg.Anomaly.SampleSize,
			Seed:       e.cfg.Anomaly.Seed,
		})
	}

	r.logger.Info("ingestion started",
		zap.String("profile", profile.Name),
		zap.Bool("two_sided", opts.TwoSided),
		zap.Int("batch_size", req.BatchSize),
		zap.Int("workers", req.Workers),
	)

	meta := report.Meta{
		Source:         req.Source,
		Profile:        profile.Name,
		TwoSided:       opts.TwoSided,
		BatchSize:      req.BatchSize,
		AlertThreshold: e.cfg.Alerts.Threshold,
	}
	agg := aggregate.New()
	alerts := risk.NewSelector(e.cfg.Alerts.Threshold, e.cfg.Alerts.TopK)

	for {
		wave, err := readWave(ctx, reader, req.Workers)
		if err != nil {
			return nil, err
		}
		if len(wave) == 0 {
			break
		}

		results, err := r.processWave(ctx, wave)
		if err != nil {
			return nil, err
		}

		// Batch order keeps rejection samples and tie-breaks identical to a
		// sequential run.
		for _, p := range results {
			meta.Batches++
			meta.RowsRejected += int64(len(p.rejected))
			for _, pe := range p.rejected {
				if len(meta.Rejections) < e.cfg.Report.MaxRejections {
					meta.Rejections = append(meta.Rejections, pe)
				}
			}
			if p.degraded {
				meta.DegradedBatches++
			}
			agg.Merge(p.agg)
			alerts.Merge(p.alerts)
		}
	}

	if _, err := io.Copy(io.Discard, src); err != nil {
		return nil, fmt.Errorf("hashing ledger: %w", err)
	}
	meta.SHA256 = hex.EncodeToString(hash.Sum(nil))

	meta.RowsAccepted = agg.Count()
	if meta.RowsAccepted == 0 {
		return nil, &EmptyInputError{Rejected: meta.RowsRejected}
	}

	rep := report.Assemble(meta, agg.Finalize(e.cfg.Report.TopBanks), alerts.Alerts())
	r.logger.Info("ingestion finished",
		zap.Int("batches", meta.Batches),
		zap.Int64("accepted", meta.RowsAccepted),
		zap.Int64("rejected", meta.RowsRejected),
		zap.Int("degraded_batches", meta.DegradedBatches),
		zap.Int("alerts", len(rep.Alerts)),
	)
	return rep, nil
}

func (e *Engine) withDefaults(req Request) Request {
	if req.Source == "" {
		req.Source = filepath.Base(req.Path)
	}
	if req.Profile == "" {
		req.Profile = e.cfg.Ingest.Profile
	}
	if req.TwoSided == nil {
		req.TwoSided = e.cfg.Ingest.TwoSided
	}
	if req.BatchSize <= 0 {
		req.BatchSize = e.cfg.Ingest.BatchSize
	}
	if req.Workers <= 0 {
		req.Workers = e.cfg.Ingest.Workers
	}
	if req.Workers <= 0 {
		req.Workers = 1
	}
	return req
}

// readWave reads up to n batches.
func readWave(ctx context.Context, reader *ingest.Reader, n int) ([]*ingest.Batch, error) {
	var wave []*ingest.Batch
	for len(wave) < n {
		b, err := reader.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		wave = append(wave, b)
	}
	return wave, nil
}

// processWave processes batches concurrently and returns their partials in
// input order.
func (r *run) processWave(ctx context.Context, wave []*ingest.Batch) ([]*partial, error) {
	results := make([]*partial, len(wave))
	if len(wave) == 1 {
		p, err := r.processBatch(ctx, wave[0])
		if err != nil {
			return nil, err
		}
		results[0] = p
		return results, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.req.Workers)
	for i, b := range wave {
		i, b := i, b
		g.Go(func() error {
			p, err := r.processBatch(gctx, b)
			results[i] = p
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *run) processBatch(ctx context.Context, b *ingest.Batch) (*partial, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	txns, rejected := r.norm.NormalizeBatch(b)
	p := &partial{
		agg:      aggregate.New(),
		alerts:   risk.NewSelector(r.alerts.Threshold, r.alerts.TopK),
		rejected: rejected,
	}
	if len(txns) == 0 {
		return p, nil
	}

	flags := make([]bool, len(txns))
	if r.scorer != nil {
		scored, err := r.scorer.Score(txns)
		var mfe *anomaly.ModelFitError
		switch {
		case errors.As(err, &mfe):
			p.degraded = true
			r.logger.Warn("anomaly model degraded", zap.Int("batch", b.Index), zap.Error(err))
		case err != nil:
			return nil, fmt.Errorf("scoring anomalies in batch %d: %w", b.Index, err)
		default:
			flags = scored
		}
	}

	baselines := risk.ComputeBaselines(txns)
	out := make([]model.Transaction, len(txns))
	for i, t := range txns {
		scored, breakdown := r.composer.Score(t, flags[i], baselines)
		out[i] = scored
		p.alerts.Offer(model.NewAlert(scored, breakdown))
	}
	p.agg.Update(out)
	return p, nil
}
