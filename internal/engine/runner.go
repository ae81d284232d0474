/*
PURPOSE:
  High-level runner that turns configuration into simulation runs and
  persists the results.

REQUIREMENTS:
  User-specified:
  - Price a single option from config.
  - Log results to CSV/JSON.

  Implementation-discovered:
  - Compare both generators under one seed against the analytic price.
  - Convergence traces are kept in the object store.
  - A zero seed is replaced by a clock seed that is logged and recorded,
    so every run stays reproducible after the fact.

ARCHITECTURE INTEGRATION:
  - Called by: internal/cli, internal/server (Execute only)
  - Uses: internal/engine, internal/output, internal/metrics, internal/store

ERROR HANDLING:
  - Simulation errors are returned; a failed Record is still written.
  - Output/metrics errors are logged and do not discard the result.

USAGE:
  rec, err := engine.Price(cfg, metrics.New())
*/

package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Higerald/OptionPricing/internal/analytic"
	"github.com/Higerald/OptionPricing/internal/config"
	"github.com/Higerald/OptionPricing/internal/gaussian"
	"github.com/Higerald/OptionPricing/internal/metrics"
	"github.com/Higerald/OptionPricing/internal/model"
	"github.com/Higerald/OptionPricing/internal/output"
	"github.com/Higerald/OptionPricing/internal/path"
	"github.com/Higerald/OptionPricing/internal/payoff"
	"github.com/Higerald/OptionPricing/internal/store"
)

// Job is one fully specified simulation request.
type Job struct {
	OptionType string
	Strike     float64
	Parameters model.Parameters
	Generator  string
	Sampler    string
	Seed       uint64
	Paths      int
	TraceEvery int  // 0 disables checkpoints
	Analytic   bool // attach the Black-Scholes price to direct runs
}

// JobFromConfig builds the job described by cfg.
func JobFromConfig(cfg *config.Config) Job {
	return Job{
		OptionType: cfg.Option.Type,
		Strike:     cfg.Option.Strike,
		Parameters: cfg.Parameters(),
		Generator:  cfg.Simulation.Generator,
		Sampler:    cfg.Simulation.Sampler,
		Seed:       cfg.Simulation.Seed,
		Paths:      cfg.Simulation.Paths,
		Analytic:   cfg.Simulation.CompareWith,
	}
}

// ResolveSeed returns seed, or a clock-derived seed when seed is 0.
func ResolveSeed(seed uint64) uint64 {
	if seed != 0 {
		return seed
	}
	return uint64(time.Now().UnixNano())
}

// Execute runs job on a fresh sampler stream. The returned Record is filled
// in even on failure (with Error set) so callers can persist it.
func Execute(job Job) (model.Record, []model.Checkpoint, error) {
	job.Seed = ResolveSeed(job.Seed)
	start := time.Now()
	rec := model.Record{
		ID:         uuid.New().String(),
		Timestamp:  start,
		OptionType: job.OptionType,
		Strike:     job.Strike,
		Parameters: job.Parameters,
		Generator:  job.Generator,
		Sampler:    job.Sampler,
		Seed:       job.Seed,
		Paths:      job.Paths,
	}

	fail := func(err error) (model.Record, []model.Checkpoint, error) {
		rec.Duration = time.Since(start)
		rec.Error = err.Error()
		return rec, nil, err
	}

	kind, err := payoff.ParseKind(job.OptionType)
	if err != nil {
		return fail(err)
	}
	po, err := payoff.New(kind, job.Strike)
	if err != nil {
		return fail(err)
	}
	rec.OptionType = kind.String()

	gen, err := path.Parse(job.Generator)
	if err != nil {
		return fail(err)
	}
	rec.Generator = gen.Name()

	method, err := gaussian.ParseMethod(job.Sampler)
	if err != nil {
		return fail(err)
	}
	rec.Sampler = string(method)
	sampler, err := gaussian.NewSeeded(method, job.Seed)
	if err != nil {
		return fail(err)
	}

	sim := NewSimulator(gen, sampler)
	var res model.Result
	var cps []model.Checkpoint
	if job.TraceEvery > 0 {
		res, cps, err = sim.Trace(po, job.Parameters, job.Paths, job.TraceEvery)
	} else {
		res, err = sim.Run(po, job.Parameters, job.Paths)
	}
	if err != nil {
		return fail(err)
	}

	rec.Duration = time.Since(start)
	rec.Price = res.Price
	rec.StandardError = res.StandardError
	rec.Paths = res.Paths

	// The closed form only describes the terminal distribution.
	if job.Analytic && gen.Name() == path.NameDirect {
		if bs, err := analytic.BlackScholes(po, job.Parameters); err == nil {
			rec.AnalyticPrice = &bs
		}
	}
	return rec, cps, nil
}

// Session owns the result writers and metrics of one CLI invocation.
type Session struct {
	cfg     *config.Config
	csv     *output.CSVWriter
	json    *output.JSONWriter
	metrics *metrics.Metrics
}

// OpenSession prepares the output directory and writers named in cfg.
func OpenSession(cfg *config.Config, m *metrics.Metrics) (*Session, error) {
	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory %s: %w", cfg.Output.Dir, err)
	}
	s := &Session{cfg: cfg, metrics: m}

	if cfg.Output.CSVFile != "" {
		csvPath := filepath.Join(cfg.Output.Dir, cfg.Output.CSVFile)
		w, err := output.NewCSVWriter(csvPath)
		if err != nil {
			return nil, fmt.Errorf("failed to init CSV writer at %s: %w", csvPath, err)
		}
		s.csv = w
	}
	if cfg.Output.JSONFile != "" {
		jsonPath := filepath.Join(cfg.Output.Dir, cfg.Output.JSONFile)
		w, err := output.NewJSONWriter(jsonPath)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to init JSON writer at %s: %w", jsonPath, err)
		}
		s.json = w
	}
	return s, nil
}

// Record persists rec to every configured sink.
func (s *Session) Record(rec model.Record) {
	if s.csv != nil {
		if err := s.csv.Write(rec); err != nil {
			output.Logger.Error("Failed to write result to CSV", "error", err)
		}
	}
	if s.json != nil {
		if err := s.json.Write(rec); err != nil {
			output.Logger.Error("Failed to write result to JSON", "error", err)
		}
	}
	if s.metrics != nil {
		s.metrics.Observe(rec)
	}
}

// Close flushes metrics and closes the writers.
func (s *Session) Close() error {
	if s.metrics != nil && s.cfg.Output.MetricsFile != "" {
		file := filepath.Join(s.cfg.Output.Dir, s.cfg.Output.MetricsFile)
		if err := s.metrics.WriteTextfile(file); err != nil {
			output.Logger.Error("Failed to write metrics textfile", "path", file, "error", err)
		}
	}
	var firstErr error
	if s.csv != nil {
		firstErr = s.csv.Close()
	}
	if s.json != nil {
		if err := s.json.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (s *Session) run(job Job) (model.Record, []model.Checkpoint, error) {
	output.Logger.Info("Starting simulation",
		"option", job.OptionType,
		"strike", job.Strike,
		"generator", job.Generator,
		"sampler", job.Sampler,
		"paths", job.Paths,
	)
	rec, cps, err := Execute(job)
	s.Record(rec)
	if err != nil {
		output.Logger.Error("Simulation failed", "id", rec.ID, "seed", rec.Seed, "error", err)
		return rec, nil, err
	}
	output.Logger.Info("Simulation complete",
		"id", rec.ID,
		"seed", rec.Seed,
		"price", output.Money(rec.Price),
		"stderr", output.Money(rec.StandardError),
		"duration", rec.Duration,
	)
	return rec, cps, nil
}

// Price runs the configured job once.
func Price(cfg *config.Config, m *metrics.Metrics) (model.Record, error) {
	if err := cfg.Validate(); err != nil {
		return model.Record{}, err
	}
	s, err := OpenSession(cfg, m)
	if err != nil {
		return model.Record{}, err
	}
	defer s.Close()

	rec, _, err := s.run(JobFromConfig(cfg))
	return rec, err
}

// Compare prices the configured option with every generator under the same
// seed, so differences come from the generator alone.
func Compare(cfg *config.Config, m *metrics.Metrics) ([]model.Record, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s, err := OpenSession(cfg, m)
	if err != nil {
		return nil, err
	}
	defer s.Close()

	job := JobFromConfig(cfg)
	job.Seed = ResolveSeed(job.Seed)

	var records []model.Record
	for _, name := range []string{path.NameDirect, path.NameMonthly} {
		job.Generator = name
		if gen, _ := path.Parse(name); gen.Validate(job.Parameters) != nil {
			output.Logger.Warn("Skipping generator", "generator", name, "expiry", job.Parameters.Expiry)
			continue
		}
		rec, _, err := s.run(job)
		if err != nil {
			return records, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Trace runs the configured job with checkpoints and saves the convergence
// series to the object store. It returns the manifest hash.
func Trace(cfg *config.Config, m *metrics.Metrics) (model.Record, []model.Checkpoint, string, error) {
	if err := cfg.Validate(); err != nil {
		return model.Record{}, nil, "", err
	}
	if cfg.Simulation.TraceEvery < 2 {
		return model.Record{}, nil, "", fmt.Errorf("%w: simulation.trace_every must be at least 2", model.ErrInvalidArgument)
	}
	s, err := OpenSession(cfg, m)
	if err != nil {
		return model.Record{}, nil, "", err
	}
	defer s.Close()

	job := JobFromConfig(cfg)
	job.TraceEvery = cfg.Simulation.TraceEvery
	rec, cps, err := s.run(job)
	if err != nil {
		return rec, nil, "", err
	}

	st := store.New(cfg.Output.StoreDir)
	if err := st.Init(); err != nil {
		return rec, cps, "", err
	}
	hash, err := st.SaveTrace(rec, job.TraceEvery, cps)
	if err != nil {
		return rec, cps, "", fmt.Errorf("failed to save trace: %w", err)
	}
	output.Logger.Info("Trace stored", "hash", hash, "checkpoints", len(cps))
	return rec, cps, hash, nil
}
