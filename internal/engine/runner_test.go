package engine

import (
	"bufio"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Higerald/OptionPricing/internal/config"
	"github.com/Higerald/OptionPricing/internal/metrics"
	"github.com/Higerald/OptionPricing/internal/model"
	"github.com/Higerald/OptionPricing/internal/path"
	"github.com/Higerald/OptionPricing/internal/store"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	dir := t.TempDir()
	cfg.Output.Dir = dir
	cfg.Output.MetricsFile = "option_pricer.prom"
	cfg.Output.StoreDir = filepath.Join(dir, "store")
	cfg.Simulation.Paths = 20000
	cfg.Simulation.Seed = 11
	cfg.Simulation.TraceEvery = 5000
	return cfg
}

func countLines(t *testing.T, file string) int {
	t.Helper()
	f, err := os.Open(file)
	if err != nil {
		t.Fatalf("open %s: %v", file, err)
	}
	defer f.Close()
	n := 0
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		n++
	}
	return n
}

func TestExecuteFillsRecord(t *testing.T) {
	job := JobFromConfig(testConfig(t))
	rec, cps, err := Execute(job)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if cps != nil {
		t.Errorf("checkpoints returned without TraceEvery")
	}
	if rec.ID == "" || rec.Seed != 11 || rec.Paths != 20000 {
		t.Errorf("record = %+v", rec)
	}
	if rec.Generator != path.NameDirect || rec.Sampler != "polar" || rec.OptionType != "call" {
		t.Errorf("normalised names = %q %q %q", rec.Generator, rec.Sampler, rec.OptionType)
	}
	if rec.AnalyticPrice == nil {
		t.Fatalf("direct run without analytic price")
	}
	if d := rec.Price - *rec.AnalyticPrice; d*d > 16*rec.StandardError*rec.StandardError {
		t.Errorf("price %v too far from analytic %v (se %v)", rec.Price, *rec.AnalyticPrice, rec.StandardError)
	}
}

func TestExecuteReproducible(t *testing.T) {
	job := JobFromConfig(testConfig(t))
	a, _, err := Execute(job)
	if err != nil {
		t.Fatal(err)
	}
	b, _, err := Execute(job)
	if err != nil {
		t.Fatal(err)
	}
	if a.Price != b.Price || a.StandardError != b.StandardError {
		t.Errorf("same seed gave %v/%v and %v/%v", a.Price, a.StandardError, b.Price, b.StandardError)
	}
	if a.ID == b.ID {
		t.Errorf("records share id %s", a.ID)
	}
}

func TestExecuteClockSeed(t *testing.T) {
	job := JobFromConfig(testConfig(t))
	job.Seed = 0
	rec, _, err := Execute(job)
	if err != nil {
		t.Fatal(err)
	}
	if rec.Seed == 0 {
		t.Errorf("clock seed not recorded")
	}
}

func TestExecuteFailureRecord(t *testing.T) {
	job := JobFromConfig(testConfig(t))
	job.Paths = 1
	rec, _, err := Execute(job)
	if !errors.Is(err, model.ErrInvalidArgument) {
		t.Fatalf("error = %v, want ErrInvalidArgument", err)
	}
	if rec.Error == "" || rec.ID == "" {
		t.Errorf("failure record = %+v", rec)
	}

	job = JobFromConfig(testConfig(t))
	job.OptionType = "straddle"
	if _, _, err := Execute(job); !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("bad option type: error = %v", err)
	}
}

func TestPriceWritesOutputs(t *testing.T) {
	cfg := testConfig(t)
	m := metrics.New()

	for i := 0; i < 2; i++ {
		if _, err := Price(cfg, m); err != nil {
			t.Fatalf("Price: %v", err)
		}
	}

	// header + two rows
	if n := countLines(t, filepath.Join(cfg.Output.Dir, cfg.Output.CSVFile)); n != 3 {
		t.Errorf("csv lines = %d, want 3", n)
	}
	if n := countLines(t, filepath.Join(cfg.Output.Dir, cfg.Output.JSONFile)); n != 2 {
		t.Errorf("json lines = %d, want 2", n)
	}
	prom, err := os.ReadFile(filepath.Join(cfg.Output.Dir, cfg.Output.MetricsFile))
	if err != nil {
		t.Fatalf("metrics textfile: %v", err)
	}
	if !strings.Contains(string(prom), `option_pricer_paths_total{generator="direct"} 40000`) {
		t.Errorf("metrics textfile missing path count:\n%s", prom)
	}
}

func TestPriceRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Option.Strike = -1
	if _, err := Price(cfg, nil); !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestCompareSharesSeed(t *testing.T) {
	cfg := testConfig(t)
	recs, err := Compare(cfg, nil)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("records = %d, want 2", len(recs))
	}
	if recs[0].Generator != path.NameDirect || recs[1].Generator != path.NameMonthly {
		t.Errorf("generators = %s, %s", recs[0].Generator, recs[1].Generator)
	}
	if recs[0].Seed != recs[1].Seed {
		t.Errorf("seeds differ: %d vs %d", recs[0].Seed, recs[1].Seed)
	}
	if recs[1].AnalyticPrice != nil {
		t.Errorf("monthly run carries an analytic price")
	}
	if recs[1].StandardError >= recs[0].StandardError {
		t.Errorf("monthly se %v not below direct se %v", recs[1].StandardError, recs[0].StandardError)
	}
}

func TestCompareSkipsMonthlyForShortExpiry(t *testing.T) {
	cfg := testConfig(t)
	cfg.Option.Expiry = 0.05
	recs, err := Compare(cfg, nil)
	if err != nil {
		t.Fatalf("Compare: %v", err)
	}
	if len(recs) != 1 || recs[0].Generator != path.NameDirect {
		t.Errorf("records = %+v", recs)
	}
}

func TestTraceStoresSeries(t *testing.T) {
	cfg := testConfig(t)
	rec, cps, hash, err := Trace(cfg, nil)
	if err != nil {
		t.Fatalf("Trace: %v", err)
	}
	if len(cps) != 4 {
		t.Fatalf("checkpoints = %d, want 4", len(cps))
	}
	last := cps[len(cps)-1]
	if last.Price != rec.Price || last.Paths != rec.Paths {
		t.Errorf("final checkpoint %+v does not match record %+v", last, rec)
	}

	m, loaded, err := store.New(cfg.Output.StoreDir).LoadTrace("latest")
	if err != nil {
		t.Fatalf("LoadTrace: %v", err)
	}
	if m.Record.ID != rec.ID || len(loaded) != len(cps) {
		t.Errorf("loaded %s with %d checkpoints", m.Record.ID, len(loaded))
	}
	if hash == "" {
		t.Errorf("empty manifest hash")
	}
}

func TestTraceRejectsSmallInterval(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.TraceEvery = 1
	if _, _, _, err := Trace(cfg, nil); !errors.Is(err, model.ErrInvalidArgument) {
		t.Errorf("error = %v, want ErrInvalidArgument", err)
	}
}

func TestExecuteWithoutAnalytic(t *testing.T) {
	cfg := testConfig(t)
	cfg.Simulation.CompareWith = false
	rec, _, err := Execute(JobFromConfig(cfg))
	if err != nil {
		t.Fatal(err)
	}
	if rec.AnalyticPrice != nil {
		t.Errorf("analytic price attached with compare_analytic off")
	}
}

func TestPriceOverflowFailsCleanly(t *testing.T) {
	cfg := testConfig(t)
	cfg.Option.Rate = 800
	m := metrics.New()
	rec, err := Price(cfg, m)
	if !errors.Is(err, model.ErrNumericDegeneracy) {
		t.Fatalf("error = %v, want ErrNumericDegeneracy", err)
	}
	if rec.Error == "" || rec.Price != 0 || rec.StandardError != 0 {
		t.Errorf("failure record = %+v", rec)
	}
	// The failure is still recorded, without NaN values.
	data, err := os.ReadFile(filepath.Join(cfg.Output.Dir, cfg.Output.CSVFile))
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if strings.Contains(string(data), "NaN") || !strings.Contains(string(data), "numeric degeneracy") {
		t.Errorf("csv = %s", data)
	}
}
