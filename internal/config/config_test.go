package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Higerald/OptionPricing/internal/model"
	"github.com/Higerald/OptionPricing/internal/payoff"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	po, _ := cfg.Payoff()
	if po.Kind != payoff.Call || po.Strike != 105 {
		t.Errorf("default payoff = %v", po)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "pricer.yaml")
	content := `
option:
  type: put
  strike: 95
  expiry: 0.5
simulation:
  paths: 5000
  generator: monthly
  sampler: direct
  seed: 12345
logging:
  level: debug
`
	if err := os.WriteFile(file, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(file)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Option.Type != "put" || cfg.Option.Strike != 95 || cfg.Option.Expiry != 0.5 {
		t.Errorf("option = %+v", cfg.Option)
	}
	// Unset keys keep their defaults.
	if cfg.Option.Spot != 100 || cfg.Option.Volatility != 0.2 {
		t.Errorf("defaults lost: %+v", cfg.Option)
	}
	if cfg.Simulation.Paths != 5000 || cfg.Simulation.Generator != "monthly" || cfg.Simulation.Seed != 12345 {
		t.Errorf("simulation = %+v", cfg.Simulation)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("logging = %+v", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	file := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(file, []byte("option: [unterminated"), 0644)
	if _, err := Load(file); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("OPTION_PRICER_SEED", "99")
	t.Setenv("OPTION_PRICER_PATHS", "2500")
	t.Setenv("LOG_LEVEL", "WARN")

	chdir(t, t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simulation.Seed != 99 || cfg.Simulation.Paths != 2500 || cfg.Logging.Level != "warn" {
		t.Fatalf("env overrides not applied: %+v %+v", cfg.Simulation, cfg.Logging)
	}
}

func TestEnvOverrideRejectsGarbage(t *testing.T) {
	t.Setenv("OPTION_PRICER_SEED", "minus-one")
	chdir(t, t.TempDir())
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for non-numeric seed")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative strike", func(c *Config) { c.Option.Strike = -1 }},
		{"unknown type", func(c *Config) { c.Option.Type = "digital" }},
		{"negative vol", func(c *Config) { c.Option.Volatility = -0.2 }},
		{"zero spot", func(c *Config) { c.Option.Spot = 0 }},
		{"one path", func(c *Config) { c.Simulation.Paths = 1 }},
		{"unknown sampler", func(c *Config) { c.Simulation.Sampler = "ziggurat" }},
		{"unknown generator", func(c *Config) { c.Simulation.Generator = "bridge" }},
		{"monthly under a month", func(c *Config) {
			c.Simulation.Generator = "monthly"
			c.Option.Expiry = 0.02
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, model.ErrInvalidArgument) {
				t.Fatalf("Validate() = %v, want ErrInvalidArgument", err)
			}
		})
	}
}

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Errorf("restore working directory: %v", err)
		}
	})
}
