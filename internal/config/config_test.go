package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseDefaultConfig(t *testing.T) {
	cfg, err := parse(DefaultConfigYAML)
	if err != nil {
		t.Fatalf("failed to parse default config: %v", err)
	}

	if cfg.AI.Provider != "gemini" {
		t.Errorf("expected provider 'gemini', got %q", cfg.AI.Provider)
	}
	if cfg.Analysis.Thresholds.Medium != 35 || cfg.Analysis.Thresholds.High != 65 {
		t.Errorf("unexpected thresholds: %+v", cfg.Analysis.Thresholds)
	}
	if cfg.Server.Port != 8000 {
		t.Errorf("expected port 8000, got %d", cfg.Server.Port)
	}

	sum := cfg.Analysis.Weights.WorkHours + cfg.Analysis.Weights.NearMiss +
		cfg.Analysis.Weights.MachineUsage + cfg.Analysis.Weights.ShiftType +
		cfg.Analysis.Weights.Temporal
	if sum < 0.999 || sum > 1.001 {
		t.Errorf("weights should sum to 1, got %f", sum)
	}
}

func TestParseMinimalConfig(t *testing.T) {
	data := []byte(`
ai:
  provider: openai
server:
  port: 9000
`)
	cfg, err := parse(data)
	if err != nil {
		t.Fatalf("failed to parse minimal config: %v", err)
	}

	if cfg.AI.Provider != "openai" {
		t.Errorf("expected provider 'openai', got %q", cfg.AI.Provider)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	// Defaults should still be set for unspecified fields
	if cfg.AI.TimeoutSeconds != 10 {
		t.Errorf("expected default timeout, got %d", cfg.AI.TimeoutSeconds)
	}
	if cfg.Analysis.Weights.WorkHours != 0.35 {
		t.Errorf("expected default work_hours weight, got %f", cfg.Analysis.Weights.WorkHours)
	}
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, DefaultConfigYAML, 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Simulation.IntervalSeconds != 2 {
		t.Errorf("expected interval 2, got %f", cfg.Simulation.IntervalSeconds)
	}
}

func TestDurations(t *testing.T) {
	cfg := &Config{}
	if cfg.AITimeout() != 10*time.Second {
		t.Errorf("zero timeout should default: %v", cfg.AITimeout())
	}
	cfg.Simulation.IntervalSeconds = 0.5
	if cfg.SimulationInterval() != 500*time.Millisecond {
		t.Errorf("fractional interval: %v", cfg.SimulationInterval())
	}
}

func TestGetDataDir(t *testing.T) {
	cfg := &Config{}
	if cfg.GetDataDir() == "" {
		t.Error("expected non-empty default data dir")
	}

	cfg.Output.DataDir = "/custom/path"
	if cfg.GetDataDir() != "/custom/path" {
		t.Errorf("expected '/custom/path', got %q", cfg.GetDataDir())
	}
}
