package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DefaultConfigYAML []byte

type Config struct {
	Analysis   Analysis   `yaml:"analysis"`
	AI         AI         `yaml:"ai"`
	Simulation Simulation `yaml:"simulation"`
	Output     Output     `yaml:"output"`
	Server     Server     `yaml:"server"`
	Logging    Logging    `yaml:"logging"`
}

type Analysis struct {
	Weights    WeightsConfig    `yaml:"weights"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
}

// WeightsConfig carries the relative importance of each risk
// dimension. The five values should sum to 1.
type WeightsConfig struct {
	WorkHours    float64 `yaml:"work_hours"`
	NearMiss     float64 `yaml:"near_miss"`
	MachineUsage float64 `yaml:"machine_usage"`
	ShiftType    float64 `yaml:"shift_type"`
	Temporal     float64 `yaml:"temporal"`
}

type ThresholdsConfig struct {
	Medium int `yaml:"medium"`
	High   int `yaml:"high"`
}

type AI struct {
	Provider        string `yaml:"provider"`
	GeminiModel     string `yaml:"gemini_model"`
	GeminiKeyEnv    string `yaml:"gemini_api_key_env"`
	OpenAIModel     string `yaml:"openai_model"`
	OpenAIKeyEnv    string `yaml:"openai_api_key_env"`
	TimeoutSeconds  int    `yaml:"timeout_seconds"`
	MaxOutputTokens int    `yaml:"max_output_tokens"`
}

type Simulation struct {
	IntervalSeconds float64 `yaml:"interval_seconds"`
}

type Output struct {
	DataDir string `yaml:"data_dir"`
}

type Server struct {
	Port int `yaml:"port"`
}

type Logging struct {
	Level string `yaml:"level"`
}

// ConfigDir returns the XDG config directory for prosentry.
func ConfigDir() string {
	return filepath.Join(homeDir(), ".config", "prosentry")
}

// DataDir returns the XDG data directory for prosentry.
func DataDir() string {
	return filepath.Join(homeDir(), ".local", "share", "prosentry")
}

// ResolveConfigPath finds the config file following priority:
// explicit path > ~/.config/prosentry/config.yaml > ./config.yaml
func ResolveConfigPath(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file not found: %s", explicit)
		}
		return explicit, nil
	}

	xdgConfig := filepath.Join(ConfigDir(), "config.yaml")
	if _, err := os.Stat(xdgConfig); err == nil {
		return xdgConfig, nil
	}

	cwdConfig := "config.yaml"
	if _, err := os.Stat(cwdConfig); err == nil {
		return cwdConfig, nil
	}

	return "", fmt.Errorf(
		"no config file found; searched:\n  %s\n  ./config.yaml\n\nRun 'prosentry init' to create a default config",
		xdgConfig,
	)
}

// Load reads and parses a config YAML file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return parse(data)
}

// parse parses YAML bytes into a Config, applying defaults.
func parse(data []byte) (*Config, error) {
	cfg := &Config{
		Analysis: Analysis{
			Weights: WeightsConfig{
				WorkHours:    0.35,
				NearMiss:     0.30,
				MachineUsage: 0.20,
				ShiftType:    0.10,
				Temporal:     0.05,
			},
			Thresholds: ThresholdsConfig{Medium: 35, High: 65},
		},
		AI: AI{
			Provider:        "gemini",
			GeminiModel:     "gemini-2.0-flash",
			GeminiKeyEnv:    "GEMINI_API_KEY",
			OpenAIModel:     "gpt-4o-mini",
			OpenAIKeyEnv:    "OPENAI_API_KEY",
			TimeoutSeconds:  10,
			MaxOutputTokens: 1024,
		},
		Simulation: Simulation{IntervalSeconds: 2},
		Server:     Server{Port: 8000},
		Logging:    Logging{Level: "INFO"},
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// GetDataDir returns the effective data directory from config or XDG default.
func (c *Config) GetDataDir() string {
	if c.Output.DataDir != "" {
		return c.Output.DataDir
	}
	return DataDir()
}

// AITimeout returns the AI call deadline as a duration.
func (c *Config) AITimeout() time.Duration {
	if c.AI.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.AI.TimeoutSeconds) * time.Second
}

// SimulationInterval returns the tick interval as a duration.
func (c *Config) SimulationInterval() time.Duration {
	if c.Simulation.IntervalSeconds <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.Simulation.IntervalSeconds * float64(time.Second))
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
