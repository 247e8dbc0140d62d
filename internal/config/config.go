package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/alesfias96/student-performance-ai/internal/answer"
	"github.com/alesfias96/student-performance-ai/internal/profile"
	"github.com/alesfias96/student-performance-ai/internal/recommend"
	"github.com/alesfias96/student-performance-ai/internal/simulate"
)

// EnvConfigPath names a config file when --config is not given.
const EnvConfigPath = "STUDENTPERF_CONFIG"

// Config is the full run configuration. It is built once at startup and
// passed by value; nothing mutates it afterwards.
type Config struct {
	Simulation simulate.Config    `yaml:"simulation"`
	Profile    profile.Thresholds `yaml:"profile"`
	Recommend  recommend.Config   `yaml:"recommend"`

	// Vocabulary adds domain labels on top of the built-in aliases.
	Vocabulary map[string]string `yaml:"vocabulary"`

	// Workers bounds the per-student fan-out. Zero means GOMAXPROCS.
	Workers int `yaml:"workers"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Simulation: simulate.DefaultConfig(),
		Profile:    profile.DefaultThresholds(),
		Recommend:  recommend.DefaultConfig(),
	}
}

// Load returns the defaults overlaid with the YAML file at path. An empty
// path falls back to $STUDENTPERF_CONFIG, then to the defaults alone.
func Load(path string) (Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		cfg := Default()
		return cfg, cfg.Validate()
	}

	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg, err := Parse(f)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse reads a YAML document over the defaults, checks it against the
// config schema and validates the result.
func Parse(r io.Reader) (Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Config{}, fmt.Errorf("read: %w", err)
	}

	cfg := Default()
	if len(bytes.TrimSpace(data)) == 0 {
		return cfg, cfg.Validate()
	}

	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	if err := validateDocument(doc); err != nil {
		return Config{}, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides the seed and worker count from the environment.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("STUDENTPERF_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("STUDENTPERF_SEED: %w", err)
		}
		c.Simulation.Seed = seed
	}
	if v := os.Getenv("STUDENTPERF_WORKERS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("STUDENTPERF_WORKERS: %w", err)
		}
		c.Workers = n
	}
	return nil
}

// EffectiveWorkers returns the worker bound to use.
func (c Config) EffectiveWorkers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// Validate checks every section. Returns a combined error describing all
// problems found, or nil if valid.
func (c Config) Validate() error {
	var errs []error
	if err := c.Simulation.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Profile.Validate(); err != nil {
		errs = append(errs, err)
	}
	if err := c.Recommend.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Recommend.AccuracyFloor > c.Profile.StrengthFrom {
		errs = append(errs, fmt.Errorf("recommend.accuracy_floor (%g) must not exceed profile.strength_from (%g)",
			c.Recommend.AccuracyFloor, c.Profile.StrengthFrom))
	}
	if _, err := answer.NewVocabulary(c.Vocabulary); err != nil {
		errs = append(errs, err)
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must be >= 0, got %d", c.Workers))
	}
	if len(errs) == 0 {
		return nil
	}

	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = strings.ReplaceAll(err.Error(), "\n", "\n  ")
	}
	return fmt.Errorf("%w:\n  %s", ErrInvalid, strings.Join(msgs, "\n  "))
}

// ErrInvalid wraps every configuration validation failure.
var ErrInvalid = errors.New("invalid configuration")

// AnswerVocabulary builds the answer vocabulary from the alias table.
func (c Config) AnswerVocabulary() (answer.Vocabulary, error) {
	return answer.NewVocabulary(c.Vocabulary)
}
