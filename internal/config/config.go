// Package config holds the single controller configuration. Out-of-range
// values are clamped at construction rather than rejected so the control
// loop stays operable under a bad config file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/openclaw/clawevolve/controller/internal/eval"
	"github.com/openclaw/clawevolve/controller/internal/gate"
	"github.com/openclaw/clawevolve/controller/internal/policy"
	"github.com/openclaw/clawevolve/controller/internal/rollback"
	"github.com/openclaw/clawevolve/controller/internal/split"
)

// #region config
// Config is the full controller configuration.
type Config struct {
	// Online trigger scheduling.
	OnlineEnabled       bool          `yaml:"onlineEnabled"`
	WindowSize          int           `yaml:"windowSize"`
	MinTrajectories     int           `yaml:"minTrajectories"`
	EvolveEvery         int           `yaml:"evolveEvery"`
	Cooldown            time.Duration `yaml:"cooldown"`

	// Run parameters forwarded to the optimizer.
	Generations    int `yaml:"generations"`
	PopulationSize int `yaml:"populationSize"`

	// Search-algorithm overrides forwarded verbatim to the optimizer.
	CandidateSelection      string `yaml:"candidateSelection"`
	ReflectionMinibatchSize int    `yaml:"reflectionMinibatchSize"`

	Split    split.Config      `yaml:"split"`
	Gate     gate.Config       `yaml:"gate"`
	Rollback rollback.Config   `yaml:"rollback"`
	Weights  eval.Weights      `yaml:"objectiveWeights"`
	Seed     policy.SeedConfig `yaml:"seedPolicy"`

	// Bounded log capacities.
	EventLogCap   int `yaml:"eventLogCap"`
	RunHistoryCap int `yaml:"runHistoryCap"`

	// Collaborators.
	OptimizerURL     string        `yaml:"optimizerUrl"`
	OptimizerToken   string        `yaml:"optimizerToken"`
	OptimizerTimeout time.Duration `yaml:"optimizerTimeout"`
	DBPath           string        `yaml:"dbPath"`
	WebAddr          string        `yaml:"webAddr"`
}

// #endregion config

// #region default
// Default returns the fully-populated standard configuration.
func Default() Config {
	return Config{
		OnlineEnabled:    true,
		WindowSize:       500,
		MinTrajectories:  40,
		EvolveEvery:      25,
		Cooldown:         10 * time.Minute,
		Generations:      6,
		PopulationSize:   18,
		Split:            split.DefaultConfig(),
		Gate:             gate.DefaultConfig(),
		Rollback:         rollback.DefaultConfig(),
		Weights:          eval.DefaultWeights(),
		EventLogCap:      200,
		RunHistoryCap:    50,
		OptimizerURL:     "http://localhost:8091",
		OptimizerTimeout: 10 * time.Minute,
		DBPath:           "clawevolve.db",
		WebAddr:          ":8092",
	}
}

// #endregion default

// #region clamp
// Clamp forces every field into its valid range, filling zero values with
// defaults. Returns the clamped copy.
func (c Config) Clamp() Config {
	def := Default()

	c.WindowSize = clampInt(orInt(c.WindowSize, def.WindowSize), 10, 100000)
	c.MinTrajectories = clampInt(orInt(c.MinTrajectories, def.MinTrajectories), 5, c.WindowSize)
	c.EvolveEvery = clampInt(orInt(c.EvolveEvery, def.EvolveEvery), 1, c.WindowSize)
	if c.Cooldown < 0 {
		c.Cooldown = 0
	}
	c.Generations = clampInt(orInt(c.Generations, def.Generations), 1, 200)
	c.PopulationSize = clampInt(orInt(c.PopulationSize, def.PopulationSize), 4, 500)

	c.Split.HoldoutRatio = clampFloat(c.Split.HoldoutRatio, 0, 0.9)
	if c.Split.MinHoldout < 0 {
		c.Split.MinHoldout = 0
	}

	c.Gate.MinAggregateLift = clampFloat(c.Gate.MinAggregateLift, 0, 1)
	c.Gate.MinSafety = clampFloat(c.Gate.MinSafety, 0, 1)
	c.Gate.MaxSafetyDrop = clampFloat(c.Gate.MaxSafetyDrop, 0, 1)
	c.Gate.MaxSuccessDrop = clampFloat(c.Gate.MaxSuccessDrop, 0, 1)

	c.Rollback.MonitorWindow = clampInt(orInt(c.Rollback.MonitorWindow, def.Rollback.MonitorWindow), 5, c.WindowSize)
	c.Rollback.MinSamples = clampInt(orInt(c.Rollback.MinSamples, def.Rollback.MinSamples), 1, c.Rollback.MonitorWindow)
	c.Rollback.MaxAggregateDrop = clampFloat(c.Rollback.MaxAggregateDrop, 0, 1)
	c.Rollback.MaxSafetyDrop = clampFloat(c.Rollback.MaxSafetyDrop, 0, 1)

	if weightSum(c.Weights) <= 0 {
		c.Weights = def.Weights
	}

	c.EventLogCap = clampInt(orInt(c.EventLogCap, def.EventLogCap), 10, 100000)
	c.RunHistoryCap = clampInt(orInt(c.RunHistoryCap, def.RunHistoryCap), 5, 100000)

	if c.OptimizerURL == "" {
		c.OptimizerURL = def.OptimizerURL
	}
	if c.OptimizerTimeout <= 0 {
		c.OptimizerTimeout = def.OptimizerTimeout
	}
	if c.DBPath == "" {
		c.DBPath = def.DBPath
	}
	if c.WebAddr == "" {
		c.WebAddr = def.WebAddr
	}
	return c
}

// #endregion clamp

// #region load
// Load reads a YAML config file and clamps it. A missing path returns
// clamped defaults.
func Load(path string) (Config, error) {
	if path == "" {
		return Default().Clamp(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg.Clamp(), nil
}

// #endregion load

// #region helpers
func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func orInt(v, def int) int {
	if v == 0 {
		return def
	}
	return v
}

func weightSum(w eval.Weights) float64 {
	return w.Success + w.Satisfaction + w.Safety + w.ToolReliability + w.Efficiency
}

// #endregion helpers
