// Package config provides configuration loading for emergent.
//
// Configuration is loaded from a YAML file with environment variable
// overrides and sensible defaults for every field.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/emergent/internal/memory"
)

// Config holds the complete emergent configuration.
type Config struct {
	Logging LoggingConfig `koanf:"logging"`
	Engine  EngineConfig  `koanf:"engine"`
	Encoder EncoderConfig `koanf:"encoder"`
	Store   StoreConfig   `koanf:"store"`
	Network NetworkConfig `koanf:"network"`
}

// LoggingConfig holds structured logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// EngineConfig holds the single-node memory engine knobs. The engine
// constants are flattened into the engine section, so any of them can be
// set from the file (engine.learning_rate) or the environment
// (EMERGENT_ENGINE_LEARNING_RATE).
type EngineConfig struct {
	// NodeID identifies this memory instance. Empty generates one.
	NodeID string `koanf:"node_id"`

	// Seed seeds the engine's random generator. Zero seeds from the
	// clock.
	Seed int64 `koanf:"seed"`

	memory.Params `koanf:",squash"`
}

// EncoderConfig holds semantic embedding configuration.
type EncoderConfig struct {
	// Provider selects the embedding backend: "hash" or "fastembed".
	Provider string `koanf:"provider"`

	Model     string `koanf:"model"`
	Dimension int    `koanf:"dimension"`
	CacheDir  string `koanf:"cache_dir"`
}

// StoreConfig holds persistence configuration.
type StoreConfig struct {
	// Dir is the snapshot directory. Empty disables snapshots.
	Dir string `koanf:"dir"`

	// IndexPath is the similarity index location. Empty keeps the index
	// in memory only.
	IndexPath string `koanf:"index_path"`

	IndexCollection string `koanf:"index_collection"`
	Compress        bool   `koanf:"compress"`
}

// NetworkConfig holds the multi-node simulation configuration.
type NetworkConfig struct {
	// Nodes is the participant count for simulated networks.
	Nodes int `koanf:"nodes"`

	Coupling    float64       `koanf:"coupling"`
	Frequency   float64       `koanf:"frequency"`
	SyncStep    time.Duration `koanf:"sync_step"`
	VoteTimeout time.Duration `koanf:"vote_timeout"`
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}

	cfg.Engine.Params.ApplyDefaults()

	if cfg.Encoder.Provider == "" {
		cfg.Encoder.Provider = "hash"
	}
	if cfg.Encoder.Model == "" {
		cfg.Encoder.Model = "BAAI/bge-small-en-v1.5"
	}
	if cfg.Encoder.Dimension == 0 {
		cfg.Encoder.Dimension = 384
	}

	if cfg.Store.IndexCollection == "" {
		cfg.Store.IndexCollection = "emergent_concepts"
	}

	if cfg.Network.Nodes == 0 {
		cfg.Network.Nodes = 3
	}
	if cfg.Network.Coupling == 0 {
		cfg.Network.Coupling = 0.5
	}
	if cfg.Network.Frequency == 0 {
		cfg.Network.Frequency = 1.0
	}
	if cfg.Network.SyncStep == 0 {
		cfg.Network.SyncStep = 10 * time.Millisecond
	}
	if cfg.Network.VoteTimeout == 0 {
		cfg.Network.VoteTimeout = 2 * time.Second
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("logging format must be 'json' or 'console', got %q", c.Logging.Format)
	}

	if c.Engine.LearningRate <= 0 || c.Engine.LearningRate > 1 {
		return fmt.Errorf("learning rate must be in (0, 1], got %v", c.Engine.LearningRate)
	}
	if c.Engine.DecayRate <= 0 || c.Engine.DecayRate >= 1 {
		return fmt.Errorf("decay rate must be in (0, 1), got %v", c.Engine.DecayRate)
	}
	if c.Engine.DreamDecay <= 0 || c.Engine.DreamDecay >= 1 {
		return fmt.Errorf("dream decay rate must be in (0, 1), got %v", c.Engine.DreamDecay)
	}
	if c.Engine.DefaultRefractory < 0 {
		return errors.New("refractory period must not be negative")
	}
	if c.Engine.HistoryCap < 1 {
		return fmt.Errorf("history cap must be positive, got %d", c.Engine.HistoryCap)
	}

	switch c.Encoder.Provider {
	case "hash", "fastembed":
	default:
		return fmt.Errorf("encoder provider must be 'hash' or 'fastembed', got %q", c.Encoder.Provider)
	}
	if c.Encoder.Dimension < 1 {
		return fmt.Errorf("encoder dimension must be positive, got %d", c.Encoder.Dimension)
	}

	if c.Network.Nodes < 1 {
		return fmt.Errorf("network needs at least one node, got %d", c.Network.Nodes)
	}
	if c.Network.Coupling < 0 {
		return errors.New("coupling must not be negative")
	}
	if c.Network.SyncStep <= 0 {
		return errors.New("sync step must be positive")
	}
	if c.Network.VoteTimeout <= 0 {
		return errors.New("vote timeout must be positive")
	}

	return nil
}
