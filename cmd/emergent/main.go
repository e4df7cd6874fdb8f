// Package main implements the emergent CLI for operating a local
// associative memory node and simulating small networks of them.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/emergent/internal/config"
	"github.com/fyrsmithlabs/emergent/internal/encoder"
	"github.com/fyrsmithlabs/emergent/internal/logging"
	"github.com/fyrsmithlabs/emergent/internal/memory"
	"github.com/fyrsmithlabs/emergent/internal/store"
)

var (
	// configPath is the --config flag value; empty uses the default path.
	configPath string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "emergent",
	Short: "Self-organizing associative memory",
	Long: `emergent operates a local associative memory node: learning text into
concepts, spreading activation, predicting what fires next, composing new
concepts from old ones, and consolidating offline. The sim command couples
several nodes into a small network with phase synchronization and quorum
consensus.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default ~/.config/emergent/config.yaml)")
	rootCmd.AddCommand(learnCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(composeCmd)
	rootCmd.AddCommand(similarCmd)
	rootCmd.AddCommand(dreamCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(simCmd)
}

// runtime bundles the wired-up node a single-node command operates on.
type runtime struct {
	cfg    *config.Config
	logger *zap.Logger
	enc    encoder.Encoder
	snaps  *store.FileStore
	inst   *memory.Instance
}

// openRuntime loads config, builds the encoder, index, and memory
// instance, and restores the previous snapshot when a store directory is
// configured.
func openRuntime(ctx context.Context) (*runtime, error) {
	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, err
	}

	enc, err := encoder.New(encoder.Config{
		Provider:  cfg.Encoder.Provider,
		Dimension: cfg.Encoder.Dimension,
		Model:     cfg.Encoder.Model,
		CacheDir:  cfg.Encoder.CacheDir,
	})
	if err != nil {
		return nil, fmt.Errorf("building encoder: %w", err)
	}

	var index memory.Index
	if cfg.Store.IndexPath != "" {
		index, err = store.NewChromemIndex(store.ChromemIndexConfig{
			Path:       cfg.Store.IndexPath,
			Collection: cfg.Store.IndexCollection,
			Compress:   cfg.Store.Compress,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("opening similarity index: %w", err)
		}
	}

	nodeID := cfg.Engine.NodeID
	if nodeID == "" {
		nodeID = "local"
	}

	// Vectors must match what the encoder produces, whatever the engine
	// section says.
	params := cfg.Engine.Params
	params.Dimension = cfg.Encoder.Dimension

	inst := memory.NewInstance(memory.InstanceConfig{
		ID:       nodeID,
		Seed:     cfg.Engine.Seed,
		Params:   params,
		Embedder: enc,
		Index:    index,
		Logger:   logger,
	})

	rt := &runtime{cfg: cfg, logger: logger, enc: enc, inst: inst}

	if cfg.Store.Dir != "" {
		rt.snaps, err = store.NewFileStore(cfg.Store.Dir, logger)
		if err != nil {
			return nil, err
		}
		snap, err := rt.snaps.Load(ctx, nodeID)
		if err != nil {
			return nil, fmt.Errorf("loading snapshot: %w", err)
		}
		if snap != nil {
			if err := inst.Restore(snap); err != nil {
				return nil, fmt.Errorf("restoring snapshot: %w", err)
			}
		}
	}

	return rt, nil
}

// save persists the node when a store directory is configured.
func (rt *runtime) save(ctx context.Context) error {
	if rt.snaps == nil {
		return nil
	}
	if err := rt.snaps.Save(ctx, rt.inst.Snapshot()); err != nil {
		return fmt.Errorf("saving snapshot: %w", err)
	}
	return nil
}

// close releases the encoder and flushes the logger.
func (rt *runtime) close() {
	var err error
	if rt.enc != nil {
		err = multierr.Append(err, rt.enc.Close())
	}
	err = multierr.Append(err, logging.Sync(rt.logger))
	if err != nil {
		rt.logger.Warn("runtime teardown", zap.Error(err))
	}
}
