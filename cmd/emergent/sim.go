package main

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/emergent/internal/config"
	"github.com/fyrsmithlabs/emergent/internal/logging"
	"github.com/fyrsmithlabs/emergent/internal/memory"
	"github.com/fyrsmithlabs/emergent/internal/network"
)

var simSyncDuration time.Duration

var simCmd = &cobra.Command{
	Use:   "sim [concept]...",
	Short: "Simulate a small network of memory nodes",
	Long: `Sim builds a network of nodes from the config, seeds each node with
the given concepts, then runs the full collective loop: phase
synchronization, a consensus proposal composing the first two concepts,
attractor distribution of the first node's active pattern, and a
collective prediction. Emergence events are printed at the end.

Examples:
  emergent sim
  emergent sim sunrise birdsong morning
  emergent sim --sync 5s`,
	RunE: runSim,
}

func init() {
	simCmd.Flags().DurationVar(&simSyncDuration, "sync", 2*time.Second, "simulated synchronization duration")
}

func runSim(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.LoadWithFile(configPath)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer func() { _ = logging.Sync(logger) }()

	seeds := args
	if len(seeds) == 0 {
		seeds = []string{"sunrise", "birdsong", "morning"}
	}
	if len(seeds) < 2 {
		return fmt.Errorf("need at least two concepts, got %d", len(seeds))
	}

	nodes, seedIDs, err := buildSimNodes(ctx, cfg, logger, seeds)
	if err != nil {
		return err
	}
	net := network.New(network.Config{
		Nodes:       nodes,
		VoteTimeout: cfg.Network.VoteTimeout,
		SyncStep:    cfg.Network.SyncStep,
		Logger:      logger,
	})
	start := time.Now()

	fmt.Printf("nodes: %d, seed concepts: %d\n\n", len(nodes), len(seeds))

	before := net.OrderParameter()
	after, err := net.Synchronize(ctx, simSyncDuration)
	if err != nil {
		return fmt.Errorf("synchronizing: %w", err)
	}
	fmt.Printf("synchrony: %.4f -> %.4f\n", before, after)

	proposer := nodes[0].ID()
	result, err := net.Propose(ctx, proposer, "", seedIDs[:2])
	if err != nil {
		return fmt.Errorf("proposing: %w", err)
	}
	fmt.Printf("proposal %q: %s (%d/%d yes)\n",
		result.Proposal.Content, result.State, result.YesCount, len(nodes))

	pattern := nodes[0].Memory().ActivePattern()
	if len(pattern) > 0 {
		att, err := net.DistributeAttractor(ctx, proposer, pattern)
		if err != nil {
			return fmt.Errorf("distributing: %w", err)
		}
		fmt.Printf("attractor: %d concepts over %d nodes, %d cross associations, distributed=%v\n",
			len(att.Assignments), len(nodes), att.CrossAssociations, att.Distributed)
	}

	preds, err := net.CollectivePredict(ctx, seedIDs[0])
	if err != nil {
		return fmt.Errorf("predicting: %w", err)
	}
	fmt.Printf("\ncollective prediction from %q:\n", seeds[0])
	printPredictions(nodes[0].Memory(), preds)

	fmt.Println("\nemergence events:")
	for _, ev := range net.Events(start.Add(-time.Second)) {
		fmt.Printf("  %s %s %v\n", ev.Timestamp.Format(time.RFC3339), ev.Type, ev.Payload)
	}
	return nil
}

// buildSimNodes creates the configured number of nodes, adopts the seed
// concepts under shared ids on every node, and fires them in sequence so
// associations form. Phases start evenly spread so synchronization has
// work to do.
func buildSimNodes(ctx context.Context, cfg *config.Config, logger *zap.Logger, seeds []string) ([]*network.NodeState, []string, error) {
	seedIDs := make([]string, len(seeds))
	for i := range seeds {
		seedIDs[i] = fmt.Sprintf("seed-%d", i)
	}

	params := cfg.Engine.Params
	params.Dimension = cfg.Encoder.Dimension

	nodes := make([]*network.NodeState, cfg.Network.Nodes)
	for i := range nodes {
		inst := memory.NewInstance(memory.InstanceConfig{
			ID:     fmt.Sprintf("node-%d", i),
			Seed:   int64(i + 1),
			Params: params,
			Logger: logger,
		})
		for j, content := range seeds {
			if _, err := inst.Adopt(ctx, seedIDs[j], content, nil); err != nil {
				return nil, nil, fmt.Errorf("seeding node %d with %q: %w", i, content, err)
			}
		}
		for _, id := range seedIDs {
			inst.Activate(id, 1.0)
		}
		nodes[i] = network.NewNode(network.NodeConfig{
			ID:        inst.ID(),
			Memory:    inst,
			Phase:     2 * math.Pi * float64(i) / float64(cfg.Network.Nodes),
			Frequency: cfg.Network.Frequency,
			Coupling:  cfg.Network.Coupling,
		})
	}
	return nodes, seedIDs, nil
}

func printPredictions(mem *memory.Instance, preds map[string]float64) {
	if len(preds) == 0 {
		fmt.Println("  (none)")
		return
	}
	for _, id := range network.Top(preds, 5) {
		label := id
		if c, ok := mem.Concept(id); ok {
			label = c.Content
		}
		fmt.Printf("  %.4f  %s\n", preds[id], label)
	}
}
