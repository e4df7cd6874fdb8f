package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var dreamDuration time.Duration

var dreamCmd = &cobra.Command{
	Use:   "dream",
	Short: "Run an offline consolidation cycle",
	Long: `Dream replays salient historical patterns, completes partial ones,
and speculatively composes new concepts, then reports what it found.

Examples:
  emergent dream
  emergent dream --duration 5s`,
	RunE: runDream,
}

func init() {
	dreamCmd.Flags().DurationVar(&dreamDuration, "duration", 2*time.Second, "simulated dream duration")
}

func runDream(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	result, err := rt.inst.Dream(ctx, dreamDuration)
	if err != nil {
		return fmt.Errorf("dreaming: %w", err)
	}

	fmt.Printf("replays:            %d\n", result.Replays)
	fmt.Printf("novel patterns:     %d\n", result.NovelPatterns)
	fmt.Printf("hypotheses:         %d\n", result.Hypotheses)
	fmt.Printf("attractor strength: %.4f\n", result.AttractorStrength)
	return rt.save(ctx)
}
