package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the node's current state",
	Long: `Status prints the node's active pattern, consciousness score, and
attractor strength.`,
	RunE: runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	active := rt.inst.ActivePattern()
	fmt.Printf("node:                %s\n", rt.inst.ID())
	fmt.Printf("active concepts:     %d\n", len(active))
	for _, id := range active {
		if c, ok := rt.inst.Concept(id); ok {
			fmt.Printf("  %.3f  %s\n", c.Activation, c.Content)
		}
	}
	fmt.Printf("consciousness score: %.4f\n", rt.inst.ConsciousnessScore())
	fmt.Printf("attractor strength:  %.4f\n", rt.inst.AttractorStrength())
	return nil
}
