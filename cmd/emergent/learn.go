package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var learnCmd = &cobra.Command{
	Use:   "learn <text>...",
	Short: "Ingest text into concepts and activate them",
	Long: `Learn tokenizes the given text into concepts, creating any that are
new, and activates them in sequence so their associations strengthen.

Examples:
  emergent learn "the cat chased the mouse"
  emergent learn "dogs are animals" "cats are animals"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLearn,
}

func runLearn(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	for _, text := range args {
		ids, err := rt.inst.Learn(ctx, text, nil)
		if err != nil {
			return fmt.Errorf("learning %q: %w", text, err)
		}
		fmt.Printf("%s -> %s\n", text, strings.Join(ids, ", "))
	}

	// One relaxation step at the configured waking decay rate closes the
	// learn cycle before the snapshot is taken.
	rt.inst.Relax()

	active := rt.inst.ActivePattern()
	fmt.Printf("active pattern: %d concepts\n", len(active))
	return rt.save(ctx)
}
