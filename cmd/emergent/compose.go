package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/emergent/internal/vsa"
)

var composeOp string

var composeCmd = &cobra.Command{
	Use:   "compose <concept-id> <concept-id>...",
	Short: "Create a new concept from existing ones",
	Long: `Compose combines the semantic vectors of two or more concepts into a
new concept wired to its constituents.

Operations:
  merge    superposition; the result stays similar to every input
  bind     circular convolution; the result is dissimilar to its inputs
  analogy  A:B :: C:D completion over the first three inputs

Examples:
  emergent compose 4f1c... 9a2e...
  emergent compose --op bind 4f1c... 9a2e...`,
	Args: cobra.MinimumNArgs(2),
	RunE: runCompose,
}

func init() {
	composeCmd.Flags().StringVar(&composeOp, "op", "merge", "composition operation (merge, bind, analogy)")
}

func runCompose(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	op, err := vsa.ParseOperation(composeOp)
	if err != nil {
		return err
	}

	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	id, err := rt.inst.Compose(ctx, args, op)
	if err != nil {
		return fmt.Errorf("composing: %w", err)
	}

	c, _ := rt.inst.Concept(id)
	fmt.Printf("composed %q -> %s\n", c.Content, id)
	return rt.save(ctx)
}
