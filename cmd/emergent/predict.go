package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var predictTop int

var predictCmd = &cobra.Command{
	Use:   "predict <concept-id>...",
	Short: "Show what the memory expects to fire next",
	Long: `Predict treats the given concept ids as the active pattern and prints
the expectation map the memory projects from them, strongest first.

Examples:
  emergent predict 4f1c... 9a2e...
  emergent predict --top 5 4f1c...`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().IntVar(&predictTop, "top", 10, "maximum predictions to print")
}

func runPredict(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	preds := rt.inst.QueryPredictions(args)
	if len(preds) == 0 {
		fmt.Println("no predictions")
		return nil
	}

	ids := make([]string, 0, len(preds))
	for id := range preds {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if preds[ids[i]] != preds[ids[j]] {
			return preds[ids[i]] > preds[ids[j]]
		}
		return ids[i] < ids[j]
	})
	if predictTop > 0 && len(ids) > predictTop {
		ids = ids[:predictTop]
	}

	for _, id := range ids {
		label := id
		if c, ok := rt.inst.Concept(id); ok {
			label = fmt.Sprintf("%s (%s)", c.Content, id)
		}
		fmt.Printf("%.4f  %s\n", preds[id], label)
	}
	return nil
}
