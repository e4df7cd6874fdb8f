package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var similarK int

var similarCmd = &cobra.Command{
	Use:   "similar <text>",
	Short: "Find concepts nearest to text in vector space",
	Long: `Similar embeds the given text and queries the similarity index for
the nearest concepts. Requires a configured index (store.index_path).

Examples:
  emergent similar "household pets"
  emergent similar --k 3 "household pets"`,
	Args: cobra.ExactArgs(1),
	RunE: runSimilar,
}

func init() {
	similarCmd.Flags().IntVar(&similarK, "k", 5, "number of neighbors to return")
}

func runSimilar(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	rt, err := openRuntime(ctx)
	if err != nil {
		return err
	}
	defer rt.close()

	if rt.cfg.Store.IndexPath == "" {
		return fmt.Errorf("no similarity index configured: set store.index_path")
	}

	matches, err := rt.inst.Similar(ctx, args[0], similarK)
	if err != nil {
		return fmt.Errorf("querying: %w", err)
	}
	if len(matches) == 0 {
		fmt.Println("no matches")
		return nil
	}
	for _, m := range matches {
		fmt.Printf("%.4f  %s (%s)\n", m.Similarity, m.Content, m.ID)
	}
	return nil
}
