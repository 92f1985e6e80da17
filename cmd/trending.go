package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"marquee/internal/provider"
)

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "List trending movies",
	Args:  cobra.NoArgs,
	RunE:  trendingRun,
}

func trendingRun(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	results, err := newProvider().Trending(ctx)
	if err != nil {
		return fmt.Errorf("getting trending: %w", err)
	}

	if len(results) == 0 {
		fmt.Println("No trending movies found.")
		return nil
	}

	for _, r := range results {
		fmt.Printf("%-12s %s\n", r.ID, provider.FormatDisplayTitle(r))
	}
	return nil
}
