package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"marquee/internal/history"
)

var flagClearHistory bool

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show the watch history",
	Args:  cobra.NoArgs,
	RunE:  historyRun,
}

func init() {
	historyCmd.Flags().BoolVar(&flagClearHistory, "clear", false, "Delete all history entries")
}

func historyRun(cmd *cobra.Command, args []string) error {
	store, err := history.OpenDefault()
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer store.Close()

	if flagClearHistory {
		if err := store.Clear(); err != nil {
			return fmt.Errorf("clearing history: %w", err)
		}
		fmt.Println("History cleared.")
		return nil
	}

	entries, err := store.Load()
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No history entries found.")
		return nil
	}

	for _, line := range history.FormatForDisplay(entries) {
		fmt.Println(line)
	}
	return nil
}
