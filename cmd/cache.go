package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/moviecat/catalog"
)

// cacheCmd groups offline cache maintenance
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the offline cache",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show how many movies are cached per category",
	RunE:  runCacheStats,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every cached category",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	location := movieStore.Path()
	if location == "" {
		location = "memory only"
	}
	fmt.Fprintf(out, "Offline cache: %s (limit %d per category)\n", location, movieStore.Limit())

	total := 0
	for i, c := range catalog.Categories() {
		count := movieStore.Count(c)
		total += count

		prefix := "├──"
		if i == len(catalog.Categories())-1 {
			prefix = "╰──"
		}
		fmt.Fprintf(out, "%s %-13s %d\n", prefix, c.DisplayName(), count)
	}
	fmt.Fprintf(out, "Total: %d\n", total)

	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	if err := movieStore.Clear(); err != nil {
		return err
	}
	logger.Info().Msg("Offline cache cleared")
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Offline cache cleared")
	return nil
}
