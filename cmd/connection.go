package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/s0up4200/moviecat/tmdb"
)

// testCmd represents the test command
var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Test connection to TMDB",
	Long:  `Verify the configured TMDB credentials and show the active settings.`,
	RunE:  runTest,
}

func runTest(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Testing connection to TMDB at %s...\n", cfg.TMDB.URL)

	if err := tmdbClient.TestConnection(cmd.Context()); err != nil {
		var apiErr *tmdb.APIError
		if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
			return fmt.Errorf("TMDB rejected the credentials: %s", apiErr.Message)
		}
		return err
	}
	fmt.Fprintln(out, "✓ Connection successful!")

	auth := "API key"
	if cfg.TMDB.AccessToken != "" {
		auth = "access token"
	}

	fmt.Fprintf(out, "\nSettings:\n")
	fmt.Fprintf(out, "- Authentication: %s\n", auth)
	fmt.Fprintf(out, "- Language: %s\n", cfg.TMDB.Language)
	fmt.Fprintf(out, "- Rate limit: %.0f req/s (burst %d)\n", cfg.TMDB.RequestsPerSecond, cfg.TMDB.Burst)
	fmt.Fprintf(out, "- Fetch timeout: %s\n", cfg.Catalog.FetchTimeout)

	return nil
}
