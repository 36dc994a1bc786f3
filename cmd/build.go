package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

const (
	flagOutput      = "output"
	flagSkipInvalid = "skip-invalid"
)

// newBuildCmd creates the 'build' subcommand, which runs one generation pass.
func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Generate the static job pages, sitemap and robots.txt",
		Long: `Fetches the mission collection once (falling back to a fixed dataset when the
store is unreachable or empty) and writes one page per job plus sitemap.xml,
robots.txt and the optional success page. Exits non-zero if any artifact
cannot be written.`,
		Args: cobra.NoArgs,
		RunE: runBuildCommand,
	}
	cmd.Flags().String(flagOutput, "", "write to this local directory instead of the configured output")
	cmd.Flags().Bool(flagSkipInvalid, false, "skip records that fail validation instead of aborting")
	return cmd
}

func runBuildCommand(cmd *cobra.Command, _ []string) error {
	appInstance, err := resolveApp(cmd.Context())
	if err != nil {
		return err
	}

	report, err := appInstance.GetOrchestrator().Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("build site: %w", err)
	}

	_, err = fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d pages, %d skipped, %d sitemap urls (source %s) in %s\n",
		report.RunID, report.Pages, report.Skipped, report.SitemapURLs, report.Outcome, report.Duration)
	return err
}
