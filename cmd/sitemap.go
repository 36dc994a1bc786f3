package cmd

import (
	"github.com/spf13/cobra"
)

// newSitemapCmd creates the 'sitemap' subcommand, which prints what the live
// endpoint would currently answer.
func newSitemapCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sitemap",
		Short: "Print the live sitemap to stdout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			resp := appInstance.GetSitemap().Respond(cmd.Context())
			_, err = cmd.OutOrStdout().Write(resp.Body)
			return err
		},
	}
}
