package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/JakeFAU/referent/internal/api"
	"github.com/JakeFAU/referent/internal/article"
)

func newExtractCmd() *cobra.Command {
	var pretty bool
	cmd := &cobra.Command{
		Use:   "extract <url>",
		Short: "Fetch one article and print it as JSON",
		Long: `Fetches the URL with the configured retry budget, extracts the title,
publication date and body, and prints the result as JSON on stdout. Exits
non-zero with the failure kind when the page cannot be fetched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			appInstance, err := resolveApp(cmd.Context())
			if err != nil {
				return err
			}
			res, err := appInstance.Pipeline().RetrieveURL(cmd.Context(), args[0])
			if err != nil {
				if kind, ok := article.KindOf(err); ok {
					return fmt.Errorf("extract %s: %s: %w", args[0], kind, err)
				}
				return fmt.Errorf("extract %s: %w", args[0], err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			if pretty {
				enc.SetIndent("", "  ")
			}
			if err := enc.Encode(api.NewArticleResponse(res)); err != nil {
				return fmt.Errorf("encode article: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the JSON output")
	return cmd
}
