package cmd

import (
	"github.com/spf13/cobra"

	perrors "github.com/Aman-CERP/referer-parser/internal/errors"
	"github.com/Aman-CERP/referer-parser/pkg/referer"
)

func newSourcesCmd(g *globals) *cobra.Command {
	var (
		data   dataFlags
		format string
		medium string
	)

	cmd := &cobra.Command{
		Use:   "sources",
		Short: "List known referer sources",
		Long: `List the sources in the dataset with their domains and, for search
engines, the query parameters that carry the search term.`,
		Example: `  referer-parser sources
  referer-parser sources --medium search --format json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := g.config()

			format, err := resolveFormat(cmd, format, cfg)
			if err != nil {
				return err
			}

			var want referer.Medium
			if medium != "" {
				want, err = referer.ParseMedium(medium)
				if err != nil {
					return perrors.ValidationError("invalid --medium", err).
						WithSuggestion("Use search, social, email or internal")
				}
			}

			table, err := data.openTable(cmd, cfg)
			if err != nil {
				return err
			}

			sources := table.Sources()
			if want != "" {
				filtered := sources[:0]
				for _, s := range sources {
					if s.Medium == want {
						filtered = append(filtered, s)
					}
				}
				sources = filtered
			}

			return newWriter(cmd, format).Sources(sources)
		},
	}

	data.register(cmd)
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or jsonl")
	cmd.Flags().StringVar(&medium, "medium", "", "Only list sources of this medium")

	return cmd
}
