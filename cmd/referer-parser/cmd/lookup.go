package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/referer-parser/pkg/referer"
)

func newLookupCmd(g *globals) *cobra.Command {
	var (
		data   dataFlags
		format string
	)

	cmd := &cobra.Command{
		Use:   "lookup <host> [path] [query]",
		Short: "Classify an already split referer",
		Long: `Classify a referer given as separate host, path and query parts.

The parts are passed to the matcher as given: the host is not lowercased
and the query is the raw, still encoded query string without the "?".`,
		Example: `  referer-parser lookup www.google.com /search "q=tarot+cards&hl=en"
  referer-parser lookup t.co /chrgFZDb`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := g.config()

			format, err := resolveFormat(cmd, format, cfg)
			if err != nil {
				return err
			}

			table, err := data.openTable(cmd, cfg)
			if err != nil {
				return err
			}

			host, path, query := args[0], "", ""
			if len(args) > 1 {
				path = args[1]
			}
			if len(args) > 2 {
				query = args[2]
			}

			c := referer.NewMatcher(table).Classify(host, path, query)

			w := newWriter(cmd, format)
			if err := w.Classification(joinParts(host, path, query), c, nil); err != nil {
				return err
			}
			return w.Flush()
		},
	}

	data.register(cmd)
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or jsonl")

	return cmd
}

// joinParts renders the parts as host/path?query for display.
func joinParts(host, path, query string) string {
	var b strings.Builder
	b.WriteString(host)
	if path != "" && !strings.HasPrefix(path, "/") {
		b.WriteByte('/')
	}
	b.WriteString(path)
	if query != "" {
		b.WriteByte('?')
		b.WriteString(query)
	}
	return b.String()
}
