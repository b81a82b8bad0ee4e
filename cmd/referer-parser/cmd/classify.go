package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/referer-parser/internal/batch"
	"github.com/Aman-CERP/referer-parser/internal/output"
	"github.com/Aman-CERP/referer-parser/internal/telemetry"
	"github.com/Aman-CERP/referer-parser/pkg/referer"
)

func newClassifyCmd(g *globals) *cobra.Command {
	var (
		data    dataFlags
		format  string
		workers int
		stats   bool
	)

	cmd := &cobra.Command{
		Use:   "classify [url...]",
		Short: "Classify referer URLs",
		Long: `Classify one or more referer URLs.

URLs are read from the arguments, or one per line from stdin when no
arguments are given or the only argument is "-". Results are printed in
input order. URLs that cannot be parsed are reported inline and do not
fail the command.`,
		Example: `  # Classify a single URL
  referer-parser classify "http://www.google.com/search?q=gateway+oracle+cards"

  # Classify a log extract as JSON lines
  cut -d' ' -f11 access.log | referer-parser classify --format jsonl

  # Treat your own domains as internal
  referer-parser classify --internal example.com --internal www.example.com http://example.com/about`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := g.config()

			format, err := resolveFormat(cmd, format, cfg)
			if err != nil {
				return err
			}

			urls := args
			if len(args) == 0 || (len(args) == 1 && args[0] == "-") {
				urls, err = readLines(cmd.InOrStdin())
				if err != nil {
					return err
				}
			}

			table, err := data.openTable(cmd, cfg)
			if err != nil {
				return err
			}

			n := cfg.Classify.Workers
			if cmd.Flags().Changed("workers") {
				n = workers
			}

			classifier := referer.NewCachedClassifier(referer.NewMatcher(table), cfg.Classify.CacheSize)
			results, err := batch.Classify(cmd.Context(), classifier, urls, n)
			if err != nil {
				return err
			}

			w := newWriter(cmd, format)
			collector := telemetry.New()
			for _, r := range results {
				collector.Record(r.URL, r.Classification, r.Err)
				if err := w.Classification(r.URL, r.Classification, r.Err); err != nil {
					return err
				}
			}
			if err := w.Flush(); err != nil {
				return err
			}

			snap := collector.Snapshot()
			if snap.Unparsed > 0 {
				slog.Warn("unparseable_urls", slog.Int64("count", snap.Unparsed), slog.Int64("total", snap.Total))
			}
			logStats("classify_summary", snap)
			if stats {
				errOut := cmd.ErrOrStderr()
				return printStats(output.NewWithFormat(errOut, format, output.UseColor(errOut)), snap)
			}
			return nil
		},
	}

	data.register(cmd)
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text, json or jsonl")
	cmd.Flags().IntVar(&workers, "workers", 0, "Concurrent workers (0 = number of CPUs)")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print a traffic summary to stderr")

	return cmd
}
