package cmd

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/referer-parser/internal/dataset"
	perrors "github.com/Aman-CERP/referer-parser/internal/errors"
	"github.com/Aman-CERP/referer-parser/internal/output"
	"github.com/Aman-CERP/referer-parser/internal/telemetry"
	"github.com/Aman-CERP/referer-parser/pkg/referer"
)

func newStreamCmd(g *globals) *cobra.Command {
	var (
		data  dataFlags
		watch bool
		stats bool
	)

	cmd := &cobra.Command{
		Use:   "stream",
		Short: "Classify referers from stdin as JSON lines",
		Long: `Read referer URLs from stdin, one per line, and write one JSON object
per URL to stdout as soon as it is classified. The command runs until
stdin is closed.

With --watch (or data.watch in the config) the dataset file is reloaded
whenever it changes. A reload that fails is logged and the previous
dataset stays in service.`,
		Example: `  tail -F referers.txt | referer-parser stream --data ./referers.yml --watch`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := g.config()
			path, internal := data.resolve(cmd, cfg)

			if !cmd.Flags().Changed("watch") {
				watch = cfg.Data.Watch
			}
			if watch && path == "" {
				return perrors.ConfigError("--watch needs a dataset file", nil).
					WithSuggestion("Pass --data <file> or set data.path in the config")
			}

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			eg, ctx := errgroup.WithContext(ctx)

			var classifier referer.Classifier
			if watch {
				cacheSize := cfg.Classify.CacheSize
				if cacheSize <= 0 {
					cacheSize = referer.DefaultCacheSize
				}
				reloader, err := dataset.NewReloader(path, internal, dataset.WithCache(cacheSize))
				if err != nil {
					return err
				}
				classifier = reloader
				eg.Go(func() error { return reloader.Watch(ctx) })
				slog.Info("dataset_watch_started", slog.String("path", reloader.Path()))
			} else {
				table, err := dataset.Open(path, internal)
				if err != nil {
					return err
				}
				classifier = referer.NewCachedClassifier(referer.NewMatcher(table), cfg.Classify.CacheSize)
			}

			w := output.NewWithFormat(cmd.OutOrStdout(), output.FormatJSONL, false)
			collector := telemetry.New()
			eg.Go(func() error {
				defer cancel()
				return scanLines(cmd.InOrStdin(), func(line string) error {
					if err := ctx.Err(); err != nil {
						return err
					}
					c, err := referer.ClassifyURL(classifier, line)
					collector.Record(line, c, err)
					return w.Classification(line, c, err)
				})
			})

			if err := eg.Wait(); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}

			snap := collector.Snapshot()
			logStats("stream_summary", snap)
			if stats {
				errOut := cmd.ErrOrStderr()
				return printStats(output.NewWithFormat(errOut, output.FormatText, output.UseColor(errOut)), snap)
			}
			return nil
		},
	}

	data.register(cmd)
	cmd.Flags().BoolVar(&watch, "watch", false, "Reload the dataset file when it changes")
	cmd.Flags().BoolVar(&stats, "stats", false, "Print a traffic summary to stderr when stdin closes")

	return cmd
}
