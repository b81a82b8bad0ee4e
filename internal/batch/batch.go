// Package batch classifies many referer URLs in parallel.
package batch

import (
	"context"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/referer-parser/pkg/referer"
)

// Result is the outcome for one input URL. Err is set when the URL could not
// be parsed; Classification is then unknown.
type Result struct {
	URL            string
	Classification referer.Classification
	Err            error
}

// Classify classifies urls with c using up to workers goroutines and returns
// one result per URL in input order. A non-positive workers value selects
// runtime.NumCPU(). Per-URL parse failures are reported in Result.Err and do
// not stop the batch; only cancellation of ctx does.
func Classify(ctx context.Context, c referer.Classifier, urls []string, workers int) ([]Result, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(urls) {
		workers = max(len(urls), 1)
	}

	start := time.Now()
	results := make([]Result, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, raw := range urls {
		if err := gctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			cl, err := referer.ClassifyURL(c, raw)
			results[i] = Result{URL: raw, Classification: cl, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	slog.Debug("batch_classify_complete",
		slog.Int("urls", len(urls)),
		slog.Int("workers", workers),
		slog.Duration("duration", time.Since(start)))

	return results, nil
}
