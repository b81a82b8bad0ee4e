package cmd

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/Aman-CERP/referer-parser/internal/output"
	"github.com/Aman-CERP/referer-parser/internal/telemetry"
	"github.com/Aman-CERP/referer-parser/pkg/referer"
)

// statsTop is how many sources and terms the summary lists.
const statsTop = 10

// printStats writes a traffic summary. JSON formats get the raw snapshot.
func printStats(w *output.Writer, snap *telemetry.Snapshot) error {
	if w.Format() != output.FormatText {
		return w.JSON(snap)
	}

	w.Newline()
	w.Statusf("#", "%d referers, %d unparsed, %.1f%% matched a source",
		snap.Total, snap.Unparsed, snap.KnownPercentage())

	order := append(slices.Clone(referer.StoredMedia), referer.MediumUnknown)
	media := make([][]string, 0, len(order))
	for _, m := range order {
		if n := snap.Media[m]; n > 0 {
			media = append(media, []string{string(m), strconv.FormatInt(n, 10)})
		}
	}
	if len(media) > 0 {
		w.Table([]string{"MEDIUM", "REFERERS"}, media)
	}

	if len(snap.TopSources) > 0 {
		rows := make([][]string, 0, statsTop)
		for _, s := range snap.TopSources[:min(statsTop, len(snap.TopSources))] {
			rows = append(rows, []string{s.Source, string(s.Medium), strconv.FormatInt(s.Count, 10)})
		}
		w.Table([]string{"SOURCE", "MEDIUM", "REFERERS"}, rows)
	}

	if len(snap.TopTerms) > 0 {
		rows := make([][]string, 0, statsTop)
		for _, t := range snap.TopTerms[:min(statsTop, len(snap.TopTerms))] {
			rows = append(rows, []string{strconv.Quote(t.Term), strconv.FormatInt(t.Count, 10)})
		}
		w.Table([]string{"TERM", "COUNT"}, rows)
	}

	if len(snap.RecentUnknown) > 0 {
		w.Status("", fmt.Sprintf("Recent unknown hosts: %v", snap.RecentUnknown))
	}
	return nil
}

// logStats records the summary in the log.
func logStats(msg string, snap *telemetry.Snapshot) {
	slog.Info(msg,
		slog.Int64("total", snap.Total),
		slog.Int64("unparsed", snap.Unparsed),
		slog.Float64("known_pct", snap.KnownPercentage()),
		slog.Int("sources", len(snap.TopSources)))
}
