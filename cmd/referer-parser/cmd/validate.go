package cmd

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/referer-parser/internal/dataset"
	"github.com/Aman-CERP/referer-parser/internal/output"
	"github.com/Aman-CERP/referer-parser/pkg/referer"
)

// mediumCount is the validate summary for one medium.
type mediumCount struct {
	Medium  referer.Medium `json:"medium"`
	Records int            `json:"records"`
	Domains int            `json:"domains"`
}

// validateReport is the JSON form of a validate run.
type validateReport struct {
	Path    string        `json:"path"`
	Valid   bool          `json:"valid"`
	Records int           `json:"records"`
	Domains int           `json:"domains"`
	Media   []mediumCount `json:"media"`
}

func newValidateCmd(_ *globals) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Check a referers dataset",
		Long: `Load and build a referers dataset and print record and domain counts
per medium. Without a file the bundled dataset is checked.

The command fails with a coded error when the file cannot be read or
decoded, or when a record is invalid: a record without domains, a search
record without parameters, or a non-search record with parameters.`,
		Example: `  referer-parser validate ./referers.yml
  referer-parser validate --json data/referers.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := dataset.EmbeddedName
			var (
				records []referer.Record
				err     error
			)
			if len(args) == 1 {
				path = args[0]
				records, err = dataset.LoadFile(path)
			} else {
				records, err = dataset.LoadEmbedded()
			}
			if err != nil {
				return err
			}

			table, err := dataset.BuildTable(records, nil)
			if err != nil {
				return err
			}

			report := summarize(path, records, table)

			if jsonOutput {
				return output.NewWithFormat(cmd.OutOrStdout(), output.FormatJSON, false).JSON(report)
			}

			out := newWriter(cmd, output.FormatText)
			rows := make([][]string, 0, len(report.Media))
			for _, m := range report.Media {
				rows = append(rows, []string{string(m.Medium), strconv.Itoa(m.Records), strconv.Itoa(m.Domains)})
			}
			out.Table([]string{"MEDIUM", "RECORDS", "DOMAINS"}, rows)
			out.Successf("%s is valid: %d records, %d domains", path, report.Records, report.Domains)
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the summary as JSON")

	return cmd
}

// summarize counts records as defined and domains as they ended up in the
// table, so overwritten domains count once under their final medium.
func summarize(path string, records []referer.Record, table *referer.Table) validateReport {
	report := validateReport{Path: path, Valid: true, Records: len(records), Domains: table.Len()}

	counts := make(map[referer.Medium]*mediumCount, len(referer.StoredMedia))
	for _, m := range referer.StoredMedia {
		c := &mediumCount{Medium: m}
		counts[m] = c
	}
	for _, rec := range records {
		if m, err := referer.ParseMedium(string(rec.Medium)); err == nil {
			counts[m].Records++
		}
	}
	for _, s := range table.Sources() {
		counts[s.Medium].Domains += len(s.Domains)
	}

	for _, m := range referer.StoredMedia {
		report.Media = append(report.Media, *counts[m])
	}
	return report
}
