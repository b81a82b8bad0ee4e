package cmd

import (
	"bufio"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/referer-parser/internal/config"
	"github.com/Aman-CERP/referer-parser/internal/dataset"
	perrors "github.com/Aman-CERP/referer-parser/internal/errors"
	"github.com/Aman-CERP/referer-parser/internal/output"
	"github.com/Aman-CERP/referer-parser/pkg/referer"
)

// dataFlags selects the dataset for commands that classify.
type dataFlags struct {
	path     string
	internal []string
}

func (f *dataFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.path, "data", "", "Referers dataset file (.yml, .yaml or .json); default is the bundled dataset")
	cmd.Flags().StringSliceVar(&f.internal, "internal", nil, "Domain to classify as internal (repeatable)")
}

// resolve applies the flags over cfg. Flags replace config values.
func (f *dataFlags) resolve(cmd *cobra.Command, cfg *config.Config) (path string, internal []string) {
	path, internal = cfg.Data.Path, cfg.Data.InternalDomains
	if cmd.Flags().Changed("data") {
		path = f.path
	}
	if cmd.Flags().Changed("internal") {
		internal = f.internal
	}
	return path, internal
}

// openTable builds the table selected by the flags and config.
func (f *dataFlags) openTable(cmd *cobra.Command, cfg *config.Config) (*referer.Table, error) {
	path, internal := f.resolve(cmd, cfg)
	return dataset.Open(path, internal)
}

// resolveFormat returns the --format flag if set, else the configured format.
func resolveFormat(cmd *cobra.Command, flag string, cfg *config.Config) (output.Format, error) {
	value := cfg.Classify.Format
	if cmd.Flags().Changed("format") {
		value = flag
	}
	format, err := output.ParseFormat(value)
	if err != nil {
		return "", perrors.New(perrors.ErrCodeInvalidFormat, "invalid output format", err).
			WithSuggestion("Use --format text, json or jsonl")
	}
	return format, nil
}

// newWriter creates an output writer, with color only for terminals.
func newWriter(cmd *cobra.Command, format output.Format) *output.Writer {
	out := cmd.OutOrStdout()
	return output.NewWithFormat(out, format, output.UseColor(out))
}

// readLines returns the non-blank lines of r, trimmed.
func readLines(r io.Reader) ([]string, error) {
	var lines []string
	err := scanLines(r, func(line string) error {
		lines = append(lines, line)
		return nil
	})
	return lines, err
}

// scanLines calls fn for each non-blank trimmed line of r.
func scanLines(r io.Reader, fn func(string) error) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if err := fn(line); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return perrors.New(perrors.ErrCodeInvalidInput, "failed to read input", err)
	}
	return nil
}
