// Package output renders referer classifications and CLI status messages.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/Aman-CERP/referer-parser/pkg/referer"
)

// Format is an output format.
type Format string

const (
	FormatText  Format = "text"
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatJSONL:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use text, json or jsonl)", s)
	}
}

// Record is the JSON form of one classified input.
type Record struct {
	URL    string         `json:"url"`
	Medium referer.Medium `json:"medium"`
	Source string         `json:"source,omitempty"`
	Term   string         `json:"term,omitempty"`
	Error  string         `json:"error,omitempty"`
}

// NewRecord builds the record for input. A non-nil err marks the input as
// unparseable and the classification is reported as unknown.
func NewRecord(input string, c referer.Classification, err error) Record {
	if err != nil {
		return Record{URL: input, Medium: referer.MediumUnknown, Error: err.Error()}
	}
	return Record{URL: input, Medium: c.Medium, Source: c.Source, Term: c.Term}
}

// Writer provides formatted output for the CLI.
type Writer struct {
	out     io.Writer
	format  Format
	styles  Styles
	pending []Record
}

// New creates a text Writer. Colors are used when out is a terminal and
// NO_COLOR is unset.
func New(out io.Writer) *Writer {
	return NewWithFormat(out, FormatText, UseColor(out))
}

// NewWithFormat creates a Writer for the given format.
func NewWithFormat(out io.Writer, format Format, color bool) *Writer {
	styles := NoColorStyles()
	if color && format == FormatText {
		styles = DefaultStyles()
	}
	return &Writer{out: out, format: format, styles: styles}
}

// Format returns the writer's format.
func (w *Writer) Format() Format {
	return w.format
}

// Classification writes one classified input. In JSON format records are
// buffered until Flush; text and jsonl are written immediately.
func (w *Writer) Classification(input string, c referer.Classification, err error) error {
	rec := NewRecord(input, c, err)

	switch w.format {
	case FormatJSON:
		w.pending = append(w.pending, rec)
		return nil
	case FormatJSONL:
		return w.jsonLine(rec)
	default:
		_, werr := fmt.Fprintln(w.out, w.textLine(rec))
		return werr
	}
}

// Flush writes buffered JSON records as one array.
func (w *Writer) Flush() error {
	if w.format != FormatJSON {
		return nil
	}
	records := w.pending
	if records == nil {
		records = []Record{}
	}
	w.pending = nil
	return w.JSON(records)
}

// JSON writes v as indented JSON.
func (w *Writer) JSON(v any) error {
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (w *Writer) jsonLine(v any) error {
	return json.NewEncoder(w.out).Encode(v)
}

// textLine renders "medium  Source  "term"  url".
func (w *Writer) textLine(rec Record) string {
	medium := w.styles.Medium(rec.Medium).Render(fmt.Sprintf("%-8s", rec.Medium))

	if rec.Error != "" {
		return fmt.Sprintf("%s %s %s", w.styles.Error.Render(fmt.Sprintf("%-8s", "error")),
			rec.URL, w.styles.Dim.Render("("+rec.Error+")"))
	}

	parts := []string{medium}
	if rec.Source != "" {
		parts = append(parts, w.styles.Source.Render(rec.Source))
	}
	if rec.Term != "" {
		parts = append(parts, w.styles.Term.Render(strconv.Quote(rec.Term)))
	}
	parts = append(parts, w.styles.Dim.Render(rec.URL))
	return strings.Join(parts, " ")
}

// Sources writes source summaries.
func (w *Writer) Sources(sources []referer.SourceInfo) error {
	switch w.format {
	case FormatJSON:
		if sources == nil {
			sources = []referer.SourceInfo{}
		}
		return w.JSON(sources)
	case FormatJSONL:
		for _, s := range sources {
			if err := w.jsonLine(s); err != nil {
				return err
			}
		}
		return nil
	}

	rows := make([][]string, 0, len(sources))
	for _, s := range sources {
		rows = append(rows, []string{
			string(s.Medium),
			s.Source,
			strings.Join(s.Parameters, ","),
			strings.Join(s.Domains, " "),
		})
	}
	w.Table([]string{"MEDIUM", "SOURCE", "PARAMETERS", "DOMAINS"}, rows)
	return nil
}

// Table renders rows under headers with a lipgloss table.
func (w *Writer) Table(headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.HiddenBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return w.styles.Header.PaddingRight(1)
			}
			return lipgloss.NewStyle().PaddingRight(1)
		})
	_, _ = fmt.Fprintln(w.out, t.String())
}

// Status prints a status message with an icon.
// Errors from writing are intentionally ignored for console output.
func (w *Writer) Status(icon, msg string) {
	if icon != "" {
		_, _ = fmt.Fprintf(w.out, "%s %s\n", icon, msg)
	} else {
		_, _ = fmt.Fprintf(w.out, "  %s\n", msg)
	}
}

// Statusf prints a formatted status message with an icon.
func (w *Writer) Statusf(icon, format string, args ...any) {
	w.Status(icon, fmt.Sprintf(format, args...))
}

// Success prints a success message with a check mark.
func (w *Writer) Success(msg string) {
	w.Status(w.styles.Success.Render("✓"), msg)
}

// Successf prints a formatted success message.
func (w *Writer) Successf(format string, args ...any) {
	w.Success(fmt.Sprintf(format, args...))
}

// Warning prints a warning message.
func (w *Writer) Warning(msg string) {
	w.Status(w.styles.Warning.Render("!"), msg)
}

// Warningf prints a formatted warning message.
func (w *Writer) Warningf(format string, args ...any) {
	w.Warning(fmt.Sprintf(format, args...))
}

// Error prints an error message.
func (w *Writer) Error(msg string) {
	w.Status(w.styles.Error.Render("✗"), msg)
}

// Errorf prints a formatted error message.
func (w *Writer) Errorf(format string, args ...any) {
	w.Error(fmt.Sprintf(format, args...))
}

// Code prints a block with indentation.
func (w *Writer) Code(content string) {
	_, _ = fmt.Fprintln(w.out)
	for _, line := range strings.Split(content, "\n") {
		_, _ = fmt.Fprintf(w.out, "  %s\n", line)
	}
	_, _ = fmt.Fprintln(w.out)
}

// Newline prints an empty line.
func (w *Writer) Newline() {
	_, _ = fmt.Fprintln(w.out)
}
