// Package dataset loads referer datasets and builds lookup tables from them.
//
// A dataset maps medium names to source names to a source definition:
//
//	search:
//	  Google:
//	    parameters: [q]
//	    domains: [google.com, www.google.com]
//
// Both YAML and JSON encodings are accepted. Records are produced in document
// order, so a domain listed by two sources keeps the later definition.
package dataset

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/referer-parser/configs"
	perrors "github.com/Aman-CERP/referer-parser/internal/errors"
	"github.com/Aman-CERP/referer-parser/pkg/referer"
)

// EmbeddedName is the name reported for the dataset compiled into the binary.
const EmbeddedName = "<embedded>"

var (
	// ErrEmptyDataset is returned when a dataset document has no content.
	ErrEmptyDataset = errors.New("dataset is empty")

	// ErrEmptySourceName is returned for a source defined under a blank key.
	ErrEmptySourceName = errors.New("source name is empty")
)

// Format is a dataset encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks the encoding from the file extension.
// Anything other than .json is treated as YAML.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// sourceDef is the per-source body shared by both encodings.
// sourceDef keeps a nil Parameters when the key is absent or null, and an
// empty non-nil slice for an explicit empty list.
type sourceDef struct {
	Domains    []string `yaml:"domains" json:"domains"`
	Parameters []string `yaml:"parameters" json:"parameters"`
}

// Decode parses data in the given format into records.
func Decode(data []byte, format Format) ([]referer.Record, error) {
	switch format {
	case FormatJSON:
		return DecodeJSON(data)
	case FormatYAML, "":
		return DecodeYAML(data)
	default:
		return nil, fmt.Errorf("unsupported dataset format %q", format)
	}
}

// DecodeYAML parses a YAML dataset.
func DecodeYAML(data []byte) ([]referer.Record, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return nil, ErrEmptyDataset
		}
		root = root.Content[0]
	}
	if root.Kind == 0 {
		return nil, ErrEmptyDataset
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("line %d: dataset root must be a mapping of media", root.Line)
	}

	var records []referer.Record
	for i := 0; i+1 < len(root.Content); i += 2 {
		medium := root.Content[i].Value
		sources := root.Content[i+1]

		if isNull(sources) {
			continue
		}
		if sources.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: medium %q must be a mapping of sources", sources.Line, medium)
		}

		for j := 0; j+1 < len(sources.Content); j += 2 {
			name := sources.Content[j].Value
			if strings.TrimSpace(name) == "" {
				return nil, fmt.Errorf("line %d: medium %q: %w", sources.Content[j].Line, medium, ErrEmptySourceName)
			}
			var def sourceDef
			if err := sources.Content[j+1].Decode(&def); err != nil {
				return nil, fmt.Errorf("line %d: source %q: %w", sources.Content[j+1].Line, name, err)
			}
			records = append(records, def.record(medium, name))
		}
	}
	return records, nil
}

func isNull(n *yaml.Node) bool {
	return n.Kind == yaml.ScalarNode && n.Tag == "!!null"
}

// DecodeJSON parses a JSON dataset. Object keys are read with a token
// decoder so that source order survives.
func DecodeJSON(data []byte) ([]referer.Record, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyDataset
	}

	media, err := orderedObject(data)
	if err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}

	var records []referer.Record
	for _, m := range media {
		if string(bytes.TrimSpace(m.value)) == "null" {
			continue
		}
		sources, err := orderedObject(m.value)
		if err != nil {
			return nil, fmt.Errorf("decode json: medium %q: %w", m.key, err)
		}
		for _, s := range sources {
			if strings.TrimSpace(s.key) == "" {
				return nil, fmt.Errorf("decode json: medium %q: %w", m.key, ErrEmptySourceName)
			}
			var def sourceDef
			if err := json.Unmarshal(s.value, &def); err != nil {
				return nil, fmt.Errorf("decode json: source %q: %w", s.key, err)
			}
			records = append(records, def.record(m.key, s.key))
		}
	}
	return records, nil
}

type member struct {
	key   string
	value json.RawMessage
}

// orderedObject splits a JSON object into its members in document order.
func orderedObject(data []byte) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, fmt.Errorf("expected object, got %v", tok)
	}

	var out []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("expected object key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("key %q: %w", key, err)
		}
		out = append(out, member{key: key, value: raw})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return out, nil
}

func (d sourceDef) record(medium, source string) referer.Record {
	return referer.Record{
		Medium:     referer.Medium(medium),
		Source:     source,
		Domains:    d.Domains,
		Parameters: d.Parameters,
	}
}

// LoadFile reads and decodes the dataset at path.
func LoadFile(path string) ([]referer.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, readError(path, err)
	}

	records, err := Decode(data, FormatFromPath(path))
	if err != nil {
		return nil, perrors.DataCorruptError(path, err).
			WithSuggestion("Check the file against the medium -> source -> {domains, parameters} layout")
	}

	slog.Debug("dataset_loaded", slog.String("path", path), slog.Int("records", len(records)))
	return records, nil
}

func readError(path string, err error) error {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return perrors.DataUnavailableError(path, err).
			WithSuggestion("Check data.path or REFPARSER_DATA_PATH, or unset it to use the embedded dataset")
	case errors.Is(err, fs.ErrPermission):
		return perrors.New(perrors.ErrCodeDataPermission, fmt.Sprintf("permission denied reading %s", path), err).
			WithDetail("path", path)
	default:
		return perrors.DataUnavailableError(path, err)
	}
}

// LoadEmbedded decodes the dataset compiled into the binary.
func LoadEmbedded() ([]referer.Record, error) {
	records, err := DecodeYAML(configs.Referers)
	if err != nil {
		return nil, perrors.DataCorruptError(EmbeddedName, err)
	}
	return records, nil
}

// BuildTable builds a table from records, then registers internalDomains as
// internal entries. Internal domains are applied last so they override any
// dataset definition of the same domain.
func BuildTable(records []referer.Record, internalDomains []string) (*referer.Table, error) {
	all := records
	if len(internalDomains) > 0 {
		all = make([]referer.Record, 0, len(records)+1)
		all = append(all, records...)
		all = append(all, referer.Record{
			Medium:  referer.MediumInternal,
			Domains: internalDomains,
		})
	}

	table, err := referer.Build(all)
	if err != nil {
		pe := perrors.New(perrors.ErrCodeInvalidRecord, "invalid referer record", err)

		var recErr *referer.RecordError
		if errors.As(err, &recErr) {
			pe.WithDetail("medium", string(recErr.Medium)).
				WithDetail("source", recErr.Source).
				WithDetail("index", fmt.Sprint(recErr.Index))
		}
		return nil, pe
	}
	return table, nil
}

// defaultTable is built from the embedded dataset at most once per process.
var defaultTable = sync.OnceValues(func() (*referer.Table, error) {
	records, err := LoadEmbedded()
	if err != nil {
		return nil, err
	}
	return BuildTable(records, nil)
})

// Default returns the table built from the embedded dataset. Every call
// returns the same table.
func Default() (*referer.Table, error) {
	return defaultTable()
}

// Open builds a table from the dataset at path, or from the embedded dataset
// when path is empty. With no path and no internal domains the shared
// Default table is returned.
func Open(path string, internalDomains []string) (*referer.Table, error) {
	if path == "" && len(internalDomains) == 0 {
		return Default()
	}

	var (
		records []referer.Record
		err     error
	)
	if path == "" {
		records, err = LoadEmbedded()
	} else {
		records, err = LoadFile(path)
	}
	if err != nil {
		return nil, err
	}

	return BuildTable(records, internalDomains)
}
