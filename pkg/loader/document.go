package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/oakwood-commons/colfit/pkg/layout"
)

// ErrNoColumns is returned for a document that defines no columns.
var ErrNoColumns = errors.New("document has no columns")

// Document is a set of columns with optional saved overrides and sample
// rows for previews.
type Document struct {
	Columns   []layout.Column  `json:"columns" yaml:"columns" toml:"columns"`
	Overrides layout.Overrides `json:"overrides,omitempty" yaml:"overrides,omitempty" toml:"overrides,omitempty"`
	Rows      []map[string]any `json:"rows,omitempty" yaml:"rows,omitempty" toml:"rows,omitempty"`

	// Format is the detected input format.
	Format Format `json:"-" yaml:"-" toml:"-"`
}

// LoadDocument parses a column document. The input is either an object
// with a columns list or a bare list of columns; NDJSON and multi-document
// YAML carry one column per document.
func LoadDocument(input string) (*Document, error) {
	docs, format, err := decodeAll(input)
	if err != nil {
		return nil, err
	}

	var raw any
	switch {
	case len(docs) == 1 && isDocumentObject(docs[0]):
		raw = docs[0]
	case len(docs) == 1:
		if _, isList := docs[0].([]any); isList {
			raw = map[string]any{"columns": docs[0]}
		} else {
			raw = map[string]any{"columns": docs}
		}
	default:
		raw = map[string]any{"columns": docs}
	}

	data, err := json.Marshal(normalize(raw))
	if err != nil {
		return nil, fmt.Errorf("cannot re-encode %s document: %w", format, err)
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid %s column document: %w", format, err)
	}
	if len(doc.Columns) == 0 {
		return nil, ErrNoColumns
	}
	doc.Format = format
	return &doc, nil
}

// LoadDocumentBytes parses data with LoadDocument.
func LoadDocumentBytes(data []byte) (*Document, error) {
	return LoadDocument(string(data))
}

// LoadFile reads and parses a column document from path.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := LoadDocumentBytes(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return doc, nil
}

func isDocumentObject(v any) bool {
	m, ok := v.(map[string]any)
	if !ok {
		return false
	}
	_, hasColumns := m["columns"]
	return hasColumns
}

// Validate reports columns without a field, duplicate fields and
// overrides for unknown fields. The allocator tolerates all of them;
// Validate exists for callers that want to reject such documents.
func (d *Document) Validate() error {
	var errs []error
	seen := make(map[string]int, len(d.Columns))
	for i, c := range d.Columns {
		if c.Field == "" {
			errs = append(errs, fmt.Errorf("column %d: missing field", i))
			continue
		}
		if first, dup := seen[c.Field]; dup {
			errs = append(errs, fmt.Errorf("column %d: duplicate field %q (first at %d)", i, c.Field, first))
			continue
		}
		seen[c.Field] = i
	}
	for f := range d.Overrides {
		if _, ok := seen[f]; !ok {
			errs = append(errs, fmt.Errorf("override for unknown field %q", f))
		}
	}
	return errors.Join(errs...)
}
