// Package serializer renders values as YAML, JSON, or flattened tables and
// writes them to stdout, files, or HTTP responses.
package serializer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Format selects the output encoding.
type Format string

const (
	// FormatJSON renders indented JSON.
	FormatJSON Format = "json"

	// FormatYAML renders YAML.
	FormatYAML Format = "yaml"

	// FormatTable renders a flattened FIELD/VALUE table for terminals.
	FormatTable Format = "table"
)

// IsUnknown reports whether the format is not one of the supported values.
func (f Format) IsUnknown() bool {
	switch f {
	case FormatJSON, FormatYAML, FormatTable:
		return false
	default:
		return true
	}
}

// SupportedFormats returns the supported format names.
func SupportedFormats() []string {
	return []string{string(FormatJSON), string(FormatYAML), string(FormatTable)}
}

// Serializer renders a value to its destination.
type Serializer interface {
	Serialize(ctx context.Context, data any) error
}

// Closer releases the underlying destination when it is a file.
type Closer interface {
	Close() error
}

// Writer serializes values to an io.Writer in a fixed format.
type Writer struct {
	format Format
	out    io.Writer
	file   *os.File
	closed bool
}

// NewWriter creates a Writer for the given format and destination. Unknown
// formats fall back to JSON so a misspelled --format still produces usable
// output.
func NewWriter(format Format, output io.Writer) *Writer {
	if format.IsUnknown() {
		format = FormatJSON
	}
	if output == nil {
		output = os.Stdout
	}
	return &Writer{format: format, out: output}
}

// NewStdoutWriter creates a Writer targeting stdout.
func NewStdoutWriter(format Format) *Writer {
	return NewWriter(format, os.Stdout)
}

// NewFileWriterOrStdout creates a Writer targeting the given path, or stdout
// when the path is empty, whitespace, or the conventional "-".
func NewFileWriterOrStdout(format Format, path string) (Serializer, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" || trimmed == StdoutURI {
		return NewStdoutWriter(format), nil
	}

	f, err := os.Create(trimmed)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", trimmed, err)
	}

	w := NewWriter(format, f)
	w.file = f
	return w, nil
}

// Serialize renders data in the Writer's format.
func (w *Writer) Serialize(ctx context.Context, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch w.format {
	case FormatYAML:
		enc := yaml.NewEncoder(w.out)
		enc.SetIndent(2)
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("failed to serialize to yaml: %w", err)
		}
		return enc.Close()
	case FormatTable:
		return w.serializeTable(data)
	default:
		enc := json.NewEncoder(w.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(data); err != nil {
			return fmt.Errorf("failed to serialize to json: %w", err)
		}
		return nil
	}
}

// Close closes the underlying file, if any. Closing a stdout-backed Writer
// or closing twice is a no-op.
func (w *Writer) Close() error {
	if w.closed || w.file == nil {
		return nil
	}
	w.closed = true
	return w.file.Close()
}

// serializeTable renders data as a two-column table of flattened field paths
// and values. Nested structs flatten to "Outer.Inner", slices to "[i]".
func (w *Writer) serializeTable(data any) error {
	rows := flatten("", reflect.ValueOf(data))

	tw := tabwriter.NewWriter(w.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tVALUE")

	if len(rows) == 0 {
		fmt.Fprintln(tw, "<empty>\t")
		return tw.Flush()
	}

	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%s\n", r.field, r.value)
	}
	return tw.Flush()
}

type tableRow struct {
	field string
	value string
}

func flatten(prefix string, v reflect.Value) []tableRow {
	if !v.IsValid() {
		return leaf(prefix, "<nil>")
	}

	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return leaf(prefix, "<nil>")
		}
		return flatten(prefix, v.Elem())

	case reflect.Struct:
		var rows []tableRow
		t := v.Type()
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if !f.IsExported() {
				continue
			}
			rows = append(rows, flatten(joinField(prefix, f.Name), v.Field(i))...)
		}
		return rows

	case reflect.Map:
		keys := make([]string, 0, v.Len())
		byKey := make(map[string]reflect.Value, v.Len())
		for _, k := range v.MapKeys() {
			ks := fmt.Sprintf("%v", k.Interface())
			keys = append(keys, ks)
			byKey[ks] = v.MapIndex(k)
		}
		sort.Strings(keys)
		var rows []tableRow
		for _, k := range keys {
			rows = append(rows, flatten(joinField(prefix, k), byKey[k])...)
		}
		return rows

	case reflect.Slice, reflect.Array:
		if v.Kind() == reflect.Slice && v.Type().Elem().Kind() == reflect.Uint8 {
			return leaf(prefix, fmt.Sprintf("%d bytes", v.Len()))
		}
		var rows []tableRow
		for i := 0; i < v.Len(); i++ {
			rows = append(rows, flatten(fmt.Sprintf("%s[%d]", prefix, i), v.Index(i))...)
		}
		return rows

	default:
		return leaf(prefix, fmt.Sprintf("%v", v.Interface()))
	}
}

func joinField(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return prefix + "." + name
}

func leaf(field, value string) []tableRow {
	if field == "" {
		field = "<value>"
	}
	return []tableRow{{field: field, value: value}}
}
