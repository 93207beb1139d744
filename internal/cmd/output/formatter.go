// Package output provides formatters for command output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/mattn/go-isatty"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/agentstation/rollcall/pkg/errors"
)

// Format types for output.
type Format string

const (
	// FormatTable represents table output format.
	FormatTable Format = "table"
	// FormatJSON represents JSON output format.
	FormatJSON Format = "json"
	// FormatYAML represents YAML output format.
	FormatYAML Format = "yaml"
)

// Align is the alignment of a table column.
type Align int

// Column alignments.
const (
	AlignDefault Align = iota
	AlignLeft
	AlignCenter
	AlignRight
)

// Formatter interface for all output types.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// NewFormatter creates appropriate formatter based on format.
func NewFormatter(format Format) Formatter {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Indent: "  "}
	case FormatYAML:
		return &YAMLFormatter{}
	default:
		return &TableFormatter{}
	}
}

// JSONFormatter outputs JSON format.
type JSONFormatter struct {
	Indent string
}

// Format implements the Formatter interface for JSON output.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	if f.Indent != "" {
		encoder.SetIndent("", f.Indent)
	}
	return encoder.Encode(data)
}

// YAMLFormatter outputs YAML format.
type YAMLFormatter struct{}

// Format outputs data in YAML format.
func (f *YAMLFormatter) Format(w io.Writer, data any) error {
	yamlData, err := yaml.MarshalWithOptions(data,
		yaml.Indent(2),
		yaml.IndentSequence(false),
	)
	if err != nil {
		return err
	}
	_, err = w.Write(yamlData)
	return err
}

// TableFormatter outputs table format.
type TableFormatter struct{}

// Format outputs data in table format. Values that are not Data, a struct
// or a slice of structs are written as JSON.
func (f *TableFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case Data:
		return f.formatTable(w, v)
	case *Data:
		return f.formatTable(w, *v)
	}
	if tableData := f.convertToTableData(data); tableData != nil {
		return f.formatTable(w, *tableData)
	}
	return (&JSONFormatter{Indent: "  "}).Format(w, data)
}

var twAligns = map[Align]tw.Align{
	AlignDefault: tw.Skip,
	AlignLeft:    tw.AlignLeft,
	AlignCenter:  tw.AlignCenter,
	AlignRight:   tw.AlignRight,
}

func (f *TableFormatter) formatTable(w io.Writer, data Data) error {
	config := tablewriter.Config{}
	if len(data.ColumnAlignment) > 0 {
		perColumn := make([]tw.Align, len(data.ColumnAlignment))
		for i, align := range data.ColumnAlignment {
			perColumn[i] = twAligns[align]
		}
		config.Header.Alignment = tw.CellAlignment{PerColumn: perColumn}
		config.Row.Alignment = tw.CellAlignment{PerColumn: perColumn}
	}
	table := tablewriter.NewTable(w, tablewriter.WithConfig(config))

	if len(data.Headers) > 0 {
		table.Header(toAny(data.Headers)...)
	}
	for _, row := range data.Rows {
		if err := table.Append(toAny(row)...); err != nil {
			return err
		}
	}
	return table.Render()
}

func toAny(cells []string) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}

// Data represents data formatted for table output.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// DetectFormat auto-detects format based on terminal and environment.
func DetectFormat(explicitFormat string, w io.Writer) Format {
	// Use explicit format if provided
	if explicitFormat != "" {
		return Format(strings.ToLower(explicitFormat))
	}

	// Check if output is a terminal
	if f, ok := w.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return FormatTable
	}

	// Default to JSON for pipes/redirects
	return FormatJSON
}

// ParseFormat converts string to Format with validation.
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(s))
	switch format {
	case FormatTable, FormatJSON, FormatYAML, "":
		return format, nil
	default:
		return "", errors.NewValidationError("format", s, "must be one of: table, json, yaml")
	}
}

// Resolve validates an explicit format and falls back to DetectFormat when
// none was given.
func Resolve(explicitFormat string, w io.Writer) (Format, error) {
	format, err := ParseFormat(explicitFormat)
	if err != nil {
		return "", err
	}
	return DetectFormat(string(format), w), nil
}

// convertToTableData converts a struct, or a slice of structs, to Data.
func (f *TableFormatter) convertToTableData(data any) *Data {
	v := reflect.Indirect(reflect.ValueOf(data))

	switch {
	case v.Kind() == reflect.Slice && v.Len() > 0 && reflect.Indirect(v.Index(0)).Kind() == reflect.Struct:
		elemType := reflect.Indirect(v.Index(0)).Type()
		fields := visibleFields(elemType)
		out := &Data{Headers: make([]string, len(fields))}
		for i, field := range fields {
			out.Headers[i] = columnName(field)
		}
		for i := 0; i < v.Len(); i++ {
			elem := reflect.Indirect(v.Index(i))
			row := make([]string, len(fields))
			for j, field := range fields {
				row[j] = cell(elem.FieldByIndex(field.Index))
			}
			out.Rows = append(out.Rows, row)
		}
		return out

	case v.Kind() == reflect.Struct:
		// a single struct becomes a key-value table
		out := &Data{Headers: []string{"Property", "Value"}}
		for _, field := range visibleFields(v.Type()) {
			out.Rows = append(out.Rows, []string{columnName(field), cell(v.FieldByIndex(field.Index))})
		}
		return out
	}

	return nil
}

// visibleFields returns the exported fields not tagged json:"-".
func visibleFields(t reflect.Type) []reflect.StructField {
	var fields []reflect.StructField
	for _, field := range reflect.VisibleFields(t) {
		if !field.IsExported() || field.Anonymous || field.Tag.Get("json") == "-" {
			continue
		}
		fields = append(fields, field)
	}
	return fields
}

// columnName title-cases the json tag of field, or returns its name.
func columnName(field reflect.StructField) string {
	name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
	if name == "" {
		return field.Name
	}
	return cases.Title(language.English).String(strings.ReplaceAll(name, "_", " "))
}

func cell(v reflect.Value) string {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return strconv.FormatFloat(v.Float(), 'f', -1, 64)
	case reflect.Slice:
		if v.Type().Elem().Kind() == reflect.String {
			return strings.Join(v.Interface().([]string), ", ")
		}
	}
	return fmt.Sprintf("%v", v.Interface())
}
