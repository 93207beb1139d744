package local

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/records"
)

// decodeJSON reads a JSON array of objects, keeping the key order of each
// object. Nested arrays and objects are kept as compact JSON text.
func decodeJSON(data []byte) ([]*records.Record, error) {
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	recs := make([]*records.Record, 0, len(rows))
	for i, row := range rows {
		rec, err := decodeJSONObject(row)
		if err != nil {
			return nil, errors.RecordError(i+1, err)
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

func decodeJSONObject(data json.RawMessage) (*records.Record, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return nil, fmt.Errorf("expected an object, got %v", tok)
	}

	rec := records.New(8)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		v, err := jsonValue(raw)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", name, err)
		}
		rec.Set(name, v)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return rec, nil
}

func jsonValue(raw json.RawMessage) (records.Value, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '[') {
		var buf bytes.Buffer
		if err := json.Compact(&buf, trimmed); err != nil {
			return records.Absent(), err
		}
		return records.String(buf.String()), nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var x any
	if err := dec.Decode(&x); err != nil {
		return records.Absent(), err
	}
	return records.FromAny(x), nil
}

// decodeYAML reads a YAML sequence of mappings, keeping the key order of
// each mapping.
func decodeYAML(data []byte) ([]*records.Record, error) {
	var rows []yaml.MapSlice
	if err := yaml.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	recs := make([]*records.Record, 0, len(rows))
	for _, row := range rows {
		rec := records.New(len(row))
		for _, item := range row {
			rec.Set(fmt.Sprint(item.Key), records.FromAny(item.Value))
		}
		recs = append(recs, rec)
	}
	return recs, nil
}

// decodeCSV reads a CSV file with a header row. Every cell is text.
func decodeCSV(ctx context.Context, data []byte) ([]*records.Record, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	// strip a UTF-8 byte order mark
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	var recs []*records.Record
	for line := 2; ; line++ {
		if line%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(row) > len(header) {
			return nil, errors.RecordError(line-1, fmt.Errorf("%d fields, header has %d", len(row), len(header)))
		}
		rec := records.New(len(header))
		for i, name := range header {
			if i < len(row) {
				rec.Set(name, records.String(row[i]))
			} else {
				rec.Set(name, records.Absent())
			}
		}
		recs = append(recs, rec)
	}
	return recs, nil
}
