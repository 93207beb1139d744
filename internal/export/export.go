// Package export writes merged records and profiles as CSV, JSON or YAML.
//
// Record exports use the sorted union of field names as their schema; a
// record missing a field gets an empty cell. Profile CSV exports encode the
// keyword list as a JSON array.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/rollcall/pkg/constants"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/profile"
	"github.com/agentstation/rollcall/pkg/records"
)

// Format is an export encoding.
type Format string

// Supported export formats.
const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatOf picks the format from the file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", errors.NewValidationError("output", path, "unknown file extension, expected .csv, .json, .yaml or .yml")
	}
}

// ProfileColumns are the CSV columns of a profile export, in order.
var ProfileColumns = []string{
	"name", "title", "description", "email", "twitter", "facebook", "instagram",
	"linkedin", "networth", "keywords", "city", "state", "party", "photo_file",
}

// Records writes recs. An empty schema is computed with records.Schema.
func Records(w io.Writer, format Format, recs []*records.Record, schema []string) error {
	if len(schema) == 0 {
		schema = records.Schema(recs)
	}
	switch format {
	case FormatCSV:
		return recordsCSV(w, recs, schema)
	case FormatJSON:
		return writeJSON(w, recs)
	case FormatYAML:
		rows := make([]yaml.MapSlice, len(recs))
		for i, rec := range recs {
			rows[i] = MapSlice(rec)
		}
		return writeYAML(w, rows)
	default:
		return errors.NewValidationError("format", format, "must be one of: csv, json, yaml")
	}
}

// Profiles writes profiles.
func Profiles(w io.Writer, format Format, profiles []profile.Profile) error {
	switch format {
	case FormatCSV:
		return profilesCSV(w, profiles)
	case FormatJSON:
		return writeJSON(w, profiles)
	case FormatYAML:
		return writeYAML(w, profiles)
	default:
		return errors.NewValidationError("format", format, "must be one of: csv, json, yaml")
	}
}

// RecordsFile writes recs to path in the format given by its extension.
func RecordsFile(path string, recs []*records.Record, schema []string) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error {
		return Records(w, format, recs, schema)
	})
}

// ProfilesFile writes profiles to path in the format given by its extension.
func ProfilesFile(path string, profiles []profile.Profile) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	return writeFile(path, func(w io.Writer) error {
		return Profiles(w, format, profiles)
	})
}

// MapSlice converts a record into an ordered YAML mapping.
func MapSlice(rec *records.Record) yaml.MapSlice {
	out := make(yaml.MapSlice, 0, rec.Len())
	rec.Each(func(name string, v records.Value) {
		val, _ := v.MarshalYAML()
		out = append(out, yaml.MapItem{Key: name, Value: val})
	})
	return out
}

func recordsCSV(w io.Writer, recs []*records.Record, schema []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(schema); err != nil {
		return err
	}
	row := make([]string, len(schema))
	for _, rec := range recs {
		for i, name := range schema {
			row[i] = rec.Text(name)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func profilesCSV(w io.Writer, profiles []profile.Profile) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ProfileColumns); err != nil {
		return err
	}
	for _, p := range profiles {
		keywords, err := json.Marshal(p.Keywords)
		if err != nil {
			return err
		}
		if p.Keywords == nil {
			keywords = []byte("[]")
		}
		row := []string{
			p.Name, p.Title, p.Description, p.Email, p.Twitter, p.Facebook, p.Instagram,
			p.LinkedIn, strconv.FormatFloat(p.NetWorth, 'f', -1, 64), string(keywords),
			p.City, p.State, p.Party, p.PhotoFile,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func writeYAML(w io.Writer, v any) error {
	data, err := yaml.MarshalWithOptions(v, yaml.Indent(2), yaml.IndentSequence(false))
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// writeFile writes through a temporary file renamed into place, so readers
// never see a partial export.
func writeFile(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, constants.DirPermissions); err != nil {
		return errors.WrapIO("create", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return errors.WrapIO("create", path, err)
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck // gone after a successful rename

	if err := write(tmp); err != nil {
		_ = tmp.Close()
		return errors.WrapIO("write", path, err)
	}
	if err := tmp.Chmod(constants.FilePermissions); err != nil {
		_ = tmp.Close()
		return errors.WrapIO("chmod", path, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapIO("close", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.WrapIO("rename", path, err)
	}
	return nil
}
