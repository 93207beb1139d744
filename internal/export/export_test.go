package export_test

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rollcall/internal/export"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/profile"
	"github.com/agentstation/rollcall/pkg/records"
)

func readCSV(t *testing.T, data []byte) [][]string {
	t.Helper()
	rows, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestRecordsCSVUsesSortedUnion(t *testing.T) {
	recs := []*records.Record{
		records.FromPairs("myneta_candidate", "A", "sansad_name", "Shri A", "cases", 2),
		records.FromPairs("myneta_candidate", "B", "myneta_party", "X"),
	}

	var buf bytes.Buffer
	require.NoError(t, export.Records(&buf, export.FormatCSV, recs, nil))

	assert.Equal(t, [][]string{
		{"cases", "myneta_candidate", "myneta_party", "sansad_name"},
		{"2", "A", "", "Shri A"},
		{"", "B", "X", ""},
	}, readCSV(t, buf.Bytes()))
}

func TestRecordsJSONAndYAMLKeepOrder(t *testing.T) {
	recs := []*records.Record{records.FromPairs("z", "1", "a", nil)}

	var js bytes.Buffer
	require.NoError(t, export.Records(&js, export.FormatJSON, recs, nil))
	assert.JSONEq(t, `[{"z":"1","a":null}]`, js.String())
	assert.Less(t, strings.Index(js.String(), `"z"`), strings.Index(js.String(), `"a"`))

	var ys bytes.Buffer
	require.NoError(t, export.Records(&ys, export.FormatYAML, recs, nil))
	assert.Less(t, strings.Index(ys.String(), "z:"), strings.Index(ys.String(), "a:"))
	assert.Contains(t, ys.String(), `z: "1"`)
}

func TestProfilesCSV(t *testing.T) {
	profiles := []profile.Profile{
		{Name: "A", Title: "Member of Parliament, Goa", NetWorth: -0.42, Keywords: []string{"A", "Goa"}, Description: "**A** is\n## Terms"},
		{Name: "B"},
	}

	var buf bytes.Buffer
	require.NoError(t, export.Profiles(&buf, export.FormatCSV, profiles))

	rows := readCSV(t, buf.Bytes())
	require.Len(t, rows, 3)
	assert.Equal(t, export.ProfileColumns, rows[0])

	col := func(row []string, name string) string {
		for i, c := range export.ProfileColumns {
			if c == name {
				return row[i]
			}
		}
		t.Fatalf("no column %s", name)
		return ""
	}
	assert.Equal(t, "-0.42", col(rows[1], "networth"))
	assert.Equal(t, "**A** is\n## Terms", col(rows[1], "description"))

	var keywords []string
	require.NoError(t, json.Unmarshal([]byte(col(rows[1], "keywords")), &keywords))
	assert.Equal(t, []string{"A", "Goa"}, keywords)

	assert.Equal(t, "[]", col(rows[2], "keywords"))
	assert.Equal(t, "0", col(rows[2], "networth"))
}

func TestProfilesJSONSkipsIssues(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.Profiles(&buf, export.FormatJSON, []profile.Profile{{Name: "A", Issues: []string{"x"}}}))
	assert.NotContains(t, buf.String(), "Issues")
	assert.Contains(t, buf.String(), `"name": "A"`)
}

func TestFiles(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	recs := []*records.Record{records.FromPairs("a", "1")}

	path := filepath.Join(dir, "merged.csv")
	require.NoError(t, export.RecordsFile(path, recs, nil))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\n1\n", string(data))

	ppath := filepath.Join(dir, "profiles.yaml")
	require.NoError(t, export.ProfilesFile(ppath, []profile.Profile{{Name: "A"}}))
	data, err = os.ReadFile(ppath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: A")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	err = export.RecordsFile(filepath.Join(dir, "merged.xlsx"), recs, nil)
	assert.True(t, errors.IsValidationError(err))
	err = export.Records(&bytes.Buffer{}, "xml", recs, nil)
	assert.True(t, errors.IsValidationError(err))
}
