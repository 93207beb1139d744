package merge_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rollcall/cmd/rollcall/cmd/merge"
	"github.com/agentstation/rollcall/internal/appcontext"
	"github.com/agentstation/rollcall/internal/cmd/output"
	"github.com/agentstation/rollcall/internal/config"
	"github.com/agentstation/rollcall/pkg/errors"
)

const mynetaJSON = `[
  {"candidate": "A Valmiki", "constituency": "Ananthapur", "total_assets": "Rs 1,00,00,000"},
  {"candidate": "B", "constituency": "Bastar (ST)"}
]`

const sansadCSV = "name,constituency,state\nShri A Valmiki,ANANTAPUR,ANDHRA PRADESH\n"

func defaults(t *testing.T) *config.Config {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	cfg, err := config.Load(v)
	require.NoError(t, err)
	return cfg
}

func writeSources(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()
	myneta := filepath.Join(dir, "myneta.json")
	sansad := filepath.Join(dir, "sansad.csv")
	require.NoError(t, os.WriteFile(myneta, []byte(mynetaJSON), 0o644))
	require.NoError(t, os.WriteFile(sansad, []byte(sansadCSV), 0o644))
	return myneta, sansad
}

func TestMergeCommand(t *testing.T) {
	myneta, sansad := writeSources(t)
	out := filepath.Join(t.TempDir(), "combined.csv")
	profiles := filepath.Join(filepath.Dir(out), "profiles.csv")

	app := &appcontext.Mock{
		RunConfigFunc: func() (*config.Config, error) { return defaults(t), nil },
	}
	cmd := merge.NewCommand(app)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{
		"--source", "myneta=" + myneta,
		"--source", "sansad=" + sansad,
		"--merged", out,
		"--profiles", profiles,
	})
	require.NoError(t, cmd.Execute())

	var summary output.RunSummary
	require.NoError(t, json.Unmarshal(buf.Bytes(), &summary))
	assert.Equal(t, "Matches found: 1/2", summary.Matches)
	assert.Equal(t, []string{out, profiles}, summary.Outputs)
	require.NotNil(t, summary.Profiles)
	assert.Equal(t, 2, summary.Profiles.Profiles)
	assert.FileExists(t, out)
	assert.FileExists(t, profiles)
}

func TestMergeCommandTable(t *testing.T) {
	myneta, sansad := writeSources(t)
	cfg := defaults(t)
	cfg.Sources = []config.SourceConfig{{ID: "myneta", Path: myneta}, {ID: "sansad", Path: sansad}}
	cfg.Output.Merged = filepath.Join(t.TempDir(), "combined.csv")

	app := &appcontext.Mock{
		RunConfigFunc:    func() (*config.Config, error) { return cfg, nil },
		OutputFormatFunc: func() string { return "table" },
	}
	cmd := merge.NewCommand(app)
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs(nil)
	require.NoError(t, cmd.Execute())

	assert.Contains(t, buf.String(), "Matches found: 1/2")
	assert.Contains(t, buf.String(), "sansad")
}

func TestMergeCommandErrors(t *testing.T) {
	app := &appcontext.Mock{
		RunConfigFunc: func() (*config.Config, error) { return defaults(t), nil },
	}

	cmd := merge.NewCommand(app)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--source", "myneta"})
	assert.True(t, errors.IsValidationError(cmd.Execute()))

	cmd = merge.NewCommand(app)
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs(nil)
	assert.True(t, errors.IsConfigError(cmd.Execute()))
}

func TestFlagsApply(t *testing.T) {
	cfg := &config.Config{
		Sources: []config.SourceConfig{
			{ID: "sansad", Path: "old.csv", RegionField: "sansad_state"},
		},
	}
	flags := &merge.Flags{
		Sources:  []string{"myneta=m.json", "sansad=s.csv"},
		Profiles: "p.csv",
		Strategy: "keep-primary",
	}
	require.NoError(t, flags.Apply(cfg))

	assert.Equal(t, []config.SourceConfig{
		{ID: "myneta", Path: "m.json"},
		{ID: "sansad", Path: "s.csv", RegionField: "sansad_state"},
	}, cfg.Sources)
	assert.Equal(t, "p.csv", cfg.Output.Profiles)
	assert.Equal(t, "keep-primary", cfg.Strategy)

	bad := &merge.Flags{Strategy: "newest"}
	assert.True(t, errors.IsValidationError(bad.Apply(cfg)))
}

func TestParseSource(t *testing.T) {
	sc, err := merge.ParseSource(" myneta = data/myneta.json ")
	require.NoError(t, err)
	assert.Equal(t, config.SourceConfig{ID: "myneta", Path: "data/myneta.json"}, sc)

	for _, bad := range []string{"", "myneta", "=x.json", "myneta="} {
		_, err := merge.ParseSource(bad)
		assert.Error(t, err, bad)
	}
}
