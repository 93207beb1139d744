package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rollcall/internal/config"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/reconciler"
	"github.com/agentstation/rollcall/pkg/types"
)

func newViper(t *testing.T, yaml string) *viper.Viper {
	t.Helper()
	v := viper.New()
	config.SetDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(yaml)))
	return v
}

func TestDefaults(t *testing.T) {
	cfg, err := config.Load(newViper(t, ""))
	require.NoError(t, err)

	assert.Equal(t, ":", cfg.Canonical.Separator)
	assert.Equal(t, 10_000_000.0, cfg.Currency.Ratio)
	assert.Equal(t, 2, cfg.Currency.Precision)
	assert.Equal(t, 18, cfg.Terms.LatestTerm)
	assert.Equal(t, "combined_myneta_sansad.csv", cfg.Output.Merged)
	assert.True(t, cfg.Provenance)
	assert.Empty(t, cfg.Sources)

	canon, err := cfg.Canonicalizer()
	require.NoError(t, err)
	assert.Equal(t, "ANANTAPUR:ANDHRA PRADESH", canon.Key("Ananthapur", "Andhra Pradesh"))

	conv, err := cfg.Converter()
	require.NoError(t, err)
	assert.Equal(t, 65.67, conv.ToMajorUnit(656712498))

	_, err = cfg.Projector()
	require.NoError(t, err)
	assert.Equal(t, reconciler.StrategyTypeRePrefix, cfg.CollisionStrategy().Type())
	assert.Len(t, cfg.ReconcilerOptions(canon), 4)
}

func TestAliasesFromFileAndInline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "aliases.yaml")
	require.NoError(t, os.WriteFile(path, []byte("aliases:\n  Gurgaon: Gurugram\n"), 0o644))

	cfg, err := config.Load(newViper(t, `
canonical:
  separator: "|"
  alias_file: `+path+`
  no_default_aliases: true
  aliases:
    Bombay North: Mumbai North
`))
	require.NoError(t, err)

	canon, err := cfg.Canonicalizer()
	require.NoError(t, err)
	assert.Equal(t, "GURUGRAM|HARYANA", canon.Key("Gurgaon", "Haryana"))
	assert.Equal(t, "MUMBAI NORTH|", canon.Key("Bombay North", ""))
	assert.Equal(t, "ANANTHAPUR|", canon.Key("Ananthapur", ""))

	cfg.Canonical.AliasFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = cfg.Canonicalizer()
	assert.True(t, errors.IsNotFound(err))
}

func TestCurrencyAndTerms(t *testing.T) {
	cfg, err := config.Load(newViper(t, `
currency:
  markers: ["USD"]
  ratio: 1000000
  precision: 1
terms:
  latest: 5
  latest_start_year: 2020
  length: 4
`))
	require.NoError(t, err)

	parser, err := cfg.Parser()
	require.NoError(t, err)
	assert.Equal(t, 2500000.0, parser.Parse("USD 2,500,000").Value)
	assert.Equal(t, 0.0, parser.Parse("Rs 100").Value)

	conv, err := cfg.Converter()
	require.NoError(t, err)
	assert.Equal(t, 2.5, conv.ToMajorUnit(2500000))

	cfg.Terms.Length = -1
	_, err = cfg.Projector()
	assert.True(t, errors.IsValidationError(err))
}

func TestSources(t *testing.T) {
	cfg, err := config.Load(newViper(t, `
sources:
  - id: myneta
    path: myneta.json
    region_field: myneta_state
  - id: sansad
    path: sansad.csv
  - id: ministers
    path: ministers.txt
    format: yaml
    name_field: ministers_constituency
    field_prefix: ""
    placeholders: [ministers_portfolio]
`))
	require.NoError(t, err)

	reg, err := cfg.BuildSources()
	require.NoError(t, err)
	assert.Equal(t, []types.SourceID{"myneta", "sansad", "ministers"}, reg.IDs())

	primary, secondaries, err := reg.Primary()
	require.NoError(t, err)
	assert.Equal(t, "myneta_constituency", primary.Keys().Name)
	assert.Equal(t, "myneta_state", primary.Keys().Region)
	require.Len(t, secondaries, 2)
	assert.Contains(t, secondaries[0].Placeholders(), "sansad_email")
	assert.Equal(t, []string{"ministers_portfolio"}, secondaries[1].Placeholders())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"unknown strategy", "strategy: fuzzy"},
		{"negative concurrency", "concurrency: -1"},
		{"missing id", "sources:\n  - path: a.json"},
		{"missing path", "sources:\n  - id: a"},
		{"duplicate id", "sources:\n  - {id: a, path: a.json}\n  - {id: a, path: b.json}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(newViper(t, tt.yaml))
			assert.True(t, errors.IsValidationError(err), "got %v", err)
		})
	}

	cfg, err := config.Load(newViper(t, "sources:\n  - {id: other, path: a.json}"))
	require.NoError(t, err)
	_, err = cfg.BuildSources()
	assert.True(t, errors.IsValidationError(err))

	cfg, err = config.Load(newViper(t, "strategy: keep-primary"))
	require.NoError(t, err)
	assert.Equal(t, reconciler.StrategyTypeKeepPrimary, cfg.CollisionStrategy().Type())
}
