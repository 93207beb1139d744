// Package config turns viper settings into the explicit configuration of a
// reconciliation run: canonicalizer, currency parsing, projection, sources
// and outputs.
//
// Keys use the same names in the config file and in ROLLCALL_* environment
// variables, for example canonical.separator and ROLLCALL_CANONICAL_SEPARATOR.
package config

import (
	"maps"

	"github.com/spf13/viper"

	"github.com/agentstation/rollcall/internal/sources/local"
	"github.com/agentstation/rollcall/pkg/canonical"
	"github.com/agentstation/rollcall/pkg/constants"
	"github.com/agentstation/rollcall/pkg/currency"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/profile"
	"github.com/agentstation/rollcall/pkg/reconciler"
	"github.com/agentstation/rollcall/pkg/sources"
	"github.com/agentstation/rollcall/pkg/types"
)

// Config is the configuration of a run.
type Config struct {
	Canonical   CanonicalConfig `mapstructure:"canonical" yaml:"canonical"`
	Currency    CurrencyConfig  `mapstructure:"currency" yaml:"currency"`
	Terms       TermsConfig     `mapstructure:"terms" yaml:"terms"`
	Profile     ProfileConfig   `mapstructure:"profile" yaml:"profile"`
	Sources     []SourceConfig  `mapstructure:"sources" yaml:"sources"`
	Output      OutputConfig    `mapstructure:"output" yaml:"output"`
	Strategy    string          `mapstructure:"strategy" yaml:"strategy"`
	Concurrency int             `mapstructure:"concurrency" yaml:"concurrency"`
	Provenance  bool            `mapstructure:"provenance" yaml:"provenance"`
}

// CanonicalConfig configures name canonicalization.
type CanonicalConfig struct {
	Separator string `mapstructure:"separator" yaml:"separator"`
	// Aliases are added to the built-in table. Viper lowercases map keys,
	// which canonicalization undoes.
	Aliases map[string]string `mapstructure:"aliases" yaml:"aliases"`
	// AliasFile is a YAML file with an "aliases" mapping, loaded after the
	// built-in table and before Aliases.
	AliasFile string `mapstructure:"alias_file" yaml:"alias_file"`
	// NoDefaultAliases drops the built-in table.
	NoDefaultAliases bool `mapstructure:"no_default_aliases" yaml:"no_default_aliases"`
}

// CurrencyConfig configures amount parsing and conversion.
type CurrencyConfig struct {
	Markers   []string `mapstructure:"markers" yaml:"markers"`
	Ratio     float64  `mapstructure:"ratio" yaml:"ratio"`
	Precision int      `mapstructure:"precision" yaml:"precision"`
}

// TermsConfig configures the Lok Sabha term calendar.
type TermsConfig struct {
	LatestTerm      int `mapstructure:"latest" yaml:"latest"`
	LatestStartYear int `mapstructure:"latest_start_year" yaml:"latest_start_year"`
	Length          int `mapstructure:"length" yaml:"length"`
}

// ProfileConfig configures projection.
type ProfileConfig struct {
	Fields profile.FieldMap `mapstructure:"fields" yaml:"fields"`
	Tags   []string         `mapstructure:"tags" yaml:"tags"`
}

// SourceConfig describes one file-backed source. The first configured
// source is the primary.
type SourceConfig struct {
	ID     string `mapstructure:"id" yaml:"id"`
	Path   string `mapstructure:"path" yaml:"path"`
	Format string `mapstructure:"format" yaml:"format"`
	// Prefix is the collision prefix, defaulting to ID.
	Prefix string `mapstructure:"prefix" yaml:"prefix"`
	// FieldPrefix is added to field names lacking it, defaulting to ID + "_".
	// Set it to "" to keep names as they are in the file.
	FieldPrefix  *string  `mapstructure:"field_prefix" yaml:"field_prefix"`
	NameField    string   `mapstructure:"name_field" yaml:"name_field"`
	RegionField  string   `mapstructure:"region_field" yaml:"region_field"`
	Placeholders []string `mapstructure:"placeholders" yaml:"placeholders"`
}

// OutputConfig names the files a merge run writes. Empty paths are skipped,
// except Merged which always has a value.
type OutputConfig struct {
	Merged     string `mapstructure:"merged" yaml:"merged"`
	Profiles   string `mapstructure:"profiles" yaml:"profiles"`
	Database   string `mapstructure:"database" yaml:"database"`
	Metrics    string `mapstructure:"metrics" yaml:"metrics"`
	Provenance string `mapstructure:"provenance" yaml:"provenance"`
}

// sourceDefaults are the key fields and placeholders of well-known sources.
var sourceDefaults = map[types.SourceID]SourceConfig{
	types.MyNetaID: {
		NameField: "myneta_constituency",
	},
	types.SansadID: {
		NameField: "sansad_constituency",
		Placeholders: []string{
			"sansad_name", "sansad_profile_url", "sansad_constituency_raw",
			"sansad_constituency", "sansad_party", "sansad_email", "sansad_photo_url",
		},
	},
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("canonical.separator", constants.KeySeparator)
	v.SetDefault("currency.markers", currency.DefaultMarkers)
	v.SetDefault("currency.ratio", constants.CroreRatio)
	v.SetDefault("currency.precision", constants.AmountPrecision)
	v.SetDefault("terms.latest", constants.LatestTerm)
	v.SetDefault("terms.latest_start_year", constants.LatestTermStartYear)
	v.SetDefault("terms.length", constants.TermLengthYears)
	v.SetDefault("output.merged", constants.DefaultMergedOutput)
	v.SetDefault("strategy", string(reconciler.StrategyTypeRePrefix))
	v.SetDefault("concurrency", 0)
	v.SetDefault("provenance", true)
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.NewConfigError("config", "failed to decode configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the settings that need no file access.
func (c *Config) Validate() error {
	switch reconciler.StrategyType(c.Strategy) {
	case "", reconciler.StrategyTypeRePrefix, reconciler.StrategyTypeKeepPrimary:
	default:
		return errors.NewValidationError("strategy", c.Strategy, "must be one of: re-prefix, keep-primary")
	}
	if c.Concurrency < 0 {
		return errors.NewValidationError("concurrency", c.Concurrency, "must not be negative")
	}
	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		if s.ID == "" {
			return errors.NewValidationError("sources.id", i, "source id is required")
		}
		if s.Path == "" {
			return errors.NewValidationError("sources.path", s.ID, "source path is required")
		}
		if seen[s.ID] {
			return errors.NewValidationError("sources.id", s.ID, "duplicate source id")
		}
		seen[s.ID] = true
	}
	return nil
}

// Canonicalizer builds the canonicalizer from the built-in alias table, the
// alias file and inline aliases, in that order.
func (c *Config) Canonicalizer() (*canonical.Canonicalizer, error) {
	aliases := map[string]string{}
	if !c.Canonical.NoDefaultAliases {
		aliases = canonical.DefaultAliases()
	}
	if c.Canonical.AliasFile != "" {
		fromFile, err := canonical.LoadAliases(c.Canonical.AliasFile)
		if err != nil {
			return nil, err
		}
		maps.Copy(aliases, fromFile)
	}
	maps.Copy(aliases, c.Canonical.Aliases)
	return canonical.New(canonical.Config{Aliases: aliases, Separator: c.Canonical.Separator})
}

// Parser builds the currency parser.
func (c *Config) Parser() (*currency.Parser, error) {
	return currency.NewParser(c.Currency.Markers...)
}

// Converter builds the major-unit converter.
func (c *Config) Converter() (*currency.Converter, error) {
	ratio, precision := c.Currency.Ratio, c.Currency.Precision
	if ratio == 0 {
		ratio = constants.CroreRatio
	}
	return currency.NewConverter(ratio, precision)
}

// Projector builds the profile projector.
func (c *Config) Projector() (*profile.Projector, error) {
	parser, err := c.Parser()
	if err != nil {
		return nil, err
	}
	converter, err := c.Converter()
	if err != nil {
		return nil, err
	}
	return profile.New(profile.Config{
		Fields:    c.Profile.Fields,
		Parser:    parser,
		Converter: converter,
		Calendar: profile.TermCalendar{
			LatestTerm:      c.Terms.LatestTerm,
			LatestStartYear: c.Terms.LatestStartYear,
			Length:          c.Terms.Length,
		},
		Tags: c.Profile.Tags,
	})
}

// CollisionStrategy returns the configured field-collision strategy.
func (c *Config) CollisionStrategy() reconciler.Strategy {
	if reconciler.StrategyType(c.Strategy) == reconciler.StrategyTypeKeepPrimary {
		return reconciler.NewKeepPrimaryStrategy()
	}
	return reconciler.NewRePrefixStrategy()
}

// ReconcilerOptions returns the options of a reconciler keyed by keys.
func (c *Config) ReconcilerOptions(keys reconciler.KeyBuilder) []reconciler.Option {
	return []reconciler.Option{
		reconciler.WithKeyBuilder(keys),
		reconciler.WithStrategy(c.CollisionStrategy()),
		reconciler.WithProvenance(c.Provenance),
		reconciler.WithConcurrency(c.Concurrency),
	}
}

// BuildSources creates the configured sources in order. Well-known source
// IDs get default key fields and placeholders.
func (c *Config) BuildSources() (*sources.Sources, error) {
	reg := sources.NewSources()
	for _, sc := range c.Sources {
		src, err := sc.build()
		if err != nil {
			return nil, err
		}
		if err := reg.Add(src); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (sc SourceConfig) build() (*local.Source, error) {
	id := types.SourceID(sc.ID)
	def := sourceDefaults[id]

	nameField, placeholders := sc.NameField, sc.Placeholders
	if nameField == "" {
		nameField = def.NameField
	}
	if nameField == "" {
		return nil, errors.NewValidationError("sources.name_field", sc.ID, "key name field is required for sources other than myneta and sansad")
	}
	if placeholders == nil {
		placeholders = def.Placeholders
	}

	opts := []local.Option{
		local.WithKeyFields(nameField, sc.RegionField),
		local.WithPlaceholders(placeholders...),
	}
	if sc.Format != "" {
		opts = append(opts, local.WithFormat(local.Format(sc.Format)))
	}
	if sc.Prefix != "" {
		opts = append(opts, local.WithPrefix(sc.Prefix))
	}
	if sc.FieldPrefix != nil {
		opts = append(opts, local.WithFieldPrefix(*sc.FieldPrefix))
	}
	return local.New(id, sc.Path, opts...)
}
