// Package merge implements the merge command.
package merge

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/rollcall/internal/appcontext"
	"github.com/agentstation/rollcall/internal/cmd/output"
	"github.com/agentstation/rollcall/internal/config"
	"github.com/agentstation/rollcall/internal/pipeline"
	"github.com/agentstation/rollcall/pkg/constants"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/logging"
)

// Flags override the configured sources and outputs.
type Flags struct {
	Sources    []string
	Merged     string
	Profiles   string
	Database   string
	Metrics    string
	Provenance string
	Strategy   string
}

// NewCommand creates the merge command using app context.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Join the configured sources and write merged records and profiles",
		Long: `Merge loads every configured source, joins the secondary sources onto the
primary one on canonical constituency keys and writes the merged records.
Profiles, a SQLite database, a metrics textfile and a provenance report are
written when their paths are set.

The first source is the primary. Sources given with --source replace the
configured list.`,
		Args: cobra.NoArgs,
		Example: `  rollcall merge --source myneta=myneta.json --source sansad=sansad.csv
  rollcall merge --profiles profiles.csv --db rollcall.db
  rollcall merge -o yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd, app, flags)
		},
	}

	cmd.Flags().StringArrayVarP(&flags.Sources, "source", "s", nil, "source as id=path, repeatable; the first is the primary")
	cmd.Flags().StringVar(&flags.Merged, "merged", "", "merged records file (.csv, .json or .yaml)")
	cmd.Flags().StringVar(&flags.Profiles, "profiles", "", "profiles file (.csv, .json or .yaml)")
	cmd.Flags().StringVar(&flags.Database, "db", "", "SQLite database to record the run in")
	cmd.Flags().StringVar(&flags.Metrics, "metrics", "", "Prometheus textfile to write run metrics to")
	cmd.Flags().StringVar(&flags.Provenance, "provenance-file", "", "YAML file for the per-field provenance report")
	cmd.Flags().StringVar(&flags.Strategy, "strategy", "", "field collision strategy: re-prefix, keep-primary")

	return cmd
}

func run(cmd *cobra.Command, app appcontext.Interface, flags *Flags) error {
	cfg, err := app.RunConfig()
	if err != nil {
		return err
	}
	if err := flags.Apply(cfg); err != nil {
		return err
	}

	format, err := output.Resolve(app.OutputFormat(), cmd.OutOrStdout())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), constants.CommandTimeout)
	defer cancel()
	ctx = logging.WithLogger(ctx, app.Logger())
	outcome, err := pipeline.Run(ctx, cfg, app.Metrics())
	if err != nil {
		return err
	}

	summary := output.NewRunSummary(outcome.Result, &outcome.ProfileStats, outcome.Outputs)
	if format == output.FormatTable {
		fmt.Fprintln(cmd.OutOrStdout(), summary.Matches)
	}
	return output.Write(cmd.OutOrStdout(), format, summary)
}

// Apply overrides cfg with the flags that were set and validates the result.
func (f *Flags) Apply(cfg *config.Config) error {
	if len(f.Sources) > 0 {
		srcs := make([]config.SourceConfig, 0, len(f.Sources))
		for _, s := range f.Sources {
			sc, err := ParseSource(s)
			if err != nil {
				return err
			}
			srcs = append(srcs, withConfigured(cfg.Sources, sc))
		}
		cfg.Sources = srcs
	}
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Output.Merged, f.Merged)
	set(&cfg.Output.Profiles, f.Profiles)
	set(&cfg.Output.Database, f.Database)
	set(&cfg.Output.Metrics, f.Metrics)
	set(&cfg.Output.Provenance, f.Provenance)
	set(&cfg.Strategy, f.Strategy)
	return cfg.Validate()
}

// ParseSource parses an id=path source flag.
func ParseSource(s string) (config.SourceConfig, error) {
	id, path, ok := strings.Cut(s, "=")
	id, path = strings.TrimSpace(id), strings.TrimSpace(path)
	if !ok || id == "" || path == "" {
		return config.SourceConfig{}, errors.NewValidationError("source", s, "must be id=path")
	}
	return config.SourceConfig{ID: id, Path: path}, nil
}

// withConfigured keeps the configured settings of a source whose id matches,
// replacing only its path.
func withConfigured(configured []config.SourceConfig, sc config.SourceConfig) config.SourceConfig {
	for _, c := range configured {
		if c.ID == sc.ID {
			c.Path = sc.Path
			return c
		}
	}
	return sc
}
