// Package pipeline runs a complete merge: load the configured sources,
// reconcile them, project profiles and write every configured output.
package pipeline

import (
	"context"
	"time"

	"github.com/agentstation/rollcall/internal/config"
	"github.com/agentstation/rollcall/internal/export"
	"github.com/agentstation/rollcall/internal/metrics"
	"github.com/agentstation/rollcall/internal/store"
	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/logging"
	"github.com/agentstation/rollcall/pkg/profile"
	"github.com/agentstation/rollcall/pkg/provenance"
	"github.com/agentstation/rollcall/pkg/reconciler"
)

// Outcome is what a run produced.
type Outcome struct {
	Result       *reconciler.Result
	Profiles     []profile.Profile
	ProfileStats profile.Stats
	// Outputs lists the files written, in order.
	Outputs []string
}

// Run executes a merge with cfg. m may be nil.
func Run(ctx context.Context, cfg *config.Config, m *metrics.Metrics) (out *Outcome, err error) {
	start := time.Now()
	defer func() {
		if err != nil {
			m.IncrementRun(err)
			m.ObserveRunDuration(time.Since(start))
		}
	}()

	canon, err := cfg.Canonicalizer()
	if err != nil {
		return nil, err
	}
	projector, err := cfg.Projector()
	if err != nil {
		return nil, err
	}
	reg, err := cfg.BuildSources()
	if err != nil {
		return nil, err
	}
	primary, secondaries, err := reg.Primary()
	if err != nil {
		return nil, errors.NewConfigError("sources", "no sources configured", err)
	}

	rec, err := reconciler.New(cfg.ReconcilerOptions(canon)...)
	if err != nil {
		return nil, err
	}
	result, err := rec.Reconcile(ctx, primary, secondaries...)
	if err != nil {
		return nil, err
	}
	ctx = logging.WithRunID(ctx, result.Metadata.RunID)
	logger := logging.FromContext(ctx)

	out = &Outcome{Result: result}
	out.Profiles = projector.ProjectAll(result.Records)
	out.ProfileStats = projector.Stats()
	for i, p := range out.Profiles {
		for _, issue := range p.Issues {
			logger.Debug().Int("record", i).Str("name", p.Name).Msg(issue)
		}
	}

	if err := out.write(ctx, cfg.Output); err != nil {
		return nil, err
	}

	m.ObserveResult(result)
	m.ObserveProfiles(out.ProfileStats)
	m.IncrementRun(nil)
	if cfg.Output.Metrics != "" {
		if err := m.WriteTextfile(cfg.Output.Metrics); err != nil {
			return nil, err
		}
		out.Outputs = append(out.Outputs, cfg.Output.Metrics)
	}

	logger.Info().
		Int("records", len(result.Records)).
		Int("profiles", out.ProfileStats.Profiles).
		Int("unparseable_amounts", out.ProfileStats.UnparseableAmounts).
		Int("malformed_sections", out.ProfileStats.MalformedSections).
		Strs("outputs", out.Outputs).
		Msg("Merge complete")
	return out, nil
}

func (o *Outcome) write(ctx context.Context, paths config.OutputConfig) error {
	logger := logging.FromContext(ctx)
	result := o.Result

	if paths.Merged != "" {
		if err := export.RecordsFile(paths.Merged, result.Records, result.Schema); err != nil {
			return err
		}
		o.wrote(ctx, paths.Merged)
	}
	if paths.Profiles != "" {
		if err := export.ProfilesFile(paths.Profiles, o.Profiles); err != nil {
			return err
		}
		o.wrote(ctx, paths.Profiles)
	}
	if paths.Provenance != "" {
		pf := &provenance.ProvenanceFile{RunID: result.Metadata.RunID, Provenance: result.Provenance}
		if err := pf.Save(paths.Provenance); err != nil {
			return err
		}
		o.wrote(ctx, paths.Provenance)
	}
	if paths.Database != "" {
		db, err := store.Open(ctx, paths.Database)
		if err != nil {
			return err
		}
		defer func() {
			if cerr := db.Close(); cerr != nil {
				logger.Warn().Err(cerr).Str("path", paths.Database).Msg("Failed to close database")
			}
		}()
		if err := db.SaveRun(ctx, result, o.Profiles); err != nil {
			return err
		}
		o.wrote(ctx, paths.Database)
	}
	return nil
}

func (o *Outcome) wrote(ctx context.Context, path string) {
	o.Outputs = append(o.Outputs, path)
	logging.FromContext(ctx).Debug().Str("path", path).Msg("Wrote output")
}
