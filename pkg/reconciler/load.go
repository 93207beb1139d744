package reconciler

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/logging"
	"github.com/agentstation/rollcall/pkg/records"
	"github.com/agentstation/rollcall/pkg/sources"
)

// load reads every source concurrently. Each source writes only its own slot,
// so the result follows source order regardless of completion order.
func (r *reconciler) load(ctx context.Context, srcs []sources.Source) ([][]*records.Record, error) {
	slots := make([][]*records.Record, len(srcs))

	g, gctx := errgroup.WithContext(ctx)
	if r.concurrency > 0 {
		g.SetLimit(r.concurrency)
	}

	for i, src := range srcs {
		g.Go(func() error {
			recs, err := src.Records(gctx)
			if err != nil {
				return errors.WrapResource("load", "source", src.ID().String(), err)
			}
			slots[i] = recs
			logging.FromContext(logging.WithSource(ctx, src.ID().String())).Debug().
				Int("records", len(recs)).
				Msg("Loaded source")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slots, nil
}
