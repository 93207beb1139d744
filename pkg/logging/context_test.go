package logging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agentstation/rollcall/pkg/logging"
)

func TestContextFunctions(t *testing.T) {
	t.Run("run id is stored and logged", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		ctx = logging.WithRunID(ctx, "run-123")

		assert.Equal(t, "run-123", logging.RunID(ctx))
		logging.FromContext(ctx).Info().Msg("merging")
		tl.AssertContains(t, `"run_id":"run-123"`)
	})

	t.Run("run id missing", func(t *testing.T) {
		assert.Empty(t, logging.RunID(context.Background()))
	})

	t.Run("chaining context functions", func(t *testing.T) {
		tl := logging.NewTestLogger(t)
		ctx := logging.WithLogger(context.Background(), tl.Logger)
		ctx = logging.WithSource(ctx, "sansad")
		ctx = logging.WithOperation(ctx, "index")
		ctx = logging.WithKey(ctx, "ANANTAPUR:ANDHRA PRADESH")
		ctx = logging.WithError(ctx, errors.New("boom"))
		ctx = logging.WithFields(ctx, map[string]any{"records": 3})

		logging.Ctx(ctx).Warn().Msg("no match")
		tl.AssertContains(t, `"source":"sansad"`)
		tl.AssertContains(t, `"operation":"index"`)
		tl.AssertContains(t, `"key":"ANANTAPUR:ANDHRA PRADESH"`)
		tl.AssertContains(t, `"error":"boom"`)
		tl.AssertContains(t, `"records":3`)
	})

	t.Run("nil error leaves context unchanged", func(t *testing.T) {
		ctx := context.Background()
		assert.Equal(t, ctx, logging.WithError(ctx, nil))
	})

	t.Run("FromContext falls back to default", func(t *testing.T) {
		//nolint:staticcheck // exercising the nil guard
		assert.Equal(t, logging.Default(), logging.FromContext(nil))
		assert.Equal(t, logging.Default(), logging.FromContext(context.Background()))
	})
}
