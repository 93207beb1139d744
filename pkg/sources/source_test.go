package sources_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agentstation/rollcall/pkg/errors"
	"github.com/agentstation/rollcall/pkg/records"
	"github.com/agentstation/rollcall/pkg/sources"
	"github.com/agentstation/rollcall/pkg/types"
)

func TestSourcesOrder(t *testing.T) {
	srcs := sources.NewSources()
	require.NoError(t, srcs.Add(sources.NewStatic(types.MyNetaID, nil)))
	require.NoError(t, srcs.Add(sources.NewStatic(types.SansadID, nil)))
	require.NoError(t, srcs.Add(sources.NewStatic("prs", nil)))

	assert.Equal(t, []types.SourceID{"myneta", "sansad", "prs"}, srcs.IDs())
	assert.Equal(t, 3, srcs.Len())

	primary, rest, err := srcs.Primary()
	require.NoError(t, err)
	assert.Equal(t, types.MyNetaID, primary.ID())
	require.Len(t, rest, 2)
	assert.Equal(t, types.SansadID, rest[0].ID())

	srcs.Delete(types.SansadID)
	srcs.Delete("unknown")
	assert.Equal(t, []types.SourceID{"myneta", "prs"}, srcs.IDs())
	_, found := srcs.Get(types.SansadID)
	assert.False(t, found)
}

func TestSourcesAddErrors(t *testing.T) {
	srcs := sources.NewSources()
	assert.True(t, errors.IsValidationError(srcs.Add(nil)))

	require.NoError(t, srcs.Add(sources.NewStatic("a", nil)))
	err := srcs.Add(sources.NewStatic("a", nil))
	assert.True(t, errors.IsAlreadyExists(err))

	_, _, err = sources.NewSources().Primary()
	assert.True(t, errors.IsNotFound(err))
}

func TestSourcesConcurrentAccess(t *testing.T) {
	srcs := sources.NewSources()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = srcs.Add(sources.NewStatic(types.SourceID(fmt.Sprintf("src-%d", i)), nil))
			_ = srcs.List()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 20, srcs.Len())
}

func TestStatic(t *testing.T) {
	recs := []*records.Record{records.FromPairs("sansad_name", "A")}
	src := sources.NewStatic(types.SansadID, recs,
		sources.WithKeyFields("sansad_constituency", "sansad_state"),
		sources.WithPlaceholders("sansad_name", "sansad_email"),
	)

	assert.Equal(t, "sansad", src.Prefix())
	assert.True(t, src.Keys().UsesRegion())
	assert.Equal(t, []string{"sansad_name", "sansad_email"}, src.Placeholders())

	got, err := src.Records(context.Background())
	require.NoError(t, err)
	assert.Equal(t, recs, got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = src.Records(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	custom := sources.NewStatic("x", nil, sources.WithPrefix("secondary"), sources.WithKeyFields("n", ""))
	assert.Equal(t, "secondary", custom.Prefix())
	assert.False(t, custom.Keys().UsesRegion())
}
