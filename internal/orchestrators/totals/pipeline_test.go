package totals

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
	"github.com/KirkDiggler/equip-api/internal/errors"
)

func TestPipeline_DrainsStagesInOrder(t *testing.T) {
	p := newPipeline()
	require.NoError(t, p.push(equipment.SetTotalsUpdated{}))
	require.NoError(t, p.push(equipment.RecalculateVariant{VariantID: "v1"}))
	require.NoError(t, p.push(equipment.RecalculateVariant{VariantID: "v2"}))

	s, batch, ok := p.next()
	require.True(t, ok)
	assert.Equal(t, stageRecalculate, s)
	assert.Len(t, batch, 2)

	s, batch, ok = p.next()
	require.True(t, ok)
	assert.Equal(t, stageSetTotals, s)
	assert.Len(t, batch, 1)

	_, _, ok = p.next()
	assert.False(t, ok)

	assert.Equal(t, []equipment.Event{equipment.SetTotalsUpdated{}}, p.emitted, "only output events are reported")
}

func TestPipeline_RejectsBackwardEvents(t *testing.T) {
	p := newPipeline()
	require.NoError(t, p.push(equipment.VariantTotalsUpdated{VariantID: "v1"}))

	s, _, ok := p.next()
	require.True(t, ok)
	require.Equal(t, stageVariantTotals, s)

	testCases := []equipment.Event{
		equipment.EntryMoved{},
		equipment.RecalculateVariant{VariantID: "v1"},
		equipment.VariantTotalsUpdated{VariantID: "v1"},
	}
	for _, e := range testCases {
		err := p.push(e)
		require.Error(t, err, e.Type().String())
		assert.True(t, errors.IsInternal(err))
	}

	assert.NoError(t, p.push(equipment.CollectionTotalsUpdated{}))
}

func TestPipeline_Force(t *testing.T) {
	p := newPipeline()
	p.force(stageVariantTotals)

	s, batch, ok := p.next()
	require.True(t, ok)
	assert.Equal(t, stageVariantTotals, s)
	assert.Empty(t, batch)
}

func TestStageNames(t *testing.T) {
	assert.Equal(t, "collection_totals_updated", stageCollectionTotals.String())
	assert.Equal(t, "stage(9)", stage(9).String())
}
