package totals_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/KirkDiggler/equip-api/internal/engine/totals"
	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
)

var testDefinitions = []equipment.LimitDefinition{
	{Name: "weight", Dimension: equipment.DimensionWeight},
	{Name: "price", Dimension: equipment.DimensionPrice},
}

func TestResolveLimits(t *testing.T) {
	testCases := []struct {
		name       string
		global     equipment.Limits
		collection equipment.Limits
		expected   equipment.Limits
	}{
		{
			name:       "collection override wins",
			global:     equipment.Limits{"weight": 10},
			collection: equipment.Limits{"weight": 5},
			expected:   equipment.Limits{"weight": 5},
		},
		{
			name:       "unset override falls back to global",
			global:     equipment.Limits{"weight": 10},
			collection: equipment.Limits{"price": 0},
			expected:   equipment.Limits{"weight": 10},
		},
		{
			name:       "nil override falls back to global",
			global:     equipment.Limits{"weight": 10, "price": 100},
			collection: nil,
			expected:   equipment.Limits{"weight": 10, "price": 100},
		},
		{
			name:       "resolved per name independently",
			global:     equipment.Limits{"weight": 10, "price": 100},
			collection: equipment.Limits{"weight": 4},
			expected:   equipment.Limits{"weight": 4, "price": 100},
		},
		{
			name:       "no value on either side is omitted",
			global:     nil,
			collection: nil,
			expected:   equipment.Limits{},
		},
		{
			name:       "undefined names are ignored",
			global:     equipment.Limits{"volume": 3},
			collection: equipment.Limits{"volume": 2},
			expected:   equipment.Limits{},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, totals.ResolveLimits(testDefinitions, tc.global, tc.collection))
		})
	}
}

func TestOverLimit(t *testing.T) {
	sum := equipment.Totals{Price: 18, Weight: 5}

	over := totals.OverLimit(sum, testDefinitions, equipment.Limits{"weight": 4, "price": 18})
	assert.Equal(t, map[string]bool{"weight": true, "price": false}, over, "equal to the limit is not over it")

	assert.Empty(t, totals.OverLimit(sum, testDefinitions, equipment.Limits{}))
}
