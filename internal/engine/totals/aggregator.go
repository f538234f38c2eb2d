package totals

import (
	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
)

// CollectionInput is the input for AggregateCollectionTotals
type CollectionInput struct {
	// Order is the explicit collection order of the set
	Order []string

	// VariantTotals holds the selected variant totals per collection.
	// Collections without an entry have no selected variant.
	VariantTotals map[string]equipment.Totals

	// Limits holds the resolved limits per collection
	Limits map[string]equipment.Limits

	Definitions []equipment.LimitDefinition
}

// AggregateCollectionTotals pairs each collection in Order with its variant
// totals, its resolved limits and the over-limit flags. A collection without
// a selected variant contributes zero totals and is never over a limit.
func AggregateCollectionTotals(input CollectionInput) map[string]equipment.CollectionTotals {
	result := make(map[string]equipment.CollectionTotals, len(input.Order))

	for _, collectionID := range input.Order {
		limits := input.Limits[collectionID]
		if limits == nil {
			limits = equipment.Limits{}
		}

		totals, hasVariant := input.VariantTotals[collectionID]

		ct := equipment.CollectionTotals{
			CollectionID: collectionID,
			HasVariant:   hasVariant,
			Totals:       totals,
			Limits:       limits,
			OverLimit:    map[string]bool{},
		}
		if hasVariant {
			ct.OverLimit = OverLimit(totals, input.Definitions, limits)
		}

		result[collectionID] = ct
	}

	return result
}

// AggregateSetTotals folds collection totals across the whole set order,
// keeping the running totals after each collection, and checks the grand
// totals against the resolved global limits
func AggregateSetTotals(
	order []string,
	collections map[string]equipment.CollectionTotals,
	definitions []equipment.LimitDefinition,
	globalLimits equipment.Limits,
) equipment.SetTotals {
	var acc equipment.Totals
	rows := make([]equipment.SetRow, 0, len(order))

	for _, collectionID := range order {
		ct := collections[collectionID]
		acc = acc.Add(ct.Totals)
		rows = append(rows, equipment.SetRow{
			CollectionID: collectionID,
			Totals:       ct.Totals,
			Accumulated:  acc,
		})
	}

	limits := ResolveLimits(definitions, globalLimits, nil)

	return equipment.SetTotals{
		Rows:      rows,
		Totals:    acc,
		Limits:    limits,
		OverLimit: OverLimit(acc, definitions, limits),
	}
}
