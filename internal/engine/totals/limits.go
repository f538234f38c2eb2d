package totals

import (
	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
)

// ResolveLimits merges global and collection limits per definition name.
// The collection value wins when set, then the global value; names with
// neither are left out of the result.
func ResolveLimits(definitions []equipment.LimitDefinition, global, collection equipment.Limits) equipment.Limits {
	resolved := make(equipment.Limits, len(definitions))

	for _, def := range definitions {
		if v, ok := collection.Get(def.Name); ok {
			resolved[def.Name] = v
			continue
		}
		if v, ok := global.Get(def.Name); ok {
			resolved[def.Name] = v
		}
	}

	return resolved
}

// OverLimit flags, for every defined limit that has a resolved value,
// whether the totals exceed it
func OverLimit(totals equipment.Totals, definitions []equipment.LimitDefinition, limits equipment.Limits) map[string]bool {
	over := make(map[string]bool, len(limits))

	for _, def := range definitions {
		limit, ok := limits.Get(def.Name)
		if !ok {
			continue
		}
		over[def.Name] = totals.Value(def.Dimension) > limit
	}

	return over
}
