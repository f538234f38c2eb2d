package totals

import (
	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
)

// EntryLookup resolves an entry by id
type EntryLookup func(entryID string) (*equipment.Entry, bool)

// ItemLookup resolves an item by id ahead of the entry's own item list
type ItemLookup func(itemID string) (equipment.Item, bool)

// EntriesByID builds an EntryLookup over a slice of entries
func EntriesByID(entries []*equipment.Entry) EntryLookup {
	index := make(map[string]*equipment.Entry, len(entries))
	for _, entry := range entries {
		if entry != nil {
			index[entry.ID] = entry
		}
	}
	return func(entryID string) (*equipment.Entry, bool) {
		entry, ok := index[entryID]
		return entry, ok
	}
}

// VariantInput is the input for ComputeVariantTotals
type VariantInput struct {
	Links   []equipment.EntityLink
	Entries EntryLookup

	// Items overrides item resolution when set. An override is only used
	// for items that belong to the linked entry.
	Items ItemLookup

	// Prior is returned record-for-record when Links is empty
	Prior *equipment.VariantTotals
}

// ComputeVariantTotals walks the links in order keeping running price and
// weight sums. Each record carries the sums after its link. Links whose entry
// is missing keep their position as Missing records that leave the sums
// unchanged; a missing or foreign selection counts as a zero item.
func ComputeVariantTotals(input VariantInput) *equipment.VariantTotals {
	if len(input.Links) == 0 {
		result := &equipment.VariantTotals{}
		if input.Prior != nil {
			result.Entries = input.Prior.Entries
		}
		return result
	}

	var acc equipment.Totals
	records := make([]equipment.TotalsRecord, 0, len(input.Links))

	for _, link := range input.Links {
		var entry *equipment.Entry
		var ok bool
		if input.Entries != nil {
			entry, ok = input.Entries(link.EntryID)
		}
		if !ok || entry == nil {
			records = append(records, equipment.TotalsRecord{
				EntryID:     link.EntryID,
				Accumulated: acc,
				Missing:     true,
			})
			continue
		}

		item := resolveItem(entry, link.SelectedItemID, input.Items)
		acc = acc.Add(item.Totals())

		records = append(records, equipment.TotalsRecord{
			EntryID:      entry.ID,
			SelectedItem: item,
			Accumulated:  acc,
		})
	}

	return &equipment.VariantTotals{
		Entries: records,
		Totals:  acc,
	}
}

func resolveItem(entry *equipment.Entry, itemID string, override ItemLookup) equipment.Item {
	if itemID == "" {
		return equipment.Item{}
	}

	if override != nil {
		if item, ok := override(itemID); ok && (item.EntryID == "" || item.EntryID == entry.ID) {
			return item
		}
	}

	item, ok := entry.FindItem(itemID)
	if !ok {
		return equipment.Item{}
	}
	return item
}
