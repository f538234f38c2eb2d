package totals

import (
	"slices"

	engine "github.com/KirkDiggler/equip-api/internal/engine/totals"
	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
	"github.com/KirkDiggler/equip-api/internal/errors"
	"github.com/KirkDiggler/equip-api/internal/store"
)

// applyMutation writes a mutation to the store and decides which stage runs
// next
func (o *orchestrator) applyMutation(e equipment.Event) ([]equipment.Event, error) {
	switch ev := e.(type) {
	case equipment.EntryMoved:
		if err := o.store.MoveEntry(ev.CollectionID, ev.EntryID, ev.MoveTo); err != nil {
			return nil, errors.Wrapf(err, "failed to move entry %s", ev.EntryID)
		}
		return o.recalculateSelected(ev.CollectionID), nil

	case equipment.ItemUpdated:
		return o.itemUpdated(ev.Item)

	case equipment.ItemSelected:
		return o.itemSelected(ev)

	case equipment.EntryUpdated:
		if err := o.store.UpdateEntry(ev.Entry); err != nil {
			return nil, errors.Wrapf(err, "failed to update entry %s", ev.Entry.ID)
		}
		entry, ok := o.store.GetEntry(ev.Entry.ID)
		if !ok {
			return nil, nil
		}
		return o.recalculateSelected(entry.CollectionID), nil

	case equipment.CollectionMoved:
		if err := o.store.MoveCollection(ev.CollectionID, ev.MoveTo); err != nil {
			return nil, errors.Wrapf(err, "failed to move collection %s", ev.CollectionID)
		}
		return o.setTotalsUpdated(aggregateCollections(o.store.Snapshot()))

	case equipment.LimitsChanged:
		var err error
		if ev.CollectionID == "" {
			err = o.store.SetGlobalLimits(ev.Limits)
		} else {
			err = o.store.SetCollectionLimits(ev.CollectionID, ev.Limits)
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to change limits")
		}
		return o.collectionTotalsUpdated()

	case equipment.SetSettingsChanged:
		if err := o.store.SetSetName(ev.Name); err != nil {
			return nil, errors.Wrap(err, "failed to change set settings")
		}
		return o.collectionTotalsUpdated()

	case equipment.LimitDefinitionsChanged:
		if err := o.store.SetLimitDefinitions(ev.Definitions); err != nil {
			return nil, errors.Wrap(err, "failed to change limit definitions")
		}
		return o.collectionTotalsUpdated()

	default:
		return nil, errors.InvalidArgumentf("unsupported mutation event %T", e)
	}
}

func (o *orchestrator) itemUpdated(item equipment.Item) ([]equipment.Event, error) {
	if err := o.store.ReplaceItem(item); err != nil {
		return nil, errors.Wrapf(err, "failed to update item %s", item.ID)
	}

	snap := o.store.Snapshot()
	stored, ok := snap.LocateItem(item)
	if !ok {
		return nil, nil
	}
	collectionID := stored.CollectionID

	variant, ok := snap.SelectedVariant(collectionID)
	if !ok || !selectsItem(snap, variant, item.ID) {
		o.logger.Debug("updated item is not selected, skipping recalculation",
			"item_id", item.ID,
			"collection_id", collectionID)
		return nil, nil
	}

	return []equipment.Event{equipment.RecalculateVariant{VariantID: variant.ID}}, nil
}

func (o *orchestrator) itemSelected(ev equipment.ItemSelected) ([]equipment.Event, error) {
	entryID := ev.EntryID
	if entryID == "" {
		item, ok := o.store.FindItem(ev.CollectionID, ev.ItemID)
		if !ok {
			return nil, errors.NotFoundf("item %s not found in collection %s", ev.ItemID, ev.CollectionID)
		}
		entryID = item.EntryID
	}

	if err := o.store.SelectItem(ev.CollectionID, entryID, ev.ItemID); err != nil {
		return nil, errors.Wrapf(err, "failed to select item %s", ev.ItemID)
	}

	return o.recalculateSelected(ev.CollectionID), nil
}

// recalculateSelected requests a recompute of the collection's selected
// variant, if there is one
func (o *orchestrator) recalculateSelected(collectionID string) []equipment.Event {
	variantID, ok := o.store.GetSelectedVariantID(collectionID)
	if !ok {
		o.logger.Debug("collection has no selected variant", "collection_id", collectionID)
		return nil
	}
	return []equipment.Event{equipment.RecalculateVariant{VariantID: variantID}}
}

// recalculateVariants recomputes each requested variant once. Cache hits
// emit nothing.
func (o *orchestrator) recalculateVariants(batch []equipment.Event) ([]equipment.Event, error) {
	var out []equipment.Event
	seen := make(map[string]struct{}, len(batch))

	for _, e := range batch {
		req, ok := e.(equipment.RecalculateVariant)
		if !ok {
			return nil, errors.Internalf("unexpected %T in the %s stage", e, stageRecalculate)
		}
		if _, dup := seen[req.VariantID]; dup {
			continue
		}
		seen[req.VariantID] = struct{}{}

		updated, err := o.recalculateVariant(req.VariantID)
		if err != nil {
			return nil, err
		}
		if updated != nil {
			out = append(out, *updated)
		}
	}

	return out, nil
}

func (o *orchestrator) recalculateVariant(variantID string) (*equipment.VariantTotalsUpdated, error) {
	snap := o.store.Snapshot()

	variant, ok := snap.GetVariant(variantID)
	if !ok {
		o.logger.Warn("variant to recalculate not found", equipment.LogAttrs(equipment.VariantRef(variantID))...)
		return nil, nil
	}

	key := engine.CacheKey{LinksVersion: variant.LinksVersion}
	if c, ok := snap.GetCollection(variant.CollectionID); ok {
		key.EntriesVersion = c.EntriesVersion
	}

	result, hit := o.cache.Compute(variantID, key, func() *equipment.VariantTotals {
		return engine.ComputeVariantTotals(engine.VariantInput{
			Links:   variant.EntityLinks,
			Entries: engine.EntriesByID(snap.GetEntriesByCollection(variant.CollectionID)),
			Prior:   variant.Totals,
		})
	})
	o.metrics.RecordRecompute(hit)
	if hit {
		o.logger.Debug("variant totals unchanged", "variant_id", variantID)
		return nil, nil
	}

	for _, record := range result.Entries {
		if record.Missing {
			attrs := append(equipment.LogAttrs(equipment.EntryRef(record.EntryID)), "variant_id", variantID)
			o.logger.Warn("variant links a missing entry", attrs...)
		}
	}

	if err := o.store.PatchVariantTotals(variantID, result); err != nil {
		o.cache.Invalidate(variantID)
		return nil, errors.Wrapf(err, "failed to patch totals of variant %s", variantID)
	}

	return &equipment.VariantTotalsUpdated{
		VariantID: variantID,
		Entries:   result.Entries,
		Totals:    result.Totals,
	}, nil
}

// collectionTotalsUpdated aggregates every collection from the selected
// variants' stored totals and writes the result back
func (o *orchestrator) collectionTotalsUpdated() ([]equipment.Event, error) {
	collections := aggregateCollections(o.store.Snapshot())

	if err := o.store.PatchCollectionTotals(collections); err != nil {
		return nil, errors.Wrap(err, "failed to patch collection totals")
	}

	return []equipment.Event{equipment.CollectionTotalsUpdated{Collections: collections}}, nil
}

// setTotalsUpdated folds collection totals over the set order
func (o *orchestrator) setTotalsUpdated(collections map[string]equipment.CollectionTotals) ([]equipment.Event, error) {
	snap := o.store.Snapshot()

	set := engine.AggregateSetTotals(
		snap.GetCollectionOrder(),
		collections,
		snap.GetLimitDefinitions(),
		snap.GetGlobalLimits(),
	)

	if err := o.store.PatchSetTotals(set); err != nil {
		return nil, errors.Wrap(err, "failed to patch set totals")
	}

	return []equipment.Event{equipment.SetTotalsUpdated{Totals: set}}, nil
}

func aggregateCollections(snap *store.Snapshot) map[string]equipment.CollectionTotals {
	order := snap.GetCollectionOrder()
	definitions := snap.GetLimitDefinitions()
	global := snap.GetGlobalLimits()

	input := engine.CollectionInput{
		Order:         order,
		VariantTotals: make(map[string]equipment.Totals, len(order)),
		Limits:        make(map[string]equipment.Limits, len(order)),
		Definitions:   definitions,
	}

	for _, collectionID := range order {
		var overrides equipment.Limits
		if c, ok := snap.GetCollection(collectionID); ok {
			overrides = c.Limits
		}
		input.Limits[collectionID] = engine.ResolveLimits(definitions, global, overrides)

		if variant, ok := snap.SelectedVariant(collectionID); ok {
			var sum equipment.Totals
			if variant.Totals != nil {
				sum = variant.Totals.Totals
			}
			input.VariantTotals[collectionID] = sum
		}
	}

	return engine.AggregateCollectionTotals(input)
}

// selectsItem reports whether any link of the variant currently resolves to
// itemID. Entries are resolved within the variant's collection only, as the
// calculator does.
func selectsItem(snap *store.Snapshot, variant *equipment.Variant, itemID string) bool {
	return slices.ContainsFunc(variant.EntityLinks, func(link equipment.EntityLink) bool {
		if link.SelectedItemID != itemID {
			return false
		}
		entry, ok := snap.GetEntry(link.EntryID)
		if !ok || entry.CollectionID != variant.CollectionID {
			return false
		}
		_, found := entry.FindItem(itemID)
		return found
	})
}
