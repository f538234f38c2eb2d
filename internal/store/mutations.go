package store

import (
	"slices"
	"strconv"

	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
	"github.com/KirkDiggler/equip-api/internal/errors"
)

// MoveEntry moves the link of entryID inside the collection's selected
// variant. moveTo is clamped to the link list; moving a link onto its own
// index changes nothing. Without a selected variant the command is a no-op.
func (m *Memory) MoveEntry(collectionID, entryID string, moveTo int) error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("collection_id", collectionID, vb)
	errors.ValidateRequired("entry_id", entryID, vb)
	if moveTo < 0 {
		vb.Fieldf("move_to", "must not be negative, got %d", moveTo)
	}
	if err := vb.Build(); err != nil {
		return err
	}

	return m.apply("move_entry", func(next *Snapshot) (bool, error) {
		if _, ok := next.collections[collectionID]; !ok {
			return false, notFound(equipment.CollectionRef(collectionID))
		}
		variantID, ok := next.GetSelectedVariantID(collectionID)
		if !ok {
			return false, nil
		}
		v, ok := next.mutableVariant(variantID)
		if !ok {
			return false, nil
		}

		from := slices.IndexFunc(v.EntityLinks, func(l equipment.EntityLink) bool { return l.EntryID == entryID })
		if from < 0 {
			return false, notFoundIn(equipment.EntryRef(entryID), equipment.VariantRef(variantID))
		}
		if clampIndex(moveTo, len(v.EntityLinks)) == from {
			return false, nil
		}

		v.EntityLinks = move(v.EntityLinks, from, moveTo)
		v.LinksVersion = next.revision
		return true, nil
	})
}

// ReplaceItem replaces an item wholesale. The item is located through its
// EntryID, else through its CollectionID, else across the whole set.
func (m *Memory) ReplaceItem(item equipment.Item) error {
	if item.ID == "" {
		return errors.InvalidArgument("item id is required")
	}

	return m.apply("replace_item", func(next *Snapshot) (bool, error) {
		entryID, ok := next.locateItem(item)
		if !ok {
			return false, notFound(equipment.ItemRef(item.ID))
		}

		e, _ := next.mutableEntry(entryID)
		idx := slices.IndexFunc(e.Items, func(i equipment.Item) bool { return i.ID == item.ID })
		item.EntryID = e.ID
		item.CollectionID = e.CollectionID
		if e.Items[idx] == item {
			return false, nil
		}

		e.Items[idx] = item
		next.touchEntries(e.CollectionID)
		return true, nil
	})
}

func (s *Snapshot) locateItem(item equipment.Item) (string, bool) {
	if item.EntryID != "" {
		e, ok := s.entries[item.EntryID]
		if !ok {
			return "", false
		}
		_, found := e.FindItem(item.ID)
		return e.ID, found
	}

	if item.CollectionID != "" {
		found, ok := s.FindItem(item.CollectionID, item.ID)
		return found.EntryID, ok
	}

	for _, collectionID := range s.set.CollectionOrder {
		if found, ok := s.FindItem(collectionID, item.ID); ok {
			return found.EntryID, true
		}
	}
	return "", false
}

// SelectItem selects itemID for entryID in the collection's selected variant,
// appending a link when the variant does not link the entry yet. An empty
// itemID clears the selection. Without a selected variant the command is a
// no-op.
func (m *Memory) SelectItem(collectionID, entryID, itemID string) error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("collection_id", collectionID, vb)
	errors.ValidateRequired("entry_id", entryID, vb)
	if err := vb.Build(); err != nil {
		return err
	}

	return m.apply("select_item", func(next *Snapshot) (bool, error) {
		if _, ok := next.collections[collectionID]; !ok {
			return false, notFound(equipment.CollectionRef(collectionID))
		}
		e, ok := next.entries[entryID]
		if !ok || e.CollectionID != collectionID {
			return false, notFoundIn(equipment.EntryRef(entryID), equipment.CollectionRef(collectionID))
		}
		if itemID != "" {
			if _, ok := e.FindItem(itemID); !ok {
				return false, notFoundIn(equipment.ItemRef(itemID), equipment.EntryRef(entryID))
			}
		}

		variantID, ok := next.GetSelectedVariantID(collectionID)
		if !ok {
			return false, nil
		}
		v, ok := next.mutableVariant(variantID)
		if !ok {
			return false, nil
		}

		idx := slices.IndexFunc(v.EntityLinks, func(l equipment.EntityLink) bool { return l.EntryID == entryID })
		switch {
		case idx < 0:
			v.EntityLinks = append(v.EntityLinks, equipment.EntityLink{EntryID: entryID, SelectedItemID: itemID})
		case v.EntityLinks[idx].SelectedItemID == itemID:
			return false, nil
		default:
			v.EntityLinks[idx].SelectedItemID = itemID
		}

		v.LinksVersion = next.revision
		return true, nil
	})
}

// MoveCollection moves a collection inside the set order, clamping moveTo
func (m *Memory) MoveCollection(collectionID string, moveTo int) error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("collection_id", collectionID, vb)
	if moveTo < 0 {
		vb.Fieldf("move_to", "must not be negative, got %d", moveTo)
	}
	if err := vb.Build(); err != nil {
		return err
	}

	return m.apply("move_collection", func(next *Snapshot) (bool, error) {
		order := next.set.CollectionOrder
		from := slices.Index(order, collectionID)
		if from < 0 {
			return false, notFound(equipment.CollectionRef(collectionID))
		}
		if clampIndex(moveTo, len(order)) == from {
			return false, nil
		}

		next.set.CollectionOrder = move(order, from, moveTo)
		return true, nil
	})
}

// SetCollectionLimits replaces a collection's limit overrides. A mapping
// with no value set clears the overrides.
func (m *Memory) SetCollectionLimits(collectionID string, limits equipment.Limits) error {
	return m.apply("set_collection_limits", func(next *Snapshot) (bool, error) {
		c, ok := next.mutableCollection(collectionID)
		if !ok {
			return false, notFound(equipment.CollectionRef(collectionID))
		}
		if err := validateLimits(next, "limits", limits); err != nil {
			return false, err
		}

		c.Limits = normalizeLimits(limits)
		return true, nil
	})
}

// SetGlobalLimits replaces the set-wide default limits
func (m *Memory) SetGlobalLimits(limits equipment.Limits) error {
	return m.apply("set_global_limits", func(next *Snapshot) (bool, error) {
		if err := validateLimits(next, "limits", limits); err != nil {
			return false, err
		}

		next.set.Limits = normalizeLimits(limits)
		return true, nil
	})
}

// SetLimitDefinitions replaces the known limit definitions. Limit values
// for names no longer defined are kept but ignored on resolution.
func (m *Memory) SetLimitDefinitions(definitions []equipment.LimitDefinition) error {
	if err := validateDefinitions(definitions); err != nil {
		return err
	}

	return m.apply("set_limit_definitions", func(next *Snapshot) (bool, error) {
		next.definitions = slices.Clone(definitions)
		return true, nil
	})
}

// SetSetName renames the set
func (m *Memory) SetSetName(name string) error {
	return m.apply("set_set_name", func(next *Snapshot) (bool, error) {
		if next.set.Name == name {
			return false, nil
		}
		next.set.Name = name
		return true, nil
	})
}

// PatchVariantTotals writes computed totals to a variant. The links version
// is left untouched.
func (m *Memory) PatchVariantTotals(variantID string, totals *equipment.VariantTotals) error {
	return m.apply("patch_variant_totals", func(next *Snapshot) (bool, error) {
		v, ok := next.mutableVariant(variantID)
		if !ok {
			return false, notFound(equipment.VariantRef(variantID))
		}
		v.Totals = totals
		return true, nil
	})
}

// PatchCollectionTotals writes aggregated totals to each known collection
func (m *Memory) PatchCollectionTotals(totals map[string]equipment.CollectionTotals) error {
	return m.apply("patch_collection_totals", func(next *Snapshot) (bool, error) {
		for collectionID, ct := range totals {
			c, ok := next.mutableCollection(collectionID)
			if !ok {
				continue
			}
			c.Totals = &ct
		}
		return true, nil
	})
}

// PatchSetTotals writes the set roll-up
func (m *Memory) PatchSetTotals(totals equipment.SetTotals) error {
	return m.apply("patch_set_totals", func(next *Snapshot) (bool, error) {
		next.set.Totals = &totals
		return true, nil
	})
}

func validateDefinitions(definitions []equipment.LimitDefinition) error {
	vb := errors.NewValidationBuilder()
	seen := make(map[string]struct{}, len(definitions))

	for i, def := range definitions {
		field := "definitions[" + strconv.Itoa(i) + "]"
		if def.Name == "" {
			vb.RequiredField(field + ".name")
			continue
		}
		if _, dup := seen[def.Name]; dup {
			vb.Fieldf(field+".name", "duplicate limit %q", def.Name)
		}
		seen[def.Name] = struct{}{}
		if !def.Dimension.IsValid() {
			vb.Fieldf(field+".dimension", "unknown dimension %q", def.Dimension)
		}
	}

	return vb.Build()
}
