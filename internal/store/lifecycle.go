package store

import (
	"slices"

	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
	"github.com/KirkDiggler/equip-api/internal/errors"
)

// AddCollection appends an empty collection to the set order
func (m *Memory) AddCollection(collection equipment.Collection) error {
	if collection.ID == "" {
		return errors.InvalidArgument("collection id is required")
	}

	return m.apply("add_collection", func(next *Snapshot) (bool, error) {
		if _, exists := next.collections[collection.ID]; exists {
			return false, alreadyExists(&collection)
		}
		if err := validateLimits(next, "limits", collection.Limits); err != nil {
			return false, err
		}

		next.collections[collection.ID] = &equipment.Collection{
			ID:             collection.ID,
			Name:           collection.Name,
			Limits:         normalizeLimits(collection.Limits),
			EntriesVersion: next.revision,
		}
		next.set.CollectionOrder = append(next.set.CollectionOrder, collection.ID)
		return true, nil
	})
}

// DeleteCollection removes a collection with its entries and variants
func (m *Memory) DeleteCollection(collectionID string) error {
	return m.apply("delete_collection", func(next *Snapshot) (bool, error) {
		c, ok := next.collections[collectionID]
		if !ok {
			return false, notFound(equipment.CollectionRef(collectionID))
		}

		for _, id := range c.EntryIDs {
			delete(next.entries, id)
		}
		for _, id := range c.VariantIDs {
			delete(next.variants, id)
		}
		delete(next.selected, collectionID)
		delete(next.collections, collectionID)
		next.set.CollectionOrder = slices.DeleteFunc(next.set.CollectionOrder, func(id string) bool {
			return id == collectionID
		})
		return true, nil
	})
}

// AddEntry appends an entry, with its items, to a collection
func (m *Memory) AddEntry(entry equipment.Entry) error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("entry.id", entry.ID, vb)
	errors.ValidateRequired("entry.collection_id", entry.CollectionID, vb)
	if err := vb.Build(); err != nil {
		return err
	}

	return m.apply("add_entry", func(next *Snapshot) (bool, error) {
		c, ok := next.mutableCollection(entry.CollectionID)
		if !ok {
			return false, notFound(equipment.CollectionRef(entry.CollectionID))
		}
		if _, exists := next.entries[entry.ID]; exists {
			return false, alreadyExists(equipment.EntryRef(entry.ID))
		}

		e := entry
		e.Items = slices.Clone(entry.Items)
		if err := normalizeItems(&e); err != nil {
			return false, err
		}

		next.entries[e.ID] = &e
		c.EntryIDs = append(c.EntryIDs, e.ID)
		c.EntriesVersion = next.revision
		return true, nil
	})
}

// UpdateEntry replaces an entry's name and items. The owning collection
// cannot change.
func (m *Memory) UpdateEntry(entry equipment.Entry) error {
	if entry.ID == "" {
		return errors.InvalidArgument("entry id is required")
	}

	return m.apply("update_entry", func(next *Snapshot) (bool, error) {
		e, ok := next.mutableEntry(entry.ID)
		if !ok {
			return false, notFound(equipment.EntryRef(entry.ID))
		}
		if entry.CollectionID != "" && entry.CollectionID != e.CollectionID {
			return false, errors.InvalidArgumentf("entry %s belongs to collection %s", entry.ID, e.CollectionID)
		}

		e.Name = entry.Name
		e.Items = slices.Clone(entry.Items)
		if err := normalizeItems(e); err != nil {
			return false, err
		}

		next.touchEntries(e.CollectionID)
		return true, nil
	})
}

// DeleteEntry removes an entry. Links that reference it are left in place.
func (m *Memory) DeleteEntry(entryID string) error {
	return m.apply("delete_entry", func(next *Snapshot) (bool, error) {
		e, ok := next.entries[entryID]
		if !ok {
			return false, notFound(equipment.EntryRef(entryID))
		}

		delete(next.entries, entryID)
		if c, ok := next.mutableCollection(e.CollectionID); ok {
			c.EntryIDs = slices.DeleteFunc(c.EntryIDs, func(id string) bool { return id == entryID })
			c.EntriesVersion = next.revision
		}
		return true, nil
	})
}

// AddItem appends an item to an entry
func (m *Memory) AddItem(item equipment.Item) error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("item.id", item.ID, vb)
	errors.ValidateRequired("item.entry_id", item.EntryID, vb)
	if err := vb.Build(); err != nil {
		return err
	}

	return m.apply("add_item", func(next *Snapshot) (bool, error) {
		e, ok := next.mutableEntry(item.EntryID)
		if !ok {
			return false, notFound(equipment.EntryRef(item.EntryID))
		}
		if _, exists := e.FindItem(item.ID); exists {
			return false, alreadyExists(&item).WithMeta("parent_id", e.ID)
		}

		item.CollectionID = e.CollectionID
		e.Items = append(e.Items, item)
		next.touchEntries(e.CollectionID)
		return true, nil
	})
}

// DeleteItem removes an item from an entry
func (m *Memory) DeleteItem(entryID, itemID string) error {
	return m.apply("delete_item", func(next *Snapshot) (bool, error) {
		e, ok := next.mutableEntry(entryID)
		if !ok {
			return false, notFound(equipment.EntryRef(entryID))
		}
		if _, exists := e.FindItem(itemID); !exists {
			return false, notFoundIn(equipment.ItemRef(itemID), equipment.EntryRef(entryID))
		}

		e.Items = slices.DeleteFunc(e.Items, func(i equipment.Item) bool { return i.ID == itemID })
		next.touchEntries(e.CollectionID)
		return true, nil
	})
}

// AddVariant adds a variant to a collection. The first variant of a
// collection becomes its selected variant.
func (m *Memory) AddVariant(variant equipment.Variant) error {
	vb := errors.NewValidationBuilder()
	errors.ValidateRequired("variant.id", variant.ID, vb)
	errors.ValidateRequired("variant.collection_id", variant.CollectionID, vb)
	if err := vb.Build(); err != nil {
		return err
	}

	return m.apply("add_variant", func(next *Snapshot) (bool, error) {
		c, ok := next.mutableCollection(variant.CollectionID)
		if !ok {
			return false, notFound(equipment.CollectionRef(variant.CollectionID))
		}
		if _, exists := next.variants[variant.ID]; exists {
			return false, alreadyExists(equipment.VariantRef(variant.ID))
		}

		v := variant
		v.EntityLinks = slices.Clone(variant.EntityLinks)
		v.Totals = nil
		v.LinksVersion = next.revision

		next.variants[v.ID] = &v
		c.VariantIDs = append(c.VariantIDs, v.ID)
		if _, selected := next.GetSelectedVariantID(c.ID); !selected {
			next.selected[c.ID] = v.ID
		}
		return true, nil
	})
}

// DeleteVariant removes a variant. Deleting the selected variant leaves the
// collection without a selection.
func (m *Memory) DeleteVariant(variantID string) error {
	return m.apply("delete_variant", func(next *Snapshot) (bool, error) {
		v, ok := next.variants[variantID]
		if !ok {
			return false, notFound(equipment.VariantRef(variantID))
		}

		delete(next.variants, variantID)
		if c, ok := next.mutableCollection(v.CollectionID); ok {
			c.VariantIDs = slices.DeleteFunc(c.VariantIDs, func(id string) bool { return id == variantID })
		}
		if next.selected[v.CollectionID] == variantID {
			delete(next.selected, v.CollectionID)
		}
		return true, nil
	})
}

// SelectVariant makes a variant the selected variant of its collection
func (m *Memory) SelectVariant(collectionID, variantID string) error {
	return m.apply("select_variant", func(next *Snapshot) (bool, error) {
		if _, ok := next.collections[collectionID]; !ok {
			return false, notFound(equipment.CollectionRef(collectionID))
		}
		v, ok := next.variants[variantID]
		if !ok {
			return false, notFound(equipment.VariantRef(variantID))
		}
		if v.CollectionID != collectionID {
			return false, errors.InvalidArgumentf("variant %s belongs to collection %s", variantID, v.CollectionID)
		}
		if next.selected[collectionID] == variantID {
			return false, nil
		}

		next.selected[collectionID] = variantID
		return true, nil
	})
}

// AddLink appends an entity link to a variant
func (m *Memory) AddLink(variantID string, link equipment.EntityLink) error {
	if link.EntryID == "" {
		return errors.InvalidArgument("link entry id is required")
	}

	return m.apply("add_link", func(next *Snapshot) (bool, error) {
		v, ok := next.mutableVariant(variantID)
		if !ok {
			return false, notFound(equipment.VariantRef(variantID))
		}
		if slices.ContainsFunc(v.EntityLinks, func(l equipment.EntityLink) bool { return l.EntryID == link.EntryID }) {
			return false, withEntity(errors.AlreadyExistsf("variant %s already links entry %s", variantID, link.EntryID), equipment.VariantRef(variantID))
		}

		v.EntityLinks = append(v.EntityLinks, link)
		v.LinksVersion = next.revision
		return true, nil
	})
}
