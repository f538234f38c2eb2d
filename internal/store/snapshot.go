package store

import (
	"slices"

	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
)

// Snapshot is an immutable view of the entity graph at one revision
type Snapshot struct {
	revision    uint64
	set         *equipment.EquipmentSet
	definitions []equipment.LimitDefinition
	collections map[string]*equipment.Collection
	entries     map[string]*equipment.Entry
	variants    map[string]*equipment.Variant
	selected    map[string]string
}

func newSnapshot() *Snapshot {
	return &Snapshot{
		set:         &equipment.EquipmentSet{},
		collections: make(map[string]*equipment.Collection),
		entries:     make(map[string]*equipment.Entry),
		variants:    make(map[string]*equipment.Variant),
		selected:    make(map[string]string),
	}
}

// Revision implements Reader
func (s *Snapshot) Revision() uint64 {
	return s.revision
}

// GetSet implements Reader
func (s *Snapshot) GetSet() *equipment.EquipmentSet {
	return s.set
}

// GetCollection implements Reader
func (s *Snapshot) GetCollection(collectionID string) (*equipment.Collection, bool) {
	c, ok := s.collections[collectionID]
	return c, ok
}

// GetVariant implements Reader
func (s *Snapshot) GetVariant(variantID string) (*equipment.Variant, bool) {
	v, ok := s.variants[variantID]
	return v, ok
}

// GetEntry implements Reader
func (s *Snapshot) GetEntry(entryID string) (*equipment.Entry, bool) {
	e, ok := s.entries[entryID]
	return e, ok
}

// GetEntriesByCollection implements Reader
func (s *Snapshot) GetEntriesByCollection(collectionID string) []*equipment.Entry {
	c, ok := s.collections[collectionID]
	if !ok {
		return nil
	}

	entries := make([]*equipment.Entry, 0, len(c.EntryIDs))
	for _, id := range c.EntryIDs {
		if e, ok := s.entries[id]; ok {
			entries = append(entries, e)
		}
	}
	return entries
}

// GetSelectedVariantID implements Reader
func (s *Snapshot) GetSelectedVariantID(collectionID string) (string, bool) {
	id, ok := s.selected[collectionID]
	return id, ok && id != ""
}

// GetLimitDefinitions implements Reader
func (s *Snapshot) GetLimitDefinitions() []equipment.LimitDefinition {
	return slices.Clone(s.definitions)
}

// GetGlobalLimits implements Reader
func (s *Snapshot) GetGlobalLimits() equipment.Limits {
	return cloneLimits(s.set.Limits)
}

// GetCollectionOrder implements Reader
func (s *Snapshot) GetCollectionOrder() []string {
	return slices.Clone(s.set.CollectionOrder)
}

// FindItem implements Reader
func (s *Snapshot) FindItem(collectionID, itemID string) (equipment.Item, bool) {
	for _, entry := range s.GetEntriesByCollection(collectionID) {
		if item, ok := entry.FindItem(itemID); ok {
			return item, true
		}
	}
	return equipment.Item{}, false
}

// LocateItem returns the stored copy of item, found through its EntryID, else
// its CollectionID, else across the set. The copy carries the owning entry and
// collection regardless of what item claimed.
func (s *Snapshot) LocateItem(item equipment.Item) (equipment.Item, bool) {
	entryID, ok := s.locateItem(item)
	if !ok {
		return equipment.Item{}, false
	}
	e := s.entries[entryID]
	stored, _ := e.FindItem(item.ID)
	stored.EntryID = e.ID
	stored.CollectionID = e.CollectionID
	return stored, true
}

// SelectedVariant returns the selected variant of a collection
func (s *Snapshot) SelectedVariant(collectionID string) (*equipment.Variant, bool) {
	id, ok := s.GetSelectedVariantID(collectionID)
	if !ok {
		return nil, false
	}
	return s.GetVariant(id)
}

// HasLimitDefinition reports whether name is a known limit
func (s *Snapshot) HasLimitDefinition(name string) bool {
	return slices.ContainsFunc(s.definitions, func(d equipment.LimitDefinition) bool {
		return d.Name == name
	})
}

// clone makes a shallow copy: maps are new, entity pointers are shared until
// a command replaces them
func (s *Snapshot) clone() *Snapshot {
	set := *s.set
	set.CollectionOrder = slices.Clone(s.set.CollectionOrder)

	next := &Snapshot{
		revision:    s.revision,
		set:         &set,
		definitions: s.definitions,
		collections: make(map[string]*equipment.Collection, len(s.collections)),
		entries:     make(map[string]*equipment.Entry, len(s.entries)),
		variants:    make(map[string]*equipment.Variant, len(s.variants)),
		selected:    make(map[string]string, len(s.selected)),
	}
	for k, v := range s.collections {
		next.collections[k] = v
	}
	for k, v := range s.entries {
		next.entries[k] = v
	}
	for k, v := range s.variants {
		next.variants[k] = v
	}
	for k, v := range s.selected {
		next.selected[k] = v
	}
	return next
}

// mutableCollection replaces the shared collection pointer with a private copy
func (s *Snapshot) mutableCollection(collectionID string) (*equipment.Collection, bool) {
	c, ok := s.collections[collectionID]
	if !ok {
		return nil, false
	}
	cp := *c
	cp.EntryIDs = slices.Clone(c.EntryIDs)
	cp.VariantIDs = slices.Clone(c.VariantIDs)
	s.collections[collectionID] = &cp
	return &cp, true
}

func (s *Snapshot) mutableVariant(variantID string) (*equipment.Variant, bool) {
	v, ok := s.variants[variantID]
	if !ok {
		return nil, false
	}
	cp := *v
	cp.EntityLinks = slices.Clone(v.EntityLinks)
	s.variants[variantID] = &cp
	return &cp, true
}

func (s *Snapshot) mutableEntry(entryID string) (*equipment.Entry, bool) {
	e, ok := s.entries[entryID]
	if !ok {
		return nil, false
	}
	cp := *e
	cp.Items = slices.Clone(e.Items)
	s.entries[entryID] = &cp
	return &cp, true
}

// touchEntries stamps a collection's entries version with the snapshot revision
func (s *Snapshot) touchEntries(collectionID string) {
	if c, ok := s.mutableCollection(collectionID); ok {
		c.EntriesVersion = s.revision
	}
}

func cloneLimits(l equipment.Limits) equipment.Limits {
	if l == nil {
		return nil
	}
	out := make(equipment.Limits, len(l))
	for k, v := range l {
		out[k] = v
	}
	return out
}

// move moves the element at from to index to, clamped into range
func move[T any](list []T, from, to int) []T {
	to = clampIndex(to, len(list))
	if from == to {
		return list
	}

	v := list[from]
	list = slices.Delete(list, from, from+1)
	return slices.Insert(list, to, v)
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n-1 {
		return n - 1
	}
	return i
}
