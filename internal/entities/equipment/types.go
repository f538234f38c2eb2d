// Package equipment holds the equipment set entity graph: sets, collections,
// entries, items, variants and the totals derived from them.
package equipment

import (
	"strings"

	"github.com/KirkDiggler/rpg-toolkit/core"
)

// Entity type names reported through core.Entity
const (
	EntityTypeSet        = "equipment_set"
	EntityTypeCollection = "equipment_collection"
	EntityTypeEntry      = "equipment_entry"
	EntityTypeItem       = "equipment_item"
	EntityTypeVariant    = "equipment_variant"
)

// Dimension is the totals figure a limit applies to
type Dimension string

// Known limit dimensions
const (
	DimensionPrice  Dimension = "price"
	DimensionWeight Dimension = "weight"
)

// String returns the string representation of the dimension
func (d Dimension) String() string {
	return string(d)
}

// IsValid checks if the dimension is one of the known dimensions
func (d Dimension) IsValid() bool {
	switch d {
	case DimensionPrice, DimensionWeight:
		return true
	default:
		return false
	}
}

// AllDimensions returns every known dimension
func AllDimensions() []Dimension {
	return []Dimension{DimensionPrice, DimensionWeight}
}

// Totals is a price/weight pair
type Totals struct {
	Price  float64 `json:"price" yaml:"price"`
	Weight float64 `json:"weight" yaml:"weight"`
}

// Add returns the sum of two totals
func (t Totals) Add(o Totals) Totals {
	return Totals{
		Price:  t.Price + o.Price,
		Weight: t.Weight + o.Weight,
	}
}

// Value returns the figure for a dimension, zero for unknown dimensions
func (t Totals) Value(d Dimension) float64 {
	switch d {
	case DimensionPrice:
		return t.Price
	case DimensionWeight:
		return t.Weight
	default:
		return 0
	}
}

// Item is one concrete choice for an entry. Items are replaced wholesale on edit.
type Item struct {
	ID           string  `json:"id" yaml:"id"`
	CollectionID string  `json:"collection_id" yaml:"collection_id"`
	EntryID      string  `json:"entry_id" yaml:"entry_id"`
	Name         string  `json:"name" yaml:"name"`
	Price        float64 `json:"price" yaml:"price"`
	Weight       float64 `json:"weight" yaml:"weight"`
}

// GetID implements core.Entity
func (i *Item) GetID() string { return i.ID }

// GetType implements core.Entity
func (i *Item) GetType() string { return EntityTypeItem }

// Totals returns the item's own price and weight
func (i Item) Totals() Totals {
	return Totals{Price: i.Price, Weight: i.Weight}
}

// Entry is a named equipment slot offering alternative items
type Entry struct {
	ID           string `json:"id" yaml:"id"`
	CollectionID string `json:"collection_id" yaml:"collection_id"`
	Name         string `json:"name" yaml:"name"`
	Items        []Item `json:"items,omitempty" yaml:"items,omitempty"`
}

// GetID implements core.Entity
func (e *Entry) GetID() string { return e.ID }

// GetType implements core.Entity
func (e *Entry) GetType() string { return EntityTypeEntry }

// FindItem returns the entry's item with the given id
func (e *Entry) FindItem(itemID string) (Item, bool) {
	if itemID == "" {
		return Item{}, false
	}
	for _, item := range e.Items {
		if item.ID == itemID {
			return item, true
		}
	}
	return Item{}, false
}

// EntityLink binds an entry to its selected item within one variant.
// An empty SelectedItemID means nothing is selected.
type EntityLink struct {
	EntryID        string `json:"entry_id" yaml:"entry_id"`
	SelectedItemID string `json:"selected_item_id,omitempty" yaml:"selected_item_id,omitempty"`
}

// TotalsRecord is the running total after one link of a variant.
// Missing records stand in for links whose entry no longer exists; they keep
// their position and carry the running totals unchanged.
type TotalsRecord struct {
	EntryID      string `json:"entry_id"`
	SelectedItem Item   `json:"selected_item"`
	Accumulated  Totals `json:"accumulated"`
	Missing      bool   `json:"missing,omitempty"`
}

// VariantTotals is the cumulative record sequence plus the final totals
type VariantTotals struct {
	Entries []TotalsRecord `json:"entries"`
	Totals  Totals         `json:"totals"`
}

// Variant is one loadout alternative of a collection
type Variant struct {
	ID           string         `json:"id" yaml:"id"`
	CollectionID string         `json:"collection_id" yaml:"collection_id"`
	Name         string         `json:"name,omitempty" yaml:"name,omitempty"`
	EntityLinks  []EntityLink   `json:"entity_links" yaml:"entity_links"`
	Totals       *VariantTotals `json:"totals,omitempty" yaml:"-"`

	// LinksVersion changes whenever EntityLinks is replaced
	LinksVersion uint64 `json:"-" yaml:"-"`
}

// GetID implements core.Entity
func (v *Variant) GetID() string { return v.ID }

// GetType implements core.Entity
func (v *Variant) GetType() string { return EntityTypeVariant }

// LimitDefinition names a limit and the totals dimension it caps
type LimitDefinition struct {
	Name      string    `json:"name" yaml:"name" mapstructure:"name"`
	Dimension Dimension `json:"dimension" yaml:"dimension" mapstructure:"dimension"`
}

// Limits maps a limit name to its ceiling. A missing or zero value means no limit.
type Limits map[string]float64

// Get returns the limit value when it is set and non-zero
func (l Limits) Get(name string) (float64, bool) {
	if l == nil {
		return 0, false
	}
	v, ok := l[name]
	if !ok || v == 0 {
		return 0, false
	}
	return v, true
}

// IsEmpty reports whether no limit in the mapping is set
func (l Limits) IsEmpty() bool {
	for name := range l {
		if _, ok := l.Get(name); ok {
			return false
		}
	}
	return true
}

// CollectionTotals pairs a collection's selected variant totals with its
// resolved limits
type CollectionTotals struct {
	CollectionID string          `json:"collection_id"`
	HasVariant   bool            `json:"has_variant"`
	Totals       Totals          `json:"totals"`
	Limits       Limits          `json:"limits,omitempty"`
	OverLimit    map[string]bool `json:"over_limit,omitempty"`
}

// SetRow is one collection's contribution to the set in collection order
type SetRow struct {
	CollectionID string `json:"collection_id"`
	Totals       Totals `json:"totals"`
	Accumulated  Totals `json:"accumulated"`
}

// SetTotals is the roll-up of every collection of a set
type SetTotals struct {
	Rows      []SetRow        `json:"rows"`
	Totals    Totals          `json:"totals"`
	Limits    Limits          `json:"limits,omitempty"`
	OverLimit map[string]bool `json:"over_limit,omitempty"`
}

// Collection is a named, ordered group of entries and variants
type Collection struct {
	ID         string            `json:"id" yaml:"id"`
	Name       string            `json:"name" yaml:"name"`
	EntryIDs   []string          `json:"entry_ids,omitempty" yaml:"-"`
	VariantIDs []string          `json:"variant_ids,omitempty" yaml:"-"`
	Limits     Limits            `json:"limits,omitempty" yaml:"limits,omitempty"`
	Totals     *CollectionTotals `json:"totals,omitempty" yaml:"-"`

	// EntriesVersion changes whenever an entry or item of the collection changes
	EntriesVersion uint64 `json:"-" yaml:"-"`
}

// GetID implements core.Entity
func (c *Collection) GetID() string { return c.ID }

// GetType implements core.Entity
func (c *Collection) GetType() string { return EntityTypeCollection }

// EquipmentSet is the aggregate root
type EquipmentSet struct {
	ID              string     `json:"id" yaml:"id"`
	Name            string     `json:"name" yaml:"name"`
	CollectionOrder []string   `json:"collection_order" yaml:"collection_order"`
	Limits          Limits     `json:"limits,omitempty" yaml:"limits,omitempty"`
	Totals          *SetTotals `json:"totals,omitempty" yaml:"-"`
}

// GetID implements core.Entity
func (s *EquipmentSet) GetID() string { return s.ID }

// GetType implements core.Entity
func (s *EquipmentSet) GetType() string { return EntityTypeSet }

// Ref names an entity by type and id when only the id is at hand, such as a
// dangling link or a command targeting something that does not exist
type Ref struct {
	EntityType string
	ID         string
}

// GetID implements core.Entity
func (r Ref) GetID() string { return r.ID }

// GetType implements core.Entity
func (r Ref) GetType() string { return r.EntityType }

func CollectionRef(id string) Ref { return Ref{EntityType: EntityTypeCollection, ID: id} }
func EntryRef(id string) Ref      { return Ref{EntityType: EntityTypeEntry, ID: id} }
func ItemRef(id string) Ref       { return Ref{EntityType: EntityTypeItem, ID: id} }
func VariantRef(id string) Ref    { return Ref{EntityType: EntityTypeVariant, ID: id} }

// Kind returns the short entity name used in messages, "collection" for
// "equipment_collection"
func Kind(e core.Entity) string {
	return strings.TrimPrefix(e.GetType(), "equipment_")
}

// LogAttrs returns slog key/value attributes identifying e
func LogAttrs(e core.Entity) []any {
	return []any{"entity_type", e.GetType(), "entity_id", e.GetID()}
}

var (
	_ core.Entity = Ref{}
	_ core.Entity = (*Item)(nil)
	_ core.Entity = (*Entry)(nil)
	_ core.Entity = (*Variant)(nil)
	_ core.Entity = (*Collection)(nil)
	_ core.Entity = (*EquipmentSet)(nil)
)
