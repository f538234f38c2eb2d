package store

import (
	"time"

	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
)

// Reader is the read view the totals engine needs. Returned entities are
// shared with the snapshot and must not be modified.
type Reader interface {
	// Revision is the store-wide write counter this view reflects
	Revision() uint64

	GetSet() *equipment.EquipmentSet
	GetCollection(collectionID string) (*equipment.Collection, bool)
	GetVariant(variantID string) (*equipment.Variant, bool)
	GetEntry(entryID string) (*equipment.Entry, bool)

	// GetEntriesByCollection returns the collection's entries in insertion order
	GetEntriesByCollection(collectionID string) []*equipment.Entry
	GetSelectedVariantID(collectionID string) (string, bool)
	GetLimitDefinitions() []equipment.LimitDefinition
	GetGlobalLimits() equipment.Limits
	GetCollectionOrder() []string

	// FindItem looks an item up among the entries of a collection
	FindItem(collectionID, itemID string) (equipment.Item, bool)
}

// Writer applies commands. Lifecycle commands create and destroy entities;
// mutation commands carry the engine's input events; patch commands write
// derived totals back.
type Writer interface {
	AddCollection(collection equipment.Collection) error
	DeleteCollection(collectionID string) error
	AddEntry(entry equipment.Entry) error
	UpdateEntry(entry equipment.Entry) error
	DeleteEntry(entryID string) error
	AddItem(item equipment.Item) error
	DeleteItem(entryID, itemID string) error
	AddVariant(variant equipment.Variant) error
	DeleteVariant(variantID string) error
	SelectVariant(collectionID, variantID string) error
	AddLink(variantID string, link equipment.EntityLink) error

	MoveEntry(collectionID, entryID string, moveTo int) error
	ReplaceItem(item equipment.Item) error
	SelectItem(collectionID, entryID, itemID string) error
	MoveCollection(collectionID string, moveTo int) error
	SetCollectionLimits(collectionID string, limits equipment.Limits) error
	SetGlobalLimits(limits equipment.Limits) error
	SetLimitDefinitions(definitions []equipment.LimitDefinition) error
	SetSetName(name string) error

	PatchVariantTotals(variantID string, totals *equipment.VariantTotals) error
	PatchCollectionTotals(totals map[string]equipment.CollectionTotals) error
	PatchSetTotals(totals equipment.SetTotals) error
}

// Store is a readable, writable entity store that hands out stable snapshots
type Store interface {
	Reader
	Writer

	// Snapshot returns the current immutable view
	Snapshot() *Snapshot

	// Log returns the accepted writes in order
	Log() []EventLogEntry

	// Export serializes the current state
	Export() *Document
}

// EventLogEntry records one accepted write
type EventLogEntry struct {
	ID       string    `json:"id" yaml:"id"`
	Revision uint64    `json:"revision" yaml:"revision"`
	Kind     string    `json:"kind" yaml:"kind"`
	At       time.Time `json:"at" yaml:"at"`
}
