package store

import (
	"sync"

	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
	"github.com/KirkDiggler/equip-api/internal/errors"
	"github.com/KirkDiggler/equip-api/internal/pkg/clock"
	"github.com/KirkDiggler/equip-api/internal/pkg/idgen"
)

// MemoryConfig configures a Memory store
type MemoryConfig struct {
	// Document seeds the store; nil starts from an empty set
	Document *Document

	IDGenerator idgen.Generator
	Clock       clock.Clock
}

// Memory is the in-process copy-on-write Store
type Memory struct {
	mu      sync.RWMutex
	current *Snapshot
	log     []EventLogEntry

	ids   idgen.Generator
	clock clock.Clock
}

// NewMemory creates a Memory store, importing cfg.Document when given
func NewMemory(cfg *MemoryConfig) (*Memory, error) {
	if cfg == nil {
		cfg = &MemoryConfig{}
	}

	m := &Memory{
		current: newSnapshot(),
		ids:     cfg.IDGenerator,
		clock:   cfg.Clock,
	}
	if m.ids == nil {
		m.ids = idgen.NewUUID("evt")
	}
	if m.clock == nil {
		m.clock = clock.New()
	}

	if cfg.Document != nil {
		err := m.apply("import", func(next *Snapshot) (bool, error) {
			return true, cfg.Document.load(next)
		})
		if err != nil {
			return nil, err
		}
	}

	return m, nil
}

// apply runs fn against a private clone of the current snapshot. The clone is
// published only when fn succeeds and reports a change.
func (m *Memory) apply(kind string, fn func(next *Snapshot) (bool, error)) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := m.current.clone()
	next.revision = m.current.revision + 1

	changed, err := fn(next)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	m.current = next
	m.log = append(m.log, EventLogEntry{
		ID:       m.ids.Generate(),
		Revision: next.revision,
		Kind:     kind,
		At:       m.clock.Now(),
	})
	return nil
}

// Snapshot implements Store
func (m *Memory) Snapshot() *Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Log implements Store
func (m *Memory) Log() []EventLogEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]EventLogEntry, len(m.log))
	copy(out, m.log)
	return out
}

// Export implements Store
func (m *Memory) Export() *Document {
	return Export(m.Snapshot())
}

// Revision implements Reader
func (m *Memory) Revision() uint64 { return m.Snapshot().Revision() }

// GetSet implements Reader
func (m *Memory) GetSet() *equipment.EquipmentSet { return m.Snapshot().GetSet() }

// GetCollection implements Reader
func (m *Memory) GetCollection(collectionID string) (*equipment.Collection, bool) {
	return m.Snapshot().GetCollection(collectionID)
}

// GetVariant implements Reader
func (m *Memory) GetVariant(variantID string) (*equipment.Variant, bool) {
	return m.Snapshot().GetVariant(variantID)
}

// GetEntry implements Reader
func (m *Memory) GetEntry(entryID string) (*equipment.Entry, bool) {
	return m.Snapshot().GetEntry(entryID)
}

// GetEntriesByCollection implements Reader
func (m *Memory) GetEntriesByCollection(collectionID string) []*equipment.Entry {
	return m.Snapshot().GetEntriesByCollection(collectionID)
}

// GetSelectedVariantID implements Reader
func (m *Memory) GetSelectedVariantID(collectionID string) (string, bool) {
	return m.Snapshot().GetSelectedVariantID(collectionID)
}

// GetLimitDefinitions implements Reader
func (m *Memory) GetLimitDefinitions() []equipment.LimitDefinition {
	return m.Snapshot().GetLimitDefinitions()
}

// GetGlobalLimits implements Reader
func (m *Memory) GetGlobalLimits() equipment.Limits { return m.Snapshot().GetGlobalLimits() }

// GetCollectionOrder implements Reader
func (m *Memory) GetCollectionOrder() []string { return m.Snapshot().GetCollectionOrder() }

// FindItem implements Reader
func (m *Memory) FindItem(collectionID, itemID string) (equipment.Item, bool) {
	return m.Snapshot().FindItem(collectionID, itemID)
}

// validateLimits checks names against the known definitions and rejects
// negative values
func validateLimits(next *Snapshot, field string, limits equipment.Limits) error {
	vb := errors.NewValidationBuilder()
	for name, value := range limits {
		if !next.HasLimitDefinition(name) {
			vb.Fieldf(field+"."+name, "unknown limit %q", name)
			continue
		}
		errors.ValidateNonNegative(field+"."+name, value, vb)
	}
	return vb.Build()
}

// normalizeLimits drops unset values; a mapping with nothing set is nil
func normalizeLimits(limits equipment.Limits) equipment.Limits {
	if limits.IsEmpty() {
		return nil
	}
	out := make(equipment.Limits, len(limits))
	for name, value := range limits {
		if value != 0 {
			out[name] = value
		}
	}
	return out
}

// normalizeItems stamps parent ids onto items and rejects duplicates
func normalizeItems(entry *equipment.Entry) error {
	seen := make(map[string]struct{}, len(entry.Items))
	for i := range entry.Items {
		item := &entry.Items[i]
		if item.ID == "" {
			return errors.InvalidArgumentf("entry %s: item %d has no id", entry.ID, i)
		}
		if _, dup := seen[item.ID]; dup {
			return errors.InvalidArgumentf("entry %s: duplicate item %s", entry.ID, item.ID)
		}
		seen[item.ID] = struct{}{}
		item.EntryID = entry.ID
		item.CollectionID = entry.CollectionID
	}
	return nil
}
