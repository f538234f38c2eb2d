// Package sets manages the equipment sets loaded into the process. Each set
// owns an entity store and a totals orchestrator; events for one set are
// applied one at a time.
package sets

//go:generate mockgen -destination=mock/mock_service.go -package=setsmock github.com/KirkDiggler/equip-api/internal/services/sets Service

import (
	"context"

	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
	"github.com/KirkDiggler/equip-api/internal/store"
)

// Service defines the equipment set registry
type Service interface {
	// Create registers a new set, computes its totals and persists it.
	// Returns errors.CodeAlreadyExists when the set ID is taken.
	Create(ctx context.Context, input *CreateInput) (*CreateOutput, error)

	// Load reads a set from the repository and recomputes its totals.
	// Loading an already loaded set is a no-op.
	Load(ctx context.Context, input *LoadInput) (*LoadOutput, error)

	// Dispatch applies one mutation event to a set, loading it first when needed
	Dispatch(ctx context.Context, input *DispatchInput) (*DispatchOutput, error)

	// Recalculate recomputes every totals figure of a set from scratch
	Recalculate(ctx context.Context, input *RecalculateInput) (*RecalculateOutput, error)

	// GetTotals returns the set with its current derived totals
	GetTotals(ctx context.Context, input *GetTotalsInput) (*GetTotalsOutput, error)

	// Save persists a loaded set
	Save(ctx context.Context, input *SaveInput) (*SaveOutput, error)

	// Delete unloads a set and removes it from the repository
	Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error)
}

// CreateInput carries the document of a new set. An empty set ID is generated;
// missing limit definitions and global limits come from the service defaults.
type CreateInput struct {
	Document *store.Document
}

// CreateOutput returns the new set's ID and the events of its first calculation
type CreateOutput struct {
	SetID    string
	Events   []equipment.Event
	Revision uint64
}

// LoadInput identifies the set to load
type LoadInput struct {
	SetID string
}

// LoadOutput reports the loaded set's revision
type LoadOutput struct {
	SetID    string
	Revision uint64
	// Loaded is false when the set was already in memory
	Loaded bool
}

// DispatchInput carries one mutation event for a set
type DispatchInput struct {
	SetID string
	Event equipment.Event
}

// DispatchOutput lists the emitted totals events
type DispatchOutput struct {
	Events   []equipment.Event
	Revision uint64
}

// RecalculateInput identifies the set to recompute
type RecalculateInput struct {
	SetID string
}

// RecalculateOutput lists the emitted totals events
type RecalculateOutput struct {
	Events   []equipment.Event
	Revision uint64
}

// GetTotalsInput identifies the set to read
type GetTotalsInput struct {
	SetID string
}

// GetTotalsOutput returns the exported set
type GetTotalsOutput struct {
	Document *store.Document
	Revision uint64
}

// SaveInput identifies the set to persist
type SaveInput struct {
	SetID string
}

// SaveOutput reports the persisted revision
type SaveOutput struct {
	Revision uint64
}

// DeleteInput identifies the set to delete
type DeleteInput struct {
	SetID string
}

// DeleteOutput is empty
type DeleteOutput struct{}
