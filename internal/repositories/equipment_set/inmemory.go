package equipmentset

import (
	"context"
	"encoding/json"
	"slices"
	"sync"

	"github.com/KirkDiggler/equip-api/internal/errors"
	"github.com/KirkDiggler/equip-api/internal/store"
)

// InMemoryRepository implements Repository using in-memory storage.
// Documents are kept encoded so callers never share state with the store.
type InMemoryRepository struct {
	mu   sync.RWMutex
	sets map[string][]byte
}

// NewInMemory creates a new in-memory repository
func NewInMemory() *InMemoryRepository {
	return &InMemoryRepository{
		sets: make(map[string][]byte),
	}
}

// Save stores a set document
func (r *InMemoryRepository) Save(_ context.Context, input SaveInput) (*SaveOutput, error) {
	if err := validateDocument(input.Document); err != nil {
		return nil, err
	}

	data, err := json.Marshal(input.Document)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to marshal set")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.sets[input.Document.Set.ID] = data

	return &SaveOutput{}, nil
}

// Get retrieves a set document by ID
func (r *InMemoryRepository) Get(_ context.Context, input GetInput) (*GetOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errSetIDEmpty)
	}

	r.mu.RLock()
	data, exists := r.sets[input.ID]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.NotFoundf("equipment set %s not found", input.ID)
	}

	doc := &store.Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to unmarshal set")
	}

	return &GetOutput{Document: doc}, nil
}

// Delete removes a set document
func (r *InMemoryRepository) Delete(_ context.Context, input DeleteInput) (*DeleteOutput, error) {
	if input.ID == "" {
		return nil, errors.InvalidArgument(errSetIDEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sets[input.ID]; !exists {
		return nil, errors.NotFoundf("equipment set %s not found", input.ID)
	}
	delete(r.sets, input.ID)

	return &DeleteOutput{}, nil
}

// List returns every stored set ID
func (r *InMemoryRepository) List(_ context.Context, _ ListInput) (*ListOutput, error) {
	r.mu.RLock()
	ids := make([]string, 0, len(r.sets))
	for id := range r.sets {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	slices.Sort(ids)
	return &ListOutput{IDs: ids}, nil
}

var _ Repository = (*InMemoryRepository)(nil)
