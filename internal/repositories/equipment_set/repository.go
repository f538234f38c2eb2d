// Package equipmentset persists equipment set documents
package equipmentset

//go:generate mockgen -destination=mock/mock_repository.go -package=equipmentsetmock github.com/KirkDiggler/equip-api/internal/repositories/equipment_set Repository

import (
	"context"

	"github.com/KirkDiggler/equip-api/internal/errors"
	"github.com/KirkDiggler/equip-api/internal/store"
)

// Repository defines the interface for equipment set persistence
type Repository interface {
	// Save creates or replaces a set document
	// Returns errors.InvalidArgument for a nil document or an empty set ID
	// Returns errors.Internal for storage failures
	Save(ctx context.Context, input SaveInput) (*SaveOutput, error)

	// Get retrieves a set document by set ID
	// Returns errors.InvalidArgument for an empty ID
	// Returns errors.NotFound if the set doesn't exist
	Get(ctx context.Context, input GetInput) (*GetOutput, error)

	// Delete removes a set document
	// Returns errors.NotFound if the set doesn't exist
	Delete(ctx context.Context, input DeleteInput) (*DeleteOutput, error)

	// List returns the IDs of every stored set, sorted
	List(ctx context.Context, input ListInput) (*ListOutput, error)
}

// SaveInput defines the input for saving a set
type SaveInput struct {
	Document *store.Document
}

// SaveOutput defines the output for saving a set
type SaveOutput struct{}

// GetInput defines the input for getting a set
type GetInput struct {
	ID string
}

// GetOutput defines the output for getting a set
type GetOutput struct {
	Document *store.Document
}

// DeleteInput defines the input for deleting a set
type DeleteInput struct {
	ID string
}

// DeleteOutput defines the output for deleting a set
type DeleteOutput struct{}

// ListInput defines the input for listing sets
type ListInput struct{}

// ListOutput defines the output for listing sets
type ListOutput struct {
	IDs []string
}

const (
	errDocumentNil = "document cannot be nil"
	errSetIDEmpty  = "set ID cannot be empty"
)

func validateDocument(doc *store.Document) error {
	if doc == nil {
		return errors.InvalidArgument(errDocumentNil)
	}
	if doc.Set.ID == "" {
		return errors.InvalidArgument(errSetIDEmpty)
	}
	return nil
}
