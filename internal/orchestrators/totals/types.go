package totals

import (
	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
)

// DispatchInput carries one mutation event
type DispatchInput struct {
	Event equipment.Event
}

// DispatchOutput lists the output events in the order they were emitted
type DispatchOutput struct {
	Events []equipment.Event

	// Revision is the store revision after the last stage
	Revision uint64
}

// RecalculateInput requests a full recomputation of every selected variant
type RecalculateInput struct{}

// RecalculateOutput lists the output events of a full recomputation
type RecalculateOutput struct {
	Events   []equipment.Event
	Revision uint64
}
