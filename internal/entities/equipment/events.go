package equipment

import (
	"encoding/json"

	"github.com/KirkDiggler/equip-api/internal/errors"
)

// EventType identifies a mutation or recalculation event
type EventType string

// Mutation events accepted from the outside
const (
	EventEntryMoved              EventType = "entry_moved"
	EventEntryUpdated            EventType = "entry_updated"
	EventItemUpdated             EventType = "item_updated"
	EventItemSelected            EventType = "item_selected"
	EventCollectionMoved         EventType = "collection_moved"
	EventLimitsChanged           EventType = "limits_changed"
	EventSetSettingsChanged      EventType = "set_settings_changed"
	EventLimitDefinitionsChanged EventType = "limit_definitions_changed"
)

// Recalculation events produced by the engine
const (
	EventRecalculateVariant      EventType = "recalculate_variant"
	EventVariantTotalsUpdated    EventType = "variant_totals_updated"
	EventCollectionTotalsUpdated EventType = "collection_totals_updated"
	EventSetTotalsUpdated        EventType = "set_totals_updated"
)

// String returns the string representation of the event type
func (t EventType) String() string {
	return string(t)
}

// Event is anything the totals engine can process or emit
type Event interface {
	Type() EventType
}

// EntryMoved moves an entry's link inside the selected variant of a collection
type EntryMoved struct {
	CollectionID string `json:"collection_id"`
	EntryID      string `json:"entry_id"`
	MoveTo       int    `json:"move_to"`
}

// Type implements Event
func (EntryMoved) Type() EventType { return EventEntryMoved }

// EntryUpdated replaces an entry (name and items) wholesale
type EntryUpdated struct {
	Entry Entry `json:"entry"`
}

// Type implements Event
func (EntryUpdated) Type() EventType { return EventEntryUpdated }

// ItemUpdated replaces an item wholesale
type ItemUpdated struct {
	Item Item `json:"item"`
}

// Type implements Event
func (ItemUpdated) Type() EventType { return EventItemUpdated }

// ItemSelected makes an item the selection of its entry in the collection's
// selected variant. EntryID is optional; it is looked up from the collection
// when empty.
type ItemSelected struct {
	ItemID       string `json:"id"`
	CollectionID string `json:"collection_id"`
	EntryID      string `json:"entry_id,omitempty"`
}

// Type implements Event
func (ItemSelected) Type() EventType { return EventItemSelected }

// CollectionMoved reorders the set's collection order
type CollectionMoved struct {
	CollectionID string `json:"id"`
	MoveTo       int    `json:"move_to"`
}

// Type implements Event
func (CollectionMoved) Type() EventType { return EventCollectionMoved }

// LimitsChanged replaces the limits of a collection, or the global limits
// when CollectionID is empty
type LimitsChanged struct {
	CollectionID string `json:"collection_id,omitempty"`
	Limits       Limits `json:"limits"`
}

// Type implements Event
func (LimitsChanged) Type() EventType { return EventLimitsChanged }

// SetSettingsChanged updates set level settings
type SetSettingsChanged struct {
	Name string `json:"name"`
}

// Type implements Event
func (SetSettingsChanged) Type() EventType { return EventSetSettingsChanged }

// LimitDefinitionsChanged replaces the known limit definitions
type LimitDefinitionsChanged struct {
	Definitions []LimitDefinition `json:"definitions"`
}

// Type implements Event
func (LimitDefinitionsChanged) Type() EventType { return EventLimitDefinitionsChanged }

// RecalculateVariant asks for a variant's totals to be recomputed
type RecalculateVariant struct {
	VariantID string `json:"variant_id"`
}

// Type implements Event
func (RecalculateVariant) Type() EventType { return EventRecalculateVariant }

// VariantTotalsUpdated carries a variant's freshly computed totals
type VariantTotalsUpdated struct {
	VariantID string         `json:"variant_id"`
	Entries   []TotalsRecord `json:"entries"`
	Totals    Totals         `json:"totals"`
}

// Type implements Event
func (VariantTotalsUpdated) Type() EventType { return EventVariantTotalsUpdated }

// CollectionTotalsUpdated carries the aggregated totals of every collection
type CollectionTotalsUpdated struct {
	Collections map[string]CollectionTotals `json:"collections"`
}

// Type implements Event
func (CollectionTotalsUpdated) Type() EventType { return EventCollectionTotalsUpdated }

// SetTotalsUpdated carries the set roll-up
type SetTotalsUpdated struct {
	Totals SetTotals `json:"totals"`
}

// Type implements Event
func (SetTotalsUpdated) Type() EventType { return EventSetTotalsUpdated }

// MutationEventTypes lists the event types accepted by DecodeEvent
func MutationEventTypes() []string {
	return []string{
		EventEntryMoved.String(),
		EventEntryUpdated.String(),
		EventItemUpdated.String(),
		EventItemSelected.String(),
		EventCollectionMoved.String(),
		EventLimitsChanged.String(),
		EventSetSettingsChanged.String(),
		EventLimitDefinitionsChanged.String(),
	}
}

// DecodeEvent builds a mutation event from its type name and JSON payload
func DecodeEvent(eventType string, payload []byte) (Event, error) {
	var event Event
	var err error

	switch EventType(eventType) {
	case EventEntryMoved:
		event, err = decodeAs[EntryMoved](payload)
	case EventEntryUpdated:
		event, err = decodeAs[EntryUpdated](payload)
	case EventItemUpdated:
		event, err = decodeAs[ItemUpdated](payload)
	case EventItemSelected:
		event, err = decodeAs[ItemSelected](payload)
	case EventCollectionMoved:
		event, err = decodeAs[CollectionMoved](payload)
	case EventLimitsChanged:
		event, err = decodeAs[LimitsChanged](payload)
	case EventSetSettingsChanged:
		event, err = decodeAs[SetSettingsChanged](payload)
	case EventLimitDefinitionsChanged:
		event, err = decodeAs[LimitDefinitionsChanged](payload)
	default:
		return nil, errors.InvalidArgumentf("unknown event type %q", eventType)
	}
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "malformed "+eventType+" payload")
	}

	return event, nil
}

func decodeAs[T Event](payload []byte) (T, error) {
	var event T
	if len(payload) == 0 {
		return event, nil
	}
	err := json.Unmarshal(payload, &event)
	return event, err
}
