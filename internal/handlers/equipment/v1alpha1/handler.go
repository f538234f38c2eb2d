package v1alpha1

import (
	"context"
	"encoding/json"
	"log/slog"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
	"github.com/KirkDiggler/equip-api/internal/errors"
	"github.com/KirkDiggler/equip-api/internal/services/sets"
	"github.com/KirkDiggler/equip-api/internal/store"
)

// Request and response field names
const (
	fieldSetID    = "set_id"
	fieldType     = "type"
	fieldPayload  = "payload"
	fieldDocument = "document"
	fieldEvents   = "events"
	fieldRevision = "revision"
)

// HandlerConfig holds dependencies for the handler
type HandlerConfig struct {
	SetService sets.Service
	Logger     *slog.Logger
}

// Validate ensures all required dependencies are present
func (c *HandlerConfig) Validate() error {
	if c == nil {
		return errors.InvalidArgument("config is required")
	}
	if c.SetService == nil {
		return errors.InvalidArgument("set service is required")
	}
	return nil
}

// Handler implements TotalsServiceServer
type Handler struct {
	setService sets.Service
	logger     *slog.Logger
}

// NewHandler creates a new handler with the given configuration
func NewHandler(cfg *HandlerConfig) (*Handler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		setService: cfg.SetService,
		logger:     logger,
	}, nil
}

// CreateSet registers a new equipment set
func (h *Handler) CreateSet(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	docField := req.GetFields()[fieldDocument].GetStructValue()
	if docField == nil {
		return nil, errors.ToGRPCError(errors.InvalidArgument("document is required"))
	}

	data, err := docField.MarshalJSON()
	if err != nil {
		return nil, errors.ToGRPCError(errors.WrapWithCode(err, errors.CodeInvalidArgument, "invalid document"))
	}
	doc, err := store.DecodeDocument(data, store.FormatJSON)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.setService.Create(ctx, &sets.CreateInput{Document: doc})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	resp, err := eventsResponse(out.Events, out.Revision)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	resp.Fields[fieldSetID] = structpb.NewStringValue(out.SetID)

	return resp, nil
}

// Dispatch decodes and applies one mutation event
func (h *Handler) Dispatch(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	setID, err := requireString(req, fieldSetID)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	eventType, err := requireString(req, fieldType)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	var payload []byte
	if p := req.GetFields()[fieldPayload].GetStructValue(); p != nil {
		payload, err = p.MarshalJSON()
		if err != nil {
			return nil, errors.ToGRPCError(errors.WrapWithCode(err, errors.CodeInvalidArgument, "invalid payload"))
		}
	}

	event, err := equipment.DecodeEvent(eventType, payload)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.setService.Dispatch(ctx, &sets.DispatchInput{SetID: setID, Event: event})
	if err != nil {
		h.logger.WarnContext(ctx, "dispatch failed", "set_id", setID, "event_type", eventType, "error", err)
		return nil, errors.ToGRPCError(err)
	}

	resp, err := eventsResponse(out.Events, out.Revision)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return resp, nil
}

// GetTotals returns the set document with its derived totals
func (h *Handler) GetTotals(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	setID, err := requireString(req, fieldSetID)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.setService.GetTotals(ctx, &sets.GetTotalsInput{SetID: setID})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	doc, err := toStruct(out.Document)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldDocument: structpb.NewStructValue(doc),
		fieldRevision: structpb.NewNumberValue(float64(out.Revision)),
	}}, nil
}

// Recalculate recomputes a set's totals from scratch
func (h *Handler) Recalculate(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	setID, err := requireString(req, fieldSetID)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.setService.Recalculate(ctx, &sets.RecalculateInput{SetID: setID})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	resp, err := eventsResponse(out.Events, out.Revision)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}
	return resp, nil
}

// SaveSet persists a loaded set
func (h *Handler) SaveSet(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	setID, err := requireString(req, fieldSetID)
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	out, err := h.setService.Save(ctx, &sets.SaveInput{SetID: setID})
	if err != nil {
		return nil, errors.ToGRPCError(err)
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldRevision: structpb.NewNumberValue(float64(out.Revision)),
	}}, nil
}

func requireString(req *structpb.Struct, field string) (string, error) {
	v := req.GetFields()[field].GetStringValue()
	if v == "" {
		return "", errors.InvalidArgumentf("%s is required", field)
	}
	return v, nil
}

// eventsResponse renders {events: [{type, payload}], revision}
func eventsResponse(events []equipment.Event, revision uint64) (*structpb.Struct, error) {
	values := make([]*structpb.Value, 0, len(events))
	for _, e := range events {
		payload, err := toStruct(e)
		if err != nil {
			return nil, err
		}
		values = append(values, structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			fieldType:    structpb.NewStringValue(e.Type().String()),
			fieldPayload: structpb.NewStructValue(payload),
		}}))
	}

	return &structpb.Struct{Fields: map[string]*structpb.Value{
		fieldEvents:   structpb.NewListValue(&structpb.ListValue{Values: values}),
		fieldRevision: structpb.NewNumberValue(float64(revision)),
	}}, nil
}

// toStruct converts a JSON object value into a Struct
func toStruct(v any) (*structpb.Struct, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to encode response")
	}
	out := &structpb.Struct{}
	if err := out.UnmarshalJSON(data); err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInternal, "failed to encode response")
	}
	return out, nil
}

var _ TotalsServiceServer = (*Handler)(nil)
