// Package totals implements the recalculation orchestrator: it applies
// mutation events to the entity store and runs the resulting totals
// recomputation as a one-way staged pipeline
// (variant -> collection -> set).
package totals

//go:generate mockgen -destination=mock/mock_service.go -package=totalsmock github.com/KirkDiggler/equip-api/internal/orchestrators/totals Service

import (
	"context"
	"log/slog"
	"sync"
	"time"

	engine "github.com/KirkDiggler/equip-api/internal/engine/totals"
	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
	"github.com/KirkDiggler/equip-api/internal/errors"
	"github.com/KirkDiggler/equip-api/internal/metrics"
	"github.com/KirkDiggler/equip-api/internal/store"
)

// Service defines the interface for totals recalculation
type Service interface {
	// Dispatch applies one mutation event and runs every follow-up stage
	Dispatch(ctx context.Context, input *DispatchInput) (*DispatchOutput, error)

	// Recalculate drops cached results and recomputes every selected variant,
	// then the collection and set totals
	Recalculate(ctx context.Context, input *RecalculateInput) (*RecalculateOutput, error)
}

// Config holds the dependencies for the totals orchestrator
type Config struct {
	Store store.Store

	// Metrics defaults to a no-op recorder
	Metrics metrics.Recorder

	// Logger defaults to slog.Default()
	Logger *slog.Logger
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Store == nil {
		vb.RequiredField("Store")
	}

	return vb.Build()
}

type orchestrator struct {
	mu      sync.Mutex
	store   store.Store
	cache   *engine.Cache
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewOrchestrator creates a new totals orchestrator with the provided dependencies
func NewOrchestrator(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	o := &orchestrator{
		store:   cfg.Store,
		cache:   engine.NewCache(),
		metrics: cfg.Metrics,
		logger:  cfg.Logger,
	}
	if o.metrics == nil {
		o.metrics = metrics.NewNop()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}

	return o, nil
}

// Dispatch applies a mutation event and drains the pipeline
func (o *orchestrator) Dispatch(ctx context.Context, input *DispatchInput) (*DispatchOutput, error) {
	if input == nil || input.Event == nil {
		return nil, errors.InvalidArgument("event is required")
	}
	if stageOf(input.Event) != stageMutation {
		return nil, errors.InvalidArgumentf("%s is not a mutation event", input.Event.Type())
	}

	o.mu.Lock()
	defer o.mu.Unlock()

	start := time.Now()
	eventType := input.Event.Type().String()

	o.pruneCache()

	p := newPipeline()
	err := p.push(input.Event)
	if err == nil {
		err = o.run(ctx, p)
	}
	o.metrics.RecordDispatch(eventType, time.Since(start), err)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dispatch %s", eventType)
	}

	o.logger.Info("dispatched event",
		"event_type", eventType,
		"emitted", len(p.emitted),
		"revision", o.store.Revision(),
		"duration", time.Since(start))

	return &DispatchOutput{
		Events:   p.emitted,
		Revision: o.store.Revision(),
	}, nil
}

// Recalculate recomputes every selected variant from scratch
func (o *orchestrator) Recalculate(ctx context.Context, _ *RecalculateInput) (*RecalculateOutput, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	o.cache = engine.NewCache()

	snap := o.store.Snapshot()
	p := newPipeline()
	for _, collectionID := range snap.GetCollectionOrder() {
		if variantID, ok := snap.GetSelectedVariantID(collectionID); ok {
			if err := p.push(equipment.RecalculateVariant{VariantID: variantID}); err != nil {
				return nil, err
			}
		}
	}
	p.force(stageVariantTotals)

	if err := o.run(ctx, p); err != nil {
		return nil, errors.Wrap(err, "failed to recalculate totals")
	}

	o.logger.Info("recalculated totals",
		"set_id", snap.GetSet().ID,
		"emitted", len(p.emitted),
		"revision", o.store.Revision())

	return &RecalculateOutput{
		Events:   p.emitted,
		Revision: o.store.Revision(),
	}, nil
}

// run drains the pipeline stage by stage.
// The context is only consulted before anything is written. Once the first
// stage has run, every later stage runs so derived totals never lag the
// committed state.
func (o *orchestrator) run(ctx context.Context, p *pipeline) error {
	if err := ctx.Err(); err != nil {
		return errors.WrapWithCode(err, errors.CodeCanceled, "dispatch canceled")
	}

	for {
		s, batch, ok := p.next()
		if !ok {
			return nil
		}

		followUps, err := o.handleStage(s, batch)
		if err != nil {
			return err
		}
		for _, e := range followUps {
			if err := p.push(e); err != nil {
				return err
			}
			if isOutput(e) {
				o.metrics.RecordEmitted(e.Type().String())
			}
		}
	}
}

func (o *orchestrator) handleStage(s stage, batch []equipment.Event) ([]equipment.Event, error) {
	switch s {
	case stageMutation:
		return o.applyMutation(batch[0])
	case stageRecalculate:
		return o.recalculateVariants(batch)
	case stageVariantTotals:
		return o.collectionTotalsUpdated()
	case stageCollectionTotals:
		latest, ok := batch[len(batch)-1].(equipment.CollectionTotalsUpdated)
		if !ok {
			return nil, errors.Internalf("unexpected %T in the %s stage", batch[len(batch)-1], s)
		}
		return o.setTotalsUpdated(latest.Collections)
	case stageSetTotals:
		return nil, nil
	default:
		return nil, errors.Internalf("unknown pipeline stage %s", s)
	}
}

// pruneCache drops cached totals of variants that no longer exist
func (o *orchestrator) pruneCache() {
	snap := o.store.Snapshot()
	dropped := o.cache.Prune(func(variantID string) bool {
		_, ok := snap.GetVariant(variantID)
		return ok
	})
	if dropped > 0 {
		o.logger.Debug("pruned totals cache", "dropped", dropped)
	}
}
