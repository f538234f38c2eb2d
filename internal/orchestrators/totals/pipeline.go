package totals

import (
	"fmt"

	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
	"github.com/KirkDiggler/equip-api/internal/errors"
)

// stage orders the pipeline. Handlers of a stage may only enqueue events of
// strictly later stages, so a dispatch always terminates.
type stage int

const (
	stageMutation stage = iota
	stageRecalculate
	stageVariantTotals
	stageCollectionTotals
	stageSetTotals
	stageCount
)

var stageNames = [stageCount]string{
	"mutation",
	"recalculate_variant",
	"variant_totals_updated",
	"collection_totals_updated",
	"set_totals_updated",
}

func (s stage) String() string {
	if s < 0 || s >= stageCount {
		return fmt.Sprintf("stage(%d)", int(s))
	}
	return stageNames[s]
}

func stageOf(e equipment.Event) stage {
	switch e.Type() {
	case equipment.EventRecalculateVariant:
		return stageRecalculate
	case equipment.EventVariantTotalsUpdated:
		return stageVariantTotals
	case equipment.EventCollectionTotalsUpdated:
		return stageCollectionTotals
	case equipment.EventSetTotalsUpdated:
		return stageSetTotals
	default:
		return stageMutation
	}
}

// isOutput reports whether an event is reported back to the caller
func isOutput(e equipment.Event) bool {
	return stageOf(e) >= stageVariantTotals
}

// pipeline is the dispatch queue of one mutation. Stages are drained in
// order; a stage handler sees every event queued for its stage at once.
type pipeline struct {
	current stage
	queue   [stageCount][]equipment.Event
	forced  [stageCount]bool
	emitted []equipment.Event
}

func newPipeline() *pipeline {
	return &pipeline{current: -1}
}

// push queues an event for a later stage
func (p *pipeline) push(e equipment.Event) error {
	s := stageOf(e)
	if s <= p.current {
		return errors.Internalf("%s event cannot follow the %s stage", e.Type(), p.current)
	}

	p.queue[s] = append(p.queue[s], e)
	if isOutput(e) {
		p.emitted = append(p.emitted, e)
	}
	return nil
}

// force runs a stage handler even when nothing was queued for it
func (p *pipeline) force(s stage) {
	p.forced[s] = true
}

// next advances to the next stage with work and returns its batch
func (p *pipeline) next() (stage, []equipment.Event, bool) {
	for s := p.current + 1; s < stageCount; s++ {
		p.current = s
		if len(p.queue[s]) > 0 || p.forced[s] {
			batch := p.queue[s]
			p.queue[s] = nil
			return s, batch, true
		}
	}
	return stageCount, nil, false
}
