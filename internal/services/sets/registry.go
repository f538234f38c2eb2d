package sets

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
	"github.com/KirkDiggler/equip-api/internal/errors"
	"github.com/KirkDiggler/equip-api/internal/metrics"
	"github.com/KirkDiggler/equip-api/internal/orchestrators/totals"
	"github.com/KirkDiggler/equip-api/internal/pkg/clock"
	"github.com/KirkDiggler/equip-api/internal/pkg/idgen"
	equipmentset "github.com/KirkDiggler/equip-api/internal/repositories/equipment_set"
	"github.com/KirkDiggler/equip-api/internal/store"
)

// Config holds the dependencies for the set registry
type Config struct {
	Repository equipmentset.Repository

	// LimitDefinitions and GlobalLimits seed sets that do not carry their own
	LimitDefinitions []equipment.LimitDefinition
	GlobalLimits     equipment.Limits

	// AutoSave persists a set after every successful dispatch
	AutoSave bool

	// SetIDs generates IDs for created sets without one
	SetIDs idgen.Generator
	// EventIDs generates event log IDs inside each set's store
	EventIDs idgen.Generator
	Clock    clock.Clock
	Metrics  metrics.Recorder
	Logger   *slog.Logger
}

// Validate ensures all required dependencies are provided
func (c *Config) Validate() error {
	vb := errors.NewValidationBuilder()

	if c.Repository == nil {
		vb.RequiredField("Repository")
	}
	seen := make(map[string]struct{}, len(c.LimitDefinitions))
	for _, def := range c.LimitDefinitions {
		if def.Name == "" {
			vb.RequiredField("LimitDefinitions.Name")
			continue
		}
		if !def.Dimension.IsValid() {
			vb.Fieldf("LimitDefinitions."+def.Name, "unknown dimension %q", def.Dimension)
		}
		seen[def.Name] = struct{}{}
	}
	for name := range c.GlobalLimits {
		if _, ok := seen[name]; !ok {
			vb.Fieldf("GlobalLimits."+name, "no limit definition named %q", name)
		}
	}

	return vb.Build()
}

// loadedSet pairs a set's store with its orchestrator. mu serializes every
// operation on the set.
type loadedSet struct {
	mu     sync.Mutex
	store  *store.Memory
	totals totals.Service
}

type registry struct {
	mu   sync.Mutex
	sets map[string]*loadedSet

	repository  equipmentset.Repository
	definitions []equipment.LimitDefinition
	global      equipment.Limits
	autoSave    bool
	setIDs      idgen.Generator
	eventIDs    idgen.Generator
	clock       clock.Clock
	metrics     metrics.Recorder
	logger      *slog.Logger
}

// NewService creates a set registry with the provided dependencies
func NewService(cfg *Config) (Service, error) {
	if cfg == nil {
		return nil, errors.InvalidArgument("config is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid config")
	}

	r := &registry{
		sets:        make(map[string]*loadedSet),
		repository:  cfg.Repository,
		definitions: slices.Clone(cfg.LimitDefinitions),
		global:      cfg.GlobalLimits,
		autoSave:    cfg.AutoSave,
		setIDs:      cfg.SetIDs,
		eventIDs:    cfg.EventIDs,
		clock:       cfg.Clock,
		metrics:     cfg.Metrics,
		logger:      cfg.Logger,
	}
	if r.setIDs == nil {
		r.setIDs = idgen.NewUUID("set")
	}
	if r.clock == nil {
		r.clock = clock.New()
	}
	if r.metrics == nil {
		r.metrics = metrics.NewNop()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r, nil
}

// Create registers and persists a new set
func (r *registry) Create(ctx context.Context, input *CreateInput) (*CreateOutput, error) {
	if input == nil || input.Document == nil {
		return nil, errors.InvalidArgument("document is required")
	}

	doc := *input.Document
	if doc.Set.ID == "" {
		doc.Set.ID = r.setIDs.Generate()
	}
	if len(doc.LimitDefinitions) == 0 {
		doc.LimitDefinitions = slices.Clone(r.definitions)
	}
	if doc.Set.Limits == nil && len(r.global) > 0 {
		doc.Set.Limits = make(equipment.Limits, len(r.global))
		for name, value := range r.global {
			doc.Set.Limits[name] = value
		}
	}
	setID := doc.Set.ID

	_, err := r.repository.Get(ctx, equipmentset.GetInput{ID: setID})
	switch {
	case err == nil:
		return nil, errors.AlreadyExistsf("equipment set %s already exists", setID)
	case !errors.IsNotFound(err):
		return nil, errors.Wrapf(err, "failed to check equipment set %s", setID)
	}

	ls, err := r.build(&doc)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create equipment set %s", setID)
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if !r.register(setID, ls) {
		return nil, errors.AlreadyExistsf("equipment set %s already exists", setID)
	}

	out, err := ls.totals.Recalculate(ctx, &totals.RecalculateInput{})
	if err != nil {
		r.unregister(setID)
		return nil, errors.Wrapf(err, "failed to calculate equipment set %s", setID)
	}

	if err := r.persist(ctx, ls); err != nil {
		r.unregister(setID)
		return nil, err
	}

	r.logger.Info("created equipment set",
		"set_id", setID,
		"collections", len(doc.Collections),
		"revision", out.Revision)

	return &CreateOutput{
		SetID:    setID,
		Events:   out.Events,
		Revision: out.Revision,
	}, nil
}

// Load reads a set from the repository
func (r *registry) Load(ctx context.Context, input *LoadInput) (*LoadOutput, error) {
	if input == nil || input.SetID == "" {
		return nil, errors.InvalidArgument("set ID is required")
	}

	ls, loaded, err := r.acquire(ctx, input.SetID)
	if err != nil {
		return nil, err
	}

	return &LoadOutput{
		SetID:    input.SetID,
		Revision: ls.store.Revision(),
		Loaded:   loaded,
	}, nil
}

// Dispatch applies one mutation event to a set
func (r *registry) Dispatch(ctx context.Context, input *DispatchInput) (*DispatchOutput, error) {
	if input == nil || input.SetID == "" {
		return nil, errors.InvalidArgument("set ID is required")
	}
	if input.Event == nil {
		return nil, errors.InvalidArgument("event is required")
	}

	ls, _, err := r.acquire(ctx, input.SetID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	out, err := ls.totals.Dispatch(ctx, &totals.DispatchInput{Event: input.Event})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to dispatch to equipment set %s", input.SetID)
	}

	if r.autoSave {
		if err := r.persist(ctx, ls); err != nil {
			return nil, err
		}
	}

	return &DispatchOutput{
		Events:   out.Events,
		Revision: out.Revision,
	}, nil
}

// Recalculate recomputes a set's totals from scratch
func (r *registry) Recalculate(ctx context.Context, input *RecalculateInput) (*RecalculateOutput, error) {
	if input == nil || input.SetID == "" {
		return nil, errors.InvalidArgument("set ID is required")
	}

	ls, _, err := r.acquire(ctx, input.SetID)
	if err != nil {
		return nil, err
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	out, err := ls.totals.Recalculate(ctx, &totals.RecalculateInput{})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to recalculate equipment set %s", input.SetID)
	}

	return &RecalculateOutput{
		Events:   out.Events,
		Revision: out.Revision,
	}, nil
}

// GetTotals exports a set with its derived totals
func (r *registry) GetTotals(ctx context.Context, input *GetTotalsInput) (*GetTotalsOutput, error) {
	if input == nil || input.SetID == "" {
		return nil, errors.InvalidArgument("set ID is required")
	}

	ls, _, err := r.acquire(ctx, input.SetID)
	if err != nil {
		return nil, err
	}

	snap := ls.store.Snapshot()
	return &GetTotalsOutput{
		Document: store.Export(snap),
		Revision: snap.Revision(),
	}, nil
}

// Save persists a loaded set
func (r *registry) Save(ctx context.Context, input *SaveInput) (*SaveOutput, error) {
	if input == nil || input.SetID == "" {
		return nil, errors.InvalidArgument("set ID is required")
	}

	r.mu.Lock()
	ls, ok := r.sets[input.SetID]
	r.mu.Unlock()
	if !ok {
		return nil, errors.FailedPreconditionf("equipment set %s is not loaded", input.SetID)
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if err := r.persist(ctx, ls); err != nil {
		return nil, err
	}

	return &SaveOutput{Revision: ls.store.Revision()}, nil
}

// Delete unloads a set and removes it from the repository
func (r *registry) Delete(ctx context.Context, input *DeleteInput) (*DeleteOutput, error) {
	if input == nil || input.SetID == "" {
		return nil, errors.InvalidArgument("set ID is required")
	}

	r.unregister(input.SetID)

	if _, err := r.repository.Delete(ctx, equipmentset.DeleteInput{ID: input.SetID}); err != nil {
		return nil, errors.Wrapf(err, "failed to delete equipment set %s", input.SetID)
	}

	r.logger.Info("deleted equipment set", "set_id", input.SetID)

	return &DeleteOutput{}, nil
}

// acquire returns the loaded set, reading it from the repository on first use.
// The bool reports whether this call loaded it.
func (r *registry) acquire(ctx context.Context, setID string) (*loadedSet, bool, error) {
	r.mu.Lock()
	ls, ok := r.sets[setID]
	r.mu.Unlock()
	if ok {
		return ls, false, nil
	}

	got, err := r.repository.Get(ctx, equipmentset.GetInput{ID: setID})
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to load equipment set %s", setID)
	}

	ls, err = r.build(got.Document)
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to load equipment set %s", setID)
	}

	ls.mu.Lock()
	defer ls.mu.Unlock()

	if !r.register(setID, ls) {
		// Lost a race with another loader
		r.mu.Lock()
		existing := r.sets[setID]
		r.mu.Unlock()
		return existing, false, nil
	}

	// Stored totals may predate changes to the engine; recompute on load
	if _, err := ls.totals.Recalculate(ctx, &totals.RecalculateInput{}); err != nil {
		r.unregister(setID)
		return nil, false, errors.Wrapf(err, "failed to calculate equipment set %s", setID)
	}

	r.logger.Info("loaded equipment set", "set_id", setID, "revision", ls.store.Revision())

	return ls, true, nil
}

func (r *registry) build(doc *store.Document) (*loadedSet, error) {
	ids := r.eventIDs
	if ids == nil {
		ids = idgen.NewUUID("evt")
	}

	mem, err := store.NewMemory(&store.MemoryConfig{
		Document:    doc,
		IDGenerator: ids,
		Clock:       r.clock,
	})
	if err != nil {
		return nil, err
	}

	orch, err := totals.NewOrchestrator(&totals.Config{
		Store:   mem,
		Metrics: r.metrics,
		Logger:  r.logger.With("set_id", doc.Set.ID),
	})
	if err != nil {
		return nil, err
	}

	return &loadedSet{store: mem, totals: orch}, nil
}

func (r *registry) register(setID string, ls *loadedSet) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sets[setID]; exists {
		return false
	}
	r.sets[setID] = ls
	return true
}

func (r *registry) unregister(setID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sets, setID)
}

// persist saves the set; callers hold ls.mu
func (r *registry) persist(ctx context.Context, ls *loadedSet) error {
	doc := ls.store.Export()
	if _, err := r.repository.Save(ctx, equipmentset.SaveInput{Document: doc}); err != nil {
		return errors.Wrapf(err, "failed to save equipment set %s", doc.Set.ID)
	}
	return nil
}
