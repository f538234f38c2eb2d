package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/KirkDiggler/equip-api/internal/config"
	"github.com/KirkDiggler/equip-api/internal/entities/equipment"
	"github.com/KirkDiggler/equip-api/internal/errors"
	"github.com/KirkDiggler/equip-api/internal/orchestrators/totals"
	"github.com/KirkDiggler/equip-api/internal/pkg/clock"
	"github.com/KirkDiggler/equip-api/internal/pkg/idgen"
	"github.com/KirkDiggler/equip-api/internal/store"
)

var (
	replaySetPath    string
	replayEventsPath string
	replayFormat     string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay an event log against a set document",
	Long: `Load an equipment set document, compute its totals, then dispatch every event
of an event log in order and print what each step emitted.`,
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().StringVar(&replaySetPath, "set", "", "set document (.yaml, .yml or .json)")
	replayCmd.Flags().StringVar(&replayEventsPath, "events", "", "event log (.yaml, .yml or .json)")
	replayCmd.Flags().StringVar(&replayFormat, "format", store.FormatYAML, "output format: json or yaml")
	_ = replayCmd.MarkFlagRequired("set")
	_ = replayCmd.MarkFlagRequired("events")
}

// eventLog is the on-disk shape of a replayed event sequence
type eventLog struct {
	Events []loggedEvent `json:"events" yaml:"events"`
}

type loggedEvent struct {
	Type    string         `json:"type" yaml:"type"`
	Payload map[string]any `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// replayStep is one dispatched event and what it produced
type replayStep struct {
	Step     int            `json:"step"`
	Input    string         `json:"input"`
	Revision uint64         `json:"revision"`
	Emitted  []emittedEvent `json:"emitted"`
}

type emittedEvent struct {
	Type    string          `json:"type"`
	Payload equipment.Event `json:"payload"`
}

func runReplay(cmd *cobra.Command, _ []string) error {
	if err := bindFlags(cmd); err != nil {
		return err
	}
	cfg, err := config.Load(v, configPath)
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), cfg.Log)

	doc, err := readDocument(replaySetPath)
	if err != nil {
		return err
	}
	events, err := readEventLog(replayEventsPath)
	if err != nil {
		return err
	}

	steps, err := replay(cmd.Context(), doc, events, logger)
	if err != nil {
		return err
	}

	return writeSteps(cmd.OutOrStdout(), steps, replayFormat)
}

// replay computes the initial totals as step 0 and then applies each event.
// Event log ids and timestamps are deterministic so runs can be diffed.
func replay(ctx context.Context, doc *store.Document, events []equipment.Event, logger *slog.Logger) ([]replayStep, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	mem, err := store.NewMemory(&store.MemoryConfig{
		Document:    doc,
		IDGenerator: idgen.NewSequential("evt"),
		Clock:       clock.NewFixed(time.Unix(0, 0).UTC()),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to load set")
	}

	orch, err := totals.NewOrchestrator(&totals.Config{Store: mem, Logger: logger})
	if err != nil {
		return nil, err
	}

	initial, err := orch.Recalculate(ctx, &totals.RecalculateInput{})
	if err != nil {
		return nil, err
	}
	steps := []replayStep{{
		Step:     0,
		Input:    "recalculate",
		Revision: initial.Revision,
		Emitted:  toEmitted(initial.Events),
	}}

	for i, e := range events {
		out, err := orch.Dispatch(ctx, &totals.DispatchInput{Event: e})
		if err != nil {
			return nil, errors.Wrapf(err, "step %d (%s)", i+1, e.Type())
		}
		steps = append(steps, replayStep{
			Step:     i + 1,
			Input:    e.Type().String(),
			Revision: out.Revision,
			Emitted:  toEmitted(out.Events),
		})
	}

	return steps, nil
}

func toEmitted(events []equipment.Event) []emittedEvent {
	out := make([]emittedEvent, len(events))
	for i, e := range events {
		out[i] = emittedEvent{Type: e.Type().String(), Payload: e}
	}
	return out
}

func formatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return store.FormatJSON
	}
	return store.FormatYAML
}

func readDocument(path string) (*store.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read set document: %w", err)
	}
	return store.DecodeDocument(data, formatOf(path))
}

func readEventLog(path string) ([]equipment.Event, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read event log: %w", err)
	}
	return decodeEventLog(data, formatOf(path))
}

func decodeEventLog(data []byte, format string) ([]equipment.Event, error) {
	var parsed eventLog
	var err error
	if format == store.FormatJSON {
		err = json.Unmarshal(data, &parsed)
	} else {
		err = yaml.Unmarshal(data, &parsed)
	}
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, "failed to decode event log")
	}

	events := make([]equipment.Event, 0, len(parsed.Events))
	for i, le := range parsed.Events {
		var payload []byte
		if len(le.Payload) > 0 {
			if payload, err = json.Marshal(le.Payload); err != nil {
				return nil, errors.WrapWithCode(err, errors.CodeInvalidArgument, fmt.Sprintf("event %d payload", i+1))
			}
		}
		e, err := equipment.DecodeEvent(le.Type, payload)
		if err != nil {
			return nil, errors.Wrapf(err, "event %d", i+1)
		}
		events = append(events, e)
	}

	return events, nil
}

// writeSteps renders steps through their JSON form so YAML output carries the
// same field names
func writeSteps(w io.Writer, steps []replayStep, format string) error {
	data, err := json.MarshalIndent(steps, "", "  ")
	if err != nil {
		return err
	}

	switch format {
	case store.FormatJSON:
		_, err = fmt.Fprintln(w, string(data))
		return err
	case store.FormatYAML, "yml":
		var generic any
		if err := json.Unmarshal(data, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errors.InvalidArgumentf("unsupported output format %q", format)
	}
}
