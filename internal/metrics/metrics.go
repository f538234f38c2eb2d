// Package metrics instruments the totals engine
package metrics

import "time"

//go:generate mockgen -destination=mock/mock_recorder.go -package=metricsmock github.com/KirkDiggler/equip-api/internal/metrics Recorder

// Recorder receives engine measurements
type Recorder interface {
	// RecordDispatch observes one mutation event processed end to end
	RecordDispatch(eventType string, duration time.Duration, err error)

	// RecordRecompute counts a variant recompute request and whether the
	// cache served it
	RecordRecompute(cacheHit bool)

	// RecordEmitted counts an output event
	RecordEmitted(eventType string)
}
