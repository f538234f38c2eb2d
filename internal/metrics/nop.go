package metrics

import "time"

// NopMetrics discards every measurement
type NopMetrics struct{}

var _ Recorder = (*NopMetrics)(nil)

// NewNop creates a no-op recorder
func NewNop() *NopMetrics {
	return &NopMetrics{}
}

// RecordDispatch discards the dispatch measurement
func (n *NopMetrics) RecordDispatch(_ string, _ time.Duration, _ error) {}

// RecordRecompute discards the recompute measurement
func (n *NopMetrics) RecordRecompute(_ bool) {}

// RecordEmitted discards the emitted event
func (n *NopMetrics) RecordEmitted(_ string) {}
