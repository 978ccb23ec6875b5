package output

import "time"

// Metrics receives lifecycle and scheduler observations.
type Metrics interface {
	ObserveTransition(transition, outcome string)
	ObserveSideEffectFailure(op string)
	ObserveTick(d time.Duration, reminded, promoted int)
}

// NopMetrics discards every observation.
type NopMetrics struct{}

func (NopMetrics) ObserveTransition(string, string)    {}
func (NopMetrics) ObserveSideEffectFailure(string)     {}
func (NopMetrics) ObserveTick(time.Duration, int, int) {}
