// Package metrics records what each notify invocation did: whether the
// cache served the audio, how long synthesis took, whether the fallback
// backend or the earcon degrade path was used.
package metrics

import "time"

// Event names emitted by the notify driver and synthesis chain.
const (
	EventCacheHit      = "cache_hit"
	EventCacheMiss     = "cache_miss"
	EventSynthMS       = "synth_ms"
	EventFallbackUsed  = "fallback_used"
	EventEarconDegrade = "earcon_degrade"
	EventPlaybackMS    = "playback_ms"
)

type MetricsEvent struct {
	Name   string
	Time   time.Time
	Value  float64
	Tags   map[string]string
	Fields map[string]any
}

type Observer interface {
	RecordEvent(ev MetricsEvent)
}

type NoopObserver struct{}

func (NoopObserver) RecordEvent(MetricsEvent) {}

// Record is a convenience for the common name/value/tags shape.
func Record(o Observer, name string, value float64, tags map[string]string) {
	if o == nil {
		return
	}
	o.RecordEvent(MetricsEvent{Name: name, Time: time.Now(), Value: value, Tags: tags})
}
