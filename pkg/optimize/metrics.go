package optimize

import "time"

// Metrics receives optimizer run observations. A nil Metrics disables
// recording with zero overhead; call sites go through the record* helpers
// so the nil check lives in one place.
type Metrics interface {
	// RecordCacheLookup counts one cache lookup with status "hit" or
	// "miss".
	RecordCacheLookup(status string)

	// RecordCacheStore counts one cache write.
	RecordCacheStore()

	// RecordTask counts one finished task with status "ok", "error" or
	// "skipped".
	RecordTask(status string)

	// ObserveTransform records one transform with its input and output
	// sizes and wall time.
	ObserveTransform(bytesIn, bytesOut int, duration time.Duration)
}

func recordCacheLookup(m Metrics, status string) {
	if m != nil {
		m.RecordCacheLookup(status)
	}
}

func recordCacheStore(m Metrics) {
	if m != nil {
		m.RecordCacheStore()
	}
}

func recordTask(m Metrics, status string) {
	if m != nil {
		m.RecordTask(status)
	}
}

func observeTransform(m Metrics, bytesIn, bytesOut int, duration time.Duration) {
	if m != nil {
		m.ObserveTransform(bytesIn, bytesOut, duration)
	}
}
