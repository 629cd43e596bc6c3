package metrics

import (
	"context"
	"time"
)

// The functions below are no-ops when ctx carries no application.

func RecordCount(ctx context.Context, name string, count uint64) {
	if app, ok := FromContext(ctx); ok {
		app.RecordCustomMetric(name, float64(count))
	}
}

// RecordDuration records duration in fractional milliseconds.
func RecordDuration(ctx context.Context, name string, duration time.Duration) {
	if app, ok := FromContext(ctx); ok {
		app.RecordCustomMetric(name, float64(duration)/float64(time.Millisecond))
	}
}

func RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	if app, ok := FromContext(ctx); ok {
		app.RecordCustomEvent(name, attributes)
	}
}
