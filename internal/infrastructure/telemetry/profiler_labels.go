package telemetry

import (
	"context"
	"sort"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys.
const (
	ProfilingLabelOperation = "operation"
	ProfilingLabelMode      = "mode"
	ProfilingLabelRoute     = "route"
)

// maxLabelValueLength bounds label values to keep profile cardinality low
const maxLabelValueLength = 64

// highCardinalityLabels are never attached to profiles
var highCardinalityLabels = map[string]bool{
	"request_id": true,
	"batch_id":   true,
	"trace_id":   true,
	"span_id":    true,
	"identifier": true,
}

// WithProfilingLabels runs fn with pprof labels attached so samples taken
// inside fn can be filtered in Pyroscope. High-cardinality keys are dropped.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	kv := sanitizeLabels(labels)
	if len(kv) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(kv...), fn)
}

// sanitizeLabels returns sorted key/value pairs with empty and
// high-cardinality entries removed and long values truncated.
func sanitizeLabels(labels map[string]string) []string {
	keys := make([]string, 0, len(labels))
	for k, v := range labels {
		if k == "" || v == "" || highCardinalityLabels[k] {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	kv := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		v := labels[k]
		if len(v) > maxLabelValueLength {
			v = v[:maxLabelValueLength]
		}
		kv = append(kv, k, v)
	}
	return kv
}
