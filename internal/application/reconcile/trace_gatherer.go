package reconcile

import (
	"context"

	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/domain/reconcile"
)

// TraceGatherer looks a batch up in Trace-System with one query
type TraceGatherer struct {
	traces reconcile.TraceSystem
}

// NewTraceGatherer creates a TraceGatherer
func NewTraceGatherer(traces reconcile.TraceSystem) *TraceGatherer {
	return &TraceGatherer{traces: traces}
}

// TraceBatch returns identifier -> record, keyed by the row's identifier for
// mode. Rows without one are dropped; zero rows is an empty map. A failed
// query is an *UpstreamError.
func (g *TraceGatherer) TraceBatch(ctx context.Context, session reconcile.TraceSession, mode reconcile.Mode, identifiers []string) (map[string]reconcile.TraceRecord, error) {
	records := make(map[string]reconcile.TraceRecord, len(identifiers))
	if len(identifiers) == 0 {
		return records, nil
	}

	rows, err := g.traces.Query(ctx, session, mode, identifiers)
	if err != nil {
		return nil, &reconcile.UpstreamError{Backend: reconcile.BackendTraceSystem, Op: "query", Err: err}
	}

	for _, row := range rows {
		key := row.IdentifierFor(mode)
		if key == "" {
			continue
		}
		if _, seen := records[key]; !seen {
			records[key] = row.Record
		}
	}
	return records, nil
}
