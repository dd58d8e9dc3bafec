package reconcile

import (
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/domain/reconcile"
)

// Merge builds one result per identifier, in input order. traceAttempted is
// false when Trace-System could not be queried at all; traces is then ignored.
func Merge(
	identifiers []string,
	refs map[string]reconcile.OrderReference,
	details map[reconcile.OrderReference]reconcile.DetailRecord,
	traces map[string]reconcile.TraceRecord,
	traceAttempted bool,
) []reconcile.ReconciliationResult {
	results := make([]reconcile.ReconciliationResult, len(identifiers))
	for i, id := range identifiers {
		res := reconcile.ReconciliationResult{Identifier: id}

		if ref, ok := refs[id]; ok {
			res.Order = reconcile.OrderSide{
				HasOrderRef: true,
				OrderRef:    ref,
				Detail:      details[ref],
			}
		}

		if traceAttempted {
			res.Trace.Attempted = true
			if rec, ok := traces[id]; ok {
				res.Trace.Record = rec
			} else {
				res.Trace.NotFound = true
			}
		}

		results[i] = res
	}
	return results
}
