// Package reconcile contains the shipment status reconciliation bounded context.
// It compares what Order-System (FMS) and Trace-System (TMS) report for the same
// batch of tracking or pickup numbers.
//
// Key concepts:
//   - Mode: whether identifiers are tracking numbers or pickup numbers
//   - OrderReference: the Order-System "DO" number an identifier resolves to
//   - DetailRecord: per-reference outcome of the two Order-System detail calls
//   - TraceRecord: the Trace-System row for an identifier
//   - ReconciliationResult: one merged record per input identifier
//
// Design Pattern: Ports & Adapters
//   - OrderSystem, TraceSystem and TokenStore are ports defined here
//   - HTTP clients and token caches in the infrastructure layer implement them
package reconcile
