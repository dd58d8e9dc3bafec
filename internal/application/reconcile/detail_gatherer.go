package reconcile

import (
	"context"

	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/domain/reconcile"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/concurrency"
)

// DetailGatherer fetches Order-System detail for resolved references
type DetailGatherer struct {
	orders  reconcile.OrderSystem
	limiter *concurrency.Limiter
}

// NewDetailGatherer creates a DetailGatherer running at most limiter.Ceiling()
// fetches at a time. Each fetch holds two Order-System calls open, so the
// upstream sees up to twice the ceiling.
func NewDetailGatherer(orders reconcile.OrderSystem, limiter *concurrency.Limiter) *DetailGatherer {
	return &DetailGatherer{orders: orders, limiter: limiter}
}

type headResult struct {
	status    string
	subStatus string
	err       error
}

// FetchDetail calls the basic (location) and head (status) endpoints for ref
// and classifies the pair. It never returns an error; failures are encoded
// in the record's outcome.
func (g *DetailGatherer) FetchDetail(ctx context.Context, token string, ref reconcile.OrderReference) reconcile.DetailRecord {
	headCh := make(chan headResult, 1)
	go func() {
		status, subStatus, err := g.orders.Status(ctx, token, ref)
		headCh <- headResult{status: status, subStatus: subStatus, err: err}
	}()

	location, basicErr := g.orders.Location(ctx, token, ref)
	head := <-headCh

	return reconcile.NewDetailRecord(location, basicErr, head.status, head.subStatus, head.err)
}

// FetchAll fetches every reference under the limiter. Output index i belongs
// to refs[i].
func (g *DetailGatherer) FetchAll(ctx context.Context, token string, refs []reconcile.OrderReference) []reconcile.DetailRecord {
	return concurrency.Map(ctx, g.limiter, refs, func(ctx context.Context, ref reconcile.OrderReference) reconcile.DetailRecord {
		return g.FetchDetail(ctx, token, ref)
	})
}
