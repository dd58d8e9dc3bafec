package reconcile

import (
	"context"

	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/domain/reconcile"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// IdentifierResolver maps a batch of identifiers to Order-System references
// with a single search call.
type IdentifierResolver struct {
	orders reconcile.OrderSystem
}

// NewIdentifierResolver creates an IdentifierResolver
func NewIdentifierResolver(orders reconcile.OrderSystem) *IdentifierResolver {
	return &IdentifierResolver{orders: orders}
}

// Resolve returns identifier -> reference for every row whose identifier has
// the format of mode and whose reference is a valid DO number. Other rows are
// dropped. Only a failed search call is an error (*UpstreamError).
func (r *IdentifierResolver) Resolve(ctx context.Context, token string, mode reconcile.Mode, identifiers []string) (map[string]reconcile.OrderReference, error) {
	refs := make(map[string]reconcile.OrderReference, len(identifiers))
	if len(identifiers) == 0 {
		return refs, nil
	}

	rows, err := r.orders.Search(ctx, token, mode, identifiers)
	if err != nil {
		return nil, &reconcile.UpstreamError{Backend: reconcile.BackendOrderSystem, Op: "search", Err: err}
	}

	dropped := 0
	for _, row := range rows {
		id := row.IdentifierFor(mode)
		if !mode.MatchesIdentifier(id) || !row.OrderRef.IsValid() {
			dropped++
			continue
		}
		if _, seen := refs[id]; !seen {
			refs[id] = row.OrderRef
		}
	}

	logger.L(ctx).Debug("resolved identifiers",
		zap.Int("requested", len(identifiers)),
		zap.Int("rows", len(rows)),
		zap.Int("resolved", len(refs)),
		zap.Int("dropped", dropped),
	)
	return refs, nil
}
