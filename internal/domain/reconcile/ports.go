package reconcile

import (
	"context"
	"time"
)

// OrderRow is one row of an Order-System search response
type OrderRow struct {
	TrackingNumber string
	PickupNumber   string
	OrderRef       OrderReference
}

// IdentifierFor returns the row's identifier for the given mode
func (r OrderRow) IdentifierFor(mode Mode) string {
	if mode == ModePickup {
		return r.PickupNumber
	}
	return r.TrackingNumber
}

// OrderSystem is the port to the Order-System (FMS) API
type OrderSystem interface {
	// MissingCredentials lists credential settings that are not configured
	MissingCredentials() []string

	// Login exchanges credentials for a token. Wraps ErrNoToken when the
	// response carries none.
	Login(ctx context.Context) (string, error)

	// Search runs one batched search for identifiers of the given mode.
	// Rows are returned as sent by the backend, unfiltered.
	Search(ctx context.Context, token string, mode Mode, identifiers []string) ([]OrderRow, error)

	// Location fetches the "basic" detail of an order
	Location(ctx context.Context, token string, ref OrderReference) (string, error)

	// Status fetches the "head" detail of an order: status and sub-status
	Status(ctx context.Context, token string, ref OrderReference) (status, subStatus string, err error)
}

// TraceSession is an authenticated Trace-System session
type TraceSession struct {
	UserRef      string
	SessionToken string
}

// TraceRow is one row of a Trace-System query response
type TraceRow struct {
	TrackingNumber string
	PickupNumber   string
	Record         TraceRecord
}

// IdentifierFor returns the row's identifier for the given mode
func (r TraceRow) IdentifierFor(mode Mode) string {
	if mode == ModePickup {
		return r.PickupNumber
	}
	return r.TrackingNumber
}

// TraceSystem is the port to the Trace-System (TMS) API
type TraceSystem interface {
	// MissingCredentials lists credential settings that are not configured
	MissingCredentials() []string

	// Login performs the form login
	Login(ctx context.Context) (TraceSession, error)

	// SetActiveGroup switches the session to the configured group
	SetActiveGroup(ctx context.Context, session TraceSession) error

	// Query looks up all identifiers in one request
	Query(ctx context.Context, session TraceSession, mode Mode, identifiers []string) ([]TraceRow, error)
}

// TokenStore caches the Order-System token
type TokenStore interface {
	// Get returns the cached token; ok is false when nothing is cached
	Get(ctx context.Context, key string) (token string, ok bool, err error)

	// Set stores the token. A zero ttl keeps it until deleted.
	Set(ctx context.Context, key, token string, ttl time.Duration) error

	// Delete drops the cached token
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the store
	Close() error
}
