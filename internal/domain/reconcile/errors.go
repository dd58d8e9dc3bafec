package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

// Backend names used in errors and logs
const (
	BackendOrderSystem = "order-system"
	BackendTraceSystem = "trace-system"
)

// Batch-level errors
var (
	ErrConfig        = errors.New("reconcile: missing configuration")
	ErrAuth          = errors.New("reconcile: authentication failed")
	ErrUpstream      = errors.New("reconcile: upstream batch call failed")
	ErrInvalidMode   = errors.New("reconcile: invalid mode")
	ErrBatchTooLarge = errors.New("reconcile: batch too large")
)

// Upstream call errors. Adapters wrap these so callers can tell a backend that
// could not be reached from one that answered badly.
var (
	ErrUnreachable = errors.New("reconcile: upstream unreachable")
	ErrRejected    = errors.New("reconcile: upstream rejected request")
	ErrMalformed   = errors.New("reconcile: malformed upstream response")
	ErrNoToken     = errors.New("reconcile: no token in login response")
)

// ConfigError reports credentials or settings that are missing for a backend.
type ConfigError struct {
	Backend string
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %s not configured: %s", ErrConfig, e.Backend, strings.Join(e.Missing, ", "))
}

// Is makes errors.Is(err, ErrConfig) match
func (e *ConfigError) Is(target error) bool {
	return target == ErrConfig
}

// AuthError reports a login that produced no usable session.
type AuthError struct {
	Backend string
	Err     error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrAuth, e.Backend, e.Err)
}

// Is makes errors.Is(err, ErrAuth) match
func (e *AuthError) Is(target error) bool {
	return target == ErrAuth
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// UpstreamError reports a batch call (search, trace query) that failed as a whole.
type UpstreamError struct {
	Backend string
	Op      string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrUpstream, e.Backend, e.Op, e.Err)
}

// Is makes errors.Is(err, ErrUpstream) match
func (e *UpstreamError) Is(target error) bool {
	return target == ErrUpstream
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUnreachable reports whether err is a connectivity failure (DNS, connect,
// timeout) rather than a bad answer.
func IsUnreachable(err error) bool {
	return errors.Is(err, ErrUnreachable)
}
