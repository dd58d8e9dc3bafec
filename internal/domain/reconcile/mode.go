package reconcile

import (
	"fmt"
	"regexp"
	"strings"
)

// Mode selects which kind of identifier a batch carries
type Mode string

const (
	// ModeTracking looks shipments up by tracking (PRO) number
	ModeTracking Mode = "tracking"
	// ModePickup looks shipments up by pickup number
	ModePickup Mode = "pickup"
)

// MaxBatchSize is the largest batch a single reconciliation accepts
const MaxBatchSize = 150

var (
	trackingNumberPattern = regexp.MustCompile(`^\d{10,22}$`)
	pickupNumberPattern   = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9-]{3,31}$`)
	orderReferencePattern = regexp.MustCompile(`^DO\d{6,}$`)
)

// ParseMode converts a string to a Mode
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
	}
	return m, nil
}

// IsValid reports whether m is a known mode
func (m Mode) IsValid() bool {
	return m == ModeTracking || m == ModePickup
}

// String returns the string representation
func (m Mode) String() string {
	return string(m)
}

// MatchesIdentifier reports whether id has the format expected for the mode
func (m Mode) MatchesIdentifier(id string) bool {
	switch m {
	case ModeTracking:
		return trackingNumberPattern.MatchString(id)
	case ModePickup:
		return pickupNumberPattern.MatchString(id)
	default:
		return false
	}
}

// OrderReference is an Order-System "DO" number
type OrderReference string

// IsValid reports whether the reference is "DO" followed by at least six digits
func (r OrderReference) IsValid() bool {
	return orderReferencePattern.MatchString(string(r))
}

// String returns the string representation
func (r OrderReference) String() string {
	return string(r)
}
