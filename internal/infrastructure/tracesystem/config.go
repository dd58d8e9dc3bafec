package tracesystem

import "time"

// Config holds Trace-System (TMS) connection settings
type Config struct {
	BaseURL  string
	Username string
	Password string
	// GroupID is the group the session is switched to after login
	GroupID string
	Timeout time.Duration
}

const (
	loginPath       = "/login"
	activeGroupPath = "/group/active"
	queryPath       = "/trace/query"
)

// Form field carrying the newline-joined identifiers, per mode
const (
	fieldTrackingNumbers = "pro_numbers"
	fieldPickupNumbers   = "pu_numbers"
)

const defaultTimeout = 20 * time.Second

// MissingCredentials lists settings required before login
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.BaseURL == "" {
		missing = append(missing, "base_url")
	}
	if c.Username == "" {
		missing = append(missing, "username")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	return missing
}
