package ordersystem

import "time"

// Config holds Order-System (FMS) connection settings
type Config struct {
	// BaseURL is the API root, e.g. https://fms.example.com
	BaseURL string
	// Account and Password are exchanged for a token at login
	Account  string
	Password string
	// ClientID and CompanyID are sent as headers on every call
	ClientID  string
	CompanyID string
	// Timeout bounds every single HTTP call
	Timeout time.Duration
}

// Header names sent with every authenticated call
const (
	HeaderClientID  = "X-Client-ID"
	HeaderToken     = "X-Auth-Token"
	HeaderCompanyID = "X-Company-ID"
)

// API paths
const (
	loginPath  = "/api/v1/auth/login"
	searchPath = "/api/v1/orders/search"
	basicPath  = "/api/v1/orders/%s/basic"
	headPath   = "/api/v1/orders/%s/head"
)

const defaultTimeout = 20 * time.Second

// MissingCredentials lists settings required before any call can be made
func (c *Config) MissingCredentials() []string {
	var missing []string
	if c.BaseURL == "" {
		missing = append(missing, "base_url")
	}
	if c.Account == "" {
		missing = append(missing, "account")
	}
	if c.Password == "" {
		missing = append(missing, "password")
	}
	if c.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if c.CompanyID == "" {
		missing = append(missing, "company_id")
	}
	return missing
}
