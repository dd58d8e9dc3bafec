// Package tracesystem is the HTTP adapter for the Trace-System (TMS) API.
// Requests are form-encoded; responses are JSON.
package tracesystem

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/domain/reconcile"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/upstream"
)

// Client implements reconcile.TraceSystem
type Client struct {
	cfg  Config
	http *upstream.Client
}

var _ reconcile.TraceSystem = (*Client)(nil)

// NewClient creates a Trace-System client
func NewClient(cfg Config, opts ...upstream.Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:  cfg,
		http: upstream.NewClient(reconcile.BackendTraceSystem, cfg.BaseURL, cfg.Timeout, opts...),
	}
}

// MissingCredentials implements reconcile.TraceSystem
func (c *Client) MissingCredentials() []string {
	return c.cfg.MissingCredentials()
}

// Login performs the form login and returns the session identity
func (c *Client) Login(ctx context.Context) (reconcile.TraceSession, error) {
	body, err := c.http.PostForm(ctx, "login", loginPath, url.Values{
		"username": {c.cfg.Username},
		"password": {c.cfg.Password},
	})
	if err != nil {
		return reconcile.TraceSession{}, err
	}

	doc, err := upstream.Decode(body)
	if err != nil {
		return reconcile.TraceSession{}, err
	}

	session := reconcile.TraceSession{
		UserRef:      upstream.FirstString(doc, upstream.At("user_id"), upstream.At("data", "user_id")),
		SessionToken: upstream.FirstString(doc, upstream.At("session_token"), upstream.At("data", "session_token")),
	}
	if session.UserRef == "" || session.SessionToken == "" {
		return reconcile.TraceSession{}, reconcile.ErrNoToken
	}
	return session, nil
}

// SetActiveGroup switches the session to the configured group. Without it
// queries may return rows from the wrong group.
func (c *Client) SetActiveGroup(ctx context.Context, session reconcile.TraceSession) error {
	values := c.sessionValues(session)
	values.Set("group_id", c.cfg.GroupID)

	_, err := c.http.PostForm(ctx, "set_active_group", activeGroupPath, values)
	return err
}

// Query sends all identifiers in one request, newline-joined into a single
// field. Rows may be a bare array or sit under "data", "rows" or "result".
func (c *Client) Query(ctx context.Context, session reconcile.TraceSession, mode reconcile.Mode, identifiers []string) ([]reconcile.TraceRow, error) {
	field := fieldTrackingNumbers
	if mode == reconcile.ModePickup {
		field = fieldPickupNumbers
	}

	values := c.sessionValues(session)
	values.Set(field, strings.Join(identifiers, "\n"))

	body, err := c.http.PostForm(ctx, "query", queryPath, values)
	if err != nil {
		return nil, err
	}

	doc, err := upstream.Decode(body)
	if err != nil {
		return nil, err
	}

	items, found := upstream.FirstSlice(doc,
		upstream.At(),
		upstream.At("data"),
		upstream.At("rows"),
		upstream.At("result"),
	)
	if !found {
		if _, isObject := doc.(map[string]any); !isObject {
			return nil, fmt.Errorf("%w: unexpected %T body", reconcile.ErrMalformed, doc)
		}
	}

	rows := make([]reconcile.TraceRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, reconcile.TraceRow{
			TrackingNumber: upstream.Str(item, "pro_no"),
			PickupNumber:   upstream.Str(item, "pu_no"),
			Record: reconcile.TraceRecord{
				ExternalOrderID: upstream.Str(item, "order_id"),
				Location:        upstream.Str(item, "location"),
				Status:          upstream.Str(item, "status"),
				SubStatus:       upstream.Str(item, "sub_status"),
			},
		})
	}
	return rows, nil
}

func (c *Client) sessionValues(session reconcile.TraceSession) url.Values {
	return url.Values{
		"user_id":       {session.UserRef},
		"session_token": {session.SessionToken},
	}
}
