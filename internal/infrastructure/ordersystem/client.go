// Package ordersystem is the HTTP adapter for the Order-System (FMS) API.
package ordersystem

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/domain/reconcile"
	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/infrastructure/upstream"
)

// searchPageLimit is the largest page the search endpoint serves
const searchPageLimit = 150

// Client implements reconcile.OrderSystem
type Client struct {
	cfg  Config
	http *upstream.Client
}

// Ensure Client implements reconcile.OrderSystem
var _ reconcile.OrderSystem = (*Client)(nil)

// NewClient creates an Order-System client
func NewClient(cfg Config, opts ...upstream.Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Client{
		cfg:  cfg,
		http: upstream.NewClient(reconcile.BackendOrderSystem, cfg.BaseURL, cfg.Timeout, opts...),
	}
}

// MissingCredentials implements reconcile.OrderSystem
func (c *Client) MissingCredentials() []string {
	return c.cfg.MissingCredentials()
}

type loginRequest struct {
	Account  string `json:"account"`
	Password string `json:"password"`
}

// Login exchanges the account credentials for a token. The token may sit at
// the top level or under "data" or "result".
func (c *Client) Login(ctx context.Context) (string, error) {
	body, err := c.http.PostJSON(ctx, "login", loginPath, c.headers(""), loginRequest{
		Account:  c.cfg.Account,
		Password: c.cfg.Password,
	})
	if err != nil {
		return "", err
	}

	doc, err := upstream.Decode(body)
	if err != nil {
		return "", err
	}

	token := upstream.FirstString(doc,
		upstream.At("token"),
		upstream.At("data", "token"),
		upstream.At("result", "token"),
	)
	if token == "" {
		return "", reconcile.ErrNoToken
	}
	return token, nil
}

type searchRequest struct {
	TrackingNos []string `json:"tracking_nos"`
	PickupNos   []string `json:"pickup_nos"`
	PageNumber  int      `json:"page_number"`
	PageSize    int      `json:"page_size"`
}

// Search runs one search for all identifiers. Only the filter array for mode
// is populated; the other is sent empty.
func (c *Client) Search(ctx context.Context, token string, mode reconcile.Mode, identifiers []string) ([]reconcile.OrderRow, error) {
	req := searchRequest{
		TrackingNos: []string{},
		PickupNos:   []string{},
		PageNumber:  1,
		PageSize:    min(len(identifiers), searchPageLimit),
	}
	if mode == reconcile.ModePickup {
		req.PickupNos = identifiers
	} else {
		req.TrackingNos = identifiers
	}

	body, err := c.http.PostJSON(ctx, "search", searchPath, c.headers(token), req)
	if err != nil {
		return nil, err
	}

	doc, err := upstream.Decode(body)
	if err != nil {
		return nil, err
	}

	items, _ := upstream.FirstSlice(doc,
		upstream.At("items"),
		upstream.At("data", "items"),
		upstream.At("data"),
	)

	rows := make([]reconcile.OrderRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, reconcile.OrderRow{
			TrackingNumber: upstream.Str(item, "tracking_no"),
			PickupNumber:   upstream.Str(item, "pickup_no"),
			OrderRef:       reconcile.OrderReference(upstream.Str(item, "do_no")),
		})
	}
	return rows, nil
}

// Location fetches the "basic" detail of an order
func (c *Client) Location(ctx context.Context, token string, ref reconcile.OrderReference) (string, error) {
	path := fmt.Sprintf(basicPath, url.PathEscape(ref.String()))
	body, err := c.http.GetJSON(ctx, "basic", path, c.headers(token))
	if err != nil {
		return "", err
	}

	doc, err := upstream.Decode(body)
	if err != nil {
		return "", err
	}
	return upstream.FirstString(doc, upstream.At("location"), upstream.At("data", "location")), nil
}

// Status fetches the "head" detail of an order
func (c *Client) Status(ctx context.Context, token string, ref reconcile.OrderReference) (string, string, error) {
	path := fmt.Sprintf(headPath, url.PathEscape(ref.String()))
	body, err := c.http.GetJSON(ctx, "head", path, c.headers(token))
	if err != nil {
		return "", "", err
	}

	doc, err := upstream.Decode(body)
	if err != nil {
		return "", "", err
	}
	status := upstream.FirstString(doc, upstream.At("status"), upstream.At("data", "status"))
	subStatus := upstream.FirstString(doc, upstream.At("sub_status"), upstream.At("data", "sub_status"))
	return status, subStatus, nil
}

func (c *Client) headers(token string) http.Header {
	h := http.Header{}
	h.Set(HeaderClientID, c.cfg.ClientID)
	h.Set(HeaderCompanyID, c.cfg.CompanyID)
	if token != "" {
		h.Set(HeaderToken, token)
	}
	return h
}
