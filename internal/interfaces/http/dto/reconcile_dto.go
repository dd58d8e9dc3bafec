package dto

import (
	"strings"

	"github.com/cmosqueda1/FMS-TMS-Checkstatus/internal/domain/reconcile"
)

// ReconcileRequest is the body of POST /api/v1/reconcile
type ReconcileRequest struct {
	Mode         string   `json:"mode" binding:"required,oneof=tracking pickup" example:"tracking"`
	Identifiers  []string `json:"identifiers" binding:"required,min=1,dive,max=64" example:"1234567890,1234567891"`
	ForceRefresh bool     `json:"force_refresh" example:"false"`
}

// NormalizeIdentifiers trims every identifier, drops empty ones and
// duplicates (first occurrence wins), then caps the list at max. It returns
// the kept identifiers and how many were cut by the cap.
func NormalizeIdentifiers(raw []string, max int) (ids []string, truncated int) {
	seen := make(map[string]struct{}, len(raw))
	ids = make([]string, 0, len(raw))
	for _, id := range raw {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if max > 0 && len(ids) > max {
		truncated = len(ids) - max
		ids = ids[:max]
	}
	return ids, truncated
}

// ReconcileMeta describes how the request was shaped into a batch
type ReconcileMeta struct {
	Mode      string `json:"mode"`
	Requested int    `json:"requested"`
	Processed int    `json:"processed"`
	Truncated int    `json:"truncated"`
	BatchMax  int    `json:"batch_max"`
}

// ReconcileResponse is the data of a reconcile response
type ReconcileResponse struct {
	Results []ResultView `json:"results"`
}

// ResultView is the JSON projection of one reconciliation result
type ResultView struct {
	Identifier string    `json:"identifier" yaml:"identifier"`
	OrderRef   string    `json:"order_ref,omitempty" yaml:"order_ref,omitempty"`
	Order      OrderView `json:"order" yaml:"order"`
	Trace      TraceView `json:"trace" yaml:"trace"`
}

// OrderView flattens the Order-System side into flags
type OrderView struct {
	Found        bool   `json:"found" yaml:"found"`
	OK           bool   `json:"ok" yaml:"ok"`
	Partial      bool   `json:"partial" yaml:"partial"`
	NetworkError bool   `json:"network_error" yaml:"network_error"`
	GeneralError bool   `json:"general_error" yaml:"general_error"`
	BasicOK      bool   `json:"basic_ok" yaml:"basic_ok"`
	HeadOK       bool   `json:"head_ok" yaml:"head_ok"`
	Location     string `json:"location,omitempty" yaml:"location,omitempty"`
	Status       string `json:"status,omitempty" yaml:"status,omitempty"`
	SubStatus    string `json:"sub_status,omitempty" yaml:"sub_status,omitempty"`
}

// TraceView flattens the Trace-System side
type TraceView struct {
	Attempted       bool   `json:"attempted" yaml:"attempted"`
	Found           bool   `json:"found" yaml:"found"`
	NotFound        bool   `json:"not_found" yaml:"not_found"`
	ExternalOrderID string `json:"external_order_id,omitempty" yaml:"external_order_id,omitempty"`
	Location        string `json:"location,omitempty" yaml:"location,omitempty"`
	Status          string `json:"status,omitempty" yaml:"status,omitempty"`
	SubStatus       string `json:"sub_status,omitempty" yaml:"sub_status,omitempty"`
}

// ToResultView projects a domain result
func ToResultView(r reconcile.ReconciliationResult) ResultView {
	view := ResultView{Identifier: r.Identifier}

	if r.Order.HasOrderRef {
		d := r.Order.Detail
		view.OrderRef = r.Order.OrderRef.String()
		view.Order = OrderView{
			Found:        true,
			OK:           d.OK(),
			Partial:      d.Partial(),
			NetworkError: d.NetworkError(),
			GeneralError: d.GeneralError(),
			BasicOK:      d.BasicOK,
			HeadOK:       d.HeadOK,
			Location:     d.Location,
			Status:       d.Status,
			SubStatus:    d.SubStatus,
		}
	}

	t := r.Trace
	view.Trace = TraceView{
		Attempted: t.Attempted,
		Found:     t.OK(),
		NotFound:  t.NotFound,
	}
	if t.OK() {
		view.Trace.ExternalOrderID = t.Record.ExternalOrderID
		view.Trace.Location = t.Record.Location
		view.Trace.Status = t.Record.Status
		view.Trace.SubStatus = t.Record.SubStatus
	}
	return view
}

// ToResultViews projects a batch of results, keeping order
func ToResultViews(results []reconcile.ReconciliationResult) []ResultView {
	views := make([]ResultView, len(results))
	for i, r := range results {
		views[i] = ToResultView(r)
	}
	return views
}
