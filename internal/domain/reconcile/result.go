package reconcile

// DetailOutcome classifies the two Order-System detail calls made for one
// order reference. Exactly one outcome applies to every record.
type DetailOutcome int

const (
	// OutcomeOK means both detail calls succeeded
	OutcomeOK DetailOutcome = iota + 1
	// OutcomePartial means exactly one detail call succeeded
	OutcomePartial
	// OutcomeNetworkError means at least one call could not reach Order-System
	OutcomeNetworkError
	// OutcomeGeneralError means both calls reached Order-System and both failed
	OutcomeGeneralError
)

// String returns the string representation
func (o DetailOutcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomePartial:
		return "partial"
	case OutcomeNetworkError:
		return "network_error"
	case OutcomeGeneralError:
		return "general_error"
	default:
		return "unknown"
	}
}

// CallStatus is the result of a single detail sub-call
type CallStatus int

const (
	CallSucceeded CallStatus = iota
	CallFailed
	CallUnreachable
)

// CallStatusOf maps a sub-call error to its status
func CallStatusOf(err error) CallStatus {
	switch {
	case err == nil:
		return CallSucceeded
	case IsUnreachable(err):
		return CallUnreachable
	default:
		return CallFailed
	}
}

// ClassifyDetail applies the precedence network error, then general error,
// then ok/partial.
func ClassifyDetail(basic, head CallStatus) DetailOutcome {
	switch {
	case basic == CallUnreachable || head == CallUnreachable:
		return OutcomeNetworkError
	case basic == CallFailed && head == CallFailed:
		return OutcomeGeneralError
	case basic == CallSucceeded && head == CallSucceeded:
		return OutcomeOK
	default:
		return OutcomePartial
	}
}

// DetailRecord is the Order-System view of one order reference
type DetailRecord struct {
	Outcome   DetailOutcome
	Location  string
	Status    string
	SubStatus string
	BasicOK   bool
	HeadOK    bool
}

// NewDetailRecord builds a record from the two sub-call results. Fields from a
// failed call stay empty; a network error clears everything.
func NewDetailRecord(location string, basicErr error, status, subStatus string, headErr error) DetailRecord {
	outcome := ClassifyDetail(CallStatusOf(basicErr), CallStatusOf(headErr))
	if outcome == OutcomeNetworkError || outcome == OutcomeGeneralError {
		return DetailRecord{Outcome: outcome}
	}

	rec := DetailRecord{Outcome: outcome}
	if basicErr == nil {
		rec.BasicOK = true
		rec.Location = location
	}
	if headErr == nil {
		rec.HeadOK = true
		rec.Status = status
		rec.SubStatus = subStatus
	}
	return rec
}

// OK reports whether at least one detail call succeeded
func (d DetailRecord) OK() bool {
	return d.Outcome == OutcomeOK || d.Outcome == OutcomePartial
}

// Partial reports whether exactly one detail call succeeded
func (d DetailRecord) Partial() bool {
	return d.Outcome == OutcomePartial
}

// NetworkError reports a connectivity failure on either call
func (d DetailRecord) NetworkError() bool {
	return d.Outcome == OutcomeNetworkError
}

// GeneralError reports that both calls failed without a connectivity problem
func (d DetailRecord) GeneralError() bool {
	return d.Outcome == OutcomeGeneralError
}

// TraceRecord is the Trace-System row for one identifier
type TraceRecord struct {
	ExternalOrderID string
	Location        string
	Status          string
	SubStatus       string
}

// OrderSide is the Order-System half of a reconciliation result
type OrderSide struct {
	HasOrderRef bool
	OrderRef    OrderReference
	Detail      DetailRecord
}

// OK reports whether the identifier resolved and some detail was retrieved
func (o OrderSide) OK() bool {
	return o.HasOrderRef && o.Detail.OK()
}

// TraceSide is the Trace-System half of a reconciliation result
type TraceSide struct {
	Attempted bool
	NotFound  bool
	Record    TraceRecord
}

// OK reports whether a trace row was found
func (t TraceSide) OK() bool {
	return t.Attempted && !t.NotFound
}

// ReconciliationResult is the merged record for one input identifier
type ReconciliationResult struct {
	Identifier string
	Order      OrderSide
	Trace      TraceSide
}
