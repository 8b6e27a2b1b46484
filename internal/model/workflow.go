package model

// Transition tables for the document state machines. A transition absent
// from its table is illegal; guard conditions beyond pure status (item
// counts, deadlines, approver resolution) are enforced by the services.

var requisitionTransitions = map[string][]string{
	RequisitionStatusDraft:           {RequisitionStatusPendingApproval, RequisitionStatusCancelled},
	RequisitionStatusPendingApproval: {RequisitionStatusApproved, RequisitionStatusRejected, RequisitionStatusCancelled},
	RequisitionStatusApproved:        {RequisitionStatusCompleted},
	// REJECTED, CANCELLED, COMPLETED are terminal
}

var purchaseOrderTransitions = map[string][]string{
	POStatusDraft:             {POStatusApproved, POStatusCancelled},
	POStatusApproved:          {POStatusSent, POStatusCancelled},
	POStatusSent:              {POStatusPartiallyReceived, POStatusReceived, POStatusCancelled},
	POStatusPartiallyReceived: {POStatusReceived, POStatusCancelled},
	POStatusReceived:          {POStatusCompleted},
	// CANCELLED, COMPLETED are terminal
}

var goodsReceiptTransitions = map[string][]string{
	GRNStatusPendingInspection: {GRNStatusInspecting, GRNStatusAccepted, GRNStatusPartiallyAccepted, GRNStatusRejected},
	GRNStatusInspecting:        {GRNStatusAccepted, GRNStatusPartiallyAccepted, GRNStatusRejected},
	// ACCEPTED, PARTIALLY_ACCEPTED, REJECTED are terminal
}

var rfqTransitions = map[string][]string{
	RFQStatusDraft:      {RFQStatusPublished, RFQStatusClosed, RFQStatusCancelled},
	RFQStatusPublished:  {RFQStatusEvaluating, RFQStatusClosed, RFQStatusCancelled},
	RFQStatusEvaluating: {RFQStatusAwarded, RFQStatusClosed, RFQStatusCancelled},
	// AWARDED, CLOSED, CANCELLED are terminal
}

func canTransition(table map[string][]string, from, to string) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// RequisitionCanTransition reports whether a requisition may move from
// status `from` to status `to`.
func RequisitionCanTransition(from, to string) bool {
	return canTransition(requisitionTransitions, from, to)
}

// PurchaseOrderCanTransition reports whether a PO status transition is legal.
func PurchaseOrderCanTransition(from, to string) bool {
	return canTransition(purchaseOrderTransitions, from, to)
}

// GoodsReceiptCanTransition reports whether a GRN status transition is legal.
func GoodsReceiptCanTransition(from, to string) bool {
	return canTransition(goodsReceiptTransitions, from, to)
}

// RFQCanTransition reports whether an RFQ status transition is legal.
func RFQCanTransition(from, to string) bool {
	return canTransition(rfqTransitions, from, to)
}

// PurchaseOrderTerminal reports whether status is a terminal PO status.
// Cancel requests against a terminal PO fail as already closed.
func PurchaseOrderTerminal(status string) bool {
	return status == POStatusCancelled || status == POStatusCompleted
}

// GoodsReceiptFinalized reports whether the receipt can no longer be
// updated, re-inspected, or re-accepted.
func GoodsReceiptFinalized(status string) bool {
	return status == GRNStatusAccepted || status == GRNStatusPartiallyAccepted || status == GRNStatusRejected
}
