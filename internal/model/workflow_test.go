package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestRequisitionTransitions(t *testing.T) {
	require.True(t, RequisitionCanTransition(RequisitionStatusDraft, RequisitionStatusPendingApproval))
	require.True(t, RequisitionCanTransition(RequisitionStatusPendingApproval, RequisitionStatusRejected))
	require.True(t, RequisitionCanTransition(RequisitionStatusApproved, RequisitionStatusCompleted))

	require.False(t, RequisitionCanTransition(RequisitionStatusDraft, RequisitionStatusApproved))
	require.False(t, RequisitionCanTransition(RequisitionStatusRejected, RequisitionStatusPendingApproval))
	require.False(t, RequisitionCanTransition(RequisitionStatusCancelled, RequisitionStatusDraft))
}

func TestPurchaseOrderTransitions(t *testing.T) {
	require.True(t, PurchaseOrderCanTransition(POStatusDraft, POStatusApproved))
	require.True(t, PurchaseOrderCanTransition(POStatusSent, POStatusPartiallyReceived))
	require.True(t, PurchaseOrderCanTransition(POStatusPartiallyReceived, POStatusReceived))
	require.True(t, PurchaseOrderCanTransition(POStatusReceived, POStatusCompleted))

	require.False(t, PurchaseOrderCanTransition(POStatusDraft, POStatusSent))
	require.False(t, PurchaseOrderCanTransition(POStatusReceived, POStatusCancelled))
	require.False(t, PurchaseOrderCanTransition(POStatusCompleted, POStatusCancelled))
}

func TestPurchaseOrderTerminal(t *testing.T) {
	require.True(t, PurchaseOrderTerminal(POStatusCancelled))
	require.True(t, PurchaseOrderTerminal(POStatusCompleted))
	require.False(t, PurchaseOrderTerminal(POStatusReceived))
}

func TestGoodsReceiptTransitions(t *testing.T) {
	require.True(t, GoodsReceiptCanTransition(GRNStatusPendingInspection, GRNStatusInspecting))
	require.True(t, GoodsReceiptCanTransition(GRNStatusPendingInspection, GRNStatusRejected))
	require.True(t, GoodsReceiptCanTransition(GRNStatusInspecting, GRNStatusPartiallyAccepted))

	require.False(t, GoodsReceiptCanTransition(GRNStatusAccepted, GRNStatusInspecting))
	require.False(t, GoodsReceiptCanTransition(GRNStatusRejected, GRNStatusPendingInspection))
}

func TestGoodsReceiptFinalized(t *testing.T) {
	require.True(t, GoodsReceiptFinalized(GRNStatusAccepted))
	require.True(t, GoodsReceiptFinalized(GRNStatusPartiallyAccepted))
	require.True(t, GoodsReceiptFinalized(GRNStatusRejected))
	require.False(t, GoodsReceiptFinalized(GRNStatusInspecting))
	require.False(t, GoodsReceiptFinalized(GRNStatusPendingInspection))
}

func TestRFQTransitions(t *testing.T) {
	require.True(t, RFQCanTransition(RFQStatusDraft, RFQStatusPublished))
	require.True(t, RFQCanTransition(RFQStatusPublished, RFQStatusEvaluating))
	require.True(t, RFQCanTransition(RFQStatusEvaluating, RFQStatusAwarded))
	require.True(t, RFQCanTransition(RFQStatusPublished, RFQStatusCancelled))

	require.False(t, RFQCanTransition(RFQStatusDraft, RFQStatusAwarded))
	require.False(t, RFQCanTransition(RFQStatusAwarded, RFQStatusPublished))
	require.False(t, RFQCanTransition(RFQStatusCancelled, RFQStatusPublished))
}

func TestPaymentStatusFor(t *testing.T) {
	due := time.Now().Add(24 * time.Hour)
	total := decimal.NewFromInt(100)

	require.Equal(t, PaymentStatusUnpaid, PaymentStatusFor(total, decimal.Zero, due, time.Now()))
	require.Equal(t, PaymentStatusPartiallyPaid, PaymentStatusFor(total, decimal.NewFromInt(40), due, time.Now()))
	require.Equal(t, PaymentStatusPaid, PaymentStatusFor(total, total, due, time.Now()))

	past := time.Now().Add(-24 * time.Hour)
	require.Equal(t, PaymentStatusOverdue, PaymentStatusFor(total, decimal.NewFromInt(40), past, time.Now()))
	// Full payment wins over the due date.
	require.Equal(t, PaymentStatusPaid, PaymentStatusFor(total, total, past, time.Now()))
}

func TestRemainingQty(t *testing.T) {
	item := PurchaseOrderItem{
		Quantity:    decimal.NewFromInt(10),
		ReceivedQty: decimal.NewFromInt(4),
	}
	require.True(t, item.RemainingQty().Equal(decimal.NewFromInt(6)))
}

func TestDelegationWindow(t *testing.T) {
	start := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	d := ApprovalDelegation{StartDate: start, EndDate: end}

	require.True(t, d.Covers(start))
	require.True(t, d.Covers(end))
	require.True(t, d.Covers(start.Add(7*24*time.Hour)))
	require.False(t, d.Covers(start.Add(-time.Second)))
	require.False(t, d.Covers(end.Add(time.Second)))

	require.True(t, d.Overlaps(end, end.Add(time.Hour)))
	require.True(t, d.Overlaps(start.Add(-time.Hour), start))
	require.False(t, d.Overlaps(end.Add(time.Second), end.Add(time.Hour)))
	require.False(t, d.Overlaps(start.Add(-time.Hour), start.Add(-time.Second)))
}

func TestRoleHasCapability(t *testing.T) {
	require.True(t, RoleHasCapability(RoleAdmin, CapManageUsers))
	require.True(t, RoleHasCapability(RoleAdmin, CapProcessPayments))

	require.True(t, RoleHasCapability(RoleCFO, CapProcessPayments))
	require.False(t, RoleHasCapability(RoleStaff, CapProcessPayments))
	require.True(t, RoleHasCapability(RoleStaff, CapManageRequisitions))
	require.False(t, RoleHasCapability(RoleCEO, CapManageVendors))
	require.False(t, RoleHasCapability("UNKNOWN", CapViewAudit))
}

func TestValidRole(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleCEO, RoleCFO, RoleProcurementOfficer, RoleOperationsManager, RoleDepartmentHead, RoleStaff} {
		require.True(t, ValidRole(role), role)
	}
	require.False(t, ValidRole("INTERN"))
	require.False(t, ValidRole(""))
}
