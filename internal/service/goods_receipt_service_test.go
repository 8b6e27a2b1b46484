package service

import (
	"context"
	"testing"

	"procurement-backend/internal/model"
	"procurement-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type grnFixture struct {
	svc      GoodsReceiptService
	poRepo   *memPORepo
	grnRepo  *memGRNRepo
	audit    *memAuditRepo
	notifier *recordingNotifier

	receiverID uuid.UUID
	buyerID    uuid.UUID
}

func newGRNFixture(t *testing.T) *grnFixture {
	t.Helper()
	f := &grnFixture{
		poRepo:     newMemPORepo(),
		grnRepo:    newMemGRNRepo(),
		audit:      &memAuditRepo{},
		notifier:   &recordingNotifier{},
		receiverID: uuid.New(),
		buyerID:    uuid.New(),
	}
	f.svc = NewGoodsReceiptService(f.grnRepo, f.poRepo, f.audit, f.notifier, passthroughTxManager{})
	return f
}

// seedPO stores a purchase order in the given status with one line of the
// given ordered quantity and returns the PO and line ids.
func (f *grnFixture) seedPO(t *testing.T, status string, orderedQty int64) (uuid.UUID, uuid.UUID) {
	t.Helper()
	po := model.PurchaseOrder{
		PONumber:    "PO-20260828-00001",
		VendorID:    uuid.New(),
		Status:      status,
		TotalAmount: decimal.NewFromInt(orderedQty * 10),
		CreatedByID: f.buyerID,
		Items: []model.PurchaseOrderItem{{
			Description: "Printer paper",
			Quantity:    decimal.NewFromInt(orderedQty),
			Unit:        "box",
			UnitPrice:   decimal.NewFromInt(10),
			TotalPrice:  decimal.NewFromInt(orderedQty * 10),
			ReceivedQty: decimal.Zero,
		}},
	}
	require.NoError(t, f.poRepo.Create(context.Background(), &po))
	return po.ID, po.Items[0].ID
}

func (f *grnFixture) receive(t *testing.T, poID, poItemID uuid.UUID, qty string) GoodsReceiptResponse {
	t.Helper()
	resp, err := f.svc.CreateGRN(context.Background(), f.receiverID.String(), CreateGRNRequest{
		PurchaseOrderID: poID.String(),
		Items:           []GRNItemRequest{{POItemID: poItemID.String(), ReceivedQty: qty}},
	})
	require.NoError(t, err)
	return resp
}

func (f *grnFixture) poItemReceived(t *testing.T, itemID uuid.UUID) decimal.Decimal {
	t.Helper()
	item, err := f.poRepo.FindItemByID(context.Background(), itemID)
	require.NoError(t, err)
	return item.ReceivedQty
}

func (f *grnFixture) poStatus(t *testing.T, poID uuid.UUID) string {
	t.Helper()
	po, err := f.poRepo.FindByID(context.Background(), poID)
	require.NoError(t, err)
	return po.Status
}

func TestCreateGRNPartialDelivery(t *testing.T) {
	f := newGRNFixture(t)
	poID, itemID := f.seedPO(t, model.POStatusSent, 10)

	resp := f.receive(t, poID, itemID, "4")

	require.Equal(t, model.GRNStatusPendingInspection, resp.Status)
	require.Len(t, resp.Items, 1)
	require.Equal(t, "4.0000", resp.Items[0].ReceivedQty)
	require.Equal(t, "10.0000", resp.Items[0].OrderedQty)
	require.Equal(t, model.ItemConditionGood, resp.Items[0].Condition)

	require.True(t, f.poItemReceived(t, itemID).Equal(decimal.NewFromInt(4)))
	require.Equal(t, model.POStatusPartiallyReceived, f.poStatus(t, poID))

	require.Len(t, f.notifier.sent, 1)
	require.Equal(t, f.buyerID, f.notifier.sent[0].UserID)
	require.Equal(t, model.NotifyGoodsReceived, f.notifier.sent[0].Type)
}

func TestCreateGRNFullDeliveryClosesReceiving(t *testing.T) {
	f := newGRNFixture(t)
	poID, itemID := f.seedPO(t, model.POStatusSent, 10)

	f.receive(t, poID, itemID, "10")

	require.Equal(t, model.POStatusReceived, f.poStatus(t, poID))
}

func TestCreateGRNOverReceiptRejected(t *testing.T) {
	f := newGRNFixture(t)
	poID, itemID := f.seedPO(t, model.POStatusSent, 10)

	_, err := f.svc.CreateGRN(context.Background(), f.receiverID.String(), CreateGRNRequest{
		PurchaseOrderID: poID.String(),
		Items:           []GRNItemRequest{{POItemID: itemID.String(), ReceivedQty: "11"}},
	})
	require.ErrorIs(t, err, apperror.ErrQuantityInvariant)

	// A second delivery is checked against the remaining quantity.
	f.receive(t, poID, itemID, "6")
	_, err = f.svc.CreateGRN(context.Background(), f.receiverID.String(), CreateGRNRequest{
		PurchaseOrderID: poID.String(),
		Items:           []GRNItemRequest{{POItemID: itemID.String(), ReceivedQty: "5"}},
	})
	require.ErrorIs(t, err, apperror.ErrQuantityInvariant)
}

func TestCreateGRNRequiresSentPO(t *testing.T) {
	f := newGRNFixture(t)
	poID, itemID := f.seedPO(t, model.POStatusDraft, 10)

	_, err := f.svc.CreateGRN(context.Background(), f.receiverID.String(), CreateGRNRequest{
		PurchaseOrderID: poID.String(),
		Items:           []GRNItemRequest{{POItemID: itemID.String(), ReceivedQty: "1"}},
	})
	require.ErrorIs(t, err, apperror.ErrInvalidState)
}

func TestCreateGRNRejectsDuplicateAndForeignLines(t *testing.T) {
	f := newGRNFixture(t)
	poID, itemID := f.seedPO(t, model.POStatusSent, 10)

	_, err := f.svc.CreateGRN(context.Background(), f.receiverID.String(), CreateGRNRequest{
		PurchaseOrderID: poID.String(),
		Items: []GRNItemRequest{
			{POItemID: itemID.String(), ReceivedQty: "2"},
			{POItemID: itemID.String(), ReceivedQty: "3"},
		},
	})
	require.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.svc.CreateGRN(context.Background(), f.receiverID.String(), CreateGRNRequest{
		PurchaseOrderID: poID.String(),
		Items:           []GRNItemRequest{{POItemID: uuid.NewString(), ReceivedQty: "2"}},
	})
	require.ErrorIs(t, err, apperror.ErrValidation)
}

func TestInspectionPartialAcceptance(t *testing.T) {
	f := newGRNFixture(t)
	poID, itemID := f.seedPO(t, model.POStatusSent, 10)
	grn := f.receive(t, poID, itemID, "4")

	started, err := f.svc.StartInspection(context.Background(), f.receiverID.String(), grn.ID)
	require.NoError(t, err)
	require.Equal(t, model.GRNStatusInspecting, started.Status)

	resp, err := f.svc.CompleteInspection(context.Background(), f.receiverID.String(), grn.ID, CompleteInspectionRequest{
		Items: []InspectionItemRequest{{
			ItemID:      grn.Items[0].ID,
			AcceptedQty: "3",
			RejectedQty: "1",
			Condition:   model.ItemConditionDamaged,
		}},
	})
	require.NoError(t, err)
	require.Equal(t, model.GRNStatusPartiallyAccepted, resp.Status)
	require.Equal(t, "3.0000", resp.Items[0].AcceptedQty)
	require.Equal(t, "1.0000", resp.Items[0].RejectedQty)
	require.NotNil(t, resp.InspectedAt)

	// A partial acceptance keeps the received quantity on the PO line.
	require.True(t, f.poItemReceived(t, itemID).Equal(decimal.NewFromInt(4)))
}

func TestInspectionQuantityInvariant(t *testing.T) {
	f := newGRNFixture(t)
	poID, itemID := f.seedPO(t, model.POStatusSent, 10)
	grn := f.receive(t, poID, itemID, "4")

	_, err := f.svc.StartInspection(context.Background(), f.receiverID.String(), grn.ID)
	require.NoError(t, err)

	_, err = f.svc.CompleteInspection(context.Background(), f.receiverID.String(), grn.ID, CompleteInspectionRequest{
		Items: []InspectionItemRequest{{ItemID: grn.Items[0].ID, AcceptedQty: "2", RejectedQty: "1"}},
	})
	require.ErrorIs(t, err, apperror.ErrQuantityInvariant)
}

func TestCompleteInspectionRequiresStart(t *testing.T) {
	f := newGRNFixture(t)
	poID, itemID := f.seedPO(t, model.POStatusSent, 10)
	grn := f.receive(t, poID, itemID, "4")

	_, err := f.svc.CompleteInspection(context.Background(), f.receiverID.String(), grn.ID, CompleteInspectionRequest{
		Items: []InspectionItemRequest{{ItemID: grn.Items[0].ID, AcceptedQty: "4", RejectedQty: "0"}},
	})
	require.ErrorIs(t, err, apperror.ErrInvalidState)
}

func TestCompleteInspectionNeedsDecisionPerLine(t *testing.T) {
	f := newGRNFixture(t)
	poID, itemID := f.seedPO(t, model.POStatusSent, 10)
	grn := f.receive(t, poID, itemID, "4")

	_, err := f.svc.StartInspection(context.Background(), f.receiverID.String(), grn.ID)
	require.NoError(t, err)

	_, err = f.svc.CompleteInspection(context.Background(), f.receiverID.String(), grn.ID, CompleteInspectionRequest{
		Items: []InspectionItemRequest{{ItemID: uuid.NewString(), AcceptedQty: "4", RejectedQty: "0"}},
	})
	require.ErrorIs(t, err, apperror.ErrValidation)
}

func TestFullyRejectedInspectionReleasesQuantities(t *testing.T) {
	f := newGRNFixture(t)
	poID, itemID := f.seedPO(t, model.POStatusSent, 10)
	grn := f.receive(t, poID, itemID, "4")

	_, err := f.svc.StartInspection(context.Background(), f.receiverID.String(), grn.ID)
	require.NoError(t, err)

	resp, err := f.svc.CompleteInspection(context.Background(), f.receiverID.String(), grn.ID, CompleteInspectionRequest{
		Items: []InspectionItemRequest{{ItemID: grn.Items[0].ID, AcceptedQty: "0", RejectedQty: "4"}},
	})
	require.NoError(t, err)
	require.Equal(t, model.GRNStatusRejected, resp.Status)

	// The goods never entered stock, so the PO line reopens in full.
	require.True(t, f.poItemReceived(t, itemID).IsZero())
	require.Equal(t, model.POStatusSent, f.poStatus(t, poID))
}

func TestRejectGRNBacksOutQuantities(t *testing.T) {
	f := newGRNFixture(t)
	poID, itemID := f.seedPO(t, model.POStatusSent, 10)
	grn := f.receive(t, poID, itemID, "4")

	resp, err := f.svc.RejectGRN(context.Background(), f.receiverID.String(), grn.ID, "wrong shipment")
	require.NoError(t, err)
	require.Equal(t, model.GRNStatusRejected, resp.Status)
	require.Equal(t, "wrong shipment", resp.Note)
	require.Equal(t, "0.0000", resp.Items[0].AcceptedQty)
	require.Equal(t, "4.0000", resp.Items[0].RejectedQty)

	require.True(t, f.poItemReceived(t, itemID).IsZero())
	require.Equal(t, model.POStatusSent, f.poStatus(t, poID))
	require.Contains(t, f.audit.actions(), model.ActionRejectGRN)

	// Terminal: the receipt cannot be rejected twice.
	_, err = f.svc.RejectGRN(context.Background(), f.receiverID.String(), grn.ID, "")
	require.ErrorIs(t, err, apperror.ErrInvalidState)
}

func TestUpdateGRNReplacesLinesConsistently(t *testing.T) {
	f := newGRNFixture(t)
	poID, itemID := f.seedPO(t, model.POStatusSent, 10)
	grn := f.receive(t, poID, itemID, "4")

	resp, err := f.svc.UpdateGRN(context.Background(), f.receiverID.String(), grn.ID, UpdateGRNRequest{
		Items: []GRNItemRequest{{POItemID: itemID.String(), ReceivedQty: "6"}},
	})
	require.NoError(t, err)
	require.Equal(t, "6.0000", resp.Items[0].ReceivedQty)

	require.True(t, f.poItemReceived(t, itemID).Equal(decimal.NewFromInt(6)))
	require.Equal(t, model.POStatusPartiallyReceived, f.poStatus(t, poID))
}

func TestUpdateGRNAllowedDuringInspection(t *testing.T) {
	f := newGRNFixture(t)
	poID, itemID := f.seedPO(t, model.POStatusSent, 10)
	grn := f.receive(t, poID, itemID, "4")

	_, err := f.svc.StartInspection(context.Background(), f.receiverID.String(), grn.ID)
	require.NoError(t, err)

	resp, err := f.svc.UpdateGRN(context.Background(), f.receiverID.String(), grn.ID, UpdateGRNRequest{
		Items: []GRNItemRequest{{POItemID: itemID.String(), ReceivedQty: "7"}},
	})
	require.NoError(t, err)
	require.Equal(t, "7.0000", resp.Items[0].ReceivedQty)
	require.True(t, f.poItemReceived(t, itemID).Equal(decimal.NewFromInt(7)))
}

func TestUpdateGRNRejectedAfterInspectionFinalized(t *testing.T) {
	f := newGRNFixture(t)
	poID, itemID := f.seedPO(t, model.POStatusSent, 10)
	grn := f.receive(t, poID, itemID, "4")

	_, err := f.svc.StartInspection(context.Background(), f.receiverID.String(), grn.ID)
	require.NoError(t, err)
	_, err = f.svc.CompleteInspection(context.Background(), f.receiverID.String(), grn.ID, CompleteInspectionRequest{
		Items: []InspectionItemRequest{{ItemID: grn.Items[0].ID, AcceptedQty: "4", RejectedQty: "0"}},
	})
	require.NoError(t, err)

	_, err = f.svc.UpdateGRN(context.Background(), f.receiverID.String(), grn.ID, UpdateGRNRequest{
		Items: []GRNItemRequest{{POItemID: itemID.String(), ReceivedQty: "7"}},
	})
	require.ErrorIs(t, err, apperror.ErrInvalidState)
}
