package service

import (
	"context"
	"testing"
	"time"

	"procurement-backend/internal/model"
	"procurement-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type poFixture struct {
	svc        PurchaseOrderService
	poRepo     *memPORepo
	vendorRepo *memVendorRepo
	reqRepo    *memRequisitionRepo
	rfqRepo    *memRFQRepo
	audit      *memAuditRepo
	notifier   *recordingNotifier

	buyerID  uuid.UUID
	vendorID uuid.UUID
}

func newPOFixture(t *testing.T) *poFixture {
	t.Helper()
	f := &poFixture{
		poRepo:     newMemPORepo(),
		vendorRepo: newMemVendorRepo(),
		reqRepo:    newMemRequisitionRepo(),
		rfqRepo:    newMemRFQRepo(),
		audit:      &memAuditRepo{},
		notifier:   &recordingNotifier{},
		buyerID:    uuid.New(),
	}
	f.svc = NewPurchaseOrderService(f.poRepo, f.vendorRepo, f.reqRepo, f.rfqRepo, f.audit, f.notifier, passthroughTxManager{})

	vendor := model.Vendor{VendorCode: "VND-20260828-00001", Name: "Acme Supplies", Status: model.VendorStatusActive}
	require.NoError(t, f.vendorRepo.Create(context.Background(), &vendor))
	f.vendorID = vendor.ID
	return f
}

func (f *poFixture) create(t *testing.T, req CreatePORequest) PurchaseOrderResponse {
	t.Helper()
	if req.VendorID == "" {
		req.VendorID = f.vendorID.String()
	}
	resp, err := f.svc.CreatePO(context.Background(), f.buyerID.String(), req)
	require.NoError(t, err)
	return resp
}

func TestCreatePOComputesTotals(t *testing.T) {
	f := newPOFixture(t)

	resp := f.create(t, CreatePORequest{
		TaxAmount:      "10",
		DiscountAmount: "5",
		ShippingCost:   "20",
		Items: []POItemRequest{
			{Description: "Standing desk", Quantity: "2", Unit: "pcs", UnitPrice: "150"},
			{Description: "Monitor arm", Quantity: "4", Unit: "pcs", UnitPrice: "25"},
		},
	})

	require.Equal(t, model.POStatusDraft, resp.Status)
	require.Equal(t, "400.0000", resp.Subtotal)
	// 400 + 10 + 20 - 5
	require.Equal(t, "425.0000", resp.TotalAmount)
	require.Len(t, resp.Items, 2)
	require.Equal(t, "300.0000", resp.Items[0].TotalPrice)
	require.Equal(t, "2.0000", resp.Items[0].RemainingQty)
	require.Contains(t, resp.PONumber, "PO-")
	require.Contains(t, f.audit.actions(), model.ActionCreatePO)
}

func TestCreatePODiscountExceedsTotal(t *testing.T) {
	f := newPOFixture(t)

	_, err := f.svc.CreatePO(context.Background(), f.buyerID.String(), CreatePORequest{
		VendorID:       f.vendorID.String(),
		DiscountAmount: "500",
		Items:          []POItemRequest{{Description: "Standing desk", Quantity: "1", Unit: "pcs", UnitPrice: "150"}},
	})
	require.ErrorIs(t, err, apperror.ErrValidation)
}

func TestCreatePORequiresActiveVendor(t *testing.T) {
	f := newPOFixture(t)
	inactive := model.Vendor{VendorCode: "VND-20260828-00002", Name: "Initech", Status: model.VendorStatusInactive}
	require.NoError(t, f.vendorRepo.Create(context.Background(), &inactive))

	_, err := f.svc.CreatePO(context.Background(), f.buyerID.String(), CreatePORequest{
		VendorID: inactive.ID.String(),
		Items:    []POItemRequest{{Description: "Standing desk", Quantity: "1", Unit: "pcs", UnitPrice: "150"}},
	})
	require.ErrorIs(t, err, apperror.ErrInvalidState)
}

func TestCreatePORequiresApprovedRequisition(t *testing.T) {
	f := newPOFixture(t)
	req := model.Requisition{
		RequisitionNo: "REQ-20260828-00001",
		Department:    "IT",
		Status:        model.RequisitionStatusDraft,
		RequesterID:   f.buyerID,
	}
	require.NoError(t, f.reqRepo.Create(context.Background(), &req))

	_, err := f.svc.CreatePO(context.Background(), f.buyerID.String(), CreatePORequest{
		VendorID:      f.vendorID.String(),
		RequisitionID: req.ID.String(),
		Items:         []POItemRequest{{Description: "Standing desk", Quantity: "1", Unit: "pcs", UnitPrice: "150"}},
	})
	require.ErrorIs(t, err, apperror.ErrInvalidState)
}

func TestUpdatePOOnlyWhileDraft(t *testing.T) {
	f := newPOFixture(t)
	po := f.create(t, CreatePORequest{
		Items: []POItemRequest{{Description: "Standing desk", Quantity: "1", Unit: "pcs", UnitPrice: "150"}},
	})

	updated, err := f.svc.UpdatePO(context.Background(), po.ID, UpdatePORequest{
		Items: []POItemRequest{{Description: "Standing desk", Quantity: "3", Unit: "pcs", UnitPrice: "140"}},
	})
	require.NoError(t, err)
	require.Equal(t, "420.0000", updated.Subtotal)

	_, err = f.svc.ApprovePO(context.Background(), f.buyerID.String(), po.ID)
	require.NoError(t, err)

	_, err = f.svc.UpdatePO(context.Background(), po.ID, UpdatePORequest{
		Items: []POItemRequest{{Description: "Standing desk", Quantity: "2", Unit: "pcs", UnitPrice: "140"}},
	})
	require.ErrorIs(t, err, apperror.ErrInvalidState)
}

func TestPOTransitionLifecycle(t *testing.T) {
	f := newPOFixture(t)
	po := f.create(t, CreatePORequest{
		Items: []POItemRequest{{Description: "Standing desk", Quantity: "1", Unit: "pcs", UnitPrice: "150"}},
	})

	// A draft cannot be sent before approval.
	_, err := f.svc.SendPO(context.Background(), f.buyerID.String(), po.ID)
	require.ErrorIs(t, err, apperror.ErrInvalidState)

	approved, err := f.svc.ApprovePO(context.Background(), f.buyerID.String(), po.ID)
	require.NoError(t, err)
	require.Equal(t, model.POStatusApproved, approved.Status)

	require.Len(t, f.notifier.sent, 1)
	require.Equal(t, f.buyerID, f.notifier.sent[0].UserID)
	require.Equal(t, model.NotifyApprovalDecided, f.notifier.sent[0].Type)

	sent, err := f.svc.SendPO(context.Background(), f.buyerID.String(), po.ID)
	require.NoError(t, err)
	require.Equal(t, model.POStatusSent, sent.Status)

	// Completion requires full receipt first.
	_, err = f.svc.CompletePO(context.Background(), f.buyerID.String(), po.ID)
	require.ErrorIs(t, err, apperror.ErrInvalidState)
}

func TestCancelClosedPO(t *testing.T) {
	f := newPOFixture(t)
	po := model.PurchaseOrder{
		PONumber:    "PO-20260828-00009",
		VendorID:    f.vendorID,
		Status:      model.POStatusCompleted,
		TotalAmount: decimal.NewFromInt(100),
		CreatedByID: f.buyerID,
		Items: []model.PurchaseOrderItem{{
			Description: "Standing desk",
			Quantity:    decimal.NewFromInt(1),
			Unit:        "pcs",
			UnitPrice:   decimal.NewFromInt(100),
			TotalPrice:  decimal.NewFromInt(100),
			ReceivedQty: decimal.NewFromInt(1),
		}},
	}
	require.NoError(t, f.poRepo.Create(context.Background(), &po))

	_, err := f.svc.CancelPO(context.Background(), f.buyerID.String(), po.ID.String())
	require.ErrorIs(t, err, apperror.ErrAlreadyClosed)
}

// awardedRFQ builds an AWARDED rfq with a SELECTED response quoting both lines.
func (f *poFixture) awardedRFQ(t *testing.T) (*model.RFQ, uuid.UUID) {
	t.Helper()
	deadline := time.Now().Add(24 * time.Hour)
	rfq := model.RFQ{
		RFQNumber:        "RFQ-20260828-00001",
		Title:            "Office chairs Q3",
		Status:           model.RFQStatusAwarded,
		ResponseDeadline: &deadline,
		CreatedByID:      f.buyerID,
		Items: []model.RFQItem{
			{Description: "Office chair", Quantity: decimal.NewFromInt(20), Unit: "pcs"},
			{Description: "Desk lamp", Quantity: decimal.NewFromInt(10), Unit: "pcs"},
		},
	}
	require.NoError(t, f.rfqRepo.Create(context.Background(), &rfq))

	response := model.RFQResponse{
		RFQID:    rfq.ID,
		VendorID: f.vendorID,
		Status:   model.RFQResponseSelected,
		Items: []model.RFQResponseItem{
			{RFQItemID: rfq.Items[0].ID, UnitPrice: decimal.NewFromInt(15), TotalPrice: decimal.NewFromInt(300)},
			{RFQItemID: rfq.Items[1].ID, UnitPrice: decimal.NewFromFloat(8.5), TotalPrice: decimal.NewFromInt(85)},
		},
		TotalAmount: decimal.NewFromInt(385),
		SubmittedAt: time.Now(),
	}
	require.NoError(t, f.rfqRepo.CreateResponse(context.Background(), &response))
	return &rfq, response.ID
}

func TestCreatePOFromRFQ(t *testing.T) {
	f := newPOFixture(t)
	rfq, responseID := f.awardedRFQ(t)

	resp, err := f.svc.CreatePOFromRFQ(context.Background(), f.buyerID.String(), rfq.ID.String(), CreatePOFromRFQRequest{
		ResponseID: responseID.String(),
		TaxAmount:  "15",
	})
	require.NoError(t, err)
	require.Equal(t, model.POStatusDraft, resp.Status)
	require.Equal(t, f.vendorID.String(), resp.VendorID)
	require.Equal(t, "385.0000", resp.Subtotal)
	require.Equal(t, "400.0000", resp.TotalAmount)
	require.NotNil(t, resp.RFQResponseID)
	require.Equal(t, responseID.String(), *resp.RFQResponseID)

	require.Len(t, resp.Items, 2)
	require.Equal(t, "Office chair", resp.Items[0].Description)
	require.Equal(t, "20.0000", resp.Items[0].Quantity)
	require.Equal(t, "15.0000", resp.Items[0].UnitPrice)
}

func TestCreatePOFromRFQGuards(t *testing.T) {
	f := newPOFixture(t)
	rfq, responseID := f.awardedRFQ(t)

	// Response of some other rfq.
	otherRFQ, otherResponse := f.awardedRFQ(t)
	_, err := f.svc.CreatePOFromRFQ(context.Background(), f.buyerID.String(), rfq.ID.String(), CreatePOFromRFQRequest{
		ResponseID: otherResponse.String(),
	})
	require.ErrorIs(t, err, apperror.ErrValidation)
	_ = otherRFQ

	// RFQ not awarded.
	stored, err := f.rfqRepo.FindByID(context.Background(), rfq.ID)
	require.NoError(t, err)
	stored.Status = model.RFQStatusEvaluating
	require.NoError(t, f.rfqRepo.Update(context.Background(), stored))
	_, err = f.svc.CreatePOFromRFQ(context.Background(), f.buyerID.String(), rfq.ID.String(), CreatePOFromRFQRequest{
		ResponseID: responseID.String(),
	})
	require.ErrorIs(t, err, apperror.ErrInvalidState)

	// Response not selected.
	stored.Status = model.RFQStatusAwarded
	require.NoError(t, f.rfqRepo.Update(context.Background(), stored))
	response, err := f.rfqRepo.FindResponseByID(context.Background(), responseID)
	require.NoError(t, err)
	response.Status = model.RFQResponseRejected
	require.NoError(t, f.rfqRepo.UpdateResponse(context.Background(), response))
	_, err = f.svc.CreatePOFromRFQ(context.Background(), f.buyerID.String(), rfq.ID.String(), CreatePOFromRFQRequest{
		ResponseID: responseID.String(),
	})
	require.ErrorIs(t, err, apperror.ErrInvalidState)
}
