package service

import (
	"context"
	"fmt"
	"time"

	"procurement-backend/internal/model"
	"procurement-backend/internal/repository"
	"procurement-backend/pkg/apperror"
	"procurement-backend/pkg/numeric"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type POItemRequest struct {
	Description string `json:"description" binding:"required"`
	Quantity    string `json:"quantity" binding:"required"`
	Unit        string `json:"unit" binding:"required"`
	UnitPrice   string `json:"unit_price" binding:"required"`
}

type CreatePORequest struct {
	VendorID       string          `json:"vendor_id" binding:"required"`
	RequisitionID  string          `json:"requisition_id"`
	TaxAmount      string          `json:"tax_amount"`
	DiscountAmount string          `json:"discount_amount"`
	ShippingCost   string          `json:"shipping_cost"`
	ExpectedDate   string          `json:"expected_date"` // RFC3339, optional
	DeliveryPlace  string          `json:"delivery_place"`
	Note           string          `json:"note"`
	Items          []POItemRequest `json:"items" binding:"required,min=1,dive"`
}

type UpdatePORequest struct {
	TaxAmount      *string         `json:"tax_amount"`
	DiscountAmount *string         `json:"discount_amount"`
	ShippingCost   *string         `json:"shipping_cost"`
	ExpectedDate   *string         `json:"expected_date"`
	DeliveryPlace  *string         `json:"delivery_place"`
	Note           *string         `json:"note"`
	Items          []POItemRequest `json:"items" binding:"omitempty,min=1,dive"`
}

type CreatePOFromRFQRequest struct {
	ResponseID    string `json:"response_id" binding:"required"`
	TaxAmount     string `json:"tax_amount"`
	ShippingCost  string `json:"shipping_cost"`
	ExpectedDate  string `json:"expected_date"`
	DeliveryPlace string `json:"delivery_place"`
	Note          string `json:"note"`
}

type PurchaseOrderFilter struct {
	Status   string
	VendorID string
	Page     int
	Limit    int
}

type POItemResponse struct {
	ID           string `json:"id"`
	Description  string `json:"description"`
	Quantity     string `json:"quantity"`
	Unit         string `json:"unit"`
	UnitPrice    string `json:"unit_price"`
	TotalPrice   string `json:"total_price"`
	ReceivedQty  string `json:"received_qty"`
	RemainingQty string `json:"remaining_qty"`
}

type PurchaseOrderResponse struct {
	ID             string           `json:"id"`
	PONumber       string           `json:"po_number"`
	VendorID       string           `json:"vendor_id"`
	VendorName     string           `json:"vendor_name,omitempty"`
	RequisitionID  *string          `json:"requisition_id"`
	RFQResponseID  *string          `json:"rfq_response_id"`
	Status         string           `json:"status"`
	Subtotal       string           `json:"subtotal"`
	TaxAmount      string           `json:"tax_amount"`
	DiscountAmount string           `json:"discount_amount"`
	ShippingCost   string           `json:"shipping_cost"`
	TotalAmount    string           `json:"total_amount"`
	ExpectedDate   *string          `json:"expected_date"`
	DeliveryPlace  string           `json:"delivery_place"`
	Note           string           `json:"note"`
	Items          []POItemResponse `json:"items"`
	CreatedAt      string           `json:"created_at"`
}

// --- Interface ---

type PurchaseOrderService interface {
	CreatePO(ctx context.Context, creatorID string, req CreatePORequest) (PurchaseOrderResponse, error)
	CreatePOFromRFQ(ctx context.Context, creatorID string, rfqID string, req CreatePOFromRFQRequest) (PurchaseOrderResponse, error)
	GetPO(ctx context.Context, id string) (PurchaseOrderResponse, error)
	ListPOs(ctx context.Context, filter PurchaseOrderFilter) ([]PurchaseOrderResponse, int64, error)
	UpdatePO(ctx context.Context, id string, req UpdatePORequest) (PurchaseOrderResponse, error)
	ApprovePO(ctx context.Context, approverID, id string) (PurchaseOrderResponse, error)
	SendPO(ctx context.Context, actorID, id string) (PurchaseOrderResponse, error)
	CompletePO(ctx context.Context, actorID, id string) (PurchaseOrderResponse, error)
	CancelPO(ctx context.Context, actorID, id string) (PurchaseOrderResponse, error)
}

type purchaseOrderService struct {
	poRepo          repository.PurchaseOrderRepository
	vendorRepo      repository.VendorRepository
	requisitionRepo repository.RequisitionRepository
	rfqRepo         repository.RFQRepository
	auditRepo       repository.AuditRepository
	notifier        Notifier
	txManager       repository.TransactionManager
}

func NewPurchaseOrderService(
	poRepo repository.PurchaseOrderRepository,
	vendorRepo repository.VendorRepository,
	requisitionRepo repository.RequisitionRepository,
	rfqRepo repository.RFQRepository,
	auditRepo repository.AuditRepository,
	notifier Notifier,
	txManager repository.TransactionManager,
) PurchaseOrderService {
	return &purchaseOrderService{
		poRepo:          poRepo,
		vendorRepo:      vendorRepo,
		requisitionRepo: requisitionRepo,
		rfqRepo:         rfqRepo,
		auditRepo:       auditRepo,
		notifier:        notifier,
		txManager:       txManager,
	}
}

// --- Implementation ---

func (s *purchaseOrderService) CreatePO(ctx context.Context, creatorID string, req CreatePORequest) (PurchaseOrderResponse, error) {
	creator, err := uuid.Parse(creatorID)
	if err != nil {
		return PurchaseOrderResponse{}, fmt.Errorf("invalid creator id: %w", err)
	}
	vendorID, err := uuid.Parse(req.VendorID)
	if err != nil {
		return PurchaseOrderResponse{}, fmt.Errorf("%w: invalid vendor_id", apperror.ErrValidation)
	}

	vendor, err := s.vendorRepo.FindByID(ctx, vendorID)
	if err != nil {
		return PurchaseOrderResponse{}, fmt.Errorf("vendor not found: %w", apperror.ErrNotFound)
	}
	if vendor.Status != model.VendorStatusActive {
		return PurchaseOrderResponse{}, fmt.Errorf("%w: vendor %s is %s", apperror.ErrInvalidState, vendor.VendorCode, vendor.Status)
	}

	var requisitionID *uuid.UUID
	if req.RequisitionID != "" {
		reqID, parseErr := uuid.Parse(req.RequisitionID)
		if parseErr != nil {
			return PurchaseOrderResponse{}, fmt.Errorf("%w: invalid requisition_id", apperror.ErrValidation)
		}
		requisition, findErr := s.requisitionRepo.FindByID(ctx, reqID)
		if findErr != nil {
			return PurchaseOrderResponse{}, fmt.Errorf("requisition not found: %w", apperror.ErrNotFound)
		}
		if requisition.Status != model.RequisitionStatusApproved {
			return PurchaseOrderResponse{}, fmt.Errorf("%w: requisition %s is %s, a purchase order needs an APPROVED requisition",
				apperror.ErrInvalidState, requisition.RequisitionNo, requisition.Status)
		}
		requisitionID = &reqID
	}

	items, subtotal, err := buildPOItems(req.Items)
	if err != nil {
		return PurchaseOrderResponse{}, err
	}

	tax, err := numeric.ToDecimalOrZero(req.TaxAmount)
	if err != nil {
		return PurchaseOrderResponse{}, err
	}
	discount, err := numeric.ToDecimalOrZero(req.DiscountAmount)
	if err != nil {
		return PurchaseOrderResponse{}, err
	}
	shipping, err := numeric.ToDecimalOrZero(req.ShippingCost)
	if err != nil {
		return PurchaseOrderResponse{}, err
	}
	for _, pair := range []struct {
		name  string
		value decimal.Decimal
	}{{"tax_amount", tax}, {"discount_amount", discount}, {"shipping_cost", shipping}} {
		if err := numeric.RequireNonNegative(pair.value, pair.name); err != nil {
			return PurchaseOrderResponse{}, err
		}
	}

	total := subtotal.Add(tax).Add(shipping).Sub(discount)
	if total.IsNegative() {
		return PurchaseOrderResponse{}, fmt.Errorf("%w: discount exceeds order total", apperror.ErrValidation)
	}

	var expectedDate *time.Time
	if req.ExpectedDate != "" {
		parsed, parseErr := time.Parse(time.RFC3339, req.ExpectedDate)
		if parseErr != nil {
			return PurchaseOrderResponse{}, fmt.Errorf("%w: invalid expected_date", apperror.ErrValidation)
		}
		expectedDate = &parsed
	}

	po := model.PurchaseOrder{
		VendorID:       vendorID,
		RequisitionID:  requisitionID,
		Status:         model.POStatusDraft,
		Subtotal:       subtotal,
		TaxAmount:      tax,
		DiscountAmount: discount,
		ShippingCost:   shipping,
		TotalAmount:    total,
		ExpectedDate:   expectedDate,
		DeliveryPlace:  req.DeliveryPlace,
		Note:           req.Note,
		CreatedByID:    creator,
		Items:          items,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		number, numErr := generateDocNumber(txCtx, PrefixPurchaseOrder, s.poRepo.CountByPrefix)
		if numErr != nil {
			return fmt.Errorf("failed to generate PO number: %w", numErr)
		}
		po.PONumber = number

		if createErr := s.poRepo.Create(txCtx, &po); createErr != nil {
			return fmt.Errorf("failed to create purchase order: %w", createErr)
		}

		audit := auditEntry(creatorID, model.ActionCreatePO, po.ID.String(), po.PONumber,
			map[string]any{"vendor_id": vendorID.String(), "total_amount": total.StringFixed(4)})
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return PurchaseOrderResponse{}, err
	}

	return s.GetPO(ctx, po.ID.String())
}

// CreatePOFromRFQ turns an awarded RFQ's SELECTED response into a purchase
// order, carrying over the quoted lines and prices.
func (s *purchaseOrderService) CreatePOFromRFQ(ctx context.Context, creatorID string, rfqID string, req CreatePOFromRFQRequest) (PurchaseOrderResponse, error) {
	creator, err := uuid.Parse(creatorID)
	if err != nil {
		return PurchaseOrderResponse{}, fmt.Errorf("invalid creator id: %w", err)
	}
	rfqUUID, err := uuid.Parse(rfqID)
	if err != nil {
		return PurchaseOrderResponse{}, fmt.Errorf("%w: invalid rfq id", apperror.ErrValidation)
	}
	responseID, err := uuid.Parse(req.ResponseID)
	if err != nil {
		return PurchaseOrderResponse{}, fmt.Errorf("%w: invalid response_id", apperror.ErrValidation)
	}

	rfq, err := s.rfqRepo.FindByID(ctx, rfqUUID)
	if err != nil {
		return PurchaseOrderResponse{}, fmt.Errorf("rfq not found: %w", apperror.ErrNotFound)
	}
	if rfq.Status != model.RFQStatusAwarded {
		return PurchaseOrderResponse{}, fmt.Errorf("%w: rfq %s is %s, only AWARDED rfqs convert to purchase orders",
			apperror.ErrInvalidState, rfq.RFQNumber, rfq.Status)
	}

	response, err := s.rfqRepo.FindResponseByID(ctx, responseID)
	if err != nil {
		return PurchaseOrderResponse{}, fmt.Errorf("rfq response not found: %w", apperror.ErrNotFound)
	}
	if response.RFQID != rfqUUID {
		return PurchaseOrderResponse{}, fmt.Errorf("%w: response does not belong to this rfq", apperror.ErrValidation)
	}
	if response.Status != model.RFQResponseSelected {
		return PurchaseOrderResponse{}, fmt.Errorf("%w: response is %s, only the SELECTED response converts",
			apperror.ErrInvalidState, response.Status)
	}

	// Index RFQ lines so quoted unit prices can be paired with their
	// descriptions and quantities.
	rfqItems := make(map[uuid.UUID]model.RFQItem, len(rfq.Items))
	for _, item := range rfq.Items {
		rfqItems[item.ID] = item
	}

	items := make([]model.PurchaseOrderItem, 0, len(response.Items))
	subtotal := decimal.Zero
	for _, quoted := range response.Items {
		source, ok := rfqItems[quoted.RFQItemID]
		if !ok {
			return PurchaseOrderResponse{}, fmt.Errorf("%w: quoted line references unknown rfq item", apperror.ErrValidation)
		}
		lineTotal := source.Quantity.Mul(quoted.UnitPrice)
		subtotal = subtotal.Add(lineTotal)
		items = append(items, model.PurchaseOrderItem{
			Description: source.Description,
			Quantity:    source.Quantity,
			Unit:        source.Unit,
			UnitPrice:   quoted.UnitPrice,
			TotalPrice:  lineTotal,
			ReceivedQty: decimal.Zero,
		})
	}
	if len(items) == 0 {
		return PurchaseOrderResponse{}, fmt.Errorf("%w: selected response has no quoted lines", apperror.ErrValidation)
	}

	tax, err := numeric.ToDecimalOrZero(req.TaxAmount)
	if err != nil {
		return PurchaseOrderResponse{}, err
	}
	shipping, err := numeric.ToDecimalOrZero(req.ShippingCost)
	if err != nil {
		return PurchaseOrderResponse{}, err
	}
	if err := numeric.RequireNonNegative(tax, "tax_amount"); err != nil {
		return PurchaseOrderResponse{}, err
	}
	if err := numeric.RequireNonNegative(shipping, "shipping_cost"); err != nil {
		return PurchaseOrderResponse{}, err
	}

	var expectedDate *time.Time
	if req.ExpectedDate != "" {
		parsed, parseErr := time.Parse(time.RFC3339, req.ExpectedDate)
		if parseErr != nil {
			return PurchaseOrderResponse{}, fmt.Errorf("%w: invalid expected_date", apperror.ErrValidation)
		}
		expectedDate = &parsed
	}

	po := model.PurchaseOrder{
		VendorID:      response.VendorID,
		RequisitionID: rfq.RequisitionID,
		RFQResponseID: &response.ID,
		Status:        model.POStatusDraft,
		Subtotal:      subtotal,
		TaxAmount:     tax,
		ShippingCost:  shipping,
		TotalAmount:   subtotal.Add(tax).Add(shipping),
		ExpectedDate:  expectedDate,
		DeliveryPlace: req.DeliveryPlace,
		Note:          req.Note,
		CreatedByID:   creator,
		Items:         items,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		number, numErr := generateDocNumber(txCtx, PrefixPurchaseOrder, s.poRepo.CountByPrefix)
		if numErr != nil {
			return fmt.Errorf("failed to generate PO number: %w", numErr)
		}
		po.PONumber = number

		if createErr := s.poRepo.Create(txCtx, &po); createErr != nil {
			return fmt.Errorf("failed to create purchase order: %w", createErr)
		}

		audit := auditEntry(creatorID, model.ActionCreatePO, po.ID.String(), po.PONumber,
			map[string]any{"rfq_number": rfq.RFQNumber, "response_id": response.ID.String()})
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return PurchaseOrderResponse{}, err
	}

	return s.GetPO(ctx, po.ID.String())
}

func (s *purchaseOrderService) GetPO(ctx context.Context, id string) (PurchaseOrderResponse, error) {
	po, err := s.findPO(ctx, id)
	if err != nil {
		return PurchaseOrderResponse{}, err
	}
	return toPurchaseOrderResponse(*po), nil
}

func (s *purchaseOrderService) ListPOs(ctx context.Context, filter PurchaseOrderFilter) ([]PurchaseOrderResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.PurchaseOrderListFilter{
		Status: filter.Status,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	if filter.VendorID != "" {
		id, err := uuid.Parse(filter.VendorID)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: invalid vendor_id", apperror.ErrValidation)
		}
		repoFilter.VendorID = &id
	}

	pos, total, err := s.poRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch purchase orders: %w", err)
	}

	result := make([]PurchaseOrderResponse, 0, len(pos))
	for _, po := range pos {
		result = append(result, toPurchaseOrderResponse(po))
	}
	return result, total, nil
}

// UpdatePO is allowed only while the order is still DRAFT. Amount columns
// are recomputed from the replaced lines in one transaction.
func (s *purchaseOrderService) UpdatePO(ctx context.Context, id string, req UpdatePORequest) (PurchaseOrderResponse, error) {
	po, err := s.findPO(ctx, id)
	if err != nil {
		return PurchaseOrderResponse{}, err
	}
	if po.Status != model.POStatusDraft {
		return PurchaseOrderResponse{}, fmt.Errorf("%w: purchase order is %s, only DRAFT orders are editable",
			apperror.ErrInvalidState, po.Status)
	}

	if req.TaxAmount != nil {
		tax, parseErr := numeric.ToDecimal(*req.TaxAmount)
		if parseErr != nil {
			return PurchaseOrderResponse{}, parseErr
		}
		if err := numeric.RequireNonNegative(tax, "tax_amount"); err != nil {
			return PurchaseOrderResponse{}, err
		}
		po.TaxAmount = tax
	}
	if req.DiscountAmount != nil {
		discount, parseErr := numeric.ToDecimal(*req.DiscountAmount)
		if parseErr != nil {
			return PurchaseOrderResponse{}, parseErr
		}
		if err := numeric.RequireNonNegative(discount, "discount_amount"); err != nil {
			return PurchaseOrderResponse{}, err
		}
		po.DiscountAmount = discount
	}
	if req.ShippingCost != nil {
		shipping, parseErr := numeric.ToDecimal(*req.ShippingCost)
		if parseErr != nil {
			return PurchaseOrderResponse{}, parseErr
		}
		if err := numeric.RequireNonNegative(shipping, "shipping_cost"); err != nil {
			return PurchaseOrderResponse{}, err
		}
		po.ShippingCost = shipping
	}
	if req.ExpectedDate != nil {
		parsed, parseErr := time.Parse(time.RFC3339, *req.ExpectedDate)
		if parseErr != nil {
			return PurchaseOrderResponse{}, fmt.Errorf("%w: invalid expected_date", apperror.ErrValidation)
		}
		po.ExpectedDate = &parsed
	}
	if req.DeliveryPlace != nil {
		po.DeliveryPlace = *req.DeliveryPlace
	}
	if req.Note != nil {
		po.Note = *req.Note
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if req.Items != nil {
			items, subtotal, buildErr := buildPOItems(req.Items)
			if buildErr != nil {
				return buildErr
			}
			for i := range items {
				items[i].PurchaseOrderID = po.ID
			}
			if replaceErr := s.poRepo.ReplaceItems(txCtx, po.ID, items); replaceErr != nil {
				return fmt.Errorf("failed to replace items: %w", replaceErr)
			}
			po.Items = items
			po.Subtotal = subtotal
		}

		po.TotalAmount = po.Subtotal.Add(po.TaxAmount).Add(po.ShippingCost).Sub(po.DiscountAmount)
		if po.TotalAmount.IsNegative() {
			return fmt.Errorf("%w: discount exceeds order total", apperror.ErrValidation)
		}

		if updateErr := s.poRepo.Update(txCtx, po); updateErr != nil {
			return fmt.Errorf("failed to update purchase order: %w", updateErr)
		}
		return nil
	})
	if err != nil {
		return PurchaseOrderResponse{}, err
	}

	return toPurchaseOrderResponse(*po), nil
}

func (s *purchaseOrderService) ApprovePO(ctx context.Context, approverID, id string) (PurchaseOrderResponse, error) {
	approver, err := uuid.Parse(approverID)
	if err != nil {
		return PurchaseOrderResponse{}, fmt.Errorf("invalid approver id: %w", err)
	}
	return s.transition(ctx, approverID, id, model.POStatusApproved, model.ActionApprovePO, func(po *model.PurchaseOrder) {
		now := time.Now()
		po.ApprovedByID = &approver
		po.ApprovedAt = &now
	})
}

func (s *purchaseOrderService) SendPO(ctx context.Context, actorID, id string) (PurchaseOrderResponse, error) {
	return s.transition(ctx, actorID, id, model.POStatusSent, model.ActionSendPO, nil)
}

func (s *purchaseOrderService) CompletePO(ctx context.Context, actorID, id string) (PurchaseOrderResponse, error) {
	return s.transition(ctx, actorID, id, model.POStatusCompleted, model.ActionCompletePO, nil)
}

func (s *purchaseOrderService) CancelPO(ctx context.Context, actorID, id string) (PurchaseOrderResponse, error) {
	return s.transition(ctx, actorID, id, model.POStatusCancelled, model.ActionCancelPO, nil)
}

func (s *purchaseOrderService) transition(ctx context.Context, actorID, id, target, action string, mutate func(*model.PurchaseOrder)) (PurchaseOrderResponse, error) {
	po, err := s.findPO(ctx, id)
	if err != nil {
		return PurchaseOrderResponse{}, err
	}
	if model.PurchaseOrderTerminal(po.Status) {
		return PurchaseOrderResponse{}, fmt.Errorf("%w: purchase order %s is %s", apperror.ErrAlreadyClosed, po.PONumber, po.Status)
	}
	if !model.PurchaseOrderCanTransition(po.Status, target) {
		return PurchaseOrderResponse{}, fmt.Errorf("%w: cannot move purchase order from %s to %s",
			apperror.ErrInvalidState, po.Status, target)
	}

	po.Status = target
	if mutate != nil {
		mutate(po)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.poRepo.Update(txCtx, po); updateErr != nil {
			return fmt.Errorf("failed to update purchase order: %w", updateErr)
		}
		audit := auditEntry(actorID, action, po.ID.String(), po.PONumber, map[string]any{"status": target})
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return PurchaseOrderResponse{}, err
	}

	if target == model.POStatusApproved {
		s.notifier.Notify(ctx, po.CreatedByID, model.NotifyApprovalDecided,
			"Purchase order approved",
			fmt.Sprintf("Purchase order %s has been approved", po.PONumber),
			po.ID.String())
	}

	return toPurchaseOrderResponse(*po), nil
}

// --- Helpers ---

func (s *purchaseOrderService) findPO(ctx context.Context, id string) (*model.PurchaseOrder, error) {
	poID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid purchase order id", apperror.ErrValidation)
	}
	po, err := s.poRepo.FindByID(ctx, poID)
	if err != nil {
		return nil, fmt.Errorf("purchase order not found: %w", apperror.ErrNotFound)
	}
	return po, nil
}

func buildPOItems(reqs []POItemRequest) ([]model.PurchaseOrderItem, decimal.Decimal, error) {
	items := make([]model.PurchaseOrderItem, 0, len(reqs))
	subtotal := decimal.Zero
	for _, item := range reqs {
		qty, err := numeric.ToDecimal(item.Quantity)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if err := numeric.RequirePositive(qty, "quantity"); err != nil {
			return nil, decimal.Zero, err
		}
		price, err := numeric.ToDecimal(item.UnitPrice)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if err := numeric.RequireNonNegative(price, "unit_price"); err != nil {
			return nil, decimal.Zero, err
		}

		lineTotal := qty.Mul(price)
		subtotal = subtotal.Add(lineTotal)
		items = append(items, model.PurchaseOrderItem{
			Description: item.Description,
			Quantity:    qty,
			Unit:        item.Unit,
			UnitPrice:   price,
			TotalPrice:  lineTotal,
			ReceivedQty: decimal.Zero,
		})
	}
	return items, subtotal, nil
}

func toPurchaseOrderResponse(po model.PurchaseOrder) PurchaseOrderResponse {
	items := make([]POItemResponse, 0, len(po.Items))
	for _, item := range po.Items {
		items = append(items, POItemResponse{
			ID:           item.ID.String(),
			Description:  item.Description,
			Quantity:     item.Quantity.StringFixed(4),
			Unit:         item.Unit,
			UnitPrice:    item.UnitPrice.StringFixed(4),
			TotalPrice:   item.TotalPrice.StringFixed(4),
			ReceivedQty:  item.ReceivedQty.StringFixed(4),
			RemainingQty: item.RemainingQty().StringFixed(4),
		})
	}

	resp := PurchaseOrderResponse{
		ID:             po.ID.String(),
		PONumber:       po.PONumber,
		VendorID:       po.VendorID.String(),
		Status:         po.Status,
		Subtotal:       po.Subtotal.StringFixed(4),
		TaxAmount:      po.TaxAmount.StringFixed(4),
		DiscountAmount: po.DiscountAmount.StringFixed(4),
		ShippingCost:   po.ShippingCost.StringFixed(4),
		TotalAmount:    po.TotalAmount.StringFixed(4),
		DeliveryPlace:  po.DeliveryPlace,
		Note:           po.Note,
		Items:          items,
		CreatedAt:      po.CreatedAt.Format(time.RFC3339),
	}
	if po.Vendor != nil {
		resp.VendorName = po.Vendor.Name
	}
	if po.RequisitionID != nil {
		id := po.RequisitionID.String()
		resp.RequisitionID = &id
	}
	if po.RFQResponseID != nil {
		id := po.RFQResponseID.String()
		resp.RFQResponseID = &id
	}
	if po.ExpectedDate != nil {
		expected := po.ExpectedDate.Format(time.RFC3339)
		resp.ExpectedDate = &expected
	}
	return resp
}
