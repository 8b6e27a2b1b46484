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

type GRNItemRequest struct {
	POItemID    string `json:"po_item_id" binding:"required"`
	ReceivedQty string `json:"received_qty" binding:"required"`
	Condition   string `json:"condition"`
	Note        string `json:"note"`
}

type CreateGRNRequest struct {
	PurchaseOrderID string           `json:"purchase_order_id" binding:"required"`
	DeliveryNote    string           `json:"delivery_note"`
	Note            string           `json:"note"`
	Items           []GRNItemRequest `json:"items" binding:"required,min=1,dive"`
}

type UpdateGRNRequest struct {
	DeliveryNote *string          `json:"delivery_note"`
	Note         *string          `json:"note"`
	Items        []GRNItemRequest `json:"items" binding:"omitempty,min=1,dive"`
}

type InspectionItemRequest struct {
	ItemID      string `json:"item_id" binding:"required"`
	AcceptedQty string `json:"accepted_qty" binding:"required"`
	RejectedQty string `json:"rejected_qty" binding:"required"`
	Condition   string `json:"condition"`
	Note        string `json:"note"`
}

type CompleteInspectionRequest struct {
	Items []InspectionItemRequest `json:"items" binding:"required,min=1,dive"`
	Note  string                  `json:"note"`
}

type GoodsReceiptFilter struct {
	Status          string
	PurchaseOrderID string
	Page            int
	Limit           int
}

type GRNItemResponse struct {
	ID          string `json:"id"`
	POItemID    string `json:"po_item_id"`
	Description string `json:"description"`
	OrderedQty  string `json:"ordered_qty"`
	ReceivedQty string `json:"received_qty"`
	AcceptedQty string `json:"accepted_qty"`
	RejectedQty string `json:"rejected_qty"`
	Unit        string `json:"unit"`
	Condition   string `json:"condition"`
	Note        string `json:"note"`
}

type GoodsReceiptResponse struct {
	ID              string            `json:"id"`
	GRNNumber       string            `json:"grn_number"`
	PurchaseOrderID string            `json:"purchase_order_id"`
	Status          string            `json:"status"`
	ReceivedByID    string            `json:"received_by_id"`
	ReceivedAt      string            `json:"received_at"`
	InspectedByID   *string           `json:"inspected_by_id"`
	InspectedAt     *string           `json:"inspected_at"`
	DeliveryNote    string            `json:"delivery_note"`
	Note            string            `json:"note"`
	Items           []GRNItemResponse `json:"items"`
	CreatedAt       string            `json:"created_at"`
}

// --- Interface ---

type GoodsReceiptService interface {
	CreateGRN(ctx context.Context, receiverID string, req CreateGRNRequest) (GoodsReceiptResponse, error)
	GetGRN(ctx context.Context, id string) (GoodsReceiptResponse, error)
	ListGRNs(ctx context.Context, filter GoodsReceiptFilter) ([]GoodsReceiptResponse, int64, error)
	UpdateGRN(ctx context.Context, actorID, id string, req UpdateGRNRequest) (GoodsReceiptResponse, error)
	StartInspection(ctx context.Context, inspectorID, id string) (GoodsReceiptResponse, error)
	CompleteInspection(ctx context.Context, inspectorID, id string, req CompleteInspectionRequest) (GoodsReceiptResponse, error)
	RejectGRN(ctx context.Context, inspectorID, id string, note string) (GoodsReceiptResponse, error)
}

type goodsReceiptService struct {
	grnRepo   repository.GoodsReceiptRepository
	poRepo    repository.PurchaseOrderRepository
	auditRepo repository.AuditRepository
	notifier  Notifier
	txManager repository.TransactionManager
}

func NewGoodsReceiptService(
	grnRepo repository.GoodsReceiptRepository,
	poRepo repository.PurchaseOrderRepository,
	auditRepo repository.AuditRepository,
	notifier Notifier,
	txManager repository.TransactionManager,
) GoodsReceiptService {
	return &goodsReceiptService{
		grnRepo:   grnRepo,
		poRepo:    poRepo,
		auditRepo: auditRepo,
		notifier:  notifier,
		txManager: txManager,
	}
}

// --- Implementation ---

// CreateGRN posts a delivery against a SENT or PARTIALLY_RECEIVED purchase
// order. Every line is validated against the live remaining quantity of its
// PO line and the PO items' ReceivedQty totals are incremented in the same
// transaction, so over-receiving is impossible even under concurrent posts.
func (s *goodsReceiptService) CreateGRN(ctx context.Context, receiverID string, req CreateGRNRequest) (GoodsReceiptResponse, error) {
	receiver, err := uuid.Parse(receiverID)
	if err != nil {
		return GoodsReceiptResponse{}, fmt.Errorf("invalid receiver id: %w", err)
	}
	poID, err := uuid.Parse(req.PurchaseOrderID)
	if err != nil {
		return GoodsReceiptResponse{}, fmt.Errorf("%w: invalid purchase_order_id", apperror.ErrValidation)
	}

	grn := model.GoodsReceipt{
		PurchaseOrderID: poID,
		Status:          model.GRNStatusPendingInspection,
		ReceivedByID:    receiver,
		ReceivedAt:      time.Now(),
		DeliveryNote:    req.DeliveryNote,
		Note:            req.Note,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		po, findErr := s.poRepo.FindByID(txCtx, poID)
		if findErr != nil {
			return fmt.Errorf("purchase order not found: %w", apperror.ErrNotFound)
		}
		if po.Status != model.POStatusSent && po.Status != model.POStatusPartiallyReceived {
			return fmt.Errorf("%w: purchase order %s is %s, deliveries are accepted only for SENT or PARTIALLY_RECEIVED orders",
				apperror.ErrInvalidState, po.PONumber, po.Status)
		}

		items, applyErr := s.applyReceivedQuantities(txCtx, po, req.Items)
		if applyErr != nil {
			return applyErr
		}
		grn.Items = items

		number, numErr := generateDocNumber(txCtx, PrefixGoodsReceipt, s.grnRepo.CountByPrefix)
		if numErr != nil {
			return fmt.Errorf("failed to generate GRN number: %w", numErr)
		}
		grn.GRNNumber = number

		if createErr := s.grnRepo.Create(txCtx, &grn); createErr != nil {
			return fmt.Errorf("failed to create goods receipt: %w", createErr)
		}

		if statusErr := s.recomputePOStatus(txCtx, po); statusErr != nil {
			return statusErr
		}

		audit := auditEntry(receiverID, model.ActionCreateGRN, grn.ID.String(), grn.GRNNumber,
			map[string]any{"po_number": po.PONumber})
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}

		s.notifier.Notify(ctx, po.CreatedByID, model.NotifyGoodsReceived,
			"Goods received",
			fmt.Sprintf("Delivery %s posted against purchase order %s", grn.GRNNumber, po.PONumber),
			grn.ID.String())
		return nil
	})
	if err != nil {
		return GoodsReceiptResponse{}, err
	}

	return toGoodsReceiptResponse(grn), nil
}

func (s *goodsReceiptService) GetGRN(ctx context.Context, id string) (GoodsReceiptResponse, error) {
	grn, err := s.findGRN(ctx, id)
	if err != nil {
		return GoodsReceiptResponse{}, err
	}
	return toGoodsReceiptResponse(*grn), nil
}

func (s *goodsReceiptService) ListGRNs(ctx context.Context, filter GoodsReceiptFilter) ([]GoodsReceiptResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.GoodsReceiptListFilter{
		Status: filter.Status,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	if filter.PurchaseOrderID != "" {
		id, err := uuid.Parse(filter.PurchaseOrderID)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: invalid purchase_order_id", apperror.ErrValidation)
		}
		repoFilter.PurchaseOrderID = &id
	}

	grns, total, err := s.grnRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch goods receipts: %w", err)
	}

	result := make([]GoodsReceiptResponse, 0, len(grns))
	for _, grn := range grns {
		result = append(result, toGoodsReceiptResponse(grn))
	}
	return result, total, nil
}

// UpdateGRN replaces the receipt's lines while inspection has not been
// finalized, so both PENDING_INSPECTION and INSPECTING receipts are
// editable. The old lines' quantities are backed out of the PO
// items first, then the new lines are validated and applied, so the PO's
// ReceivedQty totals stay consistent whichever way the edit moves.
func (s *goodsReceiptService) UpdateGRN(ctx context.Context, actorID, id string, req UpdateGRNRequest) (GoodsReceiptResponse, error) {
	grn, err := s.findGRN(ctx, id)
	if err != nil {
		return GoodsReceiptResponse{}, err
	}
	if model.GoodsReceiptFinalized(grn.Status) {
		return GoodsReceiptResponse{}, fmt.Errorf("%w: goods receipt is %s and can no longer be edited",
			apperror.ErrInvalidState, grn.Status)
	}

	if req.DeliveryNote != nil {
		grn.DeliveryNote = *req.DeliveryNote
	}
	if req.Note != nil {
		grn.Note = *req.Note
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		po, findErr := s.poRepo.FindByID(txCtx, grn.PurchaseOrderID)
		if findErr != nil {
			return fmt.Errorf("purchase order not found: %w", apperror.ErrNotFound)
		}

		if req.Items != nil {
			// Undo the old lines before validating the new ones.
			for _, old := range grn.Items {
				poItem, itemErr := s.poRepo.FindItemByID(txCtx, old.POItemID)
				if itemErr != nil {
					return fmt.Errorf("purchase order item not found: %w", apperror.ErrNotFound)
				}
				poItem.ReceivedQty = poItem.ReceivedQty.Sub(old.ReceivedQty)
				if poItem.ReceivedQty.IsNegative() {
					return fmt.Errorf("%w: received quantity for %q would become negative",
						apperror.ErrQuantityInvariant, poItem.Description)
				}
				if updateErr := s.poRepo.UpdateItem(txCtx, poItem); updateErr != nil {
					return fmt.Errorf("failed to update purchase order item: %w", updateErr)
				}
			}

			items, applyErr := s.applyReceivedQuantities(txCtx, po, req.Items)
			if applyErr != nil {
				return applyErr
			}
			for i := range items {
				items[i].GoodsReceiptID = grn.ID
			}
			if replaceErr := s.grnRepo.ReplaceItems(txCtx, grn.ID, items); replaceErr != nil {
				return fmt.Errorf("failed to replace items: %w", replaceErr)
			}
			grn.Items = items
		}

		if updateErr := s.grnRepo.Update(txCtx, grn); updateErr != nil {
			return fmt.Errorf("failed to update goods receipt: %w", updateErr)
		}

		if statusErr := s.recomputePOStatus(txCtx, po); statusErr != nil {
			return statusErr
		}

		audit := auditEntry(actorID, model.ActionUpdateGRN, grn.ID.String(), grn.GRNNumber, nil)
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return GoodsReceiptResponse{}, err
	}

	return toGoodsReceiptResponse(*grn), nil
}

func (s *goodsReceiptService) StartInspection(ctx context.Context, inspectorID, id string) (GoodsReceiptResponse, error) {
	inspector, err := uuid.Parse(inspectorID)
	if err != nil {
		return GoodsReceiptResponse{}, fmt.Errorf("invalid inspector id: %w", err)
	}
	grn, err := s.findGRN(ctx, id)
	if err != nil {
		return GoodsReceiptResponse{}, err
	}
	if !model.GoodsReceiptCanTransition(grn.Status, model.GRNStatusInspecting) {
		return GoodsReceiptResponse{}, fmt.Errorf("%w: goods receipt is %s", apperror.ErrInvalidState, grn.Status)
	}

	grn.Status = model.GRNStatusInspecting
	grn.InspectedByID = &inspector

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.grnRepo.Update(txCtx, grn); updateErr != nil {
			return fmt.Errorf("failed to update goods receipt: %w", updateErr)
		}
		audit := auditEntry(inspectorID, model.ActionInspectGRN, grn.ID.String(), grn.GRNNumber, nil)
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return GoodsReceiptResponse{}, err
	}

	return toGoodsReceiptResponse(*grn), nil
}

// CompleteInspection finalizes the receipt. Each line must satisfy
// AcceptedQty + RejectedQty == ReceivedQty; the receipt lands on ACCEPTED
// when nothing was rejected, REJECTED when nothing was accepted, and
// PARTIALLY_ACCEPTED otherwise. A fully rejected receipt releases its
// quantities back to the PO lines, so a PO line's ReceivedQty tracks the
// deliveries still standing rather than the raw sum of every receipt ever
// posted against it.
func (s *goodsReceiptService) CompleteInspection(ctx context.Context, inspectorID, id string, req CompleteInspectionRequest) (GoodsReceiptResponse, error) {
	inspector, err := uuid.Parse(inspectorID)
	if err != nil {
		return GoodsReceiptResponse{}, fmt.Errorf("invalid inspector id: %w", err)
	}
	grn, err := s.findGRN(ctx, id)
	if err != nil {
		return GoodsReceiptResponse{}, err
	}
	if grn.Status != model.GRNStatusInspecting {
		return GoodsReceiptResponse{}, fmt.Errorf("%w: goods receipt is %s, inspection must be started first",
			apperror.ErrInvalidState, grn.Status)
	}

	decisions := make(map[uuid.UUID]InspectionItemRequest, len(req.Items))
	for _, d := range req.Items {
		itemID, parseErr := uuid.Parse(d.ItemID)
		if parseErr != nil {
			return GoodsReceiptResponse{}, fmt.Errorf("%w: invalid item_id", apperror.ErrValidation)
		}
		decisions[itemID] = d
	}

	totalAccepted := decimal.Zero
	totalRejected := decimal.Zero
	for i := range grn.Items {
		line := &grn.Items[i]
		decision, ok := decisions[line.ID]
		if !ok {
			return GoodsReceiptResponse{}, fmt.Errorf("%w: no inspection decision for line %q",
				apperror.ErrValidation, line.Description)
		}

		accepted, parseErr := numeric.ToDecimal(decision.AcceptedQty)
		if parseErr != nil {
			return GoodsReceiptResponse{}, parseErr
		}
		rejected, parseErr := numeric.ToDecimal(decision.RejectedQty)
		if parseErr != nil {
			return GoodsReceiptResponse{}, parseErr
		}
		if err := numeric.RequireNonNegative(accepted, "accepted_qty"); err != nil {
			return GoodsReceiptResponse{}, err
		}
		if err := numeric.RequireNonNegative(rejected, "rejected_qty"); err != nil {
			return GoodsReceiptResponse{}, err
		}
		if !accepted.Add(rejected).Equal(line.ReceivedQty) {
			return GoodsReceiptResponse{}, fmt.Errorf("%w: accepted %s + rejected %s must equal received %s for %q",
				apperror.ErrQuantityInvariant, accepted, rejected, line.ReceivedQty, line.Description)
		}

		line.AcceptedQty = accepted
		line.RejectedQty = rejected
		if decision.Condition != "" {
			line.Condition = decision.Condition
		}
		if decision.Note != "" {
			line.Note = decision.Note
		}
		totalAccepted = totalAccepted.Add(accepted)
		totalRejected = totalRejected.Add(rejected)
	}

	switch {
	case totalRejected.IsZero():
		grn.Status = model.GRNStatusAccepted
	case totalAccepted.IsZero():
		grn.Status = model.GRNStatusRejected
	default:
		grn.Status = model.GRNStatusPartiallyAccepted
	}

	now := time.Now()
	grn.InspectedByID = &inspector
	grn.InspectedAt = &now
	if req.Note != "" {
		grn.Note = req.Note
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for i := range grn.Items {
			if updateErr := s.grnRepo.UpdateItem(txCtx, &grn.Items[i]); updateErr != nil {
				return fmt.Errorf("failed to update goods receipt item: %w", updateErr)
			}
		}
		if updateErr := s.grnRepo.Update(txCtx, grn); updateErr != nil {
			return fmt.Errorf("failed to update goods receipt: %w", updateErr)
		}

		// A fully rejected delivery never enters stock, so its quantities
		// are released back to the PO lines for re-delivery.
		if grn.Status == model.GRNStatusRejected {
			po, findErr := s.poRepo.FindByID(txCtx, grn.PurchaseOrderID)
			if findErr != nil {
				return fmt.Errorf("purchase order not found: %w", apperror.ErrNotFound)
			}
			for _, line := range grn.Items {
				poItem, itemErr := s.poRepo.FindItemByID(txCtx, line.POItemID)
				if itemErr != nil {
					return fmt.Errorf("purchase order item not found: %w", apperror.ErrNotFound)
				}
				poItem.ReceivedQty = poItem.ReceivedQty.Sub(line.ReceivedQty)
				if poItem.ReceivedQty.IsNegative() {
					return fmt.Errorf("%w: received quantity for %q would become negative",
						apperror.ErrQuantityInvariant, poItem.Description)
				}
				if updateErr := s.poRepo.UpdateItem(txCtx, poItem); updateErr != nil {
					return fmt.Errorf("failed to update purchase order item: %w", updateErr)
				}
			}
			if statusErr := s.recomputePOStatus(txCtx, po); statusErr != nil {
				return statusErr
			}
		}
		audit := auditEntry(inspectorID, model.ActionAcceptGRN, grn.ID.String(), grn.GRNNumber,
			map[string]any{"status": grn.Status, "accepted": totalAccepted.StringFixed(4), "rejected": totalRejected.StringFixed(4)})
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return GoodsReceiptResponse{}, err
	}

	return toGoodsReceiptResponse(*grn), nil
}

// RejectGRN refuses the whole delivery. The received quantities are backed
// out of the PO lines since the goods never enter stock, which leaves each
// PO line's ReceivedQty reflecting standing deliveries only, not the raw
// sum of every receipt ever posted.
func (s *goodsReceiptService) RejectGRN(ctx context.Context, inspectorID, id string, note string) (GoodsReceiptResponse, error) {
	inspector, err := uuid.Parse(inspectorID)
	if err != nil {
		return GoodsReceiptResponse{}, fmt.Errorf("invalid inspector id: %w", err)
	}
	grn, err := s.findGRN(ctx, id)
	if err != nil {
		return GoodsReceiptResponse{}, err
	}
	if !model.GoodsReceiptCanTransition(grn.Status, model.GRNStatusRejected) {
		return GoodsReceiptResponse{}, fmt.Errorf("%w: goods receipt is %s", apperror.ErrInvalidState, grn.Status)
	}

	now := time.Now()
	grn.Status = model.GRNStatusRejected
	grn.InspectedByID = &inspector
	grn.InspectedAt = &now
	if note != "" {
		grn.Note = note
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		po, findErr := s.poRepo.FindByID(txCtx, grn.PurchaseOrderID)
		if findErr != nil {
			return fmt.Errorf("purchase order not found: %w", apperror.ErrNotFound)
		}

		for i := range grn.Items {
			line := &grn.Items[i]
			poItem, itemErr := s.poRepo.FindItemByID(txCtx, line.POItemID)
			if itemErr != nil {
				return fmt.Errorf("purchase order item not found: %w", apperror.ErrNotFound)
			}
			poItem.ReceivedQty = poItem.ReceivedQty.Sub(line.ReceivedQty)
			if poItem.ReceivedQty.IsNegative() {
				return fmt.Errorf("%w: received quantity for %q would become negative",
					apperror.ErrQuantityInvariant, poItem.Description)
			}
			if updateErr := s.poRepo.UpdateItem(txCtx, poItem); updateErr != nil {
				return fmt.Errorf("failed to update purchase order item: %w", updateErr)
			}

			line.AcceptedQty = decimal.Zero
			line.RejectedQty = line.ReceivedQty
			if updateErr := s.grnRepo.UpdateItem(txCtx, line); updateErr != nil {
				return fmt.Errorf("failed to update goods receipt item: %w", updateErr)
			}
		}

		if updateErr := s.grnRepo.Update(txCtx, grn); updateErr != nil {
			return fmt.Errorf("failed to update goods receipt: %w", updateErr)
		}

		if statusErr := s.recomputePOStatus(txCtx, po); statusErr != nil {
			return statusErr
		}

		audit := auditEntry(inspectorID, model.ActionRejectGRN, grn.ID.String(), grn.GRNNumber,
			map[string]any{"note": note})
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return GoodsReceiptResponse{}, err
	}

	return toGoodsReceiptResponse(*grn), nil
}

// --- Helpers ---

func (s *goodsReceiptService) findGRN(ctx context.Context, id string) (*model.GoodsReceipt, error) {
	grnID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid goods receipt id", apperror.ErrValidation)
	}
	grn, err := s.grnRepo.FindByID(ctx, grnID)
	if err != nil {
		return nil, fmt.Errorf("goods receipt not found: %w", apperror.ErrNotFound)
	}
	return grn, nil
}

// applyReceivedQuantities validates each requested line against the live PO
// line it targets and increments that line's ReceivedQty. Must run inside
// the caller's transaction. The PO line is re-read from the database rather
// than taken from the preloaded po.Items so the remaining-quantity check
// sees any adjustment made earlier in the same transaction.
func (s *goodsReceiptService) applyReceivedQuantities(ctx context.Context, po *model.PurchaseOrder, reqs []GRNItemRequest) ([]model.GoodsReceiptItem, error) {
	poItemIDs := make(map[uuid.UUID]bool, len(po.Items))
	for _, item := range po.Items {
		poItemIDs[item.ID] = true
	}

	seen := make(map[uuid.UUID]bool, len(reqs))
	items := make([]model.GoodsReceiptItem, 0, len(reqs))
	for _, line := range reqs {
		poItemID, parseErr := uuid.Parse(line.POItemID)
		if parseErr != nil {
			return nil, fmt.Errorf("%w: invalid po_item_id", apperror.ErrValidation)
		}
		if !poItemIDs[poItemID] {
			return nil, fmt.Errorf("%w: item does not belong to purchase order %s", apperror.ErrValidation, po.PONumber)
		}
		if seen[poItemID] {
			return nil, fmt.Errorf("%w: duplicate line for the same purchase order item", apperror.ErrValidation)
		}
		seen[poItemID] = true

		qty, parseErr := numeric.ToDecimal(line.ReceivedQty)
		if parseErr != nil {
			return nil, parseErr
		}
		if err := numeric.RequirePositive(qty, "received_qty"); err != nil {
			return nil, err
		}

		poItem, itemErr := s.poRepo.FindItemByID(ctx, poItemID)
		if itemErr != nil {
			return nil, fmt.Errorf("purchase order item not found: %w", apperror.ErrNotFound)
		}
		if qty.GreaterThan(poItem.RemainingQty()) {
			return nil, fmt.Errorf("%w: receiving %s of %q exceeds remaining quantity %s",
				apperror.ErrQuantityInvariant, qty, poItem.Description, poItem.RemainingQty())
		}

		poItem.ReceivedQty = poItem.ReceivedQty.Add(qty)
		if updateErr := s.poRepo.UpdateItem(ctx, poItem); updateErr != nil {
			return nil, fmt.Errorf("failed to update purchase order item: %w", updateErr)
		}

		condition := line.Condition
		if condition == "" {
			condition = model.ItemConditionGood
		}
		items = append(items, model.GoodsReceiptItem{
			POItemID:    poItemID,
			Description: poItem.Description,
			OrderedQty:  poItem.Quantity,
			ReceivedQty: qty,
			Unit:        poItem.Unit,
			Condition:   condition,
			Note:        line.Note,
		})
	}
	return items, nil
}

// recomputePOStatus derives the PO's receiving status from its lines'
// current ReceivedQty totals. Re-reads each line so the decision reflects
// the adjustments already made in this transaction.
func (s *goodsReceiptService) recomputePOStatus(ctx context.Context, po *model.PurchaseOrder) error {
	allReceived := true
	anyReceived := false
	for _, item := range po.Items {
		live, err := s.poRepo.FindItemByID(ctx, item.ID)
		if err != nil {
			return fmt.Errorf("purchase order item not found: %w", apperror.ErrNotFound)
		}
		if live.ReceivedQty.GreaterThan(decimal.Zero) {
			anyReceived = true
		}
		if live.ReceivedQty.LessThan(live.Quantity) {
			allReceived = false
		}
	}

	var next string
	switch {
	case allReceived:
		next = model.POStatusReceived
	case anyReceived:
		next = model.POStatusPartiallyReceived
	default:
		next = model.POStatusSent
	}

	if next == po.Status {
		return nil
	}
	po.Status = next
	if err := s.poRepo.Update(ctx, po); err != nil {
		return fmt.Errorf("failed to update purchase order status: %w", err)
	}
	return nil
}

func toGoodsReceiptResponse(grn model.GoodsReceipt) GoodsReceiptResponse {
	items := make([]GRNItemResponse, 0, len(grn.Items))
	for _, item := range grn.Items {
		items = append(items, GRNItemResponse{
			ID:          item.ID.String(),
			POItemID:    item.POItemID.String(),
			Description: item.Description,
			OrderedQty:  item.OrderedQty.StringFixed(4),
			ReceivedQty: item.ReceivedQty.StringFixed(4),
			AcceptedQty: item.AcceptedQty.StringFixed(4),
			RejectedQty: item.RejectedQty.StringFixed(4),
			Unit:        item.Unit,
			Condition:   item.Condition,
			Note:        item.Note,
		})
	}

	resp := GoodsReceiptResponse{
		ID:              grn.ID.String(),
		GRNNumber:       grn.GRNNumber,
		PurchaseOrderID: grn.PurchaseOrderID.String(),
		Status:          grn.Status,
		ReceivedByID:    grn.ReceivedByID.String(),
		ReceivedAt:      grn.ReceivedAt.Format(time.RFC3339),
		DeliveryNote:    grn.DeliveryNote,
		Note:            grn.Note,
		Items:           items,
		CreatedAt:       grn.CreatedAt.Format(time.RFC3339),
	}
	if grn.InspectedByID != nil {
		inspector := grn.InspectedByID.String()
		resp.InspectedByID = &inspector
	}
	if grn.InspectedAt != nil {
		inspected := grn.InspectedAt.Format(time.RFC3339)
		resp.InspectedAt = &inspected
	}
	return resp
}
