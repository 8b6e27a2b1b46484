package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"procurement-backend/internal/model"
	"procurement-backend/internal/repository"
	"procurement-backend/pkg/apperror"
	"procurement-backend/pkg/numeric"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// matchGRNWindow caps how many finalized receipts the matcher aggregates,
// newest first.
const matchGRNWindow = 25

// --- DTOs ---

type InvoiceItemRequest struct {
	POItemID    string `json:"po_item_id"`
	Description string `json:"description" binding:"required"`
	Quantity    string `json:"quantity" binding:"required"`
	Unit        string `json:"unit"`
	UnitPrice   string `json:"unit_price" binding:"required"`
}

type CreateInvoiceRequest struct {
	InvoiceNumber   string               `json:"invoice_number" binding:"required"`
	VendorID        string               `json:"vendor_id" binding:"required"`
	PurchaseOrderID string               `json:"purchase_order_id"`
	TaxAmount       string               `json:"tax_amount"`
	InvoiceDate     string               `json:"invoice_date" binding:"required"` // RFC3339
	DueDate         string               `json:"due_date" binding:"required"`     // RFC3339
	Note            string               `json:"note"`
	Items           []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
}

type ThreeWayMatchRequest struct {
	// TolerancePercent is the allowed absolute price variance as a percent
	// of the PO total. Zero means exact-price matching.
	TolerancePercent string `json:"tolerance_percent"`
}

type RecordPaymentRequest struct {
	Amount    string `json:"amount" binding:"required"`
	Method    string `json:"method"`
	Reference string `json:"reference"`
	Note      string `json:"note"`
}

type VendorInvoiceFilter struct {
	MatchStatus     string
	PaymentStatus   string
	VendorID        string
	PurchaseOrderID string
	Page            int
	Limit           int
}

type InvoiceItemResponse struct {
	ID          string  `json:"id"`
	POItemID    *string `json:"po_item_id"`
	Description string  `json:"description"`
	Quantity    string  `json:"quantity"`
	Unit        string  `json:"unit"`
	UnitPrice   string  `json:"unit_price"`
	TotalPrice  string  `json:"total_price"`
}

type InvoicePaymentResponse struct {
	ID        string `json:"id"`
	Amount    string `json:"amount"`
	Method    string `json:"method"`
	Reference string `json:"reference"`
	PaidByID  string `json:"paid_by_id"`
	PaidAt    string `json:"paid_at"`
	Note      string `json:"note"`
}

type VendorInvoiceResponse struct {
	ID                 string                   `json:"id"`
	InvoiceNumber      string                   `json:"invoice_number"`
	VendorID           string                   `json:"vendor_id"`
	VendorName         string                   `json:"vendor_name,omitempty"`
	PurchaseOrderID    *string                  `json:"purchase_order_id"`
	Subtotal           string                   `json:"subtotal"`
	TaxAmount          string                   `json:"tax_amount"`
	TotalAmount        string                   `json:"total_amount"`
	InvoiceDate        string                   `json:"invoice_date"`
	DueDate            string                   `json:"due_date"`
	MatchStatus        string                   `json:"match_status"`
	PriceVariance      string                   `json:"price_variance"`
	QuantityVariance   string                   `json:"quantity_variance"`
	ApprovedForPayment bool                     `json:"approved_for_payment"`
	PaidAmount         string                   `json:"paid_amount"`
	PaymentStatus      string                   `json:"payment_status"`
	Note               string                   `json:"note"`
	Items              []InvoiceItemResponse    `json:"items"`
	Payments           []InvoicePaymentResponse `json:"payments,omitempty"`
	CreatedAt          string                   `json:"created_at"`
}

type MatchResult struct {
	MatchStatus      string `json:"match_status"`
	PriceVariance    string `json:"price_variance"`
	QuantityVariance string `json:"quantity_variance"`
	PriceVariancePct string `json:"price_variance_pct"`
	AutoApproved     bool   `json:"auto_approved"`
}

// --- Interface ---

type VendorInvoiceService interface {
	CreateInvoice(ctx context.Context, creatorID string, req CreateInvoiceRequest) (VendorInvoiceResponse, error)
	GetInvoice(ctx context.Context, id string) (VendorInvoiceResponse, error)
	ListInvoices(ctx context.Context, filter VendorInvoiceFilter) ([]VendorInvoiceResponse, int64, error)
	PerformThreeWayMatch(ctx context.Context, actorID, id string, req ThreeWayMatchRequest) (MatchResult, error)
	ApproveForPayment(ctx context.Context, approverID, id string) (VendorInvoiceResponse, error)
	DisputeInvoice(ctx context.Context, actorID, id string, reason string) (VendorInvoiceResponse, error)
	RecordPayment(ctx context.Context, payerID, id string, req RecordPaymentRequest) (VendorInvoiceResponse, error)
}

type vendorInvoiceService struct {
	invoiceRepo repository.VendorInvoiceRepository
	poRepo      repository.PurchaseOrderRepository
	grnRepo     repository.GoodsReceiptRepository
	vendorRepo  repository.VendorRepository
	auditRepo   repository.AuditRepository
	notifier    Notifier
	txManager   repository.TransactionManager
}

func NewVendorInvoiceService(
	invoiceRepo repository.VendorInvoiceRepository,
	poRepo repository.PurchaseOrderRepository,
	grnRepo repository.GoodsReceiptRepository,
	vendorRepo repository.VendorRepository,
	auditRepo repository.AuditRepository,
	notifier Notifier,
	txManager repository.TransactionManager,
) VendorInvoiceService {
	return &vendorInvoiceService{
		invoiceRepo: invoiceRepo,
		poRepo:      poRepo,
		grnRepo:     grnRepo,
		vendorRepo:  vendorRepo,
		auditRepo:   auditRepo,
		notifier:    notifier,
		txManager:   txManager,
	}
}

// --- Implementation ---

func (s *vendorInvoiceService) CreateInvoice(ctx context.Context, creatorID string, req CreateInvoiceRequest) (VendorInvoiceResponse, error) {
	vendorID, err := uuid.Parse(req.VendorID)
	if err != nil {
		return VendorInvoiceResponse{}, fmt.Errorf("%w: invalid vendor_id", apperror.ErrValidation)
	}
	if _, err := s.vendorRepo.FindByID(ctx, vendorID); err != nil {
		return VendorInvoiceResponse{}, fmt.Errorf("vendor not found: %w", apperror.ErrNotFound)
	}

	var poID *uuid.UUID
	if req.PurchaseOrderID != "" {
		parsed, parseErr := uuid.Parse(req.PurchaseOrderID)
		if parseErr != nil {
			return VendorInvoiceResponse{}, fmt.Errorf("%w: invalid purchase_order_id", apperror.ErrValidation)
		}
		po, findErr := s.poRepo.FindByID(ctx, parsed)
		if findErr != nil {
			return VendorInvoiceResponse{}, fmt.Errorf("purchase order not found: %w", apperror.ErrNotFound)
		}
		if po.VendorID != vendorID {
			return VendorInvoiceResponse{}, fmt.Errorf("%w: purchase order belongs to a different vendor", apperror.ErrValidation)
		}
		poID = &parsed
	}

	invoiceDate, err := time.Parse(time.RFC3339, req.InvoiceDate)
	if err != nil {
		return VendorInvoiceResponse{}, fmt.Errorf("%w: invalid invoice_date", apperror.ErrValidation)
	}
	dueDate, err := time.Parse(time.RFC3339, req.DueDate)
	if err != nil {
		return VendorInvoiceResponse{}, fmt.Errorf("%w: invalid due_date", apperror.ErrValidation)
	}
	if dueDate.Before(invoiceDate) {
		return VendorInvoiceResponse{}, fmt.Errorf("%w: due_date precedes invoice_date", apperror.ErrValidation)
	}

	items := make([]model.VendorInvoiceItem, 0, len(req.Items))
	subtotal := decimal.Zero
	for _, line := range req.Items {
		qty, parseErr := numeric.ToDecimal(line.Quantity)
		if parseErr != nil {
			return VendorInvoiceResponse{}, parseErr
		}
		if err := numeric.RequirePositive(qty, "quantity"); err != nil {
			return VendorInvoiceResponse{}, err
		}
		price, parseErr := numeric.ToDecimal(line.UnitPrice)
		if parseErr != nil {
			return VendorInvoiceResponse{}, parseErr
		}
		if err := numeric.RequireNonNegative(price, "unit_price"); err != nil {
			return VendorInvoiceResponse{}, err
		}

		var poItemID *uuid.UUID
		if line.POItemID != "" {
			parsed, parseErr := uuid.Parse(line.POItemID)
			if parseErr != nil {
				return VendorInvoiceResponse{}, fmt.Errorf("%w: invalid po_item_id", apperror.ErrValidation)
			}
			poItemID = &parsed
		}

		lineTotal := qty.Mul(price)
		subtotal = subtotal.Add(lineTotal)
		items = append(items, model.VendorInvoiceItem{
			POItemID:    poItemID,
			Description: line.Description,
			Quantity:    qty,
			Unit:        line.Unit,
			UnitPrice:   price,
			TotalPrice:  lineTotal,
		})
	}

	tax, err := numeric.ToDecimalOrZero(req.TaxAmount)
	if err != nil {
		return VendorInvoiceResponse{}, err
	}
	if err := numeric.RequireNonNegative(tax, "tax_amount"); err != nil {
		return VendorInvoiceResponse{}, err
	}

	invoice := model.VendorInvoice{
		InvoiceNumber:   req.InvoiceNumber,
		VendorID:        vendorID,
		PurchaseOrderID: poID,
		Subtotal:        subtotal,
		TaxAmount:       tax,
		TotalAmount:     subtotal.Add(tax),
		InvoiceDate:     invoiceDate,
		DueDate:         dueDate,
		MatchStatus:     model.MatchStatusPending,
		PaymentStatus:   model.PaymentStatusUnpaid,
		Note:            req.Note,
		Items:           items,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.invoiceRepo.Create(txCtx, &invoice); createErr != nil {
			return fmt.Errorf("failed to create invoice: %w", createErr)
		}
		audit := auditEntry(creatorID, model.ActionCreateInvoice, invoice.ID.String(), invoice.InvoiceNumber,
			map[string]any{"vendor_id": vendorID.String(), "total_amount": invoice.TotalAmount.StringFixed(4)})
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return VendorInvoiceResponse{}, err
	}

	return s.GetInvoice(ctx, invoice.ID.String())
}

func (s *vendorInvoiceService) GetInvoice(ctx context.Context, id string) (VendorInvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return VendorInvoiceResponse{}, err
	}
	return toVendorInvoiceResponse(*invoice), nil
}

func (s *vendorInvoiceService) ListInvoices(ctx context.Context, filter VendorInvoiceFilter) ([]VendorInvoiceResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.VendorInvoiceListFilter{
		MatchStatus:   filter.MatchStatus,
		PaymentStatus: filter.PaymentStatus,
		Page:          filter.Page,
		Limit:         filter.Limit,
	}
	if filter.VendorID != "" {
		id, err := uuid.Parse(filter.VendorID)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: invalid vendor_id", apperror.ErrValidation)
		}
		repoFilter.VendorID = &id
	}
	if filter.PurchaseOrderID != "" {
		id, err := uuid.Parse(filter.PurchaseOrderID)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: invalid purchase_order_id", apperror.ErrValidation)
		}
		repoFilter.PurchaseOrderID = &id
	}

	invoices, total, err := s.invoiceRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	result := make([]VendorInvoiceResponse, 0, len(invoices))
	for _, invoice := range invoices {
		result = append(result, toVendorInvoiceResponse(invoice))
	}
	return result, total, nil
}

// PerformThreeWayMatch compares the invoice against its purchase order and
// the accepted goods receipts posted for that order. A fully matched
// invoice is auto-approved for payment.
func (s *vendorInvoiceService) PerformThreeWayMatch(ctx context.Context, actorID, id string, req ThreeWayMatchRequest) (MatchResult, error) {
	actor, err := uuid.Parse(actorID)
	if err != nil {
		return MatchResult{}, fmt.Errorf("invalid actor id: %w", err)
	}
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return MatchResult{}, err
	}
	if invoice.MatchStatus == model.MatchStatusDisputed {
		return MatchResult{}, fmt.Errorf("%w: invoice is disputed, resolve the dispute first", apperror.ErrInvalidState)
	}
	if invoice.PurchaseOrderID == nil {
		return MatchResult{}, fmt.Errorf("%w: invoice is not linked to a purchase order", apperror.ErrValidation)
	}

	tolerance, err := numeric.ToDecimalOrZero(req.TolerancePercent)
	if err != nil {
		return MatchResult{}, err
	}
	if err := numeric.RequireNonNegative(tolerance, "tolerance_percent"); err != nil {
		return MatchResult{}, err
	}

	po, err := s.poRepo.FindByID(ctx, *invoice.PurchaseOrderID)
	if err != nil {
		return MatchResult{}, fmt.Errorf("purchase order not found: %w", apperror.ErrNotFound)
	}

	receipts, err := s.grnRepo.ListAcceptedByPO(ctx, po.ID, matchGRNWindow)
	if err != nil {
		return MatchResult{}, fmt.Errorf("failed to fetch goods receipts: %w", err)
	}

	outcome := computeThreeWayMatch(invoice, po, receipts, tolerance)

	invoice.MatchStatus = outcome.status
	invoice.PriceVariance = outcome.priceVariance
	invoice.QuantityVariance = outcome.qtyVariance

	autoApproved := false
	if outcome.status == model.MatchStatusMatched && !invoice.ApprovedForPayment {
		now := time.Now()
		invoice.ApprovedForPayment = true
		invoice.PaymentApproverID = &actor
		invoice.PaymentApprovedAt = &now
		autoApproved = true
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.invoiceRepo.Update(txCtx, invoice); updateErr != nil {
			return fmt.Errorf("failed to update invoice: %w", updateErr)
		}
		audit := auditEntry(actorID, model.ActionMatchInvoice, invoice.ID.String(), invoice.InvoiceNumber,
			map[string]any{
				"match_status":      outcome.status,
				"price_variance":    outcome.priceVariance.StringFixed(4),
				"quantity_variance": outcome.qtyVariance.StringFixed(4),
			})
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return MatchResult{}, err
	}

	s.notifier.Notify(ctx, po.CreatedByID, model.NotifyInvoiceMatched,
		"Invoice matched",
		fmt.Sprintf("Invoice %s matched %s against purchase order %s", invoice.InvoiceNumber, outcome.status, po.PONumber),
		invoice.ID.String())

	return MatchResult{
		MatchStatus:      outcome.status,
		PriceVariance:    outcome.priceVariance.StringFixed(4),
		QuantityVariance: outcome.qtyVariance.StringFixed(4),
		PriceVariancePct: outcome.pricePct.StringFixed(4),
		AutoApproved:     autoApproved,
	}, nil
}

// ApproveForPayment releases a PARTIAL_MATCH or MISMATCH invoice for payment
// after manual review. MATCHED invoices are approved automatically.
func (s *vendorInvoiceService) ApproveForPayment(ctx context.Context, approverID, id string) (VendorInvoiceResponse, error) {
	approver, err := uuid.Parse(approverID)
	if err != nil {
		return VendorInvoiceResponse{}, fmt.Errorf("invalid approver id: %w", err)
	}
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return VendorInvoiceResponse{}, err
	}
	if invoice.ApprovedForPayment {
		return VendorInvoiceResponse{}, fmt.Errorf("%w: invoice is already approved for payment", apperror.ErrInvalidState)
	}
	if invoice.MatchStatus == model.MatchStatusPending {
		return VendorInvoiceResponse{}, fmt.Errorf("%w: invoice must be matched before payment approval", apperror.ErrInvalidState)
	}
	if invoice.MatchStatus == model.MatchStatusDisputed {
		return VendorInvoiceResponse{}, fmt.Errorf("%w: disputed invoices cannot be approved for payment", apperror.ErrInvalidState)
	}

	now := time.Now()
	invoice.ApprovedForPayment = true
	invoice.PaymentApproverID = &approver
	invoice.PaymentApprovedAt = &now

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.invoiceRepo.Update(txCtx, invoice); updateErr != nil {
			return fmt.Errorf("failed to update invoice: %w", updateErr)
		}
		audit := auditEntry(approverID, model.ActionApprovePayment, invoice.ID.String(), invoice.InvoiceNumber, nil)
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return VendorInvoiceResponse{}, err
	}

	return toVendorInvoiceResponse(*invoice), nil
}

func (s *vendorInvoiceService) DisputeInvoice(ctx context.Context, actorID, id string, reason string) (VendorInvoiceResponse, error) {
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return VendorInvoiceResponse{}, err
	}
	if invoice.PaymentStatus == model.PaymentStatusPaid {
		return VendorInvoiceResponse{}, fmt.Errorf("%w: a fully paid invoice cannot be disputed", apperror.ErrInvalidState)
	}
	if invoice.MatchStatus == model.MatchStatusDisputed {
		return VendorInvoiceResponse{}, fmt.Errorf("%w: invoice is already disputed", apperror.ErrInvalidState)
	}

	invoice.MatchStatus = model.MatchStatusDisputed
	invoice.ApprovedForPayment = false
	if reason != "" {
		invoice.Note = reason
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.invoiceRepo.Update(txCtx, invoice); updateErr != nil {
			return fmt.Errorf("failed to update invoice: %w", updateErr)
		}
		audit := auditEntry(actorID, model.ActionDisputeInvoice, invoice.ID.String(), invoice.InvoiceNumber,
			map[string]any{"reason": reason})
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return VendorInvoiceResponse{}, err
	}

	return toVendorInvoiceResponse(*invoice), nil
}

// RecordPayment posts a settlement against an approved invoice. A payment
// larger than the outstanding balance is rejected, so PaidAmount never
// exceeds TotalAmount.
func (s *vendorInvoiceService) RecordPayment(ctx context.Context, payerID, id string, req RecordPaymentRequest) (VendorInvoiceResponse, error) {
	payer, err := uuid.Parse(payerID)
	if err != nil {
		return VendorInvoiceResponse{}, fmt.Errorf("invalid payer id: %w", err)
	}
	invoice, err := s.findInvoice(ctx, id)
	if err != nil {
		return VendorInvoiceResponse{}, err
	}
	if !invoice.ApprovedForPayment {
		return VendorInvoiceResponse{}, fmt.Errorf("%w: invoice is not approved for payment", apperror.ErrInvalidState)
	}
	if invoice.MatchStatus == model.MatchStatusDisputed {
		return VendorInvoiceResponse{}, fmt.Errorf("%w: disputed invoices cannot be paid", apperror.ErrInvalidState)
	}
	if invoice.PaymentStatus == model.PaymentStatusPaid {
		return VendorInvoiceResponse{}, fmt.Errorf("%w: invoice is already fully paid", apperror.ErrAlreadyClosed)
	}

	amount, err := numeric.ToDecimal(req.Amount)
	if err != nil {
		return VendorInvoiceResponse{}, err
	}
	if err := numeric.RequirePositive(amount, "amount"); err != nil {
		return VendorInvoiceResponse{}, err
	}

	outstanding := invoice.TotalAmount.Sub(invoice.PaidAmount)
	if amount.GreaterThan(outstanding) {
		return VendorInvoiceResponse{}, fmt.Errorf("%w: payment %s exceeds outstanding amount %s",
			apperror.ErrValidation, amount.StringFixed(4), outstanding.StringFixed(4))
	}

	now := time.Now()
	payment := model.InvoicePayment{
		VendorInvoiceID: invoice.ID,
		Amount:          amount,
		Method:          req.Method,
		Reference:       req.Reference,
		PaidByID:        payer,
		PaidAt:          now,
		Note:            req.Note,
	}

	invoice.PaidAmount = invoice.PaidAmount.Add(amount)
	invoice.PaymentStatus = model.PaymentStatusFor(invoice.TotalAmount, invoice.PaidAmount, invoice.DueDate, now)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if createErr := s.invoiceRepo.CreatePayment(txCtx, &payment); createErr != nil {
			return fmt.Errorf("failed to record payment: %w", createErr)
		}
		if updateErr := s.invoiceRepo.Update(txCtx, invoice); updateErr != nil {
			return fmt.Errorf("failed to update invoice: %w", updateErr)
		}
		audit := auditEntry(payerID, model.ActionRecordPayment, invoice.ID.String(), invoice.InvoiceNumber,
			map[string]any{"amount": amount.StringFixed(4), "payment_status": invoice.PaymentStatus})
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return VendorInvoiceResponse{}, err
	}

	if invoice.PaymentApproverID != nil {
		s.notifier.Notify(ctx, *invoice.PaymentApproverID, model.NotifyPaymentRecorded,
			"Payment recorded",
			fmt.Sprintf("Payment of %s recorded against invoice %s", amount.StringFixed(4), invoice.InvoiceNumber),
			invoice.ID.String())
	}

	return s.GetInvoice(ctx, id)
}

// --- Matching engine ---

type matchOutcome struct {
	status        string
	priceVariance decimal.Decimal
	qtyVariance   decimal.Decimal
	pricePct      decimal.Decimal
}

// computeThreeWayMatch pairs each invoice line with a PO line (by POItemID
// when present, else case-insensitive description) and aggregates:
//
//	priceVariance = sum((invoice unit price - PO unit price) * invoice qty)
//	qtyVariance   = sum(invoice qty - accepted qty across the receipts)
//
// The price variance percentage is taken against max(PO total, 1) to avoid
// dividing by a zero-value order. Unmatched lines or a nonzero quantity
// variance make the invoice PARTIAL_MATCH regardless of price. When every
// line pairs up and quantities agree, the price tolerance decides between
// MATCHED and MISMATCH.
func computeThreeWayMatch(invoice *model.VendorInvoice, po *model.PurchaseOrder, receipts []model.GoodsReceipt, tolerancePct decimal.Decimal) matchOutcome {
	poByID := make(map[uuid.UUID]model.PurchaseOrderItem, len(po.Items))
	poByDesc := make(map[string]model.PurchaseOrderItem, len(po.Items))
	for _, item := range po.Items {
		poByID[item.ID] = item
		poByDesc[strings.ToLower(strings.TrimSpace(item.Description))] = item
	}

	// Accepted quantities per PO line across the receipt window.
	acceptedByPOItem := make(map[uuid.UUID]decimal.Decimal)
	for _, grn := range receipts {
		for _, line := range grn.Items {
			acceptedByPOItem[line.POItemID] = acceptedByPOItem[line.POItemID].Add(line.AcceptedQty)
		}
	}

	priceVariance := decimal.Zero
	qtyVariance := decimal.Zero
	unmatchedLines := false
	for _, line := range invoice.Items {
		var poItem model.PurchaseOrderItem
		var ok bool
		if line.POItemID != nil {
			poItem, ok = poByID[*line.POItemID]
		}
		if !ok {
			poItem, ok = poByDesc[strings.ToLower(strings.TrimSpace(line.Description))]
		}
		if !ok {
			unmatchedLines = true
			continue
		}

		priceVariance = priceVariance.Add(line.UnitPrice.Sub(poItem.UnitPrice).Mul(line.Quantity))
		qtyVariance = qtyVariance.Add(line.Quantity.Sub(acceptedByPOItem[poItem.ID]))
	}

	base := po.TotalAmount
	if base.LessThan(decimal.NewFromInt(1)) {
		base = decimal.NewFromInt(1)
	}
	pricePct := priceVariance.Abs().Div(base).Mul(decimal.NewFromInt(100))

	priceOK := pricePct.LessThanOrEqual(tolerancePct)
	qtyOK := qtyVariance.IsZero()

	var status string
	switch {
	case unmatchedLines || !qtyOK:
		status = model.MatchStatusPartialMatch
	case priceOK:
		status = model.MatchStatusMatched
	default:
		status = model.MatchStatusMismatch
	}

	return matchOutcome{
		status:        status,
		priceVariance: priceVariance,
		qtyVariance:   qtyVariance,
		pricePct:      pricePct,
	}
}

// --- Helpers ---

func (s *vendorInvoiceService) findInvoice(ctx context.Context, id string) (*model.VendorInvoice, error) {
	invoiceID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid invoice id", apperror.ErrValidation)
	}
	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("invoice not found: %w", apperror.ErrNotFound)
	}
	return invoice, nil
}

func toVendorInvoiceResponse(invoice model.VendorInvoice) VendorInvoiceResponse {
	items := make([]InvoiceItemResponse, 0, len(invoice.Items))
	for _, item := range invoice.Items {
		view := InvoiceItemResponse{
			ID:          item.ID.String(),
			Description: item.Description,
			Quantity:    item.Quantity.StringFixed(4),
			Unit:        item.Unit,
			UnitPrice:   item.UnitPrice.StringFixed(4),
			TotalPrice:  item.TotalPrice.StringFixed(4),
		}
		if item.POItemID != nil {
			id := item.POItemID.String()
			view.POItemID = &id
		}
		items = append(items, view)
	}

	payments := make([]InvoicePaymentResponse, 0, len(invoice.Payments))
	for _, payment := range invoice.Payments {
		payments = append(payments, InvoicePaymentResponse{
			ID:        payment.ID.String(),
			Amount:    payment.Amount.StringFixed(4),
			Method:    payment.Method,
			Reference: payment.Reference,
			PaidByID:  payment.PaidByID.String(),
			PaidAt:    payment.PaidAt.Format(time.RFC3339),
			Note:      payment.Note,
		})
	}

	resp := VendorInvoiceResponse{
		ID:                 invoice.ID.String(),
		InvoiceNumber:      invoice.InvoiceNumber,
		VendorID:           invoice.VendorID.String(),
		Subtotal:           invoice.Subtotal.StringFixed(4),
		TaxAmount:          invoice.TaxAmount.StringFixed(4),
		TotalAmount:        invoice.TotalAmount.StringFixed(4),
		InvoiceDate:        invoice.InvoiceDate.Format(time.RFC3339),
		DueDate:            invoice.DueDate.Format(time.RFC3339),
		MatchStatus:        invoice.MatchStatus,
		PriceVariance:      invoice.PriceVariance.StringFixed(4),
		QuantityVariance:   invoice.QuantityVariance.StringFixed(4),
		ApprovedForPayment: invoice.ApprovedForPayment,
		PaidAmount:         invoice.PaidAmount.StringFixed(4),
		PaymentStatus:      invoice.PaymentStatus,
		Note:               invoice.Note,
		Items:              items,
		Payments:           payments,
		CreatedAt:          invoice.CreatedAt.Format(time.RFC3339),
	}
	if invoice.Vendor != nil {
		resp.VendorName = invoice.Vendor.Name
	}
	if invoice.PurchaseOrderID != nil {
		id := invoice.PurchaseOrderID.String()
		resp.PurchaseOrderID = &id
	}
	return resp
}
