package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"procurement-backend/internal/model"
	"procurement-backend/internal/repository"
	"procurement-backend/pkg/apperror"
	"procurement-backend/pkg/numeric"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// --- DTOs ---

type RFQItemRequest struct {
	Description string `json:"description" binding:"required"`
	Quantity    string `json:"quantity" binding:"required"`
	Unit        string `json:"unit" binding:"required"`
	Note        string `json:"note"`
}

type CreateRFQRequest struct {
	Title            string           `json:"title" binding:"required"`
	RequisitionID    string           `json:"requisition_id"`
	ResponseDeadline string           `json:"response_deadline"` // RFC3339
	Description      string           `json:"description"`
	Items            []RFQItemRequest `json:"items" binding:"required,min=1,dive"`
}

type UpdateRFQRequest struct {
	Title            *string          `json:"title"`
	ResponseDeadline *string          `json:"response_deadline"`
	Description      *string          `json:"description"`
	Items            []RFQItemRequest `json:"items" binding:"omitempty,min=1,dive"`
}

type InviteVendorsRequest struct {
	VendorIDs []string `json:"vendor_ids" binding:"required,min=1"`
}

type RFQResponseItemRequest struct {
	RFQItemID string `json:"rfq_item_id" binding:"required"`
	UnitPrice string `json:"unit_price" binding:"required"`
	Note      string `json:"note"`
}

type SubmitResponseRequest struct {
	VendorID     string                   `json:"vendor_id" binding:"required"`
	ValidUntil   string                   `json:"valid_until"`
	DeliveryDays int                      `json:"delivery_days"`
	Note         string                   `json:"note"`
	Items        []RFQResponseItemRequest `json:"items" binding:"required,min=1,dive"`
}

type RFQFilter struct {
	Status string
	Page   int
	Limit  int
}

type RFQItemView struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Quantity    string `json:"quantity"`
	Unit        string `json:"unit"`
	Note        string `json:"note"`
}

type RFQVendorView struct {
	VendorID   string `json:"vendor_id"`
	VendorName string `json:"vendor_name,omitempty"`
	InvitedAt  string `json:"invited_at"`
}

type RFQResponseItemView struct {
	RFQItemID  string `json:"rfq_item_id"`
	UnitPrice  string `json:"unit_price"`
	TotalPrice string `json:"total_price"`
	Note       string `json:"note"`
}

type RFQResponseView struct {
	ID           string                `json:"id"`
	VendorID     string                `json:"vendor_id"`
	VendorName   string                `json:"vendor_name,omitempty"`
	Status       string                `json:"status"`
	TotalAmount  string                `json:"total_amount"`
	ValidUntil   *string               `json:"valid_until"`
	DeliveryDays int                   `json:"delivery_days"`
	Note         string                `json:"note"`
	Items        []RFQResponseItemView `json:"items"`
	SubmittedAt  string                `json:"submitted_at"`
}

type RFQView struct {
	ID               string            `json:"id"`
	RFQNumber        string            `json:"rfq_number"`
	Title            string            `json:"title"`
	RequisitionID    *string           `json:"requisition_id"`
	Status           string            `json:"status"`
	ResponseDeadline *string           `json:"response_deadline"`
	Description      string            `json:"description"`
	Items            []RFQItemView     `json:"items"`
	Vendors          []RFQVendorView   `json:"vendors,omitempty"`
	Responses        []RFQResponseView `json:"responses,omitempty"`
	CreatedAt        string            `json:"created_at"`
}

// --- Interface ---

type RFQService interface {
	CreateRFQ(ctx context.Context, creatorID string, req CreateRFQRequest) (RFQView, error)
	GetRFQ(ctx context.Context, id string) (RFQView, error)
	ListRFQs(ctx context.Context, filter RFQFilter) ([]RFQView, int64, error)
	UpdateRFQ(ctx context.Context, id string, req UpdateRFQRequest) (RFQView, error)
	PublishRFQ(ctx context.Context, actorID, id string) (RFQView, error)
	InviteVendors(ctx context.Context, actorID, id string, req InviteVendorsRequest) (RFQView, error)
	SubmitResponse(ctx context.Context, actorID, id string, req SubmitResponseRequest) (RFQResponseView, error)
	UpdateResponse(ctx context.Context, actorID, id, responseID string, req SubmitResponseRequest) (RFQResponseView, error)
	StartEvaluation(ctx context.Context, actorID, id string) (RFQView, error)
	AwardRFQ(ctx context.Context, actorID, id, responseID string) (RFQView, error)
	CloseRFQ(ctx context.Context, actorID, id string) (RFQView, error)
	CancelRFQ(ctx context.Context, actorID, id string) (RFQView, error)
}

type rfqService struct {
	rfqRepo         repository.RFQRepository
	vendorRepo      repository.VendorRepository
	requisitionRepo repository.RequisitionRepository
	auditRepo       repository.AuditRepository
	notifier        Notifier
	txManager       repository.TransactionManager
}

func NewRFQService(
	rfqRepo repository.RFQRepository,
	vendorRepo repository.VendorRepository,
	requisitionRepo repository.RequisitionRepository,
	auditRepo repository.AuditRepository,
	notifier Notifier,
	txManager repository.TransactionManager,
) RFQService {
	return &rfqService{
		rfqRepo:         rfqRepo,
		vendorRepo:      vendorRepo,
		requisitionRepo: requisitionRepo,
		auditRepo:       auditRepo,
		notifier:        notifier,
		txManager:       txManager,
	}
}

// --- Implementation ---

func (s *rfqService) CreateRFQ(ctx context.Context, creatorID string, req CreateRFQRequest) (RFQView, error) {
	creator, err := uuid.Parse(creatorID)
	if err != nil {
		return RFQView{}, fmt.Errorf("invalid creator id: %w", err)
	}

	var requisitionID *uuid.UUID
	if req.RequisitionID != "" {
		reqID, parseErr := uuid.Parse(req.RequisitionID)
		if parseErr != nil {
			return RFQView{}, fmt.Errorf("%w: invalid requisition_id", apperror.ErrValidation)
		}
		requisition, findErr := s.requisitionRepo.FindByID(ctx, reqID)
		if findErr != nil {
			return RFQView{}, fmt.Errorf("requisition not found: %w", apperror.ErrNotFound)
		}
		if requisition.Status != model.RequisitionStatusApproved {
			return RFQView{}, fmt.Errorf("%w: requisition %s is %s, an RFQ needs an APPROVED requisition",
				apperror.ErrInvalidState, requisition.RequisitionNo, requisition.Status)
		}
		requisitionID = &reqID
	}

	items, err := buildRFQItems(req.Items)
	if err != nil {
		return RFQView{}, err
	}

	var deadline *time.Time
	if req.ResponseDeadline != "" {
		parsed, parseErr := time.Parse(time.RFC3339, req.ResponseDeadline)
		if parseErr != nil {
			return RFQView{}, fmt.Errorf("%w: invalid response_deadline", apperror.ErrValidation)
		}
		deadline = &parsed
	}

	rfq := model.RFQ{
		Title:            req.Title,
		RequisitionID:    requisitionID,
		Status:           model.RFQStatusDraft,
		ResponseDeadline: deadline,
		Description:      req.Description,
		CreatedByID:      creator,
		Items:            items,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		number, numErr := generateDocNumber(txCtx, PrefixRFQ, s.rfqRepo.CountByPrefix)
		if numErr != nil {
			return fmt.Errorf("failed to generate RFQ number: %w", numErr)
		}
		rfq.RFQNumber = number

		if createErr := s.rfqRepo.Create(txCtx, &rfq); createErr != nil {
			return fmt.Errorf("failed to create rfq: %w", createErr)
		}

		audit := auditEntry(creatorID, model.ActionCreateRFQ, rfq.ID.String(), rfq.RFQNumber,
			map[string]any{"title": req.Title})
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return RFQView{}, err
	}

	return toRFQView(rfq), nil
}

func (s *rfqService) GetRFQ(ctx context.Context, id string) (RFQView, error) {
	rfq, err := s.findRFQ(ctx, id)
	if err != nil {
		return RFQView{}, err
	}
	return toRFQView(*rfq), nil
}

func (s *rfqService) ListRFQs(ctx context.Context, filter RFQFilter) ([]RFQView, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	rfqs, total, err := s.rfqRepo.List(ctx, repository.RFQListFilter{
		Status: filter.Status,
		Page:   filter.Page,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch rfqs: %w", err)
	}

	result := make([]RFQView, 0, len(rfqs))
	for _, rfq := range rfqs {
		result = append(result, toRFQView(rfq))
	}
	return result, total, nil
}

func (s *rfqService) UpdateRFQ(ctx context.Context, id string, req UpdateRFQRequest) (RFQView, error) {
	rfq, err := s.findRFQ(ctx, id)
	if err != nil {
		return RFQView{}, err
	}
	if rfq.Status != model.RFQStatusDraft {
		return RFQView{}, fmt.Errorf("%w: rfq is %s, only DRAFT rfqs are editable", apperror.ErrInvalidState, rfq.Status)
	}

	if req.Title != nil {
		rfq.Title = *req.Title
	}
	if req.ResponseDeadline != nil {
		parsed, parseErr := time.Parse(time.RFC3339, *req.ResponseDeadline)
		if parseErr != nil {
			return RFQView{}, fmt.Errorf("%w: invalid response_deadline", apperror.ErrValidation)
		}
		rfq.ResponseDeadline = &parsed
	}
	if req.Description != nil {
		rfq.Description = *req.Description
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if req.Items != nil {
			items, buildErr := buildRFQItems(req.Items)
			if buildErr != nil {
				return buildErr
			}
			for i := range items {
				items[i].RFQID = rfq.ID
			}
			if replaceErr := s.rfqRepo.ReplaceItems(txCtx, rfq.ID, items); replaceErr != nil {
				return fmt.Errorf("failed to replace items: %w", replaceErr)
			}
			rfq.Items = items
		}
		if updateErr := s.rfqRepo.Update(txCtx, rfq); updateErr != nil {
			return fmt.Errorf("failed to update rfq: %w", updateErr)
		}
		return nil
	})
	if err != nil {
		return RFQView{}, err
	}

	return toRFQView(*rfq), nil
}

// PublishRFQ opens the RFQ for responses. A deadline in the future is
// required so vendors always have a response window.
func (s *rfqService) PublishRFQ(ctx context.Context, actorID, id string) (RFQView, error) {
	rfq, err := s.findRFQ(ctx, id)
	if err != nil {
		return RFQView{}, err
	}
	if !model.RFQCanTransition(rfq.Status, model.RFQStatusPublished) {
		return RFQView{}, fmt.Errorf("%w: cannot publish a %s rfq", apperror.ErrInvalidState, rfq.Status)
	}
	if rfq.ResponseDeadline == nil || !rfq.ResponseDeadline.After(time.Now()) {
		return RFQView{}, fmt.Errorf("%w: response_deadline must be in the future", apperror.ErrValidation)
	}
	if len(rfq.Items) == 0 {
		return RFQView{}, fmt.Errorf("%w: rfq has no items", apperror.ErrValidation)
	}
	if len(rfq.Vendors) == 0 {
		return RFQView{}, fmt.Errorf("%w: rfq has no invited vendors", apperror.ErrValidation)
	}

	rfq.Status = model.RFQStatusPublished
	err = s.transitionTx(ctx, actorID, rfq, model.ActionPublishRFQ, nil)
	if err != nil {
		return RFQView{}, err
	}

	return toRFQView(*rfq), nil
}

// InviteVendors adds vendors to the RFQ's invitation list. Allowed in DRAFT
// and PUBLISHED; BLACKLISTED vendors are refused.
func (s *rfqService) InviteVendors(ctx context.Context, actorID, id string, req InviteVendorsRequest) (RFQView, error) {
	rfq, err := s.findRFQ(ctx, id)
	if err != nil {
		return RFQView{}, err
	}
	if rfq.Status != model.RFQStatusDraft && rfq.Status != model.RFQStatusPublished {
		return RFQView{}, fmt.Errorf("%w: rfq is %s, invitations are allowed only in DRAFT or PUBLISHED",
			apperror.ErrInvalidState, rfq.Status)
	}

	invited := make([]uuid.UUID, 0, len(req.VendorIDs))
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for _, raw := range req.VendorIDs {
			vendorID, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				return fmt.Errorf("%w: invalid vendor id %q", apperror.ErrValidation, raw)
			}

			vendor, findErr := s.vendorRepo.FindByID(txCtx, vendorID)
			if findErr != nil {
				return fmt.Errorf("vendor not found: %w", apperror.ErrNotFound)
			}
			if vendor.Status == model.VendorStatusBlacklisted {
				return fmt.Errorf("%w: vendor %s is blacklisted", apperror.ErrValidation, vendor.VendorCode)
			}

			// Re-inviting an already invited vendor is a no-op.
			if _, existsErr := s.rfqRepo.FindVendor(txCtx, rfq.ID, vendorID); existsErr == nil {
				continue
			} else if !errors.Is(existsErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to check invitation: %w", existsErr)
			}

			invitation := model.RFQVendor{
				RFQID:     rfq.ID,
				VendorID:  vendorID,
				InvitedAt: time.Now(),
			}
			if addErr := s.rfqRepo.AddVendor(txCtx, &invitation); addErr != nil {
				return fmt.Errorf("failed to invite vendor: %w", addErr)
			}
			invited = append(invited, vendorID)
		}

		audit := auditEntry(actorID, model.ActionInviteVendor, rfq.ID.String(), rfq.RFQNumber,
			map[string]any{"invited": len(invited)})
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return RFQView{}, err
	}

	return s.GetRFQ(ctx, id)
}

// SubmitResponse records a vendor's quotation. Only invited vendors may
// respond, once each, while the RFQ is PUBLISHED and before the deadline.
func (s *rfqService) SubmitResponse(ctx context.Context, actorID, id string, req SubmitResponseRequest) (RFQResponseView, error) {
	rfq, err := s.findRFQ(ctx, id)
	if err != nil {
		return RFQResponseView{}, err
	}
	if rfq.Status != model.RFQStatusPublished {
		return RFQResponseView{}, fmt.Errorf("%w: rfq is %s, responses are accepted only while PUBLISHED",
			apperror.ErrInvalidState, rfq.Status)
	}
	if rfq.ResponseDeadline != nil && time.Now().After(*rfq.ResponseDeadline) {
		return RFQResponseView{}, fmt.Errorf("%w: response deadline has passed", apperror.ErrInvalidState)
	}

	vendorID, err := uuid.Parse(req.VendorID)
	if err != nil {
		return RFQResponseView{}, fmt.Errorf("%w: invalid vendor_id", apperror.ErrValidation)
	}

	items, total, err := quoteResponseLines(rfq, req.Items)
	if err != nil {
		return RFQResponseView{}, err
	}

	var validUntil *time.Time
	if req.ValidUntil != "" {
		parsed, parseErr := time.Parse(time.RFC3339, req.ValidUntil)
		if parseErr != nil {
			return RFQResponseView{}, fmt.Errorf("%w: invalid valid_until", apperror.ErrValidation)
		}
		validUntil = &parsed
	}

	response := model.RFQResponse{
		RFQID:        rfq.ID,
		VendorID:     vendorID,
		Status:       model.RFQResponseSubmitted,
		TotalAmount:  total,
		ValidUntil:   validUntil,
		DeliveryDays: req.DeliveryDays,
		Note:         req.Note,
		Items:        items,
		SubmittedAt:  time.Now(),
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, inviteErr := s.rfqRepo.FindVendor(txCtx, rfq.ID, vendorID); inviteErr != nil {
			if errors.Is(inviteErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: vendor was not invited to this rfq", apperror.ErrForbidden)
			}
			return fmt.Errorf("failed to check invitation: %w", inviteErr)
		}

		if _, existsErr := s.rfqRepo.FindResponseByVendor(txCtx, rfq.ID, vendorID); existsErr == nil {
			return fmt.Errorf("%w: vendor has already responded to this rfq", apperror.ErrResponseExists)
		} else if !errors.Is(existsErr, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check existing response: %w", existsErr)
		}

		if createErr := s.rfqRepo.CreateResponse(txCtx, &response); createErr != nil {
			return fmt.Errorf("failed to create response: %w", createErr)
		}

		audit := auditEntry(actorID, model.ActionSubmitRFQResponse, response.ID.String(), rfq.RFQNumber,
			map[string]any{"vendor_id": vendorID.String(), "total_amount": total.StringFixed(4)})
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return RFQResponseView{}, err
	}

	s.notifier.Notify(ctx, rfq.CreatedByID, model.NotifyRFQInvitation,
		"RFQ response received",
		fmt.Sprintf("A quotation was submitted for %s", rfq.RFQNumber),
		rfq.ID.String())

	return toRFQResponseView(response), nil
}

// UpdateResponse lets a vendor revise a quotation it already submitted.
// The same window rules apply as for submission, and the totals are
// recomputed from the replaced lines in one transaction.
func (s *rfqService) UpdateResponse(ctx context.Context, actorID, id, responseID string, req SubmitResponseRequest) (RFQResponseView, error) {
	rfq, err := s.findRFQ(ctx, id)
	if err != nil {
		return RFQResponseView{}, err
	}
	if rfq.Status != model.RFQStatusPublished {
		return RFQResponseView{}, fmt.Errorf("%w: rfq is %s, responses are accepted only while PUBLISHED",
			apperror.ErrInvalidState, rfq.Status)
	}
	if rfq.ResponseDeadline != nil && time.Now().After(*rfq.ResponseDeadline) {
		return RFQResponseView{}, fmt.Errorf("%w: response deadline has passed", apperror.ErrInvalidState)
	}

	respID, err := uuid.Parse(responseID)
	if err != nil {
		return RFQResponseView{}, fmt.Errorf("%w: invalid response id", apperror.ErrValidation)
	}
	response, err := s.rfqRepo.FindResponseByID(ctx, respID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return RFQResponseView{}, fmt.Errorf("rfq response not found: %w", apperror.ErrNotFound)
		}
		return RFQResponseView{}, fmt.Errorf("failed to load response: %w", err)
	}
	if response.RFQID != rfq.ID {
		return RFQResponseView{}, fmt.Errorf("%w: response does not belong to this rfq", apperror.ErrValidation)
	}
	if response.VendorID.String() != req.VendorID {
		return RFQResponseView{}, fmt.Errorf("%w: response belongs to a different vendor", apperror.ErrValidation)
	}
	if response.Status != model.RFQResponseSubmitted {
		return RFQResponseView{}, fmt.Errorf("%w: response is %s and can no longer be revised",
			apperror.ErrInvalidState, response.Status)
	}

	items, total, err := quoteResponseLines(rfq, req.Items)
	if err != nil {
		return RFQResponseView{}, err
	}

	var validUntil *time.Time
	if req.ValidUntil != "" {
		parsed, parseErr := time.Parse(time.RFC3339, req.ValidUntil)
		if parseErr != nil {
			return RFQResponseView{}, fmt.Errorf("%w: invalid valid_until", apperror.ErrValidation)
		}
		validUntil = &parsed
	}

	response.TotalAmount = total
	response.ValidUntil = validUntil
	response.DeliveryDays = req.DeliveryDays
	response.Note = req.Note
	response.SubmittedAt = time.Now()

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		for i := range items {
			items[i].RFQResponseID = response.ID
		}
		if replaceErr := s.rfqRepo.ReplaceResponseItems(txCtx, response.ID, items); replaceErr != nil {
			return fmt.Errorf("failed to replace response items: %w", replaceErr)
		}
		if updateErr := s.rfqRepo.UpdateResponse(txCtx, response); updateErr != nil {
			return fmt.Errorf("failed to update response: %w", updateErr)
		}

		audit := auditEntry(actorID, model.ActionUpdateRFQResponse, response.ID.String(), rfq.RFQNumber,
			map[string]any{"vendor_id": response.VendorID.String(), "total_amount": total.StringFixed(4)})
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return RFQResponseView{}, err
	}

	response.Items = items
	return toRFQResponseView(*response), nil
}

// quoteResponseLines prices the requested lines against the RFQ's own
// items so quantities always come from the RFQ.
func quoteResponseLines(rfq *model.RFQ, lines []RFQResponseItemRequest) ([]model.RFQResponseItem, decimal.Decimal, error) {
	rfqItems := make(map[uuid.UUID]model.RFQItem, len(rfq.Items))
	for _, item := range rfq.Items {
		rfqItems[item.ID] = item
	}

	items := make([]model.RFQResponseItem, 0, len(lines))
	total := decimal.Zero
	for _, line := range lines {
		rfqItemID, err := uuid.Parse(line.RFQItemID)
		if err != nil {
			return nil, decimal.Zero, fmt.Errorf("%w: invalid rfq_item_id", apperror.ErrValidation)
		}
		source, ok := rfqItems[rfqItemID]
		if !ok {
			return nil, decimal.Zero, fmt.Errorf("%w: quoted line references unknown rfq item", apperror.ErrValidation)
		}

		price, err := numeric.ToDecimal(line.UnitPrice)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if err := numeric.RequireNonNegative(price, "unit_price"); err != nil {
			return nil, decimal.Zero, err
		}

		lineTotal := source.Quantity.Mul(price)
		total = total.Add(lineTotal)
		items = append(items, model.RFQResponseItem{
			RFQItemID:  rfqItemID,
			UnitPrice:  price,
			TotalPrice: lineTotal,
			Note:       line.Note,
		})
	}
	return items, total, nil
}

func (s *rfqService) StartEvaluation(ctx context.Context, actorID, id string) (RFQView, error) {
	rfq, err := s.findRFQ(ctx, id)
	if err != nil {
		return RFQView{}, err
	}
	if !model.RFQCanTransition(rfq.Status, model.RFQStatusEvaluating) {
		return RFQView{}, fmt.Errorf("%w: cannot evaluate a %s rfq", apperror.ErrInvalidState, rfq.Status)
	}
	if len(rfq.Responses) == 0 {
		return RFQView{}, fmt.Errorf("%w: rfq has no responses to evaluate", apperror.ErrValidation)
	}

	rfq.Status = model.RFQStatusEvaluating
	err = s.transitionTx(ctx, actorID, rfq, model.ActionEvaluateRFQ, func(txCtx context.Context) error {
		for i := range rfq.Responses {
			if rfq.Responses[i].Status != model.RFQResponseSubmitted {
				continue
			}
			rfq.Responses[i].Status = model.RFQResponseUnderReview
			if updateErr := s.rfqRepo.UpdateResponse(txCtx, &rfq.Responses[i]); updateErr != nil {
				return fmt.Errorf("failed to update response: %w", updateErr)
			}
		}
		return nil
	})
	if err != nil {
		return RFQView{}, err
	}

	return toRFQView(*rfq), nil
}

// AwardRFQ selects the winning response. The winner becomes SELECTED and
// every sibling REJECTED in the same transaction, so the award is all or
// nothing.
func (s *rfqService) AwardRFQ(ctx context.Context, actorID, id, responseID string) (RFQView, error) {
	rfq, err := s.findRFQ(ctx, id)
	if err != nil {
		return RFQView{}, err
	}
	if !model.RFQCanTransition(rfq.Status, model.RFQStatusAwarded) {
		return RFQView{}, fmt.Errorf("%w: cannot award a %s rfq", apperror.ErrInvalidState, rfq.Status)
	}

	winnerID, err := uuid.Parse(responseID)
	if err != nil {
		return RFQView{}, fmt.Errorf("%w: invalid response id", apperror.ErrValidation)
	}

	found := false
	for _, response := range rfq.Responses {
		if response.ID == winnerID {
			found = true
			break
		}
	}
	if !found {
		return RFQView{}, fmt.Errorf("response not found on this rfq: %w", apperror.ErrNotFound)
	}

	rfq.Status = model.RFQStatusAwarded
	err = s.transitionTx(ctx, actorID, rfq, model.ActionAwardRFQ, func(txCtx context.Context) error {
		for i := range rfq.Responses {
			response := &rfq.Responses[i]
			if response.ID == winnerID {
				response.Status = model.RFQResponseSelected
			} else {
				response.Status = model.RFQResponseRejected
			}
			if updateErr := s.rfqRepo.UpdateResponse(txCtx, response); updateErr != nil {
				return fmt.Errorf("failed to update response: %w", updateErr)
			}
		}
		return nil
	})
	if err != nil {
		return RFQView{}, err
	}

	s.notifier.Notify(ctx, rfq.CreatedByID, model.NotifyRFQInvitation,
		"RFQ awarded",
		fmt.Sprintf("RFQ %s has been awarded", rfq.RFQNumber),
		rfq.ID.String())

	return toRFQView(*rfq), nil
}

func (s *rfqService) CloseRFQ(ctx context.Context, actorID, id string) (RFQView, error) {
	return s.simpleTransition(ctx, actorID, id, model.RFQStatusClosed, model.ActionCloseRFQ)
}

func (s *rfqService) CancelRFQ(ctx context.Context, actorID, id string) (RFQView, error) {
	return s.simpleTransition(ctx, actorID, id, model.RFQStatusCancelled, model.ActionCancelRFQ)
}

// --- Helpers ---

func (s *rfqService) simpleTransition(ctx context.Context, actorID, id, target, action string) (RFQView, error) {
	rfq, err := s.findRFQ(ctx, id)
	if err != nil {
		return RFQView{}, err
	}
	if !model.RFQCanTransition(rfq.Status, target) {
		return RFQView{}, fmt.Errorf("%w: cannot move rfq from %s to %s", apperror.ErrInvalidState, rfq.Status, target)
	}

	rfq.Status = target
	if err := s.transitionTx(ctx, actorID, rfq, action, nil); err != nil {
		return RFQView{}, err
	}
	return toRFQView(*rfq), nil
}

func (s *rfqService) transitionTx(ctx context.Context, actorID string, rfq *model.RFQ, action string, extra func(context.Context) error) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.rfqRepo.Update(txCtx, rfq); updateErr != nil {
			return fmt.Errorf("failed to update rfq: %w", updateErr)
		}
		if extra != nil {
			if extraErr := extra(txCtx); extraErr != nil {
				return extraErr
			}
		}
		audit := auditEntry(actorID, action, rfq.ID.String(), rfq.RFQNumber, map[string]any{"status": rfq.Status})
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
}

func (s *rfqService) findRFQ(ctx context.Context, id string) (*model.RFQ, error) {
	rfqID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid rfq id", apperror.ErrValidation)
	}
	rfq, err := s.rfqRepo.FindByID(ctx, rfqID)
	if err != nil {
		return nil, fmt.Errorf("rfq not found: %w", apperror.ErrNotFound)
	}
	return rfq, nil
}

func buildRFQItems(reqs []RFQItemRequest) ([]model.RFQItem, error) {
	items := make([]model.RFQItem, 0, len(reqs))
	for _, item := range reqs {
		qty, err := numeric.ToDecimal(item.Quantity)
		if err != nil {
			return nil, err
		}
		if err := numeric.RequirePositive(qty, "quantity"); err != nil {
			return nil, err
		}
		items = append(items, model.RFQItem{
			Description: item.Description,
			Quantity:    qty,
			Unit:        item.Unit,
			Note:        item.Note,
		})
	}
	return items, nil
}

func toRFQResponseView(response model.RFQResponse) RFQResponseView {
	items := make([]RFQResponseItemView, 0, len(response.Items))
	for _, item := range response.Items {
		items = append(items, RFQResponseItemView{
			RFQItemID:  item.RFQItemID.String(),
			UnitPrice:  item.UnitPrice.StringFixed(4),
			TotalPrice: item.TotalPrice.StringFixed(4),
			Note:       item.Note,
		})
	}

	view := RFQResponseView{
		ID:           response.ID.String(),
		VendorID:     response.VendorID.String(),
		Status:       response.Status,
		TotalAmount:  response.TotalAmount.StringFixed(4),
		DeliveryDays: response.DeliveryDays,
		Note:         response.Note,
		Items:        items,
		SubmittedAt:  response.SubmittedAt.Format(time.RFC3339),
	}
	if response.Vendor != nil {
		view.VendorName = response.Vendor.Name
	}
	if response.ValidUntil != nil {
		valid := response.ValidUntil.Format(time.RFC3339)
		view.ValidUntil = &valid
	}
	return view
}

func toRFQView(rfq model.RFQ) RFQView {
	items := make([]RFQItemView, 0, len(rfq.Items))
	for _, item := range rfq.Items {
		items = append(items, RFQItemView{
			ID:          item.ID.String(),
			Description: item.Description,
			Quantity:    item.Quantity.StringFixed(4),
			Unit:        item.Unit,
			Note:        item.Note,
		})
	}

	vendors := make([]RFQVendorView, 0, len(rfq.Vendors))
	for _, invitation := range rfq.Vendors {
		view := RFQVendorView{
			VendorID:  invitation.VendorID.String(),
			InvitedAt: invitation.InvitedAt.Format(time.RFC3339),
		}
		if invitation.Vendor != nil {
			view.VendorName = invitation.Vendor.Name
		}
		vendors = append(vendors, view)
	}

	responses := make([]RFQResponseView, 0, len(rfq.Responses))
	for _, response := range rfq.Responses {
		responses = append(responses, toRFQResponseView(response))
	}

	view := RFQView{
		ID:          rfq.ID.String(),
		RFQNumber:   rfq.RFQNumber,
		Title:       rfq.Title,
		Status:      rfq.Status,
		Description: rfq.Description,
		Items:       items,
		Vendors:     vendors,
		Responses:   responses,
		CreatedAt:   rfq.CreatedAt.Format(time.RFC3339),
	}
	if rfq.RequisitionID != nil {
		id := rfq.RequisitionID.String()
		view.RequisitionID = &id
	}
	if rfq.ResponseDeadline != nil {
		deadline := rfq.ResponseDeadline.Format(time.RFC3339)
		view.ResponseDeadline = &deadline
	}
	return view
}
