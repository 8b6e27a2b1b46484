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

// Requisitions at or above this estimate require a second, financial
// sign-off stage (CFO chain) after the stage-one approval.
var financialApprovalThreshold = decimal.NewFromInt(10000)

// --- DTOs ---

type RequisitionItemRequest struct {
	Description    string `json:"description" binding:"required"`
	Quantity       string `json:"quantity" binding:"required"`
	Unit           string `json:"unit" binding:"required"`
	EstimatedPrice string `json:"estimated_price" binding:"required"`
	Note           string `json:"note"`
}

type CreateRequisitionRequest struct {
	Department    string                   `json:"department" binding:"required"`
	Justification string                   `json:"justification"`
	NeededBy      string                   `json:"needed_by"` // RFC3339, optional
	Items         []RequisitionItemRequest `json:"items" binding:"required,min=1,dive"`
}

type UpdateRequisitionRequest struct {
	Justification *string                  `json:"justification"`
	NeededBy      *string                  `json:"needed_by"`
	Items         []RequisitionItemRequest `json:"items" binding:"omitempty,min=1,dive"`
}

type ApprovalDecisionRequest struct {
	Comments string `json:"comments"`
}

type RequisitionFilter struct {
	Status      string
	Department  string
	RequesterID string
	ApproverID  string
	Page        int
	Limit       int
}

type RequisitionItemResponse struct {
	ID             string `json:"id"`
	Description    string `json:"description"`
	Quantity       string `json:"quantity"`
	Unit           string `json:"unit"`
	EstimatedPrice string `json:"estimated_price"`
	TotalPrice     string `json:"total_price"`
	Note           string `json:"note"`
}

type RequisitionApprovalResponse struct {
	Stage      int     `json:"stage"`
	ApproverID string  `json:"approver_id"`
	Status     string  `json:"status"`
	Comments   string  `json:"comments"`
	ActedAt    *string `json:"acted_at"`
}

type RequisitionResponse struct {
	ID            string                        `json:"id"`
	RequisitionNo string                        `json:"requisition_no"`
	RequesterID   string                        `json:"requester_id"`
	Department    string                        `json:"department"`
	Status        string                        `json:"status"`
	CurrentStage  int                           `json:"current_stage"`
	TotalEstimate string                        `json:"total_estimate"`
	Justification string                        `json:"justification"`
	NeededBy      *string                       `json:"needed_by"`
	Items         []RequisitionItemResponse     `json:"items"`
	Approvals     []RequisitionApprovalResponse `json:"approvals,omitempty"`
	CreatedAt     string                        `json:"created_at"`
}

// --- Interface ---

type RequisitionService interface {
	CreateRequisition(ctx context.Context, requesterID string, req CreateRequisitionRequest) (RequisitionResponse, error)
	GetRequisition(ctx context.Context, id string) (RequisitionResponse, error)
	ListRequisitions(ctx context.Context, filter RequisitionFilter) ([]RequisitionResponse, int64, error)
	UpdateRequisition(ctx context.Context, requesterID, id string, req UpdateRequisitionRequest) (RequisitionResponse, error)
	SubmitRequisition(ctx context.Context, requesterID, id string) (RequisitionResponse, error)
	ApproveRequisition(ctx context.Context, approverID, id string, req ApprovalDecisionRequest) (RequisitionResponse, error)
	RejectRequisition(ctx context.Context, approverID, id string, req ApprovalDecisionRequest) (RequisitionResponse, error)
	CancelRequisition(ctx context.Context, requesterID, id string) (RequisitionResponse, error)
}

type requisitionService struct {
	requisitionRepo repository.RequisitionRepository
	auditRepo       repository.AuditRepository
	router          *ApprovalRouter
	notifier        Notifier
	txManager       repository.TransactionManager
}

func NewRequisitionService(
	requisitionRepo repository.RequisitionRepository,
	auditRepo repository.AuditRepository,
	router *ApprovalRouter,
	notifier Notifier,
	txManager repository.TransactionManager,
) RequisitionService {
	return &requisitionService{
		requisitionRepo: requisitionRepo,
		auditRepo:       auditRepo,
		router:          router,
		notifier:        notifier,
		txManager:       txManager,
	}
}

// --- Implementation ---

func (s *requisitionService) CreateRequisition(ctx context.Context, requesterID string, req CreateRequisitionRequest) (RequisitionResponse, error) {
	requester, err := uuid.Parse(requesterID)
	if err != nil {
		return RequisitionResponse{}, fmt.Errorf("invalid requester id: %w", err)
	}

	items, total, err := buildRequisitionItems(req.Items)
	if err != nil {
		return RequisitionResponse{}, err
	}

	var neededBy *time.Time
	if req.NeededBy != "" {
		parsed, parseErr := time.Parse(time.RFC3339, req.NeededBy)
		if parseErr != nil {
			return RequisitionResponse{}, fmt.Errorf("%w: invalid needed_by", apperror.ErrValidation)
		}
		neededBy = &parsed
	}

	requisition := model.Requisition{
		RequesterID:   requester,
		Department:    req.Department,
		Status:        model.RequisitionStatusDraft,
		CurrentStage:  1,
		TotalEstimate: total,
		Justification: req.Justification,
		NeededBy:      neededBy,
		Items:         items,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		number, numErr := generateDocNumber(txCtx, PrefixRequisition, s.requisitionRepo.CountByPrefix)
		if numErr != nil {
			return fmt.Errorf("failed to generate requisition number: %w", numErr)
		}
		requisition.RequisitionNo = number

		if createErr := s.requisitionRepo.Create(txCtx, &requisition); createErr != nil {
			return fmt.Errorf("failed to create requisition: %w", createErr)
		}

		audit := auditEntry(requesterID, model.ActionCreateRequisition, requisition.ID.String(), requisition.RequisitionNo,
			map[string]any{"department": req.Department, "total_estimate": total.StringFixed(4)})
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return RequisitionResponse{}, err
	}

	return toRequisitionResponse(requisition), nil
}

func (s *requisitionService) GetRequisition(ctx context.Context, id string) (RequisitionResponse, error) {
	requisition, err := s.findRequisition(ctx, id)
	if err != nil {
		return RequisitionResponse{}, err
	}
	return toRequisitionResponse(*requisition), nil
}

func (s *requisitionService) ListRequisitions(ctx context.Context, filter RequisitionFilter) ([]RequisitionResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.RequisitionListFilter{
		Status:     filter.Status,
		Department: filter.Department,
		Page:       filter.Page,
		Limit:      filter.Limit,
	}
	if filter.RequesterID != "" {
		id, err := uuid.Parse(filter.RequesterID)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: invalid requester_id", apperror.ErrValidation)
		}
		repoFilter.RequesterID = &id
	}
	if filter.ApproverID != "" {
		id, err := uuid.Parse(filter.ApproverID)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: invalid approver_id", apperror.ErrValidation)
		}
		repoFilter.ApproverID = &id
	}

	requisitions, total, err := s.requisitionRepo.List(ctx, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch requisitions: %w", err)
	}

	result := make([]RequisitionResponse, 0, len(requisitions))
	for _, r := range requisitions {
		result = append(result, toRequisitionResponse(r))
	}
	return result, total, nil
}

// UpdateRequisition replaces items and metadata. Items are mutable only in
// DRAFT; TotalEstimate is recomputed in the same transaction.
func (s *requisitionService) UpdateRequisition(ctx context.Context, requesterID, id string, req UpdateRequisitionRequest) (RequisitionResponse, error) {
	requisition, err := s.findRequisition(ctx, id)
	if err != nil {
		return RequisitionResponse{}, err
	}
	if requisition.RequesterID.String() != requesterID {
		return RequisitionResponse{}, apperror.ErrForbidden
	}
	if requisition.Status != model.RequisitionStatusDraft {
		return RequisitionResponse{}, fmt.Errorf("%w: requisition is %s, items are editable only in DRAFT",
			apperror.ErrInvalidState, requisition.Status)
	}

	if req.Justification != nil {
		requisition.Justification = *req.Justification
	}
	if req.NeededBy != nil {
		parsed, parseErr := time.Parse(time.RFC3339, *req.NeededBy)
		if parseErr != nil {
			return RequisitionResponse{}, fmt.Errorf("%w: invalid needed_by", apperror.ErrValidation)
		}
		requisition.NeededBy = &parsed
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if req.Items != nil {
			items, total, buildErr := buildRequisitionItems(req.Items)
			if buildErr != nil {
				return buildErr
			}
			for i := range items {
				items[i].RequisitionID = requisition.ID
			}
			if replaceErr := s.requisitionRepo.ReplaceItems(txCtx, requisition.ID, items); replaceErr != nil {
				return fmt.Errorf("failed to replace items: %w", replaceErr)
			}
			requisition.Items = items
			requisition.TotalEstimate = total
		}
		if updateErr := s.requisitionRepo.Update(txCtx, requisition); updateErr != nil {
			return fmt.Errorf("failed to update requisition: %w", updateErr)
		}
		return nil
	})
	if err != nil {
		return RequisitionResponse{}, err
	}

	return toRequisitionResponse(*requisition), nil
}

// SubmitRequisition routes the requisition to its stage-one approver. The
// whole submission is one transaction: if no approver can be resolved the
// requisition stays in DRAFT.
func (s *requisitionService) SubmitRequisition(ctx context.Context, requesterID, id string) (RequisitionResponse, error) {
	requisition, err := s.findRequisition(ctx, id)
	if err != nil {
		return RequisitionResponse{}, err
	}
	if requisition.RequesterID.String() != requesterID {
		return RequisitionResponse{}, apperror.ErrForbidden
	}
	if !model.RequisitionCanTransition(requisition.Status, model.RequisitionStatusPendingApproval) {
		return RequisitionResponse{}, fmt.Errorf("%w: cannot submit a %s requisition",
			apperror.ErrInvalidState, requisition.Status)
	}
	if len(requisition.Items) == 0 {
		return RequisitionResponse{}, fmt.Errorf("%w: requisition has no items", apperror.ErrValidation)
	}

	var approverID uuid.UUID
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		approver, pickErr := s.router.PickStageOneApprover(txCtx, requisition.Department)
		if pickErr != nil {
			return pickErr
		}
		effective, delegateErr := s.router.EffectiveApprover(txCtx, approver.ID, time.Now())
		if delegateErr != nil {
			return delegateErr
		}
		approverID = effective

		requisition.Status = model.RequisitionStatusPendingApproval
		requisition.CurrentStage = 1
		if updateErr := s.requisitionRepo.Update(txCtx, requisition); updateErr != nil {
			return fmt.Errorf("failed to update requisition: %w", updateErr)
		}

		approval := model.RequisitionApproval{
			RequisitionID: requisition.ID,
			Stage:         1,
			ApproverID:    effective,
			Status:        model.ApprovalPending,
		}
		if upsertErr := s.requisitionRepo.UpsertApproval(txCtx, &approval); upsertErr != nil {
			return fmt.Errorf("failed to record approval request: %w", upsertErr)
		}

		audit := auditEntry(requesterID, model.ActionSubmitRequisition, requisition.ID.String(), requisition.RequisitionNo,
			map[string]any{"approver_id": effective.String()})
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return RequisitionResponse{}, err
	}

	s.notifier.Notify(ctx, approverID, model.NotifyApprovalRequested,
		"Requisition pending approval",
		fmt.Sprintf("Requisition %s is awaiting your approval", requisition.RequisitionNo),
		requisition.ID.String())

	return s.GetRequisition(ctx, id)
}

// ApproveRequisition records the acting approver's decision for the current
// stage. On the final stage the requisition becomes APPROVED; otherwise it
// advances to the financial sign-off stage.
func (s *requisitionService) ApproveRequisition(ctx context.Context, approverID, id string, req ApprovalDecisionRequest) (RequisitionResponse, error) {
	requisition, err := s.findRequisition(ctx, id)
	if err != nil {
		return RequisitionResponse{}, err
	}
	if requisition.Status != model.RequisitionStatusPendingApproval {
		return RequisitionResponse{}, fmt.Errorf("%w: requisition is %s", apperror.ErrInvalidState, requisition.Status)
	}

	var (
		nextApprover  *uuid.UUID
		requesterID   = requisition.RequesterID
		finalApproved bool
	)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		approval, findErr := s.requisitionRepo.FindApproval(txCtx, requisition.ID, requisition.CurrentStage)
		if findErr != nil {
			return fmt.Errorf("approval record not found: %w", apperror.ErrNotFound)
		}
		if approval.ApproverID.String() != approverID {
			return apperror.ErrForbidden
		}
		if approval.Status != model.ApprovalPending {
			return fmt.Errorf("%w: stage %d already decided", apperror.ErrInvalidState, approval.Stage)
		}

		now := time.Now()
		approval.Status = model.ApprovalApproved
		approval.Comments = req.Comments
		approval.ActedAt = &now
		if updateErr := s.requisitionRepo.UpdateApproval(txCtx, approval); updateErr != nil {
			return fmt.Errorf("failed to update approval: %w", updateErr)
		}

		if requisition.CurrentStage < totalStagesFor(requisition.TotalEstimate) {
			next, pickErr := s.router.PickFinalApprover(txCtx)
			if pickErr != nil {
				return pickErr
			}
			effective, delegateErr := s.router.EffectiveApprover(txCtx, next.ID, now)
			if delegateErr != nil {
				return delegateErr
			}
			nextApprover = &effective

			requisition.CurrentStage++
			nextApproval := model.RequisitionApproval{
				RequisitionID: requisition.ID,
				Stage:         requisition.CurrentStage,
				ApproverID:    effective,
				Status:        model.ApprovalPending,
			}
			if upsertErr := s.requisitionRepo.UpsertApproval(txCtx, &nextApproval); upsertErr != nil {
				return fmt.Errorf("failed to record next approval stage: %w", upsertErr)
			}
		} else {
			if !model.RequisitionCanTransition(requisition.Status, model.RequisitionStatusApproved) {
				return fmt.Errorf("%w: cannot approve a %s requisition", apperror.ErrInvalidState, requisition.Status)
			}
			requisition.Status = model.RequisitionStatusApproved
			finalApproved = true
		}

		if updateErr := s.requisitionRepo.Update(txCtx, requisition); updateErr != nil {
			return fmt.Errorf("failed to update requisition: %w", updateErr)
		}

		audit := auditEntry(approverID, model.ActionApproveRequisition, requisition.ID.String(), requisition.RequisitionNo,
			map[string]any{"stage": approval.Stage, "comments": req.Comments})
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return RequisitionResponse{}, err
	}

	if finalApproved {
		s.notifier.Notify(ctx, requesterID, model.NotifyApprovalDecided,
			"Requisition approved",
			fmt.Sprintf("Requisition %s has been fully approved", requisition.RequisitionNo),
			requisition.ID.String())
	} else if nextApprover != nil {
		s.notifier.Notify(ctx, *nextApprover, model.NotifyApprovalRequested,
			"Requisition pending approval",
			fmt.Sprintf("Requisition %s is awaiting your approval", requisition.RequisitionNo),
			requisition.ID.String())
	}

	return s.GetRequisition(ctx, id)
}

// RejectRequisition terminates the approval flow at the current stage.
func (s *requisitionService) RejectRequisition(ctx context.Context, approverID, id string, req ApprovalDecisionRequest) (RequisitionResponse, error) {
	requisition, err := s.findRequisition(ctx, id)
	if err != nil {
		return RequisitionResponse{}, err
	}
	if requisition.Status != model.RequisitionStatusPendingApproval {
		return RequisitionResponse{}, fmt.Errorf("%w: requisition is %s", apperror.ErrInvalidState, requisition.Status)
	}

	requesterID := requisition.RequesterID
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		approval, findErr := s.requisitionRepo.FindApproval(txCtx, requisition.ID, requisition.CurrentStage)
		if findErr != nil {
			return fmt.Errorf("approval record not found: %w", apperror.ErrNotFound)
		}
		if approval.ApproverID.String() != approverID {
			return apperror.ErrForbidden
		}
		if approval.Status != model.ApprovalPending {
			return fmt.Errorf("%w: stage %d already decided", apperror.ErrInvalidState, approval.Stage)
		}

		now := time.Now()
		approval.Status = model.ApprovalRejected
		approval.Comments = req.Comments
		approval.ActedAt = &now
		if updateErr := s.requisitionRepo.UpdateApproval(txCtx, approval); updateErr != nil {
			return fmt.Errorf("failed to update approval: %w", updateErr)
		}

		requisition.Status = model.RequisitionStatusRejected
		if updateErr := s.requisitionRepo.Update(txCtx, requisition); updateErr != nil {
			return fmt.Errorf("failed to update requisition: %w", updateErr)
		}

		audit := auditEntry(approverID, model.ActionRejectRequisition, requisition.ID.String(), requisition.RequisitionNo,
			map[string]any{"stage": approval.Stage, "comments": req.Comments})
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return RequisitionResponse{}, err
	}

	s.notifier.Notify(ctx, requesterID, model.NotifyApprovalDecided,
		"Requisition rejected",
		fmt.Sprintf("Requisition %s was rejected", requisition.RequisitionNo),
		requisition.ID.String())

	return s.GetRequisition(ctx, id)
}

func (s *requisitionService) CancelRequisition(ctx context.Context, requesterID, id string) (RequisitionResponse, error) {
	requisition, err := s.findRequisition(ctx, id)
	if err != nil {
		return RequisitionResponse{}, err
	}
	if requisition.RequesterID.String() != requesterID {
		return RequisitionResponse{}, apperror.ErrForbidden
	}
	if !model.RequisitionCanTransition(requisition.Status, model.RequisitionStatusCancelled) {
		return RequisitionResponse{}, fmt.Errorf("%w: cannot cancel a %s requisition",
			apperror.ErrInvalidState, requisition.Status)
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		requisition.Status = model.RequisitionStatusCancelled
		if updateErr := s.requisitionRepo.Update(txCtx, requisition); updateErr != nil {
			return fmt.Errorf("failed to cancel requisition: %w", updateErr)
		}
		audit := auditEntry(requesterID, model.ActionCancelRequisition, requisition.ID.String(), requisition.RequisitionNo, nil)
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return RequisitionResponse{}, err
	}

	return toRequisitionResponse(*requisition), nil
}

// --- Helpers ---

func (s *requisitionService) findRequisition(ctx context.Context, id string) (*model.Requisition, error) {
	reqID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid requisition id", apperror.ErrValidation)
	}
	requisition, err := s.requisitionRepo.FindByID(ctx, reqID)
	if err != nil {
		return nil, fmt.Errorf("requisition not found: %w", apperror.ErrNotFound)
	}
	return requisition, nil
}

func totalStagesFor(totalEstimate decimal.Decimal) int {
	if totalEstimate.GreaterThanOrEqual(financialApprovalThreshold) {
		return 2
	}
	return 1
}

// buildRequisitionItems parses the request lines and derives per-line and
// requisition totals with decimal arithmetic.
func buildRequisitionItems(reqs []RequisitionItemRequest) ([]model.RequisitionItem, decimal.Decimal, error) {
	items := make([]model.RequisitionItem, 0, len(reqs))
	total := decimal.Zero
	for _, item := range reqs {
		qty, err := numeric.ToDecimal(item.Quantity)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if err := numeric.RequirePositive(qty, "quantity"); err != nil {
			return nil, decimal.Zero, err
		}
		price, err := numeric.ToDecimal(item.EstimatedPrice)
		if err != nil {
			return nil, decimal.Zero, err
		}
		if err := numeric.RequireNonNegative(price, "estimated_price"); err != nil {
			return nil, decimal.Zero, err
		}

		lineTotal := qty.Mul(price)
		total = total.Add(lineTotal)
		items = append(items, model.RequisitionItem{
			Description:    item.Description,
			Quantity:       qty,
			Unit:           item.Unit,
			EstimatedPrice: price,
			TotalPrice:     lineTotal,
			Note:           item.Note,
		})
	}
	return items, total, nil
}

func toRequisitionResponse(r model.Requisition) RequisitionResponse {
	items := make([]RequisitionItemResponse, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, RequisitionItemResponse{
			ID:             item.ID.String(),
			Description:    item.Description,
			Quantity:       item.Quantity.StringFixed(4),
			Unit:           item.Unit,
			EstimatedPrice: item.EstimatedPrice.StringFixed(4),
			TotalPrice:     item.TotalPrice.StringFixed(4),
			Note:           item.Note,
		})
	}

	approvals := make([]RequisitionApprovalResponse, 0, len(r.Approvals))
	for _, a := range r.Approvals {
		resp := RequisitionApprovalResponse{
			Stage:      a.Stage,
			ApproverID: a.ApproverID.String(),
			Status:     a.Status,
			Comments:   a.Comments,
		}
		if a.ActedAt != nil {
			acted := a.ActedAt.Format(time.RFC3339)
			resp.ActedAt = &acted
		}
		approvals = append(approvals, resp)
	}

	resp := RequisitionResponse{
		ID:            r.ID.String(),
		RequisitionNo: r.RequisitionNo,
		RequesterID:   r.RequesterID.String(),
		Department:    r.Department,
		Status:        r.Status,
		CurrentStage:  r.CurrentStage,
		TotalEstimate: r.TotalEstimate.StringFixed(4),
		Justification: r.Justification,
		Items:         items,
		Approvals:     approvals,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
	if r.NeededBy != nil {
		needed := r.NeededBy.Format(time.RFC3339)
		resp.NeededBy = &needed
	}
	return resp
}
