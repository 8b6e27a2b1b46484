package service

import (
	"context"
	"fmt"
	"time"

	"procurement-backend/internal/model"
	"procurement-backend/internal/repository"
	"procurement-backend/pkg/apperror"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateDelegationRequest struct {
	DelegateID string `json:"delegate_id" binding:"required"`
	StartDate  string `json:"start_date" binding:"required"` // RFC3339
	EndDate    string `json:"end_date" binding:"required"`   // RFC3339
	Reason     string `json:"reason"`
}

type DelegationResponse struct {
	ID          string `json:"id"`
	DelegatorID string `json:"delegator_id"`
	DelegateID  string `json:"delegate_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	IsActive    bool   `json:"is_active"`
	Reason      string `json:"reason"`
	CreatedAt   string `json:"created_at"`
}

// --- Interface ---

type DelegationService interface {
	CreateDelegation(ctx context.Context, delegatorID string, req CreateDelegationRequest) (DelegationResponse, error)
	RevokeDelegation(ctx context.Context, delegatorID, delegationID string) error
	ListDelegations(ctx context.Context, delegatorID string, page, limit int) ([]DelegationResponse, int64, error)
}

type delegationService struct {
	delegationRepo repository.DelegationRepository
	userRepo       repository.UserRepository
	auditRepo      repository.AuditRepository
	txManager      repository.TransactionManager
}

func NewDelegationService(
	delegationRepo repository.DelegationRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) DelegationService {
	return &delegationService{
		delegationRepo: delegationRepo,
		userRepo:       userRepo,
		auditRepo:      auditRepo,
		txManager:      txManager,
	}
}

// --- Implementation ---

// CreateDelegation activates a new delegation window. Any existing active
// delegation for the same delegator whose window overlaps the new one is
// deactivated first, so exactly one delegation wins at any instant.
func (s *delegationService) CreateDelegation(ctx context.Context, delegatorID string, req CreateDelegationRequest) (DelegationResponse, error) {
	delegator, err := uuid.Parse(delegatorID)
	if err != nil {
		return DelegationResponse{}, fmt.Errorf("invalid delegator id: %w", err)
	}
	delegate, err := uuid.Parse(req.DelegateID)
	if err != nil {
		return DelegationResponse{}, fmt.Errorf("%w: invalid delegate_id", apperror.ErrValidation)
	}
	if delegator == delegate {
		return DelegationResponse{}, fmt.Errorf("%w: cannot delegate to yourself", apperror.ErrValidation)
	}

	start, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		return DelegationResponse{}, fmt.Errorf("%w: invalid start_date", apperror.ErrValidation)
	}
	end, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		return DelegationResponse{}, fmt.Errorf("%w: invalid end_date", apperror.ErrValidation)
	}
	if !start.Before(end) {
		return DelegationResponse{}, fmt.Errorf("%w: start_date must be before end_date", apperror.ErrValidation)
	}

	if _, err := s.userRepo.GetByID(ctx, req.DelegateID); err != nil {
		return DelegationResponse{}, fmt.Errorf("delegate not found: %w", apperror.ErrNotFound)
	}

	delegation := model.ApprovalDelegation{
		DelegatorID: delegator,
		DelegateID:  delegate,
		StartDate:   start,
		EndDate:     end,
		IsActive:    true,
		Reason:      req.Reason,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		overlapping, findErr := s.delegationRepo.FindActiveOverlapping(txCtx, delegator, start, end)
		if findErr != nil {
			return fmt.Errorf("overlap lookup failed: %w", findErr)
		}
		for i := range overlapping {
			overlapping[i].IsActive = false
			if updateErr := s.delegationRepo.Update(txCtx, &overlapping[i]); updateErr != nil {
				return fmt.Errorf("failed to deactivate delegation: %w", updateErr)
			}
		}

		if createErr := s.delegationRepo.Create(txCtx, &delegation); createErr != nil {
			return fmt.Errorf("failed to create delegation: %w", createErr)
		}

		audit := auditEntry(delegatorID, model.ActionCreateDelegation, delegation.ID.String(), "",
			map[string]any{"delegate_id": req.DelegateID, "start": req.StartDate, "end": req.EndDate})
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return DelegationResponse{}, err
	}

	return toDelegationResponse(delegation), nil
}

func (s *delegationService) RevokeDelegation(ctx context.Context, delegatorID, delegationID string) error {
	id, err := uuid.Parse(delegationID)
	if err != nil {
		return fmt.Errorf("%w: invalid delegation id", apperror.ErrValidation)
	}

	delegation, err := s.delegationRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("delegation not found: %w", apperror.ErrNotFound)
	}
	if delegation.DelegatorID.String() != delegatorID {
		return apperror.ErrForbidden
	}
	if !delegation.IsActive {
		return fmt.Errorf("%w: delegation already inactive", apperror.ErrInvalidState)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		delegation.IsActive = false
		if err := s.delegationRepo.Update(txCtx, delegation); err != nil {
			return fmt.Errorf("failed to revoke delegation: %w", err)
		}
		audit := auditEntry(delegatorID, model.ActionRevokeDelegation, delegation.ID.String(), "", nil)
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}
		return nil
	})
}

func (s *delegationService) ListDelegations(ctx context.Context, delegatorID string, page, limit int) ([]DelegationResponse, int64, error) {
	delegator, err := uuid.Parse(delegatorID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid delegator id: %w", err)
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	delegations, total, err := s.delegationRepo.ListByDelegator(ctx, delegator, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch delegations: %w", err)
	}

	result := make([]DelegationResponse, 0, len(delegations))
	for _, d := range delegations {
		result = append(result, toDelegationResponse(d))
	}
	return result, total, nil
}

func toDelegationResponse(d model.ApprovalDelegation) DelegationResponse {
	return DelegationResponse{
		ID:          d.ID.String(),
		DelegatorID: d.DelegatorID.String(),
		DelegateID:  d.DelegateID.String(),
		StartDate:   d.StartDate.Format(time.RFC3339),
		EndDate:     d.EndDate.Format(time.RFC3339),
		IsActive:    d.IsActive,
		Reason:      d.Reason,
		CreatedAt:   d.CreatedAt.Format(time.RFC3339),
	}
}
