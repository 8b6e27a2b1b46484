package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"procurement-backend/internal/model"
	"procurement-backend/internal/repository"
	"procurement-backend/pkg/apperror"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// stageOneRoles is the candidate chain for the first approval stage. The
// first role is scoped to the requisition's department; the rest are
// organisation-wide fallbacks, tried in order.
var stageOneRoles = []string{
	model.RoleDepartmentHead,
	model.RoleOperationsManager,
	model.RoleProcurementOfficer,
	model.RoleCFO,
	model.RoleCEO,
}

// finalStageRoles is the candidate chain for the financial sign-off stage
// of high-value requisitions.
var finalStageRoles = []string{
	model.RoleCFO,
	model.RoleCEO,
}

// ApprovalRouter picks approvers for requisition stages and resolves
// active delegations.
type ApprovalRouter struct {
	userRepo       repository.UserRepository
	delegationRepo repository.DelegationRepository
}

func NewApprovalRouter(userRepo repository.UserRepository, delegationRepo repository.DelegationRepository) *ApprovalRouter {
	return &ApprovalRouter{userRepo: userRepo, delegationRepo: delegationRepo}
}

// PickStageOneApprover walks the stage-one candidate chain and returns the
// first active user found. The DEPARTMENT_HEAD candidate is restricted to
// the given department.
func (r *ApprovalRouter) PickStageOneApprover(ctx context.Context, department string) (*model.User, error) {
	return r.pickApprover(ctx, stageOneRoles, department)
}

// PickFinalApprover returns the approver for the financial sign-off stage.
func (r *ApprovalRouter) PickFinalApprover(ctx context.Context) (*model.User, error) {
	return r.pickApprover(ctx, finalStageRoles, "")
}

func (r *ApprovalRouter) pickApprover(ctx context.Context, roles []string, department string) (*model.User, error) {
	for _, role := range roles {
		var (
			user *model.User
			err  error
		)
		if role == model.RoleDepartmentHead {
			user, err = r.userRepo.FindFirstActiveByRoleAndDepartment(ctx, role, department)
		} else {
			user, err = r.userRepo.FindFirstActiveByRole(ctx, role)
		}
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("approver lookup failed for role %s: %w", role, err)
		}
		return user, nil
	}
	return nil, apperror.ErrNoApproverFound
}

// ResolveDelegate returns the delegate covering `at` for the approver, or
// nil when no delegation is active.
func (r *ApprovalRouter) ResolveDelegate(ctx context.Context, approverID uuid.UUID, at time.Time) (*uuid.UUID, error) {
	delegation, err := r.delegationRepo.FindActiveAt(ctx, approverID, at)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("delegation lookup failed: %w", err)
	}
	return &delegation.DelegateID, nil
}

// EffectiveApprover applies any active delegation to the routed approver.
func (r *ApprovalRouter) EffectiveApprover(ctx context.Context, approverID uuid.UUID, at time.Time) (uuid.UUID, error) {
	delegate, err := r.ResolveDelegate(ctx, approverID, at)
	if err != nil {
		return uuid.Nil, err
	}
	if delegate != nil {
		return *delegate, nil
	}
	return approverID, nil
}
