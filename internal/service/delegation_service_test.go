package service

import (
	"context"
	"testing"
	"time"

	"procurement-backend/internal/model"
	"procurement-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type delegationFixture struct {
	svc   DelegationService
	repo  *memDelegationRepo
	users *memUserRepo
	audit *memAuditRepo

	delegatorID uuid.UUID
	delegateID  uuid.UUID
}

func newDelegationFixture(t *testing.T) *delegationFixture {
	t.Helper()
	f := &delegationFixture{
		repo:  &memDelegationRepo{},
		users: &memUserRepo{},
		audit: &memAuditRepo{},
	}
	f.delegatorID = f.users.add(model.User{Username: "head.it", Role: model.RoleDepartmentHead, Department: "IT", IsActive: true})
	f.delegateID = f.users.add(model.User{Username: "ops.manager", Role: model.RoleOperationsManager, IsActive: true})
	f.svc = NewDelegationService(f.repo, f.users, f.audit, passthroughTxManager{})
	return f
}

func (f *delegationFixture) create(t *testing.T, start, end time.Time) DelegationResponse {
	t.Helper()
	resp, err := f.svc.CreateDelegation(context.Background(), f.delegatorID.String(), CreateDelegationRequest{
		DelegateID: f.delegateID.String(),
		StartDate:  start.Format(time.RFC3339),
		EndDate:    end.Format(time.RFC3339),
		Reason:     "annual leave",
	})
	require.NoError(t, err)
	return resp
}

func TestCreateDelegationDeactivatesOverlap(t *testing.T) {
	f := newDelegationFixture(t)
	now := time.Now()

	first := f.create(t, now, now.Add(7*24*time.Hour))
	require.True(t, first.IsActive)

	// The second window overlaps the first, so the first one loses.
	second := f.create(t, now.Add(3*24*time.Hour), now.Add(10*24*time.Hour))
	require.True(t, second.IsActive)

	firstID, err := uuid.Parse(first.ID)
	require.NoError(t, err)
	stored, err := f.repo.FindByID(context.Background(), firstID)
	require.NoError(t, err)
	require.False(t, stored.IsActive)

	require.Contains(t, f.audit.actions(), model.ActionCreateDelegation)
}

func TestCreateDelegationDisjointWindowsCoexist(t *testing.T) {
	f := newDelegationFixture(t)
	now := time.Now()

	first := f.create(t, now, now.Add(24*time.Hour))
	f.create(t, now.Add(48*time.Hour), now.Add(72*time.Hour))

	firstID, err := uuid.Parse(first.ID)
	require.NoError(t, err)
	stored, err := f.repo.FindByID(context.Background(), firstID)
	require.NoError(t, err)
	require.True(t, stored.IsActive)
}

func TestCreateDelegationValidation(t *testing.T) {
	f := newDelegationFixture(t)
	now := time.Now()

	// Self-delegation.
	_, err := f.svc.CreateDelegation(context.Background(), f.delegatorID.String(), CreateDelegationRequest{
		DelegateID: f.delegatorID.String(),
		StartDate:  now.Format(time.RFC3339),
		EndDate:    now.Add(time.Hour).Format(time.RFC3339),
	})
	require.ErrorIs(t, err, apperror.ErrValidation)

	// Window ends before it starts.
	_, err = f.svc.CreateDelegation(context.Background(), f.delegatorID.String(), CreateDelegationRequest{
		DelegateID: f.delegateID.String(),
		StartDate:  now.Add(time.Hour).Format(time.RFC3339),
		EndDate:    now.Format(time.RFC3339),
	})
	require.ErrorIs(t, err, apperror.ErrValidation)

	// Unknown delegate.
	_, err = f.svc.CreateDelegation(context.Background(), f.delegatorID.String(), CreateDelegationRequest{
		DelegateID: uuid.NewString(),
		StartDate:  now.Format(time.RFC3339),
		EndDate:    now.Add(time.Hour).Format(time.RFC3339),
	})
	require.ErrorIs(t, err, apperror.ErrNotFound)
}

func TestRevokeDelegation(t *testing.T) {
	f := newDelegationFixture(t)
	now := time.Now()
	created := f.create(t, now, now.Add(24*time.Hour))

	// Only the delegator may revoke.
	err := f.svc.RevokeDelegation(context.Background(), f.delegateID.String(), created.ID)
	require.ErrorIs(t, err, apperror.ErrForbidden)

	require.NoError(t, f.svc.RevokeDelegation(context.Background(), f.delegatorID.String(), created.ID))
	require.Contains(t, f.audit.actions(), model.ActionRevokeDelegation)

	err = f.svc.RevokeDelegation(context.Background(), f.delegatorID.String(), created.ID)
	require.ErrorIs(t, err, apperror.ErrInvalidState)
}

func TestListDelegationsScopedToDelegator(t *testing.T) {
	f := newDelegationFixture(t)
	now := time.Now()
	f.create(t, now, now.Add(24*time.Hour))

	// A delegation owned by someone else stays out of the listing.
	otherID := f.users.add(model.User{Username: "cfo", Role: model.RoleCFO, IsActive: true})
	other := model.ApprovalDelegation{
		DelegatorID: otherID,
		DelegateID:  f.delegateID,
		StartDate:   now,
		EndDate:     now.Add(24 * time.Hour),
		IsActive:    true,
	}
	require.NoError(t, f.repo.Create(context.Background(), &other))

	listed, total, err := f.svc.ListDelegations(context.Background(), f.delegatorID.String(), 1, 20)
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, listed, 1)
	require.Equal(t, f.delegatorID.String(), listed[0].DelegatorID)
}
