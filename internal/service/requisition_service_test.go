package service

import (
	"context"
	"strings"
	"testing"

	"procurement-backend/internal/model"
	"procurement-backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type requisitionFixture struct {
	svc      RequisitionService
	reqRepo  *memRequisitionRepo
	users    *memUserRepo
	audit    *memAuditRepo
	notifier *recordingNotifier

	requesterID uuid.UUID
	headID      uuid.UUID
	cfoID       uuid.UUID
}

func newRequisitionFixture(t *testing.T) *requisitionFixture {
	t.Helper()
	f := &requisitionFixture{
		reqRepo:  newMemRequisitionRepo(),
		users:    &memUserRepo{},
		audit:    &memAuditRepo{},
		notifier: &recordingNotifier{},
	}
	f.requesterID = f.users.add(model.User{Username: "staff", Role: model.RoleStaff, Department: "IT", IsActive: true})
	f.headID = f.users.add(model.User{Username: "head", Role: model.RoleDepartmentHead, Department: "IT", IsActive: true})
	f.cfoID = f.users.add(model.User{Username: "cfo", Role: model.RoleCFO, IsActive: true})

	router := NewApprovalRouter(f.users, &memDelegationRepo{})
	f.svc = NewRequisitionService(f.reqRepo, f.audit, router, f.notifier, passthroughTxManager{})
	return f
}

func (f *requisitionFixture) create(t *testing.T, items ...RequisitionItemRequest) RequisitionResponse {
	t.Helper()
	resp, err := f.svc.CreateRequisition(context.Background(), f.requesterID.String(), CreateRequisitionRequest{
		Department:    "IT",
		Justification: "replacement hardware",
		Items:         items,
	})
	require.NoError(t, err)
	return resp
}

func laptopItem(qty, price string) RequisitionItemRequest {
	return RequisitionItemRequest{Description: "Laptop", Quantity: qty, Unit: "pcs", EstimatedPrice: price}
}

func TestCreateRequisitionComputesTotals(t *testing.T) {
	f := newRequisitionFixture(t)

	resp := f.create(t,
		RequisitionItemRequest{Description: "Laptop", Quantity: "2", Unit: "pcs", EstimatedPrice: "3.5"},
		RequisitionItemRequest{Description: "Mouse", Quantity: "4", Unit: "pcs", EstimatedPrice: "1.25"},
	)

	require.Equal(t, model.RequisitionStatusDraft, resp.Status)
	require.Equal(t, "12.0000", resp.TotalEstimate)
	require.Equal(t, 1, resp.CurrentStage)
	require.True(t, strings.HasPrefix(resp.RequisitionNo, "REQ-"))
	require.Len(t, resp.Items, 2)
	require.Equal(t, "7.0000", resp.Items[0].TotalPrice)
	require.Contains(t, f.audit.actions(), model.ActionCreateRequisition)
}

func TestCreateRequisitionRejectsNonPositiveQuantity(t *testing.T) {
	f := newRequisitionFixture(t)

	_, err := f.svc.CreateRequisition(context.Background(), f.requesterID.String(), CreateRequisitionRequest{
		Department: "IT",
		Items:      []RequisitionItemRequest{laptopItem("0", "100")},
	})
	require.ErrorIs(t, err, apperror.ErrValidation)

	_, err = f.svc.CreateRequisition(context.Background(), f.requesterID.String(), CreateRequisitionRequest{
		Department: "IT",
		Items:      []RequisitionItemRequest{laptopItem("two", "100")},
	})
	require.ErrorIs(t, err, apperror.ErrValidation)
}

func TestSubmitRoutesToDepartmentHead(t *testing.T) {
	f := newRequisitionFixture(t)
	created := f.create(t, laptopItem("2", "100"))

	resp, err := f.svc.SubmitRequisition(context.Background(), f.requesterID.String(), created.ID)
	require.NoError(t, err)
	require.Equal(t, model.RequisitionStatusPendingApproval, resp.Status)
	require.Len(t, resp.Approvals, 1)
	require.Equal(t, 1, resp.Approvals[0].Stage)
	require.Equal(t, f.headID.String(), resp.Approvals[0].ApproverID)
	require.Equal(t, model.ApprovalPending, resp.Approvals[0].Status)

	require.Len(t, f.notifier.sent, 1)
	require.Equal(t, f.headID, f.notifier.sent[0].UserID)
	require.Equal(t, model.NotifyApprovalRequested, f.notifier.sent[0].Type)
}

func TestSubmitByNonRequesterForbidden(t *testing.T) {
	f := newRequisitionFixture(t)
	created := f.create(t, laptopItem("1", "50"))

	_, err := f.svc.SubmitRequisition(context.Background(), f.headID.String(), created.ID)
	require.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestSubmitWithoutApproverLeavesDraft(t *testing.T) {
	f := newRequisitionFixture(t)
	created := f.create(t, laptopItem("1", "50"))

	// Deactivate every candidate approver so the routing chain exhausts.
	for _, u := range f.users.users {
		if u.ID != f.requesterID {
			u.IsActive = false
		}
	}

	_, err := f.svc.SubmitRequisition(context.Background(), f.requesterID.String(), created.ID)
	require.ErrorIs(t, err, apperror.ErrNoApproverFound)

	refetched, err := f.svc.GetRequisition(context.Background(), created.ID)
	require.NoError(t, err)
	require.Equal(t, model.RequisitionStatusDraft, refetched.Status)
}

func TestLowValueRequisitionApprovedInOneStage(t *testing.T) {
	f := newRequisitionFixture(t)
	created := f.create(t, laptopItem("2", "100"))
	_, err := f.svc.SubmitRequisition(context.Background(), f.requesterID.String(), created.ID)
	require.NoError(t, err)

	resp, err := f.svc.ApproveRequisition(context.Background(), f.headID.String(), created.ID, ApprovalDecisionRequest{Comments: "ok"})
	require.NoError(t, err)
	require.Equal(t, model.RequisitionStatusApproved, resp.Status)
	require.Equal(t, model.ApprovalApproved, resp.Approvals[0].Status)
	require.NotNil(t, resp.Approvals[0].ActedAt)

	last := f.notifier.sent[len(f.notifier.sent)-1]
	require.Equal(t, f.requesterID, last.UserID)
	require.Equal(t, model.NotifyApprovalDecided, last.Type)
}

func TestHighValueRequisitionNeedsFinancialSignOff(t *testing.T) {
	f := newRequisitionFixture(t)
	// 10 * 1000 sits exactly on the financial threshold.
	created := f.create(t, laptopItem("10", "1000"))
	_, err := f.svc.SubmitRequisition(context.Background(), f.requesterID.String(), created.ID)
	require.NoError(t, err)

	resp, err := f.svc.ApproveRequisition(context.Background(), f.headID.String(), created.ID, ApprovalDecisionRequest{})
	require.NoError(t, err)
	require.Equal(t, model.RequisitionStatusPendingApproval, resp.Status)
	require.Equal(t, 2, resp.CurrentStage)
	require.Len(t, resp.Approvals, 2)
	require.Equal(t, f.cfoID.String(), resp.Approvals[1].ApproverID)
	require.Equal(t, model.ApprovalPending, resp.Approvals[1].Status)

	// The financial approver is notified, not the requester.
	last := f.notifier.sent[len(f.notifier.sent)-1]
	require.Equal(t, f.cfoID, last.UserID)
	require.Equal(t, model.NotifyApprovalRequested, last.Type)

	resp, err = f.svc.ApproveRequisition(context.Background(), f.cfoID.String(), created.ID, ApprovalDecisionRequest{})
	require.NoError(t, err)
	require.Equal(t, model.RequisitionStatusApproved, resp.Status)
}

func TestApproveByWrongApproverForbidden(t *testing.T) {
	f := newRequisitionFixture(t)
	created := f.create(t, laptopItem("1", "100"))
	_, err := f.svc.SubmitRequisition(context.Background(), f.requesterID.String(), created.ID)
	require.NoError(t, err)

	_, err = f.svc.ApproveRequisition(context.Background(), f.cfoID.String(), created.ID, ApprovalDecisionRequest{})
	require.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestApproveDraftRequisitionInvalidState(t *testing.T) {
	f := newRequisitionFixture(t)
	created := f.create(t, laptopItem("1", "100"))

	_, err := f.svc.ApproveRequisition(context.Background(), f.headID.String(), created.ID, ApprovalDecisionRequest{})
	require.ErrorIs(t, err, apperror.ErrInvalidState)
}

func TestRejectRequisitionTerminates(t *testing.T) {
	f := newRequisitionFixture(t)
	created := f.create(t, laptopItem("10", "1000"))
	_, err := f.svc.SubmitRequisition(context.Background(), f.requesterID.String(), created.ID)
	require.NoError(t, err)

	resp, err := f.svc.RejectRequisition(context.Background(), f.headID.String(), created.ID, ApprovalDecisionRequest{Comments: "over budget"})
	require.NoError(t, err)
	require.Equal(t, model.RequisitionStatusRejected, resp.Status)
	require.Equal(t, model.ApprovalRejected, resp.Approvals[0].Status)
	require.Contains(t, f.audit.actions(), model.ActionRejectRequisition)

	last := f.notifier.sent[len(f.notifier.sent)-1]
	require.Equal(t, f.requesterID, last.UserID)

	// A rejected requisition cannot be approved afterwards.
	_, err = f.svc.ApproveRequisition(context.Background(), f.headID.String(), created.ID, ApprovalDecisionRequest{})
	require.ErrorIs(t, err, apperror.ErrInvalidState)
}

func TestUpdateRequisitionRecomputesTotal(t *testing.T) {
	f := newRequisitionFixture(t)
	created := f.create(t, laptopItem("2", "100"))

	resp, err := f.svc.UpdateRequisition(context.Background(), f.requesterID.String(), created.ID, UpdateRequisitionRequest{
		Items: []RequisitionItemRequest{laptopItem("3", "200")},
	})
	require.NoError(t, err)
	require.Equal(t, "600.0000", resp.TotalEstimate)
	require.Len(t, resp.Items, 1)
}

func TestUpdateSubmittedRequisitionInvalidState(t *testing.T) {
	f := newRequisitionFixture(t)
	created := f.create(t, laptopItem("2", "100"))
	_, err := f.svc.SubmitRequisition(context.Background(), f.requesterID.String(), created.ID)
	require.NoError(t, err)

	_, err = f.svc.UpdateRequisition(context.Background(), f.requesterID.String(), created.ID, UpdateRequisitionRequest{
		Items: []RequisitionItemRequest{laptopItem("1", "1")},
	})
	require.ErrorIs(t, err, apperror.ErrInvalidState)
}

func TestCancelRequisition(t *testing.T) {
	f := newRequisitionFixture(t)
	created := f.create(t, laptopItem("1", "10"))

	resp, err := f.svc.CancelRequisition(context.Background(), f.requesterID.String(), created.ID)
	require.NoError(t, err)
	require.Equal(t, model.RequisitionStatusCancelled, resp.Status)

	// Cancelling again hits the terminal status.
	_, err = f.svc.CancelRequisition(context.Background(), f.requesterID.String(), created.ID)
	require.ErrorIs(t, err, apperror.ErrInvalidState)
}

func TestListRequisitionsByPendingApprover(t *testing.T) {
	f := newRequisitionFixture(t)
	created := f.create(t, laptopItem("1", "10"))
	_, err := f.svc.SubmitRequisition(context.Background(), f.requesterID.String(), created.ID)
	require.NoError(t, err)

	result, total, err := f.svc.ListRequisitions(context.Background(), RequisitionFilter{ApproverID: f.headID.String()})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, created.ID, result[0].ID)

	_, total, err = f.svc.ListRequisitions(context.Background(), RequisitionFilter{ApproverID: f.cfoID.String()})
	require.NoError(t, err)
	require.EqualValues(t, 0, total)
}
