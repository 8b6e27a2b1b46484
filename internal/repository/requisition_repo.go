package repository

import (
	"context"
	"errors"

	"procurement-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequisitionListFilter narrows List results.
type RequisitionListFilter struct {
	Status      string
	Department  string
	RequesterID *uuid.UUID
	ApproverID  *uuid.UUID // requisitions with a PENDING approval row for this user
	Page        int
	Limit       int
}

type RequisitionRepository interface {
	Create(ctx context.Context, req *model.Requisition) error
	Update(ctx context.Context, req *model.Requisition) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Requisition, error)
	List(ctx context.Context, filter RequisitionListFilter) ([]model.Requisition, int64, error)
	// ReplaceItems deletes the requisition's items and inserts the new set.
	// Callers recompute TotalEstimate in the same transaction.
	ReplaceItems(ctx context.Context, reqID uuid.UUID, items []model.RequisitionItem) error
	// UpsertApproval keeps at most one row per (requisition, stage):
	// an existing stage row is overwritten, otherwise a new one is inserted.
	UpsertApproval(ctx context.Context, approval *model.RequisitionApproval) error
	UpdateApproval(ctx context.Context, approval *model.RequisitionApproval) error
	FindApproval(ctx context.Context, reqID uuid.UUID, stage int) (*model.RequisitionApproval, error)
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
}

type requisitionRepository struct {
	db *gorm.DB
}

func NewRequisitionRepository(db *gorm.DB) RequisitionRepository {
	return &requisitionRepository{db: db}
}

func (r *requisitionRepository) Create(ctx context.Context, req *model.Requisition) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requisitionRepository) Update(ctx context.Context, req *model.Requisition) error {
	return GetDB(ctx, r.db).Omit("Items", "Approvals").Save(req).Error
}

func (r *requisitionRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Requisition, error) {
	var req model.Requisition
	err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Approvals", func(db *gorm.DB) *gorm.DB { return db.Order("stage asc") }).
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requisitionRepository) List(ctx context.Context, filter RequisitionListFilter) ([]model.Requisition, int64, error) {
	var reqs []model.Requisition
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Requisition{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Department != "" {
		query = query.Where("department = ?", filter.Department)
	}
	if filter.RequesterID != nil {
		query = query.Where("requester_id = ?", *filter.RequesterID)
	}
	if filter.ApproverID != nil {
		query = query.Where(
			"id IN (SELECT requisition_id FROM requisition_approvals WHERE approver_id = ? AND status = ?)",
			*filter.ApproverID, model.ApprovalPending)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Preload("Items").Order("created_at desc").
		Offset(offset).Limit(filter.Limit).Find(&reqs).Error; err != nil {
		return nil, 0, err
	}

	return reqs, total, nil
}

func (r *requisitionRepository) ReplaceItems(ctx context.Context, reqID uuid.UUID, items []model.RequisitionItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("requisition_id = ?", reqID).Delete(&model.RequisitionItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return db.Create(&items).Error
}

func (r *requisitionRepository) UpsertApproval(ctx context.Context, approval *model.RequisitionApproval) error {
	db := GetDB(ctx, r.db)
	var existing model.RequisitionApproval
	err := db.First(&existing, "requisition_id = ? AND stage = ?",
		approval.RequisitionID, approval.Stage).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return db.Create(approval).Error
	}
	if err != nil {
		return err
	}
	approval.ID = existing.ID
	approval.CreatedAt = existing.CreatedAt
	return db.Save(approval).Error
}

func (r *requisitionRepository) UpdateApproval(ctx context.Context, approval *model.RequisitionApproval) error {
	return GetDB(ctx, r.db).Save(approval).Error
}

func (r *requisitionRepository) FindApproval(ctx context.Context, reqID uuid.UUID, stage int) (*model.RequisitionApproval, error) {
	var approval model.RequisitionApproval
	err := GetDB(ctx, r.db).First(&approval, "requisition_id = ? AND stage = ?", reqID, stage).Error
	if err != nil {
		return nil, err
	}
	return &approval, nil
}

func (r *requisitionRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Requisition{}).
		Where("requisition_no LIKE ?", prefix+"%").Count(&count).Error
	return count, err
}
