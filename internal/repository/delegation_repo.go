package repository

import (
	"context"
	"time"

	"procurement-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type DelegationRepository interface {
	Create(ctx context.Context, delegation *model.ApprovalDelegation) error
	Update(ctx context.Context, delegation *model.ApprovalDelegation) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ApprovalDelegation, error)
	// FindActiveOverlapping returns active delegations for the delegator
	// whose [start_date, end_date] window intersects [start, end].
	FindActiveOverlapping(ctx context.Context, delegatorID uuid.UUID, start, end time.Time) ([]model.ApprovalDelegation, error)
	// FindActiveAt returns the single active delegation covering `at`,
	// or gorm.ErrRecordNotFound.
	FindActiveAt(ctx context.Context, delegatorID uuid.UUID, at time.Time) (*model.ApprovalDelegation, error)
	ListByDelegator(ctx context.Context, delegatorID uuid.UUID, page, limit int) ([]model.ApprovalDelegation, int64, error)
}

type delegationRepository struct {
	db *gorm.DB
}

func NewDelegationRepository(db *gorm.DB) DelegationRepository {
	return &delegationRepository{db: db}
}

func (r *delegationRepository) Create(ctx context.Context, delegation *model.ApprovalDelegation) error {
	return GetDB(ctx, r.db).Create(delegation).Error
}

func (r *delegationRepository) Update(ctx context.Context, delegation *model.ApprovalDelegation) error {
	return GetDB(ctx, r.db).Save(delegation).Error
}

func (r *delegationRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ApprovalDelegation, error) {
	var delegation model.ApprovalDelegation
	if err := GetDB(ctx, r.db).First(&delegation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &delegation, nil
}

func (r *delegationRepository) FindActiveOverlapping(ctx context.Context, delegatorID uuid.UUID, start, end time.Time) ([]model.ApprovalDelegation, error) {
	var delegations []model.ApprovalDelegation
	err := GetDB(ctx, r.db).
		Where("delegator_id = ? AND is_active = ? AND start_date <= ? AND end_date >= ?",
			delegatorID, true, end, start).
		Find(&delegations).Error
	if err != nil {
		return nil, err
	}
	return delegations, nil
}

func (r *delegationRepository) FindActiveAt(ctx context.Context, delegatorID uuid.UUID, at time.Time) (*model.ApprovalDelegation, error) {
	var delegation model.ApprovalDelegation
	err := GetDB(ctx, r.db).
		Where("delegator_id = ? AND is_active = ? AND start_date <= ? AND end_date >= ?",
			delegatorID, true, at, at).
		Order("created_at desc").
		First(&delegation).Error
	if err != nil {
		return nil, err
	}
	return &delegation, nil
}

func (r *delegationRepository) ListByDelegator(ctx context.Context, delegatorID uuid.UUID, page, limit int) ([]model.ApprovalDelegation, int64, error) {
	var delegations []model.ApprovalDelegation
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.ApprovalDelegation{}).Where("delegator_id = ?", delegatorID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Preload("Delegate").Order("created_at desc").
		Offset(offset).Limit(limit).Find(&delegations).Error
	if err != nil {
		return nil, 0, err
	}

	return delegations, total, nil
}
