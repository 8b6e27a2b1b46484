package repository

import (
	"context"

	"procurement-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GoodsReceiptListFilter narrows List results.
type GoodsReceiptListFilter struct {
	Status          string
	PurchaseOrderID *uuid.UUID
	Page            int
	Limit           int
}

type GoodsReceiptRepository interface {
	Create(ctx context.Context, grn *model.GoodsReceipt) error
	Update(ctx context.Context, grn *model.GoodsReceipt) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.GoodsReceipt, error)
	List(ctx context.Context, filter GoodsReceiptListFilter) ([]model.GoodsReceipt, int64, error)
	ReplaceItems(ctx context.Context, grnID uuid.UUID, items []model.GoodsReceiptItem) error
	UpdateItem(ctx context.Context, item *model.GoodsReceiptItem) error
	// ListAcceptedByPO returns up to limit most recently received
	// ACCEPTED/PARTIALLY_ACCEPTED receipts for the PO, items preloaded.
	// Used by the three-way matcher.
	ListAcceptedByPO(ctx context.Context, poID uuid.UUID, limit int) ([]model.GoodsReceipt, error)
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
}

type goodsReceiptRepository struct {
	db *gorm.DB
}

func NewGoodsReceiptRepository(db *gorm.DB) GoodsReceiptRepository {
	return &goodsReceiptRepository{db: db}
}

func (r *goodsReceiptRepository) Create(ctx context.Context, grn *model.GoodsReceipt) error {
	return GetDB(ctx, r.db).Create(grn).Error
}

func (r *goodsReceiptRepository) Update(ctx context.Context, grn *model.GoodsReceipt) error {
	return GetDB(ctx, r.db).Omit("Items").Save(grn).Error
}

func (r *goodsReceiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.GoodsReceipt, error) {
	var grn model.GoodsReceipt
	err := GetDB(ctx, r.db).Preload("Items").First(&grn, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &grn, nil
}

func (r *goodsReceiptRepository) List(ctx context.Context, filter GoodsReceiptListFilter) ([]model.GoodsReceipt, int64, error) {
	var grns []model.GoodsReceipt
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.GoodsReceipt{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PurchaseOrderID != nil {
		query = query.Where("purchase_order_id = ?", *filter.PurchaseOrderID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := query.Preload("Items").Order("received_at desc").
		Offset(offset).Limit(filter.Limit).Find(&grns).Error
	if err != nil {
		return nil, 0, err
	}

	return grns, total, nil
}

func (r *goodsReceiptRepository) ReplaceItems(ctx context.Context, grnID uuid.UUID, items []model.GoodsReceiptItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("goods_receipt_id = ?", grnID).Delete(&model.GoodsReceiptItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return db.Create(&items).Error
}

func (r *goodsReceiptRepository) UpdateItem(ctx context.Context, item *model.GoodsReceiptItem) error {
	return GetDB(ctx, r.db).Save(item).Error
}

func (r *goodsReceiptRepository) ListAcceptedByPO(ctx context.Context, poID uuid.UUID, limit int) ([]model.GoodsReceipt, error) {
	var grns []model.GoodsReceipt
	err := GetDB(ctx, r.db).
		Preload("Items").
		Where("purchase_order_id = ? AND status IN ?", poID,
			[]string{model.GRNStatusAccepted, model.GRNStatusPartiallyAccepted}).
		Order("received_at desc").
		Limit(limit).
		Find(&grns).Error
	if err != nil {
		return nil, err
	}
	return grns, nil
}

func (r *goodsReceiptRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.GoodsReceipt{}).
		Where("grn_number LIKE ?", prefix+"%").Count(&count).Error
	return count, err
}
