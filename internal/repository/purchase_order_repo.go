package repository

import (
	"context"

	"procurement-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PurchaseOrderListFilter narrows List results.
type PurchaseOrderListFilter struct {
	Status   string
	VendorID *uuid.UUID
	Page     int
	Limit    int
}

type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *model.PurchaseOrder) error
	Update(ctx context.Context, po *model.PurchaseOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	List(ctx context.Context, filter PurchaseOrderListFilter) ([]model.PurchaseOrder, int64, error)
	ReplaceItems(ctx context.Context, poID uuid.UUID, items []model.PurchaseOrderItem) error
	// FindItemByID loads a single PO line; the reconciliation engine reads
	// the live row inside the transaction before adjusting ReceivedQty.
	FindItemByID(ctx context.Context, itemID uuid.UUID) (*model.PurchaseOrderItem, error)
	UpdateItem(ctx context.Context, item *model.PurchaseOrderItem) error
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
}

type purchaseOrderRepository struct {
	db *gorm.DB
}

func NewPurchaseOrderRepository(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepository{db: db}
}

func (r *purchaseOrderRepository) Create(ctx context.Context, po *model.PurchaseOrder) error {
	return GetDB(ctx, r.db).Create(po).Error
}

func (r *purchaseOrderRepository) Update(ctx context.Context, po *model.PurchaseOrder) error {
	return GetDB(ctx, r.db).Omit("Items").Save(po).Error
}

func (r *purchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var po model.PurchaseOrder
	err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Vendor").
		First(&po, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &po, nil
}

func (r *purchaseOrderRepository) List(ctx context.Context, filter PurchaseOrderListFilter) ([]model.PurchaseOrder, int64, error) {
	var pos []model.PurchaseOrder
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.PurchaseOrder{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.VendorID != nil {
		query = query.Where("vendor_id = ?", *filter.VendorID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := query.Preload("Items").Preload("Vendor").Order("created_at desc").
		Offset(offset).Limit(filter.Limit).Find(&pos).Error
	if err != nil {
		return nil, 0, err
	}

	return pos, total, nil
}

func (r *purchaseOrderRepository) ReplaceItems(ctx context.Context, poID uuid.UUID, items []model.PurchaseOrderItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("purchase_order_id = ?", poID).Delete(&model.PurchaseOrderItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return db.Create(&items).Error
}

func (r *purchaseOrderRepository) FindItemByID(ctx context.Context, itemID uuid.UUID) (*model.PurchaseOrderItem, error) {
	var item model.PurchaseOrderItem
	if err := GetDB(ctx, r.db).First(&item, "id = ?", itemID).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *purchaseOrderRepository) UpdateItem(ctx context.Context, item *model.PurchaseOrderItem) error {
	return GetDB(ctx, r.db).Save(item).Error
}

func (r *purchaseOrderRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.PurchaseOrder{}).
		Where("po_number LIKE ?", prefix+"%").Count(&count).Error
	return count, err
}
