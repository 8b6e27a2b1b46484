package repository

import (
	"context"

	"procurement-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VendorRepository interface {
	Create(ctx context.Context, vendor *model.Vendor) error
	Update(ctx context.Context, vendor *model.Vendor) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Vendor, error)
	List(ctx context.Context, status, search string, page, limit int) ([]model.Vendor, int64, error)
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
}

type vendorRepository struct {
	db *gorm.DB
}

func NewVendorRepository(db *gorm.DB) VendorRepository {
	return &vendorRepository{db: db}
}

func (r *vendorRepository) Create(ctx context.Context, vendor *model.Vendor) error {
	return GetDB(ctx, r.db).Create(vendor).Error
}

func (r *vendorRepository) Update(ctx context.Context, vendor *model.Vendor) error {
	return GetDB(ctx, r.db).Save(vendor).Error
}

func (r *vendorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Vendor{}).Error
}

func (r *vendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Vendor, error) {
	var vendor model.Vendor
	if err := GetDB(ctx, r.db).First(&vendor, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &vendor, nil
}

func (r *vendorRepository) List(ctx context.Context, status, search string, page, limit int) ([]model.Vendor, int64, error) {
	var vendors []model.Vendor
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Vendor{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if search != "" {
		query = query.Where("name ILIKE ? OR vendor_code ILIKE ? OR email ILIKE ?",
			"%"+search+"%", "%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&vendors).Error; err != nil {
		return nil, 0, err
	}

	return vendors, total, nil
}

func (r *vendorRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Vendor{}).
		Where("vendor_code LIKE ?", prefix+"%").Count(&count).Error
	return count, err
}
