package repository

import (
	"context"

	"procurement-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VendorInvoiceListFilter narrows List results.
type VendorInvoiceListFilter struct {
	MatchStatus     string
	PaymentStatus   string
	VendorID        *uuid.UUID
	PurchaseOrderID *uuid.UUID
	Page            int
	Limit           int
}

type VendorInvoiceRepository interface {
	Create(ctx context.Context, invoice *model.VendorInvoice) error
	Update(ctx context.Context, invoice *model.VendorInvoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.VendorInvoice, error)
	List(ctx context.Context, filter VendorInvoiceListFilter) ([]model.VendorInvoice, int64, error)
	CreatePayment(ctx context.Context, payment *model.InvoicePayment) error
}

type vendorInvoiceRepository struct {
	db *gorm.DB
}

func NewVendorInvoiceRepository(db *gorm.DB) VendorInvoiceRepository {
	return &vendorInvoiceRepository{db: db}
}

func (r *vendorInvoiceRepository) Create(ctx context.Context, invoice *model.VendorInvoice) error {
	return GetDB(ctx, r.db).Create(invoice).Error
}

func (r *vendorInvoiceRepository) Update(ctx context.Context, invoice *model.VendorInvoice) error {
	return GetDB(ctx, r.db).Omit("Items", "Payments").Save(invoice).Error
}

func (r *vendorInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.VendorInvoice, error) {
	var invoice model.VendorInvoice
	err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Payments").
		Preload("Vendor").
		First(&invoice, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *vendorInvoiceRepository) List(ctx context.Context, filter VendorInvoiceListFilter) ([]model.VendorInvoice, int64, error) {
	var invoices []model.VendorInvoice
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.VendorInvoice{})
	if filter.MatchStatus != "" {
		query = query.Where("match_status = ?", filter.MatchStatus)
	}
	if filter.PaymentStatus != "" {
		query = query.Where("payment_status = ?", filter.PaymentStatus)
	}
	if filter.VendorID != nil {
		query = query.Where("vendor_id = ?", *filter.VendorID)
	}
	if filter.PurchaseOrderID != nil {
		query = query.Where("purchase_order_id = ?", *filter.PurchaseOrderID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := query.Preload("Items").Preload("Vendor").Order("created_at desc").
		Offset(offset).Limit(filter.Limit).Find(&invoices).Error
	if err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

func (r *vendorInvoiceRepository) CreatePayment(ctx context.Context, payment *model.InvoicePayment) error {
	return GetDB(ctx, r.db).Create(payment).Error
}
