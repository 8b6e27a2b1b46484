package repository

import (
	"context"

	"procurement-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RFQListFilter narrows List results.
type RFQListFilter struct {
	Status string
	Page   int
	Limit  int
}

type RFQRepository interface {
	Create(ctx context.Context, rfq *model.RFQ) error
	Update(ctx context.Context, rfq *model.RFQ) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RFQ, error)
	List(ctx context.Context, filter RFQListFilter) ([]model.RFQ, int64, error)
	ReplaceItems(ctx context.Context, rfqID uuid.UUID, items []model.RFQItem) error
	AddVendor(ctx context.Context, invitation *model.RFQVendor) error
	FindVendor(ctx context.Context, rfqID, vendorID uuid.UUID) (*model.RFQVendor, error)
	CreateResponse(ctx context.Context, response *model.RFQResponse) error
	UpdateResponse(ctx context.Context, response *model.RFQResponse) error
	FindResponseByID(ctx context.Context, id uuid.UUID) (*model.RFQResponse, error)
	FindResponseByVendor(ctx context.Context, rfqID, vendorID uuid.UUID) (*model.RFQResponse, error)
	ListResponses(ctx context.Context, rfqID uuid.UUID) ([]model.RFQResponse, error)
	ReplaceResponseItems(ctx context.Context, responseID uuid.UUID, items []model.RFQResponseItem) error
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
}

type rfqRepository struct {
	db *gorm.DB
}

func NewRFQRepository(db *gorm.DB) RFQRepository {
	return &rfqRepository{db: db}
}

func (r *rfqRepository) Create(ctx context.Context, rfq *model.RFQ) error {
	return GetDB(ctx, r.db).Create(rfq).Error
}

func (r *rfqRepository) Update(ctx context.Context, rfq *model.RFQ) error {
	return GetDB(ctx, r.db).Omit("Items", "Vendors", "Responses").Save(rfq).Error
}

func (r *rfqRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.RFQ, error) {
	var rfq model.RFQ
	err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Vendors.Vendor").
		Preload("Responses.Items").
		Preload("Responses.Vendor").
		First(&rfq, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &rfq, nil
}

func (r *rfqRepository) List(ctx context.Context, filter RFQListFilter) ([]model.RFQ, int64, error) {
	var rfqs []model.RFQ
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.RFQ{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	err := query.Preload("Items").Order("created_at desc").
		Offset(offset).Limit(filter.Limit).Find(&rfqs).Error
	if err != nil {
		return nil, 0, err
	}

	return rfqs, total, nil
}

func (r *rfqRepository) ReplaceItems(ctx context.Context, rfqID uuid.UUID, items []model.RFQItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("rfq_id = ?", rfqID).Delete(&model.RFQItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return db.Create(&items).Error
}

func (r *rfqRepository) AddVendor(ctx context.Context, invitation *model.RFQVendor) error {
	return GetDB(ctx, r.db).Create(invitation).Error
}

func (r *rfqRepository) FindVendor(ctx context.Context, rfqID, vendorID uuid.UUID) (*model.RFQVendor, error) {
	var invitation model.RFQVendor
	err := GetDB(ctx, r.db).First(&invitation, "rfq_id = ? AND vendor_id = ?", rfqID, vendorID).Error
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *rfqRepository) CreateResponse(ctx context.Context, response *model.RFQResponse) error {
	return GetDB(ctx, r.db).Create(response).Error
}

func (r *rfqRepository) UpdateResponse(ctx context.Context, response *model.RFQResponse) error {
	return GetDB(ctx, r.db).Omit("Items").Save(response).Error
}

func (r *rfqRepository) FindResponseByID(ctx context.Context, id uuid.UUID) (*model.RFQResponse, error) {
	var response model.RFQResponse
	err := GetDB(ctx, r.db).Preload("Items").First(&response, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *rfqRepository) FindResponseByVendor(ctx context.Context, rfqID, vendorID uuid.UUID) (*model.RFQResponse, error) {
	var response model.RFQResponse
	err := GetDB(ctx, r.db).Preload("Items").
		First(&response, "rfq_id = ? AND vendor_id = ?", rfqID, vendorID).Error
	if err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *rfqRepository) ListResponses(ctx context.Context, rfqID uuid.UUID) ([]model.RFQResponse, error) {
	var responses []model.RFQResponse
	err := GetDB(ctx, r.db).Preload("Items").Preload("Vendor").
		Where("rfq_id = ?", rfqID).Order("submitted_at asc").Find(&responses).Error
	if err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *rfqRepository) ReplaceResponseItems(ctx context.Context, responseID uuid.UUID, items []model.RFQResponseItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("rfq_response_id = ?", responseID).Delete(&model.RFQResponseItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	return db.Create(&items).Error
}

func (r *rfqRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.RFQ{}).
		Where("rfq_number LIKE ?", prefix+"%").Count(&count).Error
	return count, err
}
