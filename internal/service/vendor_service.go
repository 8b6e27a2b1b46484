package service

import (
	"context"
	"fmt"
	"time"

	"procurement-backend/internal/model"
	"procurement-backend/internal/repository"
	"procurement-backend/pkg/apperror"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateVendorRequest struct {
	Name          string `json:"name" binding:"required"`
	TaxCode       string `json:"tax_code"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email" binding:"omitempty,email"`
	Address       string `json:"address"`
	BankAccount   string `json:"bank_account"`
	PaymentTerms  string `json:"payment_terms"`
}

type UpdateVendorRequest struct {
	Name          *string `json:"name"`
	TaxCode       *string `json:"tax_code"`
	ContactPerson *string `json:"contact_person"`
	Phone         *string `json:"phone"`
	Email         *string `json:"email" binding:"omitempty,email"`
	Address       *string `json:"address"`
	BankAccount   *string `json:"bank_account"`
	PaymentTerms  *string `json:"payment_terms"`
	Rating        *int    `json:"rating" binding:"omitempty,min=0,max=5"`
}

type VendorResponse struct {
	ID            string `json:"id"`
	VendorCode    string `json:"vendor_code"`
	Name          string `json:"name"`
	TaxCode       string `json:"tax_code"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
	BankAccount   string `json:"bank_account"`
	PaymentTerms  string `json:"payment_terms"`
	Status        string `json:"status"`
	Rating        int    `json:"rating"`
	CreatedAt     string `json:"created_at"`
}

// --- Interface ---

type VendorService interface {
	CreateVendor(ctx context.Context, actorID string, req CreateVendorRequest) (VendorResponse, error)
	GetVendor(ctx context.Context, id string) (VendorResponse, error)
	ListVendors(ctx context.Context, status, search string, page, limit int) ([]VendorResponse, int64, error)
	UpdateVendor(ctx context.Context, actorID, id string, req UpdateVendorRequest) (VendorResponse, error)
	SetVendorStatus(ctx context.Context, actorID, id, status string) (VendorResponse, error)
	DeleteVendor(ctx context.Context, actorID, id string) error
}

type vendorService struct {
	vendorRepo repository.VendorRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
}

func NewVendorService(
	vendorRepo repository.VendorRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) VendorService {
	return &vendorService{vendorRepo: vendorRepo, auditRepo: auditRepo, txManager: txManager}
}

// --- Implementation ---

func (s *vendorService) CreateVendor(ctx context.Context, actorID string, req CreateVendorRequest) (VendorResponse, error) {
	vendor := model.Vendor{
		Name:          req.Name,
		TaxCode:       req.TaxCode,
		ContactPerson: req.ContactPerson,
		Phone:         req.Phone,
		Email:         req.Email,
		Address:       req.Address,
		BankAccount:   req.BankAccount,
		PaymentTerms:  req.PaymentTerms,
		Status:        model.VendorStatusActive,
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		code, numErr := generateDocNumber(txCtx, PrefixVendor, s.vendorRepo.CountByPrefix)
		if numErr != nil {
			return fmt.Errorf("failed to generate vendor code: %w", numErr)
		}
		vendor.VendorCode = code

		if createErr := s.vendorRepo.Create(txCtx, &vendor); createErr != nil {
			return fmt.Errorf("failed to create vendor: %w", createErr)
		}

		audit := auditEntry(actorID, model.ActionCreateVendor, vendor.ID.String(), vendor.Name, nil)
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return VendorResponse{}, err
	}

	return toVendorResponse(vendor), nil
}

func (s *vendorService) GetVendor(ctx context.Context, id string) (VendorResponse, error) {
	vendor, err := s.findVendor(ctx, id)
	if err != nil {
		return VendorResponse{}, err
	}
	return toVendorResponse(*vendor), nil
}

func (s *vendorService) ListVendors(ctx context.Context, status, search string, page, limit int) ([]VendorResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	vendors, total, err := s.vendorRepo.List(ctx, status, search, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch vendors: %w", err)
	}

	result := make([]VendorResponse, 0, len(vendors))
	for _, vendor := range vendors {
		result = append(result, toVendorResponse(vendor))
	}
	return result, total, nil
}

func (s *vendorService) UpdateVendor(ctx context.Context, actorID, id string, req UpdateVendorRequest) (VendorResponse, error) {
	vendor, err := s.findVendor(ctx, id)
	if err != nil {
		return VendorResponse{}, err
	}

	if req.Name != nil {
		vendor.Name = *req.Name
	}
	if req.TaxCode != nil {
		vendor.TaxCode = *req.TaxCode
	}
	if req.ContactPerson != nil {
		vendor.ContactPerson = *req.ContactPerson
	}
	if req.Phone != nil {
		vendor.Phone = *req.Phone
	}
	if req.Email != nil {
		vendor.Email = *req.Email
	}
	if req.Address != nil {
		vendor.Address = *req.Address
	}
	if req.BankAccount != nil {
		vendor.BankAccount = *req.BankAccount
	}
	if req.PaymentTerms != nil {
		vendor.PaymentTerms = *req.PaymentTerms
	}
	if req.Rating != nil {
		vendor.Rating = *req.Rating
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.vendorRepo.Update(txCtx, vendor); updateErr != nil {
			return fmt.Errorf("failed to update vendor: %w", updateErr)
		}
		audit := auditEntry(actorID, model.ActionUpdateVendor, vendor.ID.String(), vendor.Name, nil)
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return VendorResponse{}, err
	}

	return toVendorResponse(*vendor), nil
}

// SetVendorStatus moves a vendor between ACTIVE, INACTIVE and BLACKLISTED.
// Blacklisting does not touch in-flight documents; it only stops new RFQ
// invitations and purchase orders.
func (s *vendorService) SetVendorStatus(ctx context.Context, actorID, id, status string) (VendorResponse, error) {
	switch status {
	case model.VendorStatusActive, model.VendorStatusInactive, model.VendorStatusBlacklisted:
	default:
		return VendorResponse{}, fmt.Errorf("%w: unknown vendor status %q", apperror.ErrValidation, status)
	}

	vendor, err := s.findVendor(ctx, id)
	if err != nil {
		return VendorResponse{}, err
	}
	if vendor.Status == status {
		return toVendorResponse(*vendor), nil
	}

	vendor.Status = status
	action := model.ActionUpdateVendor
	if status == model.VendorStatusBlacklisted {
		action = model.ActionBlacklistVendor
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if updateErr := s.vendorRepo.Update(txCtx, vendor); updateErr != nil {
			return fmt.Errorf("failed to update vendor: %w", updateErr)
		}
		audit := auditEntry(actorID, action, vendor.ID.String(), vendor.Name, map[string]any{"status": status})
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
	if err != nil {
		return VendorResponse{}, err
	}

	return toVendorResponse(*vendor), nil
}

func (s *vendorService) DeleteVendor(ctx context.Context, actorID, id string) error {
	vendor, err := s.findVendor(ctx, id)
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if deleteErr := s.vendorRepo.Delete(txCtx, vendor.ID); deleteErr != nil {
			return fmt.Errorf("failed to delete vendor: %w", deleteErr)
		}
		audit := auditEntry(actorID, model.ActionDeleteVendor, vendor.ID.String(), vendor.Name, nil)
		if auditErr := s.auditRepo.Log(txCtx, audit); auditErr != nil {
			return fmt.Errorf("failed to write audit log: %w", auditErr)
		}
		return nil
	})
}

// --- Helpers ---

func (s *vendorService) findVendor(ctx context.Context, id string) (*model.Vendor, error) {
	vendorID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid vendor id", apperror.ErrValidation)
	}
	vendor, err := s.vendorRepo.FindByID(ctx, vendorID)
	if err != nil {
		return nil, fmt.Errorf("vendor not found: %w", apperror.ErrNotFound)
	}
	return vendor, nil
}

func toVendorResponse(vendor model.Vendor) VendorResponse {
	return VendorResponse{
		ID:            vendor.ID.String(),
		VendorCode:    vendor.VendorCode,
		Name:          vendor.Name,
		TaxCode:       vendor.TaxCode,
		ContactPerson: vendor.ContactPerson,
		Phone:         vendor.Phone,
		Email:         vendor.Email,
		Address:       vendor.Address,
		BankAccount:   vendor.BankAccount,
		PaymentTerms:  vendor.PaymentTerms,
		Status:        vendor.Status,
		Rating:        vendor.Rating,
		CreatedAt:     vendor.CreatedAt.Format(time.RFC3339),
	}
}
