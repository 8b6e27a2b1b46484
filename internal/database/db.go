package database

import (
	"log"

	"procurement-backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Vendor{},
		&model.Requisition{},
		&model.RequisitionItem{},
		&model.RequisitionApproval{},
		&model.ApprovalDelegation{},
		&model.RFQ{},
		&model.RFQItem{},
		&model.RFQVendor{},
		&model.RFQResponse{},
		&model.RFQResponseItem{},
		&model.PurchaseOrder{},
		&model.PurchaseOrderItem{},
		&model.GoodsReceipt{},
		&model.GoodsReceiptItem{},
		&model.VendorInvoice{},
		&model.VendorInvoiceItem{},
		&model.InvoicePayment{},
		&model.Notification{},
		&model.AuditLog{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
