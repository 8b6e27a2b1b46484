package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus enum constants
const (
	POStatusDraft             = "DRAFT"
	POStatusApproved          = "APPROVED"
	POStatusSent              = "SENT"
	POStatusPartiallyReceived = "PARTIALLY_RECEIVED"
	POStatusReceived          = "RECEIVED"
	POStatusCompleted         = "COMPLETED"
	POStatusCancelled         = "CANCELLED"
)

// PurchaseOrder is issued to a vendor, optionally sourced from an approved
// requisition or an awarded RFQ response. All amount columns are derived:
// TotalAmount = Subtotal + TaxAmount + ShippingCost - DiscountAmount, and
// TotalAmount must never be negative.
type PurchaseOrder struct {
	ID             uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PONumber       string              `gorm:"type:varchar(30);uniqueIndex;not null" json:"po_number"`
	VendorID       uuid.UUID           `gorm:"type:uuid;not null;index" json:"vendor_id"`
	Vendor         *Vendor             `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	RequisitionID  *uuid.UUID          `gorm:"type:uuid;index" json:"requisition_id"`
	RFQResponseID  *uuid.UUID          `gorm:"type:uuid;index" json:"rfq_response_id"`
	Status         string              `gorm:"type:varchar(30);not null;default:'DRAFT';index" json:"status"`
	Subtotal       decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"subtotal"`
	TaxAmount      decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"tax_amount"`
	DiscountAmount decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"discount_amount"`
	ShippingCost   decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"shipping_cost"`
	TotalAmount    decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"total_amount"`
	ExpectedDate   *time.Time          `json:"expected_date"`
	DeliveryPlace  string              `gorm:"type:text" json:"delivery_place"`
	Note           string              `gorm:"type:text" json:"note"`
	CreatedByID    uuid.UUID           `gorm:"type:uuid;not null" json:"created_by_id"`
	ApprovedByID   *uuid.UUID          `gorm:"type:uuid" json:"approved_by_id"`
	ApprovedAt     *time.Time          `json:"approved_at"`
	Items          []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// PurchaseOrderItem carries a running ReceivedQty total maintained by goods
// receipt postings. It only decreases when a DRAFT PO's lines are replaced.
type PurchaseOrderItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PurchaseOrderID uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_order_id"`
	Description     string          `gorm:"type:varchar(255);not null" json:"description"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Unit            string          `gorm:"type:varchar(30);not null" json:"unit"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_price"`
	ReceivedQty     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"received_qty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// RemainingQty returns the quantity still open for receiving on this line.
func (i PurchaseOrderItem) RemainingQty() decimal.Decimal {
	return i.Quantity.Sub(i.ReceivedQty)
}
