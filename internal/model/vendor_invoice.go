package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MatchStatus enum constants for three-way matching
const (
	MatchStatusPending      = "PENDING"
	MatchStatusMatched      = "MATCHED"
	MatchStatusPartialMatch = "PARTIAL_MATCH"
	MatchStatusMismatch     = "MISMATCH"
	MatchStatusDisputed     = "DISPUTED"
)

// PaymentStatus enum constants. The status is a pure function of
// (TotalAmount, PaidAmount, DueDate, now), see PaymentStatusFor.
const (
	PaymentStatusUnpaid        = "UNPAID"
	PaymentStatusPartiallyPaid = "PARTIALLY_PAID"
	PaymentStatusPaid          = "PAID"
	PaymentStatusOverdue       = "OVERDUE"
)

// VendorInvoice is settled against a purchase order and its accepted goods
// receipts via three-way matching. PaidAmount never exceeds TotalAmount.
type VendorInvoice struct {
	ID                 uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	InvoiceNumber      string              `gorm:"type:varchar(50);not null;index" json:"invoice_number"`
	VendorID           uuid.UUID           `gorm:"type:uuid;not null;index" json:"vendor_id"`
	Vendor             *Vendor             `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	PurchaseOrderID    *uuid.UUID          `gorm:"type:uuid;index" json:"purchase_order_id"`
	Subtotal           decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"subtotal"`
	TaxAmount          decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"tax_amount"`
	TotalAmount        decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"total_amount"`
	InvoiceDate        time.Time           `gorm:"not null" json:"invoice_date"`
	DueDate            time.Time           `gorm:"not null" json:"due_date"`
	MatchStatus        string              `gorm:"type:varchar(30);not null;default:'PENDING';index" json:"match_status"`
	PriceVariance      decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"price_variance"`
	QuantityVariance   decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"quantity_variance"`
	ApprovedForPayment bool                `gorm:"default:false" json:"approved_for_payment"`
	PaymentApproverID  *uuid.UUID          `gorm:"type:uuid" json:"payment_approver_id"`
	PaymentApprovedAt  *time.Time          `json:"payment_approved_at"`
	PaidAmount         decimal.Decimal     `gorm:"type:decimal(18,4);not null;default:0" json:"paid_amount"`
	PaymentStatus      string              `gorm:"type:varchar(20);not null;default:'UNPAID';index" json:"payment_status"`
	Note               string              `gorm:"type:text" json:"note"`
	Items              []VendorInvoiceItem `gorm:"foreignKey:VendorInvoiceID;constraint:OnDelete:CASCADE" json:"items"`
	Payments           []InvoicePayment    `gorm:"foreignKey:VendorInvoiceID;constraint:OnDelete:CASCADE" json:"payments,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

// VendorInvoiceItem optionally references the PO line it bills. When
// POItemID is nil the matcher falls back to a case-insensitive description
// match, which can silently pair similarly named lines.
type VendorInvoiceItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VendorInvoiceID uuid.UUID       `gorm:"type:uuid;not null;index" json:"vendor_invoice_id"`
	POItemID        *uuid.UUID      `gorm:"type:uuid;index" json:"po_item_id"`
	Description     string          `gorm:"type:varchar(255);not null" json:"description"`
	Quantity        decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Unit            string          `gorm:"type:varchar(30)" json:"unit"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	TotalPrice      decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_price"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// InvoicePayment records one settlement against an invoice.
type InvoicePayment struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VendorInvoiceID uuid.UUID       `gorm:"type:uuid;not null;index" json:"vendor_invoice_id"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"amount"`
	Method          string          `gorm:"type:varchar(30)" json:"method"`
	Reference       string          `gorm:"type:varchar(100)" json:"reference"`
	PaidByID        uuid.UUID       `gorm:"type:uuid;not null" json:"paid_by_id"`
	PaidAt          time.Time       `gorm:"not null" json:"paid_at"`
	Note            string          `gorm:"type:text" json:"note"`
	CreatedAt       time.Time       `json:"created_at"`
}

// PaymentStatusFor computes the payment status from the invoice amounts and
// due date. Recomputed after every payment.
func PaymentStatusFor(totalAmount, paidAmount decimal.Decimal, dueDate, now time.Time) string {
	switch {
	case paidAmount.GreaterThanOrEqual(totalAmount):
		return PaymentStatusPaid
	case dueDate.Before(now):
		return PaymentStatusOverdue
	case paidAmount.GreaterThan(decimal.Zero):
		return PaymentStatusPartiallyPaid
	default:
		return PaymentStatusUnpaid
	}
}
