package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RFQStatus enum constants
const (
	RFQStatusDraft      = "DRAFT"
	RFQStatusPublished  = "PUBLISHED"
	RFQStatusEvaluating = "EVALUATING"
	RFQStatusAwarded    = "AWARDED"
	RFQStatusClosed     = "CLOSED"
	RFQStatusCancelled  = "CANCELLED"
)

// RFQResponseStatus enum constants
const (
	RFQResponseSubmitted   = "SUBMITTED"
	RFQResponseUnderReview = "UNDER_REVIEW"
	RFQResponseSelected    = "SELECTED"
	RFQResponseRejected    = "REJECTED"
)

// RFQ is a request for quotation sent to invited vendors. Invitations are
// allowed only in DRAFT/PUBLISHED; responses only while PUBLISHED and
// before ResponseDeadline.
type RFQ struct {
	ID               uuid.UUID     `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RFQNumber        string        `gorm:"type:varchar(30);uniqueIndex;not null" json:"rfq_number"`
	Title            string        `gorm:"type:varchar(255);not null" json:"title"`
	RequisitionID    *uuid.UUID    `gorm:"type:uuid;index" json:"requisition_id"`
	Status           string        `gorm:"type:varchar(30);not null;default:'DRAFT';index" json:"status"`
	ResponseDeadline *time.Time    `json:"response_deadline"`
	Description      string        `gorm:"type:text" json:"description"`
	CreatedByID      uuid.UUID     `gorm:"type:uuid;not null" json:"created_by_id"`
	Items            []RFQItem     `gorm:"foreignKey:RFQID;constraint:OnDelete:CASCADE" json:"items"`
	Vendors          []RFQVendor   `gorm:"foreignKey:RFQID;constraint:OnDelete:CASCADE" json:"vendors,omitempty"`
	Responses        []RFQResponse `gorm:"foreignKey:RFQID;constraint:OnDelete:CASCADE" json:"responses,omitempty"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// RFQItem is a quoted line.
type RFQItem struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RFQID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"rfq_id"`
	Description string          `gorm:"type:varchar(255);not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Unit        string          `gorm:"type:varchar(30);not null" json:"unit"`
	Note        string          `gorm:"type:text" json:"note"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// RFQVendor records a vendor invitation; one row per (rfq, vendor).
type RFQVendor struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RFQID     uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rfq_vendor" json:"rfq_id"`
	VendorID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_rfq_vendor" json:"vendor_id"`
	Vendor    *Vendor   `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	InvitedAt time.Time `gorm:"not null" json:"invited_at"`
	CreatedAt time.Time `json:"created_at"`
}

// RFQResponse is one vendor's quotation. TotalAmount is derived as the sum
// of its item totals. Awarding one response marks it SELECTED and every
// sibling REJECTED in the same transaction.
type RFQResponse struct {
	ID           uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RFQID        uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_rfq_response_vendor" json:"rfq_id"`
	VendorID     uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex:idx_rfq_response_vendor" json:"vendor_id"`
	Vendor       *Vendor           `gorm:"foreignKey:VendorID" json:"vendor,omitempty"`
	Status       string            `gorm:"type:varchar(30);not null;default:'SUBMITTED';index" json:"status"`
	TotalAmount  decimal.Decimal   `gorm:"type:decimal(18,4);not null;default:0" json:"total_amount"`
	ValidUntil   *time.Time        `json:"valid_until"`
	DeliveryDays int               `json:"delivery_days"`
	Note         string            `gorm:"type:text" json:"note"`
	Items        []RFQResponseItem `gorm:"foreignKey:RFQResponseID;constraint:OnDelete:CASCADE" json:"items"`
	SubmittedAt  time.Time         `gorm:"not null" json:"submitted_at"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// RFQResponseItem prices one RFQ item.
type RFQResponseItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RFQResponseID uuid.UUID       `gorm:"type:uuid;not null;index" json:"rfq_response_id"`
	RFQItemID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"rfq_item_id"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"unit_price"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_price"`
	Note          string          `gorm:"type:text" json:"note"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}
