package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// GoodsReceiptStatus enum constants. ACCEPTED, PARTIALLY_ACCEPTED and
// REJECTED are terminal: a finalized receipt is never re-opened.
const (
	GRNStatusPendingInspection = "PENDING_INSPECTION"
	GRNStatusInspecting        = "INSPECTING"
	GRNStatusAccepted          = "ACCEPTED"
	GRNStatusPartiallyAccepted = "PARTIALLY_ACCEPTED"
	GRNStatusRejected          = "REJECTED"
)

// GoodsReceiptItem condition constants
const (
	ItemConditionGood      = "GOOD"
	ItemConditionDamaged   = "DAMAGED"
	ItemConditionExpired   = "EXPIRED"
	ItemConditionWrongItem = "WRONG_ITEM"
)

// GoodsReceipt (GRN) records a physical delivery against a purchase order.
// Creating or updating one adjusts the parent PO items' ReceivedQty in the
// same transaction.
type GoodsReceipt struct {
	ID              uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	GRNNumber       string             `gorm:"type:varchar(30);uniqueIndex;not null" json:"grn_number"`
	PurchaseOrderID uuid.UUID          `gorm:"type:uuid;not null;index" json:"purchase_order_id"`
	PurchaseOrder   *PurchaseOrder     `gorm:"foreignKey:PurchaseOrderID" json:"purchase_order,omitempty"`
	Status          string             `gorm:"type:varchar(30);not null;default:'PENDING_INSPECTION';index" json:"status"`
	ReceivedByID    uuid.UUID          `gorm:"type:uuid;not null" json:"received_by_id"`
	ReceivedAt      time.Time          `gorm:"not null" json:"received_at"`
	InspectedByID   *uuid.UUID         `gorm:"type:uuid" json:"inspected_by_id"`
	InspectedAt     *time.Time         `json:"inspected_at"`
	DeliveryNote    string             `gorm:"type:varchar(100)" json:"delivery_note"`
	Note            string             `gorm:"type:text" json:"note"`
	Items           []GoodsReceiptItem `gorm:"foreignKey:GoodsReceiptID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// GoodsReceiptItem snapshots the ordered quantity at receiving time. Once
// the receipt is finalized, AcceptedQty + RejectedQty == ReceivedQty holds
// for every line.
type GoodsReceiptItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	GoodsReceiptID uuid.UUID       `gorm:"type:uuid;not null;index" json:"goods_receipt_id"`
	POItemID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"po_item_id"`
	Description    string          `gorm:"type:varchar(255);not null" json:"description"`
	OrderedQty     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"ordered_qty"`
	ReceivedQty    decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"received_qty"`
	AcceptedQty    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"accepted_qty"`
	RejectedQty    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"rejected_qty"`
	Unit           string          `gorm:"type:varchar(30);not null" json:"unit"`
	Condition      string          `gorm:"type:varchar(20);not null;default:'GOOD'" json:"condition"`
	Note           string          `gorm:"type:text" json:"note"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}
