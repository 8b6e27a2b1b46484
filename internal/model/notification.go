package model

import (
	"time"

	"github.com/google/uuid"
)

// Notification type constants
const (
	NotifyApprovalRequested = "APPROVAL_REQUESTED"
	NotifyApprovalDecided   = "APPROVAL_DECIDED"
	NotifyRFQInvitation     = "RFQ_INVITATION"
	NotifyGoodsReceived     = "GOODS_RECEIVED"
	NotifyInvoiceMatched    = "INVOICE_MATCHED"
	NotifyPaymentRecorded   = "PAYMENT_RECORDED"
)

// Notification is delivered fire-and-forget: persistence or push failures
// never roll back the business transaction that triggered them.
type Notification struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Type        string    `gorm:"type:varchar(50);not null;index" json:"type"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Message     string    `gorm:"type:text" json:"message"`
	ReferenceID string    `gorm:"type:varchar(50);index" json:"reference_id"`
	IsRead      bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}
