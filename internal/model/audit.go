package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateRequisition  = "CREATE_REQUISITION"
	ActionSubmitRequisition  = "SUBMIT_REQUISITION"
	ActionApproveRequisition = "APPROVE_REQUISITION"
	ActionRejectRequisition  = "REJECT_REQUISITION"
	ActionCancelRequisition  = "CANCEL_REQUISITION"
	ActionCreateVendor       = "CREATE_VENDOR"
	ActionUpdateVendor       = "UPDATE_VENDOR"
	ActionBlacklistVendor    = "BLACKLIST_VENDOR"
	ActionDeleteVendor       = "DELETE_VENDOR"
	ActionCreateRFQ          = "CREATE_RFQ"
	ActionPublishRFQ         = "PUBLISH_RFQ"
	ActionInviteVendor       = "INVITE_VENDOR"
	ActionSubmitRFQResponse  = "SUBMIT_RFQ_RESPONSE"
	ActionUpdateRFQResponse  = "UPDATE_RFQ_RESPONSE"
	ActionEvaluateRFQ        = "EVALUATE_RFQ"
	ActionAwardRFQ           = "AWARD_RFQ"
	ActionCloseRFQ           = "CLOSE_RFQ"
	ActionCancelRFQ          = "CANCEL_RFQ"
	ActionCreatePO           = "CREATE_PO"
	ActionApprovePO          = "APPROVE_PO"
	ActionSendPO             = "SEND_PO"
	ActionCompletePO         = "COMPLETE_PO"
	ActionCancelPO           = "CANCEL_PO"
	ActionCreateGRN          = "CREATE_GRN"
	ActionUpdateGRN          = "UPDATE_GRN"
	ActionInspectGRN         = "INSPECT_GRN"
	ActionAcceptGRN          = "ACCEPT_GRN"
	ActionRejectGRN          = "REJECT_GRN"
	ActionCreateInvoice      = "CREATE_INVOICE"
	ActionMatchInvoice       = "MATCH_INVOICE"
	ActionDisputeInvoice     = "DISPUTE_INVOICE"
	ActionApprovePayment     = "APPROVE_PAYMENT"
	ActionRecordPayment      = "RECORD_PAYMENT"
	ActionCreateDelegation   = "CREATE_DELEGATION"
	ActionRevokeDelegation   = "REVOKE_DELEGATION"
)

// AuditLog tracks Who, What, and When for critical system changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated bot
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/code)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
