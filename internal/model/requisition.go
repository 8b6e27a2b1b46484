package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequisitionStatus constants
const (
	RequisitionStatusDraft           = "DRAFT"
	RequisitionStatusPendingApproval = "PENDING_APPROVAL"
	RequisitionStatusApproved        = "APPROVED"
	RequisitionStatusRejected        = "REJECTED"
	RequisitionStatusCancelled       = "CANCELLED"
	RequisitionStatusCompleted       = "COMPLETED"
)

// Per-stage approval record statuses
const (
	ApprovalPending  = "PENDING"
	ApprovalApproved = "APPROVED"
	ApprovalRejected = "REJECTED"
)

// Requisition is an internal purchase request moving through staged approval.
// TotalEstimate is derived: it must always equal the sum of item TotalPrice,
// recomputed in the same transaction as any item change.
type Requisition struct {
	ID            uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequisitionNo string                `gorm:"type:varchar(30);uniqueIndex;not null" json:"requisition_no"`
	RequesterID   uuid.UUID             `gorm:"type:uuid;not null;index" json:"requester_id"`
	Requester     *User                 `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Department    string                `gorm:"type:varchar(100);not null;index" json:"department"`
	Status        string                `gorm:"type:varchar(30);not null;default:'DRAFT';index" json:"status"`
	CurrentStage  int                   `gorm:"not null;default:1" json:"current_stage"`
	TotalEstimate decimal.Decimal       `gorm:"type:decimal(18,4);not null;default:0" json:"total_estimate"`
	Justification string                `gorm:"type:text" json:"justification"`
	NeededBy      *time.Time            `json:"needed_by"`
	Items         []RequisitionItem     `gorm:"foreignKey:RequisitionID;constraint:OnDelete:CASCADE" json:"items"`
	Approvals     []RequisitionApproval `gorm:"foreignKey:RequisitionID;constraint:OnDelete:CASCADE" json:"approvals,omitempty"`
	CreatedAt     time.Time             `json:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at"`
}

// RequisitionItem is owned by its Requisition and mutable only in DRAFT.
// TotalPrice = Quantity * EstimatedPrice.
type RequisitionItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequisitionID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"requisition_id"`
	Description    string          `gorm:"type:varchar(255);not null" json:"description"`
	Quantity       decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"quantity"`
	Unit           string          `gorm:"type:varchar(30);not null" json:"unit"`
	EstimatedPrice decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"estimated_price"`
	TotalPrice     decimal.Decimal `gorm:"type:decimal(18,4);not null" json:"total_price"`
	Note           string          `gorm:"type:text" json:"note"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// RequisitionApproval holds at most one row per (requisition, stage);
// resubmission replaces the stage row rather than appending.
type RequisitionApproval struct {
	ID            uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RequisitionID uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_req_stage" json:"requisition_id"`
	Stage         int        `gorm:"not null;uniqueIndex:idx_req_stage" json:"stage"`
	ApproverID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"approver_id"`
	Approver      *User      `gorm:"foreignKey:ApproverID" json:"approver,omitempty"`
	Status        string     `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	Comments      string     `gorm:"type:text" json:"comments"`
	ActedAt       *time.Time `json:"acted_at"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
