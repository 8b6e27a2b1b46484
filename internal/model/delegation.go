package model

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalDelegation temporarily reroutes one approver's pending approvals
// to another user. At most one delegation per delegator is active at any
// instant: creating a new one deactivates any existing delegation whose
// window overlaps it.
type ApprovalDelegation struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	DelegatorID uuid.UUID `gorm:"type:uuid;not null;index" json:"delegator_id"`
	Delegator   *User     `gorm:"foreignKey:DelegatorID" json:"delegator,omitempty"`
	DelegateID  uuid.UUID `gorm:"type:uuid;not null;index" json:"delegate_id"`
	Delegate    *User     `gorm:"foreignKey:DelegateID" json:"delegate,omitempty"`
	StartDate   time.Time `gorm:"not null" json:"start_date"`
	EndDate     time.Time `gorm:"not null" json:"end_date"`
	IsActive    bool      `gorm:"default:true;index" json:"is_active"`
	Reason      string    `gorm:"type:text" json:"reason"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Covers reports whether the delegation window contains at.
func (d ApprovalDelegation) Covers(at time.Time) bool {
	return !at.Before(d.StartDate) && !at.After(d.EndDate)
}

// Overlaps reports whether [start,end] intersects the delegation window.
func (d ApprovalDelegation) Overlaps(start, end time.Time) bool {
	return !start.After(d.EndDate) && !end.Before(d.StartDate)
}
