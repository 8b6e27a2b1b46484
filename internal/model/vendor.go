package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// VendorStatus enum constants
const (
	VendorStatusActive      = "ACTIVE"
	VendorStatusInactive    = "INACTIVE"
	VendorStatusBlacklisted = "BLACKLISTED"
)

// Vendor represents a supplier that can receive RFQs and purchase orders.
// BLACKLISTED vendors cannot be invited to RFQs or issued new POs.
type Vendor struct {
	ID            uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	VendorCode    string         `gorm:"type:varchar(30);uniqueIndex;not null" json:"vendor_code"`
	Name          string         `gorm:"type:varchar(255);not null" json:"name"`
	TaxCode       string         `gorm:"type:varchar(50)" json:"tax_code"`
	ContactPerson string         `gorm:"type:varchar(255)" json:"contact_person"`
	Phone         string         `gorm:"type:varchar(50)" json:"phone"`
	Email         string         `gorm:"type:varchar(255)" json:"email"`
	Address       string         `gorm:"type:text" json:"address"`
	BankAccount   string         `gorm:"type:varchar(100)" json:"bank_account"`
	PaymentTerms  string         `gorm:"type:varchar(100)" json:"payment_terms"`
	Status        string         `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"status"`
	Rating        int            `gorm:"default:0" json:"rating"` // 0-5, 0 = unrated
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}
