package model

import (
	"time"
)

// Contract status values
const (
	StatusDraft    = "DRAFT"
	StatusPending  = "PENDING"
	StatusApproved = "APPROVED"
	StatusRejected = "REJECTED"
	StatusArchived = "ARCHIVED"
)

// Contract is the primary business record: an agreement between two named
// parties with a monetary amount and a lifecycle status.
type Contract struct {
	ID          uint         `gorm:"primaryKey" json:"id"`
	ContractNo  string       `gorm:"uniqueIndex;size:191;not null" json:"contractNo"`
	Title       string       `gorm:"size:255;not null" json:"title"`
	PartyA      string       `gorm:"size:255;not null" json:"partyA"`
	PartyB      string       `gorm:"size:255;not null" json:"partyB"`
	Amount      float64      `gorm:"type:decimal(15,2)" json:"amount"`
	Status      string       `gorm:"size:16;not null;default:DRAFT" json:"status"`
	CreatedAt   time.Time    `json:"createdAt"`
	UpdatedAt   time.Time    `json:"updatedAt"`
	CreatedByID *uint        `json:"createdById,omitempty"`
	CreatedBy   *User        `gorm:"foreignKey:CreatedByID" json:"createdBy,omitempty"`
	Attachments []Attachment `gorm:"foreignKey:ContractID" json:"attachments"`
}

// Attachment is a binary file bound to exactly one contract. Rows are created
// only by the upload operation and removed only when the parent contract is
// deleted.
type Attachment struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FileName   string    `gorm:"size:255;not null" json:"fileName"`
	FilePath   string    `gorm:"size:255;not null" json:"filePath"`
	MimeType   string    `gorm:"size:128;not null" json:"mimeType"`
	FileSize   int64     `json:"fileSize"`
	ContractID uint      `gorm:"index;not null" json:"contractId"`
	Contract   *Contract `gorm:"foreignKey:ContractID" json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}

// ValidStatus reports whether status is one of the recognized contract
// lifecycle values.
func ValidStatus(status string) bool {
	switch status {
	case StatusDraft, StatusPending, StatusApproved, StatusRejected, StatusArchived:
		return true
	}
	return false
}
