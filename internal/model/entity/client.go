package entity

import (
	"time"
)

// ClientStatus values
const (
	ClientStatusActive   = "active"
	ClientStatusInactive = "inactive"
)

// Client is a customer of the werf. Clients are never physically removed;
// Archive flips the status and records who retired the record and why.
type Client struct {
	ID           string     `json:"id" gorm:"primaryKey;size:32"`
	ClientNumber string     `json:"client_number" gorm:"size:32;not null;uniqueIndex"`
	Name         string     `json:"name" gorm:"size:200;not null"`
	ContactName  string     `json:"contact_name" gorm:"size:100"`
	Email        string     `json:"email" gorm:"size:100"`
	Phone        string     `json:"phone" gorm:"size:20"`
	Address      string     `json:"address" gorm:"size:500"`
	City         string     `json:"city" gorm:"size:100"`
	PostalCode   string     `json:"postal_code" gorm:"size:16"`
	Country      string     `json:"country" gorm:"size:64"`
	VATNumber    string     `json:"vat_number" gorm:"size:32"`
	KVKNumber    string     `json:"kvk_number" gorm:"size:32"`
	Status       string     `json:"status" gorm:"size:16;not null;default:active"`
	Notes        string     `json:"notes" gorm:"type:text"`
	Version      int        `json:"version" gorm:"not null;default:1"`
	ArchivedBy   string     `json:"archived_by" gorm:"size:32"`
	ArchivedAt   *time.Time `json:"archived_at"`
	ArchiveNote  string     `json:"archive_note" gorm:"type:text"`
	CreatedBy    string     `json:"created_by" gorm:"size:32;not null"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	DeletedAt    *time.Time `json:"deleted_at" gorm:"index"`

	Projects []Project `json:"projects,omitempty" gorm:"foreignKey:ClientID"`
}

func (Client) TableName() string {
	return "clients"
}
