package entity

import (
	"time"
)

// DocumentType values
const (
	DocumentTypeQuotation = "QUOTATION"
	DocumentTypeBOM       = "BOM"
	DocumentTypeInvoice   = "INVOICE"
	DocumentTypeOther     = "OTHER"
)

// DocumentStatus transitions: DRAFT → FINAL → SUPERSEDED. Finalizing a document
// supersedes any earlier FINAL document of the same type on the same project.
const (
	DocumentStatusDraft      = "DRAFT"
	DocumentStatusFinal      = "FINAL"
	DocumentStatusSuperseded = "SUPERSEDED"
)

// ProjectDocument is an append-only, versioned record. Version is allocated per
// project and type (count of existing documents + 1); a new version never
// overwrites or mutates an earlier one. The amount columns are a snapshot of
// the equipment totals at generation time.
type ProjectDocument struct {
	ID               string     `json:"id" gorm:"primaryKey;size:32"`
	ProjectID        string     `json:"project_id" gorm:"size:32;not null;index"`
	Type             string     `json:"type" gorm:"size:16;not null"`
	Version          int        `json:"version" gorm:"not null;default:1"`
	Status           string     `json:"status" gorm:"size:16;not null;default:DRAFT"`
	Title            string     `json:"title" gorm:"size:256;not null"`
	QuoteNumber      string     `json:"quote_number" gorm:"size:32"`
	ValidUntil       *time.Time `json:"valid_until" gorm:"type:date"`
	SubtotalExclVat  float64    `json:"subtotal_excl_vat" gorm:"type:decimal(12,2)"`
	VatRate          float64    `json:"vat_rate" gorm:"type:decimal(5,4)"`
	VatAmount        float64    `json:"vat_amount" gorm:"type:decimal(12,2)"`
	TotalInclVat     float64    `json:"total_incl_vat" gorm:"type:decimal(12,2)"`
	EquipmentVersion int        `json:"equipment_version"`
	FileName         string     `json:"file_name" gorm:"size:256"`
	FilePath         string     `json:"file_path" gorm:"size:512"`
	FileSize         int64      `json:"file_size"`
	MimeType         string     `json:"mime_type" gorm:"size:128"`
	CreatedBy        string     `json:"created_by" gorm:"size:32;not null"`
	FinalizedBy      string     `json:"finalized_by" gorm:"size:32"`
	FinalizedAt      *time.Time `json:"finalized_at"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`

	Project *Project `json:"project,omitempty" gorm:"foreignKey:ProjectID"`
	Creator *User    `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
}

func (ProjectDocument) TableName() string {
	return "project_documents"
}
