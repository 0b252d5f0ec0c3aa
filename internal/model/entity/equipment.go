package entity

import (
	"time"
)

// EquipmentStatus values. A frozen aggregate rejects item mutations.
const (
	EquipmentStatusDraft  = "draft"
	EquipmentStatusFrozen = "frozen"
)

// Equipment owns the configured item list of one project plus the derived
// totals. Totals are recomputed in the same transaction as every item
// mutation, so a reader never observes stale amounts.
type Equipment struct {
	ID              string     `json:"id" gorm:"primaryKey;size:32"`
	ProjectID       string     `json:"project_id" gorm:"size:32;not null;uniqueIndex"`
	Status          string     `json:"status" gorm:"size:16;not null;default:draft"`
	VatRate         float64    `json:"vat_rate" gorm:"type:decimal(5,4);not null;default:0.21"`
	SubtotalExclVat float64    `json:"subtotal_excl_vat" gorm:"type:decimal(12,2);not null;default:0"`
	VatAmount       float64    `json:"vat_amount" gorm:"type:decimal(12,2);not null;default:0"`
	TotalInclVat    float64    `json:"total_incl_vat" gorm:"type:decimal(12,2);not null;default:0"`
	Version         int        `json:"version" gorm:"not null;default:1"`
	FrozenBy        string     `json:"frozen_by" gorm:"size:32"`
	FrozenAt        *time.Time `json:"frozen_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	Items []EquipmentItem `json:"items,omitempty" gorm:"foreignKey:EquipmentID"`
}

func (Equipment) TableName() string {
	return "equipment"
}

// EquipmentItem is one configured line: LineTotal = Quantity * UnitPriceExclVat,
// and only included items count toward the aggregate totals.
type EquipmentItem struct {
	ID               string    `json:"id" gorm:"primaryKey;size:32"`
	EquipmentID      string    `json:"equipment_id" gorm:"size:32;not null;index"`
	Category         string    `json:"category" gorm:"size:64;not null"`
	Name             string    `json:"name" gorm:"size:256;not null"`
	Quantity         float64   `json:"quantity" gorm:"type:decimal(12,4);not null;default:1"`
	Unit             string    `json:"unit" gorm:"size:16;not null;default:pcs"`
	UnitPriceExclVat float64   `json:"unit_price_excl_vat" gorm:"type:decimal(12,2);not null;default:0"`
	LineTotal        float64   `json:"line_total" gorm:"type:decimal(12,2);not null;default:0"`
	IsStandard       bool      `json:"is_standard" gorm:"not null;default:false"`
	IsOptional       bool      `json:"is_optional" gorm:"not null;default:false"`
	IsIncluded       bool      `json:"is_included" gorm:"not null;default:true"`
	CERelevant       bool      `json:"ce_relevant" gorm:"not null;default:false"`
	SafetyCritical   bool      `json:"safety_critical" gorm:"not null;default:false"`
	SortOrder        int       `json:"sort_order" gorm:"not null;default:0"`
	Notes            string    `json:"notes" gorm:"type:text"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`

	Equipment *Equipment `json:"equipment,omitempty" gorm:"foreignKey:EquipmentID"`
}

func (EquipmentItem) TableName() string {
	return "equipment_items"
}
