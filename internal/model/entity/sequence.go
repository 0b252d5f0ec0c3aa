package entity

import (
	"time"
)

// Sequence entity types
const (
	SequenceClient    = "client"
	SequenceProject   = "project"
	SequenceQuotation = "quotation"
	SequenceInvoice   = "invoice"
)

// NumberSequence is a per-entity-type counter backing human-readable display
// numbers (CLI-2026-0001, Q-2026-001, ...). Allocation takes a row lock, so
// concurrent creations cannot draw the same value. The counter resets when the
// year rolls over.
type NumberSequence struct {
	ID         string    `json:"id" gorm:"primaryKey;size:32"`
	EntityType string    `json:"entity_type" gorm:"size:32;not null;uniqueIndex"`
	Prefix     string    `json:"prefix" gorm:"size:16;not null"`
	SeqLength  int       `json:"seq_length" gorm:"not null;default:4"`
	Year       int       `json:"year" gorm:"not null"`
	CurrentSeq int       `json:"current_seq" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func (NumberSequence) TableName() string {
	return "number_sequences"
}
