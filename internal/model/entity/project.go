package entity

import (
	"time"
)

// ProjectType values
const (
	ProjectTypeNewBuild    = "new_build"
	ProjectTypeRefit       = "refit"
	ProjectTypeMaintenance = "maintenance"
)

// ProjectStatus workflow: draft → quoted → confirmed → in_production → delivered → closed.
const (
	ProjectStatusDraft        = "draft"
	ProjectStatusQuoted       = "quoted"
	ProjectStatusConfirmed    = "confirmed"
	ProjectStatusInProduction = "in_production"
	ProjectStatusDelivered    = "delivered"
	ProjectStatusClosed       = "closed"
)

// BoatIdentity is embedded in Project; HIN is the hull identification number.
type BoatIdentity struct {
	HIN          string `json:"hin" gorm:"column:boat_hin;size:32"`
	BoatName     string `json:"boat_name" gorm:"column:boat_name;size:128"`
	Registration string `json:"registration" gorm:"column:boat_registration;size:64"`
	Model        string `json:"model" gorm:"column:boat_model;size:128"`
	BuildYear    int    `json:"build_year" gorm:"column:boat_build_year"`
}

// Specification is embedded in Project: hull dimensions and propulsion.
type Specification struct {
	LengthM      float64 `json:"length_m" gorm:"column:spec_length_m;type:decimal(8,2)"`
	BeamM        float64 `json:"beam_m" gorm:"column:spec_beam_m;type:decimal(8,2)"`
	DraftM       float64 `json:"draft_m" gorm:"column:spec_draft_m;type:decimal(8,2)"`
	DisplacementKg float64 `json:"displacement_kg" gorm:"column:spec_displacement_kg;type:decimal(10,2)"`
	Propulsion   string  `json:"propulsion" gorm:"column:spec_propulsion;size:64"`
	EnginePowerKW float64 `json:"engine_power_kw" gorm:"column:spec_engine_power_kw;type:decimal(8,2)"`
	CECategory   string  `json:"ce_category" gorm:"column:spec_ce_category;size:8"`
	MaxPersons   int     `json:"max_persons" gorm:"column:spec_max_persons"`
}

// Project is the central aggregate: one boat build, refit or maintenance job.
type Project struct {
	ID            string        `json:"id" gorm:"primaryKey;size:32"`
	ProjectNumber string        `json:"project_number" gorm:"size:32;not null;uniqueIndex"`
	Name          string        `json:"name" gorm:"size:200;not null"`
	ClientID      string        `json:"client_id" gorm:"size:32;not null;index"`
	Type          string        `json:"type" gorm:"size:16;not null;default:new_build"`
	Status        string        `json:"status" gorm:"size:16;not null;default:draft"`
	Boat          BoatIdentity  `json:"boat" gorm:"embedded"`
	Spec          Specification `json:"spec" gorm:"embedded"`
	Description   string        `json:"description" gorm:"type:text"`
	PlannedStart  *time.Time    `json:"planned_start" gorm:"type:date"`
	PlannedEnd    *time.Time    `json:"planned_end" gorm:"type:date"`
	DeliveredAt   *time.Time    `json:"delivered_at"`
	Version       int           `json:"version" gorm:"not null;default:1"`
	CreatedBy     string        `json:"created_by" gorm:"size:32;not null"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
	DeletedAt     *time.Time    `json:"deleted_at" gorm:"index"`

	Client    *Client            `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Equipment *Equipment         `json:"equipment,omitempty" gorm:"foreignKey:ProjectID"`
	Documents []ProjectDocument  `json:"documents,omitempty" gorm:"foreignKey:ProjectID"`
	Stages    []ProductionStage  `json:"stages,omitempty" gorm:"foreignKey:ProjectID"`
	Tasks     []PlanningTask     `json:"tasks,omitempty" gorm:"foreignKey:ProjectID"`
	Delivery  []DeliveryItem     `json:"delivery,omitempty" gorm:"foreignKey:ProjectID"`
}

func (Project) TableName() string {
	return "projects"
}

// DeliveryItem is one line of the delivery checklist handed over with the boat.
type DeliveryItem struct {
	ID        string     `json:"id" gorm:"primaryKey;size:32"`
	ProjectID string     `json:"project_id" gorm:"size:32;not null;index"`
	Label     string     `json:"label" gorm:"size:256;not null"`
	Done      bool       `json:"done" gorm:"not null;default:false"`
	DoneBy    string     `json:"done_by" gorm:"size:32"`
	DoneAt    *time.Time `json:"done_at"`
	Sequence  int        `json:"sequence" gorm:"not null;default:0"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (DeliveryItem) TableName() string {
	return "delivery_items"
}
